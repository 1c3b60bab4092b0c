package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forum-api/internal/dto"
	"forum-api/internal/pagination"
	"forum-api/internal/response"
	"forum-api/internal/service"
)

type SectionHandler struct {
	sectionService service.SectionService
}

func NewSectionHandler(sectionService service.SectionService) *SectionHandler {
	return &SectionHandler{
		sectionService: sectionService,
	}
}

// ListSections godoc
// @Summary      List sections
// @Tags         sections
// @Produce      json
// @Param        page query int false "Page (default 1)"
// @Param        limit query int false "Page size (1-100, default 10)"
// @Param        sortBy query string false "title, order or createdAt"
// @Param        sortDir query string false "asc or desc (default desc)"
// @Param        q query string false "Search in title and description"
// @Success      200 {object} response.SuccessResponse{data=pagination.Page[dto.SectionResponse]}
// @Failure      400 {object} response.ErrorResponse "Invalid list parameters"
// @Router       /sections [get]
func (h *SectionHandler) ListSections(c *gin.Context) {
	var raw pagination.RawQuery
	_ = c.ShouldBindQuery(&raw)

	page, err := h.sectionService.ListSections(c.Request.Context(), raw)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, page)
}

// GetSection godoc
// @Summary      Get a section
// @Tags         sections
// @Produce      json
// @Param        sectionId path string true "Section ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.SectionResponse}
// @Failure      404 {object} response.ErrorResponse "Section not found"
// @Router       /sections/{sectionId} [get]
func (h *SectionHandler) GetSection(c *gin.Context) {
	sectionID, ok := parseUUIDParam(c, "sectionId", "section")
	if !ok {
		return
	}

	section, err := h.sectionService.GetSection(c.Request.Context(), sectionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, section)
}

// CreateSection godoc
// @Summary      Create a section
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateSectionRequest true "Section"
// @Success      201 {object} response.SuccessResponse{data=dto.SectionResponse}
// @Failure      409 {object} response.ErrorResponse "Section with this title already exists"
// @Security     BearerAuth
// @Router       /admin/sections [post]
func (h *SectionHandler) CreateSection(c *gin.Context) {
	var req dto.CreateSectionRequest
	if !bindJSON(c, &req) {
		return
	}

	section, err := h.sectionService.CreateSection(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, section)
}

// UpdateSection godoc
// @Summary      Update a section
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        sectionId path string true "Section ID (UUID)"
// @Param        request body dto.UpdateSectionRequest true "Fields to change"
// @Success      200 {object} response.SuccessResponse{data=dto.SectionResponse}
// @Failure      400 {object} response.ErrorResponse "No changes"
// @Failure      404 {object} response.ErrorResponse "Section not found"
// @Failure      409 {object} response.ErrorResponse "Section with this title already exists"
// @Security     BearerAuth
// @Router       /admin/sections/{sectionId} [patch]
func (h *SectionHandler) UpdateSection(c *gin.Context) {
	sectionID, ok := parseUUIDParam(c, "sectionId", "section")
	if !ok {
		return
	}

	var req dto.UpdateSectionRequest
	if !bindJSON(c, &req) {
		return
	}

	section, err := h.sectionService.UpdateSection(c.Request.Context(), sectionID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, section)
}

// DeleteSection godoc
// @Summary      Delete a section
// @Description  Removes the section with every thread, topic and comment under it
// @Tags         admin
// @Produce      json
// @Param        sectionId path string true "Section ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.DeleteSectionResponse}
// @Failure      404 {object} response.ErrorResponse "Section not found"
// @Security     BearerAuth
// @Router       /admin/sections/{sectionId} [delete]
func (h *SectionHandler) DeleteSection(c *gin.Context) {
	sectionID, ok := parseUUIDParam(c, "sectionId", "section")
	if !ok {
		return
	}

	resp, err := h.sectionService.DeleteSection(c.Request.Context(), sectionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, resp)
}
