package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forum-api/internal/dto"
	"forum-api/internal/pagination"
	"forum-api/internal/response"
	"forum-api/internal/service"
)

type ThreadHandler struct {
	threadService service.ThreadService
}

func NewThreadHandler(threadService service.ThreadService) *ThreadHandler {
	return &ThreadHandler{
		threadService: threadService,
	}
}

// ListAllThreads godoc
// @Summary      List every thread
// @Tags         threads
// @Produce      json
// @Param        page query int false "Page (default 1)"
// @Param        limit query int false "Page size (1-100, default 10)"
// @Param        sortBy query string false "title, order, topicsCount or createdAt"
// @Param        sortDir query string false "asc or desc (default desc)"
// @Param        q query string false "Search in title and description"
// @Success      200 {object} response.SuccessResponse{data=pagination.Page[dto.ThreadResponse]}
// @Router       /threads/all [get]
func (h *ThreadHandler) ListAllThreads(c *gin.Context) {
	var raw pagination.RawQuery
	_ = c.ShouldBindQuery(&raw)

	page, err := h.threadService.ListAllThreads(c.Request.Context(), raw)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, page)
}

// ListSectionThreads godoc
// @Summary      List the threads of a section
// @Tags         threads
// @Produce      json
// @Param        sectionId path string true "Section ID (UUID)"
// @Param        page query int false "Page (default 1)"
// @Param        limit query int false "Page size (1-100, default 10)"
// @Param        sortBy query string false "title, order, topicsCount or createdAt"
// @Param        sortDir query string false "asc or desc (default desc)"
// @Param        q query string false "Search in title and description"
// @Success      200 {object} response.SuccessResponse{data=pagination.Page[dto.ThreadResponse]}
// @Failure      404 {object} response.ErrorResponse "Section not found"
// @Router       /threads/{sectionId} [get]
func (h *ThreadHandler) ListSectionThreads(c *gin.Context) {
	sectionID, ok := parseUUIDParam(c, "sectionId", "section")
	if !ok {
		return
	}

	var raw pagination.RawQuery
	_ = c.ShouldBindQuery(&raw)

	page, err := h.threadService.ListSectionThreads(c.Request.Context(), sectionID, raw)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, page)
}

// GetThread godoc
// @Summary      Get a thread
// @Tags         threads
// @Produce      json
// @Param        sectionId path string true "Section ID (UUID)"
// @Param        threadId path string true "Thread ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.ThreadResponse}
// @Failure      404 {object} response.ErrorResponse "Thread not found in this section"
// @Router       /threads/{sectionId}/{threadId} [get]
func (h *ThreadHandler) GetThread(c *gin.Context) {
	sectionID, ok := parseUUIDParam(c, "sectionId", "section")
	if !ok {
		return
	}
	threadID, ok := parseUUIDParam(c, "threadId", "thread")
	if !ok {
		return
	}

	thread, err := h.threadService.GetThread(c.Request.Context(), sectionID, threadID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, thread)
}

// CreateThread godoc
// @Summary      Create a thread
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        request body dto.CreateThreadRequest true "Thread"
// @Success      201 {object} response.SuccessResponse{data=dto.ThreadResponse}
// @Failure      404 {object} response.ErrorResponse "Section not found"
// @Failure      409 {object} response.ErrorResponse "Thread with this title already exists"
// @Security     BearerAuth
// @Router       /admin/threads [post]
func (h *ThreadHandler) CreateThread(c *gin.Context) {
	var req dto.CreateThreadRequest
	if !bindJSON(c, &req) {
		return
	}

	thread, err := h.threadService.CreateThread(c.Request.Context(), &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, thread)
}

// UpdateThread godoc
// @Summary      Update a thread
// @Description  Setting sectionId moves the thread to another section
// @Tags         admin
// @Accept       json
// @Produce      json
// @Param        sectionId path string true "Section ID (UUID)"
// @Param        threadId path string true "Thread ID (UUID)"
// @Param        request body dto.UpdateThreadRequest true "Fields to change"
// @Success      200 {object} response.SuccessResponse{data=dto.ThreadResponse}
// @Failure      400 {object} response.ErrorResponse "No changes"
// @Failure      404 {object} response.ErrorResponse "Thread not found in this section"
// @Failure      409 {object} response.ErrorResponse "Thread with this title already exists"
// @Security     BearerAuth
// @Router       /admin/threads/{sectionId}/{threadId} [patch]
func (h *ThreadHandler) UpdateThread(c *gin.Context) {
	sectionID, ok := parseUUIDParam(c, "sectionId", "section")
	if !ok {
		return
	}
	threadID, ok := parseUUIDParam(c, "threadId", "thread")
	if !ok {
		return
	}

	var req dto.UpdateThreadRequest
	if !bindJSON(c, &req) {
		return
	}

	thread, err := h.threadService.UpdateThread(c.Request.Context(), sectionID, threadID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, thread)
}

// DeleteThread godoc
// @Summary      Delete a thread
// @Description  Removes the thread with every topic and comment under it
// @Tags         admin
// @Produce      json
// @Param        sectionId path string true "Section ID (UUID)"
// @Param        threadId path string true "Thread ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.DeleteThreadResponse}
// @Failure      404 {object} response.ErrorResponse "Thread not found in this section"
// @Security     BearerAuth
// @Router       /admin/threads/{sectionId}/{threadId} [delete]
func (h *ThreadHandler) DeleteThread(c *gin.Context) {
	sectionID, ok := parseUUIDParam(c, "sectionId", "section")
	if !ok {
		return
	}
	threadID, ok := parseUUIDParam(c, "threadId", "thread")
	if !ok {
		return
	}

	resp, err := h.threadService.DeleteThread(c.Request.Context(), sectionID, threadID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, resp)
}
