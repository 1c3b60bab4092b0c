package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forum-api/internal/dto"
	"forum-api/internal/pagination"
	"forum-api/internal/response"
	"forum-api/internal/service"
)

// TopicPinResponse is returned by the toggle-pin endpoint
type TopicPinResponse struct {
	Message string            `json:"message"`
	Topic   dto.TopicResponse `json:"topic"`
}

type TopicHandler struct {
	topicService service.TopicService
}

func NewTopicHandler(topicService service.TopicService) *TopicHandler {
	return &TopicHandler{
		topicService: topicService,
	}
}

// CreateTopic godoc
// @Summary      Create a topic
// @Tags         topics
// @Accept       json
// @Produce      json
// @Param        threadId path string true "Thread ID (UUID)"
// @Param        request body dto.CreateTopicRequest true "Topic"
// @Success      201 {object} response.SuccessResponse{data=dto.TopicResponse}
// @Failure      404 {object} response.ErrorResponse "Thread not found"
// @Failure      409 {object} response.ErrorResponse "A topic with this title already exists in this thread"
// @Security     BearerAuth
// @Router       /topics/thread/{threadId} [post]
func (h *TopicHandler) CreateTopic(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	threadID, ok := parseUUIDParam(c, "threadId", "thread")
	if !ok {
		return
	}

	var req dto.CreateTopicRequest
	if !bindJSON(c, &req) {
		return
	}

	topic, err := h.topicService.CreateTopic(c.Request.Context(), userID, threadID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, topic)
}

// ListTopics godoc
// @Summary      List the topics of a thread
// @Description  Pinned topics come first, then the requested order
// @Tags         topics
// @Produce      json
// @Param        threadId path string true "Thread ID (UUID)"
// @Param        page query int false "Page (default 1)"
// @Param        limit query int false "Page size (1-100, default 10)"
// @Param        sortBy query string false "title, views, commentsCount or createdAt"
// @Param        sortDir query string false "asc or desc (default desc)"
// @Param        q query string false "Search in title and content"
// @Success      200 {object} response.SuccessResponse{data=pagination.Page[dto.TopicResponse]}
// @Failure      404 {object} response.ErrorResponse "Thread not found"
// @Router       /topics/thread/{threadId} [get]
func (h *TopicHandler) ListTopics(c *gin.Context) {
	threadID, ok := parseUUIDParam(c, "threadId", "thread")
	if !ok {
		return
	}

	var raw pagination.RawQuery
	_ = c.ShouldBindQuery(&raw)

	page, err := h.topicService.ListTopics(c.Request.Context(), threadID, raw)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, page)
}

// GetTopic godoc
// @Summary      Get a topic
// @Description  Each read counts as a view
// @Tags         topics
// @Produce      json
// @Param        topicId path string true "Topic ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.TopicResponse}
// @Failure      404 {object} response.ErrorResponse "Topic not found"
// @Router       /topics/{topicId} [get]
func (h *TopicHandler) GetTopic(c *gin.Context) {
	topicID, ok := parseUUIDParam(c, "topicId", "topic")
	if !ok {
		return
	}

	topic, err := h.topicService.GetTopic(c.Request.Context(), topicID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, topic)
}

// UpdateTopic godoc
// @Summary      Update a topic
// @Tags         topics
// @Accept       json
// @Produce      json
// @Param        topicId path string true "Topic ID (UUID)"
// @Param        request body dto.UpdateTopicRequest true "Fields to change"
// @Success      200 {object} response.SuccessResponse{data=dto.TopicResponse}
// @Failure      403 {object} response.ErrorResponse "Not the author"
// @Failure      404 {object} response.ErrorResponse "Topic not found"
// @Security     BearerAuth
// @Router       /topics/{topicId} [patch]
func (h *TopicHandler) UpdateTopic(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	topicID, ok := parseUUIDParam(c, "topicId", "topic")
	if !ok {
		return
	}

	var req dto.UpdateTopicRequest
	if !bindJSON(c, &req) {
		return
	}

	topic, err := h.topicService.UpdateTopic(c.Request.Context(), userID, topicID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, topic)
}

// DeleteTopic godoc
// @Summary      Delete own topic
// @Description  Removes the topic with its comments
// @Tags         topics
// @Produce      json
// @Param        topicId path string true "Topic ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.DeleteTopicResponse}
// @Failure      403 {object} response.ErrorResponse "Not the author"
// @Failure      404 {object} response.ErrorResponse "Topic not found"
// @Security     BearerAuth
// @Router       /topics/{topicId} [delete]
func (h *TopicHandler) DeleteTopic(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	topicID, ok := parseUUIDParam(c, "topicId", "topic")
	if !ok {
		return
	}

	resp, err := h.topicService.DeleteTopic(c.Request.Context(), userID, topicID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, resp)
}

// CloseTopic godoc
// @Summary      Close a topic
// @Tags         admin
// @Produce      json
// @Param        topicId path string true "Topic ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.TopicResponse}
// @Failure      400 {object} response.ErrorResponse "Topic already closed"
// @Security     BearerAuth
// @Router       /admin/topics/{topicId}/close [patch]
func (h *TopicHandler) CloseTopic(c *gin.Context) {
	topicID, ok := parseUUIDParam(c, "topicId", "topic")
	if !ok {
		return
	}

	topic, err := h.topicService.CloseTopic(c.Request.Context(), topicID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, topic)
}

// OpenTopic godoc
// @Summary      Reopen a topic
// @Tags         admin
// @Produce      json
// @Param        topicId path string true "Topic ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.TopicResponse}
// @Failure      400 {object} response.ErrorResponse "Topic already open"
// @Security     BearerAuth
// @Router       /admin/topics/{topicId}/open [patch]
func (h *TopicHandler) OpenTopic(c *gin.Context) {
	topicID, ok := parseUUIDParam(c, "topicId", "topic")
	if !ok {
		return
	}

	topic, err := h.topicService.OpenTopic(c.Request.Context(), topicID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, topic)
}

// TogglePin godoc
// @Summary      Pin or unpin a topic
// @Tags         admin
// @Produce      json
// @Param        topicId path string true "Topic ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=TopicPinResponse}
// @Failure      404 {object} response.ErrorResponse "Topic not found"
// @Security     BearerAuth
// @Router       /admin/topics/{topicId}/toggle-pin [patch]
func (h *TopicHandler) TogglePin(c *gin.Context) {
	topicID, ok := parseUUIDParam(c, "topicId", "topic")
	if !ok {
		return
	}

	topic, err := h.topicService.TogglePin(c.Request.Context(), topicID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	message := "Topic unpinned"
	if topic.Pinned {
		message = "Topic pinned"
	}
	response.SendSuccess(c, http.StatusOK, TopicPinResponse{Message: message, Topic: *topic})
}

// AdminDeleteTopic godoc
// @Summary      Delete any topic
// @Tags         admin
// @Produce      json
// @Param        topicId path string true "Topic ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.DeleteTopicResponse}
// @Failure      404 {object} response.ErrorResponse "Topic not found"
// @Security     BearerAuth
// @Router       /admin/topics/{topicId} [delete]
func (h *TopicHandler) AdminDeleteTopic(c *gin.Context) {
	topicID, ok := parseUUIDParam(c, "topicId", "topic")
	if !ok {
		return
	}

	resp, err := h.topicService.AdminDeleteTopic(c.Request.Context(), topicID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, resp)
}
