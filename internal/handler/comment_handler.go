package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"forum-api/internal/dto"
	"forum-api/internal/pagination"
	"forum-api/internal/response"
	"forum-api/internal/service"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{
		commentService: commentService,
	}
}

// CreateComment godoc
// @Summary      Comment on a topic
// @Description  The topic author is notified. Closed topics refuse new comments.
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        topicId path string true "Topic ID (UUID)"
// @Param        request body dto.CreateCommentRequest true "Comment"
// @Success      201 {object} response.SuccessResponse{data=dto.CommentResponse}
// @Failure      400 {object} response.ErrorResponse "Empty content or topic closed"
// @Failure      404 {object} response.ErrorResponse "Topic not found"
// @Security     BearerAuth
// @Router       /comments/topic/{topicId} [post]
func (h *CommentHandler) CreateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	topicID, ok := parseUUIDParam(c, "topicId", "topic")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), userID, topicID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusCreated, comment)
}

// ListComments godoc
// @Summary      List the comments of a topic
// @Tags         comments
// @Produce      json
// @Param        topicId path string true "Topic ID (UUID)"
// @Param        page query int false "Page (default 1)"
// @Param        limit query int false "Page size (1-100, default 10)"
// @Param        sortDir query string false "asc or desc (default desc)"
// @Param        q query string false "Search in content"
// @Success      200 {object} response.SuccessResponse{data=pagination.Page[dto.CommentResponse]}
// @Failure      404 {object} response.ErrorResponse "Topic not found"
// @Router       /comments/topic/{topicId} [get]
func (h *CommentHandler) ListComments(c *gin.Context) {
	topicID, ok := parseUUIDParam(c, "topicId", "topic")
	if !ok {
		return
	}

	var raw pagination.RawQuery
	_ = c.ShouldBindQuery(&raw)

	page, err := h.commentService.ListComments(c.Request.Context(), topicID, raw)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, page)
}

// GetComment godoc
// @Summary      Get a comment
// @Tags         comments
// @Produce      json
// @Param        commentId path string true "Comment ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.CommentResponse}
// @Failure      404 {object} response.ErrorResponse "Comment not found"
// @Router       /comments/{commentId} [get]
func (h *CommentHandler) GetComment(c *gin.Context) {
	commentID, ok := parseUUIDParam(c, "commentId", "comment")
	if !ok {
		return
	}

	comment, err := h.commentService.GetComment(c.Request.Context(), commentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, comment)
}

// UpdateComment godoc
// @Summary      Edit own comment
// @Tags         comments
// @Accept       json
// @Produce      json
// @Param        commentId path string true "Comment ID (UUID)"
// @Param        request body dto.UpdateCommentRequest true "Comment"
// @Success      200 {object} response.SuccessResponse{data=dto.CommentResponse}
// @Failure      403 {object} response.ErrorResponse "Not the author"
// @Failure      404 {object} response.ErrorResponse "Comment not found"
// @Security     BearerAuth
// @Router       /comments/{commentId} [patch]
func (h *CommentHandler) UpdateComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	commentID, ok := parseUUIDParam(c, "commentId", "comment")
	if !ok {
		return
	}

	var req dto.UpdateCommentRequest
	if !bindJSON(c, &req) {
		return
	}

	comment, err := h.commentService.UpdateComment(c.Request.Context(), userID, commentID, &req)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, comment)
}

// DeleteComment godoc
// @Summary      Delete own comment
// @Tags         comments
// @Produce      json
// @Param        commentId path string true "Comment ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.CommentResponse}
// @Failure      403 {object} response.ErrorResponse "Not the author"
// @Failure      404 {object} response.ErrorResponse "Comment not found"
// @Security     BearerAuth
// @Router       /comments/{commentId} [delete]
func (h *CommentHandler) DeleteComment(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	commentID, ok := parseUUIDParam(c, "commentId", "comment")
	if !ok {
		return
	}

	comment, err := h.commentService.DeleteComment(c.Request.Context(), userID, commentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, comment)
}

// AdminDeleteComment godoc
// @Summary      Delete any comment
// @Tags         admin
// @Produce      json
// @Param        commentId path string true "Comment ID (UUID)"
// @Success      200 {object} response.SuccessResponse{data=dto.CommentResponse}
// @Failure      404 {object} response.ErrorResponse "Comment not found"
// @Security     BearerAuth
// @Router       /admin/comments/{commentId} [delete]
func (h *CommentHandler) AdminDeleteComment(c *gin.Context) {
	commentID, ok := parseUUIDParam(c, "commentId", "comment")
	if !ok {
		return
	}

	comment, err := h.commentService.AdminDeleteComment(c.Request.Context(), commentID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	response.SendSuccess(c, http.StatusOK, comment)
}
