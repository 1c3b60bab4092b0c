package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"forum-api/internal/domain"
	"forum-api/internal/dto"
	"forum-api/internal/metrics"
	"forum-api/internal/pagination"
	"forum-api/internal/repository"
	"forum-api/internal/response"
)

const commentNotificationMessage = "New comment on your topic"

// CommentService defines the interface for comment business logic
type CommentService interface {
	CreateComment(ctx context.Context, authorID, topicID uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	GetComment(ctx context.Context, commentID uuid.UUID) (*dto.CommentResponse, error)
	ListComments(ctx context.Context, topicID uuid.UUID, raw pagination.RawQuery) (*pagination.Page[dto.CommentResponse], error)
	UpdateComment(ctx context.Context, actorID, commentID uuid.UUID, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, actorID, commentID uuid.UUID) (*dto.CommentResponse, error)
	AdminDeleteComment(ctx context.Context, commentID uuid.UUID) (*dto.CommentResponse, error)
}

// commentServiceImpl is the implementation of CommentService
type commentServiceImpl struct {
	commentRepo   repository.CommentRepository
	topicRepo     repository.TopicRepository
	cascadeRepo   repository.CascadeRepository
	notifications NotificationService
	metrics       *metrics.Metrics
	logger        *zap.Logger
}

// NewCommentService creates a new instance of CommentService
func NewCommentService(
	commentRepo repository.CommentRepository,
	topicRepo repository.TopicRepository,
	cascadeRepo repository.CascadeRepository,
	notifications NotificationService,
	m *metrics.Metrics,
	logger *zap.Logger,
) CommentService {
	return &commentServiceImpl{
		commentRepo:   commentRepo,
		topicRepo:     topicRepo,
		cascadeRepo:   cascadeRepo,
		notifications: notifications,
		metrics:       m,
		logger:        logger,
	}
}

// CreateComment replies to an open topic and notifies the topic author
func (s *commentServiceImpl) CreateComment(ctx context.Context, authorID, topicID uuid.UUID, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, response.NewValidationError("Comment content is required", "")
	}

	topic, err := s.topicRepo.FindByID(ctx, topicID)
	if err != nil {
		return nil, lookupError(err, "Topic not found", "Failed to load topic")
	}
	if topic.Closed {
		return nil, response.NewInvalidStateError("Topic is closed", "closed topics do not accept comments")
	}

	comment := &domain.Comment{
		TopicID:  topic.ID,
		AuthorID: authorID,
		Content:  content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, response.NewInternalError("Failed to create comment", err)
	}

	s.metrics.IncrementCommentCreated()

	// the topic author may have been removed
	if topic.Author != nil && topic.AuthorID != authorID {
		if err := s.notifications.Notify(ctx, topic.AuthorID, domain.NotificationTypeComment, commentNotificationMessage); err != nil {
			s.logger.Warn("Failed to notify topic author", zap.String("topic_id", topic.ID.String()), zap.Error(err))
		}
	}

	created, err := s.commentRepo.FindByID(ctx, comment.ID)
	if err != nil {
		return nil, response.NewInternalError("Failed to load comment", err)
	}
	resp := dto.NewCommentResponse(created)
	return &resp, nil
}

func (s *commentServiceImpl) GetComment(ctx context.Context, commentID uuid.UUID) (*dto.CommentResponse, error) {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	resp := dto.NewCommentResponse(comment)
	return &resp, nil
}

func (s *commentServiceImpl) ListComments(ctx context.Context, topicID uuid.UUID, raw pagination.RawQuery) (*pagination.Page[dto.CommentResponse], error) {
	q, err := pagination.Parse(raw, pagination.Comments)
	if err != nil {
		return nil, err
	}
	if _, err := s.topicRepo.FindByID(ctx, topicID); err != nil {
		return nil, lookupError(err, "Topic not found", "Failed to load topic")
	}

	comments, total, err := s.commentRepo.List(ctx, topicID, q)
	if err != nil {
		return nil, response.NewInternalError("Failed to list comments", err)
	}

	items := make([]dto.CommentResponse, len(comments))
	for i := range comments {
		items[i] = dto.NewCommentResponse(&comments[i])
	}
	page := pagination.NewPage(items, total, q)
	return &page, nil
}

// UpdateComment edits the caller's own comment
func (s *commentServiceImpl) UpdateComment(ctx context.Context, actorID, commentID uuid.UUID, req *dto.UpdateCommentRequest) (*dto.CommentResponse, error) {
	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, response.NewValidationError("Comment content is required", "")
	}

	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actorID {
		return nil, response.NewForbiddenError("You are not authorized to update this comment", "")
	}
	if comment.Content == content {
		return nil, response.NewValidationError("You haven't made any changes", "")
	}

	comment.Content = content
	if err := s.commentRepo.Update(ctx, comment); err != nil {
		return nil, response.NewInternalError("Failed to update comment", err)
	}

	resp := dto.NewCommentResponse(comment)
	return &resp, nil
}

// DeleteComment removes the caller's own comment
func (s *commentServiceImpl) DeleteComment(ctx context.Context, actorID, commentID uuid.UUID) (*dto.CommentResponse, error) {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.AuthorID != actorID {
		return nil, response.NewForbiddenError("You are not authorized to delete this comment", "")
	}
	return s.deleteComment(ctx, comment)
}

// AdminDeleteComment removes any comment
func (s *commentServiceImpl) AdminDeleteComment(ctx context.Context, commentID uuid.UUID) (*dto.CommentResponse, error) {
	comment, err := s.findComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return s.deleteComment(ctx, comment)
}

func (s *commentServiceImpl) deleteComment(ctx context.Context, comment *domain.Comment) (*dto.CommentResponse, error) {
	if _, err := s.cascadeRepo.DeleteComment(ctx, comment.ID); err != nil {
		return nil, lookupError(err, "Comment not found", "Failed to delete comment")
	}
	s.metrics.RecordCascadeDeletion("comment", 0, 0, 1)

	resp := dto.NewCommentResponse(comment)
	return &resp, nil
}

func (s *commentServiceImpl) findComment(ctx context.Context, commentID uuid.UUID) (*domain.Comment, error) {
	comment, err := s.commentRepo.FindByID(ctx, commentID)
	if err != nil {
		return nil, lookupError(err, "Comment not found", "Failed to load comment")
	}
	return comment, nil
}
