package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"forum-api/internal/domain"
	"forum-api/internal/dto"
	"forum-api/internal/metrics"
	"forum-api/internal/pagination"
	"forum-api/internal/repository"
	"forum-api/internal/response"
)

// TopicService defines the interface for topic business logic
type TopicService interface {
	CreateTopic(ctx context.Context, authorID, threadID uuid.UUID, req *dto.CreateTopicRequest) (*dto.TopicResponse, error)
	GetTopic(ctx context.Context, topicID uuid.UUID) (*dto.TopicResponse, error)
	ListTopics(ctx context.Context, threadID uuid.UUID, raw pagination.RawQuery) (*pagination.Page[dto.TopicResponse], error)
	UpdateTopic(ctx context.Context, actorID, topicID uuid.UUID, req *dto.UpdateTopicRequest) (*dto.TopicResponse, error)
	DeleteTopic(ctx context.Context, actorID, topicID uuid.UUID) (*dto.DeleteTopicResponse, error)

	CloseTopic(ctx context.Context, topicID uuid.UUID) (*dto.TopicResponse, error)
	OpenTopic(ctx context.Context, topicID uuid.UUID) (*dto.TopicResponse, error)
	TogglePin(ctx context.Context, topicID uuid.UUID) (*dto.TopicResponse, error)
	AdminDeleteTopic(ctx context.Context, topicID uuid.UUID) (*dto.DeleteTopicResponse, error)
}

// topicServiceImpl is the implementation of TopicService
type topicServiceImpl struct {
	topicRepo   repository.TopicRepository
	threadRepo  repository.ThreadRepository
	cascadeRepo repository.CascadeRepository
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewTopicService creates a new instance of TopicService
func NewTopicService(
	topicRepo repository.TopicRepository,
	threadRepo repository.ThreadRepository,
	cascadeRepo repository.CascadeRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) TopicService {
	return &topicServiceImpl{
		topicRepo:   topicRepo,
		threadRepo:  threadRepo,
		cascadeRepo: cascadeRepo,
		metrics:     m,
		logger:      logger,
	}
}

// CreateTopic posts a topic in a thread
func (s *topicServiceImpl) CreateTopic(ctx context.Context, authorID, threadID uuid.UUID, req *dto.CreateTopicRequest) (*dto.TopicResponse, error) {
	if _, err := s.threadRepo.FindByID(ctx, threadID); err != nil {
		return nil, lookupError(err, "Thread not found", "Failed to load thread")
	}

	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return nil, response.NewValidationError("Title and content are required", "")
	}
	slug := slugify(title)
	if slug == "" {
		return nil, response.NewValidationError("Invalid title", "title must contain letters or digits")
	}
	if err := s.ensureUnique(ctx, threadID, slug, uuid.Nil); err != nil {
		return nil, err
	}

	topic := &domain.Topic{
		ThreadID: threadID,
		AuthorID: authorID,
		Title:    title,
		Slug:     slug,
		Content:  content,
	}
	if err := s.topicRepo.Create(ctx, topic); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflictError("A topic with this title already exists in this thread", "")
		}
		return nil, response.NewInternalError("Failed to create topic", err)
	}

	s.metrics.IncrementTopicCreated()

	created, err := s.topicRepo.FindByID(ctx, topic.ID)
	if err != nil {
		return nil, response.NewInternalError("Failed to load topic", err)
	}
	resp := dto.NewTopicResponse(created)
	return &resp, nil
}

// GetTopic returns a topic and counts the view
func (s *topicServiceImpl) GetTopic(ctx context.Context, topicID uuid.UUID) (*dto.TopicResponse, error) {
	topic, err := s.findTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	if err := s.topicRepo.IncrementViews(ctx, topic.ID); err != nil {
		s.logger.Warn("Failed to count topic view", zap.String("topic_id", topic.ID.String()), zap.Error(err))
	} else {
		topic.Views++
	}

	resp := dto.NewTopicResponse(topic)
	return &resp, nil
}

// ListTopics pages over a thread's topics, pinned first
func (s *topicServiceImpl) ListTopics(ctx context.Context, threadID uuid.UUID, raw pagination.RawQuery) (*pagination.Page[dto.TopicResponse], error) {
	q, err := pagination.Parse(raw, pagination.Topics)
	if err != nil {
		return nil, err
	}
	if _, err := s.threadRepo.FindByID(ctx, threadID); err != nil {
		return nil, lookupError(err, "Thread not found", "Failed to load thread")
	}

	topics, total, err := s.topicRepo.List(ctx, threadID, q)
	if err != nil {
		return nil, response.NewInternalError("Failed to list topics", err)
	}

	items := make([]dto.TopicResponse, len(topics))
	for i := range topics {
		items[i] = dto.NewTopicResponse(&topics[i])
	}
	page := pagination.NewPage(items, total, q)
	return &page, nil
}

// UpdateTopic edits the title or content; only the author may do so
func (s *topicServiceImpl) UpdateTopic(ctx context.Context, actorID, topicID uuid.UUID, req *dto.UpdateTopicRequest) (*dto.TopicResponse, error) {
	if req.Title == nil && req.Content == nil {
		return nil, response.NewValidationError("Title or content are required", "")
	}

	topic, err := s.findTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic.AuthorID != actorID {
		return nil, response.NewForbiddenError("You are not authorized to update this topic", "")
	}

	dirty := false

	if title := trimPtr(req.Title); changed(title, topic.Title) {
		slug := slugify(*title)
		if slug == "" {
			return nil, response.NewValidationError("Invalid title", "title must contain letters or digits")
		}
		if slug != topic.Slug {
			if err := s.ensureUnique(ctx, topic.ThreadID, slug, topic.ID); err != nil {
				return nil, err
			}
		}
		topic.Title = *title
		topic.Slug = slug
		dirty = true
	}

	if content := trimPtr(req.Content); changed(content, topic.Content) {
		if *content == "" {
			return nil, response.NewValidationError("Content cannot be empty", "")
		}
		topic.Content = *content
		dirty = true
	}

	if !dirty {
		return nil, response.NewValidationError("You haven't made any changes", "")
	}

	if err := s.topicRepo.Update(ctx, topic); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflictError("A topic with this title already exists in this thread", "")
		}
		return nil, response.NewInternalError("Failed to update topic", err)
	}

	resp := dto.NewTopicResponse(topic)
	return &resp, nil
}

// DeleteTopic removes the caller's own topic with its comments
func (s *topicServiceImpl) DeleteTopic(ctx context.Context, actorID, topicID uuid.UUID) (*dto.DeleteTopicResponse, error) {
	topic, err := s.findTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic.AuthorID != actorID {
		return nil, response.NewForbiddenError("You are not authorized to delete this topic", "")
	}
	return s.deleteTopic(ctx, topic)
}

// CloseTopic stops new comments on a topic
func (s *topicServiceImpl) CloseTopic(ctx context.Context, topicID uuid.UUID) (*dto.TopicResponse, error) {
	topic, err := s.findTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if topic.Closed {
		return nil, response.NewInvalidStateError("Topic is already closed", "")
	}
	if err := s.setFlag(ctx, topic.ID, repository.TopicFlagClosed, false, "Topic is already closed"); err != nil {
		return nil, err
	}
	topic.Closed = true
	return topicResponse(topic), nil
}

// OpenTopic accepts comments on a closed topic again
func (s *topicServiceImpl) OpenTopic(ctx context.Context, topicID uuid.UUID) (*dto.TopicResponse, error) {
	topic, err := s.findTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if !topic.Closed {
		return nil, response.NewInvalidStateError("Topic is already opened", "")
	}
	if err := s.setFlag(ctx, topic.ID, repository.TopicFlagClosed, true, "Topic is already opened"); err != nil {
		return nil, err
	}
	topic.Closed = false
	return topicResponse(topic), nil
}

// TogglePin flips the pinned flag
func (s *topicServiceImpl) TogglePin(ctx context.Context, topicID uuid.UUID) (*dto.TopicResponse, error) {
	topic, err := s.findTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if err := s.setFlag(ctx, topic.ID, repository.TopicFlagPinned, topic.Pinned, "Topic pin changed, reload and try again"); err != nil {
		return nil, err
	}
	topic.Pinned = !topic.Pinned
	return topicResponse(topic), nil
}

// AdminDeleteTopic removes any topic with its comments
func (s *topicServiceImpl) AdminDeleteTopic(ctx context.Context, topicID uuid.UUID) (*dto.DeleteTopicResponse, error) {
	topic, err := s.findTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	return s.deleteTopic(ctx, topic)
}

func (s *topicServiceImpl) deleteTopic(ctx context.Context, topic *domain.Topic) (*dto.DeleteTopicResponse, error) {
	_, result, err := s.cascadeRepo.DeleteTopic(ctx, topic.ID)
	if err != nil {
		return nil, lookupError(err, "Topic not found", "Failed to delete topic")
	}

	s.metrics.RecordCascadeDeletion("topic", 0, 0, result.Comments)
	s.logger.Info("Topic deleted",
		zap.String("topic_id", topic.ID.String()),
		zap.Int64("comments", result.Comments),
	)

	return &dto.DeleteTopicResponse{
		Topic:           dto.NewTopicResponse(topic),
		DeletedComments: result.Comments,
	}, nil
}

// setFlag flips one flag away from current; staleMessage answers a topic
// that another request changed first
func (s *topicServiceImpl) setFlag(ctx context.Context, topicID uuid.UUID, flag repository.TopicFlag, current bool, staleMessage string) error {
	err := s.topicRepo.SetFlag(ctx, topicID, flag, current, !current)
	if errors.Is(err, repository.ErrFlagChanged) {
		return response.NewInvalidStateError(staleMessage, "")
	}
	if err != nil {
		return lookupError(err, "Topic not found", "Failed to update topic")
	}
	return nil
}

func topicResponse(topic *domain.Topic) *dto.TopicResponse {
	resp := dto.NewTopicResponse(topic)
	return &resp
}

func (s *topicServiceImpl) findTopic(ctx context.Context, topicID uuid.UUID) (*domain.Topic, error) {
	topic, err := s.topicRepo.FindByID(ctx, topicID)
	if err != nil {
		return nil, lookupError(err, "Topic not found", "Failed to load topic")
	}
	return topic, nil
}

func (s *topicServiceImpl) ensureUnique(ctx context.Context, threadID uuid.UUID, slug string, excludeID uuid.UUID) error {
	exists, err := s.topicRepo.ExistsBySlugInThread(ctx, threadID, slug, excludeID)
	if err != nil {
		return response.NewInternalError("Failed to check topic title", err)
	}
	if exists {
		return response.NewConflictError("A topic with this title already exists in this thread", "")
	}
	return nil
}
