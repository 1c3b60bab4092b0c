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

// ThreadService defines the interface for thread business logic.
// Threads are addressed through their section.
type ThreadService interface {
	CreateThread(ctx context.Context, req *dto.CreateThreadRequest) (*dto.ThreadResponse, error)
	GetThread(ctx context.Context, sectionID, threadID uuid.UUID) (*dto.ThreadResponse, error)
	ListAllThreads(ctx context.Context, raw pagination.RawQuery) (*pagination.Page[dto.ThreadResponse], error)
	ListSectionThreads(ctx context.Context, sectionID uuid.UUID, raw pagination.RawQuery) (*pagination.Page[dto.ThreadResponse], error)
	UpdateThread(ctx context.Context, sectionID, threadID uuid.UUID, req *dto.UpdateThreadRequest) (*dto.ThreadResponse, error)
	DeleteThread(ctx context.Context, sectionID, threadID uuid.UUID) (*dto.DeleteThreadResponse, error)
}

// threadServiceImpl is the implementation of ThreadService
type threadServiceImpl struct {
	threadRepo  repository.ThreadRepository
	sectionRepo repository.SectionRepository
	cascadeRepo repository.CascadeRepository
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewThreadService creates a new instance of ThreadService
func NewThreadService(
	threadRepo repository.ThreadRepository,
	sectionRepo repository.SectionRepository,
	cascadeRepo repository.CascadeRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) ThreadService {
	return &threadServiceImpl{
		threadRepo:  threadRepo,
		sectionRepo: sectionRepo,
		cascadeRepo: cascadeRepo,
		metrics:     m,
		logger:      logger,
	}
}

// CreateThread creates a thread in an existing section
func (s *threadServiceImpl) CreateThread(ctx context.Context, req *dto.CreateThreadRequest) (*dto.ThreadResponse, error) {
	section, err := s.sectionRepo.FindByID(ctx, req.SectionID)
	if err != nil {
		return nil, lookupError(err, "Section not found", "Failed to load section")
	}

	title := strings.TrimSpace(req.Title)
	slug := slugify(title)
	if slug == "" {
		return nil, response.NewValidationError("Invalid title", "title must contain letters or digits")
	}
	if err := s.ensureUnique(ctx, title, uuid.Nil); err != nil {
		return nil, err
	}

	thread := &domain.Thread{
		SectionID:   section.ID,
		Title:       title,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
	}
	if req.Order != nil {
		thread.Order = *req.Order
	}

	if err := s.threadRepo.Create(ctx, thread); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflictError("Thread with this title already exists", "")
		}
		return nil, response.NewInternalError("Failed to create thread", err)
	}
	thread.Section = section

	resp := dto.NewThreadResponse(thread)
	return &resp, nil
}

// GetThread returns the thread only when it belongs to the section
func (s *threadServiceImpl) GetThread(ctx context.Context, sectionID, threadID uuid.UUID) (*dto.ThreadResponse, error) {
	thread, err := s.threadRepo.FindInSection(ctx, sectionID, threadID)
	if err != nil {
		return nil, lookupError(err, "Thread not found", "Failed to load thread")
	}
	resp := dto.NewThreadResponse(thread)
	return &resp, nil
}

func (s *threadServiceImpl) ListAllThreads(ctx context.Context, raw pagination.RawQuery) (*pagination.Page[dto.ThreadResponse], error) {
	return s.list(ctx, uuid.Nil, raw)
}

func (s *threadServiceImpl) ListSectionThreads(ctx context.Context, sectionID uuid.UUID, raw pagination.RawQuery) (*pagination.Page[dto.ThreadResponse], error) {
	if _, err := s.sectionRepo.FindByID(ctx, sectionID); err != nil {
		return nil, lookupError(err, "Section not found", "Failed to load section")
	}
	return s.list(ctx, sectionID, raw)
}

func (s *threadServiceImpl) list(ctx context.Context, sectionID uuid.UUID, raw pagination.RawQuery) (*pagination.Page[dto.ThreadResponse], error) {
	q, err := pagination.Parse(raw, pagination.Threads)
	if err != nil {
		return nil, err
	}

	threads, total, err := s.threadRepo.List(ctx, sectionID, q)
	if err != nil {
		return nil, response.NewInternalError("Failed to list threads", err)
	}

	items := make([]dto.ThreadResponse, len(threads))
	for i := range threads {
		items[i] = dto.NewThreadResponse(&threads[i])
	}
	page := pagination.NewPage(items, total, q)
	return &page, nil
}

// UpdateThread applies the provided fields. A sectionId moves the thread,
// carrying the threads counters of both sections along.
func (s *threadServiceImpl) UpdateThread(ctx context.Context, sectionID, threadID uuid.UUID, req *dto.UpdateThreadRequest) (*dto.ThreadResponse, error) {
	thread, err := s.threadRepo.FindInSection(ctx, sectionID, threadID)
	if err != nil {
		return nil, lookupError(err, "Thread not found", "Failed to load thread")
	}

	fromSectionID := thread.SectionID
	dirty := false

	if req.SectionID != nil && *req.SectionID != thread.SectionID {
		target, err := s.sectionRepo.FindByID(ctx, *req.SectionID)
		if err != nil {
			return nil, lookupError(err, "Section not found", "Failed to load section")
		}
		thread.SectionID = target.ID
		thread.Section = target
		dirty = true
	}

	if title := trimPtr(req.Title); changed(title, thread.Title) {
		slug := slugify(*title)
		if slug == "" {
			return nil, response.NewValidationError("Invalid title", "title must contain letters or digits")
		}
		if err := s.ensureUnique(ctx, *title, thread.ID); err != nil {
			return nil, err
		}
		thread.Title = *title
		thread.Slug = slug
		dirty = true
	}

	if description := trimPtr(req.Description); changed(description, thread.Description) {
		thread.Description = *description
		dirty = true
	}

	if req.Order != nil && *req.Order != thread.Order {
		thread.Order = *req.Order
		dirty = true
	}

	if !dirty {
		return nil, response.NewValidationError("You haven't made any changes", "")
	}

	if err := s.threadRepo.Update(ctx, thread, fromSectionID); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflictError("Thread with this title already exists", "")
		}
		return nil, response.NewInternalError("Failed to update thread", err)
	}

	resp := dto.NewThreadResponse(thread)
	return &resp, nil
}

// DeleteThread removes the thread with its topics and comments
func (s *threadServiceImpl) DeleteThread(ctx context.Context, sectionID, threadID uuid.UUID) (*dto.DeleteThreadResponse, error) {
	if _, err := s.threadRepo.FindInSection(ctx, sectionID, threadID); err != nil {
		return nil, lookupError(err, "Thread not found", "Failed to load thread")
	}

	thread, result, err := s.cascadeRepo.DeleteThread(ctx, threadID)
	if err != nil {
		return nil, lookupError(err, "Thread not found", "Failed to delete thread")
	}

	s.metrics.RecordCascadeDeletion("thread", 0, result.Topics, result.Comments)
	s.logger.Info("Thread deleted",
		zap.String("thread_id", thread.ID.String()),
		zap.Int64("topics", result.Topics),
		zap.Int64("comments", result.Comments),
	)

	return &dto.DeleteThreadResponse{
		Thread:          dto.NewThreadResponse(thread),
		DeletedTopics:   result.Topics,
		DeletedComments: result.Comments,
	}, nil
}

func (s *threadServiceImpl) ensureUnique(ctx context.Context, title string, excludeID uuid.UUID) error {
	exists, err := s.threadRepo.ExistsByTitle(ctx, title, excludeID)
	if err != nil {
		return response.NewInternalError("Failed to check thread title", err)
	}
	if exists {
		return response.NewConflictError("Thread with this title already exists", "")
	}
	return nil
}
