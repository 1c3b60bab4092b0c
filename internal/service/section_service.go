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

// SectionService defines the interface for section business logic
type SectionService interface {
	CreateSection(ctx context.Context, req *dto.CreateSectionRequest) (*dto.SectionResponse, error)
	GetSection(ctx context.Context, sectionID uuid.UUID) (*dto.SectionResponse, error)
	ListSections(ctx context.Context, raw pagination.RawQuery) (*pagination.Page[dto.SectionResponse], error)
	UpdateSection(ctx context.Context, sectionID uuid.UUID, req *dto.UpdateSectionRequest) (*dto.SectionResponse, error)
	DeleteSection(ctx context.Context, sectionID uuid.UUID) (*dto.DeleteSectionResponse, error)
}

// sectionServiceImpl is the implementation of SectionService
type sectionServiceImpl struct {
	sectionRepo repository.SectionRepository
	cascadeRepo repository.CascadeRepository
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewSectionService creates a new instance of SectionService
func NewSectionService(
	sectionRepo repository.SectionRepository,
	cascadeRepo repository.CascadeRepository,
	m *metrics.Metrics,
	logger *zap.Logger,
) SectionService {
	return &sectionServiceImpl{
		sectionRepo: sectionRepo,
		cascadeRepo: cascadeRepo,
		metrics:     m,
		logger:      logger,
	}
}

// CreateSection creates a section with a slug derived from its title
func (s *sectionServiceImpl) CreateSection(ctx context.Context, req *dto.CreateSectionRequest) (*dto.SectionResponse, error) {
	title := strings.TrimSpace(req.Title)
	slug := slugify(title)
	if slug == "" {
		return nil, response.NewValidationError("Invalid title", "title must contain letters or digits")
	}

	if err := s.ensureUnique(ctx, title, slug, uuid.Nil); err != nil {
		return nil, err
	}

	section := &domain.Section{
		Title:       title,
		Slug:        slug,
		Description: strings.TrimSpace(req.Description),
	}
	if req.Order != nil {
		section.Order = *req.Order
	}

	if err := s.sectionRepo.Create(ctx, section); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflictError("Section with this title already exists", "")
		}
		return nil, response.NewInternalError("Failed to create section", err)
	}

	resp := dto.NewSectionResponse(section)
	return &resp, nil
}

func (s *sectionServiceImpl) GetSection(ctx context.Context, sectionID uuid.UUID) (*dto.SectionResponse, error) {
	section, err := s.sectionRepo.FindByID(ctx, sectionID)
	if err != nil {
		return nil, lookupError(err, "Section not found", "Failed to load section")
	}
	resp := dto.NewSectionResponse(section)
	return &resp, nil
}

func (s *sectionServiceImpl) ListSections(ctx context.Context, raw pagination.RawQuery) (*pagination.Page[dto.SectionResponse], error) {
	q, err := pagination.Parse(raw, pagination.Sections)
	if err != nil {
		return nil, err
	}

	sections, total, err := s.sectionRepo.List(ctx, q)
	if err != nil {
		return nil, response.NewInternalError("Failed to list sections", err)
	}

	items := make([]dto.SectionResponse, len(sections))
	for i := range sections {
		items[i] = dto.NewSectionResponse(&sections[i])
	}
	page := pagination.NewPage(items, total, q)
	return &page, nil
}

// UpdateSection applies the provided fields; a new title renews the slug
func (s *sectionServiceImpl) UpdateSection(ctx context.Context, sectionID uuid.UUID, req *dto.UpdateSectionRequest) (*dto.SectionResponse, error) {
	section, err := s.sectionRepo.FindByID(ctx, sectionID)
	if err != nil {
		return nil, lookupError(err, "Section not found", "Failed to load section")
	}

	dirty := false

	if title := trimPtr(req.Title); changed(title, section.Title) {
		slug := slugify(*title)
		if slug == "" {
			return nil, response.NewValidationError("Invalid title", "title must contain letters or digits")
		}
		if err := s.ensureUnique(ctx, *title, slug, section.ID); err != nil {
			return nil, err
		}
		section.Title = *title
		section.Slug = slug
		dirty = true
	}

	if description := trimPtr(req.Description); changed(description, section.Description) {
		section.Description = *description
		dirty = true
	}

	if req.Order != nil && *req.Order != section.Order {
		section.Order = *req.Order
		dirty = true
	}

	if !dirty {
		return nil, response.NewValidationError("You haven't made any changes", "")
	}

	if err := s.sectionRepo.Update(ctx, section); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, response.NewConflictError("Section with this title already exists", "")
		}
		return nil, response.NewInternalError("Failed to update section", err)
	}

	resp := dto.NewSectionResponse(section)
	return &resp, nil
}

// DeleteSection removes the section with all of its threads, topics and comments
func (s *sectionServiceImpl) DeleteSection(ctx context.Context, sectionID uuid.UUID) (*dto.DeleteSectionResponse, error) {
	section, result, err := s.cascadeRepo.DeleteSection(ctx, sectionID)
	if err != nil {
		return nil, lookupError(err, "Section not found", "Failed to delete section")
	}

	s.metrics.RecordCascadeDeletion("section", result.Threads, result.Topics, result.Comments)
	s.logger.Info("Section deleted",
		zap.String("section_id", section.ID.String()),
		zap.Int64("threads", result.Threads),
		zap.Int64("topics", result.Topics),
		zap.Int64("comments", result.Comments),
	)

	return &dto.DeleteSectionResponse{
		Section:         dto.NewSectionResponse(section),
		DeletedThreads:  result.Threads,
		DeletedTopics:   result.Topics,
		DeletedComments: result.Comments,
	}, nil
}

func (s *sectionServiceImpl) ensureUnique(ctx context.Context, title, slug string, excludeID uuid.UUID) error {
	exists, err := s.sectionRepo.ExistsByTitleOrSlug(ctx, title, slug, excludeID)
	if err != nil {
		return response.NewInternalError("Failed to check section title", err)
	}
	if exists {
		return response.NewConflictError("Section with this title already exists", "")
	}
	return nil
}
