package service

import (
	"context"
	"strings"

	"koinonia/internal/models"
	"koinonia/internal/repository"
)

type AnnouncementService struct {
	announcementRepo repository.AnnouncementRepository
}

type CreateAnnouncementInput struct {
	AuthorID  uint
	Title     string
	Body      string
	Published bool
}

type UpdateAnnouncementInput struct {
	AnnouncementID uint
	Title          string
	Body           string
	Published      *bool
}

func NewAnnouncementService(announcementRepo repository.AnnouncementRepository) *AnnouncementService {
	return &AnnouncementService{announcementRepo: announcementRepo}
}

func (s *AnnouncementService) Create(ctx context.Context, in CreateAnnouncementInput) (*models.Announcement, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if strings.TrimSpace(in.Body) == "" {
		return nil, models.NewValidationError("Body is required")
	}

	announcement := &models.Announcement{
		Title:     title,
		Body:      in.Body,
		Published: in.Published,
		AuthorID:  in.AuthorID,
	}
	if err := s.announcementRepo.Create(ctx, announcement); err != nil {
		return nil, err
	}
	return s.announcementRepo.GetByID(ctx, announcement.ID)
}

// List returns published announcements for members; admins get drafts too.
func (s *AnnouncementService) List(ctx context.Context, includeDrafts bool) ([]*models.Announcement, error) {
	if includeDrafts {
		return s.announcementRepo.ListAll(ctx)
	}
	return s.announcementRepo.ListPublished(ctx)
}

func (s *AnnouncementService) Get(ctx context.Context, id uint) (*models.Announcement, error) {
	return s.announcementRepo.GetByID(ctx, id)
}

func (s *AnnouncementService) Update(ctx context.Context, in UpdateAnnouncementInput) (*models.Announcement, error) {
	announcement, err := s.announcementRepo.GetByID(ctx, in.AnnouncementID)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		announcement.Title = title
	}
	if in.Body != "" {
		announcement.Body = in.Body
	}
	if in.Published != nil {
		announcement.Published = *in.Published
	}

	if err := s.announcementRepo.Update(ctx, announcement); err != nil {
		return nil, err
	}
	return announcement, nil
}

func (s *AnnouncementService) Delete(ctx context.Context, id uint) error {
	return s.announcementRepo.Delete(ctx, id)
}
