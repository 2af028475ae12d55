package service

import (
	"context"
	"strings"
	"time"

	"koinonia/internal/models"
	"koinonia/internal/repository"
)

type EventService struct {
	eventRepo repository.EventRepository
	now       func() time.Time
}

type CreateEventInput struct {
	CreatedByID uint
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      *time.Time
	ImageURL    string
}

type UpdateEventInput struct {
	EventID     uint
	Title       string
	Description string
	Location    string
	StartsAt    *time.Time
	EndsAt      *time.Time
	ImageURL    string
}

func NewEventService(eventRepo repository.EventRepository) *EventService {
	return &EventService{eventRepo: eventRepo, now: time.Now}
}

func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.StartsAt.IsZero() {
		return nil, models.NewValidationError("starts_at is required")
	}
	if in.EndsAt != nil && in.EndsAt.Before(in.StartsAt) {
		return nil, models.NewValidationError("ends_at must not be before starts_at")
	}

	event := &models.Event{
		Title:       title,
		Description: in.Description,
		Location:    in.Location,
		StartsAt:    in.StartsAt,
		EndsAt:      in.EndsAt,
		ImageURL:    in.ImageURL,
		CreatedByID: in.CreatedByID,
	}
	if err := s.eventRepo.Create(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) ListUpcoming(ctx context.Context) ([]*models.Event, error) {
	return s.eventRepo.ListUpcoming(ctx, s.now())
}

func (s *EventService) ListAll(ctx context.Context) ([]*models.Event, error) {
	return s.eventRepo.ListAll(ctx)
}

func (s *EventService) Get(ctx context.Context, id uint) (*models.Event, error) {
	return s.eventRepo.GetByID(ctx, id)
}

func (s *EventService) Update(ctx context.Context, in UpdateEventInput) (*models.Event, error) {
	event, err := s.eventRepo.GetByID(ctx, in.EventID)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(in.Title); title != "" {
		event.Title = title
	}
	if in.Description != "" {
		event.Description = in.Description
	}
	if in.Location != "" {
		event.Location = in.Location
	}
	if in.StartsAt != nil {
		event.StartsAt = *in.StartsAt
	}
	if in.EndsAt != nil {
		event.EndsAt = in.EndsAt
	}
	if in.ImageURL != "" {
		event.ImageURL = in.ImageURL
	}
	if event.EndsAt != nil && event.EndsAt.Before(event.StartsAt) {
		return nil, models.NewValidationError("ends_at must not be before starts_at")
	}

	if err := s.eventRepo.Update(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) Delete(ctx context.Context, id uint) error {
	return s.eventRepo.Delete(ctx, id)
}
