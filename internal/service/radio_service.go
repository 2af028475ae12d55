package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"koinonia/internal/cache"
	"koinonia/internal/models"
	"koinonia/internal/repository"
)

type RadioService struct {
	radioRepo repository.RadioRepository
	now       func() time.Time
}

type CreateProgramInput struct {
	Title     string
	Host      string
	Weekday   time.Weekday
	StartTime string
	EndTime   string
}

func NewRadioService(radioRepo repository.RadioRepository) *RadioService {
	return &RadioService{radioRepo: radioRepo, now: time.Now}
}

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func (s *RadioService) CreateProgram(ctx context.Context, in CreateProgramInput) (*models.RadioProgram, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, models.NewValidationError("Title is required")
	}
	if in.Weekday < time.Sunday || in.Weekday > time.Saturday {
		return nil, models.NewValidationError("Invalid weekday")
	}
	if !clockPattern.MatchString(in.StartTime) || !clockPattern.MatchString(in.EndTime) {
		return nil, models.NewValidationError("Times must be in HH:MM format")
	}

	program := &models.RadioProgram{
		Title:     title,
		Host:      in.Host,
		Weekday:   in.Weekday,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
	}
	if err := s.radioRepo.Create(ctx, program); err != nil {
		return nil, err
	}
	cache.Invalidate(ctx, cache.RadioGuideKey)
	return program, nil
}

func (s *RadioService) Guide(ctx context.Context) ([]*models.RadioProgram, error) {
	var programs []*models.RadioProgram
	err := cache.Aside(ctx, cache.RadioGuideKey, &programs, cache.RadioGuideTTL, func() error {
		var fetchErr error
		programs, fetchErr = s.radioRepo.List(ctx)
		return fetchErr
	})
	if err != nil {
		return nil, err
	}
	return programs, nil
}

// Current returns the program on air right now, or nil when nothing is
// scheduled. Programs whose end time is at or before their start time run
// across midnight into the following day.
func (s *RadioService) Current(ctx context.Context) (*models.RadioProgram, error) {
	now := s.now()

	today, err := s.radioRepo.ListByWeekday(ctx, now.Weekday())
	if err != nil {
		return nil, err
	}
	clock := fmt.Sprintf("%02d:%02d", now.Hour(), now.Minute())
	for _, p := range today {
		if programCovers(p, clock, false) {
			return p, nil
		}
	}

	// An overnight program that started yesterday may still be on air.
	yesterday := (now.Weekday() + 6) % 7
	carried, err := s.radioRepo.ListByWeekday(ctx, yesterday)
	if err != nil {
		return nil, err
	}
	for _, p := range carried {
		if programCovers(p, clock, true) {
			return p, nil
		}
	}

	return nil, nil
}

// programCovers reports whether the program is on air at clock time "HH:MM".
// nextDay marks that the program's scheduled weekday was yesterday.
func programCovers(p *models.RadioProgram, clock string, nextDay bool) bool {
	wraps := p.EndTime <= p.StartTime
	if nextDay {
		return wraps && clock < p.EndTime
	}
	if wraps {
		return clock >= p.StartTime
	}
	return clock >= p.StartTime && clock < p.EndTime
}

func (s *RadioService) UpdateProgram(ctx context.Context, program *models.RadioProgram) error {
	if !clockPattern.MatchString(program.StartTime) || !clockPattern.MatchString(program.EndTime) {
		return models.NewValidationError("Times must be in HH:MM format")
	}
	if err := s.radioRepo.Update(ctx, program); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.RadioGuideKey)
	return nil
}

func (s *RadioService) DeleteProgram(ctx context.Context, id uint) error {
	if err := s.radioRepo.Delete(ctx, id); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.RadioGuideKey)
	return nil
}
