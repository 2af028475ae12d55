package service

import (
	"context"
	"net/mail"
	"strings"

	"koinonia/internal/models"
	"koinonia/internal/repository"
)

type ContactService struct {
	contactRepo repository.ContactRepository
}

type SubmitContactInput struct {
	Name     string
	Email    string
	Message  string
	SenderID *uint
}

func NewContactService(contactRepo repository.ContactRepository) *ContactService {
	return &ContactService{contactRepo: contactRepo}
}

func (s *ContactService) Submit(ctx context.Context, in SubmitContactInput) (*models.ContactMessage, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, models.NewValidationError("Name is required")
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		return nil, models.NewValidationError("A valid email is required")
	}
	message := strings.TrimSpace(in.Message)
	if message == "" {
		return nil, models.NewValidationError("Message is required")
	}
	if len(message) > 5000 {
		return nil, models.NewValidationError("Message too long (max 5000 characters)")
	}

	cm := &models.ContactMessage{
		Name:     name,
		Email:    in.Email,
		Message:  message,
		SenderID: in.SenderID,
	}
	if err := s.contactRepo.Create(ctx, cm); err != nil {
		return nil, err
	}
	return cm, nil
}

func (s *ContactService) List(ctx context.Context) ([]*models.ContactMessage, error) {
	return s.contactRepo.List(ctx)
}

func (s *ContactService) MarkRead(ctx context.Context, id uint) (*models.ContactMessage, error) {
	if err := s.contactRepo.MarkRead(ctx, id); err != nil {
		return nil, err
	}
	return s.contactRepo.GetByID(ctx, id)
}

func (s *ContactService) UnreadCount(ctx context.Context) (int64, error) {
	return s.contactRepo.UnreadCount(ctx)
}
