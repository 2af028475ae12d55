package server

import (
	"koinonia/internal/models"
	"koinonia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SubmitContactMessage handles POST /api/contact.
// Open to visitors; the sender is attached when a valid JWT is present.
func (s *Server) SubmitContactMessage(c *fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Email   string `json:"email"`
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	var senderID *uint
	if userID, ok := s.optionalUserID(c); ok {
		senderID = &userID
	}

	message, err := s.contactService.Submit(c.Context(), service.SubmitContactInput{
		Name:     req.Name,
		Email:    req.Email,
		Message:  req.Message,
		SenderID: senderID,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(message)
}

// GetContactMessages handles GET /api/admin/contact-messages
func (s *Server) GetContactMessages(c *fiber.Ctx) error {
	messages, err := s.contactService.List(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"messages": messages,
		"count":    len(messages),
	})
}

// MarkContactMessageRead handles POST /api/admin/contact-messages/:id/read
func (s *Server) MarkContactMessageRead(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	message, svcErr := s.contactService.MarkRead(c.Context(), id)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.JSON(message)
}

// GetUnreadContactCount handles GET /api/admin/contact-messages/unread-count
func (s *Server) GetUnreadContactCount(c *fiber.Ctx) error {
	count, err := s.contactService.UnreadCount(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"unread": count,
	})
}
