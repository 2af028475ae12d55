package server

import (
	"time"

	"koinonia/internal/models"
	"koinonia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetEvents handles GET /api/events.
// Upcoming events by default; ?all=true returns past events too.
func (s *Server) GetEvents(c *fiber.Ctx) error {
	var (
		events []*models.Event
		err    error
	)
	if c.Query("all") == "true" {
		events, err = s.eventService.ListAll(c.Context())
	} else {
		events, err = s.eventService.ListUpcoming(c.Context())
	}
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"events": events,
		"count":  len(events),
	})
}

// GetEvent handles GET /api/events/:id
func (s *Server) GetEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	event, err := s.eventService.Get(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(event)
}

// CreateEvent handles POST /api/admin/events
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Location    string     `json:"location"`
		StartsAt    time.Time  `json:"starts_at"`
		EndsAt      *time.Time `json:"ends_at"`
		ImageURL    string     `json:"image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	event, err := s.eventService.Create(c.Context(), service.CreateEventInput{
		CreatedByID: userID,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(event)
}

// UpdateEvent handles PUT /api/admin/events/:id
func (s *Server) UpdateEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title       string     `json:"title"`
		Description string     `json:"description"`
		Location    string     `json:"location"`
		StartsAt    *time.Time `json:"starts_at"`
		EndsAt      *time.Time `json:"ends_at"`
		ImageURL    string     `json:"image_url"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	event, svcErr := s.eventService.Update(c.Context(), service.UpdateEventInput{
		EventID:     id,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
		ImageURL:    req.ImageURL,
	})
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.JSON(event)
}

// DeleteEvent handles DELETE /api/admin/events/:id
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.eventService.Delete(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
