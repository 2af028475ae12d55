package server

import (
	"time"

	"koinonia/internal/models"
	"koinonia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetRadioGuide handles GET /api/radio/guide
func (s *Server) GetRadioGuide(c *fiber.Ctx) error {
	programs, err := s.radioService.Guide(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"programs": programs,
		"count":    len(programs),
	})
}

// GetCurrentProgram handles GET /api/radio/current
func (s *Server) GetCurrentProgram(c *fiber.Ctx) error {
	program, err := s.radioService.Current(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"on_air":  program != nil,
		"program": program,
	})
}

// CreateRadioProgram handles POST /api/admin/radio/programs
func (s *Server) CreateRadioProgram(c *fiber.Ctx) error {
	var req struct {
		Title     string `json:"title"`
		Host      string `json:"host"`
		Weekday   int    `json:"weekday"`
		StartTime string `json:"start_time"`
		EndTime   string `json:"end_time"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	program, err := s.radioService.CreateProgram(c.Context(), service.CreateProgramInput{
		Title:     req.Title,
		Host:      req.Host,
		Weekday:   time.Weekday(req.Weekday),
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(program)
}

// UpdateRadioProgram handles PUT /api/admin/radio/programs/:id
func (s *Server) UpdateRadioProgram(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var program models.RadioProgram
	if err := c.BodyParser(&program); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}
	program.ID = id

	if err := s.radioService.UpdateProgram(c.Context(), &program); err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(program)
}

// DeleteRadioProgram handles DELETE /api/admin/radio/programs/:id
func (s *Server) DeleteRadioProgram(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.radioService.DeleteProgram(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
