package server

import (
	"koinonia/internal/models"
	"koinonia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetAnnouncements handles GET /api/announcements.
// Members see published announcements; admins can pass ?include_drafts=true.
func (s *Server) GetAnnouncements(c *fiber.Ctx) error {
	includeDrafts := false
	if c.Query("include_drafts") == "true" {
		userID, ok := s.optionalUserID(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required to view drafts"))
		}
		admin, err := s.isAdmin(c, userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !admin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Admin access required to view drafts"))
		}
		includeDrafts = true
	}

	announcements, err := s.announcementService.List(c.Context(), includeDrafts)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"announcements": announcements,
		"count":         len(announcements),
	})
}

// GetAnnouncement handles GET /api/announcements/:id
func (s *Server) GetAnnouncement(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	announcement, err := s.announcementService.Get(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	// Unpublished announcements are only visible to admins
	if !announcement.Published {
		userID, ok := s.optionalUserID(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Announcement not found"))
		}
		admin, adminErr := s.isAdmin(c, userID)
		if adminErr != nil || !admin {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Announcement not found"))
		}
	}

	return c.JSON(announcement)
}

// CreateAnnouncement handles POST /api/admin/announcements
func (s *Server) CreateAnnouncement(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		Title     string `json:"title"`
		Body      string `json:"body"`
		Published *bool  `json:"published"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	published := true
	if req.Published != nil {
		published = *req.Published
	}

	announcement, err := s.announcementService.Create(c.Context(), service.CreateAnnouncementInput{
		AuthorID:  userID,
		Title:     req.Title,
		Body:      req.Body,
		Published: published,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(announcement)
}

// UpdateAnnouncement handles PUT /api/admin/announcements/:id
func (s *Server) UpdateAnnouncement(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Title     string `json:"title"`
		Body      string `json:"body"`
		Published *bool  `json:"published"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	announcement, svcErr := s.announcementService.Update(c.Context(), service.UpdateAnnouncementInput{
		AnnouncementID: id,
		Title:          req.Title,
		Body:           req.Body,
		Published:      req.Published,
	})
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.JSON(announcement)
}

// DeleteAnnouncement handles DELETE /api/admin/announcements/:id
func (s *Server) DeleteAnnouncement(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.announcementService.Delete(c.Context(), id); err != nil {
		return respondServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}
