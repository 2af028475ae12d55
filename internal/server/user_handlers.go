package server

import (
	"koinonia/internal/models"
	"koinonia/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile handles GET /api/users/me
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	profile, err := s.profileService.GetProfile(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(profile)
}

// UpdateMyProfile handles PUT /api/users/me
func (s *Server) UpdateMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var req struct {
		DisplayName  string `json:"display_name"`
		AvatarURL    string `json:"avatar_url"`
		MemberStatus string `json:"member_status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	profile, err := s.profileService.UpdateProfile(c.Context(), service.UpdateProfileInput{
		UserID:       userID,
		DisplayName:  req.DisplayName,
		AvatarURL:    req.AvatarURL,
		MemberStatus: req.MemberStatus,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(profile)
}

// GetAllUsers handles GET /api/users (admin only)
func (s *Server) GetAllUsers(c *fiber.Ctx) error {
	profiles, err := s.profileService.ListProfiles(c.Context())
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"users": profiles,
		"count": len(profiles),
	})
}

// GetUserProfile handles GET /api/users/:id
func (s *Server) GetUserProfile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	profile, err := s.profileService.GetProfile(c.Context(), id)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(profile)
}

// PromoteToAdmin handles POST /api/users/:id/promote-admin (admin only)
func (s *Server) PromoteToAdmin(c *fiber.Ctx) error {
	return s.setUserRole(c, string(models.RoleAdmin))
}

// DemoteFromAdmin handles POST /api/users/:id/demote-admin (admin only)
func (s *Server) DemoteFromAdmin(c *fiber.Ctx) error {
	return s.setUserRole(c, string(models.RoleMember))
}

func (s *Server) setUserRole(c *fiber.Ctx, role string) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	// Admins cannot change their own role; another admin must do it.
	if actorID := c.Locals("userID").(uint); actorID == id {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("You cannot change your own role"))
	}

	profile, svcErr := s.profileService.SetRole(c.Context(), id, role)
	if svcErr != nil {
		return respondServiceError(c, svcErr)
	}

	return c.JSON(profile)
}
