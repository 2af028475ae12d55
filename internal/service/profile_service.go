package service

import (
	"context"

	"koinonia/internal/cache"
	"koinonia/internal/models"
	"koinonia/internal/repository"
)

type ProfileService struct {
	profileRepo repository.ProfileRepository
}

type UpdateProfileInput struct {
	UserID       uint
	DisplayName  string
	AvatarURL    string
	MemberStatus string
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo}
}

func (s *ProfileService) GetProfile(ctx context.Context, id uint) (*models.Profile, error) {
	return s.profileRepo.GetByID(ctx, id)
}

func (s *ProfileService) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	return s.profileRepo.List(ctx)
}

func (s *ProfileService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*models.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, in.UserID)
	if err != nil {
		return nil, err
	}

	const maxDisplayNameLen = 60

	if in.DisplayName != "" {
		if len(in.DisplayName) > maxDisplayNameLen {
			return nil, models.NewValidationError("Display name too long (max 60 characters)")
		}
		profile.DisplayName = in.DisplayName
	}
	if in.AvatarURL != "" {
		profile.AvatarURL = in.AvatarURL
	}
	if in.MemberStatus != "" {
		status := models.MemberStatus(in.MemberStatus)
		switch status {
		case models.MemberStatusActive, models.MemberStatusVisitor, models.MemberStatusInactive:
		default:
			return nil, models.NewValidationError("Invalid member_status")
		}
		profile.MemberStatus = status
	}

	if err := s.profileRepo.Update(ctx, profile); err != nil {
		return nil, err
	}
	cache.InvalidateProfile(ctx, profile.ID)

	return profile, nil
}

// SetRole promotes or demotes a member. Role changes are admin-gated in the
// routing layer.
func (s *ProfileService) SetRole(ctx context.Context, targetID uint, role string) (*models.Profile, error) {
	switch models.Role(role) {
	case models.RoleMember, models.RoleAdmin:
	default:
		return nil, models.NewValidationError("Invalid role")
	}

	if err := s.profileRepo.SetRole(ctx, targetID, role); err != nil {
		return nil, err
	}
	cache.InvalidateProfile(ctx, targetID)

	return s.profileRepo.GetByID(ctx, targetID)
}
