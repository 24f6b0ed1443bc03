package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/apperr"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/pkg/identity"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/profile/internal/domain"
	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/profile/internal/repository"
)

var (
	// ErrProfileNotFound means the caller has no profile yet.
	ErrProfileNotFound  = apperr.New(apperr.KindNotFound, "User profile not found")
	// ErrProfileExists is returned when the caller already has a profile.
	ErrProfileExists    = apperr.New(apperr.KindConflict, "Profile has already been created.")
	// ErrFullNameRequired rejects blank names.
	ErrFullNameRequired = apperr.New(apperr.KindValidation, "Full name is required")
)

// Service manages the caller's own profile. Every operation is keyed by the
// subject of the caller's claims, so no cross-user access path exists.
type Service struct {
	profiles repository.ProfileRepository
	logger   *slog.Logger
}

// New constructs a Service.
func New(profiles repository.ProfileRepository, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return Service{profiles: profiles, logger: logger}
}

// Get returns the caller's profile.
func (s Service) Get(ctx context.Context, caller identity.Claims) (*domain.Profile, error) {
	profile, err := s.profiles.GetProfileByAuthUser(ctx, caller.Subject)
	if err != nil {
		return nil, s.mapErr("get profile", err)
	}
	return profile, nil
}

// Create stores the caller's profile; a second create fails with ErrProfileExists.
func (s Service) Create(ctx context.Context, caller identity.Claims, fullName string) (*domain.Profile, error) {
	if strings.TrimSpace(fullName) == "" {
		return nil, ErrFullNameRequired
	}
	if _, err := s.profiles.GetProfileByAuthUser(ctx, caller.Subject); err == nil {
		return nil, ErrProfileExists
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("lookup profile: %w", err)
	}
	profile := &domain.Profile{AuthUserID: caller.Subject, FullName: fullName}
	if err := s.profiles.CreateProfile(ctx, profile); err != nil {
		return nil, s.mapErr("create profile", err)
	}
	s.logger.Info("profile created", "user_id", caller.Subject)
	return profile, nil
}

// Update renames the caller's profile.
func (s Service) Update(ctx context.Context, caller identity.Claims, fullName string) (*domain.Profile, error) {
	if strings.TrimSpace(fullName) == "" {
		return nil, ErrFullNameRequired
	}
	profile, err := s.profiles.UpdateProfileName(ctx, caller.Subject, fullName)
	if err != nil {
		return nil, s.mapErr("update profile", err)
	}
	return profile, nil
}

// Delete removes the caller's profile.
func (s Service) Delete(ctx context.Context, caller identity.Claims) error {
	if err := s.profiles.DeleteProfileByAuthUser(ctx, caller.Subject); err != nil {
		return s.mapErr("delete profile", err)
	}
	s.logger.Info("profile deleted", "user_id", caller.Subject)
	return nil
}

func (s Service) mapErr(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return ErrProfileNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrProfileExists
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}
