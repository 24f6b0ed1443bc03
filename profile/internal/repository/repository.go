package repository

import (
	"context"
	"errors"

	"github.com/Dev-Yatrik-Patel/Task-Management-System-MicroServices/profile/internal/domain"
)

var (
	// ErrNotFound indicates an entity was not located.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate indicates a unique constraint rejected the write.
	ErrDuplicate = errors.New("repository: duplicate")
)

// ProfileRepository persists user profiles keyed by auth user id.
type ProfileRepository interface {
	CreateProfile(ctx context.Context, profile *domain.Profile) error
	GetProfileByAuthUser(ctx context.Context, authUserID int64) (*domain.Profile, error)
	UpdateProfileName(ctx context.Context, authUserID int64, fullName string) (*domain.Profile, error)
	DeleteProfileByAuthUser(ctx context.Context, authUserID int64) error
}
