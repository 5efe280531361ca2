package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/vedran77/huddle/internal/domain"
	"github.com/vedran77/huddle/internal/repository"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists")
	ErrNotProfileOwner = errors.New("only the owner can change a profile")
	ErrEmptyPatch      = errors.New("nothing to update")
)

type ProfileService struct {
	notifierHolder
	profileRepo repository.ProfileRepository
	now         func() time.Time
}

func NewProfileService(profileRepo repository.ProfileRepository) *ProfileService {
	return &ProfileService{profileRepo: profileRepo, now: time.Now}
}

// Create stores the profile row of the calling user.
func (s *ProfileService) Create(ctx context.Context, userID uuid.UUID, profile *domain.Profile) (*domain.Profile, error) {
	if profile.ID != userID {
		return nil, ErrNotProfileOwner
	}

	now := s.now()
	profile.Email = normalizeEmail(profile.Email)
	profile.CreatedAt = now
	profile.UpdatedAt = now

	if err := s.profileRepo.Create(ctx, profile); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrProfileExists
		}
		return nil, fmt.Errorf("creating profile: %w", err)
	}

	s.notify(domain.TableUserProfiles, domain.ChangeInsert, profile)
	return profile, nil
}

func (s *ProfileService) Get(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	profile, err := s.profileRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

func (s *ProfileService) Update(ctx context.Context, userID, id uuid.UUID, patch domain.ProfilePatch) (*domain.Profile, error) {
	if userID != id {
		return nil, ErrNotProfileOwner
	}
	if patch.IsEmpty() {
		return nil, ErrEmptyPatch
	}

	profile, err := s.profileRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}

	s.notify(domain.TableUserProfiles, domain.ChangeUpdate, profile)
	return profile, nil
}
