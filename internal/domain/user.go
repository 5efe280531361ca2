package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Profile is the row in user_profiles that extends a User. The extended fields
// stay nil until the user fills them in.
type Profile struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	DisplayName *string   `json:"display_name"`
	Bio         *string   `json:"bio"`
	Career      *string   `json:"career"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProfilePatch is a partial profile update. Nil fields are left untouched.
type ProfilePatch struct {
	DisplayName *string `json:"display_name,omitempty"`
	Bio         *string `json:"bio,omitempty"`
	Career      *string `json:"career,omitempty"`
}

func (p ProfilePatch) IsEmpty() bool {
	return p.DisplayName == nil && p.Bio == nil && p.Career == nil
}

// ApplyTo merges the non-nil fields of the patch into profile.
func (p ProfilePatch) ApplyTo(profile *Profile) {
	if p.DisplayName != nil {
		profile.DisplayName = p.DisplayName
	}
	if p.Bio != nil {
		profile.Bio = p.Bio
	}
	if p.Career != nil {
		profile.Career = p.Career
	}
}
