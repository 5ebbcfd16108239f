package domain

import (
	"time"

	"github.com/google/uuid"
)

// Establishment groups providers under one venue. Referenced by id only;
// there is no establishment CRUD surface.
type Establishment struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider is a bookable party owned by a user account.
type Provider struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"-"`
	EstablishmentID *uuid.UUID `json:"establishment_id,omitempty"`
	DisplayName     string     `json:"display_name"`
	CreatedAt       time.Time  `json:"-"`
}

// UpsertProviderRequest is the inbound payload for provider create and update.
type UpsertProviderRequest struct {
	DisplayName     string     `json:"display_name"`
	EstablishmentID *uuid.UUID `json:"establishment_id,omitempty"`
}

func (r *UpsertProviderRequest) Validate() error {
	if len(r.DisplayName) < 2 || len(r.DisplayName) > 140 {
		return ErrInvalidDisplayName
	}
	return nil
}
