package domain

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus tracks the lifecycle of an appointment.
// PENDING and CONFIRMED rows occupy their provider slot; CANCELED rows do not.
type AppointmentStatus string

const (
	AppointmentPending   AppointmentStatus = "PENDING"
	AppointmentConfirmed AppointmentStatus = "CONFIRMED"
	AppointmentCanceled  AppointmentStatus = "CANCELED"
)

func (s AppointmentStatus) IsValid() bool {
	switch s {
	case AppointmentPending, AppointmentConfirmed, AppointmentCanceled:
		return true
	}
	return false
}

// Occupies reports whether a row in this status holds its slot against
// other bookers.
func (s AppointmentStatus) Occupies() bool {
	return s == AppointmentPending || s == AppointmentConfirmed
}

// Appointment is a booked slot on a provider's calendar. Instants are UTC;
// the slot grid is fixed, so EndsAt is always StartsAt plus the configured
// slot duration.
type Appointment struct {
	ID         uuid.UUID         `json:"id"`
	UserID     uuid.UUID         `json:"user_id"`
	ProviderID uuid.UUID         `json:"provider_id"`
	StartsAt   time.Time         `json:"starts_at"`
	EndsAt     time.Time         `json:"ends_at"`
	Status     AppointmentStatus `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

// CreateAppointmentRequest is the inbound payload for booking a slot.
type CreateAppointmentRequest struct {
	ProviderID  uuid.UUID `json:"provider_id"`
	StartsAtISO string    `json:"starts_at_iso"`
	TZ          string    `json:"tz"`
}

func (r *CreateAppointmentRequest) Validate() error {
	if r.ProviderID == uuid.Nil {
		return ErrMissingProvider
	}
	if r.StartsAtISO == "" {
		return ErrMissingStartsAt
	}
	if r.TZ == "" {
		return ErrMissingTimezone
	}
	return nil
}
