package domain

import (
	"time"

	"github.com/google/uuid"
)

// NotificationStatus tracks the delivery lifecycle of a message.
// SENT is terminal. FAILED rows are revived back to QUEUED by the
// janitor until the attempts ceiling, after which they are inert.
type NotificationStatus string

const (
	NotificationQueued NotificationStatus = "QUEUED"
	NotificationSent   NotificationStatus = "SENT"
	NotificationFailed NotificationStatus = "FAILED"
)

func (s NotificationStatus) IsValid() bool {
	switch s {
	case NotificationQueued, NotificationSent, NotificationFailed:
		return true
	}
	return false
}

// ChannelWhatsApp is the only delivery channel the relay currently emits.
const ChannelWhatsApp = "whatsapp"

// NotificationMessage is a single delivery unit created by the outbox
// relay. The relay owns creation, the dispatcher owns attempt updates,
// and the janitor only promotes FAILED back to QUEUED.
type NotificationMessage struct {
	ID            int64              `json:"id"`
	Channel       string             `json:"channel"`
	Recipient     string             `json:"recipient"`
	Template      string             `json:"template"`
	Variables     map[string]any     `json:"variables"`
	Status        NotificationStatus `json:"status"`
	Attempts      int                `json:"attempts"`
	LastError     *string            `json:"last_error,omitempty"`
	AppointmentID *uuid.UUID         `json:"appointment_id,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
	SentAt        *time.Time         `json:"sent_at,omitempty"`
}
