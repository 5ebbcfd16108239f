package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// EventType names the domain events recorded in the outbox.
type EventType string

const (
	EventAppointmentCreated  EventType = "APPT_CREATED"
	EventAppointmentCanceled EventType = "APPT_CANCELED"
)

// Notifiable reports whether the relay materializes a notification
// message for this event type. Unknown types are still marked published
// so they cannot wedge the outbox.
func (e EventType) Notifiable() bool {
	switch e {
	case EventAppointmentCreated, EventAppointmentCanceled:
		return true
	}
	return false
}

// Template is the downstream message template name for the event,
// the lowercase form of the event type.
func (e EventType) Template() string { return strings.ToLower(string(e)) }

// OutboxEvent is one row of the transactional outbox. It is appended in
// the same transaction as the business write it describes and marked
// published exactly once by the relay. Rows are never deleted.
type OutboxEvent struct {
	ID            uuid.UUID      `json:"id"`
	AggregateType string         `json:"aggregate_type"`
	AggregateID   uuid.UUID      `json:"aggregate_id"`
	EventType     EventType      `json:"event_type"`
	Payload       map[string]any `json:"payload"`
	Headers       map[string]any `json:"headers,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	PublishedAt   *time.Time     `json:"published_at,omitempty"`
}

// AggregateAppointment is the aggregate_type for appointment events.
const AggregateAppointment = "Appointment"

// NewAppointmentEvent builds an unpublished outbox event for an appointment.
func NewAppointmentEvent(appointmentID uuid.UUID, eventType EventType, payload map[string]any) *OutboxEvent {
	return &OutboxEvent{
		ID:            uuid.New(),
		AggregateType: AggregateAppointment,
		AggregateID:   appointmentID,
		EventType:     eventType,
		Payload:       payload,
	}
}
