package domain

import "errors"

// Sentinel errors used throughout the application.
// Handlers translate these to HTTP status codes via a single mapError function;
// the delivery pipeline classifies the sender errors to decide retry behavior.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")

	// Booking.
	ErrSlotTaken        = errors.New("slot already taken")
	ErrPastStartTime    = errors.New("cannot book in the past")
	ErrOutsideWorkHours = errors.New("outside provider work hours")
	ErrInvalidStartTime = errors.New("starts_at_iso must be an RFC 3339 timestamp")
	ErrNaiveStartTime   = errors.New("starts_at_iso must carry a UTC offset")
	ErrUnknownTimezone  = errors.New("unknown IANA timezone")
	ErrInvalidDate      = errors.New("date must be formatted YYYY-MM-DD")
	ErrMissingProvider  = errors.New("provider_id must not be empty")
	ErrMissingStartsAt  = errors.New("starts_at_iso must not be empty")
	ErrMissingTimezone  = errors.New("tz must not be empty")

	// Schedule management.
	ErrInvalidWeekday     = errors.New("weekday must be between 0 (Sunday) and 6 (Saturday)")
	ErrInvalidTimeFormat  = errors.New("invalid time format, expected HH:MM")
	ErrInvalidBlockSpan   = errors.New("start_time must be earlier than end_time")
	ErrInvalidDisplayName = errors.New("display_name must be between 2 and 140 characters")
	ErrDuplicateWorkHour  = errors.New("work-hour block already exists")

	// Auth.
	ErrEmailTaken          = errors.New("email already registered")
	ErrInvalidEmail        = errors.New("email must be a valid address")
	ErrInvalidPassword     = errors.New("password must be at least 8 characters")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")

	// Notification delivery.
	ErrTransport         = errors.New("transport error contacting sender")
	ErrUpstreamRetryable = errors.New("sender returned a retryable status")
	ErrUpstreamRejected  = errors.New("sender rejected the message")
	ErrCircuitOpen       = errors.New("circuit breaker is open")
	ErrQueueFull         = errors.New("dispatch queue is at capacity, try again later")
)
