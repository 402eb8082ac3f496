package constants

import "time"

// Database pool defaults.
const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Context keys.
const (
	ContextTokenData = "token_data"
)

// Reservation lifecycle tuning.
const (
	// SlotDurationMinutes is the length of a single bookable slot. Slots are
	// contiguous per bay: one ends exactly where the next starts.
	SlotDurationMinutes = 60

	// PendingBookingTTL is how long a pending booking may hold its slots
	// before the sweeper reclaims them.
	PendingBookingTTL = 15 * time.Minute

	// CleanupInterval is the sweeper schedule.
	CleanupInterval = time.Minute

	// CleanupSafetyTimeout force-clears the sweeper's running flag if a sweep
	// hangs; must stay below the scheduling interval to avoid permanent
	// self-lockout.
	CleanupSafetyTimeout = 50 * time.Second

	// CleanupRetryBackoff is waited before the single retry on a transient
	// storage error during a sweep.
	CleanupRetryBackoff = time.Second
)

// Payment.
const (
	Currency = "gbp"

	// MinimumChargePence is the gateway's minimum chargeable amount. Nonzero
	// totals below it are clamped up; a zero total skips the gateway entirely.
	MinimumChargePence = 30

	// WebhookTolerance bounds the age of a signed webhook timestamp.
	WebhookTolerance = 5 * time.Minute

	// WebhookEventTTL is how long processed gateway event ids are remembered
	// for deduplication.
	WebhookEventTTL = 24 * time.Hour
)
