package domain

import "time"

// Subscriber status values. Transitions are monotonic: pending -> confirmed only.
const (
	StatusPendingConfirmation = "pending_confirmation"
	StatusConfirmed           = "confirmed"
)

// Subscriber is a newsletter recipient.
// ConfirmationToken is minted at subscription time and kept after confirmation
// so that redeeming the same link twice stays a no-op success.
type Subscriber struct {
	ID                string
	Email             string
	Name              string
	Status            string
	ConfirmationToken string
	SubscribedAt      time.Time
}

// Issue is a newsletter issue to fan out. Request-scoped, never persisted.
type Issue struct {
	Title       string
	TextContent string
	HTMLContent string
}
