package models

import (
	"time"
)

// WebhookEvent records a Stripe event id once it has been applied.
// Stripe delivery is at-least-once, so the same event can arrive more
// than once; a matching row means the delivery is acknowledged without
// touching the subscription again.
type WebhookEvent struct {
	ID          string    `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	EventID     string    `json:"eventId" gorm:"uniqueIndex;not null"`
	Type        string    `json:"type"`
	ProcessedAt time.Time `json:"processedAt"`
}
