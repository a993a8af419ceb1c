package models

import (
	"time"
)

// Subscription is the single source of truth for what a user has paid
// for. At most one row exists per user: checkout and admin updates
// upsert on user_id, provider webhooks match on stripe_subscription_id.
// Rows are never deleted, cancellation flips is_active and sets end_date.
type Subscription struct {
	ID                   string     `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`
	UserID               string     `json:"userId" gorm:"type:uuid;not null;uniqueIndex"`
	PlanID               PlanID     `json:"planId" gorm:"type:varchar(20);not null"`
	IsActive             bool       `json:"isActive"`
	StripeSubscriptionId *string    `json:"stripeSubscriptionId" gorm:"uniqueIndex"`
	StripePriceId        string     `json:"stripePriceId"`
	CurrentPeriodEnd     *time.Time `json:"currentPeriodEnd"`
	StartDate            time.Time  `json:"startDate"`
	EndDate              *time.Time `json:"endDate"`
	CreatedAt            time.Time  `json:"createdAt"`
	UpdatedAt            time.Time  `json:"updatedAt"`
}

// SubscriptionUpdate is the payload accepted by the administrative
// subscription endpoint.
type SubscriptionUpdate struct {
	Email  string `json:"email" binding:"required,email"`
	PlanID string `json:"planId" binding:"required"`
}
