// Package features derives what a user is allowed to do from their
// subscription record. Everything that gates content or child-account
// creation goes through Resolve so the rules live in one place.
package features

import (
	"errors"

	"katiopa-backend/db"
	"katiopa-backend/models"
	"katiopa-backend/utils"

	"gorm.io/gorm"
)

// Set is the effective capability set of a user.
type Set struct {
	PlanID           models.PlanID `json:"planId"`
	Features         []string      `json:"features"`
	MaxChildAccounts int           `json:"maxChildAccounts"`
}

func freeSet() Set {
	plan := models.FreePlan()
	return Set{
		PlanID:           plan.ID,
		Features:         plan.Features,
		MaxChildAccounts: plan.MaxChildAccounts,
	}
}

// Resolve returns the capability set for a user. No subscription row or
// an inactive row resolves to the free tier. An expired
// current_period_end is NOT checked here: expiry reaches us through the
// Stripe webhooks, a local clock check would be a second source of truth.
func Resolve(userID string) Set {
	var sub models.Subscription
	err := db.DB.Where("user_id = ?", userID).First(&sub).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			utils.LogErrorWithUser(userID, err, "Error loading the subscription in Resolve, falling back to the free tier")
		}
		return freeSet()
	}

	if !sub.IsActive {
		return freeSet()
	}

	plan, err := models.GetPlanByID(sub.PlanID)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Subscription references an unknown plan, falling back to the free tier")
		return freeSet()
	}

	return Set{
		PlanID:           plan.ID,
		Features:         plan.Features,
		MaxChildAccounts: plan.MaxChildAccounts,
	}
}

// Has reports whether the set carries a feature tag.
func (s Set) Has(feature string) bool {
	for _, f := range s.Features {
		if f == feature {
			return true
		}
	}
	return false
}

// CanAddChild reports whether one more child account fits under the
// plan's cap.
func (s Set) CanAddChild(currentCount int) bool {
	if s.MaxChildAccounts == models.UnlimitedChildAccounts {
		return true
	}
	return currentCount < s.MaxChildAccounts
}
