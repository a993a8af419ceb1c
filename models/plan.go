package models

import (
	"errors"
)

type PlanID string

const (
	PlanFree   PlanID = "FREE"
	PlanFamily PlanID = "FAMILY"
	PlanPro    PlanID = "PRO"
)

// Feature tags consumed by the feature gate and the content handlers.
const (
	FeatureBasicGames       = "basic-games"
	FeatureAllThemes        = "all-themes"
	FeatureProgressTracking = "progress-tracking"
	FeatureOfflineMode      = "offline-mode"
)

// UnlimitedChildAccounts marks a plan with no child-account cap.
const UnlimitedChildAccounts = -1

// Plan is a subscription tier. The catalog is fixed at build time,
// changing a price means shipping a new deployment.
type Plan struct {
	ID               PlanID   `json:"id"`
	Name             string   `json:"name"`
	PriceMonthly     int      `json:"priceMonthly"` // cents
	StripePriceId    string   `json:"stripePriceId"`
	MaxChildAccounts int      `json:"maxChildAccounts"`
	Features         []string `json:"features"`
}

var ErrPlanNotFound = errors.New("plan not found")

var plans = []Plan{
	{
		ID:               PlanFree,
		Name:             "Découverte",
		PriceMonthly:     0,
		StripePriceId:    "",
		MaxChildAccounts: 1,
		Features:         []string{FeatureBasicGames},
	},
	{
		ID:               PlanFamily,
		Name:             "Famille",
		PriceMonthly:     499,
		StripePriceId:    "price_1QKatFamilyMonthly499",
		MaxChildAccounts: 4,
		Features:         []string{FeatureBasicGames, FeatureAllThemes, FeatureProgressTracking},
	},
	{
		ID:               PlanPro,
		Name:             "Premium",
		PriceMonthly:     999,
		StripePriceId:    "price_1QKatProMonthly999",
		MaxChildAccounts: UnlimitedChildAccounts,
		Features:         []string{FeatureBasicGames, FeatureAllThemes, FeatureProgressTracking, FeatureOfflineMode},
	},
}

func AllPlans() []Plan {
	return plans
}

func FreePlan() Plan {
	plan, _ := GetPlanByID(PlanFree)
	return plan
}

func GetPlanByID(id PlanID) (Plan, error) {
	for _, plan := range plans {
		if plan.ID == id {
			return plan, nil
		}
	}
	return Plan{}, ErrPlanNotFound
}

func GetPlanByPriceID(priceID string) (Plan, error) {
	if priceID == "" {
		return Plan{}, ErrPlanNotFound
	}
	for _, plan := range plans {
		if plan.StripePriceId == priceID {
			return plan, nil
		}
	}
	return Plan{}, ErrPlanNotFound
}
