package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetPlanByID(t *testing.T) {
	plan, err := GetPlanByID(PlanPro)
	assert.NoError(t, err)
	assert.Equal(t, PlanPro, plan.ID)
	assert.Equal(t, UnlimitedChildAccounts, plan.MaxChildAccounts)

	_, err = GetPlanByID("GOLD")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestGetPlanByPriceID(t *testing.T) {
	family, err := GetPlanByID(PlanFamily)
	assert.NoError(t, err)

	plan, err := GetPlanByPriceID(family.StripePriceId)
	assert.NoError(t, err)
	assert.Equal(t, PlanFamily, plan.ID)

	_, err = GetPlanByPriceID("price_unknown")
	assert.ErrorIs(t, err, ErrPlanNotFound)

	// The free tier has no price id; an empty lookup must not match it
	_, err = GetPlanByPriceID("")
	assert.ErrorIs(t, err, ErrPlanNotFound)
}

func TestFreePlan(t *testing.T) {
	plan := FreePlan()
	assert.Equal(t, PlanFree, plan.ID)
	assert.Equal(t, 0, plan.PriceMonthly)
	assert.Contains(t, plan.Features, FeatureBasicGames)
	assert.NotContains(t, plan.Features, FeatureAllThemes)
}

func TestEveryPaidPlanHasAPriceID(t *testing.T) {
	for _, plan := range AllPlans() {
		if plan.PriceMonthly > 0 {
			assert.NotEmpty(t, plan.StripePriceId, "plan %s has no Stripe price id", plan.ID)
		}
	}
}
