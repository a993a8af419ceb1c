package stripe

import (
	"errors"
	"net/http"
	"os"
	"time"

	"katiopa-backend/db"
	"katiopa-backend/models"
	"katiopa-backend/utils"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	stripeSubscription "github.com/stripe/stripe-go/v82/subscription"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// @Summary Get the connected user's subscription
// @Description Return the subscription record of the connected user
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.Subscription
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: No subscription"
// @Router /subscriptions/me [get]
func GetMySubscription(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		utils.LogError(nil, "User not authenticated in GetMySubscription")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var subscription models.Subscription
	err := db.DB.Where("user_id = ?", userID).First(&subscription).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No subscription for this user"})
			return
		}
		utils.LogErrorWithUser(userID, err, "Error fetching the subscription in GetMySubscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching the subscription"})
		return
	}

	c.JSON(http.StatusOK, subscription)
}

// @Summary Cancel the connected user's subscription
// @Description Cancel the Stripe subscription and mark the local record inactive
// @Tags subscriptions
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Subscription canceled successfully"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: No subscription"
// @Failure 500 {object} map[string]string "error: Error when canceling the Stripe subscription"
// @Router /subscriptions/me [delete]
func CancelSubscription(c *gin.Context) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	userID, exists := c.Get("user_id")
	if !exists {
		utils.LogError(nil, "User not authenticated in CancelSubscription")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var subscription models.Subscription
	err := db.DB.Where("user_id = ?", userID).First(&subscription).Error
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Subscription not found in CancelSubscription")
		c.JSON(http.StatusNotFound, gin.H{"error": "No subscription for this user"})
		return
	}

	if !subscription.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "The subscription is already inactive"})
		return
	}

	// Admin-assigned subscriptions have no Stripe handle, only the
	// local record is touched then.
	if subscription.StripeSubscriptionId != nil && *subscription.StripeSubscriptionId != "" {
		_, err = stripeSubscription.Cancel(*subscription.StripeSubscriptionId, &stripe.SubscriptionCancelParams{
			Prorate: stripe.Bool(false),
		})
		if err != nil {
			utils.LogErrorWithUser(userID, err, "Error canceling the Stripe subscription in CancelSubscription")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error when canceling the Stripe subscription"})
			return
		}
	}

	err = db.DB.Model(&subscription).Updates(map[string]interface{}{
		"is_active": false,
		"end_date":  time.Now(),
	}).Error
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Error updating the subscription in CancelSubscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error when updating the subscription"})
		return
	}

	utils.LogSuccessWithUser(userID, "Subscription canceled successfully in CancelSubscription")
	c.JSON(http.StatusOK, gin.H{"message": "Subscription canceled successfully"})
}

// @Summary Assign a subscription to a user
// @Description Administrative endpoint: assign or change a user's plan by email, without going through Stripe
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param input body models.SubscriptionUpdate true "User email and plan"
// @Security BearerAuth
// @Success 200 {object} models.Subscription
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 404 {object} map[string]string "error: User or plan not found"
// @Failure 500 {object} map[string]string "error: Server error"
// @Router /subscriptions [put]
func UpdateSubscription(c *gin.Context) {
	var input models.SubscriptionUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	plan, err := models.GetPlanByID(models.PlanID(input.PlanID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}

	var user models.User
	if err := db.DB.Where("email = ?", input.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		utils.LogError(err, "Error fetching the user in UpdateSubscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching the user"})
		return
	}

	now := time.Now()
	subscription := models.Subscription{
		UserID:        user.ID,
		PlanID:        plan.ID,
		IsActive:      plan.ID != models.PlanFree,
		StripePriceId: plan.StripePriceId,
		StartDate:     now,
		EndDate:       nil,
	}

	err = db.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_id", "is_active", "stripe_price_id", "start_date", "end_date",
		}),
	}).Create(&subscription).Error
	if err != nil {
		utils.LogError(err, "Error upserting the subscription in UpdateSubscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating the subscription"})
		return
	}

	var saved models.Subscription
	if err := db.DB.Where("user_id = ?", user.ID).First(&saved).Error; err != nil {
		utils.LogError(err, "Error reloading the subscription in UpdateSubscription")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reloading the subscription"})
		return
	}

	utils.LogSuccessWithUser(user.ID, "Subscription assigned successfully in UpdateSubscription")
	c.JSON(http.StatusOK, saved)
}
