package stripe

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"katiopa-backend/db"
	"katiopa-backend/models"
	"katiopa-backend/utils"
	mailsmodels "katiopa-backend/utils/mails-models"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// errInvalidPayload marks events Stripe should not retry: the payload
// itself is unusable, redelivering it would fail the same way.
var errInvalidPayload = errors.New("invalid event payload")

// checkoutSessionPayload is the slice of checkout.session.completed we
// consume. The metadata was attached by CreateCheckoutSession.
type checkoutSessionPayload struct {
	ID            string          `json:"id"`
	Subscription  string          `json:"subscription"`
	PaymentStatus string          `json:"payment_status"`
	Metadata      sessionMetadata `json:"metadata"`
}

type sessionMetadata struct {
	UserID  string `json:"userId"`
	PlanID  string `json:"planId"`
	PriceID string `json:"priceId"`
}

// subscriptionPayload is the slice of customer.subscription.* events we
// consume. Update and delete events carry no session metadata, the
// Stripe subscription id is the only reliable key at that point.
type subscriptionPayload struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	Items            struct {
		Data []struct {
			CurrentPeriodEnd int64 `json:"current_period_end"`
			Price            struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

// periodEnd returns the billing period end, wherever the API version
// put it (recent versions moved it from the subscription to its items).
func (p subscriptionPayload) periodEnd() int64 {
	if len(p.Items.Data) > 0 && p.Items.Data[0].CurrentPeriodEnd > 0 {
		return p.Items.Data[0].CurrentPeriodEnd
	}
	return p.CurrentPeriodEnd
}

func (p subscriptionPayload) priceID() string {
	if len(p.Items.Data) > 0 {
		return p.Items.Data[0].Price.ID
	}
	return ""
}

// StripeWebhookHandler receives the asynchronous billing events from
// Stripe and applies them to the subscription records. The body must be
// verified in raw form: parsing before verifying would not reproduce
// the signed bytes.
func StripeWebhookHandler(c *gin.Context) {
	const MaxBodyBytes = int64(65536)
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, MaxBodyBytes)

	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to read the request body"})
		return
	}

	secret := os.Getenv("STRIPE_WEBHOOK_SECRET")
	if secret == "" {
		utils.LogError(nil, "STRIPE_WEBHOOK_SECRET not configured")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Webhook secret not configured"})
		return
	}

	sig := c.GetHeader("Stripe-Signature")
	event, err := webhook.ConstructEvent(payload, sig, secret)
	if err != nil {
		utils.LogError(err, "Stripe signature verification failed")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Stripe signature verification failed"})
		return
	}

	// Stripe delivers at least once; an already-processed id is
	// acknowledged without touching the subscription again.
	if alreadyProcessed(event.ID) {
		c.JSON(http.StatusOK, gin.H{"received": true, "message": "Event already processed"})
		return
	}

	var handlerErr error
	switch event.Type {
	case "checkout.session.completed":
		handlerErr = handleCheckoutSessionCompleted(event)
	case "customer.subscription.updated":
		handlerErr = handleSubscriptionUpdated(event)
	case "customer.subscription.deleted":
		handlerErr = handleSubscriptionDeleted(event)
	default:
		c.JSON(http.StatusOK, gin.H{"received": true, "message": "Event ignored"})
		return
	}

	if handlerErr != nil {
		if errors.Is(handlerErr, errInvalidPayload) {
			// A 4xx, so Stripe does not retry an unfixable payload
			utils.LogError(handlerErr, "Rejected Stripe event "+event.ID)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event payload"})
			return
		}
		// A 5xx makes Stripe redeliver the event later
		utils.LogError(handlerErr, "Error processing Stripe event "+event.ID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error processing the event"})
		return
	}

	markProcessed(event)
	c.JSON(http.StatusOK, gin.H{"received": true})
}

func handleCheckoutSessionCompleted(event stripe.Event) error {
	var session checkoutSessionPayload
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return fmt.Errorf("%w: parsing checkout session: %v", errInvalidPayload, err)
	}

	if session.Metadata.UserID == "" || session.Metadata.PlanID == "" {
		return fmt.Errorf("%w: checkout session without userId/planId metadata", errInvalidPayload)
	}

	plan, err := models.GetPlanByID(models.PlanID(session.Metadata.PlanID))
	if err != nil {
		return fmt.Errorf("%w: unknown plan %s", errInvalidPayload, session.Metadata.PlanID)
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", session.Metadata.UserID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: no user %s for checkout session", errInvalidPayload, session.Metadata.UserID)
		}
		return err
	}

	priceID := session.Metadata.PriceID
	if priceID == "" {
		priceID = plan.StripePriceId
	}

	var stripeSubID *string
	if session.Subscription != "" {
		stripeSubID = &session.Subscription
	}

	// The session payload carries no billing period; one month is
	// assumed until the first customer.subscription.updated corrects it.
	now := time.Now()
	periodEnd := now.AddDate(0, 1, 0)

	sub := models.Subscription{
		UserID:               user.ID,
		PlanID:               plan.ID,
		IsActive:             true,
		StripeSubscriptionId: stripeSubID,
		StripePriceId:        priceID,
		CurrentPeriodEnd:     &periodEnd,
		StartDate:            now,
		EndDate:              nil,
	}

	// One row per user: a new checkout overwrites the previous
	// subscription record entirely.
	err = db.DB.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"plan_id", "is_active", "stripe_subscription_id",
			"stripe_price_id", "current_period_end", "start_date", "end_date",
		}),
	}).Create(&sub).Error
	if err != nil {
		return err
	}

	mailsmodels.SubscriptionActivated(user.Email, plan.Name)

	utils.LogSuccessWithUser(user.ID, "Subscription activated via checkout.session.completed")
	return nil
}

func handleSubscriptionUpdated(event stripe.Event) error {
	var payload subscriptionPayload
	if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
		return fmt.Errorf("%w: parsing subscription: %v", errInvalidPayload, err)
	}
	if payload.ID == "" {
		return fmt.Errorf("%w: subscription event without id", errInvalidPayload)
	}

	var sub models.Subscription
	if err := db.DB.First(&sub, "stripe_subscription_id = ?", payload.ID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Nothing to reconcile, likely a subscription created
			// outside this application
			utils.LogInfo("Stripe subscription " + payload.ID + " has no local record, event ignored")
			return nil
		}
		return err
	}

	updates := map[string]interface{}{
		"is_active": payload.Status == "active" || payload.Status == "trialing",
	}

	if priceID := payload.priceID(); priceID != "" {
		if plan, err := models.GetPlanByPriceID(priceID); err == nil {
			updates["plan_id"] = plan.ID
			updates["stripe_price_id"] = priceID
		} else {
			utils.LogError(nil, "Stripe subscription "+payload.ID+" uses unknown price "+priceID+", plan left unchanged")
		}
	}

	if end := payload.periodEnd(); end > 0 {
		updates["current_period_end"] = time.Unix(end, 0)
	}

	err := db.DB.Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", payload.ID).
		Updates(updates).Error
	if err != nil {
		return err
	}

	utils.LogSuccessWithUser(sub.UserID, "Subscription reconciled via customer.subscription.updated")
	return nil
}

func handleSubscriptionDeleted(event stripe.Event) error {
	var payload subscriptionPayload
	if err := json.Unmarshal(event.Data.Raw, &payload); err != nil {
		return fmt.Errorf("%w: parsing subscription: %v", errInvalidPayload, err)
	}
	if payload.ID == "" {
		return fmt.Errorf("%w: subscription event without id", errInvalidPayload)
	}

	result := db.DB.Model(&models.Subscription{}).
		Where("stripe_subscription_id = ?", payload.ID).
		Updates(map[string]interface{}{
			"is_active": false,
			"end_date":  time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// Unknown handle: acknowledge without creating anything
		utils.LogInfo("Stripe subscription " + payload.ID + " has no local record, deletion ignored")
		return nil
	}

	utils.LogSuccess("Subscription canceled via customer.subscription.deleted")
	return nil
}

func alreadyProcessed(eventID string) bool {
	if eventID == "" {
		return false
	}
	var seen models.WebhookEvent
	return db.DB.First(&seen, "event_id = ?", eventID).Error == nil
}

// markProcessed records the event id best effort. A failed insert only
// costs a redundant re-apply on redelivery, which is safe because every
// transition is an overwrite, not an increment.
func markProcessed(event stripe.Event) {
	if event.ID == "" {
		return
	}
	record := models.WebhookEvent{
		EventID:     event.ID,
		Type:        string(event.Type),
		ProcessedAt: time.Now(),
	}
	if err := db.DB.Create(&record).Error; err != nil {
		utils.LogError(err, "Error recording the processed webhook event "+event.ID)
	}
}
