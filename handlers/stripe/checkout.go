package stripe

import (
	"net/http"
	"os"

	"katiopa-backend/db"
	"katiopa-backend/models"
	"katiopa-backend/utils"

	"github.com/gin-gonic/gin"
	stripe "github.com/stripe/stripe-go/v82"
	session "github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/customer"
)

// CheckoutInput is the payload accepted by the checkout endpoint.
type CheckoutInput struct {
	PlanID string `json:"planId" binding:"required"`
}

// @Summary Create a Stripe Checkout session
// @Description Start a Stripe payment for the chosen plan. The subscription record is only written once the webhook confirms the payment.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param input body stripe.CheckoutInput true "Chosen plan"
// @Security BearerAuth
// @Success 200 {object} map[string]string "sessionId: ID of the Stripe Checkout session, url: Stripe Checkout URL"
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: User or plan not found"
// @Failure 500 {object} map[string]string "error: Stripe error or server error"
// @Router /subscriptions/checkout [post]
func CreateCheckoutSession(c *gin.Context) {
	stripe.Key = os.Getenv("STRIPE_SECRET_KEY")

	userID, exists := c.Get("user_id")
	if !exists {
		utils.LogError(nil, "User not authenticated in CreateCheckoutSession")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input CheckoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	plan, err := models.GetPlanByID(models.PlanID(input.PlanID))
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Plan not found in CreateCheckoutSession")
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}
	if plan.StripePriceId == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "This plan cannot be purchased"})
		return
	}

	var payer models.User
	if err := db.DB.First(&payer, "id = ?", userID).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "User not found in CreateCheckoutSession")
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if payer.StripeCustomerId != "" {
		// The stored customer may have been deleted on the Stripe side
		_, err := customer.Get(payer.StripeCustomerId, nil)
		if err != nil {
			payer.StripeCustomerId = ""
		}
	}
	if payer.StripeCustomerId == "" {
		custParams := &stripe.CustomerParams{
			Email: stripe.String(payer.Email),
		}
		cust, err := customer.New(custParams)
		if err != nil {
			utils.LogErrorWithUser(userID, err, "Error creating the Stripe customer in CreateCheckoutSession")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the Stripe customer"})
			return
		}
		db.DB.Model(&payer).Update("stripe_customer_id", cust.ID)
		payer.StripeCustomerId = cust.ID
	}

	successURL := os.Getenv("CHECKOUT_SUCCESS_URL")
	if successURL == "" {
		successURL = "https://app.katiopa.com/subscription/success"
	}
	cancelURL := os.Getenv("CHECKOUT_CANCEL_URL")
	if cancelURL == "" {
		cancelURL = "https://app.katiopa.com/subscription/cancel"
	}

	// The metadata is the only link between the asynchronous webhook
	// events and our own identifiers.
	metadata := map[string]string{
		"userId":  payer.ID,
		"planId":  string(plan.ID),
		"priceId": plan.StripePriceId,
	}

	params := &stripe.CheckoutSessionParams{
		Customer:           stripe.String(payer.StripeCustomerId),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		Mode:               stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(plan.StripePriceId),
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		Metadata:   metadata,
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: metadata,
		},
	}

	s, err := session.New(params)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Error creating the Stripe session in CreateCheckoutSession")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the Stripe session"})
		return
	}

	utils.LogSuccessWithUser(userID, "Stripe checkout session created successfully in CreateCheckoutSession")
	c.JSON(http.StatusOK, gin.H{"sessionId": s.ID, "url": s.URL})
}
