package routes

import (
	"katiopa-backend/handlers/stripe"
	"katiopa-backend/middleware"

	"github.com/gin-gonic/gin"
)

func StripeRoutes(r *gin.Engine) {
	subscriptionRoutes := r.Group("/subscriptions")
	subscriptionRoutes.Use(middleware.JWTAuth())
	{
		subscriptionRoutes.POST("/checkout", stripe.CreateCheckoutSession)
		subscriptionRoutes.GET("/me", stripe.GetMySubscription)
		subscriptionRoutes.DELETE("/me", stripe.CancelSubscription)
		subscriptionRoutes.PUT("/", middleware.AdminAuth(), stripe.UpdateSubscription)
	}
	// Called by Stripe, authenticated by its signature header
	r.POST("/stripe/webhook", stripe.StripeWebhookHandler)
}
