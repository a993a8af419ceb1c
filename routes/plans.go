package routes

import (
	"katiopa-backend/handlers/plans"

	"github.com/gin-gonic/gin"
)

func PlansRoutes(r *gin.Engine) {
	r.GET("/plans", plans.GetPlans)
	r.GET("/plans/:planId", plans.GetPlan)
}
