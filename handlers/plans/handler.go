package plans

import (
	"net/http"

	"katiopa-backend/models"

	"github.com/gin-gonic/gin"
)

// @Summary List the subscription plans
// @Description Return the full plan catalog
// @Tags plans
// @Produce json
// @Success 200 {array} models.Plan
// @Router /plans [get]
func GetPlans(c *gin.Context) {
	c.JSON(http.StatusOK, models.AllPlans())
}

// @Summary Get a subscription plan
// @Description Return one plan of the catalog by its identifier
// @Tags plans
// @Produce json
// @Param planId path string true "ID of the plan"
// @Success 200 {object} models.Plan
// @Failure 404 {object} map[string]string "error: Plan not found"
// @Router /plans/{planId} [get]
func GetPlan(c *gin.Context) {
	planID := c.Param("planId")

	plan, err := models.GetPlanByID(models.PlanID(planID))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Plan not found"})
		return
	}

	c.JSON(http.StatusOK, plan)
}
