package themes

import (
	"net/http"

	"katiopa-backend/features"
	"katiopa-backend/models"

	"github.com/gin-gonic/gin"
)

// ThemeWithAccess is a catalog theme annotated with the caller's access.
// Locked themes stay in the list so the app can show them greyed out.
type ThemeWithAccess struct {
	models.Theme
	Locked bool `json:"locked"`
}

// @Summary List the learning themes
// @Description Return the theme catalog, flagging the themes locked for the connected user's plan
// @Tags themes
// @Produce json
// @Security BearerAuth
// @Success 200 {array} themes.ThemeWithAccess
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /themes [get]
func GetThemes(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	userFeatures := features.Resolve(userID.(string))

	catalog := models.AllThemes()
	result := make([]ThemeWithAccess, 0, len(catalog))
	for _, theme := range catalog {
		locked := theme.RequiredFeature != "" && !userFeatures.Has(theme.RequiredFeature)
		result = append(result, ThemeWithAccess{Theme: theme, Locked: locked})
	}

	c.JSON(http.StatusOK, result)
}
