package users

import (
	"net/http"

	"katiopa-backend/db"
	"katiopa-backend/features"
	"katiopa-backend/models"
	"katiopa-backend/utils"

	"github.com/gin-gonic/gin"
)

// @Summary Get the connected user's profile
// @Description Return the profile of the connected user with their resolved feature set
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "user: profile, features: capability set"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: User not found"
// @Router /users/me [get]
func GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "User not found in GetMe")
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.Password = ""

	c.JSON(http.StatusOK, gin.H{
		"user":     user,
		"features": features.Resolve(user.ID),
	})
}

// @Summary Update the connected user's profile
// @Description Update the first and last name of the connected user
// @Tags users
// @Accept json
// @Produce json
// @Param user body models.UserUpdate true "Profile fields"
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: User not found"
// @Router /users/me [put]
func UpdateMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.UserUpdate
	if !utils.ValidateRequestBody(c, &input) {
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "User not found in UpdateMe")
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	updates := map[string]interface{}{}
	if input.FirstName != "" {
		updates["first_name"] = input.FirstName
	}
	if input.LastName != "" {
		updates["last_name"] = input.LastName
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
			utils.LogErrorWithUser(userID, err, "Error updating the profile in UpdateMe")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating the profile"})
			return
		}
	}

	user.Password = ""

	utils.LogSuccessWithUser(userID, "Profile updated successfully in UpdateMe")
	c.JSON(http.StatusOK, user)
}
