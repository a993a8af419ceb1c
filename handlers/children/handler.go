package children

import (
	"net/http"

	"katiopa-backend/db"
	"katiopa-backend/features"
	"katiopa-backend/models"
	"katiopa-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// @Summary List the child accounts
// @Description Return all the child profiles of the connected parent
// @Tags children
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.ChildAccount
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /children [get]
func GetChildren(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var childAccounts []models.ChildAccount
	err := db.DB.Where("user_id = ?", userID).Order("created_at ASC").Find(&childAccounts).Error
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Error fetching the child accounts in GetChildren")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching the child accounts"})
		return
	}

	c.JSON(http.StatusOK, childAccounts)
}

// @Summary Create a child account
// @Description Create a child profile for the connected parent, within the plan's limit
// @Tags children
// @Accept json
// @Produce json
// @Param child body models.ChildAccountCreate true "Child information"
// @Security BearerAuth
// @Success 201 {object} models.ChildAccount
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 403 {object} map[string]string "error: Child account limit reached"
// @Router /children [post]
func CreateChild(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.ChildAccountCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	userFeatures := features.Resolve(userID.(string))

	var count int64
	if err := db.DB.Model(&models.ChildAccount{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error counting the child accounts in CreateChild")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error counting the child accounts"})
		return
	}

	if !userFeatures.CanAddChild(int(count)) {
		utils.LogErrorWithUser(userID, nil, "Child account limit reached in CreateChild")
		c.JSON(http.StatusForbidden, gin.H{"error": "Child account limit reached for your plan"})
		return
	}

	child := models.ChildAccount{
		UserID:    userID.(string),
		FirstName: input.FirstName,
		BirthYear: input.BirthYear,
	}

	if err := db.DB.Create(&child).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error creating the child account in CreateChild")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the child account"})
		return
	}

	utils.LogSuccessWithUser(userID, "Child account created successfully in CreateChild")
	c.JSON(http.StatusCreated, child)
}

// @Summary Update a child account
// @Description Update a child profile owned by the connected parent
// @Tags children
// @Accept json
// @Produce json
// @Param childId path string true "ID of the child account"
// @Param child body models.ChildAccountUpdate true "Child fields"
// @Security BearerAuth
// @Success 200 {object} models.ChildAccount
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 403 {object} map[string]string "error: Not the owner"
// @Failure 404 {object} map[string]string "error: Child account not found"
// @Router /children/{childId} [put]
func UpdateChild(c *gin.Context) {
	childID := c.Param("childId")

	if _, err := uuid.Parse(childID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid child account ID"})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input models.ChildAccountUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	child, ok := loadOwnedChild(c, childID, userID)
	if !ok {
		return
	}

	updates := map[string]interface{}{}
	if input.FirstName != "" {
		updates["first_name"] = input.FirstName
	}
	if input.BirthYear != 0 {
		updates["birth_year"] = input.BirthYear
	}

	if len(updates) > 0 {
		if err := db.DB.Model(&child).Updates(updates).Error; err != nil {
			utils.LogErrorWithUser(userID, err, "Error updating the child account in UpdateChild")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating the child account"})
			return
		}
	}

	utils.LogSuccessWithUser(userID, "Child account updated successfully in UpdateChild")
	c.JSON(http.StatusOK, child)
}

// @Summary Delete a child account
// @Description Delete a child profile owned by the connected parent
// @Tags children
// @Produce json
// @Param childId path string true "ID of the child account"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Child account deleted"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 403 {object} map[string]string "error: Not the owner"
// @Failure 404 {object} map[string]string "error: Child account not found"
// @Router /children/{childId} [delete]
func DeleteChild(c *gin.Context) {
	childID := c.Param("childId")

	if _, err := uuid.Parse(childID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid child account ID"})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	child, ok := loadOwnedChild(c, childID, userID)
	if !ok {
		return
	}

	if err := db.DB.Delete(&child).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error deleting the child account in DeleteChild")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error deleting the child account"})
		return
	}

	utils.LogSuccessWithUser(userID, "Child account deleted successfully in DeleteChild")
	c.JSON(http.StatusOK, gin.H{"message": "Child account deleted"})
}

// @Summary Upload a child avatar
// @Description Upload an avatar image for a child profile owned by the connected parent
// @Tags children
// @Accept multipart/form-data
// @Produce json
// @Param childId path string true "ID of the child account"
// @Param avatar formData file true "Avatar image"
// @Security BearerAuth
// @Success 200 {object} models.ChildAccount
// @Failure 400 {object} map[string]string "error: Invalid file"
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: Child account not found"
// @Router /children/{childId}/avatar [post]
func UploadChildAvatar(c *gin.Context) {
	childID := c.Param("childId")

	if _, err := uuid.Parse(childID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid child account ID"})
		return
	}

	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	child, ok := loadOwnedChild(c, childID, userID)
	if !ok {
		return
	}

	file, err := c.FormFile("avatar")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Avatar file missing"})
		return
	}

	avatarURL, err := utils.UploadAvatar(file)
	if err != nil {
		utils.LogErrorWithUser(userID, err, "Error uploading the avatar in UploadChildAvatar")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error uploading the avatar"})
		return
	}

	if err := db.DB.Model(&child).Update("avatar_url", avatarURL).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error saving the avatar URL in UploadChildAvatar")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error saving the avatar"})
		return
	}

	child.AvatarUrl = avatarURL

	utils.LogSuccessWithUser(userID, "Avatar uploaded successfully in UploadChildAvatar")
	c.JSON(http.StatusOK, child)
}

func loadOwnedChild(c *gin.Context, childID string, userID interface{}) (models.ChildAccount, bool) {
	var child models.ChildAccount
	if err := db.DB.First(&child, "id = ?", childID).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Child account not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Child account not found"})
		return models.ChildAccount{}, false
	}

	if child.UserID != userID {
		utils.LogErrorWithUser(userID, nil, "Not authorized to manage this child account")
		c.JSON(http.StatusForbidden, gin.H{"error": "You are not authorized to manage this child account"})
		return models.ChildAccount{}, false
	}

	return child, true
}
