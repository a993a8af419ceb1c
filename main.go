package main

import (
	"log"
	"time"

	"katiopa-backend/db"
	_ "katiopa-backend/docs"
	"katiopa-backend/routes"
	"katiopa-backend/utils"

	"github.com/gin-gonic/gin"
)

// @title API Katiopa Backend
// @version 1.0
// @description API du backend de la plateforme éducative Katiopa
// @host localhost:8080
// @BasePath /
// @SecurityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Entrez le JWT avec le préfixe Bearer: Bearer <JWT>
func main() {

	gin.SetMode(gin.ReleaseMode)

	db.InitDB()

	// Event ids are only kept for the provider's redelivery window.
	db.PruneWebhookEvents(30 * 24 * time.Hour)

	if err := utils.InitCloudinary(); err != nil {
		log.Printf("Warning: Cloudinary initialization failed: %v", err)
		log.Println("Avatar upload will not work properly.")
	}

	r := routes.SetupRouter()

	if err := r.Run(":8080"); err != nil {
		log.Fatal("Error starting the server:", err)
	}
}
