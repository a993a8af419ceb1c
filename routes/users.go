package routes

import (
	"katiopa-backend/handlers/users"
	"katiopa-backend/middleware"

	"github.com/gin-gonic/gin"
)

func UsersRoutes(r *gin.Engine) {
	userRoutes := r.Group("/users")
	userRoutes.Use(middleware.JWTAuth())
	{
		userRoutes.GET("/me", users.GetMe)
		userRoutes.PUT("/me", users.UpdateMe)
	}
}
