package routes

import (
	"katiopa-backend/handlers/themes"
	"katiopa-backend/middleware"

	"github.com/gin-gonic/gin"
)

func ThemesRoutes(r *gin.Engine) {
	themeRoutes := r.Group("/themes")
	themeRoutes.Use(middleware.JWTAuth())
	{
		themeRoutes.GET("/", themes.GetThemes)
	}
}
