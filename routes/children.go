package routes

import (
	"katiopa-backend/handlers/children"
	"katiopa-backend/middleware"

	"github.com/gin-gonic/gin"
)

func ChildrenRoutes(r *gin.Engine) {
	childrenRoutes := r.Group("/children")
	childrenRoutes.Use(middleware.JWTAuth())
	{
		childrenRoutes.GET("/", children.GetChildren)
		childrenRoutes.POST("/", children.CreateChild)
		childrenRoutes.PUT("/:childId", children.UpdateChild)
		childrenRoutes.DELETE("/:childId", children.DeleteChild)
		childrenRoutes.POST("/:childId/avatar", children.UploadChildAvatar)
	}
}
