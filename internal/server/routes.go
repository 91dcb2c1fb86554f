package server

import (
	"github.com/labstack/echo/v4"

	"github.com/loftline/propgraph/internal/server/middleware"
	"github.com/loftline/propgraph/internal/server/routes"
)

func RegisterRoutes(e *echo.Echo) {
	// Health check route
	e.GET("/health", func(c echo.Context) error {
		return c.String(200, "OK")
	})

	apiRoutes := e.Group("/api", middleware.AuthMiddleware)

	// Graph routes
	apiRoutes.GET("/graphs", routes.GetGraphsHandler)
	apiRoutes.POST("/graphs", routes.CreateGraphHandler, middleware.RequirePermission("graph.create"))
	apiRoutes.GET("/graphs/:id", routes.GetGraphHandler)
	apiRoutes.DELETE("/graphs/:id", routes.DeleteGraphHandler, middleware.RequirePermission("graph.delete"))

	// Update routes
	apiRoutes.POST("/graphs/:id/updates", routes.QueueUpdateHandler, middleware.RequirePermission("graph.update"))
	apiRoutes.POST("/graphs/:id/merge", routes.MergeGraphHandler, middleware.RequirePermission("graph.merge"))

	// Attachment routes
	apiRoutes.POST("/graphs/:id/attachments", routes.UploadAttachmentHandler, middleware.RequirePermission("graph.update"))
	apiRoutes.GET("/graphs/:id/attachments", routes.GetAttachmentHandler)

	// Analysis routes
	apiRoutes.GET("/graphs/:id/relationships", routes.GetRelationshipsHandler)
}
