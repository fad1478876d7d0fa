package handler

import "github.com/gin-gonic/gin"

// Register mounts the API routes on api
func Register(api *gin.RouterGroup, tree *TreeHandler, export *ExportHandler, ws *WSHandler) {
	// Building
	api.POST("/tree", tree.BuildFromRecords)
	api.POST("/entries", tree.BuildFromEntries)
	api.GET("/settings", tree.GetSettings)

	// Sessions
	api.GET("/sessions/:id", tree.GetSession)
	api.DELETE("/sessions/:id", tree.DeleteSession)
	api.PUT("/sessions/:id/visibility", tree.UpdateVisibility)
	api.GET("/sessions/:id/text", tree.GetText)
	api.GET("/sessions/:id/markdown", export.GetMarkdown)
	api.GET("/sessions/:id/markdown/raw", export.GetRaw)

	api.GET("/ws", ws.HandleWS)
}
