package handlers

import (
	"net/http"

	"lexdraft-backend/middleware"

	"github.com/gin-gonic/gin"
)

// Handlers groups every HTTP handler mounted under /api/v1
type Handlers struct {
	Auth        *AuthHandler
	Agents      *AgentHandler
	Generation  *GenerationHandler
	Cases       *CaseHandler
	Documents   *DocumentHandler
	Assertions  *AssertionHandler
	Sources     *SourceHandler
	Renderings  *RenderingHandler
	Audit       *AuditHandler
	Attachments *AttachmentHandler
}

// RegisterRoutes mounts the API. Everything except login requires a bearer token.
func RegisterRoutes(r *gin.Engine, h Handlers, auth *middleware.AuthMiddleware) {
	RegisterValidators()

	api := r.Group("/api/v1")
	api.POST("/auth/login", h.Auth.Login)

	protected := api.Group("")
	protected.Use(auth.RequireAuth())

	protected.GET("/agents", h.Agents.ListAgents)
	protected.GET("/agents/:id", h.Agents.GetAgent)

	cases := protected.Group("/cases")
	{
		cases.POST("", h.Cases.CreateCase)
		cases.GET("", h.Cases.ListCases)
		cases.GET("/:id", h.Cases.GetCase)
		cases.PATCH("/:id", h.Cases.UpdateCase)
		cases.DELETE("/:id", h.Cases.DeleteCase)
		cases.GET("/:id/documents", h.Documents.ListCaseDocuments)
		cases.POST("/:id/attachments", h.Attachments.Upload)
		cases.GET("/:id/attachments", h.Attachments.ListAttachments)
	}

	documents := protected.Group("/documents")
	{
		documents.POST("", h.Documents.CreateDocument)
		documents.GET("/:id", h.Documents.GetDocument)
		documents.PATCH("/:id/status", h.Documents.UpdateStatus)
		documents.POST("/:id/versions", h.Documents.CreateVersion)
		documents.GET("/:id/versions", h.Documents.ListVersions)
		documents.POST("/:id/generate", h.Generation.Generate)
	}

	versions := protected.Group("/document-versions")
	{
		versions.GET("/:id", h.Documents.GetVersion)
		versions.DELETE("/:id", h.Documents.DeleteVersion)
		versions.PUT("/:id", h.Documents.MutateVersion)
		versions.PATCH("/:id", h.Documents.MutateVersion)
		versions.GET("/:id/assertions", h.Assertions.ListByVersion)
		versions.GET("/:id/validate", h.Assertions.ValidateVersion)
		versions.POST("/:id/render", h.Renderings.RenderVersion)
		versions.GET("/:id/render/:format", h.Renderings.GetRendering)
		versions.GET("/:id/renderings", h.Renderings.ListRenderings)
	}

	assertions := protected.Group("/assertions")
	{
		assertions.POST("", h.Assertions.CreateAssertion)
		assertions.POST("/bulk", h.Assertions.BulkCreateAssertions)
		assertions.GET("/:id", h.Assertions.GetAssertion)
		assertions.GET("/:id/sources", h.Assertions.ListSources)
		assertions.POST("/:id/sources/:source_id", h.Assertions.LinkSource)
		assertions.DELETE("/:id/sources/:source_id", h.Assertions.UnlinkSource)
		assertions.GET("/:id/validate", h.Assertions.ValidateAssertion)
	}

	sources := protected.Group("/sources")
	{
		sources.POST("", h.Sources.CreateSource)
		sources.POST("/bulk", h.Sources.BulkCreateSources)
		sources.GET("/search", h.Sources.Search)
		sources.GET("/types", h.Sources.Types)
		sources.GET("/stats", h.Sources.Stats)
		sources.GET("/by-reference", h.Sources.GetByReference)
		sources.GET("/:id", h.Sources.GetSource)
	}

	renderings := protected.Group("/renderings")
	{
		renderings.POST("/:id/regenerate", h.Renderings.RegenerateRendering)
		renderings.POST("/:id/export", h.Renderings.ExportRendering)
		renderings.DELETE("/:id", h.Renderings.DeleteRendering)
	}

	audit := protected.Group("/audit")
	{
		audit.GET("/documents/:id", h.Audit.DocumentTrail)
		audit.GET("/entity/:type/:id", h.Audit.EntityHistory)
		audit.GET("/me", h.Audit.MyActivity)
	}

	attachments := protected.Group("/attachments")
	{
		attachments.GET("/:id", h.Attachments.GetAttachment)
		attachments.GET("/:id/download", h.Attachments.Download)
	}
}

// Health handles GET /health
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "lexdraft-backend",
	})
}
