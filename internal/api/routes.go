// routes.go - Route registration helpers
// This file provides a clean way to register all API routes
package api

import (
	"github.com/labstack/echo/v4"
	"github.com/talentlens/console/internal/backend"
	"github.com/talentlens/console/internal/config"
	"github.com/talentlens/console/internal/storage"
	"github.com/talentlens/console/internal/upload"
	"go.uber.org/zap"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store      storage.Store
	Workspaces *upload.Manager
	Backend    *backend.Client
	Catalog    *config.ProviderCatalog
	Logger     *zap.Logger
	Version    string
}

// Handlers holds all handler instances
type Handlers struct {
	Health         HealthHandler
	Providers      ProviderHandler
	Workspace      WorkspaceHandler
	Resumes        ResumeHandler
	JobRequirement JobRequirementHandler
	Settings       SettingsHandler
	Events         *Hub
}

// NewHandlers creates all handler instances and connects workspace events
// to the websocket hub
func NewHandlers(deps *Dependencies) *Handlers {
	hub := NewHub(deps.Workspaces, deps.Logger)
	deps.Workspaces.OnChange(hub.PublishState)
	deps.Workspaces.OnResults(hub.PublishResults)

	return &Handlers{
		Health:         NewHealthHandler(deps.Version, deps.Backend.BaseURL()),
		Providers:      NewProviderHandler(deps.Catalog),
		Workspace:      NewWorkspaceHandler(deps.Workspaces, deps.Store, deps.Catalog, deps.Logger),
		Resumes:        NewResumeHandler(deps.Backend),
		JobRequirement: NewJobRequirementHandler(deps.Backend),
		Settings:       NewSettingsHandler(deps.Backend, deps.Catalog),
		Events:         hub,
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)
	apiGroup.GET("/providers", handlers.Providers.HandleListProviders)

	// Upload workspaces
	ws := apiGroup.Group("/workspaces")
	ws.POST("", handlers.Workspace.HandleCreateWorkspace)
	ws.GET("/:id", handlers.Workspace.HandleGetWorkspace)
	ws.DELETE("/:id", handlers.Workspace.HandleDeleteWorkspace)
	ws.PUT("/:id/mode", handlers.Workspace.HandleSetMode)
	ws.POST("/:id/files", handlers.Workspace.HandleSelectFiles)
	ws.PUT("/:id/folder", handlers.Workspace.HandleSetFolder)
	ws.POST("/:id/dispatch", handlers.Workspace.HandleDispatch)
	ws.POST("/:id/import", handlers.Workspace.HandleImport)
	ws.GET("/:id/ws", handlers.Events.HandleWebSocket)

	// Ranked resumes
	resumes := apiGroup.Group("/resumes")
	resumes.GET("", handlers.Resumes.HandleListResumes)
	resumes.GET("/:id", handlers.Resumes.HandleGetResume)
	resumes.DELETE("/:id", handlers.Resumes.HandleDeleteResume)

	// Job requirements
	jobs := apiGroup.Group("/job-requirements")
	jobs.POST("", handlers.JobRequirement.HandleCreateJobRequirement)
	jobs.GET("", handlers.JobRequirement.HandleListJobRequirements)
	jobs.GET("/active", handlers.JobRequirement.HandleGetActiveJobRequirement)
	jobs.GET("/:id", handlers.JobRequirement.HandleGetJobRequirement)
	jobs.PUT("/:id", handlers.JobRequirement.HandleUpdateJobRequirement)
	jobs.PUT("/:id/activate", handlers.JobRequirement.HandleActivateJobRequirement)
	jobs.DELETE("/:id", handlers.JobRequirement.HandleDeleteJobRequirement)

	// Admin settings
	settings := apiGroup.Group("/admin/settings")
	settings.GET("", handlers.Settings.HandleGetSettings)
	settings.PUT("", handlers.Settings.HandleUpdateSettings)
	settings.GET("/test/:provider", handlers.Settings.HandleTestConnection)
}

// SetupMiddleware configures common middleware
func SetupMiddleware(e *echo.Echo, showDetails bool) {
	// Use custom error handler
	e.HTTPErrorHandler = ErrorHandler
	showErrorDetails = showDetails
}
