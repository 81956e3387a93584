// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"
	"github.com/talentlens/console/internal/models"
	"github.com/talentlens/console/internal/upload"
)

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// ProviderHandler exposes the provider catalog
type ProviderHandler interface {
	HandleListProviders(c echo.Context) error
}

// WorkspaceHandler handles the upload workflow of console workspaces
type WorkspaceHandler interface {
	HandleCreateWorkspace(c echo.Context) error
	HandleGetWorkspace(c echo.Context) error
	HandleDeleteWorkspace(c echo.Context) error
	HandleSetMode(c echo.Context) error
	HandleSelectFiles(c echo.Context) error
	HandleSetFolder(c echo.Context) error
	HandleDispatch(c echo.Context) error
	HandleImport(c echo.Context) error
}

// ResumeHandler proxies the ranked resume list
type ResumeHandler interface {
	HandleListResumes(c echo.Context) error
	HandleGetResume(c echo.Context) error
	HandleDeleteResume(c echo.Context) error
}

// JobRequirementHandler proxies job requirement management
type JobRequirementHandler interface {
	HandleCreateJobRequirement(c echo.Context) error
	HandleGetActiveJobRequirement(c echo.Context) error
	HandleListJobRequirements(c echo.Context) error
	HandleGetJobRequirement(c echo.Context) error
	HandleUpdateJobRequirement(c echo.Context) error
	HandleActivateJobRequirement(c echo.Context) error
	HandleDeleteJobRequirement(c echo.Context) error
}

// SettingsHandler proxies the AI provider settings
type SettingsHandler interface {
	HandleGetSettings(c echo.Context) error
	HandleUpdateSettings(c echo.Context) error
	HandleTestConnection(c echo.Context) error
}

// WebSocketHandler streams workspace events
type WebSocketHandler interface {
	HandleWebSocket(c echo.Context) error
}

// WorkspaceManager defines the workspace registry
// This allows mocking in tests
type WorkspaceManager interface {
	Create() *upload.Workflow
	Get(id string) (*upload.Workflow, error)
	Delete(id string) error
}

// ResumeBackend is the part of the backend client used by the resume proxy
type ResumeBackend interface {
	ListResumes(ctx context.Context) ([]models.Resume, error)
	GetResume(ctx context.Context, id int64) (*models.Resume, error)
	DeleteResume(ctx context.Context, id int64) error
}

// JobRequirementBackend is the part of the backend client used by the job requirement proxy
type JobRequirementBackend interface {
	CreateJobRequirement(ctx context.Context, req models.JobRequirement) (*models.JobRequirement, error)
	ActiveJobRequirement(ctx context.Context) (*models.JobRequirement, error)
	ListJobRequirements(ctx context.Context) ([]models.JobRequirement, error)
	GetJobRequirement(ctx context.Context, id int64) (*models.JobRequirement, error)
	UpdateJobRequirement(ctx context.Context, id int64, req models.JobRequirement) (*models.JobRequirement, error)
	ActivateJobRequirement(ctx context.Context, id int64) error
	DeleteJobRequirement(ctx context.Context, id int64) error
}

// SettingsBackend is the part of the backend client used by the settings proxy
type SettingsBackend interface {
	Settings(ctx context.Context) (*models.AISettings, error)
	UpdateSettings(ctx context.Context, settings models.AISettings) (string, error)
	TestConnection(ctx context.Context, provider models.Provider) (*models.ConnectionStatus, error)
}
