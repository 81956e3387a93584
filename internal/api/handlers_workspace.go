// handlers_workspace.go - Upload workflow handlers
package api

import (
	"context"
	"errors"
	"mime/multipart"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
	"github.com/talentlens/console/internal/config"
	"github.com/talentlens/console/internal/models"
	"github.com/talentlens/console/internal/storage"
	"github.com/talentlens/console/internal/upload"
	"go.uber.org/zap"
)

// maxFolderIDLength bounds the folder identifier forwarded to the backend
const maxFolderIDLength = 256

// WorkspaceHandlerImpl implements the WorkspaceHandler interface
type WorkspaceHandlerImpl struct {
	workspaces WorkspaceManager
	store      storage.Store
	catalog    *config.ProviderCatalog
	log        *zap.Logger
}

// NewWorkspaceHandler creates a new workspace handler instance
func NewWorkspaceHandler(workspaces WorkspaceManager, store storage.Store, catalog *config.ProviderCatalog, log *zap.Logger) WorkspaceHandler {
	if catalog == nil {
		catalog = config.DefaultProviderCatalog()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &WorkspaceHandlerImpl{
		workspaces: workspaces,
		store:      store,
		catalog:    catalog,
		log:        log.Named("workspace"),
	}
}

// HandleCreateWorkspace starts a new workspace in single mode
func (h *WorkspaceHandlerImpl) HandleCreateWorkspace(c echo.Context) error {
	wf := h.workspaces.Create()
	return c.JSON(http.StatusCreated, wf.Snapshot())
}

// HandleGetWorkspace returns the workspace state
func (h *WorkspaceHandlerImpl) HandleGetWorkspace(c echo.Context) error {
	wf, err := h.workspace(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, wf.Snapshot())
}

// HandleDeleteWorkspace discards the workspace and its staged files
func (h *WorkspaceHandlerImpl) HandleDeleteWorkspace(c echo.Context) error {
	id := c.Param("id")
	if err := h.workspaces.Delete(id); err != nil {
		if errors.Is(err, upload.ErrWorkspaceNotFound) {
			return NewNotFoundError("workspace", id)
		}
		return NewInternalError("failed to delete workspace", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleSetMode switches the upload mode
func (h *WorkspaceHandlerImpl) HandleSetMode(c echo.Context) error {
	wf, err := h.workspace(c)
	if err != nil {
		return err
	}

	var req setModeRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	if err := wf.SetMode(req.Mode); err != nil {
		return workflowError(err, "")
	}
	return c.JSON(http.StatusOK, wf.Snapshot())
}

// HandleSelectFiles stages the multipart "files" parts and offers them to
// the workspace. A policy rejection is not an HTTP error; the reason is
// reported in the selection and in the workspace error text.
func (h *WorkspaceHandlerImpl) HandleSelectFiles(c echo.Context) error {
	wf, err := h.workspace(c)
	if err != nil {
		return err
	}

	form, err := c.MultipartForm()
	if err != nil {
		return NewBadRequestError("invalid multipart form", err)
	}
	defer form.RemoveAll()

	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	if len(headers) == 0 {
		return NewBadRequestError("no files in request", nil)
	}

	staged := make([]models.FileInfo, 0, len(headers))
	for _, fh := range headers {
		info, err := h.stage(fh)
		if err != nil {
			h.discard(staged)
			return NewInternalError("failed to stage file", err)
		}
		staged = append(staged, *info)
	}

	sel, err := wf.Select(staged)
	if err != nil {
		h.discard(staged)
		return workflowError(err, "")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"selection": sel,
		"workspace": wf.Snapshot(),
	})
}

// HandleSetFolder stores the remote folder identifier
func (h *WorkspaceHandlerImpl) HandleSetFolder(c echo.Context) error {
	wf, err := h.workspace(c)
	if err != nil {
		return err
	}

	var req setFolderRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(); err != nil {
		return err
	}

	if err := wf.SetFolderID(req.FolderID); err != nil {
		return workflowError(err, "")
	}
	return c.JSON(http.StatusOK, wf.Snapshot())
}

// HandleDispatch sends the current selection to the backend for analysis
func (h *WorkspaceHandlerImpl) HandleDispatch(c echo.Context) error {
	wf, err := h.workspace(c)
	if err != nil {
		return err
	}

	var req providerRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(h.catalog); err != nil {
		return err
	}

	results, err := wf.Dispatch(remoteContext(c), req.Provider)
	if err != nil {
		snap := wf.Snapshot()
		h.log.Info("dispatch rejected", zap.String("workspace", wf.ID()), zap.Error(err))
		return workflowError(err, snap.Error)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"results":   results,
		"workspace": wf.Snapshot(),
	})
}

// HandleImport asks the backend to import resumes from a remote folder
func (h *WorkspaceHandlerImpl) HandleImport(c echo.Context) error {
	wf, err := h.workspace(c)
	if err != nil {
		return err
	}

	var req importRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}
	if err := req.validate(h.catalog); err != nil {
		return err
	}

	if req.FolderID != nil {
		if err := wf.SetFolderID(*req.FolderID); err != nil {
			return workflowError(err, "")
		}
	}

	results, err := wf.ImportFolder(remoteContext(c), req.Provider)
	if err != nil {
		snap := wf.Snapshot()
		h.log.Info("import rejected", zap.String("workspace", wf.ID()), zap.Error(err))
		return workflowError(err, snap.Error)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"results":   results,
		"workspace": wf.Snapshot(),
	})
}

func (h *WorkspaceHandlerImpl) workspace(c echo.Context) (*upload.Workflow, error) {
	id := c.Param("id")
	wf, err := h.workspaces.Get(id)
	if err != nil {
		if errors.Is(err, upload.ErrWorkspaceNotFound) {
			return nil, NewNotFoundError("workspace", id)
		}
		return nil, NewInternalError("failed to load workspace", err)
	}
	return wf, nil
}

// remoteContext detaches a workspace operation from the HTTP request. Once the
// backend has the files the workspace waits for its answer even if the
// client goes away; the outcome still reaches watchers over the websocket.
func remoteContext(c echo.Context) context.Context {
	return context.WithoutCancel(c.Request().Context())
}

func (h *WorkspaceHandlerImpl) stage(fh *multipart.FileHeader) (*models.FileInfo, error) {
	src, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return h.store.Save(fh.Filename, fh.Header.Get("Content-Type"), src)
}

func (h *WorkspaceHandlerImpl) discard(files []models.FileInfo) {
	for _, f := range files {
		if err := h.store.Delete(f.ID); err != nil {
			h.log.Debug("failed to discard staged file", zap.String("file", f.ID), zap.Error(err))
		}
	}
}

// Request types

type setModeRequest struct {
	Mode models.UploadMode `json:"mode"`
}

func (r *setModeRequest) validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Mode,
			validation.Required,
			validation.In(models.UploadModeSingle, models.UploadModeMultiple, models.UploadModeArchive),
		),
	)
	if err != nil {
		return NewRequestValidationError(err)
	}
	return nil
}

type setFolderRequest struct {
	FolderID string `json:"folderId"`
}

func (r *setFolderRequest) validate() error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.FolderID, validation.Length(0, maxFolderIDLength)),
	)
	if err != nil {
		return NewRequestValidationError(err)
	}
	return nil
}

type providerRequest struct {
	Provider models.Provider `json:"provider"`
}

// validate fills in the catalog default when no provider is named.
func (r *providerRequest) validate(catalog *config.ProviderCatalog) error {
	if r.Provider == "" {
		r.Provider = catalog.Default
	}
	err := validation.ValidateStruct(r,
		validation.Field(&r.Provider, validation.In(catalog.IDs()...)),
	)
	if err != nil {
		return NewRequestValidationError(err)
	}
	return nil
}

type importRequest struct {
	Provider models.Provider `json:"provider"`
	FolderID *string         `json:"folderId"`
}

func (r *importRequest) validate(catalog *config.ProviderCatalog) error {
	if r.Provider == "" {
		r.Provider = catalog.Default
	}
	err := validation.ValidateStruct(r,
		validation.Field(&r.Provider, validation.In(catalog.IDs()...)),
		validation.Field(&r.FolderID, validation.Length(0, maxFolderIDLength)),
	)
	if err != nil {
		return NewRequestValidationError(err)
	}
	return nil
}
