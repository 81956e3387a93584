package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/talentlens/console/internal/backend"
	"github.com/talentlens/console/internal/models"
	"go.uber.org/zap"
)

var (
	// ErrBusy is returned when an operation is already in progress.
	ErrBusy = errors.New("operation already in progress")
	// ErrUnknownMode is returned for an upload mode outside the known set.
	ErrUnknownMode = errors.New("unknown upload mode")
)

// LocalError is a precondition failure detected before any network call.
type LocalError struct {
	Message string
}

func (e *LocalError) Error() string {
	return e.Message
}

// Analyzer is the remote service that turns uploaded resumes into analysis records.
type Analyzer interface {
	AnalyzeOne(ctx context.Context, file backend.Upload, provider models.Provider) (*models.Resume, error)
	AnalyzeBatch(ctx context.Context, files []backend.Upload, provider models.Provider) ([]models.Resume, error)
	AnalyzeArchive(ctx context.Context, file backend.Upload, provider models.Provider) ([]models.Resume, error)
	ImportFolder(ctx context.Context, folderID string, provider models.Provider) ([]models.Resume, error)
}

// Files gives the workflow access to staged file content.
type Files interface {
	Open(id string) (io.ReadCloser, error)
	Delete(id string) error
}

// Notifier receives the results of a successful upload or import.
type Notifier func(results []models.Resume)

// Observer receives the workflow state after every change.
type Observer func(snap Snapshot)

// Snapshot is a consistent copy of a workflow's observable state.
type Snapshot struct {
	ID            string               `json:"id"`
	Version       uint64               `json:"version"` // increases with every change
	Mode          models.UploadMode    `json:"mode"`
	SelectedFile  *models.FileInfo     `json:"selectedFile,omitempty"`
	SelectedFiles []models.FileInfo    `json:"selectedFiles"`
	Dropped       []string             `json:"dropped,omitempty"`
	Error         string               `json:"error,omitempty"`
	Progress      string               `json:"progress,omitempty"`
	FolderID      string               `json:"folderId"`
	Uploading     bool                 `json:"uploading"`
	Importing     bool                 `json:"importing"`
	Upload        models.TransferState `json:"upload"`
	Import        models.TransferState `json:"import"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// Workflow is the upload state of one console workspace: the active mode,
// the current selection and the two remote operations.
type Workflow struct {
	id       string
	policy   *Policy
	analyzer Analyzer
	files    Files
	log      *zap.Logger

	mu           sync.Mutex
	notify       Notifier
	observe      Observer
	mode         models.UploadMode
	selected     *models.FileInfo
	selectedList []models.FileInfo
	dropped      []string
	errText      string
	progress     string
	folderID     string
	upload       models.TransferState
	folderImport models.TransferState
	updatedAt    time.Time
	version      uint64
}

// NewWorkflow creates a workflow in single mode with nothing selected.
func NewWorkflow(id string, policy *Policy, analyzer Analyzer, files Files, log *zap.Logger) *Workflow {
	if policy == nil {
		policy = DefaultPolicy()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Workflow{
		id:           id,
		policy:       policy,
		analyzer:     analyzer,
		files:        files,
		log:          log.With(zap.String("workspace", id)),
		mode:         models.UploadModeSingle,
		upload:       models.NewTransferState(),
		folderImport: models.NewTransferState(),
		updatedAt:    time.Now(),
	}
}

// ID returns the workspace identifier.
func (w *Workflow) ID() string {
	return w.id
}

// OnResults registers the notifier fired after a successful operation.
func (w *Workflow) OnResults(fn Notifier) {
	w.mu.Lock()
	w.notify = fn
	w.mu.Unlock()
}

// OnChange registers the observer called after every state change.
func (w *Workflow) OnChange(fn Observer) {
	w.mu.Lock()
	w.observe = fn
	w.mu.Unlock()
}

// SetMode switches the upload mode and clears the selection, the error and
// the progress text. It is rejected while an upload is in progress.
func (w *Workflow) SetMode(mode models.UploadMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}

	w.mu.Lock()
	if w.upload.Status == models.TransferStatusInProgress {
		w.mu.Unlock()
		return ErrBusy
	}

	w.releaseSelectionLocked()
	w.mode = mode
	w.errText = ""
	w.progress = ""
	if state, err := Reduce(w.upload, Event{Kind: EventReset}); err == nil {
		w.upload = state
	}
	w.touchLocked()
	w.mu.Unlock()

	w.changed()
	return nil
}

// Select replaces the selection of the active mode with the accepted part of
// files. Staged files that are not kept are released. A rejection leaves the
// slot empty and stores the reason as the error text.
func (w *Workflow) Select(files []models.FileInfo) (Selection, error) {
	w.mu.Lock()
	if w.upload.Status == models.TransferStatusInProgress {
		w.mu.Unlock()
		return Selection{}, ErrBusy
	}

	// an empty pick leaves a single or archive selection as it is
	if len(files) == 0 && w.mode != models.UploadModeMultiple {
		w.mu.Unlock()
		return Selection{}, nil
	}

	sel := w.policy.Validate(w.mode, files)

	keep := make(map[string]bool, len(sel.Accepted))
	for _, f := range sel.Accepted {
		keep[f.ID] = true
	}
	w.releaseSelectionLocked()
	for _, f := range files {
		if !keep[f.ID] {
			w.release(f)
		}
	}

	if w.mode == models.UploadModeMultiple {
		w.selectedList = sel.Accepted
	} else if len(sel.Accepted) > 0 {
		first := sel.Accepted[0]
		w.selected = &first
	}
	w.dropped = sel.Dropped
	w.errText = sel.Reason
	w.touchLocked()
	mode := w.mode
	w.mu.Unlock()

	w.log.Debug("selection updated",
		zap.String("mode", string(mode)),
		zap.Int("accepted", len(sel.Accepted)),
		zap.Strings("dropped", sel.Dropped),
	)
	w.changed()
	return sel, nil
}

// SetFolderID stores the remote folder identifier used by ImportFolder.
func (w *Workflow) SetFolderID(folderID string) error {
	w.mu.Lock()
	if w.folderImport.Status == models.TransferStatusInProgress {
		w.mu.Unlock()
		return ErrBusy
	}
	w.folderID = folderID
	w.touchLocked()
	w.mu.Unlock()

	w.changed()
	return nil
}

// Dispatch sends the current selection to the analyzer with exactly one
// remote call. On success the selection is cleared and the notifier fires
// once; on failure the selection is kept and the error text is set.
func (w *Workflow) Dispatch(ctx context.Context, provider models.Provider) ([]models.Resume, error) {
	w.mu.Lock()
	if w.upload.Status == models.TransferStatusInProgress {
		w.mu.Unlock()
		return nil, ErrBusy
	}

	mode := w.mode
	var files []models.FileInfo
	switch mode {
	case models.UploadModeMultiple:
		files = append(files, w.selectedList...)
	default:
		if w.selected != nil {
			files = append(files, *w.selected)
		}
	}
	if len(files) == 0 {
		lerr := &LocalError{Message: missingSelectionMessage(mode)}
		w.errText = lerr.Message
		w.touchLocked()
		w.mu.Unlock()
		w.changed()
		return nil, lerr
	}

	state, err := Reduce(w.upload, Event{Kind: EventStart})
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.upload = state
	w.errText = ""
	w.progress = startProgress(mode, len(files))
	w.touchLocked()
	w.mu.Unlock()
	w.changed()

	w.log.Info("dispatch started",
		zap.String("mode", string(mode)),
		zap.Int("files", len(files)),
		zap.String("provider", string(provider)),
	)
	results, sendErr := w.send(ctx, mode, files, provider)

	w.mu.Lock()
	if sendErr != nil {
		reason := backend.Reason(sendErr)
		w.upload, _ = Reduce(w.upload, Event{Kind: EventFail, Reason: reason})
		w.errText = "Upload failed: " + reason
		w.progress = ""
		w.touchLocked()
		w.mu.Unlock()
		w.changed()

		w.log.Warn("dispatch failed", zap.String("mode", string(mode)), zap.Error(sendErr))
		return nil, sendErr
	}

	w.upload, _ = Reduce(w.upload, Event{Kind: EventSucceed, Results: results})
	w.progress = doneProgress(mode, len(results))
	w.releaseSelectionLocked()
	notify := w.notify
	w.touchLocked()
	w.mu.Unlock()
	w.changed()

	w.log.Info("dispatch succeeded", zap.String("mode", string(mode)), zap.Int("results", len(results)))
	if notify != nil {
		notify(results)
	}
	return results, nil
}

// ImportFolder asks the backend to pull resumes from the stored folder. It
// has its own busy flag and may overlap an upload dispatch. An empty folder
// identifier is forwarded as is.
func (w *Workflow) ImportFolder(ctx context.Context, provider models.Provider) ([]models.Resume, error) {
	w.mu.Lock()
	if w.folderImport.Status == models.TransferStatusInProgress {
		w.mu.Unlock()
		return nil, ErrBusy
	}
	state, err := Reduce(w.folderImport, Event{Kind: EventStart})
	if err != nil {
		w.mu.Unlock()
		return nil, err
	}
	w.folderImport = state
	folderID := w.folderID
	w.errText = ""
	w.touchLocked()
	w.mu.Unlock()
	w.changed()

	w.log.Info("folder import started", zap.String("folder", folderID), zap.String("provider", string(provider)))
	results, importErr := w.analyzer.ImportFolder(ctx, folderID, provider)

	w.mu.Lock()
	if importErr != nil {
		reason := backend.Reason(importErr)
		w.folderImport, _ = Reduce(w.folderImport, Event{Kind: EventFail, Reason: reason})
		w.errText = "Folder import failed: " + reason
		w.touchLocked()
		w.mu.Unlock()
		w.changed()

		w.log.Warn("folder import failed", zap.String("folder", folderID), zap.Error(importErr))
		return nil, importErr
	}

	w.folderImport, _ = Reduce(w.folderImport, Event{Kind: EventSucceed, Results: results})
	w.folderID = ""
	notify := w.notify
	w.touchLocked()
	w.mu.Unlock()
	w.changed()

	w.log.Info("folder import succeeded", zap.Int("results", len(results)))
	if notify != nil {
		notify(results)
	}
	return results, nil
}

// Snapshot returns a copy of the current state.
func (w *Workflow) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := Snapshot{
		ID:            w.id,
		Mode:          w.mode,
		SelectedFiles: append([]models.FileInfo{}, w.selectedList...),
		Dropped:       append([]string(nil), w.dropped...),
		Error:         w.errText,
		Progress:      w.progress,
		FolderID:      w.folderID,
		Uploading:     w.upload.Status == models.TransferStatusInProgress,
		Importing:     w.folderImport.Status == models.TransferStatusInProgress,
		Upload:        w.upload,
		Import:        w.folderImport,
		UpdatedAt:     w.updatedAt,
		Version:       w.version,
	}
	if w.selected != nil {
		f := *w.selected
		snap.SelectedFile = &f
	}
	return snap
}

// Close releases every staged file still held by the workflow.
func (w *Workflow) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.releaseSelectionLocked()
}

func (w *Workflow) send(ctx context.Context, mode models.UploadMode, files []models.FileInfo, provider models.Provider) ([]models.Resume, error) {
	uploads := make([]backend.Upload, 0, len(files))
	for _, f := range files {
		rc, err := w.files.Open(f.ID)
		if err != nil {
			closeAll(uploads)
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		uploads = append(uploads, backend.Upload{Name: f.Name, ContentType: f.ContentType, Body: rc})
	}
	defer closeAll(uploads)

	switch mode {
	case models.UploadModeArchive:
		return w.analyzer.AnalyzeArchive(ctx, uploads[0], provider)
	case models.UploadModeMultiple:
		return w.analyzer.AnalyzeBatch(ctx, uploads, provider)
	default:
		res, err := w.analyzer.AnalyzeOne(ctx, uploads[0], provider)
		if err != nil {
			return nil, err
		}
		return []models.Resume{*res}, nil
	}
}

func (w *Workflow) releaseSelectionLocked() {
	if w.selected != nil {
		w.release(*w.selected)
		w.selected = nil
	}
	for _, f := range w.selectedList {
		w.release(f)
	}
	w.selectedList = nil
	w.dropped = nil
}

func (w *Workflow) release(f models.FileInfo) {
	if w.files == nil {
		return
	}
	if err := w.files.Delete(f.ID); err != nil {
		w.log.Debug("release staged file", zap.String("file", f.ID), zap.Error(err))
	}
}

func (w *Workflow) touchLocked() {
	w.updatedAt = time.Now()
	w.version++
}

// changed reports the current state. Observers may receive snapshots out of
// order when operations overlap; Version orders them.
func (w *Workflow) changed() {
	w.mu.Lock()
	fn := w.observe
	w.mu.Unlock()
	if fn != nil {
		fn(w.Snapshot())
	}
}

func closeAll(uploads []backend.Upload) {
	for _, u := range uploads {
		if c, ok := u.Body.(io.Closer); ok {
			c.Close()
		}
	}
}

func missingSelectionMessage(mode models.UploadMode) string {
	switch mode {
	case models.UploadModeMultiple:
		return "select files first"
	case models.UploadModeArchive:
		return "select an archive file first"
	default:
		return "select a file first"
	}
}

func startProgress(mode models.UploadMode, n int) string {
	switch mode {
	case models.UploadModeArchive:
		return "Extracting and analyzing resumes from archive..."
	case models.UploadModeMultiple:
		return fmt.Sprintf("Analyzing %d resume(s)...", n)
	}
	return ""
}

func doneProgress(mode models.UploadMode, n int) string {
	switch mode {
	case models.UploadModeArchive:
		return fmt.Sprintf("Successfully processed %d resume(s) from archive", n)
	case models.UploadModeMultiple:
		return fmt.Sprintf("Successfully processed %d resume(s)", n)
	}
	return ""
}
