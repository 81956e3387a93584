package upload

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentlens/console/internal/backend"
	"github.com/talentlens/console/internal/models"
	"github.com/talentlens/console/internal/testutil"
)

type call struct {
	op       string
	names    []string
	bodies   []string
	folderID string
	provider models.Provider
}

// fakeAnalyzer records every remote call and answers with canned results.
type fakeAnalyzer struct {
	mu      sync.Mutex
	calls   []call
	results []models.Resume
	err     error
	block   chan struct{} // when set, calls wait until it is closed
	started chan struct{}
}

func (f *fakeAnalyzer) record(ctx context.Context, c call, uploads []backend.Upload) ([]models.Resume, error) {
	for _, u := range uploads {
		c.names = append(c.names, u.Name)
		data, _ := io.ReadAll(u.Body)
		c.bodies = append(c.bodies, string(data))
	}
	f.mu.Lock()
	f.calls = append(f.calls, c)
	block, started := f.block, f.started
	results, err := f.results, f.err
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		select {
		case <-block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return results, err
}

func (f *fakeAnalyzer) AnalyzeOne(ctx context.Context, file backend.Upload, provider models.Provider) (*models.Resume, error) {
	results, err := f.record(ctx, call{op: "one", provider: provider}, []backend.Upload{file})
	if err != nil {
		return nil, err
	}
	return &results[0], nil
}

func (f *fakeAnalyzer) AnalyzeBatch(ctx context.Context, files []backend.Upload, provider models.Provider) ([]models.Resume, error) {
	return f.record(ctx, call{op: "batch", provider: provider}, files)
}

func (f *fakeAnalyzer) AnalyzeArchive(ctx context.Context, file backend.Upload, provider models.Provider) ([]models.Resume, error) {
	return f.record(ctx, call{op: "archive", provider: provider}, []backend.Upload{file})
}

func (f *fakeAnalyzer) ImportFolder(ctx context.Context, folderID string, provider models.Provider) ([]models.Resume, error) {
	return f.record(ctx, call{op: "import", folderID: folderID, provider: provider}, nil)
}

func (f *fakeAnalyzer) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

type notifications struct {
	mu  sync.Mutex
	got [][]models.Resume
}

func (n *notifications) notify(results []models.Resume) {
	n.mu.Lock()
	n.got = append(n.got, results)
	n.mu.Unlock()
}

func (n *notifications) all() [][]models.Resume {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([][]models.Resume(nil), n.got...)
}

func newTestWorkflow(t *testing.T, analyzer *fakeAnalyzer) (*Workflow, *testutil.MockStorage, *notifications) {
	t.Helper()
	files := testutil.NewMockStorage()
	wf := NewWorkflow("ws-1", DefaultPolicy(), analyzer, files, nil)
	n := &notifications{}
	wf.OnResults(n.notify)
	return wf, files, n
}

func stage(files *testutil.MockStorage, name, contentType string) models.FileInfo {
	return *files.AddFile("id-"+name, name, contentType, []byte("content of "+name))
}

func resumes(n int) []models.Resume {
	out := make([]models.Resume, n)
	for i := range out {
		out[i] = models.Resume{ID: int64(i + 1)}
	}
	return out
}

func TestWorkflow_Defaults(t *testing.T) {
	wf, _, _ := newTestWorkflow(t, &fakeAnalyzer{})

	snap := wf.Snapshot()
	assert.Equal(t, "ws-1", snap.ID)
	assert.Equal(t, models.UploadModeSingle, snap.Mode)
	assert.Nil(t, snap.SelectedFile)
	assert.Empty(t, snap.SelectedFiles)
	assert.Equal(t, models.TransferStatusIdle, snap.Upload.Status)
	assert.Equal(t, models.TransferStatusIdle, snap.Import.Status)
	assert.False(t, snap.Uploading)
	assert.False(t, snap.Importing)
}

func TestWorkflow_SetModeClearsSelection(t *testing.T) {
	for _, from := range []models.UploadMode{models.UploadModeSingle, models.UploadModeMultiple, models.UploadModeArchive} {
		for _, to := range []models.UploadMode{models.UploadModeSingle, models.UploadModeMultiple, models.UploadModeArchive} {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				wf, files, _ := newTestWorkflow(t, &fakeAnalyzer{})
				require.NoError(t, wf.SetMode(from))

				picked := []models.FileInfo{
					stage(files, "a.pdf", "application/pdf"),
					stage(files, "bundle.zip", "application/zip"),
				}
				if from == models.UploadModeArchive {
					picked[0], picked[1] = picked[1], picked[0]
				}
				_, err := wf.Select(picked)
				require.NoError(t, err)

				require.NoError(t, wf.SetMode(to))

				snap := wf.Snapshot()
				assert.Equal(t, to, snap.Mode)
				assert.Nil(t, snap.SelectedFile)
				assert.Empty(t, snap.SelectedFiles)
				assert.Empty(t, snap.Dropped)
				assert.Empty(t, snap.Error)
				assert.Empty(t, snap.Progress)
				assert.Equal(t, 0, files.GetFileCount(), "staged files are released")
			})
		}
	}
}

func TestWorkflow_SetModeUnknown(t *testing.T) {
	wf, _, _ := newTestWorkflow(t, &fakeAnalyzer{})
	err := wf.SetMode("folder")
	assert.ErrorIs(t, err, ErrUnknownMode)
	assert.Equal(t, models.UploadModeSingle, wf.Snapshot().Mode)
}

func TestWorkflow_SelectRejected(t *testing.T) {
	wf, files, _ := newTestWorkflow(t, &fakeAnalyzer{})

	good := stage(files, "resume.pdf", "application/pdf")
	_, err := wf.Select([]models.FileInfo{good})
	require.NoError(t, err)

	bad := stage(files, "b.exe", "")
	sel, err := wf.Select([]models.FileInfo{bad})
	require.NoError(t, err)
	assert.Equal(t, ReasonSelectDocument, sel.Reason)

	snap := wf.Snapshot()
	assert.Nil(t, snap.SelectedFile)
	assert.Equal(t, ReasonSelectDocument, snap.Error)
	assert.Equal(t, []string{"b.exe"}, snap.Dropped)
	assert.False(t, files.Has(good.ID))
	assert.False(t, files.Has(bad.ID))
}

func TestWorkflow_EmptyPickKeepsSelection(t *testing.T) {
	for _, tc := range []struct {
		mode models.UploadMode
		name string
	}{
		{models.UploadModeSingle, "resume.pdf"},
		{models.UploadModeArchive, "bundle.zip"},
	} {
		t.Run(string(tc.mode), func(t *testing.T) {
			wf, files, _ := newTestWorkflow(t, &fakeAnalyzer{})
			require.NoError(t, wf.SetMode(tc.mode))
			kept := stage(files, tc.name, "")
			_, err := wf.Select([]models.FileInfo{kept})
			require.NoError(t, err)

			sel, err := wf.Select(nil)
			require.NoError(t, err)
			assert.False(t, sel.Rejected())

			snap := wf.Snapshot()
			require.NotNil(t, snap.SelectedFile)
			assert.Equal(t, kept.ID, snap.SelectedFile.ID)
			assert.Empty(t, snap.Error)
			assert.True(t, files.Has(kept.ID))
		})
	}
}

func TestWorkflow_SelectSingleReportsExtraFiles(t *testing.T) {
	wf, files, _ := newTestWorkflow(t, &fakeAnalyzer{})
	first := stage(files, "a.pdf", "")
	extra := stage(files, "b.pdf", "")

	sel, err := wf.Select([]models.FileInfo{first, extra})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.pdf"}, sel.Dropped)
	assert.Equal(t, []string{"b.pdf"}, wf.Snapshot().Dropped)
	assert.True(t, files.Has(first.ID))
	assert.False(t, files.Has(extra.ID))
}

func TestWorkflow_VersionIncreases(t *testing.T) {
	wf, files, _ := newTestWorkflow(t, &fakeAnalyzer{})

	var mu sync.Mutex
	var seen []uint64
	wf.OnChange(func(snap Snapshot) {
		mu.Lock()
		seen = append(seen, snap.Version)
		mu.Unlock()
	})

	start := wf.Snapshot().Version
	require.NoError(t, wf.SetMode(models.UploadModeMultiple))
	_, err := wf.Select([]models.FileInfo{stage(files, "a.pdf", "")})
	require.NoError(t, err)
	require.NoError(t, wf.SetFolderID("folder-1"))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 3)
	assert.Equal(t, []uint64{start + 1, start + 2, start + 3}, seen)
}

func TestWorkflow_DispatchWithoutSelection(t *testing.T) {
	tests := []struct {
		mode    models.UploadMode
		message string
	}{
		{models.UploadModeSingle, "select a file first"},
		{models.UploadModeMultiple, "select files first"},
		{models.UploadModeArchive, "select an archive file first"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			analyzer := &fakeAnalyzer{results: resumes(1)}
			wf, _, n := newTestWorkflow(t, analyzer)
			require.NoError(t, wf.SetMode(tt.mode))

			results, err := wf.Dispatch(context.Background(), "openai")
			assert.Nil(t, results)

			var lerr *LocalError
			require.ErrorAs(t, err, &lerr)
			assert.Equal(t, tt.message, lerr.Message)

			assert.Empty(t, analyzer.Calls())
			assert.Empty(t, n.all())

			snap := wf.Snapshot()
			assert.Equal(t, tt.message, snap.Error)
			assert.Equal(t, models.TransferStatusIdle, snap.Upload.Status)
		})
	}
}

func TestWorkflow_DispatchSingle(t *testing.T) {
	analyzer := &fakeAnalyzer{results: resumes(1)}
	wf, files, n := newTestWorkflow(t, analyzer)

	picked := stage(files, "resume.pdf", "application/pdf")
	_, err := wf.Select([]models.FileInfo{picked})
	require.NoError(t, err)

	results, err := wf.Dispatch(context.Background(), "gemini")
	require.NoError(t, err)
	assert.Equal(t, resumes(1), results)

	calls := analyzer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "one", calls[0].op)
	assert.Equal(t, []string{"resume.pdf"}, calls[0].names)
	assert.Equal(t, []string{"content of resume.pdf"}, calls[0].bodies)
	assert.Equal(t, models.Provider("gemini"), calls[0].provider)

	assert.Equal(t, [][]models.Resume{resumes(1)}, n.all())

	snap := wf.Snapshot()
	assert.Nil(t, snap.SelectedFile)
	assert.Empty(t, snap.SelectedFiles)
	assert.Empty(t, snap.Progress)
	assert.Equal(t, models.TransferStatusSucceeded, snap.Upload.Status)
	assert.Equal(t, resumes(1), snap.Upload.Results)
	assert.False(t, files.Has(picked.ID))
}

func TestWorkflow_DispatchMultipleDropsUnsupported(t *testing.T) {
	analyzer := &fakeAnalyzer{results: resumes(1)}
	wf, files, n := newTestWorkflow(t, analyzer)
	require.NoError(t, wf.SetMode(models.UploadModeMultiple))

	a := stage(files, "a.pdf", "")
	b := stage(files, "b.exe", "")
	sel, err := wf.Select([]models.FileInfo{a, b})
	require.NoError(t, err)
	assert.Equal(t, []models.FileInfo{a}, sel.Accepted)
	assert.Equal(t, []string{"b.exe"}, sel.Dropped)
	assert.Equal(t, []models.FileInfo{a}, wf.Snapshot().SelectedFiles)
	assert.False(t, files.Has(b.ID))

	_, err = wf.Dispatch(context.Background(), "openai")
	require.NoError(t, err)

	calls := analyzer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "batch", calls[0].op)
	assert.Equal(t, []string{"a.pdf"}, calls[0].names)
	assert.Equal(t, models.Provider("openai"), calls[0].provider)

	assert.Len(t, n.all(), 1)
	assert.Equal(t, "Successfully processed 1 resume(s)", wf.Snapshot().Progress)
}

func TestWorkflow_DispatchArchive(t *testing.T) {
	analyzer := &fakeAnalyzer{results: resumes(5)}
	wf, files, n := newTestWorkflow(t, analyzer)
	require.NoError(t, wf.SetMode(models.UploadModeArchive))

	_, err := wf.Select([]models.FileInfo{stage(files, "bundle.zip", "application/zip")})
	require.NoError(t, err)

	results, err := wf.Dispatch(context.Background(), "groq")
	require.NoError(t, err)
	assert.Len(t, results, 5)

	calls := analyzer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "archive", calls[0].op)
	assert.Equal(t, []string{"bundle.zip"}, calls[0].names)

	got := n.all()
	require.Len(t, got, 1)
	assert.Len(t, got[0], 5)
	assert.Equal(t, "Successfully processed 5 resume(s) from archive", wf.Snapshot().Progress)
}

func TestWorkflow_DispatchRemoteFailureKeepsSelection(t *testing.T) {
	analyzer := &fakeAnalyzer{err: &backend.RemoteError{StatusCode: 429, Reason: "quota exceeded"}}
	wf, files, n := newTestWorkflow(t, analyzer)
	require.NoError(t, wf.SetMode(models.UploadModeMultiple))

	a := stage(files, "a.pdf", "")
	c := stage(files, "c.docx", "")
	_, err := wf.Select([]models.FileInfo{a, c})
	require.NoError(t, err)

	_, err = wf.Dispatch(context.Background(), "openai")
	var remote *backend.RemoteError
	require.ErrorAs(t, err, &remote)

	snap := wf.Snapshot()
	assert.Contains(t, snap.Error, "quota exceeded")
	assert.Equal(t, "Upload failed: quota exceeded", snap.Error)
	assert.Empty(t, snap.Progress)
	assert.Equal(t, []models.FileInfo{a, c}, snap.SelectedFiles)
	assert.Equal(t, models.TransferStatusFailed, snap.Upload.Status)
	assert.Equal(t, "quota exceeded", snap.Upload.Reason)
	assert.True(t, files.Has(a.ID))
	assert.True(t, files.Has(c.ID))
	assert.Empty(t, n.all())

	// retry without re-picking
	analyzer.mu.Lock()
	analyzer.err = nil
	analyzer.results = resumes(2)
	analyzer.mu.Unlock()

	_, err = wf.Dispatch(context.Background(), "openai")
	require.NoError(t, err)
	assert.Len(t, analyzer.Calls(), 2)
	assert.Empty(t, wf.Snapshot().Error)
}

func TestWorkflow_DispatchTransportFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("connection refused")}
	wf, files, _ := newTestWorkflow(t, analyzer)
	_, err := wf.Select([]models.FileInfo{stage(files, "resume.pdf", "")})
	require.NoError(t, err)

	_, err = wf.Dispatch(context.Background(), "openai")
	require.Error(t, err)
	assert.Equal(t, "Upload failed: connection refused", wf.Snapshot().Error)
	assert.NotNil(t, wf.Snapshot().SelectedFile)
}

func TestWorkflow_DispatchOpenFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{results: resumes(1)}
	wf, files, _ := newTestWorkflow(t, analyzer)
	_, err := wf.Select([]models.FileInfo{stage(files, "resume.pdf", "")})
	require.NoError(t, err)

	files.FailOpen(errors.New("disk gone"))
	_, err = wf.Dispatch(context.Background(), "openai")
	require.Error(t, err)
	assert.Empty(t, analyzer.Calls())
	assert.Equal(t, models.TransferStatusFailed, wf.Snapshot().Upload.Status)
}

func TestWorkflow_BusyWhileDispatching(t *testing.T) {
	analyzer := &fakeAnalyzer{
		results: resumes(1),
		block:   make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	wf, files, _ := newTestWorkflow(t, analyzer)
	_, err := wf.Select([]models.FileInfo{stage(files, "resume.pdf", "")})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := wf.Dispatch(context.Background(), "openai")
		done <- err
	}()
	<-analyzer.started

	snap := wf.Snapshot()
	assert.True(t, snap.Uploading)
	assert.Equal(t, models.TransferStatusInProgress, snap.Upload.Status)

	_, err = wf.Dispatch(context.Background(), "openai")
	assert.ErrorIs(t, err, ErrBusy)
	assert.ErrorIs(t, wf.SetMode(models.UploadModeArchive), ErrBusy)
	_, err = wf.Select(nil)
	assert.ErrorIs(t, err, ErrBusy)

	close(analyzer.block)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch did not finish")
	}
	assert.Len(t, analyzer.Calls(), 1)
	assert.Equal(t, models.UploadModeSingle, wf.Snapshot().Mode)
}

func TestWorkflow_ImportFolder(t *testing.T) {
	analyzer := &fakeAnalyzer{results: resumes(3)}
	wf, _, n := newTestWorkflow(t, analyzer)

	require.NoError(t, wf.SetFolderID("1AbC"))
	results, err := wf.ImportFolder(context.Background(), "gemini")
	require.NoError(t, err)
	assert.Len(t, results, 3)

	calls := analyzer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "import", calls[0].op)
	assert.Equal(t, "1AbC", calls[0].folderID)
	assert.Equal(t, models.Provider("gemini"), calls[0].provider)

	snap := wf.Snapshot()
	assert.Empty(t, snap.FolderID)
	assert.Equal(t, models.TransferStatusSucceeded, snap.Import.Status)
	assert.Len(t, n.all(), 1)
}

func TestWorkflow_ImportFolderEmptyID(t *testing.T) {
	analyzer := &fakeAnalyzer{results: resumes(0)}
	wf, _, _ := newTestWorkflow(t, analyzer)

	_, err := wf.ImportFolder(context.Background(), "openai")
	require.NoError(t, err)

	calls := analyzer.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "", calls[0].folderID)
}

func TestWorkflow_ImportFolderFailureKeepsFolderID(t *testing.T) {
	analyzer := &fakeAnalyzer{err: &backend.RemoteError{StatusCode: 500, Reason: "drive not configured"}}
	wf, _, n := newTestWorkflow(t, analyzer)

	require.NoError(t, wf.SetFolderID("1AbC"))
	_, err := wf.ImportFolder(context.Background(), "openai")
	require.Error(t, err)

	snap := wf.Snapshot()
	assert.Equal(t, "1AbC", snap.FolderID)
	assert.Equal(t, "Folder import failed: drive not configured", snap.Error)
	assert.Equal(t, models.TransferStatusFailed, snap.Import.Status)
	assert.Empty(t, n.all())
}

func TestWorkflow_ImportOverlapsDispatch(t *testing.T) {
	analyzer := &fakeAnalyzer{
		results: resumes(1),
		block:   make(chan struct{}),
		started: make(chan struct{}, 2),
	}
	wf, files, _ := newTestWorkflow(t, analyzer)
	_, err := wf.Select([]models.FileInfo{stage(files, "resume.pdf", "")})
	require.NoError(t, err)

	done := make(chan error, 2)
	go func() {
		_, err := wf.Dispatch(context.Background(), "openai")
		done <- err
	}()
	go func() {
		_, err := wf.ImportFolder(context.Background(), "openai")
		done <- err
	}()
	<-analyzer.started
	<-analyzer.started

	snap := wf.Snapshot()
	assert.True(t, snap.Uploading)
	assert.True(t, snap.Importing)

	assert.ErrorIs(t, wf.SetFolderID("other"), ErrBusy)
	_, err = wf.ImportFolder(context.Background(), "openai")
	assert.ErrorIs(t, err, ErrBusy)

	close(analyzer.block)
	for i := 0; i < 2; i++ {
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("operation did not finish")
		}
	}
	assert.Len(t, analyzer.Calls(), 2)
}

func TestWorkflow_Close(t *testing.T) {
	wf, files, _ := newTestWorkflow(t, &fakeAnalyzer{})
	require.NoError(t, wf.SetMode(models.UploadModeMultiple))
	_, err := wf.Select([]models.FileInfo{stage(files, "a.pdf", ""), stage(files, "b.pdf", "")})
	require.NoError(t, err)

	wf.Close()
	assert.Equal(t, 0, files.GetFileCount())
	assert.Empty(t, wf.Snapshot().SelectedFiles)
}
