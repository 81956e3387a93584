package upload

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/talentlens/console/internal/models"
	"go.uber.org/zap"
)

// ErrWorkspaceNotFound is returned for unknown or expired workspaces.
var ErrWorkspaceNotFound = errors.New("workspace not found")

// ResultsFunc receives the results of a workspace's successful operation.
type ResultsFunc func(workspaceID string, results []models.Resume)

// Manager owns the console workspaces. Idle workspaces expire after the
// configured TTL and release their staged files.
type Manager struct {
	workspaces *cache.Cache
	policy     *Policy
	analyzer   Analyzer
	files      Files
	log        *zap.Logger

	mu        sync.RWMutex
	onResults ResultsFunc
	onChange  Observer
}

// NewManager creates a workspace manager.
func NewManager(policy *Policy, analyzer Analyzer, files Files, ttl, cleanupInterval time.Duration, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	m := &Manager{
		workspaces: cache.New(ttl, cleanupInterval),
		policy:     policy,
		analyzer:   analyzer,
		files:      files,
		log:        log.Named("workspaces"),
	}
	m.workspaces.OnEvicted(func(id string, v interface{}) {
		if wf, ok := v.(*Workflow); ok {
			wf.Close()
		}
		m.log.Debug("workspace released", zap.String("workspace", id))
	})
	return m
}

// OnResults registers fn as the notifier of every workspace.
func (m *Manager) OnResults(fn ResultsFunc) {
	m.mu.Lock()
	m.onResults = fn
	m.mu.Unlock()
}

// OnChange registers fn as the state observer of every workspace.
func (m *Manager) OnChange(fn Observer) {
	m.mu.Lock()
	m.onChange = fn
	m.mu.Unlock()
}

// Create starts a new workspace.
func (m *Manager) Create() *Workflow {
	id := uuid.New().String()
	wf := NewWorkflow(id, m.policy, m.analyzer, m.files, m.log)
	wf.OnResults(func(results []models.Resume) {
		m.mu.RLock()
		fn := m.onResults
		m.mu.RUnlock()
		if fn != nil {
			fn(id, results)
		}
	})
	wf.OnChange(func(snap Snapshot) {
		m.mu.RLock()
		fn := m.onChange
		m.mu.RUnlock()
		if fn != nil {
			fn(snap)
		}
	})

	m.workspaces.Set(id, wf, cache.DefaultExpiration)
	m.log.Info("workspace created", zap.String("workspace", id))
	return wf
}

// Get returns the workspace and extends its lifetime.
func (m *Manager) Get(id string) (*Workflow, error) {
	v, ok := m.workspaces.Get(id)
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	wf := v.(*Workflow)
	m.workspaces.Set(id, wf, cache.DefaultExpiration)
	return wf, nil
}

// Delete discards the workspace and its staged files.
func (m *Manager) Delete(id string) error {
	if _, ok := m.workspaces.Get(id); !ok {
		return ErrWorkspaceNotFound
	}
	m.workspaces.Delete(id)
	return nil
}

// Count returns the number of live workspaces.
func (m *Manager) Count() int {
	return m.workspaces.ItemCount()
}
