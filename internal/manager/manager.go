// Package manager owns the shared inference engine handle and serializes
// generation requests around it. The engine's KV cache is mutated
// destructively per step, so only one generation session runs at any
// instant; concurrent requests queue behind it.
package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yaser0004/AndroGPT/internal/engine"
	"github.com/yaser0004/AndroGPT/internal/generator"
	"github.com/yaser0004/AndroGPT/pkg/types"
)

type Manager struct {
	mu           sync.RWMutex
	registry     []types.Model
	defaultModel string
	factory      engine.Factory
	logger       *zerolog.Logger

	eng     engine.Engine
	engID   string
	lastErr string

	// Queueing primitives
	genCh   chan struct{} // size 1: single in-flight generation
	queueCh chan struct{} // buffered: queue slots
	maxWait time.Duration

	// Cancel flag of the in-flight session, if any.
	active *generator.CancelFlag

	engineOpts engine.Options
	maxTokens  int

	startTime  time.Time
	loadsTotal uint64
}

// NewWithConfig constructs a Manager from ManagerConfig.
func NewWithConfig(cfg ManagerConfig) *Manager {
	m := &Manager{
		registry:     cfg.Registry,
		defaultModel: cfg.DefaultModel,
		factory:      cfg.Factory,
		startTime:    time.Now(),
	}
	if m.factory == nil {
		m.factory = engine.NewLlamaFactory()
	}
	depth := cfg.MaxQueueDepth
	if depth <= 0 {
		depth = defaultMaxQueueDepth
	}
	m.queueCh = make(chan struct{}, depth)
	m.genCh = make(chan struct{}, 1)
	if cfg.MaxWait > 0 {
		m.maxWait = cfg.MaxWait
	} else {
		m.maxWait = defaultMaxWait
	}
	m.engineOpts = engine.Options{
		ContextSize: cfg.ContextSize,
		Threads:     cfg.Threads,
		GPULayers:   cfg.GPULayers,
	}
	if m.engineOpts.ContextSize <= 0 {
		m.engineOpts.ContextSize = defaultContextSize
	}
	m.maxTokens = cfg.MaxTokens
	if m.maxTokens <= 0 {
		m.maxTokens = defaultMaxTokens
	}
	if cfg.Logger != nil {
		m.logger = cfg.Logger
	} else {
		nop := zerolog.Nop()
		m.logger = &nop
	}
	return m
}

// Ready reports whether an engine is loaded and able to serve.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.eng != nil
}

// ListModels returns a copy of the model registry.
func (m *Manager) ListModels() []types.Model {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]types.Model, len(m.registry))
	copy(out, m.registry)
	return out
}

// Status reports a read-only projection of the manager state.
func (m *Manager) Status() types.StatusResponse {
	m.mu.RLock()
	defer m.mu.RUnlock()
	st := types.StatusResponse{
		State:          "idle",
		Generating:     len(m.genCh) > 0,
		LoadsTotal:     m.loadsTotal,
		LastError:      m.lastErr,
		UptimeSeconds:  int64(time.Since(m.startTime).Seconds()),
		ServerTimeUnix: time.Now().Unix(),
	}
	if m.eng != nil {
		info := m.eng.Info()
		st.State = "ready"
		st.LoadedModel = m.engID
		st.ModelDescription = info.Description
		st.VocabSize = info.VocabSize
		st.ContextSize = info.ContextSize
		st.EmbeddingDim = info.EmbeddingDim
	}
	if m.lastErr != "" {
		st.State = "error"
	}
	return st
}

// CancelActive requests cancellation of the in-flight generation, if any.
// Takes effect at the session's next per-token check.
func (m *Manager) CancelActive() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.active == nil {
		return false
	}
	m.active.Cancel()
	return true
}

// Close unloads the engine. In-flight work should be drained first.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unloadLocked()
}

func (m *Manager) getModelByID(id string) (types.Model, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mdl := range m.registry {
		if mdl.ID == id {
			return mdl, true
		}
	}
	return types.Model{}, false
}

func (m *Manager) setActive(f *generator.CancelFlag) {
	m.mu.Lock()
	m.active = f
	m.mu.Unlock()
}

func (m *Manager) clearActive(f *generator.CancelFlag) {
	m.mu.Lock()
	if m.active == f {
		m.active = nil
	}
	m.mu.Unlock()
}
