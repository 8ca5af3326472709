package manager

import (
	"context"
	"strings"
)

// EnsureLoaded makes sure the engine for modelID is open, swapping out a
// previously loaded model if needed. Loading waits for the in-flight slot so
// an active generation is never pulled out from under its engine.
func (m *Manager) EnsureLoaded(ctx context.Context, modelID string) error {
	m.mu.RLock()
	loaded := m.eng != nil && m.engID == modelID
	m.mu.RUnlock()
	if loaded {
		return nil
	}

	release, err := m.beginGeneration(ctx, modelID)
	if err != nil {
		return err
	}
	defer release()
	return m.ensureLoadedAdmitted(modelID)
}

// ensureLoadedAdmitted performs the registry lookup and engine swap. The
// caller must hold the in-flight slot; holding it pins the loaded model
// until release, so a session admitted alongside this call can never
// observe a concurrent swap.
func (m *Manager) ensureLoadedAdmitted(modelID string) error {
	mdl, ok := m.getModelByID(modelID)
	if !ok || strings.TrimSpace(mdl.Path) == "" {
		return ErrModelNotFound(modelID)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.eng != nil && m.engID == modelID {
		return nil
	}
	if err := m.unloadLocked(); err != nil {
		m.logger.Warn().Err(err).Str("model", m.engID).Msg("unload before swap failed")
	}

	m.logger.Info().Str("model", modelID).Str("path", mdl.Path).Msg("loading model")
	eng, err := m.factory.Open(mdl.Path, m.engineOpts)
	if err != nil {
		m.lastErr = err.Error()
		return ErrDependencyUnavailable("open engine: " + err.Error())
	}
	m.eng = eng
	m.engID = modelID
	m.lastErr = ""
	m.loadsTotal++
	info := eng.Info()
	m.logger.Info().
		Str("model", modelID).
		Str("desc", info.Description).
		Int("ctx", info.ContextSize).
		Int("vocab", info.VocabSize).
		Msg("model loaded")
	return nil
}

// Unload releases the current engine, if any.
func (m *Manager) Unload() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.unloadLocked()
}

func (m *Manager) unloadLocked() error {
	if m.eng == nil {
		return nil
	}
	err := m.eng.Close()
	m.logger.Info().Str("model", m.engID).Msg("model unloaded")
	m.eng = nil
	m.engID = ""
	return err
}
