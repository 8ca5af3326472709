package manager

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/yaser0004/AndroGPT/internal/engine"
	"github.com/yaser0004/AndroGPT/pkg/types"
)

// Defaults applied when corresponding ManagerConfig fields are unset.
const (
	defaultMaxQueueDepth = 32
	defaultMaxWait       = 30 * time.Second
	defaultContextSize   = 2048
	defaultMaxTokens     = 128
)

// ManagerConfig encapsulates all tunables for Manager construction.
type ManagerConfig struct {
	Registry     []types.Model
	DefaultModel string
	// Factory opens engines; defaults to the in-process llama factory.
	Factory engine.Factory
	Logger  *zerolog.Logger

	// Queue configuration
	MaxQueueDepth int
	MaxWait       time.Duration

	// Engine configuration (no envs; set by callers)
	ContextSize int
	Threads     int
	GPULayers   int
	// Default token budget when a request omits max_tokens.
	MaxTokens int
}
