// Package engine defines the inference-runtime collaborators consumed by the
// generation loop. Concrete implementations (llama.cpp via cgo) live behind
// the 'llama' build tag; default builds get a fail-fast stub so CI stays
// CGO-free.
package engine

import "errors"

// ErrNotBuilt is returned when the llama runtime is not compiled in.
var ErrNotBuilt = errors.New("llama support not built (missing 'llama' build tag)")

// Token is an opaque vocabulary id assigned by the runtime.
type Token int32

// Engine is the byte-oriented inference runtime. All text crossing this
// interface is raw UTF-8 bytes; token fragments may end mid-sequence.
type Engine interface {
	// Tokenize converts prompt bytes into runtime tokens.
	Tokenize(prompt []byte) ([]Token, error)
	// Forward submits a token batch starting at position pos for a forward
	// pass. A returned error means the runtime rejected the batch; the
	// session cannot continue.
	Forward(batch []Token, pos int) error
	// IsEndOfGeneration reports whether t is a natural stop token.
	IsEndOfGeneration(t Token) bool
	// TokenBytes returns the UTF-8 byte fragment for t. An empty fragment
	// is valid.
	TokenBytes(t Token) []byte
	// ContextSize returns the context window in tokens.
	ContextSize() int
	// ClearCache resets the runtime's KV cache. Called before each session
	// since the cache is mutated destructively per step.
	ClearCache()
	// NewSampler builds a sampler over this engine's state.
	NewSampler(p Sampling) (Sampler, error)
	// Info describes the loaded model.
	Info() Info
	// Close releases the model and context.
	Close() error
}

// Sampler picks the next token from the runtime's current logits.
type Sampler interface {
	Sample() Token
	Close()
}

// Factory opens engines from model files on disk.
type Factory interface {
	Open(modelPath string, opts Options) (Engine, error)
}

// Options configures engine construction.
type Options struct {
	ContextSize int
	Threads     int
	GPULayers   int
}

// Sampling holds the opaque numeric knobs passed through to the sampler.
type Sampling struct {
	Temperature float32
	TopK        int
	TopP        float32
	Seed        uint32
}

// Built reports whether in-process llama support was compiled in.
func Built() bool { return llamaBuilt }

// Info summarizes a loaded model.
type Info struct {
	Description  string `json:"description"`
	VocabSize    int    `json:"vocab_size"`
	ContextTrain int    `json:"context_train"`
	ContextSize  int    `json:"context_size"`
	EmbeddingDim int    `json:"embedding_dim"`
}
