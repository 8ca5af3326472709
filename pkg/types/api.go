package types

// GenerateRequest represents a text generation request payload.
type GenerateRequest struct {
	// Optional model identifier. If empty, the server default is used.
	// example: phi-3-mini-q4
	Model string `json:"model,omitempty" example:"phi-3-mini-q4"`
	// Required prompt text to generate a completion for.
	// example: Write a haiku about the ocean.
	Prompt string `json:"prompt" example:"Write a haiku about the ocean."`
	// If true, stream results as NDJSON token fragments.
	// example: true
	Stream bool `json:"stream,omitempty" example:"true"`
	// Maximum number of new tokens to generate.
	// example: 128
	MaxTokens int `json:"max_tokens,omitempty" example:"128"`
	// Sampling temperature (higher = more random).
	// example: 0.7
	Temperature float64 `json:"temperature,omitempty" example:"0.7"`
	// Nucleus sampling probability.
	// example: 0.9
	TopP float64 `json:"top_p,omitempty" example:"0.9"`
	// Top-K sampling: limit candidates to top K tokens.
	// example: 40
	TopK int `json:"top_k,omitempty" example:"40"`
	// Optional stop markers. Generation stops when any marker is matched;
	// marker text is never part of the result.
	// example: ["<|end|>"]
	Stop []string `json:"stop,omitempty" example:"[\"<|end|>\"]"`
	// Random seed for reproducibility; 0 or omitted lets the server choose.
	// example: 42
	Seed int64 `json:"seed,omitempty" example:"42"`
}

// GenerateFinal is the terminal NDJSON line of a generation stream, and the
// whole response body in non-streaming mode.
type GenerateFinal struct {
	Done bool `json:"done"`
	// Full generated text, truncated before any matched stop marker.
	Content string `json:"content"`
	// Why generation ended: eos, stop_marker, token_limit, cancelled,
	// decode_failure.
	// example: eos
	FinishReason string `json:"finish_reason" example:"eos"`
	Usage        Usage  `json:"usage"`
}

// Usage contains token accounting for one generation.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of available models.
	Models []Model `json:"models"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// StatusResponse is returned by GET /status.
type StatusResponse struct {
	// Overall service state (idle, ready, error).
	// example: ready
	State string `json:"state" example:"ready"`
	// ID of the currently loaded model, empty when none.
	// example: phi-3-mini-q4
	LoadedModel string `json:"loaded_model,omitempty" example:"phi-3-mini-q4"`
	// Description reported by the runtime for the loaded model.
	ModelDescription string `json:"model_description,omitempty"`
	// Vocabulary size of the loaded model.
	VocabSize int `json:"vocab_size,omitempty"`
	// Context window in tokens.
	ContextSize int `json:"context_size,omitempty"`
	// Embedding dimension of the loaded model.
	EmbeddingDim int `json:"embedding_dim,omitempty"`
	// Whether a generation is currently in flight.
	Generating bool `json:"generating"`
	// Total model loads since start.
	LoadsTotal uint64 `json:"loads_total"`
	// Last error observed by the service (if any).
	LastError string `json:"last_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
	// Server time in unix seconds.
	// example: 1700000000
	ServerTimeUnix int64 `json:"server_time_unix" example:"1700000000"`
}
