package types

// Model represents a discoverable GGUF model on disk.
type Model struct {
	// Stable identifier for the model.
	// example: phi-3-mini-q4
	ID string `json:"id" example:"phi-3-mini-q4"`
	// Human-friendly name.
	// example: Phi-3 Mini (Q4)
	Name string `json:"name" example:"Phi-3 Mini (Q4)"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/Phi-3-mini.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/Phi-3-mini.Q4_K_M.gguf"`
	// Quantization level or variant string.
	// example: Q4_K_M
	Quant string `json:"quant" example:"Q4_K_M"`
	// Optional family (e.g., llama, mistral, phi).
	// example: phi
	Family string `json:"family,omitempty" example:"phi"`
}
