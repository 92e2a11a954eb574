package types

// Model represents a GGUF model file discovered on disk.
type Model struct {
	// Stable identifier for the model (the file name).
	// example: gemma-2-2b-it.Q4_K_M.gguf
	ID string `json:"id" example:"gemma-2-2b-it.Q4_K_M.gguf"`
	// Human-friendly name.
	// example: gemma-2-2b-it.Q4_K_M.gguf
	Name string `json:"name" example:"gemma-2-2b-it.Q4_K_M.gguf"`
	// Absolute path to the model file on disk.
	// example: /home/user/models/gemma-2-2b-it.Q4_K_M.gguf
	Path string `json:"path" example:"/home/user/models/gemma-2-2b-it.Q4_K_M.gguf"`
	// File size in bytes.
	// example: 1708582752
	SizeBytes int64 `json:"size_bytes" example:"1708582752"`
}
