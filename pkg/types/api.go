package types

// ExtractRequest is the payload of POST /extract.
type ExtractRequest struct {
	// Free-form text to extract the tax id and full name from.
	// example: Клиент: Петров Алексей Сергеевич, ИНН 123456789012
	Text string `json:"text" example:"Клиент: Петров Алексей Сергеевич, ИНН 123456789012"`
}

// ModelsResponse wraps the list of models returned by GET /models.
type ModelsResponse struct {
	// List of discovered models.
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
	// Generation backend in use.
	// example: llama-server
	Backend string `json:"backend" example:"llama-server"`
	// Generation profile in use.
	// example: default
	Profile string `json:"profile" example:"default"`
	// Whether the generation backend answered its last probe.
	// example: true
	BackendReady bool `json:"backend_ready" example:"true"`
	// Last probe error, if any.
	BackendError string `json:"backend_error,omitempty"`
	// Uptime of the server in seconds.
	// example: 3600
	UptimeSeconds int64 `json:"uptime_seconds" example:"3600"`
}
