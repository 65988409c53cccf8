package model

// APIResponse is the uniform response envelope. Code is 0 on success.
type APIResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
