package handler

// response is the envelope every endpoint returns. Success mirrors the HTTP
// status class; Message is human-readable; Data carries the payload when the
// operation produces one.
type response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// errorResponse documents the error envelope for swagger; the actual error
// body is produced by the central HTTP error handler.
type errorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message"`
}
