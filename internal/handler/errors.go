package handler

import "net/http"

// ErrorDetail is the machine-readable part of an error response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the uniform error body for every endpoint.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// writeNotFound writes a 404 with the given human-readable message.
// The caller supplies the message (e.g. "table not found") because the
// handler is the layer that knows what was being looked up.
func writeNotFound(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Error: ErrorDetail{Code: "not_found", Message: message},
	})
}

// writeServerError writes a 500 without leaking internal details.
func writeServerError(w http.ResponseWriter) {
	writeJSON(w, http.StatusInternalServerError, ErrorResponse{
		Error: ErrorDetail{Code: "internal_error", Message: "internal server error"},
	})
}
