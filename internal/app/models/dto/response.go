package dto

// ErrorResponse is the error body the backend returns on non-OK statuses
type ErrorResponse struct {
	Error string `json:"error"`
}
