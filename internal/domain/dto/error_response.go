package dto

import "time"

// ErrorResponse is the standardized JSON error body returned by every
// endpoint. It also implements the error interface so handlers and
// middleware can pass it around as a regular error.
type ErrorResponse struct {
	Message      string    `json:"message" example:"invalid start_date format, expected YYYY-MM-DD"`
	ErrorDetails string    `json:"error,omitempty" example:"parsing time \"x\" as \"2006-01-02\""`
	Timestamp    time.Time `json:"timestamp" example:"2024-01-09T16:20:00Z"`
}

// Error implements the error interface.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails != "" {
		return e.Message + ": " + e.ErrorDetails
	}
	return e.Message
}

// NewErrorResponse builds an ErrorResponse from a human-readable message and
// an optional inner error whose text becomes ErrorDetails.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
