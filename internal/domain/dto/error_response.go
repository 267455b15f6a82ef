package dto

import "time"

// ErrorResponse is the JSON envelope returned for every failed request.
//
// The "error" key carries the user-facing message, matching what the browser
// form displays; details are optional and meant for troubleshooting.
type ErrorResponse struct {
	Message      string    `json:"error" example:"Investment amount must be greater than 0"`
	ErrorDetails string    `json:"details,omitempty" example:"invalid amount: must be greater than 0"`
	Timestamp    time.Time `json:"timestamp" example:"2025-01-02T15:04:05Z"`
}

// Error implements the error interface so the envelope can travel through c.Error.
func (e ErrorResponse) Error() string {
	if e.ErrorDetails == "" {
		return e.Message
	}
	return e.Message + ": " + e.ErrorDetails
}

// NewErrorResponse builds an ErrorResponse stamped with the current UTC time.
// A nil err leaves the details empty.
func NewErrorResponse(message string, err error) ErrorResponse {
	resp := ErrorResponse{
		Message:   message,
		Timestamp: time.Now().UTC(),
	}
	if err != nil {
		resp.ErrorDetails = err.Error()
	}
	return resp
}
