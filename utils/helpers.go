package utils

import "time"

// ===================================================================
// TIME HELPERS
// ===================================================================

// FormatTimestamp renders t as the ISO-8601 UTC form used in message headers.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

// GetUnixTimestamp returns current Unix timestamp
func GetUnixTimestamp() int64 {
	return time.Now().Unix()
}

// ===================================================================
// RESPONSE HELPERS
// ===================================================================

// StandardResponse represents a standard API response
type StandardResponse struct {
	Status  string      `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SuccessResponse creates a success response
func SuccessResponse(message string, data interface{}) StandardResponse {
	return StandardResponse{
		Status:  "success",
		Message: message,
		Data:    data,
	}
}

// ErrorResponse creates an error response
func ErrorResponse(message string) StandardResponse {
	return StandardResponse{
		Status:  "error",
		Message: message,
	}
}
