package global

import (
	"encoding/json"
	"net/http"
)

// Response is a transport-neutral HTTP response. Every entry point
// (server, Netlify function, Cloud Function) writes one of these back
// through its own platform shape.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// JSONResponse encodes body as the JSON payload of a Response.
func JSONResponse(status int, body interface{}) *Response {
	payload, err := json.Marshal(body)
	if err != nil {
		payload = []byte(`{"error":"failed to encode response"}`)
		status = http.StatusInternalServerError
	}
	return &Response{
		StatusCode: status,
		Body:       payload,
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
	}
}

// EmptyResponse is a Response with a status and no body.
func EmptyResponse(status int) *Response {
	return &Response{StatusCode: status, Headers: http.Header{}}
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

type APIResponse struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Message string            `json:"message,omitempty"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

func ErrorResponse(message string, errors []ValidationError) APIResponse {
	return APIResponse{
		Success: false,
		Message: message,
		Errors:  errors,
	}
}
