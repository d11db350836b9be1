package gemlive

import "fmt"

// Error represents an error reported by the Gemini Live API.
type Error struct {
	// Code is the numeric status code, if any.
	Code int `json:"code,omitempty"`

	// Status is the canonical status name (e.g. "INVALID_ARGUMENT").
	Status string `json:"status,omitempty"`

	// Message is the human-readable error message.
	Message string `json:"message,omitempty"`

	// HTTPStatus is the handshake HTTP status, if the dial failed.
	HTTPStatus int `json:"-"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemlive: %s: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("gemlive: %s", e.Message)
}

// wireError is the JSON shape of server-sent errors.
type wireError struct {
	Code    int    `json:"code,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

func (e *wireError) toError() *Error {
	return &Error{
		Code:    e.Code,
		Status:  e.Status,
		Message: e.Message,
	}
}
