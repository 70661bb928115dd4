package client

import (
	"errors"
	"fmt"
)

// Sentinel errors for tracking server communication.
// Use errors.Is() to check for specific error conditions.
var (
	// ErrNetwork indicates the request never produced an HTTP response.
	ErrNetwork = errors.New("mlflow: network error")

	// ErrNotFound indicates the server reported the resource does not exist.
	ErrNotFound = errors.New("mlflow: resource not found")

	// ErrResponse indicates the server returned a body that could not be
	// decoded.
	ErrResponse = errors.New("mlflow: invalid server response")
)

// APIError is a non-2xx response from the tracking or registry server,
// carrying the server's error payload when one was decodable.
type APIError struct {
	// StatusCode is the HTTP status of the response.
	StatusCode int

	// Code is the server error code, e.g. "RESOURCE_DOES_NOT_EXIST".
	Code string

	// Message is the server's human readable error message.
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("mlflow: server error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("mlflow: server error %d", e.StatusCode)
}

// Is lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == 404
}
