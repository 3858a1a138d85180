// Package response provides the JSON envelope of the tablesync API.
// Successful responses carry a data field, failures an error field.
package response

import (
	"encoding/json"
	"net/http"

	"github.com/agentstation/tablesync/pkg/errors"
)

// Error codes.
const (
	CodeBadRequest         = "BAD_REQUEST"
	CodeNoInput            = "NO_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeConflict           = "CONFLICT"
	CodeSourceUnavailable  = "SOURCE_UNAVAILABLE"
	CodeTimeout            = "TIMEOUT"
	CodeInternal           = "INTERNAL_ERROR"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Response is the API envelope.
type Response struct {
	Data  any    `json:"data"`
	Error *Error `json:"error"`
}

// Error is an API error.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

// Success creates a successful response with data.
func Success(data any) Response {
	return Response{Data: data}
}

// Fail creates an error response.
func Fail(code, message, details string) Response {
	return Response{
		Error: &Error{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// JSON writes resp with the given status code.
func JSON(w http.ResponseWriter, status int, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// headers are already sent
	_ = json.NewEncoder(w).Encode(resp)
}

// OK writes a 200 response.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, Success(data))
}

// Created writes a 201 response.
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, Success(data))
}

// BadRequest writes a 400 response.
func BadRequest(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusBadRequest, Fail(CodeBadRequest, message, details))
}

// NoInput writes the 400 response for a request without content to process.
func NoInput(w http.ResponseWriter, details string) {
	JSON(w, http.StatusBadRequest, Fail(CodeNoInput, "No input provided", details))
}

// NotFound writes a 404 response.
func NotFound(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusNotFound, Fail(CodeNotFound, message, details))
}

// Conflict writes a 409 response.
func Conflict(w http.ResponseWriter, message, details string) {
	JSON(w, http.StatusConflict, Fail(CodeConflict, message, details))
}

// InternalError writes a 500 response without exposing err.
func InternalError(w http.ResponseWriter, _ error) {
	JSON(w, http.StatusInternalServerError, Fail(
		CodeInternal,
		"Internal server error",
		"An unexpected error occurred",
	))
}

// ServiceUnavailable writes a 503 response.
func ServiceUnavailable(w http.ResponseWriter, message string) {
	JSON(w, http.StatusServiceUnavailable, Fail(CodeServiceUnavailable, "Service unavailable", message))
}

// ErrorFromType maps typed errors to HTTP responses.
func ErrorFromType(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, errors.ErrNoInput):
		NoInput(w, err.Error())
	case errors.IsNotFound(err):
		NotFound(w, err.Error(), "")
	case errors.IsAlreadyExists(err):
		Conflict(w, err.Error(), "")
	case errors.IsValidationError(err):
		BadRequest(w, err.Error(), "")
	case errors.IsTimeout(err):
		JSON(w, http.StatusGatewayTimeout, Fail(CodeTimeout, "Source timed out", err.Error()))
	case errors.IsSourceUnavailable(err):
		JSON(w, http.StatusBadGateway, Fail(CodeSourceUnavailable, "Source unavailable", err.Error()))
	default:
		var cfg *errors.ConfigError
		if errors.As(err, &cfg) {
			BadRequest(w, cfg.Error(), "")
			return
		}
		InternalError(w, err)
	}
}
