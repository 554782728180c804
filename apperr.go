package main

import (
	"errors"
	"net/http"
)

// AppError carries the HTTP mapping for a failure alongside a stable code.
// Handlers translate any other error into a generic 500 so internal details
// never reach the client.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	errInvalidEmail = &AppError{Code: "VALIDATION_FAILED", Status: http.StatusBadRequest,
		Message: "invalid email format"}
	errWeakPassword = &AppError{Code: "VALIDATION_FAILED", Status: http.StatusBadRequest,
		Message: "password must be at least 8 characters with an uppercase letter, a lowercase letter, a digit and a special character"}
	errDuplicateEmail = &AppError{Code: "DUPLICATE", Status: http.StatusBadRequest,
		Message: "email already registered"}
	// Unknown email and wrong password collapse into the same failure so
	// the endpoint cannot be used to enumerate accounts.
	errInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Status: http.StatusForbidden,
		Message: "invalid email or password"}
	// Every refresh/access token failure (signature, expiry, revocation,
	// hash mismatch, unknown id) surfaces as this one error.
	errUnauthorized = &AppError{Code: "UNAUTHORIZED", Status: http.StatusUnauthorized,
		Message: "unauthorized"}
	errForbidden = &AppError{Code: "FORBIDDEN", Status: http.StatusForbidden,
		Message: "forbidden"}
	errNotFound = &AppError{Code: "NOT_FOUND", Status: http.StatusNotFound,
		Message: "not found"}
	errUserHasCaptions = &AppError{Code: "CONFLICT", Status: http.StatusConflict,
		Message: "user still owns captions; delete them first"}
)

// badRequest builds a one-off validation error with a request-specific message.
func badRequest(message string) *AppError {
	return &AppError{Code: "VALIDATION_FAILED", Status: http.StatusBadRequest, Message: message}
}

// asAppError extracts the AppError from err, or wraps err as a 500.
func asAppError(err error) *AppError {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae
	}
	return &AppError{Code: "INTERNAL", Status: http.StatusInternalServerError, Message: "internal error"}
}
