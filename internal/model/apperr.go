package model

import (
	"errors"
	"net/http"
)

// AppError is a domain error carrying the HTTP status it maps to. Service and
// domain functions return it; handlers translate with HTTPStatus.
type AppError struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
}

func (e *AppError) Error() string {
	return e.Message
}

// NewNotFound reports an absent resource (404)
func NewNotFound(msg string) *AppError {
	return &AppError{Status: http.StatusNotFound, Message: msg}
}

// NewForbidden reports an ownership or tenant mismatch (403)
func NewForbidden(msg string) *AppError {
	return &AppError{Status: http.StatusForbidden, Message: msg}
}

// NewBadRequest reports missing or malformed input (400)
func NewBadRequest(msg string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: msg}
}

// NewConflict reports a uniqueness violation such as a duplicate plate,
// title or booking slot (409)
func NewConflict(msg string) *AppError {
	return &AppError{Status: http.StatusConflict, Message: msg}
}

// NewUnauthorized reports bad credentials or token (401)
func NewUnauthorized(msg string) *AppError {
	return &AppError{Status: http.StatusUnauthorized, Message: msg}
}

// NewInvalidTransition reports an illegal booking status transition (400)
func NewInvalidTransition(msg string) *AppError {
	return &AppError{Status: http.StatusBadRequest, Message: msg}
}

// HTTPStatus extracts the status code from an error, defaulting to 500
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
