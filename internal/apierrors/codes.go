// Package apierrors provides structured API error codes and responses.
// All codes are namespaced (e.g., "core:invalid_request",
// "feedback:duplicate_submission").
package apierrors

import "net/http"

// Core error codes - registered automatically at init
const (
	// Request errors
	CodeInvalidRequest   = "core:invalid_request"
	CodeValidationFailed = "core:validation_failed"
	CodeInvalidID        = "core:invalid_id"

	// Resource errors
	CodeNotFound = "core:not_found"

	// Rate limiting
	CodeRateLimited = "core:rate_limited"

	// Server errors
	CodeInternalError = "core:internal_error"
)

// Feedback error codes
const (
	CodeDuplicateSubmission = "feedback:duplicate_submission"
	CodeInvalidRating       = "feedback:invalid_rating"
)

// Chat error codes
const (
	CodeEmptyMessage = "chat:empty_message"
)

// registeredErrors defines all error codes with their default messages and
// HTTP status. Duplicate submission surfaces as 400 rather than 409 to match
// the contract the frontend already handles.
var registeredErrors = []ErrorCode{
	{Code: CodeInvalidRequest, Message: "Invalid request body", HTTPStatus: http.StatusBadRequest},
	{Code: CodeValidationFailed, Message: "Request validation failed", HTTPStatus: http.StatusBadRequest},
	{Code: CodeInvalidID, Message: "Invalid ID format", HTTPStatus: http.StatusBadRequest},

	{Code: CodeNotFound, Message: "Resource not found", HTTPStatus: http.StatusNotFound},

	{Code: CodeRateLimited, Message: "Too many requests", HTTPStatus: http.StatusTooManyRequests},

	{Code: CodeInternalError, Message: "Internal server error", HTTPStatus: http.StatusInternalServerError},

	{Code: CodeDuplicateSubmission, Message: "Feedback has already been submitted for this session", HTTPStatus: http.StatusBadRequest},
	{Code: CodeInvalidRating, Message: "Rating is outside the allowed range", HTTPStatus: http.StatusBadRequest},

	{Code: CodeEmptyMessage, Message: "Message text must not be empty", HTTPStatus: http.StatusBadRequest},
}

func init() {
	for _, e := range registeredErrors {
		Registry.Register(e)
	}
}
