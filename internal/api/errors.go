package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/strategiert/lernwelt-api/internal/api/shared"
	"github.com/strategiert/lernwelt-api/internal/domain"
	"github.com/strategiert/lernwelt-api/internal/service"
	"github.com/strategiert/lernwelt-api/internal/service/auth"
	"github.com/strategiert/lernwelt-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to appropriate HTTP status codes
// based on the error type. This prevents leaking internal error types or
// messages to clients.
func MapErrorToStatusCode(err error) int {
	var validationErr *domain.ValidationError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken),
		errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType),
		errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, domain.ErrUnauthorized):
		return http.StatusUnauthorized

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, service.ErrWorldNotFound),
		errors.Is(err, service.ErrSectionNotFound),
		errors.Is(err, store.ErrRatingNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, service.ErrEmailExists):
		return http.StatusConflict

	// A navigation request to a locked section conflicts with the
	// user's progression state rather than being malformed.
	case errors.Is(err, service.ErrSectionLocked):
		return http.StatusConflict

	// Bad request errors
	case errors.Is(err, service.ErrZeroStars),
		errors.Is(err, store.ErrInvalidEntity),
		errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrInvalidID),
		errors.As(err, &validationErr):
		return http.StatusBadRequest

	// Default: internal server error. ErrSubmissionFailed lands here
	// deliberately: the write failed for reasons the client cannot fix,
	// and the prior rating is intact.
	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-friendly error message
// based on the error type. This prevents leaking sensitive internal details.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	var validationErr *domain.ValidationError

	switch {
	// Authentication errors
	case errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrExpiredToken):
		return "Invalid token"

	case errors.Is(err, auth.ErrInvalidRefreshToken),
		errors.Is(err, auth.ErrExpiredRefreshToken),
		errors.Is(err, auth.ErrWrongTokenType):
		return "Invalid refresh token"

	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Invalid credentials"

	// Authorization errors
	case errors.Is(err, service.ErrNotOwned):
		return "You do not own this resource"

	// Not found errors
	case errors.Is(err, store.ErrUserNotFound),
		errors.Is(err, service.ErrUserNotFound):
		return "User not found"

	case errors.Is(err, service.ErrWorldNotFound):
		return "World not found"

	case errors.Is(err, service.ErrSectionNotFound):
		return "Section not found"

	case errors.Is(err, store.ErrRatingNotFound):
		return "Rating not found"

	// Conflict errors
	case errors.Is(err, store.ErrEmailExists),
		errors.Is(err, service.ErrEmailExists):
		return "Email already exists"

	case errors.Is(err, service.ErrSectionLocked):
		return "Section is locked"

	// Bad request errors
	case errors.Is(err, service.ErrZeroStars):
		return "A star rating between 1 and 5 is required"

	case errors.Is(err, store.ErrInvalidEntity):
		return "Invalid entity data"

	case errors.As(err, &validationErr):
		return fmt.Sprintf("Invalid %s", validationErr.Field)

	case errors.Is(err, service.ErrSubmissionFailed):
		return "Rating could not be saved, please try again"

	// Default case for unknown errors
	default:
		return "An unexpected error occurred"
	}
}

// HandleAPIError maps an error to a status code and a sanitized message,
// logs the full error and writes the response. When the error maps to a
// generic internal server error and a defaultMsg is given, defaultMsg is
// used so the client sees an operation-specific message.
func HandleAPIError(w http.ResponseWriter, r *http.Request, err error, defaultMsg string) {
	statusCode := MapErrorToStatusCode(err)
	safeMessage := GetSafeErrorMessage(err)

	// Only swap in defaultMsg when the error carried no message of its own;
	// sentinels like ErrSubmissionFailed keep their specific wording.
	if statusCode == http.StatusInternalServerError && defaultMsg != "" &&
		safeMessage == "An unexpected error occurred" {
		safeMessage = defaultMsg
	}

	shared.RespondWithErrorAndLog(w, r, statusCode, safeMessage, err)
}

// SanitizeValidationError removes sensitive details from validation errors
// and returns a user-friendly message.
func SanitizeValidationError(err error) string {
	errMsg := err.Error()

	// Example format: "Key: 'LoginRequest.Email' Error:Field validation for 'Email' failed on the 'required' tag"
	if strings.Contains(errMsg, "Field validation") {
		parts := strings.Split(errMsg, "Error:")
		if len(parts) >= 2 {
			fieldParts := strings.Split(parts[1], "'")
			if len(fieldParts) >= 3 {
				field := fieldParts[1]
				var tag string
				if len(fieldParts) >= 5 {
					tag = fieldParts[3]
				}

				if tag != "" {
					return fmt.Sprintf("Invalid %s: %s", field, getValidationTagMessage(tag))
				}
				return fmt.Sprintf("Invalid %s", field)
			}
		}
	}

	return "Validation error"
}

// getValidationTagMessage maps validation tags to user-friendly error messages
func getValidationTagMessage(tag string) string {
	switch tag {
	case "required":
		return "required field"
	case "email":
		return "invalid email format"
	case "min":
		return "too short"
	case "max":
		return "too long"
	case "oneof":
		return "invalid value"
	case "dive":
		return "invalid element"
	default:
		return "validation failed"
	}
}
