package errors

import "net/http"

var (
	ErrRouteNotFound = New(
		"ROUTE_NOT_FOUND",
		"Route not found",
		http.StatusNotFound,
	)

	ErrLocationNotFound = New(
		"LOCATION_NOT_FOUND",
		"Location not found",
		http.StatusNotFound,
	)

	ErrSessionNotFound = New(
		"SESSION_NOT_FOUND",
		"Edit session not found",
		http.StatusNotFound,
	)

	ErrDuplicateCode = New(
		"DUPLICATE_CODE",
		"Location code is already used",
		http.StatusConflict,
	)

	ErrDuplicateSlug = New(
		"DUPLICATE_SLUG",
		"Route slug is already used",
		http.StatusBadRequest,
	)

	ErrInvalidSlug = New(
		"INVALID_SLUG",
		"Slug must contain only lowercase letters, digits and single dashes",
		http.StatusBadRequest,
	)

	ErrInvalidCoordinates = New(
		"INVALID_COORDINATES",
		"Invalid coordinates provided",
		http.StatusBadRequest,
	)

	ErrInvalidPowerMode = New(
		"INVALID_POWER_MODE",
		"Invalid power mode",
		http.StatusBadRequest,
	)

	ErrInvalidChange = New(
		"INVALID_CHANGE",
		"Invalid pending change",
		http.StatusBadRequest,
	)

	ErrCommitInProgress = New(
		"COMMIT_IN_PROGRESS",
		"Another commit is already running for this session",
		http.StatusConflict,
	)

	ErrCommitFailed = New(
		"COMMIT_FAILED",
		"Saving staged changes failed",
		http.StatusBadGateway,
	)

	ErrValidationFailed = New(
		"VALIDATION_FAILED",
		"Request validation failed",
		http.StatusBadRequest,
	)

	ErrDatabaseError = New(
		"DATABASE_ERROR",
		"Database operation failed",
		http.StatusInternalServerError,
	)

	ErrCacheError = New(
		"CACHE_ERROR",
		"Cache operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
