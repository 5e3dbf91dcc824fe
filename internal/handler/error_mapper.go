package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/forgo/hearth/api/internal/middleware"
	"github.com/forgo/hearth/api/internal/model"
	"github.com/forgo/hearth/api/internal/service"
)

// MapServiceError converts a service error to a ProblemDetails response.
// This centralizes error handling logic for all handlers, ensuring consistent
// HTTP status codes and error messages across the API.
func MapServiceError(err error) *model.ProblemDetails {
	if err == nil {
		return nil
	}

	switch {
	// ===== Authentication Errors → 401 =====
	case errors.Is(err, service.ErrInvalidCredentials):
		return model.NewUnauthorizedError(err.Error())

	// ===== Authorization Errors → 403 =====
	case errors.Is(err, service.ErrPermissionDenied):
		return model.NewInsufficientAccessError(err.Error())
	case errors.Is(err, service.ErrForbidden):
		return model.NewForbiddenError(err.Error())

	// ===== Not Found Errors → 404 =====
	case errors.Is(err, service.ErrUserNotFound):
		return model.NewNotFoundError("user")
	case errors.Is(err, service.ErrGroupNotFound):
		return model.NewNotFoundError("group")
	case errors.Is(err, service.ErrHouseNotFound):
		return model.NewNotFoundError("house")
	case errors.Is(err, service.ErrRelationshipNotFound):
		return model.NewNotFoundError("relationship")
	case errors.Is(err, service.ErrAssetNotFound):
		return model.NewNotFoundError("asset")

	// ===== Conflict Errors → 409 =====
	case errors.Is(err, service.ErrEmailAlreadyExists),
		errors.Is(err, service.ErrAlreadyInGroup),
		errors.Is(err, service.ErrNotInGroup),
		errors.Is(err, service.ErrGroupHasHouse),
		errors.Is(err, service.ErrAlreadyAccepted),
		errors.Is(err, service.ErrRelationshipExists):
		return model.NewConflictError(err.Error())

	// ===== Validation Errors → 422 =====
	case errors.Is(err, service.ErrInvalidEmail),
		errors.Is(err, service.ErrPasswordRequired),
		errors.Is(err, service.ErrPasswordTooShort),
		errors.Is(err, service.ErrPasswordTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "credentials", Message: err.Error()}})

	case errors.Is(err, service.ErrInvalidColor):
		return model.NewValidationError([]model.FieldError{{Field: "color", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidName):
		return model.NewValidationError([]model.FieldError{{Field: "preferred_name", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidNickname):
		return model.NewValidationError([]model.FieldError{{Field: "nickname", Message: err.Error()}})
	case errors.Is(err, service.ErrBioTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "bio", Message: err.Error()}})
	case errors.Is(err, service.ErrTooManyItems):
		return model.NewValidationError([]model.FieldError{{Field: "profile", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidAssetHash):
		return model.NewValidationError([]model.FieldError{{Field: "asset_hash", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidLocation):
		return model.NewValidationError([]model.FieldError{{Field: "location", Message: err.Error()}})

	case errors.Is(err, service.ErrInvalidGroupName):
		return model.NewValidationError([]model.FieldError{{Field: "name", Message: err.Error()}})
	case errors.Is(err, service.ErrGroupFull):
		return model.NewValidationError([]model.FieldError{{Field: "limit", Message: err.Error()}})
	case errors.Is(err, service.ErrOwnGroup):
		return model.NewValidationError([]model.FieldError{{Field: "group", Message: err.Error()}})
	case errors.Is(err, service.ErrInvalidLevelRequest):
		return model.NewValidationError([]model.FieldError{{Field: "level", Message: err.Error()}})

	case errors.Is(err, service.ErrInvalidChatContent),
		errors.Is(err, service.ErrMessageTooLong):
		return model.NewValidationError([]model.FieldError{{Field: "content", Message: err.Error()}})
	case errors.Is(err, service.ErrEmptyAsset):
		return model.NewValidationError([]model.FieldError{{Field: "data", Message: err.Error()}})

	// ===== Payload Errors → 413 =====
	case errors.Is(err, service.ErrAssetTooLarge):
		return model.NewPayloadTooLargeError(err.Error())

	// ===== Bad Request Errors → 400 =====
	case errors.Is(err, service.ErrInvalidUnit),
		errors.Is(err, service.ErrInvalidRadius),
		errors.Is(err, service.ErrInvalidCursor):
		return model.NewBadRequestError(err.Error())

	// ===== Invariant Violations → 500 =====
	case errors.Is(err, service.ErrInvalidAccessLevel):
		return model.NewInvalidStateError(err.Error())

	// ===== Default → 500 =====
	default:
		return model.NewInternalError("")
	}
}

// writeServiceError maps err and writes it, logging anything that ends up
// as a server error
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	pd := MapServiceError(err)
	if pd.Status >= http.StatusInternalServerError {
		slog.Error("request failed",
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
			slog.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}
	WriteError(w, pd)
}
