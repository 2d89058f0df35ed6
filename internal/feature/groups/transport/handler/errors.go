package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"split_backend/internal/api"
	"split_backend/internal/feature/groups/usecase"
)

// statusFor maps usecase sentinels to HTTP statuses and the client-facing message.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, usecase.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, usecase.ErrGroupNotFound):
		return http.StatusNotFound, "group not found"
	case errors.Is(err, usecase.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, usecase.ErrAccessDenied):
		return http.StatusForbidden, "access denied"
	case errors.Is(err, usecase.ErrUserAlreadyInGroup):
		return http.StatusConflict, "user is already a member of the group"
	case errors.Is(err, usecase.ErrUserNotInGroup):
		return http.StatusConflict, "user is not a member of the group"
	case errors.Is(err, usecase.ErrCannotRemoveLastMember):
		return http.StatusConflict, "cannot remove the last member of a group"
	case errors.Is(err, usecase.ErrConcurrentUpdate):
		return http.StatusConflict, "group was modified concurrently, retry"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func respondError(c *gin.Context, err error) {
	status, msg := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "group request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(status, api.ErrorResponse{Error: msg})
}
