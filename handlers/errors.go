// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielhkuo/crossroads/middleware"
	"github.com/danielhkuo/crossroads/models"
	"github.com/danielhkuo/crossroads/outcomes"
	"github.com/danielhkuo/crossroads/poll"
)

// writeCommandResult maps an engine error onto the dashboard response.
// Commands that do not apply in the current state are acknowledged as
// ignored rather than failed.
func writeCommandResult(w http.ResponseWriter, op string, err error) {
	switch {
	case err == nil:
		middleware.JSONResponse(w, http.StatusOK, models.CommandResponse{Status: models.StatusOK})
	case errors.Is(err, poll.ErrPreconditionNotMet):
		slog.Info("command ignored", "op", op, "reason", err)
		middleware.JSONResponse(w, http.StatusOK, models.CommandResponse{
			Status: models.StatusIgnored,
			Reason: reason(err, poll.ErrPreconditionNotMet),
		})
	case errors.Is(err, poll.ErrInvalidInput):
		middleware.ErrorResponse(w, http.StatusBadRequest, reason(err, poll.ErrInvalidInput))
	case errors.Is(err, outcomes.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "outcome not found")
	case errors.Is(err, poll.ErrRepositoryUnavailable), errors.Is(err, poll.ErrClosed):
		slog.Error("command failed", "op", op, "error", err)
		middleware.ErrorResponse(w, http.StatusServiceUnavailable, err.Error())
	default:
		slog.Error("command failed", "op", op, "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to "+op)
	}
}

// reason strips the sentinel prefix so the dashboard sees "a poll is
// already active" rather than "precondition not met: a poll is already active"
func reason(err, sentinel error) string {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, sentinel.Error()+": "); trimmed != msg {
		return trimmed
	}
	return msg
}

// parseOptionalBody is ParseJSONBody that accepts an empty body
func parseOptionalBody(r *http.Request, v interface{}) error {
	err := middleware.ParseJSONBody(r, v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
