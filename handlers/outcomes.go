// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/danielhkuo/crossroads/middleware"
	"github.com/danielhkuo/crossroads/models"
	"github.com/danielhkuo/crossroads/outcomes"
)

type OutcomeHandler struct {
	engine PollEngine
	repo   outcomes.Repository
}

func NewOutcomeHandler(engine PollEngine, repo outcomes.Repository) *OutcomeHandler {
	return &OutcomeHandler{engine: engine, repo: repo}
}

// SetCurrentOutcome handles PUT /outcomes/current
func (h *OutcomeHandler) SetCurrentOutcome(w http.ResponseWriter, r *http.Request) {
	var req models.SetCurrentOutcomeRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	err := h.engine.SetCurrentOutcome(r.Context(), req.ID)
	writeCommandResult(w, "set current outcome", err)
}

// GetCurrentOutcome handles GET /outcomes/current
func (h *OutcomeHandler) GetCurrentOutcome(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.repo.GetCurrentOutcome(r.Context())
	if err != nil {
		writeReadError(w, "current outcome", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, outcome)
}

// GetOutcome handles GET /outcomes/{id}
func (h *OutcomeHandler) GetOutcome(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "outcome id must be a positive integer")
		return
	}

	outcome, err := h.repo.GetOutcome(r.Context(), id)
	if err != nil {
		writeReadError(w, "outcome", err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, outcome)
}

// ListOutcomes handles GET /outcomes
func (h *OutcomeHandler) ListOutcomes(w http.ResponseWriter, r *http.Request) {
	list, err := h.repo.ListOutcomes(r.Context())
	if err != nil {
		writeReadError(w, "outcomes", err)
		return
	}
	if list == nil {
		list = []models.Outcome{}
	}
	middleware.JSONResponse(w, http.StatusOK, list)
}

func writeReadError(w http.ResponseWriter, what string, err error) {
	if errors.Is(err, outcomes.ErrNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, what+" not found")
		return
	}
	slog.Error("failed to read "+what, "error", err)
	middleware.ErrorResponse(w, http.StatusServiceUnavailable, "outcome repository unavailable")
}
