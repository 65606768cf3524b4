// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"

	"github.com/danielhkuo/crossroads/middleware"
	"github.com/danielhkuo/crossroads/models"
	"github.com/danielhkuo/crossroads/poll"
	"github.com/danielhkuo/crossroads/tally"
)

// PollEngine is the part of poll.Engine the dashboard drives
type PollEngine interface {
	StartPoll(ctx context.Context, durationOverride int) error
	StartCustomPoll(ctx context.Context, title string, duration int, choice1, choice2 string) error
	SelectWinnerManually(ctx context.Context, choice tally.Choice) error
	SetCurrentOutcome(ctx context.Context, id int64) error
	ToggleOverlay(active bool)
	Snapshot() poll.Snapshot
}

type PollHandler struct {
	engine PollEngine
}

func NewPollHandler(engine PollEngine) *PollHandler {
	return &PollHandler{engine: engine}
}

// StartPoll handles POST /poll/start
func (h *PollHandler) StartPoll(w http.ResponseWriter, r *http.Request) {
	var req models.StartPollRequest
	if err := parseOptionalBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	err := h.engine.StartPoll(r.Context(), req.Duration)
	writeCommandResult(w, "start poll", err)
}

// StartCustomPoll handles POST /poll/custom
func (h *PollHandler) StartCustomPoll(w http.ResponseWriter, r *http.Request) {
	var req models.StartCustomPollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	err := h.engine.StartCustomPoll(r.Context(), req.Title, req.Duration, req.Choice1, req.Choice2)
	writeCommandResult(w, "start custom poll", err)
}

// SelectWinner handles POST /poll/winner
func (h *PollHandler) SelectWinner(w http.ResponseWriter, r *http.Request) {
	var req models.SelectWinnerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	err := h.engine.SelectWinnerManually(r.Context(), tally.Choice(req.Choice))
	writeCommandResult(w, "select winner", err)
}

// ToggleOverlay handles POST /poll/overlay
func (h *PollHandler) ToggleOverlay(w http.ResponseWriter, r *http.Request) {
	var req models.ToggleOverlayRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	h.engine.ToggleOverlay(req.Active)
	writeCommandResult(w, "toggle overlay", nil)
}

// GetPoll handles GET /poll
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	s := h.engine.Snapshot()
	middleware.JSONResponse(w, http.StatusOK, models.PollStateResponse{
		Active:    s.Active(),
		Overlay:   s.Overlay,
		Votes:     s.Votes,
		Details:   s.Details,
		Remaining: s.Remaining,
	})
}
