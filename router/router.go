// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/crossroads/broadcast"
	"github.com/danielhkuo/crossroads/cliparse"
	"github.com/danielhkuo/crossroads/handlers"
	"github.com/danielhkuo/crossroads/middleware"
	"github.com/danielhkuo/crossroads/outcomes"
	"github.com/danielhkuo/crossroads/poll"
)

// Deps are the long-lived components the routes are served from
type Deps struct {
	Engine  *poll.Engine
	Store   outcomes.Repository
	Hub     *broadcast.Hub
	Limiter *middleware.RateLimiter
	Config  cliparse.Config
}

func NewRouter(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	limiter := d.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(d.Config.CommandRateLimit)
	}
	requireKey := middleware.RequireDashboardKey(d.Config.DashboardKey)

	// Rate limit before the key check so key guessing is throttled too
	command := func(h http.HandlerFunc) http.HandlerFunc {
		return middleware.WithLogging(limiter.Wrap(requireKey(h)))
	}

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(d.Engine)
	outcomeHandler := handlers.NewOutcomeHandler(d.Engine, d.Store)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Poll commands (dashboard, requires X-Dashboard-Key)
	mux.HandleFunc("POST /poll/start", command(pollHandler.StartPoll))
	mux.HandleFunc("POST /poll/custom", command(pollHandler.StartCustomPoll))
	mux.HandleFunc("POST /poll/winner", command(pollHandler.SelectWinner))
	mux.HandleFunc("POST /poll/overlay", command(pollHandler.ToggleOverlay))
	mux.HandleFunc("PUT /outcomes/current", command(outcomeHandler.SetCurrentOutcome))

	// Reads (public)
	mux.HandleFunc("GET /poll", middleware.WithLogging(pollHandler.GetPoll))
	mux.HandleFunc("GET /outcomes", middleware.WithLogging(outcomeHandler.ListOutcomes))
	mux.HandleFunc("GET /outcomes/current", middleware.WithLogging(outcomeHandler.GetCurrentOutcome))
	mux.HandleFunc("GET /outcomes/{id}", middleware.WithLogging(outcomeHandler.GetOutcome))

	// Live events for overlays and the dashboard
	if d.Hub != nil {
		mux.HandleFunc("GET /ws", d.Hub.Handler(d.Engine))
	}

	// Root endpoint
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("crossroads poll server"))
	})

	return mux
}
