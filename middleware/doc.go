// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

Wrap handlers with request logging:

	mux.HandleFunc("GET /poll", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (duration_ms).

# Dashboard Key

Dashboard commands must carry the X-Dashboard-Key header:

	requireKey := middleware.RequireDashboardKey(cfg.DashboardKey)
	mux.HandleFunc("POST /poll/start", requireKey(h.StartPoll))

Requests without a valid key get 401.

# Rate Limiting

Each client IP gets a token bucket refilled at the configured rate, with a
burst of twice the rate:

	limiter := middleware.NewRateLimiter(cfg.CommandRateLimit)
	go limiter.RunCleanup(ctx, time.Minute, 3*time.Minute)
	mux.HandleFunc("POST /poll/winner", limiter.Wrap(h.SelectWinner))

Requests over budget get 429 with a Retry-After header.

# CORS Middleware

Enable cross-origin requests from the dashboard and overlays:

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "message")

	var req models.SelectWinnerRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

# Client IP Extraction

Get the original client IP (handles X-Forwarded-For, X-Real-IP):

	ip := middleware.GetClientIP(r)

Used for rate limiting and hashed connection logs.
*/
package middleware
