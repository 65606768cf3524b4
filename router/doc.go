// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the poll server.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Deps{
		Engine: engine,
		Store:  store,
		Hub:    hub,
		Config: cfg,
	})

# Endpoints

Health:

	GET /health
	GET /

Dashboard commands (require X-Dashboard-Key, rate limited per client IP):

	POST /poll/start        - Poll on the current outcome
	POST /poll/custom       - Free-form poll, never moves the story
	POST /poll/winner       - Pick the winner now
	POST /poll/overlay      - Show or hide the overlay
	PUT  /outcomes/current  - Jump to an outcome

Reads (public):

	GET /poll               - Poll state
	GET /outcomes           - Outcome graph
	GET /outcomes/current   - Current outcome
	GET /outcomes/{id}      - One outcome

Live events:

	GET /ws                 - WebSocket, state replay then live events
*/
package router
