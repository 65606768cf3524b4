// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains the HTTP handlers behind the streamer's dashboard.

# Handler Types

  - PollHandler: start, custom poll, manual winner, overlay, poll state
  - OutcomeHandler: move the story pointer, read outcomes

Handlers depend on the poll engine through the PollEngine interface:

	pollHandler := handlers.NewPollHandler(engine)
	outcomeHandler := handlers.NewOutcomeHandler(engine, store)

# Commands

	POST /poll/start        {"duration": 20}            duration optional
	POST /poll/custom       {"title", "duration", "choice1", "choice2"}
	POST /poll/winner       {"choice": 1}
	POST /poll/overlay      {"active": true}
	PUT  /outcomes/current  {"id": 4}

A command that does not apply right now (starting while a poll runs,
starting on an outcome with no choices) is not an error for the dashboard:

	200 {"status": "ignored", "reason": "a poll is already active"}

Other failures map to status codes:

	400  invalid input
	404  unknown outcome
	503  outcome repository unavailable

# Reads

	GET /poll               active, overlay, votes, details, remaining
	GET /outcomes           the whole graph, ordered by id
	GET /outcomes/current
	GET /outcomes/{id}
*/
package handlers
