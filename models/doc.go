// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, event, request, and response types.

# Domain Types

  - Outcome: a story node with up to two children and their labels

Outcome.Validate enforces that a child id is always paired with a label.

# Events

Event names broadcast to connected clients:

	EventPollActive    = "poll:active"     // bool
	EventPollDetails   = "poll:details"    // PollDetails
	EventPollVotes     = "poll:votes"      // VoteCounts
	EventPollCountdown = "poll:countdown"  // int seconds
	EventPollWinner    = "poll:winner"     // 1 or 2
	EventPollOverlay   = "poll:overlay"    // bool
	EventOutcomeChange = "outcome:change"  // outcome id

Each event is sent as a Frame: {"event": name, "data": payload}.

# Request Types

  - StartPollRequest: optional duration override
  - StartCustomPollRequest: title, duration, choice1, choice2
  - SelectWinnerRequest: choice (1 or 2)
  - ToggleOverlayRequest: active
  - SetCurrentOutcomeRequest: id

# Response Types

  - CommandResponse: status ("ok" or "ignored") and optional reason
  - PollStateResponse: snapshot of the live poll
  - ErrorResponse: error, message
*/
package models
