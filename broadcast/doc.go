// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package broadcast pushes poll events to overlay and dashboard clients over
WebSocket.

Every frame is a JSON text message:

	{"event": "poll:votes", "data": {"1": 4, "2": 7}}

A client that connects mid-show first receives the current state
(poll:active, poll:overlay, poll:votes and, when known, poll:details) and
then live events. Slow clients lose frames rather than stalling the engine.
*/
package broadcast
