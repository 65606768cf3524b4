// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the crossroads poll server.

Crossroads runs the audience polls of a branching-story live stream. The
story is a graph of outcomes; at each outcome the streamer opens a poll,
chat votes 1 or 2, and the winning choice moves the story to the next
outcome. Overlays and the streamer's dashboard follow along over
WebSocket.

# Starting the Server

	DASHBOARD_KEY=... DATABASE_URL=file:story.db TWITCH_CHANNEL=somestreamer go run .

Or with flags:

	go run . -t memory --dashboard-key dev --seed story.json --channel somestreamer

# Configuration

Required settings:

  - DASHBOARD_KEY (--dashboard-key): secret the dashboard sends with commands
  - DATABASE_URL (-d): connection string, unless DATABASE_TYPE is memory

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): postgres, sqlite (default), redis or memory
  - TWITCH_CHANNEL (--channel): chat to read votes from
  - SEED_FILE (--seed): JSON outcome graph loaded at startup

See package cliparse for the full list.

# Architecture

  - poll: the poll state machine and countdown
  - tally: per-viewer vote deduplication
  - outcomes: outcome graph and current pointer (SQL, Redis, memory)
  - broadcast: WebSocket fan-out with state replay
  - chat: chat messages to votes, Twitch IRC source
  - handlers, router, middleware: dashboard HTTP surface
  - models: outcome type, events and request/response types
  - auth: dashboard key check, IP hashing
  - db: SQL schema
  - cliparse: configuration parsing

See package documentation for each component.
*/
package main
