package models

import (
	"errors"
	"fmt"
)

// Broadcast event names. These are part of the wire contract with overlay
// and dashboard clients.
const (
	EventPollActive    = "poll:active"
	EventPollDetails   = "poll:details"
	EventPollVotes     = "poll:votes"
	EventPollCountdown = "poll:countdown"
	EventPollWinner    = "poll:winner"
	EventPollOverlay   = "poll:overlay"
	EventOutcomeChange = "outcome:change"
)

// Command status values
const (
	StatusOK      = "ok"
	StatusIgnored = "ignored"
)

// DefaultPollDuration is used when neither the caller nor the outcome
// supplies a poll length.
const DefaultPollDuration = 30

var ErrInvalidOutcome = errors.New("invalid outcome")

// Domain types

// Outcome is one node of the story graph. Child ids may point anywhere in
// the graph, including back at an ancestor.
type Outcome struct {
	ID            int64   `json:"id"`
	Title         string  `json:"title"`
	Decision1ID   *int64  `json:"decision1ID"`
	Decision2ID   *int64  `json:"decision2ID"`
	Decision1Text *string `json:"decision1Text"`
	Decision2Text *string `json:"decision2Text"`
	Duration      int     `json:"duration"`
}

// Validate checks that every child id is paired with a label.
func (o Outcome) Validate() error {
	if o.ID <= 0 {
		return fmt.Errorf("%w: id must be positive", ErrInvalidOutcome)
	}
	if o.Duration < 0 {
		return fmt.Errorf("%w: outcome %d has negative duration", ErrInvalidOutcome, o.ID)
	}
	if o.Decision1ID != nil && isBlank(o.Decision1Text) {
		return fmt.Errorf("%w: outcome %d has decision 1 without a label", ErrInvalidOutcome, o.ID)
	}
	if o.Decision2ID != nil && isBlank(o.Decision2Text) {
		return fmt.Errorf("%w: outcome %d has decision 2 without a label", ErrInvalidOutcome, o.ID)
	}
	return nil
}

// Label returns the voter-facing text for choice 1 or 2.
func (o Outcome) Label(choice int) string {
	var text *string
	switch choice {
	case 1:
		text = o.Decision1Text
	case 2:
		text = o.Decision2Text
	}
	if text == nil {
		return ""
	}
	return *text
}

// ChildID returns the outcome reached by choice 1 or 2, if any.
func (o Outcome) ChildID(choice int) (int64, bool) {
	var id *int64
	switch choice {
	case 1:
		id = o.Decision1ID
	case 2:
		id = o.Decision2ID
	}
	if id == nil {
		return 0, false
	}
	return *id, true
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}

// Event payloads

// PollDetails is the payload of poll:details.
type PollDetails struct {
	Title     string            `json:"title"`
	Decisions map[string]string `json:"decisions"`
	Duration  int               `json:"duration,omitempty"`
}

// NewPollDetails builds the poll:details payload for two labels.
func NewPollDetails(title, choice1, choice2 string, duration int) PollDetails {
	return PollDetails{
		Title: title,
		Decisions: map[string]string{
			"1": choice1,
			"2": choice2,
		},
		Duration: duration,
	}
}

// VoteCounts is the payload of poll:votes.
type VoteCounts struct {
	One int `json:"1"`
	Two int `json:"2"`
}

// Frame is a single message sent to a WebSocket client.
type Frame struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// Request types

type StartPollRequest struct {
	Duration int `json:"duration,omitempty"`
}

type StartCustomPollRequest struct {
	Title    string `json:"title"`
	Duration int    `json:"duration"`
	Choice1  string `json:"choice1"`
	Choice2  string `json:"choice2"`
}

type SelectWinnerRequest struct {
	Choice int `json:"choice"`
}

type ToggleOverlayRequest struct {
	Active bool `json:"active"`
}

type SetCurrentOutcomeRequest struct {
	ID int64 `json:"id"`
}

// Response types

type CommandResponse struct {
	Status string `json:"status"`
	Reason string `json:"reason,omitempty"`
}

type PollStateResponse struct {
	Active    bool         `json:"active"`
	Overlay   bool         `json:"overlay"`
	Votes     VoteCounts   `json:"votes"`
	Details   *PollDetails `json:"details,omitempty"`
	Remaining int          `json:"remaining"`
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
