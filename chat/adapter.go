// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package chat

import (
	"context"

	"github.com/danielhkuo/crossroads/tally"
)

// Message is one chat line as delivered by a chat source.
type Message struct {
	SenderIsSelf bool
	VoterID      string
	Text         string
}

// VoteRecorder receives votes parsed from chat.
type VoteRecorder interface {
	Active() bool
	RecordVote(voterID string, choice tally.Choice)
}

// ParseVote reads the vote from the first character of a chat line. "1"
// and "1 forest!" both vote for choice 1.
func ParseVote(text string) (tally.Choice, bool) {
	if text == "" {
		return 0, false
	}
	switch text[0] {
	case '1':
		return tally.ChoiceOne, true
	case '2':
		return tally.ChoiceTwo, true
	}
	return 0, false
}

// Adapter turns chat messages into votes. Anything that is not a vote is
// ignored.
type Adapter struct {
	votes VoteRecorder
}

func NewAdapter(votes VoteRecorder) *Adapter {
	return &Adapter{votes: votes}
}

// Handle forwards m as a vote when it is one. It reports whether a vote was
// forwarded.
func (a *Adapter) Handle(m Message) bool {
	if m.SenderIsSelf || m.VoterID == "" {
		return false
	}
	if !a.votes.Active() {
		return false
	}
	choice, ok := ParseVote(m.Text)
	if !ok {
		return false
	}
	a.votes.RecordVote(m.VoterID, choice)
	return true
}

// Run handles messages until ctx is done or msgs is closed.
func (a *Adapter) Run(ctx context.Context, msgs <-chan Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-msgs:
			if !ok {
				return
			}
			a.Handle(m)
		}
	}
}
