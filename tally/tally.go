// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package tally keeps the deduplicated vote record for a single poll.
package tally

import "github.com/danielhkuo/crossroads/models"

// Choice is one of the two poll options.
type Choice int

const (
	ChoiceOne Choice = 1
	ChoiceTwo Choice = 2
)

// Valid reports whether c is 1 or 2.
func (c Choice) Valid() bool {
	return c == ChoiceOne || c == ChoiceTwo
}

// Other returns the opposing choice.
func (c Choice) Other() Choice {
	if c == ChoiceOne {
		return ChoiceTwo
	}
	return ChoiceOne
}

// Tally maps each choice to the set of voters currently backing it.
// A voter is in at most one set. Tally is not safe for concurrent use;
// the poll engine serializes access.
type Tally struct {
	votes map[Choice]map[string]struct{}
}

func New() *Tally {
	t := &Tally{}
	t.Reset()
	return t
}

// Reset empties both sets.
func (t *Tally) Reset() {
	t.votes = map[Choice]map[string]struct{}{
		ChoiceOne: make(map[string]struct{}),
		ChoiceTwo: make(map[string]struct{}),
	}
}

// Apply records voterID's vote for choice, moving it from the other set if
// needed. The second return value is false when nothing changed: an invalid
// choice, an empty voter id, or a repeat of the voter's current choice.
func (t *Tally) Apply(voterID string, choice Choice) (models.VoteCounts, bool) {
	if voterID == "" || !choice.Valid() {
		return t.Counts(), false
	}
	if _, ok := t.votes[choice][voterID]; ok {
		return t.Counts(), false
	}

	delete(t.votes[choice.Other()], voterID)
	t.votes[choice][voterID] = struct{}{}
	return t.Counts(), true
}

// Counts returns the size of each set.
func (t *Tally) Counts() models.VoteCounts {
	return models.VoteCounts{
		One: len(t.votes[ChoiceOne]),
		Two: len(t.votes[ChoiceTwo]),
	}
}

// ChoiceOf returns the choice voterID currently backs.
func (t *Tally) ChoiceOf(voterID string) (Choice, bool) {
	for _, c := range []Choice{ChoiceOne, ChoiceTwo} {
		if _, ok := t.votes[c][voterID]; ok {
			return c, true
		}
	}
	return 0, false
}

// Winner returns the choice with strictly more voters. Equal counts,
// including zero to zero, have no winner.
func Winner(counts models.VoteCounts) (Choice, bool) {
	switch {
	case counts.One > counts.Two:
		return ChoiceOne, true
	case counts.Two > counts.One:
		return ChoiceTwo, true
	default:
		return 0, false
	}
}
