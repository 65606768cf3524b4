// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package poll runs the voting window that moves the story forward.

# Lifecycle

The Engine is either idle or active:

	idle --StartPoll / StartCustomPoll--> active
	active --countdown reaches 0 / SelectWinnerManually--> idle

Starting a poll emits, in order:

	poll:active    true
	poll:details   {title, decisions: {"1", "2"}, duration}
	poll:votes     {"1": 0, "2": 0}
	poll:countdown duration

A countdown goroutine emits poll:countdown once per tick. At zero the poll
resolves: poll:active false, then poll:winner when one choice has strictly
more votes, then outcome:change when the winning choice leads to another
outcome. A tie (including no votes) has no winner and leaves the pointer
alone. Custom polls never move the pointer.

# Cancellation

Each active poll carries a cancel func and a generation number. Every path
out of the active state cancels the countdown, and a tick from an older
generation is ignored, so manual resolution can never be followed by a
second automatic one.

# Errors

	ErrPreconditionNotMet    start while active
	ErrMissingOutcomeData    current outcome has no choices (wraps ErrPreconditionNotMet)
	ErrInvalidInput          bad choice, title, labels, duration or id
	ErrRepositoryUnavailable store read or write failed
	outcomes.ErrNotFound     pointer or outcome missing

A failed pointer write after automatic resolution is only logged; the poll
still ends for viewers.
*/
package poll
