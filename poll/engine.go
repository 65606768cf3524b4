// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/danielhkuo/crossroads/models"
	"github.com/danielhkuo/crossroads/outcomes"
	"github.com/danielhkuo/crossroads/tally"
)

var (
	ErrPreconditionNotMet    = errors.New("precondition not met")
	ErrMissingOutcomeData    = fmt.Errorf("%w: current outcome has no choices", ErrPreconditionNotMet)
	ErrInvalidInput          = errors.New("invalid input")
	ErrRepositoryUnavailable = errors.New("outcome repository unavailable")
	ErrClosed                = errors.New("poll engine closed")
)

const (
	defaultTickInterval = time.Second
	pointerWriteTimeout = 5 * time.Second
)

// Broadcaster fans an event out to every connected client. Implementations
// must not block: the engine calls it while holding its state lock so that
// clients observe events in transition order.
type Broadcaster interface {
	Broadcast(event string, payload any)
}

// State is the engine's lifecycle position.
type State int

const (
	StateIdle State = iota
	StateActive
)

func (s State) String() string {
	if s == StateActive {
		return "active"
	}
	return "idle"
}

// activePoll exists only while a poll is open. cancel stops its countdown;
// gen lets a tick recognize that it belongs to a poll that already ended.
type activePoll struct {
	gen       uint64
	cancel    context.CancelFunc
	title     string
	choice1   string
	choice2   string
	duration  int
	remaining int
	source    *models.Outcome
}

// Snapshot is a consistent copy of the observable state.
type Snapshot struct {
	State           State
	Overlay         bool
	Votes           models.VoteCounts
	Details         *models.PollDetails
	Remaining       int
	SourceOutcomeID *int64
}

func (s Snapshot) Active() bool {
	return s.State == StateActive
}

// Engine owns the poll lifecycle, the vote tally and the countdown. It is
// the only writer of the current-outcome pointer during play.
//
// A single mutex serializes every transition. Repository I/O happens
// outside the lock.
type Engine struct {
	repo            outcomes.Repository
	out             Broadcaster
	defaultDuration int
	tickInterval    time.Duration

	mu      sync.Mutex
	poll    *activePoll
	tally   *tally.Tally
	overlay bool
	details *models.PollDetails
	gen     uint64
	closed  bool

	// advancing is closed once the latest pointer write after a win has
	// finished. StartPoll waits on it so it never reads the decided outcome.
	advancing chan struct{}

	wg sync.WaitGroup
}

type Option func(*Engine)

// WithDefaultDuration sets the poll length used when neither the caller nor
// the outcome provides one.
func WithDefaultDuration(seconds int) Option {
	return func(e *Engine) {
		if seconds > 0 {
			e.defaultDuration = seconds
		}
	}
}

// WithTickInterval changes the countdown period. Tests shorten it.
func WithTickInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.tickInterval = d
		}
	}
}

func NewEngine(repo outcomes.Repository, out Broadcaster, opts ...Option) *Engine {
	e := &Engine{
		repo:            repo,
		out:             out,
		defaultDuration: models.DefaultPollDuration,
		tickInterval:    defaultTickInterval,
		tally:           tally.New(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartPoll opens a poll on the current outcome's two choices. A
// durationOverride of 0 uses the outcome's configured duration.
func (e *Engine) StartPoll(ctx context.Context, durationOverride int) error {
	if durationOverride < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrInvalidInput)
	}
	pending, err := e.checkIdle()
	if err != nil {
		return err
	}
	if pending != nil {
		select {
		case <-pending:
		case <-ctx.Done():
			return repositoryError("wait for outcome write", ctx.Err())
		}
	}

	current, err := e.repo.GetCurrentOutcome(ctx)
	if err != nil {
		return repositoryError("read current outcome", err)
	}
	if current.Title == "" || current.Label(1) == "" || current.Label(2) == "" {
		slog.Info("poll not started: outcome has no choices", "outcome_id", current.ID)
		return ErrMissingOutcomeData
	}

	duration := durationOverride
	if duration == 0 {
		duration = current.Duration
	}
	if duration <= 0 {
		duration = e.defaultDuration
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkIdleLocked(); err != nil {
		return err
	}
	e.beginLocked(current.Title, current.Label(1), current.Label(2), duration, &current)
	return nil
}

// StartCustomPoll opens an informational poll that never moves the story.
func (e *Engine) StartCustomPoll(_ context.Context, title string, duration int, choice1, choice2 string) error {
	title = strings.TrimSpace(title)
	choice1 = strings.TrimSpace(choice1)
	choice2 = strings.TrimSpace(choice2)
	switch {
	case title == "":
		return fmt.Errorf("%w: title is required", ErrInvalidInput)
	case choice1 == "" || choice2 == "":
		return fmt.Errorf("%w: both choices are required", ErrInvalidInput)
	case duration <= 0:
		return fmt.Errorf("%w: duration must be positive", ErrInvalidInput)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.checkIdleLocked(); err != nil {
		return err
	}
	e.beginLocked(title, choice1, choice2, duration, nil)
	return nil
}

func (e *Engine) checkIdle() (<-chan struct{}, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.advancing, e.checkIdleLocked()
}

func (e *Engine) checkIdleLocked() error {
	if e.closed {
		return ErrClosed
	}
	if e.poll != nil {
		return fmt.Errorf("%w: a poll is already active", ErrPreconditionNotMet)
	}
	return nil
}

func (e *Engine) beginLocked(title, choice1, choice2 string, duration int, source *models.Outcome) {
	e.gen++
	ctx, cancel := context.WithCancel(context.Background())
	p := &activePoll{
		gen:       e.gen,
		cancel:    cancel,
		title:     title,
		choice1:   choice1,
		choice2:   choice2,
		duration:  duration,
		remaining: duration,
		source:    source,
	}
	e.poll = p
	e.tally.Reset()

	details := models.NewPollDetails(title, choice1, choice2, duration)
	e.details = &details

	e.emit(models.EventPollActive, true)
	e.emit(models.EventPollDetails, details)
	e.emit(models.EventPollVotes, e.tally.Counts())
	e.emit(models.EventPollCountdown, duration)

	slog.Info("poll started", "title", title, "duration", duration, "custom", source == nil)

	e.wg.Add(1)
	go e.countdown(ctx, p.gen)
}

func (e *Engine) countdown(ctx context.Context, gen uint64) {
	defer e.wg.Done()

	ticker := time.NewTicker(e.tickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !e.tick(gen) {
				return
			}
		}
	}
}

// tick advances the countdown of poll gen by one step. It reports whether
// the poll is still running.
func (e *Engine) tick(gen uint64) bool {
	e.mu.Lock()
	p := e.poll
	if p == nil || p.gen != gen {
		e.mu.Unlock()
		return false
	}

	p.remaining--
	e.emit(models.EventPollCountdown, p.remaining)
	if p.remaining > 0 {
		e.mu.Unlock()
		return true
	}

	winner, ok := tally.Winner(e.tally.Counts())
	target, advance := e.finishLocked(p, winner, ok, p.source)
	if !advance {
		e.mu.Unlock()
		return false
	}
	done := e.beginAdvanceLocked()
	e.mu.Unlock()

	defer close(done)
	ctx, cancel := context.WithTimeout(context.Background(), pointerWriteTimeout)
	defer cancel()
	if err := e.repo.SetCurrentOutcome(ctx, target); err != nil {
		slog.Error("failed to advance current outcome", "outcome_id", target, "error", err)
	}
	return false
}

func (e *Engine) beginAdvanceLocked() chan struct{} {
	done := make(chan struct{})
	e.advancing = done
	return done
}

// finishLocked ends p (which may be nil when no poll is open) and emits the
// resolution events. It returns the outcome the pointer should move to.
func (e *Engine) finishLocked(p *activePoll, winner tally.Choice, hasWinner bool, source *models.Outcome) (int64, bool) {
	if p != nil {
		p.cancel()
		e.poll = nil
	}
	counts := e.tally.Counts()

	e.emit(models.EventPollActive, false)
	if !hasWinner {
		slog.Info("poll ended without a winner", "votes_1", counts.One, "votes_2", counts.Two)
		return 0, false
	}

	e.emit(models.EventPollWinner, int(winner))
	slog.Info("poll ended", "winner", int(winner), "votes_1", counts.One, "votes_2", counts.Two)

	if source == nil {
		return 0, false
	}
	next, ok := source.ChildID(int(winner))
	if !ok {
		slog.Info("winning choice has no next outcome", "outcome_id", source.ID, "winner", int(winner))
		return 0, false
	}
	e.emit(models.EventOutcomeChange, next)
	return next, true
}

// RecordVote applies one viewer's vote. Votes outside an active poll are
// dropped.
func (e *Engine) RecordVote(voterID string, choice tally.Choice) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.poll == nil {
		return
	}
	counts, changed := e.tally.Apply(voterID, choice)
	if changed {
		e.emit(models.EventPollVotes, counts)
	}
}

// SelectWinnerManually resolves immediately with choice as the winner,
// stopping any running countdown. With no poll open it advances from the
// current outcome.
func (e *Engine) SelectWinnerManually(ctx context.Context, choice tally.Choice) error {
	if !choice.Valid() {
		return fmt.Errorf("%w: choice must be 1 or 2", ErrInvalidInput)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrClosed
	}
	if p := e.poll; p != nil {
		target, advance := e.finishLocked(p, choice, true, p.source)
		if !advance {
			e.mu.Unlock()
			return nil
		}
		done := e.beginAdvanceLocked()
		e.mu.Unlock()
		return e.writePointer(ctx, target, done)
	}
	e.mu.Unlock()

	current, err := e.repo.GetCurrentOutcome(ctx)
	if err != nil {
		return repositoryError("read current outcome", err)
	}

	e.mu.Lock()
	source := &current
	if p := e.poll; p != nil {
		// A poll opened while the outcome was being read; it is the one
		// being decided.
		source = p.source
	}
	target, advance := e.finishLocked(e.poll, choice, true, source)
	if !advance {
		e.mu.Unlock()
		return nil
	}
	done := e.beginAdvanceLocked()
	e.mu.Unlock()
	return e.writePointer(ctx, target, done)
}

func (e *Engine) writePointer(ctx context.Context, id int64, done chan struct{}) error {
	defer close(done)
	if err := e.repo.SetCurrentOutcome(ctx, id); err != nil {
		slog.Error("failed to advance current outcome", "outcome_id", id, "error", err)
		return repositoryError("advance current outcome", err)
	}
	return nil
}

// SetCurrentOutcome moves the pointer directly, bypassing any poll.
func (e *Engine) SetCurrentOutcome(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: outcome id must be positive", ErrInvalidInput)
	}
	if err := e.repo.SetCurrentOutcome(ctx, id); err != nil {
		return repositoryError("set current outcome", err)
	}

	e.mu.Lock()
	e.emit(models.EventOutcomeChange, id)
	e.mu.Unlock()

	slog.Info("current outcome set", "outcome_id", id)
	return nil
}

// ToggleOverlay shows or hides the on-stream poll display.
func (e *Engine) ToggleOverlay(active bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.overlay = active
	e.emit(models.EventPollOverlay, active)
}

// Active reports whether a poll is open.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.poll != nil
}

func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		State:   StateIdle,
		Overlay: e.overlay,
		Votes:   e.tally.Counts(),
	}
	if e.details != nil {
		d := *e.details
		d.Decisions = map[string]string{"1": e.details.Decisions["1"], "2": e.details.Decisions["2"]}
		s.Details = &d
	}
	if p := e.poll; p != nil {
		s.State = StateActive
		s.Remaining = p.remaining
		if p.source != nil {
			id := p.source.ID
			s.SourceOutcomeID = &id
		}
	}
	return s
}

// Close cancels any running countdown and waits for it to exit. Later
// commands fail with ErrClosed.
func (e *Engine) Close() {
	e.mu.Lock()
	e.closed = true
	if p := e.poll; p != nil {
		p.cancel()
		e.poll = nil
	}
	e.mu.Unlock()

	e.wg.Wait()
}

func (e *Engine) emit(event string, payload any) {
	if e.out == nil {
		return
	}
	e.out.Broadcast(event, payload)
}

// repositoryError keeps ErrNotFound visible to callers and tags every other
// store failure as ErrRepositoryUnavailable.
func repositoryError(op string, err error) error {
	if errors.Is(err, outcomes.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrRepositoryUnavailable, err)
}
