// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/danielhkuo/crossroads/cliparse"
	"github.com/danielhkuo/crossroads/models"
	"github.com/danielhkuo/crossroads/outcomes"
)

// TestDashboardKey is the dashboard secret used by GetTestConfig
const TestDashboardKey = "test-dashboard-key"

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:                3318,
		DatabaseType:        cliparse.DatabaseMemory,
		DashboardKey:        TestDashboardKey,
		DefaultPollDuration: models.DefaultPollDuration,
		CommandRateLimit:    1000,
	}
}

func ptrInt(v int64) *int64    { return &v }
func ptrStr(v string) *string { return &v }

// SampleOutcomes returns a small story graph:
//
//	1 "The Crossroads" -> 2 (forest) | 3 (river)
//	2 "The Forest"     -> 1 (loop back) | 4 (cabin)
//	3 "The River"      leaf
//	4 "The Cabin"      leaf
func SampleOutcomes() []models.Outcome {
	return []models.Outcome{
		{
			ID:            1,
			Title:         "The Crossroads",
			Decision1ID:   ptrInt(2),
			Decision2ID:   ptrInt(3),
			Decision1Text: ptrStr("Take the forest path"),
			Decision2Text: ptrStr("Follow the river"),
			Duration:      45,
		},
		{
			ID:            2,
			Title:         "The Forest",
			Decision1ID:   ptrInt(1),
			Decision2ID:   ptrInt(4),
			Decision1Text: ptrStr("Turn back"),
			Decision2Text: ptrStr("Enter the cabin"),
		},
		{ID: 3, Title: "The River"},
		{ID: 4, Title: "The Cabin"},
	}
}

// NewSeededStore returns a MemoryStore holding SampleOutcomes with the
// pointer on the given outcome (0 leaves it unset)
func NewSeededStore(t *testing.T, current int64) *outcomes.MemoryStore {
	t.Helper()

	store := outcomes.NewMemoryStore(SampleOutcomes()...)
	if current > 0 {
		if err := store.SetCurrentOutcome(context.Background(), current); err != nil {
			t.Fatalf("Failed to set current outcome: %v", err)
		}
	}
	return store
}

// FlakyStore wraps a Store and fails reads or pointer writes on demand
type FlakyStore struct {
	outcomes.Store

	mu      sync.Mutex
	readErr error
	setErr  error
	gate    chan struct{}
}

func NewFlakyStore(store outcomes.Store) *FlakyStore {
	return &FlakyStore{Store: store}
}

// FailReads makes every read return err (nil restores normal behavior)
func (f *FlakyStore) FailReads(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.readErr = err
}

// FailWrites makes SetCurrentOutcome return err (nil restores normal behavior)
func (f *FlakyStore) FailWrites(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setErr = err
}

// HoldWrites blocks SetCurrentOutcome until the returned release is called
func (f *FlakyStore) HoldWrites() (release func()) {
	gate := make(chan struct{})
	f.mu.Lock()
	f.gate = gate
	f.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.mu.Lock()
			f.gate = nil
			f.mu.Unlock()
			close(gate)
		})
	}
}

func (f *FlakyStore) errs() (read, set error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readErr, f.setErr
}

func (f *FlakyStore) GetCurrentOutcome(ctx context.Context) (models.Outcome, error) {
	if err, _ := f.errs(); err != nil {
		return models.Outcome{}, err
	}
	return f.Store.GetCurrentOutcome(ctx)
}

func (f *FlakyStore) GetOutcome(ctx context.Context, id int64) (models.Outcome, error) {
	if err, _ := f.errs(); err != nil {
		return models.Outcome{}, err
	}
	return f.Store.GetOutcome(ctx, id)
}

func (f *FlakyStore) ListOutcomes(ctx context.Context) ([]models.Outcome, error) {
	if err, _ := f.errs(); err != nil {
		return nil, err
	}
	return f.Store.ListOutcomes(ctx)
}

func (f *FlakyStore) SetCurrentOutcome(ctx context.Context, id int64) error {
	f.mu.Lock()
	gate := f.gate
	f.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if _, err := f.errs(); err != nil {
		return err
	}
	return f.Store.SetCurrentOutcome(ctx, id)
}

// RecordedEvent is one call to Recorder.Broadcast
type RecordedEvent struct {
	Name    string
	Payload any
}

// Recorder is a broadcaster that remembers every event in order
type Recorder struct {
	mu     sync.Mutex
	events []RecordedEvent
}

func (r *Recorder) Broadcast(event string, payload any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, RecordedEvent{Name: event, Payload: payload})
}

func (r *Recorder) Events() []RecordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]RecordedEvent(nil), r.events...)
}

// Names returns the event names in emission order
func (r *Recorder) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.events))
	for i, e := range r.events {
		names[i] = e.Name
	}
	return names
}

// Count returns how many times event was emitted
func (r *Recorder) Count(event string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.events {
		if e.Name == event {
			n++
		}
	}
	return n
}

// Last returns the payload of the most recent emission of event
func (r *Recorder) Last(event string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Name == event {
			return r.events[i].Payload, true
		}
	}
	return nil, false
}

func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// DashboardHeaders returns the header map carrying the test dashboard key
func DashboardHeaders() map[string]string {
	return map[string]string{"X-Dashboard-Key": TestDashboardKey}
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
