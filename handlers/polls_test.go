// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/danielhkuo/crossroads/models"
	"github.com/danielhkuo/crossroads/outcomes"
	"github.com/danielhkuo/crossroads/poll"
	"github.com/danielhkuo/crossroads/tally"
	"github.com/danielhkuo/crossroads/testutil"
)

// setupEngine returns an engine over the sample graph whose countdown never
// fires during a test
func setupEngine(t *testing.T, repo outcomes.Repository) (*poll.Engine, *testutil.Recorder) {
	t.Helper()
	rec := &testutil.Recorder{}
	engine := poll.NewEngine(repo, rec, poll.WithTickInterval(time.Hour))
	t.Cleanup(engine.Close)
	return engine, rec
}

func TestStartPoll(t *testing.T) {
	testCases := []struct {
		name          string
		body          interface{}
		current       int64
		expectedCode  int
		expectedState string
		wantActive    bool
	}{
		{"no body uses outcome duration", nil, 1, http.StatusOK, models.StatusOK, true},
		{"duration override", models.StartPollRequest{Duration: 10}, 1, http.StatusOK, models.StatusOK, true},
		{"leaf outcome is ignored", nil, 3, http.StatusOK, models.StatusIgnored, false},
		{"negative duration", map[string]int{"duration": -4}, 1, http.StatusBadRequest, "", false},
		{"no current outcome", nil, 0, http.StatusNotFound, "", false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine, _ := setupEngine(t, testutil.NewSeededStore(t, tc.current))
			handler := NewPollHandler(engine)

			req := testutil.MakeRequest("POST", "/poll/start", tc.body, nil)
			w := httptest.NewRecorder()
			handler.StartPoll(w, req)

			testutil.AssertStatus(t, w, tc.expectedCode)
			if tc.expectedState != "" {
				var resp models.CommandResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Status != tc.expectedState {
					t.Errorf("Expected status %q, got %q", tc.expectedState, resp.Status)
				}
			}
			if engine.Active() != tc.wantActive {
				t.Errorf("Expected active=%v, got %v", tc.wantActive, engine.Active())
			}
		})
	}
}

func TestStartPollWhileActive(t *testing.T) {
	engine, _ := setupEngine(t, testutil.NewSeededStore(t, 1))
	handler := NewPollHandler(engine)

	w := httptest.NewRecorder()
	handler.StartPoll(w, testutil.MakeRequest("POST", "/poll/start", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	w = httptest.NewRecorder()
	handler.StartPoll(w, testutil.MakeRequest("POST", "/poll/start", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var resp models.CommandResponse
	testutil.AssertJSON(t, w, &resp)
	if resp.Status != models.StatusIgnored {
		t.Errorf("Expected ignored, got %q", resp.Status)
	}
	if resp.Reason != "a poll is already active" {
		t.Errorf("Unexpected reason %q", resp.Reason)
	}
}

func TestStartPollStoreUnavailable(t *testing.T) {
	store := testutil.NewFlakyStore(testutil.NewSeededStore(t, 1))
	store.FailReads(errors.New("connection refused"))
	engine, rec := setupEngine(t, store)
	handler := NewPollHandler(engine)

	w := httptest.NewRecorder()
	handler.StartPoll(w, testutil.MakeRequest("POST", "/poll/start", nil, nil))

	testutil.AssertStatus(t, w, http.StatusServiceUnavailable)
	if len(rec.Events()) != 0 {
		t.Errorf("Expected no events, got %v", rec.Names())
	}
}

func TestStartCustomPoll(t *testing.T) {
	testCases := []struct {
		name         string
		body         string
		expectedCode int
	}{
		{"valid", `{"title":"Snack?","duration":20,"choice1":"Chips","choice2":"Fruit"}`, http.StatusOK},
		{"missing title", `{"duration":20,"choice1":"Chips","choice2":"Fruit"}`, http.StatusBadRequest},
		{"missing choice", `{"title":"Snack?","duration":20,"choice1":"Chips"}`, http.StatusBadRequest},
		{"zero duration", `{"title":"Snack?","choice1":"Chips","choice2":"Fruit"}`, http.StatusBadRequest},
		{"invalid JSON", `{"title":`, http.StatusBadRequest},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			engine, rec := setupEngine(t, testutil.NewSeededStore(t, 1))
			handler := NewPollHandler(engine)

			req := httptest.NewRequest("POST", "/poll/custom", strings.NewReader(tc.body))
			w := httptest.NewRecorder()
			handler.StartCustomPoll(w, req)

			testutil.AssertStatus(t, w, tc.expectedCode)
			if tc.expectedCode == http.StatusOK {
				details, ok := rec.Last(models.EventPollDetails)
				if !ok {
					t.Fatal("Expected poll:details to be broadcast")
				}
				if details.(models.PollDetails).Title != "Snack?" {
					t.Errorf("Unexpected details %+v", details)
				}
			} else if len(rec.Events()) != 0 {
				t.Errorf("Expected no events, got %v", rec.Names())
			}
		})
	}
}

func TestSelectWinner(t *testing.T) {
	testCases := []struct {
		name         string
		body         interface{}
		expectedCode int
		wantCurrent  int64
	}{
		{"choice 1", models.SelectWinnerRequest{Choice: 1}, http.StatusOK, 2},
		{"choice 2", models.SelectWinnerRequest{Choice: 2}, http.StatusOK, 3},
		{"choice 0", models.SelectWinnerRequest{Choice: 0}, http.StatusBadRequest, 1},
		{"choice 3", models.SelectWinnerRequest{Choice: 3}, http.StatusBadRequest, 1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := testutil.NewSeededStore(t, 1)
			engine, _ := setupEngine(t, store)
			handler := NewPollHandler(engine)

			w := httptest.NewRecorder()
			handler.SelectWinner(w, testutil.MakeRequest("POST", "/poll/winner", tc.body, nil))

			testutil.AssertStatus(t, w, tc.expectedCode)
			if store.CurrentID() != tc.wantCurrent {
				t.Errorf("Expected current outcome %d, got %d", tc.wantCurrent, store.CurrentID())
			}
		})
	}
}

func TestSelectWinnerEndsActivePoll(t *testing.T) {
	store := testutil.NewSeededStore(t, 1)
	engine, rec := setupEngine(t, store)
	handler := NewPollHandler(engine)

	if err := engine.StartPoll(t.Context(), 0); err != nil {
		t.Fatal(err)
	}
	engine.RecordVote("viewer-1", tally.ChoiceOne)
	rec.Reset()

	w := httptest.NewRecorder()
	handler.SelectWinner(w, testutil.MakeRequest("POST", "/poll/winner", models.SelectWinnerRequest{Choice: 2}, nil))

	testutil.AssertStatus(t, w, http.StatusOK)
	if engine.Active() {
		t.Error("Expected poll to be over")
	}
	want := []string{models.EventPollActive, models.EventPollWinner, models.EventOutcomeChange}
	if got := rec.Names(); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Expected events %v, got %v", want, got)
	}
	if store.CurrentID() != 3 {
		t.Errorf("Expected current outcome 3, got %d", store.CurrentID())
	}
}

func TestToggleOverlay(t *testing.T) {
	engine, rec := setupEngine(t, testutil.NewSeededStore(t, 1))
	handler := NewPollHandler(engine)

	for _, active := range []bool{true, false} {
		w := httptest.NewRecorder()
		handler.ToggleOverlay(w, testutil.MakeRequest("POST", "/poll/overlay", models.ToggleOverlayRequest{Active: active}, nil))
		testutil.AssertStatus(t, w, http.StatusOK)

		got, _ := rec.Last(models.EventPollOverlay)
		if got != active {
			t.Errorf("Expected overlay %v broadcast, got %v", active, got)
		}
		if engine.Snapshot().Overlay != active {
			t.Errorf("Expected snapshot overlay %v", active)
		}
	}

	w := httptest.NewRecorder()
	handler.ToggleOverlay(w, httptest.NewRequest("POST", "/poll/overlay", strings.NewReader("nope")))
	testutil.AssertStatus(t, w, http.StatusBadRequest)
}

func TestGetPoll(t *testing.T) {
	engine, _ := setupEngine(t, testutil.NewSeededStore(t, 1))
	handler := NewPollHandler(engine)

	w := httptest.NewRecorder()
	handler.GetPoll(w, testutil.MakeRequest("GET", "/poll", nil, nil))
	testutil.AssertStatus(t, w, http.StatusOK)

	var idle models.PollStateResponse
	testutil.AssertJSON(t, w, &idle)
	if idle.Active || idle.Details != nil {
		t.Errorf("Expected idle state without details, got %+v", idle)
	}

	if err := engine.StartPoll(t.Context(), 25); err != nil {
		t.Fatal(err)
	}
	engine.RecordVote("viewer-1", tally.ChoiceTwo)

	w = httptest.NewRecorder()
	handler.GetPoll(w, testutil.MakeRequest("GET", "/poll", nil, nil))

	var active models.PollStateResponse
	testutil.AssertJSON(t, w, &active)
	if !active.Active {
		t.Error("Expected active poll")
	}
	if active.Remaining != 25 {
		t.Errorf("Expected 25 seconds remaining, got %d", active.Remaining)
	}
	if active.Votes != (models.VoteCounts{Two: 1}) {
		t.Errorf("Unexpected votes %+v", active.Votes)
	}
	if active.Details == nil || active.Details.Decisions["2"] != "Follow the river" {
		t.Errorf("Unexpected details %+v", active.Details)
	}
}
