package spectate

import (
	"encoding/json"
	"errors"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/snakepilot/internal/games/snake"
	"github.com/vovakirdan/snakepilot/internal/storage"
)

type fakeRuns struct {
	runs     []storage.Run
	err      error
	provider string
	limit    int
}

func (f *fakeRuns) TopRuns(provider string, limit int) ([]storage.Run, error) {
	f.provider, f.limit = provider, limit
	return f.runs, f.err
}

func testFrame(tick uint64) Frame {
	return Frame{
		Provider: "greedy",
		Snapshot: snake.Snapshot{
			Tick:    tick,
			Head:    snake.Position{X: 20, Y: 0},
			Body:    []snake.Position{{X: 0, Y: 0}, {X: -20, Y: 0}},
			Food:    snake.Position{X: 100, Y: 40},
			Heading: snake.DirRight,
			Bound:   295,
			Step:    20,
			State:   snake.StateRunning,
		},
		Stats: snake.Stats{Decisions: 3, Successful: 2, Fallbacks: 1},
	}
}

func newTestServer(t *testing.T, runs RunSource) (*Hub, *httptest.Server) {
	t.Helper()
	hub := NewHub()
	srv := httptest.NewServer(NewServer(hub, runs, log.New(io.Discard)).Handler())
	t.Cleanup(srv.Close)
	return hub, srv
}

func TestHubDropsFramesForSlowSubscribers(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()

	for i := range subscriberBuffer + 5 {
		hub.Publish(testFrame(uint64(i)))
	}
	if got := len(ch); got != subscriberBuffer {
		t.Errorf("buffered = %d, want %d", got, subscriberBuffer)
	}
	if hub.Dropped() != 5 {
		t.Errorf("dropped = %d, want 5", hub.Dropped())
	}

	latest, ok := hub.Latest()
	if !ok || latest.Snapshot.Tick != subscriberBuffer+4 {
		t.Errorf("Latest() = %+v, %v", latest.Snapshot, ok)
	}

	cancel()
	cancel()
	if hub.Subscribers() != 0 {
		t.Errorf("subscribers = %d after cancel", hub.Subscribers())
	}
	for range ch {
	}
}

func TestHubCountsUnencodableFrames(t *testing.T) {
	hub := NewHub()
	ch, cancel := hub.Subscribe()
	defer cancel()

	hub.Publish(testFrame(1))
	bad := testFrame(2)
	bad.Snapshot.Heading = snake.Direction(99)
	hub.Publish(bad)

	if hub.Failed() != 1 {
		t.Errorf("failed = %d, want 1", hub.Failed())
	}
	if got := len(ch); got != 1 {
		t.Errorf("buffered = %d, want only the encodable frame", got)
	}
	latest, ok := hub.Latest()
	if !ok || latest.Snapshot.Tick != 1 {
		t.Errorf("Latest() = %+v, %v; want tick 1", latest.Snapshot, ok)
	}
}

func TestHealthz(t *testing.T) {
	hub, srv := newTestServer(t, nil)
	bad := testFrame(1)
	bad.Snapshot.Heading = snake.Direction(99)
	hub.Publish(bad)

	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
	var body struct {
		Status  string `json:"status"`
		Dropped uint64 `json:"dropped"`
		Failed  uint64 `json:"failed"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Dropped != 0 || body.Failed != 1 {
		t.Errorf("health = %+v", body)
	}
}

func TestState(t *testing.T) {
	hub, srv := newTestServer(t, nil)

	resp, err := http.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("status before publish = %d, want 503", resp.StatusCode)
	}

	hub.Publish(testFrame(7))
	resp, err = http.Get(srv.URL + "/api/state")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var got Frame
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Snapshot.Tick != 7 || got.Snapshot.Heading != snake.DirRight || got.Provider != "greedy" || got.Stats.Fallbacks != 1 {
		t.Errorf("frame = %+v", got)
	}
}

func TestScores(t *testing.T) {
	runs := &fakeRuns{runs: []storage.Run{{Provider: "openai", Score: 9}}}
	_, srv := newTestServer(t, runs)

	resp, err := http.Get(srv.URL + "/api/scores?provider=openai&limit=5")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	var body struct{ Runs []storage.Run }
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Runs) != 1 || body.Runs[0].Score != 9 {
		t.Errorf("runs = %+v", body.Runs)
	}
	if runs.provider != "openai" || runs.limit != 5 {
		t.Errorf("query = %q/%d", runs.provider, runs.limit)
	}
}

func TestScoresErrors(t *testing.T) {
	tests := []struct {
		name   string
		runs   RunSource
		query  string
		status int
	}{
		{"no storage", nil, "", http.StatusServiceUnavailable},
		{"bad limit", &fakeRuns{}, "?limit=abc", http.StatusBadRequest},
		{"limit too large", &fakeRuns{}, "?limit=1000", http.StatusBadRequest},
		{"query failure", &fakeRuns{err: errors.New("disk")}, "", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, srv := newTestServer(t, tt.runs)
			resp, err := http.Get(srv.URL + "/api/scores" + tt.query)
			if err != nil {
				t.Fatalf("GET: %v", err)
			}
			resp.Body.Close()
			if resp.StatusCode != tt.status {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.status)
			}
		})
	}
}

func TestBoardPNG(t *testing.T) {
	hub, srv := newTestServer(t, nil)
	hub.Publish(testFrame(1))

	resp, err := http.Get(srv.URL + "/board.png?size=96")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "image/png" {
		t.Errorf("content-type = %q", ct)
	}
	img, err := png.Decode(resp.Body)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 96 || b.Dy() != 96 {
		t.Errorf("bounds = %v", b)
	}
}

func TestWebsocketStream(t *testing.T) {
	hub, srv := newTestServer(t, nil)
	hub.Publish(testFrame(1))

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer conn.Close()

	read := func() Frame {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var f Frame
		if err := conn.ReadJSON(&f); err != nil {
			t.Fatalf("ReadJSON: %v", err)
		}
		return f
	}

	if f := read(); f.Snapshot.Tick != 1 {
		t.Errorf("first frame tick = %d, want 1", f.Snapshot.Tick)
	}

	// Wait for the subscription to be registered before publishing.
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	hub.Publish(testFrame(2))

	if f := read(); f.Snapshot.Tick != 2 {
		t.Errorf("second frame tick = %d, want 2", f.Snapshot.Tick)
	}
}
