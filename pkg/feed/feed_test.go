package feed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talonworks/sortie/pkg/battle"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func dialFeed(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Dial returned error: %v", err)
	}
	return conn
}

func TestBroadcastReachesSpectators(t *testing.T) {
	hub := NewHub("feed-proving")
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleFeed))
	defer srv.Close()

	conn := dialFeed(t, srv)
	defer conn.Close()

	waitFor(t, "spectator registration", func() bool { return hub.Clients() == 1 })

	sent := battle.Snapshot{
		Phase:   battle.PhaseActive,
		Elapsed: 12.5,
		Entities: []battle.EntitySnapshot{
			{ID: "allied-0", Name: "Kestrel-1", Team: battle.TeamAllied, Health: 100, MaxHealth: 100},
		},
	}
	hub.Broadcast(sent)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage returned error: %v", err)
	}

	var got battle.Snapshot
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Failed to unmarshal snapshot: %v", err)
	}
	if got.Phase != battle.PhaseActive {
		t.Errorf("Expected phase active, got %s", got.Phase)
	}
	if got.Elapsed != 12.5 {
		t.Errorf("Expected elapsed 12.5, got %v", got.Elapsed)
	}
	if len(got.Entities) != 1 || got.Entities[0].ID != "allied-0" {
		t.Errorf("Expected one entity allied-0, got %+v", got.Entities)
	}
}

func TestDisconnectedSpectatorIsDropped(t *testing.T) {
	hub := NewHub("feed-proving")
	defer hub.Close()

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleFeed))
	defer srv.Close()

	conn := dialFeed(t, srv)
	waitFor(t, "spectator registration", func() bool { return hub.Clients() == 1 })

	conn.Close()
	waitFor(t, "spectator removal", func() bool { return hub.Clients() == 0 })

	// Broadcasting with nobody listening must not panic.
	hub.Broadcast(battle.Snapshot{Phase: battle.PhaseVictory})
}

func TestCloseDisconnectsSpectators(t *testing.T) {
	hub := NewHub("feed-proving")

	srv := httptest.NewServer(http.HandlerFunc(hub.HandleFeed))
	defer srv.Close()

	conn := dialFeed(t, srv)
	defer conn.Close()

	waitFor(t, "spectator registration", func() bool { return hub.Clients() == 1 })

	hub.Close()
	if hub.Clients() != 0 {
		t.Errorf("Expected 0 spectators after close, got %d", hub.Clients())
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected read to fail after hub close")
	}
}

func TestHandleIndex(t *testing.T) {
	hub := NewHub("feed-proving")
	defer hub.Close()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	hub.HandleIndex(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Expected application/json, got %s", ct)
	}

	var status map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to unmarshal status: %v", err)
	}
	if status["battle"] != "feed-proving" {
		t.Errorf("Expected battle feed-proving, got %v", status["battle"])
	}
	if status["spectators"] != float64(0) {
		t.Errorf("Expected 0 spectators, got %v", status["spectators"])
	}
	if status["feed"] != "/feed" {
		t.Errorf("Expected feed path /feed, got %v", status["feed"])
	}
}
