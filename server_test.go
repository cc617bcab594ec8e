package main

import (
	"encoding/json"
	"math/rand"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"aeroclash/arena/internal/config"
	"aeroclash/arena/internal/room"
	"aeroclash/arena/internal/wire"
)

func newTestServer(t *testing.T) (*Server, *room.Room, *httptest.Server) {
	t.Helper()
	cfg := &config.Config{
		Address:           ":0",
		MaxPayloadBytes:   config.DefaultMaxPayloadBytes,
		PingInterval:      config.DefaultPingInterval,
		MaxClients:        4,
		TickRate:          config.DefaultTickRate,
		TargetOccupancy:   config.DefaultTargetOccupancy,
		TerrainSeed:       1,
		LeaderboardSize:   config.DefaultLeaderboardSize,
		SnapshotCodec:     "snappy",
		CompressThreshold: config.DefaultCompressThreshold,
	}
	r := room.New(room.Options{
		TargetOccupancy: cfg.TargetOccupancy,
		LeaderboardSize: cfg.LeaderboardSize,
		TerrainSeed:     cfg.TerrainSeed,
		Rand:            rand.New(rand.NewSource(11)),
		Logger:          zerolog.Nop(),
	})
	encoder := wire.NewEncoder(wire.NewSnappyCodec(), cfg.CompressThreshold)
	server := NewServer(cfg, zerolog.Nop(), r, encoder)
	r.SetPublisher(server.PublishSnapshot)
	mux := http.NewServeMux()
	server.Routes(mux)
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return server, r, ts
}

func wsURL(ts *httptest.Server, query string) string {
	return "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, query), nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestConnectReceivesWelcome(t *testing.T) {
	_, r, ts := newTestServer(t)
	conn := dial(t, ts, "?name=Maverick")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	msgType, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read welcome: %v", err)
	}
	if msgType != websocket.TextMessage {
		t.Fatalf("welcome must be a text frame, got %d", msgType)
	}

	var welcome welcomeMessage
	if err := json.Unmarshal(raw, &welcome); err != nil {
		t.Fatalf("unmarshal welcome: %v", err)
	}
	if welcome.Type != "welcome" || welcome.SessionID == "" {
		t.Fatalf("unexpected welcome: %+v", welcome)
	}
	if welcome.TerrainSeed != r.Terrain().Seed() {
		t.Fatalf("welcome should carry the terrain seed, got %d", welcome.TerrainSeed)
	}
}

func TestRespawnEntersPlayAndSnapshotArrives(t *testing.T) {
	_, r, ts := newTestServer(t)
	conn := dial(t, ts, "?name=Maverick")

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read welcome: %v", err)
	}

	if err := conn.WriteJSON(clientMessage{Type: "respawn"}); err != nil {
		t.Fatalf("write respawn: %v", err)
	}

	//1.- Drive ticks until the staged join and respawn have been applied and a
	// snapshot showing the ready entity arrives.
	deadline := time.Now().Add(2 * time.Second)
	var snapshot *wire.Snapshot
	for time.Now().Before(deadline) {
		r.Step(1.0 / 30)
		conn.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
		msgType, raw, err := conn.ReadMessage()
		if err != nil {
			continue
		}
		if msgType != websocket.BinaryMessage {
			continue
		}
		decoded, err := wire.Decode(raw)
		if err != nil {
			t.Fatalf("decode snapshot: %v", err)
		}
		snapshot = decoded
		ready := false
		for _, entity := range decoded.Entities {
			if entity.Name == "Maverick" && entity.Ready {
				ready = true
			}
		}
		if ready {
			break
		}
		snapshot = nil
	}
	if snapshot == nil {
		t.Fatal("never observed a snapshot with the ready session")
	}

	//2.- The balancer filled the room around the lone human.
	if len(snapshot.Entities) != config.DefaultTargetOccupancy {
		t.Fatalf("expected %d entities in the snapshot, got %d", config.DefaultTargetOccupancy, len(snapshot.Entities))
	}
}

func TestStatsEndpoint(t *testing.T) {
	_, r, ts := newTestServer(t)
	r.Step(1.0 / 30)

	resp, err := http.Get(ts.URL + "/stats")
	if err != nil {
		t.Fatalf("stats request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("stats status %d", resp.StatusCode)
	}

	var payload statsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if payload.Tick != 1 {
		t.Fatalf("stats should reflect the latest tick, got %d", payload.Tick)
	}
}

func TestHealthEndpoint(t *testing.T) {
	_, _, ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("health request: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status %d", resp.StatusCode)
	}
}

func TestMaxClientsRejectsOverflow(t *testing.T) {
	server, _, ts := newTestServer(t)
	server.cfg.MaxClients = 1

	first := dial(t, ts, "")
	first.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := first.ReadMessage(); err != nil {
		t.Fatalf("read welcome: %v", err)
	}

	if _, resp, err := websocket.DefaultDialer.Dial(wsURL(ts, ""), nil); err == nil {
		t.Fatal("second dial should be rejected")
	} else if resp == nil || resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %+v", resp)
	}
}

func TestOriginFiltering(t *testing.T) {
	server, _, ts := newTestServer(t)
	server.cfg.AllowedOrigins = []string{"https://arena.example"}

	header := http.Header{"Origin": []string{"https://evil.example"}}
	if _, _, err := websocket.DefaultDialer.Dial(wsURL(ts, ""), header); err == nil {
		t.Fatal("disallowed origin should fail the upgrade")
	}

	header = http.Header{"Origin": []string{"https://arena.example"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL(ts, ""), header)
	if err != nil {
		t.Fatalf("allowed origin should connect: %v", err)
	}
	conn.Close()
}
