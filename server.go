package main

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"aeroclash/arena/internal/config"
	"aeroclash/arena/internal/room"
	"aeroclash/arena/internal/state"
	"aeroclash/arena/internal/wire"
)

// clientMessage is the JSON layout of every inbound websocket frame.
type clientMessage struct {
	Type     string         `json:"type"`
	Controls state.Controls `json:"controls"`
}

// welcomeMessage is sent once per connection before any snapshot frames.
type welcomeMessage struct {
	Type        string `json:"type"`
	SessionID   string `json:"session_id"`
	TerrainSeed int64  `json:"terrain_seed"`
	TickRate    int    `json:"tick_rate"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Server terminates websocket sessions and relays between them and the room:
// inbound control and respawn messages go in, framed snapshots come out.
type Server struct {
	log     zerolog.Logger
	cfg     *config.Config
	room    *room.Room
	encoder *wire.Encoder

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewServer wires a websocket front end onto the room. The caller installs
// PublishSnapshot as the room's snapshot sink.
func NewServer(cfg *config.Config, logger zerolog.Logger, r *room.Room, encoder *wire.Encoder) *Server {
	s := &Server{
		log:     logger,
		cfg:     cfg,
		room:    r,
		encoder: encoder,
		clients: make(map[*client]struct{}),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

// Routes registers the server's HTTP handlers on the mux.
func (s *Server) Routes(mux *http.ServeMux) {
	mux.HandleFunc("/ws", s.serveWS)
	mux.HandleFunc("/healthz", s.serveHealth)
	mux.HandleFunc("/stats", s.serveStats)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range s.cfg.AllowedOrigins {
		if origin == allowed {
			return true
		}
	}
	return false
}

func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	if s.cfg.MaxClients > 0 {
		s.mu.Lock()
		full := len(s.clients) >= s.cfg.MaxClients
		s.mu.Unlock()
		if full {
			http.Error(w, "arena full", http.StatusServiceUnavailable)
			return
		}
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	name := r.URL.Query().Get("name")
	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, 8),
	}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	//1.- The session exists in the room from the first tick after connect; it
	// enters play only once a respawn message arrives.
	s.room.Join(c.id, name)
	s.log.Info().Str("session", c.id).Str("name", name).Msg("client connected")

	welcome, err := json.Marshal(welcomeMessage{
		Type:        "welcome",
		SessionID:   c.id,
		TerrainSeed: s.room.Terrain().Seed(),
		TickRate:    s.cfg.TickRate,
	})
	if err == nil {
		_ = conn.WriteMessage(websocket.TextMessage, welcome)
	}

	go s.readPump(c)
	go s.writePump(c)
}

func (s *Server) readPump(c *client) {
	defer s.drop(c)
	c.conn.SetReadLimit(s.cfg.MaxPayloadBytes)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.log.Debug().Err(err).Str("session", c.id).Msg("read error")
			}
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			//1.- Malformed frames are dropped, never fatal to the session.
			s.log.Debug().Err(err).Str("session", c.id).Msg("discarding malformed frame")
			continue
		}

		switch msg.Type {
		case "input":
			s.room.SetControls(c.id, msg.Controls)
		case "respawn":
			s.room.RequestRespawn(c.id)
		default:
			s.log.Debug().Str("session", c.id).Str("type", msg.Type).Msg("unknown message type")
		}
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(s.cfg.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.BinaryMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte{}); err != nil {
				return
			}
		}
	}
}

// drop removes the client from the registry and stages the room leave.
func (s *Server) drop(c *client) {
	s.mu.Lock()
	if _, ok := s.clients[c]; ok {
		delete(s.clients, c)
		close(c.send)
	}
	s.mu.Unlock()

	c.conn.Close()
	s.room.Leave(c.id)
	s.log.Info().Str("session", c.id).Msg("client disconnected")
}

// PublishSnapshot encodes the tick snapshot once and fans it out. A client
// whose send buffer is full skips the frame; the next tick supersedes it.
// When broadcast decimation is configured only every Nth tick is sent.
func (s *Server) PublishSnapshot(snapshot *wire.Snapshot) {
	if every := s.cfg.SnapshotEvery; every > 1 && snapshot.Tick%uint64(every) != 0 {
		return
	}
	frame, err := s.encoder.Encode(snapshot)
	if err != nil {
		s.log.Error().Err(err).Uint64("tick", snapshot.Tick).Msg("snapshot encode failed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- frame:
		default:
		}
	}
}

func (s *Server) serveHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// statsPayload is the JSON body of the /stats endpoint.
type statsPayload struct {
	Tick        uint64         `json:"tick"`
	Humans      int            `json:"humans"`
	Total       int            `json:"total"`
	Projectiles int            `json:"projectiles"`
	TickStats   room.TickStats `json:"tick_stats"`
	AverageRate float64        `json:"average_tick_rate"`
}

func (s *Server) serveStats(w http.ResponseWriter, _ *http.Request) {
	humans, total := s.room.Occupancy()
	stats := s.room.Monitor().Snapshot()
	payload := statsPayload{
		Humans:      humans,
		Total:       total,
		TickStats:   stats,
		AverageRate: stats.AverageRate(),
	}
	if snapshot := s.room.Snapshot(); snapshot != nil {
		payload.Tick = snapshot.Tick
		payload.Projectiles = len(snapshot.Projectiles)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log.Debug().Err(err).Msg("stats encode failed")
	}
}
