package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultAddr is the default TCP address the arena server listens on.
	DefaultAddr = ":43180"
	// DefaultPingInterval controls the keepalive cadence for WebSocket connections.
	DefaultPingInterval = 30 * time.Second
	// DefaultMaxPayloadBytes limits inbound WebSocket frame size.
	DefaultMaxPayloadBytes int64 = 64 << 10
	// DefaultMaxClients bounds concurrent WebSocket connections. Zero disables the limit.
	DefaultMaxClients = 64

	// DefaultTickRate is the fixed simulation frequency in ticks per second.
	DefaultTickRate = 30
	// DefaultTargetOccupancy is the total entity count the bot balancer maintains.
	DefaultTargetOccupancy = 8
	// DefaultTerrainSeed selects the deterministic obstacle layout.
	DefaultTerrainSeed int64 = 1
	// DefaultLeaderboardSize is the number of leaderboard rows in snapshots.
	DefaultLeaderboardSize = 5

	// DefaultSnapshotCodec names the compression codec for snapshot frames.
	DefaultSnapshotCodec = "snappy"
	// DefaultCompressThreshold is the snapshot body size at which compression engages.
	DefaultCompressThreshold = 512
	// DefaultSnapshotEvery broadcasts every Nth tick; 1 means every tick.
	DefaultSnapshotEvery = 1

	// DefaultLogLevel controls verbosity for arena logs.
	DefaultLogLevel = "info"
)

// Config captures all runtime tunables for the arena server.
type Config struct {
	Address           string
	AllowedOrigins    []string
	MaxPayloadBytes   int64
	PingInterval      time.Duration
	MaxClients        int
	TickRate          int
	TargetOccupancy   int
	TerrainSeed       int64
	LeaderboardSize   int
	SnapshotCodec     string
	CompressThreshold int
	SnapshotEvery     int
	RecordDir         string
	LogLevel          string
	LogPretty         bool
}

// TickInterval derives the fixed tick duration from the configured rate.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Load reads the arena configuration from environment variables, applying sane
// defaults and returning descriptive errors for invalid overrides.
func Load() (*Config, error) {
	cfg := &Config{
		Address:           getString("ARENA_ADDR", DefaultAddr),
		AllowedOrigins:    parseList(os.Getenv("ARENA_ALLOWED_ORIGINS")),
		MaxPayloadBytes:   DefaultMaxPayloadBytes,
		PingInterval:      DefaultPingInterval,
		MaxClients:        DefaultMaxClients,
		TickRate:          DefaultTickRate,
		TargetOccupancy:   DefaultTargetOccupancy,
		TerrainSeed:       DefaultTerrainSeed,
		LeaderboardSize:   DefaultLeaderboardSize,
		SnapshotCodec:     getString("ARENA_SNAPSHOT_CODEC", DefaultSnapshotCodec),
		CompressThreshold: DefaultCompressThreshold,
		SnapshotEvery:     DefaultSnapshotEvery,
		RecordDir:         strings.TrimSpace(os.Getenv("ARENA_RECORD_DIR")),
		LogLevel:          getString("ARENA_LOG_LEVEL", DefaultLogLevel),
	}

	var problems []string

	if raw := strings.TrimSpace(os.Getenv("ARENA_MAX_PAYLOAD_BYTES")); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("ARENA_MAX_PAYLOAD_BYTES must be a positive integer, got %q", raw))
		} else {
			cfg.MaxPayloadBytes = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("ARENA_PING_INTERVAL")); raw != "" {
		duration, err := time.ParseDuration(raw)
		if err != nil || duration <= 0 {
			problems = append(problems, fmt.Sprintf("ARENA_PING_INTERVAL must be a positive duration, got %q", raw))
		} else {
			cfg.PingInterval = duration
		}
	}

	if raw := strings.TrimSpace(os.Getenv("ARENA_MAX_CLIENTS")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 0 {
			problems = append(problems, fmt.Sprintf("ARENA_MAX_CLIENTS must be a non-negative integer, got %q", raw))
		} else {
			cfg.MaxClients = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("ARENA_TICK_RATE")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value < 10 || value > 120 {
			problems = append(problems, fmt.Sprintf("ARENA_TICK_RATE must be an integer between 10 and 120, got %q", raw))
		} else {
			cfg.TickRate = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("ARENA_TARGET_OCCUPANCY")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("ARENA_TARGET_OCCUPANCY must be a positive integer, got %q", raw))
		} else {
			cfg.TargetOccupancy = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("ARENA_TERRAIN_SEED")); raw != "" {
		value, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			problems = append(problems, fmt.Sprintf("ARENA_TERRAIN_SEED must be an integer, got %q", raw))
		} else {
			cfg.TerrainSeed = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("ARENA_LEADERBOARD_SIZE")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("ARENA_LEADERBOARD_SIZE must be a positive integer, got %q", raw))
		} else {
			cfg.LeaderboardSize = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("ARENA_COMPRESS_THRESHOLD")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("ARENA_COMPRESS_THRESHOLD must be a positive integer, got %q", raw))
		} else {
			cfg.CompressThreshold = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("ARENA_SNAPSHOT_EVERY")); raw != "" {
		value, err := strconv.Atoi(raw)
		if err != nil || value <= 0 {
			problems = append(problems, fmt.Sprintf("ARENA_SNAPSHOT_EVERY must be a positive integer, got %q", raw))
		} else {
			cfg.SnapshotEvery = value
		}
	}

	if raw := strings.TrimSpace(os.Getenv("ARENA_LOG_PRETTY")); raw != "" {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			problems = append(problems, fmt.Sprintf("ARENA_LOG_PRETTY must be a boolean value, got %q", raw))
		} else {
			cfg.LogPretty = value
		}
	}

	switch cfg.SnapshotCodec {
	case "snappy", "gzip", "none":
	default:
		problems = append(problems, fmt.Sprintf("ARENA_SNAPSHOT_CODEC must be one of snappy, gzip or none, got %q", cfg.SnapshotCodec))
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%s", strings.Join(problems, "; "))
	}

	return cfg, nil
}

func getString(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		if item := strings.TrimSpace(part); item != "" {
			values = append(values, item)
		}
	}
	return values
}
