// Command arena runs an authoritative multiplayer dogfight server: a fixed
// timestep simulation room, a bot population that keeps the airspace
// contested, and a websocket surface replicating compact world snapshots.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"aeroclash/arena/internal/config"
	"aeroclash/arena/internal/recorder"
	"aeroclash/arena/internal/room"
	"aeroclash/arena/internal/wire"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("invalid configuration")
	}

	logger := newLogger(cfg)

	r := room.New(room.Options{
		TargetOccupancy: cfg.TargetOccupancy,
		LeaderboardSize: cfg.LeaderboardSize,
		TerrainSeed:     cfg.TerrainSeed,
		Logger:          logger.With().Str("component", "room").Logger(),
	})

	codec, err := snapshotCodec(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid snapshot codec")
	}
	encoder := wire.NewEncoder(codec, cfg.CompressThreshold)

	server := NewServer(cfg, logger.With().Str("component", "server").Logger(), r, encoder)
	mux := http.NewServeMux()
	server.Routes(mux)

	//1.- Snapshots fan out to the websocket clients and, when configured, to
	// the on-disk recorder.
	publish := server.PublishSnapshot
	var rec *recorder.Writer
	if cfg.RecordDir != "" {
		rec, err = recorder.New(cfg.RecordDir, "arena", cfg.TerrainSeed, cfg.TickRate, nil)
		if err != nil {
			logger.Fatal().Err(err).Msg("recorder setup failed")
		}
		logger.Info().Str("dir", rec.Dir()).Msg("recording snapshots")
		publish = func(snapshot *wire.Snapshot) {
			server.PublishSnapshot(snapshot)
			if err := rec.Record(snapshot); err != nil {
				logger.Warn().Err(err).Msg("snapshot recording failed")
			}
		}
	}
	r.SetPublisher(publish)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loop := room.NewLoop(float64(cfg.TickRate), func(step time.Duration) {
		r.Step(step.Seconds())
	}, r.Monitor())
	loop.Start(ctx)

	httpServer := &http.Server{Addr: cfg.Address, Handler: mux}
	go func() {
		logger.Info().
			Str("addr", cfg.Address).
			Int("tick_rate", cfg.TickRate).
			Int64("terrain_seed", cfg.TerrainSeed).
			Msg("arena listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server stopped")
			cancel()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown incomplete")
	}
	loop.Stop()
	if rec != nil {
		if err := rec.Close(); err != nil {
			logger.Warn().Err(err).Msg("recorder close failed")
		}
	}
}

// newLogger builds the process logger from the configured level and format.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var logger zerolog.Logger
	if cfg.LogPretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	return logger.Level(level).With().Timestamp().Logger()
}

// snapshotCodec resolves the configured codec name; "none" disables
// compression entirely.
func snapshotCodec(cfg *config.Config) (wire.Codec, error) {
	if cfg.SnapshotCodec == "none" {
		return nil, nil
	}
	return wire.CodecByName(cfg.SnapshotCodec)
}
