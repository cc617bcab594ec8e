// Package wire serialises the per-tick world snapshot for replication. The
// snapshot is encoded with msgpack and wrapped in a small frame that records
// whether, and with which codec, the body was compressed, so clients can stay
// codec-agnostic.
package wire

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"aeroclash/arena/internal/geom"
	"aeroclash/arena/internal/scoreboard"
	"aeroclash/arena/internal/state"
)

// DefaultCompressThreshold is the body size, in bytes, below which frames are
// sent raw. Small snapshots lose more to codec overhead than they gain.
const DefaultCompressThreshold = 512

// Frame header markers.
const (
	frameRaw        = 0x00
	frameCompressed = 0x01
)

// EntitySnapshot is the replicated view of one entity.
type EntitySnapshot struct {
	ID          string          `msgpack:"id"`
	Name        string          `msgpack:"name"`
	Position    geom.Vec3       `msgpack:"position"`
	Orientation geom.Quat       `msgpack:"orientation"`
	Health      float64         `msgpack:"health"`
	Kills       int             `msgpack:"kills"`
	GunHeat     float64         `msgpack:"gun_heat"`
	IsBot       bool            `msgpack:"is_bot"`
	Ready       bool            `msgpack:"ready"`
	Flavor      state.BotFlavor `msgpack:"flavor,omitempty"`
}

// ProjectileSnapshot is the replicated view of one live projectile.
type ProjectileSnapshot struct {
	ID       string    `msgpack:"id"`
	OwnerID  string    `msgpack:"owner_id"`
	Position geom.Vec3 `msgpack:"position"`
}

// Snapshot is the full authoritative world view published every tick.
type Snapshot struct {
	Tick        uint64               `msgpack:"tick"`
	Entities    []EntitySnapshot     `msgpack:"entities"`
	Projectiles []ProjectileSnapshot `msgpack:"projectiles"`
	Leaderboard []scoreboard.Entry   `msgpack:"leaderboard"`
}

// Encoder turns snapshots into framed wire payloads.
type Encoder struct {
	codec     Codec
	threshold int
}

// NewEncoder constructs an encoder compressing bodies at or above threshold
// bytes with the given codec. A nil codec disables compression entirely.
func NewEncoder(codec Codec, threshold int) *Encoder {
	if threshold <= 0 {
		threshold = DefaultCompressThreshold
	}
	return &Encoder{codec: codec, threshold: threshold}
}

// Encode marshals the snapshot and wraps it in a frame. Bodies below the
// threshold are framed raw even when a codec is configured.
func (e *Encoder) Encode(snapshot *Snapshot) ([]byte, error) {
	if e == nil || snapshot == nil {
		return nil, fmt.Errorf("wire: nothing to encode")
	}
	body, err := msgpack.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("wire: marshal snapshot: %w", err)
	}

	//1.- Small bodies ship raw: one marker byte, then the msgpack payload.
	if e.codec == nil || len(body) < e.threshold {
		frame := make([]byte, 0, 1+len(body))
		frame = append(frame, frameRaw)
		return append(frame, body...), nil
	}

	//2.- Larger bodies carry the codec name so the reader can pick a match.
	compressed, err := e.codec.Compress(body)
	if err != nil {
		return nil, fmt.Errorf("wire: compress snapshot: %w", err)
	}
	name := e.codec.Name()
	frame := make([]byte, 0, 2+len(name)+len(compressed))
	frame = append(frame, frameCompressed, byte(len(name)))
	frame = append(frame, name...)
	return append(frame, compressed...), nil
}

// Decode unwraps a frame produced by Encode and unmarshals the snapshot.
func Decode(frame []byte) (*Snapshot, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("wire: empty frame")
	}
	body := frame[1:]
	switch frame[0] {
	case frameRaw:
	case frameCompressed:
		if len(body) < 1 {
			return nil, fmt.Errorf("wire: truncated codec header")
		}
		nameLen := int(body[0])
		if len(body) < 1+nameLen {
			return nil, fmt.Errorf("wire: truncated codec name")
		}
		codec, err := CodecByName(string(body[1 : 1+nameLen]))
		if err != nil {
			return nil, err
		}
		body, err = codec.Decompress(body[1+nameLen:])
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("wire: unknown frame marker 0x%02x", frame[0])
	}

	var snapshot Snapshot
	if err := msgpack.Unmarshal(body, &snapshot); err != nil {
		return nil, fmt.Errorf("wire: unmarshal snapshot: %w", err)
	}
	return &snapshot, nil
}
