package wire

import (
	"bytes"
	"strings"
	"testing"

	"aeroclash/arena/internal/geom"
	"aeroclash/arena/internal/scoreboard"
)

func sampleSnapshot(entities int) *Snapshot {
	snapshot := &Snapshot{Tick: 42}
	for i := 0; i < entities; i++ {
		snapshot.Entities = append(snapshot.Entities, EntitySnapshot{
			ID:          strings.Repeat("e", 12),
			Name:        "pilot",
			Position:    geom.Vec3{X: 1, Y: 150, Z: -3},
			Orientation: geom.IdentityQuat(),
			Health:      100,
			Ready:       true,
		})
	}
	snapshot.Projectiles = append(snapshot.Projectiles, ProjectileSnapshot{
		ID: "p1", OwnerID: "e1", Position: geom.Vec3{Y: 150},
	})
	snapshot.Leaderboard = append(snapshot.Leaderboard, scoreboard.Entry{ID: "e1", Name: "pilot", Kills: 3})
	return snapshot
}

func TestEncodeDecodeRoundTripRaw(t *testing.T) {
	encoder := NewEncoder(NewSnappyCodec(), 1<<20)
	original := sampleSnapshot(2)

	frame, err := encoder.Encode(original)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if frame[0] != frameRaw {
		t.Fatalf("small frame should ship raw, marker 0x%02x", frame[0])
	}

	decoded, err := Decode(frame)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Tick != 42 || len(decoded.Entities) != 2 || len(decoded.Projectiles) != 1 {
		t.Fatalf("round trip mismatch: %+v", decoded)
	}
	if decoded.Entities[0].Position != original.Entities[0].Position {
		t.Fatalf("position mismatch: %+v vs %+v", decoded.Entities[0].Position, original.Entities[0].Position)
	}
	if decoded.Leaderboard[0].Kills != 3 {
		t.Fatalf("leaderboard mismatch: %+v", decoded.Leaderboard)
	}
}

func TestEncodeCompressesAboveThreshold(t *testing.T) {
	for _, codec := range []Codec{NewSnappyCodec(), NewGzipCodec()} {
		encoder := NewEncoder(codec, 64)
		frame, err := encoder.Encode(sampleSnapshot(20))
		if err != nil {
			t.Fatalf("%s encode: %v", codec.Name(), err)
		}
		if frame[0] != frameCompressed {
			t.Fatalf("%s: large frame should be compressed, marker 0x%02x", codec.Name(), frame[0])
		}
		if !bytes.Contains(frame[:2+len(codec.Name())], []byte(codec.Name())) {
			t.Fatalf("%s: frame header missing codec name: %x", codec.Name(), frame[:16])
		}

		decoded, err := Decode(frame)
		if err != nil {
			t.Fatalf("%s decode: %v", codec.Name(), err)
		}
		if len(decoded.Entities) != 20 {
			t.Fatalf("%s: entity count mismatch: %d", codec.Name(), len(decoded.Entities))
		}
	}
}

func TestEncodeNilCodecNeverCompresses(t *testing.T) {
	encoder := NewEncoder(nil, 1)
	frame, err := encoder.Encode(sampleSnapshot(20))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if frame[0] != frameRaw {
		t.Fatalf("nil codec must frame raw, marker 0x%02x", frame[0])
	}
}

func TestDecodeRejectsMalformedFrames(t *testing.T) {
	cases := map[string][]byte{
		"empty":          nil,
		"unknown marker": {0x7f, 0x00},
		"truncated name": {frameCompressed, 10, 'g', 'z'},
		"unknown codec":  {frameCompressed, 3, 'l', 'z', '4', 0x00},
	}
	for name, frame := range cases {
		if _, err := Decode(frame); err == nil {
			t.Fatalf("%s frame should fail to decode", name)
		}
	}
}

func TestCodecByName(t *testing.T) {
	for _, name := range []string{"snappy", "gzip"} {
		codec, err := CodecByName(name)
		if err != nil || codec.Name() != name {
			t.Fatalf("lookup %q: codec=%v err=%v", name, codec, err)
		}
	}
	if _, err := CodecByName("brotli"); err == nil {
		t.Fatal("unknown codec name should error")
	}
}
