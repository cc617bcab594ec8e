// Package recorder streams the per-tick snapshot sequence to disk so a match
// can be replayed or inspected after the fact. Frames are msgpack snapshots,
// length-prefixed and wrapped in a snappy stream; a JSON manifest describes
// the bundle.
package recorder

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/golang/snappy"
	"github.com/vmihailenco/msgpack/v5"

	"aeroclash/arena/internal/wire"
)

var labelCleaner = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// Manifest describes the recording bundle layout so tooling can locate it.
type Manifest struct {
	Version     int    `json:"version"`
	CreatedAt   string `json:"created_at"`
	TerrainSeed int64  `json:"terrain_seed"`
	TickRate    int    `json:"tick_rate"`
	FramesPath  string `json:"frames_path"`
	Frames      uint64 `json:"frames"`
}

// Writer appends snapshot frames to a compressed file until closed.
type Writer struct {
	mu       sync.Mutex
	dir      string
	file     *os.File
	stream   *snappy.Writer
	manifest Manifest
	closed   bool
	scratch  [binary.MaxVarintLen64]byte
}

// New prepares the recording directory and opens the compressed sink. The
// label becomes part of the directory name after sanitisation.
func New(root, label string, terrainSeed int64, tickRate int, clock func() time.Time) (*Writer, error) {
	if root == "" {
		return nil, fmt.Errorf("recorder root must be provided")
	}
	if clock == nil {
		clock = time.Now
	}

	cleaned := labelCleaner.ReplaceAllString(label, "")
	if cleaned == "" {
		cleaned = "match"
	}
	created := clock().UTC()
	dir := filepath.Join(root, fmt.Sprintf("%s-%s", cleaned, created.Format("20060102T150405Z")))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	framesPath := filepath.Join(dir, "frames.msgpack.sz")
	file, err := os.Create(framesPath)
	if err != nil {
		return nil, err
	}

	return &Writer{
		dir:    dir,
		file:   file,
		stream: snappy.NewBufferedWriter(file),
		manifest: Manifest{
			Version:     1,
			CreatedAt:   created.Format(time.RFC3339Nano),
			TerrainSeed: terrainSeed,
			TickRate:    tickRate,
			FramesPath:  "frames.msgpack.sz",
		},
	}, nil
}

// Record appends one snapshot to the stream. Safe to call from the publish
// path; errors are returned rather than logged so the caller decides.
func (w *Writer) Record(snapshot *wire.Snapshot) error {
	if w == nil || snapshot == nil {
		return nil
	}
	payload, err := msgpack.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("recorder: marshal frame: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fmt.Errorf("recorder: writer closed")
	}

	//1.- Length prefix, then payload; the snappy stream handles framing.
	n := binary.PutUvarint(w.scratch[:], uint64(len(payload)))
	if _, err := w.stream.Write(w.scratch[:n]); err != nil {
		return fmt.Errorf("recorder: write length: %w", err)
	}
	if _, err := w.stream.Write(payload); err != nil {
		return fmt.Errorf("recorder: write frame: %w", err)
	}
	w.manifest.Frames++
	return nil
}

// Close flushes the stream and writes the manifest.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil
	}
	w.closed = true

	if err := w.stream.Close(); err != nil {
		w.file.Close()
		return fmt.Errorf("recorder: close stream: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("recorder: close file: %w", err)
	}

	payload, err := json.MarshalIndent(w.manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("recorder: marshal manifest: %w", err)
	}
	return os.WriteFile(filepath.Join(w.dir, "manifest.json"), payload, 0o644)
}

// Dir reports the bundle directory.
func (w *Writer) Dir() string {
	if w == nil {
		return ""
	}
	return w.dir
}

// ReadFrames decodes every snapshot from a recorded frames file; intended for
// tooling and tests rather than the hot path.
func ReadFrames(path string) ([]*wire.Snapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := snappy.NewReader(file)
	var frames []*wire.Snapshot
	for {
		length, err := binary.ReadUvarint(byteReader{reader})
		if err != nil {
			// Clean end of stream.
			break
		}
		payload := make([]byte, length)
		if _, err := io.ReadFull(reader, payload); err != nil {
			return nil, fmt.Errorf("recorder: short frame: %w", err)
		}
		var snapshot wire.Snapshot
		if err := msgpack.Unmarshal(payload, &snapshot); err != nil {
			return nil, fmt.Errorf("recorder: decode frame: %w", err)
		}
		frames = append(frames, &snapshot)
	}
	return frames, nil
}

type byteReader struct {
	r io.Reader
}

func (b byteReader) ReadByte() (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(b.r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}
