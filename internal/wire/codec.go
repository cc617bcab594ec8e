package wire

import (
	"bytes"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/gzip"
)

// Codec applies symmetric compression to payload byte slices.
type Codec interface {
	//1.- Name returns the identifier advertised in frame headers.
	Name() string
	//2.- Compress encodes the provided payload into a compressed representation.
	Compress(data []byte) ([]byte, error)
	//3.- Decompress restores the original payload from its compressed form.
	Decompress(data []byte) ([]byte, error)
}

// snappyCodec uses the snappy block format. It is the default for snapshot
// frames because encode cost matters more than ratio at tick rate.
type snappyCodec struct{}

// NewSnappyCodec constructs a Codec backed by the snappy block format.
func NewSnappyCodec() Codec {
	return snappyCodec{}
}

// Name reports the identifier used for snappy encoded payloads.
func (snappyCodec) Name() string { return "snappy" }

// Compress encodes data as a single snappy block.
func (snappyCodec) Compress(data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

// Decompress decodes a snappy block and returns the raw payload.
func (snappyCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("snappy decompress: empty payload")
	}
	out, err := snappy.Decode(nil, data)
	if err != nil {
		return nil, fmt.Errorf("snappy decode: %w", err)
	}
	return out, nil
}

// gzipCodec trades encode time for ratio; useful for archival sinks.
type gzipCodec struct{}

// NewGzipCodec constructs a Codec backed by gzip.
func NewGzipCodec() Codec {
	return gzipCodec{}
}

// Name reports the identifier used for gzip encoded payloads.
func (gzipCodec) Name() string { return "gzip" }

// Compress encodes data using the gzip format.
func (gzipCodec) Compress(data []byte) ([]byte, error) {
	//1.- Allocate a buffer so we can reuse the compressed bytes without copying.
	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		writer.Close()
		return nil, fmt.Errorf("gzip write: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("gzip close: %w", err)
	}
	return buf.Bytes(), nil
}

// Decompress decodes gzip-encoded data and returns the raw payload.
func (gzipCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("gzip decompress: empty payload")
	}
	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("gzip reader: %w", err)
	}
	defer reader.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("gzip copy: %w", err)
	}
	return buf.Bytes(), nil
}

// CodecByName resolves a frame header identifier to its codec.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "snappy":
		return NewSnappyCodec(), nil
	case "gzip":
		return NewGzipCodec(), nil
	default:
		return nil, fmt.Errorf("wire: unknown codec %q", name)
	}
}
