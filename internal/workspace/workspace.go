// Package workspace serializes the per-session dataset so it can live in
// the session store between requests.
package workspace

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"adreport/internal/models"
)

// SessionKey is the session field holding the encoded dataset.
const SessionKey = "dataset"

// maxDecoded bounds the decompressed size of a stored dataset.
const maxDecoded = 256 << 20

// ErrCorrupt is returned when stored bytes can't be decoded.
var ErrCorrupt = errors.New("stored dataset is corrupt")

var (
	encoder *zstd.Encoder
	decoder *zstd.Decoder
)

func init() {
	var err error
	// EncodeAll and DecodeAll are safe for concurrent use.
	encoder, err = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		panic(err)
	}
	decoder, err = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(maxDecoded))
	if err != nil {
		panic(err)
	}
}

// Encode serializes a dataset to compressed JSON.
func Encode(ds *models.Dataset) ([]byte, error) {
	raw, err := json.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal dataset: %w", err)
	}
	return encoder.EncodeAll(raw, make([]byte, 0, len(raw)/4)), nil
}

// Decode restores a dataset written by Encode.
func Decode(data []byte) (*models.Dataset, error) {
	raw, err := decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	var ds models.Dataset
	if err := json.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return &ds, nil
}

// FromSession decodes a session value. Missing or foreign values yield (nil, nil).
func FromSession(v any) (*models.Dataset, error) {
	data, ok := v.([]byte)
	if !ok || len(data) == 0 {
		return nil, nil
	}
	return Decode(data)
}
