// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package wbz

import (
	"fmt"

	"github.com/klauspost/compress/zlib"
)

// Config controls a single conversion. It is read-only for the duration of
// the call and never persisted; there is no process-wide default state.
type Config struct {
	// Level is the zlib compression level, 1 (fastest) to 9 (best).
	Level int

	// Signatures are magic-byte prefixes identifying file payloads that
	// are already compressed. Files whose leading bytes match any entry
	// are stored verbatim instead of being compressed again.
	Signatures [][]byte
}

// DefaultConfig returns the configuration the reference tool uses: maximum
// compression and the stock already-compressed signature set.
func DefaultConfig() Config {
	return Config{
		Level:      zlib.BestCompression,
		Signatures: DefaultSignatures(),
	}
}

// DefaultSignatures returns the stock signature set for embedded resources
// that ship pre-compressed: Yaz0/Yaz1 and LZ77 compressed data, BRSTM audio
// and THP video. The set is a segmentation policy input, not part of the
// wire format, so callers may replace it wholesale through Config.
func DefaultSignatures() [][]byte {
	return [][]byte{
		[]byte("Yaz0"),
		[]byte("Yaz1"),
		[]byte("LZ77"),
		[]byte("RSTM"),
		[]byte("THP\x00"),
	}
}

func (c Config) validate() error {
	if c.Level < zlib.BestSpeed || c.Level > zlib.BestCompression {
		return fmt.Errorf("%w: compression level %d, want %d-%d",
			ErrInvalidConfig, c.Level, zlib.BestSpeed, zlib.BestCompression)
	}
	return nil
}
