// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package wbz

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// compressBlock compresses one segment payload with zlib at the given level.
// The output is deterministic for a fixed level and library version.
func compressBlock(data []byte, level int) ([]byte, error) {
	var buf bytes.Buffer

	w, err := zlib.NewWriterLevel(&buf, level)
	if err != nil {
		return nil, fmt.Errorf("%w: zlib level %d", ErrInvalidConfig, level)
	}

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("zlib write: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib close: %w", err)
	}

	return buf.Bytes(), nil
}

// decompressBlock decompresses one segment payload and checks that it
// decodes to exactly decodedSize bytes. The stream is drained to EOF so the
// zlib Adler-32 trailer is always verified.
func decompressBlock(data []byte, decodedSize uint32) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: open zlib stream: %v", ErrCorruptBlock, err)
	}
	defer r.Close()

	result := make([]byte, decodedSize)
	if _, err := io.ReadFull(r, result); err != nil {
		return nil, fmt.Errorf("%w: zlib decompress: %v", ErrCorruptBlock, err)
	}

	// Hitting EOF here verifies the checksum and rejects blocks that decode
	// to more than decodedSize bytes.
	switch n, err := io.CopyN(io.Discard, r, 1); {
	case n != 0:
		return nil, fmt.Errorf("%w: block decodes past the expected %d bytes",
			ErrCorruptBlock, decodedSize)
	case err != io.EOF:
		return nil, fmt.Errorf("%w: zlib trailer: %v", ErrCorruptBlock, err)
	}

	return result, nil
}
