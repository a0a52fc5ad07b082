// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package wbz

import "errors"

// Error kinds returned by the codec. Every failure site wraps one of these
// with fmt.Errorf("...: %w", ...), so callers can match on the kind with
// errors.Is.
var (
	// ErrMalformedHeader is returned when a WBZ or U8 header fails
	// structural validation: wrong magic, inconsistent lengths or offsets,
	// or tables that read past the end of the stream.
	ErrMalformedHeader = errors.New("malformed header")

	// ErrCorruptBlock is returned when a compressed segment fails to
	// decompress, fails its checksum, or decodes to the wrong length.
	ErrCorruptBlock = errors.New("corrupt compressed block")

	// ErrTruncatedStream is returned when the input ends before all
	// declared payload bytes are present.
	ErrTruncatedStream = errors.New("truncated stream")

	// ErrInvalidConfig is returned when the conversion config is invalid,
	// such as a compression level outside the supported range.
	ErrInvalidConfig = errors.New("invalid conversion config")
)
