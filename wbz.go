// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package wbz

import (
	"bytes"
	"fmt"
	"math"
)

// Encode converts a U8 archive into the equivalent WBZ stream.
//
// The input is split into segments by the signature policy in cfg, each
// compress-worthy segment is zlib-compressed at cfg.Level, and the result is
// the segment table followed by the payloads in descriptor order. Decoding
// the returned stream reproduces u8Data bit-exact. On any error no output
// is produced.
func Encode(u8Data []byte, cfg Config) ([]byte, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if uint64(len(u8Data)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: u8 stream of %d bytes exceeds the 4 GiB format limit",
			ErrMalformedHeader, len(u8Data))
	}

	arc, err := parseU8(u8Data)
	if err != nil {
		return nil, err
	}

	segments, err := buildSegments(arc, cfg.Signatures)
	if err != nil {
		return nil, err
	}

	descriptors := make([]segmentDescriptor, len(segments))
	payloads := make([][]byte, len(segments))
	storedTotal := 0
	var covered uint64
	for i, seg := range segments {
		// The segmenter guarantees gapless coverage; a violation here is
		// a corrupt node table slipping through.
		if uint64(seg.start) != covered {
			return nil, fmt.Errorf("%w: segment %d starts at %d, want %d",
				ErrMalformedHeader, i, seg.start, covered)
		}
		covered += uint64(seg.length)

		raw := u8Data[seg.start : seg.start+seg.length]
		payload := raw
		flags := uint8(segmentStored)
		if seg.compressed {
			if payload, err = compressBlock(raw, cfg.Level); err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			flags = segmentCompressed
		}

		descriptors[i] = segmentDescriptor{
			Offset:      seg.start,
			DecodedSize: seg.length,
			StoredSize:  uint32(len(payload)),
			Flags:       flags,
		}
		payloads[i] = payload
		storedTotal += len(payload)
	}
	if covered != uint64(len(u8Data)) {
		return nil, fmt.Errorf("%w: segments cover %d of %d bytes",
			ErrMalformedHeader, covered, len(u8Data))
	}

	header, err := encodeSegmentTable(descriptors, uint32(len(u8Data)))
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Grow(len(header) + storedTotal)
	out.Write(header)
	for _, payload := range payloads {
		out.Write(payload)
	}

	return out.Bytes(), nil
}

// Decode converts a WBZ stream back into the original U8 archive bytes.
//
// Header problems are reported as ErrMalformedHeader, missing payload bytes
// as ErrTruncatedStream, and compressed segments that fail to decompress or
// decode to the wrong length as ErrCorruptBlock. On any error no output is
// produced.
func Decode(wbzData []byte) ([]byte, error) {
	descriptors, decodedSize, payloadOffset, err := decodeSegmentTable(wbzData)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, decodedSize)
	pos := payloadOffset
	for i := range descriptors {
		d := &descriptors[i]
		if int(d.StoredSize) > len(wbzData)-pos {
			return nil, fmt.Errorf("%w: segment %d needs %d payload bytes, %d available",
				ErrTruncatedStream, i, d.StoredSize, len(wbzData)-pos)
		}
		payload := wbzData[pos : pos+int(d.StoredSize)]
		pos += int(d.StoredSize)

		if d.compressed() {
			block, err := decompressBlock(payload, d.DecodedSize)
			if err != nil {
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			out = append(out, block...)
		} else {
			out = append(out, payload...)
		}
	}

	if pos != len(wbzData) {
		return nil, fmt.Errorf("%w: %d trailing bytes after the last segment",
			ErrMalformedHeader, len(wbzData)-pos)
	}
	if uint64(len(out)) != uint64(decodedSize) {
		return nil, fmt.Errorf("%w: decoded %d bytes, header declares %d",
			ErrTruncatedStream, len(out), decodedSize)
	}

	return out, nil
}
