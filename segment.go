// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package wbz

import "bytes"

// byteRange is a half-open byte range of the decoded U8 stream.
type byteRange struct {
	start  uint32
	length uint32
}

// segment is one classified range produced by the segmenter.
type segment struct {
	byteRange
	compressed bool
}

// buildSegments partitions the whole U8 stream into alternating compressed
// and verbatim segments. File payloads whose leading bytes match a
// configured already-compressed signature are kept verbatim; everything
// else, including the node table, string table and any alignment padding
// between payloads, goes to the compressor. Unrecognized payloads default
// to "compress". Adjacent ranges with the same classification are merged
// into one segment.
//
// The returned segments always cover [0, len(data)) with no gaps and no
// overlaps; a header-only archive yields a single compressed segment.
func buildSegments(arc *u8Archive, signatures [][]byte) ([]segment, error) {
	total := uint32(len(arc.data))
	if total == 0 {
		return nil, nil
	}

	ranges, err := arc.fileRanges()
	if err != nil {
		return nil, err
	}

	var segments []segment
	add := func(r byteRange, compressed bool) {
		if r.length == 0 {
			return
		}
		if n := len(segments); n > 0 && segments[n-1].compressed == compressed {
			segments[n-1].length += r.length
			return
		}
		segments = append(segments, segment{byteRange: r, compressed: compressed})
	}

	cursor := uint32(0)
	for _, r := range ranges {
		add(byteRange{start: cursor, length: r.start - cursor}, true)

		payload := arc.data[r.start : r.start+r.length]
		add(r, !matchesSignature(payload, signatures))

		cursor = r.start + r.length
	}
	add(byteRange{start: cursor, length: total - cursor}, true)

	return segments, nil
}

// matchesSignature reports whether a payload starts with any of the
// configured already-compressed magic prefixes.
func matchesSignature(payload []byte, signatures [][]byte) bool {
	for _, sig := range signatures {
		if len(sig) > 0 && bytes.HasPrefix(payload, sig) {
			return true
		}
	}
	return false
}
