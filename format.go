// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package wbz

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// WBZ format constants
const (
	// Magic signature "WBZa" at the start of every WBZ stream
	wbzMagic = "WBZa"

	// Current (and only) format version
	wbzVersion = 1

	// Header size: magic[4] + version u16 + reserved u16 +
	// decoded size u32 + segment count u32
	wbzHeaderSize = 16

	// Descriptor size: offset u32 + decoded size u32 + stored size u32 + flags u8
	wbzDescriptorSize = 13

	// Descriptor flag values
	segmentStored     = 0 // payload kept verbatim
	segmentCompressed = 1 // payload zlib-compressed
)

// wbzHeader is the fixed prologue of a WBZ stream.
// All integers are big-endian, matching the U8 ecosystem.
type wbzHeader struct {
	Magic        [4]byte
	Version      uint16
	Reserved     uint16
	DecodedSize  uint32 // total length of the reconstructed U8 stream
	SegmentCount uint32
}

// segmentDescriptor describes one contiguous byte range of the decoded U8
// stream. Descriptors are ordered, strictly increasing and gapless: the
// concatenation of all ranges reconstructs the original stream exactly.
type segmentDescriptor struct {
	Offset      uint32 // start offset within the decoded stream
	DecodedSize uint32 // range length in the decoded stream, always > 0
	StoredSize  uint32 // payload length in the WBZ stream
	Flags       uint8  // segmentStored or segmentCompressed
}

func (d *segmentDescriptor) compressed() bool {
	return d.Flags == segmentCompressed
}

// encodeSegmentTable serializes the WBZ prologue and descriptor table.
func encodeSegmentTable(descriptors []segmentDescriptor, decodedSize uint32) ([]byte, error) {
	h := wbzHeader{
		Version:      wbzVersion,
		DecodedSize:  decodedSize,
		SegmentCount: uint32(len(descriptors)),
	}
	copy(h.Magic[:], wbzMagic)

	var buf bytes.Buffer
	buf.Grow(wbzHeaderSize + len(descriptors)*wbzDescriptorSize)

	if err := binary.Write(&buf, binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("write wbz header: %w", err)
	}
	for i := range descriptors {
		if err := binary.Write(&buf, binary.BigEndian, &descriptors[i]); err != nil {
			return nil, fmt.Errorf("write descriptor %d: %w", i, err)
		}
	}

	return buf.Bytes(), nil
}

// decodeSegmentTable parses and validates the WBZ prologue and descriptor
// table from the start of data. It returns the descriptors, the declared
// total decoded length, and the offset of the payload section.
func decodeSegmentTable(data []byte) ([]segmentDescriptor, uint32, int, error) {
	if len(data) < wbzHeaderSize {
		return nil, 0, 0, fmt.Errorf("%w: %d bytes is too short for a wbz header",
			ErrMalformedHeader, len(data))
	}

	r := bytes.NewReader(data)

	var h wbzHeader
	if err := binary.Read(r, binary.BigEndian, &h); err != nil {
		return nil, 0, 0, fmt.Errorf("%w: read wbz header: %v", ErrMalformedHeader, err)
	}
	if string(h.Magic[:]) != wbzMagic {
		return nil, 0, 0, fmt.Errorf("%w: bad magic %q", ErrMalformedHeader, h.Magic)
	}
	if h.Version != wbzVersion {
		return nil, 0, 0, fmt.Errorf("%w: unsupported format version %d",
			ErrMalformedHeader, h.Version)
	}

	tableSize := int64(h.SegmentCount) * wbzDescriptorSize
	if int64(len(data))-wbzHeaderSize < tableSize {
		return nil, 0, 0, fmt.Errorf("%w: descriptor table for %d segments reads past the stream",
			ErrMalformedHeader, h.SegmentCount)
	}

	descriptors := make([]segmentDescriptor, h.SegmentCount)
	var next uint64
	for i := range descriptors {
		d := &descriptors[i]
		if err := binary.Read(r, binary.BigEndian, d); err != nil {
			return nil, 0, 0, fmt.Errorf("%w: read descriptor %d: %v", ErrMalformedHeader, i, err)
		}

		if d.DecodedSize == 0 {
			return nil, 0, 0, fmt.Errorf("%w: descriptor %d has zero decoded size",
				ErrMalformedHeader, i)
		}
		if d.Flags != segmentStored && d.Flags != segmentCompressed {
			return nil, 0, 0, fmt.Errorf("%w: descriptor %d has invalid flags 0x%02X",
				ErrMalformedHeader, i, d.Flags)
		}
		if uint64(d.Offset) != next {
			return nil, 0, 0, fmt.Errorf("%w: descriptor %d starts at offset %d, want %d",
				ErrMalformedHeader, i, d.Offset, next)
		}
		if !d.compressed() && d.StoredSize != d.DecodedSize {
			return nil, 0, 0, fmt.Errorf("%w: stored descriptor %d declares %d payload bytes for a %d byte range",
				ErrMalformedHeader, i, d.StoredSize, d.DecodedSize)
		}
		if d.compressed() && d.StoredSize == 0 {
			return nil, 0, 0, fmt.Errorf("%w: compressed descriptor %d has zero stored size",
				ErrMalformedHeader, i)
		}

		next += uint64(d.DecodedSize)
	}

	if next != uint64(h.DecodedSize) {
		return nil, 0, 0, fmt.Errorf("%w: descriptors cover %d bytes, header declares %d",
			ErrMalformedHeader, next, h.DecodedSize)
	}

	return descriptors, h.DecodedSize, wbzHeaderSize + int(tableSize), nil
}
