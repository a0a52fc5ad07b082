// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package wbz

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"sort"
	"strings"
)

// U8 format constants
const (
	// Header size: magic[4] + node offset u32 + meta size u32 +
	// data offset u32 + 16 bytes of padding
	u8HeaderSize = 0x20

	// Node size: type u8 + name offset u24 + data offset u32 + size u32
	u8NodeSize = 12

	// Node type values
	u8NodeFile = 0
	u8NodeDir  = 1
)

// u8Magic is the U8 archive signature.
var u8Magic = [4]byte{0x55, 0xAA, 0x38, 0x2D}

// u8Header is the fixed U8 prologue. The 16 padding bytes that complete the
// 0x20-byte header are not represented. All integers are big-endian.
type u8Header struct {
	Magic      [4]byte
	NodeOffset uint32 // offset of the node table, always 0x20
	MetaSize   uint32 // node table plus string table, in bytes
	DataOffset uint32 // offset of the first file payload
}

// u8Node is one 12-byte node table entry. The root node's size field holds
// the total node count; a directory node's size field is the index one past
// its last descendant.
type u8Node struct {
	nodeType   uint8
	nameOffset uint32 // 24-bit offset into the string table
	dataOffset uint32
	size       uint32
}

// u8Archive is the parsed structural view of a U8 stream. File payload
// bytes stay opaque; only the node and string tables are interpreted.
type u8Archive struct {
	header u8Header
	nodes  []u8Node // nodes[0] is the root
	data   []byte   // the whole underlying stream
}

// File describes one stored file of a U8 archive.
type File struct {
	Path   string // slash-separated path from the archive root
	Offset uint32 // byte offset of the payload within the archive
	Size   uint32 // payload length in bytes
}

// List parses a U8 archive and returns every stored file in node order,
// including zero-length files. Directory nodes are folded into the returned
// paths.
func List(u8Data []byte) ([]File, error) {
	arc, err := parseU8(u8Data)
	if err != nil {
		return nil, err
	}
	return arc.walk()
}

// parseU8 validates the U8 header and node table. Any structural problem is
// reported as ErrMalformedHeader.
func parseU8(data []byte) (*u8Archive, error) {
	if len(data) < u8HeaderSize {
		return nil, fmt.Errorf("%w: %d bytes is too short for a u8 header",
			ErrMalformedHeader, len(data))
	}

	var h u8Header
	if err := binary.Read(bytes.NewReader(data), binary.BigEndian, &h); err != nil {
		return nil, fmt.Errorf("%w: read u8 header: %v", ErrMalformedHeader, err)
	}
	if h.Magic != u8Magic {
		return nil, fmt.Errorf("%w: bad u8 magic % X", ErrMalformedHeader, h.Magic)
	}
	if h.NodeOffset != u8HeaderSize {
		return nil, fmt.Errorf("%w: node table at 0x%X, want 0x%X",
			ErrMalformedHeader, h.NodeOffset, u8HeaderSize)
	}
	if uint64(h.NodeOffset)+uint64(h.MetaSize) > uint64(len(data)) {
		return nil, fmt.Errorf("%w: meta section of %d bytes reads past the stream",
			ErrMalformedHeader, h.MetaSize)
	}
	if h.MetaSize < u8NodeSize {
		return nil, fmt.Errorf("%w: meta section of %d bytes cannot hold the root node",
			ErrMalformedHeader, h.MetaSize)
	}

	root, err := readU8Node(data, h.NodeOffset)
	if err != nil {
		return nil, err
	}
	if root.nodeType != u8NodeDir {
		return nil, fmt.Errorf("%w: root node is not a directory", ErrMalformedHeader)
	}

	count := root.size
	if count == 0 || uint64(count)*u8NodeSize > uint64(h.MetaSize) {
		return nil, fmt.Errorf("%w: node count %d does not fit the %d byte meta section",
			ErrMalformedHeader, count, h.MetaSize)
	}

	nodes := make([]u8Node, count)
	nodes[0] = root
	for i := uint32(1); i < count; i++ {
		n, err := readU8Node(data, h.NodeOffset+i*u8NodeSize)
		if err != nil {
			return nil, err
		}
		if n.nodeType == u8NodeFile {
			if uint64(n.dataOffset)+uint64(n.size) > uint64(len(data)) {
				return nil, fmt.Errorf("%w: node %d payload (0x%X+%d) reads past the stream",
					ErrMalformedHeader, i, n.dataOffset, n.size)
			}
		}
		nodes[i] = n
	}

	return &u8Archive{header: h, nodes: nodes, data: data}, nil
}

func readU8Node(data []byte, off uint32) (u8Node, error) {
	b := data[off : off+u8NodeSize]
	n := u8Node{
		nodeType:   b[0],
		nameOffset: uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]),
		dataOffset: binary.BigEndian.Uint32(b[4:8]),
		size:       binary.BigEndian.Uint32(b[8:12]),
	}
	if n.nodeType != u8NodeFile && n.nodeType != u8NodeDir {
		return u8Node{}, fmt.Errorf("%w: node at 0x%X has invalid type 0x%02X",
			ErrMalformedHeader, off, n.nodeType)
	}
	return n, nil
}

// walk flattens the directory tree into file entries in node order.
// A directory stays open until the walk reaches the node index its size
// field points at.
func (a *u8Archive) walk() ([]File, error) {
	count := uint32(len(a.nodes))
	stringStart := a.header.NodeOffset + count*u8NodeSize
	stringEnd := a.header.NodeOffset + a.header.MetaSize

	type openDir struct {
		name string
		end  uint32 // index one past the last descendant node
	}

	files := []File{}
	var stack []openDir
	for i := uint32(1); i < count; i++ {
		for len(stack) > 0 && stack[len(stack)-1].end == i {
			stack = stack[:len(stack)-1]
		}

		node := a.nodes[i]
		name, err := a.readName(stringStart, stringEnd, node.nameOffset)
		if err != nil {
			return nil, err
		}

		if node.nodeType == u8NodeDir {
			if node.size <= i || node.size > count {
				return nil, fmt.Errorf("%w: directory %q ends at node %d of %d",
					ErrMalformedHeader, name, node.size, count)
			}
			stack = append(stack, openDir{name: name, end: node.size})
			continue
		}

		parts := make([]string, 0, len(stack)+1)
		for _, d := range stack {
			parts = append(parts, d.name)
		}
		parts = append(parts, name)

		files = append(files, File{
			Path:   strings.Join(parts, "/"),
			Offset: node.dataOffset,
			Size:   node.size,
		})
	}

	return files, nil
}

// readName reads a NUL-terminated name from the string table.
func (a *u8Archive) readName(start, end, nameOffset uint32) (string, error) {
	off := uint64(start) + uint64(nameOffset)
	if off >= uint64(end) {
		return "", fmt.Errorf("%w: name offset 0x%X outside the string table",
			ErrMalformedHeader, nameOffset)
	}

	table := a.data[off:end]
	nul := bytes.IndexByte(table, 0)
	if nul < 0 {
		return "", fmt.Errorf("%w: unterminated name at 0x%X", ErrMalformedHeader, off)
	}

	return string(table[:nul]), nil
}

// fileRanges returns the byte ranges of all non-empty stored files, sorted
// by offset. Overlapping ranges mean a corrupt node table.
func (a *u8Archive) fileRanges() ([]byteRange, error) {
	var ranges []byteRange
	for i := 1; i < len(a.nodes); i++ {
		n := a.nodes[i]
		if n.nodeType != u8NodeFile || n.size == 0 {
			continue
		}
		ranges = append(ranges, byteRange{start: n.dataOffset, length: n.size})
	}

	sort.Slice(ranges, func(i, j int) bool { return ranges[i].start < ranges[j].start })
	for i := 1; i < len(ranges); i++ {
		prev := ranges[i-1]
		if ranges[i].start < prev.start+prev.length {
			return nil, fmt.Errorf("%w: file payloads overlap at 0x%X",
				ErrMalformedHeader, ranges[i].start)
		}
	}

	return ranges, nil
}
