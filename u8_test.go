// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package wbz

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"
)

// u8Entry describes one node of a test archive, in node order. Directories
// carry the absolute node index one past their last descendant.
type u8Entry struct {
	name string
	dir  bool
	end  uint32
	data []byte
}

func align32(x uint32) uint32 {
	return (x + 0x1F) &^ 0x1F
}

// buildU8 assembles a valid U8 archive from the given entries. File payloads
// are aligned to 0x20 like the reference packer.
func buildU8(t testing.TB, entries ...u8Entry) []byte {
	t.Helper()

	count := uint32(len(entries) + 1)

	// String table; the root node gets the empty name at offset 0.
	strTable := []byte{0}
	nameOffsets := make([]uint32, len(entries))
	for i, e := range entries {
		nameOffsets[i] = uint32(len(strTable))
		strTable = append(strTable, e.name...)
		strTable = append(strTable, 0)
	}

	metaSize := count*u8NodeSize + uint32(len(strTable))
	dataStart := align32(u8HeaderSize + metaSize)

	offsets := make([]uint32, len(entries))
	cursor := dataStart
	for i, e := range entries {
		if e.dir {
			continue
		}
		cursor = align32(cursor)
		offsets[i] = cursor
		cursor += uint32(len(e.data))
	}
	total := cursor

	buf := make([]byte, total)
	copy(buf[0:4], u8Magic[:])
	binary.BigEndian.PutUint32(buf[4:8], u8HeaderSize)
	binary.BigEndian.PutUint32(buf[8:12], metaSize)
	binary.BigEndian.PutUint32(buf[12:16], dataStart)

	writeNode := func(idx uint32, typ uint8, nameOff, dataOff, size uint32) {
		off := uint32(u8HeaderSize) + idx*u8NodeSize
		buf[off] = typ
		buf[off+1] = byte(nameOff >> 16)
		buf[off+2] = byte(nameOff >> 8)
		buf[off+3] = byte(nameOff)
		binary.BigEndian.PutUint32(buf[off+4:off+8], dataOff)
		binary.BigEndian.PutUint32(buf[off+8:off+12], size)
	}

	writeNode(0, u8NodeDir, 0, 0, count)
	for i, e := range entries {
		if e.dir {
			writeNode(uint32(i+1), u8NodeDir, nameOffsets[i], 0, e.end)
		} else {
			writeNode(uint32(i+1), u8NodeFile, nameOffsets[i], offsets[i], uint32(len(e.data)))
		}
	}

	copy(buf[uint32(u8HeaderSize)+count*u8NodeSize:], strTable)
	for i, e := range entries {
		if !e.dir {
			copy(buf[offsets[i]:], e.data)
		}
	}

	return buf
}

func TestParseU8(t *testing.T) {
	data := buildU8(t,
		u8Entry{name: "course.kmp", data: []byte("kmp data here")},
		u8Entry{name: "course.txt", data: bytes.Repeat([]byte("x"), 100)},
	)

	arc, err := parseU8(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := len(arc.nodes), 3; got != want {
		t.Errorf("node count = %d, want %d", got, want)
	}
	if arc.header.MetaSize == 0 || arc.header.DataOffset == 0 {
		t.Errorf("header not populated: %+v", arc.header)
	}
}

func TestParseU8Rejects(t *testing.T) {
	valid := func() []byte {
		return buildU8(t, u8Entry{name: "a.bin", data: []byte("payload")})
	}

	tests := []struct {
		name   string
		mutate func([]byte) []byte
	}{
		{
			name:   "too short",
			mutate: func(b []byte) []byte { return b[:10] },
		},
		{
			name: "bad magic",
			mutate: func(b []byte) []byte {
				b[0] ^= 0xFF
				return b
			},
		},
		{
			name: "bad node offset",
			mutate: func(b []byte) []byte {
				binary.BigEndian.PutUint32(b[4:8], 0x24)
				return b
			},
		},
		{
			name: "meta section past end",
			mutate: func(b []byte) []byte {
				binary.BigEndian.PutUint32(b[8:12], uint32(len(b)))
				return b
			},
		},
		{
			name: "meta section too small",
			mutate: func(b []byte) []byte {
				binary.BigEndian.PutUint32(b[8:12], 4)
				return b
			},
		},
		{
			name: "root is a file",
			mutate: func(b []byte) []byte {
				b[u8HeaderSize] = u8NodeFile
				return b
			},
		},
		{
			name: "invalid node type",
			mutate: func(b []byte) []byte {
				b[u8HeaderSize+u8NodeSize] = 7
				return b
			},
		},
		{
			name: "zero node count",
			mutate: func(b []byte) []byte {
				binary.BigEndian.PutUint32(b[u8HeaderSize+8:u8HeaderSize+12], 0)
				return b
			},
		},
		{
			name: "node count past meta section",
			mutate: func(b []byte) []byte {
				binary.BigEndian.PutUint32(b[u8HeaderSize+8:u8HeaderSize+12], 1000)
				return b
			},
		},
		{
			name: "file payload past end",
			mutate: func(b []byte) []byte {
				off := uint32(u8HeaderSize + u8NodeSize)
				binary.BigEndian.PutUint32(b[off+4:off+8], uint32(len(b)))
				return b
			},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := parseU8(test.mutate(valid()))
			if !errors.Is(err, ErrMalformedHeader) {
				t.Errorf("parseU8 = %v, want ErrMalformedHeader", err)
			}
		})
	}
}

func TestList(t *testing.T) {
	courseData := []byte("course layout")
	musicData := []byte("RSTMfake audio payload")
	data := buildU8(t,
		u8Entry{name: "course.kmp", data: courseData},
		u8Entry{name: "sound", dir: true, end: 4},
		u8Entry{name: "music.brstm", data: musicData},
	)

	files, err := List(data)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	want := []struct {
		path string
		data []byte
	}{
		{"course.kmp", courseData},
		{"sound/music.brstm", musicData},
	}
	if len(files) != len(want) {
		t.Fatalf("file count = %d, want %d", len(files), len(want))
	}
	for i, w := range want {
		f := files[i]
		if f.Path != w.path {
			t.Errorf("files[%d].Path = %q, want %q", i, f.Path, w.path)
		}
		if int(f.Size) != len(w.data) {
			t.Errorf("files[%d].Size = %d, want %d", i, f.Size, len(w.data))
		}
		if got := data[f.Offset : f.Offset+f.Size]; !bytes.Equal(got, w.data) {
			t.Errorf("files[%d] payload = %q, want %q", i, got, w.data)
		}
	}
}

func TestListNestedDirectories(t *testing.T) {
	data := buildU8(t,
		u8Entry{name: "outer", dir: true, end: 5},
		u8Entry{name: "inner", dir: true, end: 4},
		u8Entry{name: "deep.bin", data: []byte("deep")},
		u8Entry{name: "shallow.bin", data: []byte("shallow")},
		u8Entry{name: "top.bin", data: []byte("top")},
	)

	files, err := List(data)
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	wantPaths := []string{"outer/inner/deep.bin", "outer/shallow.bin", "top.bin"}
	if len(files) != len(wantPaths) {
		t.Fatalf("file count = %d, want %d", len(files), len(wantPaths))
	}
	for i, want := range wantPaths {
		if files[i].Path != want {
			t.Errorf("files[%d].Path = %q, want %q", i, files[i].Path, want)
		}
	}
}

func TestListRootOnly(t *testing.T) {
	files, err := List(buildU8(t))
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("file count = %d, want 0", len(files))
	}
}

func TestListRejectsBadDirectoryEnd(t *testing.T) {
	data := buildU8(t,
		u8Entry{name: "sound", dir: true, end: 3},
		u8Entry{name: "music.brstm", data: []byte("RSTM")},
	)
	// Point the directory's end before its own node.
	off := uint32(u8HeaderSize + u8NodeSize)
	binary.BigEndian.PutUint32(data[off+8:off+12], 1)

	if _, err := List(data); !errors.Is(err, ErrMalformedHeader) {
		t.Errorf("List = %v, want ErrMalformedHeader", err)
	}
}
