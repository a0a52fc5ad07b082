// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package wbz provides pure Go support for converting game asset archives
between the U8 and WBZ container formats.

U8 is a plain hierarchical archive (directory tree, string table and a flat
data section). WBZ wraps a U8 archive in a selectively compressed container:
the archive is split into segments, and segments holding already-compressed
resources (Yaz0/Yaz1/LZ77 data, BRSTM audio, THP video) are stored verbatim
while everything else is zlib-compressed. Both directions are lossless and
bit-exact, so embedded resources survive a round trip byte-identical.

# Basic Usage

Converting a U8 archive to WBZ and back:

	data, err := os.ReadFile("track.u8")
	if err != nil {
		log.Fatal(err)
	}

	packed, err := wbz.Encode(data, wbz.DefaultConfig())
	if err != nil {
		log.Fatal(err)
	}

	restored, err := wbz.Decode(packed)
	if err != nil {
		log.Fatal(err)
	}
	// restored is byte-identical to data.

# Wire Format

A WBZ stream is a 16-byte prologue (magic "WBZa", format version, total
decoded length, segment count), a table of 13-byte segment descriptors
(offset, decoded size, stored size, flags) and the concatenated segment
payloads in descriptor order with no padding. All integers are big-endian.
Each descriptor carries the payload's stored size explicitly, so decoding is
a single forward pass with no end-marker scanning.

# Segmentation Policy

File payloads whose leading bytes match a configured signature are treated
as already compressed and stored verbatim. Everything else, including the
archive's own node and string tables and any alignment padding, defaults to
"compress". The signature set is injectable through [Config]; see
[DefaultSignatures] for the stock set.

# Limitations

  - Conversions operate on whole buffers in memory; there is no streaming
    mode for multi-gigabyte inputs.
  - The compression level is not recorded in the stream. Re-encoding a
    decoded archive reproduces the original WBZ bytes only when the same
    level is used.
  - File contents are treated as opaque bytes; the archive's payloads are
    never validated or interpreted beyond signature sniffing.
*/
package wbz
