// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package main

import "testing"

func TestSwapExt(t *testing.T) {
	tests := []struct {
		path string
		ext  string
		want string
	}{
		{"track.u8", ".wbz", "track.wbz"},
		{"track.wbz", ".u8", "track.u8"},
		{"dir/old_town.u8", ".wbz", "dir/old_town.wbz"},
		{"no_extension", ".u8", "no_extension.u8"},
		{"dotted.name.u8", ".wbz", "dotted.name.wbz"},
	}

	for _, test := range tests {
		if got := swapExt(test.path, test.ext); got != test.want {
			t.Errorf("swapExt(%q, %q) = %q, want %q", test.path, test.ext, got, test.want)
		}
	}
}
