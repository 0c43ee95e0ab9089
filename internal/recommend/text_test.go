// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Movie A", "movie a"},
		{"  The   Matrix  ", "the matrix"},
		{"Spider-Man: No Way Home", "spider man no way home"},
		{"Amélie", "am lie"},
		{"WALL·E", "wall e"},
		{"2001: A Space Odyssey", "2001 a space odyssey"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeTitle(tt.in); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExtractFirstJSONObject(t *testing.T) {
	tests := []struct {
		name   string
		in     string
		want   string
		wantOK bool
	}{
		{"plain", `{"a":1}`, `{"a":1}`, true},
		{"fenced", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`, true},
		{"leading prose", `Sure! Here you go: {"a":{"b":2}} hope it helps {"c":3}`, `{"a":{"b":2}}`, true},
		{"braces in strings", `x {"s":"}{\"}"} y`, `{"s":"}{\"}"}`, true},
		{"unbalanced", `{"a":1`, "", false},
		{"no object", `[1,2,3]`, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractFirstJSONObject(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("extractFirstJSONObject() = %q, %v; want %q, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	got := dedupe([]string{"a", "b", "a"}, nil, []string{"c", "b"})
	if diff := cmp.Diff([]string{"a", "b", "c"}, got); diff != "" {
		t.Errorf("dedupe() mismatch (-want +got):\n%s", diff)
	}
	if empty := dedupe(); empty == nil || len(empty) != 0 {
		t.Errorf("dedupe() = %#v, want empty non-nil", empty)
	}
}

func TestHead(t *testing.T) {
	s := []int{1, 2, 3}
	if got := head(s, 2); len(got) != 2 {
		t.Errorf("head(2) = %v", got)
	}
	if got := head(s, 5); len(got) != 3 {
		t.Errorf("head(5) = %v", got)
	}
	if got := head(s, -1); len(got) != 0 {
		t.Errorf("head(-1) = %v", got)
	}
}

func TestSet_MarshalJSONSorted(t *testing.T) {
	b, err := NewSet("b", "c", "a").MarshalJSON()
	if err != nil {
		t.Fatalf("MarshalJSON() error = %v", err)
	}
	if string(b) != `["a","b","c"]` {
		t.Errorf("MarshalJSON() = %s", b)
	}
}
