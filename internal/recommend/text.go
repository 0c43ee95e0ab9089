// VibeStream - Personalized Movie and TV Recommendation Service
// Copyright 2026 Utanium Programming Corporation
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Utanium-Programming-Corporation/vibestream

package recommend

import "strings"

// NormalizeTitle returns the identity key used for exclusion matching:
// lowercase ASCII letters and digits separated by single spaces.
func NormalizeTitle(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// stripCodeFences removes a surrounding markdown code fence.
func stripCodeFences(s string) string {
	out := strings.TrimSpace(s)
	if strings.HasPrefix(out, "```json") {
		out = strings.TrimSpace(out[len("```json"):])
	} else if strings.HasPrefix(out, "```") {
		out = strings.TrimSpace(out[3:])
	}
	if strings.HasSuffix(out, "```") {
		out = strings.TrimSpace(out[:len(out)-3])
	}
	return out
}

// extractFirstJSONObject returns the first balanced top-level object in s,
// honoring string literals and escapes. ok is false when none is found.
func extractFirstJSONObject(s string) (string, bool) {
	text := stripCodeFences(s)
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return "", false
	}

	depth := 0
	inStr, esc := false, false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if esc {
			esc = false
			continue
		}
		if ch == '\\' {
			esc = true
			continue
		}
		if ch == '"' {
			inStr = !inStr
		}
		if inStr {
			continue
		}
		switch ch {
		case '{':
			depth++
		case '}':
			depth--
		}
		if depth == 0 {
			return text[start : i+1], true
		}
	}
	return "", false
}

// dedupe returns the distinct values of in, keeping first occurrences.
func dedupe(in ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, list := range in {
		for _, s := range list {
			if _, ok := seen[s]; ok {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

func head[T any](s []T, n int) []T {
	if n < 0 {
		n = 0
	}
	if len(s) > n {
		return s[:n]
	}
	return s
}
