package config

import "strings"

// MatchGlob reports whether path matches pattern, supporting the three
// wildcard forms named in §6: `*` (any run of characters within one path
// segment), `?` (exactly one character within one segment), and `**`
// (any number of whole segments, including zero). Both path and pattern
// are split on '/' first; callers normalize OS separators before calling.
//
// This is a fresh implementation, not an adaptation of any teacher file:
// the closest candidate considered was the teacher's hash/id helpers in
// graph/util_test.go, which do not implement glob matching at all.
func MatchGlob(pattern, path string) bool {
	pSegs := splitSegments(pattern)
	tSegs := splitSegments(path)
	return matchSegments(pSegs, tSegs)
}

func splitSegments(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

func matchSegments(pat, text []string) bool {
	if len(pat) == 0 {
		return len(text) == 0
	}
	if pat[0] == "**" {
		if matchSegments(pat[1:], text) {
			return true
		}
		for i := range text {
			if matchSegments(pat[1:], text[i+1:]) {
				return true
			}
		}
		return false
	}
	if len(text) == 0 {
		return false
	}
	if !matchSegment(pat[0], text[0]) {
		return false
	}
	return matchSegments(pat[1:], text[1:])
}

// matchSegment matches one path segment against a pattern segment
// containing `*`/`?` wildcards, via a standard two-pointer glob scan.
func matchSegment(pat, seg string) bool {
	var pi, si int
	var star, match int
	starFound := false
	for si < len(seg) {
		if pi < len(pat) && (pat[pi] == '?' || pat[pi] == seg[si]) {
			pi++
			si++
			continue
		}
		if pi < len(pat) && pat[pi] == '*' {
			star = pi
			match = si
			starFound = true
			pi++
			continue
		}
		if starFound {
			pi = star + 1
			match++
			si = match
			continue
		}
		return false
	}
	for pi < len(pat) && pat[pi] == '*' {
		pi++
	}
	return pi == len(pat)
}

// MatchAny reports whether path matches any of patterns.
func MatchAny(patterns []string, path string) bool {
	for _, p := range patterns {
		if MatchGlob(p, path) {
			return true
		}
	}
	return false
}
