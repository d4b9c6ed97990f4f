// Package tailnum normalizes U.S. aircraft registration marks (N-numbers).
//
// The same Normalize function is used when registrations are written during
// ingestion and when identifiers arrive at lookup time. Keys produced by one
// path must always match keys produced by the other.
package tailnum

import "strings"

// Prefix is the nationality mark of U.S. registered aircraft.
const Prefix = "N"

// Normalize converts a user or file supplied tail number to the stored key:
// upper case, one leading "N" removed, dashes and spaces removed.
// "N172SP", "172SP", "N-172SP" and "n172sp" all become "172SP".
// The result can be empty, callers decide what an empty key means.
func Normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, Prefix)
	return strings.Map(func(r rune) rune {
		switch r {
		case '-', ' ', '\t':
			return -1
		}
		return r
	}, s)
}

// Display returns the conventional written form of a normalized key,
// for example "N172SP" for "172SP".
func Display(key string) string {
	if key == "" {
		return ""
	}
	return Prefix + key
}
