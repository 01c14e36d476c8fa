package utils

import (
	"strings"
	"unicode"
)

// ContainsString returns true iff the provided string slice hay contains string
// needle.
func ContainsString(hay []string, needle string) bool {
	for _, str := range hay {
		if str == needle {
			return true
		}
	}
	return false
}

// UniqueStrings drops duplicates and empty strings, keeping first occurrence
// order.
func UniqueStrings(strs []string) []string {
	seen := make(map[string]bool, len(strs))
	res := []string{}
	for _, s := range strs {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		res = append(res, s)
	}
	return res
}

// Slugify lowercases s, keeps letters and digits, and joins every other run
// of characters with a single "-".
func Slugify(s string) string {
	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingDash && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingDash = false
			b.WriteRune(r)
			continue
		}
		pendingDash = true
	}
	return b.String()
}
