package content

import "strings"

// normalize lowercases and trims an answer for comparison
func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CheckAnswer compares a submitted answer against the accepted answers,
// ignoring case and surrounding whitespace. A single-answer question
// accepts any one of its listed alternatives.
func CheckAnswer(submitted string, accepted []string) bool {
	got := normalize(submitted)
	for _, want := range accepted {
		if got == normalize(want) {
			return true
		}
	}
	return false
}

// CheckMultiAnswer compares a submitted set against the accepted set.
// Order does not matter; every accepted answer must be present exactly
// once and nothing extra.
func CheckMultiAnswer(submitted, accepted []string) bool {
	if len(submitted) != len(accepted) {
		return false
	}
	want := make(map[string]int, len(accepted))
	for _, a := range accepted {
		want[normalize(a)]++
	}
	for _, s := range submitted {
		key := normalize(s)
		if want[key] == 0 {
			return false
		}
		want[key]--
	}
	return true
}
