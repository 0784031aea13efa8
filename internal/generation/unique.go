package generation

import (
	"math/rand"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/yuja201/S13P31B201-sub000/internal/faker"
)

const (
	maxPerturbations  = 10
	maxForcedAttempts = 1000
)

// EnforceUnique rewrites duplicates, preserving order, so the result has no
// repeated value. It returns the adjusted slice and how many values changed.
func EnforceUnique(values []string) ([]string, int) {
	return enforceUnique(values, 0)
}

// enforceUnique keeps every rewritten value within maxLen runes when
// maxLen is positive.
func enforceUnique(values []string, maxLen int) ([]string, int) {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, len(values))
	changed := 0

	for i, v := range values {
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			out[i] = v
			continue
		}

		candidate := ""
		for attempt := 0; attempt < maxPerturbations; attempt++ {
			c := withSuffix(v, "_"+shortToken(), maxLen)
			if _, dup := seen[c]; !dup {
				candidate = c
				break
			}
		}
		// Short length limits can exhaust the value space; stop after a
		// bounded number of forced attempts and keep the last candidate.
		for attempt := 0; candidate == "" && attempt < maxForcedAttempts; attempt++ {
			c := withSuffix(v, forcedSuffix(), maxLen)
			if _, dup := seen[c]; !dup || attempt == maxForcedAttempts-1 {
				candidate = c
			}
		}

		seen[candidate] = struct{}{}
		out[i] = candidate
		changed++
	}
	return out, changed
}

func withSuffix(v, suffix string, maxLen int) string {
	if maxLen <= 0 {
		return v + suffix
	}
	n := utf8.RuneCountInString(suffix)
	if n >= maxLen {
		r := []rune(suffix)
		return string(r[n-maxLen:])
	}
	return faker.Truncate(v, maxLen-n) + suffix
}

func shortToken() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

const tokenAlphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// forcedSuffix is a live timestamp plus a random character.
func forcedSuffix() string {
	ts := strconv.FormatInt(time.Now().UnixNano(), 36)
	return "_" + ts + string(tokenAlphabet[rand.Intn(len(tokenAlphabet))])
}
