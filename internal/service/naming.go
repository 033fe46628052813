package service

import (
	"crypto/rand"
	"strings"
	"unicode"
	"unicode/utf8"
)

const joinCodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// joinCodeLength matches the code embedded in workspace invite links.
const joinCodeLength = 6

// generateJoinCode produces a random lowercase alphanumeric invite code.
func generateJoinCode() (string, error) {
	buf := make([]byte, joinCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}

	for i, b := range buf {
		buf[i] = joinCodeAlphabet[int(b)%len(joinCodeAlphabet)]
	}

	return string(buf), nil
}

// validJoinCode reports whether a submitted code has the expected shape.
func validJoinCode(code string) bool {
	if len(code) != joinCodeLength {
		return false
	}
	for _, r := range strings.ToLower(code) {
		if !strings.ContainsRune(joinCodeAlphabet, r) {
			return false
		}
	}
	return true
}

// validNameLength checks the raw name length before any normalization.
func validNameLength(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 3 && n <= 20
}

// normalizeChannelName lowercases a channel name and collapses whitespace
// runs into single hyphens, matching how channel slugs appear in URLs.
func normalizeChannelName(name string) string {
	fields := strings.FieldsFunc(name, unicode.IsSpace)
	return strings.ToLower(strings.Join(fields, "-"))
}
