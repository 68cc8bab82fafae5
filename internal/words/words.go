// internal/words/words.go
//
// Target word resolution and the hiragana alphabet.
//
// Responsibilities:
//   - Resolve the hidden word from configuration or fall back to the
//     embedded default (`default_target.txt`).
//   - Validate words against the supported alphabet (ぁ..ん).
//
// Environment variables (read by internal/config, passed in here):
//   TARGET_WORD=さくらもち
//
// Constraints:
//   • Words must be exactly WordLength hiragana characters.
//   • The word is chosen once at startup; there is no per-game selection.

package words

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

//go:embed default_target.txt
var embeddedTarget string

// ErrInvalidWord is returned when a configured word fails validation.
var ErrInvalidWord = errors.New("words: invalid word")

// IsHiragana reports whether r is in ぁ (U+3041) .. ん (U+3093).
func IsHiragana(r rune) bool {
	return r >= 'ぁ' && r <= 'ん'
}

// IsLetter reports whether s is exactly one hiragana character.
func IsLetter(s string) bool {
	r, size := utf8.DecodeRuneInString(s)
	return size > 0 && size == len(s) && IsHiragana(r)
}

// IsWord reports whether s is exactly n hiragana characters.
func IsWord(s string, n int) bool {
	if utf8.RuneCountInString(s) != n {
		return false
	}
	for _, r := range s {
		if !IsHiragana(r) {
			return false
		}
	}
	return true
}

// Default is the embedded target word.
func Default() string {
	return normalizeLines(embeddedTarget)
}

// Resolve returns override (trimmed) or the embedded default, validated to
// be an n-character hiragana word.
func Resolve(override string, n int) (string, error) {
	w := strings.TrimSpace(override)
	if w == "" {
		w = Default()
	}
	if !IsWord(w, n) {
		return "", fmt.Errorf("%w: %q is not %d hiragana characters", ErrInvalidWord, w, n)
	}
	return w, nil
}

// normalizeLines returns the first non-blank, non-comment line of s.
func normalizeLines(s string) string {
	for _, line := range strings.Split(s, "\n") {
		w := strings.TrimSpace(line)
		if w == "" || strings.HasPrefix(w, "#") {
			continue
		}
		return w
	}
	return ""
}
