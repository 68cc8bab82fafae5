// internal/game/engine.go
//
// Engine construction for a single fixed target word.
// Responsibilities:
//   - Hold the board dimensions (WordLength x MaxAttempts) and the target.
//   - Validate configuration once, at construction time.
//   - Expose the reveal timing used by the timer collaborator.
//
// Notes:
//   - The target is configuration, not runtime state; every game run by an
//     Engine guesses the same word.
//   - Letters are handled as runes so multi-byte kana compare correctly.
package game

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	DefaultWordLength  = 5
	DefaultMaxAttempts = 6

	// revealStep is the per-cell flip delay; revealBuffer covers the last flip.
	revealStep   = 150 * time.Millisecond
	revealBuffer = 400 * time.Millisecond
)

// ErrInvalidConfig is wrapped by every NewEngine validation failure.
var ErrInvalidConfig = errors.New("game: invalid config")

// Config fixes the board dimensions and the hidden word.
type Config struct {
	WordLength  int
	MaxAttempts int
	Target      string
}

// Engine evaluates guesses against Target and runs the reducer.
// It is immutable after NewEngine and safe to share.
type Engine struct {
	wordLength  int
	maxAttempts int
	target      []rune
}

// NewEngine validates cfg and returns an Engine for it.
func NewEngine(cfg Config) (*Engine, error) {
	if cfg.WordLength <= 0 {
		return nil, fmt.Errorf("%w: word length %d", ErrInvalidConfig, cfg.WordLength)
	}
	if cfg.MaxAttempts <= 0 {
		return nil, fmt.Errorf("%w: max attempts %d", ErrInvalidConfig, cfg.MaxAttempts)
	}
	if n := utf8.RuneCountInString(cfg.Target); n != cfg.WordLength {
		return nil, fmt.Errorf("%w: target %q has %d characters, want %d",
			ErrInvalidConfig, cfg.Target, n, cfg.WordLength)
	}
	return &Engine{
		wordLength:  cfg.WordLength,
		maxAttempts: cfg.MaxAttempts,
		target:      []rune(cfg.Target),
	}, nil
}

// WordLength is the number of columns per row.
func (e *Engine) WordLength() int { return e.wordLength }

// MaxAttempts is the number of rows on the board.
func (e *Engine) MaxAttempts() int { return e.maxAttempts }

// Target returns the hidden word. Only reveal it once a game is lost.
func (e *Engine) Target() string { return string(e.target) }

// RevealDuration is how long the reveal animation of one row takes:
// wordLength × 150ms plus a fixed 400ms buffer.
func RevealDuration(wordLength int) time.Duration {
	return time.Duration(wordLength)*revealStep + revealBuffer
}
