// internal/terminal/render.go
//
// Plain-text rendering of a game for the terminal client.
// Responsibilities:
//   - Board grid with per-cell status (ANSI colors or bracket markers).
//   - Flick keypad with the aggregated status of each key's characters.
//   - Direction guides for the selected key and the end-of-game overlay.

package terminal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mizukendesu/kotonoha-wordle/internal/flick"
	"github.com/mizukendesu/kotonoha-wordle/internal/game"
)

const (
	ansiReset  = "\033[0m"
	ansiClear  = "\033[2J\033[H"
	ansiBold   = "\033[1m"
	ansiGreen  = "\033[42;30m"
	ansiYellow = "\033[43;30m"
	ansiGray   = "\033[100;37m"
)

// keysPerRow is the keypad width; the last row holds わ alone.
const keysPerRow = 3

// Options tweak a single Render call.
type Options struct {
	Color    bool   // ANSI colors and screen clearing
	Selected string // label of the key awaiting a flick, if any
	Answer   string // target word, shown once a lost game is revealed
	Message  string // one-line status under the keypad
}

// UseColor reports whether f is an interactive terminal that can take ANSI codes.
func UseColor(f *os.File) bool {
	if t := os.Getenv("TERM"); t == "" || t == "dumb" {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

// Overlay is the end-of-game banner. Empty while playing or still revealing.
func Overlay(st game.State, answer string) string {
	if st.IsRevealing {
		return ""
	}
	switch st.GameStatus {
	case game.StatusWon:
		return "正解！"
	case game.StatusLost:
		return fmt.Sprintf("不正解… 正解は「%s」でした", answer)
	}
	return ""
}

// Render writes the whole screen for st.
func Render(w io.Writer, st game.State, layout flick.Layout, opts Options) error {
	var b strings.Builder
	if opts.Color {
		b.WriteString(ansiClear)
	}
	b.WriteString("ことのは wordle\n\n")

	for _, row := range st.Board {
		b.WriteString("  ")
		for _, c := range row {
			b.WriteString(cell(c, opts.Color))
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')

	for i, k := range layout.Keys {
		if i > 0 && i%keysPerRow == 0 {
			b.WriteByte('\n')
		}
		b.WriteString(keyCap(i, k, game.KeyStatusOf(st.KeyboardState, k.Chars), k.Label == opts.Selected, opts.Color))
	}
	b.WriteString("\n\n")

	if k, ok := layout.Key(opts.Selected); ok && opts.Selected != "" {
		b.WriteString("  " + guideLine(k) + "\n")
	}
	if o := Overlay(st, opts.Answer); o != "" {
		if opts.Color {
			o = ansiBold + o + ansiReset
		}
		b.WriteString("  " + o + "\n")
	}
	if opts.Message != "" {
		b.WriteString("  " + opts.Message + "\n")
	}
	b.WriteString("\n  1-0: キー選択  ←↑→↓: フリック  Space: タップ  Enter: 決定  BS: 削除  r: リセット  q: 終了\n")

	_, err := io.WriteString(w, b.String())
	return err
}

func cell(c game.Cell, color bool) string {
	letter := c.Letter
	if letter == "" {
		letter = "・"
	}
	if color {
		switch c.Status {
		case game.CellCorrect:
			return ansiGreen + " " + letter + " " + ansiReset
		case game.CellPresent:
			return ansiYellow + " " + letter + " " + ansiReset
		case game.CellAbsent:
			return ansiGray + " " + letter + " " + ansiReset
		case game.CellFilled:
			return ansiBold + " " + letter + " " + ansiReset
		}
		return " " + letter + " "
	}
	switch c.Status {
	case game.CellCorrect:
		return "[" + letter + "]"
	case game.CellPresent:
		return "(" + letter + ")"
	case game.CellAbsent:
		return "." + letter + "."
	}
	return " " + letter + " "
}

// keyCap renders one keypad key with its digit shortcut.
func keyCap(i int, k flick.Key, status game.KeyStatus, selected, color bool) string {
	label := fmt.Sprintf("%d:%s", (i+1)%10, k.Label)
	if selected {
		label = "*" + label + "*"
	} else {
		label = " " + label + " "
	}
	if !color {
		return "  " + label + statusMark(status)
	}
	switch status {
	case game.KeyCorrect:
		label = ansiGreen + label + ansiReset
	case game.KeyPresent:
		label = ansiYellow + label + ansiReset
	case game.KeyAbsent:
		label = ansiGray + label + ansiReset
	}
	return "  " + label
}

func statusMark(s game.KeyStatus) string {
	switch s {
	case game.KeyCorrect:
		return "="
	case game.KeyPresent:
		return "~"
	case game.KeyAbsent:
		return "x"
	}
	return " "
}

var arrows = map[flick.Direction]string{
	flick.Left:  "←",
	flick.Up:    "↑",
	flick.Right: "→",
	flick.Down:  "↓",
}

// guideLine lists what each arrow would type on k.
func guideLine(k flick.Key) string {
	parts := []string{"・" + k.Select(flick.Center)}
	for _, g := range k.Guides() {
		parts = append(parts, arrows[g.Dir]+g.Char)
	}
	return strings.Join(parts, "  ")
}
