// internal/terminal/input.go
//
// Maps raw key presses onto flick gestures and game actions.
//
// A digit selects a keypad key (1..9, then 0 for the tenth) and starts a
// gesture at the origin. An arrow then releases the gesture 20 units away in
// that direction; space or the same digit releases it in place (a tap).

package terminal

import (
	"github.com/eiannone/keyboard"

	"github.com/mizukendesu/kotonoha-wordle/internal/flick"
	"github.com/mizukendesu/kotonoha-wordle/internal/game"
)

// flickDistance is comfortably above flick.Threshold.
const flickDistance = 20.0

// KeyEvent is one key press as delivered by eiannone/keyboard.
type KeyEvent struct {
	Rune rune
	Key  keyboard.Key
}

// Input is the keypad selection state between key presses.
type Input struct {
	layout   flick.Layout
	selected int
	gesture  *flick.Gesture
}

// NewInput returns an Input with nothing selected.
func NewInput(layout flick.Layout) *Input {
	return &Input{layout: layout, selected: -1}
}

// Selected is the label of the key awaiting a flick, or "".
func (in *Input) Selected() string {
	if in.selected < 0 {
		return ""
	}
	return in.layout.Keys[in.selected].Label
}

// Handle consumes one event. It returns the action to dispatch (nil for
// none) and whether the user asked to quit.
func (in *Input) Handle(ev KeyEvent) (game.Action, bool) {
	switch {
	case ev.Key == keyboard.KeyCtrlC || ev.Key == keyboard.KeyEsc || ev.Rune == 'q' || ev.Rune == 'Q':
		return nil, true
	case ev.Key == keyboard.KeyEnter:
		in.clear()
		return game.SubmitGuess{}, false
	case ev.Key == keyboard.KeyBackspace || ev.Key == keyboard.KeyBackspace2:
		if in.selected >= 0 {
			in.clear()
			return nil, false
		}
		return game.DeleteLetter{}, false
	case ev.Rune == 'r' || ev.Rune == 'R':
		in.clear()
		return game.Reset{}, false
	case ev.Key == keyboard.KeySpace || ev.Rune == ' ':
		return in.release(flick.Point{}), false
	case ev.Rune >= '0' && ev.Rune <= '9':
		idx := int(ev.Rune - '1')
		if ev.Rune == '0' {
			idx = 9
		}
		if idx >= len(in.layout.Keys) {
			return nil, false
		}
		if idx == in.selected {
			return in.release(flick.Point{}), false
		}
		in.selected = idx
		in.gesture = flick.NewGesture(in.layout.Keys[idx])
		in.gesture.Down(flick.Point{})
		return nil, false
	}

	if p, ok := arrowPoint(ev.Key); ok {
		return in.release(p), false
	}
	return nil, false
}

// release ends the active gesture at p.
func (in *Input) release(p flick.Point) game.Action {
	if in.gesture == nil {
		return nil
	}
	char, ok := in.gesture.Up(p)
	in.clear()
	if !ok {
		return nil
	}
	return game.AddLetter{Letter: char}
}

func (in *Input) clear() {
	if in.gesture != nil {
		in.gesture.Cancel()
	}
	in.gesture = nil
	in.selected = -1
}

func arrowPoint(k keyboard.Key) (flick.Point, bool) {
	switch k {
	case keyboard.KeyArrowLeft:
		return flick.Point{X: -flickDistance}, true
	case keyboard.KeyArrowUp:
		return flick.Point{Y: -flickDistance}, true
	case keyboard.KeyArrowRight:
		return flick.Point{X: flickDistance}, true
	case keyboard.KeyArrowDown:
		return flick.Point{Y: flickDistance}, true
	}
	return flick.Point{}, false
}
