// Package flick decodes flick gestures on a 12-key kana keypad.
//
// A gesture is a start point plus the point the pointer is at now. Short
// movements are taps (Center); longer ones are bucketed into four 90° sectors
// around left/up/right/down. The direction then addresses one of the key's
// 1, 3 or 5 characters:
//
//	        う(2)
//	い(1)  あ(0)  え(3)
//	        お(4)
//
// Three-character keys (や, わ) only use up and right.
package flick

import "math"

// Threshold is the minimum distance, in pointer units, that counts as a flick.
const Threshold = 15.0

// Direction is the numeric flick direction; its value doubles as the slot
// index on five-character keys.
type Direction int

const (
	Center Direction = iota
	Left
	Up
	Right
	Down
)

func (d Direction) String() string {
	switch d {
	case Center:
		return "center"
	case Left:
		return "left"
	case Up:
		return "up"
	case Right:
		return "right"
	case Down:
		return "down"
	}
	return "unknown"
}

// Point is a pointer position in screen coordinates (y grows downward).
type Point struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// CalculateDirection classifies the motion from start to current.
func CalculateDirection(start, current Point) Direction {
	dx := current.X - start.X
	dy := current.Y - start.Y
	if math.Hypot(dx, dy) < Threshold {
		return Center
	}

	angle := math.Atan2(dy, dx) * 180 / math.Pi
	switch {
	case angle >= 135 || angle < -135:
		return Left
	case angle < -45:
		return Up
	case angle < 45:
		return Right
	default:
		return Down
	}
}

// CharIndex maps a direction to a slot for a key carrying charCount characters.
// Directions a key cannot address collapse to the center slot.
func CharIndex(dir Direction, charCount int) int {
	switch charCount {
	case 5:
		if dir >= Center && dir <= Down {
			return int(dir)
		}
	case 3:
		switch dir {
		case Up:
			return 1
		case Right:
			return 2
		}
	}
	return 0
}
