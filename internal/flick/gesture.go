package flick

// Gesture tracks one pointer interaction on a key.
// The zero value is idle; Down starts flicking.
type Gesture struct {
	key      Key
	start    Point
	dir      Direction
	flicking bool
}

// NewGesture prepares a gesture on k.
func NewGesture(k Key) *Gesture {
	return &Gesture{key: k}
}

// Down captures the start point and enters flicking mode.
func (g *Gesture) Down(p Point) {
	g.start = p
	g.dir = Center
	g.flicking = true
}

// Move updates the live direction. Ignored unless flicking.
func (g *Gesture) Move(p Point) Direction {
	if !g.flicking {
		return Center
	}
	g.dir = CalculateDirection(g.start, p)
	return g.dir
}

// Flicking reports whether a gesture is in progress.
func (g *Gesture) Flicking() bool { return g.flicking }

// Direction is the direction of the last Move.
func (g *Gesture) Direction() Direction { return g.dir }

// Preview is the character currently aimed at, for UI feedback.
func (g *Gesture) Preview() (string, bool) {
	if !g.flicking {
		return "", false
	}
	return g.key.Select(g.dir), true
}

// PreviewAt is the character a release at p would select. It does not
// change the gesture.
func (g *Gesture) PreviewAt(p Point) (string, bool) {
	if !g.flicking {
		return "", false
	}
	return g.key.Select(CalculateDirection(g.start, p)), true
}

// Up resolves the gesture from the final point (not the last Move sample)
// and returns the selected character. ok is false when no gesture was active.
func (g *Gesture) Up(p Point) (char string, ok bool) {
	if !g.flicking {
		return "", false
	}
	char = g.key.Select(CalculateDirection(g.start, p))
	g.reset()
	return char, char != ""
}

// Cancel aborts the gesture without selecting anything.
func (g *Gesture) Cancel() { g.reset() }

func (g *Gesture) reset() {
	g.flicking = false
	g.dir = Center
	g.start = Point{}
}

// Decode is the one-shot form of Down followed by Up.
func Decode(k Key, start, end Point) string {
	g := NewGesture(k)
	g.Down(start)
	char, _ := g.Up(end)
	return char
}
