package flick

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var defaultLayoutYAML []byte

// guideOffset is how far from the key center a directional guide is drawn.
const guideOffset = 56.0

// Key is one physical key: a label and its ordered candidate characters.
type Key struct {
	Label string   `yaml:"label" json:"label"`
	Chars []string `yaml:"chars" json:"chars"`
}

// Select returns the character a flick in dir produces on k.
func (k Key) Select(dir Direction) string {
	if len(k.Chars) == 0 {
		return ""
	}
	return k.Chars[CharIndex(dir, len(k.Chars))]
}

// Guide is a directional candidate drawn around a pressed key.
type Guide struct {
	Dir  Direction `json:"dir"`
	DX   float64   `json:"dx"`
	DY   float64   `json:"dy"`
	Char string    `json:"char"`
}

// Guides lists the reachable non-center slots of k with their drawing offsets.
func (k Key) Guides() []Guide {
	var dirs []Direction
	switch len(k.Chars) {
	case 5:
		dirs = []Direction{Left, Up, Right, Down}
	case 3:
		dirs = []Direction{Up, Right}
	}
	out := make([]Guide, 0, len(dirs))
	for _, d := range dirs {
		g := Guide{Dir: d, Char: k.Select(d)}
		switch d {
		case Left:
			g.DX = -guideOffset
		case Up:
			g.DY = -guideOffset
		case Right:
			g.DX = guideOffset
		case Down:
			g.DY = guideOffset
		}
		out = append(out, g)
	}
	return out
}

// Layout is the keypad, in display order (row-major, three columns).
type Layout struct {
	Keys []Key `yaml:"keys" json:"keys"`
}

var (
	errKeyCount = errors.New("flick: layout needs 10 to 12 keys")
	errSlots    = errors.New("flick: key must carry 1, 3 or 5 characters")
)

// Validate checks key count, label uniqueness and slot counts.
func (l Layout) Validate() error {
	if n := len(l.Keys); n < 10 || n > 12 {
		return fmt.Errorf("%w: got %d", errKeyCount, n)
	}
	seen := make(map[string]bool, len(l.Keys))
	for i, k := range l.Keys {
		if k.Label == "" {
			return fmt.Errorf("flick: key %d has no label", i)
		}
		if seen[k.Label] {
			return fmt.Errorf("flick: duplicate key %q", k.Label)
		}
		seen[k.Label] = true
		switch len(k.Chars) {
		case 1, 3, 5:
		default:
			return fmt.Errorf("%w: key %q has %d", errSlots, k.Label, len(k.Chars))
		}
	}
	return nil
}

// Key looks up a key by label.
func (l Layout) Key(label string) (Key, bool) {
	for _, k := range l.Keys {
		if k.Label == label {
			return k, true
		}
	}
	return Key{}, false
}

// ParseLayout decodes and validates a YAML layout table.
func ParseLayout(data []byte) (Layout, error) {
	var l Layout
	if err := yaml.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("flick: parse layout: %w", err)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// LoadLayout reads a layout from path, or returns the embedded default when
// path is empty.
func LoadLayout(path string) (Layout, error) {
	if path == "" {
		return DefaultLayout(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("flick: read layout: %w", err)
	}
	return ParseLayout(data)
}

// DefaultLayout is the built-in あかさたなはまやらわ keypad.
func DefaultLayout() Layout {
	l, err := ParseLayout(defaultLayoutYAML)
	if err != nil {
		panic(err)
	}
	return l
}
