// internal/terminal/loop.go
//
// The terminal game loop: one goroutine owning the state, selecting over
// key events and the reveal timer.

package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/eiannone/keyboard"
	"github.com/rs/zerolog/log"

	"github.com/mizukendesu/kotonoha-wordle/internal/flick"
	"github.com/mizukendesu/kotonoha-wordle/internal/game"
)

// Loop plays one local game.
type Loop struct {
	Engine *game.Engine
	Layout flick.Layout
	Out    io.Writer
	Color  bool

	// After starts the reveal timer. Defaults to time.After.
	After func(time.Duration) <-chan time.Time
}

// Run renders st after every change until quit, ctx cancellation, or the
// events channel closing. It returns the last state.
func (l *Loop) Run(ctx context.Context, events <-chan KeyEvent) (game.State, error) {
	after := l.After
	if after == nil {
		after = time.After
	}
	in := NewInput(l.Layout)
	st := l.Engine.InitialState()
	var reveal <-chan time.Time
	msg := ""

	render := func() error {
		return Render(l.Out, st, l.Layout, Options{
			Color:    l.Color,
			Selected: in.Selected(),
			Answer:   l.Engine.Target(),
			Message:  msg,
		})
	}
	if err := render(); err != nil {
		return st, err
	}

	for {
		select {
		case <-ctx.Done():
			return st, ctx.Err()

		case <-reveal:
			reveal = nil
			st = l.Engine.Reduce(st, game.RevealComplete{})

		case ev, ok := <-events:
			if !ok {
				return st, nil
			}
			a, quit := in.Handle(ev)
			if quit {
				return st, nil
			}
			msg = ""
			if a != nil {
				prev := st
				st = l.Engine.Reduce(st, a)
				_, isReset := a.(game.Reset)
				_, isSubmit := a.(game.SubmitGuess)
				switch {
				case !prev.IsRevealing && st.IsRevealing:
					reveal = after(game.RevealDuration(l.Engine.WordLength()))
				case isReset:
					reveal = nil
				case isSubmit && !st.IsRevealing && !st.Finished():
					msg = fmt.Sprintf("%d文字入力してください", l.Engine.WordLength())
				}
				log.Debug().Str("action", game.ActionName(a)).Int("row", st.CurrentRow).Int("col", st.CurrentCol).Msg("terminal transition")
			}
		}
		if err := render(); err != nil {
			return st, err
		}
	}
}

// Play opens the keyboard, runs a Loop on it, and restores the terminal.
func Play(ctx context.Context, engine *game.Engine, layout flick.Layout, out io.Writer, color bool) error {
	if err := keyboard.Open(); err != nil {
		return fmt.Errorf("open keyboard: %w", err)
	}
	defer keyboard.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan KeyEvent)
	go func() {
		defer close(events)
		for {
			char, key, err := keyboard.GetKey()
			if err != nil {
				log.Debug().Err(err).Msg("keyboard read")
				return
			}
			select {
			case events <- KeyEvent{Rune: char, Key: key}:
			case <-ctx.Done():
				return
			}
		}
	}()

	l := &Loop{Engine: engine, Layout: layout, Out: out, Color: color}
	st, err := l.Run(ctx, events)
	if errors.Is(err, context.Canceled) {
		err = nil
	}
	log.Info().Str("status", string(st.GameStatus)).Int("row", st.CurrentRow).Msg("terminal game ended")
	return err
}
