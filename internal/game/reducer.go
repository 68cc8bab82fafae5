// internal/game/reducer.go
//
// The game state machine: one pure transition function over a closed
// action set.
//
// State transitions:
//   - playing → won   on a SubmitGuess matching the target.
//   - playing → lost  on a wrong SubmitGuess at row MaxAttempts-1.
//   - won/lost → playing only through Reset.
//
// SubmitGuess commits the evaluation and raises IsRevealing; the row/cursor
// advance waits for RevealComplete so animation timing stays outside the core.
// Every disallowed action returns the input state unchanged.
package game

// InitialState returns an empty board with the cursor at row 0, column 0.
func (e *Engine) InitialState() State {
	return State{
		Board:         e.emptyBoard(),
		KeyboardState: KeyboardState{},
		GameStatus:    StatusPlaying,
	}
}

func (e *Engine) emptyBoard() Board {
	b := make(Board, e.maxAttempts)
	for i := range b {
		row := make(Row, e.wordLength)
		for j := range row {
			row[j] = Cell{Status: CellEmpty}
		}
		b[i] = row
	}
	return b
}

// Reduce applies a to s and returns the next state. It never mutates s.
func (e *Engine) Reduce(s State, a Action) State {
	switch a := a.(type) {
	case AddLetter:
		if !s.acceptsInput() || s.CurrentCol >= e.wordLength {
			return s
		}
		s.Board = s.Board.withCell(s.CurrentRow, s.CurrentCol, Cell{Letter: a.Letter, Status: CellFilled})
		s.CurrentCol++
		return s

	case DeleteLetter:
		if !s.acceptsInput() || s.CurrentCol <= 0 {
			return s
		}
		s.Board = s.Board.withCell(s.CurrentRow, s.CurrentCol-1, Cell{Status: CellEmpty})
		s.CurrentCol--
		return s

	case SubmitGuess:
		if !s.acceptsInput() || s.CurrentCol != e.wordLength {
			return s
		}
		guess := s.Board[s.CurrentRow].Word()
		evaluated := e.EvaluateGuess(guess)

		s.Board = s.Board.withRow(s.CurrentRow, evaluated)
		s.KeyboardState = UpdateKeyboardState(s.KeyboardState, evaluated)
		s.IsRevealing = true
		switch {
		case e.IsCorrectGuess(guess):
			s.GameStatus = StatusWon
		case s.CurrentRow >= e.maxAttempts-1:
			s.GameStatus = StatusLost
		}
		return s

	case RevealComplete:
		if !s.IsRevealing {
			return s
		}
		s.IsRevealing = false
		if s.GameStatus == StatusPlaying {
			s.CurrentRow++
			s.CurrentCol = 0
		}
		return s

	case Reset:
		return e.InitialState()
	}
	return s
}

// acceptsInput is the shared guard for AddLetter, DeleteLetter and SubmitGuess.
func (s State) acceptsInput() bool {
	return s.GameStatus == StatusPlaying && !s.IsRevealing
}

// Word concatenates the row's letters.
func (r Row) Word() string {
	var out []byte
	for _, c := range r {
		out = append(out, c.Letter...)
	}
	return string(out)
}

// withRow returns a board whose row i is replaced; other rows are shared.
func (b Board) withRow(i int, row Row) Board {
	next := append(Board(nil), b...)
	next[i] = row
	return next
}

// withCell returns a board with a single cell replaced.
func (b Board) withCell(i, j int, c Cell) Board {
	row := append(Row(nil), b[i]...)
	row[j] = c
	return b.withRow(i, row)
}

// ActionName is a short label for logs and wire formats.
func ActionName(a Action) string {
	switch a.(type) {
	case AddLetter:
		return "add_letter"
	case DeleteLetter:
		return "delete_letter"
	case SubmitGuess:
		return "submit_guess"
	case RevealComplete:
		return "reveal_complete"
	case Reset:
		return "reset"
	}
	return "unknown"
}
