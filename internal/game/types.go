// internal/game/types.go
//
// Core type definitions for the kotonoha wordle engine.
// Defines:
//   - CellStatus / Cell / Row / Board: the guess grid.
//   - KeyStatus / KeyboardState: per-character keyboard coloring.
//   - GameStatus / State: the aggregate owned by the reducer.
//   - Action: the closed set of transitions accepted by Reduce.

package game

// CellStatus is the display state of a single board cell.
//   - "empty":   no letter typed yet.
//   - "filled":  letter typed but not yet evaluated.
//   - "correct": letter is in the target at this position.
//   - "present": letter is in the target at another position.
//   - "absent":  letter is not (or no longer) available in the target.
type CellStatus string

const (
	CellEmpty   CellStatus = "empty"
	CellFilled  CellStatus = "filled"
	CellCorrect CellStatus = "correct"
	CellPresent CellStatus = "present"
	CellAbsent  CellStatus = "absent"
)

// Evaluated reports whether the status came out of EvaluateGuess.
func (c CellStatus) Evaluated() bool {
	return c == CellCorrect || c == CellPresent || c == CellAbsent
}

// Cell is one square of the board.
type Cell struct {
	Letter string     `json:"letter"` // single hiragana character or ""
	Status CellStatus `json:"status"`
}

// Row is one attempt; index = board column.
type Row []Cell

// Board is the full grid; index = attempt number.
type Board []Row

// KeyStatus is the accumulated knowledge about a character.
type KeyStatus string

const (
	KeyUnused  KeyStatus = "unused"
	KeyAbsent  KeyStatus = "absent"
	KeyPresent KeyStatus = "present"
	KeyCorrect KeyStatus = "correct"
)

// Priority orders key statuses: correct(3) > present(2) > absent(1) > unused(0).
func (k KeyStatus) Priority() int {
	switch k {
	case KeyCorrect:
		return 3
	case KeyPresent:
		return 2
	case KeyAbsent:
		return 1
	}
	return 0
}

// KeyboardState maps a character to its best known status.
// Characters never seen in an evaluated row are absent from the map (unused).
type KeyboardState map[string]KeyStatus

// Status returns the status for letter, defaulting to KeyUnused.
func (kb KeyboardState) Status(letter string) KeyStatus {
	if s, ok := kb[letter]; ok {
		return s
	}
	return KeyUnused
}

// GameStatus is the coarse outcome of a game.
type GameStatus string

const (
	StatusPlaying GameStatus = "playing"
	StatusWon     GameStatus = "won"
	StatusLost    GameStatus = "lost"
)

// State is everything the renderer needs. It is only ever replaced through Reduce.
type State struct {
	Board         Board         `json:"board"`
	CurrentRow    int           `json:"currentRow"`
	CurrentCol    int           `json:"currentCol"`
	KeyboardState KeyboardState `json:"keyboardState"`
	GameStatus    GameStatus    `json:"gameStatus"`
	IsRevealing   bool          `json:"isRevealing"`
}

// Finished reports whether the game reached won or lost.
func (s State) Finished() bool { return s.GameStatus != StatusPlaying }

// Clone returns a deep copy that shares no slices or maps with s.
func (s State) Clone() State {
	out := s
	out.Board = make(Board, len(s.Board))
	for i, row := range s.Board {
		out.Board[i] = append(Row(nil), row...)
	}
	out.KeyboardState = make(KeyboardState, len(s.KeyboardState))
	for k, v := range s.KeyboardState {
		out.KeyboardState[k] = v
	}
	return out
}

// Action is one of AddLetter, DeleteLetter, SubmitGuess, RevealComplete or Reset.
type Action interface {
	action()
}

// AddLetter types Letter into the cursor cell.
type AddLetter struct{ Letter string }

// DeleteLetter clears the cell left of the cursor.
type DeleteLetter struct{}

// SubmitGuess evaluates the current row once it is full.
type SubmitGuess struct{}

// RevealComplete is dispatched once the reveal animation has finished.
type RevealComplete struct{}

// Reset starts over with a fresh board.
type Reset struct{}

func (AddLetter) action()      {}
func (DeleteLetter) action()   {}
func (SubmitGuess) action()    {}
func (RevealComplete) action() {}
func (Reset) action()          {}
