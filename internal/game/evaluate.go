// internal/game/evaluate.go
//
// Guess evaluation against the engine's target word.
//
// Pass 1:
//   - Mark exact matches as correct and consume them from the remaining
//     per-character counts seeded from the target.
//
// Pass 2:
//   - Left to right, mark a non-correct letter present while the target
//     still has unconsumed occurrences of it; otherwise absent.
//
// The left-to-right consumption is the tie-break for repeated letters.
package game

// EvaluateGuess scores guess position by position.
// Callers guarantee the alphabet and the length; a short guess yields a short row.
func (e *Engine) EvaluateGuess(guess string) Row {
	letters := []rune(guess)
	row := make(Row, len(letters))

	remaining := make(map[rune]int, len(e.target))
	for _, r := range e.target {
		remaining[r]++
	}

	for i, r := range letters {
		row[i] = Cell{Letter: string(r), Status: CellAbsent}
		if i < len(e.target) && r == e.target[i] {
			row[i].Status = CellCorrect
			remaining[r]--
		}
	}

	for i, r := range letters {
		if row[i].Status == CellCorrect {
			continue
		}
		if remaining[r] > 0 {
			row[i].Status = CellPresent
			remaining[r]--
		}
	}
	return row
}

// IsCorrectGuess reports exact equality with the target.
func (e *Engine) IsCorrectGuess(guess string) bool {
	return guess == string(e.target)
}

// UpdateKeyboardState folds an evaluated row into a copy of current.
// A character's status is only ever raised, never lowered.
func UpdateKeyboardState(current KeyboardState, row Row) KeyboardState {
	next := make(KeyboardState, len(current)+len(row))
	for k, v := range current {
		next[k] = v
	}
	for _, c := range row {
		if c.Letter == "" || !c.Status.Evaluated() {
			continue
		}
		status := KeyStatus(c.Status)
		if status.Priority() > next.Status(c.Letter).Priority() {
			next[c.Letter] = status
		}
	}
	return next
}

// KeyStatusOf is the highest-priority status among chars, used to color a
// physical key that carries several characters.
func KeyStatusOf(kb KeyboardState, chars []string) KeyStatus {
	best := KeyUnused
	for _, ch := range chars {
		if s := kb.Status(ch); s.Priority() > best.Priority() {
			best = s
		}
	}
	return best
}
