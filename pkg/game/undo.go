package game

import (
	"go.uber.org/zap"

	"github.com/yourusername/bgrules/pkg/match"
	"github.com/yourusername/bgrules/pkg/rules"
)

// UndoResult is returned by the undo operations.
type UndoResult struct {
	// Undone lists the reversed moves, most recent first.
	Undone []rules.Move `json:"undoneMoves"`
}

// UndoLastMove takes back the most recent move of the current turn.
func (g *Game) UndoLastMove() (UndoResult, error) {
	return g.undo(1)
}

// UndoAllMovesThisTurn takes back every move of the current turn.
func (g *Game) UndoAllMovesThisTurn() (UndoResult, error) {
	return g.undo(len(g.moves))
}

// undo reverses the last n moves of the turn by inverting them against the
// board and popping their log entries. Undo is allowed while moving, or right
// after the winning bear-off.
func (g *Game) undo(n int) (UndoResult, error) {
	switch {
	case g.phase == NotStarted:
		return UndoResult{}, ErrNoGame
	case g.phase == GameOver:
		if g.result == nil || g.result.Declined || len(g.moves) == 0 {
			return UndoResult{}, wrongPhase("undo", g.phase)
		}
	case g.phase != Moving:
		return UndoResult{}, wrongPhase("undo", g.phase)
	}
	if len(g.moves) == 0 || n == 0 {
		return UndoResult{}, newError(KindNothingToUndo, "no moves played this turn")
	}

	// Verify before touching anything so a mismatch leaves the game intact.
	if len(g.actions) < n {
		return UndoResult{}, newError(KindUndoHistoryMismatch, "log has %d entries, need %d moves", len(g.actions), n)
	}
	for i := 0; i < n; i++ {
		a := g.actions[len(g.actions)-1-i]
		p := g.moves[len(g.moves)-1-i]
		if a.Kind != match.PieceMove || a.Move == nil || *a.Move != p.move || a.Hit != p.hit || a.Player != g.turn {
			return UndoResult{}, newError(KindUndoHistoryMismatch, "log entry %d is %s, expected move %s", len(g.actions)-1-i, a.Kind, p.move)
		}
	}

	if g.phase == GameOver {
		if g.match != nil {
			if err := g.match.Retract(); err != nil {
				return UndoResult{}, newError(KindUndoHistoryMismatch, "match: %v", err)
			}
		}
		g.result = nil
		g.setPhase(Moving)
		// Dice left over at the winning move were discarded.
		g.remaining = g.unplayedDice()
	}

	undone := make([]rules.Move, 0, n)
	for i := 0; i < n; i++ {
		p := g.moves[len(g.moves)-1]
		g.pos = rules.UndoMove(g.pos, g.turn, p.move, p.hit)
		g.restoreDie(p.move.Die)
		g.moves = g.moves[:len(g.moves)-1]
		g.actions = g.actions[:len(g.actions)-1]
		undone = append(undone, p.move)
	}
	g.check("undo")

	g.logger.Debug("undo", zap.Stringer("player", g.turn), zap.Int("moves", n))
	return UndoResult{Undone: undone}, nil
}

// unplayedDice recomputes the dice of the current roll that no move has
// consumed yet.
func (g *Game) unplayedDice() []int {
	left := rules.ExpandRoll(g.roll[0], g.roll[1])
	for _, p := range g.moves {
		left = rules.RemoveDie(left, p.move.Die)
	}
	return left
}
