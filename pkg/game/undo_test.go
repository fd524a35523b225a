package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bgrules/pkg/rules"
)

func TestUndoLastMoveRestoresState(t *testing.T) {
	pos := layout(map[rules.Point]int{24: 2, 6: 13}, map[rules.Point]int{20: 1, 1: 14})
	g := newGame(t, Options{Position: pos}, 4, 2)
	_, err := g.Start()
	require.NoError(t, err)

	before := g.Position()
	remaining := g.Remaining()
	logLen := len(g.Actions())

	res, err := g.MakeMove(rules.Move{From: 24, To: 20, Die: 4})
	require.NoError(t, err)
	require.True(t, res.Hit)
	assert.Equal(t, 1, g.Position().Bar[rules.Black])

	undo, err := g.UndoLastMove()
	require.NoError(t, err)
	assert.Equal(t, []rules.Move{{From: 24, To: 20, Die: 4}}, undo.Undone)
	assert.Equal(t, before, g.Position())
	assert.ElementsMatch(t, remaining, g.Remaining())
	assert.Len(t, g.Actions(), logLen)
	assert.Equal(t, Moving, g.Phase())
}

func TestUndoAllMovesThisTurn(t *testing.T) {
	g := newGame(t, Options{}, 3, 1, 6, 6)
	_, err := g.Start()
	require.NoError(t, err)
	playTurn(t, g)

	_, err = g.RollDice()
	require.NoError(t, err)
	before := g.Snapshot()

	var played []rules.Move
	for i := 0; i < 3; i++ {
		m := g.LegalMoves()[0].Moves()[0]
		_, err := g.MakeMove(m)
		require.NoError(t, err)
		played = append(played, m)
	}
	assert.Equal(t, []int{6}, g.Remaining())

	undo, err := g.UndoAllMovesThisTurn()
	require.NoError(t, err)
	assert.Equal(t, []rules.Move{played[2], played[1], played[0]}, undo.Undone)
	assert.Equal(t, before, g.Snapshot())

	_, err = g.UndoAllMovesThisTurn()
	assert.ErrorIs(t, err, ErrNothingToUndo)
	_, err = g.UndoLastMove()
	assert.ErrorIs(t, err, ErrNothingToUndo)
}

func TestUndoOutsideMoving(t *testing.T) {
	g := newGame(t, Options{}, 3, 1)
	_, err := g.Start()
	require.NoError(t, err)
	playTurn(t, g)

	_, err = g.UndoLastMove()
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestUndoHistoryMismatch(t *testing.T) {
	g := newGame(t, Options{}, 3, 1)
	_, err := g.Start()
	require.NoError(t, err)
	_, err = g.MakeMove(rules.Move{From: 8, To: 5, Die: 3})
	require.NoError(t, err)

	// Drop the log entry behind the game's back.
	g.actions = g.actions[:len(g.actions)-1]
	before := g.Position()

	_, err = g.UndoLastMove()
	assert.ErrorIs(t, err, ErrUndoHistoryMismatch)
	assert.Equal(t, before, g.Position())
}

func TestUndoWinningMove(t *testing.T) {
	pos := layout(map[rules.Point]int{1: 1}, map[rules.Point]int{24: 15})
	g := newGame(t, Options{Position: pos}, 3, 1)
	_, err := g.StartMatch(3)
	require.NoError(t, err)

	_, err = g.MakeMove(rules.Move{From: 1, To: rules.Off, Die: 1})
	assert.ErrorIs(t, err, ErrMustPlayRequired)

	res, err := g.MakeMove(rules.Move{From: 1, To: rules.Off, Die: 3})
	require.NoError(t, err)
	require.True(t, res.GameOver)
	assert.Equal(t, [2]int{2, 0}, g.Match().Score)
	assert.True(t, g.Match().IsCrawford)

	_, err = g.UndoLastMove()
	require.NoError(t, err)
	assert.Equal(t, Moving, g.Phase())
	assert.Equal(t, *pos, g.Position())
	assert.Equal(t, []int{3, 1}, g.Remaining())
	_, over := g.CheckGameOver()
	assert.False(t, over)

	m := g.Match()
	assert.Equal(t, [2]int{0, 0}, m.Score)
	assert.False(t, m.IsCrawford)
	assert.Empty(t, m.Results)
	assert.Equal(t, 1, m.GameNumber)
}

func TestRandomGamesConserveCheckers(t *testing.T) {
	g := newGame(t, Options{}, 3, 1, 5, 2, 6, 6, 4, 1, 2, 2, 6, 3, 5, 5, 4, 2, 1, 1, 6, 5)
	_, err := g.Start()
	require.NoError(t, err)

	for turn := 0; turn < 500 && g.Phase() != GameOver; turn++ {
		if g.Phase() == Rolling {
			_, err := g.RollDice()
			require.NoError(t, err)
		}
		playTurn(t, g)
		pos := g.Position()
		require.NoError(t, pos.Validate())
		for _, p := range []rules.Player{rules.White, rules.Black} {
			require.Equal(t, rules.NumCheckers, pos.Total(p))
		}
	}
}
