package game

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yourusername/bgrules/pkg/dice"
	"github.com/yourusername/bgrules/pkg/rules"
)

// newGame creates a game whose dice follow rolls, repeating when exhausted.
func newGame(t *testing.T, opts Options, rolls ...int) *Game {
	t.Helper()
	src, err := dice.NewScript(rolls...)
	require.NoError(t, err)
	opts.Dice = src
	g, err := New(opts)
	require.NoError(t, err)
	return g
}

// layout builds a position from per-player counts; unplaced checkers are
// borne off.
func layout(white, black map[rules.Point]int) *rules.Position {
	var pos rules.Position
	for i, counts := range [2]map[rules.Point]int{white, black} {
		player := rules.Player(i)
		sign := 1
		if player == rules.Black {
			sign = -1
		}
		for pt, n := range counts {
			if pt == rules.Bar {
				pos.Bar[player] += n
				continue
			}
			pos.Points[pt-1] += sign * n
		}
		pos.BorneOff[player] = rules.NumCheckers - pos.Bar[player] - pos.OnBoard(player)
	}
	return &pos
}

// playTurn plays the first legal move until the turn can end, then ends
// it. It stops early if the game ends.
func playTurn(t *testing.T, g *Game) {
	t.Helper()
	for g.Phase() == Moving && !g.CanEndTurn() {
		legal := g.LegalMoves()
		require.NotEmpty(t, legal)
		_, err := g.MakeMove(legal[0].Moves()[0])
		require.NoError(t, err)
	}
	if g.Phase() == Moving {
		_, err := g.EndTurn()
		require.NoError(t, err)
	}
}
