package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bgrules/pkg/dice"
	"github.com/yourusername/bgrules/pkg/game"
	"github.com/yourusername/bgrules/pkg/match"
)

func newTestTable(t *testing.T, length int, rolls ...int) (*table, *bytes.Buffer) {
	t.Helper()
	src, err := dice.NewScript(rolls...)
	require.NoError(t, err)
	g, err := game.New(game.Options{Doubling: true, Dice: src})
	require.NoError(t, err)
	var out bytes.Buffer
	return newTable(g, &out, length), &out
}

func TestTablePlaysATurn(t *testing.T) {
	tbl, out := newTestTable(t, 0, 3, 1)
	input := strings.Join([]string{
		"move 8/5 6/5",
		"end",
		"log",
		"moves",
		"bogus",
		"quit",
	}, "\n")
	require.NoError(t, tbl.run(strings.NewReader(input)))

	text := out.String()
	assert.Contains(t, text, "Opening roll: white moves first with 31")
	assert.Contains(t, text, "  8/5\n")
	assert.Contains(t, text, "Turn complete")
	assert.Contains(t, text, "black's turn")
	assert.Contains(t, text, "white 31: 8/5 6/5")
	assert.Contains(t, text, "No legal moves.")
	assert.Contains(t, text, `unknown command "bogus"`)
	assert.Equal(t, game.Rolling, tbl.g.Phase())
}

func TestTableRejectsIllegalMove(t *testing.T) {
	tbl, out := newTestTable(t, 0, 3, 1)
	require.NoError(t, tbl.run(strings.NewReader("move 13/12\nroll\nquit\n")))

	text := out.String()
	assert.Contains(t, text, "13/12: ")
	assert.Contains(t, text, "cannot roll during phase moving")
	assert.Equal(t, []int{3, 1}, tbl.g.Remaining())
}

func TestTableDoubleAndPass(t *testing.T) {
	tbl, out := newTestTable(t, 3, 3, 1)
	input := "m 8/5 6/5\ne\ndouble\npass\nquit\n"
	require.NoError(t, tbl.run(strings.NewReader(input)))

	text := out.String()
	assert.Contains(t, text, "black offers the cube at 2")
	assert.Contains(t, text, "black wins 1 point(s), double declined")
	assert.Contains(t, text, "Score: white 0, black 1 (match to 3)")
}

func TestTableBoard(t *testing.T) {
	tbl, out := newTestTable(t, 0, 3, 1)
	require.NoError(t, tbl.run(strings.NewReader("board\nquit\n")))

	var line string
	for _, l := range strings.Split(out.String(), "\n") {
		if i := strings.Index(l, "board:"); i >= 0 {
			line = l[i:]
		}
	}
	require.NotEmpty(t, line)
	b, err := match.ParseFIBSBoard(line)
	require.NoError(t, err)
	assert.Equal(t, tbl.g.Position(), b.Position)
	assert.Equal(t, [2]int{3, 1}, b.Dice[0])
}

func TestSaveAndReplay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "game.mat")
	tbl, _ := newTestTable(t, 0, 3, 1)
	input := strings.Join([]string{
		"move 8/5 6/5", "end",
		"roll", "move 8/5 6/5", "end",
		"save " + path,
		"quit",
	}, "\n")
	require.NoError(t, tbl.run(strings.NewReader(input)))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	tr, err := match.ImportMAT(f)
	require.NoError(t, err)
	require.Len(t, tr.Games, 1)

	var out bytes.Buffer
	require.NoError(t, replayTranscript(&out, tr, true))
	assert.Contains(t, out.String(), "black 31: 8/5 6/5")
	assert.Contains(t, out.String(), "Game 1 (score 0-0): unfinished")
}

func TestParseDice(t *testing.T) {
	d, err := parseDice("6-6")
	require.NoError(t, err)
	assert.Equal(t, [2]int{6, 6}, d)

	for _, bad := range []string{"7,1", "3", "a,b"} {
		_, err := parseDice(bad)
		assert.Error(t, err, bad)
	}
}
