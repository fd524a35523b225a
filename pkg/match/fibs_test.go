package match

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bgrules/pkg/rules"
)

func TestFIBSBoardRoundTrip(t *testing.T) {
	pos := rules.StartingPosition()
	pos.Points[23]-- // white 24 to the bar for black to hit
	pos.Bar[rules.White] = 1

	b := FIBSBoard{
		Players:     [2]string{"Ann", "Bob"},
		MatchLength: 5,
		Score:       [2]int{3, 1},
		Position:    pos,
		Turn:        rules.White,
		Dice:        [2][2]int{{3, 1}},
		Cube:        2,
		MayDouble:   [2]bool{false, true},
		CanMove:     2,
		You:         rules.White,
	}
	s := b.String()
	assert.True(t, strings.HasPrefix(s, "board:Ann:Bob:5:3:1:0:-2:"))
	assert.Len(t, strings.Split(strings.TrimPrefix(s, "board:"), ":"), fibsFields)

	got, err := ParseFIBSBoard(s)
	require.NoError(t, err)
	assert.Equal(t, b, got)
}

func TestParseFIBSBoardForBlack(t *testing.T) {
	pos := rules.StartingPosition()
	board := []string{"0"}
	for _, n := range pos.Points {
		board = append(board, strconv.Itoa(n))
	}
	board = append(board, "0")

	s := "board:Bob:Ann:5:1:2:" + strings.Join(board, ":") +
		":-1:6:5:0:0:2:0:1:0:-1:1:25:0:0:0:0:0:2:0:0:0"
	b, err := ParseFIBSBoard(s)
	require.NoError(t, err)

	assert.Equal(t, rules.Black, b.You)
	assert.Equal(t, [2]string{"Ann", "Bob"}, b.Players)
	assert.Equal(t, [2]int{2, 1}, b.Score)
	assert.Equal(t, pos, b.Position)
	assert.Equal(t, rules.Black, b.Turn)
	assert.Equal(t, [2]int{6, 5}, b.Dice[rules.Black])
	assert.Equal(t, [2]int{}, b.Dice[rules.White])
	assert.Equal(t, 2, b.Cube)
	assert.Equal(t, [2]bool{true, false}, b.MayDouble)
	assert.Equal(t, 2, b.CanMove)
}

func TestParseFIBSBoardShort(t *testing.T) {
	// Fields after the turn may be left off
	pos := rules.StartingPosition()
	b := FIBSBoard{Players: [2]string{"a", "b"}, Position: pos, Turn: rules.Black, Cube: 1}
	parts := strings.Split(b.String(), ":")

	got, err := ParseFIBSBoard(strings.Join(parts[:33], ":"))
	require.NoError(t, err)
	assert.Equal(t, pos, got.Position)
	assert.Equal(t, rules.Black, got.Turn)
	assert.Equal(t, 1, got.Cube)
}

func TestParseFIBSBoardErrors(t *testing.T) {
	good := FIBSBoard{Position: rules.StartingPosition(), Cube: 1}.String()
	parts := strings.Split(good, ":")

	tooMany := append([]string(nil), parts...)
	tooMany[7] = "-9" // point 1 now holds nine black checkers

	notNumber := append([]string(nil), parts...)
	notNumber[10] = "x"

	badColor := append([]string(nil), parts...)
	badColor[41] = "0"

	for name, s := range map[string]string{
		"short":      "board:a:b:1:0:0",
		"checkers":   strings.Join(tooMany, ":"),
		"not number": strings.Join(notNumber, ":"),
		"color":      strings.Join(badColor, ":"),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ParseFIBSBoard(s)
			assert.Error(t, err)
		})
	}
}
