package match

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/bgrules/pkg/rules"
)

func TestNewMatch(t *testing.T) {
	m, err := New(7)
	require.NoError(t, err)
	s := m.State()
	assert.Equal(t, 7, s.Target)
	assert.Equal(t, 1, s.GameNumber)
	assert.Equal(t, rules.NoPlayer, s.Winner)
	assert.True(t, m.DoublingAllowed())

	_, err = New(0)
	assert.Error(t, err)
}

func TestCrawfordActivation(t *testing.T) {
	m, err := New(5)
	require.NoError(t, err)

	// White wins a gammon with the cube on 2: 0-0 becomes 4-0.
	require.NoError(t, m.Record(NewResult(rules.White, rules.Gammon, 2)))
	s := m.State()
	assert.Equal(t, [2]int{4, 0}, s.Score)
	assert.True(t, s.IsCrawford)
	assert.False(t, s.CrawfordUsed)
	assert.False(t, m.DoublingAllowed())
	assert.Equal(t, 2, s.GameNumber)

	// Black wins the Crawford game.
	require.NoError(t, m.Record(NewResult(rules.Black, rules.Single, 1)))
	s = m.State()
	assert.False(t, s.IsCrawford)
	assert.True(t, s.CrawfordUsed)
	assert.True(t, m.DoublingAllowed())

	// Black climbs to 4 as well; Crawford does not fire again.
	require.NoError(t, m.Record(NewResult(rules.Black, rules.Single, 2)))
	require.NoError(t, m.Record(NewResult(rules.Black, rules.Single, 1)))
	s = m.State()
	assert.Equal(t, [2]int{4, 4}, s.Score)
	assert.False(t, s.IsCrawford)
	assert.False(t, m.Completed())

	require.NoError(t, m.Record(NewResult(rules.White, rules.Single, 1)))
	assert.True(t, m.Completed())
	assert.Equal(t, rules.White, m.State().Winner)
	assert.Len(t, m.State().Results, 5)

	assert.ErrorIs(t, m.Record(NewResult(rules.Black, rules.Single, 1)), ErrMatchOver)
}

func TestMatchOvershoot(t *testing.T) {
	m, err := New(3)
	require.NoError(t, err)
	require.NoError(t, m.Record(NewResult(rules.Black, rules.Backgammon, 2)))
	assert.True(t, m.Completed())
	assert.Equal(t, [2]int{0, 6}, m.State().Score)
	assert.False(t, m.State().IsCrawford)
}

func TestRetract(t *testing.T) {
	m, err := New(5)
	require.NoError(t, err)
	assert.ErrorIs(t, m.Retract(), ErrNoResult)

	before := m.State()
	require.NoError(t, m.Record(NewResult(rules.White, rules.Gammon, 2)))
	require.True(t, m.State().IsCrawford)

	require.NoError(t, m.Retract())
	assert.Equal(t, before, m.State())

	// Recording again after a retract does not resurrect the old result.
	require.NoError(t, m.Record(NewResult(rules.Black, rules.Single, 1)))
	assert.Equal(t, []Result{NewResult(rules.Black, rules.Single, 1)}, m.State().Results)
}

func TestResults(t *testing.T) {
	r := NewResult(rules.White, rules.Backgammon, 4)
	assert.Equal(t, 12, r.Points)

	d := DeclineResult(rules.Black, 2)
	assert.Equal(t, 2, d.Points)
	assert.Equal(t, rules.Single, d.VictoryType)
	assert.True(t, d.Declined)
	assert.Contains(t, d.String(), "declined")
}

func TestCube(t *testing.T) {
	c := NewCube()
	assert.True(t, c.Centered())
	assert.True(t, c.MayDouble(rules.White))
	assert.True(t, c.MayDouble(rules.Black))

	c = c.Take(rules.Black)
	assert.Equal(t, Cube{Value: 2, Owner: rules.Black}, c)
	assert.False(t, c.MayDouble(rules.White))
	assert.True(t, c.MayDouble(rules.Black))

	assert.False(t, Cube{Value: MaxCubeValue, Owner: rules.White}.MayDouble(rules.White))
}

// sampleGame is a short game: White opens 31, Black replies 52 with a hit,
// White doubles and Black passes.
func sampleGame() GameRecord {
	mv := func(from, to rules.Point, die int) rules.Move {
		return rules.Move{From: from, To: to, Die: die}
	}
	return GameRecord{
		Number: 1,
		Actions: []Action{
			StartAction(rules.White, 3, 1),
			MoveAction(rules.White, 1, mv(8, 5, 3), false),
			MoveAction(rules.White, 1, mv(6, 5, 1), false),
			EndAction(rules.White, 1),
			RollAction(rules.Black, 2, 5, 2),
			MoveAction(rules.Black, 2, mv(1, 3, 2), false),
			MoveAction(rules.Black, 2, mv(12, 17, 5), false),
			EndAction(rules.Black, 2),
			RollAction(rules.White, 3, 6, 4),
			MoveAction(rules.White, 3, mv(24, 18, 6), false),
			MoveAction(rules.White, 3, mv(24, 20, 4), false),
			EndAction(rules.White, 3),
			RollAction(rules.Black, 4, 6, 6),
			MoveAction(rules.Black, 4, mv(3, 9, 6), false),
			MoveAction(rules.Black, 4, mv(12, 18, 6), true),
			MoveAction(rules.Black, 4, mv(12, 18, 6), false),
			MoveAction(rules.Black, 4, mv(17, 23, 6), false),
			EndAction(rules.Black, 4),
			CubeAction(DoubleProposed, rules.White, 5, 2),
			CubeAction(DoubleDeclined, rules.Black, 5, 1),
		},
		Result: &Result{Winner: rules.White, VictoryType: rules.Single, CubeValue: 1, Points: 1, Declined: true},
	}
}

func TestSummarize(t *testing.T) {
	lines := Summarize(sampleGame().Actions)
	assert.Equal(t, []string{
		"white 31: 8/5 6/5",
		"black 52: 24/22 13/8",
		"white 64: 24/18 24/20",
		"black 66: 22/16 13/7* 13/7 8/2",
		"white doubles to 2",
		"black passes",
	}, lines)
}

func TestSummarizeNoPlay(t *testing.T) {
	lines := Summarize([]Action{
		RollAction(rules.Black, 7, 6, 6),
		EndAction(rules.Black, 7),
	})
	assert.Equal(t, []string{"black 66:"}, lines)
}

func TestExportImportMAT(t *testing.T) {
	tr := NewTranscript("Alice", "Bob", 5)
	tr.Event = "Club night"
	tr.Games = append(tr.Games, sampleGame())

	var buf bytes.Buffer
	require.NoError(t, ExportMAT(&buf, tr))
	out := buf.String()

	assert.Contains(t, out, `[Player 1 "Alice"]`)
	assert.Contains(t, out, "5 point match")
	assert.Contains(t, out, "Game 1")
	assert.Contains(t, out, "31: 8/5 6/5")
	assert.Contains(t, out, "Doubles => 2")
	assert.Contains(t, out, "Wins 1 point\n")

	back, err := ImportMAT(strings.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, tr.Players, back.Players)
	assert.Equal(t, 5, back.MatchLength)
	assert.Equal(t, "Club night", back.Event)
	require.Len(t, back.Games, 1)

	want := sampleGame()
	assert.Equal(t, want.Actions, back.Games[0].Actions)
	require.NotNil(t, back.Games[0].Result)
	assert.Equal(t, *want.Result, *back.Games[0].Result)
}

func TestImportBlackOpens(t *testing.T) {
	mat := ` 1 point match

 Game 1
 Alice : 0                          Bob : 0
  1)                                  42: 8/4 6/4
  2) 66: bar/19 24/18(2) 13/7                 
`
	tr, err := ImportMAT(strings.NewReader(mat))
	require.NoError(t, err)
	require.Len(t, tr.Games, 1)
	acts := tr.Games[0].Actions

	require.Equal(t, GameStart, acts[0].Kind)
	assert.Equal(t, rules.Black, acts[0].Player)
	assert.Equal(t, &rules.Move{From: 17, To: 21, Die: 4}, acts[1].Move)
	assert.Equal(t, &rules.Move{From: 19, To: 21, Die: 2}, acts[2].Move)
	assert.Equal(t, TurnEnd, acts[3].Kind)

	assert.Equal(t, DiceRoll, acts[4].Kind)
	assert.Equal(t, rules.White, acts[4].Player)
	assert.Equal(t, &rules.Move{From: rules.Bar, To: 19, Die: 6}, acts[5].Move)
	assert.Equal(t, &rules.Move{From: 24, To: 18, Die: 6}, acts[6].Move)
	assert.Equal(t, &rules.Move{From: 24, To: 18, Die: 6}, acts[7].Move)
	assert.Equal(t, &rules.Move{From: 13, To: 7, Die: 6}, acts[8].Move)
}

func TestParseMoves(t *testing.T) {
	tests := []struct {
		name     string
		notation string
		player   rules.Player
		dice     []int
		want     []PlayedMove
		wantErr  bool
	}{
		{
			name:     "chain",
			notation: "13/7/2",
			player:   rules.White,
			dice:     []int{6, 5},
			want: []PlayedMove{
				{Move: rules.Move{From: 13, To: 7, Die: 6}},
				{Move: rules.Move{From: 7, To: 2, Die: 5}},
			},
		},
		{
			name:     "bear off with a larger die",
			notation: "3/off 2/off",
			player:   rules.Black,
			dice:     []int{6, 2},
			want: []PlayedMove{
				{Move: rules.Move{From: 22, To: rules.Off, Die: 6}},
				{Move: rules.Move{From: 23, To: rules.Off, Die: 2}},
			},
		},
		{
			name:     "hit",
			notation: "bar/22*",
			player:   rules.White,
			dice:     []int{3, 1},
			want:     []PlayedMove{{Move: rules.Move{From: rules.Bar, To: 22, Die: 3}, Hit: true}},
		},
		{name: "wrong die", notation: "13/9", player: rules.White, dice: []int{3, 1}, wantErr: true},
		{name: "garbage", notation: "13-9", player: rules.White, dice: []int{3, 1}, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseMoves(tc.notation, tc.player, tc.dice)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}
