// Package match holds the bookkeeping that outlives a single move: the action
// log, the doubling cube, game results, and the match score with the Crawford
// rule. It also reads and writes Jellyfish MAT transcripts.
package match

import (
	"fmt"
	"time"

	"github.com/yourusername/bgrules/pkg/rules"
)

// ActionKind tags an action log entry.
type ActionKind string

const (
	GameStart      ActionKind = "game_start"
	DiceRoll       ActionKind = "dice_roll"
	PieceMove      ActionKind = "piece_move"
	TurnEnd        ActionKind = "turn_end"
	DoubleProposed ActionKind = "double_proposed"
	DoubleAccepted ActionKind = "double_accepted"
	DoubleDeclined ActionKind = "double_declined"
)

// Action is one immutable log entry. Which fields are set depends on Kind:
//
//	GameStart       Player (first to move), Dice (opening roll)
//	DiceRoll        Player, Dice
//	PieceMove       Player, Move, Hit
//	TurnEnd         Player
//	DoubleProposed  Player (proposer), Value (cube value offered)
//	DoubleAccepted  Player (taker), Value (new cube value)
//	DoubleDeclined  Player (decliner), Value (cube value the game ends at)
type Action struct {
	Kind   ActionKind   `json:"kind"`
	Player rules.Player `json:"player"`
	Turn   int          `json:"turn"`
	Dice   [2]int       `json:"dice,omitempty"`
	Move   *rules.Move  `json:"move,omitempty"`
	Hit    bool         `json:"hit,omitempty"`
	Value  int          `json:"value,omitempty"`
}

// StartAction records the opening roll.
func StartAction(first rules.Player, d1, d2 int) Action {
	return Action{Kind: GameStart, Player: first, Turn: 1, Dice: [2]int{d1, d2}}
}

// RollAction records a roll at the start of a turn.
func RollAction(player rules.Player, turn, d1, d2 int) Action {
	return Action{Kind: DiceRoll, Player: player, Turn: turn, Dice: [2]int{d1, d2}}
}

// MoveAction records one checker move.
func MoveAction(player rules.Player, turn int, m rules.Move, hit bool) Action {
	return Action{Kind: PieceMove, Player: player, Turn: turn, Move: &m, Hit: hit}
}

// EndAction records the end of a turn.
func EndAction(player rules.Player, turn int) Action {
	return Action{Kind: TurnEnd, Player: player, Turn: turn}
}

// CubeAction records a doubling event.
func CubeAction(kind ActionKind, player rules.Player, turn, value int) Action {
	return Action{Kind: kind, Player: player, Turn: turn, Value: value}
}

// Result is the outcome of a finished game. It never changes once created.
type Result struct {
	Winner      rules.Player      `json:"winner"`
	VictoryType rules.VictoryType `json:"victoryType"`
	CubeValue   int               `json:"cubeValueAtFinish"`
	Points      int               `json:"points"`
	// Declined is set when the game ended on a refused double.
	Declined bool `json:"declined,omitempty"`
}

// NewResult scores a game that ended by bearing off.
func NewResult(winner rules.Player, victory rules.VictoryType, cube int) Result {
	return Result{
		Winner:      winner,
		VictoryType: victory,
		CubeValue:   cube,
		Points:      victory.Multiplier() * cube,
	}
}

// DeclineResult scores a game conceded by refusing a double. The proposer
// wins a single game at the cube value before the offer.
func DeclineResult(proposer rules.Player, cube int) Result {
	r := NewResult(proposer, rules.Single, cube)
	r.Declined = true
	return r
}

func (r Result) String() string {
	if r.Declined {
		return fmt.Sprintf("%s wins %d point(s), double declined", r.Winner, r.Points)
	}
	return fmt.Sprintf("%s wins a %s, %d point(s)", r.Winner, r.VictoryType, r.Points)
}

// GameRecord is one game of a transcript.
type GameRecord struct {
	Number   int      `json:"number"`
	Score    [2]int   `json:"score"` // Score at the start of the game, White first
	Crawford bool     `json:"crawford"`
	Actions  []Action `json:"actions"`
	Result   *Result  `json:"result,omitempty"`
}

// Transcript is a complete match (or a string of money games) for export.
type Transcript struct {
	Players     [2]string // White, Black
	MatchLength int       // 0 = money play
	Date        string    // YYYY-MM-DD
	Event       string
	Place       string
	Games       []GameRecord
}

// NewTranscript creates an empty transcript dated today.
func NewTranscript(white, black string, length int) *Transcript {
	return &Transcript{
		Players:     [2]string{white, black},
		MatchLength: length,
		Date:        time.Now().Format("2006-01-02"),
		Games:       make([]GameRecord, 0),
	}
}
