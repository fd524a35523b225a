package rules

import "fmt"

// VictoryType is how decisively a game was won.
type VictoryType int

const (
	Single VictoryType = iota + 1
	Gammon
	Backgammon
)

// Multiplier is the point multiplier for the victory type.
func (v VictoryType) Multiplier() int {
	switch v {
	case Gammon:
		return 2
	case Backgammon:
		return 3
	default:
		return 1
	}
}

func (v VictoryType) String() string {
	switch v {
	case Single:
		return "single"
	case Gammon:
		return "gammon"
	case Backgammon:
		return "backgammon"
	}
	return "unknown"
}

// MarshalText encodes the victory type by name.
func (v VictoryType) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// UnmarshalText decodes a victory type name.
func (v *VictoryType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "single":
		*v = Single
	case "gammon":
		*v = Gammon
	case "backgammon":
		*v = Backgammon
	default:
		return fmt.Errorf("unknown victory type %q", text)
	}
	return nil
}

// Winner returns the player who has borne off all checkers, or NoPlayer.
func Winner(p Position) Player {
	for _, player := range []Player{White, Black} {
		if p.BorneOff[player] == NumCheckers {
			return player
		}
	}
	return NoPlayer
}

// Classify scores a finished game from the loser's progress:
// single if the loser has borne off at least one checker, backgammon if the
// loser still has a checker on the bar or in the winner's home board,
// gammon otherwise.
func Classify(p Position, winner Player) VictoryType {
	loser := winner.Opponent()
	if p.BorneOff[loser] > 0 {
		return Single
	}
	if p.Bar[loser] > 0 {
		return Backgammon
	}
	lo, hi := homeBoard(winner)
	for pt := lo; pt <= hi; pt++ {
		if p.Count(loser, pt) > 0 {
			return Backgammon
		}
	}
	return Gammon
}
