// Package rules implements the laws of backgammon: which single checker
// moves are legal, how a move changes the board, which dice a player is
// obliged to use, and how a finished game is scored.
//
// Every function here is pure. Positions are values; applying a move returns
// a new Position and never touches the argument.
package rules

import (
	"fmt"

	"github.com/yourusername/bgrules/internal/positionid"
)

const (
	// NumPoints is the number of points (slots) on the board.
	NumPoints = 24
	// NumCheckers is the number of checkers each player owns.
	NumCheckers = 15
	// HomePoints is the size of each player's home board.
	HomePoints = 6
)

// Player identifies a side. White moves from point 24 down to point 1 and
// bears off below 1; Black moves from 1 up to 24 and bears off above 24.
type Player int8

const (
	NoPlayer Player = -1
	White    Player = 0
	Black    Player = 1
)

// Opponent returns the other player.
func (p Player) Opponent() Player {
	return 1 - p
}

// sign is the sign of p's checker counts in Position.Points.
func (p Player) sign() int {
	if p == White {
		return 1
	}
	return -1
}

// direction is the change in point number for one pip of travel.
func (p Player) direction() int {
	if p == White {
		return -1
	}
	return 1
}

// Valid reports whether p is White or Black.
func (p Player) Valid() bool {
	return p == White || p == Black
}

func (p Player) String() string {
	switch p {
	case White:
		return "white"
	case Black:
		return "black"
	default:
		return "none"
	}
}

// MarshalText encodes the player as "white", "black" or "none".
func (p Player) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes "white", "black", "none" or "centered".
func (p *Player) UnmarshalText(text []byte) error {
	switch string(text) {
	case "white":
		*p = White
	case "black":
		*p = Black
	case "none", "centered", "":
		*p = NoPlayer
	default:
		return fmt.Errorf("unknown player %q", text)
	}
	return nil
}

// Position is a board: 24 signed point counts (positive White, negative
// Black) plus per-player bar and borne-off counts.
type Position struct {
	Points   [NumPoints]int `json:"points"`   // Points[i] holds point i+1
	Bar      [2]int         `json:"bar"`      // Checkers waiting to re-enter
	BorneOff [2]int         `json:"borneOff"` // Checkers removed from play
}

// StartingPosition returns the standard opening setup.
func StartingPosition() Position {
	var pos Position
	// White (from its own perspective)
	pos.Points[24-1] = 2 // 24-point
	pos.Points[13-1] = 5 // 13-point
	pos.Points[8-1] = 3  // 8-point
	pos.Points[6-1] = 5  // 6-point

	// Black mirrors White
	pos.Points[1-1] = -2
	pos.Points[12-1] = -5
	pos.Points[17-1] = -3
	pos.Points[19-1] = -5

	return pos
}

// Count returns the number of player's checkers on point (1-24).
func (p Position) Count(player Player, point int) int {
	n := p.Points[point-1] * player.sign()
	if n < 0 {
		return 0
	}
	return n
}

// OnBoard returns the number of player's checkers on points 1-24.
func (p Position) OnBoard(player Player) int {
	total := 0
	for pt := 1; pt <= NumPoints; pt++ {
		total += p.Count(player, pt)
	}
	return total
}

// Total returns bar + borne off + on board for player. Always 15 in a valid
// position.
func (p Position) Total(player Player) int {
	return p.Bar[player] + p.BorneOff[player] + p.OnBoard(player)
}

// Validate checks checker conservation and non-negative counters.
func (p Position) Validate() error {
	for _, player := range []Player{White, Black} {
		if p.Bar[player] < 0 || p.BorneOff[player] < 0 {
			return fmt.Errorf("%s has negative bar or borne-off count", player)
		}
		if total := p.Total(player); total != NumCheckers {
			return fmt.Errorf("%s has %d checkers, want %d", player, total, NumCheckers)
		}
	}
	return nil
}

// Distance returns how far point is from player's bear-off edge: the pip
// count of a single checker on it.
func Distance(player Player, point int) int {
	if player == White {
		return point
	}
	return NumPoints + 1 - point
}

// PipCount returns the total pips player needs to bear off every checker.
func PipCount(p Position, player Player) int {
	pips := p.Bar[player] * (NumPoints + 1)
	for pt := 1; pt <= NumPoints; pt++ {
		pips += p.Count(player, pt) * Distance(player, pt)
	}
	return pips
}

// board converts the position to gnubg layout with onRoll as side 1.
func (p Position) board(onRoll Player) positionid.Board {
	var b positionid.Board
	sides := [2]Player{onRoll.Opponent(), onRoll}
	for side, player := range sides {
		for pt := 1; pt <= NumPoints; pt++ {
			b[side][Distance(player, pt)-1] = uint8(p.Count(player, pt))
		}
		b[side][24] = uint8(p.Bar[player])
	}
	return b
}

// Key returns a comparable key identifying the checker layout.
func (p Position) Key() positionid.Key {
	return positionid.MakeKey(p.board(White))
}

// PositionID returns the GNU Backgammon position ID with onRoll as the
// player to move.
func (p Position) PositionID(onRoll Player) string {
	return positionid.Encode(p.board(onRoll))
}

// FromPositionID decodes a GNU Backgammon position ID, treating onRoll as the
// player to move. Checkers missing from the board are counted as borne off.
func FromPositionID(id string, onRoll Player) (Position, error) {
	b, err := positionid.Decode(id)
	if err != nil {
		return Position{}, err
	}

	var pos Position
	sides := [2]Player{onRoll.Opponent(), onRoll}
	for side, player := range sides {
		for i := 0; i < NumPoints; i++ {
			n := int(b[side][i])
			if n == 0 {
				continue
			}
			pt := i + 1
			if player == Black {
				pt = NumPoints - i
			}
			pos.Points[pt-1] += n * player.sign()
		}
		pos.Bar[player] = int(b[side][24])
		pos.BorneOff[player] = NumCheckers - pos.Bar[player] - pos.OnBoard(player)
	}
	return pos, nil
}
