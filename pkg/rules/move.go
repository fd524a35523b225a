package rules

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Point is a board location in absolute numbering: 1-24 are points, Bar
// and Off are player-independent sentinels for the bar and the bear-off tray.
type Point int

const (
	Off Point = 0
	Bar Point = 25
)

// IsBoard reports whether pt is one of the 24 points.
func (pt Point) IsBoard() bool {
	return pt >= 1 && pt <= NumPoints
}

func (pt Point) String() string {
	switch pt {
	case Bar:
		return "bar"
	case Off:
		return "off"
	}
	return strconv.Itoa(int(pt))
}

// MarshalText encodes the point as "bar", "off" or its number.
func (pt Point) MarshalText() ([]byte, error) {
	return []byte(pt.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (pt *Point) UnmarshalText(text []byte) error {
	p, err := ParsePoint(string(text))
	if err != nil {
		return err
	}
	*pt = p
	return nil
}

// UnmarshalJSON accepts a point as a JSON string or a bare number.
func (pt *Point) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		s = string(data)
	}
	return pt.UnmarshalText([]byte(s))
}

// ParsePoint parses "bar", "off" or a point number 1-24.
func ParsePoint(s string) (Point, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bar":
		return Bar, nil
	case "off":
		return Off, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || !Point(n).IsBoard() {
		return 0, fmt.Errorf("point %q is not 1-24, bar or off", s)
	}
	return Point(n), nil
}

// Move relocates one checker using one die.
type Move struct {
	From Point `json:"from"`
	To   Point `json:"to"`
	Die  int   `json:"die"`
}

func (m Move) String() string {
	return fmt.Sprintf("%s/%s", m.From, m.To)
}

// Destination is one reachable landing spot for a checker.
type Destination struct {
	To  Point `json:"to"`
	Die int   `json:"die"`
	Hit bool  `json:"hit"`
}

// SourceMoves lists every destination reachable from one source.
type SourceMoves struct {
	From         Point         `json:"from"`
	Destinations []Destination `json:"destinations"`
}

// Moves flattens the entry into single moves.
func (s SourceMoves) Moves() []Move {
	moves := make([]Move, 0, len(s.Destinations))
	for _, d := range s.Destinations {
		moves = append(moves, Move{From: s.From, To: d.To, Die: d.Die})
	}
	return moves
}

// origin is the coordinate a checker travels from: its point, or the
// virtual point just outside player's entry side when on the bar.
func origin(player Player, from Point) int {
	if from != Bar {
		return int(from)
	}
	if player == White {
		return NumPoints + 1
	}
	return 0
}

// homeBoard returns player's home points in increasing order.
func homeBoard(player Player) (lo, hi int) {
	if player == White {
		return 1, HomePoints
	}
	return NumPoints - HomePoints + 1, NumPoints
}

// blocked reports whether point is held by two or more of player's opponents.
func blocked(p Position, player Player, point int) bool {
	return p.Count(player.Opponent(), point) >= 2
}

// CanBearOff reports whether every one of player's checkers is in the home
// board (none on the bar).
func CanBearOff(p Position, player Player) bool {
	if p.Bar[player] > 0 {
		return false
	}
	lo, hi := homeBoard(player)
	home := 0
	for pt := lo; pt <= hi; pt++ {
		home += p.Count(player, pt)
	}
	return home+p.BorneOff[player] == NumCheckers
}

// outermost returns the greatest distance at which player has a checker.
func outermost(p Position, player Player) int {
	max := 0
	for pt := 1; pt <= NumPoints; pt++ {
		if p.Count(player, pt) > 0 {
			if d := Distance(player, pt); d > max {
				max = d
			}
		}
	}
	return max
}

// destination checks a single move of one checker from `from` using die and
// returns where it lands.
func destination(p Position, player Player, from Point, die int) (Destination, bool) {
	if die < 1 || die > 6 {
		return Destination{}, false
	}
	if from == Bar {
		if p.Bar[player] == 0 {
			return Destination{}, false
		}
	} else {
		if !from.IsBoard() || p.Count(player, int(from)) == 0 {
			return Destination{}, false
		}
		if p.Bar[player] > 0 {
			return Destination{}, false
		}
	}

	to := origin(player, from) + player.direction()*die
	if to >= 1 && to <= NumPoints {
		if blocked(p, player, to) {
			return Destination{}, false
		}
		return Destination{
			To:  Point(to),
			Die: die,
			Hit: p.Count(player.Opponent(), to) == 1,
		}, true
	}

	// Past the edge: bearing off
	if from == Bar || !CanBearOff(p, player) {
		return Destination{}, false
	}
	dist := Distance(player, int(from))
	if die == dist || (die > dist && outermost(p, player) == dist) {
		return Destination{To: Off, Die: die}, true
	}
	return Destination{}, false
}

// UniqueDice returns the distinct values of dice, highest first.
func UniqueDice(dice []int) []int {
	seen := [7]bool{}
	var out []int
	for _, d := range dice {
		if d >= 1 && d <= 6 && !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// sources lists the locations player may move from, farthest first. A
// player with checkers on the bar may only move from the bar.
func sources(p Position, player Player) []Point {
	if p.Bar[player] > 0 {
		return []Point{Bar}
	}
	var out []Point
	for d := NumPoints; d >= 1; d-- {
		pt := d
		if player == Black {
			pt = NumPoints + 1 - d
		}
		if p.Count(player, pt) > 0 {
			out = append(out, Point(pt))
		}
	}
	return out
}

// ValidMoves enumerates, per source, every destination reachable with one of
// the remaining dice. Duplicate die values produce one entry. The result is
// never nil.
func ValidMoves(p Position, player Player, remaining []int) []SourceMoves {
	dice := UniqueDice(remaining)
	out := make([]SourceMoves, 0)
	if len(dice) == 0 {
		return out
	}
	for _, from := range sources(p, player) {
		var dests []Destination
		for _, die := range dice {
			if d, ok := destination(p, player, from, die); ok {
				dests = append(dests, d)
			}
		}
		if len(dests) > 0 {
			out = append(out, SourceMoves{From: from, Destinations: dests})
		}
	}
	return out
}

// singleMoves is ValidMoves flattened.
func singleMoves(p Position, player Player, remaining []int) []Move {
	var moves []Move
	for _, s := range ValidMoves(p, player, remaining) {
		moves = append(moves, s.Moves()...)
	}
	return moves
}

// IsValidMove reports whether m is a legal single move with one of the
// remaining dice, and whether it hits.
func IsValidMove(p Position, player Player, remaining []int, m Move) (hit bool, ok bool) {
	if !containsDie(remaining, m.Die) {
		return false, false
	}
	d, ok := destination(p, player, m.From, m.Die)
	if !ok || d.To != m.To {
		return false, false
	}
	return d.Hit, true
}

// ApplyMove executes m for player and returns the new position and whether
// an opposing blot was hit. It does not check legality.
func ApplyMove(p Position, player Player, m Move) (Position, bool) {
	next := p
	sign := player.sign()
	opp := player.Opponent()

	if m.From == Bar {
		next.Bar[player]--
	} else {
		next.Points[m.From-1] -= sign
	}

	if m.To == Off {
		next.BorneOff[player]++
		return next, false
	}

	hit := false
	if next.Count(opp, int(m.To)) == 1 {
		next.Points[m.To-1] = 0
		next.Bar[opp]++
		hit = true
	}
	next.Points[m.To-1] += sign
	return next, hit
}

// UndoMove reverses ApplyMove. hit must be the value ApplyMove returned.
func UndoMove(p Position, player Player, m Move, hit bool) Position {
	prev := p
	sign := player.sign()
	opp := player.Opponent()

	if m.To == Off {
		prev.BorneOff[player]--
	} else {
		prev.Points[m.To-1] -= sign
		if hit {
			prev.Points[m.To-1] += opp.sign()
			prev.Bar[opp]--
		}
	}

	if m.From == Bar {
		prev.Bar[player]++
	} else {
		prev.Points[m.From-1] += sign
	}
	return prev
}

// FilterMovesByDie keeps only destinations reached with die.
func FilterMovesByDie(moves []SourceMoves, die int) []SourceMoves {
	out := make([]SourceMoves, 0, len(moves))
	for _, s := range moves {
		var dests []Destination
		for _, d := range s.Destinations {
			if d.Die == die {
				dests = append(dests, d)
			}
		}
		if len(dests) > 0 {
			out = append(out, SourceMoves{From: s.From, Destinations: dests})
		}
	}
	return out
}

// ExpandRoll returns the moves granted by a roll: two dice, or four for
// doubles. Values are ordered highest first.
func ExpandRoll(d1, d2 int) []int {
	if d1 == d2 {
		return []int{d1, d1, d1, d1}
	}
	if d1 < d2 {
		d1, d2 = d2, d1
	}
	return []int{d1, d2}
}

// RemoveDie returns dice without one occurrence of die.
func RemoveDie(dice []int, die int) []int {
	out := make([]int, 0, len(dice))
	removed := false
	for _, d := range dice {
		if d == die && !removed {
			removed = true
			continue
		}
		out = append(out, d)
	}
	return out
}

func containsDie(dice []int, die int) bool {
	for _, d := range dice {
		if d == die {
			return true
		}
	}
	return false
}
