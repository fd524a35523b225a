package rules

import (
	"github.com/yourusername/bgrules/internal/positionid"
)

// MaxDicePerTurn bounds the sequence search: doubles grant four moves.
const MaxDicePerTurn = 4

// Obligation describes what the remaining dice force the player to do.
type Obligation struct {
	// MaxMovesUsable is the length of the longest legal sequence.
	MaxMovesUsable int `json:"maxMovesUsable"`
	// RequiredDie is the single die the player must use, or 0 when no die
	// is pinned down.
	RequiredDie int `json:"requiredDie,omitempty"`
	// Sequences holds the maximal-length sequences, one per distinct
	// resulting position.
	Sequences [][]Move `json:"sequences"`
	// FirstMoves holds every move that starts some maximal-length sequence,
	// narrowed to RequiredDie when one is set.
	FirstMoves []Move `json:"firstMoves"`
}

// Allows reports whether m may be played now.
func (o Obligation) Allows(m Move) bool {
	for _, f := range o.FirstMoves {
		if f == m {
			return true
		}
	}
	return false
}

// resolver walks every move sequence depth first. Positions are values, so
// each ply works on its own copy.
type resolver struct {
	player    Player
	best      int
	path      []Move
	sequences [][]Move
	seen      map[positionid.Key]bool
	first     []Move
	firstSeen map[Move]bool
}

func (r *resolver) reset(n int) {
	r.best = n
	r.sequences = r.sequences[:0]
	r.first = r.first[:0]
	r.seen = make(map[positionid.Key]bool)
	r.firstSeen = make(map[Move]bool)
}

// record saves the current path as a terminal sequence ending in pos.
func (r *resolver) record(pos Position) {
	n := len(r.path)
	if n < r.best || n == 0 {
		return
	}
	if n > r.best {
		r.reset(n)
	}

	if f := r.path[0]; !r.firstSeen[f] {
		r.firstSeen[f] = true
		r.first = append(r.first, f)
	}

	key := pos.Key()
	if r.seen[key] {
		return
	}
	r.seen[key] = true
	seq := make([]Move, n)
	copy(seq, r.path)
	r.sequences = append(r.sequences, seq)
}

func (r *resolver) search(pos Position, dice []int) {
	var moves []Move
	if len(r.path) < MaxDicePerTurn {
		moves = singleMoves(pos, r.player, dice)
	}
	if len(moves) == 0 {
		r.record(pos)
		return
	}

	for _, m := range moves {
		next, _ := ApplyMove(pos, r.player, m)
		r.path = append(r.path, m)
		r.search(next, RemoveDie(dice, m.Die))
		r.path = r.path[:len(r.path)-1]
	}
}

// RequiredMoves searches every legal sequence for the remaining dice and
// derives the player's obligation:
//
//   - as many dice as possible must be used (MaxMovesUsable);
//   - when at most one die can be used out of two different values, the
//     higher one is required if it can be played at all, otherwise the lower.
//     A roll that cannot be played at all still names the lower die.
//
// With two or more usable moves no die is pinned; callers re-derive the
// obligation after every move.
func RequiredMoves(p Position, player Player, remaining []int) Obligation {
	r := &resolver{player: player}
	r.reset(0)
	r.search(p, remaining)

	ob := Obligation{
		MaxMovesUsable: r.best,
		Sequences:      r.sequences,
		FirstMoves:     r.first,
	}
	if ob.Sequences == nil {
		ob.Sequences = [][]Move{}
	}
	if ob.FirstMoves == nil {
		ob.FirstMoves = []Move{}
	}

	dice := UniqueDice(remaining)
	if ob.MaxMovesUsable <= 1 && len(dice) == 2 {
		higher, lower := dice[0], dice[1]
		ob.RequiredDie = lower
		for _, m := range ob.FirstMoves {
			if m.Die == higher {
				ob.RequiredDie = higher
				break
			}
		}
		ob.FirstMoves = filterByDie(ob.FirstMoves, ob.RequiredDie)
		ob.Sequences = make([][]Move, 0, len(ob.FirstMoves))
		for _, m := range ob.FirstMoves {
			ob.Sequences = append(ob.Sequences, []Move{m})
		}
	}
	return ob
}

func filterByDie(moves []Move, die int) []Move {
	out := make([]Move, 0, len(moves))
	for _, m := range moves {
		if m.Die == die {
			out = append(out, m)
		}
	}
	return out
}

// LegalMoves returns ValidMoves narrowed to the moves the obligation allows.
func LegalMoves(p Position, player Player, remaining []int) []SourceMoves {
	ob := RequiredMoves(p, player, remaining)
	all := ValidMoves(p, player, remaining)
	out := make([]SourceMoves, 0, len(all))
	for _, s := range all {
		var dests []Destination
		for _, d := range s.Destinations {
			if ob.Allows(Move{From: s.From, To: d.To, Die: d.Die}) {
				dests = append(dests, d)
			}
		}
		if len(dests) > 0 {
			out = append(out, SourceMoves{From: s.From, Destinations: dests})
		}
	}
	return out
}
