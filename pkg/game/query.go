package game

import (
	"github.com/yourusername/bgrules/pkg/match"
	"github.com/yourusername/bgrules/pkg/rules"
)

// Phase returns the current turn phase.
func (g *Game) Phase() Phase { return g.phase }

// Turn returns the player on turn, or NoPlayer before the game starts.
func (g *Game) Turn() rules.Player { return g.turn }

// Position returns the position of record.
func (g *Game) Position() rules.Position { return g.pos }

// Remaining returns a copy of the dice still to be played this turn.
func (g *Game) Remaining() []int {
	out := make([]int, len(g.remaining))
	copy(out, g.remaining)
	return out
}

// ValidMoves lists every single move the remaining dice allow, before the
// obligation rules narrow them. Empty unless the game is in the moving
// phase.
func (g *Game) ValidMoves() []rules.SourceMoves {
	if g.phase != Moving {
		return []rules.SourceMoves{}
	}
	return rules.ValidMoves(g.pos, g.turn, g.remaining)
}

// LegalMoves lists the moves MakeMove will accept right now.
func (g *Game) LegalMoves() []rules.SourceMoves {
	if g.phase != Moving {
		return []rules.SourceMoves{}
	}
	return rules.LegalMoves(g.pos, g.turn, g.remaining)
}

// RequiredMoves derives the current obligation for the remaining dice.
func (g *Game) RequiredMoves() rules.Obligation {
	if g.phase != Moving {
		return rules.Obligation{Sequences: [][]rules.Move{}, FirstMoves: []rules.Move{}}
	}
	return rules.RequiredMoves(g.pos, g.turn, g.remaining)
}

// FilterMovesByDie narrows moves to destinations reached with die.
func (g *Game) FilterMovesByDie(moves []rules.SourceMoves, die int) []rules.SourceMoves {
	return rules.FilterMovesByDie(moves, die)
}

// CanEndTurn reports whether the player on turn may pass the dice: every
// die is used, or none of the remaining dice has a legal move.
func (g *Game) CanEndTurn() bool {
	if g.phase != Moving {
		return false
	}
	return len(g.remaining) == 0 || len(rules.ValidMoves(g.pos, g.turn, g.remaining)) == 0
}

// CanProposeDouble reports whether the player on turn may double now.
func (g *Game) CanProposeDouble() bool {
	return g.doubleAllowed() == nil
}

// CheckGameOver returns the result once the game has ended.
func (g *Game) CheckGameOver() (match.Result, bool) {
	if g.result == nil {
		return match.Result{}, false
	}
	return *g.result, true
}

// Cube returns the doubling cube.
func (g *Game) Cube() match.Cube { return g.cube }

// Match returns the match score, or nil for a single game.
func (g *Game) Match() *match.State {
	if g.match == nil {
		return nil
	}
	s := g.match.State()
	return &s
}

// Actions returns a copy of the current game's log.
func (g *Game) Actions() []match.Action {
	return append([]match.Action(nil), g.actions...)
}

// Records returns every game played at this table, the current one last.
func (g *Game) Records() []match.GameRecord {
	out := append([]match.GameRecord(nil), g.records...)
	if g.phase != NotStarted {
		out = append(out, g.currentRecord())
	}
	return out
}

// Snapshot is a read-only view of the game for renderers and transports.
type Snapshot struct {
	Phase           Phase          `json:"phase"`
	Turn            rules.Player   `json:"turn"`
	TurnNumber      int            `json:"turnNumber"`
	Position        rules.Position `json:"position"`
	PositionID      string         `json:"positionId"`
	Pips            [2]int         `json:"pips"`
	Dice            [2]int         `json:"dice"`
	Remaining       []int          `json:"remainingMoves"`
	Cube            match.Cube     `json:"cube"`
	DoublingEnabled bool           `json:"doublingEnabled"`
	ProposedBy      rules.Player   `json:"doubleProposedBy"`
	Result          *match.Result  `json:"result,omitempty"`
	Match           *match.State   `json:"match,omitempty"`
	Log             []match.Action `json:"log"`
	Summary         []string       `json:"summary"`
}

// Snapshot captures the current state.
func (g *Game) Snapshot() Snapshot {
	onRoll := g.turn
	if !onRoll.Valid() {
		onRoll = rules.White
	}
	s := Snapshot{
		Phase:           g.phase,
		Turn:            g.turn,
		TurnNumber:      g.turnNumber,
		Position:        g.pos,
		PositionID:      g.pos.PositionID(onRoll),
		Pips:            [2]int{rules.PipCount(g.pos, rules.White), rules.PipCount(g.pos, rules.Black)},
		Dice:            g.roll,
		Remaining:       g.Remaining(),
		Cube:            g.cube,
		DoublingEnabled: g.doubling && !g.crawford,
		ProposedBy:      g.proposedBy,
		Match:           g.Match(),
		Log:             g.Actions(),
		Summary:         match.Summarize(g.actions),
	}
	if g.result != nil {
		r := *g.result
		s.Result = &r
	}
	return s
}

// FIBSBoard describes the table in FIBS board format, written for White.
// names are the White and Black player names.
func (g *Game) FIBSBoard(names [2]string) match.FIBSBoard {
	b := match.FIBSBoard{
		Players:  names,
		Position: g.pos,
		Turn:     rules.NoPlayer,
		Cube:     g.cube.Value,
		Score:    g.startScore,
		You:      rules.White,
	}
	if g.match != nil {
		s := g.match.State()
		b.MatchLength = s.Target
		b.Crawford = s.CrawfordUsed
	}
	switch g.phase {
	case Rolling, DoublingProposed:
		b.Turn = g.turn
	case Moving:
		b.Turn = g.turn
		b.Dice[g.turn] = g.roll
		b.CanMove = g.RequiredMoves().MaxMovesUsable
	}
	if g.doubling && !g.crawford {
		for _, p := range []rules.Player{rules.White, rules.Black} {
			b.MayDouble[p] = g.cube.MayDouble(p)
		}
	}
	b.Doubled = g.phase == DoublingProposed && g.proposedBy == rules.Black
	return b
}
