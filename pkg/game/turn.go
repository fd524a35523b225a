package game

import (
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/bgrules/pkg/dice"
	"github.com/yourusername/bgrules/pkg/match"
	"github.com/yourusername/bgrules/pkg/rules"
)

// RollResult is returned by RollDice.
type RollResult struct {
	Dice       [2]int              `json:"diceRoll"`
	Remaining  []int               `json:"remainingMoves"`
	ValidMoves []rules.SourceMoves `json:"validMoves"`
	// TurnForfeited is set when no die can be played; the caller may end
	// the turn straight away.
	TurnForfeited bool `json:"turnForfeited"`
}

// RollDice rolls for the player on turn.
func (g *Game) RollDice() (RollResult, error) {
	if g.phase == NotStarted {
		return RollResult{}, ErrNoGame
	}
	if g.phase != Rolling {
		return RollResult{}, wrongPhase("roll", g.phase)
	}

	d1, d2 := dice.Pair(g.dice)
	g.roll = [2]int{d1, d2}
	g.remaining = rules.ExpandRoll(d1, d2)
	g.moves = nil
	g.record(match.RollAction(g.turn, g.turnNumber, d1, d2))
	g.setPhase(Moving)

	valid := g.ValidMoves()
	forfeit := len(valid) == 0
	g.logger.Debug("rolled",
		zap.Stringer("player", g.turn),
		zap.Ints("dice", g.roll[:]),
		zap.Bool("forfeit", forfeit))

	return RollResult{
		Dice:          g.roll,
		Remaining:     g.Remaining(),
		ValidMoves:    valid,
		TurnForfeited: forfeit,
	}, nil
}

// MoveResult is returned by MakeMove.
type MoveResult struct {
	Move       rules.Move          `json:"move"`
	Hit        bool                `json:"hit"`
	GameOver   bool                `json:"gameOver"`
	Result     *match.Result       `json:"result,omitempty"`
	Remaining  []int               `json:"remainingMoves"`
	ValidMoves []rules.SourceMoves `json:"validMoves"`
}

// MakeMove plays one checker for the player on turn. The move must use a
// remaining die, be legal on the board, and start a sequence that uses as
// many dice as possible; when only one die can be played it must be the one
// the rules require.
func (g *Game) MakeMove(m rules.Move) (MoveResult, error) {
	if g.phase == NotStarted {
		return MoveResult{}, ErrNoGame
	}
	if g.phase != Moving {
		return MoveResult{}, wrongPhase("move", g.phase)
	}
	if err := g.checkInput(m); err != nil {
		return MoveResult{}, err
	}

	if _, ok := rules.IsValidMove(g.pos, g.turn, g.remaining, m); !ok {
		return MoveResult{}, newError(KindInvalidMove, "%s with %d is not legal; legal moves: %s",
			m, m.Die, describe(g.LegalMoves()))
	}
	ob := rules.RequiredMoves(g.pos, g.turn, g.remaining)
	if ob.RequiredDie != 0 && m.Die != ob.RequiredDie {
		return MoveResult{}, newError(KindMustPlayRequired, "the %d must be played; legal moves: %s",
			ob.RequiredDie, describeMoves(ob.FirstMoves))
	}
	if !ob.Allows(m) {
		return MoveResult{}, newError(KindInvalidMove, "%s leaves dice unplayed that could be used; legal moves: %s",
			m, describeMoves(ob.FirstMoves))
	}

	next, hit := rules.ApplyMove(g.pos, g.turn, m)
	g.pos = next
	g.check("move")
	g.remaining = rules.RemoveDie(g.remaining, m.Die)
	g.moves = append(g.moves, played{move: m, hit: hit})
	g.record(match.MoveAction(g.turn, g.turnNumber, m, hit))

	g.logger.Debug("moved",
		zap.Stringer("player", g.turn),
		zap.Stringer("move", m),
		zap.Int("die", m.Die),
		zap.Bool("hit", hit))

	res := MoveResult{Move: m, Hit: hit}
	if winner := rules.Winner(g.pos); winner != rules.NoPlayer {
		g.remaining = nil
		g.finish(match.NewResult(winner, rules.Classify(g.pos, winner), g.cube.Value))
		res.GameOver = true
		r := *g.result
		res.Result = &r
	}
	res.Remaining = g.Remaining()
	res.ValidMoves = g.ValidMoves()
	return res, nil
}

// checkInput validates the shape of a move before any rule is consulted.
func (g *Game) checkInput(m rules.Move) error {
	if m.From != rules.Bar && !m.From.IsBoard() {
		return newError(KindInvalidInput, "from: %d is not a point, bar or off", int(m.From))
	}
	if m.To != rules.Off && !m.To.IsBoard() {
		return newError(KindInvalidInput, "to: %d is not a point, bar or off", int(m.To))
	}
	if m.Die < 1 || m.Die > 6 {
		return newError(KindInvalidInput, "die: %d is not 1-6", m.Die)
	}
	for _, d := range g.remaining {
		if d == m.Die {
			return nil
		}
	}
	return newError(KindInvalidInput, "die: %d is not among the remaining dice %v", m.Die, g.remaining)
}

// EndTurnResult is returned by EndTurn.
type EndTurnResult struct {
	NextPlayer rules.Player `json:"nextPlayer"`
	TurnNumber int          `json:"turnNumber"`
}

// EndTurn passes the dice once the player has no dice left or no legal way
// to use them.
func (g *Game) EndTurn() (EndTurnResult, error) {
	if g.phase == NotStarted {
		return EndTurnResult{}, ErrNoGame
	}
	if g.phase != Moving {
		return EndTurnResult{}, wrongPhase("end the turn", g.phase)
	}
	if !g.CanEndTurn() {
		return EndTurnResult{}, newError(KindMovesRemaining, "dice %v can still be played: %s",
			g.remaining, describe(g.LegalMoves()))
	}

	g.record(match.EndAction(g.turn, g.turnNumber))
	g.turn = g.turn.Opponent()
	g.turnNumber++
	g.roll = [2]int{}
	g.remaining = nil
	g.moves = nil
	g.setPhase(Rolling)

	return EndTurnResult{NextPlayer: g.turn, TurnNumber: g.turnNumber}, nil
}

// restoreDie returns a die to the remaining set, highest first.
func (g *Game) restoreDie(die int) {
	g.remaining = append(g.remaining, die)
	sort.Sort(sort.Reverse(sort.IntSlice(g.remaining)))
}

func describe(moves []rules.SourceMoves) string {
	var flat []rules.Move
	for _, s := range moves {
		flat = append(flat, s.Moves()...)
	}
	return describeMoves(flat)
}

func describeMoves(moves []rules.Move) string {
	if len(moves) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(moves))
	for _, m := range moves {
		parts = append(parts, m.String()+" ("+strconv.Itoa(m.Die)+")")
	}
	return strings.Join(parts, ", ")
}
