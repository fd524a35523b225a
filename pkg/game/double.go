package game

import (
	"go.uber.org/zap"

	"github.com/yourusername/bgrules/pkg/match"
	"github.com/yourusername/bgrules/pkg/rules"
)

// DoubleResult is returned by ProposeDouble.
type DoubleResult struct {
	ProposedBy   rules.Player `json:"proposedBy"`
	NewCubeValue int          `json:"newCubeValue"`
}

// ProposeDouble offers to double the stakes before rolling.
func (g *Game) ProposeDouble() (DoubleResult, error) {
	if g.phase == NotStarted {
		return DoubleResult{}, ErrNoGame
	}
	if err := g.doubleAllowed(); err != nil {
		return DoubleResult{}, err
	}

	g.proposedBy = g.turn
	value := g.cube.Value * 2
	g.record(match.CubeAction(match.DoubleProposed, g.turn, g.turnNumber, value))
	g.setPhase(DoublingProposed)

	g.logger.Info("double proposed", zap.Stringer("player", g.turn), zap.Int("value", value))
	return DoubleResult{ProposedBy: g.turn, NewCubeValue: value}, nil
}

// doubleAllowed explains why the player on turn may not double, if so.
func (g *Game) doubleAllowed() error {
	if g.phase != Rolling {
		return wrongPhase("double", g.phase)
	}
	switch {
	case !g.opts.Doubling:
		return newError(KindCannotDouble, "doubling is disabled for this game")
	case g.crawford:
		return newError(KindCannotDouble, "no doubling in the Crawford game")
	case g.cube.Value >= match.MaxCubeValue:
		return newError(KindCannotDouble, "cube is already at %d", g.cube.Value)
	case !g.cube.MayDouble(g.turn):
		return newError(KindCannotDouble, "%s owns the cube", g.cube.Owner)
	}
	return nil
}

// RespondResult is returned by RespondToDouble.
type RespondResult struct {
	Accepted bool          `json:"accepted"`
	Cube     match.Cube    `json:"cube"`
	Result   *match.Result `json:"result,omitempty"`
}

// RespondToDouble answers a pending double for the opponent of the
// proposer. Accepting doubles the cube and hands it to the taker; the
// proposer then rolls. Declining concedes the game at the cube value before
// the offer.
func (g *Game) RespondToDouble(accept bool) (RespondResult, error) {
	if g.phase == NotStarted {
		return RespondResult{}, ErrNoGame
	}
	if g.phase != DoublingProposed {
		return RespondResult{}, newError(KindNoDoublePending, "no double is pending (phase %s)", g.phase)
	}

	proposer := g.proposedBy
	responder := proposer.Opponent()
	g.proposedBy = rules.NoPlayer

	if accept {
		g.cube = g.cube.Take(responder)
		g.record(match.CubeAction(match.DoubleAccepted, responder, g.turnNumber, g.cube.Value))
		g.setPhase(Rolling)
		g.logger.Info("double accepted", zap.Stringer("player", responder), zap.Int("value", g.cube.Value))
		return RespondResult{Accepted: true, Cube: g.cube}, nil
	}

	g.record(match.CubeAction(match.DoubleDeclined, responder, g.turnNumber, g.cube.Value))
	g.logger.Info("double declined", zap.Stringer("player", responder), zap.Int("value", g.cube.Value))
	g.finish(match.DeclineResult(proposer, g.cube.Value))
	r := *g.result
	return RespondResult{Accepted: false, Cube: g.cube, Result: &r}, nil
}
