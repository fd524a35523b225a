package game

import (
	"fmt"

	"github.com/yourusername/bgrules/pkg/dice"
	"github.com/yourusername/bgrules/pkg/match"
	"github.com/yourusername/bgrules/pkg/rules"
)

// Replay plays a recorded game log through a fresh Game, checking every
// action against the rules. opts supplies the doubling setting and any
// custom start position; its dice source is replaced by the recorded rolls.
func Replay(actions []match.Action, opts Options) (*Game, error) {
	rolls, err := recordedRolls(actions)
	if err != nil {
		return nil, err
	}
	src, err := dice.NewScript(rolls...)
	if err != nil {
		return nil, err
	}
	opts.Dice = src

	g, err := New(opts)
	if err != nil {
		return nil, err
	}
	if _, err := g.Start(); err != nil {
		return nil, err
	}

	for i, a := range actions[1:] {
		if err := g.apply(a); err != nil {
			return g, fmt.Errorf("action %d (%s): %w", i+1, a.Kind, err)
		}
	}
	return g, nil
}

// recordedRolls lists the die values a log consumed, in the order Start and
// RollDice draw them.
func recordedRolls(actions []match.Action) ([]int, error) {
	if len(actions) == 0 || actions[0].Kind != match.GameStart {
		return nil, newError(KindInvalidInput, "log must begin with %s", match.GameStart)
	}
	open := actions[0]
	hi, lo := open.Dice[0], open.Dice[1]
	if lo > hi {
		hi, lo = lo, hi
	}
	if hi == lo {
		return nil, newError(KindInvalidInput, "opening roll %d-%d cannot be doubles", hi, lo)
	}
	rolls := []int{hi, lo}
	if open.Player == rules.Black {
		rolls = []int{lo, hi}
	}
	for _, a := range actions[1:] {
		if a.Kind == match.DiceRoll {
			rolls = append(rolls, a.Dice[0], a.Dice[1])
		}
	}
	return rolls, nil
}

func (g *Game) apply(a match.Action) error {
	if a.Player != g.turn && a.Kind != match.DoubleAccepted && a.Kind != match.DoubleDeclined {
		return newError(KindInvalidInput, "%s acted out of turn", a.Player)
	}
	var err error
	switch a.Kind {
	case match.DiceRoll:
		_, err = g.RollDice()
	case match.PieceMove:
		if a.Move == nil {
			return newError(KindInvalidInput, "move entry has no move")
		}
		_, err = g.MakeMove(*a.Move)
	case match.TurnEnd:
		_, err = g.EndTurn()
	case match.DoubleProposed:
		_, err = g.ProposeDouble()
	case match.DoubleAccepted:
		_, err = g.RespondToDouble(true)
	case match.DoubleDeclined:
		_, err = g.RespondToDouble(false)
	default:
		err = newError(KindInvalidInput, "unexpected %s entry", a.Kind)
	}
	return err
}
