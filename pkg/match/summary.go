package match

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/bgrules/pkg/rules"
)

// pointLabel writes an absolute point the way player counts it: every
// player numbers their own home board 1-6.
func pointLabel(pt rules.Point, player rules.Player) string {
	switch pt {
	case rules.Bar:
		return "bar"
	case rules.Off:
		return "off"
	}
	if player == rules.Black {
		return strconv.Itoa(rules.NumPoints + 1 - int(pt))
	}
	return strconv.Itoa(int(pt))
}

// FormatMove renders m in player-relative notation, e.g. "13/7" or "6/5*".
func FormatMove(m rules.Move, player rules.Player, hit bool) string {
	s := pointLabel(m.From, player) + "/" + pointLabel(m.To, player)
	if hit {
		s += "*"
	}
	return s
}

// turnText accumulates one roll and the moves played with it.
type turnText struct {
	player rules.Player
	dice   [2]int
	moves  []string
}

func (t *turnText) String() string {
	roll := fmt.Sprintf("%d%d:", t.dice[0], t.dice[1])
	if len(t.moves) == 0 {
		return roll
	}
	return roll + " " + strings.Join(t.moves, " ")
}

// entry is one column cell of a transcript: a played roll or a cube action.
type entry struct {
	player rules.Player
	text   string
}

// entries groups a game log into per-player cells.
func entries(actions []Action) []entry {
	var out []entry
	var cur *turnText
	flush := func() {
		if cur != nil {
			out = append(out, entry{player: cur.player, text: cur.String()})
			cur = nil
		}
	}

	for _, a := range actions {
		switch a.Kind {
		case GameStart, DiceRoll:
			flush()
			cur = &turnText{player: a.Player, dice: a.Dice}
		case PieceMove:
			if cur != nil && a.Move != nil {
				cur.moves = append(cur.moves, FormatMove(*a.Move, a.Player, a.Hit))
			}
		case TurnEnd:
			flush()
		case DoubleProposed:
			flush()
			out = append(out, entry{player: a.Player, text: fmt.Sprintf("Doubles => %d", a.Value)})
		case DoubleAccepted:
			out = append(out, entry{player: a.Player, text: "Takes"})
		case DoubleDeclined:
			out = append(out, entry{player: a.Player, text: "Drops"})
		}
	}
	flush()
	return out
}

// Summarize renders a game log as one human-readable line per turn or cube
// action, e.g. "white 31: 8/5 6/5" or "black takes".
func Summarize(actions []Action) []string {
	cells := entries(actions)
	lines := make([]string, 0, len(cells))
	for _, c := range cells {
		text := c.text
		switch text {
		case "Takes":
			text = "takes"
		case "Drops":
			text = "passes"
		default:
			if strings.HasPrefix(text, "Doubles") {
				text = "doubles to " + strings.TrimPrefix(text, "Doubles => ")
			}
		}
		lines = append(lines, c.player.String()+" "+text)
	}
	return lines
}
