package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/yourusername/bgrules/pkg/game"
	"github.com/yourusername/bgrules/pkg/match"
	"github.com/yourusername/bgrules/pkg/rules"
)

// table runs a game from typed commands.
type table struct {
	g      *game.Game
	out    io.Writer
	length int
}

func newTable(g *game.Game, out io.Writer, length int) *table {
	return &table{g: g, out: out, length: length}
}

const tableHelp = `Commands:
  roll              roll the dice
  move 13/7 8/7     play one or more checker moves, in your own numbering
  end               end the turn
  undo, undoall     take back the last move, or every move this turn
  double            offer the cube
  take, pass        answer a double
  moves             list the legal moves
  show              draw the position
  board             print the table as a FIBS board line
  log               print the game so far
  new               start the next game
  save FILE         write the transcript as a MAT file
  quit`

func (t *table) printf(format string, args ...any) {
	fmt.Fprintf(t.out, format, args...)
}

// run reads commands from in until it ends or the user quits.
func (t *table) run(in io.Reader) error {
	if err := t.start(); err != nil {
		return err
	}
	sc := bufio.NewScanner(in)
	t.prompt()
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			t.prompt()
			continue
		}
		quit, err := t.exec(line)
		if err != nil {
			t.printf("  %v\n", err)
		}
		if quit {
			return nil
		}
		t.prompt()
	}
	return sc.Err()
}

func (t *table) start() error {
	var (
		res game.StartResult
		err error
	)
	if t.length > 0 && t.g.Match() == nil {
		res, err = t.g.StartMatch(t.length)
	} else {
		res, err = t.g.Start()
	}
	if err != nil {
		return err
	}
	t.printf("Opening roll: %s moves first with %d%d\n", res.FirstPlayer, res.Dice[0], res.Dice[1])
	t.show()
	return nil
}

func (t *table) prompt() {
	s := t.g.Snapshot()
	switch s.Phase {
	case game.Rolling:
		t.printf("%s to roll> ", s.Turn)
	case game.Moving:
		t.printf("%s %d%d %v> ", s.Turn, s.Dice[0], s.Dice[1], s.Remaining)
	case game.DoublingProposed:
		t.printf("%s: take or pass> ", s.ProposedBy.Opponent())
	default:
		t.printf("> ")
	}
}

// exec runs one command line and reports whether to quit.
func (t *table) exec(line string) (bool, error) {
	fields := strings.Fields(line)
	cmd, rest := strings.ToLower(fields[0]), strings.TrimSpace(strings.TrimPrefix(line, fields[0]))

	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		t.printf("%s\n", tableHelp)
	case "roll", "r":
		res, err := t.g.RollDice()
		if err != nil {
			return false, err
		}
		t.printf("%s rolls %d%d\n", t.g.Turn(), res.Dice[0], res.Dice[1])
		if res.TurnForfeited {
			t.printf("No legal moves. Type end.\n")
		}
	case "move", "m":
		if rest == "" {
			return false, fmt.Errorf("usage: move 13/7 8/7")
		}
		return false, t.move(rest)
	case "end", "e":
		res, err := t.g.EndTurn()
		if err != nil {
			return false, err
		}
		t.printf("%s's turn\n", res.NextPlayer)
	case "undo", "u":
		res, err := t.g.UndoLastMove()
		if err != nil {
			return false, err
		}
		t.printUndone(res)
	case "undoall":
		res, err := t.g.UndoAllMovesThisTurn()
		if err != nil {
			return false, err
		}
		t.printUndone(res)
	case "double", "d":
		res, err := t.g.ProposeDouble()
		if err != nil {
			return false, err
		}
		t.printf("%s offers the cube at %d\n", res.ProposedBy, res.NewCubeValue)
	case "take", "pass", "drop":
		res, err := t.g.RespondToDouble(cmd == "take")
		if err != nil {
			return false, err
		}
		if res.Accepted {
			t.printf("Taken, cube at %d\n", res.Cube.Value)
		} else {
			t.gameOver()
		}
	case "moves":
		t.listMoves()
	case "show", "s":
		t.show()
	case "board":
		t.printf("%s\n", t.g.FIBSBoard([2]string{"White", "Black"}))
	case "log":
		for _, l := range match.Summarize(t.g.Actions()) {
			t.printf("  %s\n", l)
		}
	case "new", "next":
		return false, t.start()
	case "save":
		if rest == "" {
			return false, fmt.Errorf("usage: save FILE")
		}
		return false, t.save(rest)
	default:
		return false, fmt.Errorf("unknown command %q, type help", cmd)
	}
	return false, nil
}

// move plays a line of notation move by move, stopping at the first
// rejected move. Moves already made stay on the board.
func (t *table) move(notation string) error {
	player := t.g.Turn()
	moves, err := match.ParseMoves(notation, player, t.g.Remaining())
	if err != nil {
		return err
	}
	for _, pm := range moves {
		res, err := t.g.MakeMove(pm.Move)
		if err != nil {
			return fmt.Errorf("%s: %w", match.FormatMove(pm.Move, player, false), err)
		}
		t.printf("  %s\n", match.FormatMove(res.Move, player, res.Hit))
		if res.GameOver {
			t.gameOver()
			return nil
		}
	}
	if t.g.CanEndTurn() {
		t.printf("Turn complete. Type end, or undo.\n")
	}
	return nil
}

func (t *table) printUndone(res game.UndoResult) {
	player := t.g.Turn()
	for _, m := range res.Undone {
		t.printf("  took back %s\n", match.FormatMove(m, player, false))
	}
}

func (t *table) listMoves() {
	player := t.g.Turn()
	legal := t.g.LegalMoves()
	if len(legal) == 0 {
		t.printf("No legal moves.\n")
		return
	}
	if req := t.g.RequiredMoves(); req.RequiredDie != 0 {
		t.printf("You must play the %d.\n", req.RequiredDie)
	}
	for _, src := range legal {
		var parts []string
		for _, m := range src.Moves() {
			parts = append(parts, match.FormatMove(m, player, false))
		}
		t.printf("  %s\n", strings.Join(parts, "  "))
	}
}

func (t *table) gameOver() {
	r, ok := t.g.CheckGameOver()
	if !ok {
		return
	}
	t.printf("%s\n", r)
	if m := t.g.Match(); m != nil {
		t.printf("Score: white %d, black %d (match to %d)\n", m.Score[0], m.Score[1], m.Target)
		if m.Winner != rules.NoPlayer {
			t.printf("%s wins the match.\n", m.Winner)
			return
		}
		if m.IsCrawford {
			t.printf("Next game is the Crawford game.\n")
		}
	}
	t.printf("Type new for the next game.\n")
}

// show draws the position with each side's points in its own numbering.
func (t *table) show() {
	s := t.g.Snapshot()
	t.printf("Turn %d, %s", s.TurnNumber, s.Phase)
	if s.DoublingEnabled || s.Cube.Value > 1 {
		owner := "centered"
		if !s.Cube.Centered() {
			owner = "owned by " + s.Cube.Owner.String()
		}
		t.printf(", cube %d %s", s.Cube.Value, owner)
	}
	t.printf("\n")
	for _, p := range []rules.Player{rules.White, rules.Black} {
		t.printf("  %-5s pips %3d  bar %d  off %2d  |", p, s.Pips[p], s.Position.Bar[p], s.Position.BorneOff[p])
		for label := rules.NumPoints; label >= 1; label-- {
			abs := label
			if p == rules.Black {
				abs = rules.NumPoints + 1 - label
			}
			if n := s.Position.Count(p, abs); n > 0 {
				t.printf(" %d:%d", label, n)
			}
		}
		t.printf("\n")
	}
	t.printf("  Position ID %s\n", s.PositionID)
}

func (t *table) save(path string) error {
	length := 0
	if m := t.g.Match(); m != nil {
		length = m.Target
	}
	tr := match.NewTranscript("White", "Black", length)
	tr.Games = t.g.Records()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := match.ExportMAT(f, tr); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	t.printf("Saved %d game(s) to %s\n", len(tr.Games), path)
	return nil
}

// replayTranscript re-plays every game of t through the rules and reports
// each result. It stops at the first game that breaks a rule.
func replayTranscript(out io.Writer, t *match.Transcript, verbose bool) error {
	fmt.Fprintf(out, "%s vs %s, %d games\n", t.Players[0], t.Players[1], len(t.Games))
	for _, rec := range t.Games {
		g, err := game.Replay(rec.Actions, game.Options{Doubling: !rec.Crawford})
		if err != nil {
			return fmt.Errorf("game %d: %w", rec.Number, err)
		}
		if verbose {
			for _, l := range match.Summarize(g.Actions()) {
				fmt.Fprintf(out, "    %s\n", l)
			}
		}
		status := "unfinished"
		if r, ok := g.CheckGameOver(); ok {
			status = r.String()
		}
		fmt.Fprintf(out, "  Game %d (score %d-%d): %s\n", rec.Number, rec.Score[0], rec.Score[1], status)
	}
	return nil
}
