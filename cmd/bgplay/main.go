// bgplay - play, check and replay backgammon games from the terminal
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yourusername/bgrules/pkg/dice"
	"github.com/yourusername/bgrules/pkg/game"
	"github.com/yourusername/bgrules/pkg/match"
	"github.com/yourusername/bgrules/pkg/rules"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "play":
		cmdPlay(args)
	case "moves":
		cmdMoves(args)
	case "replay":
		cmdReplay(args)
	case "audit":
		cmdAudit(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`bgplay - Backgammon rules at the terminal

Usage: bgplay <command> [options]

Commands:
  play      Play a game or match between two people at one keyboard
  moves     List the legal plays for a position and roll
  replay    Check every game of a MAT transcript against the rules
  audit     Test the dice generator for fairness

Use "bgplay <command> -h" for command-specific help.

Position ID Format:
  Positions use gnubg's position ID format, e.g. "4HPwATDgc/ABMA".
  Only the position part (before :) is read. "moves -fibs" takes a FIBS
  "board:" line instead.`)
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

func parsePosition(posStr string, onRoll rules.Player) (rules.Position, error) {
	if idx := strings.Index(posStr, ":"); idx >= 0 {
		posStr = posStr[:idx]
	}
	pos, err := rules.FromPositionID(posStr, onRoll)
	if err != nil {
		return rules.Position{}, fmt.Errorf("invalid position ID: %w", err)
	}
	return pos, nil
}

func parseDice(diceStr string) ([2]int, error) {
	parts := strings.Split(diceStr, ",")
	if len(parts) != 2 {
		parts = strings.Split(diceStr, "-")
	}
	if len(parts) != 2 {
		return [2]int{}, fmt.Errorf("dice should be in format '3,1' or '3-1'")
	}

	d1, err1 := strconv.Atoi(strings.TrimSpace(parts[0]))
	d2, err2 := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err1 != nil || err2 != nil || d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return [2]int{}, fmt.Errorf("dice values must be 1-6")
	}
	return [2]int{d1, d2}, nil
}

func parsePlayer(s string) (rules.Player, error) {
	var p rules.Player
	if err := p.UnmarshalText([]byte(strings.ToLower(s))); err != nil || !p.Valid() {
		return rules.NoPlayer, fmt.Errorf("player must be white or black, got %q", s)
	}
	return p, nil
}

func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	logger, err := zap.NewDevelopment()
	if err != nil {
		fatalf("logger: %v", err)
	}
	return logger
}

func cmdPlay(args []string) {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	seed := fs.Int64("seed", 0, "Dice seed (0 picks one at random)")
	length := fs.Int("match", 0, "Match length in points (0 for a single game)")
	doubling := fs.Bool("doubling", true, "Play with the doubling cube")
	verbose := fs.Bool("v", false, "Log game events to stderr")
	fs.Parse(args)

	if *seed == 0 {
		s, err := dice.NewSeed()
		if err != nil {
			fatalf("seed: %v", err)
		}
		*seed = s
	}
	logger := newLogger(*verbose)
	defer logger.Sync()

	g, err := game.New(game.Options{
		Doubling: *doubling,
		Dice:     dice.NewRandom(*seed),
		Logger:   logger,
	})
	if err != nil {
		fatalf("%v", err)
	}

	fmt.Printf("Dice seed %d\n", *seed)
	t := newTable(g, os.Stdout, *length)
	if err := t.run(os.Stdin); err != nil {
		fatalf("%v", err)
	}
}

func cmdMoves(args []string) {
	fs := flag.NewFlagSet("moves", flag.ExitOnError)
	posFlag := fs.String("position", "4HPwATDgc/ABMA", "Position ID (gnubg format)")
	fibsFlag := fs.String("fibs", "", "FIBS board line; replaces -position, -player and, once rolled, -dice")
	diceFlag := fs.String("dice", "", "Dice roll (e.g., 3,1 or 6-6)")
	playerFlag := fs.String("player", "white", "Player on roll")
	fs.Parse(args)

	var (
		pos    rules.Position
		player rules.Player
		roll   [2]int
		err    error
	)
	if *fibsFlag != "" {
		b, err := match.ParseFIBSBoard(*fibsFlag)
		if err != nil {
			fatalf("%v", err)
		}
		if !b.Turn.Valid() {
			fatalf("the game on that board is over")
		}
		pos, player, roll = b.Position, b.Turn, b.Dice[b.Turn]
	} else {
		if player, err = parsePlayer(*playerFlag); err != nil {
			fatalf("%v", err)
		}
		if pos, err = parsePosition(*posFlag, player); err != nil {
			fatalf("%v", err)
		}
	}
	if *diceFlag != "" {
		if roll, err = parseDice(*diceFlag); err != nil {
			fatalf("%v", err)
		}
	}
	if roll[0] == 0 {
		fmt.Fprintln(os.Stderr, "Error: dice required")
		fmt.Fprintln(os.Stderr, "Usage: bgplay moves -dice 3,1 [-position <positionID> | -fibs <board>] [-player black]")
		os.Exit(1)
	}

	ob := rules.RequiredMoves(pos, player, rules.ExpandRoll(roll[0], roll[1]))
	fmt.Printf("Position: %s\n", pos.PositionID(player))
	fmt.Printf("%s to play %d%d, pips %d\n", player, roll[0], roll[1], rules.PipCount(pos, player))
	if ob.MaxMovesUsable == 0 {
		fmt.Println("No legal moves.")
		return
	}
	fmt.Printf("Dice usable: %d\n", ob.MaxMovesUsable)
	if ob.RequiredDie != 0 {
		fmt.Printf("Must play the %d\n", ob.RequiredDie)
	}
	fmt.Printf("%d distinct plays:\n", len(ob.Sequences))
	for i, seq := range ob.Sequences {
		fmt.Printf("%4d. %s\n", i+1, formatSequence(pos, player, seq))
	}
}

// formatSequence renders a play in the player's own numbering, marking hits.
func formatSequence(pos rules.Position, player rules.Player, seq []rules.Move) string {
	parts := make([]string, len(seq))
	for i, m := range seq {
		var hit bool
		pos, hit = rules.ApplyMove(pos, player, m)
		parts[i] = match.FormatMove(m, player, hit)
	}
	return strings.Join(parts, " ")
}

func cmdReplay(args []string) {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Print every turn")
	fs.Parse(args)

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: bgplay replay [-v] <file.mat>")
		os.Exit(1)
	}
	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fatalf("%v", err)
	}
	defer f.Close()

	t, err := match.ImportMAT(f)
	if err != nil {
		fatalf("%v", err)
	}
	if err := replayTranscript(os.Stdout, t, *verbose); err != nil {
		fatalf("%v", err)
	}
}

func cmdAudit(args []string) {
	fs := flag.NewFlagSet("audit", flag.ExitOnError)
	n := fs.Int("n", 60000, "Number of rolls")
	seed := fs.Int64("seed", 0, "Dice seed (0 picks one at random)")
	fs.Parse(args)

	if *n < 1 {
		fatalf("-n must be positive")
	}
	if *seed == 0 {
		s, err := dice.NewSeed()
		if err != nil {
			fatalf("seed: %v", err)
		}
		*seed = s
	}
	tally := dice.Audit(dice.NewRandom(*seed), *n)
	chi2, p := tally.Fairness()

	fmt.Printf("Seed %d, %d rolls\n", *seed, tally.Total())
	for face, count := range tally {
		fmt.Printf("  %d: %7.0f  (%.2f%%)\n", face+1, count, 100*count/float64(*n))
	}
	fmt.Printf("Chi-squared %.3f, p = %.4f\n", chi2, p)
	if p < 0.001 {
		fmt.Println("The rolls do not look fair.")
	}
}
