package match

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/yourusername/bgrules/pkg/rules"
)

// MAT format is the Jellyfish/gnubg match format. White is player 1 (left
// column), Black is player 2 (right column).
// Example format:
//
//	; [Site "GamesGrid"]
//	; [Player 1 "name1"]
//	; [Player 2 "name2"]
//	7 point match
//
//	Game 1
//	name1 : 0            name2 : 0
//	1) 31: 8/5 6/5       52: 24/22 13/8
//	2) 43: 24/20 13/10   ...

var (
	matchLengthRE = regexp.MustCompile(`(\d+)\s+point\s+match`)
	gameHeaderRE  = regexp.MustCompile(`^Game\s+(\d+)`)
	scoreLineRE   = regexp.MustCompile(`^(.+?)\s*:\s*(\d+)\s+(.+?)\s*:\s*(\d+)`)
	moveLineRE    = regexp.MustCompile(`^\s*(\d+)\)`)
	winsRE        = regexp.MustCompile(`Wins\s+(\d+)\s+point`)
	tagRE         = regexp.MustCompile(`\[([\w ]+?)\s+"([^"]*)"\]`)
	columnSepRE   = regexp.MustCompile(`\s{3,}`)
)

// columnWidth is the width of the left (White) column of a move line.
const columnWidth = 32

// rightColumn is how much leading space marks a cell as Black's when the
// White cell of the line is empty.
const rightColumn = 10

// ImportMAT reads a match from MAT format. Moves are converted to absolute
// points and annotated with the die each one used.
func ImportMAT(r io.Reader) (*Transcript, error) {
	scanner := bufio.NewScanner(r)
	t := &Transcript{Games: make([]GameRecord, 0)}

	var cur *importer
	finish := func() {
		if cur != nil {
			t.Games = append(t.Games, cur.rec)
			cur = nil
		}
	}

	for scanner.Scan() {
		raw := scanner.Text()
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, ";") {
			if m := tagRE.FindStringSubmatch(line); m != nil {
				switch strings.ToLower(m[1]) {
				case "player 1", "player1":
					t.Players[0] = m[2]
				case "player 2", "player2":
					t.Players[1] = m[2]
				case "site", "place":
					t.Place = m[2]
				case "event":
					t.Event = m[2]
				case "date":
					t.Date = m[2]
				}
			}
			continue
		}

		if m := matchLengthRE.FindStringSubmatch(line); m != nil && cur == nil {
			t.MatchLength, _ = strconv.Atoi(m[1])
			continue
		}

		if m := gameHeaderRE.FindStringSubmatch(line); m != nil {
			finish()
			n, _ := strconv.Atoi(m[1])
			cur = newImporter(n)
			continue
		}
		if cur == nil {
			continue
		}

		if m := scoreLineRE.FindStringSubmatch(line); m != nil && !moveLineRE.MatchString(line) {
			if t.Players[0] == "" {
				t.Players[0] = strings.TrimSpace(m[1])
			}
			if t.Players[1] == "" {
				t.Players[1] = strings.TrimSpace(m[3])
			}
			cur.rec.Score[0], _ = strconv.Atoi(m[2])
			cur.rec.Score[1], _ = strconv.Atoi(m[4])
			continue
		}

		if m := winsRE.FindStringSubmatch(line); m != nil {
			winner := rules.White
			if indent(raw) > rightColumn {
				winner = rules.Black
			}
			points, _ := strconv.Atoi(m[1])
			cur.win(winner, points)
			continue
		}

		if moveLineRE.MatchString(line) {
			if err := cur.moveLine(raw); err != nil {
				return nil, fmt.Errorf("game %d: %w", cur.rec.Number, err)
			}
		}
	}
	finish()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading MAT file: %w", err)
	}
	return t, nil
}

func indent(s string) int {
	return len(s) - len(strings.TrimLeft(s, " \t"))
}

// importer builds one GameRecord from MAT lines.
type importer struct {
	rec  GameRecord
	turn int
	cube Cube
	// open is the player whose turn has not been closed with a TurnEnd.
	open rules.Player
}

func newImporter(number int) *importer {
	return &importer{
		rec:  GameRecord{Number: number, Actions: make([]Action, 0)},
		cube: NewCube(),
		open: rules.NoPlayer,
	}
}

func (im *importer) add(a Action) {
	im.rec.Actions = append(im.rec.Actions, a)
}

func (im *importer) closeTurn() {
	if im.open != rules.NoPlayer {
		im.add(EndAction(im.open, im.turn))
		im.open = rules.NoPlayer
	}
}

func (im *importer) win(winner rules.Player, points int) {
	victory := rules.Single
	if im.cube.Value > 0 && points/im.cube.Value >= 1 && points/im.cube.Value <= 3 {
		victory = rules.VictoryType(points / im.cube.Value)
	}
	r := Result{Winner: winner, VictoryType: victory, CubeValue: im.cube.Value, Points: points}
	if n := len(im.rec.Actions); n > 0 && im.rec.Actions[n-1].Kind == DoubleDeclined {
		r.Declined = true
		r.VictoryType = rules.Single
	}
	im.rec.Result = &r
}

// moveLine parses "  3) 31: 8/5 6/5          Doubles => 2".
func (im *importer) moveLine(raw string) error {
	parts := strings.SplitN(raw, ")", 2)
	if len(parts) < 2 {
		return nil
	}
	rest := parts[1]

	if indent(rest) > rightColumn {
		return im.cell(strings.TrimSpace(rest), rules.Black)
	}
	halves := columnSepRE.Split(strings.TrimSpace(rest), 2)
	for i, half := range halves {
		if err := im.cell(strings.TrimSpace(half), rules.Player(i)); err != nil {
			return err
		}
	}
	return nil
}

// cell parses one player's entry: "31: 8/5 6/5", "Doubles => 2", "Takes"
// or "Drops".
func (im *importer) cell(text string, player rules.Player) error {
	if text == "" {
		return nil
	}

	lower := strings.ToLower(text)
	switch {
	case strings.HasPrefix(lower, "doubles"):
		im.closeTurn()
		im.add(CubeAction(DoubleProposed, player, im.turn+1, im.cube.Value*2))
		return nil
	case lower == "takes" || lower == "accepts":
		im.cube = im.cube.Take(player)
		im.add(CubeAction(DoubleAccepted, player, im.turn+1, im.cube.Value))
		return nil
	case lower == "drops" || lower == "passes" || lower == "rejects":
		im.add(CubeAction(DoubleDeclined, player, im.turn+1, im.cube.Value))
		return nil
	}

	colon := strings.Index(text, ":")
	if colon < 2 {
		return nil
	}
	diceStr := strings.TrimSpace(text[:colon])
	d1, err1 := strconv.Atoi(diceStr[:1])
	d2, err2 := strconv.Atoi(diceStr[1:2])
	if err1 != nil || err2 != nil || d1 < 1 || d1 > 6 || d2 < 1 || d2 > 6 {
		return fmt.Errorf("bad roll %q", diceStr)
	}

	im.closeTurn()
	im.turn++
	if im.turn == 1 {
		im.add(StartAction(player, d1, d2))
	} else {
		im.add(RollAction(player, im.turn, d1, d2))
	}
	im.open = player

	notation := strings.TrimSpace(text[colon+1:])
	if notation == "" || strings.Contains(strings.ToLower(notation), "cannot") || strings.Contains(notation, "no play") {
		return nil
	}
	moves, err := ParseMoves(notation, player, rules.ExpandRoll(d1, d2))
	if err != nil {
		return err
	}
	for _, pm := range moves {
		im.add(MoveAction(player, im.turn, pm.Move, pm.Hit))
	}
	return nil
}

// PlayedMove is a parsed move with its hit marker.
type PlayedMove struct {
	rules.Move
	Hit bool
}

// ParseMoves parses player-relative notation such as "8/5 6/5", "24/18(2)",
// "bar/22*", "13/7/2" or "6/off" into absolute moves, assigning each move
// one of dice.
func ParseMoves(notation string, player rules.Player, dice []int) ([]PlayedMove, error) {
	var out []PlayedMove
	remaining := append([]int(nil), dice...)

	for _, part := range strings.Fields(notation) {
		count := 1
		if i := strings.Index(part, "("); i != -1 {
			if j := strings.Index(part, ")"); j > i {
				n, err := strconv.Atoi(part[i+1 : j])
				if err != nil || n < 1 {
					return nil, fmt.Errorf("bad repeat count in %q", part)
				}
				count = n
			}
			part = part[:i]
		}

		steps := strings.Split(part, "/")
		if len(steps) < 2 {
			return nil, fmt.Errorf("bad move %q", part)
		}

		for c := 0; c < count; c++ {
			for k := 0; k+1 < len(steps); k++ {
				hit := strings.HasSuffix(steps[k+1], "*")
				from, err := relativePoint(strings.TrimSuffix(steps[k], "*"))
				if err != nil {
					return nil, err
				}
				to, err := relativePoint(strings.TrimSuffix(steps[k+1], "*"))
				if err != nil {
					return nil, err
				}

				die, ok := pickDie(remaining, from, to)
				if !ok {
					return nil, fmt.Errorf("move %s/%s does not match roll %v", steps[k], steps[k+1], dice)
				}
				remaining = rules.RemoveDie(remaining, die)

				out = append(out, PlayedMove{
					Move: rules.Move{From: absolutePoint(from, player), To: absolutePoint(to, player), Die: die},
					Hit:  hit,
				})
			}
		}
	}
	return out, nil
}

// relativePoint parses a player-relative point: 25 is the bar, 0 is off.
func relativePoint(s string) (int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bar":
		return 25, nil
	case "off", "home":
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 25 {
		return 0, fmt.Errorf("bad point %q", s)
	}
	return n, nil
}

func absolutePoint(rel int, player rules.Player) rules.Point {
	switch rel {
	case 25:
		return rules.Bar
	case 0:
		return rules.Off
	}
	if player == rules.Black {
		return rules.Point(rules.NumPoints + 1 - rel)
	}
	return rules.Point(rel)
}

// pickDie finds the die used to travel from one relative point to another.
// Bearing off may use a die larger than the distance.
func pickDie(dice []int, from, to int) (int, bool) {
	dist := from - to
	for _, d := range dice {
		if d == dist {
			return d, true
		}
	}
	if to != 0 {
		return 0, false
	}
	best := 0
	for _, d := range dice {
		if d > dist && (best == 0 || d < best) {
			best = d
		}
	}
	return best, best != 0
}

// ExportMAT writes a transcript in MAT format.
func ExportMAT(w io.Writer, t *Transcript) error {
	bw := bufio.NewWriter(w)

	if t.Place != "" {
		fmt.Fprintf(bw, " ; [Site \"%s\"]\n", t.Place)
	}
	if t.Event != "" {
		fmt.Fprintf(bw, " ; [Event \"%s\"]\n", t.Event)
	}
	if t.Date != "" {
		fmt.Fprintf(bw, " ; [Date \"%s\"]\n", t.Date)
	}
	fmt.Fprintf(bw, " ; [Player 1 \"%s\"]\n", t.Players[0])
	fmt.Fprintf(bw, " ; [Player 2 \"%s\"]\n", t.Players[1])

	if t.MatchLength > 0 {
		fmt.Fprintf(bw, " %d point match\n\n", t.MatchLength)
	} else {
		fmt.Fprintf(bw, " 0 point match\n\n")
	}

	for i := range t.Games {
		exportGameMAT(bw, t, &t.Games[i])
	}
	return bw.Flush()
}

// exportGameMAT writes a single game in MAT format.
func exportGameMAT(w io.Writer, t *Transcript, game *GameRecord) {
	fmt.Fprintf(w, " Game %d\n", game.Number)
	fmt.Fprintf(w, " %s : %d                          %s : %d\n",
		t.Players[0], game.Score[0], t.Players[1], game.Score[1])

	cells := entries(game.Actions)
	line := 0
	for i := 0; i < len(cells); i++ {
		line++
		if cells[i].player == rules.Black {
			fmt.Fprintf(w, "%3d) %-*s   %s\n", line, columnWidth, "", cells[i].text)
			continue
		}
		left := cells[i].text
		if i+1 < len(cells) && cells[i+1].player == rules.Black {
			fmt.Fprintf(w, "%3d) %-*s   %s\n", line, columnWidth, left, cells[i+1].text)
			i++
			continue
		}
		fmt.Fprintf(w, "%3d) %s\n", line, left)
	}

	if r := game.Result; r != nil {
		pad := 6
		if r.Winner == rules.Black {
			pad = 6 + columnWidth + 3
		}
		fmt.Fprintf(w, "%*sWins %d point%s\n", pad, "", r.Points, plural(r.Points))
	}
	fmt.Fprintf(w, "\n")
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
