package match

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/yourusername/bgrules/pkg/rules"
)

// FIBSBoard is a table state in the FIBS/CLIP "board:" format, held in
// absolute terms. See http://www.fibs.com/fibs_interface.html#board_state
type FIBSBoard struct {
	Players     [2]string // White, Black
	MatchLength int       // 0 = unlimited
	Score       [2]int
	Position    rules.Position
	Turn        rules.Player // NoPlayer once the game is over
	Dice        [2][2]int    // Each player's dice; zero until rolled
	Cube        int
	MayDouble   [2]bool
	// Doubled is set while You face the opponent's double.
	Doubled  bool
	CanMove  int // Checkers the player on turn may move
	Crawford bool
	// You is the side the string was written for. Format always writes
	// for White.
	You rules.Player
}

const fibsFields = 52

// fibsColor is the sign FIBS uses for player's checkers when You is White.
func fibsColor(player rules.Player) int {
	if player == rules.White {
		return 1
	}
	return -1
}

func boolField(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// String writes the board from White's side: White is "you", plays O
// (positive counts) and moves from 24 down to 1 with home 0 and bar 25.
func (b FIBSBoard) String() string {
	f := make([]string, 0, fibsFields)
	f = append(f, b.Players[0], b.Players[1],
		strconv.Itoa(b.MatchLength), strconv.Itoa(b.Score[0]), strconv.Itoa(b.Score[1]))

	var board [26]int
	board[0] = -b.Position.Bar[rules.Black]
	board[25] = b.Position.Bar[rules.White]
	for i := 1; i <= rules.NumPoints; i++ {
		board[i] = b.Position.Points[i-1]
	}
	for _, n := range board {
		f = append(f, strconv.Itoa(n))
	}

	turn := 0
	if b.Turn.Valid() {
		turn = fibsColor(b.Turn)
	}
	f = append(f, strconv.Itoa(turn),
		strconv.Itoa(b.Dice[rules.White][0]), strconv.Itoa(b.Dice[rules.White][1]),
		strconv.Itoa(b.Dice[rules.Black][0]), strconv.Itoa(b.Dice[rules.Black][1]),
		strconv.Itoa(b.Cube),
		boolField(b.MayDouble[rules.White]), boolField(b.MayDouble[rules.Black]),
		boolField(b.Doubled),
		"1", "-1", // color, direction
		"0", "25", // home, bar
		strconv.Itoa(b.Position.BorneOff[rules.White]), strconv.Itoa(b.Position.BorneOff[rules.Black]),
		strconv.Itoa(b.Position.Bar[rules.White]), strconv.Itoa(b.Position.Bar[rules.Black]),
		strconv.Itoa(b.CanMove),
		"0", // forced move
		boolField(b.Crawford),
		"0", // redoubles
	)
	return "board:" + strings.Join(f, ":")
}

// ParseFIBSBoard parses a FIBS board string written for either side.
// Fields past the turn are optional; borne-off counts default to the
// checkers missing from the board.
func ParseFIBSBoard(s string) (FIBSBoard, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "board:")
	parts := strings.Split(s, ":")
	if len(parts) < 32 {
		return FIBSBoard{}, fmt.Errorf("invalid FIBS board: expected at least 32 fields, got %d", len(parts))
	}

	nums := make([]int, len(parts))
	for i := 2; i < len(parts); i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return FIBSBoard{}, fmt.Errorf("invalid FIBS board: field %d %q is not a number", i, parts[i])
		}
		nums[i] = n
	}
	field := func(i, def int) int {
		if i < len(nums) {
			return nums[i]
		}
		return def
	}

	// Color and direction say which checkers are "yours" and which way
	// you move. Direction -1 means you travel like White.
	color, direction := field(40, 1), field(41, -1)
	if color != 1 && color != -1 {
		return FIBSBoard{}, fmt.Errorf("invalid FIBS board: color %d", color)
	}
	you, opp := rules.White, rules.Black
	if direction == 1 {
		you, opp = rules.Black, rules.White
	}

	b := FIBSBoard{You: you, Turn: rules.NoPlayer}
	b.Players[you], b.Players[opp] = parts[0], parts[1]
	b.MatchLength = nums[2]
	b.Score[you], b.Score[opp] = nums[3], nums[4]

	sign := map[rules.Player]int{rules.White: 1, rules.Black: -1}
	for i := 1; i <= rules.NumPoints; i++ {
		n := nums[5+i]
		if n == 0 {
			continue
		}
		owner := opp
		if n*color > 0 {
			owner = you
		}
		if n < 0 {
			n = -n
		}
		b.Position.Points[i-1] = sign[owner] * n
	}

	barIdx := [2]int{}
	barIdx[you], barIdx[opp] = 25, 0
	if you == rules.Black {
		barIdx[you], barIdx[opp] = 0, 25
	}
	for _, p := range []rules.Player{rules.White, rules.Black} {
		bar := nums[5+barIdx[p]]
		if bar < 0 {
			bar = -bar
		}
		b.Position.Bar[p] = bar
	}
	if len(nums) > 47 {
		b.Position.Bar[you], b.Position.Bar[opp] = nums[46], nums[47]
	}
	for _, p := range []rules.Player{rules.White, rules.Black} {
		b.Position.BorneOff[p] = rules.NumCheckers - b.Position.Bar[p] - b.Position.OnBoard(p)
	}
	if len(nums) > 45 {
		b.Position.BorneOff[you], b.Position.BorneOff[opp] = nums[44], nums[45]
	}
	if err := b.Position.Validate(); err != nil {
		return FIBSBoard{}, fmt.Errorf("invalid FIBS board: %w", err)
	}

	switch turn := nums[31]; {
	case turn == color:
		b.Turn = you
	case turn == -color:
		b.Turn = opp
	}
	b.Dice[you] = [2]int{field(32, 0), field(33, 0)}
	b.Dice[opp] = [2]int{field(34, 0), field(35, 0)}
	b.Cube = field(36, 1)
	b.MayDouble[you] = field(37, 0) == 1
	b.MayDouble[opp] = field(38, 0) == 1
	b.Doubled = field(39, 0) == 1
	b.CanMove = field(48, 0)
	b.Crawford = field(50, 0) == 1
	return b, nil
}
