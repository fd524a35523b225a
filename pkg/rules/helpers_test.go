package rules

// build lays out a position from per-player point counts. Bar is accepted
// as a key; checkers not placed are counted as borne off.
func build(white, black map[Point]int) Position {
	var pos Position
	for player, layout := range [2]map[Point]int{white, black} {
		p := Player(player)
		for pt, n := range layout {
			if pt == Bar {
				pos.Bar[p] += n
				continue
			}
			pos.Points[pt-1] += n * p.sign()
		}
		pos.BorneOff[p] = NumCheckers - pos.Bar[p] - pos.OnBoard(p)
	}
	return pos
}

func flatten(moves []SourceMoves) []Move {
	var out []Move
	for _, s := range moves {
		out = append(out, s.Moves()...)
	}
	return out
}
