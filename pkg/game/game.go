// Package game runs a backgammon game as a sequence of turns. A Game owns
// the position of record, the turn phase, the dice, the doubling cube and the
// action log, and optionally a match that spans several games.
//
// A Game is not safe for concurrent use. Callers that share one across
// goroutines must serialize access to it.
package game

import (
	"go.uber.org/zap"

	"github.com/yourusername/bgrules/pkg/dice"
	"github.com/yourusername/bgrules/pkg/match"
	"github.com/yourusername/bgrules/pkg/rules"
)

// Phase is the turn phase of a game.
type Phase string

const (
	NotStarted       Phase = "not_started"
	RollingForFirst  Phase = "rolling_for_first"
	Rolling          Phase = "rolling"
	Moving           Phase = "moving"
	DoublingProposed Phase = "doubling_proposed"
	GameOver         Phase = "game_over"
)

// Options configures a Game.
type Options struct {
	// Doubling enables the doubling cube.
	Doubling bool
	// Position replaces the standard starting setup.
	Position *rules.Position
	// Dice supplies rolls. Defaults to a randomly seeded source.
	Dice dice.Source
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

// played is a move made this turn with the hit flag needed to reverse it.
type played struct {
	move rules.Move
	hit  bool
}

// Game is one table: the game in progress plus the match it belongs to.
type Game struct {
	opts   Options
	dice   dice.Source
	logger *zap.Logger

	pos        rules.Position
	phase      Phase
	turn       rules.Player
	turnNumber int
	roll       [2]int
	remaining  []int
	moves      []played
	cube       match.Cube
	doubling   bool
	proposedBy rules.Player
	result     *match.Result
	actions    []match.Action

	match      *match.Match
	startScore [2]int
	crawford   bool
	records    []match.GameRecord
}

// New creates a game in the not_started phase.
func New(opts Options) (*Game, error) {
	g := &Game{
		opts:       opts,
		dice:       opts.Dice,
		logger:     opts.Logger,
		phase:      NotStarted,
		turn:       rules.NoPlayer,
		proposedBy: rules.NoPlayer,
		cube:       match.NewCube(),
	}
	if g.logger == nil {
		g.logger = zap.NewNop()
	}
	if g.dice == nil {
		seed, err := dice.NewSeed()
		if err != nil {
			return nil, err
		}
		g.dice = dice.NewRandom(seed)
	}
	if opts.Position != nil {
		if err := opts.Position.Validate(); err != nil {
			return nil, newError(KindInvalidInput, "position: %v", err)
		}
	}
	return g, nil
}

// StartResult is returned by Start.
type StartResult struct {
	FirstPlayer rules.Player        `json:"firstPlayer"`
	Dice        [2]int              `json:"diceRoll"`
	ValidMoves  []rules.SourceMoves `json:"validMoves"`
}

// Start begins a new game. Each player rolls one die, re-rolling ties; the
// higher die moves first and plays both dice as the opening roll.
//
// In a match, Start begins the next game of the match and is rejected while
// a game is in progress or after the match is decided.
func (g *Game) Start() (StartResult, error) {
	if g.match != nil {
		if g.match.Completed() {
			return StartResult{}, newError(KindWrongPhase, "match is complete")
		}
		if g.phase != NotStarted && g.phase != GameOver {
			return StartResult{}, wrongPhase("start the next game", g.phase)
		}
	}
	g.archive()
	g.reset()

	g.setPhase(RollingForFirst)
	var white, black int
	for white == black {
		white, black = dice.Pair(g.dice)
	}
	first := rules.White
	if black > white {
		first = rules.Black
	}
	g.turn = first
	g.turnNumber = 1
	g.roll = [2]int{white, black}
	if first == rules.Black {
		g.roll = [2]int{black, white}
	}
	g.remaining = rules.ExpandRoll(g.roll[0], g.roll[1])
	g.record(match.StartAction(first, g.roll[0], g.roll[1]))
	g.setPhase(Moving)

	g.logger.Info("game started",
		zap.Stringer("first", first),
		zap.Ints("dice", g.roll[:]),
		zap.Bool("doubling", g.doubling),
		zap.Bool("crawford", g.crawford))

	return StartResult{
		FirstPlayer: first,
		Dice:        g.roll,
		ValidMoves:  g.ValidMoves(),
	}, nil
}

// StartMatch begins a match to target points and starts its first game.
func (g *Game) StartMatch(target int) (StartResult, error) {
	m, err := match.New(target)
	if err != nil {
		return StartResult{}, newError(KindInvalidInput, "match length: %v", err)
	}
	g.match = m
	g.records = nil
	g.phase = NotStarted
	return g.Start()
}

// reset clears per-game state and sets up the cube for the new game.
func (g *Game) reset() {
	g.pos = rules.StartingPosition()
	if g.opts.Position != nil {
		g.pos = *g.opts.Position
	}
	g.turn = rules.NoPlayer
	g.turnNumber = 0
	g.roll = [2]int{}
	g.remaining = nil
	g.moves = nil
	g.result = nil
	g.actions = make([]match.Action, 0)
	g.proposedBy = rules.NoPlayer
	g.cube = match.NewCube()

	g.doubling = g.opts.Doubling
	g.crawford = false
	g.startScore = [2]int{}
	if g.match != nil {
		s := g.match.State()
		g.startScore = s.Score
		g.crawford = s.IsCrawford
		g.doubling = g.doubling && g.match.DoublingAllowed()
	}
}

// archive keeps the finished game for the transcript.
func (g *Game) archive() {
	if g.phase != GameOver {
		return
	}
	g.records = append(g.records, g.currentRecord())
}

func (g *Game) currentRecord() match.GameRecord {
	rec := match.GameRecord{
		Number:   len(g.records) + 1,
		Score:    g.startScore,
		Crawford: g.crawford,
		Actions:  append([]match.Action(nil), g.actions...),
	}
	if g.result != nil {
		r := *g.result
		rec.Result = &r
	}
	return rec
}

func (g *Game) setPhase(p Phase) {
	if g.phase != p {
		g.logger.Debug("phase", zap.String("from", string(g.phase)), zap.String("to", string(p)))
	}
	g.phase = p
}

func (g *Game) record(a match.Action) {
	g.actions = append(g.actions, a)
}

// check panics if the position no longer satisfies checker conservation.
func (g *Game) check(op string) {
	if err := g.pos.Validate(); err != nil {
		g.logger.Error("invariant violated", zap.String("op", op), zap.Error(err))
		panic(&InvariantError{Op: op, Err: err})
	}
}

// finish ends the game with r and scores it into the match.
func (g *Game) finish(r match.Result) {
	g.result = &r
	g.setPhase(GameOver)
	if g.match != nil {
		if err := g.match.Record(r); err != nil {
			panic(&InvariantError{Op: "record result", Err: err})
		}
	}
	g.logger.Info("game over",
		zap.Stringer("winner", r.Winner),
		zap.Stringer("victory", r.VictoryType),
		zap.Int("points", r.Points))
}
