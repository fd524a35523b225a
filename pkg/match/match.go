package match

import (
	"errors"
	"fmt"

	"github.com/yourusername/bgrules/pkg/rules"
)

var (
	// ErrMatchOver is returned when recording into a completed match.
	ErrMatchOver = errors.New("match is already decided")
	// ErrNoResult is returned by Retract when nothing has been recorded.
	ErrNoResult = errors.New("no result to retract")
)

// State is the score of a match in progress.
type State struct {
	Target       int          `json:"targetScore"`
	Score        [2]int       `json:"score"`
	IsCrawford   bool         `json:"isCrawfordGame"`
	CrawfordUsed bool         `json:"crawfordGameUsed"`
	GameNumber   int          `json:"gameNumber"`
	Results      []Result     `json:"results"`
	Winner       rules.Player `json:"winner"`
}

// Match accumulates game results toward a target score. The zero value is
// not usable; call New.
type Match struct {
	state   State
	history []State
}

// New starts a match to target points at game 1.
func New(target int) (*Match, error) {
	if target < 1 {
		return nil, fmt.Errorf("match length %d must be at least 1", target)
	}
	return &Match{state: State{
		Target:     target,
		GameNumber: 1,
		Results:    make([]Result, 0),
		Winner:     rules.NoPlayer,
	}}, nil
}

// State returns a copy of the current score.
func (m *Match) State() State {
	s := m.state
	s.Results = make([]Result, len(m.state.Results))
	copy(s.Results, m.state.Results)
	return s
}

// Completed reports whether a player has reached the target.
func (m *Match) Completed() bool {
	return m.state.Winner != rules.NoPlayer
}

// DoublingAllowed reports whether the current game may use the cube.
func (m *Match) DoublingAllowed() bool {
	return !m.state.IsCrawford
}

// Record adds a finished game's points to the winner's score and advances
// to the next game. The game after the first time either player reaches
// one point short of the target is the Crawford game; that happens at most
// once per match.
func (m *Match) Record(r Result) error {
	if m.Completed() {
		return ErrMatchOver
	}
	if !r.Winner.Valid() {
		return fmt.Errorf("result has no winner")
	}

	prev := m.state
	prev.Results = m.state.Results[:len(m.state.Results):len(m.state.Results)]
	m.history = append(m.history, prev)

	s := &m.state
	s.Score[r.Winner] += r.Points
	s.Results = append(s.Results, r)
	s.GameNumber++

	if s.IsCrawford {
		s.IsCrawford = false
		s.CrawfordUsed = true
	}
	switch {
	case s.Score[r.Winner] >= s.Target:
		s.Winner = r.Winner
	case !s.CrawfordUsed && (s.Score[rules.White] == s.Target-1 || s.Score[rules.Black] == s.Target-1):
		s.IsCrawford = true
	}
	return nil
}

// Retract undoes the most recent Record, used when the winning move of a
// game is taken back.
func (m *Match) Retract() error {
	n := len(m.history)
	if n == 0 {
		return ErrNoResult
	}
	m.state = m.history[n-1]
	m.history = m.history[:n-1]
	return nil
}
