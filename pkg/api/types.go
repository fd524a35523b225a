package api

import (
	"github.com/yourusername/bgrules/pkg/game"
	"github.com/yourusername/bgrules/pkg/rules"
)

// ============================================================================
// Request Types
// ============================================================================

// CreateGameRequest is the request body for creating a game.
type CreateGameRequest struct {
	Doubling    bool     `json:"doubling"`               // Enable the doubling cube
	MatchLength int      `json:"match_length,omitempty"` // Points to win; 0 for a single game
	Players     []string `json:"players,omitempty"`      // Names for the transcript, White first
}

// MoveRequest is the request body for a single checker move.
type MoveRequest struct {
	From rules.Point `json:"from"` // "1".."24" or "bar"
	To   rules.Point `json:"to"`   // "1".."24" or "off"
	Die  int         `json:"die"`  // Die value used
}

// RespondRequest answers a pending double.
type RespondRequest struct {
	Accept bool `json:"accept"`
}

// ============================================================================
// Response Types
// ============================================================================

// GameResponse pairs an operation's result with the state it produced.
type GameResponse struct {
	ID     string        `json:"id"`
	Result any           `json:"result,omitempty"`
	State  game.Snapshot `json:"state"`
}

// MovesResponse lists the moves available to the player on turn.
type MovesResponse struct {
	Remaining []int               `json:"remainingMoves"`
	Valid     []rules.SourceMoves `json:"validMoves"`
	Legal     []rules.SourceMoves `json:"legalMoves"`
	Required  rules.Obligation    `json:"requiredMoves"`
	CanEnd    bool                `json:"canEndTurn"`
}

// ErrorResponse is returned when an error occurs.
type ErrorResponse struct {
	Error string `json:"error"`          // Error message
	Code  string `json:"code,omitempty"` // Error kind
}

// HealthResponse is the response for health check.
type HealthResponse struct {
	Status  string     `json:"status"`         // "ok" or "error"
	Version string     `json:"version"`        // Server version
	Games   int        `json:"games"`          // Active games in the store
	Archive bool       `json:"archive"`        // Whether finished games are persisted
	Pool    *PoolStats `json:"pool,omitempty"` // Worker pool statistics
}
