package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yourusername/bgrules/pkg/game"
	"github.com/yourusername/bgrules/pkg/match"
	"github.com/yourusername/bgrules/pkg/rules"
)

const maxBodyBytes = 1 << 16

// Handlers holds the HTTP handlers and the game store.
type Handlers struct {
	store   *Store
	version string
	pool    *WorkerPool
	logger  *zap.SugaredLogger
}

// NewHandlers creates a new Handlers instance. pool may be nil.
func NewHandlers(store *Store, version string, pool *WorkerPool, logger *zap.SugaredLogger) *Handlers {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Handlers{
		store:   store,
		version: version,
		pool:    pool,
		logger:  logger,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, msg string, code string) {
	writeJSON(w, status, ErrorResponse{
		Error: msg,
		Code:  code,
	})
}

// errorStatus maps an operation error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	var ge *game.Error
	var ie *game.InvariantError
	switch {
	case errors.As(err, &ie):
		return http.StatusInternalServerError, "invariant_violated"
	case errors.As(err, &ge):
		switch ge.Kind {
		case game.KindNoGame:
			return http.StatusNotFound, string(ge.Kind)
		case game.KindInvalidInput, game.KindInvalidMove, game.KindMustPlayRequired:
			return http.StatusUnprocessableEntity, string(ge.Kind)
		case game.KindUndoHistoryMismatch:
			return http.StatusInternalServerError, string(ge.Kind)
		default:
			return http.StatusConflict, string(ge.Kind)
		}
	case errors.Is(err, ErrStoreFull):
		return http.StatusServiceUnavailable, "store_full"
	case errors.Is(err, ErrBusy):
		return http.StatusServiceUnavailable, "busy"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "busy"
	}
	return http.StatusInternalServerError, "internal"
}

func (h *Handlers) fail(w http.ResponseWriter, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Errorw("request failed", "code", code, "error", err)
	}
	writeError(w, status, err.Error(), code)
}

func invalidInput(format string, args ...any) error {
	return &game.Error{Kind: game.KindInvalidInput, Message: fmt.Sprintf(format, args...)}
}

// operation is one state-changing call on a game. payload carries the
// request body, which most operations ignore.
type operation func(g *game.Game, payload json.RawMessage) (any, error)

// operations is shared by the REST routes and the websocket channel.
var operations = map[string]operation{
	"roll": func(g *game.Game, _ json.RawMessage) (any, error) {
		return g.RollDice()
	},
	"move": func(g *game.Game, payload json.RawMessage) (any, error) {
		var req MoveRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, invalidInput("invalid move request: %v", err)
		}
		return g.MakeMove(rules.Move{From: req.From, To: req.To, Die: req.Die})
	},
	"end_turn": func(g *game.Game, _ json.RawMessage) (any, error) {
		return g.EndTurn()
	},
	"undo": func(g *game.Game, _ json.RawMessage) (any, error) {
		return g.UndoLastMove()
	},
	"undo_all": func(g *game.Game, _ json.RawMessage) (any, error) {
		return g.UndoAllMovesThisTurn()
	},
	"double": func(g *game.Game, _ json.RawMessage) (any, error) {
		return g.ProposeDouble()
	},
	"respond": func(g *game.Game, payload json.RawMessage) (any, error) {
		var req RespondRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return nil, invalidInput("invalid respond request: %v", err)
		}
		return g.RespondToDouble(req.Accept)
	},
	"next": func(g *game.Game, _ json.RawMessage) (any, error) {
		return g.Start()
	},
}

// run executes a named operation on the session under its lock. Unless
// wait is set, a full op lane fails with ErrBusy instead of queueing.
func (h *Handlers) run(ctx context.Context, s *Session, name string, payload json.RawMessage, wait bool) (GameResponse, error) {
	op, ok := operations[name]
	if !ok {
		return GameResponse{}, invalidInput("unknown operation %q", name)
	}
	if h.pool != nil {
		switch {
		case wait:
			if err := h.pool.AcquireOp(ctx); err != nil {
				return GameResponse{}, err
			}
		case !h.pool.TryAcquireOp():
			return GameResponse{}, ErrBusy
		}
		defer h.pool.ReleaseOp()
	}

	out, snap, err := s.Do(ctx, func(g *game.Game) (any, error) {
		return op(g, payload)
	})
	if err != nil {
		h.logger.Debugw("operation rejected", "session", s.ID, "op", name, "error", err)
		return GameResponse{}, err
	}
	h.logger.Debugw("operation", "session", s.ID, "op", name, "phase", snap.Phase)
	return GameResponse{ID: s.ID, Result: out, State: snap}, nil
}

// serveOp is the REST wrapper around run.
func (h *Handlers) serveOp(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, err := h.store.Get(chi.URLParam(r, "id"))
		if err != nil {
			h.fail(w, err)
			return
		}
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			h.fail(w, invalidInput("read body: %v", err))
			return
		}
		op := name
		if op == "undo" && r.URL.Query().Get("all") == "true" {
			op = "undo_all"
		}
		resp, err := h.run(r.Context(), s, op, payload, true)
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Health handles GET /api/health
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: h.version,
		Games:   h.store.Len(),
		Archive: h.store.archive != nil,
	}
	if h.pool != nil {
		stats := h.pool.Stats()
		resp.Pool = &stats
	}
	writeJSON(w, http.StatusOK, resp)
}

// CreateGame handles POST /api/games
func (h *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error(), string(game.KindInvalidInput))
		return
	}
	if req.MatchLength < 0 {
		h.fail(w, invalidInput("match_length must not be negative"))
		return
	}

	s, start, err := h.store.Create(req)
	if err != nil {
		h.fail(w, err)
		return
	}
	snap := s.Snapshot()

	h.logger.Infow("game created", "session", s.ID, "doubling", req.Doubling, "match_length", req.MatchLength)
	writeJSON(w, http.StatusCreated, GameResponse{ID: s.ID, Result: start, State: snap})
}

// GetGame handles GET /api/games/{id}
func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, GameResponse{ID: s.ID, State: s.Snapshot()})
}

// DeleteGame handles DELETE /api/games/{id}
func (h *Handlers) DeleteGame(w http.ResponseWriter, r *http.Request) {
	if !h.store.Delete(chi.URLParam(r, "id")) {
		h.fail(w, game.ErrNoGame)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// moves collects the move lists for the player on turn, optionally
// narrowed to one die value.
func (h *Handlers) moves(ctx context.Context, s *Session, die int) (MovesResponse, error) {
	if h.pool != nil {
		if err := h.pool.AcquireSearch(ctx); err != nil {
			return MovesResponse{}, err
		}
		defer h.pool.ReleaseSearch()
	}

	var resp MovesResponse
	s.View(func(g *game.Game) {
		resp = MovesResponse{
			Remaining: g.Remaining(),
			Valid:     g.ValidMoves(),
			Legal:     g.LegalMoves(),
			Required:  g.RequiredMoves(),
			CanEnd:    g.CanEndTurn(),
		}
		if die > 0 {
			resp.Valid = g.FilterMovesByDie(resp.Valid, die)
			resp.Legal = g.FilterMovesByDie(resp.Legal, die)
		}
	})
	return resp, nil
}

// Moves handles GET /api/games/{id}/moves?die=N
func (h *Handlers) Moves(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	die := 0
	if v := r.URL.Query().Get("die"); v != "" {
		die, err = strconv.Atoi(v)
		if err != nil || die < 1 || die > 6 {
			h.fail(w, invalidInput("die must be 1-6, got %q", v))
			return
		}
	}
	resp, err := h.moves(r.Context(), s, die)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Transcript handles GET /api/games/{id}/transcript. The body is a
// Jellyfish MAT file of every game played at the table.
func (h *Handlers) Transcript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var t *match.Transcript
	s, err := h.store.Get(id)
	switch {
	case err == nil:
		t = s.Transcript()
	case errors.Is(err, game.ErrNoGame):
		// Deleted sessions are still served from the archive.
		if t, err = h.store.ArchivedTranscript(r.Context(), id); err != nil {
			h.fail(w, err)
			return
		}
	default:
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", id+".mat"))
	if err := match.ExportMAT(w, t); err != nil {
		h.logger.Errorw("transcript export", "session", id, "error", err)
	}
}

// Board handles GET /api/games/{id}/board, the table as a FIBS board line.
func (h *Handlers) Board(w http.ResponseWriter, r *http.Request) {
	s, err := h.store.Get(chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	var b match.FIBSBoard
	s.View(func(g *game.Game) {
		b = g.FIBSBoard(s.Players)
	})
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintln(w, b.String())
}
