package api

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yourusername/bgrules/internal/storage/sqlite"
	"github.com/yourusername/bgrules/pkg/dice"
	"github.com/yourusername/bgrules/pkg/game"
	"github.com/yourusername/bgrules/pkg/match"
)

// ErrStoreFull is returned when the store already holds its maximum number
// of games.
var ErrStoreFull = errors.New("too many active games")

// Archive persists finished games. *sqlite.Store implements it. The
// readers return sqlite.ErrNotFound for a session with nothing saved.
type Archive interface {
	SaveGame(ctx context.Context, sessionID string, rec match.GameRecord) error
	SaveMatch(ctx context.Context, sessionID string, state match.State) error
	Games(ctx context.Context, sessionID string) ([]match.GameRecord, error)
	Match(ctx context.Context, sessionID string) (match.State, error)
}

// Session is one game table. Every access to the game goes through Do,
// which holds the session lock, so a game only ever has one writer.
type Session struct {
	ID      string
	Created time.Time
	Players [2]string

	mu     sync.Mutex
	game   *game.Game
	subs   map[chan game.Snapshot]struct{}
	store  *Store
	logger *zap.SugaredLogger
}

// Do runs fn with exclusive access to the game. After fn returns, a
// finished game is archived and subscribers receive the new state. An
// invariant panic inside fn is returned as a *game.InvariantError.
func (s *Session) Do(ctx context.Context, fn func(g *game.Game) (any, error)) (out any, snap game.Snapshot, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			ie, ok := r.(*game.InvariantError)
			if !ok {
				panic(r)
			}
			s.logger.Errorw("invariant violated", "op", ie.Op, "error", ie.Err)
			out, err = nil, ie
		}
	}()

	before, games := s.game.Phase(), len(s.game.Records())
	out, err = fn(s.game)
	snap = s.game.Snapshot()
	if err != nil {
		return nil, snap, err
	}
	switch {
	case snap.Phase == game.GameOver && before != game.GameOver:
		s.archive(ctx, snap)
	case before == game.GameOver && snap.Phase != game.GameOver && len(s.game.Records()) == games:
		// The winning move was taken back; overwrite the saved result.
		s.archive(ctx, snap)
	}
	s.publish(snap)
	return out, snap, nil
}

// Snapshot returns the current state of the game.
func (s *Session) Snapshot() game.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Snapshot()
}

// View runs fn under the session lock without publishing.
func (s *Session) View(fn func(g *game.Game)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.game)
}

func (s *Session) archive(ctx context.Context, snap game.Snapshot) {
	a := s.store.archive
	if a == nil {
		return
	}
	records := s.game.Records()
	if len(records) == 0 {
		return
	}
	rec := records[len(records)-1]
	if err := a.SaveGame(ctx, s.ID, rec); err != nil {
		s.logger.Errorw("archive game", "game", rec.Number, "error", err)
		return
	}
	if snap.Match != nil {
		if err := a.SaveMatch(ctx, s.ID, *snap.Match); err != nil {
			s.logger.Errorw("archive match", "error", err)
			return
		}
	}
	s.logger.Infow("game archived", "game", rec.Number)
}

// Subscribe registers for state pushes. The returned cancel func must be
// called to unregister.
func (s *Session) Subscribe() (<-chan game.Snapshot, func()) {
	ch := make(chan game.Snapshot, 8)
	s.mu.Lock()
	s.subs[ch] = struct{}{}
	s.mu.Unlock()

	return ch, func() {
		s.mu.Lock()
		if _, ok := s.subs[ch]; ok {
			delete(s.subs, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
}

// publish sends snap to every subscriber. Slow subscribers miss updates
// rather than block the game.
func (s *Session) publish(snap game.Snapshot) {
	for ch := range s.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}

// Transcript builds the MAT transcript of every game played so far.
func (s *Session) Transcript() *match.Transcript {
	s.mu.Lock()
	defer s.mu.Unlock()

	length := 0
	if m := s.game.Match(); m != nil {
		length = m.Target
	}
	t := match.NewTranscript(s.Players[0], s.Players[1], length)
	t.Date = s.Created.Format("2006-01-02")
	t.Games = s.game.Records()
	return t
}

// StoreConfig configures a Store.
type StoreConfig struct {
	MaxGames int
	Archive  Archive
	Logger   *zap.SugaredLogger
	// NewDice supplies a dice source per game. Defaults to a random source.
	NewDice func() (dice.Source, error)
}

// Store keeps the active games in memory.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	max      int
	archive  Archive
	logger   *zap.SugaredLogger
	newDice  func() (dice.Source, error)
}

// NewStore creates an empty store.
func NewStore(cfg StoreConfig) *Store {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.NewDice == nil {
		cfg.NewDice = func() (dice.Source, error) {
			seed, err := dice.NewSeed()
			if err != nil {
				return nil, err
			}
			return dice.NewRandom(seed), nil
		}
	}
	return &Store{
		sessions: make(map[string]*Session),
		max:      cfg.MaxGames,
		archive:  cfg.Archive,
		logger:   cfg.Logger,
		newDice:  cfg.NewDice,
	}
}

// Create starts a new game, or the first game of a match when matchLength
// is positive.
func (st *Store) Create(req CreateGameRequest) (*Session, game.StartResult, error) {
	id := uuid.NewString()
	logger := st.logger.With("session", id)

	src, err := st.newDice()
	if err != nil {
		return nil, game.StartResult{}, err
	}
	g, err := game.New(game.Options{
		Doubling: req.Doubling,
		Dice:     src,
		Logger:   logger.Desugar(),
	})
	if err != nil {
		return nil, game.StartResult{}, err
	}

	var start game.StartResult
	if req.MatchLength > 0 {
		start, err = g.StartMatch(req.MatchLength)
	} else {
		start, err = g.Start()
	}
	if err != nil {
		return nil, game.StartResult{}, err
	}

	s := &Session{
		ID:      id,
		Created: time.Now().UTC(),
		Players: playerNames(req.Players),
		game:    g,
		subs:    make(map[chan game.Snapshot]struct{}),
		store:   st,
		logger:  logger,
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	if st.max > 0 && len(st.sessions) >= st.max {
		return nil, game.StartResult{}, ErrStoreFull
	}
	st.sessions[s.ID] = s
	return s, start, nil
}

// ArchivedTranscript rebuilds the transcript of a session that is no
// longer in memory from the archive. Player names are not archived.
func (st *Store) ArchivedTranscript(ctx context.Context, id string) (*match.Transcript, error) {
	if st.archive == nil {
		return nil, game.ErrNoGame
	}
	games, err := st.archive.Games(ctx, id)
	if errors.Is(err, sqlite.ErrNotFound) {
		return nil, game.ErrNoGame
	}
	if err != nil {
		return nil, fmt.Errorf("load archived games: %w", err)
	}

	length := 0
	state, err := st.archive.Match(ctx, id)
	switch {
	case err == nil:
		length = state.Target
	case !errors.Is(err, sqlite.ErrNotFound):
		return nil, fmt.Errorf("load archived match: %w", err)
	}
	t := match.NewTranscript("White", "Black", length)
	t.Games = games
	return t, nil
}

// Get returns the session with id or game.ErrNoGame.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return nil, game.ErrNoGame
	}
	return s, nil
}

// Delete drops a session.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// Len is the number of active games.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

func playerNames(names []string) [2]string {
	out := [2]string{"White", "Black"}
	for i := 0; i < len(names) && i < 2; i++ {
		if names[i] != "" {
			out[i] = names[i]
		}
	}
	return out
}
