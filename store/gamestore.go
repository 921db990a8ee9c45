// Package store keeps the games a server is hosting: pending tables
// collecting players and running tables with a live round manager.
package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/minaorangina/rails/game"
	"github.com/minaorangina/rails/protocol"
	"github.com/minaorangina/rails/round"
)

var (
	ErrUnknownGameID      = errors.New("unknown game ID")
	ErrUnknownPlayerID    = errors.New("unknown player ID")
	ErrGameAlreadyStarted = errors.New("game has already started")
	ErrNotEnoughPlayers   = errors.New("not enough players to start")
)

func errUnknownInactiveGameID(gameID string) error {
	return fmt.Errorf("pending game with id %q does not exist: %w", gameID, ErrUnknownGameID)
}

// Table is one hosted game: a lobby of pending players that becomes a
// running game once started. It implements game.Reporter so engine
// report lines reach the table's subscribers.
type Table struct {
	id        string
	creatorID string

	mu      sync.Mutex
	pending []protocol.PlayerInfo
	started bool
	reports []string
	subs    []chan protocol.Message

	ctx *game.Context
	mgr *round.Manager
}

// NewTable creates an empty table owned by creatorID.
func NewTable(id, creatorID string) *Table {
	return &Table{id: id, creatorID: creatorID}
}

func (t *Table) ID() string        { return t.id }
func (t *Table) CreatorID() string { return t.creatorID }

// Started reports whether play has begun.
func (t *Table) Started() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.started
}

// Players returns the players seated at the table.
func (t *Table) Players() []protocol.PlayerInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]protocol.PlayerInfo, len(t.pending))
	copy(out, t.pending)
	return out
}

// AddPendingPlayer seats a player at an unstarted table.
func (t *Table) AddPendingPlayer(playerID, name string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return ErrGameAlreadyStarted
	}
	t.pending = append(t.pending, protocol.PlayerInfo{PlayerID: playerID, Name: name})
	return nil
}

// FindPendingPlayer returns the seated player with playerID, or nil.
func (t *Table) FindPendingPlayer(playerID string) *protocol.PlayerInfo {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i := range t.pending {
		if t.pending[i].PlayerID == playerID {
			return &t.pending[i]
		}
	}
	return nil
}

// Start builds the game from the seated players and begins play.
func (t *Table) Start() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.started {
		return ErrGameAlreadyStarted
	}
	if len(t.pending) < 2 {
		return ErrNotEnoughPlayers
	}

	names := make([]string, len(t.pending))
	for i, p := range t.pending {
		names[i] = p.Name
	}
	cfg := game.SampleConfig(names...)
	cfg.Reporter = t

	ctx, err := game.NewContext(cfg)
	if err != nil {
		return err
	}
	t.ctx = ctx
	t.mgr = round.NewManager(ctx)
	t.started = true
	t.mgr.StartGame()
	t.publish(t.mgr.Prompt())
	return nil
}

// Submit routes an action to the running game, publishing the new
// prompt to subscribers.
func (t *Table) Submit(a protocol.Action) (protocol.Message, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return protocol.Message{Command: protocol.Error, Text: "game has not started"}, false
	}
	ok := t.mgr.Submit(a)
	msg := t.mgr.Prompt()
	if ok {
		t.publish(msg)
	}
	return msg, ok
}

// Prompt returns the current decision point.
func (t *Table) Prompt() (protocol.Message, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.started {
		return protocol.Message{}, errors.New("game has not started")
	}
	return t.mgr.Prompt(), nil
}

// Report implements game.Reporter, retaining the line and forwarding
// it to subscribers.
func (t *Table) Report(line string) {
	t.reports = append(t.reports, line)
	t.publish(protocol.Message{Command: protocol.Report, Text: line})
}

// Reports returns every report line so far.
func (t *Table) Reports() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, len(t.reports))
	copy(out, t.reports)
	return out
}

// Subscribe returns a channel of table events. Slow subscribers drop
// messages rather than block the engine.
func (t *Table) Subscribe() <-chan protocol.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	ch := make(chan protocol.Message, 64)
	t.subs = append(t.subs, ch)
	return ch
}

func (t *Table) publish(msg protocol.Message) {
	for _, ch := range t.subs {
		select {
		case ch <- msg:
		default:
		}
	}
}

// GameStore finds and registers hosted tables.
type GameStore interface {
	FindGame(gameID string) *Table
	FindActiveGame(gameID string) *Table
	FindInactiveGame(gameID string) *Table
	FindPendingPlayer(gameID, playerID string) *protocol.PlayerInfo
	AddInactiveGame(t *Table) error
	AddPendingPlayer(gameID, playerID, name string) error
}

// InMemoryGameStore maps game id to table.
type InMemoryGameStore struct {
	mu    sync.Mutex
	games map[string]*Table
}

// NewInMemoryGameStore constructs an InMemoryGameStore.
func NewInMemoryGameStore() *InMemoryGameStore {
	return &InMemoryGameStore{games: map[string]*Table{}}
}

func (s *InMemoryGameStore) FindGame(gameID string) *Table {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.games[gameID]
}

func (s *InMemoryGameStore) FindActiveGame(gameID string) *Table {
	t := s.FindGame(gameID)
	if t == nil || !t.Started() {
		return nil
	}
	return t
}

func (s *InMemoryGameStore) FindInactiveGame(gameID string) *Table {
	t := s.FindGame(gameID)
	if t == nil || t.Started() {
		return nil
	}
	return t
}

func (s *InMemoryGameStore) FindPendingPlayer(gameID, playerID string) *protocol.PlayerInfo {
	t := s.FindGame(gameID)
	if t == nil {
		return nil
	}
	return t.FindPendingPlayer(playerID)
}

func (s *InMemoryGameStore) AddInactiveGame(t *Table) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.games[t.ID()]; exists {
		return fmt.Errorf("game with id %s already exists", t.ID())
	}
	s.games[t.ID()] = t
	return nil
}

func (s *InMemoryGameStore) AddPendingPlayer(gameID, playerID, name string) error {
	t := s.FindInactiveGame(gameID)
	if t == nil {
		return errUnknownInactiveGameID(gameID)
	}
	return t.AddPendingPlayer(playerID, name)
}
