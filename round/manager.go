package round

import (
	"sort"

	"github.com/minaorangina/rails/game"
	"github.com/minaorangina/rails/protocol"
)

// Manager is the round orchestrator: it decides which round type runs
// after the one that just finished, inserts a minor exchange round when
// one is due, and handles the share-selling interrupt.
type Manager struct {
	ctx     *game.Context
	current Round

	// interrupted holds the operating round suspended by a forced
	// share sale, resumed once the interrupt finishes
	interrupted Round

	srCount  int
	orCount  int // cumulative operating rounds
	orInSet  int // operating rounds played in the current set
	priority int // seat with priority for the next stock round

	gameOver bool
	ranking  []*game.Player
}

// NewManager creates the orchestrator for ctx.
func NewManager(ctx *game.Context) *Manager {
	return &Manager{ctx: ctx}
}

// StartGame begins play with the start round.
func (m *Manager) StartGame() {
	m.current = NewStartRound(m.ctx)
	m.advance()
}

// Current returns the round in progress, or nil after game end.
func (m *Manager) Current() Round {
	if m.gameOver {
		return nil
	}
	return m.current
}

// GameOver reports whether the game has ended.
func (m *Manager) GameOver() bool { return m.gameOver }

// Ranking returns the players in final order, best first. Empty until
// the game ends.
func (m *Manager) Ranking() []*game.Player {
	out := make([]*game.Player, len(m.ranking))
	copy(out, m.ranking)
	return out
}

// Prompt describes the current decision point.
func (m *Manager) Prompt() protocol.Message {
	if m.gameOver {
		return protocol.Message{Command: protocol.GameOver, Text: m.rankingText()}
	}
	return m.current.Prompt()
}

// Submit routes one action to the current round, then advances through
// any round transitions it caused.
func (m *Manager) Submit(a protocol.Action) bool {
	if m.gameOver || m.current == nil {
		m.ctx.Reportf("%s rejected: the game is over", a.Command)
		return false
	}
	ok := m.current.Handle(a)
	if ok {
		m.advance()
	}
	return ok
}

// advance moves through interrupt and round transitions until a round
// is awaiting input or the game ends.
func (m *Manager) advance() {
	for {
		if m.ctx.BankruptcyDeclared {
			m.endGame()
			return
		}

		// a trainless operating company may suspend the round for a
		// forced share sale
		if or, ok := m.current.(*OperatingRound); ok && or.PendingShareSale != nil {
			req := or.PendingShareSale
			or.PendingShareSale = nil
			m.interrupted = or
			m.current = NewShareSellingRound(m.ctx, req)
		}

		if !m.current.Done() {
			return
		}
		if !m.nextRound() {
			return
		}
	}
}

// nextRound installs the round following the completed one. Returns
// false once the game is over.
func (m *Manager) nextRound() bool {
	switch r := m.current.(type) {
	case *ShareSellingRound:
		m.current = m.interrupted
		m.interrupted = nil
		return true

	case *StartRound:
		m.priority = r.PriorityIndex()
		return m.enterInterstitialOrStock()

	case *CoalExchangeRound:
		m.srCount++
		m.current = NewStockRound(m.ctx, m.srCount, m.priority)
		return true

	case *StockRound:
		if p := r.PriorityIndex(); p >= 0 {
			m.priority = p
		}
		if m.ctx.EndsGameTriggered {
			m.endGame()
			return false
		}
		m.orInSet = 0
		m.orCount++
		m.orInSet++
		m.current = NewOperatingRound(m.ctx, m.orCount)
		return true

	case *OperatingRound:
		if m.ctx.EndsGameTriggered {
			m.endGame()
			return false
		}
		if m.orInSet < m.ctx.Phases.Current().OperatingRounds {
			m.orCount++
			m.orInSet++
			m.current = NewOperatingRound(m.ctx, m.orCount)
			return true
		}
		// a broken bank ends the game only once the set completes
		if m.ctx.Bank.Broken() {
			m.endGame()
			return false
		}
		return m.enterInterstitialOrStock()
	}
	return false
}

// enterInterstitialOrStock inserts a minor exchange round when one is
// due, otherwise starts the next stock round.
func (m *Manager) enterInterstitialOrStock() bool {
	if exch := NewCoalExchangeRound(m.ctx); !exch.Done() {
		m.current = exch
		return true
	}
	m.srCount++
	m.current = NewStockRound(m.ctx, m.srCount, m.priority)
	return true
}

// endGame computes the final ranking by player worth.
func (m *Manager) endGame() {
	m.gameOver = true
	m.ranking = m.ctx.Players()
	sort.SliceStable(m.ranking, func(i, j int) bool {
		return m.ctx.PlayerWorth(m.ranking[i]) > m.ctx.PlayerWorth(m.ranking[j])
	})
	m.ctx.Reportf("the game is over")
	for i, p := range m.ranking {
		m.ctx.Reportf("%d. %s with %d", i+1, p.Name(), m.ctx.PlayerWorth(p))
	}
}

func (m *Manager) rankingText() string {
	if len(m.ranking) == 0 {
		return ""
	}
	return m.ranking[0].Name() + " wins"
}
