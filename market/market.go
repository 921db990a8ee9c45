// Package market implements the 2-D stock price grid. Companies are
// represented on the grid by tokens; movement rules (sell, payout,
// withhold, sold out) relocate tokens and clamp at the grid edges.
package market

import (
	"errors"
	"fmt"
)

var (
	ErrOffGrid      = errors.New("coordinates outside the stock market grid")
	ErrEmptySpace   = errors.New("no stock space at those coordinates")
	ErrUnknownToken = errors.New("token is not on the stock market")
)

// Space is a single cell of the grid.
type Space struct {
	Row, Col int
	Price    int

	// movement-rule flags
	NoCertLimit   bool
	NoHoldLimit   bool
	NoBuyLimit    bool
	ClosesCompany bool
	EndsGame      bool
	Ledge         bool

	tokens []*Token
}

// Tokens returns the tokens on this space in stack order.
// Index 0 arrived first and wins operating-order tie-breaks.
func (s *Space) Tokens() []*Token {
	out := make([]*Token, len(s.tokens))
	copy(out, s.tokens)
	return out
}

// StackPosition returns the position of t on this space, or -1.
func (s *Space) StackPosition(t *Token) int {
	for i, tok := range s.tokens {
		if tok == t {
			return i
		}
	}
	return -1
}

// Token is a company's marker on the grid.
type Token struct {
	Owner string
	space *Space
}

// Space returns the cell the token currently occupies, or nil if the
// token has not been placed.
func (t *Token) Space() *Space {
	return t.space
}

// Price returns the token's current share price, or zero if unplaced.
func (t *Token) Price() int {
	if t.space == nil {
		return 0
	}
	return t.space.Price
}

// SaleDrop decides how many rows a token drops when shares are sold.
// Games disagree on this rule, so it is configured per market.
type SaleDrop func(shares int) int

// DropOneRow drops a single row regardless of the number of shares sold.
func DropOneRow(int) int { return 1 }

// DropPerShare drops one row for every share sold.
func DropPerShare(shares int) int { return shares }

// Market is the stock market grid.
type Market struct {
	grid     [][]*Space // row-major; nil entries are holes in the grid
	saleDrop SaleDrop

	// OnCloseCompany fires when a token lands on a ClosesCompany space.
	// OnGameEnd fires when a token lands on an EndsGame space.
	OnCloseCompany func(owner string)
	OnGameEnd      func(owner string)
}

// Config describes a market grid. Prices is row-major; a zero price is a
// hole. Flag coordinates refer to row/col positions in Prices.
type Config struct {
	Prices   [][]int
	SaleDrop SaleDrop
	Flags    []FlagConfig
}

// FlagConfig attaches movement-rule flags to one cell.
type FlagConfig struct {
	Row, Col int
	NoCertLimit,
	NoHoldLimit,
	NoBuyLimit,
	ClosesCompany,
	EndsGame,
	Ledge bool
}

// New builds a market from cfg.
func New(cfg Config) (*Market, error) {
	if len(cfg.Prices) == 0 {
		return nil, errors.New("market config has no rows")
	}

	m := &Market{saleDrop: cfg.SaleDrop}
	if m.saleDrop == nil {
		m.saleDrop = DropOneRow
	}

	for r, row := range cfg.Prices {
		spaces := make([]*Space, len(row))
		for c, price := range row {
			if price == 0 {
				continue
			}
			spaces[c] = &Space{Row: r, Col: c, Price: price}
		}
		m.grid = append(m.grid, spaces)
	}

	for _, f := range cfg.Flags {
		sp := m.spaceAt(f.Row, f.Col)
		if sp == nil {
			return nil, fmt.Errorf("%w: flag at %d,%d", ErrEmptySpace, f.Row, f.Col)
		}
		sp.NoCertLimit = f.NoCertLimit
		sp.NoHoldLimit = f.NoHoldLimit
		sp.NoBuyLimit = f.NoBuyLimit
		sp.ClosesCompany = f.ClosesCompany
		sp.EndsGame = f.EndsGame
		sp.Ledge = f.Ledge
	}

	return m, nil
}

// NumRows returns the number of grid rows.
func (m *Market) NumRows() int { return len(m.grid) }

// NumCols returns the widest row's length.
func (m *Market) NumCols() int {
	max := 0
	for _, row := range m.grid {
		if len(row) > max {
			max = len(row)
		}
	}
	return max
}

func (m *Market) spaceAt(row, col int) *Space {
	if row < 0 || row >= len(m.grid) {
		return nil
	}
	if col < 0 || col >= len(m.grid[row]) {
		return nil
	}
	return m.grid[row][col]
}

// SpaceAt returns the cell at row/col, or nil for holes and off-grid
// coordinates.
func (m *Market) SpaceAt(row, col int) *Space {
	return m.spaceAt(row, col)
}

// AddToken places a new token for owner on the cell at row/col.
func (m *Market) AddToken(owner string, row, col int) (*Token, error) {
	sp := m.spaceAt(row, col)
	if sp == nil {
		return nil, fmt.Errorf("%w: %d,%d", ErrOffGrid, row, col)
	}
	t := &Token{Owner: owner}
	m.attach(t, sp)
	return t, nil
}

// AddTokenAtPrice places a new token on the leftmost cell with the given
// price. Used for setting a par price.
func (m *Market) AddTokenAtPrice(owner string, price int) (*Token, error) {
	for _, row := range m.grid {
		for _, sp := range row {
			if sp != nil && sp.Price == price {
				t := &Token{Owner: owner}
				m.attach(t, sp)
				return t, nil
			}
		}
	}
	return nil, fmt.Errorf("no stock space priced %d", price)
}

// RemoveToken takes a token off the grid (company closed).
func (m *Market) RemoveToken(t *Token) {
	m.detach(t)
	t.space = nil
}

func (m *Market) attach(t *Token, sp *Space) {
	m.detach(t)
	t.space = sp
	sp.tokens = append(sp.tokens, t)
}

func (m *Market) detach(t *Token) {
	if t.space == nil {
		return
	}
	for i, tok := range t.space.tokens {
		if tok == t {
			t.space.tokens = append(t.space.tokens[:i], t.space.tokens[i+1:]...)
			break
		}
	}
	t.space = nil
}

// moveTo relocates t if the destination exists; a missing destination
// leaves the token where it is.
func (m *Market) moveTo(t *Token, row, col int) {
	sp := m.spaceAt(row, col)
	if sp == nil || sp == t.space {
		return
	}
	m.attach(t, sp)

	if sp.ClosesCompany && m.OnCloseCompany != nil {
		m.OnCloseCompany(t.Owner)
	}
	if sp.EndsGame && m.OnGameEnd != nil {
		m.OnGameEnd(t.Owner)
	}
}

// Sell drops the token by the market's sale-drop rule, one row at a
// time so the token stops at the bottom edge or above a hole.
func (m *Market) Sell(t *Token, shares int) error {
	if t.space == nil {
		return ErrUnknownToken
	}
	drop := m.saleDrop(shares)
	for i := 0; i < drop; i++ {
		cur := t.space
		if cur.Ledge {
			break
		}
		next := m.spaceAt(cur.Row+1, cur.Col)
		if next == nil {
			break
		}
		m.moveTo(t, cur.Row+1, cur.Col)
		if t.space == cur {
			break
		}
	}
	return nil
}

// Payout moves the token right, or up at the rightmost column.
func (m *Market) Payout(t *Token) error {
	if t.space == nil {
		return ErrUnknownToken
	}
	cur := t.space
	if m.spaceAt(cur.Row, cur.Col+1) != nil {
		m.moveTo(t, cur.Row, cur.Col+1)
	} else {
		m.moveTo(t, cur.Row-1, cur.Col)
	}
	return nil
}

// Withhold moves the token left, or down at the leftmost column.
func (m *Market) Withhold(t *Token) error {
	if t.space == nil {
		return ErrUnknownToken
	}
	cur := t.space
	if cur.Col > 0 && m.spaceAt(cur.Row, cur.Col-1) != nil {
		m.moveTo(t, cur.Row, cur.Col-1)
	} else {
		m.moveTo(t, cur.Row+1, cur.Col)
	}
	return nil
}

// SoldOut moves the token up one row.
func (m *Market) SoldOut(t *Token) error {
	if t.space == nil {
		return ErrUnknownToken
	}
	m.moveTo(t, t.space.Row-1, t.space.Col)
	return nil
}
