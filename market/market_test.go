package market

import (
	"testing"

	utils "github.com/minaorangina/rails/internal"
)

func testConfig() Config {
	return Config{
		SaleDrop: DropOneRow,
		Prices: [][]int{
			{60, 70, 82, 95},
			{55, 65, 76, 88},
			{50, 60, 71, 0},
			{45, 55, 0, 0},
		},
		Flags: []FlagConfig{
			{Row: 0, Col: 3, EndsGame: true},
			{Row: 3, Col: 0, ClosesCompany: true},
			{Row: 2, Col: 0, NoCertLimit: true, NoHoldLimit: true},
		},
	}
}

func mustMarket(t *testing.T, cfg Config) *Market {
	t.Helper()
	m, err := New(cfg)
	utils.AssertNoError(t, err)
	return m
}

func TestMarketConstruction(t *testing.T) {
	t.Run("builds the grid with holes", func(t *testing.T) {
		m := mustMarket(t, testConfig())

		utils.AssertEqual(t, m.NumRows(), 4)
		utils.AssertEqual(t, m.NumCols(), 4)
		utils.AssertEqual(t, m.SpaceAt(0, 0).Price, 60)
		if m.SpaceAt(2, 3) != nil {
			t.Error("expected a hole at 2,3")
		}
	})

	t.Run("applies flags", func(t *testing.T) {
		m := mustMarket(t, testConfig())

		utils.AssertTrue(t, m.SpaceAt(0, 3).EndsGame)
		utils.AssertTrue(t, m.SpaceAt(3, 0).ClosesCompany)
		utils.AssertTrue(t, m.SpaceAt(2, 0).NoCertLimit)
	})

	t.Run("rejects a flag on a hole", func(t *testing.T) {
		cfg := testConfig()
		cfg.Flags = []FlagConfig{{Row: 3, Col: 3, EndsGame: true}}
		_, err := New(cfg)
		utils.AssertErrored(t, err)
	})
}

func TestMarketTokens(t *testing.T) {
	t.Run("AddTokenAtPrice picks the topmost matching cell", func(t *testing.T) {
		m := mustMarket(t, testConfig())

		// 55 appears at 1,0 and 3,1
		tok, err := m.AddTokenAtPrice("PRR", 55)
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, tok.Space().Row, 1)
		utils.AssertEqual(t, tok.Space().Col, 0)
	})

	t.Run("unknown price errors", func(t *testing.T) {
		m := mustMarket(t, testConfig())
		_, err := m.AddTokenAtPrice("PRR", 999)
		utils.AssertErrored(t, err)
	})

	t.Run("tokens stack in arrival order", func(t *testing.T) {
		m := mustMarket(t, testConfig())
		first, _ := m.AddToken("PRR", 1, 1)
		second, _ := m.AddToken("NYC", 1, 1)

		sp := m.SpaceAt(1, 1)
		utils.AssertEqual(t, sp.StackPosition(first), 0)
		utils.AssertEqual(t, sp.StackPosition(second), 1)

		m.RemoveToken(first)
		utils.AssertEqual(t, sp.StackPosition(second), 0)
		utils.AssertEqual(t, first.Price(), 0)
	})
}

func TestMarketMovement(t *testing.T) {
	t.Run("sell drops one row", func(t *testing.T) {
		m := mustMarket(t, testConfig())
		tok, _ := m.AddToken("PRR", 0, 1)

		utils.AssertNoError(t, m.Sell(tok, 3))
		utils.AssertEqual(t, tok.Price(), 65)
	})

	t.Run("sell per share drops one row per share", func(t *testing.T) {
		cfg := testConfig()
		cfg.SaleDrop = DropPerShare
		m := mustMarket(t, cfg)
		tok, _ := m.AddToken("PRR", 0, 1)

		utils.AssertNoError(t, m.Sell(tok, 2))
		utils.AssertEqual(t, tok.Price(), 60) // 2,1
	})

	t.Run("sell clamps at the bottom edge", func(t *testing.T) {
		m := mustMarket(t, testConfig())
		tok, _ := m.AddToken("PRR", 2, 1)

		utils.AssertNoError(t, m.Sell(tok, 1))
		utils.AssertEqual(t, tok.Price(), 55) // 3,1
		utils.AssertNoError(t, m.Sell(tok, 1))
		utils.AssertEqual(t, tok.Price(), 55) // no row below
	})

	t.Run("sell stops above a hole", func(t *testing.T) {
		m := mustMarket(t, testConfig())
		tok, _ := m.AddToken("PRR", 1, 3) // 88; 2,3 is a hole

		utils.AssertNoError(t, m.Sell(tok, 1))
		utils.AssertEqual(t, tok.Price(), 88)
	})

	t.Run("sell stops on a ledge", func(t *testing.T) {
		cfg := testConfig()
		cfg.Flags = append(cfg.Flags, FlagConfig{Row: 1, Col: 1, Ledge: true})
		cfg.SaleDrop = DropPerShare
		m := mustMarket(t, cfg)
		tok, _ := m.AddToken("PRR", 0, 1)

		utils.AssertNoError(t, m.Sell(tok, 3))
		utils.AssertEqual(t, tok.Price(), 65) // stuck on the ledge at 1,1
	})

	t.Run("payout moves right, or up at the right edge", func(t *testing.T) {
		m := mustMarket(t, testConfig())
		tok, _ := m.AddToken("PRR", 1, 1)

		utils.AssertNoError(t, m.Payout(tok))
		utils.AssertEqual(t, tok.Price(), 76) // 1,2

		edge, _ := m.AddToken("NYC", 2, 2) // 3,2 right is off-row
		utils.AssertNoError(t, m.Payout(edge))
		utils.AssertEqual(t, edge.Price(), 76) // up to 1,2
	})

	t.Run("payout at the top right corner stays put", func(t *testing.T) {
		m := mustMarket(t, testConfig())
		tok, _ := m.AddToken("PRR", 0, 3)

		utils.AssertNoError(t, m.Payout(tok))
		utils.AssertEqual(t, tok.Price(), 95)
	})

	t.Run("withhold moves left, or down at the left edge", func(t *testing.T) {
		m := mustMarket(t, testConfig())
		tok, _ := m.AddToken("PRR", 1, 1)

		utils.AssertNoError(t, m.Withhold(tok))
		utils.AssertEqual(t, tok.Price(), 55) // 1,0

		utils.AssertNoError(t, m.Withhold(tok))
		utils.AssertEqual(t, tok.Price(), 50) // down to 2,0
	})

	t.Run("sold out moves up", func(t *testing.T) {
		m := mustMarket(t, testConfig())
		tok, _ := m.AddToken("PRR", 2, 1)

		utils.AssertNoError(t, m.SoldOut(tok))
		utils.AssertEqual(t, tok.Price(), 65) // 1,1
	})

	t.Run("movement on a removed token errors", func(t *testing.T) {
		m := mustMarket(t, testConfig())
		tok, _ := m.AddToken("PRR", 1, 1)
		m.RemoveToken(tok)

		utils.AssertErrored(t, m.Sell(tok, 1))
		utils.AssertErrored(t, m.Payout(tok))
		utils.AssertErrored(t, m.Withhold(tok))
		utils.AssertErrored(t, m.SoldOut(tok))
	})
}

func TestMarketCallbacks(t *testing.T) {
	t.Run("landing on an ends-game space fires the callback", func(t *testing.T) {
		m := mustMarket(t, testConfig())
		var ended string
		m.OnGameEnd = func(owner string) { ended = owner }

		tok, _ := m.AddToken("PRR", 1, 3)
		utils.AssertNoError(t, m.SoldOut(tok)) // to 0,3
		utils.AssertEqual(t, ended, "PRR")
	})

	t.Run("landing on a closes-company space fires the callback", func(t *testing.T) {
		m := mustMarket(t, testConfig())
		var closed string
		m.OnCloseCompany = func(owner string) { closed = owner }

		tok, _ := m.AddToken("PRR", 2, 0)
		utils.AssertNoError(t, m.Withhold(tok)) // left edge: down to 3,0
		utils.AssertEqual(t, closed, "PRR")
	})
}

// Movement never leaves the grid, whatever the operation sequence.
func TestMarketBoundedness(t *testing.T) {
	m := mustMarket(t, testConfig())
	tok, _ := m.AddToken("PRR", 1, 1)

	ops := []func(){
		func() { m.Sell(tok, 2) },
		func() { m.Payout(tok) },
		func() { m.Withhold(tok) },
		func() { m.SoldOut(tok) },
	}
	for i := 0; i < 200; i++ {
		ops[i%len(ops)]()
		sp := tok.Space()
		utils.AssertNotNil(t, sp)
		if sp.Row < 0 || sp.Row >= m.NumRows() || sp.Col < 0 || sp.Col >= m.NumCols() {
			t.Fatalf("token off grid at %d,%d", sp.Row, sp.Col)
		}
	}
}
