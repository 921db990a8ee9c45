package round

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minaorangina/rails/game"
	utils "github.com/minaorangina/rails/internal"
	"github.com/minaorangina/rails/protocol"
)

// moveSingles transfers n single shares of company from the IPO to the
// player, bypassing the action protocol for test setup.
func moveSingles(t *testing.T, ctx *game.Context, c *game.Company, to *game.Player, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		cert := ctx.Bank.IPO.FindCertificate(c, 1, false)
		require.NotNil(t, cert)
		game.TransferCertificate(cert, ctx.Bank.IPO, to.Portfolio())
	}
}

func TestStockRoundStartCompany(t *testing.T) {
	t.Run("starts a public company at par", func(t *testing.T) {
		ctx := newTestContext(t)
		r := NewStockRound(ctx, 2, 0)
		alice := testPlayer(t, ctx, "alice")
		prr := testCompany(t, ctx, "PRR")

		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.StartCompany, Company: "PRR", Par: 67})
		utils.AssertTrue(t, ok)
		utils.AssertTrue(t, prr.Started())
		utils.AssertEqual(t, alice.Cash(), 600-134)
		utils.AssertEqual(t, prr.President(), alice)
	})

	t.Run("rejects an invalid par price", func(t *testing.T) {
		ctx := newTestContext(t)
		r := NewStockRound(ctx, 2, 0)

		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.StartCompany, Company: "PRR", Par: 99})
		utils.AssertEqual(t, ok, false)
	})

	t.Run("privates and minors cannot be started at par", func(t *testing.T) {
		ctx := newTestContext(t)
		r := NewStockRound(ctx, 2, 0)

		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.StartCompany, Company: "SVR", Par: 67})
		utils.AssertEqual(t, ok, false)
		ok = r.Handle(protocol.Action{Player: "alice", Command: protocol.StartCompany, Company: "KV", Par: 67})
		utils.AssertEqual(t, ok, false)
	})

	t.Run("starting a company counts as the turn's buy", func(t *testing.T) {
		ctx := newTestContext(t)
		r := NewStockRound(ctx, 2, 0)

		require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.StartCompany, Company: "PRR", Par: 67}))
		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.StartCompany, Company: "NYC", Par: 67})
		utils.AssertEqual(t, ok, false)
	})
}

func TestStockRoundBuyShare(t *testing.T) {
	t.Run("buys an IPO share at par", func(t *testing.T) {
		ctx := newTestContext(t)
		dev := testPlayer(t, ctx, "dev")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, dev, 67)

		r := NewStockRound(ctx, 2, 0)
		alice := testPlayer(t, ctx, "alice")

		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.BuyShare, Company: "PRR", Source: "ipo"})
		utils.AssertTrue(t, ok)
		utils.AssertEqual(t, alice.Cash(), 600-67)
		utils.AssertEqual(t, alice.Portfolio().OwnsShare(prr), 10)
	})

	t.Run("one certificate per turn", func(t *testing.T) {
		ctx := newTestContext(t)
		dev := testPlayer(t, ctx, "dev")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, dev, 67)

		r := NewStockRound(ctx, 2, 0)
		require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.BuyShare, Company: "PRR", Source: "ipo"}))
		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.BuyShare, Company: "PRR", Source: "ipo"})
		utils.AssertEqual(t, ok, false)
	})

	t.Run("a company that has not started cannot be bought", func(t *testing.T) {
		ctx := newTestContext(t)
		r := NewStockRound(ctx, 2, 0)

		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.BuyShare, Company: "PRR", Source: "ipo"})
		utils.AssertEqual(t, ok, false)
	})

	t.Run("the hold limit caps a player's stake", func(t *testing.T) {
		ctx := newTestContext(t)
		alice := testPlayer(t, ctx, "alice")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, alice, 67)
		moveSingles(t, ctx, prr, alice, 4) // 60% held

		r := NewStockRound(ctx, 2, 0)
		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.BuyShare, Company: "PRR", Source: "ipo"})
		utils.AssertEqual(t, ok, false)
	})

	t.Run("buying completes flotation", func(t *testing.T) {
		ctx := newTestContext(t)
		dev := testPlayer(t, ctx, "dev")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, dev, 67)
		moveSingles(t, ctx, prr, dev, 3) // 50% out of the IPO

		r := NewStockRound(ctx, 2, 0)
		require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.BuyShare, Company: "PRR", Source: "ipo"}))
		utils.AssertTrue(t, prr.Floated())
		utils.AssertEqual(t, prr.Cash(), 670)
	})
}

func TestStockRoundSellShares(t *testing.T) {
	t.Run("sells to the pool at market price and drops the price", func(t *testing.T) {
		ctx := newTestContext(t)
		alice := testPlayer(t, ctx, "alice")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, alice, 67)
		moveSingles(t, ctx, prr, alice, 2)

		r := NewStockRound(ctx, 2, 0)
		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "PRR", Shares: 2})
		utils.AssertTrue(t, ok)
		utils.AssertEqual(t, alice.Cash(), 600-134+134)
		utils.AssertEqual(t, ctx.Bank.Pool.OwnsShare(prr), 20)
		utils.AssertEqual(t, prr.MarketPrice(), 62) // one row down from 67

		t.Log("the pool received the seller's own certificates")
		pool := ctx.Bank.Pool.CertificatesOf(prr)
		require.Len(t, pool, 2)
		for _, cert := range pool {
			utils.AssertEqual(t, cert.President(), false)
		}
	})

	t.Run("no selling in the first stock round", func(t *testing.T) {
		ctx := newTestContext(t)
		alice := testPlayer(t, ctx, "alice")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, alice, 67)
		moveSingles(t, ctx, prr, alice, 2)

		r := NewStockRound(ctx, 1, 0)
		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "PRR", Shares: 1})
		utils.AssertEqual(t, ok, false)
	})

	t.Run("no selling a company bought this turn", func(t *testing.T) {
		ctx := newTestContext(t)
		dev := testPlayer(t, ctx, "dev")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, dev, 67)

		r := NewStockRound(ctx, 2, 0)
		require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.BuyShare, Company: "PRR", Source: "ipo"}))
		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "PRR", Shares: 1})
		utils.AssertEqual(t, ok, false)
	})

	t.Run("no buying a company sold this round", func(t *testing.T) {
		ctx := newTestContext(t)
		alice := testPlayer(t, ctx, "alice")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, alice, 67)
		moveSingles(t, ctx, prr, alice, 2)

		r := NewStockRound(ctx, 2, 0)
		require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "PRR", Shares: 1}))
		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.BuyShare, Company: "PRR", Source: "pool"})
		utils.AssertEqual(t, ok, false)
	})

	t.Run("the pool limit blocks oversized sales", func(t *testing.T) {
		ctx := newTestContext(t)
		alice := testPlayer(t, ctx, "alice")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, alice, 67)
		moveSingles(t, ctx, prr, alice, 1)

		// stuff the pool to its 50% limit
		for i := 0; i < 5; i++ {
			game.TransferCertificate(ctx.Bank.IPO.FindCertificate(prr, 1, false), ctx.Bank.IPO, ctx.Bank.Pool)
		}

		r := NewStockRound(ctx, 2, 0)
		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "PRR", Shares: 1})
		utils.AssertEqual(t, ok, false)
	})

	t.Run("selling past the singles dumps the presidency", func(t *testing.T) {
		ctx := newTestContext(t)
		alice := testPlayer(t, ctx, "alice")
		bola := testPlayer(t, ctx, "bola")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, alice, 67)
		moveSingles(t, ctx, prr, alice, 1)
		moveSingles(t, ctx, prr, bola, 2)

		r := NewStockRound(ctx, 2, 0)
		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "PRR", Shares: 3})
		utils.AssertTrue(t, ok)

		utils.AssertEqual(t, prr.President(), bola)
		utils.AssertEqual(t, alice.Portfolio().OwnsShare(prr), 0)
		utils.AssertEqual(t, ctx.Bank.Pool.OwnsShare(prr), 30)
		utils.AssertEqual(t, alice.Cash(), 600-134+3*67)
	})

	t.Run("the sale is rejected when nobody can take the presidency", func(t *testing.T) {
		ctx := newTestContext(t)
		alice := testPlayer(t, ctx, "alice")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, alice, 67)
		moveSingles(t, ctx, prr, alice, 1)

		r := NewStockRound(ctx, 2, 0)
		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "PRR", Shares: 3})
		utils.AssertEqual(t, ok, false)

		t.Log("no state changed on the rejected sale")
		utils.AssertEqual(t, prr.President(), alice)
		utils.AssertEqual(t, alice.Portfolio().OwnsShare(prr), 30)
		utils.AssertEqual(t, ctx.Bank.Pool.OwnsShare(prr), 0)
	})
}

func TestStockRoundSellRules(t *testing.T) {
	t.Run("sell-buy forbids selling after a buy", func(t *testing.T) {
		cfg := game.SampleConfig()
		cfg.Reporter = game.NullReporter{}
		cfg.Rules.SellRule = game.SellBuy
		ctx, err := game.NewContext(cfg)
		require.NoError(t, err)

		alice := testPlayer(t, ctx, "alice")
		prr := testCompany(t, ctx, "PRR")
		nyc := testCompany(t, ctx, "NYC")
		ctx.StartCompany(prr, alice, 67)
		ctx.StartCompany(nyc, alice, 67)
		moveSingles(t, ctx, prr, alice, 1)

		r := NewStockRound(ctx, 2, 0)
		require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.BuyShare, Company: "NYC", Source: "ipo"}))
		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "PRR", Shares: 1})
		utils.AssertEqual(t, ok, false)
	})

	t.Run("sell-buy-sell allows a sale on both sides of a buy", func(t *testing.T) {
		ctx := newTestContext(t)
		alice := testPlayer(t, ctx, "alice")
		prr := testCompany(t, ctx, "PRR")
		nyc := testCompany(t, ctx, "NYC")
		ctx.StartCompany(prr, alice, 67)
		ctx.StartCompany(nyc, alice, 67)
		moveSingles(t, ctx, prr, alice, 2)

		r := NewStockRound(ctx, 2, 0)
		require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "PRR", Shares: 1}))
		require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.BuyShare, Company: "NYC", Source: "ipo"}))
		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "PRR", Shares: 1})
		utils.AssertTrue(t, ok)
	})

	t.Run("sell-buy-or-buy-sell forbids a second switch", func(t *testing.T) {
		cfg := game.SampleConfig()
		cfg.Reporter = game.NullReporter{}
		cfg.Rules.SellRule = game.SellBuyOrBuySell
		ctx, err := game.NewContext(cfg)
		require.NoError(t, err)

		alice := testPlayer(t, ctx, "alice")
		prr := testCompany(t, ctx, "PRR")
		nyc := testCompany(t, ctx, "NYC")
		ctx.StartCompany(prr, alice, 67)
		ctx.StartCompany(nyc, alice, 67)
		moveSingles(t, ctx, prr, alice, 2)

		r := NewStockRound(ctx, 2, 0)
		require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "PRR", Shares: 1}))
		require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.BuyShare, Company: "NYC", Source: "ipo"}))
		ok := r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "PRR", Shares: 1})
		utils.AssertEqual(t, ok, false)
	})
}

func TestStockRoundClose(t *testing.T) {
	t.Run("a full table of passes ends the round", func(t *testing.T) {
		ctx := newTestContext(t)
		r := NewStockRound(ctx, 1, 0)

		for _, name := range []string{"alice", "bola", "carol", "dev"} {
			require.True(t, r.Handle(protocol.Action{Player: name, Command: protocol.Pass}))
		}
		utils.AssertTrue(t, r.Done())
		utils.AssertEqual(t, r.PriorityIndex(), -1)
	})

	t.Run("a sold-out company's price rises at the close", func(t *testing.T) {
		ctx := newTestContext(t)
		alice := testPlayer(t, ctx, "alice")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, alice, 67)
		moveSingles(t, ctx, prr, alice, 8) // IPO empty, pool empty

		r := NewStockRound(ctx, 2, 0)
		for _, name := range []string{"alice", "bola", "carol", "dev"} {
			require.True(t, r.Handle(protocol.Action{Player: name, Command: protocol.Pass}))
		}
		utils.AssertTrue(t, r.Done())
		utils.AssertEqual(t, prr.MarketPrice(), 71) // one row up from 67
	})

	t.Run("priority goes to the seat after the last actor", func(t *testing.T) {
		ctx := newTestContext(t)
		dev := testPlayer(t, ctx, "dev")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, dev, 67)

		r := NewStockRound(ctx, 2, 0)
		require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.BuyShare, Company: "PRR", Source: "ipo"}))

		// alice's pass ends her turn without counting; the next full
		// sweep of empty turns closes the round
		for _, name := range []string{"alice", "bola", "carol", "dev", "alice"} {
			require.True(t, r.Handle(protocol.Action{Player: name, Command: protocol.Pass}))
		}
		utils.AssertTrue(t, r.Done())
		utils.AssertEqual(t, r.PriorityIndex(), 1)
	})
}

func TestSellErrorsAreNamed(t *testing.T) {
	ctx := newTestContext(t)
	alice := testPlayer(t, ctx, "alice")
	prr := testCompany(t, ctx, "PRR")
	ctx.StartCompany(prr, alice, 67)
	moveSingles(t, ctx, prr, alice, 1)

	r := NewStockRound(ctx, 2, 0)
	_, err := r.planSale(alice, prr, 3, "")
	if !errors.Is(err, game.ErrCannotDumpPresidency) {
		t.Errorf("got %v, want ErrCannotDumpPresidency", err)
	}
}
