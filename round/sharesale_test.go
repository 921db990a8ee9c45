package round

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minaorangina/rails/game"
	utils "github.com/minaorangina/rails/internal"
	"github.com/minaorangina/rails/protocol"
)

func TestShareSellingRoundRaise(t *testing.T) {
	ctx := newTestContext(t)
	alice := testPlayer(t, ctx, "alice")
	prr := testCompany(t, ctx, "PRR")
	nyc := testCompany(t, ctx, "NYC")
	ctx.StartCompany(prr, alice, 67)
	ctx.StartCompany(nyc, alice, 100)
	moveSingles(t, ctx, nyc, alice, 2)

	r := NewShareSellingRound(ctx, &ShareSaleRequest{President: alice, Company: prr, CashNeeded: 150})
	require.False(t, r.Done())
	utils.AssertEqual(t, r.CurrentPlayer(), "alice")
	utils.AssertEqual(t, r.Remaining(), 150)

	t.Log("nobody else may act")
	ok := r.Handle(protocol.Action{Player: "bola", Command: protocol.SellShares, Company: "NYC", Shares: 1})
	utils.AssertEqual(t, ok, false)

	t.Log("only selling is legal")
	ok = r.Handle(protocol.Action{Player: "alice", Command: protocol.BuyShare, Company: "NYC"})
	utils.AssertEqual(t, ok, false)

	cashBefore := alice.Cash()
	require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "NYC", Shares: 2}))

	utils.AssertEqual(t, alice.Cash(), cashBefore+200)
	utils.AssertEqual(t, ctx.Bank.Pool.OwnsShare(nyc), 20)
	utils.AssertTrue(t, r.Done())
	utils.AssertEqual(t, alice.Bankrupt(), false)
}

func TestShareSellingRoundProtectsOperatingCompany(t *testing.T) {
	ctx := newTestContext(t)
	alice := testPlayer(t, ctx, "alice")
	prr := testCompany(t, ctx, "PRR")
	ctx.StartCompany(prr, alice, 67)
	moveSingles(t, ctx, prr, alice, 1)

	r := NewShareSellingRound(ctx, &ShareSaleRequest{President: alice, Company: prr, CashNeeded: 500})
	require.False(t, r.Done())

	t.Log("a sale that would dump the operating company's presidency is rejected")
	_, err := r.planSale("alice", prr, 2)
	require.ErrorIs(t, err, game.ErrCannotDumpPresidency)

	t.Log("selling down to the president's certificate is fine")
	require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "PRR", Shares: 1}))
	utils.AssertEqual(t, prr.President(), alice)
}

func TestShareSellingRoundBankruptcy(t *testing.T) {
	t.Run("a president with nothing to sell goes bankrupt immediately", func(t *testing.T) {
		ctx := newTestContext(t)
		alice := testPlayer(t, ctx, "alice")
		prr := testCompany(t, ctx, "PRR")
		ctx.StartCompany(prr, alice, 67)

		r := NewShareSellingRound(ctx, &ShareSaleRequest{President: alice, Company: prr, CashNeeded: 80})

		utils.AssertTrue(t, r.Done())
		utils.AssertTrue(t, alice.Bankrupt())
		utils.AssertTrue(t, ctx.BankruptcyDeclared)
	})

	t.Run("running out of sellable shares mid-round is bankruptcy", func(t *testing.T) {
		ctx := newTestContext(t)
		alice := testPlayer(t, ctx, "alice")
		prr := testCompany(t, ctx, "PRR")
		nyc := testCompany(t, ctx, "NYC")
		ctx.StartCompany(prr, alice, 67)
		ctx.StartCompany(nyc, alice, 100)
		moveSingles(t, ctx, nyc, alice, 1)

		r := NewShareSellingRound(ctx, &ShareSaleRequest{President: alice, Company: prr, CashNeeded: 250})
		require.False(t, r.Done())

		require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.SellShares, Company: "NYC", Shares: 1}))

		t.Log("100 raised of 250, and no further sale exists")
		utils.AssertTrue(t, r.Done())
		utils.AssertTrue(t, alice.Bankrupt())
	})
}
