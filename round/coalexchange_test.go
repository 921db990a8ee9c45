package round

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/minaorangina/rails/game"
	utils "github.com/minaorangina/rails/internal"
	"github.com/minaorangina/rails/protocol"
)

// giveMinor hands the minor's president certificate to the player.
func giveMinor(t *testing.T, ctx *game.Context, minor *game.Company, to *game.Player) {
	t.Helper()
	cert := ctx.Bank.IPO.FindCertificate(minor, minor.PresidentShares, true)
	require.NotNil(t, cert)
	game.TransferCertificate(cert, ctx.Bank.IPO, to.Portfolio())
}

func TestCoalExchangeRoundNotDue(t *testing.T) {
	ctx := newTestContext(t)

	t.Log("the related major has not floated, so there is nothing to do")
	r := NewCoalExchangeRound(ctx)
	utils.AssertTrue(t, r.Done())
}

func TestCoalExchangeRoundExchange(t *testing.T) {
	ctx := newTestContext(t)
	alice := testPlayer(t, ctx, "alice")
	bola := testPlayer(t, ctx, "bola")
	kv := testCompany(t, ctx, "KV")
	co := floatForOps(t, ctx, "CO", alice, 67)
	giveMinor(t, ctx, kv, bola)

	// assets that should fold into the major
	ctx.Bank.Transfer(nil, kv, 50)
	game.TransferTrain(ctx.Bank.IPO.TrainsOfType("2")[0], ctx.Bank.IPO, kv.Portfolio())

	r := NewCoalExchangeRound(ctx)
	require.False(t, r.Done())
	utils.AssertEqual(t, r.CurrentPlayer(), "alice")

	t.Log("only the seat to act may exchange")
	ok := r.Handle(protocol.Action{Player: "bola", Command: protocol.ExchangeMinor, Company: "KV"})
	utils.AssertEqual(t, ok, false)

	t.Log("exchanging needs the minor's certificate")
	ok = r.Handle(protocol.Action{Player: "alice", Command: protocol.ExchangeMinor, Company: "KV"})
	utils.AssertEqual(t, ok, false)
	require.True(t, r.Handle(protocol.Action{Player: "alice", Command: protocol.Pass}))

	t.Log("bola makes the trade")
	coTreasury := co.Cash()
	require.True(t, r.Handle(protocol.Action{Player: "bola", Command: protocol.ExchangeMinor, Company: "KV"}))

	utils.AssertEqual(t, bola.Portfolio().OwnsShare(co), 10)
	utils.AssertEqual(t, ctx.Bank.Unavailable.CountCertificates(co), 0)
	utils.AssertTrue(t, kv.Closed())
	utils.AssertEqual(t, co.Cash(), coTreasury+50)
	utils.AssertEqual(t, len(co.Portfolio().TrainsOfType("2")), 1)

	t.Log("no exchangeable minor remains, so the round ends")
	utils.AssertTrue(t, r.Done())
}

func TestCoalExchangeRoundAllPass(t *testing.T) {
	ctx := newTestContext(t)
	alice := testPlayer(t, ctx, "alice")
	bola := testPlayer(t, ctx, "bola")
	kv := testCompany(t, ctx, "KV")
	floatForOps(t, ctx, "CO", bola, 67)
	giveMinor(t, ctx, kv, alice)

	r := NewCoalExchangeRound(ctx)
	for _, name := range []string{"alice", "bola", "carol", "dev"} {
		require.True(t, r.Handle(protocol.Action{Player: name, Command: protocol.Pass}))
	}

	utils.AssertTrue(t, r.Done())
	utils.AssertEqual(t, kv.Closed(), false)
}
