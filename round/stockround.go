package round

import (
	"fmt"

	"github.com/minaorangina/rails/game"
	"github.com/minaorangina/rails/market"
	"github.com/minaorangina/rails/protocol"
)

// StockRound lets players start companies and trade certificates. The
// round ends when every player passes in sequence; priority for the
// next stock round goes to the seat after the last player to act.
type StockRound struct {
	base

	number    int // 1-based stock round counter
	current   int
	passes    int
	lastActor int

	turnActed  bool // current player acted this turn
	turnBuys   int  // certificates bought this turn
	soldPreBuy bool // current player sold before buying this turn
}

// NewStockRound creates stock round number, starting with the priority
// seat.
func NewStockRound(ctx *game.Context, number, priority int) *StockRound {
	r := &StockRound{
		base:      base{ctx: ctx},
		number:    number,
		current:   priority,
		lastActor: -1,
	}
	for _, p := range ctx.Players() {
		p.ResetRoundFlags()
	}
	ctx.Reportf("stock round %d begins; %s has priority", number, r.CurrentPlayer())
	return r
}

func (r *StockRound) Name() string { return fmt.Sprintf("StockRound %d", r.number) }

// CurrentPlayer returns the name of the player to act.
func (r *StockRound) CurrentPlayer() string {
	return r.ctx.PlayerByIndex(r.current).Name()
}

// PriorityIndex returns the seat holding priority for the next stock
// round, or -1 if nobody acted.
func (r *StockRound) PriorityIndex() int {
	if r.lastActor < 0 {
		return -1
	}
	return (r.lastActor + 1) % r.ctx.NumPlayers()
}

// BuyableCompanies returns the started, open companies with at least
// one available certificate in the IPO or the pool.
func (r *StockRound) BuyableCompanies() []*game.Company {
	var out []*game.Company
	for _, c := range r.ctx.Companies() {
		if !c.Started() || c.Closed() {
			continue
		}
		if len(r.ctx.Bank.IPO.CertificatesOf(c)) > 0 || len(r.ctx.Bank.Pool.CertificatesOf(c)) > 0 {
			out = append(out, c)
		}
	}
	return out
}

func (r *StockRound) Handle(a protocol.Action) bool {
	switch a.Command {
	case protocol.StartCompany:
		return r.StartCompany(a.Player, a.Company, a.Par)
	case protocol.BuyShare:
		return r.BuyShare(a.Player, a.Company, a.Source)
	case protocol.SellShares:
		return r.SellShares(a.Player, a.Company, a.Shares)
	case protocol.Pass:
		return r.Pass(a.Player)
	}
	return r.deny(a.Command.String(), fmt.Errorf("%w in a stock round", ErrWrongStep))
}

func (r *StockRound) Prompt() protocol.Message {
	return protocol.Message{
		Command:       protocol.Prompt,
		Round:         r.Name(),
		CurrentPlayer: r.CurrentPlayer(),
		LegalCommands: cmdNames(protocol.StartCompany, protocol.BuyShare, protocol.SellShares, protocol.Pass),
	}
}

// StartCompany starts a public company at the given par price, buying
// its president's certificate.
func (r *StockRound) StartCompany(playerName, companyName string, par int) bool {
	player, err := r.ctx.Player(playerName)
	if err != nil {
		return r.deny("start company", err)
	}
	company, err := r.ctx.Company(companyName)
	if err != nil {
		return r.deny("start company", err)
	}

	err = firstError(
		r.turnOf(playerName),
		func() error {
			if company.CompanyKind() != game.Public {
				return fmt.Errorf("%s is a %s company and cannot be started at par", companyName, company.CompanyKind())
			}
			return nil
		},
		func() error {
			if company.Started() {
				return fmt.Errorf("%s has already started", companyName)
			}
			return nil
		},
		func() error {
			for _, p := range r.ctx.Rules.ParPrices {
				if p == par {
					return nil
				}
			}
			return fmt.Errorf("%w: %d", game.ErrInvalidPar, par)
		},
		func() error {
			if r.turnBuys > 0 {
				return ErrOneBuyPerTurn
			}
			return nil
		},
		func() error {
			cost := par * company.PresidentShares
			if player.FreeCash() < cost {
				return fmt.Errorf("%w: needs %d", game.ErrInsufficientFunds, cost)
			}
			return nil
		},
		func() error { return r.checkCertLimit(player, company) },
	)
	if err != nil {
		return r.deny("start company", err)
	}

	r.ctx.StartCompany(company, player, par)
	player.RecordBuy(companyName)
	r.acted(player)
	r.turnBuys++
	return true
}

// BuyShare buys one available certificate from the IPO ("ipo") or the
// bank pool ("pool"). IPO shares cost par, pool shares market price.
func (r *StockRound) BuyShare(playerName, companyName, source string) bool {
	player, err := r.ctx.Player(playerName)
	if err != nil {
		return r.deny("buy", err)
	}
	company, err := r.ctx.Company(companyName)
	if err != nil {
		return r.deny("buy", err)
	}

	var from *game.Portfolio
	var price int
	switch source {
	case "", "ipo":
		from, price = r.ctx.Bank.IPO, company.ParPrice()
	case "pool":
		from, price = r.ctx.Bank.Pool, company.MarketPrice()
	default:
		return r.deny("buy", fmt.Errorf("unknown source %q", source))
	}

	cert := from.FindCertificate(company, 1, false)

	err = firstError(
		r.turnOf(playerName),
		func() error {
			if !company.Started() {
				return fmt.Errorf("%w: %s", game.ErrCompanyNotStarted, companyName)
			}
			if company.Closed() {
				return fmt.Errorf("%w: %s", game.ErrCompanyClosed, companyName)
			}
			return nil
		},
		func() error {
			if cert == nil || !cert.Available() {
				return fmt.Errorf("%w: no %s share in the %s", game.ErrNoMatchingCertificate, companyName, source)
			}
			return nil
		},
		func() error {
			if player.SoldThisRound(companyName) {
				return ErrSoldThisRound
			}
			return nil
		},
		func() error {
			// a second certificate this turn needs a NoBuyLimit space
			if r.turnBuys == 0 {
				return nil
			}
			if sp := spaceOf(company); sp != nil && sp.NoBuyLimit {
				return nil
			}
			return ErrOneBuyPerTurn
		},
		func() error { return r.checkCertLimit(player, company) },
		func() error {
			sp := spaceOf(company)
			if sp != nil && sp.NoHoldLimit {
				return nil
			}
			if player.Portfolio().OwnsShare(company)+cert.Percentage() > r.ctx.Rules.HoldLimitPercent {
				return fmt.Errorf("%w: %s may hold at most %d%% of %s",
					game.ErrHoldLimit, playerName, r.ctx.Rules.HoldLimitPercent, companyName)
			}
			return nil
		},
		func() error {
			if player.FreeCash() < price {
				return fmt.Errorf("%w: %s costs %d", game.ErrInsufficientFunds, companyName, price)
			}
			return nil
		},
	)
	if err != nil {
		return r.deny("buy", err)
	}

	r.ctx.Bank.Transfer(player, nil, price)
	game.TransferCertificate(cert, from, player.Portfolio())
	player.RecordBuy(companyName)
	r.ctx.Reportf("%s buys a %s share for %d", playerName, companyName, price)
	r.ctx.CheckFlotation(company)
	r.ctx.CheckPresidency(company)
	r.acted(player)
	r.turnBuys++
	return true
}

// SellShares sells the given number of shares to the bank pool at the
// current market price. Selling past the non-president certificates
// forces the presidency onto another qualified player; if none exists
// the sale is rejected.
func (r *StockRound) SellShares(playerName, companyName string, shares int) bool {
	player, err := r.ctx.Player(playerName)
	if err != nil {
		return r.deny("sell", err)
	}
	company, err := r.ctx.Company(companyName)
	if err != nil {
		return r.deny("sell", err)
	}

	plan, err := r.planSale(player, company, shares, "")
	if err != nil {
		return r.deny("sell", err)
	}

	r.executeSale(player, company, plan)
	r.acted(player)
	return true
}

/// salePlan is the outcome of sale validation: everything the commit
// phase needs, so the commit cannot fail.
type salePlan struct {
	shares int
	price  int
	dumpTo *game.Player // new president, or nil
}

// planSale runs the sell validation chain. protectCompany names a
// company whose presidency may not be dumped (forced train-buy sales).
func (r *StockRound) planSale(player *game.Player, company *game.Company, shares int, protectCompany string) (*salePlan, error) {
	err := firstError(
		r.turnOf(player.Name()),
		func() error {
			if shares < 1 {
				return fmt.Errorf("cannot sell %d shares", shares)
			}
			return nil
		},
		func() error {
			if !company.Started() {
				return fmt.Errorf("%w: %s", game.ErrCompanyNotStarted, company.Name())
			}
			return nil
		},
		func() error {
			if r.number == 1 && r.ctx.Rules.NoSaleFirstSR {
				return ErrNoSaleFirstSR
			}
			return nil
		},
		func() error {
			if player.BoughtThisTurn(company.Name()) {
				return ErrBoughtThisTurn
			}
			return nil
		},
		func() error {
			// sell/buy sequencing within the turn
			switch r.ctx.Rules.SellRule {
			case game.SellBuy:
				if r.turnBuys > 0 {
					return ErrSellAfterBuy
				}
			case game.SellBuyOrBuySell:
				if r.turnBuys > 0 && r.soldPreBuy {
					return ErrSellAfterBuy
				}
			}
			return nil
		},
		func() error {
			pool := r.ctx.Bank.Pool.OwnsShare(company)
			if pool+shares*company.ShareUnit > r.ctx.Rules.PoolLimitPercent {
				return fmt.Errorf("%w: pool may hold at most %d%% of %s",
					game.ErrPoolLimit, r.ctx.Rules.PoolLimitPercent, company.Name())
			}
			return nil
		},
		func() error {
			if player.Portfolio().OwnsShare(company) < shares*company.ShareUnit {
				return fmt.Errorf("%w: %s holds only %d%% of %s",
					game.ErrInsufficientShares, player.Name(), player.Portfolio().OwnsShare(company), company.Name())
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	plan := &salePlan{shares: shares, price: company.MarketPrice()}

	singles := 0
	for _, cert := range player.Portfolio().CertificatesOf(company) {
		if !cert.President() {
			singles += cert.Shares()
		}
	}
	if shares > singles {
		// the sale only works if the presidency can be dumped first
		if company.Name() == protectCompany {
			return nil, fmt.Errorf("%w: cannot dump the presidency of %s", game.ErrCannotDumpPresidency, company.Name())
		}
		dumpTo := findPresidencyTaker(r.ctx, player, company)
		if dumpTo == nil {
			return nil, game.ErrCannotDumpPresidency
		}
		plan.dumpTo = dumpTo
	}
	return plan, nil
}

// findPresidencyTaker returns the first player after seller, in
// seating order, holding enough common shares to take the president's
// certificate.
func findPresidencyTaker(ctx *game.Context, seller *game.Player, company *game.Company) *game.Player {
	for i := 1; i < ctx.NumPlayers(); i++ {
		candidate := ctx.PlayerByIndex(seller.Index() + i)
		if candidate == seller || candidate.Bankrupt() {
			continue
		}
		if candidate.Portfolio().FindCertificate(company, company.PresidentShares, false) != nil {
			return candidate
		}
		singles := 0
		for _, cert := range candidate.Portfolio().CertificatesOf(company) {
			if !cert.President() && cert.Shares() == 1 {
				singles++
			}
		}
		if singles >= company.PresidentShares {
			return candidate
		}
	}
	return nil
}

// commitSale applies a validated sale plan. Infallible by construction.
func commitSale(ctx *game.Context, player *game.Player, company *game.Company, plan *salePlan) {
	if plan.dumpTo != nil {
		if err := player.Portfolio().SwapPresidentCertificate(company, plan.dumpTo.Portfolio()); err != nil {
			// the plan guaranteed the swap; failure is a bug
			panic(fmt.Sprintf("presidency swap for %s: %v", company.Name(), err))
		}
		ctx.Reportf("%s takes over as president of %s", plan.dumpTo.Name(), company.Name())
	}

	remaining := plan.shares
	for _, cert := range player.Portfolio().CertificatesOf(company) {
		if remaining == 0 {
			break
		}
		if cert.President() || cert.Shares() > remaining {
			continue
		}
		remaining -= cert.Shares()
		game.TransferCertificate(cert, player.Portfolio(), ctx.Bank.Pool)
	}
	if remaining > 0 {
		// the plan counted the shares; a shape that cannot cover them
		// is a setup bug
		panic(fmt.Sprintf("no certificates cover a %d-share sale of %s", plan.shares, company.Name()))
	}
	proceeds := plan.shares * plan.price
	ctx.Bank.Transfer(nil, player, proceeds)
	player.RecordSale(company.Name())
	ctx.Reportf("%s sells %d %s share(s) for %d", player.Name(), plan.shares, company.Name(), proceeds)

	if company.Token() != nil {
		ctx.Market.Sell(company.Token(), plan.shares)
	}
	ctx.CheckPresidency(company)
}

// executeSale applies a validated sale and tracks the sell-before-buy
// ordering for the current turn.
func (r *StockRound) executeSale(player *game.Player, company *game.Company, plan *salePlan) {
	commitSale(r.ctx, player, company, plan)
	if r.turnBuys == 0 {
		r.soldPreBuy = true
	}
}

// Pass ends the turn; a turn with no action counts toward ending the
// round.
func (r *StockRound) Pass(playerName string) bool {
	err := firstError(r.turnOf(playerName))
	if err != nil {
		return r.deny("pass", err)
	}

	if !r.turnActed {
		r.passes++
		r.ctx.Reportf("%s passes", playerName)
		if r.passes == r.ctx.NumPlayers() {
			r.close()
			return true
		}
	} else {
		r.passes = 0
	}
	r.nextTurn()
	return true
}

func (r *StockRound) turnOf(playerName string) check {
	return func() error {
		if r.finished {
			return ErrRoundOver
		}
		if playerName != r.CurrentPlayer() {
			return ErrNotYourTurn
		}
		return nil
	}
}

func (r *StockRound) checkCertLimit(player *game.Player, company *game.Company) error {
	limit := r.ctx.CertLimit()
	if limit == 0 {
		return nil
	}
	if sp := spaceOf(company); sp != nil && sp.NoCertLimit {
		return nil
	}
	if r.ctx.CountingCertificates(player)+1 > limit {
		return fmt.Errorf("%w: limit is %d", game.ErrCertLimit, limit)
	}
	return nil
}

func (r *StockRound) acted(player *game.Player) {
	r.turnActed = true
	r.passes = 0
	r.lastActor = player.Index()
}

func (r *StockRound) nextTurn() {
	r.current = (r.current + 1) % r.ctx.NumPlayers()
	r.turnActed = false
	r.turnBuys = 0
	r.soldPreBuy = false
	r.ctx.PlayerByIndex(r.current).ResetTurnFlags()
}

// close ends the round, applying the sold-out price adjustment.
func (r *StockRound) close() {
	for _, c := range r.ctx.Companies() {
		if !c.Started() || c.Closed() || c.Token() == nil {
			continue
		}
		if r.ctx.Bank.IPO.OwnsShare(c) == 0 && r.ctx.Bank.Pool.OwnsShare(c) == 0 {
			r.ctx.Market.SoldOut(c.Token())
			r.ctx.Reportf("%s is sold out; price rises", c.Name())
		}
	}
	r.finished = true
	r.ctx.Reportf("stock round %d is over", r.number)
}

func spaceOf(c *game.Company) *market.Space {
	if c.Token() == nil {
		return nil
	}
	return c.Token().Space()
}
