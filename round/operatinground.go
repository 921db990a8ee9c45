package round

import (
	"fmt"

	"github.com/minaorangina/rails/board"
	"github.com/minaorangina/rails/game"
	"github.com/minaorangina/rails/protocol"
)

// Step is the operating round's per-company step sequence. Within one
// company turn the step only moves forward.
type Step int

const (
	StepLayTrack Step = iota
	StepLayToken
	StepRevenue
	StepDividend
	StepBuyTrain
	StepDone
)

var stepNames = map[Step]string{
	StepLayTrack: "LayTrack",
	StepLayToken: "LayToken",
	StepRevenue:  "Revenue",
	StepDividend: "Dividend",
	StepBuyTrain: "BuyTrain",
	StepDone:     "Done",
}

func (s Step) String() string { return stepNames[s] }

// ShareSaleRequest asks the orchestrator to interrupt the operating
// round so the president can raise cash for a forced train buy.
type ShareSaleRequest struct {
	President  *game.Player
	Company    *game.Company
	CashNeeded int
}

// OperatingRound runs each floated company through its steps: lay
// track, lay a token, declare revenue, pay or withhold, buy trains.
// Steps with vacuously satisfied preconditions are skipped.
type OperatingRound struct {
	base

	number    int // cumulative operating round counter
	companies []*game.Company
	idx       int
	step      Step

	tileLays       int
	specialLayUsed bool
	revenue        int

	// set when the current company cannot fund a mandatory train buy;
	// the orchestrator starts a share-selling round and resumes here
	PendingShareSale *ShareSaleRequest
}

// NewOperatingRound creates operating round number over the floated
// companies in operating order, paying private revenue up front.
func NewOperatingRound(ctx *game.Context, number int) *OperatingRound {
	r := &OperatingRound{
		base:      base{ctx: ctx},
		number:    number,
		companies: ctx.OperatingOrder(),
	}
	ctx.Reportf("operating round %d begins", number)

	for _, c := range ctx.Companies() {
		if c.CompanyKind() != game.Private || c.Closed() || c.Revenue == 0 {
			continue
		}
		if pf := c.PrivateOwner(); pf != nil {
			if holder, ok := pf.Owner().(game.CashHolder); ok {
				ctx.Bank.Transfer(nil, holder, c.Revenue)
				ctx.Reportf("%s pays %d to %s", c.Name(), c.Revenue, holder.Name())
			}
		}
	}

	if len(r.companies) == 0 {
		r.finished = true
		ctx.Reportf("no company can operate; operating round %d is over", number)
		return r
	}
	r.enterStep(StepLayTrack)
	return r
}

func (r *OperatingRound) Name() string { return fmt.Sprintf("OperatingRound %d", r.number) }

// Step returns the current step.
func (r *OperatingRound) Step() Step { return r.step }

// OperatingCompanies returns the round's companies in operating order.
func (r *OperatingRound) OperatingCompanies() []*game.Company {
	out := make([]*game.Company, len(r.companies))
	copy(out, r.companies)
	return out
}

// CurrentCompany returns the company whose turn it is, or nil.
func (r *OperatingRound) CurrentCompany() *game.Company {
	if r.idx >= len(r.companies) {
		return nil
	}
	return r.companies[r.idx]
}

// CurrentPlayer returns the president of the operating company.
func (r *OperatingRound) CurrentPlayer() string {
	c := r.CurrentCompany()
	if c == nil {
		return ""
	}
	if p := c.President(); p != nil {
		return p.Name()
	}
	// an operating company without a president is a setup bug
	panic(fmt.Sprintf("operating company %s has no president", c.Name()))
}

func (r *OperatingRound) Handle(a protocol.Action) bool {
	switch a.Command {
	case protocol.LayTile:
		return r.LayTile(a.Company, a.Hex, a.Tile)
	case protocol.LayToken:
		return r.LayToken(a.Company, a.Hex)
	case protocol.SetRevenue:
		return r.SetRevenue(a.Company, a.Revenue)
	case protocol.Payout:
		return r.Payout(a.Company)
	case protocol.Withhold:
		return r.Withhold(a.Company)
	case protocol.BuyTrain:
		return r.BuyTrain(a.Company, a.Train, a.Source, a.Amount, a.Exchange)
	case protocol.SkipStep:
		return r.Skip(a.Company)
	}
	return r.deny(a.Command.String(), fmt.Errorf("%w in an operating round", ErrWrongStep))
}

func (r *OperatingRound) Prompt() protocol.Message {
	company := ""
	if c := r.CurrentCompany(); c != nil {
		company = c.Name()
	}
	return protocol.Message{
		Command:       protocol.Prompt,
		Round:         r.Name(),
		Step:          r.step.String(),
		CurrentPlayer: r.CurrentPlayer(),
		Text:          company,
		LegalCommands: r.legalCommands(),
	}
}

func (r *OperatingRound) legalCommands() []string {
	switch r.step {
	case StepLayTrack:
		return cmdNames(protocol.LayTile, protocol.SkipStep)
	case StepLayToken:
		return cmdNames(protocol.LayToken, protocol.SkipStep)
	case StepRevenue:
		return cmdNames(protocol.SetRevenue)
	case StepDividend:
		return cmdNames(protocol.Payout, protocol.Withhold)
	case StepBuyTrain:
		return cmdNames(protocol.BuyTrain, protocol.SkipStep)
	}
	return nil
}

// LayTile lays a tile on a hex. Terrain cost applies only while the
// hex still shows its preprinted tile. A president-held private with a
// special tile lay is consumed before the normal allowance.
func (r *OperatingRound) LayTile(companyName, hexName, tileID string) bool {
	c := r.CurrentCompany()
	hex, hexErr := r.ctx.Board.Hex(hexName)
	tile, tileErr := r.ctx.Board.Tile(tileID)

	useSpecial := false
	err := firstError(
		r.companyTurn(companyName, StepLayTrack),
		func() error {
			if hexErr != nil {
				return hexErr
			}
			return tileErr
		},
		func() error {
			if hex.Tile() != nil && hex.Tile().ID == tileID {
				return fmt.Errorf("%w: %s already shows %s", board.ErrTileNotAllowed, hexName, tileID)
			}
			return nil
		},
		func() error {
			// a president-held special lay is spent before the normal
			// per-turn allowance
			if !r.specialLayUsed && r.hasSpecialLay(c) {
				useSpecial = true
				return nil
			}
			if r.tileLays < 1 {
				return nil
			}
			return fmt.Errorf("%s has no tile lay left this turn", companyName)
		},
		func() error {
			cost := r.tileCost(hex)
			if cost%r.ctx.Rules.CurrencyUnit != 0 {
				// a terrain cost off the currency grid is a setup bug
				panic(fmt.Sprintf("hex %s cost %d is not a multiple of %d", hexName, cost, r.ctx.Rules.CurrencyUnit))
			}
			if c.Cash() < cost {
				return fmt.Errorf("%w: laying on %s costs %d, %s has %d",
					game.ErrInsufficientFunds, hexName, cost, companyName, c.Cash())
			}
			return nil
		},
	)
	if err != nil {
		return r.deny("lay tile", err)
	}

	cost := r.tileCost(hex)
	if cost > 0 {
		r.ctx.Bank.Transfer(c, nil, cost)
	}
	r.ctx.Board.LayTile(hex, tile)
	if useSpecial {
		r.specialLayUsed = true
		r.ctx.Reportf("%s lays %s on %s (special lay, cost %d)", companyName, tileID, hexName, cost)
	} else {
		r.tileLays++
		r.ctx.Reportf("%s lays %s on %s (cost %d)", companyName, tileID, hexName, cost)
	}

	if r.tileLays >= 1 && (r.specialLayUsed || !r.hasSpecialLay(c)) {
		r.nextStep()
	}
	return true
}

func (r *OperatingRound) tileCost(hex *board.Hex) int {
	if hex.Preprinted() {
		return hex.Cost
	}
	return 0
}

func (r *OperatingRound) hasSpecialLay(c *game.Company) bool {
	pres := c.President()
	if pres == nil {
		return false
	}
	for _, priv := range pres.Portfolio().Privates() {
		if priv.SpecialTileLay && !priv.Closed() {
			return true
		}
	}
	return false
}

// LayToken places a base token.
func (r *OperatingRound) LayToken(companyName, hexName string) bool {
	c := r.CurrentCompany()
	hex, hexErr := r.ctx.Board.Hex(hexName)

	err := firstError(
		r.companyTurn(companyName, StepLayToken),
		func() error { return hexErr },
		func() error {
			if c.TokensLeft() < 1 {
				return fmt.Errorf("%s has no token left", companyName)
			}
			return nil
		},
		func() error {
			if hex.HasToken(companyName) {
				return fmt.Errorf("%w: %s on %s", board.ErrTokenPresent, companyName, hexName)
			}
			if len(hex.Tokens()) >= hex.TokenSlots {
				return fmt.Errorf("%w: %s", board.ErrNoTokenSlot, hexName)
			}
			return nil
		},
		func() error {
			if c.Cash() < c.TokenCost {
				return fmt.Errorf("%w: a token costs %d", game.ErrInsufficientFunds, c.TokenCost)
			}
			return nil
		},
	)
	if err != nil {
		return r.deny("lay token", err)
	}

	r.ctx.Bank.Transfer(c, nil, c.TokenCost)
	if err := r.ctx.Board.PlaceToken(hex, companyName); err != nil {
		panic(fmt.Sprintf("token placement on %s: %v", hexName, err))
	}
	c.UseToken()
	r.ctx.Reportf("%s places a token on %s (cost %d)", companyName, hexName, c.TokenCost)
	r.nextStep()
	return true
}

// SetRevenue records the company's run, as computed by the external
// revenue oracle.
func (r *OperatingRound) SetRevenue(companyName string, amount int) bool {
	err := firstError(
		r.companyTurn(companyName, StepRevenue),
		func() error {
			if amount < 0 || amount%r.ctx.Rules.CurrencyUnit != 0 {
				return fmt.Errorf("revenue %d is not a multiple of %d", amount, r.ctx.Rules.CurrencyUnit)
			}
			return nil
		},
	)
	if err != nil {
		return r.deny("set revenue", err)
	}

	r.revenue = amount
	r.ctx.Reportf("%s runs for %d", companyName, amount)
	r.nextStep()
	return true
}

// Payout distributes the revenue to shareholders and moves the price.
func (r *OperatingRound) Payout(companyName string) bool {
	c := r.CurrentCompany()
	if err := firstError(r.companyTurn(companyName, StepDividend)); err != nil {
		return r.deny("payout", err)
	}

	perShare := r.revenue / c.ShareCount
	for _, cert := range c.Certificates() {
		pf := cert.Portfolio()
		if pf == nil {
			continue
		}
		holder, ok := pf.Owner().(game.CashHolder)
		if !ok {
			continue // bank pool shares: the money stays in the bank
		}
		r.ctx.Bank.Transfer(nil, holder, perShare*cert.Shares())
	}
	r.ctx.Reportf("%s pays out %d (%d per share)", companyName, r.revenue, perShare)
	if c.Token() != nil {
		r.ctx.Market.Payout(c.Token())
	}
	r.nextStep()
	return true
}

// Withhold keeps the revenue in the treasury and moves the price.
func (r *OperatingRound) Withhold(companyName string) bool {
	c := r.CurrentCompany()
	if err := firstError(r.companyTurn(companyName, StepDividend)); err != nil {
		return r.deny("withhold", err)
	}

	r.ctx.Bank.Transfer(nil, c, r.revenue)
	r.ctx.Reportf("%s withholds %d", companyName, r.revenue)
	if c.Token() != nil {
		r.ctx.Market.Withhold(c.Token())
	}
	r.nextStep()
	return true
}

// BuyTrain buys a train from the bank ("bank"), the pool ("pool") or
// another company (its name), optionally exchanging an old train. A
// trainless company's president may top up the treasury from hand.
func (r *OperatingRound) BuyTrain(companyName, trainName, source string, price int, exchangeName string) bool {
	c := r.CurrentCompany()
	tt, ttErr := r.ctx.TrainType(trainName)

	var from *game.Portfolio
	var seller game.CashHolder // nil means the bank
	var train *game.Train
	var exchanged *game.Train
	cost := price

	err := firstError(
		r.companyTurn(companyName, StepBuyTrain),
		func() error { return ttErr },
		func() error {
			switch source {
			case "", "bank":
				from = r.ctx.Bank.IPO
			case "pool":
				from = r.ctx.Bank.Pool
			default:
				other, err := r.ctx.Company(source)
				if err != nil {
					return err
				}
				if other == c {
					return fmt.Errorf("%s cannot buy a train from itself", companyName)
				}
				from = other.Portfolio()
				seller = other
			}
			trains := from.TrainsOfType(trainName)
			if len(trains) == 0 {
				return fmt.Errorf("no %s train available from %s", trainName, source)
			}
			train = trains[0]
			return nil
		},
		func() error {
			limit := r.ctx.Phases.Current().TrainLimit
			if len(c.Trains()) >= limit {
				return fmt.Errorf("%w: limit is %d", game.ErrTrainLimit, limit)
			}
			return nil
		},
		func() error {
			if exchangeName == "" {
				if seller == nil {
					cost = tt.Cost
				}
				return nil
			}
			if tt.Exchange == 0 {
				return fmt.Errorf("%s trains cannot be bought by exchange", trainName)
			}
			if seller != nil {
				return fmt.Errorf("exchange buys only come from the bank")
			}
			old := c.Portfolio().TrainsOfType(exchangeName)
			if len(old) == 0 {
				return fmt.Errorf("%s owns no %s train to exchange", companyName, exchangeName)
			}
			exchanged = old[0]
			cost = tt.Exchange
			return nil
		},
		func() error {
			// bank prices come from the train type; a cross-company
			// price is negotiated and must be a real payment
			if seller != nil && cost < 1 {
				return fmt.Errorf("a train cannot change hands for %d", cost)
			}
			return nil
		},
		func() error {
			if c.Cash() >= cost {
				return nil
			}
			// an emergency buy may draw on the president's cash, but
			// only for a trainless company buying from the bank
			if !c.HasTrains() && seller == nil {
				pres := c.President()
				if pres != nil && pres.FreeCash()+c.Cash() >= cost {
					return nil
				}
			}
			return fmt.Errorf("%w: %s costs %d, %s has %d",
				game.ErrInsufficientFunds, trainName, cost, companyName, c.Cash())
		},
	)
	if err != nil {
		return r.deny("buy train", err)
	}

	if shortfall := cost - c.Cash(); shortfall > 0 {
		pres := c.President()
		r.ctx.Bank.Transfer(pres, c, shortfall)
		r.ctx.Reportf("%s contributes %d for the train buy", pres.Name(), shortfall)
	}
	r.ctx.Bank.Transfer(c, seller, cost)
	if exchanged != nil {
		game.TransferTrain(exchanged, c.Portfolio(), r.ctx.Bank.Pool)
		r.ctx.Reportf("%s trades in a %s train", companyName, exchangeName)
	}
	game.TransferTrain(train, from, c.Portfolio())
	r.ctx.Reportf("%s buys a %s train for %d", companyName, trainName, cost)
	r.ctx.TrainBought(tt)
	return true
}

// Skip declines the current optional step. A trainless company that
// can fund a train may not skip the buy; one that cannot fund it even
// with the president's cash raises a share-sale interrupt instead.
func (r *OperatingRound) Skip(companyName string) bool {
	c := r.CurrentCompany()
	if err := firstError(r.companyTurn(companyName, r.step)); err != nil {
		return r.deny("skip", err)
	}

	switch r.step {
	case StepLayTrack, StepLayToken:
		r.nextStep()
		return true
	case StepBuyTrain:
		if c.HasTrains() {
			r.nextStep()
			return true
		}
		cheapest := r.cheapestTrainCost()
		if cheapest == 0 {
			// no train left anywhere; nothing to force
			r.nextStep()
			return true
		}
		pres := c.President()
		available := c.Cash()
		if pres != nil {
			available += pres.FreeCash()
		}
		if available >= cheapest {
			return r.deny("skip", ErrMustBuyTrain)
		}
		// the president must raise the difference by selling shares
		r.PendingShareSale = &ShareSaleRequest{
			President:  pres,
			Company:    c,
			CashNeeded: cheapest - available,
		}
		r.ctx.Reportf("%s must raise %d to buy a train", pres.Name(), cheapest-available)
		return true
	}
	return r.deny("skip", fmt.Errorf("%w: %s cannot be skipped", ErrWrongStep, r.step))
}

func (r *OperatingRound) cheapestTrainCost() int {
	cheapest := 0
	for _, pool := range []*game.Portfolio{r.ctx.Bank.IPO, r.ctx.Bank.Pool} {
		for _, t := range pool.Trains() {
			if cheapest == 0 || t.Type().Cost < cheapest {
				cheapest = t.Type().Cost
			}
		}
	}
	return cheapest
}

func (r *OperatingRound) companyTurn(companyName string, step Step) check {
	return func() error {
		if r.finished {
			return ErrRoundOver
		}
		c := r.CurrentCompany()
		if c == nil || c.Name() != companyName {
			return fmt.Errorf("%w: %s", ErrWrongCompany, companyName)
		}
		if r.step != step {
			return fmt.Errorf("%w: current step is %s", ErrWrongStep, r.step)
		}
		return nil
	}
}

// nextStep advances the step, skipping steps whose preconditions are
// vacuously satisfied, and rotates to the next company after the last
// step.
func (r *OperatingRound) nextStep() {
	switch r.step {
	case StepLayTrack:
		r.enterStep(StepLayToken)
	case StepLayToken:
		r.enterStep(StepRevenue)
	case StepRevenue:
		r.enterStep(StepDividend)
	case StepDividend:
		r.enterStep(StepBuyTrain)
	case StepBuyTrain:
		r.enterStep(StepDone)
	}
}

func (r *OperatingRound) enterStep(s Step) {
	r.step = s
	c := r.CurrentCompany()

	switch s {
	case StepLayToken:
		if c.TokensLeft() == 0 {
			r.nextStep()
		}
	case StepRevenue:
		if !c.HasTrains() {
			// no trains: revenue is zero and counts as withheld
			r.revenue = 0
			r.ctx.Reportf("%s owns no train and earns nothing", c.Name())
			if c.Token() != nil {
				r.ctx.Market.Withhold(c.Token())
			}
			r.enterStep(StepBuyTrain)
		}
	case StepDividend:
		if r.revenue == 0 {
			r.ctx.Reportf("%s earned nothing; price falls", c.Name())
			if c.Token() != nil {
				r.ctx.Market.Withhold(c.Token())
			}
			r.enterStep(StepBuyTrain)
		}
	case StepDone:
		r.nextCompany()
	}
}

func (r *OperatingRound) nextCompany() {
	r.idx++
	r.tileLays = 0
	r.specialLayUsed = false
	r.revenue = 0
	if r.idx >= len(r.companies) {
		r.finished = true
		r.ctx.Reportf("operating round %d is over", r.number)
		return
	}
	r.enterStep(StepLayTrack)
}
