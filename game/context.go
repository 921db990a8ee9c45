package game

import (
	"errors"
	"fmt"
	"sort"

	"github.com/minaorangina/rails/board"
	"github.com/minaorangina/rails/market"
)

// Context is the root object owning the whole game state: bank,
// players, companies, market, board, phases and start packet. One
// Context per game instance; no global state.
type Context struct {
	Bank     *Bank
	Market   *market.Market
	Board    *board.Board
	Phases   *PhaseList
	Packet   *StartPacket
	Reporter Reporter
	Rules    Rules

	players      []*Player
	companies    map[string]*Company
	companyOrder []string
	trainTypes   map[string]*TrainType

	// set by the market EndsGame callback or bankruptcy; the round
	// orchestrator inspects these
	EndsGameTriggered  bool
	BankruptcyDeclared bool
}

// NewContext builds the full game object graph from cfg.
func NewContext(cfg Config) (*Context, error) {
	if len(cfg.Players) < 2 {
		return nil, errors.New("at least 2 players required")
	}

	mkt, err := market.New(cfg.Market)
	if err != nil {
		return nil, fmt.Errorf("building stock market: %w", err)
	}
	brd, err := board.New(cfg.Board)
	if err != nil {
		return nil, fmt.Errorf("building board: %w", err)
	}
	if len(cfg.Phases) == 0 {
		return nil, errors.New("at least one phase required")
	}

	reporter := cfg.Reporter
	if reporter == nil {
		reporter = LogReporter{}
	}

	ctx := &Context{
		Bank:       NewBank(cfg.BankCash),
		Market:     mkt,
		Board:      brd,
		Phases:     NewPhaseList(cfg.Phases),
		Reporter:   reporter,
		Rules:      cfg.Rules,
		companies:  map[string]*Company{},
		trainTypes: map[string]*TrainType{},
	}

	ctx.Market.OnGameEnd = func(owner string) {
		ctx.EndsGameTriggered = true
		ctx.Reportf("%s reached a game-ending stock space", owner)
	}
	ctx.Market.OnCloseCompany = func(owner string) {
		if c, ok := ctx.companies[owner]; ok {
			ctx.CloseCompany(c)
		}
	}

	for i, name := range cfg.Players {
		p := &Player{name: name, index: i, soldThisRound: map[string]bool{}}
		p.portfolio = NewPortfolio(p)
		ctx.Bank.Transfer(nil, p, cfg.StartingCash)
		ctx.players = append(ctx.players, p)
	}

	// majors first so minors can reserve their related shares
	for _, cc := range cfg.Companies {
		if cc.Kind != Minor {
			if err := ctx.addCompany(cc); err != nil {
				return nil, err
			}
		}
	}
	for _, cc := range cfg.Companies {
		if cc.Kind == Minor {
			if err := ctx.addCompany(cc); err != nil {
				return nil, err
			}
		}
	}

	for i := range cfg.TrainTypes {
		tt := cfg.TrainTypes[i]
		ctx.trainTypes[tt.Name] = &tt
		for n := 0; n < tt.Count; n++ {
			ctx.Bank.IPO.AddTrain(&Train{ttype: &tt})
		}
	}

	packet := &StartPacket{}
	for _, ic := range cfg.StartPacket {
		item := &StartItem{name: ic.Name, basePrice: ic.BasePrice, needsPar: ic.NeedsPar}
		if ic.Private != "" {
			c, ok := ctx.companies[ic.Private]
			if !ok || c.kind != Private {
				return nil, fmt.Errorf("start item %s: no private company %q", ic.Name, ic.Private)
			}
			item.private = c
		}
		if ic.CertCompany != "" {
			c, ok := ctx.companies[ic.CertCompany]
			if !ok {
				return nil, fmt.Errorf("start item %s: %w: %s", ic.Name, ErrUnknownCompany, ic.CertCompany)
			}
			shares := 1
			if ic.CertPresident {
				shares = c.PresidentShares
			}
			cert := ctx.Bank.IPO.FindCertificate(c, shares, ic.CertPresident)
			if cert == nil {
				return nil, fmt.Errorf("start item %s: %w", ic.Name, ErrNoMatchingCertificate)
			}
			cert.SetAvailable(true)
			item.cert = cert
		}
		packet.items = append(packet.items, item)
	}
	ctx.Packet = packet

	return ctx, nil
}

func (ctx *Context) addCompany(cc CompanyConfig) error {
	if _, exists := ctx.companies[cc.Name]; exists {
		return fmt.Errorf("duplicate company %q", cc.Name)
	}
	c := &Company{
		name:            cc.Name,
		kind:            cc.Kind,
		ShareUnit:       cc.ShareUnit,
		ShareCount:      cc.ShareCount,
		PresidentShares: cc.PresidentShares,
		FloatPercent:    cc.FloatPercent,
		Value:           cc.Value,
		Revenue:         cc.Revenue,
		SpecialTileLay:  cc.SpecialTileLay,
		RelatedMajor:    cc.RelatedMajor,
		HomeHex:         cc.HomeHex,
		TokenCost:       cc.TokenCost,
		tokensLeft:      cc.Tokens,
	}
	c.portfolio = NewPortfolio(c)

	switch cc.Kind {
	case Private:
		// privates issue no certificates; they move between
		// portfolios whole
	case Minor:
		c.ShareUnit, c.ShareCount, c.PresidentShares = 100, 1, 1
		pres := &Certificate{company: c, shares: 1, president: true}
		c.certs = []*Certificate{pres}
		ctx.Bank.IPO.addCertificate(pres)
		if cc.RelatedMajor != "" {
			major, ok := ctx.companies[cc.RelatedMajor]
			if !ok {
				return fmt.Errorf("minor %s: %w: %s", cc.Name, ErrUnknownCompany, cc.RelatedMajor)
			}
			reserved := ctx.Bank.IPO.FindCertificate(major, 1, false)
			if reserved == nil {
				return fmt.Errorf("minor %s: no %s share left to reserve", cc.Name, major.Name())
			}
			TransferCertificate(reserved, ctx.Bank.IPO, ctx.Bank.Unavailable)
		}
	case Public:
		if cc.ShareUnit*cc.ShareCount != 100 {
			return fmt.Errorf("company %s: share unit %d x count %d != 100%%", cc.Name, cc.ShareUnit, cc.ShareCount)
		}
		pres := &Certificate{company: c, shares: cc.PresidentShares, president: true}
		c.certs = append(c.certs, pres)
		ctx.Bank.IPO.addCertificate(pres)
		for i := 0; i < cc.ShareCount-cc.PresidentShares; i++ {
			cert := &Certificate{company: c, shares: 1}
			c.certs = append(c.certs, cert)
			ctx.Bank.IPO.addCertificate(cert)
		}
	}

	ctx.companies[cc.Name] = c
	ctx.companyOrder = append(ctx.companyOrder, cc.Name)
	return nil
}

// Reportf formats and emits a report line.
func (ctx *Context) Reportf(format string, args ...interface{}) {
	ctx.Reporter.Report(fmt.Sprintf(format, args...))
}

// Players returns the players in seating order.
func (ctx *Context) Players() []*Player {
	out := make([]*Player, len(ctx.players))
	copy(out, ctx.players)
	return out
}

// NumPlayers returns the number of seated players.
func (ctx *Context) NumPlayers() int { return len(ctx.players) }

// Player looks up a player by name.
func (ctx *Context) Player(name string) (*Player, error) {
	for _, p := range ctx.players {
		if p.name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, name)
}

// PlayerByIndex returns the player at the given seat.
func (ctx *Context) PlayerByIndex(i int) *Player {
	return ctx.players[((i%len(ctx.players))+len(ctx.players))%len(ctx.players)]
}

// Company looks up a company by name.
func (ctx *Context) Company(name string) (*Company, error) {
	c, ok := ctx.companies[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCompany, name)
	}
	return c, nil
}

// Companies returns every company in setup order.
func (ctx *Context) Companies() []*Company {
	out := make([]*Company, 0, len(ctx.companyOrder))
	for _, name := range ctx.companyOrder {
		out = append(out, ctx.companies[name])
	}
	return out
}

// TrainType looks up a train type by name.
func (ctx *Context) TrainType(name string) (*TrainType, error) {
	tt, ok := ctx.trainTypes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTrainType, name)
	}
	return tt, nil
}

// CertLimit returns the certificate limit for the seated player count.
func (ctx *Context) CertLimit() int {
	if limit, ok := ctx.Rules.CertLimit[len(ctx.players)]; ok {
		return limit
	}
	return 0 // zero means unlimited
}

// CountingCertificates returns the number of certificates and privates
// held by p that count against the certificate limit. Certificates of
// a company sitting on a NoCertLimit space are exempt.
func (ctx *Context) CountingCertificates(p *Player) int {
	count := len(p.portfolio.Privates())
	for _, cert := range p.portfolio.Certificates() {
		sp := cert.Company().Token()
		if sp != nil && sp.Space() != nil && sp.Space().NoCertLimit {
			continue
		}
		count++
	}
	return count
}

// TotalCash sums all money in the closed system. It is invariant
// across any sequence of ledger transfers.
func (ctx *Context) TotalCash() int {
	total := ctx.Bank.Cash()
	for _, p := range ctx.players {
		total += p.Cash()
	}
	for _, c := range ctx.companies {
		total += c.Cash()
	}
	return total
}

// SetPar places the company's market token at the par price, marks it
// started and releases its certificates for sale. Par validity is the
// calling round's job; a missing par space is a configuration bug.
func (ctx *Context) SetPar(c *Company, par int) {
	token, err := ctx.Market.AddTokenAtPrice(c.name, par)
	if err != nil {
		panic(fmt.Sprintf("starting %s: %v", c.name, err))
	}
	c.parPrice = par
	c.token = token
	c.started = true
	for _, cert := range c.certs {
		cert.SetAvailable(true)
	}
	ctx.Reportf("%s starts at par %d", c.name, par)
}

// StartCompany sells the president's certificate from the IPO to the
// player at par and starts the company. Validation is the calling
// round's job.
func (ctx *Context) StartCompany(c *Company, p *Player, par int) {
	ctx.SetPar(c, par)
	pres := c.PresidentCertificate()
	ctx.Bank.Transfer(p, nil, par*pres.Shares())
	TransferCertificate(pres, ctx.Bank.IPO, p.portfolio)
	ctx.Reportf("%s buys the %s president's certificate for %d", p.name, c.name, par*pres.Shares())
	ctx.CheckFlotation(c)
}

// CheckFlotation floats the company once enough of its shares have
// left the IPO, paying full capitalization from the bank.
func (ctx *Context) CheckFlotation(c *Company) {
	if c.floated || !c.started || c.kind == Private {
		return
	}
	if c.PercentageSoldFromIPO(ctx.Bank.IPO) < c.FloatPercent {
		return
	}
	c.floated = true
	capital := c.parPrice * c.ShareCount
	ctx.Bank.Transfer(nil, c, capital)
	ctx.Reportf("%s floats and receives %d", c.name, capital)
}

// CheckPresidency transfers the presidency if another player holds a
// strictly larger share, seating order after the current president
// breaking ties.
func (ctx *Context) CheckPresidency(c *Company) {
	pres := c.President()
	if pres == nil || c.closed {
		return
	}
	current := pres.portfolio.OwnsShare(c)
	for i := 1; i < len(ctx.players); i++ {
		candidate := ctx.PlayerByIndex(pres.index + i)
		if candidate.portfolio.OwnsShare(c) > current {
			if err := pres.portfolio.SwapPresidentCertificate(c, candidate.portfolio); err == nil {
				ctx.Reportf("%s becomes president of %s", candidate.name, c.name)
				return
			}
		}
	}
}

// CloseCompany closes the company, scrapping its certificates and
// returning its trains to the bank pool.
func (ctx *Context) CloseCompany(c *Company) {
	if c.closed {
		return
	}
	c.closed = true
	if c.token != nil {
		ctx.Market.RemoveToken(c.token)
	}
	for _, cert := range c.certs {
		TransferCertificate(cert, cert.Portfolio(), ctx.Bank.ScrapHeap)
	}
	if c.privateOwner != nil {
		c.privateOwner.RemovePrivate(c)
	}
	for _, t := range c.portfolio.Trains() {
		TransferTrain(t, c.portfolio, ctx.Bank.Pool)
	}
	ctx.Bank.Transfer(c, nil, c.Cash())
	ctx.Reportf("%s closes", c.name)
}

// TrainBought advances the phase when the bought train type triggers
// one, applying rusting and private closures.
func (ctx *Context) TrainBought(tt *TrainType) {
	if tt.Phase == "" {
		return
	}
	for _, phase := range ctx.Phases.AdvanceTo(tt.Phase) {
		ctx.Reportf("phase %s begins", phase.Name)
		if phase.Rusts != "" {
			ctx.rustTrains(phase.Rusts)
		}
		if phase.ClosesPrivates {
			ctx.closePrivates()
		}
	}
}

func (ctx *Context) rustTrains(typeName string) {
	rust := func(pf *Portfolio) {
		for _, t := range pf.TrainsOfType(typeName) {
			t.rusted = true
			TransferTrain(t, pf, ctx.Bank.ScrapHeap)
		}
	}
	for _, c := range ctx.companies {
		rust(c.portfolio)
	}
	rust(ctx.Bank.IPO)
	rust(ctx.Bank.Pool)
	ctx.Reportf("all %s trains rust", typeName)
}

func (ctx *Context) closePrivates() {
	for _, name := range ctx.companyOrder {
		c := ctx.companies[name]
		if c.kind == Private && !c.closed {
			ctx.CloseCompany(c)
		}
	}
}

// OperatingOrder returns the floated, open companies in operating
// order: price descending, then column descending, then row ascending,
// then stack position on shared spaces.
func (ctx *Context) OperatingOrder() []*Company {
	var ops []*Company
	for _, name := range ctx.companyOrder {
		c := ctx.companies[name]
		if c.floated && !c.closed && c.kind != Private {
			ops = append(ops, c)
		}
	}
	sort.SliceStable(ops, func(i, j int) bool {
		a, b := ops[i].token, ops[j].token
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		as, bs := a.Space(), b.Space()
		if as.Price != bs.Price {
			return as.Price > bs.Price
		}
		if as == bs {
			return as.StackPosition(a) < bs.StackPosition(b)
		}
		if as.Col != bs.Col {
			return as.Col > bs.Col
		}
		return as.Row < bs.Row
	})
	return ops
}

// PlayerWorth values a player for final ranking: cash plus shares at
// market price plus private face values.
func (ctx *Context) PlayerWorth(p *Player) int {
	worth := p.Cash()
	for _, cert := range p.portfolio.Certificates() {
		worth += cert.Company().MarketPrice() * cert.Shares()
	}
	for _, priv := range p.portfolio.Privates() {
		worth += priv.Value
	}
	return worth
}

// ForceCash is the administrative cash-correction side channel. It
// writes through the ledger so money conservation still holds, and is
// not part of the action protocol.
func (ctx *Context) ForceCash(holder CashHolder, amount int) {
	ctx.Bank.Transfer(nil, holder, amount)
	ctx.Reportf("correction: %d to %s", amount, holder.Name())
}
