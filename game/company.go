package game

import "github.com/minaorangina/rails/market"

// CompanyKind tags the company variants sharing the common record.
type CompanyKind int

const (
	Private CompanyKind = iota
	Minor
	Public
)

var kindNames = map[CompanyKind]string{
	Private: "private",
	Minor:   "minor",
	Public:  "public",
}

func (k CompanyKind) String() string { return kindNames[k] }

// Company is a railway company: a private, a minor (exchangeable for a
// share of its related major) or a public share company.
type Company struct {
	name string
	kind CompanyKind
	cash int

	// share structure (public and minor)
	ShareUnit       int // percentage per share
	ShareCount      int
	PresidentShares int // shares on the president's certificate
	FloatPercent    int

	// private company data
	Value          int // face value
	Revenue        int // fixed revenue paid each operating round
	SpecialTileLay bool

	// minor company data
	RelatedMajor string

	HomeHex    string
	TokenCost  int
	tokensLeft int

	started bool
	floated bool
	closed  bool

	parPrice  int
	token     *market.Token
	portfolio *Portfolio // treasury shares and trains

	privateOwner *Portfolio // set while a private sits in a portfolio

	certs []*Certificate // the fixed, conserved certificate set
}

func (c *Company) Name() string      { return c.name }
func (c *Company) Kind() OwnerKind   { return CompanyOwner }
func (c *Company) Cash() int         { return c.cash }
func (c *Company) AddCash(delta int) { c.cash += delta }

// CompanyKind returns the company's variant tag.
func (c *Company) CompanyKind() CompanyKind { return c.kind }

// Portfolio returns the company's treasury portfolio.
func (c *Company) Portfolio() *Portfolio { return c.portfolio }

// Certificates returns the company's full certificate set, which is
// fixed after setup.
func (c *Company) Certificates() []*Certificate {
	out := make([]*Certificate, len(c.certs))
	copy(out, c.certs)
	return out
}

// Trains returns the trains owned by the company.
func (c *Company) Trains() []*Train { return c.portfolio.Trains() }

// HasTrains reports whether the company owns any train.
func (c *Company) HasTrains() bool { return len(c.portfolio.trains) > 0 }

// TokensLeft returns the number of unplaced base tokens.
func (c *Company) TokensLeft() int { return c.tokensLeft }

// UseToken consumes one unplaced base token.
func (c *Company) UseToken() { c.tokensLeft-- }

// Started reports whether the company has started (par set).
func (c *Company) Started() bool { return c.started }

// Floated reports whether enough shares have left the IPO for the
// company to operate.
func (c *Company) Floated() bool { return c.floated }

// Closed reports whether the company has closed.
func (c *Company) Closed() bool { return c.closed }

// ParPrice returns the company's par price, or zero before start.
func (c *Company) ParPrice() int { return c.parPrice }

// Token returns the company's stock market token, or nil.
func (c *Company) Token() *market.Token { return c.token }

// MarketPrice returns the current share price, or zero if the company
// is not on the market.
func (c *Company) MarketPrice() int {
	if c.token == nil {
		return 0
	}
	return c.token.Price()
}

// PrivateOwner returns the portfolio holding this private company, or
// nil. Only meaningful for privates.
func (c *Company) PrivateOwner() *Portfolio { return c.privateOwner }

// PresidentCertificate returns the company's president certificate.
func (c *Company) PresidentCertificate() *Certificate {
	for _, cert := range c.certs {
		if cert.President() {
			return cert
		}
	}
	return nil
}

// President returns the player holding the president's certificate, or
// nil if it is held by a bank pool or the company itself.
func (c *Company) President() *Player {
	cert := c.PresidentCertificate()
	if cert == nil || cert.Portfolio() == nil {
		return nil
	}
	if p, ok := cert.Portfolio().Owner().(*Player); ok {
		return p
	}
	return nil
}

// PercentageInPortfolio returns the share of the company sitting in p.
func (c *Company) PercentageInPortfolio(p *Portfolio) int {
	return p.OwnsShare(c)
}

// PercentageSoldFromIPO returns the share percentage no longer in the
// given IPO portfolio.
func (c *Company) PercentageSoldFromIPO(ipo *Portfolio) int {
	return 100 - ipo.OwnsShare(c)
}
