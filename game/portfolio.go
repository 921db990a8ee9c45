package game

import "fmt"

// Owner identifies who holds a portfolio.
type Owner interface {
	Name() string
	Kind() OwnerKind
}

// Portfolio is the collection of certificates, private companies and
// trains held by one owner. Certificates are indexed both as a flat
// list and grouped per company.
type Portfolio struct {
	owner     Owner
	certs     []*Certificate
	byCompany map[string][]*Certificate
	privates  []*Company
	trains    []*Train
}

// NewPortfolio creates an empty portfolio for owner.
func NewPortfolio(owner Owner) *Portfolio {
	return &Portfolio{
		owner:     owner,
		byCompany: map[string][]*Certificate{},
	}
}

// Owner returns the portfolio's owner.
func (p *Portfolio) Owner() Owner { return p.owner }

// Certificates returns all certificates in the portfolio.
func (p *Portfolio) Certificates() []*Certificate {
	out := make([]*Certificate, len(p.certs))
	copy(out, p.certs)
	return out
}

// CertificatesOf returns the certificates of one company.
func (p *Portfolio) CertificatesOf(c *Company) []*Certificate {
	certs := p.byCompany[c.Name()]
	out := make([]*Certificate, len(certs))
	copy(out, certs)
	return out
}

// Privates returns the private companies in the portfolio.
func (p *Portfolio) Privates() []*Company {
	out := make([]*Company, len(p.privates))
	copy(out, p.privates)
	return out
}

// Trains returns the trains in the portfolio.
func (p *Portfolio) Trains() []*Train {
	out := make([]*Train, len(p.trains))
	copy(out, p.trains)
	return out
}

// TrainsOfType returns the trains of the named type.
func (p *Portfolio) TrainsOfType(name string) []*Train {
	var out []*Train
	for _, t := range p.trains {
		if t.Type().Name == name {
			out = append(out, t)
		}
	}
	return out
}

func (p *Portfolio) addCertificate(c *Certificate) {
	p.certs = append(p.certs, c)
	key := c.Company().Name()
	p.byCompany[key] = append(p.byCompany[key], c)
	c.portfolio = p
}

func (p *Portfolio) removeCertificate(c *Certificate) {
	for i, held := range p.certs {
		if held == c {
			p.certs = append(p.certs[:i], p.certs[i+1:]...)
			break
		}
	}
	key := c.Company().Name()
	for i, held := range p.byCompany[key] {
		if held == c {
			p.byCompany[key] = append(p.byCompany[key][:i], p.byCompany[key][i+1:]...)
			break
		}
	}
	if c.portfolio == p {
		c.portfolio = nil
	}
}

// AddPrivate puts a private company into the portfolio.
func (p *Portfolio) AddPrivate(c *Company) {
	p.privates = append(p.privates, c)
	c.privateOwner = p
}

// RemovePrivate takes a private company out of the portfolio.
func (p *Portfolio) RemovePrivate(c *Company) {
	for i, held := range p.privates {
		if held == c {
			p.privates = append(p.privates[:i], p.privates[i+1:]...)
			break
		}
	}
	if c.privateOwner == p {
		c.privateOwner = nil
	}
}

// AddTrain puts a train into the portfolio.
func (p *Portfolio) AddTrain(t *Train) {
	p.trains = append(p.trains, t)
	t.portfolio = p
}

// RemoveTrain takes a train out of the portfolio.
func (p *Portfolio) RemoveTrain(t *Train) {
	for i, held := range p.trains {
		if held == t {
			p.trains = append(p.trains[:i], p.trains[i+1:]...)
			break
		}
	}
	if t.portfolio == p {
		t.portfolio = nil
	}
}

// TransferCertificate atomically moves a certificate between portfolios
// and updates its back-reference.
func TransferCertificate(c *Certificate, from, to *Portfolio) {
	from.removeCertificate(c)
	to.addCertificate(c)
}

// TransferTrain atomically moves a train between portfolios.
func TransferTrain(t *Train, from, to *Portfolio) {
	from.RemoveTrain(t)
	to.AddTrain(t)
}

// TransferPrivate atomically moves a private company between portfolios.
func TransferPrivate(c *Company, from, to *Portfolio) {
	from.RemovePrivate(c)
	to.AddPrivate(c)
}

// FindCertificate returns a certificate of company matching the wanted
// share count and president flag, or nil.
func (p *Portfolio) FindCertificate(c *Company, shares int, president bool) *Certificate {
	for _, cert := range p.byCompany[c.Name()] {
		if cert.Shares() == shares && cert.President() == president {
			return cert
		}
	}
	return nil
}

// OwnsShare returns the total share percentage of company held here,
// president's certificate included.
func (p *Portfolio) OwnsShare(c *Company) int {
	total := 0
	for _, cert := range p.byCompany[c.Name()] {
		total += cert.Percentage()
	}
	return total
}

// CountCertificates returns the number of certificates of company held.
func (p *Portfolio) CountCertificates(c *Company) int {
	return len(p.byCompany[c.Name()])
}

// SwapPresidentCertificate exchanges the president's certificate held
// here for an equivalent bundle of common certificates from other. The
// counterparty must hold enough single-share certificates (or one
// certificate of the exact size) to reconstitute the swapped share
// count; otherwise the swap fails and the presidency stays put.
func (p *Portfolio) SwapPresidentCertificate(c *Company, other *Portfolio) error {
	pres := p.FindCertificate(c, c.PresidentShares, true)
	if pres == nil {
		return fmt.Errorf("%w: %s president's certificate not in %s", ErrNoMatchingCertificate, c.Name(), p.owner.Name())
	}

	var swap []*Certificate
	if cert := other.FindCertificate(c, c.PresidentShares, false); cert != nil {
		swap = []*Certificate{cert}
	} else {
		for _, cert := range other.byCompany[c.Name()] {
			if cert.President() || cert.Shares() != 1 {
				continue
			}
			swap = append(swap, cert)
			if len(swap) == c.PresidentShares {
				break
			}
		}
		if len(swap) < c.PresidentShares {
			return fmt.Errorf("%w: %s holds too few %s shares", ErrInsufficientShares, other.owner.Name(), c.Name())
		}
	}

	TransferCertificate(pres, p, other)
	for _, cert := range swap {
		TransferCertificate(cert, other, p)
	}
	return nil
}
