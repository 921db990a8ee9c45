package game

import "fmt"

// Certificate represents a share holding in one company. Certificates
// are created at setup and conserved for the rest of the game: only
// their location and availability change.
type Certificate struct {
	company   *Company
	shares    int
	president bool

	available bool
	portfolio *Portfolio
}

// Company returns the issuing company.
func (c *Certificate) Company() *Company { return c.company }

// Shares returns the number of shares the certificate represents.
func (c *Certificate) Shares() int { return c.shares }

// Percentage returns the share percentage of the certificate.
func (c *Certificate) Percentage() int { return c.shares * c.company.ShareUnit }

// President reports whether this is the president's certificate.
func (c *Certificate) President() bool { return c.president }

// Available reports whether the certificate may currently be bought.
func (c *Certificate) Available() bool { return c.available }

// SetAvailable flips the availability flag.
func (c *Certificate) SetAvailable(v bool) { c.available = v }

// Portfolio returns the portfolio currently holding the certificate.
func (c *Certificate) Portfolio() *Portfolio { return c.portfolio }

func (c *Certificate) String() string {
	if c.president {
		return fmt.Sprintf("%s president's certificate (%d%%)", c.company.Name(), c.Percentage())
	}
	return fmt.Sprintf("%s certificate (%d%%)", c.company.Name(), c.Percentage())
}
