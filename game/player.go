package game

// Player is a seated player. Created once at setup, mutated every
// round, never destroyed.
type Player struct {
	name  string
	index int
	cash  int

	portfolio *Portfolio

	// cash committed to pending auction bids; unavailable for other
	// spending until the bid resolves
	blockedCash int

	// round-scoped flags, reset by the owning round
	passed         bool
	boughtThisTurn map[string]bool // companies bought this stock turn
	soldThisRound  map[string]bool // companies sold this stock round
	bankrupt       bool
}

func (p *Player) Name() string      { return p.name }
func (p *Player) Kind() OwnerKind   { return PlayerOwner }
func (p *Player) Cash() int         { return p.cash }
func (p *Player) AddCash(delta int) { p.cash += delta }

// Index returns the player's seating position.
func (p *Player) Index() int { return p.index }

// Portfolio returns the player's portfolio.
func (p *Player) Portfolio() *Portfolio { return p.portfolio }

// FreeCash returns cash not blocked by pending bids.
func (p *Player) FreeCash() int { return p.cash - p.blockedCash }

// BlockedCash returns the cash committed to pending bids.
func (p *Player) BlockedCash() int { return p.blockedCash }

// BlockCash reserves amount for a pending bid.
func (p *Player) BlockCash(amount int) { p.blockedCash += amount }

// UnblockCash releases amount previously blocked.
func (p *Player) UnblockCash(amount int) { p.blockedCash -= amount }

// Passed reports whether the player has passed this round.
func (p *Player) Passed() bool { return p.passed }

// SetPassed records or clears a pass.
func (p *Player) SetPassed(v bool) { p.passed = v }

// Bankrupt reports whether the player has been declared bankrupt.
func (p *Player) Bankrupt() bool { return p.bankrupt }

// DeclareBankrupt marks the player bankrupt.
func (p *Player) DeclareBankrupt() { p.bankrupt = true }

// BoughtThisTurn reports whether the player bought a certificate of
// company on their current stock turn.
func (p *Player) BoughtThisTurn(company string) bool {
	return p.boughtThisTurn[company]
}

// BoughtAnyThisTurn reports whether the player bought any certificate
// on their current stock turn.
func (p *Player) BoughtAnyThisTurn() bool { return len(p.boughtThisTurn) > 0 }

// RecordBuy records a certificate purchase for this stock turn.
func (p *Player) RecordBuy(company string) {
	if p.boughtThisTurn == nil {
		p.boughtThisTurn = map[string]bool{}
	}
	p.boughtThisTurn[company] = true
}

// SoldThisRound reports whether the player sold shares of company this
// stock round.
func (p *Player) SoldThisRound(company string) bool {
	return p.soldThisRound[company]
}

// RecordSale records a sale of company shares for this stock round.
func (p *Player) RecordSale(company string) {
	if p.soldThisRound == nil {
		p.soldThisRound = map[string]bool{}
	}
	p.soldThisRound[company] = true
}

// ResetTurnFlags clears the per-turn flags.
func (p *Player) ResetTurnFlags() {
	p.passed = false
	p.boughtThisTurn = map[string]bool{}
}

// ResetRoundFlags clears the per-round flags.
func (p *Player) ResetRoundFlags() {
	p.ResetTurnFlags()
	p.soldThisRound = map[string]bool{}
}
