package game

// OwnerKind distinguishes the kinds of cash holder without runtime type
// inspection.
type OwnerKind int

const (
	BankOwner OwnerKind = iota
	PlayerOwner
	CompanyOwner
)

// CashHolder is anything that can hold money: the bank, a player or a
// company treasury.
type CashHolder interface {
	Name() string
	Kind() OwnerKind
	Cash() int
	AddCash(delta int)
}

// Bank owns the game's cash and the shared certificate pools.
type Bank struct {
	cash int

	// certificate pools; all bank-owned
	IPO         *Portfolio
	Pool        *Portfolio
	Unavailable *Portfolio
	ScrapHeap   *Portfolio
}

// NewBank creates a bank holding the game's total cash.
func NewBank(cash int) *Bank {
	b := &Bank{cash: cash}
	b.IPO = NewPortfolio(poolOwner{"IPO"})
	b.Pool = NewPortfolio(poolOwner{"Pool"})
	b.Unavailable = NewPortfolio(poolOwner{"Unavailable"})
	b.ScrapHeap = NewPortfolio(poolOwner{"ScrapHeap"})
	return b
}

func (b *Bank) Name() string      { return "Bank" }
func (b *Bank) Kind() OwnerKind   { return BankOwner }
func (b *Bank) Cash() int         { return b.cash }
func (b *Bank) AddCash(delta int) { b.cash += delta }

// Broken reports whether the bank has run out of money, which triggers
// the end of the game after the current set of operating rounds.
func (b *Bank) Broken() bool { return b.cash <= 0 }

// Transfer moves amount between two cash holders. A nil endpoint means
// the bank. This is an unconditional bookkeeping primitive: callers
// validate balances before calling, and the total money in the system
// is invariant across any sequence of transfers.
func (b *Bank) Transfer(from, to CashHolder, amount int) {
	if from == nil {
		from = b
	}
	if to == nil {
		to = b
	}
	from.AddCash(-amount)
	to.AddCash(amount)
}

// poolOwner is the owner identity of a bank certificate pool.
type poolOwner struct {
	name string
}

func (p poolOwner) Name() string    { return p.name }
func (p poolOwner) Kind() OwnerKind { return BankOwner }
