package game

import (
	"github.com/minaorangina/rails/board"
	"github.com/minaorangina/rails/market"
)

// SellRule is the configured sell/buy sequencing restriction for stock
// turns.
type SellRule int

const (
	// SellBuySell allows selling both before and after the buy.
	SellBuySell SellRule = iota
	// SellBuy requires all sales to precede the buy.
	SellBuy
	// SellBuyOrBuySell allows one block of sales either side of the buy.
	SellBuyOrBuySell
)

// Rules holds the game-wide numeric rules.
type Rules struct {
	CertLimit        map[int]int // by player count
	HoldLimitPercent int         // max holding in one company
	PoolLimitPercent int         // max bank pool holding of one company
	BidIncrement     int
	ParPrices        []int
	SellRule         SellRule
	NoSaleFirstSR    bool
	CurrencyUnit     int
}

// CompanyConfig describes one company at setup.
type CompanyConfig struct {
	Name            string
	Kind            CompanyKind
	ShareUnit       int
	ShareCount      int
	PresidentShares int
	FloatPercent    int

	// privates
	Value          int
	Revenue        int
	SpecialTileLay bool

	// minors
	RelatedMajor string

	HomeHex   string
	Tokens    int
	TokenCost int
}

// StartItemConfig describes one start packet item.
type StartItemConfig struct {
	Name          string
	Private       string // private company sold whole
	CertCompany   string // bundled certificate's company
	CertPresident bool
	BasePrice     int
	NeedsPar      bool
}

// Config is the fully-resolved game setup the engine consumes. File
// formats and validation of raw game data are external collaborators.
type Config struct {
	Players      []string
	BankCash     int
	StartingCash int

	Companies  []CompanyConfig
	TrainTypes []TrainType
	Phases     []*Phase

	Market market.Config
	Board  board.Config

	StartPacket []StartItemConfig
	Rules       Rules

	// Reporter receives report lines; defaults to the standard logger.
	Reporter Reporter
}
