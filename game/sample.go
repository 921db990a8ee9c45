package game

import (
	"github.com/minaorangina/rails/board"
	"github.com/minaorangina/rails/market"
)

// SampleConfig returns a small but complete game setup in the 1830
// mould: two privates and a president's certificate in the start
// packet, four public companies, one coal minor tied to a major.
// The CLI demo and the round tests run on it.
func SampleConfig(players ...string) Config {
	if len(players) == 0 {
		players = []string{"alice", "bola", "carol", "dev"}
	}

	return Config{
		Players:      players,
		BankCash:     12000,
		StartingCash: 600,

		Companies: []CompanyConfig{
			{Name: "SVR", Kind: Private, Value: 40, Revenue: 5, SpecialTileLay: true},
			{Name: "CSL", Kind: Private, Value: 80, Revenue: 10},
			{Name: "PRR", Kind: Public, ShareUnit: 10, ShareCount: 10, PresidentShares: 2,
				FloatPercent: 60, HomeHex: "H12", Tokens: 4, TokenCost: 40},
			{Name: "NYC", Kind: Public, ShareUnit: 10, ShareCount: 10, PresidentShares: 2,
				FloatPercent: 60, HomeHex: "E19", Tokens: 4, TokenCost: 40},
			{Name: "BO", Kind: Public, ShareUnit: 10, ShareCount: 10, PresidentShares: 2,
				FloatPercent: 60, HomeHex: "I15", Tokens: 3, TokenCost: 40},
			{Name: "CO", Kind: Public, ShareUnit: 10, ShareCount: 10, PresidentShares: 2,
				FloatPercent: 60, HomeHex: "F6", Tokens: 3, TokenCost: 40},
			{Name: "KV", Kind: Minor, RelatedMajor: "CO", HomeHex: "G7"},
		},

		TrainTypes: []TrainType{
			{Name: "2", Cost: 80, Count: 6, Phase: "2"},
			{Name: "3", Cost: 180, Count: 5, Phase: "3"},
			{Name: "4", Cost: 300, Count: 4, Phase: "4"},
			{Name: "5", Cost: 450, Count: 3, Phase: "5", Exchange: 350},
		},

		Phases: []*Phase{
			{Name: "2", TrainLimit: 4, OperatingRounds: 1},
			{Name: "3", TrainLimit: 4, OperatingRounds: 2},
			{Name: "4", TrainLimit: 3, OperatingRounds: 2, Rusts: "2"},
			{Name: "5", TrainLimit: 2, OperatingRounds: 3, ClosesPrivates: true},
		},

		Market: market.Config{
			SaleDrop: market.DropOneRow,
			Prices: [][]int{
				{60, 70, 82, 95, 112, 130, 150, 175, 200, 250, 300},
				{55, 65, 76, 88, 104, 120, 140, 165, 190, 240, 290},
				{50, 60, 71, 82, 95, 110, 130, 155, 180, 230, 0},
				{45, 55, 67, 76, 87, 100, 120, 145, 0, 0, 0},
				{40, 50, 62, 71, 80, 92, 110, 0, 0, 0, 0},
				{30, 40, 55, 67, 75, 85, 0, 0, 0, 0, 0},
				{20, 30, 45, 55, 0, 0, 0, 0, 0, 0, 0},
				{10, 20, 35, 0, 0, 0, 0, 0, 0, 0, 0},
			},
			Flags: []market.FlagConfig{
				{Row: 0, Col: 10, EndsGame: true},
				{Row: 7, Col: 0, ClosesCompany: true},
				{Row: 6, Col: 0, NoCertLimit: true, NoHoldLimit: true, NoBuyLimit: true},
				{Row: 6, Col: 1, NoCertLimit: true, NoHoldLimit: true},
				{Row: 5, Col: 0, NoCertLimit: true, NoHoldLimit: true, NoBuyLimit: true},
			},
		},

		Board: board.Config{
			Tiles: []board.Tile{
				{ID: "plain", Colour: "yellow"},
				{ID: "city", Colour: "yellow"},
				{ID: "7", Colour: "yellow"},
				{ID: "8", Colour: "yellow"},
				{ID: "9", Colour: "yellow"},
				{ID: "57", Colour: "yellow"},
				{ID: "14", Colour: "green"},
				{ID: "15", Colour: "green"},
			},
			Hexes: []board.HexConfig{
				{Name: "H12", TokenSlots: 2, Preprinted: "city"},
				{Name: "E19", TokenSlots: 2, Preprinted: "city"},
				{Name: "I15", TokenSlots: 1, Preprinted: "city"},
				{Name: "F6", TokenSlots: 1, Preprinted: "city"},
				{Name: "G7", TokenSlots: 1, Preprinted: "city"},
				{Name: "G17", Cost: 100, Preprinted: "plain"}, // mountains
				{Name: "F16", Cost: 80, Preprinted: "plain"},
				{Name: "H10", Preprinted: "plain"},
				{Name: "H14", Preprinted: "plain"},
			},
		},

		StartPacket: []StartItemConfig{
			{Name: "SVR", Private: "SVR", BasePrice: 40},
			{Name: "CSL", Private: "CSL", BasePrice: 80},
			{Name: "BO-President", CertCompany: "BO", CertPresident: true, BasePrice: 220, NeedsPar: true},
		},

		Rules: Rules{
			CertLimit:        map[int]int{2: 28, 3: 20, 4: 16, 5: 13, 6: 11},
			HoldLimitPercent: 60,
			PoolLimitPercent: 50,
			BidIncrement:     5,
			ParPrices:        []int{67, 71, 76, 82, 87, 95, 100},
			SellRule:         SellBuySell,
			NoSaleFirstSR:    true,
			CurrencyUnit:     1,
		},
	}
}
