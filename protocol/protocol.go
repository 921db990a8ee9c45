package protocol

// Cmd represents a command, either a player action submitted to a round
// or a notification sent back to the table.
type Cmd int

const (
	Null Cmd = iota
	NewJoiner
	Start
	HasStarted
	Error
	Report
	Prompt
	GameOver

	// start round actions
	BuyItem
	Bid
	Pass

	// stock round actions
	StartCompany
	BuyShare
	SellShares

	// operating round actions
	LayTile
	LayToken
	SetRevenue
	Payout
	Withhold
	BuyTrain
	SkipStep

	// game-specific round actions
	ExchangeMinor
)

var CmdNames = map[Cmd]string{
	Null:          "Null",
	NewJoiner:     "NewJoiner",
	Start:         "Start",
	HasStarted:    "HasStarted",
	Error:         "Error",
	Report:        "Report",
	Prompt:        "Prompt",
	GameOver:      "GameOver",
	BuyItem:       "BuyItem",
	Bid:           "Bid",
	Pass:          "Pass",
	StartCompany:  "StartCompany",
	BuyShare:      "BuyShare",
	SellShares:    "SellShares",
	LayTile:       "LayTile",
	LayToken:      "LayToken",
	SetRevenue:    "SetRevenue",
	Payout:        "Payout",
	Withhold:      "Withhold",
	BuyTrain:      "BuyTrain",
	SkipStep:      "SkipStep",
	ExchangeMinor: "ExchangeMinor",
}

var NameToCmd = func() map[string]Cmd {
	m := map[string]Cmd{}
	for cmd, name := range CmdNames {
		m[name] = cmd
	}
	return m
}()

func (c Cmd) String() string {
	return CmdNames[c]
}
