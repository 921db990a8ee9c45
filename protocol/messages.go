package protocol

// PlayerInfo identifies a seated or pending player.
type PlayerInfo struct {
	PlayerID string `json:"playerID"`
	Name     string `json:"name"`
}

// Action is a message from a player (or driver) to the current round.
// Fields beyond Player and Command are interpreted per command.
type Action struct {
	Player   string `json:"player"`
	Command  Cmd    `json:"command"`
	Company  string `json:"company,omitempty"`
	Item     string `json:"item,omitempty"`
	Amount   int    `json:"amount,omitempty"`
	Shares   int    `json:"shares,omitempty"`
	Par      int    `json:"par,omitempty"`
	Source   string `json:"source,omitempty"` // "ipo", "pool" or a company name
	Hex      string `json:"hex,omitempty"`
	Tile     string `json:"tile,omitempty"`
	Revenue  int    `json:"revenue,omitempty"`
	Train    string `json:"train,omitempty"`
	Exchange string `json:"exchange,omitempty"` // train handed in on an exchange buy
}

// Message is a notification from the engine to the table: a report line,
// an error, or a prompt naming the legal commands for the player to act.
type Message struct {
	Command       Cmd      `json:"command"`
	Text          string   `json:"text,omitempty"`
	Round         string   `json:"round,omitempty"`
	Step          string   `json:"step,omitempty"`
	CurrentPlayer string   `json:"currentPlayer,omitempty"`
	LegalCommands []string `json:"legalCommands,omitempty"`
}
