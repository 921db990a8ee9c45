// Package round implements the round state machines and the round
// orchestrator. Every player-facing operation follows the same
// validate-then-commit protocol: an ordered chain of precondition
// checks runs first, and the first failure rejects the action with a
// report line and no state change. Once the checks pass, the effects
// are applied in a fixed order and cannot fail.
package round

import (
	"errors"

	"github.com/minaorangina/rails/game"
	"github.com/minaorangina/rails/protocol"
)

var (
	ErrNotYourTurn     = errors.New("not your turn")
	ErrWrongStep       = errors.New("action not allowed in the current step")
	ErrWrongCompany    = errors.New("not the operating company")
	ErrRoundOver       = errors.New("round is over")
	ErrItemNotBuyable  = errors.New("item is not buyable")
	ErrItemNotBiddable = errors.New("item is not biddable")
	ErrBidTooLow       = errors.New("bid below the required minimum")
	ErrBoughtThisTurn  = errors.New("already bought shares of this company this turn")
	ErrSoldThisRound   = errors.New("already sold shares of this company this round")
	ErrOneBuyPerTurn   = errors.New("only one certificate may be bought per turn")
	ErrNoSaleFirstSR   = errors.New("selling is not allowed in the first stock round")
	ErrSellAfterBuy    = errors.New("selling is not allowed after buying this turn")
	ErrMustBuyTrain    = errors.New("company must buy a train")
	ErrNotInAuction    = errors.New("player is not in this auction")
)

// Round is one round of play: a finite state machine accepting player
// actions until its terminal condition is met.
type Round interface {
	Name() string
	CurrentPlayer() string
	Done() bool

	// Handle validates and applies one action, returning false with a
	// reported error on any rule violation.
	Handle(a protocol.Action) bool

	// Prompt describes the current decision point for a driver.
	Prompt() protocol.Message
}

// check is one precondition. Checks run in order and must not mutate
// state; the first non-nil error aborts the action.
type check func() error

func firstError(checks ...check) error {
	for _, c := range checks {
		if err := c(); err != nil {
			return err
		}
	}
	return nil
}

// base carries what every round shares.
type base struct {
	ctx      *game.Context
	finished bool
}

func (b *base) Done() bool { return b.finished }

// deny reports a rejected action and returns false. State is untouched
// by contract: deny is only called before any mutation.
func (b *base) deny(action string, err error) bool {
	b.ctx.Reportf("%s rejected: %v", action, err)
	return false
}

func cmdNames(cmds ...protocol.Cmd) []string {
	out := make([]string, len(cmds))
	for i, c := range cmds {
		out[i] = c.String()
	}
	return out
}
