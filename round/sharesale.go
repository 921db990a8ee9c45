package round

import (
	"fmt"

	"github.com/minaorangina/rails/game"
	"github.com/minaorangina/rails/protocol"
)

// ShareSellingRound interrupts an operating round when a president must
// raise cash for a forced train buy. Only that player acts, only sales
// are legal, and the presidency of the operating company is protected.
// The round ends when the target is met or the player goes bankrupt.
type ShareSellingRound struct {
	base

	player     *game.Player
	company    *game.Company // the company that needs the train
	cashNeeded int
	raised     int
}

// NewShareSellingRound creates the interrupt round for req.
func NewShareSellingRound(ctx *game.Context, req *ShareSaleRequest) *ShareSellingRound {
	r := &ShareSellingRound{
		base:       base{ctx: ctx},
		player:     req.President,
		company:    req.Company,
		cashNeeded: req.CashNeeded,
	}
	ctx.Reportf("%s must sell shares to raise %d for %s", r.player.Name(), r.cashNeeded, r.company.Name())

	if !r.canRaise() {
		r.declareBankruptcy()
	}
	return r
}

func (r *ShareSellingRound) Name() string { return "ShareSellingRound" }

// CurrentPlayer returns the selling president.
func (r *ShareSellingRound) CurrentPlayer() string { return r.player.Name() }

// Remaining returns the cash still to be raised.
func (r *ShareSellingRound) Remaining() int { return r.cashNeeded - r.raised }

func (r *ShareSellingRound) Handle(a protocol.Action) bool {
	if a.Command == protocol.SellShares {
		return r.SellShares(a.Player, a.Company, a.Shares)
	}
	return r.deny(a.Command.String(), fmt.Errorf("%w: only selling is allowed here", ErrWrongStep))
}

func (r *ShareSellingRound) Prompt() protocol.Message {
	return protocol.Message{
		Command:       protocol.Prompt,
		Round:         r.Name(),
		CurrentPlayer: r.CurrentPlayer(),
		Text:          fmt.Sprintf("raise %d for %s", r.Remaining(), r.company.Name()),
		LegalCommands: cmdNames(protocol.SellShares),
	}
}

// SellShares sells shares toward the target. The usual sale rules
// apply except the turn-scoped restrictions; the operating company's
// presidency may not be dumped.
func (r *ShareSellingRound) SellShares(playerName, companyName string, shares int) bool {
	company, err := r.ctx.Company(companyName)
	if err != nil {
		return r.deny("sell", err)
	}

	plan, err := r.planSale(playerName, company, shares)
	if err != nil {
		return r.deny("sell", err)
	}

	commitSale(r.ctx, r.player, company, plan)
	r.raised += plan.shares * plan.price
	if r.raised >= r.cashNeeded {
		r.finished = true
		r.ctx.Reportf("%s has raised %d; play resumes", r.player.Name(), r.raised)
		return true
	}
	if !r.canRaise() {
		r.declareBankruptcy()
	}
	return true
}

func (r *ShareSellingRound) planSale(playerName string, company *game.Company, shares int) (*salePlan, error) {
	err := firstError(
		func() error {
			if r.finished {
				return ErrRoundOver
			}
			if playerName != r.player.Name() {
				return ErrNotYourTurn
			}
			return nil
		},
		func() error {
			if shares < 1 {
				return fmt.Errorf("cannot sell %d shares", shares)
			}
			return nil
		},
		func() error {
			if !company.Started() {
				return fmt.Errorf("%w: %s", game.ErrCompanyNotStarted, company.Name())
			}
			return nil
		},
		func() error {
			pool := r.ctx.Bank.Pool.OwnsShare(company)
			if pool+shares*company.ShareUnit > r.ctx.Rules.PoolLimitPercent {
				return fmt.Errorf("%w: pool may hold at most %d%% of %s",
					game.ErrPoolLimit, r.ctx.Rules.PoolLimitPercent, company.Name())
			}
			return nil
		},
		func() error {
			if r.player.Portfolio().OwnsShare(company) < shares*company.ShareUnit {
				return fmt.Errorf("%w: %s holds only %d%% of %s",
					game.ErrInsufficientShares, playerName, r.player.Portfolio().OwnsShare(company), company.Name())
			}
			return nil
		},
	)
	if err != nil {
		return nil, err
	}

	plan := &salePlan{shares: shares, price: company.MarketPrice()}

	singles := 0
	for _, cert := range r.player.Portfolio().CertificatesOf(company) {
		if !cert.President() {
			singles += cert.Shares()
		}
	}
	if shares > singles {
		if company == r.company {
			return nil, fmt.Errorf("%w: cannot dump the presidency of %s", game.ErrCannotDumpPresidency, company.Name())
		}
		dumpTo := findPresidencyTaker(r.ctx, r.player, company)
		if dumpTo == nil {
			return nil, game.ErrCannotDumpPresidency
		}
		plan.dumpTo = dumpTo
	}
	return plan, nil
}

// canRaise reports whether any further legal sale exists.
func (r *ShareSellingRound) canRaise() bool {
	for _, c := range r.ctx.Companies() {
		if !c.Started() || c.Closed() {
			continue
		}
		if r.player.Portfolio().OwnsShare(c) == 0 {
			continue
		}
		if _, err := r.planSale(r.player.Name(), c, 1); err == nil {
			return true
		}
	}
	return false
}

// declareBankruptcy ends the round and the game: the player cannot
// raise the required cash.
func (r *ShareSellingRound) declareBankruptcy() {
	r.player.DeclareBankrupt()
	r.ctx.BankruptcyDeclared = true
	r.finished = true
	r.ctx.Reportf("%s is bankrupt", r.player.Name())
}
