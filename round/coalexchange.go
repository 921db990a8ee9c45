package round

import (
	"fmt"

	"github.com/minaorangina/rails/game"
	"github.com/minaorangina/rails/protocol"
)

// CoalExchangeRound lets minor company owners trade their minor for the
// reserved share of its related major. The minor's treasury and trains
// fold into the major. The round ends when every player passes in
// sequence.
type CoalExchangeRound struct {
	base

	current int
	passes  int
}

// NewCoalExchangeRound creates the exchange round, starting with the
// first seat. Finishes immediately if no exchange is possible.
func NewCoalExchangeRound(ctx *game.Context) *CoalExchangeRound {
	r := &CoalExchangeRound{base: base{ctx: ctx}}
	if len(r.exchangeable()) == 0 {
		r.finished = true
		return r
	}
	ctx.Reportf("minor exchange round begins")
	return r
}

func (r *CoalExchangeRound) Name() string { return "CoalExchangeRound" }

// CurrentPlayer returns the name of the player to act.
func (r *CoalExchangeRound) CurrentPlayer() string {
	return r.ctx.PlayerByIndex(r.current).Name()
}

// exchangeable returns the open minors whose related major has floated.
func (r *CoalExchangeRound) exchangeable() []*game.Company {
	var out []*game.Company
	for _, c := range r.ctx.Companies() {
		if c.CompanyKind() != game.Minor || c.Closed() {
			continue
		}
		major, err := r.ctx.Company(c.RelatedMajor)
		if err != nil || !major.Floated() {
			continue
		}
		out = append(out, c)
	}
	return out
}

func (r *CoalExchangeRound) Handle(a protocol.Action) bool {
	switch a.Command {
	case protocol.ExchangeMinor:
		return r.Exchange(a.Player, a.Company)
	case protocol.Pass:
		return r.Pass(a.Player)
	}
	return r.deny(a.Command.String(), fmt.Errorf("%w in an exchange round", ErrWrongStep))
}

func (r *CoalExchangeRound) Prompt() protocol.Message {
	return protocol.Message{
		Command:       protocol.Prompt,
		Round:         r.Name(),
		CurrentPlayer: r.CurrentPlayer(),
		LegalCommands: cmdNames(protocol.ExchangeMinor, protocol.Pass),
	}
}

// Exchange trades the player's minor for the reserved share of its
// related major.
func (r *CoalExchangeRound) Exchange(playerName, minorName string) bool {
	player, err := r.ctx.Player(playerName)
	if err != nil {
		return r.deny("exchange", err)
	}
	minor, err := r.ctx.Company(minorName)
	if err != nil {
		return r.deny("exchange", err)
	}

	var major *game.Company
	var reserved *game.Certificate

	err = firstError(
		func() error {
			if r.finished {
				return ErrRoundOver
			}
			if playerName != r.CurrentPlayer() {
				return ErrNotYourTurn
			}
			return nil
		},
		func() error {
			if minor.CompanyKind() != game.Minor {
				return fmt.Errorf("%s is not a minor company", minorName)
			}
			if minor.Closed() {
				return fmt.Errorf("%w: %s", game.ErrCompanyClosed, minorName)
			}
			return nil
		},
		func() error {
			if player.Portfolio().FindCertificate(minor, minor.PresidentShares, true) == nil {
				return fmt.Errorf("%w: %s does not own %s", game.ErrNoMatchingCertificate, playerName, minorName)
			}
			return nil
		},
		func() error {
			m, err := r.ctx.Company(minor.RelatedMajor)
			if err != nil {
				return err
			}
			if !m.Floated() {
				return fmt.Errorf("%s has not floated yet", m.Name())
			}
			major = m
			return nil
		},
		func() error {
			reserved = r.ctx.Bank.Unavailable.FindCertificate(major, 1, false)
			if reserved == nil {
				return fmt.Errorf("%w: no reserved %s share", game.ErrNoMatchingCertificate, major.Name())
			}
			return nil
		},
	)
	if err != nil {
		return r.deny("exchange", err)
	}

	game.TransferCertificate(reserved, r.ctx.Bank.Unavailable, player.Portfolio())
	r.ctx.Reportf("%s exchanges %s for a %s share", playerName, minorName, major.Name())

	// fold the minor's assets into the major before closing it
	if cash := minor.Cash(); cash > 0 {
		r.ctx.Bank.Transfer(minor, major, cash)
		r.ctx.Reportf("%s receives %d from %s", major.Name(), cash, minorName)
	}
	for _, t := range minor.Trains() {
		game.TransferTrain(t, minor.Portfolio(), major.Portfolio())
	}
	r.ctx.CloseCompany(minor)
	r.ctx.CheckPresidency(major)

	r.passes = 0
	if len(r.exchangeable()) == 0 {
		r.finished = true
		r.ctx.Reportf("minor exchange round is over")
		return true
	}
	r.nextTurn()
	return true
}

// Pass declines to exchange; a full table of passes ends the round.
func (r *CoalExchangeRound) Pass(playerName string) bool {
	err := firstError(func() error {
		if r.finished {
			return ErrRoundOver
		}
		if playerName != r.CurrentPlayer() {
			return ErrNotYourTurn
		}
		return nil
	})
	if err != nil {
		return r.deny("pass", err)
	}

	r.passes++
	if r.passes == r.ctx.NumPlayers() {
		r.finished = true
		r.ctx.Reportf("minor exchange round is over")
		return true
	}
	r.nextTurn()
	return true
}

func (r *CoalExchangeRound) nextTurn() {
	r.current = (r.current + 1) % r.ctx.NumPlayers()
}
