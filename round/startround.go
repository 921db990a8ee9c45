package round

import (
	"fmt"

	"github.com/minaorangina/rails/game"
	"github.com/minaorangina/rails/protocol"
)

// StartRound auctions the start packet, 1830 style. Only the first
// unsold item is directly buyable; later items take bids. When every
// player passes in sequence the first item's price drops; a free item
// is forced onto the player whose turn it is.
type StartRound struct {
	base

	current   int // seat index of the player to act
	passes    int
	lastBuyer int

	// non-nil while a contested item is being auctioned off; only its
	// bidders may act
	auction *game.StartItem
}

// NewStartRound creates the start round, beginning with the first seat.
func NewStartRound(ctx *game.Context) *StartRound {
	r := &StartRound{base: base{ctx: ctx}, lastBuyer: -1}
	ctx.Reportf("start round begins")
	return r
}

func (r *StartRound) Name() string { return "StartRound" }

// CurrentPlayer returns the name of the player to act.
func (r *StartRound) CurrentPlayer() string {
	return r.ctx.PlayerByIndex(r.current).Name()
}

// PriorityIndex returns the seat that should hold priority in the
// first stock round: the player after the last item's buyer.
func (r *StartRound) PriorityIndex() int {
	if r.lastBuyer < 0 {
		return 0
	}
	return (r.lastBuyer + 1) % r.ctx.NumPlayers()
}

// BuyableItem returns the single item currently open to direct
// purchase, or nil.
func (r *StartRound) BuyableItem() *game.StartItem {
	if r.auction != nil {
		return nil
	}
	return r.ctx.Packet.NextBuyable()
}

// BiddableItems returns the unsold items open to bids.
func (r *StartRound) BiddableItems() []*game.StartItem {
	var out []*game.StartItem
	next := r.ctx.Packet.NextBuyable()
	for _, it := range r.ctx.Packet.Items() {
		if !it.Sold() && it != next {
			out = append(out, it)
		}
	}
	return out
}

func (r *StartRound) Handle(a protocol.Action) bool {
	switch a.Command {
	case protocol.BuyItem:
		return r.Buy(a.Player, a.Item, a.Par)
	case protocol.Bid:
		return r.Bid(a.Player, a.Item, a.Amount, a.Par)
	case protocol.Pass:
		return r.Pass(a.Player)
	}
	return r.deny(a.Command.String(), fmt.Errorf("%w in a start round", ErrWrongStep))
}

func (r *StartRound) Prompt() protocol.Message {
	return protocol.Message{
		Command:       protocol.Prompt,
		Round:         r.Name(),
		CurrentPlayer: r.CurrentPlayer(),
		LegalCommands: cmdNames(protocol.BuyItem, protocol.Bid, protocol.Pass),
	}
}

// Buy purchases the first unsold item at its current price.
func (r *StartRound) Buy(playerName, itemName string, par int) bool {
	player, err := r.ctx.Player(playerName)
	if err != nil {
		return r.deny("buy", err)
	}
	item := r.ctx.Packet.Item(itemName)

	err = firstError(
		func() error {
			if r.finished {
				return ErrRoundOver
			}
			return nil
		},
		func() error {
			if playerName != r.CurrentPlayer() {
				return ErrNotYourTurn
			}
			return nil
		},
		func() error {
			if r.auction != nil {
				return fmt.Errorf("%w: an auction is in progress", ErrItemNotBuyable)
			}
			return nil
		},
		func() error {
			if item == nil || item != r.ctx.Packet.NextBuyable() {
				return fmt.Errorf("%w: %s", ErrItemNotBuyable, itemName)
			}
			return nil
		},
		func() error {
			if player.FreeCash() < item.BasePrice() {
				return fmt.Errorf("%w: %s has %d free, needs %d",
					game.ErrInsufficientFunds, playerName, player.FreeCash(), item.BasePrice())
			}
			return nil
		},
		func() error { return r.checkPar(item, par) },
	)
	if err != nil {
		return r.deny("buy", err)
	}

	r.assign(item, player, item.BasePrice(), par)
	r.passes = 0
	r.resolveBids()
	if !r.finished && r.auction == nil {
		r.nextTurn()
	}
	return true
}

// Bid places or raises a bid on a later item, blocking the bid amount.
// A par-requiring item takes its par price with the bid, so a win by
// auction can start the company.
func (r *StartRound) Bid(playerName, itemName string, amount, par int) bool {
	player, err := r.ctx.Player(playerName)
	if err != nil {
		return r.deny("bid", err)
	}
	item := r.ctx.Packet.Item(itemName)

	err = firstError(
		func() error {
			if r.finished {
				return ErrRoundOver
			}
			return nil
		},
		func() error {
			if playerName != r.CurrentPlayer() {
				return ErrNotYourTurn
			}
			return nil
		},
		func() error {
			if item == nil || item.Sold() {
				return fmt.Errorf("%w: %s", ErrItemNotBiddable, itemName)
			}
			return nil
		},
		func() error {
			if r.auction != nil {
				if item != r.auction {
					return fmt.Errorf("%w: the auction is for %s", ErrItemNotBiddable, r.auction.Name())
				}
				if item.BidOf(playerName) == 0 {
					return ErrNotInAuction
				}
				return nil
			}
			if item == r.ctx.Packet.NextBuyable() {
				return fmt.Errorf("%w: the next item must be bought outright", ErrItemNotBiddable)
			}
			return nil
		},
		func() error {
			if amount < r.minBid(item) {
				return fmt.Errorf("%w: minimum is %d", ErrBidTooLow, r.minBid(item))
			}
			return nil
		},
		func() error {
			extra := amount - item.BidOf(playerName)
			if player.FreeCash() < extra {
				return fmt.Errorf("%w: %s has %d free, needs %d",
					game.ErrInsufficientFunds, playerName, player.FreeCash(), extra)
			}
			return nil
		},
		func() error { return r.checkPar(item, par) },
	)
	if err != nil {
		return r.deny("bid", err)
	}

	previous := item.BidOf(playerName)
	player.BlockCash(amount - previous)
	item.Bid(playerName, amount)
	if item.NeedsPar() {
		item.SetBidPar(playerName, par)
	}
	r.ctx.Reportf("%s bids %d for %s", playerName, amount, itemName)
	r.passes = 0
	r.nextTurn()
	return true
}

// Pass declines to act. Outside an auction, a full table of passes
// drops the first item's price; inside one, it withdraws the bid.
func (r *StartRound) Pass(playerName string) bool {
	player, err := r.ctx.Player(playerName)
	if err != nil {
		return r.deny("pass", err)
	}
	err = firstError(
		func() error {
			if r.finished {
				return ErrRoundOver
			}
			return nil
		},
		func() error {
			if playerName != r.CurrentPlayer() {
				return ErrNotYourTurn
			}
			return nil
		},
	)
	if err != nil {
		return r.deny("pass", err)
	}

	if r.auction != nil {
		withdrawn := r.auction.WithdrawBid(playerName)
		player.UnblockCash(withdrawn)
		r.ctx.Reportf("%s passes on %s", playerName, r.auction.Name())

		if bidders := r.auction.Bidders(); len(bidders) == 1 {
			winner, amount := r.auction.HighestBid()
			p, _ := r.ctx.Player(winner)
			p.UnblockCash(amount)
			r.assign(r.auction, p, amount, r.auction.ParOf(winner))
			r.auction = nil
			r.resolveBids()
			if !r.finished && r.auction == nil {
				r.nextTurn()
			}
			return true
		}
		r.nextTurn()
		return true
	}

	player.SetPassed(true)
	r.ctx.Reportf("%s passes", playerName)
	r.passes++
	if r.passes == r.ctx.NumPlayers() {
		r.passes = 0
		item := r.ctx.Packet.NextBuyable()
		if item.BasePrice() == 0 && !item.NeedsPar() {
			// nobody wants a free item; it goes to the next player.
			// a par-requiring item is never force-assigned: starting
			// its company needs a par only a buyer can supply
			r.nextTurn()
			taker := r.ctx.PlayerByIndex(r.current)
			r.ctx.Reportf("%s receives %s for free", taker.Name(), item.Name())
			r.assign(item, taker, 0, 0)
			r.resolveBids()
			if !r.finished && r.auction == nil {
				r.nextTurn()
			}
			return true
		}
		item.ReducePrice(r.ctx.Rules.BidIncrement)
		r.ctx.Reportf("all players passed; %s price drops to %d", item.Name(), item.BasePrice())
	}
	r.nextTurn()
	return true
}

func (r *StartRound) checkPar(item *game.StartItem, par int) error {
	if !item.NeedsPar() {
		return nil
	}
	for _, p := range r.ctx.Rules.ParPrices {
		if p == par {
			return nil
		}
	}
	return fmt.Errorf("%w: %d", game.ErrInvalidPar, par)
}

func (r *StartRound) minBid(item *game.StartItem) int {
	_, highest := item.HighestBid()
	if highest == 0 {
		return item.BasePrice() + r.ctx.Rules.BidIncrement
	}
	return highest + r.ctx.Rules.BidIncrement
}

// assign sells the item to the player at price and delivers its
// contents. Must only be called once all checks have passed.
func (r *StartRound) assign(item *game.StartItem, player *game.Player, price, par int) {
	r.ctx.Bank.Transfer(player, nil, price)
	item.MarkSold()
	r.lastBuyer = player.Index()

	if priv := item.Private(); priv != nil {
		player.Portfolio().AddPrivate(priv)
		r.ctx.Reportf("%s buys %s for %d", player.Name(), priv.Name(), price)
	}
	if cert := item.Certificate(); cert != nil {
		company := cert.Company()
		if item.NeedsPar() {
			r.ctx.SetPar(company, par)
		}
		game.TransferCertificate(cert, cert.Portfolio(), player.Portfolio())
		r.ctx.Reportf("%s receives %s", player.Name(), cert)
		r.ctx.CheckFlotation(company)
	}
}

// resolveBids settles bids on the items that became buyable: a single
// bidder wins outright, several open an auction among themselves.
func (r *StartRound) resolveBids() {
	for {
		item := r.ctx.Packet.NextBuyable()
		if item == nil {
			r.finished = true
			r.ctx.Reportf("start round is over")
			return
		}
		if !item.HasBids() {
			return
		}
		bidders := item.Bidders()
		if len(bidders) == 1 {
			winner, amount := item.HighestBid()
			p, _ := r.ctx.Player(winner)
			p.UnblockCash(amount)
			r.assign(item, p, amount, item.ParOf(winner))
			continue
		}

		// contested: auction among the bidders, lowest seat after the
		// high bidder speaks first
		r.auction = item
		high, _ := item.HighestBid()
		highSeat := r.seatOf(high)
		for i := 1; i <= r.ctx.NumPlayers(); i++ {
			seat := (highSeat + i) % r.ctx.NumPlayers()
			if item.BidOf(r.ctx.PlayerByIndex(seat).Name()) > 0 {
				r.current = seat
				break
			}
		}
		r.ctx.Reportf("auction for %s begins", item.Name())
		return
	}
}

func (r *StartRound) seatOf(playerName string) int {
	p, err := r.ctx.Player(playerName)
	if err != nil {
		panic(fmt.Sprintf("unknown bidder %q", playerName))
	}
	return p.Index()
}

// nextTurn advances to the next player entitled to act.
func (r *StartRound) nextTurn() {
	for i := 1; i <= r.ctx.NumPlayers(); i++ {
		seat := (r.current + i) % r.ctx.NumPlayers()
		if r.auction != nil && r.auction.BidOf(r.ctx.PlayerByIndex(seat).Name()) == 0 {
			continue
		}
		r.current = seat
		return
	}
}
