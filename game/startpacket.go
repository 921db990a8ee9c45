package game

// StartItem is an auctionable bundle in the start packet: a private
// company and/or a certificate, with a base price and bid history.
type StartItem struct {
	name      string
	private   *Company     // private company sold whole, or nil
	cert      *Certificate // bundled certificate, or nil
	basePrice int
	needsPar  bool // buyer must set a par price (president's certificate)

	bids map[string]int // player name -> highest bid
	pars map[string]int // player name -> par chosen with the bid
	sold bool
}

// Name returns the item's display name.
func (it *StartItem) Name() string { return it.name }

// Private returns the bundled private company, or nil.
func (it *StartItem) Private() *Company { return it.private }

// Certificate returns the bundled certificate, or nil.
func (it *StartItem) Certificate() *Certificate { return it.cert }

// BasePrice returns the current base price. All-pass rounds can reduce it.
func (it *StartItem) BasePrice() int { return it.basePrice }

// NeedsPar reports whether buying the item requires setting a par price.
func (it *StartItem) NeedsPar() bool { return it.needsPar }

// Sold reports whether the item has been sold.
func (it *StartItem) Sold() bool { return it.sold }

// HasBids reports whether any bids stand on the item.
func (it *StartItem) HasBids() bool { return len(it.bids) > 0 }

// Bid records a bid for player. Increment rules are the round's job.
func (it *StartItem) Bid(player string, amount int) {
	if it.bids == nil {
		it.bids = map[string]int{}
	}
	it.bids[player] = amount
}

// BidOf returns the standing bid of player, or zero.
func (it *StartItem) BidOf(player string) int { return it.bids[player] }

// SetBidPar records the par price player chose with their bid. Par
// validity is the round's job.
func (it *StartItem) SetBidPar(player string, par int) {
	if it.pars == nil {
		it.pars = map[string]int{}
	}
	it.pars[player] = par
}

// ParOf returns the par price player chose with their bid, or zero.
func (it *StartItem) ParOf(player string) int { return it.pars[player] }

// WithdrawBid removes a player's bid, returning the amount withdrawn.
func (it *StartItem) WithdrawBid(player string) int {
	amount := it.bids[player]
	delete(it.bids, player)
	delete(it.pars, player)
	return amount
}

// Bidders returns the names of players with standing bids.
func (it *StartItem) Bidders() []string {
	out := make([]string, 0, len(it.bids))
	for name := range it.bids {
		out = append(out, name)
	}
	return out
}

// HighestBid returns the best standing bid and its bidder, or "" and
// zero when there are no bids.
func (it *StartItem) HighestBid() (string, int) {
	best, bestAmount := "", 0
	for name, amount := range it.bids {
		if amount > bestAmount || (amount == bestAmount && best == "") {
			best, bestAmount = name, amount
		}
	}
	return best, bestAmount
}

// ReducePrice lowers the base price by amount, to a floor of zero.
func (it *StartItem) ReducePrice(amount int) {
	it.basePrice -= amount
	if it.basePrice < 0 {
		it.basePrice = 0
	}
}

// MarkSold flips the sold flag. It flips once; items are never reused.
func (it *StartItem) MarkSold() { it.sold = true }

// StartPacket is the ordered list of start items.
type StartPacket struct {
	items []*StartItem
}

// Items returns the packet's items in order.
func (sp *StartPacket) Items() []*StartItem {
	out := make([]*StartItem, len(sp.items))
	copy(out, sp.items)
	return out
}

// Item looks up an item by name.
func (sp *StartPacket) Item(name string) *StartItem {
	for _, it := range sp.items {
		if it.name == name {
			return it
		}
	}
	return nil
}

// NextBuyable returns the first unsold item, the only one directly
// buyable, or nil when the packet is exhausted.
func (sp *StartPacket) NextBuyable() *StartItem {
	for _, it := range sp.items {
		if !it.sold {
			return it
		}
	}
	return nil
}

// Exhausted reports whether every item has been sold.
func (sp *StartPacket) Exhausted() bool { return sp.NextBuyable() == nil }
