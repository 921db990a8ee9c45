// Package board holds the map hexes and tiles the operating rounds lay
// track and tokens on. Route connectivity and revenue search live in a
// separate subsystem; the board only tracks what sits on each hex.
package board

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownHex     = errors.New("unknown hex")
	ErrUnknownTile    = errors.New("unknown tile")
	ErrNoTokenSlot    = errors.New("no token slot available on hex")
	ErrTokenPresent   = errors.New("company already has a token on hex")
	ErrTileNotAllowed = errors.New("tile cannot be laid on hex")
)

// Tile is a track tile definition.
type Tile struct {
	ID     string
	Colour string // yellow, green, brown, grey
}

// Hex is one map hex. A hex starts with its preprinted tile; laying a
// tile replaces it. Terrain cost is charged only while the preprinted
// tile is still in place.
type Hex struct {
	Name       string
	Cost       int // terrain cost for the first lay
	TokenSlots int

	tile       *Tile
	preprinted *Tile
	tokens     []string // company names
}

// Tile returns the tile currently on the hex (possibly the preprinted one).
func (h *Hex) Tile() *Tile { return h.tile }

// Preprinted reports whether the hex still shows its original tile.
func (h *Hex) Preprinted() bool { return h.tile == h.preprinted }

// Tokens returns the companies with a base token on this hex.
func (h *Hex) Tokens() []string {
	out := make([]string, len(h.tokens))
	copy(out, h.tokens)
	return out
}

// HasToken reports whether company has a base token here.
func (h *Hex) HasToken(company string) bool {
	for _, t := range h.tokens {
		if t == company {
			return true
		}
	}
	return false
}

// HexConfig describes one hex at setup.
type HexConfig struct {
	Name       string
	Cost       int
	TokenSlots int
	Preprinted string // tile ID; empty means plain ground
}

// Config describes the board at setup.
type Config struct {
	Tiles []Tile
	Hexes []HexConfig
}

// Board is the hex map.
type Board struct {
	tiles map[string]*Tile
	hexes map[string]*Hex
}

// New builds a board from cfg.
func New(cfg Config) (*Board, error) {
	b := &Board{
		tiles: map[string]*Tile{},
		hexes: map[string]*Hex{},
	}
	for i := range cfg.Tiles {
		t := cfg.Tiles[i]
		b.tiles[t.ID] = &t
	}
	for _, hc := range cfg.Hexes {
		h := &Hex{Name: hc.Name, Cost: hc.Cost, TokenSlots: hc.TokenSlots}
		if hc.Preprinted != "" {
			pre, ok := b.tiles[hc.Preprinted]
			if !ok {
				return nil, fmt.Errorf("%w: %s (preprinted on %s)", ErrUnknownTile, hc.Preprinted, hc.Name)
			}
			h.tile = pre
			h.preprinted = pre
		}
		b.hexes[h.Name] = h
	}
	return b, nil
}

// Hex looks up a hex by name.
func (b *Board) Hex(name string) (*Hex, error) {
	h, ok := b.hexes[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownHex, name)
	}
	return h, nil
}

// Tile looks up a tile definition by ID.
func (b *Board) Tile(id string) (*Tile, error) {
	t, ok := b.tiles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTile, id)
	}
	return t, nil
}

// LayTile replaces the tile on the hex. Legality (cost, allowance,
// colour phase) is validated by the operating round before calling.
func (b *Board) LayTile(hex *Hex, tile *Tile) {
	hex.tile = tile
}

// PlaceToken puts a base token for company on the hex.
func (b *Board) PlaceToken(hex *Hex, company string) error {
	if hex.HasToken(company) {
		return fmt.Errorf("%w: %s on %s", ErrTokenPresent, company, hex.Name)
	}
	if len(hex.tokens) >= hex.TokenSlots {
		return fmt.Errorf("%w: %s", ErrNoTokenSlot, hex.Name)
	}
	hex.tokens = append(hex.tokens, company)
	return nil
}
