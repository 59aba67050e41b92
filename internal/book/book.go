package book

import (
	"sort"

	. "github.com/cricklet/raychess/internal/game"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/search"
	"github.com/cricklet/raychess/internal/zobrist"
)

// Entry is one book move for a position, in long algebraic notation.
type Entry struct {
	Move   string `json:"move"`
	Weight int    `json:"weight"`
}

type Book interface {
	Entries(key zobrist.Key) ([]Entry, Error)
}

// SortEntries orders by weight, heaviest first, then by move.
func SortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Weight != entries[j].Weight {
			return entries[i].Weight > entries[j].Weight
		}
		return entries[i].Move < entries[j].Move
	})
}

// Probe returns the heaviest book move that is legal in p. Entries that
// don't parse or aren't legal are skipped, since a key can collide.
func Probe(b Book, p *Position) (Optional[Move], Error) {
	if b == nil {
		return Empty[Move](), NilError
	}

	entries, err := b.Entries(p.Hash())
	if !IsNil(err) {
		return Empty[Move](), err
	}
	SortEntries(entries)

	for _, entry := range entries {
		move, err := search.MoveFromString(p, entry.Move)
		if IsNil(err) {
			return Some(move), NilError
		}
	}
	return Empty[Move](), NilError
}
