package zobrist

import (
	"fmt"
	"math/bits"
	"unsafe"

	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/dustin/go-humanize"
)

type Bound uint8

const (
	NoBound Bound = iota
	// score <= alpha: the true score is at most Score
	UpperBound
	// score >= beta: the true score is at least Score
	LowerBound
	Exact
)

func (b Bound) String() string {
	return [4]string{"none", "upper", "lower", "exact"}[b]
}

type Entry struct {
	Key   Key
	Score int
	Depth int
	Bound Bound
	Move  Move
}

// TranspositionTable is direct mapped: each key has exactly one slot and a
// write always replaces whatever the slot held.
type TranspositionTable struct {
	Size  int
	Cache []Entry
	mask  uint64

	Hits       int
	Collisions int
	Misses     int
}

var DefaultTranspositionTableSize = 1 << 22

func SizeForMegabytes(mb int) int {
	return mb * 1024 * 1024 / int(unsafe.Sizeof(Entry{}))
}

func (t *TranspositionTable) SizeMB() int {
	return t.Size * int(unsafe.Sizeof(Entry{})) / (1024 * 1024)
}

// NewTranspositionTable rounds size down to a power of two.
func NewTranspositionTable(size int) *TranspositionTable {
	if size < 1 {
		size = 1
	}
	size = 1 << (bits.Len(uint(size)) - 1)
	return &TranspositionTable{
		Size:  size,
		Cache: make([]Entry, size),
		mask:  uint64(size - 1),
	}
}

func (t *TranspositionTable) Set(key Key, entry Entry) {
	entry.Key = key
	t.Cache[uint64(key)&t.mask] = entry
}

// Probe only returns entries stored under exactly this key.
func (t *TranspositionTable) Probe(key Key) Optional[Entry] {
	v := &t.Cache[uint64(key)&t.mask]
	if v.Bound == NoBound {
		t.Misses++
		return Empty[Entry]()
	}
	if v.Key != key {
		t.Collisions++
		return Empty[Entry]()
	}
	t.Hits++
	return Some(*v)
}

func (t *TranspositionTable) Clear() {
	clear(t.Cache)
	t.Hits, t.Collisions, t.Misses = 0, 0, 0
}

func (t *TranspositionTable) Stats() string {
	return fmt.Sprintf("size: %v, hits: %v, collisions: %v, misses: %v",
		humanize.Comma(int64(t.Size)),
		humanize.Comma(int64(t.Hits)),
		humanize.Comma(int64(t.Collisions)),
		humanize.Comma(int64(t.Misses)))
}
