package bitboards

import (
	"math/rand"
	"testing"

	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/stretchr/testify/assert"
)

var _dirSteps = [NumDirs][2]int{
	N:  {0, 1},
	S:  {0, -1},
	E:  {1, 0},
	W:  {-1, 0},
	NE: {1, 1},
	NW: {-1, 1},
	SE: {1, -1},
	SW: {-1, -1},
}

// walk steps square by square, stopping after the first occupied square.
func walk(dir Dir, square int, occupied Bitboard) Bitboard {
	result := Bitboard(0)
	file, rank := square%8, square/8
	for {
		file += _dirSteps[dir][0]
		rank += _dirSteps[dir][1]
		if file < 0 || file > 7 || rank < 0 || rank > 7 {
			return result
		}
		result |= SingleBitboard(rank*8 + file)
		if occupied.IsSet(rank*8 + file) {
			return result
		}
	}
}

func TestRaysMatchWalk(t *testing.T) {
	for dir := N; dir < NumDirs; dir++ {
		for square := 0; square < 64; square++ {
			assert.Equal(t, walk(dir, square, 0), Rays[dir][square],
				"%v from %v", dir, StringFromBoardIndex(square))
		}
	}
}

func TestRaysFromCorners(t *testing.T) {
	a1, h1, a8, h8 := MustBoardIndex("a1"), MustBoardIndex("h1"), MustBoardIndex("a8"), MustBoardIndex("h8")

	assert.Equal(t, FileA&^Rank1, Rays[N][a1])
	assert.Equal(t, Rank1&^FileA, Rays[E][a1])
	assert.Equal(t, Bitboard(0), Rays[S][a1])
	assert.Equal(t, Bitboard(0), Rays[W][a1])
	assert.Equal(t, Bitboard(0), Rays[SW][a1])
	assert.Equal(t, Bitboard(0), Rays[NW][a1])
	assert.Equal(t, 7, OnesCount(Rays[NE][a1]))

	assert.Equal(t, Bitboard(0), Rays[NE][h1])
	assert.Equal(t, 7, OnesCount(Rays[NW][h1]))
	assert.Equal(t, Bitboard(0), Rays[NW][a8])
	assert.Equal(t, 7, OnesCount(Rays[SE][a8]))
	assert.Equal(t, Bitboard(0), Rays[N][h8])
	assert.Equal(t, 7, OnesCount(Rays[SW][h8]))
}

func TestSlidingAttacksMatchWalk(t *testing.T) {
	r := rand.New(rand.NewSource(1))
	for i := 0; i < 200; i++ {
		occupied := Bitboard(r.Uint64() & r.Uint64())
		for square := 0; square < 64; square++ {
			rook := Bitboard(0)
			for _, dir := range RookDirs {
				rook |= walk(dir, square, occupied)
			}
			bishop := Bitboard(0)
			for _, dir := range BishopDirs {
				bishop |= walk(dir, square, occupied)
			}

			assert.Equal(t, rook, SlidingAttacks(Rook, square, occupied))
			assert.Equal(t, bishop, SlidingAttacks(Bishop, square, occupied))
			assert.Equal(t, rook|bishop, SlidingAttacks(Queen, square, occupied))
		}
	}
}

func TestRookAttacksStopAtBlockers(t *testing.T) {
	d4 := MustBoardIndex("d4")
	occupied := BitboardWithAllLocationsSet([]string{"d6", "d2", "b4", "g4"})
	expected := BitboardWithAllLocationsSet([]string{
		"d5", "d6",
		"d3", "d2",
		"c4", "b4",
		"e4", "f4", "g4",
	})
	assert.Equal(t, expected, RookAttacks(d4, occupied))
}

func TestSlidingAttacksPanicsForNonSliders(t *testing.T) {
	assert.Panics(t, func() { SlidingAttacks(Knight, 0, 0) })
	assert.Panics(t, func() { NonSlidingAttacks(Rook, White, 0) })
}

func TestNonSlidingAttacks(t *testing.T) {
	assert.Equal(t,
		BitboardWithAllLocationsSet([]string{"b3", "c2"}),
		KnightAttacks[MustBoardIndex("a1")])
	assert.Equal(t, 8, OnesCount(KnightAttacks[MustBoardIndex("e4")]))
	assert.Equal(t,
		BitboardWithAllLocationsSet([]string{"g8", "g7", "h7"}),
		KingAttacks[MustBoardIndex("h8")])
	assert.Equal(t, 8, OnesCount(KingAttacks[MustBoardIndex("e4")]))

	assert.Equal(t,
		BitboardWithAllLocationsSet([]string{"d5", "f5"}),
		PawnAttacks[White][MustBoardIndex("e4")])
	assert.Equal(t,
		BitboardWithAllLocationsSet([]string{"b3"}),
		PawnAttacks[Black][MustBoardIndex("a4")])
	assert.Equal(t,
		BitboardWithAllLocationsSet([]string{"g5"}),
		NonSlidingAttacks(Pawn, White, MustBoardIndex("h4")))
}
