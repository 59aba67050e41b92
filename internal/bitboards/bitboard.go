package bitboards

import (
	"fmt"
	"math/bits"
	"strings"

	. "github.com/cricklet/raychess/internal/helpers"
)

// Bitboard bit i is square i, with a1=0, h1=7, a8=56, h8=63.
type Bitboard uint64

const NoSquare = -1

var AllZeros Bitboard = Bitboard(0)
var AllOnes Bitboard = ^AllZeros

const (
	FileA Bitboard = 0x0101010101010101
	FileB Bitboard = FileA << 1
	FileG Bitboard = FileA << 6
	FileH Bitboard = FileA << 7

	Rank1 Bitboard = 0xff
	Rank2 Bitboard = Rank1 << 8
	Rank3 Bitboard = Rank1 << 16
	Rank4 Bitboard = Rank1 << 24
	Rank5 Bitboard = Rank1 << 32
	Rank6 Bitboard = Rank1 << 40
	Rank7 Bitboard = Rank1 << 48
	Rank8 Bitboard = Rank1 << 56
)

var Files = [8]Bitboard{
	FileA, FileA << 1, FileA << 2, FileA << 3, FileA << 4, FileA << 5, FileA << 6, FileA << 7,
}

var Ranks = [8]Bitboard{
	Rank1, Rank2, Rank3, Rank4, Rank5, Rank6, Rank7, Rank8,
}

var SingleBitboards [64]Bitboard = func() [64]Bitboard {
	result := [64]Bitboard{}
	for i := 0; i < 64; i++ {
		result[i] = Bitboard(1) << i
	}
	return result
}()

func SingleBitboard(index int) Bitboard {
	return SingleBitboards[index]
}

func BitboardWithAllLocationsSet(locations []string) Bitboard {
	return ReduceSlice(
		MapSlice(locations, MustBoardIndex),
		0,
		func(result Bitboard, index int) Bitboard {
			return result | SingleBitboard(index)
		},
	)
}

// BitboardFromStrings reads eight rows of 0/1, rank 8 first.
func BitboardFromStrings(strings [8]string) Bitboard {
	b := Bitboard(0)
	for inverseRank, line := range strings {
		for file, c := range line {
			if c == '1' {
				index := IndexFromFileRank(FileRank{File: File(file), Rank: Rank(7 - inverseRank)})
				b |= SingleBitboard(index)
			}
		}
	}
	return b
}

func (b Bitboard) String() string {
	ranks := [8]string{}
	for rank := 0; rank < 8; rank++ {
		// mirror the bits so the a-file prints first
		ranks[7-rank] = fmt.Sprintf("%08b", ReverseBits(uint8(b>>(rank*8))))
	}
	return strings.Join(ranks[0:], "\n")
}

func (b Bitboard) IsSet(index int) bool {
	return b&SingleBitboard(index) != 0
}

func (b Bitboard) LeastSignificantOne() Bitboard {
	return b & -b
}

// FirstIndexOfOne is a forward bit-scan. Returns NoSquare for an empty board.
func (b Bitboard) FirstIndexOfOne() int {
	if b == 0 {
		return NoSquare
	}
	return bits.TrailingZeros64(uint64(b))
}

// LastIndexOfOne is a reverse bit-scan. Returns NoSquare for an empty board.
func (b Bitboard) LastIndexOfOne() int {
	if b == 0 {
		return NoSquare
	}
	return 63 - bits.LeadingZeros64(uint64(b))
}

// NextIndexOfOne pops the lowest set bit, returning its index and the
// remaining board.
func (b Bitboard) NextIndexOfOne() (int, Bitboard) {
	ls1 := b.LeastSignificantOne()
	return bits.TrailingZeros64(uint64(ls1)), b ^ ls1
}

func (b Bitboard) EachIndexOfOneCallback(callback func(int)) {
	index, temp := 0, b
	for temp != 0 {
		index, temp = temp.NextIndexOfOne()
		callback(index)
	}
}

func OnesCount(b Bitboard) int {
	return bits.OnesCount64(uint64(b))
}

func ShiftEast(b Bitboard, n int) Bitboard {
	for i := 0; i < n; i++ {
		b = (b << 1) &^ FileA
	}
	return b
}

func ShiftWest(b Bitboard, n int) Bitboard {
	for i := 0; i < n; i++ {
		b = (b >> 1) &^ FileH
	}
	return b
}

func ShiftNorth(b Bitboard) Bitboard {
	return b << 8
}

func ShiftSouth(b Bitboard) Bitboard {
	return b >> 8
}

// PawnPush moves every pawn one rank forward for player.
func PawnPush(b Bitboard, player Player) Bitboard {
	if player == White {
		return ShiftNorth(b)
	}
	return ShiftSouth(b)
}

var PawnPushOffsets = [2]int{8, -8}

var PromotionRanks = [2]Bitboard{Rank8, Rank1}

// DoublePushRanks is the rank a pawn lands on after its first single push.
var DoublePushRanks = [2]Bitboard{Rank3, Rank6}
