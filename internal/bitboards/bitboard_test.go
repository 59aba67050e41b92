package bitboards

import (
	"testing"

	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/stretchr/testify/assert"
)

func TestBitScans(t *testing.T) {
	b := BitboardWithAllLocationsSet([]string{"c2", "f5", "h7"})
	assert.Equal(t, MustBoardIndex("c2"), b.FirstIndexOfOne())
	assert.Equal(t, MustBoardIndex("h7"), b.LastIndexOfOne())
	assert.Equal(t, 3, OnesCount(b))

	assert.Equal(t, NoSquare, Bitboard(0).FirstIndexOfOne())
	assert.Equal(t, NoSquare, Bitboard(0).LastIndexOfOne())

	index, rest := b.NextIndexOfOne()
	assert.Equal(t, MustBoardIndex("c2"), index)
	assert.Equal(t, BitboardWithAllLocationsSet([]string{"f5", "h7"}), rest)

	assert.Equal(t, SingleBitboard(MustBoardIndex("c2")), b.LeastSignificantOne())
}

func TestEachIndexOfOne(t *testing.T) {
	indices := []int{}
	BitboardWithAllLocationsSet([]string{"a1", "d4", "h8"}).EachIndexOfOneCallback(func(i int) {
		indices = append(indices, i)
	})
	assert.Equal(t, []int{0, 27, 63}, indices)
}

func TestBitboardFromStrings(t *testing.T) {
	b := BitboardFromStrings([8]string{
		"10000000",
		"00000000",
		"00000000",
		"00000000",
		"00000000",
		"00000000",
		"00000000",
		"00000001",
	})
	assert.Equal(t, BitboardWithAllLocationsSet([]string{"a8", "h1"}), b)
	assert.Equal(t, ""+
		"10000000\n"+
		"00000000\n"+
		"00000000\n"+
		"00000000\n"+
		"00000000\n"+
		"00000000\n"+
		"00000000\n"+
		"00000001", b.String())
}

func TestShiftsDoNotWrap(t *testing.T) {
	assert.Equal(t, Bitboard(0), ShiftEast(FileH, 1))
	assert.Equal(t, Bitboard(0), ShiftWest(FileA, 1))
	assert.Equal(t, FileB, ShiftEast(FileA, 1))
	assert.Equal(t, FileG, ShiftWest(FileH, 1))
}
