package bitboards

import (
	"fmt"

	. "github.com/cricklet/raychess/internal/helpers"
)

// PawnAttacks[player][square] are the squares a pawn of player on square
// attacks.
var PawnAttacks [2][64]Bitboard
var KnightAttacks [64]Bitboard
var KingAttacks [64]Bitboard

func init() {
	initRays()
	initNonSlidingAttacks()
}

func initNonSlidingAttacks() {
	for i := 0; i < 64; i++ {
		start := SingleBitboard(i)

		PawnAttacks[White][i] = ((start << 9) &^ FileA) | ((start << 7) &^ FileH)
		PawnAttacks[Black][i] = ((start >> 9) &^ FileH) | ((start >> 7) &^ FileA)

		KnightAttacks[i] = (((start << 15) | (start >> 17)) &^ FileH) |
			(((start >> 15) | (start << 17)) &^ FileA) |
			(((start << 6) | (start >> 10)) &^ (FileG | FileH)) |
			(((start >> 6) | (start << 10)) &^ (FileA | FileB))

		KingAttacks[i] = (((start << 7) | (start >> 9) | (start >> 1)) &^ FileH) |
			(((start << 9) | (start >> 7) | (start << 1)) &^ FileA) |
			((start >> 8) | (start << 8))
	}
}

func BishopAttacks(square int, occupied Bitboard) Bitboard {
	return BlockedRay(NE, square, occupied) |
		BlockedRay(NW, square, occupied) |
		BlockedRay(SE, square, occupied) |
		BlockedRay(SW, square, occupied)
}

func RookAttacks(square int, occupied Bitboard) Bitboard {
	return BlockedRay(N, square, occupied) |
		BlockedRay(S, square, occupied) |
		BlockedRay(E, square, occupied) |
		BlockedRay(W, square, occupied)
}

// SlidingAttacks includes the first blocker in each direction, whichever
// side it belongs to. Panics for non-sliding piece types.
func SlidingAttacks(pieceType PieceType, square int, occupied Bitboard) Bitboard {
	switch pieceType {
	case Bishop:
		return BishopAttacks(square, occupied)
	case Rook:
		return RookAttacks(square, occupied)
	case Queen:
		return BishopAttacks(square, occupied) | RookAttacks(square, occupied)
	}
	panic(fmt.Sprintf("%v is not a sliding piece", pieceType))
}

// NonSlidingAttacks panics for sliding piece types.
func NonSlidingAttacks(pieceType PieceType, player Player, square int) Bitboard {
	switch pieceType {
	case Pawn:
		return PawnAttacks[player][square]
	case Knight:
		return KnightAttacks[square]
	case King:
		return KingAttacks[square]
	}
	panic(fmt.Sprintf("%v is not a non-sliding piece", pieceType))
}
