package zobrist

import (
	"math/rand"

	. "github.com/cricklet/raychess/internal/bitboards"
	. "github.com/cricklet/raychess/internal/helpers"
)

// Key is a position fingerprint maintained by xor-toggling the constants
// below as pieces, rights, en passant and the side to move change.
type Key uint64

var PieceKeys [2][6][64]uint64
var CastlingKeys [4]uint64
var EnPassantFileKeys [8]uint64

// BlackToMoveKey is present in the key whenever black is to move.
var BlackToMoveKey uint64

const Seed = 32879419

func init() {
	r := rand.New(rand.NewSource(Seed))
	BlackToMoveKey = r.Uint64()
	for i := 0; i < 4; i++ {
		CastlingKeys[i] = r.Uint64()
	}
	for i := 0; i < 8; i++ {
		EnPassantFileKeys[i] = r.Uint64()
	}
	for player := White; player <= Black; player++ {
		for _, pieceType := range AllPieceTypes {
			for square := 0; square < 64; square++ {
				PieceKeys[player][pieceType][square] = r.Uint64()
			}
		}
	}
}

func (k *Key) FlipPiece(player Player, pieceType PieceType, square int) {
	*k ^= Key(PieceKeys[player][pieceType][square])
}

func (k *Key) MovePiece(player Player, pieceType PieceType, from int, to int) {
	k.FlipPiece(player, pieceType, from)
	k.FlipPiece(player, pieceType, to)
}

func (k *Key) FlipTurn() {
	*k ^= Key(BlackToMoveKey)
}

func (k *Key) FlipEnPassantFile(file int) {
	*k ^= Key(EnPassantFileKeys[file])
}

// UpdateCastlingRights toggles every right present in before but not in
// after. Rights are never regained, so that is the only transition.
func (k *Key) UpdateCastlingRights(before CastlingRights, after CastlingRights) {
	lost := before &^ after
	for i := 0; i < 4; i++ {
		if lost&(1<<i) != 0 {
			*k ^= Key(CastlingKeys[i])
		}
	}
}

// KeyFrom computes a key from scratch. Positions use it once when they are
// constructed and then maintain it incrementally.
func KeyFrom(pieces *[2][6]Bitboard, player Player, rights CastlingRights, enPassant Bitboard) Key {
	k := Key(0)
	for p := White; p <= Black; p++ {
		for _, pieceType := range AllPieceTypes {
			pieces[p][pieceType].EachIndexOfOneCallback(func(square int) {
				k.FlipPiece(p, pieceType, square)
			})
		}
	}
	if player == Black {
		k.FlipTurn()
	}
	for i := 0; i < 4; i++ {
		if rights&(1<<i) != 0 {
			k ^= Key(CastlingKeys[i])
		}
	}
	if enPassant != 0 {
		k.FlipEnPassantFile(enPassant.FirstIndexOfOne() % 8)
	}
	return k
}
