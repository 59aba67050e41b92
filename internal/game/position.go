package game

import (
	"fmt"

	. "github.com/cricklet/raychess/internal/bitboards"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/zobrist"
)

// Position is a value type. Copying it is the way to branch: the search
// applies each move to its own copy and never undoes anything.
type Position struct {
	pieces   [2][6]Bitboard
	all      [2]Bitboard
	occupied Bitboard

	// at most one bit set, the square passed over by a double push
	enPassant Bitboard

	player         Player
	castlingRights CastlingRights
	halfMoveClock  int
	fullMoveNumber int

	key         zobrist.Key
	pieceSquare [2][2]int
}

func (p *Position) Pieces(player Player, pieceType PieceType) Bitboard {
	return p.pieces[player][pieceType]
}

func (p *Position) AllPieces(player Player) Bitboard {
	return p.all[player]
}

// Attackable is every piece of player except the king.
func (p *Position) Attackable(player Player) Bitboard {
	return p.all[player] &^ p.pieces[player][King]
}

func (p *Position) Occupied() Bitboard {
	return p.occupied
}

func (p *Position) NotOccupied() Bitboard {
	return ^p.occupied
}

func (p *Position) EnPassant() Bitboard {
	return p.enPassant
}

func (p *Position) Player() Player {
	return p.player
}

func (p *Position) Enemy() Player {
	return p.player.Other()
}

func (p *Position) CastlingRights() CastlingRights {
	return p.castlingRights
}

func (p *Position) HalfMoveClock() int {
	return p.halfMoveClock
}

func (p *Position) FullMoveNumber() int {
	return p.fullMoveNumber
}

func (p *Position) Hash() zobrist.Key {
	return p.key
}

func (p *Position) PieceSquareScore(phase GamePhase, player Player) int {
	return p.pieceSquare[phase][player]
}

// PieceTypeAt panics when player has nothing on square, which means the
// caller's view of the board is out of sync with the position.
func (p *Position) PieceTypeAt(player Player, square int) PieceType {
	b := SingleBitboard(square)
	for _, pieceType := range AllPieceTypes {
		if p.pieces[player][pieceType]&b != 0 {
			return pieceType
		}
	}
	panic(fmt.Sprintf("no %v piece on %v\n%v", player, StringFromBoardIndex(square), p.Board()))
}

func (p *Position) PieceAt(square int) Piece {
	b := SingleBitboard(square)
	for player := White; player <= Black; player++ {
		if p.all[player]&b == 0 {
			continue
		}
		return PieceForPlayer[player][p.PieceTypeAt(player, square)]
	}
	return XX
}

func (p *Position) Board() BoardArray {
	result := BoardArray{}
	for square := 0; square < 64; square++ {
		result[square] = p.PieceAt(square)
	}
	return result
}

func (p *Position) addPiece(player Player, pieceType PieceType, square int) {
	b := SingleBitboard(square)
	p.pieces[player][pieceType] |= b
	p.all[player] |= b
	p.occupied |= b

	p.key.FlipPiece(player, pieceType, square)
	p.pieceSquare[Opening][player] += PieceSquareValues[Opening][player][pieceType][square]
	p.pieceSquare[Endgame][player] += PieceSquareValues[Endgame][player][pieceType][square]
}

func (p *Position) removePiece(player Player, pieceType PieceType, square int) {
	b := SingleBitboard(square)
	if p.pieces[player][pieceType]&b == 0 {
		panic(fmt.Sprintf("no %v %v on %v\n%v", player, pieceType, StringFromBoardIndex(square), p.Board()))
	}
	p.pieces[player][pieceType] &^= b
	p.all[player] &^= b
	p.occupied &^= b

	p.key.FlipPiece(player, pieceType, square)
	p.pieceSquare[Opening][player] -= PieceSquareValues[Opening][player][pieceType][square]
	p.pieceSquare[Endgame][player] -= PieceSquareValues[Endgame][player][pieceType][square]
}

func (p *Position) movePiece(player Player, pieceType PieceType, from int, to int) {
	p.removePiece(player, pieceType, from)
	p.addPiece(player, pieceType, to)
}

// _castlingRightsKept[square] is and-ed into the rights whenever a move
// starts or ends on square: moving a king or rook, or capturing a rook on
// its origin square, loses the matching rights.
var _castlingRightsKept = func() [64]CastlingRights {
	result := [64]CastlingRights{}
	for i := range result {
		result[i] = AllCastlingRights
	}
	result[MustBoardIndex("e1")] &^= WhiteKingside | WhiteQueenside
	result[MustBoardIndex("h1")] &^= WhiteKingside
	result[MustBoardIndex("a1")] &^= WhiteQueenside
	result[MustBoardIndex("e8")] &^= BlackKingside | BlackQueenside
	result[MustBoardIndex("h8")] &^= BlackKingside
	result[MustBoardIndex("a8")] &^= BlackQueenside
	return result
}()

type castleSquares struct {
	kingFrom, kingTo int
	rookFrom, rookTo int
	// must be empty
	path Bitboard
	// must not be attacked, in addition to the king's own square
	safe []int
}

var _castles = func() [2][2]castleSquares {
	squares := func(names ...string) []int { return MapSlice(names, MustBoardIndex) }
	result := [2][2]castleSquares{}
	result[White][Kingside] = castleSquares{
		MustBoardIndex("e1"), MustBoardIndex("g1"), MustBoardIndex("h1"), MustBoardIndex("f1"),
		BitboardWithAllLocationsSet([]string{"f1", "g1"}), squares("f1", "g1"),
	}
	result[White][Queenside] = castleSquares{
		MustBoardIndex("e1"), MustBoardIndex("c1"), MustBoardIndex("a1"), MustBoardIndex("d1"),
		BitboardWithAllLocationsSet([]string{"b1", "c1", "d1"}), squares("d1", "c1"),
	}
	result[Black][Kingside] = castleSquares{
		MustBoardIndex("e8"), MustBoardIndex("g8"), MustBoardIndex("h8"), MustBoardIndex("f8"),
		BitboardWithAllLocationsSet([]string{"f8", "g8"}), squares("f8", "g8"),
	}
	result[Black][Queenside] = castleSquares{
		MustBoardIndex("e8"), MustBoardIndex("c8"), MustBoardIndex("a8"), MustBoardIndex("d8"),
		BitboardWithAllLocationsSet([]string{"b8", "c8", "d8"}), squares("d8", "c8"),
	}
	return result
}()

var _castleFlags = [2]MoveFlag{KingsideCastleFlag, QueensideCastleFlag}

// CastleMove is the king move for castling on side.
func CastleMove(player Player, side CastlingSide) Move {
	c := _castles[player][side]
	return NewMove(c.kingFrom, c.kingTo, King, _castleFlags[side])
}

// PerformMove applies a pseudo-legal move in place. The search calls it on
// a copy; see WithMove.
func (p *Position) PerformMove(move Move) {
	player, enemy := p.player, p.player.Other()
	from, to := move.From(), move.To()

	if p.enPassant != 0 {
		p.key.FlipEnPassantFile(p.enPassant.FirstIndexOfOne() % 8)
		p.enPassant = 0
	}

	switch {
	case move.Is(KingsideCastleFlag):
		c := _castles[player][Kingside]
		p.movePiece(player, King, c.kingFrom, c.kingTo)
		p.movePiece(player, Rook, c.rookFrom, c.rookTo)
	case move.Is(QueensideCastleFlag):
		c := _castles[player][Queenside]
		p.movePiece(player, King, c.kingFrom, c.kingTo)
		p.movePiece(player, Rook, c.rookFrom, c.rookTo)
	case move.Is(EnPassantFlag):
		p.movePiece(player, Pawn, from, to)
		p.removePiece(enemy, Pawn, to-PawnPushOffsets[player])
	default:
		if move.Is(CaptureFlag) {
			p.removePiece(enemy, move.Captured(), to)
		}
		if move.IsPromotion() {
			p.removePiece(player, Pawn, from)
			p.addPiece(player, move.Promotion(), to)
		} else {
			p.movePiece(player, move.Piece(), from, to)
		}
		if move.Is(DoublePawnPushFlag) {
			square := from + PawnPushOffsets[player]
			p.enPassant = SingleBitboard(square)
			p.key.FlipEnPassantFile(square % 8)
		}
	}

	if move.Piece() == Pawn || move.IsCapture() {
		p.halfMoveClock = 0
	} else {
		p.halfMoveClock++
	}

	rights := p.castlingRights & _castlingRightsKept[from] & _castlingRightsKept[to]
	p.key.UpdateCastlingRights(p.castlingRights, rights)
	p.castlingRights = rights

	if player == Black {
		p.fullMoveNumber++
	}
	p.player = enemy
	p.key.FlipTurn()
}

// WithMove returns a copy of p with move applied.
func (p *Position) WithMove(move Move) Position {
	child := *p
	child.PerformMove(move)
	return child
}

func (p Position) String() string {
	return fmt.Sprintf("%v\n%v to move, castling %v, en passant %v, halfmove %v, fullmove %v\n%v",
		p.Board().Unicode(),
		p.player,
		p.castlingRights,
		fenStringForEnPassant(p.enPassant),
		p.halfMoveClock,
		p.fullMoveNumber,
		p.Fen())
}
