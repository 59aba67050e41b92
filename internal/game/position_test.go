package game

import (
	"testing"

	. "github.com/cricklet/raychess/internal/bitboards"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/zobrist"
	"github.com/davecgh/go-spew/spew"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPosition(t *testing.T, fen string) Position {
	p, err := PositionFromFen(fen)
	require.True(t, IsNil(err), err)
	return p
}

func sq(s string) int {
	return MustBoardIndex(s)
}

func TestFenRoundTrip(t *testing.T) {
	fens := []string{
		StartingFen,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1",
		"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8",
		"rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2",
	}
	for _, fen := range fens {
		p := mustPosition(t, fen)
		assert.Equal(t, fen, p.Fen())
	}
}

func TestFenDefaults(t *testing.T) {
	p := mustPosition(t, "B6k/1r6/8/8/7q/8/PP6/K7 w - - 49")
	assert.Equal(t, 49, p.HalfMoveClock())
	assert.Equal(t, 1, p.FullMoveNumber())

	p = mustPosition(t, "8/8/8/8/8/8/8/K6k b")
	assert.Equal(t, Black, p.Player())
	assert.Equal(t, NoCastlingRights, p.CastlingRights())
	assert.Equal(t, Bitboard(0), p.EnPassant())
}

func TestFenAcceptsEnPassant(t *testing.T) {
	p := mustPosition(t, "4k3/8/8/3pP3/8/8/8/4K3 w - d6 0 1")
	assert.Equal(t, SingleBitboard(MustBoardIndex("d6")), p.EnPassant())

	p = mustPosition(t, "4k3/8/8/8/4P3/8/8/4K3 b - e3 0 1")
	assert.Equal(t, SingleBitboard(MustBoardIndex("e3")), p.EnPassant())
}

func TestFenRejectsMalformed(t *testing.T) {
	for _, fen := range []string{
		"",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR x KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP w KQkq - 0 1",
		"rnbqkbnr/pppppppp/9/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/ppppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQxq - 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq z9 0 1",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - a 1",
		"rnbq1bnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1",
		// en passant without the double push behind it
		"4k3/8/8/4P3/8/8/8/4K3 w - d6 0 1",
		"4k3/8/8/3pP3/8/8/8/4K3 w - d3 0 1",
		"4k3/8/3p4/3pP3/8/8/8/4K3 w - d6 0 1",
		"4k3/3p4/8/3pP3/8/8/8/4K3 w - d6 0 1",
		"4k3/8/8/8/4P3/8/4P3/4K3 b - e3 0 1",
	} {
		_, err := PositionFromFen(fen)
		assert.False(t, IsNil(err), fen)
	}
}

func TestStartingPosition(t *testing.T) {
	p := NewStartingPosition()
	assert.Equal(t, White, p.Player())
	assert.Equal(t, Rank2, p.Pieces(White, Pawn))
	assert.Equal(t, Rank7, p.Pieces(Black, Pawn))
	assert.Equal(t, Rank1|Rank2|Rank7|Rank8, p.Occupied())
	assert.Equal(t, ^p.Occupied(), p.NotOccupied())
	assert.Equal(t, (Rank1|Rank2)&^SingleBitboard(sq("e1")), p.Attackable(White))
	assert.Equal(t, King, p.PieceTypeAt(White, sq("e1")))
	assert.Equal(t, BQ, p.PieceAt(sq("d8")))
	assert.Equal(t, XX, p.PieceAt(sq("e4")))
	assert.Panics(t, func() { p.PieceTypeAt(White, sq("e4")) })

	// symmetric position, symmetric tables
	assert.Equal(t, p.PieceSquareScore(Opening, White), p.PieceSquareScore(Opening, Black))
	assert.Equal(t, p.PieceSquareScore(Endgame, White), p.PieceSquareScore(Endgame, Black))
}

type moveCase struct {
	before string
	move   Move
	after  string
}

var _moveCases = []moveCase{
	{
		StartingFen,
		NewMove(sq("e2"), sq("e4"), Pawn, DoublePawnPushFlag),
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
	},
	{
		"rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1",
		NewMove(sq("g8"), sq("f6"), Knight, 0),
		"rnbqkb1r/pppppppp/5n2/8/4P3/8/PPPP1PPP/RNBQKBNR w KQkq - 1 2",
	},
	{
		"rnbqkbnr/ppp1pppp/8/8/3pP3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 3",
		NewMove(sq("d4"), sq("e3"), Pawn, EnPassantFlag),
		"rnbqkbnr/ppp1pppp/8/8/8/4p3/PPPP1PPP/RNBQKBNR w KQkq - 0 4",
	},
	{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		CastleMove(White, Queenside),
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/2KR3R b kq - 1 1",
	},
	{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b KQkq - 0 1",
		CastleMove(Black, Kingside),
		"r4rk1/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQ - 1 2",
	},
	{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		NewMove(sq("h1"), sq("g1"), Rook, 0),
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K1R1 b Qkq - 1 1",
	},
	{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R b KQkq - 0 1",
		NewCapture(sq("a6"), sq("e2"), Bishop, Bishop),
		"r3k2r/p1ppqpb1/1n2pnp1/3PN3/1p2P3/2N2Q1p/PPPBbPPP/R3K2R w KQkq - 0 2",
	},
	{
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q2/PPPBBPpP/R3K2R b KQkq - 0 1",
		NewCapture(sq("g2"), sq("h1"), Pawn, Rook).WithPromotion(Queen),
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q2/PPPBBP1P/R3K2q w Qkq - 0 2",
	},
	{
		"8/P6k/8/8/8/8/8/K7 w - - 3 40",
		NewMove(sq("a7"), sq("a8"), Pawn, 0).WithPromotion(Knight),
		"N7/7k/8/8/8/8/8/K7 b - - 0 40",
	},
}

func TestPerformMoveMatchesFen(t *testing.T) {
	for _, c := range _moveCases {
		before := mustPosition(t, c.before)
		expected := mustPosition(t, c.after)

		result := before.WithMove(c.move)
		assert.Equal(t, c.after, result.Fen(), "%v on %v", c.move, c.before)
		// every field, including the key and the piece-square score
		assert.Equal(t, expected, result, spew.Sdump(c))
		assert.Equal(t, zobrist.KeyFrom(&result.pieces, result.player, result.castlingRights, result.enPassant), result.Hash())
	}
}

func TestWithMoveLeavesParentUntouched(t *testing.T) {
	p := NewStartingPosition()
	before := p
	_ = p.WithMove(NewMove(sq("g1"), sq("f3"), Knight, 0))
	assert.Equal(t, before, p)
}

func TestTranspositionsShareKeys(t *testing.T) {
	a := NewStartingPosition()
	for _, m := range []Move{
		NewMove(sq("g1"), sq("f3"), Knight, 0),
		NewMove(sq("g8"), sq("f6"), Knight, 0),
		NewMove(sq("b1"), sq("c3"), Knight, 0),
	} {
		a.PerformMove(m)
	}

	b := NewStartingPosition()
	for _, m := range []Move{
		NewMove(sq("b1"), sq("c3"), Knight, 0),
		NewMove(sq("g8"), sq("f6"), Knight, 0),
		NewMove(sq("g1"), sq("f3"), Knight, 0),
	} {
		b.PerformMove(m)
	}

	assert.Equal(t, a.Hash(), b.Hash())
	start := NewStartingPosition()
	assert.NotEqual(t, start.Hash(), a.Hash())
}

func TestEnPassantChangesKey(t *testing.T) {
	withEp := mustPosition(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1")
	withoutEp := mustPosition(t, "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq - 0 1")
	assert.NotEqual(t, withEp.Hash(), withoutEp.Hash())
	assert.Equal(t, withEp.Hash()^withoutEp.Hash(), zobrist.Key(zobrist.EnPassantFileKeys[4]))
}

func TestCastlingRightsAfterCastle(t *testing.T) {
	p := mustPosition(t, "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1")
	assert.True(t, p.CanCastle(White, Kingside))
	assert.True(t, p.CanCastle(White, Queenside))

	p.PerformMove(CastleMove(White, Queenside))

	assert.False(t, p.CastlingRights().Has(White, Kingside))
	assert.False(t, p.CastlingRights().Has(White, Queenside))
	assert.True(t, p.CanCastle(Black, Kingside))
	assert.True(t, p.CanCastle(Black, Queenside))
}

func TestCanCastleRequiresSafePath(t *testing.T) {
	// black rook on f8 covers f1
	p := mustPosition(t, "4kr2/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	assert.False(t, p.CanCastle(White, Kingside))
	assert.True(t, p.CanCastle(White, Queenside))

	// b1 may be attacked, it is not on the king's path
	p = mustPosition(t, "1r2k3/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	assert.True(t, p.CanCastle(White, Queenside))

	// ...but it must be empty
	p = mustPosition(t, "4k3/8/8/8/8/8/8/RN2K2R w KQ - 0 1")
	assert.False(t, p.CanCastle(White, Queenside))

	// no castling out of check
	p = mustPosition(t, "4r1k1/8/8/8/8/8/8/R3K2R w KQ - 0 1")
	assert.True(t, p.IsInCheck(White))
	assert.False(t, p.CanCastle(White, Kingside))
	assert.False(t, p.CanCastle(White, Queenside))
}

func TestSquareUnderAttack(t *testing.T) {
	p := mustPosition(t, "4k3/8/8/3p4/8/8/6n1/R3K3 w - - 0 1")
	assert.True(t, p.SquareUnderAttack(Black, sq("e4")))  // pawn
	assert.True(t, p.SquareUnderAttack(Black, sq("c4")))  // pawn
	assert.False(t, p.SquareUnderAttack(Black, sq("d4"))) // pawns don't attack forward
	assert.True(t, p.SquareUnderAttack(Black, sq("e1")))  // knight
	assert.True(t, p.SquareUnderAttack(White, sq("a8")))  // rook up the file
	assert.True(t, p.SquareUnderAttack(Black, sq("d7")))  // king
	assert.True(t, p.IsInCheck(White))
	assert.False(t, p.IsInCheck(Black))
}

func TestAttacksForSquare(t *testing.T) {
	p := mustPosition(t, "4k3/8/8/3p4/4P3/8/8/R3K3 w - - 0 1")
	assert.Equal(t, SingleBitboard(sq("d5")), p.AttacksForSquare(Pawn, White, sq("e4")))
	assert.Equal(t,
		(FileA|Rank1)&^BitboardWithAllLocationsSet([]string{"a1", "e1", "f1", "g1", "h1"}),
		p.AttacksForSquare(Rook, White, sq("a1")))
}

func TestHalfMoveClock(t *testing.T) {
	p := mustPosition(t, "4k3/8/8/8/8/8/4P3/R3K3 w - - 10 30")
	p.PerformMove(NewMove(sq("a1"), sq("a5"), Rook, 0))
	assert.Equal(t, 11, p.HalfMoveClock())
	assert.Equal(t, 30, p.FullMoveNumber())
	p.PerformMove(NewMove(sq("e8"), sq("d8"), King, 0))
	assert.Equal(t, 12, p.HalfMoveClock())
	assert.Equal(t, 31, p.FullMoveNumber())
	p.PerformMove(NewMove(sq("e2"), sq("e3"), Pawn, 0))
	assert.Equal(t, 0, p.HalfMoveClock())
}
