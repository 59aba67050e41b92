package search

import (
	"sort"
	"testing"

	. "github.com/cricklet/raychess/internal/game"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/davecgh/go-spew/spew"
	"github.com/dylhunn/dragontoothmg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func moveStrings(moves []Move) []string {
	result := MapSlice(moves, Move.String)
	sort.Strings(result)
	return result
}

func dragontoothMoveStrings(fen string) []string {
	board := dragontoothmg.ParseFen(fen)
	result := []string{}
	for _, move := range board.GenerateLegalMoves() {
		m := move
		result = append(result, m.String())
	}
	sort.Strings(result)
	return result
}

// compareWithDragontooth walks the move tree and checks every node's legal
// moves against an independent generator.
func compareWithDragontooth(t *testing.T, p *Position, depth int, line []string) bool {
	ours := moveStrings(LegalMoves(p))
	theirs := dragontoothMoveStrings(p.Fen())
	if !assert.Equal(t, theirs, ours, "%v after %v", p.Fen(), line) {
		return false
	}
	if depth <= 1 {
		return true
	}
	for _, move := range LegalMoves(p) {
		child := p.WithMove(move)
		if !compareWithDragontooth(t, &child, depth-1, append(line, move.String())) {
			return false
		}
	}
	return true
}

func TestLegalMovesMatchDragontooth(t *testing.T) {
	for _, fen := range []string{
		StartingFen,
		_kiwipeteFen,
		_position3Fen,
		_position4Fen,
		_position5Fen,
		_position6Fen,
		"rnbqkb1r/1ppppppp/5n2/p7/6PP/8/PPPPPP2/RNBQKBNR w KQkq a6 0 3",
		"rnbqkbnr/pp1p1ppp/2p5/4pP2/8/2P5/PP1PP1PP/RNBQKBNR w KQkq e6 0 4",
		"8/8/8/2k5/2pP4/8/B7/4K3 b - d3 0 1",
	} {
		p := mustPosition(t, fen)
		depth := 3
		if testing.Short() {
			depth = 2
		}
		compareWithDragontooth(t, &p, depth, []string{})
	}
}

func TestPromotions(t *testing.T) {
	p := mustPosition(t, "k7/8/8/8/8/8/7p/K7 b - - 0 1")
	assert.Equal(t, []string{
		"a8a7", "a8b7", "a8b8",
		"h2h1b", "h2h1n", "h2h1q", "h2h1r",
	}, moveStrings(LegalMoves(&p)))

	// capture promotions carry both flags
	p = mustPosition(t, _position4Fen)
	p.PerformMove(mustMove(t, &p, "f1f2"))
	move := mustMove(t, &p, "b2a1r")
	assert.True(t, move.IsCapture())
	assert.True(t, move.IsPromotion())
	assert.Equal(t, Rook, move.Captured(), spew.Sdump(move))

	p.PerformMove(move)
	assert.Equal(t, "r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/P2P1RPP/r2Q2K1 w kq - 0 2", p.Fen())
}

func TestIllegalMovesAreFiltered(t *testing.T) {
	// white is in check from the bishop on b6
	p := mustPosition(t, _position4Fen)
	assert.True(t, p.IsInCheck(White))

	pseudo := []Move{}
	GeneratePseudoMoves(func(m Move) { pseudo = append(pseudo, m) }, &p)
	rook := FindInSlice(pseudo, func(m Move) bool { return m.String() == "a1b1" })
	require.True(t, rook.HasValue())
	assert.False(t, IsLegal(&p, rook.Value()))

	assert.Equal(t, []string{"b4c5", "c4c5", "d2d4", "f1f2", "f3d4", "g1h1"}, moveStrings(LegalMoves(&p)))
	assert.True(t, HasLegalMove(&p))
}

func TestNoLegalMoves(t *testing.T) {
	mate := mustPosition(t, "kQK5/8/8/8/8/8/8/8 b - - 0 1")
	assert.False(t, HasLegalMove(&mate))
	assert.True(t, mate.IsInCheck(Black))

	stalemate := mustPosition(t, "k7/2Q5/1K6/8/8/8/8/8 b - - 0 1")
	assert.False(t, HasLegalMove(&stalemate))
	assert.False(t, stalemate.IsInCheck(Black))
}

func TestCastlingMoves(t *testing.T) {
	p := mustPosition(t, "r3k2r/8/8/8/8/8/8/R3K2R w KQkq - 0 1")
	moves := moveStrings(LegalMoves(&p))
	assert.Contains(t, moves, "e1g1")
	assert.Contains(t, moves, "e1c1")

	castle := mustMove(t, &p, "e1g1")
	assert.True(t, castle.Is(KingsideCastleFlag))
	assert.Equal(t, "O-O", castle.SanCastleString())
	assert.Equal(t, "O-O-O", mustMove(t, &p, "e1c1").SanCastleString())

	// a rook on the f-file covers f1
	p = mustPosition(t, "r3kr2/8/8/8/8/8/8/R3K2R w KQq - 0 1")
	moves = moveStrings(LegalMoves(&p))
	assert.NotContains(t, moves, "e1g1")
	assert.Contains(t, moves, "e1c1")
}

func TestMoveFromString(t *testing.T) {
	p := NewStartingPosition()

	move, err := MoveFromString(&p, "e2e4")
	require.True(t, IsNil(err), err)
	assert.True(t, move.Is(DoublePawnPushFlag))
	assert.Equal(t, Pawn, move.Piece())

	_, err = MoveFromString(&p, "e2e5")
	assert.False(t, IsNil(err))

	_, err = MoveFromString(&p, "e2")
	assert.False(t, IsNil(err))

	_, err = MoveFromString(&p, "z9e4")
	assert.False(t, IsNil(err))
}

func TestCheckEvasions(t *testing.T) {
	p := mustPosition(t, "r3k2r/pp1bb3/3pPPQp/qBp1n1p1/6n1/2N1BN2/PPP2PPP/R3K2R b KQkq - 1 14")

	expected := []string{
		"e8d8", // move the king
		"e8f8",
		"e5g6", // capture the queen
		"e5f7", // block
	}
	sort.Strings(expected)
	assert.Equal(t, expected, moveStrings(LegalMoves(&p)))
}

func TestPinnedPieceCannotMove(t *testing.T) {
	p := mustPosition(t, "5k2/8/8/8/1q6/2N4p/2PK2pP/8 w - - 0 44")

	// the knight on c3 is pinned to the king
	assert.Equal(t, []string{"d2c1", "d2d1", "d2d3", "d2e1", "d2e2", "d2e3"}, moveStrings(LegalMoves(&p)))
}

func mustMove(t *testing.T, p *Position, s string) Move {
	move, err := MoveFromString(p, s)
	require.True(t, IsNil(err), err)
	return move
}
