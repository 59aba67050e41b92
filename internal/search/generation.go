package search

import (
	. "github.com/cricklet/raychess/internal/bitboards"
	. "github.com/cricklet/raychess/internal/game"
	. "github.com/cricklet/raychess/internal/helpers"
)

var GetMovesBuffer, ReleaseMovesBuffer, StatsMoveBuffer = CreatePool(func() []Move { return make([]Move, 0, 256) }, func(t *[]Move) { *t = (*t)[:0] })

var _promotions = [4]PieceType{Queen, Rook, Bishop, Knight}

func emitPawnMove(f func(Move), m Move, player Player) {
	if PromotionRanks[player].IsSet(m.To()) {
		for _, promotion := range _promotions {
			f(m.WithPromotion(promotion))
		}
		return
	}
	f(m)
}

func generatePawnMoves(f func(Move), p *Position) {
	player, enemy := p.Player(), p.Enemy()
	pawns := p.Pieces(player, Pawn)
	offset := PawnPushOffsets[player]

	singles := PawnPush(pawns, player) & p.NotOccupied()
	doubles := PawnPush(singles&DoublePushRanks[player], player) & p.NotOccupied()

	for to, temp := 0, singles; temp != 0; {
		to, temp = temp.NextIndexOfOne()
		emitPawnMove(f, NewMove(to-offset, to, Pawn, 0), player)
	}
	for to, temp := 0, doubles; temp != 0; {
		to, temp = temp.NextIndexOfOne()
		f(NewMove(to-2*offset, to, Pawn, DoublePawnPushFlag))
	}

	targets := p.Attackable(enemy)
	for from, temp := 0, pawns; temp != 0; {
		from, temp = temp.NextIndexOfOne()
		attacks := PawnAttacks[player][from]

		for to, captures := 0, attacks&targets; captures != 0; {
			to, captures = captures.NextIndexOfOne()
			emitPawnMove(f, NewCapture(from, to, Pawn, p.PieceTypeAt(enemy, to)), player)
		}
		if attacks&p.EnPassant() != 0 {
			f(NewEnPassant(from, p.EnPassant().FirstIndexOfOne()))
		}
	}
}

func generatePieceMoves(f func(Move), p *Position, pieceType PieceType) {
	player, enemy := p.Player(), p.Enemy()
	targets := p.Attackable(enemy)

	for from, temp := 0, p.Pieces(player, pieceType); temp != 0; {
		from, temp = temp.NextIndexOfOne()

		var attacks Bitboard
		if pieceType.IsSliding() {
			attacks = SlidingAttacks(pieceType, from, p.Occupied())
		} else {
			attacks = NonSlidingAttacks(pieceType, player, from)
		}

		for to, quiet := 0, attacks&p.NotOccupied(); quiet != 0; {
			to, quiet = quiet.NextIndexOfOne()
			f(NewMove(from, to, pieceType, 0))
		}
		for to, captures := 0, attacks&targets; captures != 0; {
			to, captures = captures.NextIndexOfOne()
			f(NewCapture(from, to, pieceType, p.PieceTypeAt(enemy, to)))
		}
	}
}

// GeneratePseudoMoves emits every move that obeys piece movement rules,
// including ones that leave the mover's king attacked. Castling is only
// emitted when it is fully legal.
func GeneratePseudoMoves(f func(Move), p *Position) {
	generatePawnMoves(f, p)
	for _, pieceType := range []PieceType{Knight, Bishop, Rook, Queen, King} {
		generatePieceMoves(f, p, pieceType)
	}
	for _, side := range AllCastlingSides {
		if p.CanCastle(p.Player(), side) {
			f(CastleMove(p.Player(), side))
		}
	}
}

// IsLegal reports whether a pseudo-legal move keeps the mover out of check.
func IsLegal(p *Position, move Move) bool {
	child := p.WithMove(move)
	return !child.IsInCheck(p.Player())
}

func GenerateLegalMoves(f func(Move), p *Position) {
	GeneratePseudoMoves(func(move Move) {
		if IsLegal(p, move) {
			f(move)
		}
	}, p)
}

// LegalMoves is for callers outside the search; it allocates.
func LegalMoves(p *Position) []Move {
	result := []Move{}
	GenerateLegalMoves(func(m Move) { result = append(result, m) }, p)
	return result
}

func HasLegalMove(p *Position) bool {
	moves := GetMovesBuffer()
	defer ReleaseMovesBuffer(moves)

	GeneratePseudoMoves(func(m Move) { *moves = append(*moves, m) }, p)
	for _, m := range *moves {
		if IsLegal(p, m) {
			return true
		}
	}
	return false
}

// MoveFromString resolves long algebraic notation against the legal moves
// of p.
func MoveFromString(p *Position, s string) (Move, Error) {
	text, err := ParseMoveText(s)
	if !IsNil(err) {
		return NullMove, err
	}
	match := FindInSlice(LegalMoves(p), text.Matches)
	if match.IsEmpty() {
		return NullMove, Errorf("%v is not legal in %v", s, p.Fen())
	}
	return match.Value(), NilError
}
