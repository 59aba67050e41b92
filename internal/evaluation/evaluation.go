package evaluation

import (
	. "github.com/cricklet/raychess/internal/bitboards"
	. "github.com/cricklet/raychess/internal/game"
	. "github.com/cricklet/raychess/internal/helpers"
)

// Evaluator scores p from player's point of view in centipawns.
type Evaluator func(p *Position, player Player) int

var _ Evaluator = Evaluate

var _materialValues = [7]int{
	Rook:         500,
	Knight:       320,
	Bishop:       330,
	King:         0,
	Queen:        900,
	Pawn:         100,
	InvalidPiece: 0,
}

func MaterialValue(pieceType PieceType) int {
	return _materialValues[pieceType]
}

const (
	MobilityBonus       = 1
	RookOpenFileBonus   = 15
	BishopPairBonus     = 20
	DoubledPawnPenalty  = -10
	IsolatedPawnPenalty = -10
	BackwardPawnPenalty = -8
	KingPawnShieldBonus = 10
)

const (
	_blackSquares Bitboard = 0xAA55AA55AA55AA55
	_whiteSquares Bitboard = 0x55AA55AA55AA55AA
)

var _neighborFiles = func() [8]Bitboard {
	result := [8]Bitboard{}
	for file := 0; file < 8; file++ {
		if file > 0 {
			result[file] |= Files[file-1]
		}
		if file < 7 {
			result[file] |= Files[file+1]
		}
	}
	return result
}()

var _pawnShields = func() [2][64]Bitboard {
	result := [2][64]Bitboard{}
	for i := 0; i < 64; i++ {
		square := SingleBitboard(i)
		result[White][i] = square<<8 | (square<<7)&^FileH | (square<<9)&^FileA
		result[Black][i] = square>>8 | (square>>7)&^FileA | (square>>9)&^FileH
	}
	return result
}()

// _phaseWeights count towards the opening; a board with every minor and
// major piece on it is fully in the opening.
var _phaseWeights = [6]int{
	Rook:   2,
	Knight: 1,
	Bishop: 1,
	Queen:  4,
}

const _maxPhase = 24

func phase(p *Position) int {
	result := 0
	for player := White; player <= Black; player++ {
		for _, pieceType := range []PieceType{Rook, Knight, Bishop, Queen} {
			result += _phaseWeights[pieceType] * OnesCount(p.Pieces(player, pieceType))
		}
	}
	return Min(result, _maxPhase)
}

func pawnAttacks(pawns Bitboard, player Player) Bitboard {
	if player == White {
		return (pawns<<7)&^FileH | (pawns<<9)&^FileA
	}
	return (pawns>>7)&^FileA | (pawns>>9)&^FileH
}

// Mobility estimates the number of moves player has, ignoring pins and
// castling.
func Mobility(p *Position, player Player) int {
	pawns := p.Pieces(player, Pawn)
	singlePushes := PawnPush(pawns, player) & p.NotOccupied()
	doublePushes := PawnPush(singlePushes&DoublePushRanks[player], player) & p.NotOccupied()
	attacks := pawnAttacks(pawns, player) & p.Attackable(player.Other())

	moves := OnesCount(singlePushes | doublePushes | attacks)

	for _, pieceType := range []PieceType{Rook, Knight, Bishop, Queen, King} {
		pieces := p.Pieces(player, pieceType)
		for pieces != 0 {
			var square int
			square, pieces = pieces.NextIndexOfOne()
			moves += OnesCount(p.AttacksForSquare(pieceType, player, square))
		}
	}
	return moves
}

// RooksOnOpenFiles counts rooks standing on a file with no pawns of either
// color.
func RooksOnOpenFiles(p *Position, player Player) int {
	allPawns := p.Pieces(White, Pawn) | p.Pieces(Black, Pawn)
	result := 0
	for _, file := range Files {
		if file&allPawns == 0 {
			result += OnesCount(file & p.Pieces(player, Rook))
		}
	}
	return result
}

func HasBishopPair(p *Position, player Player) bool {
	bishops := p.Pieces(player, Bishop)
	return bishops&_blackSquares != 0 && bishops&_whiteSquares != 0
}

func DoubledPawns(p *Position, player Player) int {
	result := 0
	for _, file := range Files {
		if n := OnesCount(file & p.Pieces(player, Pawn)); n > 1 {
			result += n - 1
		}
	}
	return result
}

// IsolatedPawns counts files holding pawns with no friendly pawns on either
// neighboring file.
func IsolatedPawns(p *Position, player Player) int {
	pawns := p.Pieces(player, Pawn)
	result := 0
	for file := 0; file < 8; file++ {
		if Files[file]&pawns != 0 && _neighborFiles[file]&pawns == 0 {
			result++
		}
	}
	return result
}

// BackwardPawns counts pawns whose stop square is covered by an enemy pawn
// and by none of ours.
func BackwardPawns(p *Position, player Player) int {
	pawns := p.Pieces(player, Pawn)
	stops := PawnPush(pawns, player) & p.NotOccupied()
	ours := pawnAttacks(pawns, player)
	theirs := pawnAttacks(p.Pieces(player.Other(), Pawn), player.Other())
	return OnesCount(stops &^ ours & theirs)
}

func PawnsShieldingKing(p *Position, player Player) int {
	king := p.Pieces(player, King)
	if king == 0 {
		return 0
	}
	return OnesCount(_pawnShields[player][king.FirstIndexOfOne()] & p.Pieces(player, Pawn))
}

func material(p *Position, player Player) int {
	result := 0
	for _, pieceType := range AllPieceTypes {
		result += _materialValues[pieceType] * OnesCount(p.Pieces(player, pieceType))
	}
	return result
}

func pieceSquare(p *Position, player Player, phase int) int {
	opening := p.PieceSquareScore(Opening, player)
	endgame := p.PieceSquareScore(Endgame, player)
	return (opening*phase + endgame*(_maxPhase-phase)) / _maxPhase
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Evaluate is the static score of p for player: positive when player is
// ahead. It is symmetric, so Evaluate(p, White) == -Evaluate(p, Black).
func Evaluate(p *Position, player Player) int {
	enemy := player.Other()
	gamePhase := phase(p)

	score := material(p, player) - material(p, enemy)
	score += pieceSquare(p, player, gamePhase) - pieceSquare(p, enemy, gamePhase)
	score += MobilityBonus * (Mobility(p, player) - Mobility(p, enemy))
	score += RookOpenFileBonus * (RooksOnOpenFiles(p, player) - RooksOnOpenFiles(p, enemy))
	score += BishopPairBonus * (boolToInt(HasBishopPair(p, player)) - boolToInt(HasBishopPair(p, enemy)))
	score += DoubledPawnPenalty * (DoubledPawns(p, player) - DoubledPawns(p, enemy))
	score += IsolatedPawnPenalty * (IsolatedPawns(p, player) - IsolatedPawns(p, enemy))
	score += BackwardPawnPenalty * (BackwardPawns(p, player) - BackwardPawns(p, enemy))
	score += KingPawnShieldBonus * (PawnsShieldingKing(p, player) - PawnsShieldingKing(p, enemy))
	return score
}
