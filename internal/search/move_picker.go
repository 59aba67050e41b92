package search

import (
	"math"

	"github.com/cricklet/raychess/internal/evaluation"
	. "github.com/cricklet/raychess/internal/helpers"
)

type PickerKind int

const (
	// FullWidth yields every move.
	FullWidth PickerKind = iota
	// Quiescence yields only captures and promotions.
	Quiescence
)

func (k PickerKind) String() string {
	return [2]string{"full-width", "quiescence"}[k]
}

const (
	HashMoveBonus  = math.MaxInt32
	CaptureBonus   = 4000
	PromotionBonus = 3000
	Killer1Bonus   = 2000
	Killer2Bonus   = 1000
	QuietBonus     = 0
)

// _mvvLva[victim][attacker] prefers the most valuable victim, then the
// least valuable attacker.
var _mvvLva = func() [6][6]int {
	result := [6][6]int{}
	score := 0
	for _, victim := range []PieceType{Pawn, Knight, Bishop, Rook, Queen} {
		for _, attacker := range []PieceType{King, Queen, Rook, Bishop, Knight, Pawn} {
			result[victim][attacker] = score
			score++
		}
	}
	return result
}()

func MvvLva(victim PieceType, attacker PieceType) int {
	return _mvvLva[victim][attacker]
}

// MovePicker hands out moves best first by repeatedly selecting the highest
// remaining score. Most nodes cut off after a move or two, so the list is
// never fully sorted.
type MovePicker struct {
	kind  PickerKind
	moves []ScoredMove
	head  int
}

// NewMovePicker scores moves for player. hashMove may be NullMove.
func NewMovePicker(kind PickerKind, moves []Move, player Player, hashMove Move, ordering *OrderingState) *MovePicker {
	picker := &MovePicker{kind: kind}
	picker.reset(kind, moves, player, hashMove, ordering)
	return picker
}

func (p *MovePicker) reset(kind PickerKind, moves []Move, player Player, hashMove Move, ordering *OrderingState) {
	p.kind = kind
	p.head = 0
	p.moves = p.moves[:0]

	ply := 0
	if ordering != nil {
		ply = ordering.Ply
	}

	for _, move := range moves {
		if kind == Quiescence && move.IsQuiet() {
			continue
		}
		p.moves = append(p.moves, ScoredMove{Move: move, Value: scoreMove(move, player, hashMove, ordering, ply)})
	}
}

func scoreMove(move Move, player Player, hashMove Move, ordering *OrderingState, ply int) int {
	switch {
	case move == hashMove:
		return HashMoveBonus
	case move.IsCapture():
		return CaptureBonus + MvvLva(move.Captured(), move.Piece())
	case move.IsPromotion():
		return PromotionBonus + evaluation.MaterialValue(move.Promotion())
	case ordering == nil:
		return QuietBonus
	case move == ordering.Killer1(ply):
		return Killer1Bonus
	case move == ordering.Killer2(ply):
		return Killer2Bonus
	default:
		// history never outranks a killer
		return QuietBonus + Min(ordering.History(player, move.From(), move.To()), Killer2Bonus-1)
	}
}

func (p *MovePicker) Kind() PickerKind {
	return p.kind
}

func (p *MovePicker) HasNext() bool {
	return p.head < len(p.moves)
}

func (p *MovePicker) Next() ScoredMove {
	best := p.head
	for i := p.head + 1; i < len(p.moves); i++ {
		if p.moves[i].Value > p.moves[best].Value {
			best = i
		}
	}
	p.moves[p.head], p.moves[best] = p.moves[best], p.moves[p.head]
	p.head++
	return p.moves[p.head-1]
}
