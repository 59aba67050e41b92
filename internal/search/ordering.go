package search

import (
	. "github.com/cricklet/raychess/internal/helpers"
)

const MaxPly = 128

// OrderingState is what the search has learned about move order so far:
// two killer moves per ply and a history score per player and from/to pair.
// It lives for one search.
type OrderingState struct {
	Ply     int
	killers [MaxPly][2]Move
	history [2][64][64]int
}

func NewOrderingState() *OrderingState {
	s := &OrderingState{}
	s.Reset()
	return s
}

func (s *OrderingState) Reset() {
	s.Ply = 0
	for i := range s.killers {
		s.killers[i] = [2]Move{NullMove, NullMove}
	}
	s.history = [2][64][64]int{}
}

// UpdateKillers makes move the first killer at ply, shifting the previous
// first killer into second place.
func (s *OrderingState) UpdateKillers(ply int, move Move) {
	if ply < 0 || ply >= MaxPly || s.killers[ply][0] == move {
		return
	}
	s.killers[ply][1] = s.killers[ply][0]
	s.killers[ply][0] = move
}

func (s *OrderingState) Killer1(ply int) Move {
	if ply < 0 || ply >= MaxPly {
		return NullMove
	}
	return s.killers[ply][0]
}

func (s *OrderingState) Killer2(ply int) Move {
	if ply < 0 || ply >= MaxPly {
		return NullMove
	}
	return s.killers[ply][1]
}

func (s *OrderingState) IncrementHistory(player Player, from int, to int, depth int) {
	s.history[player][from][to] += depth * depth
}

func (s *OrderingState) History(player Player, from int, to int) int {
	return s.history[player][from][to]
}
