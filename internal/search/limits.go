package search

import (
	"fmt"
	"strings"
	"time"

	. "github.com/cricklet/raychess/internal/helpers"
)

const DefaultMovesToGo = 40

// MaxDepth bounds iterative deepening when no depth limit is given. Check
// extensions can push a line past it, so it stays well below MaxPly.
const MaxDepth = MaxPly / 2

// Limits says when a search must stop. Zero values mean "not set".
type Limits struct {
	Depth    int
	MoveTime time.Duration
	Nodes    int
	Infinite bool

	WTime     time.Duration
	BTime     time.Duration
	WInc      time.Duration
	BInc      time.Duration
	MovesToGo int
}

func (l Limits) String() string {
	parts := []string{}
	if l.Depth > 0 {
		parts = append(parts, fmt.Sprint("depth ", l.Depth))
	}
	if l.MoveTime > 0 {
		parts = append(parts, fmt.Sprint("movetime ", l.MoveTime.Milliseconds()))
	}
	if l.Nodes > 0 {
		parts = append(parts, fmt.Sprint("nodes ", l.Nodes))
	}
	if l.Infinite {
		parts = append(parts, "infinite")
	}
	if l.WTime > 0 || l.BTime > 0 {
		parts = append(parts, fmt.Sprint("wtime ", l.WTime.Milliseconds(), " btime ", l.BTime.Milliseconds()))
	}
	if l.WInc > 0 || l.BInc > 0 {
		parts = append(parts, fmt.Sprint("winc ", l.WInc.Milliseconds(), " binc ", l.BInc.Milliseconds()))
	}
	if l.MovesToGo > 0 {
		parts = append(parts, fmt.Sprint("movestogo ", l.MovesToGo))
	}
	return strings.Join(parts, " ")
}

func (l Limits) MaxDepth() int {
	if l.Depth > 0 {
		return Min(l.Depth, MaxDepth)
	}
	return MaxDepth
}

// TimeBudget is the wall clock time player may spend on this move. An
// explicit movetime wins over the clock; infinite searches have no budget.
func (l Limits) TimeBudget(player Player) Optional[time.Duration] {
	if l.Infinite {
		return Empty[time.Duration]()
	}
	if l.MoveTime > 0 {
		return Some(l.MoveTime)
	}

	remaining, increment := l.WTime, l.WInc
	if player == Black {
		remaining, increment = l.BTime, l.BInc
	}
	if remaining <= 0 {
		return Empty[time.Duration]()
	}

	movesToGo := l.MovesToGo
	if movesToGo <= 0 {
		movesToGo = DefaultMovesToGo
	}

	budget := remaining/time.Duration(movesToGo) + increment
	// never plan to use more than is on the clock
	return Some(Min(budget, remaining))
}

// IsUnbounded is true when nothing but Stop can end the search.
func (l Limits) IsUnbounded(player Player) bool {
	return l.Depth <= 0 && l.Nodes <= 0 && l.TimeBudget(player).IsEmpty()
}
