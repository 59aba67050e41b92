package search

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	. "github.com/cricklet/raychess/internal/game"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
)

type PerftResult struct {
	Nodes      int
	Captures   int
	EnPassants int
	Castles    int
	Promotions int
}

func (r *PerftResult) Add(o PerftResult) {
	r.Nodes += o.Nodes
	r.Captures += o.Captures
	r.EnPassants += o.EnPassants
	r.Castles += o.Castles
	r.Promotions += o.Promotions
}

func (r PerftResult) String() string {
	return fmt.Sprintf("nodes: %v, captures: %v, en passants: %v, castles: %v, promotions: %v",
		humanize.Comma(int64(r.Nodes)),
		humanize.Comma(int64(r.Captures)),
		humanize.Comma(int64(r.EnPassants)),
		humanize.Comma(int64(r.Castles)),
		humanize.Comma(int64(r.Promotions)))
}

// Perft counts the leaf nodes of the legal move tree of the given depth.
func Perft(p *Position, depth int) int {
	if depth == 0 {
		return 1
	}

	moves := GetMovesBuffer()
	defer ReleaseMovesBuffer(moves)
	GeneratePseudoMoves(func(m Move) { *moves = append(*moves, m) }, p)

	result := 0
	for _, move := range *moves {
		child := p.WithMove(move)
		if child.IsInCheck(p.Player()) {
			continue
		}
		if depth == 1 {
			result++
		} else {
			result += Perft(&child, depth-1)
		}
	}
	return result
}

// PerftDetailed also classifies the moves that lead to each leaf.
func PerftDetailed(p *Position, depth int) PerftResult {
	result := PerftResult{}
	if depth == 0 {
		result.Nodes = 1
		return result
	}

	moves := GetMovesBuffer()
	defer ReleaseMovesBuffer(moves)
	GeneratePseudoMoves(func(m Move) { *moves = append(*moves, m) }, p)

	for _, move := range *moves {
		child := p.WithMove(move)
		if child.IsInCheck(p.Player()) {
			continue
		}
		if depth > 1 {
			result.Add(PerftDetailed(&child, depth-1))
			continue
		}
		result.Nodes++
		if move.IsCapture() {
			result.Captures++
		}
		if move.Is(EnPassantFlag) {
			result.EnPassants++
		}
		if move.IsCastle() {
			result.Castles++
		}
		if move.IsPromotion() {
			result.Promotions++
		}
	}
	return result
}

type DivideResult struct {
	Move  Move
	Nodes int
}

// Divide runs perft below each legal root move, one goroutine per move,
// at most GOMAXPROCS at a time. onMove is called as each move finishes.
func Divide(ctx context.Context, p *Position, depth int, onMove func(DivideResult)) ([]DivideResult, Error) {
	if depth < 1 {
		return nil, Errorf("divide needs depth >= 1, got %v", depth)
	}

	moves := LegalMoves(p)
	results := make([]DivideResult, len(moves))

	lock := sync.Mutex{}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, move := range moves {
		i, move := i, move
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			child := p.WithMove(move)
			results[i] = DivideResult{move, Perft(&child, depth-1)}

			if onMove != nil {
				lock.Lock()
				defer lock.Unlock()
				onMove(results[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, Wrap(err)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Move.String() < results[j].Move.String()
	})
	return results, NilError
}
