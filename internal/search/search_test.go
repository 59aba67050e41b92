package search

import (
	"context"
	"strings"
	"testing"
	"time"

	. "github.com/cricklet/raychess/internal/game"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/zobrist"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchToDepth(t *testing.T, fen string, history []zobrist.Key, depth int) *Searcher {
	p := mustPosition(t, fen)
	searcher := NewSearcher(p, history, Limits{Depth: depth}, SearcherOptions{
		Table: zobrist.NewTranspositionTable(1 << 16),
	})
	searcher.IterativeDeepening(context.Background())
	return searcher
}

func TestSearchFindsBestMove(t *testing.T) {
	cases := []struct {
		name     string
		fen      string
		expected string
	}{
		{"fools mate", "rnbqkbnr/pppp1ppp/4p3/8/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq -", "d8h4"},
		{"only legal move", "r4rk1/ppp2ppp/4p3/8/4p3/4PPbP/PPPB2q1/R2QKR2 w - -", "f1f2"},
		{"skewer the queen", "8/4N3/8/1k5q/8/8/8/2K2R2 w - -", "f1f5"},
		{"mate in one", "2kr3r/pp4pp/4N3/q7/2K5/8/PR1b2PP/8 b - - 7 33", "a5d5"},
		{"bratko kopec 1", "1k1r4/pp1b1R2/3q2pp/4p3/2B5/4Q3/PPP2B2/2K5 b - -", "d6d1"},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			searcher := searchToDepth(t, c.fen, nil, 6)
			require.True(t, searcher.BestMove().HasValue())
			assert.Equal(t, c.expected, searcher.BestMove().Value().String())
		})
	}
}

func TestSearchReportsMate(t *testing.T) {
	searcher := searchToDepth(t, "rnbqkbnr/pppp1ppp/4p3/8/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq -", nil, 6)
	assert.Equal(t, MateInNScore(1), searcher.BestScore())
	// a mate found within the searched depth ends the search
	assert.Equal(t, 1, searcher.CompletedDepth())
	assert.Equal(t, "mate+1", ScoreString(searcher.BestScore()))
}

func TestSearchPosition(t *testing.T) {
	p := mustPosition(t, "8/4N3/8/1k5q/8/8/8/2K2R2 w - -")
	move, score := SearchPosition(context.Background(), p, nil, Limits{Depth: 4}, SearcherOptions{
		Table: zobrist.NewTranspositionTable(1 << 16),
	})
	require.True(t, move.HasValue())
	assert.Equal(t, "f1f5", move.Value().String())
	assert.Greater(t, score, 0)
}

func TestQuiescenceWindow(t *testing.T) {
	constant := func(*Position, Player) int { return 500 }
	newSearcher := func(p Position) *Searcher {
		return NewSearcher(p, nil, Limits{Depth: 1}, SearcherOptions{
			Evaluator: constant,
			Table:     zobrist.NewTranspositionTable(1 << 10),
		})
	}

	quiet := mustPosition(t, "4k3/8/8/8/8/8/8/R3K3 w - - 0 1")
	s := newSearcher(quiet)
	assert.Equal(t, 500, s.quiescence(&quiet, 0, -10, 10))

	capture := mustPosition(t, "4k3/8/8/8/8/8/r7/R3K3 w - - 0 1")
	s = newSearcher(capture)
	assert.Equal(t, 10, s.quiescence(&capture, 0, -10, 10))
}

func TestSearchTakesRepetitionDraw(t *testing.T) {
	repeated := mustPosition(t, "6Q1/pp6/8/8/1kp2N2/1n2R1P1/3r4/1K6 b - -")
	history := []zobrist.Key{repeated.Hash(), 0, repeated.Hash()}

	searcher := searchToDepth(t, "6Q1/pp6/8/8/1kp2N2/1n2R1P1/K7/3r4 b - -", history, 6)
	require.True(t, searcher.BestMove().HasValue())
	assert.Equal(t, "d1d2", searcher.BestMove().Value().String())
	assert.Equal(t, 0, searcher.BestScore())
}

func TestSearchTakesFiftyMoveDraw(t *testing.T) {
	searcher := searchToDepth(t, "B6k/1r6/8/8/7q/8/PP6/K7 w - - 49", nil, 6)
	require.True(t, searcher.BestMove().HasValue())
	assert.Equal(t, "a1b1", searcher.BestMove().Value().String())
	assert.Equal(t, 0, searcher.BestScore())
}

func TestSearchWithoutLegalMoves(t *testing.T) {
	mated := searchToDepth(t, "kQK5/8/8/8/8/8/8/8 b - - 0 1", nil, 4)
	assert.True(t, mated.BestMove().IsEmpty())
	assert.Equal(t, MatedScore(0), mated.BestScore())

	stalemated := searchToDepth(t, "k7/2Q5/1K6/8/8/8/8/8 b - - 0 1", nil, 4)
	assert.True(t, stalemated.BestMove().IsEmpty())
	assert.Equal(t, 0, stalemated.BestScore())
}

func TestSearchInfoPerDepth(t *testing.T) {
	infos := []Info{}
	p := NewStartingPosition()
	searcher := NewSearcher(p, nil, Limits{Depth: 4}, SearcherOptions{
		Table:  zobrist.NewTranspositionTable(1 << 16),
		OnInfo: func(info Info) { infos = append(infos, info) },
	})
	move := searcher.IterativeDeepening(context.Background())
	require.True(t, move.HasValue())

	require.Equal(t, 4, len(infos))
	for i, info := range infos {
		assert.Equal(t, i+1, info.Depth)
		assert.NotEmpty(t, info.PV)
		assert.LessOrEqual(t, len(info.PV), info.Depth)
		if i > 0 {
			assert.Greater(t, info.Nodes, infos[i-1].Nodes)
		}
	}

	last := infos[len(infos)-1]
	assert.Equal(t, move.Value(), last.PV[0])
	assert.Equal(t, last.PV, searcher.PrincipalVariation())
	assert.Equal(t, last.Nodes, searcher.Nodes())
	assert.Equal(t, 4, searcher.CompletedDepth())
	assert.True(t, strings.HasPrefix(last.String(), "info depth 4 nodes "), last.String())
	assert.Contains(t, last.String(), " score cp ")
	assert.Contains(t, last.String(), " pv "+last.PV[0].String())
}

func TestInfoString(t *testing.T) {
	p := NewStartingPosition()
	info := Info{
		Depth: 3,
		Nodes: 1234,
		Score: MateInNScore(3),
		PV:    []Move{mustMove(t, &p, "e2e4")},
	}
	assert.Equal(t, "info depth 3 nodes 1234 score mate 2 pv e2e4", info.String())
}

func TestSearchStopsOnNodeLimit(t *testing.T) {
	p := NewStartingPosition()
	searcher := NewSearcher(p, nil, Limits{Nodes: 5000}, SearcherOptions{
		Table: zobrist.NewTranspositionTable(1 << 16),
	})
	move := searcher.IterativeDeepening(context.Background())
	assert.True(t, move.HasValue())
	assert.True(t, searcher.Stopped())
	assert.Less(t, searcher.CompletedDepth(), MaxDepth)
}

func TestSearchStopsOnMoveTime(t *testing.T) {
	p := mustPosition(t, _kiwipeteFen)
	searcher := NewSearcher(p, nil, Limits{MoveTime: 100 * time.Millisecond}, SearcherOptions{
		Table: zobrist.NewTranspositionTable(1 << 16),
	})

	started := time.Now()
	move := searcher.IterativeDeepening(context.Background())
	assert.True(t, move.HasValue())
	assert.Less(t, time.Since(started), 2*time.Second)
}

func TestInfiniteSearchStops(t *testing.T) {
	p := mustPosition(t, _kiwipeteFen)
	searcher := NewSearcher(p, nil, Limits{Infinite: true}, SearcherOptions{
		Table: zobrist.NewTranspositionTable(1 << 16),
	})

	done := searcher.Start(context.Background())
	time.Sleep(50 * time.Millisecond)
	searcher.Stop()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("search did not stop")
	}
	require.True(t, searcher.BestMove().HasValue())

	legal := LegalMoves(&p)
	assert.Contains(t, legal, searcher.BestMove().Value())
}

func TestSearchStopsOnCancelledContext(t *testing.T) {
	p := mustPosition(t, _kiwipeteFen)
	searcher := NewSearcher(p, nil, Limits{Infinite: true}, SearcherOptions{
		Table: zobrist.NewTranspositionTable(1 << 16),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	move := searcher.IterativeDeepening(ctx)
	assert.True(t, move.HasValue())
	assert.True(t, searcher.Stopped())
}

func TestStopBeforeStartStillAnswers(t *testing.T) {
	p := NewStartingPosition()
	searcher := NewSearcher(p, nil, Limits{Depth: 5}, SearcherOptions{
		Table: zobrist.NewTranspositionTable(1 << 16),
	})
	searcher.Stop()

	move := searcher.IterativeDeepening(context.Background())
	assert.True(t, move.HasValue())
	assert.Equal(t, 0, searcher.CompletedDepth())
}

func TestTimeBudget(t *testing.T) {
	assert.True(t, Limits{}.TimeBudget(White).IsEmpty())
	assert.True(t, Limits{Infinite: true, MoveTime: time.Second}.TimeBudget(White).IsEmpty())
	assert.Equal(t, time.Second, Limits{MoveTime: time.Second, WTime: time.Minute}.TimeBudget(White).Value())

	clock := Limits{WTime: 40 * time.Second, BTime: 80 * time.Second, WInc: time.Second, BInc: 2 * time.Second}
	assert.Equal(t, 2*time.Second, clock.TimeBudget(White).Value())
	assert.Equal(t, 4*time.Second, clock.TimeBudget(Black).Value())

	clock.MovesToGo = 10
	assert.Equal(t, 5*time.Second, clock.TimeBudget(White).Value())

	// the increment never takes the budget past the clock
	low := Limits{WTime: time.Second, WInc: 5 * time.Second}
	assert.Equal(t, time.Second, low.TimeBudget(White).Value())

	assert.True(t, Limits{}.IsUnbounded(White))
	assert.False(t, Limits{Depth: 3}.IsUnbounded(White))
	assert.Equal(t, MaxDepth, Limits{}.MaxDepth())
	assert.Equal(t, 3, Limits{Depth: 3}.MaxDepth())
	assert.Equal(t, "depth 3 movetime 500", Limits{Depth: 3, MoveTime: 500 * time.Millisecond}.String())
}

func TestSearcherOptionsFromArgs(t *testing.T) {
	options, err := SearcherOptionsFromArgs("hash=1", "debugSearchTree")
	require.True(t, IsNil(err), err)
	assert.NotNil(t, options.Table)
	assert.NotNil(t, options.debugSearchTree)

	_, err = SearcherOptionsFromArgs("hash")
	assert.False(t, IsNil(err))
	_, err = SearcherOptionsFromArgs("hash=0")
	assert.False(t, IsNil(err))
	_, err = SearcherOptionsFromArgs("sortPartial")
	assert.False(t, IsNil(err))
}

func TestDebugSearchTree(t *testing.T) {
	options, err := SearcherOptionsFromArgs("debugSearchTree")
	require.True(t, IsNil(err), err)

	// g1g8 mates, so depth 1 is the last one searched
	p := mustPosition(t, "k7/8/1K6/8/8/8/8/6Q1 w - - 0 1")

	searcher := NewSearcher(p, nil, Limits{Depth: 2}, options)
	move := searcher.IterativeDeepening(context.Background())
	require.True(t, move.HasValue())

	tree := options.debugSearchTree.DebugString(2)
	assert.Contains(t, tree, "$ depth 1")
	assert.Contains(t, tree, "$ g1g8")
	assert.Equal(t, 0, options.debugSearchTree.CurrentDepth)
}
