package accuracy

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"runtime"
	"sync"

	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/runner"
	"github.com/cricklet/raychess/internal/search"
	"golang.org/x/sync/errgroup"
)

// WinPercentage maps a centipawn score to the expected result for the side
// it belongs to.
func WinPercentage(centipawns int) float64 {
	return 50.0 + 50.0*(2.0/(1.0+math.Exp(-0.00368208*float64(centipawns)))-1.0)
}

type Result struct {
	Epd     string  `json:"epd"`
	ID      string  `json:"id"`
	Move    string  `json:"move"`
	Score   string  `json:"score"`
	Win     float64 `json:"win"`
	Depth   int     `json:"depth"`
	Nodes   int     `json:"nodes"`
	Success bool    `json:"success"`
}

func (r Result) String() string {
	status := "failure"
	if r.Success {
		status = "success"
	}
	return fmt.Sprintf("%v %v: %v (%v, depth %v)", status, r.ID, r.Move, r.Score, r.Depth)
}

type Summary struct {
	Results []Result `json:"results"`
	Passed  int      `json:"passed"`
}

func (s Summary) String() string {
	return fmt.Sprintf("passed %v / %v", s.Passed, len(s.Results))
}

type SuiteOptions struct {
	Limits        search.Limits
	RunnerOptions []runner.Option
	// Workers defaults to GOMAXPROCS
	Workers  int
	OnResult func(Result)
}

// SearchEpd searches one position with a fresh runner.
func SearchEpd(ctx context.Context, epd Epd, limits search.Limits, opts ...runner.Option) (Result, Error) {
	r := runner.NewRunner(opts...)
	err := r.SetupPosition(runner.Setup{Fen: epd.Position.Fen()})
	if !IsNil(err) {
		return Result{}, err
	}

	found := r.Search(ctx, limits)
	if found.Move.IsEmpty() {
		return Result{}, Errorf("no moves found for %v", epd.Line)
	}

	return Result{
		Epd:     epd.Line,
		ID:      epd.ID,
		Move:    found.Move.Value().String(),
		Score:   search.UciScoreString(found.Score),
		Win:     WinPercentage(found.Score),
		Depth:   found.Depth,
		Nodes:   found.Nodes,
		Success: epd.Passes(found.Move.Value()),
	}, NilError
}

// RunSuite searches every position, several at a time. Results keep the
// order of epds.
func RunSuite(ctx context.Context, epds []Epd, options SuiteOptions) (Summary, Error) {
	workers := options.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(epds))
	lock := sync.Mutex{}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, epd := range epds {
		i, epd := i, epd
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := SearchEpd(ctx, epd, options.Limits, options.RunnerOptions...)
			if !IsNil(err) {
				return err
			}
			results[i] = result

			if options.OnResult != nil {
				lock.Lock()
				defer lock.Unlock()
				options.OnResult(result)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Summary{}, Wrap(err)
	}

	summary := Summary{Results: results}
	for _, result := range results {
		if result.Success {
			summary.Passed++
		}
	}
	return summary, NilError
}

func (s Summary) WriteJSON(path string) Error {
	output, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return Wrap(err)
	}
	return Wrap(os.WriteFile(path, output, 0644))
}
