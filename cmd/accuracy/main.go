package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/cricklet/raychess/internal/accuracy"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/runner"
	"github.com/cricklet/raychess/internal/search"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, fmt.Sprint(r))
			fmt.Fprintln(os.Stderr, string(debug.Stack()))
		}
	}()

	moveTime := flag.Duration("movetime", time.Second, "think time per position")
	depth := flag.Int("depth", 0, "fixed depth per position, overrides movetime")
	hash := flag.Int("hash", 16, "transposition table size per worker, in mb")
	workers := flag.Int("workers", 0, "positions searched at once, defaults to GOMAXPROCS")
	output := flag.String("out", "", "write results as json")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Println("usage:")
		fmt.Println(" > accuracy [flags] <suite.epd>")
		flag.PrintDefaults()
		return
	}

	err := run(flag.Arg(0), *moveTime, *depth, *hash, *workers, *output)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(path string, moveTime time.Duration, depth int, hash int, workers int, output string) Error {
	f, err := os.Open(path)
	if err != nil {
		return Wrap(err)
	}
	defer f.Close()

	epds, loadErr := accuracy.LoadEpd(f)
	if !IsNil(loadErr) {
		return loadErr
	}

	limits := search.Limits{MoveTime: moveTime}
	if depth > 0 {
		limits = search.Limits{Depth: depth}
	}

	logger := NewLiveLogger(os.Stdout)
	logger.Println("searching", len(epds), "positions with", limits)

	progress := CreateProgressBar(len(epds), "positions", func(line string) {
		logger.SetFooter(line, 0)
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	summary, suiteErr := accuracy.RunSuite(ctx, epds, accuracy.SuiteOptions{
		Limits:        limits,
		RunnerOptions: []runner.Option{runner.WithHashSizeMB(hash)},
		Workers:       workers,
		OnResult: func(result accuracy.Result) {
			logger.Println(result)
			progress.Add(1)
		},
	})
	progress.Close()
	if !IsNil(suiteErr) {
		return suiteErr
	}

	logger.Println(summary)
	if output != "" {
		return summary.WriteJSON(output)
	}
	return NilError
}
