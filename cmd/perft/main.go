package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	. "github.com/cricklet/raychess/internal/game"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/search"
	"github.com/dustin/go-humanize"
	"github.com/schollz/progressbar/v3"
)

func main() {
	fen := flag.String("fen", "", "position to count from, defaults to the starting position")
	depth := flag.Int("depth", 5, "perft depth")
	detailed := flag.Bool("detailed", false, "also count captures, castles, en passants and promotions")
	flag.Parse()

	p := NewStartingPosition()
	if *fen != "" {
		var err Error
		p, err = PositionFromFen(*fen)
		if !IsNil(err) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	start := time.Now()
	if *detailed {
		result := search.PerftDetailed(&p, *depth)
		fmt.Println(result)
		fmt.Println("took", time.Since(start))
		fmt.Println("move buffers", search.StatsMoveBuffer())
		return
	}

	bar := progressbar.Default(int64(len(search.LegalMoves(&p))), fmt.Sprint("depth ", *depth))
	results, err := search.Divide(ctx, &p, *depth, func(search.DivideResult) {
		_ = bar.Add(1)
	})
	_ = bar.Finish()
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	total := 0
	for _, r := range results {
		fmt.Printf("%v: %v\n", r.Move, r.Nodes)
		total += r.Nodes
	}
	elapsed := time.Since(start)
	fmt.Println()
	fmt.Println("nodes", humanize.Comma(int64(total)))
	fmt.Printf("took %v, %v nodes/s\n", elapsed.Round(time.Millisecond),
		humanize.Comma(int64(float64(total)/elapsed.Seconds())))
	fmt.Println("move buffers", search.StatsMoveBuffer())
}
