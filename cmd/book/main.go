package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/cricklet/raychess/internal/book"
	. "github.com/cricklet/raychess/internal/game"
	. "github.com/cricklet/raychess/internal/helpers"
)

// book reads opening lines, one game per line in long algebraic notation,
// and writes them to a badger book directory the engine can load.
func main() {
	input := flag.String("lines", "", "file of opening lines")
	output := flag.String("out", "", "book directory to create or extend")
	flag.Parse()

	if *input == "" || *output == "" {
		flag.Usage()
		os.Exit(2)
	}

	err := run(*input, *output)
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(input string, output string) Error {
	logger := NewLiveLogger(os.Stdout)

	f, err := os.Open(input)
	if err != nil {
		return Wrap(err)
	}
	defer f.Close()

	lines, parseErr := book.ParseLines(f)
	if !IsNil(parseErr) {
		return parseErr
	}
	tree := book.LineTreeFromLines(lines)
	logger.Println("read", len(lines), "lines,", tree.Size(), "moves")

	store, openErr := book.Open(output)
	if !IsNil(openErr) {
		return openErr
	}
	defer store.Close()

	progress := CreateProgressBar(tree.Size(), "writing", func(line string) {
		logger.SetFooter(line, 0)
	})
	writeErr := tree.Write(store, NewStartingPosition(), func() { progress.Add(1) })
	progress.Close()
	if !IsNil(writeErr) {
		return writeErr
	}

	positions, countErr := store.Positions()
	if !IsNil(countErr) {
		return countErr
	}
	logger.Println("book has", positions, "positions")
	return NilError
}
