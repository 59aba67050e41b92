package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/runner"
	"github.com/cricklet/raychess/internal/search"
	"github.com/cricklet/raychess/internal/uci"
	"github.com/pkg/profile"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, "recover()", r)
		}
	}()

	args := os.Args[1:]

	if slices.Contains(args, "profile") {
		profilePath := filepath.Join(os.TempDir(), "raychess-uci")
		p := profile.Start(profile.ProfilePath(profilePath))
		defer p.Stop()
	}
	args = FilterSlice(args, func(arg string) bool {
		return arg != "profile"
	})

	if len(args) > 0 && args[0] == "options" {
		for _, option := range search.AllSearchOptions {
			fmt.Println(option)
		}
		return
	}

	searchOptions, err := search.SearcherOptionsFromArgs(args...)
	if !IsNil(err) {
		panic(err)
	}

	// stdout belongs to the protocol, so engine logs go to stderr
	logger := FuncLogger(func(s string) {
		fmt.Fprint(os.Stderr, s)
	})

	r := uci.NewUciRunner(func(line string) {
		fmt.Println(line)
	}, runner.WithSearchOptions(searchOptions), runner.WithLogger(logger))
	defer r.Close()

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		input := scanner.Text()
		result, err := r.HandleInput(input)
		if !IsNil(err) {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		for _, v := range result {
			fmt.Println(v)
		}
		if input == "quit" {
			break
		}
	}
}
