package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"runtime/debug"
	"time"

	"github.com/cricklet/raychess/internal/book"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/runner"
	"github.com/cricklet/raychess/internal/server"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintln(os.Stderr, fmt.Sprint(r))
			fmt.Fprintln(os.Stderr, string(debug.Stack()))
		}
	}()

	port := flag.Int("port", 8002, "port to serve on")
	moveTime := flag.Duration("movetime", server.DefaultMoveTime, "engine think time per move")
	hash := flag.Int("hash", runner.DefaultHashSizeMB, "transposition table size per game, in mb")
	static := flag.String("static", "", "directory holding the web client")
	bookPath := flag.String("book", "", "opening book directory")
	flag.Parse()

	logger := FuncLogger(func(s string) { log.Print(s) })
	runnerOpts := []runner.Option{runner.WithHashSizeMB(*hash)}

	if *bookPath != "" {
		store, err := book.Open(*bookPath)
		if !IsNil(err) {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		defer store.Close()
		runnerOpts = append(runnerOpts, runner.WithBook(store))
	}

	s := server.NewServer(
		server.WithLogger(logger),
		server.WithMoveTime(*moveTime),
		server.WithStaticDir(*static),
		server.WithRunnerOptions(runnerOpts...))

	log.Println("serving at", *port)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%v", *port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	err := Wrap(srv.ListenAndServe())
	if !IsNil(err) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
