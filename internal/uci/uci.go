package uci

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cricklet/raychess/internal/book"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/runner"
	"github.com/cricklet/raychess/internal/search"
	"github.com/dustin/go-humanize"
)

const (
	EngineName   = "raychess 1"
	EngineAuthor = "Kenrick Rilee"

	_startFen  = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"
	_maxHashMB = 1024
)

// UciRunner turns UCI commands into runner calls. Commands answer through
// HandleInput's return value; lines produced by a background search
// (info and bestmove) go to output.
type UciRunner struct {
	Runner *runner.Runner
	Logger Logger

	output func(string)
	ctx    context.Context

	ownBook  bool
	bookPath string
	store    *book.Store

	lock sync.Mutex
	// closed by stop; an infinite search holds its bestmove until then
	stopped chan struct{}
}

// NewUciRunner builds a runner whose search output is written through
// output. opts are passed on to the runner.
func NewUciRunner(output func(string), opts ...runner.Option) *UciRunner {
	u := &UciRunner{
		output: output,
		ctx:    context.Background(),
	}
	opts = append(opts, runner.WithInfo(func(info search.Info) {
		u.output(info.String())
	}))
	u.Runner = runner.NewRunner(opts...)
	u.Logger = u.Runner.Logger
	return u
}

func parseFen(input string) (string, Error) {
	s := strings.TrimSpace(strings.TrimPrefix(input, "position"))

	if strings.HasPrefix(s, "fen ") {
		s = strings.TrimPrefix(s, "fen ")
		return strings.TrimSpace(strings.Split(s, " moves")[0]), NilError
	} else if strings.HasPrefix(s, "startpos") {
		return _startFen, NilError
	}

	return "", Errorf("couldn't parse '%v'", input)
}

func parseMoves(input string) []string {
	result := []string{}
	if strings.Contains(input, " moves ") {
		fields := strings.Fields(strings.SplitN(input, " moves ", 2)[1])
		result = append(result, fields...)
	}
	return result
}

func parsePosition(input string) (runner.Setup, Error) {
	fen, err := parseFen(input)
	if !IsNil(err) {
		return runner.Setup{}, err
	}
	return runner.Setup{Fen: fen, Moves: parseMoves(input)}, NilError
}

func parseMilliseconds(s string) (time.Duration, Error) {
	ms, err := strconv.Atoi(s)
	if err != nil {
		return 0, Wrap(err)
	}
	return time.Duration(ms) * time.Millisecond, NilError
}

// parseLimits reads the arguments of a "go" command.
func parseLimits(input string) (search.Limits, Error) {
	limits := search.Limits{}
	fields := strings.Fields(input)[1:]

	for i := 0; i < len(fields); i++ {
		name := fields[i]
		if name == "infinite" {
			limits.Infinite = true
			continue
		}
		if name == "ponder" {
			continue
		}

		if i+1 >= len(fields) {
			return limits, Errorf("go %v needs a value", name)
		}
		i++
		value := fields[i]

		var err Error
		switch name {
		case "depth":
			limits.Depth, err = WrapReturn(strconv.Atoi(value))
		case "nodes":
			limits.Nodes, err = WrapReturn(strconv.Atoi(value))
		case "movestogo":
			limits.MovesToGo, err = WrapReturn(strconv.Atoi(value))
		case "movetime":
			limits.MoveTime, err = parseMilliseconds(value)
		case "wtime":
			limits.WTime, err = parseMilliseconds(value)
		case "btime":
			limits.BTime, err = parseMilliseconds(value)
		case "winc":
			limits.WInc, err = parseMilliseconds(value)
		case "binc":
			limits.BInc, err = parseMilliseconds(value)
		default:
			return limits, Errorf("unknown go argument %v", name)
		}
		if !IsNil(err) {
			return limits, Join(Errorf("bad go %v", name), err)
		}
	}
	return limits, NilError
}

// parseSetOption splits "setoption name <id> [value <x>]".
func parseSetOption(input string) (string, string, Error) {
	s := strings.TrimSpace(strings.TrimPrefix(input, "setoption"))
	if !strings.HasPrefix(s, "name ") {
		return "", "", Errorf("couldn't parse '%v'", input)
	}
	s = strings.TrimPrefix(s, "name ")

	name, value, _ := strings.Cut(s, " value")
	return strings.TrimSpace(name), strings.TrimSpace(value), NilError
}

func (u *UciRunner) optionLines() []string {
	return []string{
		fmt.Sprintf("option name Hash type spin default %v min 1 max %v", runner.DefaultHashSizeMB, _maxHashMB),
		"option name OwnBook type check default false",
		"option name BookPath type string default <empty>",
	}
}

func (u *UciRunner) setOption(name string, value string) Error {
	switch strings.ToLower(name) {
	case "hash":
		mb, err := strconv.Atoi(value)
		if err != nil {
			return Wrap(err)
		}
		u.Runner.SetHashSizeMB(Max(1, Min(mb, _maxHashMB)))
	case "ownbook":
		u.ownBook = value == "true"
		return u.updateBook()
	case "bookpath":
		if value == "<empty>" {
			value = ""
		}
		u.bookPath = value
		return u.updateBook()
	default:
		return Errorf("unknown option %v", name)
	}
	return NilError
}

// updateBook opens the book when it is turned on and has a path, and
// closes it otherwise.
func (u *UciRunner) updateBook() Error {
	err := u.closeBook()
	if !IsNil(err) {
		return err
	}
	if !u.ownBook || u.bookPath == "" {
		return NilError
	}

	store, err := book.Open(u.bookPath)
	if !IsNil(err) {
		return err
	}
	u.store = store
	u.Runner.SetBook(store)
	return NilError
}

func (u *UciRunner) closeBook() Error {
	u.Runner.SetBook(nil)
	if u.store == nil {
		return NilError
	}
	err := u.store.Close()
	u.store = nil
	return err
}

func (u *UciRunner) startSearch(limits search.Limits) {
	stopped := make(chan struct{})
	u.lock.Lock()
	u.stopped = stopped
	u.lock.Unlock()

	u.Logger.Println("go", limits)
	u.Runner.StartSearch(u.ctx, limits, func(result runner.SearchResult) {
		if limits.Infinite {
			<-stopped
		}
		if result.Move.HasValue() {
			u.output(fmt.Sprintf("bestmove %v", result.Move.Value()))
		} else {
			u.output("bestmove 0000")
		}
	})
}

// Stop ends the running search. Its bestmove has been written when Stop
// returns.
func (u *UciRunner) Stop() {
	u.lock.Lock()
	if u.stopped != nil {
		close(u.stopped)
		u.stopped = nil
	}
	u.lock.Unlock()

	u.Runner.Stop()
	u.Runner.Wait()
}

// Wait blocks until a search started by "go" has written its bestmove.
func (u *UciRunner) Wait() {
	u.Runner.Wait()
}

// Close stops searching and releases the book.
func (u *UciRunner) Close() Error {
	u.Stop()
	return u.closeBook()
}

func (u *UciRunner) perft(input string) ([]string, Error) {
	fields := strings.Fields(input)
	if len(fields) != 2 {
		return nil, Errorf("usage: perft <depth>")
	}
	depth, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, Wrap(err)
	}

	p := u.Runner.Position()
	start := time.Now()
	results, divideErr := search.Divide(u.ctx, &p, depth, nil)
	if !IsNil(divideErr) {
		return nil, divideErr
	}

	result := []string{}
	total := 0
	for _, r := range results {
		result = append(result, fmt.Sprintf("%v: %v", r.Move, r.Nodes))
		total += r.Nodes
	}
	result = append(result, "")
	result = append(result, fmt.Sprintf("nodes %v", total))
	u.Logger.Println("perft", depth, "searched", humanize.Comma(int64(total)), "nodes in", time.Since(start))
	return result, NilError
}

func (u *UciRunner) HandleInput(input string) ([]string, Error) {
	input = strings.TrimSpace(input)
	result := []string{}

	if input == "uci" {
		result = append(result, "id name "+EngineName)
		result = append(result, "id author "+EngineAuthor)
		result = append(result, u.optionLines()...)
		result = append(result, "uciok")
	} else if input == "isready" {
		result = append(result, "readyok")
	} else if input == "ucinewgame" {
		u.Stop()
		u.Runner.Reset()
	} else if strings.HasPrefix(input, "setoption") {
		name, value, err := parseSetOption(input)
		if !IsNil(err) {
			return result, err
		}
		err = u.setOption(name, value)
		if !IsNil(err) {
			return result, err
		}
	} else if strings.HasPrefix(input, "position") {
		u.Stop()
		setup, err := parsePosition(input)
		if !IsNil(err) {
			return result, err
		}
		err = u.Runner.SetupPosition(setup)
		if !IsNil(err) {
			return result, err
		}
	} else if input == "go" || strings.HasPrefix(input, "go ") {
		limits, err := parseLimits(input)
		if !IsNil(err) {
			return result, err
		}
		u.Stop()
		u.startSearch(limits)
	} else if input == "stop" || input == "quit" {
		u.Stop()
	} else if input == "d" || input == "printboard" {
		p := u.Runner.Position()
		result = append(result, strings.Split(p.String(), "\n")...)
	} else if input == "printmoves" {
		moves := MapSlice(u.Runner.LegalMoves(), Move.String)
		result = append(result, strings.Join(moves, " "))
	} else if strings.HasPrefix(input, "perft") {
		u.Stop()
		return u.perft(input)
	} else if input != "" {
		u.Logger.Println("unknown command:", input)
	}
	return result, NilError
}
