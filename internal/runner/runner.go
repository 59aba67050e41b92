package runner

import (
	"context"
	"strings"
	"sync"

	"github.com/cricklet/raychess/internal/book"
	. "github.com/cricklet/raychess/internal/game"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/search"
	"github.com/cricklet/raychess/internal/zobrist"
)

const DefaultHashSizeMB = 64

type Options struct {
	Logger        Logger
	HashSizeMB    int
	Book          book.Book
	OnInfo        func(search.Info)
	SearchOptions search.SearcherOptions
}

type Option func(*Options)

func WithLogger(logger Logger) Option {
	return func(o *Options) { o.Logger = logger }
}

func WithHashSizeMB(mb int) Option {
	return func(o *Options) { o.HashSizeMB = mb }
}

// WithBook consults b before every search. nil turns the book off.
func WithBook(b book.Book) Option {
	return func(o *Options) { o.Book = b }
}

func WithInfo(onInfo func(search.Info)) Option {
	return func(o *Options) { o.OnInfo = onInfo }
}

// WithSearchOptions passes options such as debugSearchTree to every search.
// A table in options becomes the runner's table; the info callback is
// replaced by the runner's own.
func WithSearchOptions(options search.SearcherOptions) Option {
	return func(o *Options) { o.SearchOptions = options }
}

// Setup is what a UCI "position" command describes.
type Setup struct {
	Fen   string
	Moves []string
}

func (s Setup) String() string {
	if len(s.Moves) == 0 {
		return s.Fen
	}
	return s.Fen + " moves " + strings.Join(s.Moves, " ")
}

// Runner is one engine session. It holds the game so far, the
// transposition table shared by its searches and at most one running
// search.
type Runner struct {
	Logger Logger

	options Options
	table   *zobrist.TranspositionTable

	startFen string
	// positions[i] is the position before moves[i]; the last entry is the
	// current position.
	positions []Position
	moves     []Move

	lock     sync.Mutex
	searcher *search.Searcher
	done     <-chan struct{}
}

func NewRunner(opts ...Option) *Runner {
	options := Options{HashSizeMB: DefaultHashSizeMB}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Logger == nil {
		options.Logger = SilentLogger
	}
	if options.HashSizeMB < 1 {
		options.HashSizeMB = 1
	}

	r := &Runner{
		Logger:  options.Logger,
		options: options,
		table:   options.SearchOptions.Table,
	}
	if r.table == nil {
		r.table = zobrist.NewTranspositionTable(zobrist.SizeForMegabytes(options.HashSizeMB))
	} else {
		r.options.HashSizeMB = Max(1, r.table.SizeMB())
	}
	r.resetGame(NewStartingPosition())
	return r
}

func (r *Runner) resetGame(start Position) {
	r.startFen = start.Fen()
	r.positions = []Position{start}
	r.moves = []Move{}
}

// Reset starts a new game from the starting position and forgets
// everything the table learned.
func (r *Runner) Reset() {
	r.Stop()
	r.Wait()
	r.resetGame(NewStartingPosition())
	r.table.Clear()
}

func (r *Runner) SetHashSizeMB(mb int) {
	r.Stop()
	r.Wait()
	if mb < 1 {
		mb = 1
	}
	r.options.HashSizeMB = mb
	r.table = zobrist.NewTranspositionTable(zobrist.SizeForMegabytes(mb))
}

func (r *Runner) HashSizeMB() int {
	return r.options.HashSizeMB
}

func (r *Runner) SetBook(b book.Book) {
	r.options.Book = b
}

func (r *Runner) Position() Position {
	return r.positions[len(r.positions)-1]
}

func (r *Runner) current() *Position {
	return &r.positions[len(r.positions)-1]
}

func (r *Runner) Fen() string {
	return r.current().Fen()
}

func (r *Runner) Player() Player {
	return r.current().Player()
}

func (r *Runner) StartFen() string {
	return r.startFen
}

func (r *Runner) MoveHistory() []Move {
	return append([]Move{}, r.moves...)
}

// HistoryKeys are the keys of every position before the current one,
// oldest first.
func (r *Runner) HistoryKeys() []zobrist.Key {
	result := make([]zobrist.Key, 0, len(r.positions)-1)
	for i := 0; i < len(r.positions)-1; i++ {
		result = append(result, r.positions[i].Hash())
	}
	return result
}

func (r *Runner) PerformMove(move Move) {
	next := r.current().WithMove(move)
	r.moves = append(r.moves, move)
	r.positions = append(r.positions, next)
}

func (r *Runner) PerformMoveFromString(s string) Error {
	move, err := search.MoveFromString(r.current(), s)
	if !IsNil(err) {
		return Errorf("PerformMoveFromString: %w", err)
	}
	r.PerformMove(move)
	return NilError
}

// Rewind takes back up to num moves.
func (r *Runner) Rewind(num int) {
	num = min(num, len(r.moves))
	r.moves = r.moves[:len(r.moves)-num]
	r.positions = r.positions[:len(r.positions)-num]
}

func firstIndexNotMatching[A any, B any](a []A, b []B, matches func(A, B) bool) int {
	for i := 0; i < min(len(a), len(b)); i++ {
		if !matches(a[i], b[i]) {
			return i
		}
	}
	return min(len(a), len(b))
}

// SetupPosition plays setup.Moves from setup.Fen. When the fen is the one
// already loaded, the moves already played that agree with setup are kept
// and only the rest are replayed. On error the game is left as it was.
func (r *Runner) SetupPosition(setup Setup) Error {
	start, err := PositionFromFen(setup.Fen)
	if !IsNil(err) {
		return Errorf("couldn't create game from %v: %w", setup, err)
	}

	startFen := r.startFen
	positions := append([]Position{}, r.positions...)
	moves := append([]Move{}, r.moves...)
	restore := func() {
		r.startFen, r.positions, r.moves = startFen, positions, moves
	}

	if start.Fen() != r.startFen {
		r.resetGame(start)
	}

	keep := firstIndexNotMatching(r.moves, setup.Moves, func(a Move, b string) bool {
		return a.String() == b
	})
	r.Rewind(len(r.moves) - keep)

	for _, m := range setup.Moves[keep:] {
		err := r.PerformMoveFromString(m)
		if !IsNil(err) {
			restore()
			return Errorf("couldn't play %v: %w", setup, err)
		}
	}

	return NilError
}

// MovesForSelection lists the legal moves from the given square, for
// interactive clients.
func (r *Runner) MovesForSelection(square string) ([]string, Error) {
	index, err := BoardIndexFromString(square)
	if !IsNil(err) {
		return nil, err
	}

	result := []string{}
	for _, move := range search.LegalMoves(r.current()) {
		if move.From() == index {
			result = append(result, move.String())
		}
	}
	return result, NilError
}

func (r *Runner) LegalMoves() []Move {
	return search.LegalMoves(r.current())
}

func (r *Runner) searcherOptions() search.SearcherOptions {
	options := r.options.SearchOptions
	options.Logger = r.Logger
	options.Table = r.table
	options.OnInfo = r.options.OnInfo
	return options
}

func (r *Runner) bookMove() Optional[Move] {
	move, err := book.Probe(r.options.Book, r.current())
	if !IsNil(err) {
		r.Logger.Println("book lookup failed:", err)
		return Empty[Move]()
	}
	if move.HasValue() {
		r.Logger.Println("book move", move.Value())
	}
	return move
}

// SearchResult is what a finished search reports.
type SearchResult struct {
	Move     Optional[Move]
	Score    int
	Depth    int
	Nodes    int
	PV       []Move
	FromBook bool
}

func bookResult(move Move) SearchResult {
	return SearchResult{Move: Some(move), PV: []Move{move}, FromBook: true}
}

func resultFromSearcher(searcher *search.Searcher) SearchResult {
	return SearchResult{
		Move:  searcher.BestMove(),
		Score: searcher.BestScore(),
		Depth: searcher.CompletedDepth(),
		Nodes: searcher.Nodes(),
		PV:    searcher.PrincipalVariation(),
	}
}

// Search blocks until limits are hit or ctx is done. A book move is
// returned without searching.
func (r *Runner) Search(ctx context.Context, limits search.Limits) SearchResult {
	if move := r.bookMove(); move.HasValue() {
		return bookResult(move.Value())
	}
	searcher := search.NewSearcher(r.Position(), r.HistoryKeys(), limits, r.searcherOptions())
	searcher.IterativeDeepening(ctx)
	return resultFromSearcher(searcher)
}

// StartSearch runs a search in the background, stopping any search that
// is already running. onDone receives the result when it finishes.
func (r *Runner) StartSearch(ctx context.Context, limits search.Limits, onDone func(SearchResult)) {
	r.Stop()
	r.Wait()

	if move := r.bookMove(); move.HasValue() {
		done := make(chan struct{})
		r.lock.Lock()
		r.searcher = nil
		r.done = done
		r.lock.Unlock()
		go func() {
			defer close(done)
			if onDone != nil {
				onDone(bookResult(move.Value()))
			}
		}()
		return
	}

	searcher := search.NewSearcher(r.Position(), r.HistoryKeys(), limits, r.searcherOptions())
	searchDone := searcher.Start(ctx)

	done := make(chan struct{})
	r.lock.Lock()
	r.searcher = searcher
	r.done = done
	r.lock.Unlock()

	go func() {
		defer close(done)
		<-searchDone
		if onDone != nil {
			onDone(resultFromSearcher(searcher))
		}
	}()
}

// Stop asks the running search, if any, to finish.
func (r *Runner) Stop() {
	r.lock.Lock()
	defer r.lock.Unlock()
	if r.searcher != nil {
		r.searcher.Stop()
	}
}

// Wait blocks until the running search, if any, has reported its move.
func (r *Runner) Wait() {
	r.lock.Lock()
	done := r.done
	r.lock.Unlock()
	if done != nil {
		<-done
	}
}

// IsSearching reports whether a background search is still running.
func (r *Runner) IsSearching() bool {
	r.lock.Lock()
	done := r.done
	r.lock.Unlock()
	if done == nil {
		return false
	}
	select {
	case <-done:
		return false
	default:
		return true
	}
}

func (r *Runner) TableStats() string {
	return r.table.Stats()
}
