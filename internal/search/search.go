package search

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cricklet/raychess/internal/evaluation"
	. "github.com/cricklet/raychess/internal/game"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/zobrist"
)

type debugSearchLine struct {
	DebugString string
	Depth       int
	Alpha       int
	Beta        int
	Score       Optional[int]
}

// debugSearchTree records every node the search visits. Only useful for
// very shallow searches.
type debugSearchTree struct {
	CurrentDepth int
	Result       []debugSearchLine
}

func (s *debugSearchTree) DebugString(depth int) string {
	result := ""
	for _, line := range s.Result {
		if line.Depth >= depth || line.Score.IsEmpty() {
			continue
		}
		result += fmt.Sprintf("%v%v (%v %v) %v\n",
			strings.Repeat(" ", line.Depth),
			line.DebugString,
			line.Alpha,
			line.Beta,
			ScoreString(line.Score.Value()))
	}
	return result
}

func (s *debugSearchTree) DepthPush(label string) {
	s.Result = append(s.Result, debugSearchLine{
		DebugString: "> " + label,
		Depth:       s.CurrentDepth,
	})
	s.CurrentDepth++
}

func (s *debugSearchTree) DepthPop(label string, result int) {
	s.CurrentDepth--
	s.Result = append(s.Result, debugSearchLine{
		DebugString: "$ " + label,
		Depth:       s.CurrentDepth,
		Score:       Some(result),
	})
}

func (s *debugSearchTree) MovePush(move Move, alpha int, beta int) {
	s.Result = append(s.Result, debugSearchLine{
		DebugString: "> " + move.String(),
		Depth:       s.CurrentDepth,
		Alpha:       alpha,
		Beta:        beta,
	})
	s.CurrentDepth++
}

func (s *debugSearchTree) MovePop(move Move, alpha int, beta int, result int) {
	s.CurrentDepth--
	s.Result = append(s.Result, debugSearchLine{
		DebugString: "$ " + move.String(),
		Depth:       s.CurrentDepth,
		Alpha:       alpha,
		Beta:        beta,
		Score:       Some(result),
	})
}

// Info describes one completed iteration.
type Info struct {
	Depth   int
	Nodes   int
	Score   int
	Elapsed time.Duration
	PV      []Move
}

func (i Info) String() string {
	return fmt.Sprintf("info depth %v nodes %v score %v pv %v",
		i.Depth, i.Nodes, UciScoreString(i.Score),
		strings.Join(MapSlice(i.PV, Move.String), " "))
}

type SearcherOptions struct {
	Logger    Logger
	Evaluator evaluation.Evaluator
	// Table is shared between searches when set. Otherwise each searcher
	// allocates its own.
	Table  *zobrist.TranspositionTable
	OnInfo func(Info)

	debugSearchTree *debugSearchTree
}

var AllSearchOptions = []string{
	"hash",
	"debugSearchTree",
}

// SearcherOptionsFromArgs parses "hash=<mb>" and "debugSearchTree".
func SearcherOptionsFromArgs(args ...string) (SearcherOptions, Error) {
	options := SearcherOptions{}

	for _, arg := range args {
		if strings.HasPrefix(arg, "hash") {
			if !strings.Contains(arg, "=") {
				return options, Errorf("hash needs a size in mb: %v", arg)
			}
			mb, err := strconv.Atoi(strings.Split(arg, "=")[1])
			if err != nil {
				return options, Wrap(err)
			}
			if mb < 1 {
				return options, Errorf("hash must be at least 1mb, got %v", mb)
			}
			options.Table = zobrist.NewTranspositionTable(zobrist.SizeForMegabytes(mb))
		} else if strings.HasPrefix(arg, "debugSearchTree") {
			options.debugSearchTree = &debugSearchTree{}
		} else {
			return options, Errorf("unknown option: %s", arg)
		}
	}

	return options, NilError
}

type searchResult struct {
	move  Optional[Move]
	score int
	depth int
	nodes int
	pv    []Move
}

// Searcher runs one iterative deepening search. Build a new one per search;
// the transposition table may be shared through SearcherOptions.
type Searcher struct {
	Logger Logger

	position Position
	history  []zobrist.Key
	limits   Limits
	options  SearcherOptions

	evaluate evaluation.Evaluator
	table    *zobrist.TranspositionTable
	ordering *OrderingState

	// per ply scratch space, index 0 is the root
	path    [MaxPly + 1]zobrist.Key
	moves   [MaxPly + 1][]Move
	pickers [MaxPly + 1]MovePicker

	ctx      context.Context
	started  time.Time
	deadline Optional[time.Time]
	nodes    int
	stopped  atomic.Bool

	mu     sync.Mutex
	result searchResult
}

const _pollInterval = 2048

// NewSearcher searches from position. history holds the keys of the
// positions that came before it in the game, oldest first.
func NewSearcher(position Position, history []zobrist.Key, limits Limits, options SearcherOptions) *Searcher {
	s := &Searcher{
		Logger:   options.Logger,
		position: position,
		history:  slices.Clone(history),
		limits:   limits,
		options:  options,
		evaluate: options.Evaluator,
		table:    options.Table,
		ordering: NewOrderingState(),
	}
	if s.Logger == nil {
		s.Logger = SilentLogger
	}
	if s.evaluate == nil {
		s.evaluate = evaluation.Evaluate
	}
	if s.table == nil {
		s.table = zobrist.NewTranspositionTable(zobrist.DefaultTranspositionTableSize)
	}
	for i := range s.moves {
		s.moves[i] = make([]Move, 0, 64)
		s.pickers[i] = MovePicker{moves: make([]ScoredMove, 0, 64)}
	}
	return s
}

// Stop asks a running search to finish. Safe from any goroutine.
func (s *Searcher) Stop() {
	s.stopped.Store(true)
}

func (s *Searcher) Stopped() bool {
	return s.stopped.Load()
}

// Start runs the search in the background. The channel closes when it is
// done.
func (s *Searcher) Start(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.IterativeDeepening(ctx)
	}()
	return done
}

func (s *Searcher) BestMove() Optional[Move] {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.move
}

func (s *Searcher) BestScore() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.score
}

// CompletedDepth is zero until the first iteration finishes.
func (s *Searcher) CompletedDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.depth
}

func (s *Searcher) Nodes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.result.nodes
}

func (s *Searcher) PrincipalVariation() []Move {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.result.pv)
}

// IterativeDeepening searches depth 1, 2, ... until a limit is hit and
// returns the best move of the deepest completed depth.
func (s *Searcher) IterativeDeepening(ctx context.Context) Optional[Move] {
	s.ctx = ctx
	s.started = time.Now()
	s.nodes = 0
	s.ordering.Reset()

	player := s.position.Player()
	budget := s.limits.TimeBudget(player)
	if budget.HasValue() {
		s.deadline = Some(s.started.Add(budget.Value()))
	}

	legalMoves := LegalMoves(&s.position)
	if len(legalMoves) == 0 {
		score := 0
		if s.position.IsInCheck(player) {
			score = MatedScore(0)
		}
		s.commit(searchResult{move: Empty[Move](), score: score})
		return Empty[Move]()
	}

	// a stop before the first iteration completes still needs an answer
	s.commit(searchResult{move: Some(legalMoves[0])})

	for depth := 1; depth <= s.limits.MaxDepth(); depth++ {
		depthStarted := time.Now()

		if s.options.debugSearchTree != nil {
			s.options.debugSearchTree.DepthPush(fmt.Sprint("depth ", depth))
		}
		move, score, completed := s.rootMax(depth)
		if s.options.debugSearchTree != nil {
			s.options.debugSearchTree.DepthPop(fmt.Sprint("depth ", depth), score)
		}

		if !completed {
			break
		}

		info := Info{
			Depth:   depth,
			Nodes:   s.nodes,
			Score:   score,
			Elapsed: time.Since(s.started),
			PV:      s.principalVariation(move, depth),
		}
		s.commit(searchResult{
			move:  Some(move),
			score: score,
			depth: depth,
			nodes: s.nodes,
			pv:    info.PV,
		})
		if s.options.OnInfo != nil {
			s.options.OnInfo(info)
		}
		s.Logger.Println("searched to depth", depth,
			"- best move", move,
			"- score", ScoreString(score),
			"- nodes", s.nodes,
			"- tt", s.table.Stats())

		if IsMate(score) && MateInPlies(score) > 0 && MateInPlies(score) <= depth {
			break
		}
		if budget.HasValue() && time.Since(depthStarted) > budget.Value()/2 {
			break
		}
	}

	return s.BestMove()
}

func (s *Searcher) commit(result searchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = result
}

// poll counts a node and reports whether the search must unwind.
func (s *Searcher) poll() bool {
	s.nodes++

	if s.limits.Nodes > 0 && s.nodes >= s.limits.Nodes {
		s.stopped.Store(true)
	}
	if s.nodes%_pollInterval == 0 {
		if s.ctx != nil && s.ctx.Err() != nil {
			s.stopped.Store(true)
		}
		if s.deadline.HasValue() && time.Now().After(s.deadline.Value()) {
			s.stopped.Store(true)
		}
	}
	return s.stopped.Load()
}

// isRepetition is true when key already occurred twice in the game history
// plus the line leading to ply.
func (s *Searcher) isRepetition(key zobrist.Key, ply int) bool {
	count := 0
	for _, k := range s.history {
		if k == key {
			count++
		}
	}
	for i := 0; i < ply; i++ {
		if s.path[i] == key {
			count++
		}
	}
	return count >= 2
}

func (s *Searcher) generate(p *Position, ply int) []Move {
	moves := s.moves[ply][:0]
	GenerateLegalMoves(func(m Move) { moves = append(moves, m) }, p)
	s.moves[ply] = moves
	return moves
}

func (s *Searcher) picker(kind PickerKind, p *Position, ply int, moves []Move, hashMove Move) *MovePicker {
	s.ordering.Ply = ply
	picker := &s.pickers[ply]
	picker.reset(kind, moves, p.Player(), hashMove, s.ordering)
	return picker
}

func (s *Searcher) rootMax(depth int) (Move, int, bool) {
	p := &s.position
	s.path[0] = p.Hash()

	hashMove := NullMove
	if entry := s.table.Probe(p.Hash()); entry.HasValue() {
		hashMove = entry.Value().Move
	}

	moves := s.generate(p, 0)
	picker := s.picker(FullWidth, p, 0, moves, hashMove)

	alpha, beta := -Inf, Inf
	bestMove := NullMove

	for picker.HasNext() {
		move := picker.Next().Move
		child := p.WithMove(move)

		if s.options.debugSearchTree != nil {
			s.options.debugSearchTree.MovePush(move, alpha, beta)
		}

		var score int
		if bestMove == NullMove {
			score = -s.negamax(&child, depth-1, 1, -beta, -alpha)
		} else {
			score = -s.negamax(&child, depth-1, 1, -alpha-1, -alpha)
			if score > alpha && score < beta {
				score = -s.negamax(&child, depth-1, 1, -beta, -alpha)
			}
		}

		if s.options.debugSearchTree != nil {
			s.options.debugSearchTree.MovePop(move, alpha, beta, score)
		}

		if s.stopped.Load() {
			return NullMove, 0, false
		}

		if score > alpha || bestMove == NullMove {
			alpha = score
			bestMove = move
		}
	}

	s.table.Set(p.Hash(), zobrist.Entry{
		Score: alpha,
		Depth: depth,
		Bound: zobrist.Exact,
		Move:  bestMove,
	})
	return bestMove, alpha, true
}

func (s *Searcher) negamax(p *Position, depth int, ply int, alpha int, beta int) int {
	if s.poll() {
		return 0
	}

	key := p.Hash()
	s.path[ply] = key

	if p.HalfMoveClock() >= 50 || s.isRepetition(key, ply) {
		return 0
	}
	if ply >= MaxPly {
		return s.evaluate(p, p.Player())
	}

	alphaOrig := alpha
	hashMove := NullMove

	if e := s.table.Probe(key); e.HasValue() {
		entry := e.Value()
		hashMove = entry.Move
		if entry.Depth >= depth {
			score := scoreFromTable(entry.Score, ply)
			switch entry.Bound {
			case zobrist.Exact:
				return score
			case zobrist.LowerBound:
				alpha = Max(alpha, score)
			case zobrist.UpperBound:
				beta = Min(beta, score)
			}
			if alpha >= beta {
				return score
			}
		}
	}

	moves := s.generate(p, ply)
	inCheck := p.IsInCheck(p.Player())

	if len(moves) == 0 {
		if inCheck {
			return MatedScore(ply)
		}
		return 0
	}

	if inCheck {
		depth++
	}
	if depth <= 0 {
		return s.quiescenceWithMoves(p, ply, alpha, beta, moves)
	}

	picker := s.picker(FullWidth, p, ply, moves, hashMove)
	bestMove := NullMove

	for picker.HasNext() {
		move := picker.Next().Move
		child := p.WithMove(move)

		if s.options.debugSearchTree != nil {
			s.options.debugSearchTree.MovePush(move, alpha, beta)
		}

		var score int
		if bestMove == NullMove {
			score = -s.negamax(&child, depth-1, ply+1, -beta, -alpha)
		} else {
			score = -s.negamax(&child, depth-1, ply+1, -alpha-1, -alpha)
			if score > alpha && score < beta {
				score = -s.negamax(&child, depth-1, ply+1, -beta, -alpha)
			}
		}

		if s.options.debugSearchTree != nil {
			s.options.debugSearchTree.MovePop(move, alpha, beta, score)
		}

		if s.stopped.Load() {
			return 0
		}

		if score >= beta {
			s.ordering.UpdateKillers(ply, move)
			if !move.IsCapture() {
				s.ordering.IncrementHistory(p.Player(), move.From(), move.To(), depth)
			}
			s.table.Set(key, zobrist.Entry{
				Score: scoreToTable(score, ply),
				Depth: depth,
				Bound: zobrist.LowerBound,
				Move:  move,
			})
			return beta
		}

		if score > alpha || bestMove == NullMove {
			if score > alpha {
				alpha = score
			}
			bestMove = move
		}
	}

	bound := zobrist.Exact
	if alpha <= alphaOrig {
		bound = zobrist.UpperBound
		// no move raised alpha, so none of them is known to be best
		bestMove = hashMove
	}
	s.table.Set(key, zobrist.Entry{
		Score: scoreToTable(alpha, ply),
		Depth: depth,
		Bound: bound,
		Move:  bestMove,
	})
	return alpha
}

func (s *Searcher) quiescence(p *Position, ply int, alpha int, beta int) int {
	if s.poll() {
		return 0
	}

	if ply >= MaxPly {
		return s.evaluate(p, p.Player())
	}

	moves := s.generate(p, ply)
	if len(moves) == 0 {
		if p.IsInCheck(p.Player()) {
			return MatedScore(ply)
		}
		return 0
	}
	return s.quiescenceWithMoves(p, ply, alpha, beta, moves)
}

// quiescenceWithMoves expects the legal moves of p, at least one of them.
// A quiet node returns its static score as is, outside [alpha, beta] too;
// the parent's bounds treat it like any fail-soft result.
func (s *Searcher) quiescenceWithMoves(p *Position, ply int, alpha int, beta int, moves []Move) int {
	standPat := s.evaluate(p, p.Player())

	picker := s.picker(Quiescence, p, ply, moves, NullMove)
	if !picker.HasNext() {
		return standPat
	}

	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}

	for picker.HasNext() {
		move := picker.Next().Move
		child := p.WithMove(move)

		score := -s.quiescence(&child, ply+1, -beta, -alpha)
		if s.stopped.Load() {
			return 0
		}

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}
	return alpha
}

// principalVariation follows exact entries in the table from the root,
// starting with best.
func (s *Searcher) principalVariation(best Move, depth int) []Move {
	pv := []Move{best}
	p := s.position.WithMove(best)

	for len(pv) < depth {
		e := s.table.Probe(p.Hash())
		if e.IsEmpty() || e.Value().Bound != zobrist.Exact {
			break
		}
		move := e.Value().Move
		if move.IsNull() || !slices.Contains(LegalMoves(&p), move) {
			break
		}
		pv = append(pv, move)
		p = p.WithMove(move)
	}
	return pv
}

// SearchPosition runs a blocking search and returns the chosen move.
func SearchPosition(ctx context.Context, position Position, history []zobrist.Key, limits Limits, options SearcherOptions) (Optional[Move], int) {
	searcher := NewSearcher(position, history, limits, options)
	move := searcher.IterativeDeepening(ctx)
	return move, searcher.BestScore()
}
