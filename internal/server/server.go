package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	. "github.com/cricklet/raychess/internal/game"
	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/runner"
	"github.com/cricklet/raychess/internal/search"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
)

const (
	DefaultMoveTime = time.Second
	// per request, for /api/bestmove
	_apiHashSizeMB = 16
	_maxMoveTime   = 30 * time.Second
)

type Server struct {
	Logger Logger

	moveTime   time.Duration
	staticDir  string
	runnerOpts []runner.Option
	upgrader   websocket.Upgrader
}

type ServerOption func(*Server)

func WithLogger(logger Logger) ServerOption {
	return func(s *Server) { s.Logger = logger }
}

// WithMoveTime is how long the engine thinks per move in websocket games.
func WithMoveTime(d time.Duration) ServerOption {
	return func(s *Server) { s.moveTime = d }
}

// WithStaticDir serves the web client from dir.
func WithStaticDir(dir string) ServerOption {
	return func(s *Server) { s.staticDir = dir }
}

// WithRunnerOptions applies opts to the runner of every game.
func WithRunnerOptions(opts ...runner.Option) ServerOption {
	return func(s *Server) { s.runnerOpts = append(s.runnerOpts, opts...) }
}

func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		Logger:   SilentLogger,
		moveTime: DefaultMoveTime,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.HandleFunc("/ws", s.handleWebsocket)
	router.HandleFunc("/api/bestmove", s.handleBestMove).Methods(http.MethodGet)
	router.HandleFunc("/api/moves", s.handleMoves).Methods(http.MethodGet)

	if s.staticDir != "" {
		index := func(w http.ResponseWriter, r *http.Request) {
			http.ServeFile(w, r, s.staticDir+"/index.html")
		}
		router.PathPrefix("/static").Handler(
			http.StripPrefix("/static", http.FileServer(http.Dir(s.staticDir))))
		router.PathPrefix("/{white}/{black}").HandlerFunc(index)
		router.HandleFunc("/", index)
	}
	return router
}

type BestMoveResponse struct {
	BestMove string   `json:"bestMove"`
	Score    string   `json:"score"`
	Depth    int      `json:"depth"`
	Nodes    int      `json:"nodes"`
	PV       []string `json:"pv"`
	FromBook bool     `json:"fromBook"`
}

type MovesResponse struct {
	Fen   string   `json:"fen"`
	Moves []string `json:"moves"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error()})
}

// setupFromQuery reads "fen" (default: the starting position) and a space
// separated "moves" list.
func setupFromQuery(r *http.Request) runner.Setup {
	query := r.URL.Query()
	fen := query.Get("fen")
	if fen == "" {
		start := NewStartingPosition()
		fen = start.Fen()
	}
	return runner.Setup{Fen: fen, Moves: strings.Fields(query.Get("moves"))}
}

func limitsFromQuery(r *http.Request, fallback time.Duration) (search.Limits, Error) {
	query := r.URL.Query()
	limits := search.Limits{}

	if depth := query.Get("depth"); depth != "" {
		d, err := strconv.Atoi(depth)
		if err != nil {
			return limits, Wrap(err)
		}
		limits.Depth = d
	}
	if moveTime := query.Get("movetime"); moveTime != "" {
		ms, err := strconv.Atoi(moveTime)
		if err != nil {
			return limits, Wrap(err)
		}
		limits.MoveTime = Min(time.Duration(ms)*time.Millisecond, _maxMoveTime)
	}
	if limits.Depth == 0 && limits.MoveTime == 0 {
		limits.MoveTime = fallback
	}
	return limits, NilError
}

func (s *Server) handleBestMove(w http.ResponseWriter, r *http.Request) {
	limits, err := limitsFromQuery(r, s.moveTime)
	if !IsNil(err) {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	opts := append([]runner.Option{runner.WithLogger(s.Logger)}, s.runnerOpts...)
	opts = append(opts, runner.WithHashSizeMB(_apiHashSizeMB))
	session := runner.NewRunner(opts...)

	err = session.SetupPosition(setupFromQuery(r))
	if !IsNil(err) {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result := session.Search(r.Context(), limits)
	if result.Move.IsEmpty() {
		writeError(w, http.StatusUnprocessableEntity, Errorf("no legal moves in %v", session.Fen()))
		return
	}

	writeJSON(w, http.StatusOK, BestMoveResponse{
		BestMove: result.Move.Value().String(),
		Score:    search.UciScoreString(result.Score),
		Depth:    result.Depth,
		Nodes:    result.Nodes,
		PV:       MapSlice(result.PV, Move.String),
		FromBook: result.FromBook,
	})
}

func (s *Server) handleMoves(w http.ResponseWriter, r *http.Request) {
	session := runner.NewRunner(runner.WithHashSizeMB(1))
	err := session.SetupPosition(setupFromQuery(r))
	if !IsNil(err) {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, MovesResponse{
		Fen:   session.Fen(),
		Moves: MapSlice(session.LegalMoves(), Move.String),
	})
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	c, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.Logger.Println("websocket upgrade:", err)
		return
	}
	defer c.Close()

	g := newGame(s, c)
	for {
		_, message, err := c.ReadMessage()
		if err != nil {
			g.logger.Println("websocket closed:", err)
			break
		}
		g.handleMessage(r.Context(), message)
	}
}

type PlayerType int

const (
	User PlayerType = iota
	Engine
	Unknown
)

func (t PlayerType) String() string {
	switch t {
	case User:
		return "user"
	case Engine:
		return "engine"
	default:
		return "unknown"
	}
}

func PlayerTypeFromString(s string) PlayerType {
	switch s {
	case "user":
		return User
	case "engine":
		return Engine
	}
	return Unknown
}

type UpdateToWeb struct {
	FenString     string   `json:"fenString"`
	LastMove      string   `json:"lastMove"`
	Selection     string   `json:"selection"`
	PossibleMoves []string `json:"possibleMoves"`
	Player        string   `json:"player"`
}

func (u UpdateToWeb) String() string {
	return fmt.Sprint("UpdateToWeb: ", u.FenString, ", ", u.LastMove, ", ", u.Selection, ", ", u.PossibleMoves)
}

type MessageFromWeb struct {
	NewFen      *string `json:"newFen"`
	WhitePlayer *string `json:"whitePlayer"`
	BlackPlayer *string `json:"blackPlayer"`
	Selection   *string `json:"selection"`
	Move        *string `json:"move"`
	Ready       *bool   `json:"ready"`
	Rewind      *int    `json:"rewind"`
}

func (m MessageFromWeb) String() string {
	switch {
	case m.NewFen != nil:
		return fmt.Sprint("MessageFromWeb NewFen: ", *m.NewFen)
	case m.WhitePlayer != nil:
		return fmt.Sprint("MessageFromWeb WhitePlayer: ", *m.WhitePlayer)
	case m.BlackPlayer != nil:
		return fmt.Sprint("MessageFromWeb BlackPlayer: ", *m.BlackPlayer)
	case m.Selection != nil:
		return fmt.Sprint("MessageFromWeb Selection: ", *m.Selection)
	case m.Move != nil:
		return fmt.Sprint("MessageFromWeb Move: ", *m.Move)
	case m.Ready != nil:
		return fmt.Sprint("MessageFromWeb Ready: ", *m.Ready)
	case m.Rewind != nil:
		return fmt.Sprint("MessageFromWeb Rewind: ", *m.Rewind)
	}
	return "MessageFromWeb unknown"
}
