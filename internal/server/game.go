package server

import (
	"context"
	"encoding/json"
	"strings"

	. "github.com/cricklet/raychess/internal/helpers"
	"github.com/cricklet/raychess/internal/runner"
	"github.com/cricklet/raychess/internal/search"
	"github.com/gorilla/websocket"
)

// game is one websocket connection. Log lines are sent to the client as a
// one element JSON array, updates as a JSON object.
type game struct {
	server *Server
	conn   *websocket.Conn
	logger Logger

	runner      *runner.Runner
	playerTypes [2]PlayerType
	ready       bool
}

func newGame(s *Server, c *websocket.Conn) *game {
	g := &game{
		server:      s,
		conn:        c,
		playerTypes: [2]PlayerType{User, User},
	}
	g.logger = FuncLogger(func(message string) {
		g.sendLog("server: " + message)
	})

	opts := append([]runner.Option{}, s.runnerOpts...)
	opts = append(opts,
		runner.WithLogger(FuncLogger(func(message string) {
			g.sendLog("engine: " + message)
		})),
		runner.WithInfo(func(info search.Info) {
			g.sendLog(info.String())
		}))
	g.runner = runner.NewRunner(opts...)
	return g
}

func (g *game) sendLog(message string) {
	message = strings.TrimRight(message, "\n")
	g.server.Logger.Println(message)

	bytes, err := json.Marshal([]string{message})
	if err != nil {
		g.server.Logger.Println("log: json marshal:", err)
		return
	}
	if err := g.conn.WriteMessage(websocket.TextMessage, bytes); err != nil {
		g.server.Logger.Println("log: websocket:", err)
	}
}

func (g *game) sendUpdate(update UpdateToWeb) {
	update.FenString = g.runner.Fen()
	update.Player = g.runner.Player().String()
	if history := g.runner.MoveHistory(); len(history) > 0 {
		update.LastMove = history[len(history)-1].String()
	}

	g.logger.Println("sending", update)
	bytes, err := json.Marshal(update)
	if err != nil {
		g.logger.Println("update: json marshal:", err)
		return
	}
	if err := g.conn.WriteMessage(websocket.TextMessage, bytes); err != nil {
		g.server.Logger.Println("update: websocket:", err)
	}
}

// performEngineMove plays one engine move if it is the engine's turn.
func (g *game) performEngineMove(ctx context.Context) bool {
	if !g.ready || g.playerTypes[g.runner.Player()] != Engine {
		return false
	}

	result := g.runner.Search(ctx, search.Limits{MoveTime: g.server.moveTime})
	if result.Move.IsEmpty() {
		g.logger.Println("no move found")
		return false
	}

	g.logger.Println("search:", result.Move.Value(), search.UciScoreString(result.Score))
	g.runner.PerformMove(result.Move.Value())
	return true
}

func (g *game) handleMessage(ctx context.Context, bytes []byte) {
	var message MessageFromWeb
	if err := json.Unmarshal(bytes, &message); err != nil {
		g.logger.Println("handleMessage: json unmarshal:", err)
		return
	}
	g.logger.Println("received", message)

	var update UpdateToWeb
	shouldUpdate := false

	switch {
	case message.NewFen != nil:
		err := g.runner.SetupPosition(runner.Setup{Fen: *message.NewFen})
		if !IsNil(err) {
			g.logger.Println("setup:", err)
		}
		shouldUpdate = true
	case message.WhitePlayer != nil:
		g.playerTypes[White] = PlayerTypeFromString(*message.WhitePlayer)
	case message.BlackPlayer != nil:
		g.playerTypes[Black] = PlayerTypeFromString(*message.BlackPlayer)
	case message.Selection != nil:
		if *message.Selection != "" {
			update.Selection = *message.Selection
			moves, err := g.runner.MovesForSelection(*message.Selection)
			if !IsNil(err) {
				g.logger.Println("moves for:", *message.Selection, err)
			}
			update.PossibleMoves = moves
		}
		shouldUpdate = true
	case message.Move != nil:
		err := g.runner.PerformMoveFromString(*message.Move)
		if !IsNil(err) {
			g.logger.Println("perform:", *message.Move, err)
		}
		shouldUpdate = true
	case message.Rewind != nil:
		g.runner.Rewind(*message.Rewind)
		shouldUpdate = true
	case message.Ready != nil:
		if !g.ready {
			g.ready = *message.Ready
			shouldUpdate = true
		}
	}

	if shouldUpdate {
		g.sendUpdate(update)
	}
	// two engines play one move per message
	for g.performEngineMove(ctx) {
		g.sendUpdate(UpdateToWeb{})
		if g.playerTypes[White] == Engine && g.playerTypes[Black] == Engine {
			break
		}
	}
}
