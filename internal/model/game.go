package model

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// The connections for a specific game
type GameConnections struct {
	connections map[string]ws.Writer // playerID -> connection
	mu          sync.RWMutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]ws.Writer),
	}
}

// Game wraps one BoardEngine and is the only path to it. Every read-modify-write
// of board and turn happens under mu, so concurrent clients see moves as atomic.
type Game struct {
	ID      string
	Hotseat bool

	mu          sync.Mutex
	board       *engine.BoardEngine
	seats       map[engine.Color]string // color -> playerID
	selection   *Selection
	lastMove    *LastMove
	sound       string
	clocks      map[engine.Color]*Clock
	connections *GameConnections // Connections just for this game

	// version counts snapshots taken under mu. sendMu orders delivery so a
	// snapshot older than one already sent is dropped.
	version     uint64
	sendMu      sync.Mutex
	sentVersion uint64
}

type GameState struct {
	ID             string       `json:"id"`
	Board          engine.Board `json:"board"`
	ToMove         engine.Color `json:"toMove"`
	Sound          string       `json:"sound"`
	SelectedSquare *int         `json:"selectedSquare"`
	LegalMoves     []int        `json:"legalMoves"`
	LastMove       *LastMove    `json:"lastMove"`
	Hotseat        bool         `json:"hotseat"`
	Players        struct {
		White ClientPlayer `json:"white"`
		Black ClientPlayer `json:"black"`
	} `json:"players"`
}

// NewGame creates a game in the starting position. In a hotseat game the first
// player to join controls both colours.
func NewGame(id string, hotseat bool) *Game {
	return &Game{
		ID:      id,
		Hotseat: hotseat,
		board:   engine.New(),
		seats:   make(map[engine.Color]string),
		clocks: map[engine.Color]*Clock{
			engine.White: NewClock(),
			engine.Black: NewClock(),
		},
		connections: NewGameConnections(),
	}
}

// AddPlayer seats a player, White first. A player already seated gets their
// existing colour back.
func (g *Game) AddPlayer(playerID string) (engine.Color, error) {
	log.Debug().Str("game", g.ID).Str("player", playerID).Msg("adding player")
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.seats[engine.White] == playerID {
		return engine.White, nil
	}
	if g.seats[engine.Black] == playerID {
		return engine.Black, nil
	}

	if g.seats[engine.White] == "" {
		g.seats[engine.White] = playerID
		if g.Hotseat {
			g.seats[engine.Black] = playerID
		}
		g.startClockIfSeated()
		return engine.White, nil
	}
	if g.seats[engine.Black] == "" {
		g.seats[engine.Black] = playerID
		g.startClockIfSeated()
		return engine.Black, nil
	}
	return 0, ErrGameFull
}

func (g *Game) startClockIfSeated() {
	if g.seats[engine.White] != "" && g.seats[engine.Black] != "" {
		g.clocks[g.board.Turn()].Start()
	}
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.snapshot()
}

func (g *Game) snapshot() GameState {
	state := GameState{
		ID:         g.ID,
		Board:      g.board.Board(),
		ToMove:     g.board.Turn(),
		Sound:      g.sound,
		LegalMoves: []int{},
		Hotseat:    g.Hotseat,
	}
	if g.selection != nil {
		square := g.selection.Square
		state.SelectedSquare = &square
		state.LegalMoves = append(state.LegalMoves, g.selection.LegalMoves...)
	}
	if g.lastMove != nil {
		lm := *g.lastMove
		state.LastMove = &lm
	}
	state.Players.White = g.clientPlayer(engine.White)
	state.Players.Black = g.clientPlayer(engine.Black)
	return state
}

func (g *Game) clientPlayer(color engine.Color) ClientPlayer {
	return ClientPlayer{
		ID:        g.seats[color],
		Color:     color,
		ThinkTime: g.clocks[color].Used().Milliseconds(),
	}
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.isPlayerInGame(playerID)
}

func (g *Game) isPlayerInGame(playerID string) bool {
	return playerID != "" && (g.seats[engine.White] == playerID || g.seats[engine.Black] == playerID)
}

func (g *Game) canSpectate() bool {
	return g.seats[engine.White] == "" || g.seats[engine.Black] == ""
}

// controls reports whether playerID may move the given colour.
func (g *Game) controls(playerID string, color engine.Color) bool {
	return playerID != "" && g.seats[color] == playerID
}

// Turn returns the colour to move.
func (g *Game) Turn() engine.Color {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Turn()
}

func (g *Game) PieceAt(index int) (engine.Piece, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.PieceAt(index)
}

// Validate asks the engine for a verdict without touching the board or the turn.
func (g *Game) Validate(move engine.Move) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.IsValidMove(move.From, move.To)
}

// Select records the square a player picked and returns where its piece may go.
// Only a piece of the side to move, selected by the player controlling that
// side, can be picked.
func (g *Game) Select(playerID string, index int) ([]int, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isPlayerInGame(playerID) {
		return nil, ErrNotInGame
	}
	turn := g.board.Turn()
	if !g.controls(playerID, turn) {
		return nil, ErrNotYourTurn
	}
	piece, err := g.board.PieceAt(index)
	if err != nil {
		return nil, err
	}
	if !turn.Owns(piece) {
		return nil, ErrNothingSelected
	}
	targets, err := g.board.LegalTargets(index)
	if err != nil {
		return nil, err
	}

	g.selection = &Selection{Square: index, LegalMoves: targets}
	g.broadcastLocked()
	return targets, nil
}

// MakeMove gates on turn ownership, validates, applies and hands the turn over
// as one step. The selection is cleared whether or not the move succeeds.
func (g *Game) MakeMove(playerID string, move engine.Move) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	log.Debug().Str("game", g.ID).Int("from", move.From).Int("to", move.To).Msg("making move")

	if !g.isPlayerInGame(playerID) {
		return ErrNotInGame
	}
	turn := g.board.Turn()
	if !g.controls(playerID, turn) {
		return ErrNotYourTurn
	}

	hadSelection := g.selection != nil
	g.selection = nil
	committed := false
	defer func() {
		if committed || hadSelection {
			g.broadcastLocked()
		}
	}()

	piece, err := g.board.PieceAt(move.From)
	if err != nil {
		return err
	}
	if !turn.Owns(piece) {
		return ErrNotYourPiece
	}
	ok, err := g.board.IsValidMove(move.From, move.To)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %s from %d to %d", ErrIllegalMove, piece, move.From, move.To)
	}

	captured, _ := g.board.PieceAt(move.To)
	if err := g.board.ApplyMove(move.From, move.To); err != nil {
		return err
	}
	g.clocks[turn].Stop()
	g.board.FlipTurn()
	g.clocks[g.board.Turn()].Start()

	g.sound = "move"
	if !captured.IsEmpty() {
		g.sound = "capture"
	}
	g.lastMove = &LastMove{
		Move:     move,
		Piece:    piece,
		Captured: captured,
		Notation: notation(piece, captured, move),
	}
	committed = true
	return nil
}

// Reset returns the game to the starting position with White to move.
func (g *Game) Reset(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if !g.isPlayerInGame(playerID) {
		return ErrNotInGame
	}
	g.board.Reset()
	g.selection = nil
	g.lastMove = nil
	g.sound = ""
	for _, c := range g.clocks {
		c.Reset()
	}
	g.startClockIfSeated()

	g.broadcastLocked()
	return nil
}

func (g *Game) RegisterConnection(playerID string, conn ws.Writer) error {
	g.mu.Lock()
	isAuthorized := g.isPlayerInGame(playerID) || g.canSpectate()
	g.mu.Unlock()

	if !isAuthorized {
		return ErrNotInGame
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		// Keep the live connection and turn the newcomer away.
		g.connections.mu.Unlock()
		conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(
				websocket.CloseNormalClosure,
				"Connection already exists",
			),
		)
		conn.Close()
		return nil
	}

	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Debug().Str("game", g.ID).Str("player", playerID).Msg("registered connection")

	// Send initial state
	g.mu.Lock()
	g.broadcastLocked()
	g.mu.Unlock()
	return nil
}

// UnregisterConnection forgets conn if it is still the player's current one.
func (g *Game) UnregisterConnection(playerID string, conn ws.Writer) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		log.Debug().Str("game", g.ID).Str("player", playerID).Msg("unregistered connection")
		delete(g.connections.connections, playerID)
	}
}

// broadcastLocked snapshots the state while the caller holds mu and sends it
// to every connection in the background.
func (g *Game) broadcastLocked() {
	g.version++
	go g.broadcast(g.version, g.snapshot())
}

func (g *Game) broadcast(version uint64, state GameState) {
	g.sendMu.Lock()
	defer g.sendMu.Unlock()
	if version <= g.sentVersion {
		log.Debug().Str("game", g.ID).Uint64("version", version).Msg("skipping stale state")
		return
	}
	g.sentVersion = version

	g.connections.mu.RLock()
	activeConnections := lo.Assign(g.connections.connections)
	g.connections.mu.RUnlock()
	if len(activeConnections) == 0 {
		return
	}

	payload, err := json.Marshal(state)
	if err != nil {
		log.Error().Err(err).Str("game", g.ID).Msg("failed to marshal state")
		return
	}
	msg := ws.Message{Type: ws.MessageTypeGameState, Payload: payload}

	for playerID, conn := range activeConnections {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warn().Err(err).Str("game", g.ID).Str("player", playerID).Msg("dropping connection after failed send")
			g.UnregisterConnection(playerID, conn)
		}
	}
}
