package controller

import (
	"encoding/json"
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog/log"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

func playerIDFromConn(c *websocket.Conn) string {
	id, _ := c.Locals(middleware.PlayerIDKey).(string)
	return id
}

// HandleConnection attaches a client to a game and serves its messages until
// the socket closes.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := c.Params("gameId")
	playerID := playerIDFromConn(c)
	conn := ws.NewSafeConn(c)
	logger := log.With().Str("game", gameID).Str("player", playerID).Logger()

	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		logger.Warn().Err(err).Msg("failed to register connection")
		sendWSError(conn, err)
		conn.Close()
		return
	}
	logger.Info().Msg("websocket connected")

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			logger.Debug().Err(err).Msg("read loop ended")
			break
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			logger.Warn().Err(err).Msg("unparseable message")
			sendWSError(conn, err)
			continue
		}

		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			logger.Debug().Err(err).Str("type", string(msg.Type)).Msg("message rejected")
			sendWSError(conn, err)
		}
	}

	wsc.gameService.UnregisterConnection(gameID, playerID, conn)
}

// handleMessage dispatches one client message. State changes reach every
// client through the game broadcast, so only errors are answered directly.
func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move ws.MovePayload
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		return wsc.gameService.HandleMove(gameID, playerID, engine.Move{From: move.From, To: move.To})

	case ws.MessageTypeSelect:
		var sel ws.SelectPayload
		if err := json.Unmarshal(msg.Payload, &sel); err != nil {
			return err
		}
		_, err := wsc.gameService.SelectSquare(gameID, playerID, sel.Index)
		return err

	case ws.MessageTypeReset:
		return wsc.gameService.ResetGame(gameID, playerID)

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking queues the player and pushes a single matchFound message
// once they are paired. Closing the socket leaves the queue.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID := playerIDFromConn(c)
	conn := ws.NewSafeConn(c)
	logger := log.With().Str("player", playerID).Logger()

	ch := make(chan model.MatchFoundEvent, 1)
	if err := wsc.gameService.ListenForMatch(playerID, ch); err != nil {
		logger.Warn().Err(err).Msg("failed to join matchmaking")
		sendWSError(conn, err)
		return
	}
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, ch)

	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-ch:
		if !ok {
			// replaced by a newer matchmaking connection
			return
		}
		if err := conn.Send(ws.MessageTypeMatchFound, event); err != nil {
			logger.Warn().Err(err).Msg("failed to deliver match")
		}
	case <-gone:
		logger.Debug().Msg("left matchmaking")
	}
}

func sendWSError(conn *ws.SafeConn, err error) {
	if sendErr := conn.Send(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()}); sendErr != nil {
		log.Debug().Err(sendErr).Msg("failed to send error")
	}
}
