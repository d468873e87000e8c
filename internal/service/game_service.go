package service

import (
	"errors"
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/google/uuid"
)

// GameService is the entry point the controllers use.
type GameService struct {
	gameManager *GameManager
}

func NewGameService(gameManager *GameManager) *GameService {
	return &GameService{
		gameManager: gameManager,
	}
}

// CreateGame opens a game and seats its creator as White.
func (gs *GameService) CreateGame(playerID string, hotseat bool) (string, error) {
	gameID := uuid.New().String()

	game, err := gs.gameManager.CreateGame(gameID, hotseat)
	if err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	if _, err := game.AddPlayer(playerID); err != nil {
		return "", fmt.Errorf("failed to seat creator: %w", err)
	}
	return gameID, nil
}

func (gs *GameService) JoinGame(gameID string, playerID string) (engine.Color, error) {
	return gs.gameManager.AddPlayerToGame(gameID, playerID)
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gs *GameService) PieceAt(gameID string, index int) (engine.Piece, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return engine.Empty, err
	}
	return game.PieceAt(index)
}

func (gs *GameService) ValidateMove(gameID string, move engine.Move) (bool, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return false, err
	}
	return game.Validate(move)
}

func (gs *GameService) SelectSquare(gameID string, playerID string, index int) ([]int, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.Select(playerID, index)
}

func (gs *GameService) HandleMove(gameID string, playerID string, move engine.Move) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.MakeMove(playerID, move)
}

func (gs *GameService) ResetGame(gameID string, playerID string) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.Reset(playerID)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn ws.Writer) error {
	return gs.gameManager.RegisterConnection(gameID, playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn ws.Writer) {
	gs.gameManager.UnregisterConnection(gameID, playerID, conn)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

// ListenForMatch registers ch for the player's matchFound event and makes sure
// they are queued. A player who already joined over REST keeps their place.
func (gs *GameService) ListenForMatch(playerID string, ch chan model.MatchFoundEvent) error {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
	if err := gs.gameManager.JoinMatchmaking(playerID); err != nil && !errors.Is(err, model.ErrAlreadyQueued) {
		gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
		return err
	}
	return nil
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}
