package controller

import (
	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/middleware"
	"github.com/benbeisheim/chess-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

type GameController struct {
	gameService *service.GameService
}

func NewGameController(gameService *service.GameService) *GameController {
	return &GameController{gameService: gameService}
}

type moveRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

type selectRequest struct {
	Index *int `json:"index"`
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}

func (gc *GameController) CreateGame(c *fiber.Ctx) error {
	playerID := middleware.PlayerID(c)
	hotseat := c.QueryBool("hotseat", false)

	gameID, err := gc.gameService.CreateGame(playerID, hotseat)
	if err != nil {
		log.Error().Err(err).Str("player", playerID).Msg("create game")
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Game created",
		"game_id": gameID,
		"color":   engine.White,
	})
}

func (gc *GameController) JoinGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	playerID := middleware.PlayerID(c)

	color, err := gc.gameService.JoinGame(gameID, playerID)
	if err != nil {
		return sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"message": "Game joined",
		"color":   color,
	})
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	gameState, err := gc.gameService.GetGameState(c.Params("gameId"))
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) GetPiece(c *fiber.Ctx) error {
	index, err := c.ParamsInt("index")
	if err != nil {
		return badRequest(c, "index must be an integer")
	}

	piece, err := gc.gameService.PieceAt(c.Params("gameId"), index)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"index":  index,
		"piece":  piece,
		"symbol": piece.Symbol(),
	})
}

// ValidateMove answers whether a move is legal without applying it.
func (gc *GameController) ValidateMove(c *fiber.Ctx) error {
	move := engine.Move{
		From: c.QueryInt("from", -1),
		To:   c.QueryInt("to", -1),
	}

	valid, err := gc.gameService.ValidateMove(c.Params("gameId"), move)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"from":  move.From,
		"to":    move.To,
		"valid": valid,
	})
}

func (gc *GameController) SelectSquare(c *fiber.Ctx) error {
	var req selectRequest
	if err := c.BodyParser(&req); err != nil || req.Index == nil {
		return badRequest(c, "body must be {\"index\": n}")
	}

	targets, err := gc.gameService.SelectSquare(c.Params("gameId"), middleware.PlayerID(c), *req.Index)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(fiber.Map{
		"selectedSquare": *req.Index,
		"legalMoves":     targets,
	})
}

func (gc *GameController) MakeMove(c *fiber.Ctx) error {
	var req moveRequest
	if err := c.BodyParser(&req); err != nil || req.From == nil || req.To == nil {
		return badRequest(c, "body must be {\"from\": n, \"to\": n}")
	}

	gameID := c.Params("gameId")
	move := engine.Move{From: *req.From, To: *req.To}
	if err := gc.gameService.HandleMove(gameID, middleware.PlayerID(c), move); err != nil {
		return sendError(c, err)
	}

	gameState, err := gc.gameService.GetGameState(gameID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) ResetGame(c *fiber.Ctx) error {
	gameID := c.Params("gameId")
	if err := gc.gameService.ResetGame(gameID, middleware.PlayerID(c)); err != nil {
		return sendError(c, err)
	}

	gameState, err := gc.gameService.GetGameState(gameID)
	if err != nil {
		return sendError(c, err)
	}
	return c.JSON(gameState)
}

func (gc *GameController) JoinMatchmaking(c *fiber.Ctx) error {
	playerID := middleware.PlayerID(c)

	if err := gc.gameService.JoinMatchmaking(playerID); err != nil {
		return sendError(c, err)
	}

	return c.JSON(fiber.Map{
		"status": "queued",
	})
}
