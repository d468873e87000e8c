package model

import (
	"errors"
	"fmt"

	"github.com/benbeisheim/chess-backend/internal/engine"
)

var (
	ErrGameFull        = errors.New("game is full")
	ErrNotInGame       = errors.New("player not in game")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrNotYourPiece    = errors.New("no piece of the side to move at from square")
	ErrNothingSelected = errors.New("no piece of the side to move on that square")
	ErrAlreadyQueued   = errors.New("player already in queue")

	// ErrIllegalMove matches engine.ErrInvalidMove under errors.Is.
	ErrIllegalMove = fmt.Errorf("illegal move: %w", engine.ErrInvalidMove)
)
