package model

import "github.com/benbeisheim/chess-backend/internal/engine"

type Player struct {
	ID string
}

// ClientPlayer is the per-seat view sent to clients.
type ClientPlayer struct {
	ID        string       `json:"name"`
	Color     engine.Color `json:"color"`
	ThinkTime int64        `json:"thinkTime"` // milliseconds used so far
}

// MatchFoundEvent tells a queued player which game and colour they were given.
type MatchFoundEvent struct {
	GameID string       `json:"gameId"`
	Color  engine.Color `json:"color"`
}
