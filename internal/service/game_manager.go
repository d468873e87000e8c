package service

import (
	"errors"
	"sync"
	"time"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrGameExists   = errors.New("game already exists")
)

// GameManager owns every live game and the matchmaking queue.
type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan model.MatchFoundEvent
	mu               sync.RWMutex
	done             chan struct{}
	closeOnce        sync.Once
}

// NewGameManager starts a matchmaking loop that pairs queued players every
// interval until Close is called.
func NewGameManager(interval time.Duration) *GameManager {
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan model.MatchFoundEvent),
		done:             make(chan struct{}),
	}

	go gm.processMatchmaking(interval)

	return gm
}

func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() { close(gm.done) })
}

// RegisterMatchmakingChannel replaces any channel the player registered before.
// The channel receives at most one event and is closed by the manager after it.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists {
		log.Debug().Str("player", playerID).Msg("replacing matchmaking channel")
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets the player's channel without closing it
// and takes them out of the queue.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, exists := gm.matchingChannels[playerID]; exists && current == ch {
		delete(gm.matchingChannels, playerID)
		gm.queue.Remove(playerID)
	}
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
			gm.matchPlayers()
		}
	}
}

// matchPlayers pairs queued players two at a time into fresh games. Only
// players with a matchmaking channel are paired; the rest keep waiting until
// they open one.
func (gm *GameManager) matchPlayers() {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	listening := func(p model.Player) bool {
		_, ok := gm.matchingChannels[p.ID]
		return ok
	}
	for {
		player1, player2, ok := gm.queue.GetNextPair(listening)
		if !ok {
			return
		}

		gameID := uuid.New().String()
		game := model.NewGame(gameID, false)
		p1Color, err := game.AddPlayer(player1.ID)
		if err != nil {
			log.Error().Err(err).Str("game", gameID).Msg("seating matched player")
			continue
		}
		p2Color, err := game.AddPlayer(player2.ID)
		if err != nil {
			log.Error().Err(err).Str("game", gameID).Msg("seating matched player")
			continue
		}
		gm.games[gameID] = game
		log.Info().Str("game", gameID).Str("white", player1.ID).Str("black", player2.ID).Msg("match found")

		gm.notifyMatch(player1.ID, model.MatchFoundEvent{GameID: gameID, Color: p1Color})
		gm.notifyMatch(player2.ID, model.MatchFoundEvent{GameID: gameID, Color: p2Color})
	}
}

// notifyMatch must be called with mu held.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		log.Warn().Str("player", playerID).Str("game", event.GameID).Msg("no matchmaking channel to notify")
		return
	}
	delete(gm.matchingChannels, playerID)
	select {
	case ch <- event:
	default:
		log.Warn().Str("player", playerID).Str("game", event.GameID).Msg("matchmaking channel full")
	}
	close(ch)
}

func (gm *GameManager) CreateGame(gameID string, hotseat bool) (*model.Game, error) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[gameID]; exists {
		return nil, ErrGameExists
	}

	game := model.NewGame(gameID, hotseat)
	gm.games[gameID] = game
	return game, nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, ErrGameNotFound
	}

	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (engine.Color, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return 0, err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn ws.Writer) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn ws.Writer) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}
