package model

import (
	"sync"
	"time"
)

type QueuedPlayer struct {
	Player   Player
	JoinedAt time.Time
}

// Queue holds players waiting for matchmaking, oldest first.
type Queue struct {
	players []QueuedPlayer
	mu      sync.Mutex
}

func NewQueue() *Queue {
	return &Queue{
		players: []QueuedPlayer{},
	}
}

func (q *Queue) AddPlayer(player Player) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, p := range q.players {
		if p.Player.ID == player.ID {
			return ErrAlreadyQueued
		}
	}

	q.players = append(q.players, QueuedPlayer{
		Player:   player,
		JoinedAt: time.Now(),
	})
	return nil
}

// GetNextPair removes and returns the two longest-waiting players for whom ready
// reports true. Players that are not ready keep their place in the queue.
// ok is false when fewer than two are ready.
func (q *Queue) GetNextPair(ready func(Player) bool) (Player, Player, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	picked := make([]int, 0, 2)
	for i, p := range q.players {
		if ready(p.Player) {
			picked = append(picked, i)
			if len(picked) == 2 {
				break
			}
		}
	}
	if len(picked) < 2 {
		return Player{}, Player{}, false
	}
	player1 := q.players[picked[0]].Player
	player2 := q.players[picked[1]].Player
	q.players = append(q.players[:picked[1]], q.players[picked[1]+1:]...)
	q.players = append(q.players[:picked[0]], q.players[picked[0]+1:]...)

	return player1, player2, true
}

// Remove drops a player who gave up waiting. It reports whether they were queued.
func (q *Queue) Remove(playerID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	for i, p := range q.players {
		if p.Player.ID == playerID {
			q.players = append(q.players[:i], q.players[i+1:]...)
			return true
		}
	}
	return false
}

func (q *Queue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.players)
}
