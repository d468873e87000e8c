package model

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/chess-backend/internal/engine"
	"github.com/benbeisheim/chess-backend/internal/ws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu       sync.Mutex
	messages []ws.Message
	closed   bool
	failing  bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failing {
		return errors.New("broken pipe")
	}
	c.messages = append(c.messages, v.(ws.Message))
	return nil
}

func (c *fakeConn) WriteMessage(int, []byte) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}

func (c *fakeConn) last() GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	var state GameState
	_ = json.Unmarshal(c.messages[len(c.messages)-1].Payload, &state)
	return state
}

func (c *fakeConn) states() []GameState {
	c.mu.Lock()
	defer c.mu.Unlock()
	states := make([]GameState, 0, len(c.messages))
	for _, m := range c.messages {
		var state GameState
		_ = json.Unmarshal(m.Payload, &state)
		states = append(states, state)
	}
	return states
}

func seatedGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("g1", false)
	c, err := g.AddPlayer("alice")
	require.NoError(t, err)
	require.Equal(t, engine.White, c)
	c, err = g.AddPlayer("bob")
	require.NoError(t, err)
	require.Equal(t, engine.Black, c)
	return g
}

func TestAddPlayer(t *testing.T) {
	g := seatedGame(t)

	c, err := g.AddPlayer("alice")
	require.NoError(t, err)
	assert.Equal(t, engine.White, c, "rejoining keeps the seat")

	_, err = g.AddPlayer("carol")
	assert.ErrorIs(t, err, ErrGameFull)

	assert.True(t, g.IsPlayerInGame("bob"))
	assert.False(t, g.IsPlayerInGame("carol"))
	assert.False(t, g.IsPlayerInGame(""))
}

func TestHotseatControlsBothColours(t *testing.T) {
	g := NewGame("hs", true)
	_, err := g.AddPlayer("solo")
	require.NoError(t, err)
	_, err = g.AddPlayer("other")
	assert.ErrorIs(t, err, ErrGameFull)

	require.NoError(t, g.MakeMove("solo", engine.Move{From: 12, To: 28}))
	require.NoError(t, g.MakeMove("solo", engine.Move{From: 51, To: 35}))
	assert.Equal(t, engine.White, g.Turn())
}

func TestTwoMoveGame(t *testing.T) {
	g := seatedGame(t)

	ok, err := g.Validate(engine.Move{From: 8, To: 16})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, g.MakeMove("alice", engine.Move{From: 8, To: 16}))
	assert.Equal(t, engine.Black, g.Turn())

	ok, err = g.Validate(engine.Move{From: 48, To: 40})
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, g.MakeMove("bob", engine.Move{From: 48, To: 40}))
	assert.Equal(t, engine.White, g.Turn())

	state := g.GetState()
	assert.Equal(t, engine.WhitePawn, state.Board[16])
	assert.Equal(t, engine.Empty, state.Board[8])
	assert.Equal(t, engine.BlackPawn, state.Board[40])
	assert.Equal(t, engine.Empty, state.Board[48])
	require.NotNil(t, state.LastMove)
	assert.Equal(t, "a6", state.LastMove.Notation)
	assert.Equal(t, "move", state.Sound)
}

func TestMakeMoveTurnGate(t *testing.T) {
	g := seatedGame(t)

	err := g.MakeMove("bob", engine.Move{From: 48, To: 40})
	assert.ErrorIs(t, err, ErrNotYourTurn)

	err = g.MakeMove("carol", engine.Move{From: 8, To: 16})
	assert.ErrorIs(t, err, ErrNotInGame)

	// White may not move a black piece even if the geometry is fine.
	err = g.MakeMove("alice", engine.Move{From: 48, To: 40})
	assert.ErrorIs(t, err, ErrNotYourPiece)

	err = g.MakeMove("alice", engine.Move{From: 20, To: 28})
	assert.ErrorIs(t, err, ErrNotYourPiece, "empty square")

	assert.Equal(t, engine.White, g.Turn())
}

func TestMakeMoveRejectsIllegal(t *testing.T) {
	g := seatedGame(t)
	before := g.GetState().Board

	err := g.MakeMove("alice", engine.Move{From: 0, To: 7})
	assert.ErrorIs(t, err, ErrIllegalMove)
	assert.ErrorIs(t, err, engine.ErrInvalidMove)
	assert.Equal(t, before, g.GetState().Board)
	assert.Equal(t, engine.White, g.Turn(), "failed move keeps the turn")

	err = g.MakeMove("alice", engine.Move{From: 8, To: 64})
	assert.ErrorIs(t, err, engine.ErrOutOfRange)
}

func TestCaptureSound(t *testing.T) {
	g := seatedGame(t)
	moves := []struct {
		player string
		move   engine.Move
	}{
		{"alice", engine.Move{From: 12, To: 28}},
		{"bob", engine.Move{From: 51, To: 35}},
		{"alice", engine.Move{From: 28, To: 35}},
	}
	for _, m := range moves {
		require.NoError(t, g.MakeMove(m.player, m.move))
	}
	state := g.GetState()
	assert.Equal(t, "capture", state.Sound)
	assert.Equal(t, "exd5", state.LastMove.Notation)
	assert.Equal(t, engine.BlackPawn, state.LastMove.Captured)
}

func TestSelect(t *testing.T) {
	g := seatedGame(t)

	targets, err := g.Select("alice", 1)
	require.NoError(t, err)
	assert.Equal(t, []int{16, 18}, targets)

	state := g.GetState()
	require.NotNil(t, state.SelectedSquare)
	assert.Equal(t, 1, *state.SelectedSquare)
	assert.Equal(t, []int{16, 18}, state.LegalMoves)

	_, err = g.Select("alice", 20)
	assert.ErrorIs(t, err, ErrNothingSelected)
	_, err = g.Select("alice", 57)
	assert.ErrorIs(t, err, ErrNothingSelected)
	_, err = g.Select("bob", 57)
	assert.ErrorIs(t, err, ErrNotYourTurn)
	_, err = g.Select("alice", -3)
	assert.ErrorIs(t, err, engine.ErrOutOfRange)

	// A failed move still clears the selection.
	err = g.MakeMove("alice", engine.Move{From: 1, To: 11})
	assert.ErrorIs(t, err, ErrIllegalMove)
	state = g.GetState()
	assert.Nil(t, state.SelectedSquare)
	assert.Empty(t, state.LegalMoves)
}

func TestReset(t *testing.T) {
	g := seatedGame(t)
	require.NoError(t, g.MakeMove("alice", engine.Move{From: 8, To: 24}))

	assert.ErrorIs(t, g.Reset("carol"), ErrNotInGame)
	require.NoError(t, g.Reset("bob"))

	state := g.GetState()
	assert.Equal(t, engine.New().Board(), state.Board)
	assert.Equal(t, engine.White, state.ToMove)
	assert.Nil(t, state.LastMove)
	assert.Equal(t, "", state.Sound)
}

func TestBroadcast(t *testing.T) {
	g := seatedGame(t)
	alice := &fakeConn{}
	require.NoError(t, g.RegisterConnection("alice", alice))
	require.Eventually(t, func() bool { return alice.count() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, g.MakeMove("alice", engine.Move{From: 8, To: 16}))
	require.Eventually(t, func() bool { return alice.count() == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, engine.Black, alice.last().ToMove)

	// A second connection for the same player is closed and the first kept.
	dup := &fakeConn{}
	require.NoError(t, g.RegisterConnection("alice", dup))
	assert.True(t, dup.closed)

	// Outsiders cannot watch a full game.
	assert.ErrorIs(t, g.RegisterConnection("carol", &fakeConn{}), ErrNotInGame)
}

func TestBroadcastKeepsStatesInOrder(t *testing.T) {
	moves := []engine.Move{
		{From: 8, To: 16}, {From: 48, To: 40},
		{From: 9, To: 17}, {From: 49, To: 41},
		{From: 10, To: 18}, {From: 50, To: 42},
	}
	players := []string{"alice", "bob"}

	for round := 0; round < 20; round++ {
		g := seatedGame(t)
		alice, bob := &fakeConn{}, &fakeConn{}
		require.NoError(t, g.RegisterConnection("alice", alice))
		require.NoError(t, g.RegisterConnection("bob", bob))

		for i, m := range moves {
			require.NoError(t, g.MakeMove(players[i%2], m))
		}

		final := moves[len(moves)-1]
		for _, conn := range []*fakeConn{alice, bob} {
			require.Eventually(t, func() bool {
				if conn.count() == 0 {
					return false
				}
				lm := conn.last().LastMove
				return lm != nil && lm.Move == final
			}, time.Second, time.Millisecond)
		}
		time.Sleep(20 * time.Millisecond)

		for _, conn := range []*fakeConn{alice, bob} {
			state := conn.last()
			require.NotNil(t, state.LastMove)
			assert.Equal(t, final, state.LastMove.Move)
			assert.Equal(t, engine.White, state.ToMove)

			// Later messages never carry an earlier move.
			seen := -1
			for _, s := range conn.states() {
				if s.LastMove == nil {
					continue
				}
				idx := -1
				for i, m := range moves {
					if m == s.LastMove.Move {
						idx = i
					}
				}
				assert.Greater(t, idx, seen)
				seen = idx
			}
		}
	}
}

func TestBroadcastDropsFailedConnection(t *testing.T) {
	g := seatedGame(t)
	bob := &fakeConn{failing: true}
	require.NoError(t, g.RegisterConnection("bob", bob))

	require.Eventually(t, func() bool {
		g.connections.mu.RLock()
		defer g.connections.mu.RUnlock()
		_, ok := g.connections.connections["bob"]
		return !ok
	}, time.Second, 5*time.Millisecond)
}

func TestUnregisterIgnoresStaleConnection(t *testing.T) {
	g := seatedGame(t)
	current := &fakeConn{}
	require.NoError(t, g.RegisterConnection("alice", current))

	g.UnregisterConnection("alice", &fakeConn{})
	g.connections.mu.RLock()
	_, ok := g.connections.connections["alice"]
	g.connections.mu.RUnlock()
	assert.True(t, ok)

	g.UnregisterConnection("alice", current)
	g.connections.mu.RLock()
	_, ok = g.connections.connections["alice"]
	g.connections.mu.RUnlock()
	assert.False(t, ok)
}

func TestStateJSON(t *testing.T) {
	g := seatedGame(t)
	raw, err := json.Marshal(g.GetState())
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, "white", decoded["toMove"])
	board := decoded["board"].([]interface{})
	assert.Len(t, board, 64)
	assert.Equal(t, float64(4), board[0])
	assert.Equal(t, float64(-6), board[60])
}
