package ws

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	written []interface{}
	closed  bool
}

func (r *recorder) WriteJSON(v interface{}) error {
	r.written = append(r.written, v)
	return nil
}

func (r *recorder) WriteMessage(int, []byte) error { return nil }

func (r *recorder) Close() error {
	r.closed = true
	return nil
}

func TestSafeConnSend(t *testing.T) {
	rec := &recorder{}
	conn := NewSafeConn(rec)

	require.NoError(t, conn.Send(MessageTypeMove, MovePayload{From: 8, To: 16}))
	require.Len(t, rec.written, 1)

	msg := rec.written[0].(Message)
	assert.Equal(t, MessageTypeMove, msg.Type)
	var move MovePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &move))
	assert.Equal(t, MovePayload{From: 8, To: 16}, move)

	require.NoError(t, conn.Close())
	assert.True(t, rec.closed)
}
