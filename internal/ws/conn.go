package ws

import "sync"

// Writer is the write side of a websocket connection.
// *websocket.Conn from gofiber/websocket satisfies it.
type Writer interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// SafeConn serializes writes to a connection shared by the read loop and the
// game broadcaster. The underlying connection allows one writer at a time.
type SafeConn struct {
	mu   sync.Mutex
	conn Writer
}

func NewSafeConn(conn Writer) *SafeConn {
	return &SafeConn{conn: conn}
}

func (c *SafeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *SafeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(messageType, data)
}

func (c *SafeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.Close()
}

// Send marshals v into a message of type t and writes it.
func (c *SafeConn) Send(t MessageType, v interface{}) error {
	msg, err := NewMessage(t, v)
	if err != nil {
		return err
	}
	return c.WriteJSON(msg)
}
