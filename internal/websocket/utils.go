package websocket

import (
	"time"

	"github.com/gorilla/websocket"
)

// Deadlines shared by the stream handler and the write helper.
const (
	// WriteWait bounds a single frame write.
	WriteWait = 10 * time.Second
	// ReadWait is the idle limit before a silent client is dropped.
	ReadWait = 5 * time.Minute
)

// WriteTyped sends a strongly-typed response payload over the WebSocket.
func WriteTyped(conn *websocket.Conn, v interface{}) error {
	conn.SetWriteDeadline(time.Now().Add(WriteWait))
	return conn.WriteJSON(v)
}
