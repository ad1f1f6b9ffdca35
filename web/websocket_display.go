package web

import (
	"log/slog"

	"github.com/gorilla/websocket"
	"github.com/guslan/chip8"
)

// Boot implements Display.
func (server *Server) Boot() error {
	return nil
}

func (server *Server) setWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	server.socket = conn
}

func (server *Server) unsetWs(conn *websocket.Conn) {
	server.wsMutex.Lock()
	defer server.wsMutex.Unlock()

	if server.socket == conn {
		server.socket = nil
	}
}

// Render implements Display.
// Frames are dropped when no display is connected or the write fails.
func (server *Server) Render(screen chip8.Screen, settings chip8.ScreenSettings) error {
	server.wsMutex.RLock()
	defer server.wsMutex.RUnlock()

	if server.socket == nil {
		return nil
	}

	if err := server.socket.WriteMessage(websocket.BinaryMessage, screen); err != nil {
		slog.Warn("Dropping frame", slog.Any("error", err))
	}

	return nil
}
