// server/http/ws.go
package http

import (
	"github.com/gofiber/contrib/websocket"

	"github.com/lumina-notes/lumina-server/identity"
)

// Hub interface extension for packages that can register live connections.
type hubRegistrar interface {
	Register(conn *websocket.Conn, userID string)
	HandleConnection(conn *websocket.Conn)
}

func (s *Server) handleWebSocket(conn *websocket.Conn) {
	ident, ok := conn.Locals(identity.LocalsKey).(identity.Identity)
	if !ok {
		conn.Close()
		return
	}

	hub, ok := s.hub.(hubRegistrar)
	if !ok {
		conn.Close()
		return
	}

	hub.Register(conn, ident.UserID)
	hub.HandleConnection(conn)
}
