package network

import (
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Server promotes HTTP requests to websocket clients of a Hub.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	log      *zap.Logger
}

func NewServer(hub *Hub, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			// Any origin may connect; rooms are only guarded by their id.
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		log: logger.Named("ws"),
	}
}

// ServeHTTP upgrades the request and starts the client's pumps.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("upgrade failed", zap.String("remote", r.RemoteAddr), zap.Error(err))
		return
	}

	client := newClient(conn, s.hub)
	if !s.hub.enqueueRegister(client) {
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}
	s.log.Debug("client connected", zap.String("conn", client.id), zap.String("remote", r.RemoteAddr))

	go client.writeLoop()
	go client.readLoop()
}
