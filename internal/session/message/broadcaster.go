package message

import (
	"fmt"

	"go.uber.org/zap"

	"liarbar/internal/network"
	"liarbar/internal/room"
)

// Broadcaster fans notifications out to live connections. A room's
// recipient set is its player list, never a transport-level group.
type Broadcaster struct {
	conns map[string]network.Conn
	log   *zap.Logger
}

func NewBroadcaster(logger *zap.Logger) *Broadcaster {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Broadcaster{
		conns: make(map[string]network.Conn),
		log:   logger.Named("broadcast"),
	}
}

func (b *Broadcaster) Attach(c network.Conn) { b.conns[c.ID()] = c }
func (b *Broadcaster) Detach(connID string)  { delete(b.conns, connID) }
func (b *Broadcaster) Len() int              { return len(b.conns) }

// SendTo reports false when connID is gone or its queue is full.
func (b *Broadcaster) SendTo(connID string, msg network.Message) bool {
	c, ok := b.conns[connID]
	if !ok {
		b.log.Debug("no live connection", zap.String("conn", connID), zap.String("type", msg.Type))
		return false
	}
	return c.Deliver(msg)
}

// ToRoom returns how many members accepted msg. One failed delivery does
// not stop the others.
func (b *Broadcaster) ToRoom(r *room.Room, msg network.Message) int {
	delivered := 0
	for _, id := range r.PlayerIDs() {
		if b.SendTo(id, msg) {
			delivered++
		}
	}
	return delivered
}

// SendError formats an error-message for one connection.
func (b *Broadcaster) SendError(connID string, format string, args ...any) {
	b.SendTo(connID, CreateErrorMessage(fmt.Sprintf(format, args...)))
}
