package session

import (
	"encoding/json"

	"go.uber.org/zap"

	"liarbar/internal/game/card"
	"liarbar/internal/network"
	"liarbar/internal/room"
	"liarbar/internal/services/events"
	"liarbar/internal/session/message"
)

type CommandHandlerFunc func(h *GameHandler, conn network.Conn, payload json.RawMessage)

// GameHandler is the command router. It implements network.EventHandler,
// so every method runs on the hub goroutine and may touch the registry
// without locking.
type GameHandler struct {
	rooms     *room.Registry
	dealer    *card.Dealer
	broadcast *message.Broadcaster
	events    events.Publisher
	log       *zap.Logger

	defaultCardsPerPlayer int

	router map[Command]CommandHandlerFunc
}

type Option func(*GameHandler)

func WithDefaultCardsPerPlayer(n int) Option {
	return func(h *GameHandler) {
		if n > 0 {
			h.defaultCardsPerPlayer = n
		}
	}
}

func WithPublisher(p events.Publisher) Option {
	return func(h *GameHandler) {
		if p != nil {
			h.events = p
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(h *GameHandler) {
		if l != nil {
			h.log = l
		}
	}
}

func NewGameHandler(rooms *room.Registry, dealer *card.Dealer, opts ...Option) *GameHandler {
	h := &GameHandler{
		rooms:                 rooms,
		dealer:                dealer,
		events:                events.NewNop(),
		log:                   zap.NewNop(),
		defaultCardsPerPlayer: card.DefaultCardsPerPlayer,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.log = h.log.Named("router")
	h.broadcast = message.NewBroadcaster(h.log)
	h.router = h.registerHandlers()
	return h
}

func (h *GameHandler) registerHandlers() map[Command]CommandHandlerFunc {
	table := make(map[Command]CommandHandlerFunc, len(Commands))
	for _, cmd := range Commands {
		var fn CommandHandlerFunc
		switch cmd {
		case CmdJoinRoom:
			fn = handleJoinRoom
		case CmdSetName:
			fn = handleSetName
		case CmdStartDeal:
			fn = handleStartDeal
		case CmdRevealMyHand:
			fn = handleRevealMyHand
		case CmdMakeHost:
			fn = handleMakeHost
		case CmdDisconnecting:
			fn = handleDisconnecting
		default:
			panic("session: no handler for command " + string(cmd))
		}
		table[cmd] = fn
	}
	return table
}

// --- network.EventHandler ---

func (h *GameHandler) OnConnect(c network.Conn) {
	h.broadcast.Attach(c)
	h.broadcast.SendTo(c.ID(), message.CreateConnected(c.ID()))
	h.log.Debug("connected",
		zap.String("conn", c.ID()),
		zap.String("remote", c.RemoteAddr()),
		zap.Int("connections", h.broadcast.Len()))
}

func (h *GameHandler) OnDisconnect(c network.Conn) {
	h.broadcast.Detach(c.ID())
	h.router[CmdDisconnecting](h, c, nil)
	h.log.Debug("disconnected", zap.String("conn", c.ID()), zap.Int("connections", h.broadcast.Len()))
}

func (h *GameHandler) OnMessage(c network.Conn, msg network.Message) {
	cmd := Command(msg.Type)
	handler, found := h.router[cmd]
	if !found || !cmd.clientIssued() {
		h.broadcast.SendError(c.ID(), "Unknown command: %s", msg.Type)
		return
	}
	h.log.Debug("command", zap.String("conn", c.ID()), zap.String("cmd", msg.Type))
	handler(h, c, msg.Payload)
}

// CreateRoom must run on the hub goroutine (see network.Hub.Do).
func (h *GameHandler) CreateRoom() (string, error) {
	id, err := h.rooms.CreateRoom()
	if err != nil {
		return "", err
	}
	h.log.Info("room created", zap.String("room", id), zap.Int("rooms", h.rooms.Len()))
	h.events.Publish(id, events.RoomCreated, nil)
	return id, nil
}

// RoomExists must run on the hub goroutine.
func (h *GameHandler) RoomExists(roomID string) bool {
	_, err := h.rooms.Get(roomID)
	return err == nil
}

// Close tears down every room. Call it only after the hub has stopped.
func (h *GameHandler) Close() {
	h.rooms.Close()
}
