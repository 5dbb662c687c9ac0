package session

import (
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"liarbar/internal/game/card"
	"liarbar/internal/network"
	"liarbar/internal/room"
	"liarbar/internal/services/events"
	"liarbar/internal/session/message"
)

func handleJoinRoom(h *GameHandler, conn network.Conn, payload json.RawMessage) {
	var req joinRoomRequest
	if err := decodePayload(payload, &req); err != nil {
		h.broadcast.SendError(conn.ID(), "Invalid payload for %s: %v", CmdJoinRoom, err)
		return
	}

	r, err := h.rooms.AddPlayer(req.RoomID, conn.ID(), req.Name)
	if err != nil {
		h.broadcast.SendError(conn.ID(), "Room not found. Create a new one.")
		return
	}

	h.log.Info("player joined",
		zap.String("room", r.ID),
		zap.String("conn", conn.ID()),
		zap.String("name", r.PlayerName(conn.ID())),
		zap.Int("players", r.Len()))
	h.broadcast.ToRoom(r, message.CreateRoomState(r))
}

func handleSetName(h *GameHandler, conn network.Conn, payload json.RawMessage) {
	var req setNameRequest
	if err := decodePayload(payload, &req); err != nil {
		return
	}

	r, ok := h.rooms.RenamePlayer(req.RoomID, conn.ID(), req.Name)
	if !ok {
		return
	}
	h.broadcast.ToRoom(r, message.CreateRoomState(r))
}

func handleStartDeal(h *GameHandler, conn network.Conn, payload json.RawMessage) {
	var req startDealRequest
	if err := decodePayload(payload, &req); err != nil {
		h.broadcast.SendError(conn.ID(), "Invalid payload for %s: %v", CmdStartDeal, err)
		return
	}

	r, err := h.rooms.Get(req.RoomID)
	if err != nil {
		h.broadcast.SendError(conn.ID(), "Room not found.")
		return
	}
	if !r.IsHost(conn.ID()) {
		h.log.Info("deal refused: not host", zap.String("room", r.ID), zap.String("conn", conn.ID()))
		h.broadcast.SendError(conn.ID(), "Only the host can deal.")
		return
	}

	cardsPerPlayer := h.defaultCardsPerPlayer
	if req.CardsPerPlayer != nil && *req.CardsPerPlayer > 0 {
		cardsPerPlayer = *req.CardsPerPlayer
	}

	order := r.PlayerIDs()
	hands, err := h.dealer.DealRound(order, cardsPerPlayer)
	if err != nil {
		if errors.Is(err, card.ErrInsufficientDeck) {
			h.broadcast.SendError(conn.ID(),
				"Cannot deal %d cards to %d players from a %d-card deck.", cardsPerPlayer, len(order), card.DeckSize)
			return
		}
		h.log.Error("deal failed", zap.String("room", r.ID), zap.Error(err))
		h.broadcast.SendError(conn.ID(), "Deal failed: %v", err)
		return
	}
	if err := h.rooms.StoreHands(r.ID, hands); err != nil {
		h.log.Error("store hands", zap.String("room", r.ID), zap.Error(err))
		return
	}

	// Hands are private: one message per recipient, never broadcast.
	for _, id := range order {
		h.broadcast.SendTo(id, message.CreateYourHand(hands[id]))
	}

	summary := message.CreateRoundStarted(r, cardsPerPlayer, hands)
	h.broadcast.ToRoom(r, summary)
	h.events.Publish(r.ID, events.RoundStarted, summary.Payload)

	h.log.Info("round dealt",
		zap.String("room", r.ID),
		zap.Int("players", len(order)),
		zap.Int("cardsPerPlayer", cardsPerPlayer))
}

func handleRevealMyHand(h *GameHandler, conn network.Conn, payload json.RawMessage) {
	var req roomRequest
	if err := decodePayload(payload, &req); err != nil {
		return
	}

	r, err := h.rooms.Get(req.RoomID)
	if err != nil || !r.HasPlayer(conn.ID()) {
		return
	}

	// A member without a dealt hand reveals an empty one.
	hand, _ := r.Hand(conn.ID())
	h.broadcast.ToRoom(r, message.CreateHandRevealed(conn.ID(), r.PlayerName(conn.ID()), hand))
}

func handleMakeHost(h *GameHandler, conn network.Conn, payload json.RawMessage) {
	var req makeHostRequest
	if err := decodePayload(payload, &req); err != nil {
		h.broadcast.SendError(conn.ID(), "Invalid payload for %s: %v", CmdMakeHost, err)
		return
	}

	r, err := h.rooms.TransferHost(req.RoomID, conn.ID(), req.PlayerID)
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		h.broadcast.SendError(conn.ID(), "Room not found.")
		return
	case errors.Is(err, room.ErrUnauthorized):
		h.broadcast.SendError(conn.ID(), "Only host can transfer host.")
		return
	case errors.Is(err, room.ErrNotMember):
		h.broadcast.SendError(conn.ID(), "That player is not in this room.")
		return
	case err != nil:
		h.log.Error("transfer host", zap.String("room", req.RoomID), zap.Error(err))
		return
	}

	h.log.Info("host transferred", zap.String("room", r.ID), zap.String("from", conn.ID()), zap.String("to", r.HostID()))
	h.broadcast.ToRoom(r, message.CreateRoomState(r))
	h.events.Publish(r.ID, events.HostChanged, map[string]string{"hostId": r.HostID()})
}

// handleDisconnecting forgets conn in every room it had joined.
func handleDisconnecting(h *GameHandler, conn network.Conn, _ json.RawMessage) {
	for _, roomID := range h.rooms.RoomsOf(conn.ID()) {
		d := h.rooms.RemovePlayer(roomID, conn.ID())
		if !d.Removed {
			continue
		}

		if d.RoomDeleted {
			h.log.Info("room closed", zap.String("room", roomID), zap.Int("rooms", h.rooms.Len()))
			h.events.Publish(roomID, events.RoomDeleted, nil)
			continue
		}

		h.log.Info("player left",
			zap.String("room", roomID),
			zap.String("conn", conn.ID()),
			zap.Bool("hostChanged", d.HostChanged),
			zap.Int("players", d.Room.Len()))
		h.broadcast.ToRoom(d.Room, message.CreateRoomState(d.Room))
		if d.HostChanged {
			h.events.Publish(roomID, events.HostChanged, map[string]string{"hostId": d.Room.HostID()})
		}
	}
}
