package message

import (
	"github.com/samber/lo"

	"liarbar/internal/game/card"
	"liarbar/internal/network"
	"liarbar/internal/room"
)

const (
	TypeRoomState    = "room-state"
	TypeRoundStarted = "round-started"
	TypeYourHand     = "your-hand"
	TypeHandRevealed = "hand-revealed"
	TypeError        = "error-message"

	// TypeConnected tells a fresh connection its own id, so the client can
	// recognise itself in hostId and player lists.
	TypeConnected = "connected"
)

type RoomStatePayload struct {
	RoomID  string        `json:"roomId"`
	HostID  string        `json:"hostId"`
	Players []room.Player `json:"players"`
}

type ConnectedPayload struct {
	ID string `json:"id"`
}

type PlayerCount struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// RoundStartedPayload is public: it never carries card values.
type RoundStartedPayload struct {
	CardsPerPlayer int           `json:"cardsPerPlayer"`
	Players        []PlayerCount `json:"players"`
}

type HandRevealedPayload struct {
	PlayerID string    `json:"playerId"`
	Name     string    `json:"name"`
	Hand     card.Pile `json:"hand"`
}

func encode(msgType string, payload any) network.Message {
	// Payloads here are plain structs, strings and card slices; encoding cannot fail.
	msg, _ := network.NewMessage(msgType, payload)
	return msg
}

func CreateRoomState(r *room.Room) network.Message {
	return encode(TypeRoomState, RoomStatePayload{
		RoomID:  r.ID,
		HostID:  r.HostID(),
		Players: r.Players(),
	})
}

// CreateRoundStarted summarises hands in the room's join order.
func CreateRoundStarted(r *room.Room, cardsPerPlayer int, hands map[string]card.Pile) network.Message {
	players := lo.Map(r.PlayerIDs(), func(id string, _ int) PlayerCount {
		return PlayerCount{ID: id, Name: r.PlayerName(id), Count: len(hands[id])}
	})
	return encode(TypeRoundStarted, RoundStartedPayload{
		CardsPerPlayer: cardsPerPlayer,
		Players:        players,
	})
}

func CreateYourHand(hand card.Pile) network.Message {
	if hand == nil {
		hand = card.Pile{}
	}
	return encode(TypeYourHand, hand)
}

func CreateHandRevealed(playerID, name string, hand card.Pile) network.Message {
	if hand == nil {
		hand = card.Pile{}
	}
	return encode(TypeHandRevealed, HandRevealedPayload{
		PlayerID: playerID,
		Name:     name,
		Hand:     hand,
	})
}

func CreateErrorMessage(text string) network.Message {
	return encode(TypeError, text)
}

func CreateConnected(connID string) network.Message {
	return encode(TypeConnected, ConnectedPayload{ID: connID})
}
