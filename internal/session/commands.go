package session

import (
	"encoding/json"
	"errors"
)

// Command is the closed set of events the router understands.
type Command string

const (
	CmdJoinRoom     Command = "join-room"
	CmdSetName      Command = "set-name"
	CmdStartDeal    Command = "start-deal"
	CmdRevealMyHand Command = "reveal-my-hand"
	CmdMakeHost     Command = "make-host"

	// CmdDisconnecting is raised by the transport when a connection drops;
	// clients cannot send it.
	CmdDisconnecting Command = "disconnecting"
)

// Commands lists every command in the order the table is built.
var Commands = []Command{
	CmdJoinRoom,
	CmdSetName,
	CmdStartDeal,
	CmdRevealMyHand,
	CmdMakeHost,
	CmdDisconnecting,
}

func (c Command) clientIssued() bool {
	return c != CmdDisconnecting
}

type roomRequest struct {
	RoomID string `json:"roomId"`
}

type joinRoomRequest struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type setNameRequest struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type startDealRequest struct {
	RoomID         string `json:"roomId"`
	CardsPerPlayer *int   `json:"cardsPerPlayer"`
}

type makeHostRequest struct {
	RoomID   string `json:"roomId"`
	PlayerID string `json:"playerId"`
}

var errMissingPayload = errors.New("missing payload")

func decodePayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 || string(payload) == "null" {
		return errMissingPayload
	}
	return json.Unmarshal(payload, v)
}
