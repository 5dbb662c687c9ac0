package main

import (
	"encoding/json"
	"strings"

	"github.com/pterm/pterm"

	"liarbar/internal/game/card"
	"liarbar/internal/network"
	"liarbar/internal/session/message"
)

func printHelp() {
	_ = pterm.DefaultTable.WithHasHeader().WithData(pterm.TableData{
		{"Command", "Effect"},
		{"join <roomId> [name]", "join a room"},
		{"name <name>", "change your display name"},
		{"deal [n]", "host only: deal n cards to everyone"},
		{"reveal", "show your hand to the room"},
		{"host <playerId>", "host only: hand the host role over"},
		{"quit", "leave"},
	}).Render()
}

func render(st *state, msg network.Message) {
	switch msg.Type {
	case message.TypeConnected:
		var p message.ConnectedPayload
		if decode(msg, &p) {
			st.mu.Lock()
			st.selfID = p.ID
			st.mu.Unlock()
			pterm.Info.Printfln("Connected as %s", pterm.LightCyan(p.ID))
		}

	case message.TypeRoomState:
		var p message.RoomStatePayload
		if !decode(msg, &p) {
			return
		}
		st.mu.Lock()
		self := st.selfID
		st.mu.Unlock()

		data := pterm.TableData{{"", "Player", "Id"}}
		for _, pl := range p.Players {
			marker := ""
			if pl.ID == p.HostID {
				marker = "host"
			}
			name := pl.Name
			if pl.ID == self {
				name = pterm.LightCyan(name + " (you)")
			}
			data = append(data, []string{marker, name, pl.ID})
		}
		pterm.DefaultSection.Printfln("Room %s", p.RoomID)
		_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()

	case message.TypeYourHand:
		var hand card.Pile
		if decode(msg, &hand) {
			pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTitle(pterm.LightYellow("|YOUR HAND|")).WithTitleTopCenter()
			pbox.Println(pterm.BgGreen.Sprint(" " + hand.String() + " "))
		}

	case message.TypeRoundStarted:
		var p message.RoundStartedPayload
		if !decode(msg, &p) {
			return
		}
		counts := make([]string, 0, len(p.Players))
		for _, pl := range p.Players {
			counts = append(counts, pterm.Sprintf("%s: %d", pl.Name, pl.Count))
		}
		pterm.Info.Printfln("Round started, %d cards each (%s)", p.CardsPerPlayer, strings.Join(counts, ", "))

	case message.TypeHandRevealed:
		var p message.HandRevealedPayload
		if decode(msg, &p) {
			pterm.Info.Printfln("%s reveals: %s", pterm.LightCyan(p.Name), pterm.BgGreen.Sprint(" "+p.Hand.String()+" "))
		}

	case message.TypeError:
		var text string
		if decode(msg, &text) {
			pterm.Error.Println(text)
		}

	default:
		pterm.Debug.Printfln("%s %s", msg.Type, string(msg.Payload))
	}
}

func decode(msg network.Message, v any) bool {
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		pterm.Warning.Printfln("bad %s payload: %v", msg.Type, err)
		return false
	}
	return true
}
