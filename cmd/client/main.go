// Command client is a terminal player for a liarbar server.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/pterm/pterm"

	"liarbar/internal/api"
	"liarbar/internal/network"
	"liarbar/internal/session"
)

// state is shared between the read loop and the input loop.
type state struct {
	mu     sync.Mutex
	selfID string
	roomID string
}

func (s *state) room() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomID
}

func (s *state) setRoom(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomID = id
}

func main() {
	server := flag.String("server", "http://localhost:3000", "server base URL")
	roomID := flag.String("room", "", "room to join on start")
	name := flag.String("name", "", "display name")
	create := flag.Bool("create", false, "create a new room and join it")
	flag.Parse()

	base, err := url.Parse(*server)
	if err != nil {
		pterm.Fatal.Printfln("invalid -server: %v", err)
	}

	if *create {
		created, err := createRoom(base)
		if err != nil {
			pterm.Fatal.Printfln("create room: %v", err)
		}
		pterm.Success.Printfln("Room %s created. Share %s", created.RoomID, created.JoinURL)
		*roomID = created.RoomID
	}

	wsURL := *base
	wsURL.Scheme = strings.Replace(base.Scheme, "http", "ws", 1)
	wsURL.Path = "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL.String(), nil)
	if err != nil {
		pterm.Fatal.Printfln("connect %s: %v", wsURL.String(), err)
	}
	defer conn.Close()

	st := &state{}
	done := make(chan struct{})
	go readLoop(conn, st, done)

	if *roomID != "" {
		st.setRoom(*roomID)
		send(conn, session.CmdJoinRoom, map[string]string{"roomId": *roomID, "name": *name})
	}

	printHelp()
	go inputLoop(conn, st)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case <-done:
		pterm.Info.Println("Disconnected from server.")
	case <-interrupt:
		_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	}
}

func createRoom(base *url.URL) (*api.CreateRoomResponse, error) {
	resp, err := http.Post(base.JoinPath("/api/create-room").String(), "application/json", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("server answered %s", resp.Status)
	}
	var created api.CreateRoomResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return nil, err
	}
	return &created, nil
}

func send(conn *websocket.Conn, cmd session.Command, payload any) {
	msg, err := network.NewMessage(string(cmd), payload)
	if err != nil {
		pterm.Error.Println(err)
		return
	}
	if err := conn.WriteJSON(msg); err != nil {
		pterm.Error.Printfln("send %s: %v", cmd, err)
	}
}

func readLoop(conn *websocket.Conn, st *state, done chan struct{}) {
	defer close(done)
	for {
		var msg network.Message
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				pterm.Error.Printfln("read: %v", err)
			}
			return
		}
		render(st, msg)
	}
}

func inputLoop(conn *websocket.Conn, st *state) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		args := fields[1:]

		switch fields[0] {
		case "join":
			if len(args) == 0 {
				pterm.Warning.Println("usage: join <roomId> [name]")
				continue
			}
			st.setRoom(args[0])
			send(conn, session.CmdJoinRoom, map[string]string{"roomId": args[0], "name": strings.Join(args[1:], " ")})
		case "name":
			send(conn, session.CmdSetName, map[string]string{"roomId": st.room(), "name": strings.Join(args, " ")})
		case "deal":
			payload := map[string]any{"roomId": st.room()}
			if len(args) > 0 {
				n, err := strconv.Atoi(args[0])
				if err != nil {
					pterm.Warning.Println("usage: deal [cardsPerPlayer]")
					continue
				}
				payload["cardsPerPlayer"] = n
			}
			send(conn, session.CmdStartDeal, payload)
		case "reveal":
			send(conn, session.CmdRevealMyHand, map[string]string{"roomId": st.room()})
		case "host":
			if len(args) != 1 {
				pterm.Warning.Println("usage: host <playerId>")
				continue
			}
			send(conn, session.CmdMakeHost, map[string]string{"roomId": st.room(), "playerId": args[0]})
		case "help":
			printHelp()
		case "quit", "exit":
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		default:
			pterm.Warning.Printfln("unknown command %q, try help", fields[0])
		}
	}
}
