package room

import (
	"strings"
	"time"

	"github.com/samber/lo"

	"liarbar/internal/game/card"
)

const DefaultPlayerName = "Player"

type PlayerInfo struct {
	Name string
}

// Player is a member as seen by other members.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Room is one game session. Players keep their join order, which drives
// both the deal order and host succession.
type Room struct {
	ID        string
	CreatedAt time.Time

	order   []string
	players map[string]*PlayerInfo
	hostID  string
	hands   map[string]card.Pile
}

func newRoom(id string, createdAt time.Time) *Room {
	return &Room{
		ID:        id,
		CreatedAt: createdAt,
		players:   make(map[string]*PlayerInfo),
		hands:     make(map[string]card.Pile),
	}
}

// HostID is empty only while the room has no players.
func (r *Room) HostID() string { return r.hostID }

func (r *Room) IsHost(connID string) bool {
	return connID != "" && r.hostID == connID
}

func (r *Room) Len() int { return len(r.order) }

func (r *Room) HasPlayer(connID string) bool {
	_, ok := r.players[connID]
	return ok
}

func (r *Room) Player(connID string) (PlayerInfo, bool) {
	p, ok := r.players[connID]
	if !ok {
		return PlayerInfo{}, false
	}
	return *p, true
}

// PlayerName falls back to DefaultPlayerName for unknown ids.
func (r *Room) PlayerName(connID string) string {
	if p, ok := r.players[connID]; ok {
		return p.Name
	}
	return DefaultPlayerName
}

// PlayerIDs returns member ids in join order.
func (r *Room) PlayerIDs() []string {
	return append([]string(nil), r.order...)
}

func (r *Room) Players() []Player {
	return lo.Map(r.order, func(id string, _ int) Player {
		return Player{ID: id, Name: r.players[id].Name}
	})
}

func (r *Room) Hand(connID string) (card.Pile, bool) {
	h, ok := r.hands[connID]
	return h, ok
}

func (r *Room) addPlayer(connID, name string) {
	if p, ok := r.players[connID]; ok {
		p.Name = name
	} else {
		r.players[connID] = &PlayerInfo{Name: name}
		r.order = append(r.order, connID)
	}
	if r.hostID == "" {
		r.hostID = connID
	}
}

// removePlayer reports whether the host changed.
func (r *Room) removePlayer(connID string) bool {
	delete(r.players, connID)
	delete(r.hands, connID)
	r.order = lo.Without(r.order, connID)

	if r.hostID != connID {
		return false
	}
	r.hostID = ""
	if len(r.order) > 0 {
		r.hostID = r.order[0]
	}
	return true
}

func (r *Room) setHands(hands map[string]card.Pile) {
	r.hands = lo.PickBy(hands, func(id string, _ card.Pile) bool {
		return r.HasPlayer(id)
	})
}

func normalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultPlayerName
	}
	return name
}
