package room

import (
	"errors"
	"fmt"
	"slices"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/samber/lo"

	"liarbar/internal/game/card"
)

var (
	ErrRoomNotFound = errors.New("room not found")
	ErrUnauthorized = errors.New("only the host can do that")
	ErrNotMember    = errors.New("player is not in the room")
	ErrIDExhausted  = errors.New("could not allocate a unique room id")
)

const (
	DefaultIDLength = 6
	idAlphabet      = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	maxIDAttempts   = 32
)

// IDGenerator produces candidate room ids. Uniqueness is checked by the
// Registry, not the generator.
type IDGenerator func() (string, error)

func NanoIDGenerator(length int) IDGenerator {
	if length <= 0 {
		length = DefaultIDLength
	}
	return func() (string, error) {
		return gonanoid.Generate(idAlphabet, length)
	}
}

type Option func(*Registry)

func WithIDGenerator(gen IDGenerator) Option {
	return func(r *Registry) { r.newID = gen }
}

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Departure describes what RemovePlayer changed.
type Departure struct {
	Room        *Room
	Removed     bool
	HostChanged bool
	RoomDeleted bool
}

// Registry owns every active room. It holds no locks: all calls must come
// from the single goroutine that runs the hub.
type Registry struct {
	rooms       map[string]*Room
	memberships map[string]map[string]struct{}
	newID       IDGenerator
	now         func() time.Time
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		rooms:       make(map[string]*Room),
		memberships: make(map[string]map[string]struct{}),
		newID:       NanoIDGenerator(DefaultIDLength),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) Len() int { return len(r.rooms) }

// CreateRoom registers an empty room under a fresh id.
func (r *Registry) CreateRoom() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id, err := r.newID()
		if err != nil {
			return "", fmt.Errorf("generate room id: %w", err)
		}
		if _, taken := r.rooms[id]; taken || id == "" {
			continue
		}
		r.rooms[id] = newRoom(id, r.now())
		return id, nil
	}
	return "", ErrIDExhausted
}

func (r *Registry) Get(roomID string) (*Room, error) {
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRoomNotFound, roomID)
	}
	return room, nil
}

// AddPlayer inserts or renames connID. The first player of a hostless room
// becomes its host.
func (r *Registry) AddPlayer(roomID, connID, name string) (*Room, error) {
	room, err := r.Get(roomID)
	if err != nil {
		return nil, err
	}
	room.addPlayer(connID, normalizeName(name))

	rooms, ok := r.memberships[connID]
	if !ok {
		rooms = make(map[string]struct{})
		r.memberships[connID] = rooms
	}
	rooms[roomID] = struct{}{}
	return room, nil
}

// RenamePlayer reports false, changing nothing, when the room or player is missing.
func (r *Registry) RenamePlayer(roomID, connID, name string) (*Room, bool) {
	room, ok := r.rooms[roomID]
	if !ok {
		return nil, false
	}
	p, ok := room.players[connID]
	if !ok {
		return room, false
	}
	p.Name = normalizeName(name)
	return room, true
}

func (r *Registry) RemovePlayer(roomID, connID string) Departure {
	room, ok := r.rooms[roomID]
	if !ok || !room.HasPlayer(connID) {
		return Departure{Room: room}
	}

	d := Departure{Room: room, Removed: true}
	d.HostChanged = room.removePlayer(connID)
	r.forget(connID, roomID)

	if room.Len() == 0 {
		delete(r.rooms, roomID)
		d.RoomDeleted = true
	}
	return d
}

// TransferHost leaves the room untouched on any error.
func (r *Registry) TransferHost(roomID, requesterID, targetID string) (*Room, error) {
	room, err := r.Get(roomID)
	if err != nil {
		return nil, err
	}
	if !room.IsHost(requesterID) {
		return room, ErrUnauthorized
	}
	if !room.HasPlayer(targetID) {
		return room, fmt.Errorf("%w: %q", ErrNotMember, targetID)
	}
	room.hostID = targetID
	return room, nil
}

// StoreHands replaces the room's hands wholesale. Entries for ids that are
// not members are dropped.
func (r *Registry) StoreHands(roomID string, hands map[string]card.Pile) error {
	room, err := r.Get(roomID)
	if err != nil {
		return err
	}
	room.setHands(hands)
	return nil
}

// RoomsOf lists, sorted, the rooms connID currently belongs to.
func (r *Registry) RoomsOf(connID string) []string {
	ids := lo.Keys(r.memberships[connID])
	slices.Sort(ids)
	return ids
}

// Close drops every room.
func (r *Registry) Close() {
	clear(r.rooms)
	clear(r.memberships)
}

func (r *Registry) forget(connID, roomID string) {
	rooms, ok := r.memberships[connID]
	if !ok {
		return
	}
	delete(rooms, roomID)
	if len(rooms) == 0 {
		delete(r.memberships, connID)
	}
}
