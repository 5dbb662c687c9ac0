package network

import (
	"context"
	"errors"
	"runtime/debug"
	"sync/atomic"

	"go.uber.org/zap"
)

var ErrHubStopped = errors.New("hub is not running")

type clientMessage struct {
	client *Client
	msg    Message
}

// Hub owns the set of live clients and routes their events to the handler.
// It is the only goroutine that touches game state: every connect,
// disconnect, message and task runs to completion before the next one.
type Hub struct {
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	incoming   chan clientMessage
	tasks      chan func()

	handler EventHandler
	log     *zap.Logger

	running atomic.Bool
	done    chan struct{}
}

func NewHub(handler EventHandler, logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		incoming:   make(chan clientMessage),
		tasks:      make(chan func()),
		handler:    handler,
		log:        logger.Named("hub"),
		done:       make(chan struct{}),
	}
}

// Run blocks until ctx is cancelled. Remaining clients are closed on exit.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		close(h.done)
		for id, client := range h.clients {
			client.close()
			delete(h.clients, id)
		}
		h.log.Info("hub stopped")
	}()
	h.log.Info("hub started")

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client.id] = client
			h.safely("connect", func() { h.handler.OnConnect(client) })

		case client := <-h.unregister:
			if _, ok := h.clients[client.id]; ok {
				delete(h.clients, client.id)
				// Closing send stops the client's writeLoop.
				client.close()
				h.safely("disconnect", func() { h.handler.OnDisconnect(client) })
			}

		case in := <-h.incoming:
			if _, ok := h.clients[in.client.id]; !ok {
				continue
			}
			h.safely(in.msg.Type, func() { h.handler.OnMessage(in.client, in.msg) })

		case task := <-h.tasks:
			h.safely("task", task)
		}
	}
}

func (h *Hub) Running() bool { return h.running.Load() }

func (h *Hub) Len() int {
	done := make(chan int, 1)
	if err := h.Do(context.Background(), func() { done <- len(h.clients) }); err != nil {
		return 0
	}
	return <-done
}

// Do runs fn on the hub goroutine and waits for it to finish. It is the
// only way for code outside the hub (HTTP handlers) to touch game state.
func (h *Hub) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	task := func() {
		defer close(finished)
		fn()
	}

	select {
	case h.tasks <- task:
	case <-h.done:
		return ErrHubStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-h.done:
		return ErrHubStopped
	}
}

// safely keeps one failing event from taking the whole hub down.
func (h *Hub) safely(event string, fn func()) {
	defer func() {
		if e := recover(); e != nil {
			h.log.Error("recovered from panic",
				zap.String("event", event),
				zap.Any("panic", e),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	fn()
}

func (h *Hub) enqueueRegister(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) enqueueUnregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) enqueueMessage(c *Client, msg Message) bool {
	select {
	case h.incoming <- clientMessage{client: c, msg: msg}:
		return true
	case <-h.done:
		return false
	}
}
