package network

// Conn is one connected participant as seen by the game logic.
type Conn interface {
	// ID is opaque, transport-assigned and stable for the life of the connection.
	ID() string
	RemoteAddr() string
	// Deliver queues msg without blocking and reports whether it was accepted.
	Deliver(msg Message) bool
}

// EventHandler receives connection events from the hub.
// Every method is invoked from the hub goroutine, one call at a time.
type EventHandler interface {
	OnConnect(c Conn)
	OnDisconnect(c Conn)
	OnMessage(c Conn, msg Message)
}
