package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// Executor runs fn on the goroutine that owns room state.
type Executor interface {
	Do(ctx context.Context, fn func()) error
}

// RoomService is the slice of the game handler the HTTP boundary needs.
// Its methods must only be called through an Executor.
type RoomService interface {
	CreateRoom() (string, error)
	RoomExists(roomID string) bool
}

type CreateRoomResponse struct {
	RoomID  string `json:"roomId"`
	JoinURL string `json:"joinUrl"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Options struct {
	Exec  Executor
	Rooms RoomService
	// WS serves the event channel on GET /ws.
	WS http.Handler
	// Health serves GET /health.
	Health http.Handler
	// Liveness serves GET /livez.
	Liveness http.Handler
	// PublicURL overrides the scheme and host of join links.
	PublicURL string
	QRSize    int
	Logger    *zap.Logger
}

type handlers struct {
	exec      Executor
	rooms     RoomService
	publicURL string
	qrSize    int
	log       *zap.Logger
}

// NewRouter wires the HTTP surface of the server.
func NewRouter(opts Options) *httprouter.Router {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	h := &handlers{
		exec:      opts.Exec,
		rooms:     opts.Rooms,
		publicURL: strings.TrimRight(opts.PublicURL, "/"),
		qrSize:    opts.QRSize,
		log:       log.Named("api"),
	}
	if h.qrSize <= 0 {
		h.qrSize = 256
	}

	router := httprouter.New()
	router.POST("/api/create-room", h.createRoom)
	router.GET("/api/rooms/:roomId/qr", h.roomQR)
	if opts.WS != nil {
		router.Handler(http.MethodGet, "/ws", opts.WS)
	}
	if opts.Health != nil {
		router.Handler(http.MethodGet, "/health", opts.Health)
	}
	if opts.Liveness != nil {
		router.Handler(http.MethodGet, "/livez", opts.Liveness)
	}
	router.PanicHandler = func(w http.ResponseWriter, r *http.Request, v any) {
		h.log.Error("panic in http handler", zap.String("path", r.URL.Path), zap.Any("panic", v))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
	return router
}

func (h *handlers) createRoom(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var (
		roomID    string
		createErr error
	)
	if err := h.exec.Do(r.Context(), func() {
		roomID, createErr = h.rooms.CreateRoom()
	}); err != nil {
		h.log.Warn("create-room not scheduled", zap.Error(err))
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: "server is shutting down"})
		return
	}
	if createErr != nil {
		h.log.Error("create-room failed", zap.Error(createErr))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "could not create room"})
		return
	}

	writeJSON(w, http.StatusOK, CreateRoomResponse{
		RoomID:  roomID,
		JoinURL: h.joinURL(r, roomID),
	})
}

func (h *handlers) roomQR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	roomID := ps.ByName("roomId")

	var exists bool
	if err := h.exec.Do(r.Context(), func() { exists = h.rooms.RoomExists(roomID) }); err != nil {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}
	if !exists {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}

	png, err := qrcode.Encode(h.joinURL(r, roomID), qrcode.Medium, h.qrSize)
	if err != nil {
		h.log.Error("qr generation failed", zap.String("roomId", roomID), zap.Error(err))
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}

// joinURL respects TLS and X-Forwarded-Proto unless a public URL is configured.
func (h *handlers) joinURL(r *http.Request, roomID string) string {
	if h.publicURL != "" {
		return h.publicURL + "/r/" + roomID
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	return scheme + "://" + r.Host + "/r/" + roomID
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
