package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"signal-bot-backend/internal/models"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// SignalFeedHandler streams every issued signal to connected dashboard
// clients. It implements services.SignalSink.
type SignalFeedHandler struct {
	hub *feedHub
}

type feedHub struct {
	clients    map[*websocket.Conn]bool
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	broadcast  chan *feedMessage
}

type feedMessage struct {
	Type   string        `json:"type"`
	UserID int64         `json:"user_id,omitempty"`
	Data   models.Signal `json:"data"`
}

func NewSignalFeedHandler() *SignalFeedHandler {
	hub := &feedHub{
		clients:    make(map[*websocket.Conn]bool),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		broadcast:  make(chan *feedMessage, 100),
	}

	go hub.run()

	return &SignalFeedHandler{hub: hub}
}

func (h *feedHub) run() {
	for {
		select {
		case conn := <-h.register:
			h.clients[conn] = true
		case conn := <-h.unregister:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
		case msg := <-h.broadcast:
			for conn := range h.clients {
				if err := conn.WriteJSON(msg); err != nil {
					delete(h.clients, conn)
					conn.Close()
				}
			}
		}
	}
}

// PublishSignal queues a signal for the feed. Never blocks the caller:
// if the feed buffer is full the event is dropped.
func (h *SignalFeedHandler) PublishSignal(userID int64, sig models.Signal) {
	select {
	case h.hub.broadcast <- &feedMessage{Type: "signal", UserID: userID, Data: sig}:
	default:
	}
}

func (h *SignalFeedHandler) HandleWebSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("Failed to upgrade to WebSocket: %v", err)
		return
	}

	h.hub.register <- conn

	defer func() {
		h.hub.unregister <- conn
	}()

	// Drain reads so we notice a client going away.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WebSocket error: %v", err)
			}
			break
		}
	}
}
