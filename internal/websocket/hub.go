package chatws

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"strings"

	"github.com/Vibush01/BeFit/internal/models"
	"github.com/Vibush01/BeFit/internal/observability"
	"github.com/Vibush01/BeFit/internal/services"
	websocket "github.com/gofiber/contrib/websocket"
	"github.com/google/uuid"
)

const (
	TypeJoinGym        = "joinGym"
	TypeSendMessage    = "sendMessage"
	TypeReceiveMessage = "receiveMessage"
	TypeError          = "error"
)

const (
	sendBufferSize      = 32
	broadcastBufferSize = 256
)

// Conn is the part of a websocket connection the pumps use.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type chatService interface {
	AuthorizeGym(ctx context.Context, actorID int64, role string, gymID int64) error
	SendMessage(ctx context.Context, actorID int64, role string, gymID int64, text string) (*models.ChatMessage, error)
}

// Hub owns the gym room registry. Every mutation and every delivery happens on the
// Run goroutine, so messages for a room leave in the order Broadcast was called.
type Hub struct {
	clients    map[*Client]map[int64]struct{}
	rooms      map[int64]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	subscribe  chan subscription
	broadcast  chan roomMessage
	direct     chan directMessage
	done       chan struct{}
}

type subscription struct {
	client *Client
	gymID  int64
}

type roomMessage struct {
	gymID   int64
	payload []byte
}

type directMessage struct {
	client  *Client
	payload []byte
}

type Client struct {
	ID        string
	hub       *Hub
	conn      Conn
	accountID int64
	role      string
	send      chan []byte
}

type OutgoingMessage struct {
	Type    string              `json:"type"`
	Message *models.ChatMessage `json:"message,omitempty"`
	Error   string              `json:"error,omitempty"`
}

type incomingFrame struct {
	Type    string          `json:"type"`
	GymID   json.RawMessage `json:"gym_id"`
	Message string          `json:"message"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]map[int64]struct{}),
		rooms:      make(map[int64]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		subscribe:  make(chan subscription),
		broadcast:  make(chan roomMessage, broadcastBufferSize),
		direct:     make(chan directMessage, broadcastBufferSize),
		done:       make(chan struct{}),
	}
}

func NewClient(hub *Hub, conn Conn, accountID int64, role string) *Client {
	return &Client{
		ID:        uuid.NewString(),
		hub:       hub,
		conn:      conn,
		accountID: accountID,
		role:      role,
		send:      make(chan []byte, sendBufferSize),
	}
}

// Run serves the hub until ctx is cancelled, then closes every client's send
// channel so their write pumps exit.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.remove(client)
			}
			return
		case client := <-h.register:
			if _, ok := h.clients[client]; !ok {
				h.clients[client] = make(map[int64]struct{})
				observability.ChatConnectionOpened()
			}
		case client := <-h.unregister:
			h.remove(client)
		case sub := <-h.subscribe:
			joined, ok := h.clients[sub.client]
			if !ok {
				continue
			}
			joined[sub.gymID] = struct{}{}
			room, ok := h.rooms[sub.gymID]
			if !ok {
				room = make(map[*Client]struct{})
				h.rooms[sub.gymID] = room
			}
			room[sub.client] = struct{}{}
		case message := <-h.broadcast:
			for client := range h.rooms[message.gymID] {
				h.deliver(client, message.payload)
			}
		case message := <-h.direct:
			if _, ok := h.clients[message.client]; ok {
				h.deliver(message.client, message.payload)
			}
		}
	}
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// Subscribe adds the client to the gym's room. The caller is responsible for the
// membership check.
func (h *Hub) Subscribe(client *Client, gymID int64) {
	select {
	case h.subscribe <- subscription{client: client, gymID: gymID}:
	case <-h.done:
	}
}

// Broadcast queues a persisted message for every client in the gym's room.
func (h *Hub) Broadcast(gymID int64, message *models.ChatMessage) {
	payload, err := json.Marshal(OutgoingMessage{Type: TypeReceiveMessage, Message: message})
	if err != nil {
		log.Printf("chat hub encode message: %v", err)
		return
	}

	select {
	case h.broadcast <- roomMessage{gymID: gymID, payload: payload}:
	case <-h.done:
	}
}

func (h *Hub) deliver(client *Client, payload []byte) {
	select {
	case client.send <- payload:
	default:
		log.Printf("chat hub dropping slow client %s", client.ID)
		observability.RecordSlowClientDropped()
		h.remove(client)
	}
}

func (h *Hub) remove(client *Client) {
	joined, ok := h.clients[client]
	if !ok {
		return
	}

	for gymID := range joined {
		room := h.rooms[gymID]
		delete(room, client)
		if len(room) == 0 {
			delete(h.rooms, gymID)
		}
	}
	delete(h.clients, client)
	close(client.send)
	observability.ChatConnectionClosed()
}

func (c *Client) ReadPump(ctx context.Context, service chatService) {
	defer func() {
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var frame incomingFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			c.replyError("invalid message payload")
			continue
		}

		switch frame.Type {
		case TypeJoinGym, TypeSendMessage:
		default:
			c.replyError("unsupported message type")
			continue
		}

		gymID, err := parseGymID(frame.GymID)
		if err != nil {
			c.replyError("invalid gym id")
			continue
		}

		if frame.Type == TypeJoinGym {
			if err := service.AuthorizeGym(ctx, c.accountID, c.role, gymID); err != nil {
				c.replyError(c.errorText(err))
				continue
			}
			c.hub.Subscribe(c, gymID)
			continue
		}

		if _, err := service.SendMessage(ctx, c.accountID, c.role, gymID, frame.Message); err != nil {
			if errors.Is(err, services.ErrEmptyMessage) {
				continue
			}
			c.replyError(c.errorText(err))
		}
	}
}

func (c *Client) WritePump() {
	defer func() {
		_ = c.conn.Close()
	}()

	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}

// replyError routes through the hub so it never races the hub closing send.
func (c *Client) replyError(message string) {
	payload, err := json.Marshal(OutgoingMessage{Type: TypeError, Error: message})
	if err != nil {
		return
	}
	select {
	case c.hub.direct <- directMessage{client: c, payload: payload}:
	case <-c.hub.done:
	}
}

func (c *Client) errorText(err error) string {
	for _, category := range []error{services.ErrForbidden, services.ErrNotFound, services.ErrConflict, services.ErrInvalidInput} {
		if errors.Is(err, category) {
			return services.ErrorMessage(err)
		}
	}
	log.Printf("chat client %s: %v", c.ID, err)
	return "failed to process chat request"
}

// parseGymID accepts the id as a JSON string or number.
func parseGymID(raw json.RawMessage) (int64, error) {
	value := strings.Trim(strings.TrimSpace(string(raw)), `"`)
	gymID, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, err
	}
	if gymID <= 0 {
		return 0, errors.New("gym id must be positive")
	}
	return gymID, nil
}
