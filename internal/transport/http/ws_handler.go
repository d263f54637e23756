package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"quizrelay/internal/app"
	"quizrelay/internal/domain"
)

// AudienceHub is the prompt transport: participants connect over a websocket,
// dispatched prompts are broadcast to every connection, and answer messages
// are fed into the correlator. The dispatch engine only sees it through the
// app.PromptSender interface.
type AudienceHub struct {
	correlator *app.Correlator
	upgrader   websocket.Upgrader

	mu      sync.RWMutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn        *websocket.Conn
	send        chan outboundMessage
	responderID string
	displayName string
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

type promptPayload struct {
	PromptID string                     `json:"promptId"`
	Text     string                     `json:"text"`
	Options  [domain.OptionCount]string `json:"options"`
}

type answerPayload struct {
	PromptID    string `json:"promptId"`
	ChosenIndex int    `json:"chosenIndex"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func NewAudienceHub(correlator *app.Correlator) *AudienceHub {
	return &AudienceHub{
		correlator: correlator,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[*client]struct{}),
	}
}

// CreatePrompt implements app.PromptSender: it assigns a prompt id and
// broadcasts the question to the audience. The correct index and the
// explanation are withheld from the payload; only the answer key in the
// prompt table knows them. Broadcasting to an empty audience still succeeds,
// like posting to a channel nobody has opened yet.
func (h *AudienceHub) CreatePrompt(ctx context.Context, q domain.Question) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return "", domain.ErrTransport
	}

	promptID := uuid.NewString()
	msg := outboundMessage{Type: "prompt", Payload: promptPayload{
		PromptID: promptID,
		Text:     q.Prompt,
		Options:  q.Options,
	}}
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			// Slow client: drop this prompt for it rather than stall dispatch.
			log.Printf("ws: dropping prompt for slow client %s", c.responderID)
		}
	}
	return promptID, nil
}

// ServeWS upgrades the connection and pumps messages until the client leaves.
func (h *AudienceHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	responderID := r.URL.Query().Get("userId")
	displayName := r.URL.Query().Get("name")
	if responderID == "" || displayName == "" {
		http.Error(w, "missing userId or name", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	c := &client{
		conn:        conn,
		send:        make(chan outboundMessage, 16),
		responderID: responderID,
		displayName: displayName,
	}
	if !h.register(c) {
		_ = conn.WriteJSON(outboundMessage{Type: "error", Payload: errorPayload{Message: "server shutting down"}})
		return
	}

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for msg := range c.send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	c.send <- outboundMessage{Type: "joined", Payload: map[string]string{"userId": responderID}}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				c.send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "invalid answer payload"}}
				continue
			}
			if err := h.correlator.HandleResponse(r.Context(), payload.PromptID, c.responderID, c.displayName, payload.ChosenIndex); err != nil {
				log.Printf("ws: scoring response from %s failed: %v", c.responderID, err)
				c.send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "answer could not be recorded"}}
				continue
			}
			// Acked regardless of whether it scored: unknown or repeat
			// prompts are dropped silently by contract.
			c.send <- outboundMessage{Type: "answerReceived", Payload: map[string]string{"promptId": payload.PromptID}}
		default:
			c.send <- outboundMessage{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
		}
	}

	// Unregister before closing send: broadcasts iterate the client map under
	// the hub lock, so once removed no prompt can land on the closed channel.
	h.unregister(c)
	close(c.send)
	<-writerDone
}

func (h *AudienceHub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	return true
}

func (h *AudienceHub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, c)
}

// Close stops accepting connections and fails subsequent prompt creations.
func (h *AudienceHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
}
