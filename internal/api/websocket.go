package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/talentlens/console/internal/models"
	"github.com/talentlens/console/internal/upload"
	"go.uber.org/zap"
)

// WebSocket message types for workspace events
const (
	// Client -> Server messages
	MsgTypePing = "ping"

	// Server -> Client messages
	MsgTypeConnected = "connected"
	MsgTypeState     = "state"
	MsgTypeResults   = "results"
	MsgTypeError     = "error"
	MsgTypePong      = "pong"
)

const (
	writeWait  = 10 * time.Second
	sendBuffer = 16
)

var _ WebSocketHandler = (*Hub)(nil)

// WSMessage is the envelope of every websocket frame
type WSMessage struct {
	Type      string          `json:"type"`
	ID        string          `json:"id,omitempty"` // workspace ID
	Payload   json.RawMessage `json:"payload,omitempty"`
	Timestamp int64           `json:"timestamp"`
}

// WSResultsPayload tells the shell to re-fetch the ranked resume list
type WSResultsPayload struct {
	Count   int             `json:"count"`
	Results []models.Resume `json:"results"`
}

// WSErrorResponse is sent when a client message cannot be handled
type WSErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type wsClient struct {
	conn *websocket.Conn
	send chan WSMessage
}

// Hub fans workspace events out to the websockets watching each workspace
type Hub struct {
	workspaces WorkspaceManager
	upgrader   websocket.Upgrader
	log        *zap.Logger

	mu      sync.RWMutex
	clients map[string]map[*wsClient]struct{}

	// stateMu orders state events; it is taken before mu
	stateMu  sync.Mutex
	versions map[string]uint64
}

// NewHub creates a websocket hub for the given workspaces
func NewHub(workspaces WorkspaceManager, log *zap.Logger) *Hub {
	if log == nil {
		log = zap.NewNop()
	}
	return &Hub{
		workspaces: workspaces,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// Allow connections from dev server
				return true
			},
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 64 * 1024,
		},
		log:      log.Named("websocket"),
		clients:  make(map[string]map[*wsClient]struct{}),
		versions: make(map[string]uint64),
	}
}

// HandleWebSocket upgrades the connection and streams events of one workspace
func (h *Hub) HandleWebSocket(c echo.Context) error {
	id := c.Param("id")
	wf, err := h.workspaces.Get(id)
	if err != nil {
		if errors.Is(err, upload.ErrWorkspaceNotFound) {
			return NewNotFoundError("workspace", id)
		}
		return NewInternalError("failed to load workspace", err)
	}

	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &wsClient{conn: ws, send: make(chan WSMessage, sendBuffer)}
	h.register(id, client)
	h.log.Debug("client connected", zap.String("workspace", id))

	go h.writeLoop(client)

	h.reply(id, client, newMessage(MsgTypeConnected, id, nil))
	h.reply(id, client, newMessage(MsgTypeState, id, wf.Snapshot()))

	// Main message loop
	for {
		var msg WSMessage
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Debug("connection error", zap.String("workspace", id), zap.Error(err))
			}
			break
		}

		switch msg.Type {
		case MsgTypePing:
			h.reply(id, client, newMessage(MsgTypePong, id, nil))
		default:
			h.reply(id, client, newMessage(MsgTypeError, id, WSErrorResponse{
				Message: "Unknown message type: " + msg.Type,
				Code:    "INVALID_TYPE",
			}))
		}
	}

	h.unregister(id, client)
	h.log.Debug("client disconnected", zap.String("workspace", id))
	return nil
}

// PublishState sends a workspace snapshot to its watchers. A snapshot older
// than one already sent is dropped.
func (h *Hub) PublishState(snap upload.Snapshot) {
	h.stateMu.Lock()
	defer h.stateMu.Unlock()

	if last, ok := h.versions[snap.ID]; ok && snap.Version <= last {
		return
	}
	if h.Clients(snap.ID) == 0 {
		delete(h.versions, snap.ID)
		return
	}
	h.versions[snap.ID] = snap.Version
	h.publish(snap.ID, newMessage(MsgTypeState, snap.ID, snap))
}

// PublishResults signals that a workspace operation produced new results
func (h *Hub) PublishResults(workspaceID string, results []models.Resume) {
	h.publish(workspaceID, newMessage(MsgTypeResults, workspaceID, WSResultsPayload{
		Count:   len(results),
		Results: results,
	}))
}

// Clients returns the number of connections watching a workspace
func (h *Hub) Clients(workspaceID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[workspaceID])
}

func (h *Hub) publish(workspaceID string, msg WSMessage) {
	var slow []*wsClient
	h.mu.RLock()
	for client := range h.clients[workspaceID] {
		if !deliver(client, msg) {
			slow = append(slow, client)
		}
	}
	h.mu.RUnlock()

	h.disconnect(workspaceID, slow, msg.Type)
}

// reply sends to one client if it is still registered.
func (h *Hub) reply(workspaceID string, client *wsClient, msg WSMessage) {
	h.mu.RLock()
	_, ok := h.clients[workspaceID][client]
	delivered := !ok || deliver(client, msg)
	h.mu.RUnlock()

	if !delivered {
		h.disconnect(workspaceID, []*wsClient{client}, msg.Type)
	}
}

// disconnect drops clients that cannot keep up. Their connection is closed
// once the buffered messages are written, so the shell reconnects and starts
// again from a fresh state.
func (h *Hub) disconnect(workspaceID string, clients []*wsClient, msgType string) {
	for _, client := range clients {
		h.log.Warn("disconnecting slow client", zap.String("workspace", workspaceID), zap.String("type", msgType))
		h.unregister(workspaceID, client)
	}
}

// deliver never blocks. Callers hold h.mu so the channel cannot be closed underneath.
func deliver(client *wsClient, msg WSMessage) bool {
	select {
	case client.send <- msg:
		return true
	default:
		return false
	}
}

func (h *Hub) register(id string, client *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[id] == nil {
		h.clients[id] = make(map[*wsClient]struct{})
	}
	h.clients[id][client] = struct{}{}
}

func (h *Hub) unregister(id string, client *wsClient) {
	h.mu.Lock()
	if set, ok := h.clients[id]; ok {
		if _, ok := set[client]; ok {
			delete(set, client)
			close(client.send)
		}
		if len(set) == 0 {
			delete(h.clients, id)
		}
	}
	h.mu.Unlock()
}

func (h *Hub) writeLoop(client *wsClient) {
	defer client.conn.Close()
	for msg := range client.send {
		client.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := client.conn.WriteJSON(msg); err != nil {
			h.log.Debug("failed to send message", zap.Error(err))
			return
		}
	}
	client.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

func newMessage(msgType, workspaceID string, payload interface{}) WSMessage {
	msg := WSMessage{
		Type:      msgType,
		ID:        workspaceID,
		Timestamp: time.Now().UnixMilli(),
	}
	if payload != nil {
		msg.Payload = mustJSON(payload)
	}
	return msg
}

func mustJSON(v interface{}) json.RawMessage {
	data, err := json.Marshal(v)
	if err != nil {
		return []byte("{}")
	}
	return data
}
