package mapview

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"maps-directions/entities"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Update is one message pushed to connected map clients.
type Update struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// Snapshotter provides the full map state sent to newly connected clients.
type Snapshotter interface {
	Snapshot() MapState
}

// Hub is a map surface that forwards every drawing call to the connected
// WebSocket clients.
type Hub struct {
	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	done       chan struct{}
	source     Snapshotter
	style      Style
	logger     *zap.Logger

	mu          sync.Mutex
	region      Region
	annotations []entities.Annotation
}

func NewHub(source Snapshotter, style Style, region Region, logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, 256),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
		source:     source,
		style:      style,
		region:     region,
		logger:     logger,
	}
}

// Run serves registrations and broadcasts until ctx is done.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				c.conn.Close()
				delete(h.clients, c)
			}
			return

		case c := <-h.register:
			if err := h.sendInit(c); err != nil {
				h.logger.Warn("failed to send initial map state", zap.Error(err))
				c.conn.Close()
				continue
			}
			h.clients[c] = true
			h.logger.Info("map client connected", zap.Int("clients", len(h.clients)))

		case c := <-h.unregister:
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.conn.Close()
			}
			h.logger.Info("map client disconnected", zap.Int("clients", len(h.clients)))

		case message := <-h.broadcast:
			for c := range h.clients {
				if err := c.write(message); err != nil {
					c.conn.Close()
					delete(h.clients, c)
				}
			}
		}
	}
}

// sendInit writes the current snapshot. It runs on the Run goroutine so that
// every broadcast a client sees comes after its init.
func (h *Hub) sendInit(c *client) error {
	if h.source == nil {
		return nil
	}
	msg, err := json.Marshal(Update{Type: "init", Data: h.source.Snapshot()})
	if err != nil {
		return err
	}
	return c.write(msg)
}

// BroadcastUpdate queues an update for every client. Updates are dropped
// when the queue is full so that drawing never blocks the caller.
func (h *Hub) BroadcastUpdate(updateType string, data interface{}) {
	payload, err := json.Marshal(Update{Type: updateType, Data: data})
	if err != nil {
		h.logger.Error("failed to marshal map update", zap.Error(err))
		return
	}
	select {
	case h.broadcast <- payload:
	default:
		h.logger.Warn("map update queue full, dropping update", zap.String("type", updateType))
	}
}

func (h *Hub) AddAnnotation(a entities.Annotation) {
	h.mu.Lock()
	h.annotations = append(h.annotations, a)
	h.mu.Unlock()
	h.BroadcastUpdate("annotation_added", a)
}

func (h *Hub) RemoveAllAnnotations() {
	h.mu.Lock()
	h.annotations = nil
	h.mu.Unlock()
	h.BroadcastUpdate("annotations_cleared", nil)
}

type overlayData struct {
	Path  []entities.Coordinates `json:"path"`
	Style Style                  `json:"style"`
}

func (h *Hub) SetOverlay(path []entities.Coordinates) {
	h.BroadcastUpdate("overlay_set", overlayData{Path: path, Style: h.style})
}

func (h *Hub) ClearOverlay() {
	h.BroadcastUpdate("overlay_cleared", nil)
}

func (h *Hub) FitToAnnotations() {
	h.mu.Lock()
	viewport := Fit(h.annotations, h.region)
	h.mu.Unlock()
	h.BroadcastUpdate("viewport", viewport)
}

func (h *Hub) ShowLoading(label string) {
	h.BroadcastUpdate("loading", map[string]interface{}{"visible": true, "label": label})
}

func (h *Hub) HideLoading() {
	h.BroadcastUpdate("loading", map[string]interface{}{"visible": false})
}

type stepsData struct {
	RouteID int             `json:"route_id,omitempty"`
	Steps   []entities.Step `json:"steps"`
}

func (h *Hub) ShowSteps(route *entities.Route, steps []entities.Step) {
	data := stepsData{Steps: steps}
	if route != nil {
		data.RouteID = route.ID
	}
	h.BroadcastUpdate("steps", data)
}

// ServeHTTP upgrades the connection and sends the current map state.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	// drain reads so that close frames are noticed
	go func() {
		defer func() {
			select {
			case h.unregister <- c:
			case <-h.done:
			}
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
