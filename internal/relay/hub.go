// Package relay re-broadcasts task lifecycle events between browser clients
// that have opened the same project. It is best effort: nothing is stored,
// validated or acknowledged, and a slow client is dropped instead of
// slowing the room down.
package relay

import (
	"encoding/json"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"github.com/taskmanager/taskmanager-api/internal/constants"
)

var (
	eventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relay_events_total",
			Help: "Total number of relay events received, by event name",
		},
		[]string{"event"},
	)

	connections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relay_connections",
			Help: "Current number of open relay connections",
		},
	)
)

// outbound maps each relayed inbound event to the event name room members
// receive.
var outbound = map[string]string{
	constants.EventNewTask:      constants.EventNewTask,
	constants.EventDeleteTask:   constants.EventDeletedTask,
	constants.EventUpdateTask:   constants.EventUpdatedTask,
	constants.EventChangeStatus: constants.EventNewStatus,
}

// Message is a single relay frame.
type Message struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Hub tracks which clients are in which project room.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[*Client]struct{}
	log     *logrus.Entry
}

// NewHub creates an empty Hub.
func NewHub(log *logrus.Entry) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
		log:     log.WithField("component", "relay"),
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	connections.Inc()
}

// unregister removes c from every room and closes its send queue. It is
// safe to call more than once.
func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *Client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)

	for room := range c.rooms {
		members := h.rooms[room]
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
	close(c.send)
	connections.Dec()
}

// Join adds c to room.
func (h *Hub) Join(c *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c]; !ok {
		return
	}

	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
}

// Broadcast queues frame for every member of room except from. Members
// whose queue is full are disconnected.
func (h *Hub) Broadcast(room string, from *Client, frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for member := range h.rooms[room] {
		if member == from {
			continue
		}
		select {
		case member.send <- frame:
		default:
			h.log.WithField("room", room).Warn("dropping slow relay client")
			h.removeLocked(member)
		}
	}
}

// RoomSize reports how many clients are in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		h.removeLocked(c)
	}
}

// dispatch handles one inbound frame from c.
func (h *Hub) dispatch(c *Client, raw []byte) {
	var msg Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		h.log.WithError(err).Debug("ignoring malformed relay frame")
		return
	}

	if msg.Event == constants.EventOpenProject {
		room, ok := roomKey(msg.Data)
		if !ok {
			return
		}
		eventsTotal.WithLabelValues(msg.Event).Inc()
		h.Join(c, room)
		return
	}

	event, ok := outbound[msg.Event]
	if !ok {
		return
	}

	room, ok := projectOf(msg.Data)
	if !ok {
		return
	}
	eventsTotal.WithLabelValues(msg.Event).Inc()

	frame, err := json.Marshal(Message{Event: event, Data: msg.Data})
	if err != nil {
		return
	}
	h.Broadcast(room, c, frame)
}

// projectOf extracts the room of a task payload. The project may be given
// as an id, as an object carrying an id, or as project_id.
func projectOf(data json.RawMessage) (string, bool) {
	var task struct {
		Project   json.RawMessage `json:"project"`
		ProjectID json.RawMessage `json:"project_id"`
	}
	if err := json.Unmarshal(data, &task); err != nil {
		return "", false
	}

	if room, ok := roomKey(task.Project); ok {
		return room, true
	}
	return roomKey(task.ProjectID)
}

// roomKey normalizes a project reference to a room name.
func roomKey(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, s != ""
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}

	var ref struct {
		ID json.RawMessage `json:"id"`
	}
	if err := json.Unmarshal(raw, &ref); err == nil && len(ref.ID) > 0 && ref.ID[0] != '{' {
		return roomKey(ref.ID)
	}

	return "", false
}
