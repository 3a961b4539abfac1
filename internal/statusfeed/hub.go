package statusfeed

import (
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/huntdb95-cloud/PERSONALAUTO/pkg/logger"
)

type Client struct {
	ID   string
	Send chan []byte
}

// Hub fans status messages out to websocket clients. Clients that cannot
// keep up are dropped.
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	last     []byte
	register chan *Client
	unreg    chan *Client
	sendAll  chan []byte

	log     *logger.Entry
	stop    chan struct{}
	stopped chan struct{}

	nextID atomic.Uint64
}

func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		register: make(chan *Client),
		unreg:    make(chan *Client),
		sendAll:  make(chan []byte, 256),
		log:      logger.With("cmp", "statusfeed.hub"),
		stop:     make(chan struct{}),
		stopped:  make(chan struct{}),
	}
}

func (h *Hub) newID() string {
	return fmt.Sprintf("c%d", h.nextID.Add(1))
}

func (h *Hub) Run() {
	defer close(h.stopped)
	for {
		select {
		case c := <-h.register:
			if c.ID == "" {
				c.ID = h.newID()
			}
			h.mu.Lock()
			h.clients[c.ID] = c
			// new clients start from the current status
			if h.last != nil {
				select {
				case c.Send <- h.last:
				default:
				}
			}
			total := len(h.clients)
			h.mu.Unlock()
			h.log.Debugf("client %s registered (total %d)", c.ID, total)

		case c := <-h.unreg:
			h.mu.Lock()
			if cc, ok := h.clients[c.ID]; ok && cc == c {
				delete(h.clients, c.ID)
				close(c.Send)
			}
			h.mu.Unlock()

		case msg := <-h.sendAll:
			h.mu.Lock()
			h.last = msg
			for id, c := range h.clients {
				select {
				case c.Send <- msg:
				default:
					delete(h.clients, id)
					close(c.Send)
					h.log.Warnf("dropped slow client %s", id)
				}
			}
			h.mu.Unlock()

		case <-h.stop:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.Send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Stop() {
	close(h.stop)
	<-h.stopped
}

func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.stopped:
		close(c.Send)
	}
}

func (h *Hub) Unregister(c *Client) {
	select {
	case h.unreg <- c:
	case <-h.stopped:
	}
}

// Broadcast queues b for every client. It never blocks the caller; when the
// queue is full the message is dropped.
func (h *Hub) Broadcast(b []byte) {
	select {
	case h.sendAll <- b:
	default:
		h.log.Warnf("broadcast queue full, dropping message")
	}
}

// BroadcastJSON marshals v and broadcasts it.
func (h *Hub) BroadcastJSON(v interface{}) {
	b, err := json.Marshal(v)
	if err != nil {
		h.log.Errorf("marshal status: %v", err)
		return
	}
	h.Broadcast(b)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
