// Package events fans processing-progress events out to dashboard clients
// over websockets.
package events

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
)

// Stages published while a submission moves through the pipeline.
const (
	StageReceived  = "received"
	StageUploading = "uploading"
	StageAnalyzing = "analyzing"
	StageDone      = "done"
	StageFailed    = "failed"
)

// Event is one progress update shown on the dashboard.
type Event struct {
	Stage  string    `json:"stage"`
	Detail string    `json:"detail,omitempty"`
	TS     time.Time `json:"ts"`
}

// Hub holds the subscriber set and a bounded backlog of recent events that
// is replayed to newly connected clients.
type Hub struct {
	mu      sync.Mutex
	subs    map[chan Event]struct{}
	backlog []Event
	limit   int
}

// NewHub creates a Hub that retains up to limit recent events.
func NewHub(limit int) *Hub {
	if limit <= 0 {
		limit = 32
	}
	return &Hub{
		subs:  make(map[chan Event]struct{}),
		limit: limit,
	}
}

// Publish records the event and delivers it to every subscriber. Slow
// subscribers have the event dropped rather than blocking the publisher.
func (h *Hub) Publish(stage, detail string) {
	ev := Event{Stage: stage, Detail: detail, TS: time.Now().UTC()}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.backlog = append(h.backlog, ev)
	if len(h.backlog) > h.limit {
		h.backlog = h.backlog[len(h.backlog)-h.limit:]
	}

	for ch := range h.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Subscribe registers a new subscriber. The returned channel is pre-filled
// with the backlog; cancel must be called when the subscriber goes away.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, h.limit*2)
	for _, ev := range h.backlog {
		ch <- ev
	}
	h.subs[ch] = struct{}{}

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// ServeWS pumps hub events to a connected dashboard client until the
// connection drops.
func (h *Hub) ServeWS(ws *websocket.Conn) {
	defer ws.Close()

	ch, cancel := h.Subscribe()
	defer cancel()

	done := make(chan struct{})
	// Drain reads so close frames are noticed.
	go func() {
		defer close(done)
		for {
			if _, _, err := ws.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case ev, ok := <-ch:
			if !ok {
				return
			}
			if err := ws.WriteJSON(ev); err != nil {
				log.Printf("events: write error: %v", err)
				return
			}
		}
	}
}
