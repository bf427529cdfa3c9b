package app

import (
	"sync"

	"github.com/yourusername/vidgrab/internal/domain"
)

// Message types published by an EventHub
const (
	MessageNotice  = "notice"
	MessageEvent   = "event"
	MessageOutcome = "outcome"
)

const (
	defaultHistoryLimit    = 2000
	defaultSubscriberQueue = 256
)

// HubMessage is one item of a run's stream
type HubMessage struct {
	Type    string             `json:"type"`
	Notice  string             `json:"notice,omitempty"`
	Event   *domain.RunEvent   `json:"event,omitempty"`
	Outcome *domain.RunOutcome `json:"outcome,omitempty"`
}

// EventHub is a sink that keeps the recent history of a run and fans it out
// to live subscribers. The stream ends after the outcome.
type EventHub struct {
	mu           sync.Mutex
	history      []HubMessage
	historyLimit int
	subscribers  map[int]chan HubMessage
	nextID       int
	closed       bool
}

// NewEventHub creates an empty hub
func NewEventHub() *EventHub {
	return &EventHub{
		historyLimit: defaultHistoryLimit,
		subscribers:  make(map[int]chan HubMessage),
	}
}

func (h *EventHub) OnNotice(message string) {
	h.publish(HubMessage{Type: MessageNotice, Notice: message})
}

func (h *EventHub) OnEvent(event domain.RunEvent) {
	h.publish(HubMessage{Type: MessageEvent, Event: &event})
}

func (h *EventHub) OnOutcome(outcome domain.RunOutcome) {
	h.publish(HubMessage{Type: MessageOutcome, Outcome: &outcome})
	h.close()
}

func (h *EventHub) publish(msg HubMessage) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.history = append(h.history, msg)
	if len(h.history) > h.historyLimit {
		h.history = h.history[len(h.history)-h.historyLimit:]
	}

	for id, ch := range h.subscribers {
		select {
		case ch <- msg:
		default:
			// a subscriber that cannot keep up is dropped
			close(ch)
			delete(h.subscribers, id)
		}
	}
}

func (h *EventHub) close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for id, ch := range h.subscribers {
		close(ch)
		delete(h.subscribers, id)
	}
}

// Subscribe returns the history so far and a channel of later messages. The
// channel is closed after the outcome, or when the subscriber falls behind.
// Call unsubscribe when done reading.
func (h *EventHub) Subscribe() (replay []HubMessage, live <-chan HubMessage, unsubscribe func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	replay = make([]HubMessage, len(h.history))
	copy(replay, h.history)

	ch := make(chan HubMessage, defaultSubscriberQueue)
	if h.closed {
		close(ch)
		return replay, ch, func() {}
	}

	id := h.nextID
	h.nextID++
	h.subscribers[id] = ch

	return replay, ch, func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subscribers[id]; ok {
			close(sub)
			delete(h.subscribers, id)
		}
	}
}

// History returns a copy of the retained messages
func (h *EventHub) History() []HubMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HubMessage, len(h.history))
	copy(out, h.history)
	return out
}

// Closed reports whether the outcome has been published
func (h *EventHub) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
