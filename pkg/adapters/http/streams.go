package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/inferschema"
)

// ChangeMessage is the data of one server-sent event.
type ChangeMessage struct {
	Record string `json:"record"`
	Kind   string `json:"kind"`
}

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // record ("" for all) -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

// Hooks forwards catalog changes to subscribers.
func (sm *StreamManager) Hooks() inferschema.Hooks {
	return inferschema.Hooks{
		OnChange: func(_ context.Context, e *inferschema.ChangeEvent) {
			bytes, err := json.Marshal(ChangeMessage{Record: e.Record, Kind: string(e.Kind)})
			if err != nil {
				return
			}
			sm.Broadcast(e.Record, string(bytes))
		},
	}
}

// Subscribe registers a channel for changes to record, or to every record
// when record is empty. The returned func unsubscribes and closes the channel.
func (sm *StreamManager) Subscribe(record string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[record]; !ok {
		sm.subscribers[record] = make(map[chan<- string]struct{})
	}
	sm.subscribers[record][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[record]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, record)
			}
		}
	}
}

// Broadcast sends msg to subscribers of record and to subscribers of all records.
func (sm *StreamManager) Broadcast(record string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	slog.Debug("StreamManager: Broadcasting", "record", record, "payload_size", len(msg))

	for _, key := range []string{record, ""} {
		for ch := range sm.subscribers[key] {
			select {
			case ch <- msg:
			default:
				// Drop message if channel is full (slow client)
				slog.Warn("SSE: Client buffer full, dropping message", "record", record)
			}
		}
		if record == "" {
			break
		}
	}
}

// SubscribeEvents handles the GET /events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request, params SubscribeEventsParams) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	record := ""
	if params.Record != nil {
		record = *params.Record
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(record)
	defer cancel()
	s.Logger.Info("SSE: Subscribing to record changes", "record", record)

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected")
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
