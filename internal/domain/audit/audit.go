package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Event struct {
	ID         string          `json:"id"`
	ActorID    string          `json:"actorId"`
	Action     string          `json:"action"`
	EntityType string          `json:"entityType"`
	EntityID   string          `json:"entityId"`
	RequestID  string          `json:"requestId"`
	IP         string          `json:"ip"`
	CreatedAt  time.Time       `json:"createdAt"`
	Before     json.RawMessage `json:"before,omitempty"`
	After      json.RawMessage `json:"after,omitempty"`
}

type Filter struct {
	Action     string
	EntityType string
	ActorUser  string
}

func (f Filter) matches(evt Event) bool {
	if f.Action != "" && !strings.EqualFold(evt.Action, f.Action) {
		return false
	}
	if f.EntityType != "" && !strings.EqualFold(evt.EntityType, f.EntityType) {
		return false
	}
	if f.ActorUser != "" && evt.ActorID != f.ActorUser {
		return false
	}
	return true
}

// Sink stores events durably. Recent returns up to limit of the newest
// events, oldest first.
type Sink interface {
	Append(ctx context.Context, evt Event) error
	Recent(ctx context.Context, limit int) ([]Event, error)
}

// Service keeps the most recent events in memory, dropping the oldest once
// capacity is reached. With a sink attached every event is also written
// through to it.
type Service struct {
	mu       sync.RWMutex
	events   []Event
	capacity int
	sink     Sink
	now      func() time.Time
}

func New(capacity int) *Service {
	if capacity <= 0 {
		capacity = 1000
	}
	return &Service{capacity: capacity, now: func() time.Time { return time.Now().UTC() }}
}

// Persist loads the newest events from sink into the ring and writes every
// later event through to it.
func (s *Service) Persist(ctx context.Context, sink Sink) error {
	events, err := sink.Recent(ctx, s.capacity)
	if err != nil {
		return fmt.Errorf("load audit events: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(events, s.events...)
	s.trim()
	s.sink = sink
	return nil
}

type Entry struct {
	ActorID    string
	Action     string
	EntityType string
	EntityID   string
	RequestID  string
	IP         string
	Before     any
	After      any
}

// Record appends the event to the ring. A failed write to the sink is
// returned but the event stays queryable in memory.
func (s *Service) Record(ctx context.Context, entry Entry) error {
	evt := Event{
		ID:         uuid.NewString(),
		ActorID:    entry.ActorID,
		Action:     entry.Action,
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
		RequestID:  entry.RequestID,
		IP:         entry.IP,
		CreatedAt:  s.now(),
	}
	if entry.Before != nil {
		payload, err := json.Marshal(entry.Before)
		if err != nil {
			return err
		}
		evt.Before = payload
	}
	if entry.After != nil {
		payload, err := json.Marshal(entry.After)
		if err != nil {
			return err
		}
		evt.After = payload
	}

	s.mu.Lock()
	s.events = append(s.events, evt)
	s.trim()
	sink := s.sink
	s.mu.Unlock()

	if sink != nil {
		if err := sink.Append(ctx, evt); err != nil {
			return fmt.Errorf("persist audit event %s: %w", evt.ID, err)
		}
	}
	return nil
}

func (s *Service) trim() {
	if over := len(s.events) - s.capacity; over > 0 {
		s.events = append([]Event(nil), s.events[over:]...)
	}
}

func (s *Service) Count(_ context.Context, filter Filter) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	total := 0
	for _, evt := range s.events {
		if filter.matches(evt) {
			total++
		}
	}
	return total
}

// List returns matching events newest first.
func (s *Service) List(_ context.Context, filter Filter, includeDetails bool, limit, offset int) []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Event{}
	skipped := 0
	for i := len(s.events) - 1; i >= 0; i-- {
		evt := s.events[i]
		if !filter.matches(evt) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(out) >= limit {
			break
		}
		if !includeDetails {
			evt.Before, evt.After = nil, nil
		}
		out = append(out, evt)
	}
	return out
}

func (s *Service) ListExport(ctx context.Context) []Event {
	return s.List(ctx, Filter{}, false, 0, 0)
}
