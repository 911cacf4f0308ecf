package audit

import (
	"context"
	"errors"
	"testing"
)

func TestRecordAndListNewestFirst(t *testing.T) {
	svc := New(10)
	ctx := context.Background()
	for _, action := range []string{"user.create", "user.update", "role.delete"} {
		if err := svc.Record(ctx, Entry{ActorID: "user-1", Action: action, EntityType: "user", After: map[string]string{"a": action}}); err != nil {
			t.Fatalf("record: %v", err)
		}
	}

	events := svc.List(ctx, Filter{}, true, 10, 0)
	if len(events) != 3 || events[0].Action != "role.delete" {
		t.Fatalf("expected newest first, got %+v", events)
	}
	if len(events[0].After) == 0 {
		t.Fatal("expected details when requested")
	}

	plain := svc.List(ctx, Filter{}, false, 10, 0)
	if plain[0].After != nil {
		t.Fatal("expected details stripped")
	}
}

func TestFilterAndPaging(t *testing.T) {
	svc := New(10)
	ctx := context.Background()
	_ = svc.Record(ctx, Entry{ActorID: "a", Action: "user.create", EntityType: "user"})
	_ = svc.Record(ctx, Entry{ActorID: "b", Action: "role.create", EntityType: "role"})
	_ = svc.Record(ctx, Entry{ActorID: "a", Action: "user.delete", EntityType: "user"})

	if got := svc.Count(ctx, Filter{EntityType: "user"}); got != 2 {
		t.Fatalf("expected 2 user events, got %d", got)
	}
	if got := svc.Count(ctx, Filter{ActorUser: "b"}); got != 1 {
		t.Fatalf("expected 1 event for actor b, got %d", got)
	}

	page := svc.List(ctx, Filter{EntityType: "user"}, false, 1, 1)
	if len(page) != 1 || page[0].Action != "user.create" {
		t.Fatalf("unexpected page %+v", page)
	}
}

func TestCapacityDropsOldest(t *testing.T) {
	svc := New(2)
	ctx := context.Background()
	_ = svc.Record(ctx, Entry{Action: "one"})
	_ = svc.Record(ctx, Entry{Action: "two"})
	_ = svc.Record(ctx, Entry{Action: "three"})

	events := svc.ListExport(ctx)
	if len(events) != 2 || events[0].Action != "three" || events[1].Action != "two" {
		t.Fatalf("expected oldest dropped, got %+v", events)
	}
}

type memorySink struct {
	events []Event
	err    error
}

func (m *memorySink) Append(_ context.Context, evt Event) error {
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, evt)
	return nil
}

func (m *memorySink) Recent(_ context.Context, limit int) ([]Event, error) {
	if over := len(m.events) - limit; over > 0 {
		return append([]Event(nil), m.events[over:]...), nil
	}
	return append([]Event(nil), m.events...), nil
}

func TestPersistReloadsAndWritesThrough(t *testing.T) {
	ctx := context.Background()
	sink := &memorySink{events: []Event{
		{ID: "e1", Action: "user.create", EntityType: "user"},
		{ID: "e2", Action: "user.update", EntityType: "user"},
		{ID: "e3", Action: "role.delete", EntityType: "role"},
	}}

	svc := New(2)
	if err := svc.Persist(ctx, sink); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if got := svc.Count(ctx, Filter{}); got != 2 {
		t.Fatalf("expected the newest 2 events loaded, got %d", got)
	}

	if err := svc.Record(ctx, Entry{ActorID: "user-1", Action: "user.delete", EntityType: "user"}); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(sink.events) != 4 || sink.events[3].Action != "user.delete" {
		t.Fatalf("expected event written through, sink has %d", len(sink.events))
	}
	events := svc.List(ctx, Filter{}, false, 10, 0)
	if len(events) != 2 || events[0].Action != "user.delete" || events[1].ID != "e3" {
		t.Fatalf("unexpected ring contents %+v", events)
	}
}

func TestRecordKeepsEventWhenSinkFails(t *testing.T) {
	ctx := context.Background()
	svc := New(5)
	if err := svc.Persist(ctx, &memorySink{err: errors.New("db down")}); err != nil {
		t.Fatalf("persist: %v", err)
	}
	if err := svc.Record(ctx, Entry{Action: "user.create", EntityType: "user"}); err == nil {
		t.Fatal("expected sink failure to be reported")
	}
	if svc.Count(ctx, Filter{}) != 1 {
		t.Fatal("expected event kept in memory")
	}
}
