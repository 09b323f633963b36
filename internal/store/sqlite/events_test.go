package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/outsourceapp/outsource-server/internal/domain"
	"github.com/outsourceapp/outsource-server/internal/store"
)

func makeEvent(id string, start, end time.Time) *domain.Event {
	now := time.Now()
	return &domain.Event{
		Timestamps: domain.Timestamps{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Name:        "event " + id,
		Description: "a test event",
		StartAt:     start,
		EndAt:       end,
	}
}

func makeOwnership(id, userID, eventID string) *domain.EventOwnership {
	now := time.Now()
	return &domain.EventOwnership{
		Timestamps: domain.Timestamps{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		UserID:  userID,
		EventID: eventID,
	}
}

func mustCreateEvent(t *testing.T, s *Store, id, creatorID string) *domain.Event {
	t.Helper()
	start := time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second)
	event := makeEvent(id, start, start.Add(2*time.Hour))
	ownership := makeOwnership("eown-"+id, creatorID, id)
	if err := s.CreateEvent(context.Background(), event, ownership); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	return event
}

func TestCreateEventAddsCreatorOwnership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	event := mustCreateEvent(t, s, "evt-1", "user-1")

	got, err := s.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Name != event.Name || got.Description != event.Description {
		t.Errorf("GetEvent: got %+v", got)
	}
	if !got.StartAt.Equal(event.StartAt) || !got.EndAt.Equal(event.EndAt) {
		t.Errorf("time range: got [%v, %v], want [%v, %v]",
			got.StartAt, got.EndAt, event.StartAt, event.EndAt)
	}

	isOwner, err := s.IsEventOwner(ctx, "user-1", event.ID)
	if err != nil {
		t.Fatalf("IsEventOwner: %v", err)
	}
	if !isOwner {
		t.Error("creator should own the event after creation")
	}
}

func TestGetEventNotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.GetEvent(context.Background(), "evt-missing"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateEvent(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	event := mustCreateEvent(t, s, "evt-1", "user-1")

	event.Name = "renamed"
	event.EndAt = event.EndAt.Add(time.Hour)
	event.Touch()
	if err := s.UpdateEvent(ctx, event); err != nil {
		t.Fatalf("UpdateEvent: %v", err)
	}

	got, err := s.GetEvent(ctx, event.ID)
	if err != nil {
		t.Fatalf("GetEvent: %v", err)
	}
	if got.Name != "renamed" || !got.EndAt.Equal(event.EndAt) {
		t.Errorf("update not applied: %+v", got)
	}

	start := time.Now()
	missing := makeEvent("evt-missing", start, start.Add(time.Hour))
	if err := s.UpdateEvent(ctx, missing); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAddEventOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	mustCreateUser(t, s, "user-2", "bob")
	event := mustCreateEvent(t, s, "evt-1", "user-1")

	if err := s.AddEventOwner(ctx, makeOwnership("eown-1", "user-2", event.ID)); err != nil {
		t.Fatalf("AddEventOwner: %v", err)
	}

	isOwner, err := s.IsEventOwner(ctx, "user-2", event.ID)
	if err != nil {
		t.Fatalf("IsEventOwner: %v", err)
	}
	if !isOwner {
		t.Error("co-owner should own the event")
	}

	// Adding the same owner twice violates ownership uniqueness.
	err = s.AddEventOwner(ctx, makeOwnership("eown-2", "user-2", event.ID))
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestListEventOwners(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	mustCreateUser(t, s, "user-2", "bob")
	event := mustCreateEvent(t, s, "evt-1", "user-1")

	if err := s.AddEventOwner(ctx, makeOwnership("eown-1", "user-2", event.ID)); err != nil {
		t.Fatalf("AddEventOwner: %v", err)
	}

	owners, err := s.ListEventOwners(ctx, event.ID)
	if err != nil {
		t.Fatalf("ListEventOwners: %v", err)
	}
	if len(owners) != 2 {
		t.Fatalf("owners: got %d, want 2", len(owners))
	}
	// Creator first.
	if owners[0].ID != "user-1" {
		t.Errorf("first owner: got %q, want user-1", owners[0].ID)
	}
}

func TestListEventsForUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	mustCreateUser(t, s, "user-2", "bob")

	mustCreateEvent(t, s, "evt-1", "user-1")
	event2 := mustCreateEvent(t, s, "evt-2", "user-2")

	if err := s.AddEventOwner(ctx, makeOwnership("eown-x", "user-1", event2.ID)); err != nil {
		t.Fatalf("AddEventOwner: %v", err)
	}

	events, err := s.ListEventsForUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("ListEventsForUser: %v", err)
	}
	if len(events) != 2 {
		t.Errorf("events: got %d, want 2", len(events))
	}

	events, err = s.ListEventsForUser(ctx, "user-2")
	if err != nil {
		t.Fatalf("ListEventsForUser: %v", err)
	}
	if len(events) != 1 || events[0].ID != "evt-2" {
		t.Errorf("events for user-2: got %v", events)
	}
}

func TestDeleteEventCascadesOwnerships(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "alice")
	mustCreateUser(t, s, "user-2", "bob")
	event := mustCreateEvent(t, s, "evt-1", "user-1")

	if err := s.AddEventOwner(ctx, makeOwnership("eown-1", "user-2", event.ID)); err != nil {
		t.Fatalf("AddEventOwner: %v", err)
	}

	if err := s.DeleteEvent(ctx, event.ID); err != nil {
		t.Fatalf("DeleteEvent: %v", err)
	}

	if _, err := s.GetEvent(ctx, event.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}

	isOwner, err := s.IsEventOwner(ctx, "user-2", event.ID)
	if err != nil {
		t.Fatalf("IsEventOwner: %v", err)
	}
	if isOwner {
		t.Error("ownerships should cascade on event delete")
	}

	if err := s.DeleteEvent(ctx, event.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound on double delete, got %v", err)
	}
}
