package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/outsourceapp/outsource-server/internal/domain"
	domainerrors "github.com/outsourceapp/outsource-server/internal/errors"
)

func TestCreateEvent(t *testing.T) {
	s := newServiceStore(t)
	svc := NewEventService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")

	start := time.Now().Add(24 * time.Hour)
	view, err := svc.CreateEvent(ctx, alice.ID, "Trail day", "Group hike", start, start.Add(3*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Trail day", view.Name)
	assert.Equal(t, domain.EventUpcoming, view.State)

	// The creator is the first owner.
	owners, err := svc.ListOwners(ctx, view.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, alice.ID, owners[0].ID)
}

func TestCreateEventInvalidRange(t *testing.T) {
	s := newServiceStore(t)
	svc := NewEventService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	start := time.Now().Add(24 * time.Hour)

	// End before start.
	_, err := svc.CreateEvent(ctx, alice.ID, "Bad", "", start, start.Add(-time.Hour))
	assert.True(t, errors.Is(err, domainerrors.ErrValidation), "got %v", err)

	// Zero-length events are rejected too.
	_, err = svc.CreateEvent(ctx, alice.ID, "Bad", "", start, start)
	assert.True(t, errors.Is(err, domainerrors.ErrValidation), "got %v", err)
}

func TestEventStatePassed(t *testing.T) {
	s := newServiceStore(t)
	svc := NewEventService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")

	start := time.Now().Add(time.Hour)
	view, err := svc.CreateEvent(ctx, alice.ID, "Soon", "", start, start.Add(time.Hour))
	require.NoError(t, err)

	// Move the clock exactly to the end instant.
	svc.now = func() time.Time { return view.EndAt }

	got, err := svc.GetEvent(ctx, view.ID, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.EventPassed, got.State)
}

func TestGetEventOwnersOnly(t *testing.T) {
	s := newServiceStore(t)
	svc := NewEventService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	start := time.Now().Add(24 * time.Hour)
	view, err := svc.CreateEvent(ctx, alice.ID, "Trail day", "", start, start.Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.GetEvent(ctx, view.ID, bob.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden), "got %v", err)

	_, err = svc.GetEvent(ctx, "evt-ghost", alice.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound), "got %v", err)
}

func TestAddCoOwner(t *testing.T) {
	s := newServiceStore(t)
	svc := NewEventService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")
	carol := seedUser(t, s, "carol")

	start := time.Now().Add(24 * time.Hour)
	view, err := svc.CreateEvent(ctx, alice.ID, "Trail day", "", start, start.Add(time.Hour))
	require.NoError(t, err)

	// Non-owners can't grant ownership.
	err = svc.AddCoOwner(ctx, view.ID, bob.ID, carol.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden), "got %v", err)

	require.NoError(t, svc.AddCoOwner(ctx, view.ID, alice.ID, bob.ID))

	// Co-owners have full owner rights.
	require.NoError(t, svc.AddCoOwner(ctx, view.ID, bob.ID, carol.ID))

	// Duplicates conflict.
	err = svc.AddCoOwner(ctx, view.ID, alice.ID, bob.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrConflict), "got %v", err)

	owners, err := svc.ListOwners(ctx, view.ID, alice.ID)
	require.NoError(t, err)
	require.Len(t, owners, 3)
	assert.Equal(t, alice.ID, owners[0].ID)
}

func TestUpdateEvent(t *testing.T) {
	s := newServiceStore(t)
	svc := NewEventService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	start := time.Now().Add(24 * time.Hour)
	view, err := svc.CreateEvent(ctx, alice.ID, "Trail day", "", start, start.Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.UpdateEvent(ctx, view.ID, bob.ID, "Hijacked", "", start, start.Add(time.Hour))
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden), "got %v", err)

	// Range is revalidated on update.
	_, err = svc.UpdateEvent(ctx, view.ID, alice.ID, "Trail day", "", start, start.Add(-time.Hour))
	assert.True(t, errors.Is(err, domainerrors.ErrValidation), "got %v", err)

	updated, err := svc.UpdateEvent(ctx, view.ID, alice.ID, "Beach day", "Changed plans", start, start.Add(5*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, "Beach day", updated.Name)
	assert.Equal(t, "Changed plans", updated.Description)
}

func TestDeleteEvent(t *testing.T) {
	s := newServiceStore(t)
	svc := NewEventService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	start := time.Now().Add(24 * time.Hour)
	view, err := svc.CreateEvent(ctx, alice.ID, "Trail day", "", start, start.Add(time.Hour))
	require.NoError(t, err)

	err = svc.DeleteEvent(ctx, view.ID, bob.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrForbidden), "got %v", err)

	require.NoError(t, svc.DeleteEvent(ctx, view.ID, alice.ID))

	_, err = svc.GetEvent(ctx, view.ID, alice.ID)
	assert.True(t, errors.Is(err, domainerrors.ErrNotFound), "got %v", err)
}

func TestListEventsForUser(t *testing.T) {
	s := newServiceStore(t)
	svc := NewEventService(s, testLogger())
	ctx := context.Background()

	alice := seedUser(t, s, "alice")
	bob := seedUser(t, s, "bob")

	later := time.Now().Add(48 * time.Hour)
	sooner := time.Now().Add(24 * time.Hour)

	_, err := svc.CreateEvent(ctx, alice.ID, "Later", "", later, later.Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, alice.ID, "Sooner", "", sooner, sooner.Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.CreateEvent(ctx, bob.ID, "Other", "", sooner, sooner.Add(time.Hour))
	require.NoError(t, err)

	events, err := svc.ListEventsForUser(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, events, 2)

	// Soonest first.
	assert.Equal(t, "Sooner", events[0].Name)
	assert.Equal(t, "Later", events[1].Name)
}
