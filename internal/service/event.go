package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/outsourceapp/outsource-server/internal/domain"
	domainerrors "github.com/outsourceapp/outsource-server/internal/errors"
	"github.com/outsourceapp/outsource-server/internal/id"
	"github.com/outsourceapp/outsource-server/internal/store"
)

// EventService manages events and their co-owners.
type EventService struct {
	store  store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewEventService creates a new event service.
func NewEventService(s store.Store, logger *slog.Logger) *EventService {
	return &EventService{
		store:  s,
		logger: logger,
		now:    time.Now,
	}
}

// EventView is an event together with its derived lifecycle state.
type EventView struct {
	*domain.Event
	State domain.EventState `json:"state"`
}

// CreateEvent creates an event with the creator as its first owner, written
// in one storage transaction.
func (s *EventService) CreateEvent(ctx context.Context, creatorID, name, description string, startAt, endAt time.Time) (*EventView, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.Validation("event name is required")
	}

	eventID, err := id.Generate(id.PrefixEvent)
	if err != nil {
		return nil, fmt.Errorf("generate event ID: %w", err)
	}

	event := &domain.Event{
		Timestamps: domain.Timestamps{
			ID: eventID,
		},
		Name:        name,
		Description: strings.TrimSpace(description),
		StartAt:     startAt.UTC(),
		EndAt:       endAt.UTC(),
	}
	event.InitTimestamps()

	if !event.ValidRange() {
		return nil, domainerrors.Validation("event end must be after start")
	}

	ownership, err := newOwnership(creatorID, eventID)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateEvent(ctx, event, ownership); err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}

	s.logger.Info("event created",
		"event_id", eventID,
		"creator_id", creatorID,
		"start_at", event.StartAt,
	)

	return s.view(event), nil
}

// GetEvent returns an event. Owners only.
func (s *EventService) GetEvent(ctx context.Context, eventID, requesterID string) (*EventView, error) {
	event, err := s.getOwnedEvent(ctx, eventID, requesterID)
	if err != nil {
		return nil, err
	}
	return s.view(event), nil
}

// ListEventsForUser returns every event the user owns, soonest first.
func (s *EventService) ListEventsForUser(ctx context.Context, userID string) ([]*EventView, error) {
	events, err := s.store.ListEventsForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	views := make([]*EventView, 0, len(events))
	for _, e := range events {
		views = append(views, s.view(e))
	}
	return views, nil
}

// UpdateEvent changes an event's details. Owners only; the time range is
// revalidated.
func (s *EventService) UpdateEvent(ctx context.Context, eventID, requesterID, name, description string, startAt, endAt time.Time) (*EventView, error) {
	event, err := s.getOwnedEvent(ctx, eventID, requesterID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domainerrors.Validation("event name is required")
	}

	event.Name = name
	event.Description = strings.TrimSpace(description)
	event.StartAt = startAt.UTC()
	event.EndAt = endAt.UTC()

	if !event.ValidRange() {
		return nil, domainerrors.Validation("event end must be after start")
	}

	event.Touch()

	if err := s.store.UpdateEvent(ctx, event); err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}

	s.logger.Info("event updated", "event_id", eventID)

	return s.view(event), nil
}

// DeleteEvent deletes an event and its ownerships. Owners only.
func (s *EventService) DeleteEvent(ctx context.Context, eventID, requesterID string) error {
	if _, err := s.getOwnedEvent(ctx, eventID, requesterID); err != nil {
		return err
	}

	if err := s.store.DeleteEvent(ctx, eventID); err != nil {
		return fmt.Errorf("delete event: %w", err)
	}

	s.logger.Info("event deleted", "event_id", eventID)

	return nil
}

// AddCoOwner grants another user ownership of an event. Owners only.
func (s *EventService) AddCoOwner(ctx context.Context, eventID, requesterID, targetID string) error {
	if _, err := s.getOwnedEvent(ctx, eventID, requesterID); err != nil {
		return err
	}

	if _, err := s.store.GetUser(ctx, targetID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domainerrors.NotFound("user not found")
		}
		return fmt.Errorf("get user: %w", err)
	}

	ownership, err := newOwnership(targetID, eventID)
	if err != nil {
		return err
	}

	if err := s.store.AddEventOwner(ctx, ownership); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domainerrors.Conflict("already an owner")
		}
		return fmt.Errorf("add event owner: %w", err)
	}

	s.logger.Info("event co-owner added",
		"event_id", eventID,
		"user_id", targetID,
		"added_by", requesterID,
	)

	return nil
}

// ListOwners returns the public profiles of an event's owners, creator first.
func (s *EventService) ListOwners(ctx context.Context, eventID, requesterID string) ([]domain.PublicUser, error) {
	if _, err := s.getOwnedEvent(ctx, eventID, requesterID); err != nil {
		return nil, err
	}

	owners, err := s.store.ListEventOwners(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("list event owners: %w", err)
	}

	results := make([]domain.PublicUser, 0, len(owners))
	for _, o := range owners {
		results = append(results, o.Public())
	}
	return results, nil
}

// getOwnedEvent loads an event and verifies the requester owns it.
func (s *EventService) getOwnedEvent(ctx context.Context, eventID, requesterID string) (*domain.Event, error) {
	event, err := s.store.GetEvent(ctx, eventID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("event not found")
		}
		return nil, fmt.Errorf("get event: %w", err)
	}

	isOwner, err := s.store.IsEventOwner(ctx, requesterID, eventID)
	if err != nil {
		return nil, fmt.Errorf("check ownership: %w", err)
	}
	if !isOwner {
		return nil, domainerrors.Forbidden("not an owner of this event")
	}

	return event, nil
}

func (s *EventService) view(event *domain.Event) *EventView {
	return &EventView{
		Event: event,
		State: event.State(s.now()),
	}
}

func newOwnership(userID, eventID string) (*domain.EventOwnership, error) {
	ownershipID, err := id.Generate(id.PrefixOwnership)
	if err != nil {
		return nil, fmt.Errorf("generate ownership ID: %w", err)
	}

	o := &domain.EventOwnership{
		Timestamps: domain.Timestamps{
			ID: ownershipID,
		},
		UserID:  userID,
		EventID: eventID,
	}
	o.InitTimestamps()
	return o, nil
}
