package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/outsourceapp/outsource-server/internal/domain"
	"github.com/outsourceapp/outsource-server/internal/store"
)

// eventColumns is the ordered list of columns selected in event queries.
// Must match the scan order in scanEvent.
const eventColumns = `id, created_at, updated_at, name, description, start_at, end_at`

// scanEvent scans a sql.Row (or sql.Rows) into a domain.Event.
func scanEvent(scanner interface{ Scan(dest ...any) error }) (*domain.Event, error) {
	var e domain.Event

	var (
		createdAt string
		updatedAt string
		startAt   string
		endAt     string
	)

	err := scanner.Scan(
		&e.ID,
		&createdAt,
		&updatedAt,
		&e.Name,
		&e.Description,
		&startAt,
		&endAt,
	)
	if err != nil {
		return nil, err
	}

	e.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	e.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	e.StartAt, err = parseTime(startAt)
	if err != nil {
		return nil, err
	}
	e.EndAt, err = parseTime(endAt)
	if err != nil {
		return nil, err
	}

	return &e, nil
}

// CreateEvent inserts an event and the creator's ownership in a transaction,
// so an event never exists without at least one owner.
func (s *Store) CreateEvent(ctx context.Context, event *domain.Event, creatorOwnership *domain.EventOwnership) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO events (id, created_at, updated_at, name, description, start_at, end_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.ID,
		formatTime(event.CreatedAt),
		formatTime(event.UpdatedAt),
		event.Name,
		event.Description,
		formatTime(event.StartAt),
		formatTime(event.EndAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO event_ownerships (id, created_at, updated_at, user_id, event_id)
		VALUES (?, ?, ?, ?, ?)`,
		creatorOwnership.ID,
		formatTime(creatorOwnership.CreatedAt),
		formatTime(creatorOwnership.UpdatedAt),
		creatorOwnership.UserID,
		creatorOwnership.EventID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetEvent retrieves an event by ID.
func (s *Store) GetEvent(ctx context.Context, id string) (*domain.Event, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = ?`, id)

	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return event, nil
}

// UpdateEvent persists changes to an existing event.
func (s *Store) UpdateEvent(ctx context.Context, event *domain.Event) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE events
		SET updated_at = ?, name = ?, description = ?, start_at = ?, end_at = ?
		WHERE id = ?`,
		formatTime(event.UpdatedAt),
		event.Name,
		event.Description,
		formatTime(event.StartAt),
		formatTime(event.EndAt),
		event.ID,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteEvent removes an event. Ownerships cascade via the foreign key.
func (s *Store) DeleteEvent(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM events WHERE id = ?`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

// AddEventOwner inserts an ownership row.
// Returns store.ErrAlreadyExists on a duplicate (user, event) pair.
func (s *Store) AddEventOwner(ctx context.Context, ownership *domain.EventOwnership) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO event_ownerships (id, created_at, updated_at, user_id, event_id)
		VALUES (?, ?, ?, ?, ?)`,
		ownership.ID,
		formatTime(ownership.CreatedAt),
		formatTime(ownership.UpdatedAt),
		ownership.UserID,
		ownership.EventID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// IsEventOwner reports whether the user owns the event.
func (s *Store) IsEventOwner(ctx context.Context, userID, eventID string) (bool, error) {
	var exists int
	row := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM event_ownerships WHERE user_id = ? AND event_id = ?`,
		userID, eventID)
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListEventOwners returns all users owning the event, ordered by when they
// became owners (the creator first).
func (s *Store) ListEventOwners(ctx context.Context, eventID string) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.created_at, u.updated_at, u.username, u.password_hash, u.display_name, u.preferences
		FROM users u
		JOIN event_ownerships o ON o.user_id = u.id
		WHERE o.event_id = ?
		ORDER BY o.created_at`,
		eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListEventsForUser returns all events the user owns, soonest first.
func (s *Store) ListEventsForUser(ctx context.Context, userID string) ([]*domain.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.id, e.created_at, e.updated_at, e.name, e.description, e.start_at, e.end_at
		FROM events e
		JOIN event_ownerships o ON o.event_id = e.id
		WHERE o.user_id = ?
		ORDER BY e.start_at`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*domain.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}
