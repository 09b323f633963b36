package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/outsourceapp/outsource-server/internal/domain"
	"github.com/outsourceapp/outsource-server/internal/store"
)

// circleColumns is the ordered list of columns selected in circle queries.
// Must match the scan order in scanCircle.
const circleColumns = `id, created_at, updated_at, name, is_public, owner_id`

// scanCircle scans a sql.Row (or sql.Rows) into a domain.Circle.
func scanCircle(scanner interface{ Scan(dest ...any) error }) (*domain.Circle, error) {
	var c domain.Circle

	var (
		createdAt string
		updatedAt string
		isPublic  int
	)

	err := scanner.Scan(
		&c.ID,
		&createdAt,
		&updatedAt,
		&c.Name,
		&isPublic,
		&c.OwnerID,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	c.IsPublic = isPublic != 0

	return &c, nil
}

// CreateCircle inserts a circle and the owner's membership in a transaction,
// so a circle never exists without its owner as a member.
func (s *Store) CreateCircle(ctx context.Context, circle *domain.Circle, ownerMembership *domain.CircleMembership) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO circles (id, created_at, updated_at, name, is_public, owner_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		circle.ID,
		formatTime(circle.CreatedAt),
		formatTime(circle.UpdatedAt),
		circle.Name,
		boolToInt(circle.IsPublic),
		circle.OwnerID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO circle_memberships (id, created_at, updated_at, user_id, circle_id)
		VALUES (?, ?, ?, ?, ?)`,
		ownerMembership.ID,
		formatTime(ownerMembership.CreatedAt),
		formatTime(ownerMembership.UpdatedAt),
		ownerMembership.UserID,
		ownerMembership.CircleID,
	)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetCircle retrieves a circle by ID.
func (s *Store) GetCircle(ctx context.Context, id string) (*domain.Circle, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+circleColumns+` FROM circles WHERE id = ?`, id)

	circle, err := scanCircle(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return circle, nil
}

// UpdateCircle persists changes to name and visibility.
func (s *Store) UpdateCircle(ctx context.Context, circle *domain.Circle) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE circles
		SET updated_at = ?, name = ?, is_public = ?
		WHERE id = ?`,
		formatTime(circle.UpdatedAt),
		circle.Name,
		boolToInt(circle.IsPublic),
		circle.ID,
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

// DeleteCircle removes a circle. Memberships cascade via the foreign key.
func (s *Store) DeleteCircle(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM circles WHERE id = ?`, id)
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

// AddCircleMember inserts a membership row.
// Returns store.ErrAlreadyExists on a duplicate (user, circle) pair.
func (s *Store) AddCircleMember(ctx context.Context, membership *domain.CircleMembership) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO circle_memberships (id, created_at, updated_at, user_id, circle_id)
		VALUES (?, ?, ?, ?, ?)`,
		membership.ID,
		formatTime(membership.CreatedAt),
		formatTime(membership.UpdatedAt),
		membership.UserID,
		membership.CircleID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// RemoveCircleMember deletes a membership row.
// Returns store.ErrNotFound if the user is not a member.
func (s *Store) RemoveCircleMember(ctx context.Context, userID, circleID string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM circle_memberships WHERE user_id = ? AND circle_id = ?`,
		userID, circleID)
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

// IsCircleMember reports whether the user holds a membership in the circle.
func (s *Store) IsCircleMember(ctx context.Context, userID, circleID string) (bool, error) {
	var exists int
	row := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM circle_memberships WHERE user_id = ? AND circle_id = ?`,
		userID, circleID)
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListCircleMembers returns all users holding a membership in the circle,
// ordered by join time.
func (s *Store) ListCircleMembers(ctx context.Context, circleID string) ([]*domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.created_at, u.updated_at, u.username, u.password_hash, u.display_name, u.preferences
		FROM users u
		JOIN circle_memberships m ON m.user_id = u.id
		WHERE m.circle_id = ?
		ORDER BY m.created_at`,
		circleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

// ListCirclesForUser returns all circles the user is a member of.
func (s *Store) ListCirclesForUser(ctx context.Context, userID string) ([]*domain.Circle, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.created_at, c.updated_at, c.name, c.is_public, c.owner_id
		FROM circles c
		JOIN circle_memberships m ON m.circle_id = c.id
		WHERE m.user_id = ?
		ORDER BY m.created_at`,
		userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var circles []*domain.Circle
	for rows.Next() {
		circle, err := scanCircle(rows)
		if err != nil {
			return nil, err
		}
		circles = append(circles, circle)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return circles, nil
}
