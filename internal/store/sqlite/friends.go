package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/outsourceapp/outsource-server/internal/domain"
	"github.com/outsourceapp/outsource-server/internal/store"
)

// friendRequestColumns is the ordered list of columns selected in friend request queries.
// Must match the scan order in scanFriendRequest.
const friendRequestColumns = `id, created_at, updated_at, from_user_id, to_user_id, status`

// scanFriendRequest scans a sql.Row (or sql.Rows) into a domain.FriendRequest.
func scanFriendRequest(scanner interface{ Scan(dest ...any) error }) (*domain.FriendRequest, error) {
	var r domain.FriendRequest

	var (
		createdAt string
		updatedAt string
		status    string
	)

	err := scanner.Scan(
		&r.ID,
		&createdAt,
		&updatedAt,
		&r.FromUserID,
		&r.ToUserID,
		&status,
	)
	if err != nil {
		return nil, err
	}

	r.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	r.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	r.Status = domain.RequestStatus(status)

	return &r, nil
}

// CreateFriendRequest inserts a new pending friend request.
// Returns store.ErrAlreadyExists if a request for the pair exists in either
// direction; the canonical-pair unique index enforces this under concurrency.
func (s *Store) CreateFriendRequest(ctx context.Context, req *domain.FriendRequest) error {
	userLo, userHi := domain.CanonicalPair(req.FromUserID, req.ToUserID)

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO friend_requests (id, created_at, updated_at, from_user_id, to_user_id, user_lo, user_hi, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID,
		formatTime(req.CreatedAt),
		formatTime(req.UpdatedAt),
		req.FromUserID,
		req.ToUserID,
		userLo,
		userHi,
		string(req.Status),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetFriendRequest retrieves a friend request by ID.
func (s *Store) GetFriendRequest(ctx context.Context, id string) (*domain.FriendRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+friendRequestColumns+` FROM friend_requests WHERE id = ?`, id)

	req, err := scanFriendRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// GetFriendRequestBetween retrieves a request for the ordered (from, to) pair.
func (s *Store) GetFriendRequestBetween(ctx context.Context, fromUserID, toUserID string) (*domain.FriendRequest, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+friendRequestColumns+` FROM friend_requests
		 WHERE from_user_id = ? AND to_user_id = ?`,
		fromUserID, toUserID)

	req, err := scanFriendRequest(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return req, nil
}

// ListFriendRequests returns requests touching userID on the given side,
// optionally filtered by status (empty status means all).
func (s *Store) ListFriendRequests(ctx context.Context, userID string, direction store.RequestDirection, status domain.RequestStatus) ([]*domain.FriendRequest, error) {
	column := "to_user_id"
	if direction == store.DirectionOutgoing {
		column = "from_user_id"
	}

	query := `SELECT ` + friendRequestColumns + ` FROM friend_requests WHERE ` + column + ` = ?`
	args := []any{userID}

	if status != "" {
		query += ` AND status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var requests []*domain.FriendRequest
	for rows.Next() {
		req, err := scanFriendRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return requests, nil
}

// AcceptFriendRequest transitions a pending request to accepted and inserts
// the friendship row in a single transaction. The status update is conditional
// on the current status being pending, so a concurrent accept loses cleanly
// with store.ErrConflict and no second friendship is created. If the
// friendship insert fails, the whole transaction rolls back and the request
// stays pending.
func (s *Store) AcceptFriendRequest(ctx context.Context, requestID string, friendship *domain.Friendship) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE friend_requests
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(domain.RequestAccepted),
		formatTime(friendship.CreatedAt),
		requestID,
		string(domain.RequestPending),
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		// Either the request is gone or it is no longer pending.
		var exists int
		row := tx.QueryRowContext(ctx, `SELECT 1 FROM friend_requests WHERE id = ?`, requestID)
		if err := row.Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO friendships (id, created_at, updated_at, user_a_id, user_b_id)
		VALUES (?, ?, ?, ?, ?)`,
		friendship.ID,
		formatTime(friendship.CreatedAt),
		formatTime(friendship.UpdatedAt),
		friendship.UserAID,
		friendship.UserBID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}

	return tx.Commit()
}

// RejectFriendRequest transitions a pending request to rejected.
// Returns store.ErrConflict if the request is not pending, store.ErrNotFound
// if it does not exist.
func (s *Store) RejectFriendRequest(ctx context.Context, requestID string) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE friend_requests
		SET status = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		string(domain.RequestRejected),
		formatTime(time.Now()),
		requestID,
		string(domain.RequestPending),
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists int
		row := s.db.QueryRowContext(ctx, `SELECT 1 FROM friend_requests WHERE id = ?`, requestID)
		if err := row.Scan(&exists); errors.Is(err, sql.ErrNoRows) {
			return store.ErrNotFound
		}
		return store.ErrConflict
	}
	return nil
}

// DeleteFriendRequest removes a request by ID.
func (s *Store) DeleteFriendRequest(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM friend_requests WHERE id = ?`, id)
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

// FriendshipExists reports whether a friendship row exists for the unordered pair.
func (s *Store) FriendshipExists(ctx context.Context, userID, otherID string) (bool, error) {
	a, b := domain.CanonicalPair(userID, otherID)

	var exists int
	row := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM friendships WHERE user_a_id = ? AND user_b_id = ?`, a, b)
	if err := row.Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ListFriendships returns all friendship rows touching userID.
func (s *Store) ListFriendships(ctx context.Context, userID string) ([]*domain.Friendship, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created_at, updated_at, user_a_id, user_b_id
		FROM friendships
		WHERE user_a_id = ? OR user_b_id = ?
		ORDER BY created_at`,
		userID, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var friendships []*domain.Friendship
	for rows.Next() {
		var f domain.Friendship
		var createdAt, updatedAt string

		if err := rows.Scan(&f.ID, &createdAt, &updatedAt, &f.UserAID, &f.UserBID); err != nil {
			return nil, err
		}
		if f.CreatedAt, err = parseTime(createdAt); err != nil {
			return nil, err
		}
		if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
			return nil, err
		}
		friendships = append(friendships, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return friendships, nil
}

// DeleteFriendship removes the friendship row for the unordered pair.
func (s *Store) DeleteFriendship(ctx context.Context, userID, otherID string) error {
	a, b := domain.CanonicalPair(userID, otherID)

	result, err := s.db.ExecContext(ctx,
		`DELETE FROM friendships WHERE user_a_id = ? AND user_b_id = ?`, a, b)
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
