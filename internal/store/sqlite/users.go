package sqlite

import (
	"context"
	"database/sql"
	"encoding/json/v2"
	"errors"
	"strings"

	"github.com/outsourceapp/outsource-server/internal/domain"
	"github.com/outsourceapp/outsource-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, username, password_hash, display_name, preferences`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var u domain.User

	var (
		createdAt   string
		updatedAt   string
		preferences string
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Username,
		&u.PasswordHash,
		&u.DisplayName,
		&preferences,
	)
	if err != nil {
		return nil, err
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	// Preferences are stored as a JSON array to preserve ordering.
	if err := json.Unmarshal([]byte(preferences), &u.Preferences); err != nil {
		return nil, err
	}

	return &u, nil
}

// marshalPreferences encodes the preference tags for storage.
// An empty or nil slice round-trips as "[]".
func marshalPreferences(prefs []string) (string, error) {
	if prefs == nil {
		prefs = []string{}
	}
	data, err := json.Marshal(prefs)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CreateUser inserts a new user.
// Returns store.ErrAlreadyExists if the ID or username is already taken.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	prefs, err := marshalPreferences(user.Preferences)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, username, username_lower, password_hash, display_name, preferences)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		user.Username,
		strings.ToLower(strings.TrimSpace(user.Username)),
		user.PasswordHash,
		user.DisplayName,
		prefs,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return store.ErrAlreadyExists
		}
		return err
	}
	return nil
}

// GetUser retrieves a user by ID. Returns store.ErrNotFound if absent.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByUsername retrieves a user by username, case-insensitively.
// Returns store.ErrNotFound if absent.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE username_lower = ?`,
		strings.ToLower(strings.TrimSpace(username)))

	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUsersByIDs retrieves multiple users in one query.
// Missing IDs are silently skipped; the result order is unspecified.
func (s *Store) GetUsersByIDs(ctx context.Context, ids []string) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(ids))
	placeholders = placeholders[:len(placeholders)-1]

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

// UpdateUser persists changes to an existing user.
// Returns store.ErrNotFound if the user does not exist.
func (s *Store) UpdateUser(ctx context.Context, user *domain.User) error {
	prefs, err := marshalPreferences(user.Preferences)
	if err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET updated_at = ?, display_name = ?, password_hash = ?, preferences = ?
		WHERE id = ?`,
		formatTime(user.UpdatedAt),
		user.DisplayName,
		user.PasswordHash,
		prefs,
		user.ID,
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

// SearchUsers returns users whose username starts with the given prefix.
func (s *Store) SearchUsers(ctx context.Context, usernamePrefix string, limit int) ([]*domain.User, error) {
	if limit <= 0 {
		limit = 20
	}

	// Escape LIKE wildcards in the user-supplied prefix.
	prefix := strings.ToLower(strings.TrimSpace(usernamePrefix))
	prefix = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(prefix)

	rows, err := s.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE username_lower LIKE ? ESCAPE '\'
		 ORDER BY username_lower LIMIT ?`,
		prefix+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectUsers(rows)
}

// collectUsers scans all rows into a slice of users.
func collectUsers(rows *sql.Rows) ([]*domain.User, error) {
	var users []*domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return users, nil
}
