// Package domain defines the core entities for the Outsource server.
package domain

import "github.com/outsourceapp/outsource-server/internal/color"

// User represents an authenticated user account in the system.
// Users are never hard-deleted; every relation table references them by ID.
type User struct {
	Timestamps
	Username     string   `json:"username"`
	PasswordHash string   `json:"-"` // Stored as an encoded argon2id string, never serialized
	DisplayName  string   `json:"display_name"`
	Preferences  []string `json:"preferences"`
}

// HasPreferences returns true if the user has stated at least one activity preference.
func (u *User) HasPreferences() bool {
	return len(u.Preferences) > 0
}

// Public returns a copy safe for embedding in API responses about other users.
// Preferences are personal and only exposed on the owning user's endpoints.
type PublicUser struct {
	ID          string `json:"id"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	AvatarColor string `json:"avatar_color"`
}

// Public converts a User to its public projection.
// The avatar color is derived from the user ID so clients render the same
// color everywhere without storing one.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.DisplayName,
		AvatarColor: color.ForUser(u.ID),
	}
}
