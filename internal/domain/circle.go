package domain

// Circle is a named group of users with one owner and any number of members.
type Circle struct {
	Timestamps
	Name     string `json:"name"`
	IsPublic bool   `json:"is_public"`
	OwnerID  string `json:"owner_id"`
}

// IsOwnedBy returns true if userID owns this circle.
func (c *Circle) IsOwnedBy(userID string) bool {
	return c.OwnerID == userID
}

// CircleMembership links a user to a circle. Unique per (UserID, CircleID).
// The owner always holds a membership row, inserted when the circle is created.
type CircleMembership struct {
	Timestamps
	UserID   string `json:"user_id"`
	CircleID string `json:"circle_id"`
}
