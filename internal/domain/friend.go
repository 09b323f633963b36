package domain

// RequestStatus represents the lifecycle state of a friend request.
type RequestStatus string

const (
	// RequestPending indicates the recipient has not yet responded.
	RequestPending RequestStatus = "pending"
	// RequestAccepted indicates the recipient accepted and a Friendship exists.
	RequestAccepted RequestStatus = "accepted"
	// RequestRejected indicates the recipient declined.
	RequestRejected RequestStatus = "rejected"
)

// Valid reports whether s is a known request status.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestAccepted, RequestRejected:
		return true
	}
	return false
}

// RequestDecision is the recipient's answer to a pending friend request.
type RequestDecision string

const (
	// DecisionAccept transitions the request to accepted and creates a Friendship.
	DecisionAccept RequestDecision = "accept"
	// DecisionReject transitions the request to rejected.
	DecisionReject RequestDecision = "reject"
)

// Valid reports whether d is a known decision.
func (d RequestDecision) Valid() bool {
	return d == DecisionAccept || d == DecisionReject
}

// FriendRequest is a directed, stateful proposal to form a Friendship.
// At most one request exists per ordered (FromUserID, ToUserID) pair.
type FriendRequest struct {
	Timestamps
	FromUserID string        `json:"from_user_id"`
	ToUserID   string        `json:"to_user_id"`
	Status     RequestStatus `json:"status"`
}

// IsPending returns true if the request can still be responded to.
func (r *FriendRequest) IsPending() bool {
	return r.Status == RequestPending
}

// Friendship is a symmetric, unique relation between two users.
// UserAID sorts before UserBID so the unordered pair maps to exactly one row,
// regardless of who sent the originating request.
type Friendship struct {
	Timestamps
	UserAID string `json:"user_a_id"`
	UserBID string `json:"user_b_id"`
}

// CanonicalPair orders two user IDs so (a, b) and (b, a) map to the same key.
func CanonicalPair(first, second string) (a, b string) {
	if first < second {
		return first, second
	}
	return second, first
}

// Other returns the friend on the opposite side of the relation from userID.
func (f *Friendship) Other(userID string) string {
	if f.UserAID == userID {
		return f.UserBID
	}
	return f.UserAID
}
