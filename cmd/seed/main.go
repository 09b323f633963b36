// Package main provides a tool to seed the database with demo social data.
//
// This creates a handful of users with preferences, friendships between them,
// a circle, and an upcoming event so the API has something to serve.
//
// Usage:
//
//	DATA_PATH=~/Outsource/data go run ./cmd/seed
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/outsourceapp/outsource-server/internal/auth"
	"github.com/outsourceapp/outsource-server/internal/domain"
	"github.com/outsourceapp/outsource-server/internal/id"
	"github.com/outsourceapp/outsource-server/internal/store"
	"github.com/outsourceapp/outsource-server/internal/store/sqlite"
)

// seedPassword is the password every demo account gets.
const seedPassword = "password123"

type seedUser struct {
	username    string
	displayName string
	preferences []string
}

var seedUsers = []seedUser{
	{"alice", "Alice Rivera", []string{"hiking", "photography"}},
	{"bob", "Bob Chen", []string{"climbing", "board games"}},
	{"carol", "Carol Okafor", []string{"museums", "live music"}},
}

func main() {
	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Outsource/data")
	}

	dbPath := filepath.Join(dataPath, "outsource.db")
	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := sqlite.Open(dbPath, nil)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()

	users := createUsers(ctx, s)
	befriendAll(ctx, s, users)
	circleID := createCircle(ctx, s, users)
	createEvent(ctx, s, users)

	fmt.Printf("\nSeeded %d users (password %q), circle %s, and one event\n", len(users), seedPassword, circleID)
}

// createUsers inserts the demo accounts, skipping any that already exist.
func createUsers(ctx context.Context, s store.Store) []*domain.User {
	passwordHash, err := auth.HashPassword(seedPassword)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	users := make([]*domain.User, 0, len(seedUsers))
	for _, su := range seedUsers {
		if existing, err := s.GetUserByUsername(ctx, su.username); err == nil {
			fmt.Printf("User %s already exists, keeping\n", su.username)
			users = append(users, existing)
			continue
		}

		userID, err := id.Generate(id.PrefixUser)
		if err != nil {
			log.Fatalf("Failed to generate user ID: %v", err)
		}

		user := &domain.User{
			Username:     su.username,
			PasswordHash: passwordHash,
			DisplayName:  su.displayName,
			Preferences:  su.preferences,
		}
		user.ID = userID
		user.InitTimestamps()

		if err := s.CreateUser(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", su.username, err)
		}

		fmt.Printf("Created user %s (%s)\n", su.username, userID)
		users = append(users, user)
	}

	return users
}

// befriendAll connects every pair of seed users through the request flow.
func befriendAll(ctx context.Context, s store.Store, users []*domain.User) {
	for i := range users {
		for j := i + 1; j < len(users); j++ {
			if exists, err := s.FriendshipExists(ctx, users[i].ID, users[j].ID); err == nil && exists {
				continue
			}

			requestID, err := id.Generate(id.PrefixRequest)
			if err != nil {
				log.Fatalf("Failed to generate request ID: %v", err)
			}

			request := &domain.FriendRequest{
				FromUserID: users[i].ID,
				ToUserID:   users[j].ID,
				Status:     domain.RequestPending,
			}
			request.ID = requestID
			request.InitTimestamps()

			if err := s.CreateFriendRequest(ctx, request); err != nil {
				log.Fatalf("Failed to create friend request: %v", err)
			}

			friendshipID, err := id.Generate(id.PrefixFriendship)
			if err != nil {
				log.Fatalf("Failed to generate friendship ID: %v", err)
			}

			a, b := domain.CanonicalPair(users[i].ID, users[j].ID)
			friendship := &domain.Friendship{UserAID: a, UserBID: b}
			friendship.ID = friendshipID
			friendship.InitTimestamps()

			if err := s.AcceptFriendRequest(ctx, requestID, friendship); err != nil {
				log.Fatalf("Failed to accept friend request: %v", err)
			}

			fmt.Printf("Befriended %s and %s\n", users[i].Username, users[j].Username)
		}
	}
}

// createCircle builds a public circle owned by the first user with everyone in it.
func createCircle(ctx context.Context, s store.Store, users []*domain.User) string {
	owner := users[0]

	circleID, err := id.Generate(id.PrefixCircle)
	if err != nil {
		log.Fatalf("Failed to generate circle ID: %v", err)
	}

	circle := &domain.Circle{
		Name:     "Weekend Crew",
		IsPublic: true,
		OwnerID:  owner.ID,
	}
	circle.ID = circleID
	circle.InitTimestamps()

	ownerMembership := newMembership(owner.ID, circleID)
	if err := s.CreateCircle(ctx, circle, ownerMembership); err != nil {
		log.Fatalf("Failed to create circle: %v", err)
	}

	for _, user := range users[1:] {
		if err := s.AddCircleMember(ctx, newMembership(user.ID, circleID)); err != nil {
			log.Fatalf("Failed to add %s to circle: %v", user.Username, err)
		}
	}

	fmt.Printf("Created circle %q with %d members\n", circle.Name, len(users))
	return circleID
}

// createEvent schedules an event next weekend owned by the first two users.
func createEvent(ctx context.Context, s store.Store, users []*domain.User) {
	eventID, err := id.Generate(id.PrefixEvent)
	if err != nil {
		log.Fatalf("Failed to generate event ID: %v", err)
	}

	start := time.Now().AddDate(0, 0, 7).UTC().Truncate(time.Hour)
	event := &domain.Event{
		Name:        "Saturday Hike",
		Description: "Morning loop trail, coffee after",
		StartAt:     start,
		EndAt:       start.Add(3 * time.Hour),
	}
	event.ID = eventID
	event.InitTimestamps()

	if err := s.CreateEvent(ctx, event, newOwnership(users[0].ID, eventID)); err != nil {
		log.Fatalf("Failed to create event: %v", err)
	}

	if len(users) > 1 {
		if err := s.AddEventOwner(ctx, newOwnership(users[1].ID, eventID)); err != nil {
			log.Fatalf("Failed to add co-owner: %v", err)
		}
	}

	fmt.Printf("Created event %q at %s\n", event.Name, event.StartAt.Format(time.RFC3339))
}

func newMembership(userID, circleID string) *domain.CircleMembership {
	membershipID, err := id.Generate(id.PrefixMembership)
	if err != nil {
		log.Fatalf("Failed to generate membership ID: %v", err)
	}

	m := &domain.CircleMembership{UserID: userID, CircleID: circleID}
	m.ID = membershipID
	m.InitTimestamps()
	return m
}

func newOwnership(userID, eventID string) *domain.EventOwnership {
	ownershipID, err := id.Generate(id.PrefixOwnership)
	if err != nil {
		log.Fatalf("Failed to generate ownership ID: %v", err)
	}

	o := &domain.EventOwnership{UserID: userID, EventID: eventID}
	o.ID = ownershipID
	o.InitTimestamps()
	return o
}
