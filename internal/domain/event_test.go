package domain

import (
	"testing"
	"time"
)

func TestEventState(t *testing.T) {
	start := time.Date(2026, 6, 1, 18, 0, 0, 0, time.UTC)
	end := time.Date(2026, 6, 1, 21, 0, 0, 0, time.UTC)
	event := &Event{Name: "Trail run", StartAt: start, EndAt: end}

	tests := []struct {
		name string
		now  time.Time
		want EventState
	}{
		{"well before start", start.Add(-24 * time.Hour), EventUpcoming},
		{"during the event", start.Add(time.Hour), EventUpcoming},
		{"one nanosecond before end", end.Add(-time.Nanosecond), EventUpcoming},
		{"exactly at end", end, EventPassed},
		{"after end", end.Add(time.Minute), EventPassed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := event.State(tt.now); got != tt.want {
				t.Errorf("State(%v) = %q, want %q", tt.now, got, tt.want)
			}
		})
	}
}

func TestEventValidRange(t *testing.T) {
	now := time.Now()

	event := &Event{StartAt: now, EndAt: now.Add(time.Hour)}
	if !event.ValidRange() {
		t.Error("expected valid range when end is after start")
	}

	event = &Event{StartAt: now, EndAt: now}
	if event.ValidRange() {
		t.Error("expected invalid range when end equals start")
	}

	event = &Event{StartAt: now, EndAt: now.Add(-time.Hour)}
	if event.ValidRange() {
		t.Error("expected invalid range when end is before start")
	}
}

func TestCanonicalPair(t *testing.T) {
	a, b := CanonicalPair("user-zzz", "user-aaa")
	if a != "user-aaa" || b != "user-zzz" {
		t.Errorf("CanonicalPair: got (%q, %q)", a, b)
	}

	a2, b2 := CanonicalPair("user-aaa", "user-zzz")
	if a2 != a || b2 != b {
		t.Error("CanonicalPair should be order-independent")
	}
}

func TestFriendshipOther(t *testing.T) {
	f := &Friendship{UserAID: "user-a", UserBID: "user-b"}
	if got := f.Other("user-a"); got != "user-b" {
		t.Errorf("Other(user-a) = %q, want user-b", got)
	}
	if got := f.Other("user-b"); got != "user-a" {
		t.Errorf("Other(user-b) = %q, want user-a", got)
	}
}
