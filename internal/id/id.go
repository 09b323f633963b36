// Package id generates prefixed unique identifiers for domain entities.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Entity prefixes used across the store.
const (
	PrefixUser       = "user"
	PrefixRequest    = "freq"
	PrefixFriendship = "frnd"
	PrefixCircle     = "circ"
	PrefixMembership = "cmem"
	PrefixEvent      = "evt"
	PrefixOwnership  = "eown"
)

// Generate creates a prefixed unique ID using NanoID.
// Format: prefix-nanoid (e.g., "circ-V1StGXR8_Z5jdHi6B-myT").
//
// NanoIDs are URL-friendly and compact (21 characters vs UUID's 36),
// which keeps composite keys in the relation tables short.
//
// Returns an error if the system has insufficient entropy for secure random generation.
func Generate(prefix string) (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + id, nil
}

// MustGenerate is like Generate but panics if ID generation fails.
// Use only where failure should crash the program, such as seeding.
func MustGenerate(prefix string) string {
	id, err := Generate(prefix)
	if err != nil {
		panic(fmt.Sprintf("failed to generate ID: %v", err))
	}
	return id
}
