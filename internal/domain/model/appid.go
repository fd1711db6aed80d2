package model

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// maxIDAttempts bounds the collision retry loop in NewAppID.
const maxIDAttempts = 8

// ErrIDExhausted is returned when NewAppID cannot find a free identifier.
var ErrIDExhausted = errors.New("could not generate a unique app id")

// NewAppID returns a fresh identifier for which taken reports false.
//
// Identifiers are UUIDv7 strings: time-ordered, and strictly increasing
// within a process even when calls land in the same millisecond. The taken
// check guards against collisions with ids seeded from outside the process.
func NewAppID(taken func(id string) bool) (string, error) {
	for range maxIDAttempts {
		u, err := uuid.NewV7()
		if err != nil {
			return "", fmt.Errorf("generate app id: %w", err)
		}
		id := u.String()
		if taken == nil || !taken(id) {
			return id, nil
		}
	}
	return "", ErrIDExhausted
}
