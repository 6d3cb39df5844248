package storage

import "github.com/google/uuid"

// NewProgramID returns a fresh random identifier for a stored program.
func NewProgramID() string {
	return uuid.NewString()
}
