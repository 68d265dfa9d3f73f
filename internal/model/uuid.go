package model

import "github.com/google/uuid"

// GenerateID creates a new unique id string.
func GenerateID() string {
	return uuid.New().String()
}
