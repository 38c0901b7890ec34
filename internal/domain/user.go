package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is the domain entity for a user account. Email is unique across users.
type User struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	CreatedAt time.Time
}

// NewUser returns a user with a fresh ID.
func NewUser(email, fullName string, now time.Time) User {
	return User{
		ID:        uuid.New(),
		Email:     email,
		FullName:  fullName,
		CreatedAt: now.UTC(),
	}
}
