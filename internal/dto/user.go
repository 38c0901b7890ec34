package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateUserRequest is the JSON body for POST /users.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	FullName string `json:"full_name" binding:"required,max=255"`
}

// UpdateUserRequest is the JSON body for PUT /users/{id}.
type UpdateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	FullName string `json:"full_name" binding:"required,max=255"`
}

type UserResponse struct {
	ID        uuid.UUID `json:"id" swaggertype:"string" format:"uuid"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

type ListUsersResponse struct {
	Items []UserResponse `json:"items"`
}
