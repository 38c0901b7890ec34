package dto

import (
	"time"

	"github.com/google/uuid"
)

// PageQuery binds ?skip=&take= on paged endpoints.
type PageQuery struct {
	Skip int `form:"skip" binding:"min=0"`
	Take int `form:"take,default=20" binding:"min=1,max=100"`
}

type CreateListRequest struct {
	Title string `json:"title" binding:"required"`
}

type UpdateListRequest struct {
	Title string `json:"title" binding:"required"`
}

// ShareRequest is the body of both share and unshare.
type ShareRequest struct {
	UserID uuid.UUID `json:"user_id" binding:"required" swaggertype:"string" format:"uuid"`
}

type ShareResponse struct {
	UserID    uuid.UUID `json:"user_id" swaggertype:"string" format:"uuid"`
	FullName  string    `json:"full_name"`
	CreatedAt time.Time `json:"created_at"`
}

type ListResponse struct {
	ID        uuid.UUID       `json:"id" swaggertype:"string" format:"uuid"`
	Title     string          `json:"title"`
	OwnerID   uuid.UUID       `json:"owner_id" swaggertype:"string" format:"uuid"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
	Shares    []ShareResponse `json:"shares"`
}

type ListListsResponse struct {
	Items []ListResponse `json:"items"`
	Skip  int            `json:"skip"`
	Take  int            `json:"take"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}
