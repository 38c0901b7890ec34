package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxShares is the most users a list can be shared with at once.
const MaxShares = 3

// TodoList is owned by exactly one user and may be shared with up to
// MaxShares other users. Members can edit and share, only the owner deletes.
type TodoList struct {
	ID      uuid.UUID
	Title   string
	OwnerID uuid.UUID

	CreatedAt time.Time
	UpdatedAt time.Time

	Shares []Share
}

// Share links a list to a user it is shared with.
type Share struct {
	ListID       uuid.UUID
	UserID       uuid.UUID
	UserFullName string
	CreatedAt    time.Time
}

// NewTodoList returns a list with an empty share set and both timestamps set to now.
func NewTodoList(ownerID uuid.UUID, title string, now time.Time) TodoList {
	now = now.UTC()
	return TodoList{
		ID:        uuid.New(),
		Title:     title,
		OwnerID:   ownerID,
		CreatedAt: now,
		UpdatedAt: now,
		Shares:    []Share{},
	}
}

func (l TodoList) IsOwner(userID uuid.UUID) bool {
	return l.OwnerID == userID
}

// IsSharedWith reports whether userID is in the share set.
func (l TodoList) IsSharedWith(userID uuid.UUID) bool {
	for _, s := range l.Shares {
		if s.UserID == userID {
			return true
		}
	}
	return false
}

// CanEdit reports whether userID may read, rename, share or unshare the list.
func (l TodoList) CanEdit(userID uuid.UUID) bool {
	return l.IsOwner(userID) || l.IsSharedWith(userID)
}

// CanDelete is owner-only.
func (l TodoList) CanDelete(userID uuid.UUID) bool {
	return l.IsOwner(userID)
}

func (l TodoList) ShareLimitReached() bool {
	return len(l.Shares) >= MaxShares
}

// Rename sets the title and moves UpdatedAt forward. UpdatedAt never goes
// below CreatedAt even with a skewed clock.
func (l *TodoList) Rename(title string, now time.Time) {
	l.Title = title
	now = now.UTC()
	if now.Before(l.CreatedAt) {
		now = l.CreatedAt
	}
	l.UpdatedAt = now
}

// MemberIDs returns the owner followed by every share member.
func (l TodoList) MemberIDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(l.Shares)+1)
	ids = append(ids, l.OwnerID)
	for _, s := range l.Shares {
		ids = append(ids, s.UserID)
	}
	return ids
}
