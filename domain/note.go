// server/domain/note.go
package domain

import (
	"errors"
	"time"
)

var (
	// ErrNotFound covers both "no such row" and "row owned by someone else".
	// Callers must never be able to tell the two apart.
	ErrNotFound = errors.New("not found")

	ErrEmailTaken = errors.New("email already registered")
)

type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	FolderID  *string   `json:"folderId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NoteDetail is a Note with its folder and tag relations loaded.
type NoteDetail struct {
	Note
	Folder *Folder `json:"folder"`
	Tags   []Tag   `json:"tags"`
}

// NotePatch carries a partial note update; nil fields are left untouched.
type NotePatch struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PlaceholderEmail is assigned when a note is created for an identity the
// store has never seen; the identity webhook fills in the real address later.
const PlaceholderEmail = "pending@example.com"
