package repository

import (
	"context"

	"github.com/and161185/lovary/internal/model"
	"github.com/gofrs/uuid/v5"
)

// EntryRepository persists diary entries. At most one entry exists per (author, day).
type EntryRepository interface {
	// FindByAuthorAndDay returns the author's entry for day or ErrNotFound.
	FindByAuthorAndDay(ctx context.Context, authorID uuid.UUID, day model.Day) (*model.Entry, error)
	// FindByAuthorAndRange returns entries with start <= day <= end, ordered by day.
	FindByAuthorAndRange(ctx context.Context, authorID uuid.UUID, start, end model.Day) ([]model.Entry, error)
	// ListByAuthor returns all entries of the author, newest day first.
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Entry, error)
	// GetByID returns the entry only if authored by authorID, else ErrNotFound.
	GetByID(ctx context.Context, authorID, id uuid.UUID) (*model.Entry, error)
	// InsertIfAbsent atomically inserts e unless (author, day) is taken, then ErrDuplicateEntry.
	InsertIfAbsent(ctx context.Context, e *model.Entry) error
	// Update stores title, body and UpdatedAt of an owned entry.
	Update(ctx context.Context, e *model.Entry) error
	// SetRevealed marks the entry as shown to the author's partner. Idempotent.
	SetRevealed(ctx context.Context, id uuid.UUID) error
	// AddPhoto attaches a stored photo to an entry.
	AddPhoto(ctx context.Context, p *model.EntryPhoto) error
}
