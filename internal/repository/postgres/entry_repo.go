package postgres

import (
	"context"
	"time"

	"github.com/and161185/lovary/internal/errs"
	"github.com/and161185/lovary/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// EntryRepo implements EntryRepository using PostgreSQL.
// The UNIQUE (author_id, entry_day) index backs the one-entry-per-day rule.
type EntryRepo struct{ db *DB }

// NewEntryRepo constructs an entry repository.
func NewEntryRepo(db *DB) *EntryRepo { return &EntryRepo{db: db} }

const entryColumns = `id, author_id, entry_day, title, body, created_at, updated_at, revealed`

func scanEntry(row pgx.Row) (model.Entry, error) {
	var (
		e   model.Entry
		day time.Time
	)
	err := row.Scan(&e.ID, &e.AuthorID, &day, &e.Title, &e.Body, &e.CreatedAt, &e.UpdatedAt, &e.Revealed)
	e.Day = model.DayOf(day)
	return e, err
}

// FindByAuthorAndDay returns the author's entry for day.
func (r *EntryRepo) FindByAuthorAndDay(ctx context.Context, authorID uuid.UUID, day model.Day) (*model.Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM entries WHERE author_id=$1 AND entry_day=$2`
	e, err := scanEntry(r.db.Pool.QueryRow(ctx, q, authorID, day.Time()))
	if err != nil {
		return nil, noRows(err)
	}
	out := []model.Entry{e}
	if err := r.attachPhotos(ctx, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

// FindByAuthorAndRange returns entries whose day lies in [start, end].
func (r *EntryRepo) FindByAuthorAndRange(ctx context.Context, authorID uuid.UUID, start, end model.Day) ([]model.Entry, error) {
	q := `SELECT ` + entryColumns + `
FROM entries
WHERE author_id=$1 AND entry_day BETWEEN $2 AND $3
ORDER BY entry_day ASC`
	return r.list(ctx, q, authorID, start.Time(), end.Time())
}

// ListByAuthor returns all entries of the author, newest first.
func (r *EntryRepo) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]model.Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM entries WHERE author_id=$1 ORDER BY entry_day DESC`
	return r.list(ctx, q, authorID)
}

// GetByID returns an entry owned by authorID.
func (r *EntryRepo) GetByID(ctx context.Context, authorID, id uuid.UUID) (*model.Entry, error) {
	q := `SELECT ` + entryColumns + ` FROM entries WHERE id=$1 AND author_id=$2`
	e, err := scanEntry(r.db.Pool.QueryRow(ctx, q, id, authorID))
	if err != nil {
		return nil, noRows(err)
	}
	out := []model.Entry{e}
	if err := r.attachPhotos(ctx, out); err != nil {
		return nil, err
	}
	return &out[0], nil
}

// InsertIfAbsent inserts e in a single statement; a taken (author, day) yields ErrDuplicateEntry.
func (r *EntryRepo) InsertIfAbsent(ctx context.Context, e *model.Entry) error {
	const q = `
INSERT INTO entries (id, author_id, entry_day, title, body, created_at, updated_at, revealed)
VALUES ($1, $2, $3, $4, $5, $6, $7, false)
ON CONFLICT (author_id, entry_day) DO NOTHING`
	tag, err := r.db.Pool.Exec(ctx, q, e.ID, e.AuthorID, e.Day.Time(), e.Title, e.Body, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrDuplicateEntry
	}
	return nil
}

// Update writes the author-editable fields. The revealed flag is never touched here.
func (r *EntryRepo) Update(ctx context.Context, e *model.Entry) error {
	const q = `UPDATE entries SET title=$3, body=$4, updated_at=$5 WHERE id=$1 AND author_id=$2`
	tag, err := r.db.Pool.Exec(ctx, q, e.ID, e.AuthorID, e.Title, e.Body, e.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// SetRevealed flags the entry as read by the partner.
func (r *EntryRepo) SetRevealed(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE entries SET revealed=true WHERE id=$1`
	_, err := r.db.Pool.Exec(ctx, q, id)
	return err
}

// AddPhoto appends a photo to an entry; its position is the next free slot.
func (r *EntryRepo) AddPhoto(ctx context.Context, p *model.EntryPhoto) error {
	const q = `
INSERT INTO entry_photos (id, entry_id, position, url, storage_key, original_filename, created_at)
VALUES ($1, $2, (SELECT COALESCE(MAX(position), -1) + 1 FROM entry_photos WHERE entry_id=$2), $3, $4, $5, $6)
RETURNING position`
	return r.db.Pool.QueryRow(ctx, q, p.ID, p.EntryID, p.URL, p.StorageKey, p.OriginalFilename, p.CreatedAt).
		Scan(&p.Position)
}

func (r *EntryRepo) list(ctx context.Context, q string, args ...any) ([]model.Entry, error) {
	rows, err := r.db.Pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.attachPhotos(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// attachPhotos loads photos of all entries with one query, keeping upload order.
func (r *EntryRepo) attachPhotos(ctx context.Context, entries []model.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]string, len(entries))
	idx := make(map[uuid.UUID]int, len(entries))
	for i, e := range entries {
		ids[i] = e.ID.String()
		idx[e.ID] = i
	}

	const q = `
SELECT id, entry_id, position, url, storage_key, original_filename, created_at
FROM entry_photos
WHERE entry_id = ANY($1::uuid[])
ORDER BY entry_id, position`
	rows, err := r.db.Pool.Query(ctx, q, ids)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var p model.EntryPhoto
		if err := rows.Scan(&p.ID, &p.EntryID, &p.Position, &p.URL, &p.StorageKey, &p.OriginalFilename, &p.CreatedAt); err != nil {
			return err
		}
		if i, ok := idx[p.EntryID]; ok {
			entries[i].Photos = append(entries[i].Photos, p)
		}
	}
	return rows.Err()
}
