// server/store/notes.go
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lumina-notes/lumina-server/domain"
)

const noteColumns = "id, user_id, folder_id, title, content, created_at, updated_at"

func scanNote(row pgx.Row) (domain.Note, error) {
	var n domain.Note
	err := row.Scan(&n.ID, &n.UserID, &n.FolderID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

func collectNotes(rows pgx.Rows) ([]domain.Note, error) {
	defer rows.Close()

	notes := []domain.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// ListNotes returns every note owned by the user, most recently updated first.
func (s *Store) ListNotes(ctx context.Context, userID string) ([]domain.Note, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE user_id = $1
		ORDER BY updated_at DESC`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return collectNotes(rows)
}

func (s *Store) CreateNote(ctx context.Context, userID, title, content string) (domain.Note, error) {
	note, err := scanNote(s.pool.QueryRow(ctx, `
		INSERT INTO notes (id, user_id, title, content)
		VALUES ($1, $2, $3, $4)
		RETURNING `+noteColumns,
		uuid.NewString(), userID, title, content))
	if err != nil {
		return domain.Note{}, fmt.Errorf("create note: %w", err)
	}
	return note, nil
}

// GetNote fetches a single note with its folder and tags. A note owned by
// someone else is reported exactly like a missing one.
func (s *Store) GetNote(ctx context.Context, id, userID string) (domain.NoteDetail, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.NoteDetail{}, domain.ErrNotFound
	}

	var detail domain.NoteDetail
	note, err := scanNote(s.pool.QueryRow(ctx, `
		SELECT `+noteColumns+`
		FROM notes
		WHERE id = $1 AND user_id = $2`,
		id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NoteDetail{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.NoteDetail{}, fmt.Errorf("get note: %w", err)
	}
	detail.Note = note
	detail.Tags = []domain.Tag{}

	if note.FolderID != nil {
		var folder domain.Folder
		err := s.pool.QueryRow(ctx, `
			SELECT id, user_id, name, created_at
			FROM folders
			WHERE id = $1`,
			*note.FolderID).Scan(&folder.ID, &folder.UserID, &folder.Name, &folder.CreatedAt)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return domain.NoteDetail{}, fmt.Errorf("get note folder: %w", err)
		}
		if err == nil {
			detail.Folder = &folder
		}
	}

	rows, err := s.pool.Query(ctx, `
		SELECT t.id, t.name
		FROM tags t
		JOIN note_tags nt ON nt.tag_id = t.id
		WHERE nt.note_id = $1
		ORDER BY t.name`,
		id)
	if err != nil {
		return domain.NoteDetail{}, fmt.Errorf("get note tags: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.Name); err != nil {
			return domain.NoteDetail{}, fmt.Errorf("get note tags: %w", err)
		}
		detail.Tags = append(detail.Tags, tag)
	}
	if err := rows.Err(); err != nil {
		return domain.NoteDetail{}, fmt.Errorf("get note tags: %w", err)
	}

	return detail, nil
}

// UpdateNote applies a partial update. The owner predicate and the mutation
// are one statement; untouched fields keep their values.
func (s *Store) UpdateNote(ctx context.Context, id, userID string, patch domain.NotePatch) (domain.Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Note{}, domain.ErrNotFound
	}

	note, err := scanNote(s.pool.QueryRow(ctx, `
		UPDATE notes
		SET title = COALESCE($3, title),
		    content = COALESCE($4, content),
		    updated_at = now()
		WHERE id = $1 AND user_id = $2
		RETURNING `+noteColumns,
		id, userID, patch.Title, patch.Content))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Note{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Note{}, fmt.Errorf("update note: %w", err)
	}
	return note, nil
}

// DeleteNote removes the note and returns its last state.
func (s *Store) DeleteNote(ctx context.Context, id, userID string) (domain.Note, error) {
	if _, err := uuid.Parse(id); err != nil {
		return domain.Note{}, domain.ErrNotFound
	}

	note, err := scanNote(s.pool.QueryRow(ctx, `
		DELETE FROM notes
		WHERE id = $1 AND user_id = $2
		RETURNING `+noteColumns,
		id, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Note{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Note{}, fmt.Errorf("delete note: %w", err)
	}
	return note, nil
}

// SearchNotes matches the query as a case-insensitive substring of the
// title, the content, or any tag name, scoped to the caller's notes.
func (s *Store) SearchNotes(ctx context.Context, userID, query string) ([]domain.Note, error) {
	pattern := "%" + escapeLike(query) + "%"
	rows, err := s.pool.Query(ctx, `
		SELECT `+noteColumns+`
		FROM notes n
		WHERE n.user_id = $1
		  AND (n.title ILIKE $2
		    OR n.content ILIKE $2
		    OR EXISTS (
		        SELECT 1
		        FROM note_tags nt
		        JOIN tags t ON t.id = nt.tag_id
		        WHERE nt.note_id = n.id AND t.name ILIKE $2))
		ORDER BY n.updated_at DESC`,
		userID, pattern)
	if err != nil {
		return nil, fmt.Errorf("search notes: %w", err)
	}
	return collectNotes(rows)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
