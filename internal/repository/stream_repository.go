package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Stream is a broadcast of one partie on a streaming platform.
type Stream struct {
	ID         string    `json:"id"`
	Nom        string    `json:"nom"`
	Plateforme string    `json:"plateforme"`
	URL        string    `json:"url"`
	Partie     string    `json:"partie"`
	Statut     string    `json:"statut"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ErrStreamNotFound is returned when a stream cannot be found in the DB.
var ErrStreamNotFound = errors.New("stream not found")

// StreamRepo encapsulates all database queries related to streams.
type StreamRepo struct {
	db *sql.DB
}

func NewStreamRepo(db *sql.DB) *StreamRepo {
	return &StreamRepo{db: db}
}

const streamCols = "id, nom, plateforme, url, partie, statut, created_at, updated_at"

func scanStream(row interface{ Scan(...any) error }) (*Stream, error) {
	var s Stream
	err := row.Scan(&s.ID, &s.Nom, &s.Plateforme, &s.URL, &s.Partie, &s.Statut, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StreamRepo) Create(ctx context.Context, s *Stream) error {
	s.ID = uuid.NewString()
	const q = "INSERT INTO streams (id, nom, plateforme, url, partie, statut) VALUES (?, ?, ?, ?, ?, ?)"
	if _, err := r.db.ExecContext(ctx, q, s.ID, s.Nom, s.Plateforme, s.URL, s.Partie, s.Statut); err != nil {
		return err
	}
	const qSelect = "SELECT created_at, updated_at FROM streams WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *StreamRepo) GetByID(ctx context.Context, id string) (*Stream, error) {
	s, err := scanStream(r.db.QueryRowContext(ctx, "SELECT "+streamCols+" FROM streams WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStreamNotFound
	}
	return s, err
}

func (r *StreamRepo) listQuery(ctx context.Context, q string, args ...any) ([]*Stream, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Stream{}
	for rows.Next() {
		s, err := scanStream(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *StreamRepo) ListAll(ctx context.Context) ([]*Stream, error) {
	return r.listQuery(ctx, "SELECT "+streamCols+" FROM streams ORDER BY created_at")
}

func (r *StreamRepo) ListByPartie(ctx context.Context, partieID string) ([]*Stream, error) {
	return r.listQuery(ctx, "SELECT "+streamCols+" FROM streams WHERE partie = ? ORDER BY created_at", partieID)
}

func (r *StreamRepo) Update(ctx context.Context, s *Stream) error {
	const q = "UPDATE streams SET nom = ?, plateforme = ?, url = ?, statut = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, q, s.Nom, s.Plateforme, s.URL, s.Statut, s.ID)
	return err
}

// Delete removes one stream by id; callers fire OnChildDeleted on the owning
// partie afterwards.
func (r *StreamRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM streams WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrStreamNotFound
	}
	return nil
}
