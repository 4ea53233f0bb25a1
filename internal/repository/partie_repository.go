package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Partie is one sub-match (a map/game within a match). Streams holds the
// denormalized ids of its broadcasts, maintained by the consistency engine.
// The column backing Match is named matchref because MATCH is reserved in
// MySQL.
type Partie struct {
	ID        string     `json:"id"`
	Score     string     `json:"score"`
	Map       string     `json:"map"`
	Duree     *int       `json:"duree,omitempty"`
	DateDebut time.Time  `json:"date_debut"`
	DateFin   *time.Time `json:"date_fin,omitempty"`
	Match     string     `json:"match"`
	Streams   []string   `json:"streams"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// ErrPartieNotFound is returned when a partie cannot be found in the DB.
var ErrPartieNotFound = errors.New("partie not found")

// PartieRepo encapsulates all database queries related to sub-matches.
type PartieRepo struct {
	db *sql.DB
}

func NewPartieRepo(db *sql.DB) *PartieRepo {
	return &PartieRepo{db: db}
}

const partieCols = "id, score, map, duree, date_debut, date_fin, matchref, streams, created_at, updated_at"

func scanPartie(row interface{ Scan(...any) error }) (*Partie, error) {
	var p Partie
	var streams []byte
	err := row.Scan(&p.ID, &p.Score, &p.Map, &p.Duree, &p.DateDebut, &p.DateFin, &p.Match,
		&streams, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if p.Streams, err = decodeRefs(streams); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PartieRepo) Create(ctx context.Context, p *Partie) error {
	p.ID = uuid.NewString()
	if p.DateDebut.IsZero() {
		p.DateDebut = time.Now().UTC()
	}
	refs, err := encodeRefs(nil)
	if err != nil {
		return err
	}
	const q = `INSERT INTO parties (id, score, map, duree, date_debut, date_fin, matchref, streams)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, p.ID, p.Score, p.Map, p.Duree, p.DateDebut, p.DateFin, p.Match, refs); err != nil {
		return err
	}
	p.Streams = []string{}
	const qSelect = "SELECT created_at, updated_at FROM parties WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, p.ID).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *PartieRepo) GetByID(ctx context.Context, id string) (*Partie, error) {
	p, err := scanPartie(r.db.QueryRowContext(ctx, "SELECT "+partieCols+" FROM parties WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPartieNotFound
	}
	return p, err
}

func (r *PartieRepo) listQuery(ctx context.Context, q string, args ...any) ([]*Partie, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Partie{}
	for rows.Next() {
		p, err := scanPartie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PartieRepo) ListAll(ctx context.Context) ([]*Partie, error) {
	return r.listQuery(ctx, "SELECT "+partieCols+" FROM parties ORDER BY date_debut")
}

func (r *PartieRepo) ListByMatch(ctx context.Context, matchID string) ([]*Partie, error) {
	return r.listQuery(ctx, "SELECT "+partieCols+" FROM parties WHERE matchref = ? ORDER BY date_debut", matchID)
}

func (r *PartieRepo) Update(ctx context.Context, p *Partie) error {
	const q = "UPDATE parties SET score = ?, map = ?, duree = ?, date_debut = ?, date_fin = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, q, p.Score, p.Map, p.Duree, p.DateDebut, p.DateFin, p.ID)
	return err
}

// Delete removes one partie by id; callers fire OnChildDeleted on the owning
// match afterwards.
func (r *PartieRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM parties WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrPartieNotFound
	}
	return nil
}

// StreamLinks exposes the partie.streams reference array to the consistency
// engine as a RefStore.
type StreamLinks struct {
	r *PartieRepo
}

func (r *PartieRepo) StreamLinks() StreamLinks { return StreamLinks{r: r} }

func (l StreamLinks) Refs(ctx context.Context, partieID string) ([]string, error) {
	var raw []byte
	err := l.r.db.QueryRowContext(ctx, "SELECT streams FROM parties WHERE id = ?", partieID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPartieNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRefs(raw)
}

func (l StreamLinks) SetRefs(ctx context.Context, partieID string, refs []string) error {
	raw, err := encodeRefs(refs)
	if err != nil {
		return err
	}
	_, err = l.r.db.ExecContext(ctx, "UPDATE parties SET streams = ? WHERE id = ?", raw, partieID)
	return err
}
