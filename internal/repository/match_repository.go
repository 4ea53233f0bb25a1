package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Match opposes two distinct equipes inside a tournoi. Parties holds the
// denormalized ids of its sub-matches, maintained by the consistency engine.
type Match struct {
	ID           string    `json:"id"`
	DateDebut    time.Time `json:"date_debut"`
	Status       string    `json:"status"`
	Tournoi      string    `json:"tournoi"`
	Participant1 string    `json:"participant1"`
	Participant2 string    `json:"participant2"`
	Parties      []string  `json:"parties"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ErrMatchNotFound is returned when a match cannot be found in the DB.
var ErrMatchNotFound = errors.New("match not found")

// MatchRepo encapsulates all database queries related to matches.
type MatchRepo struct {
	db *sql.DB
}

func NewMatchRepo(db *sql.DB) *MatchRepo {
	return &MatchRepo{db: db}
}

const matchCols = "id, date_debut, status, tournoi, participant1, participant2, parties, created_at, updated_at"

func scanMatch(row interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	var parties []byte
	err := row.Scan(&m.ID, &m.DateDebut, &m.Status, &m.Tournoi, &m.Participant1, &m.Participant2,
		&parties, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if m.Parties, err = decodeRefs(parties); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MatchRepo) Create(ctx context.Context, m *Match) error {
	m.ID = uuid.NewString()
	refs, err := encodeRefs(nil)
	if err != nil {
		return err
	}
	const q = `INSERT INTO matchs (id, date_debut, status, tournoi, participant1, participant2, parties)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, m.ID, m.DateDebut, m.Status, m.Tournoi, m.Participant1, m.Participant2, refs); err != nil {
		return err
	}
	m.Parties = []string{}
	const qSelect = "SELECT created_at, updated_at FROM matchs WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, m.ID).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *MatchRepo) GetByID(ctx context.Context, id string) (*Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx, "SELECT "+matchCols+" FROM matchs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	return m, err
}

func (r *MatchRepo) listQuery(ctx context.Context, q string, args ...any) ([]*Match, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Match{}
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MatchRepo) ListAll(ctx context.Context) ([]*Match, error) {
	return r.listQuery(ctx, "SELECT "+matchCols+" FROM matchs ORDER BY date_debut")
}

func (r *MatchRepo) ListByTournoi(ctx context.Context, tournoiID string) ([]*Match, error) {
	return r.listQuery(ctx, "SELECT "+matchCols+" FROM matchs WHERE tournoi = ? ORDER BY date_debut", tournoiID)
}

// ListByEquipe returns matches where the team plays on either side.
func (r *MatchRepo) ListByEquipe(ctx context.Context, equipeID string) ([]*Match, error) {
	const q = "SELECT " + matchCols + " FROM matchs WHERE participant1 = ? OR participant2 = ? ORDER BY date_debut"
	return r.listQuery(ctx, q, equipeID, equipeID)
}

func (r *MatchRepo) Update(ctx context.Context, m *Match) error {
	const q = "UPDATE matchs SET date_debut = ?, status = ?, participant1 = ?, participant2 = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, q, m.DateDebut, m.Status, m.Participant1, m.Participant2, m.ID)
	return err
}

func (r *MatchRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM matchs WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMatchNotFound
	}
	return nil
}

// PartieLinks exposes the match.parties reference array to the consistency
// engine as a RefStore.
type PartieLinks struct {
	r *MatchRepo
}

func (r *MatchRepo) PartieLinks() PartieLinks { return PartieLinks{r: r} }

func (l PartieLinks) Refs(ctx context.Context, matchID string) ([]string, error) {
	var raw []byte
	err := l.r.db.QueryRowContext(ctx, "SELECT parties FROM matchs WHERE id = ?", matchID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRefs(raw)
}

func (l PartieLinks) SetRefs(ctx context.Context, matchID string, refs []string) error {
	raw, err := encodeRefs(refs)
	if err != nil {
		return err
	}
	_, err = l.r.db.ExecContext(ctx, "UPDATE matchs SET parties = ? WHERE id = ?", raw, matchID)
	return err
}
