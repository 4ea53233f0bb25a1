package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MembreTeam is one user's membership in one team. The (user, equipe) pair
// is unique and at most one row per team may carry the capitaine role.
type MembreTeam struct {
	ID            string    `json:"id"`
	Role          string    `json:"role"`
	User          string    `json:"user"`
	Equipe        string    `json:"equipe"`
	NumeroMaillot *int      `json:"numero_maillot,omitempty"`
	Statut        string    `json:"statut"`
	DateAdhesion  time.Time `json:"date_adhesion"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// ErrMembreNotFound is returned when a membership cannot be found in the DB.
var ErrMembreNotFound = errors.New("membre not found")

// MembreRepo encapsulates all database queries related to team memberships.
type MembreRepo struct {
	db *sql.DB
}

func NewMembreRepo(db *sql.DB) *MembreRepo {
	return &MembreRepo{db: db}
}

const membreCols = "id, role, user, equipe, numero_maillot, statut, date_adhesion, created_at, updated_at"

func scanMembre(row interface{ Scan(...any) error }) (*MembreTeam, error) {
	var m MembreTeam
	err := row.Scan(&m.ID, &m.Role, &m.User, &m.Equipe, &m.NumeroMaillot, &m.Statut, &m.DateAdhesion, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MembreRepo) Create(ctx context.Context, m *MembreTeam) error {
	m.ID = uuid.NewString()
	if m.DateAdhesion.IsZero() {
		m.DateAdhesion = time.Now().UTC()
	}
	const q = `INSERT INTO membres_team (id, role, user, equipe, numero_maillot, statut, date_adhesion)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, m.ID, m.Role, m.User, m.Equipe, m.NumeroMaillot, m.Statut, m.DateAdhesion); err != nil {
		return err
	}
	const qSelect = "SELECT created_at, updated_at FROM membres_team WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, m.ID).Scan(&m.CreatedAt, &m.UpdatedAt)
}

func (r *MembreRepo) GetByID(ctx context.Context, id string) (*MembreTeam, error) {
	m, err := scanMembre(r.db.QueryRowContext(ctx, "SELECT "+membreCols+" FROM membres_team WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMembreNotFound
	}
	return m, err
}

// FindByUserAndEquipe resolves the unique (user, equipe) constraint before
// inserts.
func (r *MembreRepo) FindByUserAndEquipe(ctx context.Context, userID, equipeID string) (*MembreTeam, error) {
	const q = "SELECT " + membreCols + " FROM membres_team WHERE user = ? AND equipe = ?"
	m, err := scanMembre(r.db.QueryRowContext(ctx, q, userID, equipeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMembreNotFound
	}
	return m, err
}

// HasCapitaine reports whether the team already has a capitaine on a row
// other than excludeID (pass "" when creating).
func (r *MembreRepo) HasCapitaine(ctx context.Context, equipeID, excludeID string) (bool, error) {
	const q = "SELECT COUNT(*) FROM membres_team WHERE equipe = ? AND role = 'capitaine' AND id <> ?"
	var n int
	if err := r.db.QueryRowContext(ctx, q, equipeID, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MembreRepo) listQuery(ctx context.Context, q string, args ...any) ([]*MembreTeam, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*MembreTeam{}
	for rows.Next() {
		m, err := scanMembre(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MembreRepo) ListAll(ctx context.Context) ([]*MembreTeam, error) {
	return r.listQuery(ctx, "SELECT "+membreCols+" FROM membres_team ORDER BY date_adhesion")
}

func (r *MembreRepo) ListByEquipe(ctx context.Context, equipeID string) ([]*MembreTeam, error) {
	return r.listQuery(ctx, "SELECT "+membreCols+" FROM membres_team WHERE equipe = ? ORDER BY date_adhesion", equipeID)
}

func (r *MembreRepo) ListByUser(ctx context.Context, userID string) ([]*MembreTeam, error) {
	return r.listQuery(ctx, "SELECT "+membreCols+" FROM membres_team WHERE user = ? ORDER BY date_adhesion", userID)
}

// Update replaces role, jersey number and status. The (user, equipe) pair is
// immutable.
func (r *MembreRepo) Update(ctx context.Context, m *MembreTeam) error {
	const q = "UPDATE membres_team SET role = ?, numero_maillot = ?, statut = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, q, m.Role, m.NumeroMaillot, m.Statut, m.ID)
	return err
}

func (r *MembreRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM membres_team WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrMembreNotFound
	}
	return nil
}
