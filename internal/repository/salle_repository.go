package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Salle is a room inside a bar. Its lifetime is bounded by the owning bar:
// deleting the bar cascades over its salles.
type Salle struct {
	ID                 string    `json:"id"`
	Nom                string    `json:"nom"`
	CapaciteSpectateur int       `json:"capacite_spectateur"`
	Equipement         string    `json:"equipement"`
	NombreJoueur       int       `json:"nombre_joueur"`
	Disponible         bool      `json:"disponible"`
	Description        *string   `json:"description,omitempty"`
	Bar                string    `json:"bar"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// ErrSalleNotFound is returned when a salle cannot be found in the DB.
var ErrSalleNotFound = errors.New("salle not found")

// SalleRepo encapsulates all database queries related to salles.
type SalleRepo struct {
	db *sql.DB
}

func NewSalleRepo(db *sql.DB) *SalleRepo {
	return &SalleRepo{db: db}
}

const salleCols = "id, nom, capacite_spectateur, equipement, nombre_joueur, disponible, description, bar, created_at, updated_at"

func scanSalle(row interface{ Scan(...any) error }) (*Salle, error) {
	var s Salle
	err := row.Scan(&s.ID, &s.Nom, &s.CapaciteSpectateur, &s.Equipement, &s.NombreJoueur,
		&s.Disponible, &s.Description, &s.Bar, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SalleRepo) Create(ctx context.Context, s *Salle) error {
	s.ID = uuid.NewString()
	const q = `INSERT INTO salles (id, nom, capacite_spectateur, equipement, nombre_joueur, disponible, description, bar)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, s.ID, s.Nom, s.CapaciteSpectateur, s.Equipement, s.NombreJoueur, s.Disponible, s.Description, s.Bar); err != nil {
		return err
	}
	const qSelect = "SELECT created_at, updated_at FROM salles WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, s.ID).Scan(&s.CreatedAt, &s.UpdatedAt)
}

func (r *SalleRepo) GetByID(ctx context.Context, id string) (*Salle, error) {
	s, err := scanSalle(r.db.QueryRowContext(ctx, "SELECT "+salleCols+" FROM salles WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSalleNotFound
	}
	return s, err
}

func (r *SalleRepo) listQuery(ctx context.Context, q string, args ...any) ([]*Salle, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Salle{}
	for rows.Next() {
		s, err := scanSalle(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *SalleRepo) ListAll(ctx context.Context) ([]*Salle, error) {
	return r.listQuery(ctx, "SELECT "+salleCols+" FROM salles ORDER BY created_at")
}

func (r *SalleRepo) ListByBar(ctx context.Context, barID string) ([]*Salle, error) {
	return r.listQuery(ctx, "SELECT "+salleCols+" FROM salles WHERE bar = ? ORDER BY created_at", barID)
}

// ListByOwner returns the salles of every bar the user owns.
func (r *SalleRepo) ListByOwner(ctx context.Context, ownerID string) ([]*Salle, error) {
	const q = `SELECT s.id, s.nom, s.capacite_spectateur, s.equipement, s.nombre_joueur, s.disponible,
	                  s.description, s.bar, s.created_at, s.updated_at
	           FROM salles s JOIN bars b ON b.id = s.bar
	           WHERE b.proprietaire = ? ORDER BY s.created_at`
	return r.listQuery(ctx, q, ownerID)
}

func (r *SalleRepo) Update(ctx context.Context, s *Salle) error {
	const q = `UPDATE salles SET nom = ?, capacite_spectateur = ?, equipement = ?, nombre_joueur = ?,
	           disponible = ?, description = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, s.Nom, s.CapaciteSpectateur, s.Equipement, s.NombreJoueur, s.Disponible, s.Description, s.ID)
	return err
}

// Delete removes one salle by id. This is the explicit find-and-delete path
// the consistency engine hooks onto; callers fire OnChildDeleted afterwards.
func (r *SalleRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM salles WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSalleNotFound
	}
	return nil
}
