package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Inscription registers one equipe for one tournoi; the pair is unique.
type Inscription struct {
	ID              string    `json:"id"`
	DateLimite      time.Time `json:"date_limite"`
	Statut          string    `json:"statut"`
	Classement      *int      `json:"classement,omitempty"`
	Tournoi         string    `json:"tournoi"`
	Equipe          string    `json:"equipe"`
	PrixPaye        float64   `json:"prix_paye"`
	Commentaire     *string   `json:"commentaire,omitempty"`
	DateInscription time.Time `json:"date_inscription"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ErrInscriptionNotFound is returned when a registration cannot be found.
var ErrInscriptionNotFound = errors.New("inscription not found")

// InscriptionRepo encapsulates all database queries related to tournament
// registrations.
type InscriptionRepo struct {
	db *sql.DB
}

func NewInscriptionRepo(db *sql.DB) *InscriptionRepo {
	return &InscriptionRepo{db: db}
}

const inscriptionCols = "id, date_limite, statut, classement, tournoi, equipe, prix_paye, commentaire, date_inscription, created_at, updated_at"

func scanInscription(row interface{ Scan(...any) error }) (*Inscription, error) {
	var i Inscription
	err := row.Scan(&i.ID, &i.DateLimite, &i.Statut, &i.Classement, &i.Tournoi, &i.Equipe,
		&i.PrixPaye, &i.Commentaire, &i.DateInscription, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *InscriptionRepo) Create(ctx context.Context, i *Inscription) error {
	i.ID = uuid.NewString()
	if i.DateInscription.IsZero() {
		i.DateInscription = time.Now().UTC()
	}
	const q = `INSERT INTO inscriptions (id, date_limite, statut, classement, tournoi, equipe, prix_paye, commentaire, date_inscription)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, i.ID, i.DateLimite, i.Statut, i.Classement, i.Tournoi, i.Equipe,
		i.PrixPaye, i.Commentaire, i.DateInscription); err != nil {
		return err
	}
	const qSelect = "SELECT created_at, updated_at FROM inscriptions WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, i.ID).Scan(&i.CreatedAt, &i.UpdatedAt)
}

func (r *InscriptionRepo) GetByID(ctx context.Context, id string) (*Inscription, error) {
	i, err := scanInscription(r.db.QueryRowContext(ctx, "SELECT "+inscriptionCols+" FROM inscriptions WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInscriptionNotFound
	}
	return i, err
}

// FindByTournoiAndEquipe resolves the unique pair constraint before inserts.
func (r *InscriptionRepo) FindByTournoiAndEquipe(ctx context.Context, tournoiID, equipeID string) (*Inscription, error) {
	const q = "SELECT " + inscriptionCols + " FROM inscriptions WHERE tournoi = ? AND equipe = ?"
	i, err := scanInscription(r.db.QueryRowContext(ctx, q, tournoiID, equipeID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInscriptionNotFound
	}
	return i, err
}

// CountActive counts pending plus accepted registrations for capacity checks.
func (r *InscriptionRepo) CountActive(ctx context.Context, tournoiID string) (int, error) {
	const q = "SELECT COUNT(*) FROM inscriptions WHERE tournoi = ? AND statut IN ('en_attente', 'acceptee')"
	var n int
	err := r.db.QueryRowContext(ctx, q, tournoiID).Scan(&n)
	return n, err
}

func (r *InscriptionRepo) listQuery(ctx context.Context, q string, args ...any) ([]*Inscription, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Inscription{}
	for rows.Next() {
		i, err := scanInscription(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, i)
	}
	return out, rows.Err()
}

func (r *InscriptionRepo) ListAll(ctx context.Context) ([]*Inscription, error) {
	return r.listQuery(ctx, "SELECT "+inscriptionCols+" FROM inscriptions ORDER BY date_inscription")
}

func (r *InscriptionRepo) ListByTournoi(ctx context.Context, tournoiID string) ([]*Inscription, error) {
	return r.listQuery(ctx, "SELECT "+inscriptionCols+" FROM inscriptions WHERE tournoi = ? ORDER BY date_inscription", tournoiID)
}

func (r *InscriptionRepo) ListByEquipe(ctx context.Context, equipeID string) ([]*Inscription, error) {
	return r.listQuery(ctx, "SELECT "+inscriptionCols+" FROM inscriptions WHERE equipe = ? ORDER BY date_inscription", equipeID)
}

// ListByEquipes returns the registrations of any of the given teams; used by
// "mes inscriptions" which fans out from the caller's memberships.
func (r *InscriptionRepo) ListByEquipes(ctx context.Context, equipeIDs []string) ([]*Inscription, error) {
	if len(equipeIDs) == 0 {
		return []*Inscription{}, nil
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(equipeIDs)), ",")
	args := make([]any, len(equipeIDs))
	for idx, id := range equipeIDs {
		args[idx] = id
	}
	q := "SELECT " + inscriptionCols + " FROM inscriptions WHERE equipe IN (" + placeholders + ") ORDER BY date_inscription"
	return r.listQuery(ctx, q, args...)
}

func (r *InscriptionRepo) Update(ctx context.Context, i *Inscription) error {
	const q = `UPDATE inscriptions SET date_limite = ?, statut = ?, classement = ?, prix_paye = ?, commentaire = ?
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, i.DateLimite, i.Statut, i.Classement, i.PrixPaye, i.Commentaire, i.ID)
	return err
}

func (r *InscriptionRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM inscriptions WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrInscriptionNotFound
	}
	return nil
}
