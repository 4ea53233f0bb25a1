package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Tournoi is a tournament for one game, optionally hosted in a salle. Its
// inscriptions and matchs are virtual relations resolved through the
// respective repositories.
type Tournoi struct {
	ID               string    `json:"id"`
	Nom              string    `json:"nom"`
	Description      string    `json:"description"`
	DateDebut        time.Time `json:"date_debut"`
	DateFin          time.Time `json:"date_fin"`
	Jeu              string    `json:"jeu"`
	Salle            *string   `json:"salle,omitempty"`
	Statut           string    `json:"statut"`
	PrixInscription  float64   `json:"prix_inscription"`
	NombreEquipesMax int       `json:"nombre_equipes_max"`
	Createur         string    `json:"createur"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ErrTournoiNotFound is returned when a tournoi cannot be found in the DB.
var ErrTournoiNotFound = errors.New("tournoi not found")

// TournoiRepo encapsulates all database queries related to tournaments.
type TournoiRepo struct {
	db *sql.DB
}

func NewTournoiRepo(db *sql.DB) *TournoiRepo {
	return &TournoiRepo{db: db}
}

const tournoiCols = "id, nom, description, date_debut, date_fin, jeu, salle, statut, prix_inscription, nombre_equipes_max, createur, created_at, updated_at"

func scanTournoi(row interface{ Scan(...any) error }) (*Tournoi, error) {
	var t Tournoi
	err := row.Scan(&t.ID, &t.Nom, &t.Description, &t.DateDebut, &t.DateFin, &t.Jeu, &t.Salle,
		&t.Statut, &t.PrixInscription, &t.NombreEquipesMax, &t.Createur, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TournoiRepo) Create(ctx context.Context, t *Tournoi) error {
	t.ID = uuid.NewString()
	const q = `INSERT INTO tournois (id, nom, description, date_debut, date_fin, jeu, salle, statut, prix_inscription, nombre_equipes_max, createur)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, t.ID, t.Nom, t.Description, t.DateDebut, t.DateFin, t.Jeu, t.Salle,
		t.Statut, t.PrixInscription, t.NombreEquipesMax, t.Createur); err != nil {
		return err
	}
	const qSelect = "SELECT created_at, updated_at FROM tournois WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, t.ID).Scan(&t.CreatedAt, &t.UpdatedAt)
}

func (r *TournoiRepo) GetByID(ctx context.Context, id string) (*Tournoi, error) {
	t, err := scanTournoi(r.db.QueryRowContext(ctx, "SELECT "+tournoiCols+" FROM tournois WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTournoiNotFound
	}
	return t, err
}

func (r *TournoiRepo) listQuery(ctx context.Context, q string, args ...any) ([]*Tournoi, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Tournoi{}
	for rows.Next() {
		t, err := scanTournoi(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TournoiRepo) ListAll(ctx context.Context) ([]*Tournoi, error) {
	return r.listQuery(ctx, "SELECT "+tournoiCols+" FROM tournois ORDER BY date_debut DESC")
}

func (r *TournoiRepo) ListByCreateur(ctx context.Context, userID string) ([]*Tournoi, error) {
	return r.listQuery(ctx, "SELECT "+tournoiCols+" FROM tournois WHERE createur = ? ORDER BY date_debut DESC", userID)
}

func (r *TournoiRepo) ListByJeu(ctx context.Context, jeuID string) ([]*Tournoi, error) {
	return r.listQuery(ctx, "SELECT "+tournoiCols+" FROM tournois WHERE jeu = ? ORDER BY date_debut DESC", jeuID)
}

// CountByJeu guards jeu deletion: a game with tournaments cannot be removed.
func (r *TournoiRepo) CountByJeu(ctx context.Context, jeuID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM tournois WHERE jeu = ?", jeuID).Scan(&n)
	return n, err
}

func (r *TournoiRepo) Update(ctx context.Context, t *Tournoi) error {
	const q = `UPDATE tournois SET nom = ?, description = ?, date_debut = ?, date_fin = ?, jeu = ?, salle = ?,
	           statut = ?, prix_inscription = ?, nombre_equipes_max = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, t.Nom, t.Description, t.DateDebut, t.DateFin, t.Jeu, t.Salle,
		t.Statut, t.PrixInscription, t.NombreEquipesMax, t.ID)
	return err
}

func (r *TournoiRepo) UpdateStatut(ctx context.Context, id, statut string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE tournois SET statut = ? WHERE id = ?", statut, id)
	return err
}

func (r *TournoiRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM tournois WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrTournoiNotFound
	}
	return nil
}
