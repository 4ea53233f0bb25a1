package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Jeu is a playable game title. Its tournaments are a virtual relation
// resolved through TournoiRepo.ListByJeu rather than a stored array.
type Jeu struct {
	ID         string    `json:"id"`
	Nom        string    `json:"nom"`
	Mode       string    `json:"mode"`
	Map        string    `json:"map"`
	Plateforme string    `json:"plateforme"`
	MinJoueur  int       `json:"min_joueur"`
	MaxJoueur  int       `json:"max_joueur"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// ErrJeuNotFound is returned when a jeu cannot be found in the DB.
var ErrJeuNotFound = errors.New("jeu not found")

// JeuRepo encapsulates all database queries related to games.
type JeuRepo struct {
	db *sql.DB
}

func NewJeuRepo(db *sql.DB) *JeuRepo {
	return &JeuRepo{db: db}
}

const jeuCols = "id, nom, mode, map, plateforme, min_joueur, max_joueur, created_at, updated_at"

func scanJeu(row interface{ Scan(...any) error }) (*Jeu, error) {
	var j Jeu
	err := row.Scan(&j.ID, &j.Nom, &j.Mode, &j.Map, &j.Plateforme, &j.MinJoueur, &j.MaxJoueur, &j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &j, nil
}

func (r *JeuRepo) Create(ctx context.Context, j *Jeu) error {
	j.ID = uuid.NewString()
	const q = `INSERT INTO jeux (id, nom, mode, map, plateforme, min_joueur, max_joueur)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, j.ID, j.Nom, j.Mode, j.Map, j.Plateforme, j.MinJoueur, j.MaxJoueur); err != nil {
		return err
	}
	const qSelect = "SELECT created_at, updated_at FROM jeux WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, j.ID).Scan(&j.CreatedAt, &j.UpdatedAt)
}

func (r *JeuRepo) GetByID(ctx context.Context, id string) (*Jeu, error) {
	j, err := scanJeu(r.db.QueryRowContext(ctx, "SELECT "+jeuCols+" FROM jeux WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJeuNotFound
	}
	return j, err
}

func (r *JeuRepo) ListAll(ctx context.Context) ([]*Jeu, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT "+jeuCols+" FROM jeux ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Jeu{}
	for rows.Next() {
		j, err := scanJeu(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func (r *JeuRepo) Update(ctx context.Context, j *Jeu) error {
	const q = `UPDATE jeux SET nom = ?, mode = ?, map = ?, plateforme = ?, min_joueur = ?, max_joueur = ?
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, j.Nom, j.Mode, j.Map, j.Plateforme, j.MinJoueur, j.MaxJoueur, j.ID)
	return err
}

func (r *JeuRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM jeux WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrJeuNotFound
	}
	return nil
}
