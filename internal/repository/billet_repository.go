package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Billet is a ticket for a salle, optionally tied to a tournoi. The code is
// generated server-side at creation and is immutable.
type Billet struct {
	ID            string     `json:"id"`
	Type          string     `json:"type"`
	Prix          float64    `json:"prix"`
	Quantite      int        `json:"quantite"`
	User          string     `json:"user"`
	Salle         string     `json:"salle"`
	Tournoi       *string    `json:"tournoi,omitempty"`
	Statut        string     `json:"statut"`
	CodeQR        string     `json:"code_qr"`
	DateAchat     time.Time  `json:"date_achat"`
	DateEvenement *time.Time `json:"date_evenement,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// ErrBilletNotFound is returned when a ticket cannot be found in the DB.
var ErrBilletNotFound = errors.New("billet not found")

// BilletRepo encapsulates all database queries related to tickets.
type BilletRepo struct {
	db *sql.DB
}

func NewBilletRepo(db *sql.DB) *BilletRepo {
	return &BilletRepo{db: db}
}

const billetCols = "id, type, prix, quantite, user, salle, tournoi, statut, code_qr, date_achat, date_evenement, created_at, updated_at"

func scanBillet(row interface{ Scan(...any) error }) (*Billet, error) {
	var b Billet
	err := row.Scan(&b.ID, &b.Type, &b.Prix, &b.Quantite, &b.User, &b.Salle, &b.Tournoi,
		&b.Statut, &b.CodeQR, &b.DateAchat, &b.DateEvenement, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *BilletRepo) Create(ctx context.Context, b *Billet) error {
	b.ID = uuid.NewString()
	if b.DateAchat.IsZero() {
		b.DateAchat = time.Now().UTC()
	}
	const q = `INSERT INTO billets (id, type, prix, quantite, user, salle, tournoi, statut, code_qr, date_achat, date_evenement)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, b.ID, b.Type, b.Prix, b.Quantite, b.User, b.Salle, b.Tournoi,
		b.Statut, b.CodeQR, b.DateAchat, b.DateEvenement); err != nil {
		return err
	}
	const qSelect = "SELECT created_at, updated_at FROM billets WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *BilletRepo) GetByID(ctx context.Context, id string) (*Billet, error) {
	b, err := scanBillet(r.db.QueryRowContext(ctx, "SELECT "+billetCols+" FROM billets WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBilletNotFound
	}
	return b, err
}

func (r *BilletRepo) listQuery(ctx context.Context, q string, args ...any) ([]*Billet, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Billet{}
	for rows.Next() {
		b, err := scanBillet(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BilletRepo) ListAll(ctx context.Context) ([]*Billet, error) {
	return r.listQuery(ctx, "SELECT "+billetCols+" FROM billets ORDER BY date_achat DESC")
}

func (r *BilletRepo) ListByUser(ctx context.Context, userID string) ([]*Billet, error) {
	return r.listQuery(ctx, "SELECT "+billetCols+" FROM billets WHERE user = ? ORDER BY date_achat DESC", userID)
}

// Update replaces the mutable commercial fields; status changes go through
// UpdateStatut so the state machine stays in one place.
func (r *BilletRepo) Update(ctx context.Context, b *Billet) error {
	const q = "UPDATE billets SET type = ?, prix = ?, quantite = ?, date_evenement = ? WHERE id = ?"
	_, err := r.db.ExecContext(ctx, q, b.Type, b.Prix, b.Quantite, b.DateEvenement, b.ID)
	return err
}

func (r *BilletRepo) UpdateStatut(ctx context.Context, id, statut string) error {
	_, err := r.db.ExecContext(ctx, "UPDATE billets SET statut = ? WHERE id = ?", statut, id)
	return err
}

func (r *BilletRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM billets WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBilletNotFound
	}
	return nil
}
