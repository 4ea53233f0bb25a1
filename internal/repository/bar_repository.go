package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Bar is a venue owned by exactly one user. Salles holds the denormalized
// ids of the rooms whose `bar` foreign key points here; the consistency
// engine keeps it equal to that live set.
type Bar struct {
	ID           string    `json:"id"`
	Nom          string    `json:"nom"`
	Adresse      string    `json:"adresse"`
	Email        string    `json:"email"`
	Telephone    *string   `json:"telephone,omitempty"`
	Horaires     *string   `json:"horaires,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Proprietaire string    `json:"proprietaire"`
	Salles       []string  `json:"salles"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ErrBarNotFound is returned when a bar cannot be found in the DB.
var ErrBarNotFound = errors.New("bar not found")

// BarRepo encapsulates all database queries related to bars.
type BarRepo struct {
	db *sql.DB
}

func NewBarRepo(db *sql.DB) *BarRepo {
	return &BarRepo{db: db}
}

const barCols = "id, nom, adresse, email, telephone, horaires, description, proprietaire, salles, created_at, updated_at"

func scanBar(row interface{ Scan(...any) error }) (*Bar, error) {
	var b Bar
	var salles []byte
	err := row.Scan(&b.ID, &b.Nom, &b.Adresse, &b.Email, &b.Telephone, &b.Horaires,
		&b.Description, &b.Proprietaire, &salles, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if b.Salles, err = decodeRefs(salles); err != nil {
		return nil, err
	}
	return &b, nil
}

// Create inserts a bar with an empty salles array and a fresh id.
func (r *BarRepo) Create(ctx context.Context, b *Bar) error {
	b.ID = uuid.NewString()
	refs, err := encodeRefs(nil)
	if err != nil {
		return err
	}
	const q = `INSERT INTO bars (id, nom, adresse, email, telephone, horaires, description, proprietaire, salles)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, b.ID, b.Nom, b.Adresse, b.Email, b.Telephone, b.Horaires, b.Description, b.Proprietaire, refs); err != nil {
		return err
	}
	b.Salles = []string{}
	const qSelect = "SELECT created_at, updated_at FROM bars WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, b.ID).Scan(&b.CreatedAt, &b.UpdatedAt)
}

func (r *BarRepo) GetByID(ctx context.Context, id string) (*Bar, error) {
	b, err := scanBar(r.db.QueryRowContext(ctx, "SELECT "+barCols+" FROM bars WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBarNotFound
	}
	return b, err
}

// GetByEmail resolves the unique-email constraint before inserts.
func (r *BarRepo) GetByEmail(ctx context.Context, email string) (*Bar, error) {
	const q = "SELECT " + barCols + " FROM bars WHERE LOWER(email) = LOWER(?)"
	b, err := scanBar(r.db.QueryRowContext(ctx, q, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBarNotFound
	}
	return b, err
}

func (r *BarRepo) listQuery(ctx context.Context, q string, args ...any) ([]*Bar, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Bar{}
	for rows.Next() {
		b, err := scanBar(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BarRepo) ListAll(ctx context.Context) ([]*Bar, error) {
	return r.listQuery(ctx, "SELECT "+barCols+" FROM bars ORDER BY created_at")
}

func (r *BarRepo) ListByOwner(ctx context.Context, ownerID string) ([]*Bar, error) {
	return r.listQuery(ctx, "SELECT "+barCols+" FROM bars WHERE proprietaire = ? ORDER BY created_at", ownerID)
}

// Update replaces the descriptive fields. The owner and the salles array are
// never written here: ownership is immutable and the array belongs to the
// consistency engine.
func (r *BarRepo) Update(ctx context.Context, b *Bar) error {
	const q = `UPDATE bars SET nom = ?, adresse = ?, email = ?, telephone = ?, horaires = ?, description = ?
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, b.Nom, b.Adresse, b.Email, b.Telephone, b.Horaires, b.Description, b.ID)
	return err
}

// DeleteCascade removes the bar together with every salle that references
// it, inside one transaction. This is the bulk-delete path that bypasses the
// consistency engine: the parent disappears in the same logical operation,
// so no incremental array bookkeeping is needed.
func (r *BarRepo) DeleteCascade(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	if _, err = tx.ExecContext(ctx, "DELETE FROM salles WHERE bar = ?", id); err != nil {
		return err
	}
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "DELETE FROM bars WHERE id = ?", id); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		err = ErrBarNotFound
		return err
	}
	return nil
}

// SalleLinks exposes the bar.salles reference array to the consistency
// engine as a RefStore.
type SalleLinks struct {
	r *BarRepo
}

func (r *BarRepo) SalleLinks() SalleLinks { return SalleLinks{r: r} }

func (l SalleLinks) Refs(ctx context.Context, barID string) ([]string, error) {
	var raw []byte
	err := l.r.db.QueryRowContext(ctx, "SELECT salles FROM bars WHERE id = ?", barID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBarNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeRefs(raw)
}

func (l SalleLinks) SetRefs(ctx context.Context, barID string, refs []string) error {
	raw, err := encodeRefs(refs)
	if err != nil {
		return err
	}
	_, err = l.r.db.ExecContext(ctx, "UPDATE bars SET salles = ? WHERE id = ?", raw, barID)
	return err
}
