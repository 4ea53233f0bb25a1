package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Equipe is a team. Membres is a shared mutable set of user ids coordinated
// by captain-only and self-removal rules in the handler layer; the capitaine
// is always part of it.
type Equipe struct {
	ID           string    `json:"id"`
	Nom          string    `json:"nom"`
	Logo         *string   `json:"logo,omitempty"`
	Description  *string   `json:"description,omitempty"`
	JeuPrincipal *string   `json:"jeu_principal,omitempty"`
	Capitaine    string    `json:"capitaine"`
	Membres      []string  `json:"membres"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ErrEquipeNotFound is returned when an equipe cannot be found in the DB.
var ErrEquipeNotFound = errors.New("equipe not found")

// EquipeRepo encapsulates all database queries related to teams.
type EquipeRepo struct {
	db *sql.DB
}

func NewEquipeRepo(db *sql.DB) *EquipeRepo {
	return &EquipeRepo{db: db}
}

const equipeCols = "id, nom, logo, description, jeu_principal, capitaine, membres, created_at, updated_at"

func scanEquipe(row interface{ Scan(...any) error }) (*Equipe, error) {
	var e Equipe
	var membres []byte
	err := row.Scan(&e.ID, &e.Nom, &e.Logo, &e.Description, &e.JeuPrincipal, &e.Capitaine, &membres, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if e.Membres, err = decodeRefs(membres); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts a team. The caller seeds Membres (the creator joins as
// capitaine and first member).
func (r *EquipeRepo) Create(ctx context.Context, e *Equipe) error {
	e.ID = uuid.NewString()
	refs, err := encodeRefs(e.Membres)
	if err != nil {
		return err
	}
	const q = `INSERT INTO equipes (id, nom, logo, description, jeu_principal, capitaine, membres)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, e.ID, e.Nom, e.Logo, e.Description, e.JeuPrincipal, e.Capitaine, refs); err != nil {
		return err
	}
	const qSelect = "SELECT created_at, updated_at FROM equipes WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, e.ID).Scan(&e.CreatedAt, &e.UpdatedAt)
}

func (r *EquipeRepo) GetByID(ctx context.Context, id string) (*Equipe, error) {
	e, err := scanEquipe(r.db.QueryRowContext(ctx, "SELECT "+equipeCols+" FROM equipes WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEquipeNotFound
	}
	return e, err
}

// GetByNom resolves the unique-name constraint before inserts and renames.
func (r *EquipeRepo) GetByNom(ctx context.Context, nom string) (*Equipe, error) {
	e, err := scanEquipe(r.db.QueryRowContext(ctx, "SELECT "+equipeCols+" FROM equipes WHERE nom = ?", nom))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrEquipeNotFound
	}
	return e, err
}

func (r *EquipeRepo) listQuery(ctx context.Context, q string, args ...any) ([]*Equipe, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*Equipe{}
	for rows.Next() {
		e, err := scanEquipe(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *EquipeRepo) ListAll(ctx context.Context) ([]*Equipe, error) {
	return r.listQuery(ctx, "SELECT "+equipeCols+" FROM equipes ORDER BY created_at")
}

// ListByMember returns every team the user belongs to, as capitaine or as a
// plain member of the membres set.
func (r *EquipeRepo) ListByMember(ctx context.Context, userID string) ([]*Equipe, error) {
	const q = "SELECT " + equipeCols + ` FROM equipes
	           WHERE capitaine = ? OR JSON_CONTAINS(membres, JSON_QUOTE(?))
	           ORDER BY created_at`
	return r.listQuery(ctx, q, userID, userID)
}

// Update replaces the team metadata. Capitaine and membres are managed by
// the dedicated membership operations below.
func (r *EquipeRepo) Update(ctx context.Context, e *Equipe) error {
	const q = `UPDATE equipes SET nom = ?, logo = ?, description = ?, jeu_principal = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, e.Nom, e.Logo, e.Description, e.JeuPrincipal, e.ID)
	return err
}

// SetMembres replaces the member id set.
func (r *EquipeRepo) SetMembres(ctx context.Context, id string, membres []string) error {
	refs, err := encodeRefs(membres)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, "UPDATE equipes SET membres = ? WHERE id = ?", refs, id)
	return err
}

// TransferCapitaine reassigns the captaincy in one transaction: the equipe
// record points at the new captain and the two membership rows swap roles
// (old capitaine becomes joueur). The new captain must already be a member.
func (r *EquipeRepo) TransferCapitaine(ctx context.Context, equipeID, oldUserID, newUserID string) error {
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
	var res sql.Result
	if res, err = tx.ExecContext(ctx, "UPDATE equipes SET capitaine = ? WHERE id = ? AND capitaine = ?",
		newUserID, equipeID, oldUserID); err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// The caller checked ownership already, so a zero-row update means
		// the captaincy moved concurrently.
		err = ErrConflict
		return err
	}
	if _, err = tx.ExecContext(ctx, "UPDATE membres_team SET role = 'joueur' WHERE equipe = ? AND user = ? AND role = 'capitaine'",
		equipeID, oldUserID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "UPDATE membres_team SET role = 'capitaine' WHERE equipe = ? AND user = ?",
		equipeID, newUserID); err != nil {
		return err
	}
	return nil
}
