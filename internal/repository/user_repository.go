package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// User is an account holder. The password hash never leaves the API; the
// JSON tag hides it from every serialized response.
type User struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Nom             string    `json:"nom"`
	Prenom          string    `json:"prenom"`
	DateDeNaissance time.Time `json:"date_de_naissance"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// ErrUserNotFound is returned when a user cannot be found in the DB.
var ErrUserNotFound = errors.New("user not found")

// UserRepo encapsulates all database queries related to users.
type UserRepo struct {
	db *sql.DB
}

func NewUserRepo(db *sql.DB) *UserRepo {
	return &UserRepo{db: db}
}

const userCols = "id, email, password_hash, nom, prenom, date_de_naissance, created_at, updated_at"

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Nom, &u.Prenom, &u.DateDeNaissance, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user with a fresh server-generated id and reads the
// default timestamp columns back so callers get a fully populated record.
func (r *UserRepo) Create(ctx context.Context, u *User) error {
	u.ID = uuid.NewString()
	const q = `INSERT INTO users (id, email, password_hash, nom, prenom, date_de_naissance)
	           VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.PasswordHash, u.Nom, u.Prenom, u.DateDeNaissance); err != nil {
		return err
	}
	const qSelect = "SELECT created_at, updated_at FROM users WHERE id = ?"
	return r.db.QueryRowContext(ctx, qSelect, u.ID).Scan(&u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepo) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, "SELECT "+userCols+" FROM users WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// GetByEmail looks a user up case-insensitively; email uniqueness is
// enforced the same way at signup.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*User, error) {
	const q = "SELECT " + userCols + " FROM users WHERE LOWER(email) = LOWER(?)"
	u, err := scanUser(r.db.QueryRowContext(ctx, q, email))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return u, err
}

// Update replaces the mutable profile fields. Existence is checked by the
// caller; RowsAffected is not inspected because MySQL reports zero when the
// values are unchanged.
func (r *UserRepo) Update(ctx context.Context, u *User) error {
	const q = `UPDATE users SET email = ?, nom = ?, prenom = ?, date_de_naissance = ? WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, u.Email, u.Nom, u.Prenom, u.DateDeNaissance, u.ID)
	return err
}

func (r *UserRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrUserNotFound
	}
	return nil
}
