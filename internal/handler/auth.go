package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/repository"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/utils"
)

var emailRx = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// oldEnough counts whole calendar years, so the 13th birthday itself passes
// regardless of leap days in between.
func oldEnough(naissance, now time.Time) bool {
	return !naissance.AddDate(13, 0, 0).After(now)
}

// Signup handles POST /api/auth/signup. Emails are normalized to lower case
// so uniqueness is case-insensitive; accounts require a minimum age of 13.
func (h *Handler) Signup(c echo.Context) error {
	var body struct {
		Email           string `json:"email"`
		Password        string `json:"password"`
		Nom             string `json:"nom"`
		Prenom          string `json:"prenom"`
		DateDeNaissance string `json:"date_de_naissance"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.Email == "" || body.Password == "" || body.Nom == "" || body.Prenom == "" || body.DateDeNaissance == "" {
		return fail(c, http.StatusBadRequest, "Tous les champs sont requis.")
	}
	email := strings.ToLower(strings.TrimSpace(body.Email))
	if !emailRx.MatchString(email) {
		return fail(c, http.StatusBadRequest, "Format d'email invalide.")
	}
	if len(body.Password) < 8 {
		return fail(c, http.StatusBadRequest, "Le mot de passe doit contenir au moins 8 caractères.")
	}
	naissance, err := time.Parse(time.RFC3339, body.DateDeNaissance)
	if err != nil {
		if naissance, err = time.Parse("2006-01-02", body.DateDeNaissance); err != nil {
			return fail(c, http.StatusBadRequest, "Format de date de naissance invalide.")
		}
	}
	if !oldEnough(naissance, time.Now()) {
		return fail(c, http.StatusBadRequest, "Vous devez avoir au moins 13 ans pour vous inscrire.")
	}

	ctx := c.Request().Context()
	if _, err := h.Users.GetByEmail(ctx, email); err == nil {
		return fail(c, http.StatusConflict, "Cet email est déjà utilisé.")
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du compte.", err)
	}

	hash, err := utils.HashPassword(body.Password, h.BcryptCost)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du compte.", err)
	}
	u := &repository.User{
		Email:           email,
		PasswordHash:    hash,
		Nom:             strings.TrimSpace(body.Nom),
		Prenom:          strings.TrimSpace(body.Prenom),
		DateDeNaissance: naissance,
	}
	if err := h.Users.Create(ctx, u); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du compte.", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"message": "Utilisateur créé avec succès.", "user": u})
}

// Login handles POST /api/auth/login and returns a signed access token. A
// wrong email and a wrong password produce the same 401 on purpose.
func (h *Handler) Login(c echo.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	ctx := c.Request().Context()
	u, err := h.Users.GetByEmail(ctx, body.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusUnauthorized, "Paire login/mot de passe incorrecte.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la connexion.", err)
	}
	if !utils.VerifyPassword(u.PasswordHash, body.Password) {
		return fail(c, http.StatusUnauthorized, "Paire login/mot de passe incorrecte.")
	}
	tok, err := utils.NewAccessToken(h.JWTSecret, u.ID, h.AccessTTLMin)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la connexion.", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"userId": u.ID, "token": tok.Token, "user": u})
}

// GetUser handles GET /api/users/:id (public, password hash never leaves).
func (h *Handler) GetUser(c echo.Context) error {
	u, err := h.Users.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "Utilisateur non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération de l'utilisateur.", err)
	}
	return c.JSON(http.StatusOK, u)
}

// UpdateUser handles PUT /api/users/:id; only the account holder (or admin)
// may modify a profile.
func (h *Handler) UpdateUser(c echo.Context) error {
	id := c.Param("id")
	if !canModify(c, id) {
		return fail(c, http.StatusForbidden, "Vous ne pouvez modifier que votre propre profil.")
	}
	ctx := c.Request().Context()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "Utilisateur non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du profil.", err)
	}
	var body struct {
		Email           string `json:"email"`
		Nom             string `json:"nom"`
		Prenom          string `json:"prenom"`
		DateDeNaissance string `json:"date_de_naissance"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.Email != "" {
		u.Email = strings.ToLower(strings.TrimSpace(body.Email))
	}
	if body.Nom != "" {
		u.Nom = strings.TrimSpace(body.Nom)
	}
	if body.Prenom != "" {
		u.Prenom = strings.TrimSpace(body.Prenom)
	}
	if body.DateDeNaissance != "" {
		d, err := time.Parse(time.RFC3339, body.DateDeNaissance)
		if err != nil {
			if d, err = time.Parse("2006-01-02", body.DateDeNaissance); err != nil {
				return fail(c, http.StatusBadRequest, "Format de date de naissance invalide.")
			}
		}
		u.DateDeNaissance = d
	}
	if err := h.Users.Update(ctx, u); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du profil.", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Profil mis à jour.", "user": u})
}

// DeleteUser handles DELETE /api/users/:id (self or admin only).
func (h *Handler) DeleteUser(c echo.Context) error {
	id := c.Param("id")
	if !canModify(c, id) {
		return fail(c, http.StatusForbidden, "Vous ne pouvez supprimer que votre propre profil.")
	}
	if err := h.Users.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "Utilisateur non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du compte.", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Votre compte a été supprimé avec succès."})
}
