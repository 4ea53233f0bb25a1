package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/repository"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/rules"
)

// jeuView exposes the game's tournaments, a virtual relation resolved by
// query instead of a stored array.
type jeuView struct {
	*repository.Jeu
	Tournois []*repository.Tournoi `json:"tournois"`
}

func (h *Handler) jeuView(c echo.Context, j *repository.Jeu) *jeuView {
	v := &jeuView{Jeu: j, Tournois: []*repository.Tournoi{}}
	if ts, err := h.Tournois.ListByJeu(c.Request().Context(), j.ID); err == nil {
		v.Tournois = ts
	}
	return v
}

type jeuBody struct {
	Nom        string `json:"nom"`
	Mode       string `json:"mode"`
	Map        string `json:"map"`
	Plateforme string `json:"plateforme"`
	MinJoueur  *int   `json:"min_joueur"`
	MaxJoueur  *int   `json:"max_joueur"`
}

// CreateJeu handles POST /api/jeux. Games carry no owner; any authenticated
// user may register one.
func (h *Handler) CreateJeu(c echo.Context) error {
	var body jeuBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if strings.TrimSpace(body.Nom) == "" || strings.TrimSpace(body.Mode) == "" ||
		strings.TrimSpace(body.Plateforme) == "" || body.MinJoueur == nil || body.MaxJoueur == nil {
		return fail(c, http.StatusBadRequest, "Les champs nom, mode, plateforme, min_joueur et max_joueur sont requis.")
	}
	if *body.MinJoueur < 1 || !rules.JoueursOrdered(*body.MinJoueur, *body.MaxJoueur) {
		return fail(c, http.StatusBadRequest, "min_joueur doit être au moins 1 et inférieur ou égal à max_joueur.")
	}
	j := &repository.Jeu{
		Nom:        strings.TrimSpace(body.Nom),
		Mode:       strings.TrimSpace(body.Mode),
		Map:        strings.TrimSpace(body.Map),
		Plateforme: strings.TrimSpace(body.Plateforme),
		MinJoueur:  *body.MinJoueur,
		MaxJoueur:  *body.MaxJoueur,
	}
	if err := h.Jeux.Create(c.Request().Context(), j); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du jeu.", err)
	}
	return c.JSON(http.StatusCreated, j)
}

// ListJeux handles GET /api/jeux (public).
func (h *Handler) ListJeux(c echo.Context) error {
	jeux, err := h.Jeux.ListAll(c.Request().Context())
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des jeux.", err)
	}
	return c.JSON(http.StatusOK, jeux)
}

// GetJeu handles GET /api/jeux/:id (public), tournaments included.
func (h *Handler) GetJeu(c echo.Context) error {
	j, err := h.Jeux.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrJeuNotFound) {
			return fail(c, http.StatusNotFound, "Jeu non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération du jeu.", err)
	}
	return c.JSON(http.StatusOK, h.jeuView(c, j))
}

// JeuTournois handles GET /api/jeux/:id/tournois (public).
func (h *Handler) JeuTournois(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Jeux.GetByID(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrJeuNotFound) {
			return fail(c, http.StatusNotFound, "Jeu non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des tournois.", err)
	}
	tournois, err := h.Tournois.ListByJeu(ctx, c.Param("id"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des tournois.", err)
	}
	return c.JSON(http.StatusOK, tournois)
}

// UpdateJeu handles PUT /api/jeux/:id.
func (h *Handler) UpdateJeu(c echo.Context) error {
	ctx := c.Request().Context()
	j, err := h.Jeux.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrJeuNotFound) {
			return fail(c, http.StatusNotFound, "Jeu non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du jeu.", err)
	}
	var body jeuBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.Nom != "" {
		j.Nom = strings.TrimSpace(body.Nom)
	}
	if body.Mode != "" {
		j.Mode = strings.TrimSpace(body.Mode)
	}
	if body.Map != "" {
		j.Map = strings.TrimSpace(body.Map)
	}
	if body.Plateforme != "" {
		j.Plateforme = strings.TrimSpace(body.Plateforme)
	}
	if body.MinJoueur != nil {
		j.MinJoueur = *body.MinJoueur
	}
	if body.MaxJoueur != nil {
		j.MaxJoueur = *body.MaxJoueur
	}
	if j.MinJoueur < 1 || !rules.JoueursOrdered(j.MinJoueur, j.MaxJoueur) {
		return fail(c, http.StatusBadRequest, "min_joueur doit être au moins 1 et inférieur ou égal à max_joueur.")
	}
	if err := h.Jeux.Update(ctx, j); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du jeu.", err)
	}
	return c.JSON(http.StatusOK, j)
}

// DeleteJeu handles DELETE /api/jeux/:id. A game still referenced by
// tournaments cannot be removed.
func (h *Handler) DeleteJeu(c echo.Context) error {
	ctx := c.Request().Context()
	n, err := h.Tournois.CountByJeu(ctx, c.Param("id"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du jeu.", err)
	}
	if n > 0 {
		return fail(c, http.StatusConflict,
			fmt.Sprintf("Impossible de supprimer ce jeu : %d tournoi(s) y font encore référence.", n))
	}
	if err := h.Jeux.Delete(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrJeuNotFound) {
			return fail(c, http.StatusNotFound, "Jeu non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du jeu.", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Jeu supprimé avec succès."})
}
