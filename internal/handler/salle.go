package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/consistency"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/repository"
)

type salleView struct {
	*repository.Salle
	Bar *repository.Bar `json:"bar"`
}

func (h *Handler) salleView(c echo.Context, s *repository.Salle) *salleView {
	v := &salleView{Salle: s}
	if b, err := h.Bars.GetByID(c.Request().Context(), s.Bar); err == nil {
		v.Bar = b
	}
	return v
}

func (h *Handler) salleViews(c echo.Context, salles []*repository.Salle) []*salleView {
	out := make([]*salleView, 0, len(salles))
	for _, s := range salles {
		out = append(out, h.salleView(c, s))
	}
	return out
}

type salleBody struct {
	Nom                string  `json:"nom"`
	CapaciteSpectateur *int    `json:"capacite_spectateur"`
	Equipement         string  `json:"equipement"`
	NombreJoueur       *int    `json:"nombre_joueur"`
	Disponible         *bool   `json:"disponible"`
	Description        *string `json:"description"`
	Bar                string  `json:"bar"`
}

// CreateSalle handles POST /api/salles. The caller must own the target bar;
// on success the bar's salle list is brought up to date.
func (h *Handler) CreateSalle(c echo.Context) error {
	var body salleBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if strings.TrimSpace(body.Nom) == "" || body.CapaciteSpectateur == nil ||
		strings.TrimSpace(body.Equipement) == "" || body.NombreJoueur == nil || body.Bar == "" {
		return fail(c, http.StatusBadRequest, "Les champs nom, capacite_spectateur, equipement, nombre_joueur et bar sont requis.")
	}
	if *body.CapaciteSpectateur < 0 || *body.NombreJoueur < 0 {
		return fail(c, http.StatusBadRequest, "Les capacités doivent être positives.")
	}
	ctx := c.Request().Context()
	bar, err := h.Bars.GetByID(ctx, body.Bar)
	if err != nil {
		if errors.Is(err, repository.ErrBarNotFound) {
			return fail(c, http.StatusNotFound, "Bar non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création de la salle.", err)
	}
	if !canModify(c, bar.Proprietaire) {
		return fail(c, http.StatusForbidden, "Vous ne pouvez créer une salle que dans vos propres bars.")
	}
	s := &repository.Salle{
		Nom:                strings.TrimSpace(body.Nom),
		CapaciteSpectateur: *body.CapaciteSpectateur,
		Equipement:         strings.TrimSpace(body.Equipement),
		NombreJoueur:       *body.NombreJoueur,
		Disponible:         true,
		Description:        body.Description,
		Bar:                bar.ID,
	}
	if body.Disponible != nil {
		s.Disponible = *body.Disponible
	}
	if err := h.Salles.Create(ctx, s); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création de la salle.", err)
	}
	if err := consistency.OnChildCreated(ctx, h.Bars.SalleLinks(), s.Bar, s.ID); err != nil {
		log.Printf("consistency: bar %s salles add %s: %v", s.Bar, s.ID, err)
	}
	return c.JSON(http.StatusCreated, h.salleView(c, s))
}

// ListSalles handles GET /api/salles (public).
func (h *Handler) ListSalles(c echo.Context) error {
	salles, err := h.Salles.ListAll(c.Request().Context())
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des salles.", err)
	}
	return c.JSON(http.StatusOK, h.salleViews(c, salles))
}

// GetSalle handles GET /api/salles/:id (public).
func (h *Handler) GetSalle(c echo.Context) error {
	s, err := h.Salles.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSalleNotFound) {
			return fail(c, http.StatusNotFound, "Salle non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération de la salle.", err)
	}
	return c.JSON(http.StatusOK, h.salleView(c, s))
}

// SallesByBar handles GET /api/salles/bar/:barId (public).
func (h *Handler) SallesByBar(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Bars.GetByID(ctx, c.Param("barId")); err != nil {
		if errors.Is(err, repository.ErrBarNotFound) {
			return fail(c, http.StatusNotFound, "Bar non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des salles.", err)
	}
	salles, err := h.Salles.ListByBar(ctx, c.Param("barId"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des salles.", err)
	}
	return c.JSON(http.StatusOK, h.salleViews(c, salles))
}

// MySalles handles GET /api/salles/mes-salles: every salle of every bar the
// caller owns.
func (h *Handler) MySalles(c echo.Context) error {
	salles, err := h.Salles.ListByOwner(c.Request().Context(), callerID(c))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération de vos salles.", err)
	}
	return c.JSON(http.StatusOK, h.salleViews(c, salles))
}

// UpdateSalle handles PUT /api/salles/:id; bar owner only. The owning bar
// cannot be changed after creation.
func (h *Handler) UpdateSalle(c echo.Context) error {
	ctx := c.Request().Context()
	s, err := h.Salles.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSalleNotFound) {
			return fail(c, http.StatusNotFound, "Salle non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de la salle.", err)
	}
	bar, err := h.Bars.GetByID(ctx, s.Bar)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de la salle.", err)
	}
	if !canModify(c, bar.Proprietaire) {
		return fail(c, http.StatusForbidden, "Vous ne pouvez modifier que les salles de vos propres bars.")
	}
	var body salleBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.Nom != "" {
		s.Nom = strings.TrimSpace(body.Nom)
	}
	if body.CapaciteSpectateur != nil {
		if *body.CapaciteSpectateur < 0 {
			return fail(c, http.StatusBadRequest, "Les capacités doivent être positives.")
		}
		s.CapaciteSpectateur = *body.CapaciteSpectateur
	}
	if body.Equipement != "" {
		s.Equipement = strings.TrimSpace(body.Equipement)
	}
	if body.NombreJoueur != nil {
		if *body.NombreJoueur < 0 {
			return fail(c, http.StatusBadRequest, "Les capacités doivent être positives.")
		}
		s.NombreJoueur = *body.NombreJoueur
	}
	if body.Disponible != nil {
		s.Disponible = *body.Disponible
	}
	if body.Description != nil {
		s.Description = body.Description
	}
	if err := h.Salles.Update(ctx, s); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de la salle.", err)
	}
	return c.JSON(http.StatusOK, h.salleView(c, s))
}

// DeleteSalle handles DELETE /api/salles/:id; bar owner only. The salle id
// is removed from its bar afterwards; a failed bookkeeping write is logged
// but the deletion stands.
func (h *Handler) DeleteSalle(c echo.Context) error {
	ctx := c.Request().Context()
	s, err := h.Salles.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrSalleNotFound) {
			return fail(c, http.StatusNotFound, "Salle non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression de la salle.", err)
	}
	bar, err := h.Bars.GetByID(ctx, s.Bar)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression de la salle.", err)
	}
	if !canModify(c, bar.Proprietaire) {
		return fail(c, http.StatusForbidden, "Vous ne pouvez supprimer que les salles de vos propres bars.")
	}
	if err := h.Salles.Delete(ctx, s.ID); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression de la salle.", err)
	}
	if err := consistency.OnChildDeleted(ctx, h.Bars.SalleLinks(), s.Bar, s.ID); err != nil {
		log.Printf("consistency: bar %s salles remove %s: %v", s.Bar, s.ID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Salle supprimée avec succès."})
}
