package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/repository"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/rules"
)

type tournoiView struct {
	*repository.Tournoi
	Jeu      *repository.Jeu   `json:"jeu"`
	Salle    *repository.Salle `json:"salle,omitempty"`
	Createur *repository.User  `json:"createur"`
}

func (h *Handler) tournoiView(c echo.Context, t *repository.Tournoi) *tournoiView {
	ctx := c.Request().Context()
	v := &tournoiView{Tournoi: t}
	if j, err := h.Jeux.GetByID(ctx, t.Jeu); err == nil {
		v.Jeu = j
	}
	if t.Salle != nil {
		if s, err := h.Salles.GetByID(ctx, *t.Salle); err == nil {
			v.Salle = s
		}
	}
	if u, err := h.Users.GetByID(ctx, t.Createur); err == nil {
		v.Createur = u
	}
	return v
}

func (h *Handler) tournoiViews(c echo.Context, tournois []*repository.Tournoi) []*tournoiView {
	out := make([]*tournoiView, 0, len(tournois))
	for _, t := range tournois {
		out = append(out, h.tournoiView(c, t))
	}
	return out
}

type tournoiBody struct {
	Nom              string   `json:"nom"`
	Description      string   `json:"description"`
	DateDebut        string   `json:"date_debut"`
	DateFin          string   `json:"date_fin"`
	Jeu              string   `json:"jeu"`
	Salle            *string  `json:"salle"`
	PrixInscription  *float64 `json:"prix_inscription"`
	NombreEquipesMax *int     `json:"nombre_equipes_max"`
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// CreateTournoi handles POST /api/tournois. New tournaments always open in
// the à venir state; the caller becomes createur.
func (h *Handler) CreateTournoi(c echo.Context) error {
	var body tournoiBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if strings.TrimSpace(body.Nom) == "" || body.DateDebut == "" || body.DateFin == "" || body.Jeu == "" {
		return fail(c, http.StatusBadRequest, "Les champs nom, date_debut, date_fin et jeu sont requis.")
	}
	debut, err := parseDate(body.DateDebut)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Format de date_debut invalide.")
	}
	fin, err := parseDate(body.DateFin)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Format de date_fin invalide.")
	}
	if !rules.DatesOrdered(debut, fin) {
		return fail(c, http.StatusBadRequest, "La date de fin doit être postérieure à la date de début.")
	}
	if body.NombreEquipesMax != nil && *body.NombreEquipesMax < 2 {
		return fail(c, http.StatusBadRequest, "Un tournoi doit accueillir au moins 2 équipes.")
	}
	if body.PrixInscription != nil && *body.PrixInscription < 0 {
		return fail(c, http.StatusBadRequest, "Le prix d'inscription ne peut pas être négatif.")
	}
	ctx := c.Request().Context()
	if _, err := h.Jeux.GetByID(ctx, body.Jeu); err != nil {
		if errors.Is(err, repository.ErrJeuNotFound) {
			return fail(c, http.StatusNotFound, "Jeu non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du tournoi.", err)
	}
	if body.Salle != nil {
		if _, err := h.Salles.GetByID(ctx, *body.Salle); err != nil {
			if errors.Is(err, repository.ErrSalleNotFound) {
				return fail(c, http.StatusNotFound, "Salle non trouvée.")
			}
			return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du tournoi.", err)
		}
	}
	t := &repository.Tournoi{
		Nom:              strings.TrimSpace(body.Nom),
		Description:      strings.TrimSpace(body.Description),
		DateDebut:        debut,
		DateFin:          fin,
		Jeu:              body.Jeu,
		Salle:            body.Salle,
		Statut:           rules.TournoiAVenir,
		NombreEquipesMax: 16,
		Createur:         callerID(c),
	}
	if body.NombreEquipesMax != nil {
		t.NombreEquipesMax = *body.NombreEquipesMax
	}
	if body.PrixInscription != nil {
		t.PrixInscription = *body.PrixInscription
	}
	if err := h.Tournois.Create(ctx, t); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du tournoi.", err)
	}
	return c.JSON(http.StatusCreated, h.tournoiView(c, t))
}

// ListTournois handles GET /api/tournois (public).
func (h *Handler) ListTournois(c echo.Context) error {
	tournois, err := h.Tournois.ListAll(c.Request().Context())
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des tournois.", err)
	}
	return c.JSON(http.StatusOK, h.tournoiViews(c, tournois))
}

// GetTournoi handles GET /api/tournois/:id (public).
func (h *Handler) GetTournoi(c echo.Context) error {
	t, err := h.Tournois.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTournoiNotFound) {
			return fail(c, http.StatusNotFound, "Tournoi non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération du tournoi.", err)
	}
	return c.JSON(http.StatusOK, h.tournoiView(c, t))
}

// MyTournois handles GET /api/tournois/mes-tournois: the caller's own
// tournaments as createur.
func (h *Handler) MyTournois(c echo.Context) error {
	tournois, err := h.Tournois.ListByCreateur(c.Request().Context(), callerID(c))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération de vos tournois.", err)
	}
	return c.JSON(http.StatusOK, h.tournoiViews(c, tournois))
}

// TournoisByJeu handles GET /api/tournois/jeu/:jeuId (public).
func (h *Handler) TournoisByJeu(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Jeux.GetByID(ctx, c.Param("jeuId")); err != nil {
		if errors.Is(err, repository.ErrJeuNotFound) {
			return fail(c, http.StatusNotFound, "Jeu non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des tournois.", err)
	}
	tournois, err := h.Tournois.ListByJeu(ctx, c.Param("jeuId"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des tournois.", err)
	}
	return c.JSON(http.StatusOK, h.tournoiViews(c, tournois))
}

// TournoiInscriptions handles GET /api/tournois/:id/inscriptions.
func (h *Handler) TournoiInscriptions(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Tournois.GetByID(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrTournoiNotFound) {
			return fail(c, http.StatusNotFound, "Tournoi non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des inscriptions.", err)
	}
	ins, err := h.Inscriptions.ListByTournoi(ctx, c.Param("id"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des inscriptions.", err)
	}
	return c.JSON(http.StatusOK, h.inscriptionViews(c, ins))
}

// UpdateTournoi handles PUT /api/tournois/:id; createur only. The statut
// field only moves through the dedicated PATCH route.
func (h *Handler) UpdateTournoi(c echo.Context) error {
	ctx := c.Request().Context()
	t, err := h.Tournois.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTournoiNotFound) {
			return fail(c, http.StatusNotFound, "Tournoi non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du tournoi.", err)
	}
	if !canModify(c, t.Createur) {
		return fail(c, http.StatusForbidden, "Seul le créateur peut modifier ce tournoi.")
	}
	var body tournoiBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.Nom != "" {
		t.Nom = strings.TrimSpace(body.Nom)
	}
	if body.Description != "" {
		t.Description = strings.TrimSpace(body.Description)
	}
	if body.DateDebut != "" {
		d, err := parseDate(body.DateDebut)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Format de date_debut invalide.")
		}
		t.DateDebut = d
	}
	if body.DateFin != "" {
		d, err := parseDate(body.DateFin)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Format de date_fin invalide.")
		}
		t.DateFin = d
	}
	if !rules.DatesOrdered(t.DateDebut, t.DateFin) {
		return fail(c, http.StatusBadRequest, "La date de fin doit être postérieure à la date de début.")
	}
	if body.Jeu != "" && body.Jeu != t.Jeu {
		if _, err := h.Jeux.GetByID(ctx, body.Jeu); err != nil {
			if errors.Is(err, repository.ErrJeuNotFound) {
				return fail(c, http.StatusNotFound, "Jeu non trouvé.")
			}
			return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du tournoi.", err)
		}
		t.Jeu = body.Jeu
	}
	if body.Salle != nil {
		if *body.Salle == "" {
			t.Salle = nil
		} else {
			if _, err := h.Salles.GetByID(ctx, *body.Salle); err != nil {
				if errors.Is(err, repository.ErrSalleNotFound) {
					return fail(c, http.StatusNotFound, "Salle non trouvée.")
				}
				return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du tournoi.", err)
			}
			t.Salle = body.Salle
		}
	}
	if body.PrixInscription != nil {
		if *body.PrixInscription < 0 {
			return fail(c, http.StatusBadRequest, "Le prix d'inscription ne peut pas être négatif.")
		}
		t.PrixInscription = *body.PrixInscription
	}
	if body.NombreEquipesMax != nil {
		if *body.NombreEquipesMax < 2 {
			return fail(c, http.StatusBadRequest, "Un tournoi doit accueillir au moins 2 équipes.")
		}
		t.NombreEquipesMax = *body.NombreEquipesMax
	}
	if err := h.Tournois.Update(ctx, t); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du tournoi.", err)
	}
	return c.JSON(http.StatusOK, h.tournoiView(c, t))
}

// PatchTournoiStatut handles PATCH /api/tournois/:id/statut; createur only.
// Only forward steps of the lifecycle are accepted.
func (h *Handler) PatchTournoiStatut(c echo.Context) error {
	ctx := c.Request().Context()
	t, err := h.Tournois.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTournoiNotFound) {
			return fail(c, http.StatusNotFound, "Tournoi non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors du changement de statut.", err)
	}
	if !canModify(c, t.Createur) {
		return fail(c, http.StatusForbidden, "Seul le créateur peut changer le statut de ce tournoi.")
	}
	var body struct {
		Statut string `json:"statut"`
	}
	if err := c.Bind(&body); err != nil || body.Statut == "" {
		return fail(c, http.StatusBadRequest, "Le champ statut est requis.")
	}
	if !rules.ValidTournoiStatut(body.Statut) {
		return fail(c, http.StatusBadRequest, "Statut de tournoi invalide.")
	}
	if !rules.CanTransitionTournoi(t.Statut, body.Statut) {
		return fail(c, http.StatusConflict, "Transition de statut non autorisée depuis \""+t.Statut+"\".")
	}
	if err := h.Tournois.UpdateStatut(ctx, t.ID, body.Statut); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors du changement de statut.", err)
	}
	t.Statut = body.Statut
	return c.JSON(http.StatusOK, h.tournoiView(c, t))
}

// DeleteTournoi handles DELETE /api/tournois/:id; createur only. Active
// registrations block the deletion.
func (h *Handler) DeleteTournoi(c echo.Context) error {
	ctx := c.Request().Context()
	t, err := h.Tournois.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrTournoiNotFound) {
			return fail(c, http.StatusNotFound, "Tournoi non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du tournoi.", err)
	}
	if !canModify(c, t.Createur) {
		return fail(c, http.StatusForbidden, "Seul le créateur peut supprimer ce tournoi.")
	}
	n, err := h.Inscriptions.CountActive(ctx, t.ID)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du tournoi.", err)
	}
	if n > 0 {
		return fail(c, http.StatusConflict, "Impossible de supprimer un tournoi avec des inscriptions actives.")
	}
	if err := h.Tournois.Delete(ctx, t.ID); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du tournoi.", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Tournoi supprimé avec succès."})
}
