package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/consistency"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/repository"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/rules"
)

type partieView struct {
	*repository.Partie
	Match   *repository.Match    `json:"match"`
	Streams []*repository.Stream `json:"streams"`
}

func (h *Handler) partieView(c echo.Context, p *repository.Partie) *partieView {
	ctx := c.Request().Context()
	v := &partieView{Partie: p, Streams: []*repository.Stream{}}
	if m, err := h.Matchs.GetByID(ctx, p.Match); err == nil {
		v.Match = m
	}
	if ss, err := h.Streams.ListByPartie(ctx, p.ID); err == nil {
		v.Streams = ss
	}
	return v
}

func (h *Handler) partieViews(c echo.Context, parties []*repository.Partie) []*partieView {
	out := make([]*partieView, 0, len(parties))
	for _, p := range parties {
		out = append(out, h.partieView(c, p))
	}
	return out
}

// partieCreateur walks partie → match → tournoi to find the owner.
func (h *Handler) partieCreateur(c echo.Context, p *repository.Partie) (string, error) {
	m, err := h.Matchs.GetByID(c.Request().Context(), p.Match)
	if err != nil {
		return "", err
	}
	return h.matchCreateur(c, m)
}

type partieBody struct {
	Score     string  `json:"score"`
	Map       string  `json:"map"`
	Duree     *int    `json:"duree"`
	DateDebut *string `json:"date_debut"`
	DateFin   *string `json:"date_fin"`
	Match     string  `json:"match"`
}

// CreatePartie handles POST /api/parties; tournament createur only. The
// owning match's parties list is brought up to date after the insert.
func (h *Handler) CreatePartie(c echo.Context) error {
	var body partieBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.Map == "" || body.Match == "" {
		return fail(c, http.StatusBadRequest, "Les champs map et match sont requis.")
	}
	if body.Duree != nil && *body.Duree < 0 {
		return fail(c, http.StatusBadRequest, "La durée ne peut pas être négative.")
	}
	ctx := c.Request().Context()
	m, err := h.Matchs.GetByID(ctx, body.Match)
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return fail(c, http.StatusNotFound, "Match non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création de la partie.", err)
	}
	createur, err := h.matchCreateur(c, m)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création de la partie.", err)
	}
	if !canModify(c, createur) {
		return fail(c, http.StatusForbidden, "Seul le créateur du tournoi peut créer des parties.")
	}
	p := &repository.Partie{
		Score: body.Score,
		Map:   body.Map,
		Duree: body.Duree,
		Match: m.ID,
	}
	if body.DateDebut != nil && *body.DateDebut != "" {
		d, err := parseDate(*body.DateDebut)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Format de date_debut invalide.")
		}
		p.DateDebut = d
	}
	if body.DateFin != nil && *body.DateFin != "" {
		d, err := parseDate(*body.DateFin)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Format de date_fin invalide.")
		}
		if !p.DateDebut.IsZero() && !rules.DatesOrdered(p.DateDebut, d) {
			return fail(c, http.StatusBadRequest, "La date de fin doit être postérieure à la date de début.")
		}
		p.DateFin = &d
	}
	if err := h.Parties.Create(ctx, p); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création de la partie.", err)
	}
	if err := consistency.OnChildCreated(ctx, h.Matchs.PartieLinks(), p.Match, p.ID); err != nil {
		log.Printf("consistency: match %s parties add %s: %v", p.Match, p.ID, err)
	}
	return c.JSON(http.StatusCreated, h.partieView(c, p))
}

// ListParties handles GET /api/parties (public).
func (h *Handler) ListParties(c echo.Context) error {
	parties, err := h.Parties.ListAll(c.Request().Context())
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des parties.", err)
	}
	return c.JSON(http.StatusOK, h.partieViews(c, parties))
}

// GetPartie handles GET /api/parties/:id (public).
func (h *Handler) GetPartie(c echo.Context) error {
	p, err := h.Parties.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPartieNotFound) {
			return fail(c, http.StatusNotFound, "Partie non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération de la partie.", err)
	}
	return c.JSON(http.StatusOK, h.partieView(c, p))
}

// PartiesByMatch handles GET /api/parties/match/:matchId (public).
func (h *Handler) PartiesByMatch(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Matchs.GetByID(ctx, c.Param("matchId")); err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return fail(c, http.StatusNotFound, "Match non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des parties.", err)
	}
	parties, err := h.Parties.ListByMatch(ctx, c.Param("matchId"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des parties.", err)
	}
	return c.JSON(http.StatusOK, h.partieViews(c, parties))
}

// UpdatePartie handles PUT /api/parties/:id; tournament createur only. The
// owning match never changes.
func (h *Handler) UpdatePartie(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.Parties.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPartieNotFound) {
			return fail(c, http.StatusNotFound, "Partie non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de la partie.", err)
	}
	createur, err := h.partieCreateur(c, p)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de la partie.", err)
	}
	if !canModify(c, createur) {
		return fail(c, http.StatusForbidden, "Seul le créateur du tournoi peut modifier cette partie.")
	}
	var body partieBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.Score != "" {
		p.Score = body.Score
	}
	if body.Map != "" {
		p.Map = body.Map
	}
	if body.Duree != nil {
		if *body.Duree < 0 {
			return fail(c, http.StatusBadRequest, "La durée ne peut pas être négative.")
		}
		p.Duree = body.Duree
	}
	if body.DateDebut != nil && *body.DateDebut != "" {
		d, err := parseDate(*body.DateDebut)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Format de date_debut invalide.")
		}
		p.DateDebut = d
	}
	if body.DateFin != nil {
		if *body.DateFin == "" {
			p.DateFin = nil
		} else {
			d, err := parseDate(*body.DateFin)
			if err != nil {
				return fail(c, http.StatusBadRequest, "Format de date_fin invalide.")
			}
			p.DateFin = &d
		}
	}
	if p.DateFin != nil && !rules.DatesOrdered(p.DateDebut, *p.DateFin) {
		return fail(c, http.StatusBadRequest, "La date de fin doit être postérieure à la date de début.")
	}
	if err := h.Parties.Update(ctx, p); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de la partie.", err)
	}
	return c.JSON(http.StatusOK, h.partieView(c, p))
}

// DeletePartie handles DELETE /api/parties/:id; tournament createur only.
// The partie id is removed from its match afterwards; a failed bookkeeping
// write is logged but the deletion stands.
func (h *Handler) DeletePartie(c echo.Context) error {
	ctx := c.Request().Context()
	p, err := h.Parties.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrPartieNotFound) {
			return fail(c, http.StatusNotFound, "Partie non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression de la partie.", err)
	}
	createur, err := h.partieCreateur(c, p)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression de la partie.", err)
	}
	if !canModify(c, createur) {
		return fail(c, http.StatusForbidden, "Seul le créateur du tournoi peut supprimer cette partie.")
	}
	streams, err := h.Streams.ListByPartie(ctx, p.ID)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression de la partie.", err)
	}
	if len(streams) > 0 {
		return fail(c, http.StatusConflict, "Impossible de supprimer une partie qui a encore des streams.")
	}
	if err := h.Parties.Delete(ctx, p.ID); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression de la partie.", err)
	}
	if err := consistency.OnChildDeleted(ctx, h.Matchs.PartieLinks(), p.Match, p.ID); err != nil {
		log.Printf("consistency: match %s parties remove %s: %v", p.Match, p.ID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Partie supprimée avec succès."})
}
