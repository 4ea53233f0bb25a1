package handler

import (
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/consistency"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/repository"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/rules"
)

type streamView struct {
	*repository.Stream
	Partie *repository.Partie `json:"partie"`
}

func (h *Handler) streamView(c echo.Context, s *repository.Stream) *streamView {
	v := &streamView{Stream: s}
	if p, err := h.Parties.GetByID(c.Request().Context(), s.Partie); err == nil {
		v.Partie = p
	}
	return v
}

func (h *Handler) streamViews(c echo.Context, streams []*repository.Stream) []*streamView {
	out := make([]*streamView, 0, len(streams))
	for _, s := range streams {
		out = append(out, h.streamView(c, s))
	}
	return out
}

func validStreamURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

type streamBody struct {
	Nom        string `json:"nom"`
	Plateforme string `json:"plateforme"`
	URL        string `json:"url"`
	Partie     string `json:"partie"`
}

// CreateStream handles POST /api/streams; tournament createur only. The
// owning partie's stream list is brought up to date after the insert.
func (h *Handler) CreateStream(c echo.Context) error {
	var body streamBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if strings.TrimSpace(body.Nom) == "" || body.Plateforme == "" || body.URL == "" || body.Partie == "" {
		return fail(c, http.StatusBadRequest, "Les champs nom, plateforme, url et partie sont requis.")
	}
	if !rules.ValidStreamPlateforme(body.Plateforme) {
		return fail(c, http.StatusBadRequest, "Plateforme de stream invalide.")
	}
	if !validStreamURL(body.URL) {
		return fail(c, http.StatusBadRequest, "URL de stream invalide.")
	}
	ctx := c.Request().Context()
	p, err := h.Parties.GetByID(ctx, body.Partie)
	if err != nil {
		if errors.Is(err, repository.ErrPartieNotFound) {
			return fail(c, http.StatusNotFound, "Partie non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du stream.", err)
	}
	createur, err := h.partieCreateur(c, p)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du stream.", err)
	}
	if !canModify(c, createur) {
		return fail(c, http.StatusForbidden, "Seul le créateur du tournoi peut créer des streams.")
	}
	s := &repository.Stream{
		Nom:        strings.TrimSpace(body.Nom),
		Plateforme: body.Plateforme,
		URL:        body.URL,
		Partie:     p.ID,
		Statut:     rules.StreamEnAttente,
	}
	if err := h.Streams.Create(ctx, s); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du stream.", err)
	}
	if err := consistency.OnChildCreated(ctx, h.Parties.StreamLinks(), s.Partie, s.ID); err != nil {
		log.Printf("consistency: partie %s streams add %s: %v", s.Partie, s.ID, err)
	}
	return c.JSON(http.StatusCreated, h.streamView(c, s))
}

// ListStreams handles GET /api/streams (public).
func (h *Handler) ListStreams(c echo.Context) error {
	streams, err := h.Streams.ListAll(c.Request().Context())
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des streams.", err)
	}
	return c.JSON(http.StatusOK, h.streamViews(c, streams))
}

// GetStream handles GET /api/streams/:id (public).
func (h *Handler) GetStream(c echo.Context) error {
	s, err := h.Streams.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			return fail(c, http.StatusNotFound, "Stream non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération du stream.", err)
	}
	return c.JSON(http.StatusOK, h.streamView(c, s))
}

// StreamsByPartie handles GET /api/streams/partie/:partieId (public).
func (h *Handler) StreamsByPartie(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Parties.GetByID(ctx, c.Param("partieId")); err != nil {
		if errors.Is(err, repository.ErrPartieNotFound) {
			return fail(c, http.StatusNotFound, "Partie non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des streams.", err)
	}
	streams, err := h.Streams.ListByPartie(ctx, c.Param("partieId"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des streams.", err)
	}
	return c.JSON(http.StatusOK, h.streamViews(c, streams))
}

// UpdateStream handles PUT /api/streams/:id; tournament createur only.
// Statut changes validate against the stream lifecycle.
func (h *Handler) UpdateStream(c echo.Context) error {
	ctx := c.Request().Context()
	s, err := h.Streams.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			return fail(c, http.StatusNotFound, "Stream non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du stream.", err)
	}
	p, err := h.Parties.GetByID(ctx, s.Partie)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du stream.", err)
	}
	createur, err := h.partieCreateur(c, p)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du stream.", err)
	}
	if !canModify(c, createur) {
		return fail(c, http.StatusForbidden, "Seul le créateur du tournoi peut modifier ce stream.")
	}
	var body struct {
		streamBody
		Statut string `json:"statut"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.Nom != "" {
		s.Nom = strings.TrimSpace(body.Nom)
	}
	if body.Plateforme != "" {
		if !rules.ValidStreamPlateforme(body.Plateforme) {
			return fail(c, http.StatusBadRequest, "Plateforme de stream invalide.")
		}
		s.Plateforme = body.Plateforme
	}
	if body.URL != "" {
		if !validStreamURL(body.URL) {
			return fail(c, http.StatusBadRequest, "URL de stream invalide.")
		}
		s.URL = body.URL
	}
	if body.Statut != "" && body.Statut != s.Statut {
		if !rules.CanTransitionStream(s.Statut, body.Statut) {
			return fail(c, http.StatusConflict, "Transition de statut non autorisée depuis \""+s.Statut+"\".")
		}
		s.Statut = body.Statut
	}
	if err := h.Streams.Update(ctx, s); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du stream.", err)
	}
	return c.JSON(http.StatusOK, h.streamView(c, s))
}

// DeleteStream handles DELETE /api/streams/:id; tournament createur only.
// The stream id is removed from its partie afterwards; a failed bookkeeping
// write is logged but the deletion stands.
func (h *Handler) DeleteStream(c echo.Context) error {
	ctx := c.Request().Context()
	s, err := h.Streams.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrStreamNotFound) {
			return fail(c, http.StatusNotFound, "Stream non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du stream.", err)
	}
	p, err := h.Parties.GetByID(ctx, s.Partie)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du stream.", err)
	}
	createur, err := h.partieCreateur(c, p)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du stream.", err)
	}
	if !canModify(c, createur) {
		return fail(c, http.StatusForbidden, "Seul le créateur du tournoi peut supprimer ce stream.")
	}
	if err := h.Streams.Delete(ctx, s.ID); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du stream.", err)
	}
	if err := consistency.OnChildDeleted(ctx, h.Parties.StreamLinks(), s.Partie, s.ID); err != nil {
		log.Printf("consistency: partie %s streams remove %s: %v", s.Partie, s.ID, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Stream supprimé avec succès."})
}
