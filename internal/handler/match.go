package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/repository"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/rules"
)

type matchView struct {
	*repository.Match
	Tournoi      *repository.Tournoi  `json:"tournoi"`
	Participant1 *repository.Equipe   `json:"participant1"`
	Participant2 *repository.Equipe   `json:"participant2"`
	Parties      []*repository.Partie `json:"parties"`
}

func (h *Handler) matchView(c echo.Context, m *repository.Match) *matchView {
	ctx := c.Request().Context()
	v := &matchView{Match: m, Parties: []*repository.Partie{}}
	if t, err := h.Tournois.GetByID(ctx, m.Tournoi); err == nil {
		v.Tournoi = t
	}
	if e, err := h.Equipes.GetByID(ctx, m.Participant1); err == nil {
		v.Participant1 = e
	}
	if e, err := h.Equipes.GetByID(ctx, m.Participant2); err == nil {
		v.Participant2 = e
	}
	if ps, err := h.Parties.ListByMatch(ctx, m.ID); err == nil {
		v.Parties = ps
	}
	return v
}

func (h *Handler) matchViews(c echo.Context, matchs []*repository.Match) []*matchView {
	out := make([]*matchView, 0, len(matchs))
	for _, m := range matchs {
		out = append(out, h.matchView(c, m))
	}
	return out
}

// matchCreateur resolves the tournament owner behind a match for the
// ownership checks.
func (h *Handler) matchCreateur(c echo.Context, m *repository.Match) (string, error) {
	t, err := h.Tournois.GetByID(c.Request().Context(), m.Tournoi)
	if err != nil {
		return "", err
	}
	return t.Createur, nil
}

type matchBody struct {
	DateDebut    string `json:"date_debut"`
	Tournoi      string `json:"tournoi"`
	Participant1 string `json:"participant1"`
	Participant2 string `json:"participant2"`
}

// CreateMatch handles POST /api/matchs; tournament createur only. The two
// participants must be distinct existing teams.
func (h *Handler) CreateMatch(c echo.Context) error {
	var body matchBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.DateDebut == "" || body.Tournoi == "" || body.Participant1 == "" || body.Participant2 == "" {
		return fail(c, http.StatusBadRequest, "Les champs date_debut, tournoi, participant1 et participant2 sont requis.")
	}
	if !rules.ParticipantsDistinct(body.Participant1, body.Participant2) {
		return fail(c, http.StatusBadRequest, "Une équipe ne peut pas jouer contre elle-même.")
	}
	debut, err := parseDate(body.DateDebut)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Format de date_debut invalide.")
	}
	ctx := c.Request().Context()
	t, err := h.Tournois.GetByID(ctx, body.Tournoi)
	if err != nil {
		if errors.Is(err, repository.ErrTournoiNotFound) {
			return fail(c, http.StatusNotFound, "Tournoi non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du match.", err)
	}
	if !canModify(c, t.Createur) {
		return fail(c, http.StatusForbidden, "Seul le créateur du tournoi peut créer des matchs.")
	}
	for _, id := range []string{body.Participant1, body.Participant2} {
		if _, err := h.Equipes.GetByID(ctx, id); err != nil {
			if errors.Is(err, repository.ErrEquipeNotFound) {
				return fail(c, http.StatusNotFound, "Équipe participante non trouvée.")
			}
			return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du match.", err)
		}
	}
	m := &repository.Match{
		DateDebut:    debut,
		Status:       rules.MatchEnAttente,
		Tournoi:      t.ID,
		Participant1: body.Participant1,
		Participant2: body.Participant2,
	}
	if err := h.Matchs.Create(ctx, m); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du match.", err)
	}
	return c.JSON(http.StatusCreated, h.matchView(c, m))
}

// ListMatchs handles GET /api/matchs (public).
func (h *Handler) ListMatchs(c echo.Context) error {
	matchs, err := h.Matchs.ListAll(c.Request().Context())
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des matchs.", err)
	}
	return c.JSON(http.StatusOK, h.matchViews(c, matchs))
}

// GetMatch handles GET /api/matchs/:id (public).
func (h *Handler) GetMatch(c echo.Context) error {
	m, err := h.Matchs.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return fail(c, http.StatusNotFound, "Match non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération du match.", err)
	}
	return c.JSON(http.StatusOK, h.matchView(c, m))
}

// MatchsByTournoi handles GET /api/matchs/tournoi/:tournoiId (public).
func (h *Handler) MatchsByTournoi(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Tournois.GetByID(ctx, c.Param("tournoiId")); err != nil {
		if errors.Is(err, repository.ErrTournoiNotFound) {
			return fail(c, http.StatusNotFound, "Tournoi non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des matchs.", err)
	}
	matchs, err := h.Matchs.ListByTournoi(ctx, c.Param("tournoiId"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des matchs.", err)
	}
	return c.JSON(http.StatusOK, h.matchViews(c, matchs))
}

// MatchsByEquipe handles GET /api/matchs/equipe/:equipeId (public): matches
// where the team plays on either side.
func (h *Handler) MatchsByEquipe(c echo.Context) error {
	matchs, err := h.Matchs.ListByEquipe(c.Request().Context(), c.Param("equipeId"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des matchs.", err)
	}
	return c.JSON(http.StatusOK, h.matchViews(c, matchs))
}

// UpdateMatch handles PUT /api/matchs/:id; tournament createur only. The
// status only moves through the dedicated PATCH route, and participants are
// frozen once the match has started.
func (h *Handler) UpdateMatch(c echo.Context) error {
	ctx := c.Request().Context()
	m, err := h.Matchs.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return fail(c, http.StatusNotFound, "Match non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du match.", err)
	}
	createur, err := h.matchCreateur(c, m)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du match.", err)
	}
	if !canModify(c, createur) {
		return fail(c, http.StatusForbidden, "Seul le créateur du tournoi peut modifier ce match.")
	}
	var body matchBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.DateDebut != "" {
		d, err := parseDate(body.DateDebut)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Format de date_debut invalide.")
		}
		m.DateDebut = d
	}
	if body.Participant1 != "" || body.Participant2 != "" {
		if m.Status != rules.MatchEnAttente {
			return fail(c, http.StatusConflict, "Les participants ne peuvent plus changer une fois le match commencé.")
		}
		if body.Participant1 != "" {
			m.Participant1 = body.Participant1
		}
		if body.Participant2 != "" {
			m.Participant2 = body.Participant2
		}
		if !rules.ParticipantsDistinct(m.Participant1, m.Participant2) {
			return fail(c, http.StatusBadRequest, "Une équipe ne peut pas jouer contre elle-même.")
		}
		for _, id := range []string{m.Participant1, m.Participant2} {
			if _, err := h.Equipes.GetByID(ctx, id); err != nil {
				if errors.Is(err, repository.ErrEquipeNotFound) {
					return fail(c, http.StatusNotFound, "Équipe participante non trouvée.")
				}
				return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du match.", err)
			}
		}
	}
	if err := h.Matchs.Update(ctx, m); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du match.", err)
	}
	return c.JSON(http.StatusOK, h.matchView(c, m))
}

// PatchMatchStatus handles PATCH /api/matchs/:id/status; tournament
// createur only, one forward step of en_attente → en_cours → termine.
func (h *Handler) PatchMatchStatus(c echo.Context) error {
	ctx := c.Request().Context()
	m, err := h.Matchs.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return fail(c, http.StatusNotFound, "Match non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors du changement de statut.", err)
	}
	createur, err := h.matchCreateur(c, m)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors du changement de statut.", err)
	}
	if !canModify(c, createur) {
		return fail(c, http.StatusForbidden, "Seul le créateur du tournoi peut changer le statut de ce match.")
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil || body.Status == "" {
		return fail(c, http.StatusBadRequest, "Le champ status est requis.")
	}
	if !rules.CanTransitionMatch(m.Status, body.Status) {
		return fail(c, http.StatusConflict, "Transition de statut non autorisée depuis \""+m.Status+"\".")
	}
	m.Status = body.Status
	if err := h.Matchs.Update(ctx, m); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors du changement de statut.", err)
	}
	return c.JSON(http.StatusOK, h.matchView(c, m))
}

// DeleteMatch handles DELETE /api/matchs/:id; tournament createur only. A
// match that still has parties cannot be removed.
func (h *Handler) DeleteMatch(c echo.Context) error {
	ctx := c.Request().Context()
	m, err := h.Matchs.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrMatchNotFound) {
			return fail(c, http.StatusNotFound, "Match non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du match.", err)
	}
	createur, err := h.matchCreateur(c, m)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du match.", err)
	}
	if !canModify(c, createur) {
		return fail(c, http.StatusForbidden, "Seul le créateur du tournoi peut supprimer ce match.")
	}
	parties, err := h.Parties.ListByMatch(ctx, m.ID)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du match.", err)
	}
	if len(parties) > 0 {
		return fail(c, http.StatusConflict, "Impossible de supprimer un match qui a encore des parties.")
	}
	if err := h.Matchs.Delete(ctx, m.ID); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du match.", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Match supprimé avec succès."})
}
