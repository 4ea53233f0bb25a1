package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/repository"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/rules"
)

type membreView struct {
	*repository.MembreTeam
	User   *repository.User   `json:"user"`
	Equipe *repository.Equipe `json:"equipe"`
}

func (h *Handler) membreView(c echo.Context, m *repository.MembreTeam) *membreView {
	ctx := c.Request().Context()
	v := &membreView{MembreTeam: m}
	if u, err := h.Users.GetByID(ctx, m.User); err == nil {
		v.User = u
	}
	if e, err := h.Equipes.GetByID(ctx, m.Equipe); err == nil {
		v.Equipe = e
	}
	return v
}

func (h *Handler) membreViews(c echo.Context, membres []*repository.MembreTeam) []*membreView {
	out := make([]*membreView, 0, len(membres))
	for _, m := range membres {
		out = append(out, h.membreView(c, m))
	}
	return out
}

type membreBody struct {
	Role          string `json:"role"`
	User          string `json:"user"`
	Equipe        string `json:"equipe"`
	NumeroMaillot *int   `json:"numero_maillot"`
	Statut        string `json:"statut"`
}

// CreateMembre handles POST /api/membres: the capitaine recruits a user
// into the team. The new membership row and the team's member set move
// together; a second capitaine row is rejected, the transfer route is the
// only way to change hands.
func (h *Handler) CreateMembre(c echo.Context) error {
	var body membreBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.User == "" || body.Equipe == "" {
		return fail(c, http.StatusBadRequest, "Les champs user et equipe sont requis.")
	}
	if body.Role == "" {
		body.Role = "joueur"
	}
	if body.Statut == "" {
		body.Statut = "actif"
	}
	if !rules.ValidMembreRole(body.Role) {
		return fail(c, http.StatusBadRequest, "Rôle de membre invalide.")
	}
	if !rules.ValidMembreStatut(body.Statut) {
		return fail(c, http.StatusBadRequest, "Statut de membre invalide.")
	}
	if !rules.MaillotValid(body.NumeroMaillot) {
		return fail(c, http.StatusBadRequest, "Le numéro de maillot doit être compris entre 1 et 99.")
	}
	ctx := c.Request().Context()
	e, err := h.Equipes.GetByID(ctx, body.Equipe)
	if err != nil {
		if errors.Is(err, repository.ErrEquipeNotFound) {
			return fail(c, http.StatusNotFound, "Équipe non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de l'ajout du membre.", err)
	}
	if !canModify(c, e.Capitaine) {
		return fail(c, http.StatusForbidden, "Seul le capitaine peut ajouter des membres à l'équipe.")
	}
	if _, err := h.Users.GetByID(ctx, body.User); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return fail(c, http.StatusNotFound, "Utilisateur non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de l'ajout du membre.", err)
	}
	if _, err := h.Membres.FindByUserAndEquipe(ctx, body.User, body.Equipe); err == nil {
		return fail(c, http.StatusConflict, "Cet utilisateur est déjà membre de cette équipe.")
	} else if !errors.Is(err, repository.ErrMembreNotFound) {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de l'ajout du membre.", err)
	}
	if body.Role == "capitaine" {
		has, err := h.Membres.HasCapitaine(ctx, e.ID, "")
		if err != nil {
			return failErr(c, http.StatusInternalServerError, "Erreur lors de l'ajout du membre.", err)
		}
		if has {
			return fail(c, http.StatusConflict, "L'équipe a déjà un capitaine; utilisez le transfert de capitanat.")
		}
	}
	m := &repository.MembreTeam{
		Role:          body.Role,
		User:          body.User,
		Equipe:        body.Equipe,
		NumeroMaillot: body.NumeroMaillot,
		Statut:        body.Statut,
	}
	if err := h.Membres.Create(ctx, m); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de l'ajout du membre.", err)
	}
	present := false
	for _, id := range e.Membres {
		if id == body.User {
			present = true
			break
		}
	}
	if !present {
		if err := h.Equipes.SetMembres(ctx, e.ID, append(e.Membres, body.User)); err != nil {
			return failErr(c, http.StatusInternalServerError, "Erreur lors de l'ajout du membre.", err)
		}
	}
	return c.JSON(http.StatusCreated, h.membreView(c, m))
}

// ListMembres handles GET /api/membres.
func (h *Handler) ListMembres(c echo.Context) error {
	membres, err := h.Membres.ListAll(c.Request().Context())
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des membres.", err)
	}
	return c.JSON(http.StatusOK, h.membreViews(c, membres))
}

// GetMembre handles GET /api/membres/:id.
func (h *Handler) GetMembre(c echo.Context) error {
	m, err := h.Membres.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrMembreNotFound) {
			return fail(c, http.StatusNotFound, "Membre non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération du membre.", err)
	}
	return c.JSON(http.StatusOK, h.membreView(c, m))
}

// MembresByEquipe handles GET /api/membres/equipe/:equipeId.
func (h *Handler) MembresByEquipe(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Equipes.GetByID(ctx, c.Param("equipeId")); err != nil {
		if errors.Is(err, repository.ErrEquipeNotFound) {
			return fail(c, http.StatusNotFound, "Équipe non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des membres.", err)
	}
	membres, err := h.Membres.ListByEquipe(ctx, c.Param("equipeId"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des membres.", err)
	}
	return c.JSON(http.StatusOK, h.membreViews(c, membres))
}

// MyMembres handles GET /api/membres/mes-equipes: the caller's own
// membership rows.
func (h *Handler) MyMembres(c echo.Context) error {
	membres, err := h.Membres.ListByUser(c.Request().Context(), callerID(c))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération de vos adhésions.", err)
	}
	return c.JSON(http.StatusOK, h.membreViews(c, membres))
}

// MembresByUser handles GET /api/membres/user/:userId.
func (h *Handler) MembresByUser(c echo.Context) error {
	membres, err := h.Membres.ListByUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des membres.", err)
	}
	return c.JSON(http.StatusOK, h.membreViews(c, membres))
}

// UpdateMembre handles PUT /api/membres/:id; capitaine of the team
// only. Role changes to capitaine go through the transfer route instead.
func (h *Handler) UpdateMembre(c echo.Context) error {
	ctx := c.Request().Context()
	m, err := h.Membres.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrMembreNotFound) {
			return fail(c, http.StatusNotFound, "Membre non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du membre.", err)
	}
	e, err := h.Equipes.GetByID(ctx, m.Equipe)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du membre.", err)
	}
	if !canModify(c, e.Capitaine) {
		return fail(c, http.StatusForbidden, "Seul le capitaine peut modifier les membres de l'équipe.")
	}
	var body membreBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.Role != "" && body.Role != m.Role {
		if !rules.ValidMembreRole(body.Role) {
			return fail(c, http.StatusBadRequest, "Rôle de membre invalide.")
		}
		if body.Role == "capitaine" || m.Role == "capitaine" {
			return fail(c, http.StatusConflict, "Le rôle de capitaine ne change que par le transfert de capitanat.")
		}
		m.Role = body.Role
	}
	if body.Statut != "" {
		if !rules.ValidMembreStatut(body.Statut) {
			return fail(c, http.StatusBadRequest, "Statut de membre invalide.")
		}
		m.Statut = body.Statut
	}
	if body.NumeroMaillot != nil {
		if !rules.MaillotValid(body.NumeroMaillot) {
			return fail(c, http.StatusBadRequest, "Le numéro de maillot doit être compris entre 1 et 99.")
		}
		m.NumeroMaillot = body.NumeroMaillot
	}
	if err := h.Membres.Update(ctx, m); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du membre.", err)
	}
	return c.JSON(http.StatusOK, h.membreView(c, m))
}

// DeleteMembre handles DELETE /api/membres/:id; the capitaine or the
// member themself. The capitaine row itself is protected, a transfer has to
// happen first. The team's member set is trimmed alongside.
func (h *Handler) DeleteMembre(c echo.Context) error {
	ctx := c.Request().Context()
	m, err := h.Membres.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrMembreNotFound) {
			return fail(c, http.StatusNotFound, "Membre non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du membre.", err)
	}
	e, err := h.Equipes.GetByID(ctx, m.Equipe)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du membre.", err)
	}
	if !canModify(c, e.Capitaine) && !canModify(c, m.User) {
		return fail(c, http.StatusForbidden, "Seul le capitaine ou le membre lui-même peut retirer ce membre.")
	}
	if m.User == e.Capitaine {
		return fail(c, http.StatusConflict, "Le capitaine doit d'abord transférer son rôle avant de quitter l'équipe.")
	}
	if err := h.Membres.Delete(ctx, m.ID); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du membre.", err)
	}
	membres := e.Membres
	for i, id := range membres {
		if id == m.User {
			membres = append(membres[:i:i], membres[i+1:]...)
			if err := h.Equipes.SetMembres(ctx, e.ID, membres); err != nil {
				return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du membre.", err)
			}
			break
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Membre retiré de l'équipe."})
}
