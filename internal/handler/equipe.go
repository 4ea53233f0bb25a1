package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/repository"
)

type equipeView struct {
	*repository.Equipe
	Capitaine    *repository.User   `json:"capitaine"`
	Membres      []*repository.User `json:"membres"`
	JeuPrincipal *repository.Jeu    `json:"jeu_principal,omitempty"`
}

func (h *Handler) equipeView(c echo.Context, e *repository.Equipe) *equipeView {
	ctx := c.Request().Context()
	v := &equipeView{Equipe: e, Membres: []*repository.User{}}
	if u, err := h.Users.GetByID(ctx, e.Capitaine); err == nil {
		v.Capitaine = u
	}
	for _, id := range e.Membres {
		if u, err := h.Users.GetByID(ctx, id); err == nil {
			v.Membres = append(v.Membres, u)
		}
	}
	if e.JeuPrincipal != nil {
		if j, err := h.Jeux.GetByID(ctx, *e.JeuPrincipal); err == nil {
			v.JeuPrincipal = j
		}
	}
	return v
}

func (h *Handler) equipeViews(c echo.Context, equipes []*repository.Equipe) []*equipeView {
	out := make([]*equipeView, 0, len(equipes))
	for _, e := range equipes {
		out = append(out, h.equipeView(c, e))
	}
	return out
}

type equipeBody struct {
	Nom          string  `json:"nom"`
	Logo         *string `json:"logo"`
	Description  *string `json:"description"`
	JeuPrincipal *string `json:"jeu_principal"`
}

// CreateEquipe handles POST /api/equipes. The creator becomes capitaine,
// joins the member set and gets a capitaine membership row in one go.
func (h *Handler) CreateEquipe(c echo.Context) error {
	var body equipeBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	nom := strings.TrimSpace(body.Nom)
	if nom == "" {
		return fail(c, http.StatusBadRequest, "Le champ nom est requis.")
	}
	ctx := c.Request().Context()
	if _, err := h.Equipes.GetByNom(ctx, nom); err == nil {
		return fail(c, http.StatusConflict, "Une équipe porte déjà ce nom.")
	} else if !errors.Is(err, repository.ErrEquipeNotFound) {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création de l'équipe.", err)
	}
	if body.JeuPrincipal != nil {
		if _, err := h.Jeux.GetByID(ctx, *body.JeuPrincipal); err != nil {
			if errors.Is(err, repository.ErrJeuNotFound) {
				return fail(c, http.StatusNotFound, "Jeu principal non trouvé.")
			}
			return failErr(c, http.StatusInternalServerError, "Erreur lors de la création de l'équipe.", err)
		}
	}
	caller := callerID(c)
	e := &repository.Equipe{
		Nom:          nom,
		Logo:         body.Logo,
		Description:  body.Description,
		JeuPrincipal: body.JeuPrincipal,
		Capitaine:    caller,
		Membres:      []string{caller},
	}
	if err := h.Equipes.Create(ctx, e); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création de l'équipe.", err)
	}
	m := &repository.MembreTeam{Role: "capitaine", User: caller, Equipe: e.ID, Statut: "actif"}
	if err := h.Membres.Create(ctx, m); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création de l'équipe.", err)
	}
	return c.JSON(http.StatusCreated, h.equipeView(c, e))
}

// ListEquipes handles GET /api/equipes (public).
func (h *Handler) ListEquipes(c echo.Context) error {
	equipes, err := h.Equipes.ListAll(c.Request().Context())
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des équipes.", err)
	}
	return c.JSON(http.StatusOK, h.equipeViews(c, equipes))
}

// GetEquipe handles GET /api/equipes/:id (public).
func (h *Handler) GetEquipe(c echo.Context) error {
	e, err := h.Equipes.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEquipeNotFound) {
			return fail(c, http.StatusNotFound, "Équipe non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération de l'équipe.", err)
	}
	return c.JSON(http.StatusOK, h.equipeView(c, e))
}

// MyEquipes handles GET /api/equipes/mes-equipes: teams where the caller is
// capitaine or appears in the member set.
func (h *Handler) MyEquipes(c echo.Context) error {
	equipes, err := h.Equipes.ListByMember(c.Request().Context(), callerID(c))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération de vos équipes.", err)
	}
	return c.JSON(http.StatusOK, h.equipeViews(c, equipes))
}

// EquipesByUser handles GET /api/equipes/user/:userId (public).
func (h *Handler) EquipesByUser(c echo.Context) error {
	equipes, err := h.Equipes.ListByMember(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des équipes.", err)
	}
	return c.JSON(http.StatusOK, h.equipeViews(c, equipes))
}

// UpdateEquipe handles PUT /api/equipes/:id; capitaine only. Capitaine and
// member set never move through this route.
func (h *Handler) UpdateEquipe(c echo.Context) error {
	ctx := c.Request().Context()
	e, err := h.Equipes.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEquipeNotFound) {
			return fail(c, http.StatusNotFound, "Équipe non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de l'équipe.", err)
	}
	if !canModify(c, e.Capitaine) {
		return fail(c, http.StatusForbidden, "Seul le capitaine peut modifier l'équipe.")
	}
	var body equipeBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if nom := strings.TrimSpace(body.Nom); nom != "" && nom != e.Nom {
		if _, err := h.Equipes.GetByNom(ctx, nom); err == nil {
			return fail(c, http.StatusConflict, "Une équipe porte déjà ce nom.")
		} else if !errors.Is(err, repository.ErrEquipeNotFound) {
			return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de l'équipe.", err)
		}
		e.Nom = nom
	}
	if body.Logo != nil {
		e.Logo = body.Logo
	}
	if body.Description != nil {
		e.Description = body.Description
	}
	if body.JeuPrincipal != nil {
		if _, err := h.Jeux.GetByID(ctx, *body.JeuPrincipal); err != nil {
			if errors.Is(err, repository.ErrJeuNotFound) {
				return fail(c, http.StatusNotFound, "Jeu principal non trouvé.")
			}
			return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de l'équipe.", err)
		}
		e.JeuPrincipal = body.JeuPrincipal
	}
	if err := h.Equipes.Update(ctx, e); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de l'équipe.", err)
	}
	return c.JSON(http.StatusOK, h.equipeView(c, e))
}

// QuitEquipe handles POST /api/equipes/:id/quitter. The capitaine cannot
// leave; the captaincy must be transferred first.
func (h *Handler) QuitEquipe(c echo.Context) error {
	ctx := c.Request().Context()
	e, err := h.Equipes.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEquipeNotFound) {
			return fail(c, http.StatusNotFound, "Équipe non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la sortie de l'équipe.", err)
	}
	caller := callerID(c)
	if caller == e.Capitaine {
		return fail(c, http.StatusConflict, "Le capitaine doit d'abord transférer son rôle avant de quitter l'équipe.")
	}
	membres := e.Membres
	found := false
	for i, id := range membres {
		if id == caller {
			membres = append(membres[:i:i], membres[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return fail(c, http.StatusBadRequest, "Vous n'êtes pas membre de cette équipe.")
	}
	if err := h.Equipes.SetMembres(ctx, e.ID, membres); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la sortie de l'équipe.", err)
	}
	if m, err := h.Membres.FindByUserAndEquipe(ctx, caller, e.ID); err == nil {
		if err := h.Membres.Delete(ctx, m.ID); err != nil {
			return failErr(c, http.StatusInternalServerError, "Erreur lors de la sortie de l'équipe.", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Vous avez quitté l'équipe."})
}

// RemoveEquipeMembre handles DELETE /api/equipes/:id/membres/:membreId; the
// capitaine or the member themself. The sitting capitaine can never be
// removed this way.
func (h *Handler) RemoveEquipeMembre(c echo.Context) error {
	ctx := c.Request().Context()
	e, err := h.Equipes.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEquipeNotFound) {
			return fail(c, http.StatusNotFound, "Équipe non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors du retrait du membre.", err)
	}
	target := c.Param("membreId")
	if !canModify(c, e.Capitaine) && !canModify(c, target) {
		return fail(c, http.StatusForbidden, "Seul le capitaine ou le membre lui-même peut retirer ce membre.")
	}
	if target == e.Capitaine {
		return fail(c, http.StatusConflict, "Le capitaine doit d'abord transférer son rôle avant de quitter l'équipe.")
	}
	membres := e.Membres
	found := false
	for i, id := range membres {
		if id == target {
			membres = append(membres[:i:i], membres[i+1:]...)
			found = true
			break
		}
	}
	if !found {
		return fail(c, http.StatusNotFound, "Cet utilisateur n'est pas membre de cette équipe.")
	}
	if err := h.Equipes.SetMembres(ctx, e.ID, membres); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors du retrait du membre.", err)
	}
	if m, err := h.Membres.FindByUserAndEquipe(ctx, target, e.ID); err == nil {
		if err := h.Membres.Delete(ctx, m.ID); err != nil {
			return failErr(c, http.StatusInternalServerError, "Erreur lors du retrait du membre.", err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Membre retiré de l'équipe."})
}

// TransferCapitaine handles POST /api/equipes/:id/transferer-capitaine.
// Capitaine only; the new captain must already be a member. The equipe
// record and the two membership rows move together in one transaction.
func (h *Handler) TransferCapitaine(c echo.Context) error {
	ctx := c.Request().Context()
	e, err := h.Equipes.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrEquipeNotFound) {
			return fail(c, http.StatusNotFound, "Équipe non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors du transfert de capitanat.", err)
	}
	if !canModify(c, e.Capitaine) {
		return fail(c, http.StatusForbidden, "Seul le capitaine peut transférer son rôle.")
	}
	var body struct {
		NouveauCapitaine string `json:"nouveau_capitaine"`
	}
	if err := c.Bind(&body); err != nil || body.NouveauCapitaine == "" {
		return fail(c, http.StatusBadRequest, "Le champ nouveau_capitaine est requis.")
	}
	if body.NouveauCapitaine == e.Capitaine {
		return fail(c, http.StatusBadRequest, "Cet utilisateur est déjà capitaine.")
	}
	member := false
	for _, id := range e.Membres {
		if id == body.NouveauCapitaine {
			member = true
			break
		}
	}
	if !member {
		return fail(c, http.StatusBadRequest, "Le nouveau capitaine doit déjà être membre de l'équipe.")
	}
	if err := h.Equipes.TransferCapitaine(ctx, e.ID, e.Capitaine, body.NouveauCapitaine); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return fail(c, http.StatusConflict, "Le capitanat a changé entre-temps, réessayez.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors du transfert de capitanat.", err)
	}
	e.Capitaine = body.NouveauCapitaine
	return c.JSON(http.StatusOK, h.equipeView(c, e))
}
