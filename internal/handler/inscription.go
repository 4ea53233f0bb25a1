package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/queue"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/repository"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/rules"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/service"
)

type inscriptionView struct {
	*repository.Inscription
	Tournoi *repository.Tournoi `json:"tournoi"`
	Equipe  *repository.Equipe  `json:"equipe"`
}

func (h *Handler) inscriptionView(c echo.Context, i *repository.Inscription) *inscriptionView {
	ctx := c.Request().Context()
	v := &inscriptionView{Inscription: i}
	if t, err := h.Tournois.GetByID(ctx, i.Tournoi); err == nil {
		v.Tournoi = t
	}
	if e, err := h.Equipes.GetByID(ctx, i.Equipe); err == nil {
		v.Equipe = e
	}
	return v
}

func (h *Handler) inscriptionViews(c echo.Context, ins []*repository.Inscription) []*inscriptionView {
	out := make([]*inscriptionView, 0, len(ins))
	for _, i := range ins {
		out = append(out, h.inscriptionView(c, i))
	}
	return out
}

// publishInscription emits the broker event off the request path; a broker
// outage must never fail the HTTP call.
func publishInscription(i *repository.Inscription, t *repository.Tournoi, e *repository.Equipe) {
	ev := queue.InscriptionConfirmedEvent{
		InscriptionID: i.ID,
		TournoiID:     t.ID,
		TournoiNom:    t.Nom,
		EquipeID:      e.ID,
		EquipeNom:     e.Nom,
		Statut:        i.Statut,
		PrixPaye:      i.PrixPaye,
		InscritA:      i.DateInscription.UTC().Format(time.RFC3339),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = service.PublishInscriptionConfirmed(ctx, ev)
	}()
}

// CreateInscription handles POST /api/inscriptions: the capitaine registers
// a team for a tournament. The tournament must still be à venir and have a
// free slot; one registration per (tournoi, equipe) pair.
func (h *Handler) CreateInscription(c echo.Context) error {
	var body struct {
		Tournoi     string  `json:"tournoi"`
		Equipe      string  `json:"equipe"`
		Commentaire *string `json:"commentaire"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.Tournoi == "" || body.Equipe == "" {
		return fail(c, http.StatusBadRequest, "Les champs tournoi et equipe sont requis.")
	}
	ctx := c.Request().Context()
	t, err := h.Tournois.GetByID(ctx, body.Tournoi)
	if err != nil {
		if errors.Is(err, repository.ErrTournoiNotFound) {
			return fail(c, http.StatusNotFound, "Tournoi non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de l'inscription.", err)
	}
	e, err := h.Equipes.GetByID(ctx, body.Equipe)
	if err != nil {
		if errors.Is(err, repository.ErrEquipeNotFound) {
			return fail(c, http.StatusNotFound, "Équipe non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de l'inscription.", err)
	}
	if !canModify(c, e.Capitaine) {
		return fail(c, http.StatusForbidden, "Seul le capitaine peut inscrire son équipe.")
	}
	if t.Statut != rules.TournoiAVenir {
		return fail(c, http.StatusConflict, "Les inscriptions de ce tournoi sont fermées.")
	}
	if !rules.InscriptionOpen(t.DateDebut, time.Now().UTC()) {
		return fail(c, http.StatusConflict, "La date limite d'inscription est dépassée.")
	}
	if _, err := h.Inscriptions.FindByTournoiAndEquipe(ctx, t.ID, e.ID); err == nil {
		return fail(c, http.StatusConflict, "Cette équipe est déjà inscrite à ce tournoi.")
	} else if !errors.Is(err, repository.ErrInscriptionNotFound) {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de l'inscription.", err)
	}
	n, err := h.Inscriptions.CountActive(ctx, t.ID)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de l'inscription.", err)
	}
	if n >= t.NombreEquipesMax {
		return fail(c, http.StatusConflict, "Le tournoi est complet.")
	}
	i := &repository.Inscription{
		DateLimite:  t.DateDebut,
		Statut:      "en_attente",
		Tournoi:     t.ID,
		Equipe:      e.ID,
		PrixPaye:    t.PrixInscription,
		Commentaire: body.Commentaire,
	}
	if err := h.Inscriptions.Create(ctx, i); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de l'inscription.", err)
	}
	publishInscription(i, t, e)
	return c.JSON(http.StatusCreated, h.inscriptionView(c, i))
}

// ListInscriptions handles GET /api/inscriptions.
func (h *Handler) ListInscriptions(c echo.Context) error {
	ins, err := h.Inscriptions.ListAll(c.Request().Context())
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des inscriptions.", err)
	}
	return c.JSON(http.StatusOK, h.inscriptionViews(c, ins))
}

// GetInscription handles GET /api/inscriptions/:id.
func (h *Handler) GetInscription(c echo.Context) error {
	i, err := h.Inscriptions.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrInscriptionNotFound) {
			return fail(c, http.StatusNotFound, "Inscription non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération de l'inscription.", err)
	}
	return c.JSON(http.StatusOK, h.inscriptionView(c, i))
}

// InscriptionsByTournoi handles GET /api/inscriptions/tournoi/:tournoiId.
func (h *Handler) InscriptionsByTournoi(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Tournois.GetByID(ctx, c.Param("tournoiId")); err != nil {
		if errors.Is(err, repository.ErrTournoiNotFound) {
			return fail(c, http.StatusNotFound, "Tournoi non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des inscriptions.", err)
	}
	ins, err := h.Inscriptions.ListByTournoi(ctx, c.Param("tournoiId"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des inscriptions.", err)
	}
	return c.JSON(http.StatusOK, h.inscriptionViews(c, ins))
}

// InscriptionsByEquipe handles GET /api/inscriptions/equipe/:equipeId.
func (h *Handler) InscriptionsByEquipe(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Equipes.GetByID(ctx, c.Param("equipeId")); err != nil {
		if errors.Is(err, repository.ErrEquipeNotFound) {
			return fail(c, http.StatusNotFound, "Équipe non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des inscriptions.", err)
	}
	ins, err := h.Inscriptions.ListByEquipe(ctx, c.Param("equipeId"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des inscriptions.", err)
	}
	return c.JSON(http.StatusOK, h.inscriptionViews(c, ins))
}

// MyInscriptions handles GET /api/inscriptions/mes-inscriptions: the
// registrations of every team the caller belongs to.
func (h *Handler) MyInscriptions(c echo.Context) error {
	ctx := c.Request().Context()
	equipes, err := h.Equipes.ListByMember(ctx, callerID(c))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération de vos inscriptions.", err)
	}
	ids := make([]string, 0, len(equipes))
	for _, e := range equipes {
		ids = append(ids, e.ID)
	}
	ins, err := h.Inscriptions.ListByEquipes(ctx, ids)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération de vos inscriptions.", err)
	}
	return c.JSON(http.StatusOK, h.inscriptionViews(c, ins))
}

// UpdateInscription handles PUT /api/inscriptions/:id. The tournament
// createur rules on status and ranking; the equipe capitaine may only
// withdraw (statut annulee) or edit the comment.
func (h *Handler) UpdateInscription(c echo.Context) error {
	ctx := c.Request().Context()
	i, err := h.Inscriptions.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrInscriptionNotFound) {
			return fail(c, http.StatusNotFound, "Inscription non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de l'inscription.", err)
	}
	t, err := h.Tournois.GetByID(ctx, i.Tournoi)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de l'inscription.", err)
	}
	e, err := h.Equipes.GetByID(ctx, i.Equipe)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de l'inscription.", err)
	}
	isCreateur := canModify(c, t.Createur)
	isCapitaine := canModify(c, e.Capitaine)
	if !isCreateur && !isCapitaine {
		return fail(c, http.StatusForbidden, "Vous n'êtes pas autorisé à modifier cette inscription.")
	}
	var body struct {
		Statut      string  `json:"statut"`
		Classement  *int    `json:"classement"`
		Commentaire *string `json:"commentaire"`
	}
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	wasAccepted := i.Statut == "acceptee"
	if body.Statut != "" && body.Statut != i.Statut {
		if !rules.ValidInscriptionStatut(body.Statut) {
			return fail(c, http.StatusBadRequest, "Statut d'inscription invalide.")
		}
		if !isCreateur && body.Statut != "annulee" {
			return fail(c, http.StatusForbidden, "Seul le créateur du tournoi peut accepter ou refuser une inscription.")
		}
		i.Statut = body.Statut
	}
	if body.Classement != nil {
		if !isCreateur {
			return fail(c, http.StatusForbidden, "Seul le créateur du tournoi peut attribuer un classement.")
		}
		i.Classement = body.Classement
	}
	if body.Commentaire != nil {
		i.Commentaire = body.Commentaire
	}
	if err := h.Inscriptions.Update(ctx, i); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour de l'inscription.", err)
	}
	if i.Statut == "acceptee" && !wasAccepted {
		publishInscription(i, t, e)
	}
	return c.JSON(http.StatusOK, h.inscriptionView(c, i))
}

// DeleteInscription handles DELETE /api/inscriptions/:id; equipe capitaine
// or tournament createur.
func (h *Handler) DeleteInscription(c echo.Context) error {
	ctx := c.Request().Context()
	i, err := h.Inscriptions.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrInscriptionNotFound) {
			return fail(c, http.StatusNotFound, "Inscription non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression de l'inscription.", err)
	}
	t, err := h.Tournois.GetByID(ctx, i.Tournoi)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression de l'inscription.", err)
	}
	e, err := h.Equipes.GetByID(ctx, i.Equipe)
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression de l'inscription.", err)
	}
	if !canModify(c, t.Createur) && !canModify(c, e.Capitaine) {
		return fail(c, http.StatusForbidden, "Vous n'êtes pas autorisé à supprimer cette inscription.")
	}
	if err := h.Inscriptions.Delete(ctx, i.ID); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression de l'inscription.", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Inscription supprimée avec succès."})
}
