package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/repository"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/rules"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/utils"
)

type billetView struct {
	*repository.Billet
	User    *repository.User    `json:"user"`
	Salle   *repository.Salle   `json:"salle"`
	Tournoi *repository.Tournoi `json:"tournoi,omitempty"`
}

func (h *Handler) billetView(c echo.Context, b *repository.Billet) *billetView {
	ctx := c.Request().Context()
	v := &billetView{Billet: b}
	if u, err := h.Users.GetByID(ctx, b.User); err == nil {
		v.User = u
	}
	if s, err := h.Salles.GetByID(ctx, b.Salle); err == nil {
		v.Salle = s
	}
	if b.Tournoi != nil {
		if t, err := h.Tournois.GetByID(ctx, *b.Tournoi); err == nil {
			v.Tournoi = t
		}
	}
	return v
}

func (h *Handler) billetViews(c echo.Context, billets []*repository.Billet) []*billetView {
	out := make([]*billetView, 0, len(billets))
	for _, b := range billets {
		out = append(out, h.billetView(c, b))
	}
	return out
}

type billetBody struct {
	Type          string   `json:"type"`
	Prix          *float64 `json:"prix"`
	Quantite      *int     `json:"quantite"`
	Salle         string   `json:"salle"`
	Tournoi       *string  `json:"tournoi"`
	DateEvenement *string  `json:"date_evenement"`
}

// CreateBillet handles POST /api/billets: the caller buys a ticket for a
// salle, optionally bound to a tournament. The QR code is generated
// server-side and never accepted from the client.
func (h *Handler) CreateBillet(c echo.Context) error {
	var body billetBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.Type == "" || body.Prix == nil || body.Salle == "" {
		return fail(c, http.StatusBadRequest, "Les champs type, prix et salle sont requis.")
	}
	if !rules.ValidBilletType(body.Type) {
		return fail(c, http.StatusBadRequest, "Type de billet invalide (Standard, VIP ou PRESSE).")
	}
	if *body.Prix < 0 {
		return fail(c, http.StatusBadRequest, "Le prix ne peut pas être négatif.")
	}
	if body.Quantite != nil && *body.Quantite < 1 {
		return fail(c, http.StatusBadRequest, "La quantité doit être au moins 1.")
	}
	ctx := c.Request().Context()
	if _, err := h.Salles.GetByID(ctx, body.Salle); err != nil {
		if errors.Is(err, repository.ErrSalleNotFound) {
			return fail(c, http.StatusNotFound, "Salle non trouvée.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du billet.", err)
	}
	if body.Tournoi != nil {
		if _, err := h.Tournois.GetByID(ctx, *body.Tournoi); err != nil {
			if errors.Is(err, repository.ErrTournoiNotFound) {
				return fail(c, http.StatusNotFound, "Tournoi non trouvé.")
			}
			return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du billet.", err)
		}
	}
	code, err := utils.TicketCode()
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du billet.", err)
	}
	b := &repository.Billet{
		Type:     body.Type,
		Prix:     *body.Prix,
		Quantite: 1,
		User:     callerID(c),
		Salle:    body.Salle,
		Tournoi:  body.Tournoi,
		Statut:   rules.BilletDisponible,
		CodeQR:   code,
	}
	if body.Quantite != nil {
		b.Quantite = *body.Quantite
	}
	if body.DateEvenement != nil && *body.DateEvenement != "" {
		d, err := parseDate(*body.DateEvenement)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Format de date_evenement invalide.")
		}
		b.DateEvenement = &d
	}
	if err := h.Billets.Create(ctx, b); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du billet.", err)
	}
	return c.JSON(http.StatusCreated, h.billetView(c, b))
}

// ListBillets handles GET /api/billets.
func (h *Handler) ListBillets(c echo.Context) error {
	billets, err := h.Billets.ListAll(c.Request().Context())
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des billets.", err)
	}
	return c.JSON(http.StatusOK, h.billetViews(c, billets))
}

// MyBillets handles GET /api/billets/mes-billets, newest purchases first.
func (h *Handler) MyBillets(c echo.Context) error {
	billets, err := h.Billets.ListByUser(c.Request().Context(), callerID(c))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération de vos billets.", err)
	}
	return c.JSON(http.StatusOK, h.billetViews(c, billets))
}

// GetBillet handles GET /api/billets/:id; holder or admin only, the QR code
// is not public.
func (h *Handler) GetBillet(c echo.Context) error {
	b, err := h.Billets.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBilletNotFound) {
			return fail(c, http.StatusNotFound, "Billet non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération du billet.", err)
	}
	if !canModify(c, b.User) {
		return fail(c, http.StatusForbidden, "Vous ne pouvez consulter que vos propres billets.")
	}
	return c.JSON(http.StatusOK, h.billetView(c, b))
}

// UpdateBillet handles PUT /api/billets/:id; holder only, commercial fields
// only. Statut moves through the dedicated routes.
func (h *Handler) UpdateBillet(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.Billets.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBilletNotFound) {
			return fail(c, http.StatusNotFound, "Billet non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du billet.", err)
	}
	if !canModify(c, b.User) {
		return fail(c, http.StatusForbidden, "Vous ne pouvez modifier que vos propres billets.")
	}
	if b.Statut == rules.BilletUtilise {
		return fail(c, http.StatusConflict, "Un billet utilisé ne peut plus être modifié.")
	}
	var body billetBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.Type != "" {
		if !rules.ValidBilletType(body.Type) {
			return fail(c, http.StatusBadRequest, "Type de billet invalide (Standard, VIP ou PRESSE).")
		}
		b.Type = body.Type
	}
	if body.Prix != nil {
		if *body.Prix < 0 {
			return fail(c, http.StatusBadRequest, "Le prix ne peut pas être négatif.")
		}
		b.Prix = *body.Prix
	}
	if body.Quantite != nil {
		if *body.Quantite < 1 {
			return fail(c, http.StatusBadRequest, "La quantité doit être au moins 1.")
		}
		b.Quantite = *body.Quantite
	}
	if body.DateEvenement != nil {
		if *body.DateEvenement == "" {
			b.DateEvenement = nil
		} else {
			d, err := parseDate(*body.DateEvenement)
			if err != nil {
				return fail(c, http.StatusBadRequest, "Format de date_evenement invalide.")
			}
			b.DateEvenement = &d
		}
	}
	if err := h.Billets.Update(ctx, b); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du billet.", err)
	}
	return c.JSON(http.StatusOK, h.billetView(c, b))
}

// PatchBilletStatut handles PATCH /api/billets/:id/statut: one forward step
// of disponible → vendu → utilisé. Cancellation has its own route.
func (h *Handler) PatchBilletStatut(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.Billets.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBilletNotFound) {
			return fail(c, http.StatusNotFound, "Billet non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors du changement de statut.", err)
	}
	if !canModify(c, b.User) {
		return fail(c, http.StatusForbidden, "Vous ne pouvez modifier que vos propres billets.")
	}
	var body struct {
		Statut string `json:"statut"`
	}
	if err := c.Bind(&body); err != nil || body.Statut == "" {
		return fail(c, http.StatusBadRequest, "Le champ statut est requis.")
	}
	if !rules.CanTransitionBillet(b.Statut, body.Statut) {
		return fail(c, http.StatusConflict, "Transition de statut non autorisée depuis \""+b.Statut+"\".")
	}
	if err := h.Billets.UpdateStatut(ctx, b.ID, body.Statut); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors du changement de statut.", err)
	}
	b.Statut = body.Statut
	return c.JSON(http.StatusOK, h.billetView(c, b))
}

// CancelBillet handles PUT /api/billets/:id/annuler. A used ticket stays
// used and a second cancel is rejected.
func (h *Handler) CancelBillet(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.Billets.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBilletNotFound) {
			return fail(c, http.StatusNotFound, "Billet non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de l'annulation du billet.", err)
	}
	if !canModify(c, b.User) {
		return fail(c, http.StatusForbidden, "Vous ne pouvez annuler que vos propres billets.")
	}
	if !rules.CanCancelBillet(b.Statut) {
		return fail(c, http.StatusConflict, "Ce billet ne peut plus être annulé (statut \""+b.Statut+"\").")
	}
	if err := h.Billets.UpdateStatut(ctx, b.ID, rules.BilletAnnule); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de l'annulation du billet.", err)
	}
	b.Statut = rules.BilletAnnule
	return c.JSON(http.StatusOK, h.billetView(c, b))
}

// DeleteBillet handles DELETE /api/billets/:id; holder or admin.
func (h *Handler) DeleteBillet(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.Billets.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBilletNotFound) {
			return fail(c, http.StatusNotFound, "Billet non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du billet.", err)
	}
	if !canModify(c, b.User) {
		return fail(c, http.StatusForbidden, "Vous ne pouvez supprimer que vos propres billets.")
	}
	if b.Statut == rules.BilletUtilise {
		return fail(c, http.StatusConflict, "Un billet utilisé ne peut plus être supprimé.")
	}
	if err := h.Billets.Delete(ctx, b.ID); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du billet.", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Billet supprimé avec succès."})
}
