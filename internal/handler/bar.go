package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/repository"
)

// barView is a bar with its direct relations expanded: the owning user and
// the live salles. The outer fields shadow the embedded FK/array fields in
// the JSON output, mirroring populate-on-read.
type barView struct {
	*repository.Bar
	Proprietaire *repository.User    `json:"proprietaire"`
	Salles       []*repository.Salle `json:"salles"`
}

func (h *Handler) barView(c echo.Context, b *repository.Bar) *barView {
	ctx := c.Request().Context()
	v := &barView{Bar: b, Salles: []*repository.Salle{}}
	if u, err := h.Users.GetByID(ctx, b.Proprietaire); err == nil {
		v.Proprietaire = u
	}
	if salles, err := h.Salles.ListByBar(ctx, b.ID); err == nil {
		v.Salles = salles
	}
	return v
}

func (h *Handler) barViews(c echo.Context, bars []*repository.Bar) []*barView {
	out := make([]*barView, 0, len(bars))
	for _, b := range bars {
		out = append(out, h.barView(c, b))
	}
	return out
}

type barBody struct {
	Nom         string  `json:"nom"`
	Adresse     string  `json:"adresse"`
	Email       string  `json:"email"`
	Telephone   *string `json:"telephone"`
	Horaires    *string `json:"horaires"`
	Description *string `json:"description"`
}

// CreateBar handles POST /api/bars; the caller becomes the owner.
func (h *Handler) CreateBar(c echo.Context) error {
	var body barBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if strings.TrimSpace(body.Nom) == "" || strings.TrimSpace(body.Adresse) == "" || strings.TrimSpace(body.Email) == "" {
		return fail(c, http.StatusBadRequest, "Les champs nom, adresse et email sont requis.")
	}
	ctx := c.Request().Context()
	if _, err := h.Bars.GetByEmail(ctx, body.Email); err == nil {
		return fail(c, http.StatusConflict, "Un bar avec cet email existe déjà.")
	} else if !errors.Is(err, repository.ErrBarNotFound) {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du bar.", err)
	}
	b := &repository.Bar{
		Nom:          strings.TrimSpace(body.Nom),
		Adresse:      strings.TrimSpace(body.Adresse),
		Email:        strings.ToLower(strings.TrimSpace(body.Email)),
		Telephone:    body.Telephone,
		Horaires:     body.Horaires,
		Description:  body.Description,
		Proprietaire: callerID(c),
	}
	if err := h.Bars.Create(ctx, b); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la création du bar.", err)
	}
	return c.JSON(http.StatusCreated, h.barView(c, b))
}

// ListBars handles GET /api/bars (public).
func (h *Handler) ListBars(c echo.Context) error {
	bars, err := h.Bars.ListAll(c.Request().Context())
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des bars.", err)
	}
	return c.JSON(http.StatusOK, h.barViews(c, bars))
}

// GetBar handles GET /api/bars/:id (public).
func (h *Handler) GetBar(c echo.Context) error {
	b, err := h.Bars.GetByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBarNotFound) {
			return fail(c, http.StatusNotFound, "Bar non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération du bar.", err)
	}
	return c.JSON(http.StatusOK, h.barView(c, b))
}

// MyBars handles GET /api/bars/mes-bars.
func (h *Handler) MyBars(c echo.Context) error {
	bars, err := h.Bars.ListByOwner(c.Request().Context(), callerID(c))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération de vos bars.", err)
	}
	return c.JSON(http.StatusOK, h.barViews(c, bars))
}

// BarSalles handles GET /api/bars/:id/salles (public): the live rooms of
// one bar.
func (h *Handler) BarSalles(c echo.Context) error {
	ctx := c.Request().Context()
	if _, err := h.Bars.GetByID(ctx, c.Param("id")); err != nil {
		if errors.Is(err, repository.ErrBarNotFound) {
			return fail(c, http.StatusNotFound, "Bar non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des salles.", err)
	}
	salles, err := h.Salles.ListByBar(ctx, c.Param("id"))
	if err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la récupération des salles.", err)
	}
	return c.JSON(http.StatusOK, salles)
}

// UpdateBar handles PUT /api/bars/:id; owner only, omitted fields keep their
// current values.
func (h *Handler) UpdateBar(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.Bars.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBarNotFound) {
			return fail(c, http.StatusNotFound, "Bar non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du bar.", err)
	}
	if !canModify(c, b.Proprietaire) {
		return fail(c, http.StatusForbidden, "Vous n'êtes pas autorisé à modifier ce bar.")
	}
	var body barBody
	if err := c.Bind(&body); err != nil {
		return fail(c, http.StatusBadRequest, "Le corps de la requête est vide ou mal formé.")
	}
	if body.Nom != "" {
		b.Nom = strings.TrimSpace(body.Nom)
	}
	if body.Adresse != "" {
		b.Adresse = strings.TrimSpace(body.Adresse)
	}
	if body.Email != "" {
		b.Email = strings.ToLower(strings.TrimSpace(body.Email))
	}
	if body.Telephone != nil {
		b.Telephone = body.Telephone
	}
	if body.Horaires != nil {
		b.Horaires = body.Horaires
	}
	if body.Description != nil {
		b.Description = body.Description
	}
	if err := h.Bars.Update(ctx, b); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la mise à jour du bar.", err)
	}
	return c.JSON(http.StatusOK, h.barView(c, b))
}

// DeleteBar handles DELETE /api/bars/:id. The bar and all of its salles go
// together in one transaction; this bulk path never touches the
// consistency engine because the parent row disappears with its children.
func (h *Handler) DeleteBar(c echo.Context) error {
	ctx := c.Request().Context()
	b, err := h.Bars.GetByID(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrBarNotFound) {
			return fail(c, http.StatusNotFound, "Bar non trouvé.")
		}
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du bar.", err)
	}
	if !canModify(c, b.Proprietaire) {
		return fail(c, http.StatusForbidden, "Vous n'êtes pas autorisé à supprimer ce bar.")
	}
	if err := h.Bars.DeleteCascade(ctx, b.ID); err != nil {
		return failErr(c, http.StatusInternalServerError, "Erreur lors de la suppression du bar.", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Bar et toutes ses salles supprimés avec succès."})
}
