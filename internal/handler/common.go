package handler // handler translates HTTP requests into store operations

import (
	"database/sql"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/middleware"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/repository"
)

// Handler bundles every repository plus the auth settings the user
// endpoints need. One instance serves all route families.
type Handler struct {
	Users        *repository.UserRepo
	Bars         *repository.BarRepo
	Salles       *repository.SalleRepo
	Jeux         *repository.JeuRepo
	Equipes      *repository.EquipeRepo
	Membres      *repository.MembreRepo
	Tournois     *repository.TournoiRepo
	Inscriptions *repository.InscriptionRepo
	Billets      *repository.BilletRepo
	Matchs       *repository.MatchRepo
	Parties      *repository.PartieRepo
	Streams      *repository.StreamRepo

	JWTSecret    string
	AccessTTLMin int
	BcryptCost   int
}

// New wires a Handler over one database handle.
func New(db *sql.DB, jwtSecret string, accessTTLMin, bcryptCost int) *Handler {
	if db == nil {
		panic("nil db passed to handler.New")
	}
	return &Handler{
		Users:        repository.NewUserRepo(db),
		Bars:         repository.NewBarRepo(db),
		Salles:       repository.NewSalleRepo(db),
		Jeux:         repository.NewJeuRepo(db),
		Equipes:      repository.NewEquipeRepo(db),
		Membres:      repository.NewMembreRepo(db),
		Tournois:     repository.NewTournoiRepo(db),
		Inscriptions: repository.NewInscriptionRepo(db),
		Billets:      repository.NewBilletRepo(db),
		Matchs:       repository.NewMatchRepo(db),
		Parties:      repository.NewPartieRepo(db),
		Streams:      repository.NewStreamRepo(db),
		JWTSecret:    jwtSecret,
		AccessTTLMin: accessTTLMin,
		BcryptCost:   bcryptCost,
	}
}

// callerID returns the identity injected by the auth middleware, or ""
// when the route is public and no credential was presented.
func callerID(c echo.Context) string {
	if v, ok := c.Get("user_id").(string); ok {
		return v
	}
	return ""
}

// canModify is the single ownership predicate: the admin identity may touch
// anything, everyone else only resources whose recorded owner is them.
func canModify(c echo.Context, ownerID string) bool {
	id := callerID(c)
	return id == middleware.AdminID || (id != "" && id == ownerID)
}

// fail writes the uniform error body. failErr adds the underlying error
// string the way the source API reports unexpected store failures.
func fail(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"message": msg})
}

func failErr(c echo.Context, status int, msg string, err error) error {
	return c.JSON(status, echo.Map{"message": msg, "error": err.Error()})
}

// Health reports liveness for load balancers.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
