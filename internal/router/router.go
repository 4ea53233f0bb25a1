// Package router wires every route family onto the Echo instance. Reads on
// public catalog data stay open; everything mutating sits behind the bearer
// middleware and the rate limiter.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/config"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/handler"
	"github.com/HugoAmiotMagne/TournoiEsport/internal/middleware"
)

// Register mounts all routes under /api.
func Register(e *echo.Echo, h *handler.Handler, cfg config.Config, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	auth := middleware.BearerAuth(cfg.JWTSecret, cfg.AdminToken)
	rl := middleware.RateLimit(rlCfg, rdb)

	api := e.Group("/api")
	api.GET("/health", handler.Health)

	api.POST("/auth/signup", h.Signup, rl)
	api.POST("/auth/login", h.Login, rl)

	users := api.Group("/users")
	users.GET("/:id", h.GetUser)
	users.PUT("/:id", h.UpdateUser, auth, rl)
	users.DELETE("/:id", h.DeleteUser, auth, rl)

	bars := api.Group("/bars")
	bars.GET("", h.ListBars)
	bars.GET("/mes-bars", h.MyBars, auth)
	bars.GET("/:id", h.GetBar)
	bars.GET("/:id/salles", h.BarSalles)
	bars.POST("", h.CreateBar, auth, rl)
	bars.PUT("/:id", h.UpdateBar, auth, rl)
	bars.DELETE("/:id", h.DeleteBar, auth, rl)

	salles := api.Group("/salles")
	salles.GET("", h.ListSalles)
	salles.GET("/mes-salles", h.MySalles, auth)
	salles.GET("/bar/:barId", h.SallesByBar)
	salles.GET("/:id", h.GetSalle)
	salles.POST("", h.CreateSalle, auth, rl)
	salles.PUT("/:id", h.UpdateSalle, auth, rl)
	salles.DELETE("/:id", h.DeleteSalle, auth, rl)

	jeux := api.Group("/jeux")
	jeux.GET("", h.ListJeux)
	jeux.GET("/:id", h.GetJeu)
	jeux.GET("/:id/tournois", h.JeuTournois)
	jeux.POST("", h.CreateJeu, auth, rl)
	jeux.PUT("/:id", h.UpdateJeu, auth, rl)
	jeux.DELETE("/:id", h.DeleteJeu, auth, rl)

	equipes := api.Group("/equipes")
	equipes.GET("", h.ListEquipes)
	equipes.GET("/mes-equipes", h.MyEquipes, auth)
	equipes.GET("/user/:userId", h.EquipesByUser)
	equipes.GET("/:id", h.GetEquipe)
	equipes.POST("", h.CreateEquipe, auth, rl)
	equipes.PUT("/:id", h.UpdateEquipe, auth, rl)
	equipes.POST("/:id/quitter", h.QuitEquipe, auth, rl)
	equipes.POST("/:id/transferer-capitaine", h.TransferCapitaine, auth, rl)
	equipes.DELETE("/:id/membres/:membreId", h.RemoveEquipeMembre, auth, rl)

	membres := api.Group("/membres", auth)
	membres.GET("", h.ListMembres)
	membres.GET("/mes-equipes", h.MyMembres)
	membres.GET("/equipe/:equipeId", h.MembresByEquipe)
	membres.GET("/user/:userId", h.MembresByUser)
	membres.GET("/:id", h.GetMembre)
	membres.POST("", h.CreateMembre, rl)
	membres.PUT("/:id", h.UpdateMembre, rl)
	membres.DELETE("/:id", h.DeleteMembre, rl)

	tournois := api.Group("/tournois")
	tournois.GET("", h.ListTournois)
	tournois.GET("/mes-tournois", h.MyTournois, auth)
	tournois.GET("/jeu/:jeuId", h.TournoisByJeu)
	tournois.GET("/:id", h.GetTournoi)
	tournois.GET("/:id/inscriptions", h.TournoiInscriptions, auth)
	tournois.POST("", h.CreateTournoi, auth, rl)
	tournois.PUT("/:id", h.UpdateTournoi, auth, rl)
	tournois.PATCH("/:id/statut", h.PatchTournoiStatut, auth, rl)
	tournois.DELETE("/:id", h.DeleteTournoi, auth, rl)

	inscriptions := api.Group("/inscriptions", auth)
	inscriptions.GET("", h.ListInscriptions)
	inscriptions.GET("/mes-inscriptions", h.MyInscriptions)
	inscriptions.GET("/tournoi/:tournoiId", h.InscriptionsByTournoi)
	inscriptions.GET("/equipe/:equipeId", h.InscriptionsByEquipe)
	inscriptions.GET("/:id", h.GetInscription)
	inscriptions.POST("", h.CreateInscription, rl)
	inscriptions.PUT("/:id", h.UpdateInscription, rl)
	inscriptions.DELETE("/:id", h.DeleteInscription, rl)

	billets := api.Group("/billets", auth)
	billets.GET("", h.ListBillets)
	billets.GET("/mes-billets", h.MyBillets)
	billets.GET("/:id", h.GetBillet)
	billets.POST("", h.CreateBillet, rl)
	billets.PUT("/:id", h.UpdateBillet, rl)
	billets.PATCH("/:id/statut", h.PatchBilletStatut, rl)
	billets.PUT("/:id/annuler", h.CancelBillet, rl)
	billets.DELETE("/:id", h.DeleteBillet, rl)

	matchs := api.Group("/matchs")
	matchs.GET("", h.ListMatchs)
	matchs.GET("/tournoi/:tournoiId", h.MatchsByTournoi)
	matchs.GET("/equipe/:equipeId", h.MatchsByEquipe)
	matchs.GET("/:id", h.GetMatch)
	matchs.POST("", h.CreateMatch, auth, rl)
	matchs.PUT("/:id", h.UpdateMatch, auth, rl)
	matchs.PATCH("/:id/status", h.PatchMatchStatus, auth, rl)
	matchs.DELETE("/:id", h.DeleteMatch, auth, rl)

	parties := api.Group("/parties")
	parties.GET("", h.ListParties)
	parties.GET("/match/:matchId", h.PartiesByMatch)
	parties.GET("/:id", h.GetPartie)
	parties.POST("", h.CreatePartie, auth, rl)
	parties.PUT("/:id", h.UpdatePartie, auth, rl)
	parties.DELETE("/:id", h.DeletePartie, auth, rl)

	streams := api.Group("/streams")
	streams.GET("", h.ListStreams)
	streams.GET("/partie/:partieId", h.StreamsByPartie)
	streams.GET("/:id", h.GetStream)
	streams.POST("", h.CreateStream, auth, rl)
	streams.PUT("/:id", h.UpdateStream, auth, rl)
	streams.DELETE("/:id", h.DeleteStream, auth, rl)
}
