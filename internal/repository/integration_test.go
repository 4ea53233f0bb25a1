package repository

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/HugoAmiotMagne/TournoiEsport/internal/consistency"
)

// openTestDB connects to the database named by TEST_DATABASE_DSN. The DSN
// must include parseTime=true and point at a schema where schema.sql has
// been applied. Without the variable the test is skipped.
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	db, err := sql.Open("mysql", dsn)
	require.NoError(t, err)
	require.NoError(t, db.Ping())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBarSalleLifecycle(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	bars := NewBarRepo(db)
	salles := NewSalleRepo(db)

	owner := uuid.NewString()
	bar := &Bar{
		Nom:          "Le Respawn",
		Adresse:      "12 rue des Arcades",
		Email:        uuid.NewString() + "@respawn.test",
		Proprietaire: owner,
	}
	require.NoError(t, bars.Create(ctx, bar))
	t.Cleanup(func() { _ = bars.DeleteCascade(ctx, bar.ID) })
	require.Empty(t, bar.Salles)

	s1 := &Salle{Nom: "Salle A", CapaciteSpectateur: 40, Equipement: "PC", NombreJoueur: 10, Disponible: true, Bar: bar.ID}
	s2 := &Salle{Nom: "Salle B", CapaciteSpectateur: 20, Equipement: "Console", NombreJoueur: 4, Disponible: true, Bar: bar.ID}
	require.NoError(t, salles.Create(ctx, s1))
	require.NoError(t, consistency.OnChildCreated(ctx, bars.SalleLinks(), bar.ID, s1.ID))
	require.NoError(t, salles.Create(ctx, s2))
	require.NoError(t, consistency.OnChildCreated(ctx, bars.SalleLinks(), bar.ID, s2.ID))

	// A repeated notification must not duplicate the reference.
	require.NoError(t, consistency.OnChildCreated(ctx, bars.SalleLinks(), bar.ID, s1.ID))

	got, err := bars.GetByID(ctx, bar.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{s1.ID, s2.ID}, got.Salles)

	listed, err := salles.ListByBar(ctx, bar.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	byOwner, err := bars.ListByOwner(ctx, owner)
	require.NoError(t, err)
	require.Len(t, byOwner, 1)

	require.NoError(t, salles.Delete(ctx, s1.ID))
	require.NoError(t, consistency.OnChildDeleted(ctx, bars.SalleLinks(), bar.ID, s1.ID))

	got, err = bars.GetByID(ctx, bar.ID)
	require.NoError(t, err)
	require.Equal(t, []string{s2.ID}, got.Salles)

	require.NoError(t, bars.DeleteCascade(ctx, bar.ID))
	_, err = bars.GetByID(ctx, bar.ID)
	require.ErrorIs(t, err, ErrBarNotFound)
	_, err = salles.GetByID(ctx, s2.ID)
	require.ErrorIs(t, err, ErrSalleNotFound)
}

func TestInscriptionPairAndCapacityQueries(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	inscriptions := NewInscriptionRepo(db)

	tournoi := uuid.NewString()
	equipeA := uuid.NewString()
	equipeB := uuid.NewString()
	equipeC := uuid.NewString()

	mk := func(equipe, statut string) *Inscription {
		i := &Inscription{
			DateLimite: time.Now().Add(24 * time.Hour).UTC(),
			Statut:     statut,
			Tournoi:    tournoi,
			Equipe:     equipe,
		}
		require.NoError(t, inscriptions.Create(ctx, i))
		t.Cleanup(func() { _ = inscriptions.Delete(ctx, i.ID) })
		return i
	}
	first := mk(equipeA, "en_attente")
	mk(equipeB, "acceptee")
	mk(equipeC, "refusee")

	found, err := inscriptions.FindByTournoiAndEquipe(ctx, tournoi, equipeA)
	require.NoError(t, err)
	require.Equal(t, first.ID, found.ID)

	// The unique-pair lookup must not match across teams or tournaments.
	_, err = inscriptions.FindByTournoiAndEquipe(ctx, tournoi, uuid.NewString())
	require.ErrorIs(t, err, ErrInscriptionNotFound)
	_, err = inscriptions.FindByTournoiAndEquipe(ctx, uuid.NewString(), equipeA)
	require.ErrorIs(t, err, ErrInscriptionNotFound)

	// Refused registrations free their slot: only en_attente and acceptee
	// count toward the cap.
	n, err := inscriptions.CountActive(ctx, tournoi)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	n, err = inscriptions.CountActive(ctx, uuid.NewString())
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestMembreCapitaineUnique(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	membres := NewMembreRepo(db)

	equipe := uuid.NewString()
	capitaine := &MembreTeam{Role: "capitaine", User: uuid.NewString(), Equipe: equipe, Statut: "actif"}
	require.NoError(t, membres.Create(ctx, capitaine))
	t.Cleanup(func() { _ = membres.Delete(ctx, capitaine.ID) })

	joueur := &MembreTeam{Role: "joueur", User: uuid.NewString(), Equipe: equipe, Statut: "actif"}
	require.NoError(t, membres.Create(ctx, joueur))
	t.Cleanup(func() { _ = membres.Delete(ctx, joueur.ID) })

	has, err := membres.HasCapitaine(ctx, equipe, "")
	require.NoError(t, err)
	require.True(t, has, "a second capitaine row must be refused upstream")

	// Excluding the sitting capitaine's own row is how the transfer path
	// asks "anyone else?".
	has, err = membres.HasCapitaine(ctx, equipe, capitaine.ID)
	require.NoError(t, err)
	require.False(t, has)

	has, err = membres.HasCapitaine(ctx, uuid.NewString(), "")
	require.NoError(t, err)
	require.False(t, has)

	found, err := membres.FindByUserAndEquipe(ctx, joueur.User, equipe)
	require.NoError(t, err)
	require.Equal(t, joueur.ID, found.ID)
	_, err = membres.FindByUserAndEquipe(ctx, joueur.User, uuid.NewString())
	require.ErrorIs(t, err, ErrMembreNotFound)
}

func TestBarUniqueEmailLookup(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	bars := NewBarRepo(db)

	email := uuid.NewString() + "@lookup.test"
	bar := &Bar{Nom: "Le Checkpoint", Adresse: "3 place du Forum", Email: email, Proprietaire: uuid.NewString()}
	require.NoError(t, bars.Create(ctx, bar))
	t.Cleanup(func() { _ = bars.DeleteCascade(ctx, bar.ID) })

	found, err := bars.GetByEmail(ctx, strings.ToUpper(email))
	require.NoError(t, err)
	require.Equal(t, bar.ID, found.ID)

	_, err = bars.GetByEmail(ctx, uuid.NewString()+"@lookup.test")
	require.ErrorIs(t, err, ErrBarNotFound)
}
