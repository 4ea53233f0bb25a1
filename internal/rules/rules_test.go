package rules

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBilletTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		ok       bool
	}{
		{BilletDisponible, BilletVendu, true},
		{BilletDisponible, BilletAnnule, true},
		{BilletDisponible, BilletUtilise, false},
		{BilletVendu, BilletUtilise, true},
		{BilletVendu, BilletAnnule, true},
		{BilletVendu, BilletDisponible, false},
		{BilletUtilise, BilletAnnule, false},
		{BilletAnnule, BilletVendu, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransitionBillet(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestCanCancelBillet(t *testing.T) {
	assert.True(t, CanCancelBillet(BilletDisponible))
	assert.True(t, CanCancelBillet(BilletVendu))
	assert.False(t, CanCancelBillet(BilletUtilise), "a used ticket stays used")
	assert.False(t, CanCancelBillet(BilletAnnule), "a second cancel is rejected")
}

func TestTournoiTransitions(t *testing.T) {
	assert.True(t, CanTransitionTournoi(TournoiAVenir, TournoiEnCours))
	assert.True(t, CanTransitionTournoi(TournoiAVenir, TournoiAnnule))
	assert.True(t, CanTransitionTournoi(TournoiEnCours, TournoiTermine))
	assert.True(t, CanTransitionTournoi(TournoiEnCours, TournoiAnnule))
	assert.False(t, CanTransitionTournoi(TournoiAVenir, TournoiTermine), "no skipping en cours")
	assert.False(t, CanTransitionTournoi(TournoiTermine, TournoiEnCours))
	assert.False(t, CanTransitionTournoi(TournoiAnnule, TournoiAVenir))
}

func TestMatchTransitions(t *testing.T) {
	assert.True(t, CanTransitionMatch(MatchEnAttente, MatchEnCours))
	assert.True(t, CanTransitionMatch(MatchEnCours, MatchTermine))
	assert.True(t, CanTransitionMatch(MatchEnAttente, MatchAnnule))
	assert.False(t, CanTransitionMatch(MatchEnAttente, MatchTermine))
	assert.False(t, CanTransitionMatch(MatchTermine, MatchEnCours))
}

func TestStreamTransitions(t *testing.T) {
	assert.True(t, CanTransitionStream(StreamEnAttente, StreamEnDirect))
	assert.True(t, CanTransitionStream(StreamEnDirect, StreamTermine))
	assert.True(t, CanTransitionStream(StreamEnDirect, StreamAnnule))
	assert.False(t, CanTransitionStream(StreamEnAttente, StreamTermine))
	assert.False(t, CanTransitionStream(StreamTermine, StreamEnDirect))
}

func TestValiditySets(t *testing.T) {
	assert.True(t, ValidBilletType("VIP"))
	assert.False(t, ValidBilletType("vip"), "types are case-sensitive")
	assert.True(t, ValidStreamPlateforme("Twitch"))
	assert.False(t, ValidStreamPlateforme("Dailymotion"))
	assert.True(t, ValidMembreRole("remplacant"))
	assert.False(t, ValidMembreRole("manager"))
	assert.True(t, ValidInscriptionStatut("acceptee"))
	assert.False(t, ValidInscriptionStatut("validee"))
	assert.True(t, ValidTournoiStatut("en cours"))
	assert.False(t, ValidTournoiStatut("en_cours"))
}

func TestDatesOrdered(t *testing.T) {
	now := time.Now()
	assert.True(t, DatesOrdered(now, now.Add(time.Hour)))
	assert.False(t, DatesOrdered(now, now), "equal dates are rejected")
	assert.False(t, DatesOrdered(now, now.Add(-time.Hour)))
}

func TestInscriptionOpen(t *testing.T) {
	limite := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	assert.True(t, InscriptionOpen(limite, limite.Add(-time.Minute)))
	assert.True(t, InscriptionOpen(limite, limite), "the deadline itself is still open")
	assert.False(t, InscriptionOpen(limite, limite.Add(time.Second)))
}

func TestMaillotValid(t *testing.T) {
	n := func(v int) *int { return &v }
	assert.True(t, MaillotValid(nil))
	assert.True(t, MaillotValid(n(1)))
	assert.True(t, MaillotValid(n(99)))
	assert.False(t, MaillotValid(n(0)))
	assert.False(t, MaillotValid(n(100)))
}

func TestParticipantsDistinct(t *testing.T) {
	assert.True(t, ParticipantsDistinct("equipe-a", "equipe-b"))
	assert.False(t, ParticipantsDistinct("equipe-a", "equipe-a"), "a team cannot play itself")
	assert.True(t, ParticipantsDistinct("", "equipe-b"), "presence is checked before distinctness")
}

func TestJoueursOrdered(t *testing.T) {
	assert.True(t, JoueursOrdered(1, 5))
	assert.True(t, JoueursOrdered(5, 5))
	assert.False(t, JoueursOrdered(6, 5))
}
