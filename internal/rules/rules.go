// Package rules holds the pre-write invariant checks and the per-entity
// status machines. Everything here is pure: handlers call these before
// touching the store so that rejected writes never reach it.
package rules

import "time"

// Billet statuses. utilisé and annulé are terminal.
const (
	BilletDisponible = "disponible"
	BilletVendu      = "vendu"
	BilletUtilise    = "utilisé"
	BilletAnnule     = "annulé"
)

// Tournoi statuses. terminé and annulé are terminal.
const (
	TournoiAVenir  = "à venir"
	TournoiEnCours = "en cours"
	TournoiTermine = "terminé"
	TournoiAnnule  = "annulé"
)

// Match and partie lifecycle statuses.
const (
	MatchEnAttente = "en_attente"
	MatchEnCours   = "en_cours"
	MatchTermine   = "termine"
	MatchAnnule    = "annule"
)

// Stream statuses; en_direct is the running state.
const (
	StreamEnAttente = "en_attente"
	StreamEnDirect  = "en_direct"
	StreamTermine   = "termine"
	StreamAnnule    = "annule"
)

var billetTypes = map[string]bool{"Standard": true, "VIP": true, "PRESSE": true}

var streamPlateformes = map[string]bool{
	"Twitch": true, "YouTube": true, "Facebook Gaming": true, "Kick": true, "Autre": true,
}

var membreRoles = map[string]bool{"capitaine": true, "joueur": true, "remplacant": true, "coach": true}

var membreStatuts = map[string]bool{"actif": true, "inactif": true, "suspendu": true}

var inscriptionStatuts = map[string]bool{"en_attente": true, "acceptee": true, "refusee": true, "annulee": true}

func ValidBilletType(t string) bool        { return billetTypes[t] }
func ValidStreamPlateforme(p string) bool  { return streamPlateformes[p] }
func ValidMembreRole(r string) bool        { return membreRoles[r] }
func ValidMembreStatut(s string) bool      { return membreStatuts[s] }
func ValidInscriptionStatut(s string) bool { return inscriptionStatuts[s] }

func ValidTournoiStatut(s string) bool {
	switch s {
	case TournoiAVenir, TournoiEnCours, TournoiTermine, TournoiAnnule:
		return true
	}
	return false
}

// JoueursOrdered rejects a game whose minimum player count exceeds its
// maximum.
func JoueursOrdered(min, max int) bool { return min <= max }

// DatesOrdered rejects a tournament whose end does not come strictly after
// its start.
func DatesOrdered(debut, fin time.Time) bool { return fin.After(debut) }

// CanCancelBillet reports whether a ticket may move to annulé from its
// current status. Used tickets stay used and a second cancel is rejected.
func CanCancelBillet(statut string) bool {
	return statut == BilletDisponible || statut == BilletVendu
}

// CanTransitionBillet validates one step of the ticket machine:
// disponible → vendu → utilisé, with annulé reachable from any non-terminal
// state. Terminal states accept nothing.
func CanTransitionBillet(from, to string) bool {
	switch from {
	case BilletDisponible:
		return to == BilletVendu || to == BilletAnnule
	case BilletVendu:
		return to == BilletUtilise || to == BilletAnnule
	}
	return false
}

// CanTransitionTournoi validates à venir → en cours → terminé, with annulé
// reachable from any non-terminal state.
func CanTransitionTournoi(from, to string) bool {
	switch from {
	case TournoiAVenir:
		return to == TournoiEnCours || to == TournoiAnnule
	case TournoiEnCours:
		return to == TournoiTermine || to == TournoiAnnule
	}
	return false
}

// CanTransitionMatch validates en_attente → en_cours → termine, with annule
// reachable from any non-terminal state. Parties follow the same table.
func CanTransitionMatch(from, to string) bool {
	switch from {
	case MatchEnAttente:
		return to == MatchEnCours || to == MatchAnnule
	case MatchEnCours:
		return to == MatchTermine || to == MatchAnnule
	}
	return false
}

// CanTransitionStream validates en_attente → en_direct → termine, with
// annule reachable from any non-terminal state.
func CanTransitionStream(from, to string) bool {
	switch from {
	case StreamEnAttente:
		return to == StreamEnDirect || to == StreamAnnule
	case StreamEnDirect:
		return to == StreamTermine || to == StreamAnnule
	}
	return false
}

// ParticipantsDistinct rejects a match pairing a team against itself.
func ParticipantsDistinct(p1, p2 string) bool { return p1 != p2 }

// InscriptionOpen rejects registrations past their deadline.
func InscriptionOpen(dateLimite, now time.Time) bool { return !now.After(dateLimite) }

// MaillotValid checks the optional jersey number range.
func MaillotValid(n *int) bool { return n == nil || (*n >= 1 && *n <= 99) }
