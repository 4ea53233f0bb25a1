// Package queue defines message payloads exchanged over the message broker.
package queue

// InscriptionConfirmedEvent is published when a team registration is
// successfully recorded. It carries enough context for downstream consumers
// to log or notify without querying the primary database.
type InscriptionConfirmedEvent struct {
	InscriptionID string  `json:"inscription_id"`
	TournoiID     string  `json:"tournoi_id"`
	TournoiNom    string  `json:"tournoi_nom"`
	EquipeID      string  `json:"equipe_id"`
	EquipeNom     string  `json:"equipe_nom"`
	Statut        string  `json:"statut"`
	PrixPaye      float64 `json:"prix_paye"`
	InscritA      string  `json:"inscrit_a"`
}

// QueueName is the broker queue the event travels on.
const QueueName = "inscription.confirmee"
