package models

import "time"

// ParticipationRecord captures a voter's confirmed intent to participate in
// an election. Distinct from having voted; used as an alternate turnout
// denominator.
type ParticipationRecord struct {
	ID          string    `db:"id" json:"id"`
	ElectionID  string    `db:"election_id" json:"election_id"`
	VoterID     string    `db:"voter_id" json:"voter_id"`
	ConfirmedAt time.Time `db:"confirmed_at" json:"confirmed_at"`
}
