package models

import "time"

// Ballot is one voter's single, complete, immutable submission for one
// election. Uniqueness of (election_id, voter_id) is enforced by the
// storage layer, never by application-level read-then-write.
type Ballot struct {
	ID           string    `db:"id" json:"id"`
	ElectionID   string    `db:"election_id" json:"election_id"`
	VoterID      string    `db:"voter_id" json:"voter_id"`
	DepartmentID *string   `db:"department_id" json:"department_id,omitempty"`
	SubmittedAt  time.Time `db:"submitted_at" json:"submitted_at"`
}

// Vote is a single (position, candidate) selection within a ballot.
type Vote struct {
	ID          string `db:"id" json:"id"`
	BallotID    string `db:"ballot_id" json:"ballot_id"`
	PositionID  string `db:"position_id" json:"position_id"`
	CandidateID string `db:"candidate_id" json:"candidate_id"`
}

// CandidateVoteCount is one aggregated tally row straight from the store.
type CandidateVoteCount struct {
	CandidateID string  `db:"candidate_id" json:"candidate_id"`
	Seq         int     `db:"seq" json:"seq"`
	FullName    string  `db:"full_name" json:"full_name"`
	Affiliation *string `db:"affiliation" json:"affiliation,omitempty"`
	VoteCount   int     `db:"vote_count" json:"vote_count"`
}

// BallotStatus is the read-only projection of a voter's standing in one
// election, served so clients never track open/closed state themselves.
type BallotStatus struct {
	ElectionID      string         `json:"election_id"`
	ElectionStatus  ElectionStatus `json:"election_status"`
	WindowOpen      bool           `json:"window_open"`
	HasParticipated bool           `json:"has_participated"`
	HasVoted        bool           `json:"has_voted"`
	BallotOpensAt   string         `json:"ballot_opens_at"`
	BallotClosesAt  string         `json:"ballot_closes_at"`
}
