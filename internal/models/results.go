package models

// TallyRow is one candidate's standing within a position tally. Name and
// affiliation reflect whatever the visibility gate decided to show.
type TallyRow struct {
	CandidateID string  `json:"candidate_id"`
	Seq         int     `json:"seq"`
	Name        string  `json:"name"`
	Affiliation *string `json:"affiliation,omitempty"`
	VoteCount   int     `json:"vote_count"`
	Percentage  float64 `json:"percentage"`
}

// PositionTally is the computed result of one position, ordered by vote
// count descending with ties broken by ascending candidate sequence.
type PositionTally struct {
	PositionID   string     `json:"position_id"`
	PositionName string     `json:"position_name"`
	MaxVotes     int        `json:"max_votes"`
	TotalVotes   int        `json:"total_votes"`
	Revealed     bool       `json:"revealed"`
	Candidates   []TallyRow `json:"candidates"`
}

// ElectionResults aggregates all position tallies of one election.
type ElectionResults struct {
	ElectionID     string          `json:"election_id"`
	ElectionStatus ElectionStatus  `json:"election_status"`
	ScopeFilter    string          `json:"scope_filter,omitempty"`
	Positions      []PositionTally `json:"positions"`
}

// TurnoutSnapshot is derived on demand and never stored. Eligible comes
// from the voter roster; participants and voted are counted independently
// so both denominators stay reportable.
type TurnoutSnapshot struct {
	ElectionID        string  `json:"election_id"`
	ScopeFilter       string  `json:"scope_filter,omitempty"`
	Eligible          int     `json:"eligible"`
	Participants      int     `json:"participants"`
	Voted             int     `json:"voted"`
	ParticipationRate float64 `json:"participation_rate"`
	TurnoutRate       float64 `json:"turnout_rate"`
}
