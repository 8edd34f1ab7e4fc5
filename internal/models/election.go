package models

import "time"

// ElectionScope determines which voters an election is open to.
type ElectionScope string

const (
	// ScopeInstitution opens the election to every active voter.
	ScopeInstitution ElectionScope = "INSTITUTION"
	// ScopeDepartment restricts the election to one department.
	ScopeDepartment ElectionScope = "DEPARTMENT"
)

// ElectionStatus represents the lifecycle state of an election.
type ElectionStatus string

const (
	StatusUpcoming  ElectionStatus = "UPCOMING"
	StatusActive    ElectionStatus = "ACTIVE"
	StatusCompleted ElectionStatus = "COMPLETED"
	StatusCancelled ElectionStatus = "CANCELLED"
)

// statusTransitions is the exhaustive edge table for the election state
// machine. COMPLETED and CANCELLED are terminal.
var statusTransitions = map[ElectionStatus][]ElectionStatus{
	StatusUpcoming: {StatusActive, StatusCancelled},
	StatusActive:   {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports whether the edge s -> target exists.
func (s ElectionStatus) CanTransitionTo(target ElectionStatus) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Terminal reports whether the status accepts no further transitions.
func (s ElectionStatus) Terminal() bool {
	return len(statusTransitions[s]) == 0
}

// Valid reports whether the status is a known lifecycle state.
func (s ElectionStatus) Valid() bool {
	switch s {
	case StatusUpcoming, StatusActive, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Election is the root record of one ballot-casting event.
type Election struct {
	ID            string         `db:"id" json:"id"`
	Scope         ElectionScope  `db:"scope" json:"scope"`
	DepartmentID  *string        `db:"department_id" json:"department_id,omitempty"`
	Year          int            `db:"year" json:"year"`
	Title         string         `db:"title" json:"title"`
	Status        ElectionStatus `db:"status" json:"status"`
	ScheduledDate time.Time      `db:"scheduled_date" json:"scheduled_date"`
	BallotOpen    string         `db:"ballot_open" json:"ballot_open"`
	BallotClose   string         `db:"ballot_close" json:"ballot_close"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
	Positions     []Position     `json:"positions,omitempty"`
}

// BallotWindowContains reports whether now falls inside the configured
// open/close window on the scheduled date. Open and close are clock times
// in "15:04" format; the window is inclusive on both ends.
func (e *Election) BallotWindowContains(now time.Time) bool {
	open, err := time.Parse("15:04", e.BallotOpen)
	if err != nil {
		return false
	}
	closeAt, err := time.Parse("15:04", e.BallotClose)
	if err != nil {
		return false
	}
	year, month, day := e.ScheduledDate.Date()
	loc := now.Location()
	start := time.Date(year, month, day, open.Hour(), open.Minute(), 0, 0, loc)
	end := time.Date(year, month, day, closeAt.Hour(), closeAt.Minute(), 0, 0, loc)
	return !now.Before(start) && !now.After(end)
}

// FindPosition returns the position with the given ID, or nil.
func (e *Election) FindPosition(positionID string) *Position {
	for i := range e.Positions {
		if e.Positions[i].ID == positionID {
			return &e.Positions[i]
		}
	}
	return nil
}

// Position is a single race within an election. MaxVotes is the number of
// distinct candidates a voter may select; immutable once any ballot
// references the position.
type Position struct {
	ID              string      `db:"id" json:"id"`
	ElectionID      string      `db:"election_id" json:"election_id"`
	Name            string      `db:"name" json:"name"`
	OrderIndex      int         `db:"order_index" json:"order_index"`
	MaxVotes        int         `db:"max_votes" json:"max_votes"`
	ResultsReleased bool        `db:"results_released" json:"results_released"`
	CreatedAt       time.Time   `db:"created_at" json:"created_at"`
	Candidates      []Candidate `json:"candidates,omitempty"`
}

// FindCandidate returns the candidate with the given ID, or nil.
func (p *Position) FindCandidate(candidateID string) *Candidate {
	for i := range p.Candidates {
		if p.Candidates[i].ID == candidateID {
			return &p.Candidates[i]
		}
	}
	return nil
}

// Candidate runs for one position. Seq is the stable registration-order
// sequence number printed on the ballot; identity is sensitive until
// results are released.
type Candidate struct {
	ID          string    `db:"id" json:"id"`
	PositionID  string    `db:"position_id" json:"position_id"`
	Seq         int       `db:"seq" json:"seq"`
	FullName    string    `db:"full_name" json:"full_name"`
	Affiliation *string   `db:"affiliation" json:"affiliation,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
