package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/meremyd/campus-election-api/internal/models"
	appErrors "github.com/meremyd/campus-election-api/pkg/errors"
)

const pqUniqueViolation = "23505"

// BallotRepository persists ballots and their votes. The unique index on
// (election_id, voter_id) is the single enforcement point for the
// one-ballot-per-voter invariant under concurrent submission.
type BallotRepository struct {
	db *sqlx.DB
}

// NewBallotRepository creates a new ballot repository.
func NewBallotRepository(db *sqlx.DB) *BallotRepository {
	return &BallotRepository{db: db}
}

// HasVoted reports whether the voter already holds a ballot for the
// election. Used for fail-fast ordering and the client retry protocol; the
// race with concurrent inserts is closed by the unique index, not here.
func (r *BallotRepository) HasVoted(ctx context.Context, electionID, voterID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM ballots WHERE election_id = $1 AND voter_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, electionID, voterID); err != nil {
		return false, fmt.Errorf("check ballot exists: %w", err)
	}
	return exists, nil
}

// Insert stores the ballot and all of its votes as one atomic unit. A
// unique-constraint violation on the ballot row maps to ErrAlreadyVoted;
// any failure rolls the whole submission back, leaving zero rows.
func (r *BallotRepository) Insert(ctx context.Context, ballot *models.Ballot, votes []models.Vote) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ballot insert: %w", err)
	}
	if ballot.ID == "" {
		ballot.ID = uuid.NewString()
	}
	if ballot.SubmittedAt.IsZero() {
		ballot.SubmittedAt = time.Now().UTC()
	}
	const ballotQuery = `INSERT INTO ballots (id, election_id, voter_id, department_id, submitted_at)
        VALUES (:id, :election_id, :voter_id, :department_id, :submitted_at)`
	if _, err := tx.NamedExecContext(ctx, ballotQuery, ballot); err != nil {
		tx.Rollback() //nolint:errcheck
		if pqErr, ok := err.(*pq.Error); ok && string(pqErr.Code) == pqUniqueViolation {
			return appErrors.ErrAlreadyVoted
		}
		return fmt.Errorf("insert ballot: %w", err)
	}
	for i := range votes {
		if votes[i].ID == "" {
			votes[i].ID = uuid.NewString()
		}
		votes[i].BallotID = ballot.ID
		const voteQuery = `INSERT INTO votes (id, ballot_id, position_id, candidate_id)
            VALUES (:id, :ballot_id, :position_id, :candidate_id)`
		if _, err := tx.NamedExecContext(ctx, voteQuery, votes[i]); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert vote: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ballot: %w", err)
	}
	return nil
}

// CountByElection counts submitted ballots, optionally restricted to one
// department.
func (r *BallotRepository) CountByElection(ctx context.Context, electionID, departmentID string) (int, error) {
	query := `SELECT COUNT(*) FROM ballots WHERE election_id = $1`
	args := []interface{}{electionID}
	if departmentID != "" {
		query += ` AND department_id = $2`
		args = append(args, departmentID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count ballots: %w", err)
	}
	return count, nil
}

// VoteCounts aggregates votes per candidate for one position. Candidates
// with zero votes are included. When departmentID is set, only votes from
// ballots of that department count and totals shrink accordingly.
func (r *BallotRepository) VoteCounts(ctx context.Context, positionID, departmentID string) ([]models.CandidateVoteCount, error) {
	query := `SELECT c.id AS candidate_id, c.seq, c.full_name, c.affiliation, COUNT(fv.id) AS vote_count
        FROM candidates c
        LEFT JOIN (
            SELECT v.id, v.candidate_id
            FROM votes v
            JOIN ballots b ON b.id = v.ballot_id`
	args := []interface{}{positionID}
	if departmentID != "" {
		query += `
            WHERE b.department_id = $2`
		args = append(args, departmentID)
	}
	query += `
        ) fv ON fv.candidate_id = c.id
        WHERE c.position_id = $1
        GROUP BY c.id, c.seq, c.full_name, c.affiliation
        ORDER BY vote_count DESC, c.seq ASC`
	var counts []models.CandidateVoteCount
	if err := r.db.SelectContext(ctx, &counts, query, args...); err != nil {
		return nil, fmt.Errorf("aggregate vote counts: %w", err)
	}
	return counts, nil
}
