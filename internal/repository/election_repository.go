package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/meremyd/campus-election-api/internal/models"
)

// ElectionRepository handles election, position and candidate persistence.
type ElectionRepository struct {
	db *sqlx.DB
}

// NewElectionRepository creates a new election repository.
func NewElectionRepository(db *sqlx.DB) *ElectionRepository {
	return &ElectionRepository{db: db}
}

// Create inserts an election together with its positions and candidates in
// one transaction.
func (r *ElectionRepository) Create(ctx context.Context, election *models.Election) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create election: %w", err)
	}
	now := time.Now().UTC()
	if election.ID == "" {
		election.ID = uuid.NewString()
	}
	election.CreatedAt = now
	election.UpdatedAt = now
	const electionQuery = `INSERT INTO elections (id, scope, department_id, year, title, status, scheduled_date, ballot_open, ballot_close, created_at, updated_at)
        VALUES (:id, :scope, :department_id, :year, :title, :status, :scheduled_date, :ballot_open, :ballot_close, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, electionQuery, election); err != nil {
		tx.Rollback() //nolint:errcheck
		return fmt.Errorf("insert election: %w", err)
	}
	for i := range election.Positions {
		position := &election.Positions[i]
		if position.ID == "" {
			position.ID = uuid.NewString()
		}
		position.ElectionID = election.ID
		position.CreatedAt = now
		const positionQuery = `INSERT INTO positions (id, election_id, name, order_index, max_votes, results_released, created_at)
            VALUES (:id, :election_id, :name, :order_index, :max_votes, :results_released, :created_at)`
		if _, err := tx.NamedExecContext(ctx, positionQuery, position); err != nil {
			tx.Rollback() //nolint:errcheck
			return fmt.Errorf("insert position: %w", err)
		}
		for j := range position.Candidates {
			candidate := &position.Candidates[j]
			if candidate.ID == "" {
				candidate.ID = uuid.NewString()
			}
			candidate.PositionID = position.ID
			candidate.CreatedAt = now
			const candidateQuery = `INSERT INTO candidates (id, position_id, seq, full_name, affiliation, created_at)
                VALUES (:id, :position_id, :seq, :full_name, :affiliation, :created_at)`
			if _, err := tx.NamedExecContext(ctx, candidateQuery, candidate); err != nil {
				tx.Rollback() //nolint:errcheck
				return fmt.Errorf("insert candidate: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create election: %w", err)
	}
	return nil
}

// FindByID returns the bare election row.
func (r *ElectionRepository) FindByID(ctx context.Context, id string) (*models.Election, error) {
	const query = `SELECT id, scope, department_id, year, title, status, scheduled_date, ballot_open, ballot_close, created_at, updated_at
        FROM elections WHERE id = $1`
	var election models.Election
	if err := r.db.GetContext(ctx, &election, query, id); err != nil {
		return nil, err
	}
	return &election, nil
}

// List returns elections ordered by scheduled date descending.
func (r *ElectionRepository) List(ctx context.Context) ([]models.Election, error) {
	const query = `SELECT id, scope, department_id, year, title, status, scheduled_date, ballot_open, ballot_close, created_at, updated_at
        FROM elections ORDER BY scheduled_date DESC, created_at DESC`
	var elections []models.Election
	if err := r.db.SelectContext(ctx, &elections, query); err != nil {
		return nil, fmt.Errorf("list elections: %w", err)
	}
	return elections, nil
}

// PositionsWithCandidates loads every position of the election with its
// candidates attached, ordered by position order then candidate sequence.
func (r *ElectionRepository) PositionsWithCandidates(ctx context.Context, electionID string) ([]models.Position, error) {
	const positionQuery = `SELECT id, election_id, name, order_index, max_votes, results_released, created_at
        FROM positions WHERE election_id = $1 ORDER BY order_index ASC`
	var positions []models.Position
	if err := r.db.SelectContext(ctx, &positions, positionQuery, electionID); err != nil {
		return nil, fmt.Errorf("list positions: %w", err)
	}
	if len(positions) == 0 {
		return positions, nil
	}
	const candidateQuery = `SELECT c.id, c.position_id, c.seq, c.full_name, c.affiliation, c.created_at
        FROM candidates c
        JOIN positions p ON p.id = c.position_id
        WHERE p.election_id = $1
        ORDER BY c.seq ASC`
	var candidates []models.Candidate
	if err := r.db.SelectContext(ctx, &candidates, candidateQuery, electionID); err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	byPosition := make(map[string][]models.Candidate, len(positions))
	for _, candidate := range candidates {
		byPosition[candidate.PositionID] = append(byPosition[candidate.PositionID], candidate)
	}
	for i := range positions {
		positions[i].Candidates = byPosition[positions[i].ID]
	}
	return positions, nil
}

// UpdateStatus performs the conditional status transition. The WHERE clause
// on the current status serializes concurrent transitions per election:
// only one actor wins, the loser sees zero rows affected.
func (r *ElectionRepository) UpdateStatus(ctx context.Context, id string, from, to models.ElectionStatus) (bool, error) {
	const query = `UPDATE elections SET status = $1, updated_at = $2 WHERE id = $3 AND status = $4`
	result, err := r.db.ExecContext(ctx, query, to, time.Now().UTC(), id, from)
	if err != nil {
		return false, fmt.Errorf("update election status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update election status rows: %w", err)
	}
	return affected > 0, nil
}

// SetPositionReleased flips the manual result-release flag for a position.
func (r *ElectionRepository) SetPositionReleased(ctx context.Context, electionID, positionID string, released bool) (bool, error) {
	const query = `UPDATE positions SET results_released = $1 WHERE id = $2 AND election_id = $3`
	result, err := r.db.ExecContext(ctx, query, released, positionID, electionID)
	if err != nil {
		return false, fmt.Errorf("set position released: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("set position released rows: %w", err)
	}
	return affected > 0, nil
}
