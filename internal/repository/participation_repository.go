package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/meremyd/campus-election-api/internal/models"
)

// ParticipationRepository persists participation confirmations.
type ParticipationRepository struct {
	db *sqlx.DB
}

// NewParticipationRepository creates a new participation repository.
func NewParticipationRepository(db *sqlx.DB) *ParticipationRepository {
	return &ParticipationRepository{db: db}
}

// Confirm records the voter's intent to participate. Idempotent: a second
// confirmation for the same (election, voter) pair is a no-op and the
// existing record is returned.
func (r *ParticipationRepository) Confirm(ctx context.Context, electionID, voterID string) (*models.ParticipationRecord, error) {
	record := &models.ParticipationRecord{
		ID:          uuid.NewString(),
		ElectionID:  electionID,
		VoterID:     voterID,
		ConfirmedAt: time.Now().UTC(),
	}
	const insertQuery = `INSERT INTO participation_records (id, election_id, voter_id, confirmed_at)
        VALUES (:id, :election_id, :voter_id, :confirmed_at)
        ON CONFLICT (election_id, voter_id) DO NOTHING`
	if _, err := r.db.NamedExecContext(ctx, insertQuery, record); err != nil {
		return nil, fmt.Errorf("insert participation: %w", err)
	}
	const selectQuery = `SELECT id, election_id, voter_id, confirmed_at
        FROM participation_records WHERE election_id = $1 AND voter_id = $2`
	var existing models.ParticipationRecord
	if err := r.db.GetContext(ctx, &existing, selectQuery, electionID, voterID); err != nil {
		return nil, fmt.Errorf("load participation: %w", err)
	}
	return &existing, nil
}

// Exists reports whether the voter has confirmed participation.
func (r *ParticipationRepository) Exists(ctx context.Context, electionID, voterID string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM participation_records WHERE election_id = $1 AND voter_id = $2)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, electionID, voterID); err != nil {
		return false, fmt.Errorf("check participation: %w", err)
	}
	return exists, nil
}

// CountByElection counts confirmations, optionally restricted to one
// department via the voter roster.
func (r *ParticipationRepository) CountByElection(ctx context.Context, electionID, departmentID string) (int, error) {
	query := `SELECT COUNT(*) FROM participation_records pr WHERE pr.election_id = $1`
	args := []interface{}{electionID}
	if departmentID != "" {
		query = `SELECT COUNT(*) FROM participation_records pr
            JOIN voters vt ON vt.id = pr.voter_id
            WHERE pr.election_id = $1 AND vt.department_id = $2`
		args = append(args, departmentID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count participation: %w", err)
	}
	return count, nil
}
