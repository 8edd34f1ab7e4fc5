package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/meremyd/campus-election-api/internal/models"
)

// DirectoryRepository reads the voter roster maintained by the campus
// identity system. Strictly read-only; voter management lives elsewhere.
type DirectoryRepository struct {
	db *sqlx.DB
}

// NewDirectoryRepository creates a new directory repository.
func NewDirectoryRepository(db *sqlx.DB) *DirectoryRepository {
	return &DirectoryRepository{db: db}
}

// FindVoter returns the roster record for a voter.
func (r *DirectoryRepository) FindVoter(ctx context.Context, id string) (*models.VoterRecord, error) {
	const query = `SELECT id, department_id, active, created_at FROM voters WHERE id = $1`
	var voter models.VoterRecord
	if err := r.db.GetContext(ctx, &voter, query, id); err != nil {
		return nil, err
	}
	return &voter, nil
}

// EligibleCount counts active voters, optionally restricted to one
// department. A zero count is a valid answer, not an error.
func (r *DirectoryRepository) EligibleCount(ctx context.Context, departmentID string) (int, error) {
	query := `SELECT COUNT(*) FROM voters WHERE active = TRUE`
	var args []interface{}
	if departmentID != "" {
		query += ` AND department_id = $1`
		args = append(args, departmentID)
	}
	var count int
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count eligible voters: %w", err)
	}
	return count, nil
}
