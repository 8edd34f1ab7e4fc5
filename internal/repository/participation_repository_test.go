package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newParticipationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestParticipationRepositoryConfirm(t *testing.T) {
	db, mock, cleanup := newParticipationRepoMock(t)
	defer cleanup()
	repo := NewParticipationRepository(db)

	mock.ExpectExec("INSERT INTO participation_records").
		WillReturnResult(sqlmock.NewResult(1, 1))
	confirmedAt := time.Now().UTC()
	mock.ExpectQuery("SELECT id, election_id, voter_id, confirmed_at").
		WithArgs("e1", "v1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "election_id", "voter_id", "confirmed_at"}).
			AddRow("pr1", "e1", "v1", confirmedAt))

	record, err := repo.Confirm(context.Background(), "e1", "v1")
	require.NoError(t, err)
	assert.Equal(t, "pr1", record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipationRepositoryConfirmIdempotent(t *testing.T) {
	db, mock, cleanup := newParticipationRepoMock(t)
	defer cleanup()
	repo := NewParticipationRepository(db)

	// The conflicting insert affects zero rows; the original record wins.
	mock.ExpectExec("INSERT INTO participation_records").
		WillReturnResult(sqlmock.NewResult(0, 0))
	confirmedAt := time.Now().UTC().Add(-time.Hour)
	mock.ExpectQuery("SELECT id, election_id, voter_id, confirmed_at").
		WithArgs("e1", "v1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "election_id", "voter_id", "confirmed_at"}).
			AddRow("original", "e1", "v1", confirmedAt))

	record, err := repo.Confirm(context.Background(), "e1", "v1")
	require.NoError(t, err)
	assert.Equal(t, "original", record.ID)
	assert.WithinDuration(t, confirmedAt, record.ConfirmedAt, time.Second)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipationRepositoryExists(t *testing.T) {
	db, mock, cleanup := newParticipationRepoMock(t)
	defer cleanup()
	repo := NewParticipationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM participation_records WHERE election_id = $1 AND voter_id = $2)")).
		WithArgs("e1", "v1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.Exists(context.Background(), "e1", "v1")
	require.NoError(t, err)
	assert.False(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParticipationRepositoryCountByElectionWithDepartment(t *testing.T) {
	db, mock, cleanup := newParticipationRepoMock(t)
	defer cleanup()
	repo := NewParticipationRepository(db)

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM participation_records pr\\s+JOIN voters vt").
		WithArgs("e1", "d1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))

	count, err := repo.CountByElection(context.Background(), "e1", "d1")
	require.NoError(t, err)
	assert.Equal(t, 7, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
