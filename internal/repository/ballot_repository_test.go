package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meremyd/campus-election-api/internal/models"
	appErrors "github.com/meremyd/campus-election-api/pkg/errors"
)

func newBallotRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestBallotRepositoryHasVoted(t *testing.T) {
	db, mock, cleanup := newBallotRepoMock(t)
	defer cleanup()
	repo := NewBallotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM ballots WHERE election_id = $1 AND voter_id = $2)")).
		WithArgs("e1", "v1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	voted, err := repo.HasVoted(context.Background(), "e1", "v1")
	require.NoError(t, err)
	assert.True(t, voted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBallotRepositoryInsert(t *testing.T) {
	db, mock, cleanup := newBallotRepoMock(t)
	defer cleanup()
	repo := NewBallotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ballots").
		WithArgs(sqlmock.AnyArg(), "e1", "v1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO votes").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "p1", "c1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	ballot := &models.Ballot{ElectionID: "e1", VoterID: "v1"}
	votes := []models.Vote{{PositionID: "p1", CandidateID: "c1"}}
	require.NoError(t, repo.Insert(context.Background(), ballot, votes))
	assert.NotEmpty(t, ballot.ID)
	assert.Equal(t, ballot.ID, votes[0].BallotID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBallotRepositoryInsertDuplicate(t *testing.T) {
	db, mock, cleanup := newBallotRepoMock(t)
	defer cleanup()
	repo := NewBallotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ballots").
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Insert(context.Background(), &models.Ballot{ElectionID: "e1", VoterID: "v1"}, nil)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrAlreadyVoted))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBallotRepositoryInsertVoteFailureRollsBack(t *testing.T) {
	db, mock, cleanup := newBallotRepoMock(t)
	defer cleanup()
	repo := NewBallotRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO ballots").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO votes").
		WillReturnError(assert.AnError)
	mock.ExpectRollback()

	votes := []models.Vote{{PositionID: "p1", CandidateID: "c1"}}
	err := repo.Insert(context.Background(), &models.Ballot{ElectionID: "e1", VoterID: "v1"}, votes)
	require.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBallotRepositoryCountByElection(t *testing.T) {
	db, mock, cleanup := newBallotRepoMock(t)
	defer cleanup()
	repo := NewBallotRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM ballots WHERE election_id = $1 AND department_id = $2")).
		WithArgs("e1", "d1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(42))

	count, err := repo.CountByElection(context.Background(), "e1", "d1")
	require.NoError(t, err)
	assert.Equal(t, 42, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBallotRepositoryVoteCountsIncludesZeroVoteCandidates(t *testing.T) {
	db, mock, cleanup := newBallotRepoMock(t)
	defer cleanup()
	repo := NewBallotRepository(db)

	rows := sqlmock.NewRows([]string{"candidate_id", "seq", "full_name", "affiliation", "vote_count"}).
		AddRow("c2", 2, "Candidate Two", nil, 3).
		AddRow("c1", 1, "Candidate One", nil, 0)
	mock.ExpectQuery("SELECT c.id AS candidate_id").
		WithArgs("p1").
		WillReturnRows(rows)

	counts, err := repo.VoteCounts(context.Background(), "p1", "")
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, 0, counts[1].VoteCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBallotRepositoryVoteCountsDepartmentFilter(t *testing.T) {
	db, mock, cleanup := newBallotRepoMock(t)
	defer cleanup()
	repo := NewBallotRepository(db)

	rows := sqlmock.NewRows([]string{"candidate_id", "seq", "full_name", "affiliation", "vote_count"}).
		AddRow("c1", 1, "Candidate One", nil, 1)
	mock.ExpectQuery("SELECT c.id AS candidate_id").
		WithArgs("p1", "d1").
		WillReturnRows(rows)

	counts, err := repo.VoteCounts(context.Background(), "p1", "d1")
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 1, counts[0].VoteCount)
	assert.NoError(t, mock.ExpectationsWereMet())
}
