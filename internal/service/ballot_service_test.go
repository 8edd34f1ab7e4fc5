package service

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meremyd/campus-election-api/internal/models"
	appErrors "github.com/meremyd/campus-election-api/pkg/errors"
)

type fakeBallotStore struct {
	mu      sync.Mutex
	ballots map[string]*models.Ballot
	votes   map[string][]models.Vote
	hasErr  error
}

func newFakeBallotStore() *fakeBallotStore {
	return &fakeBallotStore{
		ballots: make(map[string]*models.Ballot),
		votes:   make(map[string][]models.Vote),
	}
}

func (f *fakeBallotStore) key(electionID, voterID string) string {
	return electionID + "|" + voterID
}

func (f *fakeBallotStore) HasVoted(ctx context.Context, electionID, voterID string) (bool, error) {
	if f.hasErr != nil {
		return false, f.hasErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.ballots[f.key(electionID, voterID)]
	return ok, nil
}

func (f *fakeBallotStore) Insert(ctx context.Context, ballot *models.Ballot, votes []models.Vote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.key(ballot.ElectionID, ballot.VoterID)
	if _, ok := f.ballots[key]; ok {
		return appErrors.ErrAlreadyVoted
	}
	if ballot.ID == "" {
		ballot.ID = "ballot-" + key
	}
	cp := *ballot
	f.ballots[key] = &cp
	f.votes[key] = votes
	return nil
}

type fakeElectionStore struct {
	election *models.Election
}

func (f *fakeElectionStore) FindByID(ctx context.Context, id string) (*models.Election, error) {
	if f.election == nil || f.election.ID != id {
		return nil, sql.ErrNoRows
	}
	cp := *f.election
	cp.Positions = nil
	return &cp, nil
}

func (f *fakeElectionStore) PositionsWithCandidates(ctx context.Context, electionID string) ([]models.Position, error) {
	if f.election == nil || f.election.ID != electionID {
		return nil, sql.ErrNoRows
	}
	return f.election.Positions, nil
}

type fakeDirectory struct {
	voters map[string]*models.VoterRecord
}

func (f *fakeDirectory) FindVoter(ctx context.Context, id string) (*models.VoterRecord, error) {
	if voter, ok := f.voters[id]; ok {
		cp := *voter
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func strPtr(s string) *string { return &s }

func activeElection() *models.Election {
	return &models.Election{
		ID:            "e1",
		Scope:         models.ScopeInstitution,
		Year:          2026,
		Title:         "Student Council 2026",
		Status:        models.StatusActive,
		ScheduledDate: time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		BallotOpen:    "08:00",
		BallotClose:   "17:00",
		Positions: []models.Position{
			{ID: "p1", ElectionID: "e1", Name: "President", MaxVotes: 1, Candidates: []models.Candidate{
				{ID: "c1", PositionID: "p1", Seq: 1, FullName: "Candidate One"},
				{ID: "c2", PositionID: "p1", Seq: 2, FullName: "Candidate Two"},
			}},
			{ID: "p2", ElectionID: "e1", Name: "Senator", MaxVotes: 2, Candidates: []models.Candidate{
				{ID: "s1", PositionID: "p2", Seq: 1, FullName: "Senator One"},
				{ID: "s2", PositionID: "p2", Seq: 2, FullName: "Senator Two"},
				{ID: "s3", PositionID: "p2", Seq: 3, FullName: "Senator Three"},
			}},
		},
	}
}

func insideWindow() time.Time {
	return time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
}

func newTestBallotService(ballots *fakeBallotStore, election *models.Election, voters map[string]*models.VoterRecord) *BallotService {
	elections := &fakeElectionStore{election: election}
	directory := &fakeDirectory{voters: voters}
	svc := NewBallotService(ballots, elections, directory, nil, nil, nil)
	return svc.WithClock(insideWindow)
}

func activeRoster() map[string]*models.VoterRecord {
	return map[string]*models.VoterRecord{
		"v1": {ID: "v1", Active: true, DepartmentID: strPtr("d1")},
		"v2": {ID: "v2", Active: true, DepartmentID: strPtr("d2")},
	}
}

func TestBallotServiceCast(t *testing.T) {
	store := newFakeBallotStore()
	svc := newTestBallotService(store, activeElection(), activeRoster())

	ballot, err := svc.Cast(context.Background(), CastBallotRequest{
		ElectionID: "e1",
		VoterID:    "v1",
		Selections: map[string][]string{
			"p1": {"c2"},
			"p2": {"s1", "s3"},
		},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ballot.ID)
	require.NotNil(t, ballot.DepartmentID)
	assert.Equal(t, "d1", *ballot.DepartmentID)
	assert.Len(t, store.votes["e1|v1"], 3)
}

func TestBallotServiceCastAbstentionAllowed(t *testing.T) {
	store := newFakeBallotStore()
	svc := newTestBallotService(store, activeElection(), activeRoster())

	ballot, err := svc.Cast(context.Background(), CastBallotRequest{
		ElectionID: "e1",
		VoterID:    "v1",
		Selections: map[string][]string{},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, ballot.ID)
	assert.Empty(t, store.votes["e1|v1"])
}

func TestBallotServiceCastWindowClosed(t *testing.T) {
	store := newFakeBallotStore()
	svc := newTestBallotService(store, activeElection(), activeRoster()).
		WithClock(func() time.Time { return time.Date(2026, 5, 4, 18, 0, 0, 0, time.UTC) })

	_, err := svc.Cast(context.Background(), CastBallotRequest{
		ElectionID: "e1",
		VoterID:    "v1",
		Selections: map[string][]string{"p1": {"c1"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrBallotWindowClosed))
	assert.Empty(t, store.ballots)
}

func TestBallotServiceCastElectionNotActive(t *testing.T) {
	election := activeElection()
	election.Status = models.StatusUpcoming
	store := newFakeBallotStore()
	svc := newTestBallotService(store, election, activeRoster())

	_, err := svc.Cast(context.Background(), CastBallotRequest{
		ElectionID: "e1",
		VoterID:    "v1",
		Selections: map[string][]string{"p1": {"c1"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrBallotWindowClosed))
}

func TestBallotServiceCastTwice(t *testing.T) {
	store := newFakeBallotStore()
	svc := newTestBallotService(store, activeElection(), activeRoster())

	req := CastBallotRequest{
		ElectionID: "e1",
		VoterID:    "v1",
		Selections: map[string][]string{"p1": {"c1"}},
	}
	_, err := svc.Cast(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Cast(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrAlreadyVoted))
	assert.Len(t, store.ballots, 1)
}

func TestBallotServiceCastTooManySelections(t *testing.T) {
	store := newFakeBallotStore()
	svc := newTestBallotService(store, activeElection(), activeRoster())

	_, err := svc.Cast(context.Background(), CastBallotRequest{
		ElectionID: "e1",
		VoterID:    "v1",
		Selections: map[string][]string{"p2": {"s1", "s2", "s3"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidSelection))
	assert.Empty(t, store.ballots)
}

func TestBallotServiceCastDuplicateCandidate(t *testing.T) {
	store := newFakeBallotStore()
	svc := newTestBallotService(store, activeElection(), activeRoster())

	_, err := svc.Cast(context.Background(), CastBallotRequest{
		ElectionID: "e1",
		VoterID:    "v1",
		Selections: map[string][]string{"p2": {"s1", "s1"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidSelection))
}

func TestBallotServiceCastUnknownCandidate(t *testing.T) {
	store := newFakeBallotStore()
	svc := newTestBallotService(store, activeElection(), activeRoster())

	_, err := svc.Cast(context.Background(), CastBallotRequest{
		ElectionID: "e1",
		VoterID:    "v1",
		Selections: map[string][]string{"p1": {"s1"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidSelection))
}

func TestBallotServiceCastUnknownPosition(t *testing.T) {
	store := newFakeBallotStore()
	svc := newTestBallotService(store, activeElection(), activeRoster())

	_, err := svc.Cast(context.Background(), CastBallotRequest{
		ElectionID: "e1",
		VoterID:    "v1",
		Selections: map[string][]string{"other": {"c1"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidSelection))
}

func TestBallotServiceCastVoterNotOnRoster(t *testing.T) {
	store := newFakeBallotStore()
	svc := newTestBallotService(store, activeElection(), activeRoster())

	_, err := svc.Cast(context.Background(), CastBallotRequest{
		ElectionID: "e1",
		VoterID:    "ghost",
		Selections: map[string][]string{"p1": {"c1"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrIneligibleVoter))
}

func TestBallotServiceCastInactiveVoter(t *testing.T) {
	roster := activeRoster()
	roster["v1"].Active = false
	store := newFakeBallotStore()
	svc := newTestBallotService(store, activeElection(), roster)

	_, err := svc.Cast(context.Background(), CastBallotRequest{
		ElectionID: "e1",
		VoterID:    "v1",
		Selections: map[string][]string{"p1": {"c1"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrIneligibleVoter))
}

func TestBallotServiceCastOutsideDepartmentScope(t *testing.T) {
	election := activeElection()
	election.Scope = models.ScopeDepartment
	election.DepartmentID = strPtr("d1")
	store := newFakeBallotStore()
	svc := newTestBallotService(store, election, activeRoster())

	_, err := svc.Cast(context.Background(), CastBallotRequest{
		ElectionID: "e1",
		VoterID:    "v2",
		Selections: map[string][]string{"p1": {"c1"}},
	})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrIneligibleVoter))
}

func TestBallotServiceCastConcurrentSameVoter(t *testing.T) {
	store := newFakeBallotStore()
	svc := newTestBallotService(store, activeElection(), activeRoster())

	const attempts = 8
	results := make(chan error, attempts)
	var start sync.WaitGroup
	start.Add(1)
	for i := 0; i < attempts; i++ {
		go func() {
			start.Wait()
			_, err := svc.Cast(context.Background(), CastBallotRequest{
				ElectionID: "e1",
				VoterID:    "v1",
				Selections: map[string][]string{"p1": {"c1"}},
			})
			results <- err
		}()
	}
	start.Done()

	succeeded := 0
	rejected := 0
	for i := 0; i < attempts; i++ {
		err := <-results
		if err == nil {
			succeeded++
			continue
		}
		require.True(t, appErrors.HasCode(err, appErrors.ErrAlreadyVoted), "unexpected error: %v", err)
		rejected++
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, rejected)
	assert.Len(t, store.ballots, 1)
}

func TestBallotServiceHasVoted(t *testing.T) {
	store := newFakeBallotStore()
	svc := newTestBallotService(store, activeElection(), activeRoster())

	voted, err := svc.HasVoted(context.Background(), "v1", "e1")
	require.NoError(t, err)
	assert.False(t, voted)

	_, err = svc.Cast(context.Background(), CastBallotRequest{
		ElectionID: "e1",
		VoterID:    "v1",
		Selections: map[string][]string{"p1": {"c1"}},
	})
	require.NoError(t, err)

	voted, err = svc.HasVoted(context.Background(), "v1", "e1")
	require.NoError(t, err)
	assert.True(t, voted)
}
