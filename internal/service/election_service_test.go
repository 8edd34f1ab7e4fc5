package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meremyd/campus-election-api/internal/models"
	appErrors "github.com/meremyd/campus-election-api/pkg/errors"
)

type fakeElectionRepo struct {
	elections map[string]*models.Election
	created   *models.Election
	updateOK  bool
	releaseOK bool
	lastFrom  models.ElectionStatus
	lastTo    models.ElectionStatus
}

func (f *fakeElectionRepo) Create(ctx context.Context, election *models.Election) error {
	if election.ID == "" {
		election.ID = "generated"
	}
	cp := *election
	f.created = &cp
	return nil
}

func (f *fakeElectionRepo) FindByID(ctx context.Context, id string) (*models.Election, error) {
	if election, ok := f.elections[id]; ok {
		cp := *election
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeElectionRepo) List(ctx context.Context) ([]models.Election, error) {
	var out []models.Election
	for _, election := range f.elections {
		out = append(out, *election)
	}
	return out, nil
}

func (f *fakeElectionRepo) PositionsWithCandidates(ctx context.Context, electionID string) ([]models.Position, error) {
	if election, ok := f.elections[electionID]; ok {
		return election.Positions, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeElectionRepo) UpdateStatus(ctx context.Context, id string, from, to models.ElectionStatus) (bool, error) {
	f.lastFrom = from
	f.lastTo = to
	if f.updateOK {
		if election, ok := f.elections[id]; ok {
			election.Status = to
		}
	}
	return f.updateOK, nil
}

func (f *fakeElectionRepo) SetPositionReleased(ctx context.Context, electionID, positionID string, released bool) (bool, error) {
	return f.releaseOK, nil
}

func validCreateRequest() CreateElectionRequest {
	return CreateElectionRequest{
		Scope:         models.ScopeInstitution,
		Year:          2026,
		Title:         "Student Council 2026",
		ScheduledDate: time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC),
		BallotOpen:    "08:00",
		BallotClose:   "17:00",
		Positions: []CreatePositionRequest{
			{Name: "President", MaxVotes: 1, Candidates: []CreateCandidateRequest{
				{Seq: 1, FullName: "Candidate One"},
				{Seq: 2, FullName: "Candidate Two"},
			}},
		},
	}
}

func TestElectionServiceCreate(t *testing.T) {
	repo := &fakeElectionRepo{}
	svc := NewElectionService(repo, nil, nil, nil)

	election, err := svc.Create(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.Equal(t, models.StatusUpcoming, election.Status)
	require.NotNil(t, repo.created)
	require.Len(t, repo.created.Positions, 1)
	assert.Len(t, repo.created.Positions[0].Candidates, 2)
}

func TestElectionServiceCreateDepartmentScopeRequiresDepartment(t *testing.T) {
	repo := &fakeElectionRepo{}
	svc := NewElectionService(repo, nil, nil, nil)

	req := validCreateRequest()
	req.Scope = models.ScopeDepartment
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
	assert.Nil(t, repo.created)
}

func TestElectionServiceCreateRejectsDuplicateCandidateSeq(t *testing.T) {
	repo := &fakeElectionRepo{}
	svc := NewElectionService(repo, nil, nil, nil)

	req := validCreateRequest()
	req.Positions[0].Candidates[1].Seq = 1
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestElectionServiceCreateRejectsInvertedWindow(t *testing.T) {
	repo := &fakeElectionRepo{}
	svc := NewElectionService(repo, nil, nil, nil)

	req := validCreateRequest()
	req.BallotOpen = "17:00"
	req.BallotClose = "08:00"
	_, err := svc.Create(context.Background(), req)
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestElectionServiceTransition(t *testing.T) {
	repo := &fakeElectionRepo{
		elections: map[string]*models.Election{
			"e1": {ID: "e1", Status: models.StatusUpcoming},
		},
		updateOK: true,
	}
	svc := NewElectionService(repo, nil, nil, nil)

	election, err := svc.Transition(context.Background(), "e1", TransitionRequest{TargetStatus: models.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, models.StatusActive, election.Status)
	assert.Equal(t, models.StatusUpcoming, repo.lastFrom)
	assert.Equal(t, models.StatusActive, repo.lastTo)
}

func TestElectionServiceTransitionInvalidEdge(t *testing.T) {
	repo := &fakeElectionRepo{
		elections: map[string]*models.Election{
			"e1": {ID: "e1", Status: models.StatusActive},
		},
		updateOK: true,
	}
	svc := NewElectionService(repo, nil, nil, nil)

	_, err := svc.Transition(context.Background(), "e1", TransitionRequest{TargetStatus: models.StatusUpcoming})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTransition))
}

func TestElectionServiceTransitionFromTerminal(t *testing.T) {
	repo := &fakeElectionRepo{
		elections: map[string]*models.Election{
			"done":      {ID: "done", Status: models.StatusCompleted},
			"cancelled": {ID: "cancelled", Status: models.StatusCancelled},
		},
		updateOK: true,
	}
	svc := NewElectionService(repo, nil, nil, nil)

	for _, id := range []string{"done", "cancelled"} {
		for _, target := range []models.ElectionStatus{models.StatusUpcoming, models.StatusActive, models.StatusCompleted, models.StatusCancelled} {
			_, err := svc.Transition(context.Background(), id, TransitionRequest{TargetStatus: target})
			require.Error(t, err)
			assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTransition))
		}
	}
}

func TestElectionServiceTransitionUnknownStatus(t *testing.T) {
	repo := &fakeElectionRepo{
		elections: map[string]*models.Election{
			"e1": {ID: "e1", Status: models.StatusUpcoming},
		},
	}
	svc := NewElectionService(repo, nil, nil, nil)

	_, err := svc.Transition(context.Background(), "e1", TransitionRequest{TargetStatus: "ARCHIVED"})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrValidation))
}

func TestElectionServiceTransitionLostRace(t *testing.T) {
	repo := &fakeElectionRepo{
		elections: map[string]*models.Election{
			"e1": {ID: "e1", Status: models.StatusUpcoming},
		},
		updateOK: false,
	}
	svc := NewElectionService(repo, nil, nil, nil)

	_, err := svc.Transition(context.Background(), "e1", TransitionRequest{TargetStatus: models.StatusActive})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrInvalidTransition))
}

func TestElectionServiceTransitionNotFound(t *testing.T) {
	repo := &fakeElectionRepo{elections: map[string]*models.Election{}}
	svc := NewElectionService(repo, nil, nil, nil)

	_, err := svc.Transition(context.Background(), "missing", TransitionRequest{TargetStatus: models.StatusActive})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}

func TestElectionServiceSetVisibilityRelease(t *testing.T) {
	repo := &fakeElectionRepo{releaseOK: true}
	svc := NewElectionService(repo, nil, nil, nil)

	err := svc.SetVisibilityRelease(context.Background(), "e1", ReleaseRequest{PositionID: "p1", Released: true})
	require.NoError(t, err)
}

func TestElectionServiceSetVisibilityReleaseUnknownPosition(t *testing.T) {
	repo := &fakeElectionRepo{releaseOK: false}
	svc := NewElectionService(repo, nil, nil, nil)

	err := svc.SetVisibilityRelease(context.Background(), "e1", ReleaseRequest{PositionID: "missing", Released: true})
	require.Error(t, err)
	assert.True(t, appErrors.HasCode(err, appErrors.ErrNotFound))
}
