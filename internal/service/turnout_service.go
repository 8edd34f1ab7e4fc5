package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/meremyd/campus-election-api/internal/models"
	appErrors "github.com/meremyd/campus-election-api/pkg/errors"
)

type participationCounter interface {
	CountByElection(ctx context.Context, electionID, departmentID string) (int, error)
}

type ballotCounter interface {
	CountByElection(ctx context.Context, electionID, departmentID string) (int, error)
}

type eligibleCounter interface {
	EligibleCount(ctx context.Context, departmentID string) (int, error)
}

type turnoutElections interface {
	FindByID(ctx context.Context, id string) (*models.Election, error)
}

// TurnoutService reports participation and voting ratios. The source
// material disagrees on a single turnout denominator, so both rates stay
// independently reportable: participationRate against confirmations,
// turnoutRate against the eligible roster.
type TurnoutService struct {
	participation participationCounter
	ballots       ballotCounter
	directory     eligibleCounter
	elections     turnoutElections
	logger        *zap.Logger
}

// NewTurnoutService constructs TurnoutService.
func NewTurnoutService(participation participationCounter, ballots ballotCounter, directory eligibleCounter, elections turnoutElections, logger *zap.Logger) *TurnoutService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TurnoutService{
		participation: participation,
		ballots:       ballots,
		directory:     directory,
		elections:     elections,
		logger:        logger,
	}
}

// Turnout derives a fresh snapshot. An empty roster yields zero rates, not
// an error.
func (s *TurnoutService) Turnout(ctx context.Context, electionID, scopeFilter string) (*models.TurnoutSnapshot, error) {
	election, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "election not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load election")
	}

	departmentID := scopeFilter
	if departmentID == "" && election.Scope == models.ScopeDepartment && election.DepartmentID != nil {
		departmentID = *election.DepartmentID
	}

	eligible, err := s.directory.EligibleCount(ctx, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count eligible voters")
	}
	participants, err := s.participation.CountByElection(ctx, electionID, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count participants")
	}
	voted, err := s.ballots.CountByElection(ctx, electionID, departmentID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count ballots")
	}

	snapshot := &models.TurnoutSnapshot{
		ElectionID:   electionID,
		ScopeFilter:  scopeFilter,
		Eligible:     eligible,
		Participants: participants,
		Voted:        voted,
	}
	if eligible > 0 {
		snapshot.ParticipationRate = round2(float64(participants) / float64(eligible) * 100)
		snapshot.TurnoutRate = round2(float64(voted) / float64(eligible) * 100)
	}
	return snapshot, nil
}
