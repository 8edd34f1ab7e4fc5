package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/meremyd/campus-election-api/internal/models"
	appErrors "github.com/meremyd/campus-election-api/pkg/errors"
)

type ballotRepo interface {
	HasVoted(ctx context.Context, electionID, voterID string) (bool, error)
	Insert(ctx context.Context, ballot *models.Ballot, votes []models.Vote) error
}

type ballotElections interface {
	FindByID(ctx context.Context, id string) (*models.Election, error)
	PositionsWithCandidates(ctx context.Context, electionID string) ([]models.Position, error)
}

// CastBallotRequest carries one voter's full submission. Selections map
// positionID to the chosen candidateIDs; omitted positions are abstentions.
type CastBallotRequest struct {
	ElectionID string              `json:"election_id" validate:"required"`
	VoterID    string              `json:"-" validate:"required"`
	Selections map[string][]string `json:"selections"`
}

// BallotService validates and atomically persists one ballot per voter per
// election. Validation is fail-fast with a distinct error kind per step;
// no failure path leaves partial state behind.
type BallotService struct {
	ballots   ballotRepo
	elections ballotElections
	directory VoterDirectory
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	clock     func() time.Time
}

// NewBallotService constructs BallotService.
func NewBallotService(ballots ballotRepo, elections ballotElections, directory VoterDirectory, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *BallotService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BallotService{
		ballots:   ballots,
		elections: elections,
		directory: directory,
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		clock:     func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source.
func (s *BallotService) WithClock(clock func() time.Time) *BallotService {
	s.clock = clock
	return s
}

// Cast submits the ballot. The early HasVoted read gives callers the
// specific AlreadyVoted error before heavier validation; the storage-layer
// unique constraint closes the race under concurrent submission.
func (s *BallotService) Cast(ctx context.Context, req CastBallotRequest) (*models.Ballot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid ballot payload")
	}
	election, err := s.elections.FindByID(ctx, req.ElectionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "election not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load election")
	}

	now := s.clock()
	if election.Status != models.StatusActive || !election.BallotWindowContains(now) {
		s.reject(appErrors.ErrBallotWindowClosed.Code)
		return nil, appErrors.Clone(appErrors.ErrBallotWindowClosed, "ballot window is closed for this election")
	}

	voted, err := s.ballots.HasVoted(ctx, req.ElectionID, req.VoterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to check ballot status")
	}
	if voted {
		s.reject(appErrors.ErrAlreadyVoted.Code)
		return nil, appErrors.ErrAlreadyVoted
	}

	positions, err := s.elections.PositionsWithCandidates(ctx, req.ElectionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load positions")
	}
	election.Positions = positions

	votes, err := s.buildVotes(election, req.Selections)
	if err != nil {
		s.reject(appErrors.ErrInvalidSelection.Code)
		return nil, err
	}

	voter, err := s.directory.FindVoter(ctx, req.VoterID)
	if err != nil {
		if err == sql.ErrNoRows {
			s.reject(appErrors.ErrIneligibleVoter.Code)
			return nil, appErrors.Clone(appErrors.ErrIneligibleVoter, "voter is not on the roster")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load voter")
	}
	if !voter.EligibleFor(election) {
		s.reject(appErrors.ErrIneligibleVoter.Code)
		return nil, appErrors.Clone(appErrors.ErrIneligibleVoter, "voter is outside the election scope")
	}

	ballot := &models.Ballot{
		ElectionID:   req.ElectionID,
		VoterID:      req.VoterID,
		DepartmentID: voter.DepartmentID,
		SubmittedAt:  now,
	}
	if err := s.ballots.Insert(ctx, ballot, votes); err != nil {
		if appErrors.HasCode(err, appErrors.ErrAlreadyVoted) {
			s.reject(appErrors.ErrAlreadyVoted.Code)
			return nil, appErrors.ErrAlreadyVoted
		}
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}

	if s.metrics != nil {
		s.metrics.RecordBallotAccepted()
	}
	s.logger.Info("ballot cast",
		zap.String("election_id", req.ElectionID),
		zap.String("ballot_id", ballot.ID),
		zap.Int("votes", len(votes)))
	return ballot, nil
}

// HasVoted reports whether the voter holds a submitted ballot. Clients
// must consult this before retrying a timed-out submission.
func (s *BallotService) HasVoted(ctx context.Context, voterID, electionID string) (bool, error) {
	voted, err := s.ballots.HasVoted(ctx, electionID, voterID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check ballot status")
	}
	return voted, nil
}

// buildVotes validates every selection against the election's positions
// and returns the vote rows to persist.
func (s *BallotService) buildVotes(election *models.Election, selections map[string][]string) ([]models.Vote, error) {
	var votes []models.Vote
	for positionID, candidateIDs := range selections {
		position := election.FindPosition(positionID)
		if position == nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidSelection, fmt.Sprintf("position %s does not belong to this election", positionID))
		}
		if len(candidateIDs) > position.MaxVotes {
			return nil, appErrors.Clone(appErrors.ErrInvalidSelection, fmt.Sprintf("position %q allows at most %d selections", position.Name, position.MaxVotes))
		}
		seen := make(map[string]bool, len(candidateIDs))
		for _, candidateID := range candidateIDs {
			if seen[candidateID] {
				return nil, appErrors.Clone(appErrors.ErrInvalidSelection, fmt.Sprintf("duplicate candidate in position %q", position.Name))
			}
			seen[candidateID] = true
			if position.FindCandidate(candidateID) == nil {
				return nil, appErrors.Clone(appErrors.ErrInvalidSelection, fmt.Sprintf("candidate %s does not run for position %q", candidateID, position.Name))
			}
			votes = append(votes, models.Vote{PositionID: positionID, CandidateID: candidateID})
		}
	}
	return votes, nil
}

func (s *BallotService) reject(reason string) {
	if s.metrics != nil {
		s.metrics.RecordBallotRejected(reason)
	}
}
