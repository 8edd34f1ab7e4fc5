package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/meremyd/campus-election-api/internal/models"
	appErrors "github.com/meremyd/campus-election-api/pkg/errors"
)

type participationRepo interface {
	Confirm(ctx context.Context, electionID, voterID string) (*models.ParticipationRecord, error)
	Exists(ctx context.Context, electionID, voterID string) (bool, error)
}

type participationElections interface {
	FindByID(ctx context.Context, id string) (*models.Election, error)
}

// VoterDirectory is the read-only roster collaborator maintained by the
// campus identity system.
type VoterDirectory interface {
	FindVoter(ctx context.Context, id string) (*models.VoterRecord, error)
}

// ParticipationService records confirmed intent to participate, distinct
// from having voted.
type ParticipationService struct {
	records   participationRepo
	elections participationElections
	directory VoterDirectory
	logger    *zap.Logger
}

// NewParticipationService constructs ParticipationService.
func NewParticipationService(records participationRepo, elections participationElections, directory VoterDirectory, logger *zap.Logger) *ParticipationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParticipationService{records: records, elections: elections, directory: directory, logger: logger}
}

// Confirm records the voter's participation. Idempotent: repeated calls
// for the same pair return the existing record.
func (s *ParticipationService) Confirm(ctx context.Context, voterID, electionID string) (*models.ParticipationRecord, error) {
	election, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "election not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load election")
	}
	if election.Status != models.StatusUpcoming && election.Status != models.StatusActive {
		return nil, appErrors.Clone(appErrors.ErrBallotWindowClosed, "election is not open for participation")
	}
	voter, err := s.directory.FindVoter(ctx, voterID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrIneligibleVoter, "voter is not on the roster")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load voter")
	}
	if !voter.EligibleFor(election) {
		return nil, appErrors.Clone(appErrors.ErrIneligibleVoter, "voter is outside the election scope")
	}
	record, err := s.records.Confirm(ctx, electionID, voterID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to record participation")
	}
	s.logger.Info("participation confirmed",
		zap.String("election_id", electionID),
		zap.String("voter_id", voterID))
	return record, nil
}

// HasParticipated reports whether the voter confirmed participation.
func (s *ParticipationService) HasParticipated(ctx context.Context, voterID, electionID string) (bool, error) {
	exists, err := s.records.Exists(ctx, electionID, voterID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check participation")
	}
	return exists, nil
}
