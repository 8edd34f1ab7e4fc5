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

type electionRepo interface {
	Create(ctx context.Context, election *models.Election) error
	FindByID(ctx context.Context, id string) (*models.Election, error)
	List(ctx context.Context) ([]models.Election, error)
	PositionsWithCandidates(ctx context.Context, electionID string) ([]models.Position, error)
	UpdateStatus(ctx context.Context, id string, from, to models.ElectionStatus) (bool, error)
	SetPositionReleased(ctx context.Context, electionID, positionID string, released bool) (bool, error)
}

// CreateCandidateRequest registers one candidate under a position.
type CreateCandidateRequest struct {
	Seq         int     `json:"seq" validate:"required,gte=1"`
	FullName    string  `json:"full_name" validate:"required"`
	Affiliation *string `json:"affiliation"`
}

// CreatePositionRequest defines one race within a new election.
type CreatePositionRequest struct {
	Name       string                   `json:"name" validate:"required"`
	OrderIndex int                      `json:"order_index" validate:"gte=0"`
	MaxVotes   int                      `json:"max_votes" validate:"required,gte=1"`
	Candidates []CreateCandidateRequest `json:"candidates" validate:"dive"`
}

// CreateElectionRequest is the admin payload for a new election.
type CreateElectionRequest struct {
	Scope         models.ElectionScope    `json:"scope" validate:"required,oneof=INSTITUTION DEPARTMENT"`
	DepartmentID  *string                 `json:"department_id"`
	Year          int                     `json:"year" validate:"required,gte=2000"`
	Title         string                  `json:"title" validate:"required"`
	ScheduledDate time.Time               `json:"scheduled_date" validate:"required"`
	BallotOpen    string                  `json:"ballot_open" validate:"required"`
	BallotClose   string                  `json:"ballot_close" validate:"required"`
	Positions     []CreatePositionRequest `json:"positions" validate:"required,min=1,dive"`
}

// TransitionRequest moves an election along the status state machine.
type TransitionRequest struct {
	TargetStatus models.ElectionStatus `json:"target_status" validate:"required"`
}

// ReleaseRequest toggles the manual per-position result release flag.
type ReleaseRequest struct {
	PositionID string `json:"position_id" validate:"required"`
	Released   bool   `json:"released"`
}

// ElectionService owns election records and their status state machine.
type ElectionService struct {
	elections electionRepo
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewElectionService constructs ElectionService.
func NewElectionService(elections electionRepo, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ElectionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ElectionService{elections: elections, cache: cache, validator: validate, logger: logger}
}

// Create validates and persists a new election in UPCOMING state.
func (s *ElectionService) Create(ctx context.Context, req CreateElectionRequest) (*models.Election, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid election payload")
	}
	if req.Scope == models.ScopeDepartment && (req.DepartmentID == nil || *req.DepartmentID == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "department-scoped election requires a department")
	}
	openAt, err := time.Parse("15:04", req.BallotOpen)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ballot_open must be a HH:MM clock time")
	}
	closeAt, err := time.Parse("15:04", req.BallotClose)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ballot_close must be a HH:MM clock time")
	}
	if !closeAt.After(openAt) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "ballot_close must be after ballot_open")
	}
	election := &models.Election{
		Scope:         req.Scope,
		DepartmentID:  req.DepartmentID,
		Year:          req.Year,
		Title:         req.Title,
		Status:        models.StatusUpcoming,
		ScheduledDate: req.ScheduledDate,
		BallotOpen:    req.BallotOpen,
		BallotClose:   req.BallotClose,
	}
	for _, positionReq := range req.Positions {
		position := models.Position{
			Name:       positionReq.Name,
			OrderIndex: positionReq.OrderIndex,
			MaxVotes:   positionReq.MaxVotes,
		}
		seen := make(map[int]bool, len(positionReq.Candidates))
		for _, candidateReq := range positionReq.Candidates {
			if seen[candidateReq.Seq] {
				return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("duplicate candidate sequence %d in position %q", candidateReq.Seq, positionReq.Name))
			}
			seen[candidateReq.Seq] = true
			position.Candidates = append(position.Candidates, models.Candidate{
				Seq:         candidateReq.Seq,
				FullName:    candidateReq.FullName,
				Affiliation: candidateReq.Affiliation,
			})
		}
		election.Positions = append(election.Positions, position)
	}
	if err := s.elections.Create(ctx, election); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to create election")
	}
	s.logger.Info("election created", zap.String("election_id", election.ID), zap.String("title", election.Title))
	return election, nil
}

// Get returns the election with positions and candidates attached.
func (s *ElectionService) Get(ctx context.Context, electionID string) (*models.Election, error) {
	election, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "election not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load election")
	}
	positions, err := s.elections.PositionsWithCandidates(ctx, electionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load positions")
	}
	election.Positions = positions
	return election, nil
}

// List returns all elections without their position trees.
func (s *ElectionService) List(ctx context.Context) ([]models.Election, error) {
	elections, err := s.elections.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list elections")
	}
	return elections, nil
}

// Transition moves the election to targetStatus along the explicit edge
// table. The conditional update serializes concurrent transitions: a
// lost race surfaces as InvalidTransition, never as a silent overwrite.
func (s *ElectionService) Transition(ctx context.Context, electionID string, req TransitionRequest) (*models.Election, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid transition payload")
	}
	if !req.TargetStatus.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown election status %q", req.TargetStatus))
	}
	election, err := s.elections.FindByID(ctx, electionID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "election not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load election")
	}
	if !election.Status.CanTransitionTo(req.TargetStatus) {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, fmt.Sprintf("cannot transition from %s to %s", election.Status, req.TargetStatus))
	}
	updated, err := s.elections.UpdateStatus(ctx, electionID, election.Status, req.TargetStatus)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update election status")
	}
	if !updated {
		return nil, appErrors.Clone(appErrors.ErrInvalidTransition, "election status changed concurrently")
	}
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("results:%s:*", electionID))
	}
	election.Status = req.TargetStatus
	s.logger.Info("election transitioned",
		zap.String("election_id", electionID),
		zap.String("status", string(req.TargetStatus)))
	return election, nil
}

// SetVisibilityRelease toggles early result visibility for one position
// without touching the election status.
func (s *ElectionService) SetVisibilityRelease(ctx context.Context, electionID string, req ReleaseRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid release payload")
	}
	updated, err := s.elections.SetPositionReleased(ctx, electionID, req.PositionID, req.Released)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update release flag")
	}
	if !updated {
		return appErrors.Clone(appErrors.ErrNotFound, "position not found for election")
	}
	if s.cache.Enabled() {
		_ = s.cache.Invalidate(ctx, fmt.Sprintf("results:%s:*", electionID))
	}
	s.logger.Info("position visibility updated",
		zap.String("election_id", electionID),
		zap.String("position_id", req.PositionID),
		zap.Bool("released", req.Released))
	return nil
}
