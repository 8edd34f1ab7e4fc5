package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meremyd/campus-election-api/internal/middleware"
	"github.com/meremyd/campus-election-api/internal/models"
	"github.com/meremyd/campus-election-api/internal/service"
	appErrors "github.com/meremyd/campus-election-api/pkg/errors"
	"github.com/meremyd/campus-election-api/pkg/response"
)

type ballotService interface {
	Cast(ctx context.Context, req service.CastBallotRequest) (*models.Ballot, error)
	HasVoted(ctx context.Context, voterID, electionID string) (bool, error)
}

type participationService interface {
	Confirm(ctx context.Context, voterID, electionID string) (*models.ParticipationRecord, error)
	HasParticipated(ctx context.Context, voterID, electionID string) (bool, error)
}

type electionGetter interface {
	Get(ctx context.Context, electionID string) (*models.Election, error)
}

// BallotHandler exposes ballot casting and status endpoints.
type BallotHandler struct {
	ballots       ballotService
	participation participationService
	elections     electionGetter
}

// NewBallotHandler constructs handler.
func NewBallotHandler(ballots ballotService, participation participationService, elections electionGetter) *BallotHandler {
	return &BallotHandler{ballots: ballots, participation: participation, elections: elections}
}

// Cast godoc
// @Summary Submit a ballot for the authenticated voter
// @Tags Ballots
// @Accept json
// @Produce json
// @Param id path string true "Election ID"
// @Param payload body service.CastBallotRequest true "Selections"
// @Success 201 {object} response.Envelope
// @Router /elections/{id}/ballots [post]
func (h *BallotHandler) Cast(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req service.CastBallotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	req.ElectionID = c.Param("id")
	req.VoterID = claims.UserID
	ballot, err := h.ballots.Cast(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, ballot)
}

// Confirm godoc
// @Summary Confirm intent to participate in an election
// @Tags Ballots
// @Produce json
// @Param id path string true "Election ID"
// @Success 200 {object} response.Envelope
// @Router /elections/{id}/participation [post]
func (h *BallotHandler) Confirm(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	record, err := h.participation.Confirm(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Status godoc
// @Summary Report the voter's ballot standing for an election
// @Tags Ballots
// @Produce json
// @Param id path string true "Election ID"
// @Success 200 {object} response.Envelope
// @Router /elections/{id}/ballot-status [get]
func (h *BallotHandler) Status(c *gin.Context) {
	claims := middleware.Claims(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	electionID := c.Param("id")
	election, err := h.elections.Get(c.Request.Context(), electionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	voted, err := h.ballots.HasVoted(c.Request.Context(), claims.UserID, electionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	participated, err := h.participation.HasParticipated(c.Request.Context(), claims.UserID, electionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	status := models.BallotStatus{
		ElectionID:      electionID,
		ElectionStatus:  election.Status,
		WindowOpen:      election.Status == models.StatusActive && election.BallotWindowContains(timeNow()),
		HasParticipated: participated,
		HasVoted:        voted,
		BallotOpensAt:   election.BallotOpen,
		BallotClosesAt:  election.BallotClose,
	}
	response.JSON(c, http.StatusOK, status, nil)
}
