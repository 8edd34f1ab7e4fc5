package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meremyd/campus-election-api/internal/models"
	"github.com/meremyd/campus-election-api/internal/service"
	appErrors "github.com/meremyd/campus-election-api/pkg/errors"
	"github.com/meremyd/campus-election-api/pkg/response"
)

type electionService interface {
	Create(ctx context.Context, req service.CreateElectionRequest) (*models.Election, error)
	Get(ctx context.Context, electionID string) (*models.Election, error)
	List(ctx context.Context) ([]models.Election, error)
	Transition(ctx context.Context, electionID string, req service.TransitionRequest) (*models.Election, error)
	SetVisibilityRelease(ctx context.Context, electionID string, req service.ReleaseRequest) error
}

// ElectionHandler exposes election lifecycle endpoints.
type ElectionHandler struct {
	elections electionService
}

// NewElectionHandler constructs handler.
func NewElectionHandler(elections electionService) *ElectionHandler {
	return &ElectionHandler{elections: elections}
}

// Create godoc
// @Summary Create an election with positions and candidates
// @Tags Elections
// @Accept json
// @Produce json
// @Param payload body service.CreateElectionRequest true "Election payload"
// @Success 201 {object} response.Envelope
// @Router /elections [post]
func (h *ElectionHandler) Create(c *gin.Context) {
	var req service.CreateElectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	election, err := h.elections.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, election)
}

// List godoc
// @Summary List elections
// @Tags Elections
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /elections [get]
func (h *ElectionHandler) List(c *gin.Context) {
	elections, err := h.elections.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, elections, nil)
}

// Get godoc
// @Summary Get an election with positions and candidates
// @Tags Elections
// @Produce json
// @Param id path string true "Election ID"
// @Success 200 {object} response.Envelope
// @Router /elections/{id} [get]
func (h *ElectionHandler) Get(c *gin.Context) {
	election, err := h.elections.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, election, nil)
}

// Transition godoc
// @Summary Transition election status
// @Tags Elections
// @Accept json
// @Produce json
// @Param id path string true "Election ID"
// @Param payload body service.TransitionRequest true "Target status"
// @Success 200 {object} response.Envelope
// @Router /elections/{id}/transition [post]
func (h *ElectionHandler) Transition(c *gin.Context) {
	var req service.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	election, err := h.elections.Transition(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, election, nil)
}

// Release godoc
// @Summary Toggle early result visibility for a position
// @Tags Elections
// @Accept json
// @Produce json
// @Param id path string true "Election ID"
// @Param payload body service.ReleaseRequest true "Release payload"
// @Success 200 {object} response.Envelope
// @Router /elections/{id}/release [post]
func (h *ElectionHandler) Release(c *gin.Context) {
	var req service.ReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.elections.SetVisibilityRelease(c.Request.Context(), c.Param("id"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "updated"}, nil)
}
