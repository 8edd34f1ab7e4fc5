package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meremyd/campus-election-api/internal/models"
	"github.com/meremyd/campus-election-api/pkg/response"
)

type resultsService interface {
	PositionResults(ctx context.Context, electionID, positionID, scopeFilter string) (*models.PositionTally, error)
	ElectionResults(ctx context.Context, electionID, scopeFilter string) (*models.ElectionResults, error)
}

type turnoutService interface {
	Turnout(ctx context.Context, electionID, scopeFilter string) (*models.TurnoutSnapshot, error)
}

// ResultsHandler exposes tally and turnout endpoints. All output has
// already passed the visibility gate.
type ResultsHandler struct {
	results resultsService
	turnout turnoutService
}

// NewResultsHandler constructs handler.
func NewResultsHandler(results resultsService, turnout turnoutService) *ResultsHandler {
	return &ResultsHandler{results: results, turnout: turnout}
}

// Position godoc
// @Summary Tally for one position
// @Tags Results
// @Produce json
// @Param id path string true "Election ID"
// @Param positionId path string true "Position ID"
// @Param department query string false "Restrict to one department"
// @Success 200 {object} response.Envelope
// @Router /elections/{id}/positions/{positionId}/results [get]
func (h *ResultsHandler) Position(c *gin.Context) {
	tally, err := h.results.PositionResults(c.Request.Context(), c.Param("id"), c.Param("positionId"), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, tally, nil)
}

// Election godoc
// @Summary Tallies for every position of an election
// @Tags Results
// @Produce json
// @Param id path string true "Election ID"
// @Param department query string false "Restrict to one department"
// @Success 200 {object} response.Envelope
// @Router /elections/{id}/results [get]
func (h *ResultsHandler) Election(c *gin.Context) {
	results, err := h.results.ElectionResults(c.Request.Context(), c.Param("id"), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, results, nil)
}

// Turnout godoc
// @Summary Participation and voting ratios for an election
// @Tags Results
// @Produce json
// @Param id path string true "Election ID"
// @Param department query string false "Restrict to one department"
// @Success 200 {object} response.Envelope
// @Router /elections/{id}/turnout [get]
func (h *ResultsHandler) Turnout(c *gin.Context) {
	snapshot, err := h.turnout.Turnout(c.Request.Context(), c.Param("id"), c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshot, nil)
}

type exportService interface {
	ResultsCSV(ctx context.Context, electionID, scopeFilter string) ([]byte, error)
	ResultsPDF(ctx context.Context, electionID, scopeFilter, title string) ([]byte, error)
	TurnoutCSV(ctx context.Context, electionID, scopeFilter string) ([]byte, error)
}

// ExportHandler serves static result sheets.
type ExportHandler struct {
	exports exportService
}

// NewExportHandler constructs handler.
func NewExportHandler(exports exportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

// Results godoc
// @Summary Download election results as CSV or PDF
// @Tags Results
// @Produce octet-stream
// @Param id path string true "Election ID"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} binary
// @Router /elections/{id}/results/export [get]
func (h *ExportHandler) Results(c *gin.Context) {
	electionID := c.Param("id")
	scope := c.Query("department")
	switch c.DefaultQuery("format", "csv") {
	case "pdf":
		payload, err := h.exports.ResultsPDF(c.Request.Context(), electionID, scope, "Election Results")
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=results-%s.pdf", electionID))
		c.Data(http.StatusOK, "application/pdf", payload)
	default:
		payload, err := h.exports.ResultsCSV(c.Request.Context(), electionID, scope)
		if err != nil {
			response.Error(c, err)
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=results-%s.csv", electionID))
		c.Data(http.StatusOK, "text/csv", payload)
	}
}

// Turnout godoc
// @Summary Download turnout snapshot as CSV
// @Tags Results
// @Produce octet-stream
// @Param id path string true "Election ID"
// @Success 200 {file} binary
// @Router /elections/{id}/turnout/export [get]
func (h *ExportHandler) Turnout(c *gin.Context) {
	electionID := c.Param("id")
	payload, err := h.exports.TurnoutCSV(c.Request.Context(), electionID, c.Query("department"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=turnout-%s.csv", electionID))
	c.Data(http.StatusOK, "text/csv", payload)
}
