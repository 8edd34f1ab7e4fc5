package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/meremyd/campus-election-api/internal/models"
	appErrors "github.com/meremyd/campus-election-api/pkg/errors"
	"github.com/meremyd/campus-election-api/pkg/export"
)

type resultsProvider interface {
	ElectionResults(ctx context.Context, electionID, scopeFilter string) (*models.ElectionResults, error)
}

type turnoutProvider interface {
	Turnout(ctx context.Context, electionID, scopeFilter string) (*models.TurnoutSnapshot, error)
}

// ExportService renders gated election results into static report files.
// It consumes the same presented output as any other reader, so exports can
// never reveal more than the visibility gate allows.
type ExportService struct {
	results resultsProvider
	turnout turnoutProvider
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(results resultsProvider, turnout turnoutProvider, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		results: results,
		turnout: turnout,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
	}
}

var resultHeaders = []string{"Position", "Candidate", "Affiliation", "Votes", "Percentage"}

// ResultsCSV renders all position tallies as CSV.
func (s *ExportService) ResultsCSV(ctx context.Context, electionID, scopeFilter string) ([]byte, error) {
	dataset, _, err := s.resultsDataset(ctx, electionID, scopeFilter)
	if err != nil {
		return nil, err
	}
	payload, err := s.csv.Render(*dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, nil
}

// ResultsPDF renders all position tallies as a tabular PDF.
func (s *ExportService) ResultsPDF(ctx context.Context, electionID, scopeFilter, title string) ([]byte, error) {
	dataset, _, err := s.resultsDataset(ctx, electionID, scopeFilter)
	if err != nil {
		return nil, err
	}
	payload, err := s.pdf.Render(*dataset, title)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
	}
	return payload, nil
}

// TurnoutCSV renders the turnout snapshot as CSV.
func (s *ExportService) TurnoutCSV(ctx context.Context, electionID, scopeFilter string) ([]byte, error) {
	snapshot, err := s.turnout.Turnout(ctx, electionID, scopeFilter)
	if err != nil {
		return nil, err
	}
	dataset := export.Dataset{
		Headers: []string{"Eligible", "Participants", "Voted", "ParticipationRate", "TurnoutRate"},
		Rows: []map[string]string{{
			"Eligible":          fmt.Sprintf("%d", snapshot.Eligible),
			"Participants":      fmt.Sprintf("%d", snapshot.Participants),
			"Voted":             fmt.Sprintf("%d", snapshot.Voted),
			"ParticipationRate": fmt.Sprintf("%.2f", snapshot.ParticipationRate),
			"TurnoutRate":       fmt.Sprintf("%.2f", snapshot.TurnoutRate),
		}},
	}
	payload, err := s.csv.Render(dataset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
	}
	return payload, nil
}

func (s *ExportService) resultsDataset(ctx context.Context, electionID, scopeFilter string) (*export.Dataset, *models.ElectionResults, error) {
	results, err := s.results.ElectionResults(ctx, electionID, scopeFilter)
	if err != nil {
		return nil, nil, err
	}
	dataset := &export.Dataset{Headers: resultHeaders}
	for _, position := range results.Positions {
		for _, row := range position.Candidates {
			affiliation := ""
			if row.Affiliation != nil {
				affiliation = *row.Affiliation
			}
			dataset.Rows = append(dataset.Rows, map[string]string{
				"Position":    position.PositionName,
				"Candidate":   row.Name,
				"Affiliation": affiliation,
				"Votes":       fmt.Sprintf("%d", row.VoteCount),
				"Percentage":  fmt.Sprintf("%.2f", row.Percentage),
			})
		}
	}
	return dataset, results, nil
}
