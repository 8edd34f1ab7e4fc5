package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meremyd/campus-election-api/internal/models"
)

type fakeResultsProvider struct {
	results *models.ElectionResults
	err     error
}

func (f *fakeResultsProvider) ElectionResults(ctx context.Context, electionID, scopeFilter string) (*models.ElectionResults, error) {
	return f.results, f.err
}

type fakeTurnoutProvider struct {
	snapshot *models.TurnoutSnapshot
	err      error
}

func (f *fakeTurnoutProvider) Turnout(ctx context.Context, electionID, scopeFilter string) (*models.TurnoutSnapshot, error) {
	return f.snapshot, f.err
}

func TestExportServiceResultsCSV(t *testing.T) {
	provider := &fakeResultsProvider{
		results: &models.ElectionResults{
			ElectionID:     "e1",
			ElectionStatus: models.StatusCompleted,
			Positions: []models.PositionTally{
				{
					PositionName: "President",
					TotalVotes:   3,
					Revealed:     true,
					Candidates: []models.TallyRow{
						{CandidateID: "c2", Seq: 2, Name: "Candidate Two", VoteCount: 2, Percentage: 66.67},
						{CandidateID: "c1", Seq: 1, Name: "Candidate One", VoteCount: 1, Percentage: 33.33},
					},
				},
			},
		},
	}
	svc := NewExportService(provider, &fakeTurnoutProvider{}, nil)

	payload, err := svc.ResultsCSV(context.Background(), "e1", "")
	require.NoError(t, err)
	body := string(payload)
	assert.True(t, strings.HasPrefix(body, "Position,Candidate,Affiliation,Votes,Percentage"))
	assert.Contains(t, body, "President,Candidate Two,,2,66.67")
	assert.Contains(t, body, "President,Candidate One,,1,33.33")
}

func TestExportServiceResultsCSVAnonymized(t *testing.T) {
	// Gated output comes in pre-anonymized; the exporter must not know
	// real names exist.
	provider := &fakeResultsProvider{
		results: &models.ElectionResults{
			ElectionID:     "e1",
			ElectionStatus: models.StatusActive,
			Positions: []models.PositionTally{
				{
					PositionName: "President",
					Candidates: []models.TallyRow{
						{CandidateID: "c1", Seq: 1, Name: "Candidate 1", VoteCount: 4, Percentage: 100},
					},
				},
			},
		},
	}
	svc := NewExportService(provider, &fakeTurnoutProvider{}, nil)

	payload, err := svc.ResultsCSV(context.Background(), "e1", "")
	require.NoError(t, err)
	assert.Contains(t, string(payload), "Candidate 1")
}

func TestExportServiceTurnoutCSV(t *testing.T) {
	provider := &fakeTurnoutProvider{
		snapshot: &models.TurnoutSnapshot{
			ElectionID:        "e1",
			Eligible:          200,
			Participants:      150,
			Voted:             120,
			ParticipationRate: 75,
			TurnoutRate:       60,
		},
	}
	svc := NewExportService(&fakeResultsProvider{}, provider, nil)

	payload, err := svc.TurnoutCSV(context.Background(), "e1", "")
	require.NoError(t, err)
	body := string(payload)
	assert.Contains(t, body, "Eligible,Participants,Voted,ParticipationRate,TurnoutRate")
	assert.Contains(t, body, "200,150,120,75.00,60.00")
}

func TestExportServiceResultsPDF(t *testing.T) {
	provider := &fakeResultsProvider{
		results: &models.ElectionResults{
			ElectionID:     "e1",
			ElectionStatus: models.StatusCompleted,
			Positions: []models.PositionTally{
				{
					PositionName: "President",
					Revealed:     true,
					Candidates: []models.TallyRow{
						{CandidateID: "c1", Seq: 1, Name: "Candidate One", VoteCount: 1, Percentage: 100},
					},
				},
			},
		},
	}
	svc := NewExportService(provider, &fakeTurnoutProvider{}, nil)

	payload, err := svc.ResultsPDF(context.Background(), "e1", "", "Election Results")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}
