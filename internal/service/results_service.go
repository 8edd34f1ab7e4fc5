package service

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/meremyd/campus-election-api/internal/models"
	appErrors "github.com/meremyd/campus-election-api/pkg/errors"
)

type voteCounter interface {
	VoteCounts(ctx context.Context, positionID, departmentID string) ([]models.CandidateVoteCount, error)
}

type resultsElections interface {
	FindByID(ctx context.Context, id string) (*models.Election, error)
	PositionsWithCandidates(ctx context.Context, electionID string) ([]models.Position, error)
}

// ResultsService computes position tallies and gates candidate identity
// behind the visibility rules. Tallies are recomputed from persisted votes
// on every call; the optional cache only shortcuts repeated reads and is
// invalidated on any status or release change.
type ResultsService struct {
	counts    voteCounter
	elections resultsElections
	cache     *CacheService
	metrics   *MetricsService
	logger    *zap.Logger
}

// NewResultsService constructs ResultsService.
func NewResultsService(counts voteCounter, elections resultsElections, cache *CacheService, metrics *MetricsService, logger *zap.Logger) *ResultsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResultsService{counts: counts, elections: elections, cache: cache, metrics: metrics, logger: logger}
}

// PositionResults returns the gated tally for one position. scopeFilter
// restricts counting to ballots from one department; totals and
// percentages are recomputed against that subset only.
func (s *ResultsService) PositionResults(ctx context.Context, electionID, positionID, scopeFilter string) (*models.PositionTally, error) {
	cacheKey := fmt.Sprintf("results:%s:%s:%s", electionID, positionID, scopeFilter)
	if s.cache.Enabled() {
		var cached models.PositionTally
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}
	election, position, err := s.loadPosition(ctx, electionID, positionID)
	if err != nil {
		return nil, err
	}
	tally, err := s.tally(ctx, position, scopeFilter)
	if err != nil {
		return nil, err
	}
	gated := Present(*tally, election, position.ResultsReleased)
	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, gated, 0)
	}
	return &gated, nil
}

// ElectionResults returns gated tallies for every position of the election.
func (s *ResultsService) ElectionResults(ctx context.Context, electionID, scopeFilter string) (*models.ElectionResults, error) {
	cacheKey := fmt.Sprintf("results:%s:all:%s", electionID, scopeFilter)
	if s.cache.Enabled() {
		var cached models.ElectionResults
		if hit, _ := s.cache.Get(ctx, cacheKey, &cached); hit {
			return &cached, nil
		}
	}
	election, err := s.loadElection(ctx, electionID)
	if err != nil {
		return nil, err
	}
	results := &models.ElectionResults{
		ElectionID:     electionID,
		ElectionStatus: election.Status,
		ScopeFilter:    scopeFilter,
	}
	for i := range election.Positions {
		position := &election.Positions[i]
		tally, err := s.tally(ctx, position, scopeFilter)
		if err != nil {
			return nil, err
		}
		results.Positions = append(results.Positions, Present(*tally, election, position.ResultsReleased))
	}
	if s.cache.Enabled() {
		_ = s.cache.Set(ctx, cacheKey, results, 0)
	}
	return results, nil
}

// tally aggregates fresh counts for one position and computes percentages
// against the position total (0 when no votes were cast).
func (s *ResultsService) tally(ctx context.Context, position *models.Position, scopeFilter string) (*models.PositionTally, error) {
	start := time.Now()
	counts, err := s.counts.VoteCounts(ctx, position.ID, scopeFilter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate votes")
	}
	if s.metrics != nil {
		s.metrics.ObserveTally(time.Since(start))
	}

	total := 0
	for _, row := range counts {
		total += row.VoteCount
	}
	tally := &models.PositionTally{
		PositionID:   position.ID,
		PositionName: position.Name,
		MaxVotes:     position.MaxVotes,
		TotalVotes:   total,
	}
	for _, row := range counts {
		percentage := 0.0
		if total > 0 {
			percentage = round2(float64(row.VoteCount) / float64(total) * 100)
		}
		tally.Candidates = append(tally.Candidates, models.TallyRow{
			CandidateID: row.CandidateID,
			Seq:         row.Seq,
			Name:        row.FullName,
			Affiliation: row.Affiliation,
			VoteCount:   row.VoteCount,
			Percentage:  percentage,
		})
	}
	// Deterministic leading-candidate order: vote count descending, ties
	// broken by ascending registration sequence.
	sort.SliceStable(tally.Candidates, func(i, j int) bool {
		if tally.Candidates[i].VoteCount != tally.Candidates[j].VoteCount {
			return tally.Candidates[i].VoteCount > tally.Candidates[j].VoteCount
		}
		return tally.Candidates[i].Seq < tally.Candidates[j].Seq
	})
	return tally, nil
}

// Present applies the visibility gate to a tally. Identity is revealed only
// when the election is completed or the position was manually released.
// Anonymous labels derive from the stable registration sequence, never from
// vote rank, so repeated queries cannot leak standing. Counts stay visible
// either way; the underlying vote data is never touched.
func Present(tally models.PositionTally, election *models.Election, released bool) models.PositionTally {
	revealed := election.Status == models.StatusCompleted || released
	tally.Revealed = revealed
	rows := make([]models.TallyRow, len(tally.Candidates))
	copy(rows, tally.Candidates)
	if !revealed {
		for i := range rows {
			rows[i].Name = fmt.Sprintf("Candidate %d", rows[i].Seq)
			rows[i].Affiliation = nil
		}
	}
	tally.Candidates = rows
	return tally
}

func (s *ResultsService) loadElection(ctx context.Context, electionID string) (*models.Election, error) {
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

func (s *ResultsService) loadPosition(ctx context.Context, electionID, positionID string) (*models.Election, *models.Position, error) {
	election, err := s.loadElection(ctx, electionID)
	if err != nil {
		return nil, nil, err
	}
	position := election.FindPosition(positionID)
	if position == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrNotFound, "position not found for election")
	}
	return election, position, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
