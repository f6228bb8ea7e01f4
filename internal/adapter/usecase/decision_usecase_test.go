package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podads/internal/core/domain"
	"podads/internal/core/filter"
	"podads/internal/core/port"
)

type stubCatalog struct {
	candidates []domain.Candidate
	err        error
}

func (s stubCatalog) LoadCandidates(context.Context, string) ([]domain.Candidate, error) {
	return s.candidates, s.err
}

var _ port.CatalogRepository = stubCatalog{}

var fixedNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func newPipeline(catalog port.CatalogRepository) *DecisionUseCase {
	return NewDecisionUseCase(catalog, filter.DefaultChain(nil), nil, nil).
		WithClock(func() time.Time { return fixedNow })
}

func request() domain.AdRequest {
	return domain.AdRequest{
		RequestID: "req-1",
		Podcast:   domain.PodcastContext{Category: "tech", Show: "Tech Weekly", Episode: "ep-7"},
		Slot:      domain.SlotContext{Type: domain.SlotMidRoll},
		Listener:  domain.ListenerContext{Geo: "US", Device: "mobile", Tier: "free", Consent: true, TimeOfDay: "morning"},
		Timestamp: fixedNow,
	}
}

func candidate(campaignID string, bidCPM int64) domain.Candidate {
	return domain.Candidate{
		Campaign: domain.Campaign{
			ID:           campaignID,
			AdvertiserID: "adv-" + campaignID,
			Name:         campaignID + " campaign",
			Status:       domain.CampaignActive,
			Budget:       domain.Budget{Total: 1000000, Remaining: 500000},
			BidCPM:       bidCPM,
			StartDate:    fixedNow.AddDate(0, -1, 0),
			EndDate:      fixedNow.AddDate(0, 6, 0),
		},
		Creative: domain.Creative{
			ID:              "cr-" + campaignID,
			CampaignID:      campaignID,
			DurationSeconds: 30,
			AssetURL:        "https://cdn.podads.lab/" + campaignID + ".mp3",
			ApprovalStatus:  domain.CreativeApproved,
		},
		EligibleSlotTypes: domain.AllSlotTypes,
	}
}

func TestDecideUntargetedCampaignWins(t *testing.T) {
	// Scenario A: empty targeting, active, in window, budget left, no
	// pacing or cap.
	u := newPipeline(stubCatalog{candidates: []domain.Candidate{candidate("camp-1", 1000)}})

	dec, err := u.Decide(context.Background(), request(), 42)
	require.NoError(t, err)
	require.NotNil(t, dec.Winner)
	assert.Empty(t, dec.NoFillReason)
	assert.InDelta(t, 0.5, dec.Winner.Candidate.Score.MatchScore, 1e-9)
	assert.True(t, dec.Winner.Candidate.PassedAllFilters)
	assert.Equal(t, int64(1000), dec.Winner.Serve.PricePaid, "single survivor pays its own bid")
}

func TestDecideSecondPrice(t *testing.T) {
	// Scenario B: two survivors with matchScore and pacing 1.0.
	high := candidate("camp-high", 500)
	high.Campaign.Targeting.Categories = []string{"tech"}
	high.Campaign.Targeting.Shows = []string{"Tech Weekly"}
	low := candidate("camp-low", 300)
	low.Campaign.Targeting.Categories = []string{"tech"}
	low.Campaign.Targeting.Shows = []string{"Tech Weekly"}

	u := newPipeline(stubCatalog{candidates: []domain.Candidate{high, low}})
	dec, err := u.Decide(context.Background(), request(), 7)
	require.NoError(t, err)
	require.NotNil(t, dec.Winner)
	assert.Equal(t, "camp-high", dec.Winner.Candidate.CampaignID)
	assert.Equal(t, int64(300), dec.Winner.Serve.PricePaid)
}

func TestDecideExcludedCategory(t *testing.T) {
	// Scenario C: the exclude-list beats a matching allow-list.
	cand := candidate("camp-1", 1000)
	cand.Campaign.Targeting.Categories = []string{"tech"}
	cand.Campaign.Targeting.ExcludeCategories = []string{"tech"}

	u := newPipeline(stubCatalog{candidates: []domain.Candidate{cand}})
	dec, err := u.Decide(context.Background(), request(), 1)
	require.NoError(t, err)
	assert.Nil(t, dec.Winner)
	require.Len(t, dec.Candidates, 1)
	res, ok := dec.Candidates[0].FilterResults["ExcludedCategoryFilter"]
	require.True(t, ok)
	assert.Equal(t, domain.ReasonExcludedCategory, res.ReasonCode)
}

func TestDecidePausedCampaignNoFill(t *testing.T) {
	// Scenario D: single paused candidate fails the first filter.
	cand := candidate("camp-1", 1000)
	cand.Campaign.Status = domain.CampaignPaused

	u := newPipeline(stubCatalog{candidates: []domain.Candidate{cand}})
	dec, err := u.Decide(context.Background(), request(), 1)
	require.NoError(t, err)
	assert.Nil(t, dec.Winner)
	assert.NotEmpty(t, dec.NoFillReason)

	require.Len(t, dec.Candidates, 1)
	entry := dec.Candidates[0]
	assert.False(t, entry.PassedAllFilters)
	require.Len(t, entry.FilterResults, 1, "short-circuit records only the failing filter")
	res := entry.FilterResults["CampaignStatusFilter"]
	assert.Equal(t, domain.ReasonCampaignInactive, res.ReasonCode)
	assert.Zero(t, entry.Score.FinalScore)
}

func TestDecideEmptyCatalogIsNoFill(t *testing.T) {
	u := newPipeline(stubCatalog{})
	dec, err := u.Decide(context.Background(), request(), 1)
	require.NoError(t, err)
	assert.Nil(t, dec.Winner)
	assert.Equal(t, "No eligible candidates after filtering", dec.NoFillReason)
	assert.Empty(t, dec.Candidates)
	assert.Len(t, dec.Stages, 5)
}

func TestDecideStageOrder(t *testing.T) {
	u := newPipeline(stubCatalog{candidates: []domain.Candidate{candidate("camp-1", 500)}})
	dec, err := u.Decide(context.Background(), request(), 3)
	require.NoError(t, err)

	names := make([]string, 0, len(dec.Stages))
	for _, s := range dec.Stages {
		names = append(names, s.StageName)
	}
	assert.Equal(t, []string{"Request", "Sourcing", "Filters", "Auction", "Serve"}, names)
}

func TestDecideDeterminism(t *testing.T) {
	// With a pinned clock two runs over the same (request, seed, catalog)
	// must be bit-identical, including the probabilistic filter draws.
	cand := candidate("camp-1", 800)
	cand.Campaign.FrequencyCap = &domain.FrequencyCap{MaxImpressions: 3, WindowHours: 24}
	cand.Campaign.Budget.Remaining = 5000

	u := newPipeline(stubCatalog{candidates: []domain.Candidate{cand, candidate("camp-2", 600)}})
	for seed := int64(0); seed < 50; seed++ {
		first, err := u.Decide(context.Background(), request(), seed)
		require.NoError(t, err)
		second, err := u.Decide(context.Background(), request(), seed)
		require.NoError(t, err)
		require.Equal(t, first, second, "seed %d", seed)

		a, err := json.Marshal(first)
		require.NoError(t, err)
		b, err := json.Marshal(second)
		require.NoError(t, err)
		require.JSONEq(t, string(a), string(b))
	}
}

func TestDecideDeterministicDecisionID(t *testing.T) {
	u := newPipeline(stubCatalog{candidates: []domain.Candidate{candidate("camp-1", 500)}})
	dec, err := u.Decide(context.Background(), request(), 42)
	require.NoError(t, err)
	assert.Equal(t, "dec-req-1-42", dec.DecisionID)
	assert.Equal(t, "req-1", dec.RequestID)
	assert.Equal(t, int64(42), dec.Seed)
}

func TestDecideFailedCandidatesRankBelowPassed(t *testing.T) {
	paused := candidate("camp-paused", 9000)
	paused.Campaign.Status = domain.CampaignPaused
	active := candidate("camp-active", 100)

	u := newPipeline(stubCatalog{candidates: []domain.Candidate{paused, active}})
	dec, err := u.Decide(context.Background(), request(), 5)
	require.NoError(t, err)
	require.Len(t, dec.Candidates, 2)
	assert.Equal(t, "camp-active", dec.Candidates[0].CampaignID)
	assert.Equal(t, "camp-paused", dec.Candidates[1].CampaignID)
	assert.False(t, dec.Candidates[1].PassedAllFilters)
}

func TestDecideTrackingURLs(t *testing.T) {
	u := newPipeline(stubCatalog{candidates: []domain.Candidate{candidate("camp-1", 500)}})
	dec, err := u.Decide(context.Background(), request(), 9)
	require.NoError(t, err)
	require.NotNil(t, dec.Winner)

	urls := dec.Winner.Serve.TrackingURLs
	base := "https://tracking.podads.lab/events/dec-req-1-9"
	assert.Equal(t, base+"/impression", urls.Impression)
	assert.Equal(t, []string{base + "/quartile/25", base + "/quartile/50", base + "/quartile/75", base + "/quartile/100"}, urls.Quartiles)
	assert.Equal(t, base+"/complete", urls.Complete)
	assert.Equal(t, base+"/click", urls.Click)
	assert.Equal(t, "https://cdn.podads.lab/camp-1.mp3", dec.Winner.Serve.AssetURL)
	assert.Equal(t, 30, dec.Winner.Serve.DurationSeconds)
}

func TestDecideValidatesRequest(t *testing.T) {
	u := newPipeline(stubCatalog{candidates: []domain.Candidate{candidate("camp-1", 500)}})

	bad := request()
	bad.RequestID = ""
	_, err := u.Decide(context.Background(), bad, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidRequest))

	bad = request()
	bad.Podcast.Category = "gardening"
	_, err = u.Decide(context.Background(), bad, 1)
	assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
}

func TestDecidePropagatesCatalogError(t *testing.T) {
	wantErr := errors.New("catalog unavailable")
	u := newPipeline(stubCatalog{err: wantErr})
	_, err := u.Decide(context.Background(), request(), 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, wantErr))
}

func TestDecideJSONFieldNames(t *testing.T) {
	// Downstream tooling extracts named sub-fields; the wire names are a
	// contract.
	u := newPipeline(stubCatalog{candidates: []domain.Candidate{candidate("camp-1", 500)}})
	dec, err := u.Decide(context.Background(), request(), 2)
	require.NoError(t, err)

	raw, err := json.Marshal(dec)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))

	for _, key := range []string{"decisionId", "requestId", "seed", "timestamp", "stages", "candidates", "winner"} {
		assert.Contains(t, m, key)
	}
	stages := m["stages"].([]any)
	stage := stages[0].(map[string]any)
	for _, key := range []string{"stageName", "latencyMs", "inputSummary", "outputSummary"} {
		assert.Contains(t, stage, key)
	}
	cands := m["candidates"].([]any)
	cand := cands[0].(map[string]any)
	for _, key := range []string{"candidateId", "campaignId", "campaignName", "brandName", "creativeId", "filterResults", "score", "passedAllFilters"} {
		assert.Contains(t, cand, key)
	}
	score := cand["score"].(map[string]any)
	for _, key := range []string{"bidCpm", "matchScore", "pacingMultiplier", "finalScore", "breakdown"} {
		assert.Contains(t, score, key)
	}
	winner := m["winner"].(map[string]any)
	serve := winner["serve"].(map[string]any)
	for _, key := range []string{"creativeId", "campaignId", "campaignName", "brandName", "assetUrl", "durationSeconds", "trackingUrls", "pricePaid"} {
		assert.Contains(t, serve, key)
	}
}

func TestDecideBatch(t *testing.T) {
	u := newPipeline(stubCatalog{candidates: []domain.Candidate{candidate("camp-1", 500)}})

	decisions, err := u.DecideBatch(context.Background(), request(), 100, 5)
	require.NoError(t, err)
	require.Len(t, decisions, 5)
	for i, dec := range decisions {
		require.NotNil(t, dec)
		assert.Equal(t, int64(100+i), dec.Seed, "decisions must come back in seed order")
	}

	// batch decisions are independent: each equals a standalone run
	single, err := u.Decide(context.Background(), request(), 102)
	require.NoError(t, err)
	assert.Equal(t, single, decisions[2])
}

func TestDecideBatchRejectsBadCount(t *testing.T) {
	u := newPipeline(stubCatalog{})
	_, err := u.DecideBatch(context.Background(), request(), 1, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidRequest))
}
