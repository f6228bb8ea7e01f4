package auction

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podads/internal/core/domain"
)

func request() domain.AdRequest {
	return domain.AdRequest{
		RequestID: "req-1",
		Podcast:   domain.PodcastContext{Category: "tech", Show: "Tech Weekly", Episode: "ep-1"},
		Slot:      domain.SlotContext{Type: domain.SlotMidRoll},
		Listener:  domain.ListenerContext{Geo: "US", Device: "mobile", Tier: "free"},
		Timestamp: time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC),
	}
}

func candidate(campaignID string, bidCPM int64) domain.Candidate {
	return domain.Candidate{
		Campaign: domain.Campaign{
			ID:     campaignID,
			Name:   campaignID + " campaign",
			Status: domain.CampaignActive,
			BidCPM: bidCPM,
		},
		Creative:          domain.Creative{ID: "cr-" + campaignID, CampaignID: campaignID},
		EligibleSlotTypes: domain.AllSlotTypes,
	}
}

func TestScoreUntargetedCampaignIsNeutral(t *testing.T) {
	// No targeting at all: matchScore = 0.5*0.6 + 0.5*0.4*1.0 = 0.5.
	score := Score(request(), candidate("camp-1", 1000))
	assert.InDelta(t, 0.5, score.MatchScore, 1e-9)
	assert.InDelta(t, 1.0, score.PacingMultiplier, 1e-9)
	assert.InDelta(t, 500.0, score.FinalScore, 1e-9)
	assert.InDelta(t, 0.5, score.Breakdown.CategoryMatch, 1e-9)
	assert.InDelta(t, 0.5, score.Breakdown.ShowMatch, 1e-9)
}

func TestScoreCategoryAndShowMatch(t *testing.T) {
	cand := candidate("camp-1", 1000)
	cand.Campaign.Targeting.Categories = []string{"tech"}
	cand.Campaign.Targeting.Shows = []string{"Tech Weekly"}
	score := Score(request(), cand)
	// 1.0*0.6 + 1.0*0.4*1.0 = 1.0
	assert.InDelta(t, 1.0, score.MatchScore, 1e-9)

	cand.Campaign.Targeting.Categories = []string{"finance"}
	cand.Campaign.Targeting.Shows = []string{"Money Talks"}
	score = Score(request(), cand)
	// 0.3*0.6 + 0.4*0.4*1.0 = 0.34
	assert.InDelta(t, 0.34, score.MatchScore, 1e-9)
	assert.InDelta(t, 0.3, score.Breakdown.CategoryMatch, 1e-9)
	assert.InDelta(t, 0.4, score.Breakdown.ShowMatch, 1e-9)
}

func TestScoreListenerSegmentWeight(t *testing.T) {
	req := request()
	req.Listener.Tier = "premium"
	score := Score(req, candidate("camp-1", 1000))
	assert.InDelta(t, 1.1, score.Breakdown.ListenerSegmentWeight, 1e-9)

	req.Listener.Device = "smart-speaker"
	score = Score(req, candidate("camp-1", 1000))
	// boosts multiply independently
	assert.InDelta(t, 1.1*1.05, score.Breakdown.ListenerSegmentWeight, 1e-9)
	// weight only applies to the show component
	assert.InDelta(t, 0.5*0.6+0.5*0.4*1.1*1.05, score.MatchScore, 1e-9)
}

func TestScorePacingMultiplierThresholds(t *testing.T) {
	daily := int64(100000)
	cases := []struct {
		spend int64
		want  float64
	}{
		{0, 1.0},
		{70000, 1.0},  // ratio 0.7 is not > 0.7
		{70001, 0.7},  // just over the moderate threshold
		{90001, 0.3},  // just over the heavy threshold
		{100000, 0.0}, // at the cap
		{120000, 0.0},
	}
	for _, tc := range cases {
		cand := candidate("camp-1", 1000)
		cand.Campaign.Pacing = domain.Pacing{DailyBudget: &daily, DailySpend: tc.spend}
		score := Score(request(), cand)
		assert.InDelta(t, tc.want, score.PacingMultiplier, 1e-9, "spend %d", tc.spend)
	}
}

func TestRunSecondPriceSettlement(t *testing.T) {
	// Two survivors, matchScore and pacing 1.0 each: winner pays the
	// runner-up's raw bid.
	high := candidate("camp-high", 500)
	high.Campaign.Targeting.Categories = []string{"tech"}
	high.Campaign.Targeting.Shows = []string{"Tech Weekly"}
	low := candidate("camp-low", 300)
	low.Campaign.Targeting.Categories = []string{"tech"}
	low.Campaign.Targeting.Shows = []string{"Tech Weekly"}

	res := Run(request(), []domain.Candidate{low, high}, nil)
	require.NotNil(t, res.Winner)
	assert.Equal(t, "camp-high", res.Winner.CampaignID)
	assert.Equal(t, int64(300), res.PricePaid)
}

func TestRunSingleSurvivorPaysOwnBid(t *testing.T) {
	res := Run(request(), []domain.Candidate{candidate("camp-1", 750)}, nil)
	require.NotNil(t, res.Winner)
	assert.Equal(t, int64(750), res.PricePaid)
}

func TestRunEmptySurvivorSet(t *testing.T) {
	res := Run(request(), nil, nil)
	assert.Nil(t, res.Winner)
	assert.Empty(t, res.Ranked)
	assert.Zero(t, res.PricePaid)
}

func TestRunRankingInvariant(t *testing.T) {
	cands := []domain.Candidate{
		candidate("camp-a", 200),
		candidate("camp-b", 900),
		candidate("camp-c", 400),
		candidate("camp-d", 900),
	}
	res := Run(request(), cands, nil)
	require.NotNil(t, res.Winner)
	for i := 1; i < len(res.Ranked); i++ {
		assert.GreaterOrEqual(t, res.Ranked[i-1].Score.FinalScore, res.Ranked[i].Score.FinalScore)
		assert.GreaterOrEqual(t, res.Winner.Score.FinalScore, res.Ranked[i].Score.FinalScore)
	}
}

func TestRunTieKeepsCatalogOrder(t *testing.T) {
	// camp-b and camp-d carry identical bids and identical (empty)
	// targeting; the stable sort must keep their input order.
	cands := []domain.Candidate{
		candidate("camp-b", 900),
		candidate("camp-a", 200),
		candidate("camp-d", 900),
	}
	res := Run(request(), cands, nil)
	require.Len(t, res.Ranked, 3)
	assert.Equal(t, "camp-b", res.Ranked[0].CampaignID)
	assert.Equal(t, "camp-d", res.Ranked[1].CampaignID)
	assert.Equal(t, "camp-a", res.Ranked[2].CampaignID)
}

func TestSettlementUsesRawBidsNotFinalScores(t *testing.T) {
	// camp-low bids less but matches targeting perfectly; camp-high bids
	// more with only neutral fit. Final scores decide the winner, but the
	// settlement price is the runner-up's raw bid.
	low := candidate("camp-low", 600)
	low.Campaign.Targeting.Categories = []string{"tech"}
	low.Campaign.Targeting.Shows = []string{"Tech Weekly"}
	high := candidate("camp-high", 1000)

	res := Run(request(), []domain.Candidate{low, high}, nil)
	require.NotNil(t, res.Winner)
	// low: 600*1.0 = 600, high: 1000*0.5 = 500
	assert.Equal(t, "camp-low", res.Winner.CampaignID)
	assert.Equal(t, int64(1000), res.PricePaid)
}
