// Package auction scores filter-surviving candidates and settles the
// winner's price by the second-price rule.
package auction

import (
	"sort"

	"podads/internal/core/brand"
	"podads/internal/core/domain"
)

// Match score weights and partial-match values. A dimension with no
// targeting configured scores neutral; targeting that exists but does not
// match scores a partial credit rather than zero.
const (
	neutralMatch         = 0.5
	partialCategoryMatch = 0.3
	partialShowMatch     = 0.4
	categoryWeight       = 0.6
	showWeight           = 0.4

	premiumTierBoost  = 1.1
	smartSpeakerBoost = 1.05
)

// matchComponents computes the targeting-fit components for one candidate.
func matchComponents(req domain.AdRequest, cand domain.Candidate) domain.ScoreBreakdown {
	b := domain.ScoreBreakdown{
		CategoryMatch:         neutralMatch,
		ShowMatch:             neutralMatch,
		ListenerSegmentWeight: 1.0,
	}

	if categories := cand.Campaign.Targeting.Categories; len(categories) > 0 {
		b.CategoryMatch = partialCategoryMatch
		for _, c := range categories {
			if c == req.Podcast.Category {
				b.CategoryMatch = 1.0
				break
			}
		}
	}

	if shows := cand.Campaign.Targeting.Shows; len(shows) > 0 {
		b.ShowMatch = partialShowMatch
		for _, s := range shows {
			if s == req.Podcast.Show {
				b.ShowMatch = 1.0
				break
			}
		}
	}

	if req.Listener.Tier == "premium" {
		b.ListenerSegmentWeight = premiumTierBoost
	}
	if req.Listener.Device == "smart-speaker" {
		b.ListenerSegmentWeight *= smartSpeakerBoost
	}
	return b
}

// pacingMultiplier dampens the score as a campaign approaches its daily
// spend cap. Campaigns without a daily budget are never dampened.
func pacingMultiplier(cand domain.Candidate) float64 {
	pacing := cand.Campaign.Pacing
	if pacing.DailyBudget == nil {
		return 1.0
	}
	ratio := pacing.SpendRatio()
	switch {
	case ratio >= 1.0:
		return 0.0
	case ratio > 0.9:
		return 0.3
	case ratio > 0.7:
		return 0.7
	default:
		return 1.0
	}
}

// Score computes the full auction score for one candidate:
// finalScore = bidCpm × (categoryMatch×0.6 + showMatch×0.4×segmentWeight) × pacing.
func Score(req domain.AdRequest, cand domain.Candidate) domain.AuctionScore {
	breakdown := matchComponents(req, cand)
	pacing := pacingMultiplier(cand)
	matchScore := breakdown.CategoryMatch*categoryWeight +
		breakdown.ShowMatch*showWeight*breakdown.ListenerSegmentWeight

	return domain.AuctionScore{
		BidCPM:           cand.Campaign.BidCPM,
		MatchScore:       matchScore,
		PacingMultiplier: pacing,
		FinalScore:       float64(cand.Campaign.BidCPM) * matchScore * pacing,
		Breakdown:        breakdown,
	}
}

// Result is the outcome of ranking the filter survivors.
type Result struct {
	// Ranked holds the scored survivors in descending final-score order.
	// Ties keep catalog iteration order (stable sort).
	Ranked []domain.CandidateWithScore

	// Winner is the top-ranked survivor, nil when none survived.
	Winner *domain.CandidateWithScore

	// PricePaid is the settlement price in minor units: the runner-up's
	// raw bidCpm when at least two candidates survived, otherwise the
	// winner's own bidCpm. Zero when there is no winner.
	PricePaid int64
}

// Run scores and ranks the candidates that passed every filter. The
// filterResults map (candidate id -> filter name -> result) is attached to
// each entry for the decision trace. Settlement compares raw bids only;
// final scores never influence the price.
func Run(req domain.AdRequest, passed []domain.Candidate, filterResults map[string]map[string]domain.FilterResult) Result {
	ranked := make([]domain.CandidateWithScore, 0, len(passed))
	for _, cand := range passed {
		ranked = append(ranked, domain.CandidateWithScore{
			CandidateID:      cand.ID(),
			CampaignID:       cand.Campaign.ID,
			CampaignName:     cand.Campaign.Name,
			BrandName:        brand.FromCampaignName(cand.Campaign.Name),
			CreativeID:       cand.Creative.ID,
			FilterResults:    filterResults[cand.ID()],
			Score:            Score(req, cand),
			PassedAllFilters: true,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score.FinalScore > ranked[j].Score.FinalScore
	})

	res := Result{Ranked: ranked}
	if len(ranked) == 0 {
		return res
	}
	res.Winner = &ranked[0]
	if len(ranked) > 1 {
		res.PricePaid = ranked[1].Score.BidCPM
	} else {
		res.PricePaid = ranked[0].Score.BidCPM
	}
	return res
}
