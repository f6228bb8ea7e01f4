package filter

import (
	"fmt"
	"slices"
	"time"

	"podads/internal/core/domain"
	"podads/internal/core/rng"
)

const (
	// lowBudgetThreshold is the remaining budget, in minor units, below
	// which the simulated reservation race can exhaust the campaign.
	lowBudgetThreshold = 10000
	budgetRaceChance   = 0.01

	// pacingThrottleRatio is the spend ratio above which requests are
	// probabilistically throttled to stay within the daily budget.
	pacingThrottleRatio  = 0.9
	pacingThrottleChance = 0.10

	frequencyCapChance = 0.01
)

var campaignStatusFilter = filterFunc{
	name: "CampaignStatusFilter",
	apply: func(_ domain.AdRequest, cand domain.Candidate, _ *rng.Rand) domain.FilterResult {
		if cand.Campaign.Status != domain.CampaignActive {
			return domain.Fail(domain.ReasonCampaignInactive,
				fmt.Sprintf("Campaign status is %s", cand.Campaign.Status))
		}
		return domain.Pass()
	},
}

var scheduleWindowFilter = filterFunc{
	name: "ScheduleWindowFilter",
	apply: func(req domain.AdRequest, cand domain.Candidate, _ *rng.Rand) domain.FilterResult {
		if req.Timestamp.Before(cand.Campaign.StartDate) {
			return domain.Fail(domain.ReasonOutsideScheduleWindow,
				fmt.Sprintf("Campaign starts on %s", cand.Campaign.StartDate.Format(time.RFC3339)))
		}
		if req.Timestamp.After(cand.Campaign.EndDate) {
			return domain.Fail(domain.ReasonOutsideScheduleWindow,
				fmt.Sprintf("Campaign ended on %s", cand.Campaign.EndDate.Format(time.RFC3339)))
		}
		return domain.Pass()
	},
}

var slotTypeFilter = filterFunc{
	name: "SlotTypeFilter",
	apply: func(req domain.AdRequest, cand domain.Candidate, _ *rng.Rand) domain.FilterResult {
		if !slices.Contains(cand.EligibleSlotTypes, req.Slot.Type) {
			return domain.Fail(domain.ReasonSlotTypeMismatch,
				fmt.Sprintf("Slot type %s not eligible for this creative", req.Slot.Type))
		}
		return domain.Pass()
	},
}

var creativeApprovalFilter = filterFunc{
	name: "CreativeApprovalFilter",
	apply: func(_ domain.AdRequest, cand domain.Candidate, _ *rng.Rand) domain.FilterResult {
		if cand.Creative.ApprovalStatus != domain.CreativeApproved {
			return domain.Fail(domain.ReasonCreativeNotApproved,
				fmt.Sprintf("Creative status is %s", cand.Creative.ApprovalStatus))
		}
		return domain.Pass()
	},
}

var geoTargetingFilter = filterFunc{
	name: "GeoTargetingFilter",
	apply: func(req domain.AdRequest, cand domain.Candidate, _ *rng.Rand) domain.FilterResult {
		allowed := cand.Campaign.Targeting.Geo
		if len(allowed) == 0 {
			return domain.Pass()
		}
		if !slices.Contains(allowed, req.Listener.Geo) {
			return domain.Fail(domain.ReasonGeoMismatch,
				fmt.Sprintf("Listener geo %s not in targeting list", req.Listener.Geo))
		}
		return domain.Pass()
	},
}

var deviceTargetingFilter = filterFunc{
	name: "DeviceTargetingFilter",
	apply: func(req domain.AdRequest, cand domain.Candidate, _ *rng.Rand) domain.FilterResult {
		allowed := cand.Campaign.Targeting.Device
		if len(allowed) == 0 {
			return domain.Pass()
		}
		if !slices.Contains(allowed, req.Listener.Device) {
			return domain.Fail(domain.ReasonDeviceMismatch,
				fmt.Sprintf("Listener device %s not in targeting list", req.Listener.Device))
		}
		return domain.Pass()
	},
}

var tierTargetingFilter = filterFunc{
	name: "TierTargetingFilter",
	apply: func(req domain.AdRequest, cand domain.Candidate, _ *rng.Rand) domain.FilterResult {
		allowed := cand.Campaign.Targeting.Tier
		if len(allowed) == 0 {
			return domain.Pass()
		}
		if !slices.Contains(allowed, req.Listener.Tier) {
			return domain.Fail(domain.ReasonTierMismatch,
				fmt.Sprintf("Listener tier %s not in targeting list", req.Listener.Tier))
		}
		return domain.Pass()
	},
}

var categoryMatchFilter = filterFunc{
	name: "CategoryMatchFilter",
	apply: func(req domain.AdRequest, cand domain.Candidate, _ *rng.Rand) domain.FilterResult {
		allowed := cand.Campaign.Targeting.Categories
		if len(allowed) == 0 {
			return domain.Pass()
		}
		if !slices.Contains(allowed, req.Podcast.Category) {
			return domain.Fail(domain.ReasonCategoryMismatch,
				fmt.Sprintf("Podcast category %s not in targeting list", req.Podcast.Category))
		}
		return domain.Pass()
	},
}

var excludedCategoryFilter = filterFunc{
	name: "ExcludedCategoryFilter",
	apply: func(req domain.AdRequest, cand domain.Candidate, _ *rng.Rand) domain.FilterResult {
		excluded := cand.Campaign.Targeting.ExcludeCategories
		if len(excluded) == 0 {
			return domain.Pass()
		}
		if slices.Contains(excluded, req.Podcast.Category) {
			return domain.Fail(domain.ReasonExcludedCategory,
				fmt.Sprintf("Podcast category %s is excluded", req.Podcast.Category))
		}
		return domain.Pass()
	},
}

// budgetRemainingFilter checks the budget snapshot. With remaining budget
// below lowBudgetThreshold a 1% simulated reservation race can still
// exhaust the campaign. The draw is taken whenever remaining > 0 so the
// seed's draw sequence matches the trace replay.
var budgetRemainingFilter = filterFunc{
	name: "BudgetRemainingFilter",
	apply: func(_ domain.AdRequest, cand domain.Candidate, rnd *rng.Rand) domain.FilterResult {
		remaining := cand.Campaign.Budget.Remaining
		if remaining <= 0 {
			return domain.Fail(domain.ReasonBudgetExhausted, "Campaign budget exhausted")
		}
		if rnd.NextFloat() < budgetRaceChance && remaining < lowBudgetThreshold {
			return domain.Fail(domain.ReasonBudgetExhausted,
				"Budget exhausted due to concurrent reservations")
		}
		return domain.Pass()
	},
}

// pacingGateFilter is a no-op for campaigns without a daily budget. Past
// the daily budget it always fails; above a 0.9 spend ratio it throttles
// 10% of requests.
var pacingGateFilter = filterFunc{
	name: "PacingGateFilter",
	apply: func(_ domain.AdRequest, cand domain.Candidate, rnd *rng.Rand) domain.FilterResult {
		pacing := cand.Campaign.Pacing
		if pacing.DailyBudget == nil {
			return domain.Pass()
		}
		ratio := pacing.SpendRatio()
		if ratio >= 1.0 {
			return domain.Fail(domain.ReasonPacingLimitExceeded, "Daily pacing limit exceeded")
		}
		if ratio > pacingThrottleRatio && rnd.NextFloat() < pacingThrottleChance {
			return domain.Fail(domain.ReasonPacingLimitExceeded,
				"Pacing throttled to stay within daily budget")
		}
		return domain.Pass()
	},
}

// frequencyCapFilter simulates cap breaches with a flat 1% probability when
// a cap is configured; no impression ledger is modeled.
var frequencyCapFilter = filterFunc{
	name: "FrequencyCapFilter",
	apply: func(_ domain.AdRequest, cand domain.Candidate, rnd *rng.Rand) domain.FilterResult {
		cap := cand.Campaign.FrequencyCap
		if cap == nil {
			return domain.Pass()
		}
		if rnd.NextFloat() < frequencyCapChance {
			return domain.Fail(domain.ReasonFrequencyCapExceeded,
				fmt.Sprintf("Frequency cap exceeded: %d impressions in %dh", cap.MaxImpressions, cap.WindowHours))
		}
		return domain.Pass()
	},
}
