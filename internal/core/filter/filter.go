// Package filter implements the ordered eligibility-filter chain. Each
// filter is an independent predicate over (request, candidate, random
// source); the chain evaluates them in a fixed order and short-circuits a
// candidate at its first failure.
package filter

import (
	"podads/internal/core/domain"
	"podads/internal/core/rng"
)

// Filter is a named eligibility predicate. Implementations must be pure
// apart from draws taken on the supplied random source: the draws are what
// make simulated probabilistic effects reproducible per seed.
type Filter interface {
	Name() string
	Apply(req domain.AdRequest, cand domain.Candidate, rnd *rng.Rand) domain.FilterResult
}

type filterFunc struct {
	name  string
	apply func(req domain.AdRequest, cand domain.Candidate, rnd *rng.Rand) domain.FilterResult
}

func (f filterFunc) Name() string { return f.name }

func (f filterFunc) Apply(req domain.AdRequest, cand domain.Candidate, rnd *rng.Rand) domain.FilterResult {
	return f.apply(req, cand, rnd)
}

// Chain is an ordered list of filters. Order is significant: evaluation
// stops at the first failure, so at most one failing result is ever
// recorded per candidate.
type Chain []Filter

// Run folds the chain over one candidate. It returns the map of every
// attempted filter's result keyed by filter name, and whether the candidate
// passed the whole chain. Filters skipped by short-circuiting are absent
// from the map.
func (c Chain) Run(req domain.AdRequest, cand domain.Candidate, rnd *rng.Rand) (map[string]domain.FilterResult, bool) {
	results := make(map[string]domain.FilterResult, len(c))
	for _, f := range c {
		res := f.Apply(req, cand, rnd)
		results[f.Name()] = res
		if !res.Passed {
			return results, false
		}
	}
	return results, true
}

// DefaultChain returns the canonical chain. The brand-safety filter runs
// right after the campaign status check so blocked ads never reach the
// targeting filters. A nil blocklist behaves as an empty one.
func DefaultChain(bl *Blocklist) Chain {
	return Chain{
		campaignStatusFilter,
		bl.AsFilter(),
		scheduleWindowFilter,
		slotTypeFilter,
		creativeApprovalFilter,
		geoTargetingFilter,
		deviceTargetingFilter,
		tierTargetingFilter,
		categoryMatchFilter,
		excludedCategoryFilter,
		budgetRemainingFilter,
		pacingGateFilter,
		frequencyCapFilter,
	}
}
