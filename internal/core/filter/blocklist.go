package filter

import (
	"encoding/json"
	"fmt"

	"podads/internal/core/domain"
	"podads/internal/core/rng"
)

// Blocklist holds campaign and creative ids flagged as abusive. Campaigns
// are checked first: a blocked campaign removes all of its creatives at
// once. Lookups are O(1); the list is loaded once and shared read-only.
type Blocklist struct {
	campaignIDs map[string]struct{}
	creativeIDs map[string]struct{}
}

// NewBlocklist builds a blocklist from explicit id sets.
func NewBlocklist(campaignIDs, creativeIDs []string) *Blocklist {
	bl := &Blocklist{
		campaignIDs: make(map[string]struct{}, len(campaignIDs)),
		creativeIDs: make(map[string]struct{}, len(creativeIDs)),
	}
	for _, id := range campaignIDs {
		bl.campaignIDs[id] = struct{}{}
	}
	for _, id := range creativeIDs {
		bl.creativeIDs[id] = struct{}{}
	}
	return bl
}

type blocklistEntry struct {
	CampaignID string `json:"campaignId"`
	CreativeID string `json:"creativeId"`
}

type blocklistSource struct {
	Entries []blocklistEntry `json:"entries"`
}

type blocklistFile struct {
	Version string                     `json:"version"`
	Sources map[string]blocklistSource `json:"sources"`
}

// ParseBlocklist decodes the blocklist fixture format: a version plus entry
// lists grouped by source (customer_reports, ml_keyword_match,
// manual_curation). Entries from every source are merged.
func ParseBlocklist(data []byte) (*Blocklist, error) {
	var file blocklistFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse blocklist: %w", err)
	}
	var campaigns, creatives []string
	for _, src := range file.Sources {
		for _, e := range src.Entries {
			if e.CampaignID != "" {
				campaigns = append(campaigns, e.CampaignID)
			}
			if e.CreativeID != "" {
				creatives = append(creatives, e.CreativeID)
			}
		}
	}
	return NewBlocklist(campaigns, creatives), nil
}

// AsFilter exposes the blocklist as a chain filter. A nil blocklist passes
// everything.
func (bl *Blocklist) AsFilter() Filter {
	return filterFunc{
		name: "BrandSafetyFilter",
		apply: func(_ domain.AdRequest, cand domain.Candidate, _ *rng.Rand) domain.FilterResult {
			if bl == nil {
				return domain.Pass()
			}
			if _, blocked := bl.campaignIDs[cand.Campaign.ID]; blocked {
				return domain.Fail(domain.ReasonBrandSafetyViolation,
					fmt.Sprintf("Campaign blocked by brand safety filter: %s", cand.Campaign.ID))
			}
			if _, blocked := bl.creativeIDs[cand.Creative.ID]; blocked {
				return domain.Fail(domain.ReasonBrandSafetyViolation,
					fmt.Sprintf("Creative blocked by brand safety filter: %s", cand.Creative.ID))
			}
			return domain.Pass()
		},
	}
}
