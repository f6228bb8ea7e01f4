// Package fixture serves the candidate catalog from embedded JSON data.
// It is the default catalog source: the decision pipeline needs no external
// I/O to run.
package fixture

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"podads/internal/core/domain"
	"podads/internal/core/filter"
)

//go:embed fixtures/*.json
var fixturesFS embed.FS

type campaignsFile struct {
	Campaigns []domain.Campaign `json:"campaigns"`
}

type creativesFile struct {
	Creatives []domain.Creative `json:"creatives"`
}

// Repository implements port.CatalogRepository over the embedded fixtures.
// The catalog is parsed once at construction and shared read-only.
type Repository struct {
	campaigns []domain.Campaign
	creatives []domain.Creative
}

// NewRepository loads and parses the embedded catalog.
func NewRepository() (*Repository, error) {
	campaigns, creatives, err := Load()
	if err != nil {
		return nil, err
	}
	return &Repository{campaigns: campaigns, creatives: creatives}, nil
}

// Load parses the embedded campaign and creative fixtures. Exposed so the
// database seeder can reuse the same data set.
func Load() ([]domain.Campaign, []domain.Creative, error) {
	var campFile campaignsFile
	if err := readJSON("fixtures/campaigns.json", &campFile); err != nil {
		return nil, nil, err
	}
	var crFile creativesFile
	if err := readJSON("fixtures/creatives.json", &crFile); err != nil {
		return nil, nil, err
	}
	return campFile.Campaigns, crFile.Creatives, nil
}

// LoadBlocklist parses the embedded brand-safety blocklist.
func LoadBlocklist() (*filter.Blocklist, error) {
	data, err := fixturesFS.ReadFile("fixtures/blocklist.json")
	if err != nil {
		return nil, fmt.Errorf("read blocklist fixture: %w", err)
	}
	return filter.ParseBlocklist(data)
}

func readJSON(name string, v any) error {
	data, err := fixturesFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read fixture %s: %w", name, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse fixture %s: %w", name, err)
	}
	return nil
}

// LoadCandidates cross-joins campaigns with their creatives and keeps the
// pairs whose campaign either has no category targeting or targets the
// requested category. Status, schedule and approval are deliberately not
// checked here; the filter chain owns those.
func (r *Repository) LoadCandidates(_ context.Context, category string) ([]domain.Candidate, error) {
	candidates := make([]domain.Candidate, 0, len(r.creatives))
	for _, campaign := range r.campaigns {
		if !categoryEligible(campaign, category) {
			continue
		}
		for _, creative := range r.creatives {
			if creative.CampaignID != campaign.ID {
				continue
			}
			candidates = append(candidates, domain.Candidate{
				Campaign:          campaign,
				Creative:          creative,
				EligibleSlotTypes: eligibleSlotTypes(creative),
			})
		}
	}
	return candidates, nil
}

func categoryEligible(campaign domain.Campaign, category string) bool {
	categories := campaign.Targeting.Categories
	if len(categories) == 0 {
		return true
	}
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

// eligibleSlotTypes resolves a creative's slot eligibility: creatives
// without an explicit list run in every slot type.
func eligibleSlotTypes(creative domain.Creative) []string {
	if len(creative.EligibleSlotTypes) > 0 {
		return creative.EligibleSlotTypes
	}
	return domain.AllSlotTypes
}
