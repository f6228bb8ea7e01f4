package domain

import "time"

// Campaign statuses. Only active campaigns are eligible to serve.
const (
	CampaignActive = "active"
	CampaignPaused = "paused"
	CampaignEnded  = "ended"
	CampaignDraft  = "draft"
)

// Budget is a read-only snapshot of campaign spend headroom.
// Amounts are stored in integer minor units (cents).
type Budget struct {
	Total     int64 `json:"total"`
	Remaining int64 `json:"remaining"`
}

// Pacing is a read-only snapshot of daily spend against the daily budget.
// A nil DailyBudget means the campaign is not paced.
type Pacing struct {
	DailyBudget *int64 `json:"dailyBudget,omitempty"`
	DailySpend  int64  `json:"dailySpend,omitempty"`
}

// SpendRatio reports daily spend as a fraction of the daily budget.
// It returns 0 when no daily budget is configured.
func (p Pacing) SpendRatio() float64 {
	if p.DailyBudget == nil || *p.DailyBudget <= 0 {
		return 0
	}
	return float64(p.DailySpend) / float64(*p.DailyBudget)
}

// FrequencyCap limits impressions per listener inside a rolling window.
// No impression ledger is modeled; the cap only feeds the simulated
// frequency filter.
type FrequencyCap struct {
	MaxImpressions int `json:"maxImpressions"`
	WindowHours    int `json:"windowHours"`
}

// TargetingRule describes who a campaign may serve to. Empty lists mean no
// restriction on that dimension.
type TargetingRule struct {
	Geo               []string `json:"geo,omitempty"`
	Device            []string `json:"device,omitempty"`
	Tier              []string `json:"tier,omitempty"`
	Categories        []string `json:"categories,omitempty"`
	Shows             []string `json:"shows,omitempty"`
	ExcludeCategories []string `json:"excludeCategories,omitempty"`
}

// Campaign represents an advertising campaign. It is owned by the catalog
// and shared read-only across concurrent decisions; the pipeline never
// mutates it.
type Campaign struct {
	ID           string        `json:"id"`
	AdvertiserID string        `json:"advertiserId"`
	Name         string        `json:"name"`
	Status       string        `json:"status"`
	Budget       Budget        `json:"budget"`
	BidCPM       int64         `json:"bidCpm"` // cost per thousand impressions, cents
	StartDate    time.Time     `json:"startDate"`
	EndDate      time.Time     `json:"endDate"`
	Targeting    TargetingRule `json:"targeting"`
	Pacing       Pacing        `json:"pacing"`
	FrequencyCap *FrequencyCap `json:"frequencyCap,omitempty"`
}
