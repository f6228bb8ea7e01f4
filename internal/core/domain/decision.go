package domain

import "time"

// PipelineStage is one timed phase of the decision pipeline. Stages appear
// in execution order: Request, Sourcing, Filters, Auction, Serve. Latency
// is sampled from the wall clock for reporting only.
type PipelineStage struct {
	StageName     string         `json:"stageName"`
	LatencyMs     float64        `json:"latencyMs"`
	InputSummary  string         `json:"inputSummary"`
	OutputSummary string         `json:"outputSummary"`
	DebugPayload  map[string]any `json:"debugPayload,omitempty"`
}

// TrackingURLs are the playback event callbacks for a served creative.
// Quartiles holds the 25/50/75/100 percent events in order.
type TrackingURLs struct {
	Impression string   `json:"impression"`
	Quartiles  []string `json:"quartiles"`
	Complete   string   `json:"complete"`
	Click      string   `json:"click"`
}

// ServeInstruction tells the player what to serve and what the winner pays.
// PricePaid is in minor currency units and follows the second-price rule.
type ServeInstruction struct {
	CreativeID      string       `json:"creativeId"`
	CampaignID      string       `json:"campaignId"`
	CampaignName    string       `json:"campaignName"`
	BrandName       string       `json:"brandName"`
	AssetURL        string       `json:"assetUrl"`
	DurationSeconds int          `json:"durationSeconds"`
	TrackingURLs    TrackingURLs `json:"trackingUrls"`
	PricePaid       int64        `json:"pricePaid"`
}

// Winner pairs the winning candidate's trace entry with its serve
// instruction.
type Winner struct {
	Candidate CandidateWithScore `json:"candidate"`
	Serve     ServeInstruction   `json:"serve"`
}

// AdDecision is the immutable, replayable outcome of one decision
// computation. Candidates lists the full candidate universe, passed and
// failed, ranked with failed candidates below all passed ones. Exactly one
// of Winner and NoFillReason is set.
type AdDecision struct {
	DecisionID   string               `json:"decisionId"`
	RequestID    string               `json:"requestId"`
	Seed         int64                `json:"seed"`
	Timestamp    time.Time            `json:"timestamp"`
	Stages       []PipelineStage      `json:"stages"`
	Candidates   []CandidateWithScore `json:"candidates"`
	Winner       *Winner              `json:"winner,omitempty"`
	NoFillReason string               `json:"noFillReason,omitempty"`
}
