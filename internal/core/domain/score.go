package domain

// ScoreBreakdown exposes the individual match components feeding the
// combined match score.
type ScoreBreakdown struct {
	CategoryMatch         float64 `json:"categoryMatch"`
	ShowMatch             float64 `json:"showMatch"`
	ListenerSegmentWeight float64 `json:"listenerSegmentWeight"`
}

// AuctionScore holds the full scoring of one candidate:
// finalScore = bidCpm × matchScore × pacingMultiplier.
type AuctionScore struct {
	BidCPM           int64          `json:"bidCpm"`
	MatchScore       float64        `json:"matchScore"`
	PacingMultiplier float64        `json:"pacingMultiplier"`
	FinalScore       float64        `json:"finalScore"`
	Breakdown        ScoreBreakdown `json:"breakdown"`
}

// ZeroScore is the display-only score attached to candidates that failed
// filtering. It must never influence ranking among passed candidates.
func ZeroScore(bidCPM int64) AuctionScore {
	return AuctionScore{
		BidCPM:    bidCPM,
		Breakdown: ScoreBreakdown{ListenerSegmentWeight: 1.0},
	}
}

// CandidateWithScore is the per-candidate entry in the decision trace. The
// filter result map holds every attempted filter by name; when
// PassedAllFilters is false the score fields are zeroed and present for
// display only.
type CandidateWithScore struct {
	CandidateID      string                  `json:"candidateId"`
	CampaignID       string                  `json:"campaignId"`
	CampaignName     string                  `json:"campaignName"`
	BrandName        string                  `json:"brandName"`
	CreativeID       string                  `json:"creativeId"`
	FilterResults    map[string]FilterResult `json:"filterResults"`
	Score            AuctionScore            `json:"score"`
	PassedAllFilters bool                    `json:"passedAllFilters"`
}
