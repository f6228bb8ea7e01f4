package domain

// Creative approval statuses.
const (
	CreativeApproved = "approved"
	CreativePending  = "pending"
	CreativeRejected = "rejected"
)

// Creative represents an individual audio advertisement. A creative belongs
// to exactly one campaign.
type Creative struct {
	ID                string   `json:"id"`
	CampaignID        string   `json:"campaignId"`
	DurationSeconds   int      `json:"durationSeconds"`
	AssetURL          string   `json:"assetUrl"`
	ApprovalStatus    string   `json:"approvalStatus"`
	EligibleSlotTypes []string `json:"eligibleSlotTypes,omitempty"`
}
