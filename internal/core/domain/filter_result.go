package domain

// Reason codes a filter may attach to a failing result. The set is fixed;
// downstream tooling matches on these strings.
const (
	ReasonCampaignInactive      = "campaign_inactive"
	ReasonOutsideScheduleWindow = "outside_schedule_window"
	ReasonSlotTypeMismatch      = "slot_type_mismatch"
	ReasonCreativeNotApproved   = "creative_not_approved"
	ReasonGeoMismatch           = "geo_mismatch"
	ReasonDeviceMismatch        = "device_mismatch"
	ReasonTierMismatch          = "tier_mismatch"
	ReasonCategoryMismatch      = "category_mismatch"
	ReasonExcludedCategory      = "excluded_category"
	ReasonBudgetExhausted       = "budget_exhausted"
	ReasonPacingLimitExceeded   = "pacing_limit_exceeded"
	ReasonFrequencyCapExceeded  = "frequency_cap_exceeded"
	ReasonBrandSafetyViolation  = "brand_safety_violation"
)

// FilterResult records one filter's verdict for one candidate. Results are
// never retroactively modified; filters skipped by short-circuiting are
// simply absent from the candidate's result map.
type FilterResult struct {
	Passed     bool   `json:"passed"`
	ReasonCode string `json:"reasonCode,omitempty"`
	Details    string `json:"details,omitempty"`
}

// Pass is the shared passing result.
func Pass() FilterResult {
	return FilterResult{Passed: true}
}

// Fail builds a failing result with a reason code and human-readable detail.
func Fail(reason, details string) FilterResult {
	return FilterResult{Passed: false, ReasonCode: reason, Details: details}
}
