package domain

// Candidate pairs a campaign with one of its creatives for a single
// decision. EligibleSlotTypes is resolved at sourcing time: creatives
// without an explicit list are eligible for every slot type.
type Candidate struct {
	Campaign          Campaign
	Creative          Creative
	EligibleSlotTypes []string
}

// ID is the composite candidate identity used throughout the decision trace.
func (c Candidate) ID() string {
	return c.Campaign.ID + "-" + c.Creative.ID
}
