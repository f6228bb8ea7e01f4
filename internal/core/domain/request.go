package domain

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

// ErrInvalidRequest marks malformed input rejected before the pipeline runs.
// It is distinct from a no-fill outcome, which is a valid, fully traced
// decision.
var ErrInvalidRequest = errors.New("invalid ad request")

// Slot types an ad can be inserted into.
const (
	SlotPreRoll  = "pre-roll"
	SlotMidRoll  = "mid-roll"
	SlotPostRoll = "post-roll"
)

// AllSlotTypes lists every supported slot type in canonical order.
var AllSlotTypes = []string{SlotPreRoll, SlotMidRoll, SlotPostRoll}

// Categories the catalog understands.
var AllCategories = []string{
	"fitness", "tech", "finance", "true-crime",
	"sports", "comedy", "news", "education",
}

var (
	allDevices    = []string{"mobile", "desktop", "smart-speaker", "car"}
	allTiers      = []string{"free", "premium"}
	allTimesOfDay = []string{"morning", "afternoon", "evening", "night"}
)

// PodcastContext describes the content an ad would run against.
type PodcastContext struct {
	Category string `json:"category"`
	Show     string `json:"show"`
	Episode  string `json:"episode"`
}

// SlotContext describes the ad slot being filled. CuePoint is the offset in
// seconds into the episode and only meaningful for mid-roll slots.
type SlotContext struct {
	Type     string `json:"type"`
	CuePoint *int   `json:"cuePoint,omitempty"`
}

// ListenerContext captures who is listening.
type ListenerContext struct {
	Geo       string `json:"geo"` // ISO country code, e.g. "US"
	Device    string `json:"device"`
	Tier      string `json:"tier"`
	Consent   bool   `json:"consent"`
	TimeOfDay string `json:"timeOfDay"`
}

// AdRequest is the immutable input to one decision. It is constructed once
// at the boundary and never mutated by the pipeline.
type AdRequest struct {
	RequestID string          `json:"requestId"`
	Podcast   PodcastContext  `json:"podcast"`
	Slot      SlotContext     `json:"slot"`
	Listener  ListenerContext `json:"listener"`
	Timestamp time.Time       `json:"timestamp"`
}

// Validate rejects requests missing required fields or carrying values
// outside the known enumerations. All failures wrap ErrInvalidRequest.
func (r AdRequest) Validate() error {
	if r.RequestID == "" {
		return fmt.Errorf("%w: missing requestId", ErrInvalidRequest)
	}
	if !slices.Contains(AllCategories, r.Podcast.Category) {
		return fmt.Errorf("%w: unknown podcast category %q", ErrInvalidRequest, r.Podcast.Category)
	}
	if r.Podcast.Show == "" {
		return fmt.Errorf("%w: missing podcast show", ErrInvalidRequest)
	}
	if !slices.Contains(AllSlotTypes, r.Slot.Type) {
		return fmt.Errorf("%w: unknown slot type %q", ErrInvalidRequest, r.Slot.Type)
	}
	if r.Listener.Geo == "" {
		return fmt.Errorf("%w: missing listener geo", ErrInvalidRequest)
	}
	if !slices.Contains(allDevices, r.Listener.Device) {
		return fmt.Errorf("%w: unknown listener device %q", ErrInvalidRequest, r.Listener.Device)
	}
	if !slices.Contains(allTiers, r.Listener.Tier) {
		return fmt.Errorf("%w: unknown listener tier %q", ErrInvalidRequest, r.Listener.Tier)
	}
	if r.Listener.TimeOfDay != "" && !slices.Contains(allTimesOfDay, r.Listener.TimeOfDay) {
		return fmt.Errorf("%w: unknown time of day %q", ErrInvalidRequest, r.Listener.TimeOfDay)
	}
	if r.Timestamp.IsZero() {
		return fmt.Errorf("%w: missing timestamp", ErrInvalidRequest)
	}
	return nil
}
