// Package brand derives advertiser display names from campaign names, e.g.
// "Capital One Venture - What's in Your Wallet?" -> "Capital One".
package brand

import "strings"

// Multi-word brands checked before single words so the longer match wins.
var multiWordBrands = []string{
	"American Express", "Under Armour", "Bank of America", "Capital One",
	"The New York Times", "The Wall Street Journal", "The Washington Post",
	"Apple TV+", "HBO Max", "Paramount Plus", "YouTube Premium",
	"LinkedIn Learning", "Rosetta Stone", "Khan Academy", "New Balance",
	"Athletic Greens", "Comedy Central",
}

var singleWordBrands = []string{
	"Nike", "Adidas", "Apple", "Samsung", "Chase", "Spotify", "Tesla",
	"Peloton", "Lululemon", "Gatorade", "Fitbit", "Strava",
	"ESPN", "Wilson", "Google", "Microsoft", "Amazon", "Netflix", "Adobe",
	"PayPal", "Venmo", "Robinhood", "Fidelity", "Mastercard", "Visa",
	"Audible", "Hulu", "Squarespace", "BetterHelp", "ExpressVPN",
	"HelloFresh", "SiriusXM", "Pandora", "CNN", "BBC", "Bloomberg", "NPR",
	"Udemy", "MasterClass", "Skillshare", "Duolingo", "Babbel", "Coursera",
}

// normalization maps a leading partial to the full brand it usually stands
// for; the expansion is only applied when the campaign name confirms it.
var normalization = map[string]string{
	"American":  "American Express",
	"Under":     "Under Armour",
	"Bank":      "Bank of America",
	"Capital":   "Capital One",
	"HBO":       "HBO Max",
	"Paramount": "Paramount Plus",
	"YouTube":   "YouTube Premium",
	"LinkedIn":  "LinkedIn Learning",
	"Rosetta":   "Rosetta Stone",
	"Khan":      "Khan Academy",
	"Athletic":  "Athletic Greens",
}

// FromCampaignName extracts and normalizes the brand name for a campaign.
// Unknown brands fall back to the campaign name's first word; an empty
// campaign name yields an empty brand.
func FromCampaignName(campaignName string) string {
	if campaignName == "" {
		return ""
	}
	for _, b := range multiWordBrands {
		if strings.HasPrefix(campaignName, b) {
			return b
		}
	}
	for _, b := range singleWordBrands {
		if strings.HasPrefix(campaignName, b) {
			return b
		}
	}
	first, _, _ := strings.Cut(campaignName, " ")
	if full, ok := normalization[first]; ok && strings.Contains(campaignName, full) {
		return full
	}
	return first
}
