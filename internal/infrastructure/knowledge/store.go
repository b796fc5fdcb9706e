// Package knowledge holds the static Kust Bots product catalog backing the
// get_info tool.
package knowledge

import "strings"

// Product describes one entry in the catalog.
type Product struct {
	Name     string            `json:"name"`
	BotLink  string            `json:"bot_link,omitempty"`
	Summary  string            `json:"summary"`
	Pricing  string            `json:"pricing,omitempty"`
	Notes    string            `json:"notes,omitempty"`
	Features []string          `json:"features,omitempty"`
	Commands map[string]string `json:"commands,omitempty"`
	Plans    map[string]string `json:"plans,omitempty"`
}

// Compliance lists official channels and support rules.
type Compliance struct {
	Official []string `json:"official"`
	Rules    []string `json:"rules"`
}

// Store is the in-memory knowledge base.
type Store struct {
	products   map[string]Product
	compliance Compliance
}

// NewStore seeds the catalog.
func NewStore() *Store {
	return &Store{
		products: map[string]Product{
			"stake_chat_farmer": {
				Name:    "Stake Chat Farmer",
				BotLink: "@kustchatbot",
				Summary: "Autonomous chat generator. Simulates human patterns (mood, context) to farm XP/levels.",
				Pricing: "Free 3-hour trial.",
				Notes:   "Not a spam bot; supports all country servers. Multi-account support.",
			},
			"stake_code_claimer": {
				Name:     "Stake Code Claimer",
				Summary:  "Monitors channels and auto-claims codes instantly 24/7.",
				Features: []string{"Instant detection", "Multi-account redeem", "24/7 uptime"},
			},
			"frozen_music": {
				Name:    "Frozen Music Bot",
				Summary: "High-performance distributed VC music bot.",
				Commands: map[string]string{
					"/play":     "Play audio",
					"/vplay":    "Play video+audio",
					"/playlist": "Manage list",
					"/couple":   "Daily match",
				},
				Plans: map[string]string{
					"Tier 1": "$4/mo (5 VCs)",
					"Tier 2": "$8/mo (15 VCs)",
					"Tier 3": "$20/mo (50 VCs)",
				},
			},
			"kustify": {
				Name:    "Kustify Hosting",
				BotLink: "@kustifybot",
				Summary: "Bot hosting platform. Deploy via Telegram.",
				Plans: map[string]string{
					"Ember":   "$1.44/mo (0.25 CPU/512MB)",
					"Flare":   "$2.16/mo (0.5 CPU/1GB)",
					"Inferno": "$3.60/mo (1 CPU/2GB)",
				},
			},
			"custom_bots": {
				Name:    "Custom Development",
				Summary: "Bespoke bots. Commands start at $2-$5. White-label music bots available.",
			},
		},
		compliance: Compliance{
			Official: []string{"@kustbots", "@kustbotschat", "@KustDev"},
			Rules: []string{
				"NO gambling promos/bonuses.",
				"NO sales pushing.",
				"Verify official channels.",
				"Direct billing questions to Sparks/Payments.",
			},
		},
	}
}

// Lookup routes a free-text query to a catalog record by keyword. Unmatched
// queries get the list of available product keys as a hint.
func (s *Store) Lookup(query string) any {
	q := strings.ToLower(query)

	switch {
	case containsAny(q, "farm", "chat"):
		return s.products["stake_chat_farmer"]
	case containsAny(q, "code", "claim"):
		return s.products["stake_code_claimer"]
	case containsAny(q, "music", "play", "frozen"):
		return s.products["frozen_music"]
	case containsAny(q, "host", "kustify", "plan"):
		return s.products["kustify"]
	case containsAny(q, "custom"):
		return s.products["custom_bots"]
	case containsAny(q, "rule", "fake", "official"):
		return s.compliance
	}

	keys := make([]string, 0, len(s.products))
	for key := range s.products {
		keys = append(keys, key)
	}
	return map[string]any{
		"available": keys,
		"note":      "Please specify the product name.",
	}
}

func containsAny(q string, keywords ...string) bool {
	for _, kw := range keywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
