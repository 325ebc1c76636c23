package billing

import (
	"strings"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/entitlements"
)

// tierKeywords is checked in order; the first keyword found in the product
// name wins. Ordered highest tier first so a bundle name mentioning several
// tiers ("Breakthrough Driven Bundle") resolves to the best one. This
// precedence is part of the contract and pinned by tests.
var tierKeywords = []struct {
	keyword string
	tier    entitlements.Tier
}{
	{keyword: "driven", tier: entitlements.TierDriven},
	{keyword: "breakthrough", tier: entitlements.TierBreakthrough},
	{keyword: "aspiring", tier: entitlements.TierAspiring},
}

// InferTier resolves the membership tier for a provider product. An explicit
// "tier" key in the product metadata is authoritative; the product-name
// keyword match is the fallback for products created before the metadata
// convention existed.
func InferTier(productName string, productMetadata map[string]string) entitlements.Tier {
	if meta := strings.TrimSpace(productMetadata["tier"]); meta != "" {
		return entitlements.Normalize(meta)
	}

	name := strings.ToLower(productName)
	for _, tk := range tierKeywords {
		if strings.Contains(name, tk.keyword) {
			return tk.tier
		}
	}
	return entitlements.TierFree
}

// isEntitlingStatus reports whether a subscription status grants membership
// benefits and should be mirrored onto the profile.
func isEntitlingStatus(status string) bool {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "active", "trialing", "past_due":
		return true
	default:
		return false
	}
}
