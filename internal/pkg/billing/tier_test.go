package billing

import (
	"testing"

	"github.com/Parlay-Kei/Parlay-Golf-Ventures/internal/pkg/entitlements"
)

func TestInferTierFromName(t *testing.T) {
	tests := []struct {
		name string
		want entitlements.Tier
	}{
		{name: "PGV Driven Plan", want: entitlements.TierDriven},
		{name: "PGV Breakthrough Plan", want: entitlements.TierBreakthrough},
		{name: "Aspiring Golfer Monthly", want: entitlements.TierAspiring},
		{name: "Community Newsletter", want: entitlements.TierFree},
		{name: "BREAKTHROUGH annual", want: entitlements.TierBreakthrough},
	}

	for _, tt := range tests {
		if got := InferTier(tt.name, nil); got != tt.want {
			t.Fatalf("InferTier(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestInferTierPrecedence(t *testing.T) {
	// A name mentioning several tiers resolves to the best one.
	if got := InferTier("Breakthrough Driven Bundle", nil); got != entitlements.TierDriven {
		t.Fatalf("expected bundle name to resolve to driven, got %q", got)
	}
	if got := InferTier("Aspiring + Breakthrough Upgrade", nil); got != entitlements.TierBreakthrough {
		t.Fatalf("expected upgrade name to resolve to breakthrough, got %q", got)
	}
}

func TestInferTierMetadataWins(t *testing.T) {
	meta := map[string]string{"tier": "aspiring"}
	if got := InferTier("PGV Driven Plan", meta); got != entitlements.TierAspiring {
		t.Fatalf("expected metadata tier to override name keywords, got %q", got)
	}

	// Unknown metadata values normalize to free rather than falling back to
	// the name heuristic.
	meta = map[string]string{"tier": "vip"}
	if got := InferTier("PGV Driven Plan", meta); got != entitlements.TierFree {
		t.Fatalf("expected unknown metadata tier to normalize to free, got %q", got)
	}
}

func TestNormalizeInterval(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "month", want: "month"},
		{in: "Year", want: "year"},
		{in: "week", want: "unknown"},
		{in: "", want: "unknown"},
	}

	for _, tt := range tests {
		if got := normalizeInterval(tt.in); got != tt.want {
			t.Fatalf("normalizeInterval(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestIsEntitlingStatus(t *testing.T) {
	for _, status := range []string{"active", "trialing", "past_due"} {
		if !isEntitlingStatus(status) {
			t.Fatalf("expected status %q to be entitling", status)
		}
	}
	for _, status := range []string{"canceled", "incomplete", "unpaid", "paused"} {
		if isEntitlingStatus(status) {
			t.Fatalf("expected status %q to be non-entitling", status)
		}
	}
}
