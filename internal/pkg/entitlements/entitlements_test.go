package entitlements

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want Tier
	}{
		{in: "free", want: TierFree},
		{in: "aspiring", want: TierAspiring},
		{in: "breakthrough", want: TierBreakthrough},
		{in: "driven", want: TierDriven},
		{in: "DRIVEN", want: TierDriven},
		{in: "  breakthrough ", want: TierBreakthrough},
		{in: "platinum", want: TierFree},
		{in: "", want: TierFree},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestRankOrdering(t *testing.T) {
	if Rank(TierFree) >= Rank(TierAspiring) {
		t.Fatalf("expected aspiring to outrank free")
	}
	if Rank(TierAspiring) >= Rank(TierBreakthrough) {
		t.Fatalf("expected breakthrough to outrank aspiring")
	}
	if Rank(TierBreakthrough) >= Rank(TierDriven) {
		t.Fatalf("expected driven to outrank breakthrough")
	}
}

func TestCanAccess(t *testing.T) {
	if !CanAccess(TierDriven, TierFree) {
		t.Fatalf("expected driven member to access free content")
	}
	if CanAccess(TierFree, TierAspiring) {
		t.Fatalf("expected free member to be blocked from aspiring content")
	}
	if !CanAccess(TierBreakthrough, TierBreakthrough) {
		t.Fatalf("expected exact tier match to grant access")
	}
}
