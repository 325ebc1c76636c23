package entitlements

import "strings"

type Tier string

const (
	TierFree         Tier = "free"
	TierAspiring     Tier = "aspiring"
	TierBreakthrough Tier = "breakthrough"
	TierDriven       Tier = "driven"
)

// Normalize maps arbitrary input to a known tier, defaulting to free.
func Normalize(tier string) Tier {
	switch strings.ToLower(strings.TrimSpace(tier)) {
	case string(TierAspiring):
		return TierAspiring
	case string(TierBreakthrough):
		return TierBreakthrough
	case string(TierDriven):
		return TierDriven
	default:
		return TierFree
	}
}

// Rank orders tiers so a higher membership always outranks a lower one.
func Rank(tier Tier) int {
	switch Normalize(string(tier)) {
	case TierDriven:
		return 3
	case TierBreakthrough:
		return 2
	case TierAspiring:
		return 1
	default:
		return 0
	}
}

// CanAccess reports whether a member on `have` may open content gated at
// `need`.
func CanAccess(have, need Tier) bool {
	return Rank(have) >= Rank(need)
}

// MonthlySubmissionLimit returns how many community contributions a member
// may submit per rolling window. Paid tiers get more room before the rate
// limiter kicks in.
func MonthlySubmissionLimit(tier Tier) int {
	switch Normalize(string(tier)) {
	case TierDriven:
		return 30
	case TierBreakthrough:
		return 20
	case TierAspiring:
		return 10
	default:
		return 3
	}
}
