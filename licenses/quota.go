package licenses

import "math"

// Tier is a subscription level. It lives on the owner's profile and is only
// ever written by the billing flow.
type Tier string

// The five subscription tiers.
const (
	TierBasic        Tier = "basic"
	TierStandard     Tier = "standard"
	TierProfessional Tier = "professional"
	TierAdvanced     Tier = "advanced"
	TierPremium      Tier = "premium"
)

// Unlimited is the quota sentinel for the premium tier. A plain max int keeps
// comparisons and arithmetic on limits defined.
const Unlimited = math.MaxInt

var tierLimits = map[Tier]int{
	TierBasic:        2,
	TierStandard:     8,
	TierProfessional: 12,
	TierAdvanced:     30,
	TierPremium:      Unlimited,
}

// ParseTier validates a tier name from a request payload. Unlike LimitFor it
// does not fall back; callers that accept client input need the rejection.
func ParseTier(s string) (Tier, error) {
	t := Tier(s)
	if _, ok := tierLimits[t]; !ok {
		return "", ErrUnknownTier
	}
	return t, nil
}

// LimitFor returns the per-category record cap for a tier. An unknown or
// empty tier falls back to the basic cap; registered users without a plan
// still need a deterministic answer.
func LimitFor(t Tier) int {
	if limit, ok := tierLimits[t]; ok {
		return limit
	}
	return tierLimits[TierBasic]
}
