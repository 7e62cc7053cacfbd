package licenses

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLimitFor(t *testing.T) {
	assert.Equal(t, 2, LimitFor(TierBasic))
	assert.Equal(t, 8, LimitFor(TierStandard))
	assert.Equal(t, 12, LimitFor(TierProfessional))
	assert.Equal(t, 30, LimitFor(TierAdvanced))
	assert.Equal(t, Unlimited, LimitFor(TierPremium))
}

func TestLimitForUnknownTierFallsBackToBasic(t *testing.T) {
	assert.Equal(t, 2, LimitFor(Tier("")))
	assert.Equal(t, 2, LimitFor(Tier("gold")))
}

func TestParseTier(t *testing.T) {
	tier, err := ParseTier("standard")
	assert.NoError(t, err)
	assert.Equal(t, TierStandard, tier)

	_, err = ParseTier("gold")
	assert.ErrorIs(t, err, ErrUnknownTier)

	_, err = ParseTier("")
	assert.ErrorIs(t, err, ErrUnknownTier)
}
