package temporal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverPicksHighestEffectiveFromNotExceedingDate(t *testing.T) {
	r := NewResolver(DefaultRuleVersions())

	v, ok := r.Resolve(date(2022, 3, 15))
	require.True(t, ok)
	assert.Equal(t, "2021-07-01", v.Version)

	v, ok = r.Resolve(date(2024, 1, 1))
	require.True(t, ok)
	assert.Equal(t, "2023-01-01", v.Version)
}

func TestResolverFallsBackToEarliestBeforeAllVersions(t *testing.T) {
	r := NewResolver(DefaultRuleVersions())
	v, ok := r.Resolve(date(2015, 1, 1))
	require.True(t, ok)
	assert.Equal(t, "2020-01-01", v.Version)
}

func TestResolverNoVersionsConfigured(t *testing.T) {
	r := NewResolver(nil)
	_, ok := r.Resolve(date(2024, 1, 1))
	assert.False(t, ok)
}

func TestAdjustScoreAddsBonusWithinWindow(t *testing.T) {
	a := NewAdjuster(NewResolver(DefaultRuleVersions()), 365, 0.1)
	issued := date(2023, 6, 1)
	query := date(2023, 6, 2) // 1 day apart

	score := a.AdjustScore(0.5, &issued, query)
	assert.Greater(t, score, 0.5)
	assert.Less(t, score, 0.61)
}

func TestAdjustScoreNoBonusOutsideWindow(t *testing.T) {
	a := NewAdjuster(NewResolver(DefaultRuleVersions()), 365, 0.1)
	issued := date(2010, 1, 1)
	query := date(2023, 1, 1)

	score := a.AdjustScore(0.5, &issued, query)
	assert.Equal(t, 0.5, score)
}

func TestAdjustScoreNilDateIssuedPassesThrough(t *testing.T) {
	a := NewAdjuster(NewResolver(DefaultRuleVersions()), 365, 0.1)
	score := a.AdjustScore(0.5, nil, time.Now())
	assert.Equal(t, 0.5, score)
}

func TestBuildContextResolvesRuleVersionAndYearsAgo(t *testing.T) {
	a := NewAdjuster(NewResolver(DefaultRuleVersions()), 365, 0.1)
	issued := date(2021, 1, 1)
	now := date(2023, 1, 1)

	ctx, ok := a.BuildContext(&issued, now)
	require.True(t, ok)
	assert.Equal(t, "2020-01-01", ctx.RuleVersion)
	assert.InDelta(t, 2.0, ctx.YearsAgo, 0.02)
}
