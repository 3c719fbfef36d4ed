package asq3

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/asq3-api/internal/models"
)

func TestResolveIntervalBoundariesAreInclusive(t *testing.T) {
	intervals := standardIntervals()

	for _, band := range standardBands {
		for _, day := range []int{band[1], band[2]} {
			got, err := ResolveInterval(intervals, day)
			require.NoError(t, err, "day %d", day)
			assert.Equal(t, band[0], got.AgeMonths, "day %d", day)
		}
	}
}

func TestResolveIntervalTwelveMonths(t *testing.T) {
	intervals := standardIntervals()

	for _, day := range []int{350, 365, 380} {
		got, err := ResolveInterval(intervals, day)
		require.NoError(t, err)
		assert.Equal(t, 12, got.AgeMonths)
	}
}

func TestResolveIntervalOutOfRange(t *testing.T) {
	intervals := standardIntervals()

	for _, day := range []int{-1, 0, 45, 1839, 5000} {
		_, err := ResolveInterval(intervals, day)
		assert.ErrorIs(t, err, ErrAgeOutOfRange, "day %d", day)
	}

	_, err := ResolveInterval(nil, 100)
	assert.ErrorIs(t, err, ErrNoIntervals)
}

func TestResolveIntervalGapPicksNearest(t *testing.T) {
	intervals := standardIntervals()

	cases := []struct {
		day  int
		want int
	}{
		{day: 77, want: 2},    // 2.53 months
		{day: 100, want: 4},   // 3.29 months
		{day: 320, want: 10},  // 10.51 months
		{day: 335, want: 12},  // 11.01 months
		{day: 1200, want: 42}, // 39.43 months
		{day: 1111, want: 36}, // 36.50 months
	}
	for _, tc := range cases {
		got, err := ResolveInterval(intervals, tc.day)
		require.NoError(t, err, "day %d", tc.day)
		assert.Equal(t, tc.want, got.AgeMonths, "day %d", tc.day)
	}
}

func TestResolveIntervalGapTieGoesToYounger(t *testing.T) {
	// 16 months is exactly 487 days, equidistant from 0 and 32 months.
	intervals := []models.AgeInterval{
		{ID: "old", AgeMonths: 32, MinAgeDays: 900, MaxAgeDays: 1000},
		{ID: "young", AgeMonths: 0, MinAgeDays: 0, MaxAgeDays: 0},
	}

	got, err := ResolveInterval(intervals, 487)
	require.NoError(t, err)
	assert.Equal(t, "young", got.ID)

	got, err = ResolveInterval(intervals, 488)
	require.NoError(t, err)
	assert.Equal(t, "old", got.ID)
}
