package asq3

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/asq3-api/internal/models"
)

func TestClassifyBoundaries(t *testing.T) {
	const cutoff, monitoring = 22.77, 41.39

	cases := []struct {
		total float64
		want  models.DomainStatus
	}{
		{total: 0, want: models.StatusPerluRujukan},
		{total: 22, want: models.StatusPerluRujukan},
		{total: 22.77, want: models.StatusPantau},
		{total: 30, want: models.StatusPantau},
		{total: 41.38, want: models.StatusPantau},
		{total: 41.39, want: models.StatusSesuai},
		{total: 50, want: models.StatusSesuai},
		{total: 60, want: models.StatusSesuai},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.total, cutoff, monitoring), "total %.2f", tc.total)
	}
}

func TestMonitoringScoreRoundsHalfUp(t *testing.T) {
	assert.Equal(t, 41.39, MonitoringScore(22.77, 60))
	assert.Equal(t, 50.92, MonitoringScore(41.84, 60))
	assert.Equal(t, 37.82, MonitoringScore(15.64, 60))
	assert.Equal(t, 36.14, MonitoringScore(12.28, 60))
	assert.Equal(t, 45.0, MonitoringScore(30, 60))
}

func TestAggregateTakesMostSevere(t *testing.T) {
	assert.Equal(t, models.StatusSesuai, Aggregate(nil))
	assert.Equal(t, models.StatusSesuai, Aggregate([]models.DomainStatus{models.StatusSesuai, models.StatusSesuai}))
	assert.Equal(t, models.StatusPantau, Aggregate([]models.DomainStatus{models.StatusSesuai, models.StatusPantau, models.StatusSesuai}))
	assert.Equal(t, models.StatusPerluRujukan, Aggregate([]models.DomainStatus{
		models.StatusPantau, models.StatusPerluRujukan, models.StatusSesuai, models.StatusPantau,
	}))
}
