package asq3

import (
	"math"

	"github.com/noah-isme/asq3-api/internal/models"
)

// MaxDomainScore is six questions at ten points.
const MaxDomainScore = 60.0

// Classify places a domain total into its tier. A total equal to the cutoff
// is pantau and a total equal to the monitoring threshold is sesuai.
func Classify(total, cutoff, monitoring float64) models.DomainStatus {
	switch {
	case total < cutoff:
		return models.StatusPerluRujukan
	case total < monitoring:
		return models.StatusPantau
	default:
		return models.StatusSesuai
	}
}

// Aggregate returns the most severe status. An empty input is sesuai.
func Aggregate(statuses []models.DomainStatus) models.DomainStatus {
	overall := models.StatusSesuai
	for _, s := range statuses {
		if s.Severity() > overall.Severity() {
			overall = s
		}
	}
	return overall
}

// MonitoringScore is the midpoint between cutoff and max, rounded half up to
// two decimals. The arithmetic is done in hundredths so 22.77 yields 41.39.
func MonitoringScore(cutoff, max float64) float64 {
	sum := int64(math.Round(cutoff*100)) + int64(math.Round(max*100))
	half := sum / 2
	if sum%2 != 0 {
		half++
	}
	return float64(half) / 100
}
