package asq3

import (
	"errors"
	"math"
	"sort"

	"github.com/noah-isme/asq3-api/internal/models"
)

var (
	// ErrAgeOutOfRange is returned when the age is younger than the first interval or older than the last.
	ErrAgeOutOfRange = errors.New("asq3: age outside supported screening range")
	// ErrNoIntervals is returned when no reference intervals are loaded.
	ErrNoIntervals = errors.New("asq3: no age intervals loaded")
)

// ResolveInterval picks the questionnaire interval for a child aged ageDays.
//
// An interval whose [min, max] day range contains the age wins. Ages between
// two ranges fall back to the interval whose nominal age in months is closest
// to ageDays/DaysPerMonth, with exact ties going to the younger interval.
// Ages outside the overall span are rejected with ErrAgeOutOfRange.
func ResolveInterval(intervals []models.AgeInterval, ageDays int) (models.AgeInterval, error) {
	if len(intervals) == 0 {
		return models.AgeInterval{}, ErrNoIntervals
	}

	ordered := make([]models.AgeInterval, len(intervals))
	copy(ordered, intervals)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].AgeMonths < ordered[j].AgeMonths })

	lowest, highest := ordered[0].MinAgeDays, ordered[0].MaxAgeDays
	for _, interval := range ordered {
		if interval.Contains(ageDays) {
			return interval, nil
		}
		if interval.MinAgeDays < lowest {
			lowest = interval.MinAgeDays
		}
		if interval.MaxAgeDays > highest {
			highest = interval.MaxAgeDays
		}
	}

	if ageDays < lowest || ageDays > highest {
		return models.AgeInterval{}, ErrAgeOutOfRange
	}

	ageMonths := float64(ageDays) / DaysPerMonth
	best := ordered[0]
	bestDistance := math.Abs(float64(best.AgeMonths) - ageMonths)
	for _, interval := range ordered[1:] {
		distance := math.Abs(float64(interval.AgeMonths) - ageMonths)
		if distance < bestDistance {
			best, bestDistance = interval, distance
		}
	}
	return best, nil
}
