package asq3

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeInDays(t *testing.T) {
	birthday := date(2025, time.January, 1)

	assert.Equal(t, 0, AgeInDays(birthday, birthday))
	assert.Equal(t, 365, AgeInDays(birthday, date(2026, time.January, 1)))
	assert.Equal(t, 366, AgeInDays(date(2024, time.January, 1), date(2025, time.January, 1)))

	// Time of day does not leak into the count.
	late := time.Date(2025, time.January, 1, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 1, AgeInDays(late, time.Date(2025, time.January, 2, 0, 1, 0, 0, time.UTC)))
}

func TestAgeInMonths(t *testing.T) {
	birthday := date(2025, time.January, 15)

	assert.Equal(t, 0, AgeInMonths(birthday, date(2025, time.February, 14)))
	assert.Equal(t, 1, AgeInMonths(birthday, date(2025, time.February, 15)))
	assert.Equal(t, 12, AgeInMonths(birthday, date(2026, time.January, 15)))
	assert.Equal(t, 11, AgeInMonths(birthday, date(2026, time.January, 14)))
}
