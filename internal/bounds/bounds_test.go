package bounds_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"tablepart/internal/bounds"
)

func TestFallbackWindowSixMonthsEitherSideOfToday(t *testing.T) {
	p := bounds.NewProber(nil).WithClock(func() time.Time {
		return time.Date(2024, time.June, 15, 12, 30, 0, 0, time.UTC)
	})

	lo, hi := p.FallbackWindow()

	assert.Equal(t, time.Date(2023, time.December, 1, 0, 0, 0, 0, time.UTC), *lo.Time)
	assert.Equal(t, time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC), *hi.Time)
}
