package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func limitOf(v int64) *int64 {
	return &v
}

func TestClassify(t *testing.T) {
	limit := limitOf(100)

	t.Run("returns normal below warning threshold", func(t *testing.T) {
		assert.Equal(t, BandNormal, Classify(0, limit))
		assert.Equal(t, BandNormal, Classify(79, limit))
	})

	t.Run("returns warning at inclusive lower bound", func(t *testing.T) {
		assert.Equal(t, BandWarning, Classify(80, limit))
		assert.Equal(t, BandWarning, Classify(94, limit))
	})

	t.Run("returns critical at inclusive lower bound", func(t *testing.T) {
		assert.Equal(t, BandCritical, Classify(95, limit))
		assert.Equal(t, BandCritical, Classify(96, limit))
		assert.Equal(t, BandCritical, Classify(99, limit))
	})

	t.Run("returns exceeded at and past the limit", func(t *testing.T) {
		assert.Equal(t, BandExceeded, Classify(100, limit))
		assert.Equal(t, BandExceeded, Classify(250, limit))
	})

	t.Run("unlimited plans never warn", func(t *testing.T) {
		for _, used := range []int64{0, 1, 1000, 1 << 40} {
			assert.Equal(t, BandNormal, Classify(used, nil))
		}
	})

	t.Run("zero limit is treated as unlimited", func(t *testing.T) {
		assert.Equal(t, BandNormal, Classify(500, limitOf(0)))
	})

	t.Run("severity is non-decreasing in usage", func(t *testing.T) {
		previous := BandNormal
		for used := int64(0); used <= 120; used++ {
			band := Classify(used, limit)
			assert.True(t, band.AtLeast(previous),
				"band regressed from %s to %s at used=%d", previous, band, used)
			previous = band
		}
	})
}

func TestThresholds_Classify(t *testing.T) {
	t.Run("custom thresholds move band boundaries", func(t *testing.T) {
		tight := Thresholds{WarningPercent: 50, CriticalPercent: 75, ExceededPercent: 100}
		limit := limitOf(200)

		assert.Equal(t, BandNormal, tight.Classify(99, limit))
		assert.Equal(t, BandWarning, tight.Classify(100, limit))
		assert.Equal(t, BandCritical, tight.Classify(150, limit))
		assert.Equal(t, BandExceeded, tight.Classify(200, limit))
	})

	t.Run("defaults are 80-95-100", func(t *testing.T) {
		defaults := DefaultThresholds()

		assert.Equal(t, float64(80), defaults.WarningPercent)
		assert.Equal(t, float64(95), defaults.CriticalPercent)
		assert.Equal(t, float64(100), defaults.ExceededPercent)
	})
}
