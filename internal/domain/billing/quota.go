package billing

// Band represents the severity band of usage relative to a quota limit
type Band string

const (
	// BandNormal indicates usage is comfortably within the limit
	BandNormal Band = "NORMAL"

	// BandWarning indicates usage has crossed the warning threshold
	BandWarning Band = "WARNING"

	// BandCritical indicates usage is close to the limit
	BandCritical Band = "CRITICAL"

	// BandExceeded indicates usage has reached or passed the limit
	BandExceeded Band = "EXCEEDED"
)

// String returns the string representation of Band
func (b Band) String() string {
	return string(b)
}

// severity orders bands for monotonicity checks
func (b Band) severity() int {
	switch b {
	case BandWarning:
		return 1
	case BandCritical:
		return 2
	case BandExceeded:
		return 3
	default:
		return 0
	}
}

// AtLeast returns true if this band is at least as severe as other
func (b Band) AtLeast(other Band) bool {
	return b.severity() >= other.severity()
}

// Thresholds holds the inclusive lower-bound percentages for each
// band. They are configuration, not hard-coded constants, so plan
// tiers can tune them without touching the classifier.
type Thresholds struct {
	WarningPercent  float64
	CriticalPercent float64
	ExceededPercent float64
}

// DefaultThresholds returns the platform-default band boundaries
func DefaultThresholds() Thresholds {
	return Thresholds{
		WarningPercent:  80,
		CriticalPercent: 95,
		ExceededPercent: 100,
	}
}

// Classify maps (used, limit) to a threshold band. A nil limit means
// an unlimited plan, which never warns. The function is pure and
// total: a zero or negative limit is treated as unlimited so it can
// never divide by zero.
func (t Thresholds) Classify(used int64, limit *int64) Band {
	if limit == nil || *limit <= 0 {
		return BandNormal
	}

	percent := float64(used) / float64(*limit) * 100

	switch {
	case percent >= t.ExceededPercent:
		return BandExceeded
	case percent >= t.CriticalPercent:
		return BandCritical
	case percent >= t.WarningPercent:
		return BandWarning
	default:
		return BandNormal
	}
}

// Classify applies the default thresholds
func Classify(used int64, limit *int64) Band {
	return DefaultThresholds().Classify(used, limit)
}
