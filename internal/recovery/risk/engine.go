// Package risk implements deterministic risk scoring for recovery attempts.
//
// Six externally sourced trust factors are folded into a single score in
// [0,100] (higher = riskier) by a fixed weighted formula, classified into
// LOW/MEDIUM/HIGH bands, and — for borderline attempts — translated into
// adaptive re-verification questions. Everything in this package is pure:
// identical inputs always produce identical outputs.
package risk

import "github.com/aussiebroadwan/regain/internal/recovery/domain"

// Factor weights. They sum to 1.0; IP reputation carries the most signal.
const (
	weightIPReputation      = 0.25
	weightDeviceFingerprint = 0.20
	weightVelocity          = 0.20
	weightLocationAnomaly   = 0.15
	weightRequestPattern    = 0.10
	weightTimePattern       = 0.10
)

// Classification boundaries. Lower bound inclusive, upper bound exclusive:
// score < 30 is LOW, 30 <= score < 70 is MEDIUM, score >= 70 is HIGH.
const (
	mediumThreshold = 30.0
	highThreshold   = 70.0

	// borderlineLow triggers questions even for LOW scores above it.
	borderlineLow = 20.0
)

// Score folds the factors into a risk score in [0,100]. Each factor measures
// trust, so its contribution is the weighted distance from full trust.
func Score(f domain.RiskFactors) float64 {
	score := (100-clampFactor(f.IPReputation))*weightIPReputation +
		(100-clampFactor(f.DeviceFingerprint))*weightDeviceFingerprint +
		(100-clampFactor(f.Velocity))*weightVelocity +
		(100-clampFactor(f.LocationAnomaly))*weightLocationAnomaly +
		(100-clampFactor(f.RequestPattern))*weightRequestPattern +
		(100-clampFactor(f.TimePattern))*weightTimePattern
	return clampScore(score)
}

// Classify maps a score to its risk band.
func Classify(score float64) domain.RiskLevel {
	switch {
	case score < mediumThreshold:
		return domain.RiskLow
	case score < highThreshold:
		return domain.RiskMedium
	default:
		return domain.RiskHigh
	}
}

// NeedsQuestions reports whether re-verification is required: always for
// MEDIUM, and for LOW scores close enough to the MEDIUM boundary.
func NeedsQuestions(level domain.RiskLevel, score float64) bool {
	if level == domain.RiskMedium {
		return true
	}
	return level == domain.RiskLow && score > borderlineLow
}

// Assess runs a full initial scoring pass. The assessment starts at full
// confidence; reassessment after answers lowers it based on answer quality.
func Assess(f domain.RiskFactors) domain.RiskAssessment {
	score := Score(f)
	level := Classify(score)
	return domain.RiskAssessment{
		Score:      score,
		Level:      level,
		Confidence: 1.0,
		Blocked:    level == domain.RiskHigh,
	}
}

// Adjust applies a bounded score delta to an assessment, re-classifying and
// recomputing the blocked flag. Pending questions are cleared: an adjustment
// is always the outcome of a completed re-verification step.
func Adjust(a domain.RiskAssessment, delta float64) domain.RiskAssessment {
	score := clampScore(a.Score + delta)
	level := Classify(score)
	return domain.RiskAssessment{
		Score:      score,
		Level:      level,
		Confidence: a.Confidence,
		Blocked:    level == domain.RiskHigh,
	}
}

func clampFactor(v float64) float64 {
	return min(max(v, 0), 100)
}

func clampScore(v float64) float64 {
	return min(max(v, 0), 100)
}
