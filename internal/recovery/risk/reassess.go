package risk

import (
	"strings"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
)

// Answer score deltas. Adjustments are deliberately small relative to the
// factor-derived score so answers nudge a borderline attempt across a
// boundary but cannot whitewash a genuinely risky one.
const (
	deltaAffirmYes  = -10.0
	deltaAffirmNo   = +20.0
	deltaTextAnswer = -5.0
	deltaChoicePick = -5.0
)

// minConfidence is the floor for re-verified assessments.
const minConfidence = 0.5

// Reassess applies the answers to the original assessment and produces a
// revised one. Only answers matching an asked question id affect the score;
// stale or unasked ids are ignored. OTP questions are excluded — validating a
// one-time code needs the enrollment store, which is the session manager's
// business.
//
// The revised assessment always clears pending questions and recomputes the
// blocked flag from the new level.
func Reassess(original domain.RiskAssessment, questions []domain.Question, answers map[string]string) domain.RiskAssessment {
	byID := make(map[string]domain.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	score := original.Score
	var answered, correct int

	for id, answer := range answers {
		q, asked := byID[id]
		if !asked || q.Kind == domain.QuestionOTP {
			continue
		}
		answered++

		switch q.Kind {
		case domain.QuestionAck:
			if affirmative(answer) {
				score += deltaAffirmYes
				correct++
			} else {
				score += deltaAffirmNo
			}

		case domain.QuestionText:
			if len(strings.TrimSpace(answer)) > 2 {
				score += deltaTextAnswer
				correct++
			}

		case domain.QuestionChoice:
			if validChoice(q, answer) {
				score += deltaChoicePick
				correct++
			}
		}
	}

	score = clampScore(score)
	level := Classify(score)

	confidence := minConfidence
	if answered > 0 {
		confidence = max(float64(correct)/float64(answered), minConfidence)
	}

	return domain.RiskAssessment{
		Score:      score,
		Level:      level,
		Confidence: confidence,
		Blocked:    level == domain.RiskHigh,
	}
}

func affirmative(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "yes", "y", "true", "1":
		return true
	}
	return false
}

func validChoice(q domain.Question, answer string) bool {
	answer = strings.ToLower(strings.TrimSpace(answer))
	for _, choice := range q.Choices {
		if answer == choice {
			return true
		}
	}
	return false
}
