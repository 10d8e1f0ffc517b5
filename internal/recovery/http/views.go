package http

import (
	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/aussiebroadwan/regain/pkg/recoversdk"
)

// sessionView projects a session onto its wire shape. Internal fields
// (user id, token id, raw score) never leave the service.
func sessionView(s domain.Session) recoversdk.SessionResponse {
	view := recoversdk.SessionResponse{
		SessionID: s.ID,
		State:     string(s.State),
		ExpiresAt: s.ExpiresAt,
	}

	if s.Risk != nil {
		view.RiskLevel = string(s.Risk.Level)
		view.Confidence = s.Risk.Confidence
		view.Blocked = s.Risk.Blocked
		view.Questions = questionViews(s.Risk.PendingQuestions)
	}
	return view
}

func questionViews(questions []domain.Question) []recoversdk.Question {
	if len(questions) == 0 {
		return nil
	}
	views := make([]recoversdk.Question, 0, len(questions))
	for _, q := range questions {
		views = append(views, recoversdk.Question{
			ID:       q.ID,
			Prompt:   q.Prompt,
			Kind:     string(q.Kind),
			Choices:  q.Choices,
			Required: q.Required,
		})
	}
	return views
}

func domainFactors(f recoversdk.RiskFactors) domain.RiskFactors {
	return domain.RiskFactors{
		IPReputation:      f.IPReputation,
		DeviceFingerprint: f.DeviceFingerprint,
		Velocity:          f.Velocity,
		LocationAnomaly:   f.LocationAnomaly,
		RequestPattern:    f.RequestPattern,
		TimePattern:       f.TimePattern,
	}
}
