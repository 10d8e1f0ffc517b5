package risk

import (
	"testing"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/stretchr/testify/require"
)

func questionIDs(qs []domain.Question) []string {
	ids := make([]string, len(qs))
	for i, q := range qs {
		ids[i] = q.ID
	}
	return ids
}

func TestGenerateQuestions(t *testing.T) {
	t.Parallel()

	t.Run("low ip reputation yields the location question", func(t *testing.T) {
		f := uniformFactors(80)
		f.IPReputation = 40

		qs := GenerateQuestions(f, "user@example.com")
		require.Equal(t, []string{QuestionLocation}, questionIDs(qs))
		require.Equal(t, domain.QuestionText, qs[0].Kind)
	})

	t.Run("each degraded factor contributes in fixed order", func(t *testing.T) {
		f := uniformFactors(30)

		qs := GenerateQuestions(f, "user@example.com")
		require.Equal(t, []string{
			QuestionLocation,
			QuestionDevice,
			QuestionVelocity,
			QuestionLastLogin,
			QuestionAccountCreated,
		}, questionIDs(qs))
	})

	t.Run("account creation question only for email identifiers", func(t *testing.T) {
		f := uniformFactors(80)
		f.RequestPattern = 30

		qs := GenerateQuestions(f, "+61400000000")
		require.NotContains(t, questionIDs(qs), QuestionAccountCreated)

		qs = GenerateQuestions(f, "user@example.com")
		require.Equal(t, []string{QuestionAccountCreated}, questionIDs(qs))
	})

	t.Run("no degraded factor yields exactly one affirmation", func(t *testing.T) {
		qs := GenerateQuestions(uniformFactors(80), "user@example.com")
		require.Len(t, qs, 1)
		require.Equal(t, QuestionAffirm, qs[0].ID)
		require.Equal(t, domain.QuestionAck, qs[0].Kind)
	})

	t.Run("reproducible for identical factors", func(t *testing.T) {
		f := uniformFactors(35)
		f.TimePattern = 90

		a := GenerateQuestions(f, "user@example.com")
		b := GenerateQuestions(f, "user@example.com")
		require.Equal(t, a, b)
	})

	t.Run("device question carries choices", func(t *testing.T) {
		f := uniformFactors(80)
		f.DeviceFingerprint = 20

		qs := GenerateQuestions(f, "user@example.com")
		require.Len(t, qs, 1)
		require.Equal(t, domain.QuestionChoice, qs[0].Kind)
		require.NotEmpty(t, qs[0].Choices)
	})
}

func TestEmailShaped(t *testing.T) {
	t.Parallel()

	require.True(t, emailShaped("user@example.com"))
	require.True(t, emailShaped("a@b.co"))
	require.False(t, emailShaped("+61400000000"))
	require.False(t, emailShaped("user@localhost"))
	require.False(t, emailShaped("@example.com"))
	require.False(t, emailShaped("user@"))
}

func TestReassess(t *testing.T) {
	t.Parallel()

	base := domain.RiskAssessment{Score: 40, Level: domain.RiskMedium, Confidence: 1.0}

	t.Run("affirmative ack lowers score", func(t *testing.T) {
		qs := []domain.Question{{ID: QuestionAffirm, Kind: domain.QuestionAck}}

		a := Reassess(base, qs, map[string]string{QuestionAffirm: "yes"})
		require.InDelta(t, 30.0, a.Score, 1e-9)
		require.Equal(t, domain.RiskMedium, a.Level)
		require.Equal(t, 1.0, a.Confidence)
	})

	t.Run("negative ack raises score", func(t *testing.T) {
		qs := []domain.Question{{ID: QuestionAffirm, Kind: domain.QuestionAck}}

		a := Reassess(base, qs, map[string]string{QuestionAffirm: "no"})
		require.InDelta(t, 60.0, a.Score, 1e-9)
		require.Equal(t, 0.5, a.Confidence)
	})

	t.Run("non-trivial text answer subtracts five", func(t *testing.T) {
		qs := []domain.Question{{ID: QuestionLocation, Kind: domain.QuestionText}}

		a := Reassess(base, qs, map[string]string{QuestionLocation: "Boston"})
		require.InDelta(t, 35.0, a.Score, 1e-9)
	})

	t.Run("trivial text answer does not move the score", func(t *testing.T) {
		qs := []domain.Question{{ID: QuestionLocation, Kind: domain.QuestionText}}

		a := Reassess(base, qs, map[string]string{QuestionLocation: " ab"})
		require.InDelta(t, 40.0, a.Score, 1e-9)
		require.Equal(t, 0.5, a.Confidence)
	})

	t.Run("valid device choice subtracts five", func(t *testing.T) {
		qs := []domain.Question{{ID: QuestionDevice, Kind: domain.QuestionChoice, Choices: deviceChoices}}

		a := Reassess(base, qs, map[string]string{QuestionDevice: "laptop"})
		require.InDelta(t, 35.0, a.Score, 1e-9)
	})

	t.Run("answers to unasked questions are ignored", func(t *testing.T) {
		qs := []domain.Question{{ID: QuestionAffirm, Kind: domain.QuestionAck}}

		a := Reassess(base, qs, map[string]string{
			QuestionAffirm:   "yes",
			QuestionLocation: "Boston",
			"q_forged":       "whatever",
		})
		// Only the recognized affirmation counts.
		require.InDelta(t, 30.0, a.Score, 1e-9)
		require.Equal(t, 1.0, a.Confidence)
	})

	t.Run("confidence floors at one half", func(t *testing.T) {
		qs := []domain.Question{
			{ID: QuestionLocation, Kind: domain.QuestionText},
			{ID: QuestionLastLogin, Kind: domain.QuestionText},
			{ID: QuestionAffirm, Kind: domain.QuestionAck},
		}
		a := Reassess(base, qs, map[string]string{
			QuestionLocation:  "x", // trivial
			QuestionLastLogin: "y", // trivial
			QuestionAffirm:    "yes",
		})
		// 1 correct of 3 answered would be 0.33; floored to 0.5.
		require.Equal(t, 0.5, a.Confidence)
	})

	t.Run("no recognized answers leaves score and floors confidence", func(t *testing.T) {
		qs := []domain.Question{{ID: QuestionAffirm, Kind: domain.QuestionAck}}

		a := Reassess(base, qs, map[string]string{"q_other": "yes"})
		require.InDelta(t, 40.0, a.Score, 1e-9)
		require.Equal(t, 0.5, a.Confidence)
	})

	t.Run("score clamps and reclassifies", func(t *testing.T) {
		high := domain.RiskAssessment{Score: 65, Level: domain.RiskMedium}
		qs := []domain.Question{{ID: QuestionAffirm, Kind: domain.QuestionAck}}

		a := Reassess(high, qs, map[string]string{QuestionAffirm: "no"})
		require.InDelta(t, 85.0, a.Score, 1e-9)
		require.Equal(t, domain.RiskHigh, a.Level)
		require.True(t, a.Blocked)
	})

	t.Run("pending questions always cleared", func(t *testing.T) {
		withPending := base
		withPending.PendingQuestions = []domain.Question{{ID: QuestionAffirm}}
		qs := []domain.Question{{ID: QuestionAffirm, Kind: domain.QuestionAck}}

		a := Reassess(withPending, qs, map[string]string{QuestionAffirm: "yes"})
		require.Empty(t, a.PendingQuestions)
	})
}
