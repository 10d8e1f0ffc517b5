package risk

import (
	"strings"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
)

// factorThreshold is the per-factor trust level below which a factor
// contributes a question.
const factorThreshold = 50.0

// Stable question ids. Answers are matched against these; answers to ids the
// session was never asked are ignored.
const (
	QuestionLocation       = "q_location"
	QuestionDevice         = "q_device"
	QuestionVelocity       = "q_velocity"
	QuestionLastLogin      = "q_last_login"
	QuestionAccountCreated = "q_account_created"
	QuestionAffirm         = "q_affirm"
	QuestionOTPCode        = "q_otp_code"
)

var deviceChoices = []string{"desktop", "laptop", "phone", "tablet", "other"}

var velocityChoices = []string{
	"no recent attempts",
	"one attempt in the last hour",
	"several attempts today",
}

// GenerateQuestions builds the adaptive question list for the given factors.
// Question set and order are fully determined by the inputs. If no factor
// falls below its threshold, a single generic affirmation is emitted so the
// caller always has at least one challenge to present.
func GenerateQuestions(f domain.RiskFactors, identifier string) []domain.Question {
	var questions []domain.Question

	if f.IPReputation < factorThreshold {
		questions = append(questions, domain.Question{
			ID:       QuestionLocation,
			Prompt:   "What city are you connecting from right now?",
			Kind:     domain.QuestionText,
			Required: true,
		})
	}

	if f.DeviceFingerprint < factorThreshold {
		questions = append(questions, domain.Question{
			ID:       QuestionDevice,
			Prompt:   "What kind of device do you normally sign in with?",
			Kind:     domain.QuestionChoice,
			Choices:  deviceChoices,
			Required: true,
		})
	}

	if f.Velocity < factorThreshold {
		questions = append(questions, domain.Question{
			ID:       QuestionVelocity,
			Prompt:   "How many recovery attempts have you made recently?",
			Kind:     domain.QuestionChoice,
			Choices:  velocityChoices,
			Required: true,
		})
	}

	if f.LocationAnomaly < factorThreshold {
		questions = append(questions, domain.Question{
			ID:       QuestionLastLogin,
			Prompt:   "Roughly when did you last sign in successfully?",
			Kind:     domain.QuestionText,
			Required: true,
		})
	}

	if f.RequestPattern < factorThreshold && emailShaped(identifier) {
		questions = append(questions, domain.Question{
			ID:       QuestionAccountCreated,
			Prompt:   "Roughly when did you create this account?",
			Kind:     domain.QuestionText,
			Required: false,
		})
	}

	if len(questions) == 0 {
		questions = append(questions, domain.Question{
			ID:       QuestionAffirm,
			Prompt:   "Do you confirm you are the owner of this account?",
			Kind:     domain.QuestionAck,
			Required: true,
		})
	}

	return questions
}

// OTPQuestion is the authenticator step-up challenge appended by the session
// manager when the identifier has an enrolled TOTP secret.
func OTPQuestion() domain.Question {
	return domain.Question{
		ID:       QuestionOTPCode,
		Prompt:   "Enter the 6-digit code from your authenticator app.",
		Kind:     domain.QuestionOTP,
		Required: false,
	}
}

// emailShaped reports whether the identifier looks like an email address as
// opposed to a phone number.
func emailShaped(identifier string) bool {
	at := strings.Index(identifier, "@")
	if at <= 0 || at == len(identifier)-1 {
		return false
	}
	return strings.Contains(identifier[at+1:], ".")
}
