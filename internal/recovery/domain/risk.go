package domain

// RiskFactors are the six externally sourced trust sub-scores, each in
// [0,100] with higher meaning more trustworthy. The fraud/telemetry provider
// computes these; this service only consumes them.
type RiskFactors struct {
	IPReputation      float64 `json:"ip_reputation"`
	DeviceFingerprint float64 `json:"device_fingerprint"`
	Velocity          float64 `json:"velocity"`
	LocationAnomaly   float64 `json:"location_anomaly"`
	RequestPattern    float64 `json:"request_pattern"`
	TimePattern       float64 `json:"time_pattern"`
}

// RiskLevel classifies an assessment score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskAssessment is the outcome of one scoring pass. Score is in [0,100]
// with higher meaning riskier; Blocked is true exactly when Level is HIGH.
type RiskAssessment struct {
	Score      float64   `json:"score"`
	Level      RiskLevel `json:"level"`
	Confidence float64   `json:"confidence"` // [0,1]
	Blocked    bool      `json:"blocked"`

	// PendingQuestions is non-empty only while re-verification is required.
	PendingQuestions []Question `json:"pending_questions,omitempty"`
}

// QuestionKind is the answer shape an adaptive question expects.
type QuestionKind string

const (
	QuestionText   QuestionKind = "text"   // free text
	QuestionChoice QuestionKind = "choice" // pick one from Choices
	QuestionAck    QuestionKind = "ack"    // yes/no acknowledgment
	QuestionOTP    QuestionKind = "otp"    // authenticator one-time code
)

// Question is one adaptive challenge, generated deterministically from the
// factors that fell below their trust threshold.
type Question struct {
	ID       string       `json:"id"`
	Prompt   string       `json:"prompt"`
	Kind     QuestionKind `json:"kind"`
	Choices  []string     `json:"choices,omitempty"`
	Required bool         `json:"required"`
}
