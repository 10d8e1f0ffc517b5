// Package recoversdk holds the wire types of the recovery service plus a
// small typed client. The server's handlers and the client share these
// structs so the two can never drift apart.
package recoversdk

import (
	"time"
)

// StartRequest opens a recovery session. The trust factors come from the
// caller's fraud/telemetry provider; each is in [0,100] with higher meaning
// more trustworthy.
type StartRequest struct {
	Identifier string      `json:"identifier"`
	Factors    RiskFactors `json:"factors"`
}

type RiskFactors struct {
	IPReputation      float64 `json:"ip_reputation"`
	DeviceFingerprint float64 `json:"device_fingerprint"`
	Velocity          float64 `json:"velocity"`
	LocationAnomaly   float64 `json:"location_anomaly"`
	RequestPattern    float64 `json:"request_pattern"`
	TimePattern       float64 `json:"time_pattern"`
}

type StartResponse struct {
	SessionID string    `json:"session_id"`
	State     string    `json:"state"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Question is one adaptive challenge posed to the claimant.
type Question struct {
	ID       string   `json:"id"`
	Prompt   string   `json:"prompt"`
	Kind     string   `json:"kind"`
	Choices  []string `json:"choices,omitempty"`
	Required bool     `json:"required"`
}

// SessionResponse is the session view returned by GET and by answers
// submission. Questions is populated only while the session awaits answers.
type SessionResponse struct {
	SessionID  string     `json:"session_id"`
	State      string     `json:"state"`
	RiskLevel  string     `json:"risk_level"`
	Confidence float64    `json:"confidence"`
	Blocked    bool       `json:"blocked"`
	Questions  []Question `json:"questions,omitempty"`
	ExpiresAt  time.Time  `json:"expires_at"`
}

type AnswersRequest struct {
	// Answers maps question id to the claimant's answer.
	Answers map[string]string `json:"answers"`
}

type ValidateRequest struct {
	Token string `json:"token"`
}

type ValidateResponse struct {
	Valid  bool   `json:"valid"`
	UserID string `json:"user_id,omitempty"`
}

type CompleteRequest struct {
	Token string `json:"token"`
}

type CompleteResponse struct {
	ConfirmationID string    `json:"confirmation_id"`
	UserID         string    `json:"user_id"`
	CompletedAt    time.Time `json:"completed_at"`

	// Grant is an Ed25519-signed JWT asserting the completed recovery,
	// verifiable by the password-reset collaborator.
	Grant string `json:"grant,omitempty"`
}

type RevokeResponse struct {
	RevokedCount int64 `json:"revoked_count"`
}

type StatsResponse struct {
	TotalTokens int64 `json:"total_tokens"`
}

type EnrollRequest struct {
	Secret string `json:"secret"`
}

// HealthResponse is returned by the liveness and readiness probes.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
}
