package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/aussiebroadwan/regain/internal/recovery/risk"
	"github.com/aussiebroadwan/regain/internal/recovery/store"
	"github.com/aussiebroadwan/regain/pkg/grantx"
	"github.com/aussiebroadwan/regain/pkg/idx"
	"github.com/aussiebroadwan/regain/pkg/slogx"
	"github.com/pquerna/otp/totp"
)

// DefaultSessionTTL bounds a whole recovery attempt, questions included.
const DefaultSessionTTL = 30 * time.Minute

// Authenticator step-up deltas. A valid one-time code is the strongest
// possible answer; a wrong one is treated as evidence of an attacker
// guessing.
const (
	totpValidDelta   = -25.0
	totpInvalidDelta = +10.0
)

// UserResolver maps a recovery identifier (email or phone) to the identity
// it belongs to. Production wires this to the identity system; the default
// derives a stable pseudonymous id from the identifier.
type UserResolver func(ctx context.Context, identifier string) (string, error)

// TokenDelivery hands a freshly minted plaintext token to the out-of-band
// delivery collaborator. Called at most once per session, after the mint has
// committed. The token is never exposed through the HTTP surface.
type TokenDelivery func(ctx context.Context, identifier, plaintext string)

// SessionService owns the recovery session lifecycle:
//
//	STARTED -> AWAITING_ANSWERS -> VERIFIED -> COMPLETED
//
// with BLOCKED and EXPIRED as terminal exits. Transitions for one session are
// serialized through a per-session mutex; cross-replica safety additionally
// rests on the store's conditional updates.
type SessionService struct {
	Store      store.Store
	Tokens     *TokenService
	Signer     *grantx.Signer
	Resolve    UserResolver
	Deliver    TokenDelivery
	SessionTTL time.Duration

	// locks maps session id -> *sync.Mutex, dropped once terminal.
	locks sync.Map
}

// Confirmation is the proof of a completed recovery, returned exactly once.
type Confirmation struct {
	ConfirmationID string
	UserID         string
	CompletedAt    time.Time

	// Grant is an Ed25519-signed JWT asserting the completion; empty when no
	// signer is configured.
	Grant string
}

func (s *SessionService) ttl() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return DefaultSessionTTL
}

// Start opens a new recovery session for the identifier, scores the supplied
// trust factors and advances the session as far as the assessment allows:
// straight to VERIFIED (token minted) for trusted attempts, AWAITING_ANSWERS
// for borderline ones, BLOCKED for high risk.
func (s *SessionService) Start(ctx context.Context, identifier string, factors domain.RiskFactors) (domain.Session, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return domain.Session{}, ErrInvalidIdentifier
	}

	userID, err := s.resolveUser(ctx, identifier)
	if err != nil {
		return domain.Session{}, err
	}

	now := time.Now().UTC()
	session := domain.Session{
		ID:         idx.New().String(),
		Identifier: identifier,
		UserID:     userID,
		State:      domain.StateStarted,
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl()),
		UpdatedAt:  now,
	}
	if err := s.Store.Sessions().CreateSession(ctx, session); err != nil {
		return domain.Session{}, err
	}

	assessment := risk.Assess(factors)
	l := slogx.FromContext(ctx).With(
		slog.String("session_id", session.ID),
		slog.String("identifier", slogx.Redact(identifier)),
	)

	switch {
	case assessment.Blocked:
		session.State = domain.StateBlocked
		session.Risk = &assessment
		l.Warn("recovery blocked at start", slog.Float64("score", assessment.Score))

	case risk.NeedsQuestions(assessment.Level, assessment.Score):
		assessment.PendingQuestions = s.questionsFor(ctx, factors, identifier)
		session.State = domain.StateAwaitingAnswers
		session.Risk = &assessment
		l.Info("recovery awaiting answers",
			slog.Float64("score", assessment.Score),
			slog.Int("questions", len(assessment.PendingQuestions)),
		)

	default:
		// Trusted enough to skip re-verification entirely.
		session.Risk = &assessment
		return s.verify(ctx, session, l)
	}

	session.UpdatedAt = time.Now().UTC()
	if err := s.Store.Sessions().UpdateSession(ctx, session, domain.StateStarted); err != nil {
		return domain.Session{}, err
	}
	return session, nil
}

// Get returns the session, lazily expiring it when past its TTL.
func (s *SessionService) Get(ctx context.Context, id string) (domain.Session, error) {
	session, err := s.load(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	return s.expireIfStale(ctx, session), nil
}

// SubmitAnswers applies the caller's answers to a session awaiting them and
// settles it: the reassessed risk either blocks the session or verifies it.
// Submission is single-shot; a session never returns to AWAITING_ANSWERS, so
// repeated probing is bounded by the answers route's rate limit rather than a
// per-session counter.
//
// A valid authenticator code (when the identifier is enrolled and the code
// question was posed) applies a strong score reduction before the regular
// reassessment; an invalid code raises the score instead.
func (s *SessionService) SubmitAnswers(ctx context.Context, id string, answers map[string]string) (domain.Session, error) {
	unlock := s.lockSession(id)
	defer unlock()

	session, err := s.load(ctx, id)
	if err != nil {
		return domain.Session{}, err
	}
	session = s.expireIfStale(ctx, session)

	switch session.State {
	case domain.StateAwaitingAnswers:
	case domain.StateExpired:
		return domain.Session{}, ErrSessionExpired
	case domain.StateBlocked:
		return domain.Session{}, ErrSessionBlocked
	default:
		return domain.Session{}, ErrInvalidState
	}

	l := slogx.FromContext(ctx).With(
		slog.String("session_id", session.ID),
		slog.String("identifier", slogx.Redact(session.Identifier)),
	)

	pending := session.Risk.PendingQuestions
	assessment := s.applyOTPAnswer(ctx, *session.Risk, session.Identifier, pending, answers, l)
	assessment = risk.Reassess(assessment, pending, answers)

	if assessment.Blocked {
		session.State = domain.StateBlocked
		session.Risk = &assessment
		session.UpdatedAt = time.Now().UTC()
		if err := s.Store.Sessions().UpdateSession(ctx, session, domain.StateAwaitingAnswers); err != nil {
			return domain.Session{}, mapSessionStoreErr(err)
		}
		s.dropLock(session.ID)
		l.Warn("recovery blocked on reassessment", slog.Float64("score", assessment.Score))
		return session, nil
	}

	session.Risk = &assessment
	return s.verify(ctx, session, l)
}

// Complete consumes the recovery token and finishes its owning session in a
// single transaction. Token consumption and the VERIFIED -> COMPLETED
// transition commit together or not at all.
func (s *SessionService) Complete(ctx context.Context, plaintext string) (Confirmation, error) {
	now := time.Now().UTC()
	confirmation := Confirmation{
		ConfirmationID: idx.New().String(),
		CompletedAt:    now,
	}

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		token, err := s.Tokens.lookupLive(ctx, tx, plaintext)
		if err != nil {
			return err
		}

		session, err := tx.Sessions().GetSessionByTokenID(ctx, token.ID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrSessionNotFound
			}
			return err
		}
		if session.ExpiredAt(now) {
			return ErrSessionExpired
		}
		if session.State != domain.StateVerified {
			return ErrInvalidState
		}

		if err := consumeToken(ctx, tx, token.ID); err != nil {
			return err
		}

		session.State = domain.StateCompleted
		session.UpdatedAt = now
		if err := tx.Sessions().UpdateSession(ctx, session, domain.StateVerified); err != nil {
			return mapSessionStoreErr(err)
		}

		confirmation.UserID = session.UserID
		s.dropLock(session.ID)
		return nil
	})
	if err != nil {
		return Confirmation{}, err
	}

	if s.Signer != nil {
		grant, err := s.Signer.Sign(confirmation.UserID, confirmation.ConfirmationID, now)
		if err != nil {
			return Confirmation{}, err
		}
		confirmation.Grant = grant
	}

	slogx.FromContext(ctx).Info("recovery completed",
		slog.String("confirmation_id", confirmation.ConfirmationID),
		slog.String("user_id", confirmation.UserID),
	)
	return confirmation, nil
}

// verify transitions the session to VERIFIED and mints its single token in
// one transaction. The session records the token id, so a replayed verify
// observes the mint already happened and never issues a second token.
func (s *SessionService) verify(ctx context.Context, session domain.Session, l *slog.Logger) (domain.Session, error) {
	if session.TokenID != "" {
		return session, nil
	}

	expectState := session.State
	var plaintext string

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		pt, token, err := s.Tokens.issue(ctx, tx, session.UserID)
		if err != nil {
			return err
		}
		plaintext = pt

		session.State = domain.StateVerified
		session.TokenID = token.ID
		session.UpdatedAt = time.Now().UTC()
		if err := tx.Sessions().UpdateSession(ctx, session, expectState); err != nil {
			return mapSessionStoreErr(err)
		}
		return nil
	})
	if err != nil {
		return domain.Session{}, err
	}

	l.Info("recovery verified", slog.String("token_id", session.TokenID))
	if s.Deliver != nil {
		s.Deliver(ctx, session.Identifier, plaintext)
	}
	return session, nil
}

// questionsFor generates the adaptive questions and appends the one-time
// code challenge when the identifier has an authenticator enrolled.
func (s *SessionService) questionsFor(ctx context.Context, factors domain.RiskFactors, identifier string) []domain.Question {
	questions := risk.GenerateQuestions(factors, identifier)
	if _, err := s.Store.Enrollments().GetEnrollment(ctx, identifier); err == nil {
		questions = append(questions, risk.OTPQuestion())
	}
	return questions
}

// applyOTPAnswer validates a submitted one-time code against the enrollment
// and applies its score delta. The pure engine skips OTP questions, so this
// is the only place the code is checked.
func (s *SessionService) applyOTPAnswer(
	ctx context.Context,
	assessment domain.RiskAssessment,
	identifier string,
	pending []domain.Question,
	answers map[string]string,
	l *slog.Logger,
) domain.RiskAssessment {
	var otpID string
	for _, q := range pending {
		if q.Kind == domain.QuestionOTP {
			otpID = q.ID
			break
		}
	}
	if otpID == "" {
		return assessment
	}
	code, ok := answers[otpID]
	if !ok {
		return assessment
	}

	enrollment, err := s.Store.Enrollments().GetEnrollment(ctx, identifier)
	if err != nil {
		l.Error("enrollment lookup failed during answer check", slog.Any("error", err))
		return assessment
	}

	if totp.Validate(strings.TrimSpace(code), enrollment.TOTPSecret) {
		l.Info("authenticator code accepted")
		return risk.Adjust(assessment, totpValidDelta)
	}
	l.Warn("authenticator code rejected")
	return risk.Adjust(assessment, totpInvalidDelta)
}

func (s *SessionService) resolveUser(ctx context.Context, identifier string) (string, error) {
	if s.Resolve != nil {
		return s.Resolve(ctx, identifier)
	}
	// Stable pseudonymous identity; good enough until the identity system is
	// wired in.
	return "u_" + slogx.Redact(identifier), nil
}

func (s *SessionService) load(ctx context.Context, id string) (domain.Session, error) {
	session, err := s.Store.Sessions().GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Session{}, ErrSessionNotFound
		}
		return domain.Session{}, err
	}
	return session, nil
}

// expireIfStale transitions a non-terminal session past its TTL to EXPIRED.
// The write is best-effort: a lost race means another replica expired it.
func (s *SessionService) expireIfStale(ctx context.Context, session domain.Session) domain.Session {
	if session.State.Terminal() || !session.ExpiredAt(time.Now()) {
		return session
	}

	expect := session.State
	session.State = domain.StateExpired
	session.UpdatedAt = time.Now().UTC()
	if err := s.Store.Sessions().UpdateSession(ctx, session, expect); err != nil &&
		!errors.Is(err, store.ErrConflict) && !errors.Is(err, store.ErrNotFound) {
		slogx.FromContext(ctx).Error("session expiry write failed",
			slog.String("session_id", session.ID),
			slog.Any("error", err),
		)
	}
	s.dropLock(session.ID)
	return session
}

func (s *SessionService) lockSession(id string) func() {
	mu, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	m := mu.(*sync.Mutex)
	m.Lock()
	return m.Unlock
}

func (s *SessionService) dropLock(id string) {
	s.locks.Delete(id)
}

// mapSessionStoreErr translates conditional-update failures: the session
// moved under us, which callers see as an invalid state for their operation.
func mapSessionStoreErr(err error) error {
	switch {
	case errors.Is(err, store.ErrConflict):
		return ErrInvalidState
	case errors.Is(err, store.ErrNotFound):
		return ErrSessionNotFound
	default:
		return err
	}
}
