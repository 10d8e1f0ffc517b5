package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/aussiebroadwan/regain/internal/recovery/store"
	"github.com/aussiebroadwan/regain/pkg/slogx"
)

// EnrollmentService manages authenticator (TOTP) secrets per identifier.
// An enrolled identifier gets a one-time-code question appended to its
// re-verification round.
type EnrollmentService struct {
	Store store.Store
}

// Enroll stores or rotates the authenticator secret for an identifier.
func (s *EnrollmentService) Enroll(ctx context.Context, identifier, secret string) error {
	identifier = strings.TrimSpace(identifier)
	secret = strings.TrimSpace(secret)
	if identifier == "" || secret == "" {
		return ErrInvalidIdentifier
	}

	now := time.Now().UTC()
	err := s.Store.Enrollments().UpsertEnrollment(ctx, domain.Enrollment{
		Identifier: identifier,
		TOTPSecret: secret,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("authenticator enrolled",
		slog.String("identifier", slogx.Redact(identifier)),
	)
	return nil
}

// Unenroll removes the identifier's authenticator secret.
func (s *EnrollmentService) Unenroll(ctx context.Context, identifier string) error {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return ErrInvalidIdentifier
	}

	err := s.Store.Enrollments().DeleteEnrollment(ctx, identifier)
	if errors.Is(err, store.ErrNotFound) {
		return ErrNotEnrolled
	}
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("authenticator unenrolled",
		slog.String("identifier", slogx.Redact(identifier)),
	)
	return nil
}
