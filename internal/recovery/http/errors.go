package http

import (
	"errors"
	"net/http"

	"github.com/aussiebroadwan/regain/internal/recovery/service"
	"github.com/aussiebroadwan/regain/pkg/recoversdk"
	"github.com/aussiebroadwan/regain/pkg/slogx"
)

// Shared error envelopes. Token failures deliberately collapse into one
// message so the endpoint cannot be used as an oracle for which tokens
// exist, expired or were already spent; the precise reason is logged.
var (
	errMalformedBody = recoversdk.NewAPIError(http.StatusBadRequest,
		recoversdk.ErrorCodeInvalidRequest, "Malformed request body.")

	errInvalidToken = recoversdk.NewAPIError(http.StatusBadRequest,
		recoversdk.ErrorCodeInvalidToken, "Invalid or expired token.")

	errServer = recoversdk.NewAPIError(http.StatusInternalServerError,
		recoversdk.ErrorCodeServerError, "Internal server error.")
)

// writeServiceError maps service sentinels to wire envelopes.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidIdentifier):
		recoversdk.NewAPIError(http.StatusBadRequest,
			recoversdk.ErrorCodeInvalidIdentifier, "A valid identifier is required.").WriteError(w)

	case errors.Is(err, service.ErrSessionNotFound):
		recoversdk.NewAPIError(http.StatusNotFound,
			recoversdk.ErrorCodeSessionNotFound, "No such recovery session.").WriteError(w)

	case errors.Is(err, service.ErrSessionExpired):
		recoversdk.NewAPIError(http.StatusGone,
			recoversdk.ErrorCodeSessionExpired, "The recovery session has expired.").WriteError(w)

	case errors.Is(err, service.ErrSessionBlocked):
		recoversdk.NewAPIError(http.StatusForbidden,
			recoversdk.ErrorCodeSessionBlocked, "The recovery session is blocked.").WriteError(w)

	case errors.Is(err, service.ErrInvalidState):
		recoversdk.NewAPIError(http.StatusConflict,
			recoversdk.ErrorCodeInvalidState, "The session state does not permit this operation.").WriteError(w)

	case errors.Is(err, service.ErrTokenNotFound),
		errors.Is(err, service.ErrTokenExpired),
		errors.Is(err, service.ErrTokenUsed):
		slogx.FromContext(r.Context()).Info("token rejected", "reason", err)
		errInvalidToken.WriteError(w)

	case errors.Is(err, service.ErrNotEnrolled):
		recoversdk.NewAPIError(http.StatusNotFound,
			recoversdk.ErrorCodeNotEnrolled, "The identifier has no authenticator enrolled.").WriteError(w)

	default:
		slogx.FromContext(r.Context()).Error("request failed", "err", err)
		errServer.WriteError(w)
	}
}
