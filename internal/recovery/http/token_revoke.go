package http

import (
	"net/http"

	"github.com/aussiebroadwan/regain/internal/recovery/service"
	"github.com/aussiebroadwan/regain/pkg/httpx"
	"github.com/aussiebroadwan/regain/pkg/recoversdk"
)

// RevokeHandler serves POST /v1/users/{id}/tokens/revoke. Revocation is
// idempotent: revoking a user with no outstanding tokens reports zero.
type RevokeHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Revoke User Recovery Tokens
//	@Description	Invalidates every outstanding recovery token for the user, effective immediately.
//	@Tags			Tokens
//	@Produce		json
//	@Param			id	path		string	true	"user id"
//	@Success		200	{object}	recoversdk.RevokeResponse
//	@Failure		400	{object}	recoversdk.APIError
//	@Router			/v1/users/{id}/tokens/revoke [post].
func (h *RevokeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID := r.PathValue("id")
	if userID == "" {
		errMalformedBody.WriteError(w)
		return
	}

	revoked, err := h.TokenService.RevokeAll(ctx, userID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, recoversdk.RevokeResponse{RevokedCount: revoked})
}
