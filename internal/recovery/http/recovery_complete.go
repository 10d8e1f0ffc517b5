package http

import (
	"net/http"

	"github.com/aussiebroadwan/regain/internal/recovery/service"
	"github.com/aussiebroadwan/regain/pkg/httpx"
	"github.com/aussiebroadwan/regain/pkg/recoversdk"
)

// CompleteHandler serves POST /v1/recovery/complete. Token consumption and
// session completion commit atomically; the response includes a signed grant
// the password-reset collaborator can verify.
type CompleteHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Complete Account Recovery
//	@Description	Consumes a single-use recovery token and finishes its session.
//	@Description	All token failures return the same response so the endpoint cannot
//	@Description	be used to probe which tokens exist.
//	@Tags			Recovery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		recoversdk.CompleteRequest	true	"the recovery token"
//	@Success		200		{object}	recoversdk.CompleteResponse
//	@Failure		400		{object}	recoversdk.APIError	"invalid or expired token"
//	@Failure		404		{object}	recoversdk.APIError	"no verified session for the token"
//	@Router			/v1/recovery/complete [post].
func (h *CompleteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req recoversdk.CompleteRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		errMalformedBody.WriteError(w)
		return
	}
	if req.Token == "" {
		errInvalidToken.WriteError(w)
		return
	}

	confirmation, err := h.SessionService.Complete(ctx, req.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, recoversdk.CompleteResponse{
		ConfirmationID: confirmation.ConfirmationID,
		UserID:         confirmation.UserID,
		CompletedAt:    confirmation.CompletedAt,
		Grant:          confirmation.Grant,
	})
}
