package http

import (
	"net/http"

	"github.com/aussiebroadwan/regain/internal/recovery/service"
	"github.com/aussiebroadwan/regain/pkg/httpx"
	"github.com/aussiebroadwan/regain/pkg/recoversdk"
)

// ValidateHandler serves POST /v1/tokens/validate. Validation never consumes
// the token and never distinguishes why an invalid token is invalid.
type ValidateHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Validate Recovery Token
//	@Description	Reports whether a token would currently be accepted, without consuming it.
//	@Tags			Tokens
//	@Accept			json
//	@Produce		json
//	@Param			request	body		recoversdk.ValidateRequest	true	"the token to check"
//	@Success		200		{object}	recoversdk.ValidateResponse
//	@Failure		400		{object}	recoversdk.APIError
//	@Router			/v1/tokens/validate [post].
func (h *ValidateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req recoversdk.ValidateRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		errMalformedBody.WriteError(w)
		return
	}

	valid, userID, err := h.TokenService.Validate(ctx, req.Token)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, recoversdk.ValidateResponse{
		Valid:  valid,
		UserID: userID,
	})
}
