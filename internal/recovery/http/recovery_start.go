package http

import (
	"net/http"

	"github.com/aussiebroadwan/regain/internal/recovery/service"
	"github.com/aussiebroadwan/regain/pkg/httpx"
	"github.com/aussiebroadwan/regain/pkg/recoversdk"
)

// StartHandler serves POST /v1/recovery/start. It opens a session, scores
// the supplied trust factors and reports the resulting state. The response
// never carries a recovery token: tokens travel out of band.
type StartHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Start Account Recovery
//	@Description	Opens a recovery session for an identifier and scores the supplied trust factors.
//	@Description	Depending on the assessment the session is verified immediately, asked adaptive
//	@Description	re-verification questions, or blocked. Recovery tokens are never returned here.
//	@Tags			Recovery
//	@Accept			json
//	@Produce		json
//	@Param			request	body		recoversdk.StartRequest	true	"identifier and trust factors"
//	@Success		201		{object}	recoversdk.StartResponse
//	@Failure		400		{object}	recoversdk.APIError
//	@Failure		429		{object}	map[string]string	"rate limited"
//	@Router			/v1/recovery/start [post].
func (h *StartHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req recoversdk.StartRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		errMalformedBody.WriteError(w)
		return
	}

	session, err := h.SessionService.Start(ctx, req.Identifier, domainFactors(req.Factors))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusCreated, recoversdk.StartResponse{
		SessionID: session.ID,
		State:     string(session.State),
		ExpiresAt: session.ExpiresAt,
	})
}
