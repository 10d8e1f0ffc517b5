package http

import (
	"net/http"

	"github.com/aussiebroadwan/regain/internal/recovery/service"
	"github.com/aussiebroadwan/regain/pkg/httpx"
)

// GetSessionHandler serves GET /v1/recovery/{id}.
type GetSessionHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Get Recovery Session
//	@Description	Returns the session state, risk level and any pending re-verification questions.
//	@Tags			Recovery
//	@Produce		json
//	@Param			id	path		string	true	"session id"
//	@Success		200	{object}	recoversdk.SessionResponse
//	@Failure		404	{object}	recoversdk.APIError
//	@Router			/v1/recovery/{id} [get].
func (h *GetSessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session, err := h.SessionService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, sessionView(session))
}
