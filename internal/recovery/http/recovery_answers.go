package http

import (
	"net/http"

	"github.com/aussiebroadwan/regain/internal/recovery/service"
	"github.com/aussiebroadwan/regain/pkg/httpx"
	"github.com/aussiebroadwan/regain/pkg/recoversdk"
)

// AnswersHandler serves POST /v1/recovery/{id}/answers. One round of answers
// is applied atomically; answers to questions the session was never asked
// are ignored.
type AnswersHandler struct {
	SessionService *service.SessionService
}

// ServeHTTP godoc
//
//	@Summary		Submit Re-verification Answers
//	@Description	Applies the claimant's answers to a session awaiting them and settles it:
//	@Description	the reassessed risk either blocks the session or verifies it.
//	@Tags			Recovery
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string						true	"session id"
//	@Param			request	body		recoversdk.AnswersRequest	true	"answers keyed by question id"
//	@Success		200		{object}	recoversdk.SessionResponse
//	@Failure		400		{object}	recoversdk.APIError
//	@Failure		403		{object}	recoversdk.APIError	"session blocked"
//	@Failure		404		{object}	recoversdk.APIError
//	@Failure		410		{object}	recoversdk.APIError	"session expired"
//	@Router			/v1/recovery/{id}/answers [post].
func (h *AnswersHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req recoversdk.AnswersRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		errMalformedBody.WriteError(w)
		return
	}

	session, err := h.SessionService.SubmitAnswers(ctx, r.PathValue("id"), req.Answers)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.NoCache(w)
	httpx.WriteJSON(w, http.StatusOK, sessionView(session))
}
