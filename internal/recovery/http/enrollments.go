package http

import (
	"net/http"

	"github.com/aussiebroadwan/regain/internal/recovery/service"
	"github.com/aussiebroadwan/regain/pkg/httpx"
	"github.com/aussiebroadwan/regain/pkg/recoversdk"
)

// EnrollmentHandler serves the authenticator enrollment endpoints. An
// enrolled identifier gets a one-time-code question in its re-verification
// round.
type EnrollmentHandler struct {
	EnrollmentService *service.EnrollmentService
}

// HandlePut godoc
//
//	@Summary		Enroll Authenticator
//	@Description	Stores or rotates the TOTP secret for an identifier.
//	@Tags			Enrollments
//	@Accept			json
//	@Param			identifier	path	string						true	"email or phone"
//	@Param			request		body	recoversdk.EnrollRequest	true	"base32 TOTP secret"
//	@Success		204
//	@Failure		400	{object}	recoversdk.APIError
//	@Router			/v1/enrollments/{identifier} [put].
func (h *EnrollmentHandler) HandlePut(w http.ResponseWriter, r *http.Request) {
	var req recoversdk.EnrollRequest
	if err := httpx.ReadJSON(r, &req); err != nil {
		errMalformedBody.WriteError(w)
		return
	}

	if err := h.EnrollmentService.Enroll(r.Context(), r.PathValue("identifier"), req.Secret); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleDelete godoc
//
//	@Summary		Unenroll Authenticator
//	@Description	Removes the identifier's TOTP secret.
//	@Tags			Enrollments
//	@Param			identifier	path	string	true	"email or phone"
//	@Success		204
//	@Failure		404	{object}	recoversdk.APIError
//	@Router			/v1/enrollments/{identifier} [delete].
func (h *EnrollmentHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.EnrollmentService.Unenroll(r.Context(), r.PathValue("identifier")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
