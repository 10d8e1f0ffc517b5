package http

import (
	"net/http"

	"github.com/aussiebroadwan/regain/internal/recovery/service"
	"github.com/aussiebroadwan/regain/pkg/httpx"
	"github.com/aussiebroadwan/regain/pkg/recoversdk"
)

// StatsHandler serves GET /v1/tokens/stats.
type StatsHandler struct {
	TokenService *service.TokenService
}

// ServeHTTP godoc
//
//	@Summary		Token Store Statistics
//	@Description	Operational counters over the token store.
//	@Tags			Tokens
//	@Produce		json
//	@Success		200	{object}	recoversdk.StatsResponse
//	@Router			/v1/tokens/stats [get].
func (h *StatsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	stats, err := h.TokenService.Stats(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, recoversdk.StatsResponse{
		TotalTokens: stats.TotalTokens,
	})
}
