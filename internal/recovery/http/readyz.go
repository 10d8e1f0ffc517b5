package http

import (
	"net/http"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/store"
	"github.com/aussiebroadwan/regain/pkg/httpx"
	"github.com/aussiebroadwan/regain/pkg/recoversdk"
)

// ReadyzHandler godoc
//
//	@Summary		Readiness Check Endpoint
//	@Description	Readiness probe checking the storage backend alongside uptime and version.
//	@Tags			Health
//	@Produce		json
//	@Success		200	{object}	recoversdk.HealthResponse
//	@Failure		503	{object}	recoversdk.HealthResponse	"service not ready"
//	@Router			/readyz [get].
func ReadyzHandler(st store.Store, startTime time.Time, version string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := &recoversdk.HealthChecks{Database: "ok"}
		status := "ok"
		statusCode := http.StatusOK

		if err := st.Ping(r.Context()); err != nil {
			checks.Database = "error: " + err.Error()
			status = "degraded"
			statusCode = http.StatusServiceUnavailable
		}

		httpx.WriteJSON(w, statusCode, recoversdk.HealthResponse{
			Status:  status,
			Uptime:  time.Since(startTime).String(),
			Version: version,
			Checks:  checks,
		})
	}
}
