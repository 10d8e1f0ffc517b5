package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/regain/internal/recovery/domain"
	"github.com/aussiebroadwan/regain/internal/recovery/service"
	"github.com/aussiebroadwan/regain/internal/recovery/store/drivers/memory"
	"github.com/aussiebroadwan/regain/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestHousekeepingSweep(t *testing.T) {
	ctx := context.Background()
	st := memory.NewStore()

	tokens := &service.TokenService{Store: st, TokenTTL: time.Nanosecond}
	_, _, err := tokens.Issue(ctx, "user-1")
	require.NoError(t, err)

	sessions := &service.SessionService{
		Store:      st,
		Tokens:     &service.TokenService{Store: st},
		SessionTTL: time.Nanosecond,
	}
	stale, err := sessions.Start(ctx, "alice@example.com", uniform(65))
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	hk := service.NewHousekeepingService(st, slogx.Discard(), time.Hour)
	hk.Start()
	hk.Stop()

	// The startup sweep ran before Stop returned.
	count, err := st.Tokens().CountTokens(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, count)

	got, err := st.Sessions().GetSession(ctx, stale.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StateExpired, got.State)
}
