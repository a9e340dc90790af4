package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageKeyIsStablePerURL(t *testing.T) {
	a := pageKey("https://www.basketball-reference.com/teams/LAL/2024.html")
	b := pageKey("https://www.basketball-reference.com/teams/LAL/2024.html")
	c := pageKey("https://www.basketball-reference.com/teams/BOS/2024.html")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Regexp(t, `^courtside:page:[0-9a-f]{40}$`, a)
}

// TestPageCacheRoundTrip needs a live server; set TEST_REDIS_URL to run it.
func TestPageCacheRoundTrip(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	rc, err := NewRedisCache(url)
	require.NoError(t, err)
	defer rc.Close()

	ctx := context.Background()
	require.NoError(t, rc.HealthCheck(ctx))
	pc := NewPageCache(rc, time.Minute)
	page := "https://www.basketball-reference.com/teams/LAL/2024.html"
	defer pc.Invalidate(ctx, page)

	_, ok, err := pc.GetPage(ctx, page)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, pc.PutPage(ctx, page, "<html></html>"))
	body, ok, err := pc.GetPage(ctx, page)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "<html></html>", body)
}
