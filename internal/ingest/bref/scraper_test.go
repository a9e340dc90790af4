package bref

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	body  string
	err   error
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.body, f.err
}

var lakers = Target{
	PageURL:        "https://www.basketball-reference.com/teams/LAL/2024.html",
	TeamCode:       "LAL",
	TeamName:       "Los Angeles Lakers",
	Season:         2024,
	FallbackWins:   17,
	FallbackLosses: 15,
}

func TestGetTeamInfoFallsBackOnFetchFailure(t *testing.T) {
	fetcher := &stubFetcher{err: &FetchError{URL: lakers.PageURL, StatusCode: http.StatusServiceUnavailable}}
	s := NewScraper(fetcher, lakers, testLogger)

	team, usedFallback := s.GetTeamInfo(context.Background())
	require.NotNil(t, team)
	assert.True(t, usedFallback)
	assert.Equal(t, 17, team.Wins)
	assert.Equal(t, 15, team.Losses)
	assert.Equal(t, "LAL", team.TeamCode)
	assert.Equal(t, "Los Angeles Lakers", team.Name)
	assert.Equal(t, 2024, team.Year)
	assert.False(t, team.LastUpdated.IsZero())
}

func TestGetTeamInfoFallbackIsConfigurable(t *testing.T) {
	target := lakers
	target.FallbackWins, target.FallbackLosses = 0, 0
	s := NewScraper(&stubFetcher{body: "<html><body>no scoreboard</body></html>"}, target, testLogger)

	team, usedFallback := s.GetTeamInfo(context.Background())
	assert.True(t, usedFallback)
	assert.Zero(t, team.Wins)
	assert.Zero(t, team.Losses)
}

func TestGetTeamInfoScrapesRecord(t *testing.T) {
	s := NewScraper(&stubFetcher{body: loadPage(t)}, lakers, testLogger)

	team, usedFallback := s.GetTeamInfo(context.Background())
	assert.False(t, usedFallback)
	assert.Equal(t, 47, team.Wins)
	assert.Equal(t, 35, team.Losses)
}

func TestGetRosterWithoutRosterTable(t *testing.T) {
	s := NewScraper(&stubFetcher{body: `<html><body><table id="injuries"></table></body></html>`}, lakers, testLogger)

	assert.Empty(t, s.GetRoster(context.Background()))
}

func TestGetRosterAndStatsOnFetchFailure(t *testing.T) {
	s := NewScraper(&stubFetcher{err: errors.New("connection reset")}, lakers, testLogger)

	assert.Empty(t, s.GetRoster(context.Background()))
	stats, errs := s.GetPlayerStats(context.Background())
	assert.Empty(t, stats)
	assert.Empty(t, errs)
}

func TestGetPlayerStats(t *testing.T) {
	s := NewScraper(&stubFetcher{body: loadPage(t)}, lakers, testLogger)

	stats, errs := s.GetPlayerStats(context.Background())
	assert.Len(t, stats, 2)
	assert.Len(t, errs, 1)
	for _, line := range stats {
		assert.Equal(t, 2024, line.Season)
	}
}

func TestPerRunDownloadsOnce(t *testing.T) {
	stub := &stubFetcher{body: loadPage(t)}
	s := NewScraper(PerRun(stub), lakers, testLogger)
	ctx := context.Background()

	s.GetTeamInfo(ctx)
	s.GetRoster(ctx)
	s.GetPlayerStats(ctx)

	assert.Equal(t, 1, stub.calls)
}

func TestPerRunDoesNotRememberFailures(t *testing.T) {
	stub := &stubFetcher{err: errors.New("timeout")}
	f := PerRun(stub)

	_, err := f.Fetch(context.Background(), lakers.PageURL)
	require.Error(t, err)

	stub.err = nil
	stub.body = "<html></html>"
	body, err := f.Fetch(context.Background(), lakers.PageURL)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", body)
	assert.Equal(t, 2, stub.calls)
}
