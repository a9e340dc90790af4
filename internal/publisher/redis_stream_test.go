package publisher

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/courtside/internal/ingest"
)

func TestEncodeRun(t *testing.T) {
	start := time.Date(2024, 4, 15, 3, 0, 0, 0, time.UTC)
	result := &ingest.Result{
		TeamCode:        "LAL",
		Season:          2024,
		Trigger:         ingest.TriggerScheduled,
		StartedAt:       start,
		FinishedAt:      start.Add(1500 * time.Millisecond),
		TeamsUpserted:   1,
		PlayersUpserted: 17,
		StatsReplaced:   17,
	}

	b, err := EncodeRun(result)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &decoded))
	assert.Equal(t, "LAL", decoded["team_id"])
	assert.Equal(t, "succeeded", decoded["status"])
	assert.Equal(t, float64(1500), decoded["duration_ms"])
	assert.Equal(t, float64(17), decoded["players_upserted"])
	assert.NotContains(t, decoded, "errors")
}
