package history

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"

	"typerace/internal/app/race"
)

func sampleOutcome(winner string) *race.Outcome {
	finished := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	return &race.Outcome{
		RoomCode: "QX7P2M",
		WinnerID: winner,
		IsTie:    winner == "",
		Config:   race.ContentConfig{Type: race.TypeParagraph, Level: race.LevelBeginner, Genre: "general", TestDuration: 30},
		Standings: []*race.Performance{
			{UserID: "u-2", Name: "bob", Stats: race.Stats{Progress: 100, WPM: 71, Accuracy: 96, Score: 95}, FinishedAt: &finished},
			{UserID: "u-1", Name: "alice", IsHost: true, Stats: race.Stats{Progress: 100, WPM: 64, Accuracy: 98, Score: 80}, FinishedAt: &finished},
		},
		EndedAt: finished.Add(time.Second),
	}
}

func TestNewResultRecord(t *testing.T) {
	rec := NewResultRecord(sampleOutcome("u-2"))
	require.NotNil(t, rec.WinnerID)
	assert.Equal(t, "u-2", *rec.WinnerID)
	require.Len(t, rec.Performances, 2)
	assert.True(t, rec.Performances[1].IsHost)
	assert.Equal(t, float64(95), rec.Performances[0].Score)

	tie := NewResultRecord(sampleOutcome(""))
	assert.Nil(t, tie.WinnerID)
	assert.True(t, tie.IsTie)

	raw, err := json.Marshal(tie)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"winner_id":null`)
}

func TestRedisPublisherIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := tcredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	rdb, err := ConnectRedis(ctx, endpoint, 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	pub := NewRedisPublisher(rdb, "")
	require.NoError(t, pub.PublishResult(ctx, sampleOutcome("u-2")))

	raw, err := rdb.LPop(ctx, DefaultQueueName).Result()
	require.NoError(t, err)

	var rec ResultRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	assert.Equal(t, "QX7P2M", rec.RoomCode)
	require.NotNil(t, rec.WinnerID)
	assert.Equal(t, "u-2", *rec.WinnerID)
	assert.Equal(t, race.TypeParagraph, rec.ContentConfig.Type)
}
