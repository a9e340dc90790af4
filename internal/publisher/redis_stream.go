package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fortuna/courtside/internal/ingest"
)

// RunStream is the stream finished ingestion runs are appended to
const RunStream = "courtside.ingest.runs"

// streamMaxLen caps the stream so it does not grow without bound
const streamMaxLen = 1000

// RedisStreamPublisher publishes events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
	stream string
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
		stream: RunStream,
	}
}

// NotifyRun appends the run summary to the stream
func (p *RedisStreamPublisher) NotifyRun(ctx context.Context, result *ingest.Result) error {
	return p.publish(ctx, map[string]interface{}{
		"data":      runPayload(result),
		"status":    result.Status(),
		"timestamp": time.Now().Unix(),
	})
}

func (p *RedisStreamPublisher) publish(ctx context.Context, values map[string]interface{}) error {
	if data, ok := values["data"]; ok {
		encoded, err := json.Marshal(data)
		if err != nil {
			return err
		}
		values["data"] = string(encoded)
	}

	return p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: values,
	}).Err()
}

// RunEvent is the JSON shape of a published run
type RunEvent struct {
	*ingest.Result
	Status     string `json:"status"`
	DurationMS int64  `json:"duration_ms"`
}

func runPayload(result *ingest.Result) RunEvent {
	return RunEvent{
		Result:     result,
		Status:     result.Status(),
		DurationMS: result.Duration().Milliseconds(),
	}
}

// EncodeRun renders a run the way it is published
func EncodeRun(result *ingest.Result) ([]byte, error) {
	return json.Marshal(runPayload(result))
}
