package worker

// dlq.go keeps jobs that used up their attempts, one redis list per source
// queue under dlq:{queue}. Replay moves them back for another round once the
// cause (missing SMTP settings, a deleted shift) is fixed.

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const dlqPrefix = "dlq:"

type DeadJob struct {
	Queue    string    `json:"queue"`
	Job      Job       `json:"job"`
	Reason   string    `json:"reason"`
	FailedAt time.Time `json:"failed_at"`
}

func dlqKey(queue string) string { return dlqPrefix + queue }

// SendToDLQ parks job after its last failed attempt.
func SendToDLQ(ctx context.Context, rdb *redis.Client, queue string, job Job, reason string) {
	data, err := json.Marshal(DeadJob{Queue: queue, Job: job, Reason: reason, FailedAt: time.Now().UTC()})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: marshal failed")
		return
	}
	if err := rdb.LPush(ctx, dlqKey(queue), data).Err(); err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dlq: push failed")
		return
	}
	log.Warn().Str("queue", queue).Str("type", job.Type).Int("attempts", job.Attempts).
		Str("reason", reason).Msg("dlq: job parked")
}

func DLQLength(ctx context.Context, rdb *redis.Client, queue string) (int64, error) {
	return rdb.LLen(ctx, dlqKey(queue)).Result()
}

// Replay moves every parked job of queue back to it with a fresh attempt
// count and returns how many were moved.
func Replay(ctx context.Context, rdb *redis.Client, queue string) (int, error) {
	n := 0
	for {
		raw, err := rdb.RPop(ctx, dlqKey(queue)).Result()
		if err == redis.Nil {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		var dead DeadJob
		if err := json.Unmarshal([]byte(raw), &dead); err != nil {
			log.Error().Err(err).Str("queue", queue).Msg("dlq: dropping unreadable entry")
			continue
		}
		dead.Job.Attempts = 0
		if err := push(ctx, rdb, queue, dead.Job); err != nil {
			// keep it parked
			_ = rdb.RPush(ctx, dlqKey(queue), raw).Err()
			return n, fmt.Errorf("dlq: replay %s: %w", queue, err)
		}
		n++
	}
}
