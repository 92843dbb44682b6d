package task

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	cacheport "mobelhaus/internal/infrastructure/cache/port"
	qport "mobelhaus/internal/infrastructure/queue/port"
	"mobelhaus/internal/metrics"
)

// RecordMentionsTaskType is the queue task name for recording mention tags
// after a message has been persisted and broadcast. It runs strictly outside
// the relay's delivery path: enqueue failure never affects a broadcast.
const RecordMentionsTaskType = "chat:record_mentions"

// RecordMentionsPayload is the JSON payload transported via the queue.
type RecordMentionsPayload struct {
	MessageID   int64    `json:"messageId"`
	SenderID    string   `json:"senderId"`
	TaggedUsers []string `json:"taggedUsers"`
}

// UnreadMentionsKey is the cache key holding the unread-mention counter for
// a mentioned username.
func UnreadMentionsKey(username string) string {
	return fmt.Sprintf("mentions:unread:%s", username)
}

// RegisterRecordMentionsTask binds the task handler to the provided server.
// Each occurrence of a tag bumps the mentioned user's unread counter; a
// name mentioned twice in one message counts twice, mirroring the persisted
// tag list.
func RegisterRecordMentionsTask(srv qport.Server, cache cacheport.Cache) {
	srv.Register(RecordMentionsTaskType, func(ctx context.Context, t qport.Task) error {
		var p RecordMentionsPayload
		if err := json.Unmarshal(t.Payload, &p); err != nil {
			// malformed payload: retrying will not help
			return err
		}

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		for _, username := range p.TaggedUsers {
			if username == "" {
				continue
			}
			if _, err := cache.Incr(ctx, UnreadMentionsKey(username), 1); err != nil {
				return err
			}
			metrics.MentionsRecorded.Inc()
		}
		return nil
	})
}
