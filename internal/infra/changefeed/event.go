package changefeed

import (
	"encoding/json"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/store"
	"github.com/segmentio/kafka-go"
)

const EventTypeHeader = "event_type"

// Event 發送到 kafka 的內容
type Event struct {
	Type       store.ActionType `json:"type"`
	UserID     string           `json:"user_id"`
	OccurredAt time.Time        `json:"occurred_at"`
	Payload    store.Action     `json:"payload"`
}

// prepareEventMessage key 為 userID，同一使用者落在同一分區
func prepareEventMessage(userID string, action store.Action, at time.Time) (kafka.Message, error) {
	b, err := json.Marshal(Event{
		Type:       action.Type(),
		UserID:     userID,
		OccurredAt: at,
		Payload:    action,
	})
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Key:   []byte(userID),
		Value: b,
		Time:  at,
		Headers: []kafka.Header{
			{Key: EventTypeHeader, Value: []byte(action.Type())},
		},
	}, nil
}
