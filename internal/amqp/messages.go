package amqp

import (
	"encoding/json"
	"errors"
	"time"

	"budgetbook/internal/core"
)

// MonthSavedMessage announces that a user's month document was persisted.
// Consumers reload the document by key; the version lets them skip stale
// deliveries.
type MonthSavedMessage struct {
	UserID    string        `json:"user_id"`
	MonthKey  core.MonthKey `json:"month_key"`
	Version   int64         `json:"version"`
	Timestamp time.Time     `json:"timestamp"`
}

func NewMonthSavedMessage(user string, month core.MonthKey, version int64) *MonthSavedMessage {
	return &MonthSavedMessage{
		UserID:    user,
		MonthKey:  month,
		Version:   version,
		Timestamp: time.Now(),
	}
}

func (m *MonthSavedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func MonthSavedMessageFromJSON(data []byte) (*MonthSavedMessage, error) {
	var msg MonthSavedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if !msg.MonthKey.Valid() {
		return nil, core.ErrInvalidMonthKey
	}
	if msg.UserID == "" {
		return nil, errors.New("missing user_id")
	}
	return &msg, nil
}
