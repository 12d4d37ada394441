package services

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/filekit/internal/logger"
	"github.com/sbilibin2017/filekit/internal/models"
	"github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=events.go -destination=events_mock.go -package=services

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// newFileEvent describes a change to file.
func newFileEvent(eventType string, file *models.FileDB) models.FileEvent {
	return models.FileEvent{
		EventID:    uuid.NewString(),
		Type:       eventType,
		FileID:     file.ID,
		UserID:     file.UserID,
		Name:       file.Name,
		TotalPages: file.TotalPages,
		Timestamp:  time.Now().Unix(),
	}
}

// publishFileEvent publishes a file event to Kafka. A nil writer disables publishing.
func publishFileEvent(ctx context.Context, w KafkaWriter, event models.FileEvent) {
	if w == nil {
		logger.Log.Debugw("Kafka writer not configured, skipping publishing", "event_id", event.EventID, "type", event.Type)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal file event for Kafka", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.FileID, 10)),
		Value: data,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(event.Type)},
		},
	}

	if err := w.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish file event to Kafka", "event_id", event.EventID, "type", event.Type, "error", err)
	} else {
		logger.Log.Infow("File event published to Kafka", "event_id", event.EventID, "type", event.Type, "file_id", event.FileID)
	}
}
