// Package stream provides DynamoDB Streams handlers for background
// cleanup of store side tables.
package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"

	"github.com/fastbreaklabs/rosterstore/remote"
)

// Handler processes DynamoDB stream events from the game table.
type Handler struct {
	store  *remote.Store
	logger *slog.Logger
}

// NewHandler creates a new stream handler.
func NewHandler(s *remote.Store, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		store:  s,
		logger: logger,
	}
}

// HandleGameCleanup discards the conflict backup of every game removed
// from the game table: once the game is gone there is nothing left to
// resolve the backup against. Designed to be used as an AWS Lambda
// handler on the game table's stream.
func (h *Handler) HandleGameCleanup(ctx context.Context, event events.DynamoDBEvent) error {
	for _, record := range event.Records {
		if err := h.processRecord(ctx, record); err != nil {
			h.logger.Error("failed to process record",
				"eventID", record.EventID,
				"error", err,
			)
			return err // Will retry, eventually DLQ
		}
	}
	return nil
}

// processRecord processes a single DynamoDB stream record.
func (h *Handler) processRecord(ctx context.Context, record events.DynamoDBEventRecord) error {
	if record.EventName != "REMOVE" {
		return nil
	}

	gameID := getStringAttr(record.Change.OldImage, "id")
	if gameID == "" {
		// Keys are present even when the old image is not streamed.
		gameID = getStringAttr(record.Change.Keys, "id")
	}
	if gameID == "" {
		return nil
	}

	h.logger.Info("discarding conflict backup for removed game", "game", gameID)

	// Deleting an absent backup is a no-op, so replays are harmless.
	if err := h.store.DeleteConflictBackup(ctx, gameID); err != nil {
		return fmt.Errorf("delete conflict backup: %w", err)
	}
	return nil
}

// getStringAttr extracts a string attribute from a DynamoDB stream image.
func getStringAttr(image map[string]events.DynamoDBAttributeValue, key string) string {
	if v, ok := image[key]; ok {
		return v.String()
	}
	return ""
}
