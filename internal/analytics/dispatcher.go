// Package analytics publishes committed analytics entries to Kafka.
package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"

	"github.com/Vibush01/BeFit/internal/models"
	"github.com/Vibush01/BeFit/internal/observability"
	"github.com/Vibush01/BeFit/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error
}

type txBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

type entryStore interface {
	ClaimUnpublished(ctx context.Context, limit int) ([]models.AnalyticsEntry, error)
	MarkPublished(ctx context.Context, entryIDs []int64) error
}

// Event is the Kafka value for one analytics entry.
type Event struct {
	ID         int64           `json:"id"`
	Action     string          `json:"action"`
	ActorID    int64           `json:"actor_id"`
	ActorRole  string          `json:"actor_role"`
	Details    json.RawMessage `json:"details"`
	OccurredAt time.Time       `json:"occurred_at"`
}

// Dispatcher drains unpublished analytics entries. Claim, delivery and the
// published stamp share one transaction, so a failed delivery leaves the batch
// unpublished for the next tick.
type Dispatcher struct {
	db           txBeginner
	producer     messageWriter
	topic        string
	pollInterval time.Duration
	batchSize    int
	storeFor     func(tx pgx.Tx) entryStore
	done         chan struct{}
}

func NewDispatcher(
	db txBeginner,
	producer messageWriter,
	topic string,
	pollInterval time.Duration,
	batchSize int,
) *Dispatcher {
	return &Dispatcher{
		db:           db,
		producer:     producer,
		topic:        topic,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		storeFor: func(tx pgx.Tx) entryStore {
			return repository.NewAnalyticsRepository(tx)
		},
		done: make(chan struct{}),
	}
}

// Start runs the polling loop until ctx is cancelled. Call it in a goroutine.
func (d *Dispatcher) Start(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer func() {
		ticker.Stop()
		close(d.done)
	}()

	for {
		if _, err := d.processBatch(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("analytics dispatcher error: %v", err)
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (d *Dispatcher) Wait() {
	<-d.done
}

func (d *Dispatcher) processBatch(ctx context.Context) (int, error) {
	start := time.Now()

	tx, err := d.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	store := d.storeFor(tx)
	entries, err := store.ClaimUnpublished(ctx, d.batchSize)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	defer observability.ObserveAnalyticsBatch(start)

	messages := make([]kafka.Message, 0, len(entries))
	ids := make([]int64, 0, len(entries))
	for _, entry := range entries {
		message, err := encodeEntry(entry)
		if err != nil {
			observability.RecordAnalyticsFailed(len(entries))
			return 0, err
		}
		messages = append(messages, message)
		ids = append(ids, entry.ID)
	}

	if err := d.producer.WriteMessages(ctx, d.topic, messages...); err != nil {
		observability.RecordAnalyticsFailed(len(entries))
		return 0, err
	}

	if err := store.MarkPublished(ctx, ids); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	observability.RecordAnalyticsPublished(len(entries))
	return len(entries), nil
}

// encodeEntry keys by actor so one actor's events stay on one partition.
func encodeEntry(entry models.AnalyticsEntry) (kafka.Message, error) {
	details := entry.Details
	if len(details) == 0 {
		details = json.RawMessage("{}")
	}

	value, err := json.Marshal(Event{
		ID:         entry.ID,
		Action:     entry.Action,
		ActorID:    entry.ActorID,
		ActorRole:  entry.ActorRole,
		Details:    details,
		OccurredAt: entry.CreatedAt.UTC(),
	})
	if err != nil {
		return kafka.Message{}, err
	}

	return kafka.Message{
		Key:   []byte(strconv.FormatInt(entry.ActorID, 10)),
		Value: value,
		Time:  entry.CreatedAt.UTC(),
		Headers: []kafka.Header{
			{Key: "action", Value: []byte(entry.Action)},
			{Key: "entry_id", Value: []byte(strconv.FormatInt(entry.ID, 10))},
		},
	}, nil
}
