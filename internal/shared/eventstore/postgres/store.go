package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"warehouse/internal/shared/eventstore"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	pollInterval = 200 * time.Millisecond

	// An Any append carries no revision expectation, so losing the
	// physical insert race is not a conflict; the position allocation
	// is retried this many times before giving up.
	maxPositionRaceRetries = 5
)

// errPositionRace marks a unique violation under an Any token: two
// writers picked the same position for a stream with no head row to lock.
var errPositionRace = errors.New("stream position allocation raced")

// Store persists streams in the append-only stream_events table.
// The (stream_id, position) unique index is the consistency backstop for
// writers racing past the in-transaction revision check.
type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewStore(db *gorm.DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		db:     db,
		logger: logger,
	}
}

func (s *Store) Append(
	ctx context.Context,
	streamID string,
	expected eventstore.ExpectedRevision,
	events ...eventstore.EventData,
) (eventstore.AppendResult, error) {
	streamID = strings.TrimSpace(streamID)
	if len(events) == 0 {
		return eventstore.AppendResult{}, eventstore.ErrEmptyAppend
	}

	for attempt := 0; ; attempt++ {
		result, err := s.appendOnce(ctx, streamID, expected, events)
		if errors.Is(err, errPositionRace) {
			if attempt < maxPositionRaceRetries {
				continue
			}
			return eventstore.AppendResult{}, eventstore.ErrRevisionConflict
		}
		return result, err
	}
}

func (s *Store) appendOnce(
	ctx context.Context,
	streamID string,
	expected eventstore.ExpectedRevision,
	events []eventstore.EventData,
) (eventstore.AppendResult, error) {
	var result eventstore.AppendResult
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last streamEventModel
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("stream_id = ?", streamID).
			Order("position DESC").
			First(&last).
			Error

		exists := true
		var currentRevision uint64
		switch {
		case err == nil:
			currentRevision = last.Position
		case errors.Is(err, gorm.ErrRecordNotFound):
			exists = false
		default:
			return err
		}

		if !expected.Matches(exists, currentRevision) {
			return eventstore.ErrRevisionConflict
		}

		next := uint64(0)
		if exists {
			next = currentRevision + 1
		}

		rows := make([]streamEventModel, 0, len(events))
		for i, event := range events {
			rows = append(rows, streamEventModel{
				StreamID:   streamID,
				Position:   next + uint64(i),
				EventID:    event.EventID.String(),
				EventType:  event.EventType,
				Payload:    append([]byte(nil), event.Payload...),
				OccurredAt: event.OccurredAt.UTC(),
			})
		}
		if err := tx.Create(&rows).Error; err != nil {
			if isUniqueViolation(err) {
				return insertConflictError(expected)
			}
			return err
		}

		result = eventstore.AppendResult{
			NextExpectedRevision: rows[len(rows)-1].Position,
		}
		return nil
	})
	if err != nil {
		return eventstore.AppendResult{}, err
	}
	return result, nil
}

func (s *Store) ReadStream(
	ctx context.Context,
	streamID string,
	from uint64,
	direction eventstore.ReadDirection,
) ([]eventstore.Envelope, error) {
	streamID = strings.TrimSpace(streamID)

	order := "position ASC"
	if direction == eventstore.Backwards {
		order = "position DESC"
	}

	var rows []streamEventModel
	if err := s.db.WithContext(ctx).
		Where("stream_id = ? AND position >= ?", streamID, from).
		Order(order).
		Find(&rows).
		Error; err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		var count int64
		if err := s.db.WithContext(ctx).
			Model(&streamEventModel{}).
			Where("stream_id = ?", streamID).
			Count(&count).
			Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, eventstore.ErrStreamNotFound
		}
		return []eventstore.Envelope{}, nil
	}

	items := make([]eventstore.Envelope, 0, len(rows))
	for _, row := range rows {
		envelope, err := row.toEnvelope()
		if err != nil {
			return nil, err
		}
		items = append(items, envelope)
	}
	return items, nil
}

// SubscribeAll tails the global position with a short poll. Delivery is in
// append order; a subscriber that falls behind is closed as lagged.
func (s *Store) SubscribeAll(ctx context.Context) (*eventstore.Subscription, error) {
	var checkpoint uint64
	err := s.db.WithContext(ctx).
		Model(&streamEventModel{}).
		Select("COALESCE(MAX(global_position), 0)").
		Scan(&checkpoint).
		Error
	if err != nil {
		return nil, err
	}

	sub := eventstore.NewSubscription()
	go s.tail(ctx, sub, checkpoint)
	return sub, nil
}

func (s *Store) tail(ctx context.Context, sub *eventstore.Subscription, checkpoint uint64) {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			sub.Close()
			return
		case <-sub.Done():
			return
		case <-ticker.C:
		}

		var rows []streamEventModel
		if err := s.db.WithContext(ctx).
			Where("global_position > ?", checkpoint).
			Order("global_position ASC").
			Find(&rows).
			Error; err != nil {
			s.logger.Error("event store tail read failed",
				"event", "eventstore_tail_failed",
				"module", "internal/shared/eventstore/postgres",
				"layer", "platform",
				"error", err.Error(),
			)
			continue
		}

		for _, row := range rows {
			envelope, err := row.toEnvelope()
			if err != nil {
				s.logger.Error("event store tail decode failed",
					"event", "eventstore_tail_decode_failed",
					"module", "internal/shared/eventstore/postgres",
					"layer", "platform",
					"global_position", row.GlobalPosition,
					"error", err.Error(),
				)
				continue
			}
			if !sub.Publish(envelope) {
				return
			}
			checkpoint = row.GlobalPosition
		}
	}
}

type streamEventModel struct {
	GlobalPosition uint64    `gorm:"column:global_position;primaryKey;autoIncrement"`
	StreamID       string    `gorm:"column:stream_id;uniqueIndex:idx_stream_events_stream_position"`
	Position       uint64    `gorm:"column:position;uniqueIndex:idx_stream_events_stream_position"`
	EventID        string    `gorm:"column:event_id;type:uuid;uniqueIndex"`
	EventType      string    `gorm:"column:event_type"`
	Payload        []byte    `gorm:"column:payload;type:jsonb"`
	OccurredAt     time.Time `gorm:"column:occurred_at"`
}

func (streamEventModel) TableName() string {
	return "stream_events"
}

func (m streamEventModel) toEnvelope() (eventstore.Envelope, error) {
	eventID, err := uuid.Parse(m.EventID)
	if err != nil {
		return eventstore.Envelope{}, err
	}
	return eventstore.Envelope{
		StreamID:   m.StreamID,
		EventID:    eventID,
		EventType:  m.EventType,
		Payload:    append([]byte(nil), m.Payload...),
		Position:   m.Position,
		OccurredAt: m.OccurredAt.UTC(),
	}, nil
}

// Model exposes the persisted row shape for schema migration.
func Model() any {
	return &streamEventModel{}
}

// insertConflictError maps a unique violation on insert to the error the
// caller sees. A concrete token means a real revision conflict; an Any
// token means the position allocation raced and the append is retried.
func insertConflictError(expected eventstore.ExpectedRevision) error {
	if expected.IsAny() {
		return errPositionRace
	}
	return eventstore.ErrRevisionConflict
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
