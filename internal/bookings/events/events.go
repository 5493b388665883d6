package events

import (
	"context"
	"strconv"
	"time"

	"deskbook/pkg/kafka"
	"deskbook/pkg/logger"
	"deskbook/pkg/middleware"
	"deskbook/pkg/model"
	"deskbook/pkg/otelx"
)

const (
	TypeBookingCreated   = "booking.created"
	TypeBookingCancelled = "booking.cancelled"

	schemaVersion = "1"
	source        = "deskbook"
)

// Event is the payload written for every booking state change.
type Event struct {
	Type       string    `json:"type"`
	BookingID  int64     `json:"bookingId"`
	DeskID     int64     `json:"deskId"`
	UserID     int64     `json:"userId"`
	DateFrom   string    `json:"dateFrom"`
	DateTo     string    `json:"dateTo"`
	OccurredAt time.Time `json:"occurredAt"`
}

func NewEvent(eventType string, b *model.Booking, at time.Time) Event {
	return Event{
		Type:       eventType,
		BookingID:  b.ID,
		DeskID:     b.DeskID,
		UserID:     b.UserID,
		DateFrom:   model.FormatDate(b.Dates.From),
		DateTo:     model.FormatDate(b.Dates.To),
		OccurredAt: at.UTC(),
	}
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

type producer interface {
	Publish(ctx context.Context, msg kafka.Message) error
	Close() error
}

type kafkaPublisher struct {
	producer producer
	log      *logger.Logger
}

// NewKafkaPublisher keys messages by desk id so a desk's history stays
// ordered within one partition.
func NewKafkaPublisher(p producer, log *logger.Logger) Publisher {
	return &kafkaPublisher{producer: p, log: log}
}

func (p *kafkaPublisher) Publish(ctx context.Context, event Event) error {
	msg, err := kafka.NewMessage().
		WithKey(strconv.FormatInt(event.DeskID, 10)).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(schemaVersion).
		WithSource(source).
		WithCorrelationID(middleware.RequestIDFromContext(ctx)).
		WithHeaders(otelx.TraceHeaders(ctx)).
		WithTimestamp(event.OccurredAt).
		Build()
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

type noopPublisher struct{}

// NewNoopPublisher is used when EVENTS_ENABLED is false.
func NewNoopPublisher() Publisher {
	return noopPublisher{}
}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

func (noopPublisher) Close() error { return nil }
