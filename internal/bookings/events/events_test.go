package events

import (
	"context"
	"testing"
	"time"

	"deskbook/pkg/kafka"
	"deskbook/pkg/logger"
	"deskbook/pkg/model"
)

type mockProducer struct {
	published []kafka.Message
	closed    bool
}

func (m *mockProducer) Publish(_ context.Context, msg kafka.Message) error {
	m.published = append(m.published, msg)
	return nil
}

func (m *mockProducer) Close() error {
	m.closed = true
	return nil
}

func TestKafkaPublisher_Publish(t *testing.T) {
	dates, err := model.ParseDateRange("2025-06-10", "2025-06-12")
	if err != nil {
		t.Fatal(err)
	}
	b := &model.Booking{ID: 9, DeskID: 3, UserID: 4, Dates: dates}
	at := time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

	mp := &mockProducer{}
	pub := NewKafkaPublisher(mp, logger.Discard())

	if err := pub.Publish(context.Background(), NewEvent(TypeBookingCreated, b, at)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(mp.published) != 1 {
		t.Fatalf("expected one message, got %d", len(mp.published))
	}

	msg := mp.published[0]
	if msg.Key != "3" {
		t.Errorf("expected desk id key, got %q", msg.Key)
	}
	if msg.GetEventType() != TypeBookingCreated {
		t.Errorf("unexpected event type %q", msg.GetEventType())
	}

	var got Event
	if err := msg.DecodeValue(&got); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if got.BookingID != 9 || got.DateFrom != "2025-06-10" || got.DateTo != "2025-06-12" {
		t.Errorf("unexpected payload %+v", got)
	}

	if err := pub.Close(); err != nil || !mp.closed {
		t.Error("expected producer to be closed")
	}
}

func TestNoopPublisher(t *testing.T) {
	pub := NewNoopPublisher()
	if err := pub.Publish(context.Background(), Event{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}
