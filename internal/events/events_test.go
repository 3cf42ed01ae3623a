package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"reservation-service/internal/entity"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return w.err
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	event := entity.ReservationEvent{
		Type:          TypeCreated,
		ReservationID: 12,
		UserID:        1,
		RestaurantID:  5,
		Date:          "2026-10-18",
		Time:          "18:00:00",
		PeopleCount:   2,
		OccurredAt:    time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC),
	}

	t.Run("writes keyed message", func(t *testing.T) {
		w := &fakeWriter{}
		p := &KafkaPublisher{writer: w}
		if err := p.Publish(context.Background(), event); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		if len(w.msgs) != 1 {
			t.Fatalf("wrote %d messages, want 1", len(w.msgs))
		}
		if got := string(w.msgs[0].Key); got != "reservation-created-12" {
			t.Errorf("key = %q", got)
		}
		var decoded entity.ReservationEvent
		if err := json.Unmarshal(w.msgs[0].Value, &decoded); err != nil {
			t.Fatalf("payload is not JSON: %v", err)
		}
		if decoded.RestaurantID != 5 || decoded.PeopleCount != 2 {
			t.Errorf("payload = %+v", decoded)
		}
	})

	t.Run("writer error", func(t *testing.T) {
		boom := errors.New("broker down")
		p := &KafkaPublisher{writer: &fakeWriter{err: boom}}
		if err := p.Publish(context.Background(), event); !errors.Is(err, boom) {
			t.Errorf("Publish() error = %v, want %v", err, boom)
		}
	})
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{"cancelled", `{"type":"cancelled","reservation_id":3,"restaurant_id":1,"reservation_date":"2026-10-18"}`, false},
		{"unknown type", `{"type":"archived","reservation_id":3}`, true},
		{"not json", `reservation`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.payload))
			if (err != nil) != tt.wantErr {
				t.Errorf("Decode() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
