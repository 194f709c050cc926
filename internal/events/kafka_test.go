package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"

	"orbo/internal/config"
)

type recordingWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *recordingWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *recordingWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaPublisher_ChatMigrated(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, "orbo.")

	err := p.ChatMigrated(context.Background(), ChatMigratedEvent{
		OldChatID:  -4001,
		NewChatID:  -1004001,
		OrgID:      "org-1",
		MigratedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(w.messages))
	}

	msg := w.messages[0]
	if msg.Topic != "orbo.telegram.chat.migrated" {
		t.Errorf("topic = %q", msg.Topic)
	}
	if string(msg.Key) != "-4001" {
		t.Errorf("key = %q, want -4001", msg.Key)
	}

	var decoded ChatMigratedEvent
	if err := json.Unmarshal(msg.Value, &decoded); err != nil {
		t.Fatalf("invalid payload: %v", err)
	}
	if decoded.NewChatID != -1004001 || decoded.OrgID != "org-1" {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestKafkaPublisher_ParticipantsBackfilled(t *testing.T) {
	w := &recordingWriter{}
	p := newKafkaPublisher(w, "")

	if err := p.ParticipantsBackfilled(context.Background(), ParticipantsBackfilledEvent{OrgID: "org-1", ChatIDs: []int64{-100123}, Inserted: 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.messages[0].Topic != "participants.backfilled" || string(w.messages[0].Key) != "org-1" {
		t.Errorf("message = %s/%s", w.messages[0].Topic, w.messages[0].Key)
	}
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &recordingWriter{err: errors.New("broker unavailable")}
	p := newKafkaPublisher(w, "orbo.")

	if err := p.ParticipantsBackfilled(context.Background(), ParticipantsBackfilledEvent{OrgID: "org-1"}); err == nil {
		t.Fatal("expected error")
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Errorf("Close() = %v, closed = %v", err, w.closed)
	}
}

func TestNewPublisher_WithoutBrokers(t *testing.T) {
	p := NewPublisher(&config.Config{})
	if _, ok := p.(NopPublisher); !ok {
		t.Fatalf("expected NopPublisher, got %T", p)
	}
	if err := p.ChatMigrated(context.Background(), ChatMigratedEvent{}); err != nil {
		t.Errorf("nop publisher returned %v", err)
	}
}
