package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
)

type fakeWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func TestKafkaPublisherKeysByReport(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisherWithWriter(w, "ideascope.reports")
	at := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

	err := p.Publish(context.Background(), Event{Type: TypeNarrativeCompleted, ReportID: "rep-9", Mode: "wild", At: at})
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(w.msgs) != 1 {
		t.Fatalf("messages=%d want=1", len(w.msgs))
	}
	msg := w.msgs[0]
	if string(msg.Key) != "rep-9" {
		t.Fatalf("key=%q want=rep-9", msg.Key)
	}
	if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != TypeNarrativeCompleted {
		t.Fatalf("headers=%v", msg.Headers)
	}
	var got Event
	if err := json.Unmarshal(msg.Value, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Mode != "wild" || !got.At.Equal(at) {
		t.Fatalf("unexpected event: %+v", got)
	}
	if err := p.Close(); err != nil || !w.closed {
		t.Fatalf("close err=%v closed=%v", err, w.closed)
	}
}

func TestKafkaPublisherWrapsWriteError(t *testing.T) {
	boom := errors.New("broker down")
	p := newKafkaPublisherWithWriter(&fakeWriter{err: boom}, "t")
	if err := p.Publish(context.Background(), Event{Type: TypeReportCreated, ReportID: "r"}); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped broker error, got %v", err)
	}
}

func TestOpenWithoutBrokersIsNoop(t *testing.T) {
	p, err := Open(Config{})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := p.(NoopPublisher); !ok {
		t.Fatalf("publisher=%T want NoopPublisher", p)
	}
	if err := p.Publish(context.Background(), Event{}); err != nil {
		t.Fatalf("noop publish: %v", err)
	}
}

func TestOpenWithBrokersBuildsKafka(t *testing.T) {
	p, err := Open(Config{Brokers: []string{"localhost:9092"}, Topic: "t"})
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer p.Close()
	if _, ok := p.(*KafkaPublisher); !ok {
		t.Fatalf("publisher=%T want *KafkaPublisher", p)
	}
}
