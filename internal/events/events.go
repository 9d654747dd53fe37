package events

import (
	"context"
	"time"
)

const (
	TypeReportCreated      = "report.created"
	TypeReportDeleted      = "report.deleted"
	TypeNarrativeCompleted = "narrative.completed"
)

type Event struct {
	Type     string         `json:"type"`
	ReportID string         `json:"report_id"`
	Mode     string         `json:"mode,omitempty"`
	At       time.Time      `json:"at"`
	Payload  map[string]any `json:"payload,omitempty"`
}

// Publisher fans report lifecycle events out to other systems.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, Event) error { return nil }
func (NoopPublisher) Close() error { return nil }

type Config struct {
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic" default:"ideascope.reports"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
}

// Open returns a Kafka publisher when brokers are configured, else a no-op.
func Open(cfg Config) (Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return NoopPublisher{}, nil
	}
	return NewKafkaPublisher(cfg)
}
