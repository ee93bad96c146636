// Package pipeline wires a single inbound event through validation,
// persistence, alert evaluation, and outbound publication.
package pipeline

import (
	"context"

	"go.uber.org/zap"

	"github.com/udite/city-telemetry/internal/alerting"
	"github.com/udite/city-telemetry/internal/event"
	"github.com/udite/city-telemetry/internal/history"
	"github.com/udite/city-telemetry/internal/metrics"
	"github.com/udite/city-telemetry/internal/queue"
	"github.com/udite/city-telemetry/internal/validate"
)

// Publisher publishes one message to an outbound channel. Satisfied by
// queue.Producer.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// Saver persists one validated event. Satisfied by storage.Writer.
type Saver interface {
	Save(evt event.Event) error
}

// LatestCache records the newest validated payload per sensor identity.
// Satisfied by statecache.Cache.
type LatestCache interface {
	SetLatest(ctx context.Context, identity string, payload []byte) error
}

// Config carries the orchestrator's collaborators. Cache and Metrics are
// optional.
type Config struct {
	Writer    Saver
	History   *history.Store
	Evaluator *alerting.Evaluator
	Publisher Publisher
	Cache     LatestCache
	Topics    queue.Topics
	Logger    *zap.Logger
	Metrics   *metrics.Metrics
}

// Orchestrator drives one inbound message through the pipeline in a single
// terminal pass: no retries, no dead-letter routing. Handle must be called
// from a single goroutine; of its collaborators only the Saver tolerates
// concurrent use.
type Orchestrator struct {
	writer    Saver
	history   *history.Store
	evaluator *alerting.Evaluator
	publisher Publisher
	cache     LatestCache
	topics    queue.Topics
	logger    *zap.Logger
	metrics   *metrics.Metrics
}

// New creates an orchestrator.
func New(cfg Config) *Orchestrator {
	return &Orchestrator{
		writer:    cfg.Writer,
		history:   cfg.History,
		evaluator: cfg.Evaluator,
		publisher: cfg.Publisher,
		cache:     cfg.Cache,
		topics:    cfg.Topics,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
}

// Handle processes one raw inbound message. Every failure is terminal for
// that message only and observable via logs and counters.
func (o *Orchestrator) Handle(ctx context.Context, topic string, raw []byte) {
	o.metrics.IncReceived()

	evt, err := validate.Validate(raw)
	if err != nil {
		o.metrics.IncRejected()
		o.logger.Warn("invalid message received",
			zap.String("topic", topic),
			zap.Error(err))
		return
	}
	// A payload consumed from one category's topic must carry that category's
	// tag; a mismatch means a misrouted producer, not a valid reading.
	if want, ok := o.topics.CategoryForInbound(topic); ok && want != evt.Category() {
		o.metrics.IncRejected()
		o.logger.Warn("event category does not match its topic",
			zap.String("topic", topic),
			zap.String("category", string(evt.Category())))
		return
	}
	identity := evt.SensorID()

	// Row failures are logged and swallowed: downstream signals stay
	// available even when storage rejects a row.
	if err := o.writer.Save(evt); err != nil {
		o.metrics.IncPersistFailures()
		o.logger.Error("failed to persist event",
			zap.String("sensor", identity),
			zap.Error(err))
	} else {
		o.metrics.IncPersisted()
	}

	if o.cache != nil {
		if err := o.cache.SetLatest(ctx, identity, raw); err != nil {
			o.logger.Warn("failed to update latest-reading cache",
				zap.String("sensor", identity),
				zap.Error(err))
		}
	}

	window := o.history.Record(identity, evt)
	if details := o.evaluator.Evaluate(evt.Category(), window); len(details) > 0 {
		o.publishAlert(ctx, evt, identity, details)
	}

	// The validated body is republished verbatim so consumers see exactly
	// what was accepted.
	if err := o.publisher.Publish(ctx, o.topics.Outbound(evt.Category()), identity, raw); err != nil {
		o.logger.Error("failed to republish validated event",
			zap.String("sensor", identity),
			zap.Error(err))
	} else {
		o.metrics.IncRepublished()
	}
}

func (o *Orchestrator) publishAlert(ctx context.Context, evt event.Event, identity string, details []string) {
	alert := alerting.NewAlert(evt.Timestamp(), evt.Category(), details)
	body, err := alert.Encode()
	if err != nil {
		o.logger.Error("failed to encode alert", zap.Error(err))
		return
	}

	if err := o.publisher.Publish(ctx, o.topics.Alert(), identity, body); err != nil {
		o.logger.Error("failed to publish alert",
			zap.String("sensor", identity),
			zap.Error(err))
		return
	}
	o.metrics.IncAlerts()
	o.logger.Info("alert published",
		zap.String("sensor", identity),
		zap.Strings("details", details))
}
