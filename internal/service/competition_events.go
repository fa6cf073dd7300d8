package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/noah-isme/hackathon-go-api/internal/observability"
)

const (
	competitionEventBuffer = 16
	// peerEventMemory bounds how many relayed event ids are remembered.
	peerEventMemory        = 256
)

type eventRelay int

const (
	relayNone eventRelay = iota
	relayNATS
	relayRedis
)

// Competition event types.
const (
	EventRoundDeployed         = "round_deployed"
	EventRoundFinalized        = "round_finalized"
	EventResultsPublished      = "results_published"
	EventCertificatesGenerated = "certificates_generated"
)

// CompetitionEvent announces an administrative transition to connected clients.
type CompetitionEvent struct {
	ID         string                 `json:"id"`
	Type       string                 `json:"type"`
	Round      int                    `json:"round,omitempty"`
	Message    string                 `json:"message"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// CompetitionEvents fans competition events out to local subscribers and peers.
type CompetitionEvents interface {
	Publish(ctx context.Context, event CompetitionEvent)
	Subscribe() (<-chan CompetitionEvent, func())
	Start(ctx context.Context)
}

type competitionEventEnvelope struct {
	Source string           `json:"source"`
	Event  CompetitionEvent `json:"event"`
}

type competitionEventBus struct {
	redis       *redis.Client
	redisTopic  string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
	tracer      trace.Tracer
	nodeID      string
	retryDelay  time.Duration

	mu          sync.RWMutex
	subscribers map[chan CompetitionEvent]struct{}

	seenMu    sync.Mutex
	seen      map[string]struct{}
	seenOrder []string
}

// NewCompetitionEvents builds the event bus. Redis and NATS are optional;
// without them events only reach subscribers of this process. Peers are
// reached through NATS when it is configured and through Redis otherwise.
func NewCompetitionEvents(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) CompetitionEvents {
	topic, subject := "", ""
	if channelBase != "" {
		topic = channelBase + ":competition-events"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".competition.events"
	}

	return &competitionEventBus{
		redis:       redisClient,
		redisTopic:  topic,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "competition_events").Logger(),
		tracer:      otel.Tracer("github.com/noah-isme/hackathon-go-api/internal/service/events"),
		nodeID:      uuid.NewString(),
		retryDelay:  time.Second,
		subscribers: make(map[chan CompetitionEvent]struct{}),
		seen:        make(map[string]struct{}, peerEventMemory),
	}
}

func (b *competitionEventBus) relay() eventRelay {
	switch {
	case b.nats != nil && b.natsSubject != "":
		return relayNATS
	case b.redis != nil && b.redisTopic != "":
		return relayRedis
	default:
		return relayNone
	}
}

func (b *competitionEventBus) Start(ctx context.Context) {
	switch b.relay() {
	case relayNATS:
		go b.consumeNATS(ctx)
	case relayRedis:
		go b.consumeRedis(ctx)
	}
}

func (b *competitionEventBus) Publish(ctx context.Context, event CompetitionEvent) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	ctx, span := b.tracer.Start(ctx, "competition_events.publish", trace.WithAttributes(
		attribute.String("event.type", event.Type),
		attribute.Int("event.round", event.Round),
	))
	defer span.End()

	b.broadcast(event)
	observability.EventsPublished().WithLabelValues(event.Type, "local").Inc()

	payload, err := json.Marshal(competitionEventEnvelope{Source: b.nodeID, Event: event})
	if err != nil {
		span.RecordError(err)
		b.logger.Warn().Err(err).Msg("failed to encode competition event")
		return
	}

	switch b.relay() {
	case relayNATS:
		if err := b.nats.Publish(b.natsSubject, payload); err != nil {
			span.RecordError(err)
			b.logger.Warn().Err(err).Msg("failed to publish competition event to nats")
			return
		}
		observability.EventsPublished().WithLabelValues(event.Type, "nats").Inc()
	case relayRedis:
		if err := b.redis.Publish(ctx, b.redisTopic, payload).Err(); err != nil {
			span.RecordError(err)
			b.logger.Warn().Err(err).Msg("failed to publish competition event to redis")
			return
		}
		observability.EventsPublished().WithLabelValues(event.Type, "redis").Inc()
	}
}

func (b *competitionEventBus) Subscribe() (<-chan CompetitionEvent, func()) {
	channel := make(chan CompetitionEvent, competitionEventBuffer)

	b.mu.Lock()
	b.subscribers[channel] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subscribers, channel)
			close(channel)
			b.mu.Unlock()
		})
	}
	return channel, cancel
}

// broadcast never blocks; subscribers with a full buffer miss the event.
func (b *competitionEventBus) broadcast(event CompetitionEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for channel := range b.subscribers {
		select {
		case channel <- event:
		default:
			b.logger.Debug().Str("event_type", event.Type).Msg("dropping event for slow subscriber")
		}
	}
}

func (b *competitionEventBus) consumeRedis(ctx context.Context) {
	pubsub := b.redis.Subscribe(ctx, b.redisTopic)
	defer func() { _ = pubsub.Close() }()

	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, redis.ErrClosed) {
				return
			}
			b.logger.Warn().Err(err).Msg("competition event redis subscription interrupted, retrying")
			select {
			case <-ctx.Done():
				return
			case <-time.After(b.retryDelay):
			}
			continue
		}
		b.handlePeerEvent([]byte(msg.Payload))
	}
}

func (b *competitionEventBus) consumeNATS(ctx context.Context) {
	sub, err := b.nats.Subscribe(b.natsSubject, func(msg *nats.Msg) {
		b.handlePeerEvent(msg.Data)
	})
	if err != nil {
		b.logger.Error().Err(err).Msg("failed to subscribe to competition events subject")
		return
	}

	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			b.logger.Warn().Err(err).Msg("failed to drain competition events subscription")
		}
	}()
}

func (b *competitionEventBus) handlePeerEvent(payload []byte) {
	var envelope competitionEventEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		b.logger.Warn().Err(err).Msg("invalid competition event payload")
		return
	}
	if envelope.Source == b.nodeID || !b.remember(envelope.Event.ID) {
		return
	}
	b.broadcast(envelope.Event)
}

// remember reports whether the event id is new. Ids without a value are
// always delivered.
func (b *competitionEventBus) remember(id string) bool {
	if id == "" {
		return true
	}

	b.seenMu.Lock()
	defer b.seenMu.Unlock()

	if _, ok := b.seen[id]; ok {
		return false
	}
	if len(b.seenOrder) == peerEventMemory {
		delete(b.seen, b.seenOrder[0])
		b.seenOrder = b.seenOrder[1:]
	}
	b.seen[id] = struct{}{}
	b.seenOrder = append(b.seenOrder, id)
	return true
}
