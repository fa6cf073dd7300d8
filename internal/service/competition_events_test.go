package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestCompetitionEventsBroadcastLocally(t *testing.T) {
	bus := NewCompetitionEvents(nil, nil, "", zerolog.Nop())
	events, cancel := bus.Subscribe()
	defer cancel()

	bus.Publish(context.Background(), CompetitionEvent{Type: EventRoundDeployed, Round: 1, Message: "Round 1 is live"})

	select {
	case event := <-events:
		require.Equal(t, EventRoundDeployed, event.Type)
		require.Equal(t, 1, event.Round)
		require.NotEmpty(t, event.ID)
		require.False(t, event.OccurredAt.IsZero())
	case <-time.After(time.Second):
		t.Fatal("expected event")
	}
}

func TestCompetitionEventsDropForSlowSubscribers(t *testing.T) {
	bus := NewCompetitionEvents(nil, nil, "", zerolog.Nop())
	events, cancel := bus.Subscribe()
	defer cancel()

	for i := 0; i < competitionEventBuffer+5; i++ {
		bus.Publish(context.Background(), CompetitionEvent{Type: EventResultsPublished})
	}
	require.Len(t, events, competitionEventBuffer)
}

func TestCompetitionEventsCancelIsIdempotent(t *testing.T) {
	bus := NewCompetitionEvents(nil, nil, "", zerolog.Nop())
	events, cancel := bus.Subscribe()
	cancel()
	cancel()

	_, open := <-events
	require.False(t, open)
	bus.Publish(context.Background(), CompetitionEvent{Type: EventRoundFinalized})
}

func TestCompetitionEventsIgnoreOwnPeerMessages(t *testing.T) {
	bus := NewCompetitionEvents(nil, nil, "", zerolog.Nop()).(*competitionEventBus)
	events, cancel := bus.Subscribe()
	defer cancel()

	own, err := json.Marshal(competitionEventEnvelope{Source: bus.nodeID, Event: CompetitionEvent{Type: EventRoundDeployed}})
	require.NoError(t, err)
	bus.handlePeerEvent(own)
	require.Len(t, events, 0)

	peer, err := json.Marshal(competitionEventEnvelope{Source: "other-node", Event: CompetitionEvent{Type: EventCertificatesGenerated}})
	require.NoError(t, err)
	bus.handlePeerEvent(peer)
	require.Len(t, events, 1)
}

func TestCompetitionEventsRelayThroughRedis(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	publisher := NewCompetitionEvents(client, nil, "hackathon", zerolog.Nop())
	receiver := NewCompetitionEvents(client, nil, "hackathon", zerolog.Nop())
	receiver.Start(ctx)

	events, cancel := receiver.Subscribe()
	defer cancel()

	require.Eventually(t, func() bool {
		publisher.Publish(ctx, CompetitionEvent{Type: EventRoundDeployed, Round: 2})
		select {
		case event := <-events:
			return event.Type == EventRoundDeployed && event.Round == 2
		default:
			return false
		}
	}, 2*time.Second, 50*time.Millisecond)
}

func TestCompetitionEventsPreferNATSForPeers(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})

	both := NewCompetitionEvents(client, &nats.Conn{}, "hackathon", zerolog.Nop()).(*competitionEventBus)
	require.Equal(t, relayNATS, both.relay())
	require.Equal(t, "hackathon.competition.events", both.natsSubject)

	redisOnly := NewCompetitionEvents(client, nil, "hackathon", zerolog.Nop()).(*competitionEventBus)
	require.Equal(t, relayRedis, redisOnly.relay())

	local := NewCompetitionEvents(client, &nats.Conn{}, "", zerolog.Nop()).(*competitionEventBus)
	require.Equal(t, relayNone, local.relay())
}

func TestCompetitionEventsDeliverPeerEventOnce(t *testing.T) {
	bus := NewCompetitionEvents(nil, nil, "", zerolog.Nop()).(*competitionEventBus)
	events, cancel := bus.Subscribe()
	defer cancel()

	payload, err := json.Marshal(competitionEventEnvelope{
		Source: "node-a",
		Event:  CompetitionEvent{ID: "evt-1", Type: EventResultsPublished, Round: 1},
	})
	require.NoError(t, err)

	bus.handlePeerEvent(payload)
	bus.handlePeerEvent(payload)
	require.Len(t, events, 1)

	next, err := json.Marshal(competitionEventEnvelope{
		Source: "node-a",
		Event:  CompetitionEvent{ID: "evt-2", Type: EventCertificatesGenerated},
	})
	require.NoError(t, err)
	bus.handlePeerEvent(next)
	require.Len(t, events, 2)
}

func TestCompetitionEventsForgetOldPeerEvents(t *testing.T) {
	bus := NewCompetitionEvents(nil, nil, "", zerolog.Nop()).(*competitionEventBus)

	for i := 0; i < peerEventMemory+1; i++ {
		require.True(t, bus.remember(fmt.Sprintf("evt-%d", i)))
	}
	require.Len(t, bus.seen, peerEventMemory)
	require.True(t, bus.remember("evt-0"))
	require.False(t, bus.remember(fmt.Sprintf("evt-%d", peerEventMemory)))
	require.True(t, bus.remember(""))
	require.True(t, bus.remember(""))
}

func TestCompetitionEventsRedisRelayDeliversOnce(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	publisher := NewCompetitionEvents(client, nil, "hackathon", zerolog.Nop())
	receiver := NewCompetitionEvents(client, nil, "hackathon", zerolog.Nop())
	receiver.Start(ctx)
	events, cancel := receiver.Subscribe()
	defer cancel()

	require.Eventually(t, func() bool {
		return mini.PubSubNumSub("hackathon:competition-events")["hackathon:competition-events"] == 1
	}, 2*time.Second, 10*time.Millisecond)

	publisher.Publish(ctx, CompetitionEvent{ID: "evt-once", Type: EventRoundFinalized, Round: 1})

	select {
	case event := <-events:
		require.Equal(t, "evt-once", event.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("expected relayed event")
	}
	require.Never(t, func() bool { return len(events) > 0 }, 200*time.Millisecond, 20*time.Millisecond)
}

func TestCompetitionEventsRedisRelaySurvivesRestart(t *testing.T) {
	mini, err := miniredis.Run()
	require.NoError(t, err)
	defer mini.Close()

	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	publisher := NewCompetitionEvents(client, nil, "hackathon", zerolog.Nop())
	receiver := NewCompetitionEvents(client, nil, "hackathon", zerolog.Nop()).(*competitionEventBus)
	receiver.retryDelay = 10 * time.Millisecond
	receiver.Start(ctx)
	events, cancel := receiver.Subscribe()
	defer cancel()

	mini.Close()
	require.NoError(t, mini.Restart())

	require.Eventually(t, func() bool {
		publisher.Publish(ctx, CompetitionEvent{Type: EventRoundDeployed, Round: 1})
		select {
		case event := <-events:
			return event.Type == EventRoundDeployed
		default:
			return false
		}
	}, 5*time.Second, 50*time.Millisecond)
}
