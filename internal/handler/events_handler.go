package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hackathon-go-api/internal/middleware"
	"github.com/noah-isme/hackathon-go-api/internal/observability"
	"github.com/noah-isme/hackathon-go-api/internal/service"
)

const eventsPingInterval = 30 * time.Second

// EventConnected is the first frame written to every events client.
const EventConnected = "connected"

// EventsHandler streams competition events over a websocket.
type EventsHandler struct {
	events service.CompetitionEvents
	logger zerolog.Logger
}

// NewEventsHandler constructs the events handler.
func NewEventsHandler(events service.CompetitionEvents, logger zerolog.Logger) *EventsHandler {
	return &EventsHandler{
		events: events,
		logger: logger.With().Str("component", "events_handler").Logger(),
	}
}

// Register binds the websocket route under the provided router group.
func (h *EventsHandler) Register(router fiber.Router) {
	router.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			ctx := c.UserContext()
			if ctx == nil {
				ctx = context.Background()
			}
			c.Locals("request_ctx", middleware.ContextWithCorrelation(ctx, middleware.GetCorrelationID(c)))
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	router.Get("/ws", websocket.New(h.handleConnection))
}

func (h *EventsHandler) handleConnection(conn *websocket.Conn) {
	events, cancel := h.events.Subscribe()
	observability.EventClientsActive().Inc()
	defer func() {
		cancel()
		observability.EventClientsActive().Dec()
		_ = conn.Close()
	}()

	logger := h.logger.With().Interface("user_id", conn.Locals("user_id")).Logger()
	if ctx, ok := conn.Locals("request_ctx").(context.Context); ok {
		if correlation := middleware.CorrelationIDFromContext(ctx); correlation != "" {
			logger = logger.With().Str("correlation_id", correlation).Logger()
		}
	}
	logger.Info().Msg("events websocket connected")

	hello := service.CompetitionEvent{Type: EventConnected, Message: "subscribed to competition events", OccurredAt: time.Now().UTC()}
	if err := conn.WriteJSON(hello); err != nil {
		return
	}

	// Clients never send frames; reading only detects disconnects.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(eventsPingInterval)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				logger.Debug().Err(err).Msg("events write loop terminated")
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				logger.Debug().Err(err).Msg("events ping failed")
				return
			}
		case <-closed:
			logger.Info().Msg("events websocket disconnected")
			return
		}
	}
}
