package mqtt

import (
	"context"
	"fmt"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/pkg/bus"
	"github.com/PancyStudios/ArcaneBotGo/pkg/logger"
)

// LeaderboardTopic is the request topic answered with a guild's top users
const LeaderboardTopic = "leaderboard"

// leaderboardTimeout bounds a leaderboard query made for a request
const leaderboardTimeout = 5 * time.Second

// Publisher is the publishing half of the communicator
type Publisher interface {
	Publish(topic string, payload interface{}) error
}

// EventTopic returns the topic an event type is published on
func EventTopic(t bus.EventType) string {
	return EventPrefix + string(t)
}

// EventSink forwards bus events to the broker
func EventSink(pub Publisher) bus.Handler {
	return func(e bus.Event) {
		if err := pub.Publish(EventTopic(e.Type), e); err != nil {
			logger.Debug(fmt.Sprintf("No se pudo publicar %s: %v", e.Type, err), "MQTT")
		}
	}
}

// TopFunc returns the best ranked users of a guild
type TopFunc func(ctx context.Context, guildID string, limit int) (interface{}, error)

// LeaderboardHandler answers {guildId, limit} requests
func LeaderboardHandler(top TopFunc) RequestHandler {
	return func(payload map[string]interface{}) (interface{}, error) {
		guildID, limit, err := parseLeaderboardRequest(payload)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), leaderboardTimeout)
		defer cancel()
		return top(ctx, guildID, limit)
	}
}

// parseLeaderboardRequest reads guildId and the optional limit. JSON numbers
// arrive as float64.
func parseLeaderboardRequest(payload map[string]interface{}) (string, int, error) {
	guildID, _ := payload["guildId"].(string)
	if guildID == "" {
		return "", 0, fmt.Errorf("guildId is required")
	}

	limit := 0
	switch v := payload["limit"].(type) {
	case nil:
	case float64:
		limit = int(v)
	case string:
		if _, err := fmt.Sscanf(v, "%d", &limit); err != nil {
			return "", 0, fmt.Errorf("invalid limit %q", v)
		}
	default:
		return "", 0, fmt.Errorf("invalid limit %v", v)
	}
	return guildID, limit, nil
}
