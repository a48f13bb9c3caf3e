package config

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// RaidEventMessage is published when an imported raid has been committed.
type RaidEventMessage struct {
	Type          string    `json:"type"`
	GuildId       string    `json:"guild_id"`
	RaidId        int       `json:"raid_id"`
	TeamId        int       `json:"team_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	ReportCode    string    `json:"report_code,omitempty"`
	PresentCount  int       `json:"present_count"`
	AbsentCount   int       `json:"absent_count"`
	CorrelationId string    `json:"correlation_id,omitempty"`
}

const pubsubClientAttempts = 3

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

// RaidEventsTopic is empty when raid events are disabled.
func RaidEventsTopic() string {
	return strings.TrimSpace(os.Getenv("RAID_EVENTS_TOPIC"))
}

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return ""
}

// GetPubSubClient returns a Pub/Sub client. It uses Application Default Credentials
// unless PUBSUB_CREDENTIALS_JSON is provided.
func GetPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}
	credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON")

	var lastErr error
	for attempt := 1; attempt <= pubsubClientAttempts; attempt++ {
		var (
			c   *pubsub.Client
			err error
		)
		if credJSON != "" {
			c, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
		} else {
			c, err = pubsub.NewClient(ctx, projectID)
		}
		if err == nil {
			pubsubClient = c
			log.Printf("pubsub client ready (project_id=%s attempt=%d)", projectID, attempt)
			return c, nil
		}
		lastErr = err
		log.Printf("failed to init pubsub client (project_id=%s attempt=%d): %v", projectID, attempt, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}
	return nil, lastErr
}

// PublishRaidEvent publishes msg to RAID_EVENTS_TOPIC and returns the server-assigned message ID.
func PublishRaidEvent(ctx context.Context, msg RaidEventMessage) (string, error) {
	topicName := RaidEventsTopic()
	if topicName == "" {
		return "", errors.New("RAID_EVENTS_TOPIC is required")
	}
	client, err := GetPubSubClient(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	result := client.Topic(topicName).Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: map[string]string{"type": msg.Type, "guild_id": msg.GuildId},
	})
	return result.Get(ctx)
}
