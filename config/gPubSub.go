package config

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// AlertMessage is published whenever an alert row is created by the storage layer.
type AlertMessage struct {
	OrganizationId string    `json:"organization_id"`
	AlertType      string    `json:"alert_type"`
	ReferenceType  string    `json:"reference_type"`
	ReferenceId    int       `json:"reference_id"`
	PropertyId     *int      `json:"property_id,omitempty"`
	Severity       string    `json:"severity,omitempty"`
	Message        string    `json:"message"`
	CreatedAt      time.Time `json:"created_at"`
	CorrelationId  string    `json:"correlation_id,omitempty"`
}

var (
	pubsubClient   *pubsub.Client
	pubsubClientMu sync.Mutex
)

func getPubSubProjectID() string {
	if v := os.Getenv("PUBSUB_PROJECT_ID"); v != "" {
		return v
	}
	if v := os.Getenv("GOOGLE_CLOUD_PROJECT"); v != "" {
		return v
	}
	return os.Getenv("GCP_PROJECT")
}

// getPubSubClient lazily creates the shared client. Unlike the DB and Redis
// connections it does not retry: alert publishing must never hold up a request.
func getPubSubClient(ctx context.Context) (*pubsub.Client, error) {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		return pubsubClient, nil
	}

	projectID := getPubSubProjectID()
	if projectID == "" {
		return nil, errors.New("PUBSUB_PROJECT_ID/GOOGLE_CLOUD_PROJECT not set")
	}

	var (
		c   *pubsub.Client
		err error
	)
	if credJSON := os.Getenv("PUBSUB_CREDENTIALS_JSON"); credJSON != "" {
		c, err = pubsub.NewClient(ctx, projectID, option.WithCredentialsJSON([]byte(credJSON)))
	} else {
		// Application Default Credentials
		c, err = pubsub.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}
	pubsubClient = c
	log.Printf("pubsub client ready (project_id=%s)", projectID)
	return c, nil
}

// PublishAlert sends msg to ALERTS_PUBSUB_TOPIC and returns the server-assigned id.
// Returns ("", nil) when no topic is configured.
func PublishAlert(ctx context.Context, msg AlertMessage) (string, error) {
	topicName := AlertsTopic()
	if topicName == "" {
		return "", nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := getPubSubClient(ctx)
	if err != nil {
		return "", err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return "", err
	}
	result := client.Topic(topicName).Publish(ctx, &pubsub.Message{
		Data: data,
		Attributes: map[string]string{
			"organization_id": msg.OrganizationId,
			"alert_type":      msg.AlertType,
		},
	})
	return result.Get(ctx)
}

// ClosePubSub releases the shared client on shutdown.
func ClosePubSub() {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		_ = pubsubClient.Close()
		pubsubClient = nil
	}
}
