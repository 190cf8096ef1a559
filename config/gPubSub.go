package config

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"sync"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/sirupsen/logrus"
	"google.golang.org/api/option"
)

// NotificationMessage is the payload published for operator-facing events (low stock, etc).
type NotificationMessage struct {
	ID            int       `json:"id"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	ReferenceId   int       `json:"reference_id"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationId string    `json:"correlation_id"`
}

// ErrPubSubDisabled is returned when no notification topic is configured.
var ErrPubSubDisabled = errors.New("pubsub notifications disabled")

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

// NotificationTopic returns PUBSUB_NOTIFICATION_TOPIC; empty disables publishing.
func NotificationTopic() string {
	return os.Getenv("PUBSUB_NOTIFICATION_TOPIC")
}

// getPubSubClient does a single attempt; notification publishing is best-effort
// and must not hold up the request that produced it.
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
		// Application Default Credentials.
		c, err = pubsub.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, err
	}
	pubsubClient = c
	logg.WithFields(logrus.Fields{"field": "pubsub", "project_id": projectID}).Info("pubsub client ready")
	return c, nil
}

// PublishNotification publishes msg to the notification topic and returns the server-assigned id.
func PublishNotification(ctx context.Context, msg NotificationMessage) (string, error) {
	topicName := NotificationTopic()
	if topicName == "" {
		return "", ErrPubSubDisabled
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
			"type": msg.Type,
		},
	})
	return result.Get(ctx)
}

// ClosePubSub releases the client on shutdown.
func ClosePubSub() {
	pubsubClientMu.Lock()
	defer pubsubClientMu.Unlock()
	if pubsubClient != nil {
		_ = pubsubClient.Close()
		pubsubClient = nil
	}
}
