package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// NtfyClient sends notifications to an ntfy server
type NtfyClient struct {
	server     string
	topic      string
	httpClient *http.Client
}

// NewNtfyClient creates a new ntfy client
func NewNtfyClient(server, topic string) *NtfyClient {
	return &NtfyClient{
		server: strings.TrimRight(server, "/"),
		topic:  topic,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Send posts a notification to the configured topic
func (c *NtfyClient) Send(notification Notification) error {
	if c.topic == "" {
		return fmt.Errorf("ntfy topic not configured")
	}

	payload := map[string]interface{}{
		"topic":   c.topic,
		"title":   notification.Title,
		"message": notification.Message,
		"tags":    []string{"run-all", notification.Tag},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, c.server+"/", bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ntfy returned status %d", resp.StatusCode)
	}

	return nil
}
