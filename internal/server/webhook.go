package server

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
)

// flexibleID accepts a JSON string or number. Plex-ecosystem webhook
// senders are not consistent about which one they emit.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*f = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		*f = flexibleID(str)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*f = flexibleID(num.String())
	return nil
}

// webhookPayload is the notification body. The identifier may sit at the
// top level or nested under extra.
type webhookPayload struct {
	NotificationType string     `json:"notification_type"`
	PlexID           flexibleID `json:"plexId"`
	Extra            struct {
		PlexID flexibleID `json:"plexId"`
	} `json:"extra"`
}

// itemID returns the item identifier, preferring the nested field.
func (p *webhookPayload) itemID() string {
	if p.Extra.PlexID != "" {
		return string(p.Extra.PlexID)
	}
	return string(p.PlexID)
}

// parseWebhook reads the notification from either a multipart/form field
// named payload (Plex webhook style) or a raw JSON body.
func parseWebhook(c *gin.Context) (*webhookPayload, error) {
	raw := c.PostForm("payload")
	if raw == "" {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		raw = string(body)
	}
	if strings.TrimSpace(raw) == "" {
		return nil, fmt.Errorf("empty payload")
	}

	var payload webhookPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("malformed payload: %w", err)
	}
	return &payload, nil
}
