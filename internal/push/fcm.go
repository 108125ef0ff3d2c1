// Package push delivers fire-and-forget push notifications to a user's
// registered devices.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/beaconsafety/beacon-server/internal/docstore"
	"github.com/beaconsafety/beacon-server/internal/logging"
	"github.com/beaconsafety/beacon-server/internal/models"
)

const fcmScope = "https://www.googleapis.com/auth/firebase.messaging"

const deviceTokenCollection = "deviceTokens"

// FCMSender sends via the FCM HTTP v1 API to every device token
// registered for the recipient. Delivery is best effort: a failed device
// is logged and skipped.
type FCMSender struct {
	projectID   string
	tokenSource oauth2.TokenSource
	client      *http.Client
	store       docstore.Store
}

func NewFCMSender(ctx context.Context, projectID, credentialsPath string, store docstore.Store) (*FCMSender, error) {
	if strings.TrimSpace(credentialsPath) == "" {
		return nil, fmt.Errorf("fcm credentials path required")
	}
	raw, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("read fcm credentials: %w", err)
	}
	creds, err := google.CredentialsFromJSON(ctx, raw, fcmScope)
	if err != nil {
		return nil, fmt.Errorf("load fcm credentials: %w", err)
	}
	if projectID == "" {
		projectID = creds.ProjectID
	}
	if projectID == "" {
		return nil, fmt.Errorf("fcm project id required")
	}
	return &FCMSender{
		projectID:   projectID,
		tokenSource: creds.TokenSource,
		client:      http.DefaultClient,
		store:       store,
	}, nil
}

func (s *FCMSender) Send(ctx context.Context, userID, title, body string) error {
	docs, err := s.store.Query(ctx, deviceTokenCollection, docstore.Eq("userId", userID))
	if err != nil {
		return fmt.Errorf("listing device tokens: %w", err)
	}

	for _, doc := range docs {
		var device models.DeviceToken
		if err := doc.DataTo(&device); err != nil {
			continue
		}
		if err := s.sendToDevice(ctx, device.Token, title, body); err != nil {
			logging.Warn("Push send failed for device", map[string]interface{}{
				"user_id": userID,
				"error":   err.Error(),
			})
		}
	}
	return nil
}

type fcmRequest struct {
	Message fcmMessage `json:"message"`
}

type fcmMessage struct {
	Token        string          `json:"token"`
	Notification fcmNotification `json:"notification"`
}

type fcmNotification struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

func (s *FCMSender) sendToDevice(ctx context.Context, token, title, body string) error {
	payload, err := json.Marshal(fcmRequest{
		Message: fcmMessage{
			Token:        token,
			Notification: fcmNotification{Title: title, Body: body},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal fcm payload: %w", err)
	}

	accessToken, err := s.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("fcm access token: %w", err)
	}

	url := fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", s.projectID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build fcm request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken.AccessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send fcm request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("fcm responded %d: %s", resp.StatusCode, string(detail))
	}
	return nil
}
