package push

import (
	"context"

	"github.com/beaconsafety/beacon-server/internal/logging"
)

// ConsoleSender logs notifications instead of delivering them. Used in
// development and when no push provider is configured.
type ConsoleSender struct{}

func NewConsoleSender() *ConsoleSender {
	return &ConsoleSender{}
}

func (s *ConsoleSender) Send(ctx context.Context, userID, title, body string) error {
	logging.Info("Push notification", map[string]interface{}{
		"user_id": userID,
		"title":   title,
		"body":    body,
	})
	return nil
}
