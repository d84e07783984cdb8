// Package notify delivers browser push notifications to users.
package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
)

// ErrGone means the push service no longer accepts the subscription.
var ErrGone = errors.New("push subscription expired")

// Message is the payload shown by the service worker.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
}

// Notifier sends a message to a JSON-encoded push subscription.
type Notifier interface {
	Notify(ctx context.Context, subscription string, msg Message) error
}

// VAPID holds the application server keys.
type VAPID struct {
	PublicKey  string
	PrivateKey string
	Subject    string // "mailto:..." contact sent to push services
}

// WebPush sends notifications through the Web Push protocol.
type WebPush struct {
	keys   VAPID
	client webpush.HTTPClient
	ttl    int
	log    *zap.Logger
}

// NewWebPush returns a WebPush notifier. A nil client means http.DefaultClient.
func NewWebPush(keys VAPID, client webpush.HTTPClient, log *zap.Logger) *WebPush {
	if client == nil {
		client = http.DefaultClient
	}
	return &WebPush{keys: keys, client: client, ttl: 60 * 60 * 12, log: log}
}

// Notify encrypts msg for the subscription and posts it to its endpoint.
func (w *WebPush) Notify(ctx context.Context, subscription string, msg Message) error {
	var sub webpush.Subscription
	if err := json.Unmarshal([]byte(subscription), &sub); err != nil {
		return fmt.Errorf("decode subscription: %w", err)
	}
	if sub.Endpoint == "" {
		return errors.New("subscription has no endpoint")
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	resp, err := webpush.SendNotificationWithContext(ctx, payload, &sub, &webpush.Options{
		HTTPClient:      w.client,
		Subscriber:      w.keys.Subject,
		VAPIDPublicKey:  w.keys.PublicKey,
		VAPIDPrivateKey: w.keys.PrivateKey,
		TTL:             w.ttl,
		Urgency:         webpush.UrgencyNormal,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrGone
	case resp.StatusCode >= 300:
		return fmt.Errorf("push service responded %d", resp.StatusCode)
	}
	w.log.Debug("push delivered", zap.Int("status", resp.StatusCode))
	return nil
}

// Nop drops every message. Used when VAPID keys are not configured.
type Nop struct{}

func (Nop) Notify(context.Context, string, Message) error { return nil }

// New picks WebPush when keys are configured and Nop otherwise.
func New(keys VAPID, log *zap.Logger) Notifier {
	if keys.PublicKey == "" || keys.PrivateKey == "" {
		log.Info("push notifications disabled: no VAPID keys")
		return Nop{}
	}
	return NewWebPush(keys, nil, log)
}
