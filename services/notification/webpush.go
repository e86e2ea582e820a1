package notification

import (
	"context"
	"fmt"
	"net/http"

	"velora/config"
	"velora/utils"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"
)

// sendWebPush delivers the payload to every browser subscription the user
// has registered. Subscriptions the push service reports gone (404/410) are
// pruned. Without VAPID keys configured this is a no-op.
func (s *DefaultNotificationService) sendWebPush(ctx context.Context, userID string, payload []byte) error {
	cfg := config.AppConfig
	if cfg.VAPIDPrivateKey == "" || cfg.VAPIDPublicKey == "" {
		return nil
	}

	subs, err := s.Repo.ListPushSubscriptions(userID)
	if err != nil {
		return fmt.Errorf("list push subscriptions: %w", err)
	}

	opts := &webpush.Options{
		Subscriber:      cfg.VAPIDSubject,
		VAPIDPublicKey:  cfg.VAPIDPublicKey,
		VAPIDPrivateKey: cfg.VAPIDPrivateKey,
		TTL:             3600,
	}

	var lastErr error
	for _, sub := range subs {
		target := &webpush.Subscription{
			Endpoint: sub.Endpoint,
			Keys: webpush.Keys{
				P256dh: sub.P256dhKey,
				Auth:   sub.AuthKey,
			},
		}

		resp, err := webpush.SendNotificationWithContext(ctx, payload, target, opts)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
			if err := s.Repo.DeletePushSubscription(sub.Endpoint); err != nil {
				utils.GetLogger().Warn("webpush: failed to prune dead subscription",
					zap.String("endpoint", sub.Endpoint), zap.Error(err))
			}
		}
		resp.Body.Close()
	}
	return lastErr
}
