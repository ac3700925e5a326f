package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spedigo-next/internal/logger"
)

// Webhook ids stay claimed for a week; redelivery never arrives later.
const webhookClaimTTL = 7 * 24 * time.Hour

func webhookClaimKey(source, webhookID string) string {
	return fmt.Sprintf("webhook:%s:%s", source, webhookID)
}

// ClaimWebhook atomically claims a webhook delivery id. Returns true when
// this invocation owns the event. Fails open: without redis, or on a redis
// error, every delivery is treated as fresh and the downstream guards carry
// the dedupe burden.
func ClaimWebhook(ctx context.Context, source, webhookID string) bool {
	if strings.TrimSpace(webhookID) == "" {
		return true
	}
	if !Enabled() {
		return true
	}
	ok, err := redisClient.SetNX(ctx, buildKey(webhookClaimKey(source, webhookID)), time.Now().Unix(), webhookClaimTTL).Result()
	if err != nil {
		logger.Warnw("webhook_claim_failed",
			"source", source,
			"webhook_id", webhookID,
			"error", err,
		)
		return true
	}
	return ok
}
