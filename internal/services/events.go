package services

import (
	"context"
	"time"

	rabbit "marketplace/internal/infra/rabbitmq"
	"marketplace/internal/infra/workers"

	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// publishAsync hands the event to the runner. Failures are logged only; the
// write that produced the event has already succeeded.
func publishAsync(runner workers.Runner, pub rabbit.PublisherInterface, pattern string, data any) {
	if pub == nil {
		return
	}
	runner.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := pub.Publish(ctx, pattern, data); err != nil {
			zap.L().Warn("events: publish failed", zap.String("pattern", pattern), zap.Error(err))
		}
	})
}
