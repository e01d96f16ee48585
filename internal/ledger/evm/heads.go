package evm

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/event"
	"go.uber.org/zap"
)

const maxResubscribeBackoff = time.Minute

// WatchHeads emits on the returned channel for every new block until ctx is done.
// Signals are coalesced: a slow reader observes at most one pending wake-up.
func WatchHeads(ctx context.Context, subscriber HeadSubscriber, logger *zap.Logger) <-chan struct{} {
	logger = logger.Named("head_signal")
	signal := make(chan struct{}, 1)
	headers := make(chan *types.Header, 16)

	sub := event.ResubscribeErr(maxResubscribeBackoff, func(ctx context.Context, lastErr error) (event.Subscription, error) {
		if lastErr != nil {
			logger.Warn("head subscription dropped, resubscribing", zap.Error(lastErr))
		}
		return subscriber.SubscribeNewHead(ctx, headers)
	})

	go func() {
		defer sub.Unsubscribe()
		for {
			select {
			case <-ctx.Done():
				return
			case header := <-headers:
				logger.Debug("new head", zap.Uint64("height", header.Number.Uint64()))
				select {
				case signal <- struct{}{}:
				default:
				}
			}
		}
	}()

	return signal
}
