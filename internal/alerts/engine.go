// Package alerts implements the low-stock alert stream: a per-
// subscriber polling loop that scans the product repository on a fixed
// cadence and emits one alert per product at or below the subscriber's
// threshold, every cycle, until the subscriber cancels.
package alerts

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/inventory-service/internal/domain"
	"github.com/spec-kit/inventory-service/internal/observability"
	"github.com/spec-kit/inventory-service/internal/repository"
)

// StockAlert is one emitted alert event.
type StockAlert struct {
	ProductID       string    `json:"productId"`
	ProductName     string    `json:"productName"`
	CurrentQuantity int       `json:"currentQuantity"`
	Message         string    `json:"message"`
	Timestamp       time.Time `json:"timestamp"`
}

// Engine creates alert subscriptions over a shared product repository.
type Engine struct {
	products repository.ProductRepository
	interval time.Duration
	metrics  *observability.Metrics
	logger   *zap.Logger
}

// NewEngine builds an engine polling at the given interval. metrics may
// be nil.
func NewEngine(products repository.ProductRepository, interval time.Duration, metrics *observability.Metrics, logger *zap.Logger) *Engine {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{products: products, interval: interval, metrics: metrics, logger: logger}
}

// Subscribe starts a polling loop for the given identity and threshold
// and returns the alert channel. Any identity may subscribe, guest
// included. The loop runs until ctx is cancelled; the channel closes
// within one polling interval of cancellation.
//
// Alerts are level-triggered: a product that stays at or below the
// threshold re-alerts every cycle.
func (e *Engine) Subscribe(ctx context.Context, identity domain.Identity, threshold int) <-chan StockAlert {
	out := make(chan StockAlert)

	e.logger.Info("alert subscription started",
		zap.String("subject", identity.Subject),
		zap.String("role", string(identity.Role)),
		zap.Int("threshold", threshold))

	e.metrics.SubscriptionStarted()
	go func() {
		defer close(out)
		defer e.metrics.SubscriptionEnded()

		ticker := time.NewTicker(e.interval)
		defer ticker.Stop()

		for {
			if !e.scan(ctx, threshold, out) {
				return
			}
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()

	return out
}

// scan takes one snapshot of the repository and emits alerts for every
// product at or below the threshold, in repository order. It returns
// false once ctx is cancelled. No lock is held between cycles; each
// scan reads a fresh snapshot.
func (e *Engine) scan(ctx context.Context, threshold int, out chan<- StockAlert) bool {
	products, err := e.products.List(ctx)
	if err != nil {
		// a failed scan skips the cycle, it does not end the subscription
		e.logger.Warn("alert scan failed", zap.Error(err))
		return ctx.Err() == nil
	}

	for _, p := range products {
		if p.Quantity > threshold {
			continue
		}
		alert := StockAlert{
			ProductID:       p.ID,
			ProductName:     p.Name,
			CurrentQuantity: p.Quantity,
			Message:         fmt.Sprintf("Product %s is running low! Current quantity: %d", p.Name, p.Quantity),
			Timestamp:       time.Now(),
		}
		select {
		case out <- alert:
			e.metrics.RecordAlert()
		case <-ctx.Done():
			return false
		}
	}
	return true
}
