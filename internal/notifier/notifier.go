package notifier

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"RSIWatch/internal/backoff"
	"RSIWatch/internal/recorder"
)

// Endpoint is one delivery target for an alert.
type Endpoint interface {
	Name() string
	Send(ctx context.Context, title, body string) error
}

// EndpointInfo describes an endpoint for display. Target never contains credentials.
type EndpointInfo struct {
	Name   string
	Target string
}

type targeter interface {
	Target() string
}

// Notifier fans an alert out to every configured endpoint.
type Notifier struct {
	endpoints []Endpoint
	retry     backoff.Policy
	recorder  recorder.Recorder
	logger    *zap.Logger
}

// NewNotifier creates a Notifier. Endpoint names are expected to be unique.
func NewNotifier(endpoints []Endpoint, retry backoff.Policy, rec recorder.Recorder, logger *zap.Logger) *Notifier {
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{endpoints: endpoints, retry: retry, recorder: rec, logger: logger}
}

// EndpointNames lists the endpoints in configuration order.
func (n *Notifier) EndpointNames() []string {
	names := make([]string, len(n.endpoints))
	for i, ep := range n.endpoints {
		names[i] = ep.Name()
	}
	return names
}

// Describe lists the endpoints for display.
func (n *Notifier) Describe() []EndpointInfo {
	infos := make([]EndpointInfo, len(n.endpoints))
	for i, ep := range n.endpoints {
		infos[i] = EndpointInfo{Name: ep.Name()}
		if t, ok := ep.(targeter); ok {
			infos[i].Target = t.Target()
		}
	}
	return infos
}

// Deliver sends title and body to all endpoints concurrently and reports per-endpoint success.
// An empty message is never sent.
func (n *Notifier) Deliver(ctx context.Context, title, body string) map[string]bool {
	results := make(map[string]bool, len(n.endpoints))
	if title == "" && body == "" {
		n.logger.Warn("empty alert, nothing delivered")
		return results
	}

	n.logger.Info("delivering alert",
		zap.String("title", title),
		zap.Int("content_length", len(body)),
		zap.Int("line_breaks", strings.Count(body, "\n")),
		zap.Int("endpoints", len(n.endpoints)),
	)

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for _, ep := range n.endpoints {
		ep := ep
		g.Go(func() error {
			err := n.send(ctx, ep, title, body)
			mu.Lock()
			results[ep.Name()] = err == nil
			mu.Unlock()
			n.recorder.RecordDelivery(ep.Name(), err == nil)
			if err != nil {
				n.logger.Error("delivery failed", zap.String("endpoint", ep.Name()), zap.Error(err))
				return fmt.Errorf("endpoint %s: %w", ep.Name(), err)
			}
			n.logger.Info("delivery succeeded", zap.String("endpoint", ep.Name()))
			return nil
		})
	}
	// plain Group: one failing endpoint must not cancel the others
	if err := g.Wait(); err != nil {
		n.logger.Warn("not every endpoint accepted the alert", zap.Error(err))
	}
	return results
}

func (n *Notifier) send(ctx context.Context, ep Endpoint, title, body string) error {
	retry := n.retry
	retry.OnRetry = func(attempt int, wait time.Duration, err error) {
		n.logger.Warn("delivery attempt failed, retrying",
			zap.String("endpoint", ep.Name()),
			zap.Int("attempt", attempt),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
	}
	return retry.Do(ctx, func(ctx context.Context) error {
		return ep.Send(ctx, title, body)
	})
}

// Close releases endpoints that hold connections.
func (n *Notifier) Close() error {
	var errs []error
	for _, ep := range n.endpoints {
		if c, ok := ep.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

// Succeeded reports whether at least one endpoint accepted the alert.
func Succeeded(results map[string]bool) bool {
	for _, ok := range results {
		if ok {
			return true
		}
	}
	return false
}
