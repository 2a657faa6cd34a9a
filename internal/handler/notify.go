package handler

import (
	"context"

	"github.com/freshcart/storefront/internal/domain/cart"
)

type messageKey struct{}

// withMessageCapture arms the context so cart notifications produced during
// the request land in the returned string.
func withMessageCapture(ctx context.Context) (context.Context, *string) {
	target := new(string)
	return context.WithValue(ctx, messageKey{}, target), target
}

var _ cart.Notifier = CaptureNotifier{}

// CaptureNotifier routes cart notifications back to the HTTP response of the
// request that triggered them. Notifications outside a request are dropped.
type CaptureNotifier struct{}

func (CaptureNotifier) Success(ctx context.Context, message string) { capture(ctx, message) }
func (CaptureNotifier) Info(ctx context.Context, message string)    { capture(ctx, message) }

func capture(ctx context.Context, message string) {
	if target, ok := ctx.Value(messageKey{}).(*string); ok {
		*target = message
	}
}
