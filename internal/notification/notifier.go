// Package notification turns delivery state transitions into customer SMS
// messages. The engine and services never talk to a gateway themselves; they
// call OnStateTransition after a successful transition and this package
// decides whether anything goes out.
package notification

import (
	"context"

	"delivery-service/internal/model"
)

// Notifier receives every successful delivery state transition.
type Notifier interface {
	OnStateTransition(ctx context.Context, doc *model.DeliveryDocument, newStatus model.DeliveryStatus)
}

// NopNotifier ignores all transitions.
type NopNotifier struct{}

func (NopNotifier) OnStateTransition(context.Context, *model.DeliveryDocument, model.DeliveryStatus) {
}

// Sender is the SMS transport boundary. The gateway integration lives
// outside this service; in-tree the sender is a structured log.
type Sender interface {
	Send(ctx context.Context, phone, message string) error
}
