// Package notify delivers lifecycle notifications. Delivery is best effort:
// Notify reports the outcome and callers log failures instead of failing.
package notify

import (
	"context"
	"log/slog"
)

type EventKind string

const (
	EventProjectCreated   EventKind = "project_created"
	EventProjectSubmitted EventKind = "project_submitted"
	EventProjectCompleted EventKind = "project_completed"
	EventContactReceived  EventKind = "contact_received"
)

// Event is one notification. An empty Recipient addresses the operator inbox.
type Event struct {
	Kind      EventKind
	Recipient string
	Data      map[string]string
}

// Result is the delivery outcome.
type Result struct {
	Success bool
	Err     error
}

func Delivered() Result { return Result{Success: true} }

func Failed(err error) Result { return Result{Err: err} }

type Notifier interface {
	Notify(ctx context.Context, event Event) Result
}

// LogNotifier writes events to the log. It is used when SMTP is not configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(ctx context.Context, event Event) Result {
	attrs := []any{"kind", event.Kind, "recipient", recipientLabel(event.Recipient)}
	for k, v := range event.Data {
		attrs = append(attrs, k, v)
	}
	n.log.InfoContext(ctx, "notification", attrs...)
	return Delivered()
}

func recipientLabel(r string) string {
	if r == "" {
		return "operator"
	}
	return r
}
