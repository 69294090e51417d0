// Package notify announces settled predictions and promoted submissions on
// Telegram and Discord.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alanyoungcy/trendsonar/internal/domain"
)

// Sender delivers one chat message.
type Sender interface {
	Send(ctx context.Context, title, message string) error
	Name() string
}

// Notifier forwards formatted engine events to its senders. Only event types
// in the allowed set are forwarded; an empty set allows everything.
type Notifier struct {
	senders []Sender
	events  map[domain.EventType]bool
	logger  *slog.Logger
}

// NewNotifier creates a Notifier that delivers to senders. events lists the
// engine event types to forward.
func NewNotifier(senders []Sender, events []string, logger *slog.Logger) *Notifier {
	allowed := make(map[domain.EventType]bool, len(events))
	for _, e := range events {
		if e = strings.TrimSpace(e); e != "" {
			allowed[domain.EventType(e)] = true
		}
	}
	return &Notifier{
		senders: senders,
		events:  allowed,
		logger:  logger.With(slog.String("component", "notifier")),
	}
}

// Enabled reports whether any sender is configured.
func (n *Notifier) Enabled() bool { return len(n.senders) > 0 }

// NotifyEvent formats and sends an engine event. Events that are filtered out
// or carry nothing worth announcing are skipped.
func (n *Notifier) NotifyEvent(ctx context.Context, evt domain.Event) error {
	if len(n.events) > 0 && !n.events[evt.Type] {
		n.logger.DebugContext(ctx, "notifier: event filtered out", slog.String("event", string(evt.Type)))
		return nil
	}
	title, message, ok := Format(evt)
	if !ok {
		return nil
	}
	return n.dispatch(ctx, title, message)
}

// dispatch delivers to every sender even when some fail. Failures come back
// joined, each prefixed with the sender name.
func (n *Notifier) dispatch(ctx context.Context, title, message string) error {
	var errs []error
	for _, s := range n.senders {
		err := s.Send(ctx, title, message)
		if err == nil {
			n.logger.DebugContext(ctx, "notifier: sent", slog.String("sender", s.Name()), slog.String("title", title))
			continue
		}
		n.logger.WarnContext(ctx, "notifier: sender failed",
			slog.String("sender", s.Name()),
			slog.String("error", err.Error()),
		)
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return nil
}
