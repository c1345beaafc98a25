package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/IBM/sarama"

	"tradepost/internal/app/policies"
)

// recipientFields are the payload keys that name a participant to notify.
var recipientFields = []string{"owner", "counterparty", "participant_id", "claimant_id", "reviewee_id"}

// EventFanout consumes published domain events and pushes a notification to
// every participant named in the payload. Delivery is best effort; a failed
// send is logged and the message is still marked consumed.
type EventFanout struct {
	Notifier policies.Notifier
	Logger   *slog.Logger
}

type eventEnvelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

func (f EventFanout) Handle(ctx context.Context, msg *sarama.ConsumerMessage) error {
	if f.Notifier == nil {
		return nil
	}
	var envelope eventEnvelope
	if err := json.Unmarshal(msg.Value, &envelope); err != nil {
		return fmt.Errorf("notify: decode event envelope: %w", err)
	}
	var data map[string]any
	if len(envelope.Data) > 0 {
		if err := json.Unmarshal(envelope.Data, &data); err != nil {
			return fmt.Errorf("notify: decode event data: %w", err)
		}
	}
	for _, recipient := range recipients(data) {
		if err := f.Notifier.Send(ctx, recipient, envelope.Type, data); err != nil && f.Logger != nil {
			f.Logger.Warn("notification delivery failed", "recipient", recipient, "event", envelope.Type, "error", err)
		}
	}
	return nil
}

func recipients(data map[string]any) []string {
	seen := map[string]bool{}
	var out []string
	for _, field := range recipientFields {
		id, ok := data[field].(string)
		if !ok || id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// LogNotifier is the dev Notifier: it writes deliveries to the log instead of
// a push transport.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n LogNotifier) Send(ctx context.Context, to string, event string, data any) error {
	if n.Logger != nil {
		n.Logger.Info("notification", "to", to, "event", event)
	}
	return nil
}
