package bot

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"storefront/internal/domain"
	rabbit "storefront/internal/infra/rabbitmq"
)

// Relay turns queued chat notifications into messages on the matching channel.
// A disconnected channel drops the job; order state never depends on delivery.
type Relay struct {
	senders map[domain.ChatChannel]Sender
}

func NewRelay(senders map[domain.ChatChannel]Sender) *Relay {
	return &Relay{senders: senders}
}

// RoutingKeys lists the queue bindings for the channels this relay serves.
func (r *Relay) RoutingKeys() []string {
	keys := make([]string, 0, len(r.senders))
	for ch := range r.senders {
		keys = append(keys, ch.RoutingKey())
	}
	return keys
}

func (r *Relay) Handle(ctx context.Context, msg rabbit.Message) error {
	var n domain.ChatNotification
	if err := json.Unmarshal(msg.Data, &n); err != nil {
		return fmt.Errorf("decode chat notification: %w", err)
	}

	sender, ok := r.senders[n.Channel]
	if !ok {
		return fmt.Errorf("no sender for channel %q", n.Channel)
	}
	if !sender.Connected(ctx) {
		log.Printf("%s session not connected, skipping notification for %s", n.Channel, n.InvoiceNumber)
		return nil
	}

	if err := sender.Send(ctx, n.Recipient, n.Text); err != nil {
		return err
	}
	log.Printf("%s notification for %s delivered", n.Channel, n.InvoiceNumber)
	return nil
}
