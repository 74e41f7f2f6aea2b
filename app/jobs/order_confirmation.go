// Package jobs holds the background jobs dispatched through the queue.
// Every job type must be registered at boot so workers can deserialize it.
package jobs

import (
	"fmt"

	"github.com/emberwick/storefront/config"
	"github.com/emberwick/storefront/pkg/notification"
	"github.com/emberwick/storefront/pkg/queue"
)

// RegisterAll registers every job type with the queue. Called once at boot
// before workers start.
func RegisterAll() {
	queue.Register("jobs.OrderConfirmation", func() queue.Job {
		return &OrderConfirmation{}
	})
}

// OrderConfirmation emails the customer their order receipt and pings the
// ops Slack channel. The payload is self-contained so the job survives
// serialization through the queue driver.
type OrderConfirmation struct {
	OrderID uint   `json:"orderId"`
	Email   string `json:"email"`
	Total   string `json:"total"`
}

func (j OrderConfirmation) Handle() error {
	errs := notification.Send(j.Email, &orderPlaced{
		OrderID: j.OrderID,
		Email:   j.Email,
		Total:   j.Total,
	})
	if len(errs) > 0 {
		return fmt.Errorf("order confirmation %d: %v", j.OrderID, errs[0])
	}
	return nil
}

type orderPlaced struct {
	OrderID uint
	Email   string
	Total   string
}

func (n *orderPlaced) Via() []string {
	channels := []string{"mail"}
	if config.Get("SLACK_WEBHOOK_URL", "") != "" {
		channels = append(channels, "slack")
	}
	return channels
}

func (n *orderPlaced) ToMail() notification.MailData {
	return notification.MailData{
		Subject: fmt.Sprintf("Your Emberwick order #%d", n.OrderID),
		Body: fmt.Sprintf(
			"<h1>Thanks for your order!</h1><p>Order #%d has been received. Total: $%s.</p><p>We'll email you again when it ships.</p>",
			n.OrderID, n.Total),
		Text: fmt.Sprintf("Thanks for your order! Order #%d received, total $%s.", n.OrderID, n.Total),
	}
}

func (n *orderPlaced) ToSlack() notification.SlackData {
	return notification.SlackData{
		Text: fmt.Sprintf("New order #%d (%s) for $%s", n.OrderID, n.Email, n.Total),
	}
}
