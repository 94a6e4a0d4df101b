package notifier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"micron/internal/models"
)

// OpsNotifier pushes order summaries to the back-office channel.
type OpsNotifier interface {
	NotifyOrderCreated(order *models.Order) error
	NotifyOrderPaid(order *models.Order) error
}

// WebhookOpsNotifier posts order summaries as JSON to an incoming-webhook
// URL (Slack, Mattermost and friends all accept the {"text": ...} shape).
type WebhookOpsNotifier struct {
	url    string
	client *http.Client
}

// NewWebhookOpsNotifier creates a new WebhookOpsNotifier.
func NewWebhookOpsNotifier(url string) *WebhookOpsNotifier {
	return &WebhookOpsNotifier{
		url:    url,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// NotifyOrderCreated announces a freshly placed order.
func (n *WebhookOpsNotifier) NotifyOrderCreated(order *models.Order) error {
	return n.post(buildOrderMessage(order, false))
}

// NotifyOrderPaid announces a settled order.
func (n *WebhookOpsNotifier) NotifyOrderPaid(order *models.Order) error {
	return n.post(buildOrderMessage(order, true))
}

func (n *WebhookOpsNotifier) post(text string) error {
	payload, err := json.Marshal(map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("failed to encode ops notification: %w", err)
	}
	resp, err := n.client.Post(n.url, "application/json", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to post ops notification: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("ops webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func buildOrderMessage(order *models.Order, paid bool) string {
	var b strings.Builder

	if paid {
		fmt.Fprintf(&b, "Order %s - PAID\n", order.ID)
	} else {
		fmt.Fprintf(&b, "Order %s - CREATED\n", order.ID)
	}
	fmt.Fprintf(&b, "Customer: %s %s <%s>\n", order.FirstName, order.LastName, order.Email)

	b.WriteString("Items:\n")
	if len(order.Items) == 0 {
		b.WriteString("  (no items)\n")
	}
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  - %s: %d pcs x %s = %s\n",
			item.ProductID, item.Quantity, item.Price.StringFixed(2), item.Cost().StringFixed(2))
	}

	if order.Discount > 0 {
		fmt.Fprintf(&b, "Discount: %d%% (-%s)\n", order.Discount, order.DiscountAmount().StringFixed(2))
	}
	if order.BonusPoints.IsPositive() {
		fmt.Fprintf(&b, "Bonus points: %s\n", order.BonusPoints.StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s\n", order.TotalCost().StringFixed(2))
	fmt.Fprintf(&b, "Address: %s, %s, %s\n", order.City, order.Address, order.PostalCode)

	if paid && order.StripeID != "" {
		fmt.Fprintf(&b, "Payment: https://dashboard.stripe.com/payments/%s\n", order.StripeID)
	}
	return b.String()
}
