// Package notifier contains the consumer side of the order events queue:
// customer emails, the admin ops feed and the bonus-points credit that
// follows a successful payment.
package notifier

import (
	"fmt"
	"strings"

	"micron/internal/models"

	"github.com/wneessen/go-mail"
)

// Mailer sends customer-facing order emails. Implementations must be safe
// for concurrent use.
type Mailer interface {
	SendOrderConfirmation(order *models.Order) error
	SendOrderInvoice(order *models.Order) error
}

// SMTPConfig holds the SMTP connection details for the mailer.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPMailer sends order emails over SMTP.
type SMTPMailer struct {
	cfg SMTPConfig
}

// NewSMTPMailer creates a new SMTPMailer.
func NewSMTPMailer(cfg SMTPConfig) *SMTPMailer {
	return &SMTPMailer{cfg: cfg}
}

// SendOrderConfirmation emails the customer that their order was placed.
func (m *SMTPMailer) SendOrderConfirmation(order *models.Order) error {
	subject := fmt.Sprintf("Order nr. %s", order.ID)
	body := fmt.Sprintf(
		"Dear %s,\n\nYou have successfully placed an order. Your order ID is %s.\n",
		order.FirstName, order.ID,
	)
	return m.send(order.Email, subject, body)
}

// SendOrderInvoice emails the customer the invoice for a paid order.
func (m *SMTPMailer) SendOrderInvoice(order *models.Order) error {
	subject := fmt.Sprintf("Invoice no. %s", order.ID)

	var b strings.Builder
	fmt.Fprintf(&b, "Dear %s,\n\nThank you for your purchase. Your payment has been received.\n\n", order.FirstName)
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %s x%d @ %s = %s\n",
			item.ProductID, item.Quantity, item.Price.StringFixed(2), item.Cost().StringFixed(2))
	}
	if order.Discount > 0 {
		fmt.Fprintf(&b, "\nDiscount: %d%% (-%s)\n", order.Discount, order.DiscountAmount().StringFixed(2))
	}
	fmt.Fprintf(&b, "Total: %s\n", order.TotalCost().StringFixed(2))

	return m.send(order.Email, subject, b.String())
}

func (m *SMTPMailer) send(to, subject, body string) error {
	msg := mail.NewMsg()
	if err := msg.From(m.cfg.From); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.cfg.Host,
		mail.WithPort(m.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthLogin),
		mail.WithUsername(m.cfg.Username),
		mail.WithPassword(m.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	return client.DialAndSend(msg)
}
