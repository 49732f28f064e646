package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"storefront-service/internal/model"
	"storefront-service/pkg/config"

	"go.uber.org/zap"
)

// EmailSink notifies the store owner of new orders over SMTP.
type EmailSink struct {
	cfg *config.SMTPConfig
	log *zap.Logger
}

// NewEmailSink creates an EmailSink.
func NewEmailSink(cfg *config.SMTPConfig, log *zap.Logger) *EmailSink {
	return &EmailSink{cfg: cfg, log: log}
}

func (s *EmailSink) Name() string { return "email" }

// Enabled requires a configured SMTP host, the tenant's email flag and
// a destination address. Without a host the sink is skipped, so it never
// counts as a sent delivery.
func (s *EmailSink) Enabled(tenant *model.Tenant, _ *model.Order) bool {
	if s.cfg.Host == "" {
		return false
	}
	return tenant.EmailNotifications && tenant.NotificationEmail != ""
}

func (s *EmailSink) Notify(_ context.Context, tenant *model.Tenant, order *model.Order) error {
	subject := fmt.Sprintf("New order %s received", order.OrderNumber)
	msg := buildEmailMessage(s.cfg, tenant.NotificationEmail, subject, OrderEmailBody(tenant, order))

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	auth := smtp.PlainAuth("", s.cfg.User, s.cfg.Password, s.cfg.Host)
	return smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{tenant.NotificationEmail}, msg)
}

// OrderEmailBody renders the owner-facing order summary as HTML.
func OrderEmailBody(tenant *model.Tenant, order *model.Order) string {
	var b strings.Builder
	b.WriteString("<html><body style=\"font-family: Arial, sans-serif;\">")
	b.WriteString("<h2>New order received</h2>")
	b.WriteString("<p>Your store has received a new order.</p>")
	fmt.Fprintf(&b, "<p><strong>Order number:</strong> %s</p>", order.OrderNumber)
	fmt.Fprintf(&b, "<p><strong>Customer:</strong> %s</p>", order.CustomerName)
	fmt.Fprintf(&b, "<p><strong>Phone:</strong> %s</p>", order.CustomerPhone)
	fmt.Fprintf(&b, "<p><strong>Address:</strong> %s</p>", order.CustomerAddress)
	fmt.Fprintf(&b, "<p><strong>Total:</strong> %.2f %s</p>", order.Total, tenant.Currency)
	b.WriteString("</body></html>")
	return b.String()
}

func buildEmailMessage(cfg *config.SMTPConfig, to, subject, htmlBody string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", cfg.FromName, cfg.FromEmail)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	return []byte(b.String())
}
