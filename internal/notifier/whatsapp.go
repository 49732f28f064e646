package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"storefront-service/internal/model"
	"storefront-service/pkg/config"

	"go.uber.org/zap"
)

// WhatsAppSink notifies the store owner of new orders through the
// configured WhatsApp API provider.
type WhatsAppSink struct {
	cfg    *config.WhatsAppConfig
	client *http.Client
	log    *zap.Logger
}

// NewWhatsAppSink creates a WhatsAppSink.
func NewWhatsAppSink(cfg *config.WhatsAppConfig, log *zap.Logger) *WhatsAppSink {
	return &WhatsAppSink{cfg: cfg, client: &http.Client{}, log: log}
}

func (s *WhatsAppSink) Name() string { return "whatsapp" }

// Enabled requires the tenant's WhatsApp flag plus a destination number.
func (s *WhatsAppSink) Enabled(tenant *model.Tenant, _ *model.Order) bool {
	return tenant.WhatsappNotifications && tenant.NotificationWhatsapp != ""
}

func (s *WhatsAppSink) Notify(ctx context.Context, tenant *model.Tenant, order *model.Order) error {
	if s.cfg.APIKey == "" || s.cfg.APIURL == "" {
		s.log.Warn("WhatsApp API not configured, skipping message",
			zap.String("order_number", order.OrderNumber))
		return nil
	}

	payload, err := json.Marshal(map[string]string{
		"to":   tenant.NotificationWhatsapp,
		"from": s.cfg.PhoneNumberID,
		"body": OrderWhatsAppMessage(tenant, order),
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.APIURL+"/messages", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("whatsapp api returned status %d", resp.StatusCode)
	}
	return nil
}

// OrderWhatsAppMessage renders the owner-facing order summary as plain text.
func OrderWhatsAppMessage(tenant *model.Tenant, order *model.Order) string {
	return fmt.Sprintf(`New order received

Order number: %s
Customer: %s
Phone: %s
Address: %s
Total: %.2f %s`,
		order.OrderNumber,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerAddress,
		order.Total,
		tenant.Currency,
	)
}
