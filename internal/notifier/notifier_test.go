package notifier

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"storefront-service/internal/model"
	"storefront-service/pkg/config"
	"storefront-service/prometheus"

	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{
		Metrics: config.MetricsConfig{Prefix: "notifier_test"},
	})
	os.Exit(m.Run())
}

func notifyTenant() *model.Tenant {
	return &model.Tenant{
		ID:                    3,
		Slug:                  "mystore",
		Currency:              "BDT",
		EmailNotifications:    true,
		NotificationEmail:     "owner@example.com",
		WhatsappNotifications: true,
		NotificationWhatsapp:  "+8801700000000",
		EnableFacebookPixel:   true,
		FacebookAccessToken:   "token",
	}
}

func notifyOrder() *model.Order {
	return &model.Order{
		ID:              42,
		OrderNumber:     "ORD-A1B2C3D4",
		CustomerName:    "Rahim Uddin",
		CustomerPhone:   "+8801800000000",
		CustomerEmail:   "rahim@example.com",
		CustomerAddress: "House 12, Road 3, Dhaka",
		Total:           1250.50,
		FbPixelID:       "12345",
		CreatedAt:       time.Unix(1700000000, 0),
		Items: []model.OrderItem{
			{ProductID: 9, ProductTitle: "Blue Shirt", Quantity: 2, Subtotal: 1000},
			{ProductID: 11, ProductTitle: "Cap", Quantity: 1, Subtotal: 250.50},
		},
	}
}

func TestSinkGating(t *testing.T) {
	log := zap.NewNop()
	email := NewEmailSink(&config.SMTPConfig{Host: "smtp.example.com", Port: 587}, log)
	whatsapp := NewWhatsAppSink(&config.WhatsAppConfig{}, log)
	meta := NewMetaSink(&config.MetaConfig{}, log)

	order := notifyOrder()

	t.Run("all enabled", func(t *testing.T) {
		tenant := notifyTenant()
		if !email.Enabled(tenant, order) {
			t.Fatal("expected email sink enabled")
		}
		if !whatsapp.Enabled(tenant, order) {
			t.Fatal("expected whatsapp sink enabled")
		}
		if !meta.Enabled(tenant, order) {
			t.Fatal("expected meta sink enabled")
		}
	})

	t.Run("smtp host unconfigured", func(t *testing.T) {
		unconfigured := NewEmailSink(&config.SMTPConfig{}, log)
		if unconfigured.Enabled(notifyTenant(), order) {
			t.Fatal("expected email sink disabled without an SMTP host")
		}
	})

	t.Run("email flag off", func(t *testing.T) {
		tenant := notifyTenant()
		tenant.EmailNotifications = false
		if email.Enabled(tenant, order) {
			t.Fatal("expected email sink disabled")
		}
	})

	t.Run("email address missing", func(t *testing.T) {
		tenant := notifyTenant()
		tenant.NotificationEmail = ""
		if email.Enabled(tenant, order) {
			t.Fatal("expected email sink disabled without address")
		}
	})

	t.Run("whatsapp number missing", func(t *testing.T) {
		tenant := notifyTenant()
		tenant.NotificationWhatsapp = ""
		if whatsapp.Enabled(tenant, order) {
			t.Fatal("expected whatsapp sink disabled without number")
		}
	})

	t.Run("meta pixel flag off", func(t *testing.T) {
		tenant := notifyTenant()
		tenant.EnableFacebookPixel = false
		if meta.Enabled(tenant, order) {
			t.Fatal("expected meta sink disabled")
		}
	})

	t.Run("meta token missing", func(t *testing.T) {
		tenant := notifyTenant()
		tenant.FacebookAccessToken = ""
		if meta.Enabled(tenant, order) {
			t.Fatal("expected meta sink disabled without token")
		}
	})

	t.Run("meta pixel id missing on order", func(t *testing.T) {
		o := notifyOrder()
		o.FbPixelID = ""
		if meta.Enabled(notifyTenant(), o) {
			t.Fatal("expected meta sink disabled without pixel id")
		}
	})
}

func TestOrderEmailBody(t *testing.T) {
	body := OrderEmailBody(notifyTenant(), notifyOrder())
	for _, want := range []string{"ORD-A1B2C3D4", "Rahim Uddin", "+8801800000000", "House 12, Road 3, Dhaka", "1250.50 BDT"} {
		if !strings.Contains(body, want) {
			t.Fatalf("email body missing %q:\n%s", want, body)
		}
	}
}

func TestOrderWhatsAppMessage(t *testing.T) {
	msg := OrderWhatsAppMessage(notifyTenant(), notifyOrder())
	for _, want := range []string{"ORD-A1B2C3D4", "Rahim Uddin", "1250.50 BDT"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("whatsapp message missing %q:\n%s", want, msg)
		}
	}
}

func TestPurchaseEvent(t *testing.T) {
	tenant := notifyTenant()
	order := notifyOrder()

	ev := PurchaseEvent(tenant, order)
	if ev.EventName != "Purchase" {
		t.Fatalf("expected Purchase event, got %q", ev.EventName)
	}
	if ev.EventTime != order.CreatedAt.Unix() {
		t.Fatalf("event time mismatch: got %d", ev.EventTime)
	}
	if ev.CustomData.Value != 1250.50 || ev.CustomData.Currency != "BDT" {
		t.Fatalf("unexpected custom data: %+v", ev.CustomData)
	}
	if len(ev.CustomData.ContentIDs) != 2 || ev.CustomData.ContentIDs[0] != "9" || ev.CustomData.ContentIDs[1] != "11" {
		t.Fatalf("unexpected content ids: %v", ev.CustomData.ContentIDs)
	}
	if ev.CustomData.NumItems != 3 {
		t.Fatalf("expected 3 items, got %d", ev.CustomData.NumItems)
	}
	if ev.UserData.Phone != order.CustomerPhone || ev.UserData.Email != order.CustomerEmail {
		t.Fatalf("unexpected user data: %+v", ev.UserData)
	}
}

func TestPurchaseEventIDFallback(t *testing.T) {
	order := notifyOrder()
	order.FbEventID = ""
	if got := PurchaseEvent(notifyTenant(), order).EventID; got != "order_42" {
		t.Fatalf("expected order_42 event id, got %q", got)
	}

	order.FbEventID = "evt_abc"
	if got := PurchaseEvent(notifyTenant(), order).EventID; got != "evt_abc" {
		t.Fatalf("expected submitted event id, got %q", got)
	}
}

type recordingSink struct {
	name    string
	enabled bool
	fail    error
	calls   chan string
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Enabled(*model.Tenant, *model.Order) bool { return s.enabled }

func (s *recordingSink) Notify(_ context.Context, _ *model.Tenant, order *model.Order) error {
	s.calls <- order.OrderNumber
	return s.fail
}

func TestDispatcherFansOut(t *testing.T) {
	active := &recordingSink{name: "active", enabled: true, calls: make(chan string, 1)}
	skipped := &recordingSink{name: "skipped", enabled: false, calls: make(chan string, 1)}

	d := NewDispatcher(zap.NewNop(), active, skipped)
	d.Start()
	defer d.Stop()

	d.Enqueue(*notifyTenant(), *notifyOrder())

	select {
	case got := <-active.calls:
		if got != "ORD-A1B2C3D4" {
			t.Fatalf("unexpected order number: %q", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("active sink was never notified")
	}

	select {
	case <-skipped.calls:
		t.Fatal("disabled sink should not be notified")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDispatcherSinkFailureIsolated(t *testing.T) {
	failing := &recordingSink{name: "failing", enabled: true, fail: context.DeadlineExceeded, calls: make(chan string, 1)}
	healthy := &recordingSink{name: "healthy", enabled: true, calls: make(chan string, 1)}

	d := NewDispatcher(zap.NewNop(), failing, healthy)
	d.Start()
	defer d.Stop()

	d.Enqueue(*notifyTenant(), *notifyOrder())

	for _, sink := range []*recordingSink{failing, healthy} {
		select {
		case <-sink.calls:
		case <-time.After(2 * time.Second):
			t.Fatalf("sink %s was never notified", sink.name)
		}
	}
}
