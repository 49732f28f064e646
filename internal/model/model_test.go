package model

import "testing"

func floatPtr(v float64) *float64 { return &v }

func TestEffectivePrice(t *testing.T) {
	cases := []struct {
		name     string
		price    float64
		discount *float64
		want     float64
	}{
		{"no discount", 100, nil, 100},
		{"discount below price", 100, floatPtr(80), 80},
		{"discount equal to price", 100, floatPtr(100), 100},
		{"discount above price", 100, floatPtr(120), 100},
		{"zero discount", 100, floatPtr(0), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Product{Price: tc.price, DiscountPrice: tc.discount}
			if got := p.EffectivePrice(); got != tc.want {
				t.Fatalf("EffectivePrice() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{
		OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped,
		OrderStatusDelivered, OrderStatusCancelled,
	} {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []OrderStatus{"", "unknown", "Pending", "PENDING", "completed"} {
		if s.Valid() {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestPaymentStatusValid(t *testing.T) {
	for _, s := range []PaymentStatus{
		PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed,
	} {
		if !s.Valid() {
			t.Fatalf("expected %q to be valid", s)
		}
	}
	for _, s := range []PaymentStatus{"", "refunded", "Paid"} {
		if s.Valid() {
			t.Fatalf("expected %q to be invalid", s)
		}
	}
}

func TestNormalizeSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"MyStore", "mystore"},
		{"  mystore  ", "mystore"},
		{"my-store", "my-store"},
		{"MYSTORE", "mystore"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := NormalizeSlug(tc.in); got != tc.want {
			t.Fatalf("NormalizeSlug(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
