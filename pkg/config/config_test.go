package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Fatalf("unexpected default port: %q", cfg.Server.Port)
	}
	if cfg.Order.NumberPrefix != "ORD" {
		t.Fatalf("unexpected order number prefix: %q", cfg.Order.NumberPrefix)
	}
	if cfg.Order.TxTimeout != 10*time.Second {
		t.Fatalf("unexpected order tx timeout: %s", cfg.Order.TxTimeout)
	}
	if cfg.Domain.APIPathPrefix != "/api" {
		t.Fatalf("unexpected api path prefix: %q", cfg.Domain.APIPathPrefix)
	}

	wantReserved := []string{"www", "api", "app", "admin"}
	if len(cfg.Domain.ReservedSubdomains) != len(wantReserved) {
		t.Fatalf("unexpected reserved subdomains: %v", cfg.Domain.ReservedSubdomains)
	}
	for i, s := range wantReserved {
		if cfg.Domain.ReservedSubdomains[i] != s {
			t.Fatalf("reserved subdomain %d: got %q, want %q", i, cfg.Domain.ReservedSubdomains[i], s)
		}
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("ORDER_NUMBER_PREFIX", "SHOP")
	t.Setenv("ORDER_TX_TIMEOUT", "5s")
	t.Setenv("RESERVED_SUBDOMAINS", "www, mail ,ftp")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Fatalf("unexpected port: %q", cfg.Server.Port)
	}
	if cfg.Order.NumberPrefix != "SHOP" {
		t.Fatalf("unexpected order number prefix: %q", cfg.Order.NumberPrefix)
	}
	if cfg.Order.TxTimeout != 5*time.Second {
		t.Fatalf("unexpected order tx timeout: %s", cfg.Order.TxTimeout)
	}

	want := []string{"www", "mail", "ftp"}
	if len(cfg.Domain.ReservedSubdomains) != len(want) {
		t.Fatalf("unexpected reserved subdomains: %v", cfg.Domain.ReservedSubdomains)
	}
	for i, s := range want {
		if cfg.Domain.ReservedSubdomains[i] != s {
			t.Fatalf("reserved subdomain %d: got %q, want %q", i, cfg.Domain.ReservedSubdomains[i], s)
		}
	}
}

func TestGetDSN(t *testing.T) {
	d := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "secret",
		Name: "storefront_db", SSLMode: "disable",
	}
	want := "host=db port=5432 user=app password=secret dbname=storefront_db sslmode=disable"
	if got := d.GetDSN(); got != want {
		t.Fatalf("GetDSN() = %q, want %q", got, want)
	}
}

func TestGetEnvAsDurationInvalid(t *testing.T) {
	t.Setenv("ORDER_TX_TIMEOUT", "not-a-duration")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Order.TxTimeout != 10*time.Second {
		t.Fatalf("expected default timeout on invalid value, got %s", cfg.Order.TxTimeout)
	}
}
