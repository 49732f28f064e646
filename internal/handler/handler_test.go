package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"storefront-service/internal/service"
	"storefront-service/pkg/config"
	"storefront-service/prometheus"

	"github.com/labstack/echo/v4"
)

func TestMain(m *testing.M) {
	prometheus.InitMetrics(&config.Config{
		Metrics: config.MetricsConfig{Prefix: "handler_test"},
	})
	os.Exit(m.Run())
}

func TestSlugifyTitle(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Blue Shirt", "blue-shirt"},
		{"Blue  Shirt", "blue-shirt"},
		{"  Blue Shirt  ", "blue-shirt"},
		{"Shirt #2 (Large)", "shirt-2-large"},
		{"UPPERCASE", "uppercase"},
		{"100% Cotton!", "100-cotton"},
		{"---", ""},
		{"", ""},
	}
	for _, tc := range cases {
		if got := SlugifyTitle(tc.in); got != tc.want {
			t.Fatalf("SlugifyTitle(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestValidSlug(t *testing.T) {
	for _, slug := range []string{"mystore", "my-store", "store2", "a"} {
		if !validSlug(slug) {
			t.Fatalf("expected %q valid", slug)
		}
	}
	for _, slug := range []string{"", "My-Store", "my store", "my_store", "store.name", "বাজার"} {
		if validSlug(slug) {
			t.Fatalf("expected %q invalid", slug)
		}
	}
}

func TestRequireTenantMissing(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	tenant, err := requireTenant(c)
	if tenant != nil {
		t.Fatal("expected nil tenant")
	}
	if err != nil {
		t.Fatalf("expected response written, not error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestRequireTenantOwnerMissing(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	tenant, err := requireTenantOwner(c)
	if tenant != nil {
		t.Fatal("expected nil tenant")
	}
	if err != nil {
		t.Fatalf("expected response written, not error: %v", err)
	}
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestOrderErrorStatusMapping(t *testing.T) {
	h := &OrderHandler{}
	e := echo.New()

	cases := []struct {
		err  error
		want int
	}{
		{service.ErrEmptyCart, http.StatusBadRequest},
		{fmt.Errorf("%w: product 3", service.ErrInvalidQuantity), http.StatusBadRequest},
		{service.ErrCODDisabled, http.StatusBadRequest},
		{fmt.Errorf("%w: Blue Shirt", service.ErrInsufficientStock), http.StatusBadRequest},
		{fmt.Errorf("%w: product 3", service.ErrProductNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: product 3", service.ErrStockConflict), http.StatusConflict},
		{service.ErrOrderNumberExhausted, http.StatusConflict},
		{errors.New("pq: connection reset"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := h.orderError(c, tc.err); err != nil {
			t.Fatalf("orderError(%v) returned error: %v", tc.err, err)
		}
		if rec.Code != tc.want {
			t.Fatalf("orderError(%v): got status %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}
