package prometheus

import (
	"os"
	"testing"
	"time"

	"storefront-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMain(m *testing.M) {
	InitMetrics(&config.Config{
		Metrics: config.MetricsConfig{Prefix: "metrics_test"},
	})
	os.Exit(m.Run())
}

func TestTrackDBOperationRecordsDuration(t *testing.T) {
	before := testutil.CollectAndCount(DbOperationDuration)
	TrackDBOperation("query")(time.Now())
	after := testutil.CollectAndCount(DbOperationDuration)
	if after <= before {
		t.Fatalf("expected a new db operation series, got %d before and %d after", before, after)
	}
}

func TestOutcomeCounters(t *testing.T) {
	RecordTenantResolution("resolved")
	if got := testutil.ToFloat64(TenantResolutionCounter.WithLabelValues("resolved")); got < 1 {
		t.Fatalf("expected resolved counter >= 1, got %v", got)
	}

	RecordNotification("email", "sent")
	if got := testutil.ToFloat64(NotificationsCounter.WithLabelValues("email", "sent")); got < 1 {
		t.Fatalf("expected notification counter >= 1, got %v", got)
	}

	RecordOrderRejected("validation")
	if got := testutil.ToFloat64(OrdersRejectedCounter.WithLabelValues("validation")); got < 1 {
		t.Fatalf("expected rejected counter >= 1, got %v", got)
	}
}
