package notifier

import (
	"context"
	"sync"
	"time"

	"storefront-service/internal/model"
	"storefront-service/prometheus"

	"go.uber.org/zap"
)

const (
	queueSize   = 256
	sinkTimeout = 15 * time.Second
)

// Event is a committed order handed to the dispatcher. Both values are
// copies taken after commit; sinks never touch live rows.
type Event struct {
	Tenant model.Tenant
	Order  model.Order
}

// Sink is one notification destination. Enabled gates dispatch per
// tenant; Notify performs the delivery attempt.
type Sink interface {
	Name() string
	Enabled(tenant *model.Tenant, order *model.Order) bool
	Notify(ctx context.Context, tenant *model.Tenant, order *model.Order) error
}

// Dispatcher fans order-created events out to independent sinks.
// Delivery is best-effort: one sink failing never affects another's
// attempt, and nothing here can reach back into the request path.
type Dispatcher struct {
	sinks  []Sink
	events chan Event
	log    *zap.Logger
	quit   chan struct{}
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher over the given sinks.
func NewDispatcher(log *zap.Logger, sinks ...Sink) *Dispatcher {
	return &Dispatcher{
		sinks:  sinks,
		events: make(chan Event, queueSize),
		log:    log,
		quit:   make(chan struct{}),
	}
}

// Start launches the dispatch loop.
func (d *Dispatcher) Start() {
	d.wg.Add(1)
	go d.run()
}

// Stop drains nothing and exits the loop; queued events are dropped.
func (d *Dispatcher) Stop() {
	close(d.quit)
	d.wg.Wait()
}

// Enqueue hands an event to the dispatcher without blocking. When the
// queue is full the event is dropped and logged; the order is already
// durable and the response already computed.
func (d *Dispatcher) Enqueue(tenant model.Tenant, order model.Order) {
	select {
	case d.events <- Event{Tenant: tenant, Order: order}:
	default:
		d.log.Warn("notification queue full, dropping event",
			zap.String("order_number", order.OrderNumber),
			zap.Uint("tenant_id", tenant.ID))
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for {
		select {
		case ev := <-d.events:
			d.dispatch(&ev)
		case <-d.quit:
			return
		}
	}
}

func (d *Dispatcher) dispatch(ev *Event) {
	for _, sink := range d.sinks {
		if !sink.Enabled(&ev.Tenant, &ev.Order) {
			prometheus.RecordNotification(sink.Name(), "skipped")
			continue
		}

		ctx, cancel := context.WithTimeout(context.Background(), sinkTimeout)
		err := sink.Notify(ctx, &ev.Tenant, &ev.Order)
		cancel()

		if err != nil {
			prometheus.RecordNotification(sink.Name(), "failed")
			d.log.Error("notification delivery failed",
				zap.String("sink", sink.Name()),
				zap.String("order_number", ev.Order.OrderNumber),
				zap.Uint("tenant_id", ev.Tenant.ID),
				zap.Error(err))
			continue
		}
		prometheus.RecordNotification(sink.Name(), "sent")
	}
}
