package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Counters for the order lifecycle and payment workflow.
var (
	OrdersCreatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shutterpress_orders_created_total",
		Help: "Orders created, labelled by service type",
	}, []string{"service_type"})

	OrdersExpiredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shutterpress_orders_expired_total",
		Help: "Orders marked payment-expired by lazy reconciliation",
	})

	PaymentsInitializedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shutterpress_payments_initialized_total",
		Help: "Payment attempts initialized against the gateway",
	})

	PaymentsCompletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shutterpress_payments_completed_total",
		Help: "Payment attempts verified as completed",
	})

	PaymentsFailedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shutterpress_payments_failed_total",
		Help: "Payment attempts that were declined or failed verification",
	})

	RevenueTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "shutterpress_revenue_total",
		Help: "Total amount of completed payments",
	})
)
