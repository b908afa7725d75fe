package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		billingTransactionsTotal,
		billingRevenueCentsTotal,
		checkoutSessionsTotal,
	)
}

var (
	billingTransactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_transactions_total",
			Help: "Ledger transactions recorded, by status (paid/failed) and source (checkout/invoice/manual).",
		},
		[]string{"status", "source"},
	)

	billingRevenueCentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "billing_revenue_cents_total",
			Help: "The total value of paid transactions in minor units, labeled by currency.",
		},
		[]string{"currency"},
	)

	checkoutSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "checkout_sessions_total",
			Help: "Hosted checkout sessions requested, by plan and result.",
		},
		[]string{"plan", "result"},
	)
)

func IncTransaction(status, source string) {
	billingTransactionsTotal.WithLabelValues(norm(status), norm(source)).Inc()
}

func AddRevenue(currency string, cents int64) {
	billingRevenueCentsTotal.WithLabelValues(norm(currency)).Add(float64(cents))
}

func IncCheckoutSession(plan, result string) {
	checkoutSessionsTotal.WithLabelValues(norm(plan), norm(result)).Inc()
}
