package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(processorRequestMs, chatGateTotal) }

var (
	processorRequestMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "processor_request_duration_ms",
			Help:    "Payment processor API latency distribution in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 200, 400, 800, 1600, 3000, 5000},
		},
		[]string{"op", "success"},
	)

	chatGateTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chat_gate_total",
			Help: "Chat gate decisions (premium/allowed/limited).",
		},
		[]string{"result"},
	)
)

func ObserveProcessorCall(op string, latencyMs int64, success bool) {
	processorRequestMs.WithLabelValues(norm(op), strconv.FormatBool(success)).Observe(float64(latencyMs))
}

func IncChatGate(result string) {
	chatGateTotal.WithLabelValues(norm(result)).Inc()
}
