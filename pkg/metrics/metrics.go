package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "quote_intake", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "quote_intake", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	AutosaveWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "quote_intake", Name: "autosave_writes_total", Help: "Debounced durable-cache writes by result."},
		[]string{"result"},
	)
	FileOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "quote_intake", Name: "file_ops_total", Help: "File adapter operations (open, save, save_as, download, import) by result."},
		[]string{"op", "result"},
	)
	VINDecodes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "quote_intake", Name: "vin_decodes_total", Help: "VIN decode attempts by result."},
		[]string{"result"},
	)
)

// Result labels shared by the counters above.
const (
	ResultOK        = "ok"
	ResultError     = "error"
	ResultCancelled = "cancelled"
	ResultInvalid   = "invalid"
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(AutosaveWrites)
	reg.MustRegister(FileOps)
	reg.MustRegister(VINDecodes)
}
