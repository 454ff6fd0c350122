package telemetry

import "github.com/prometheus/client_golang/prometheus"

const metricPrefix = "factorysim_"

// Command outcome label values.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

// PrometheusRecorder implements Recorder on a prometheus registry.
type PrometheusRecorder struct {
	eventsExecuted  *prometheus.CounterVec
	commandsTotal   *prometheus.CounterVec
	ordersCompleted prometheus.Counter
	productsScrap   prometheus.Counter
	faultsInjected  prometheus.Counter
	clockSeconds    prometheus.Gauge
	agvBattery      *prometheus.GaugeVec
}

var _ Recorder = (*PrometheusRecorder)(nil)

// NewPrometheusRecorder builds the collectors and registers them.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	r := &PrometheusRecorder{
		eventsExecuted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "events_executed_total",
				Help: "Total executed simulation events by type",
			},
			[]string{"type"},
		),
		commandsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "commands_total",
				Help: "Total external commands by action and outcome",
			},
			[]string{"action", "outcome"},
		),
		ordersCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "orders_completed_total",
				Help: "Total fully delivered orders",
			},
		),
		productsScrap: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "products_scrapped_total",
				Help: "Total products scrapped at quality check",
			},
		),
		faultsInjected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "faults_injected_total",
				Help: "Total injected device and AGV faults",
			},
		),
		clockSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "clock_seconds",
				Help: "Current virtual time in seconds",
			},
		),
		agvBattery: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: metricPrefix + "agv_battery_percent",
				Help: "AGV battery level in percent",
			},
			[]string{"line", "agv"},
		),
	}
	reg.MustRegister(
		r.eventsExecuted,
		r.commandsTotal,
		r.ordersCompleted,
		r.productsScrap,
		r.faultsInjected,
		r.clockSeconds,
		r.agvBattery,
	)
	return r
}

func (r *PrometheusRecorder) EventExecuted(eventType string) {
	r.eventsExecuted.WithLabelValues(eventType).Inc()
}

func (r *PrometheusRecorder) CommandProcessed(action, outcome string) {
	r.commandsTotal.WithLabelValues(action, outcome).Inc()
}

func (r *PrometheusRecorder) OrderCompleted() {
	r.ordersCompleted.Inc()
}

func (r *PrometheusRecorder) ProductScrapped() {
	r.productsScrap.Inc()
}

func (r *PrometheusRecorder) FaultInjected() {
	r.faultsInjected.Inc()
}

func (r *PrometheusRecorder) ClockSeconds(seconds float64) {
	r.clockSeconds.Set(seconds)
}

func (r *PrometheusRecorder) AGVBattery(lineID, agvID string, level float64) {
	r.agvBattery.WithLabelValues(lineID, agvID).Set(level)
}
