package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Pick line and prediction results.
const (
	ResultAccepted  = "accepted"
	ResultUnchanged = "unchanged"
	ResultInvalid   = "invalid"
	ResultRejected  = "rejected"

	// Win rate predictions only.
	ResultUnavailable = "unavailable"
)

// Metrics holds the Prometheus collectors of both binaries. Each instance
// owns its registry so tests and the CLI never touch the global one.
type Metrics struct {
	// Tracker server
	PickLines     *prometheus.CounterVec
	Subscribers   prometheus.Gauge
	DraftsStored  *prometheus.CounterVec
	TrackersAlive prometheus.Gauge
	Predictions   *prometheus.CounterVec

	// Extractor
	Extractions *prometheus.CounterVec
	Deliveries  *prometheus.CounterVec

	registry *prometheus.Registry
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		PickLines: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "owl_pick_lines_total",
				Help: "Pick lines received by the tracker, by result",
			},
			[]string{"result"},
		),
		Subscribers: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "owl_ws_subscribers",
				Help: "Number of live WebSocket subscribers across all trackers",
			},
		),
		DraftsStored: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "owl_drafts_stored_total",
				Help: "Accepted drafts written to the database, by status",
			},
			[]string{"status"},
		),
		TrackersAlive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "owl_trackers",
				Help: "Number of tracker rooms currently held in memory",
			},
		),
		Predictions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "owl_winrate_predictions_total",
				Help: "Win rate predictions requested, by result",
			},
			[]string{"result"},
		),
		Extractions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "owl_extractions_total",
				Help: "Extraction attempts, by outcome",
			},
			[]string{"outcome"},
		),
		Deliveries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "owl_deliveries_total",
				Help: "Pick line deliveries, by sink and status",
			},
			[]string{"sink", "status"},
		),
		registry: reg,
	}
}

// WithRuntime adds the Go runtime and process collectors.
func (m *Metrics) WithRuntime() *Metrics {
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObservePickLine(result string) {
	m.PickLines.WithLabelValues(result).Inc()
}

func (m *Metrics) ObservePrediction(result string) {
	m.Predictions.WithLabelValues(result).Inc()
}

// SubscribersChanged matches room.WithClientHook.
func (m *Metrics) SubscribersChanged(delta int) {
	m.Subscribers.Add(float64(delta))
}

func (m *Metrics) ObserveStored(err error) {
	m.DraftsStored.WithLabelValues(status(err)).Inc()
}

// ObserveExtraction matches draft.WithObserver.
func (m *Metrics) ObserveExtraction(outcome string) {
	m.Extractions.WithLabelValues(outcome).Inc()
}

// ObserveDelivery matches sink.WithObserver.
func (m *Metrics) ObserveDelivery(sink string, err error) {
	m.Deliveries.WithLabelValues(sink, status(err)).Inc()
}

// WriteTextfile dumps the registry in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
