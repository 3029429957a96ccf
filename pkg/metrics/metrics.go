package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "corplink"

// Metrics of tunnel lifecycle, all methods are safe to call on nil
type Metrics struct {
	Launches      *prometheus.CounterVec
	ConfigPushes  *prometheus.CounterVec
	MonitorExits  *prometheus.CounterVec
	LastHandshake *prometheus.GaugeVec
	HandshakeAge  *prometheus.GaugeVec

	registry *prometheus.Registry
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
	}

	m.Launches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "launches_total",
			Help:      "Total number of wireguard implementation launches",
		},
		[]string{"ifname", "result"},
	)

	m.ConfigPushes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "config_pushes_total",
			Help:      "Total number of uapi configuration pushes",
		},
		[]string{"ifname", "result"},
	)

	m.MonitorExits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "monitor_exits_total",
			Help:      "Total number of liveness monitor exits by reason",
		},
		[]string{"ifname", "reason"},
	)

	m.LastHandshake = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_handshake_timestamp_seconds",
			Help:      "Unix time of the last handshake, 0 if none",
		},
		[]string{"ifname"},
	)

	m.HandshakeAge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "handshake_age_seconds",
			Help:      "Seconds since the last handshake at the last check",
		},
		[]string{"ifname"},
	)

	m.registry.MustRegister(
		m.Launches,
		m.ConfigPushes,
		m.MonitorExits,
		m.LastHandshake,
		m.HandshakeAge,
		collectors.NewGoCollector(),
	)

	return m
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

func (m *Metrics) ObserveLaunch(ifname string, err error) {
	if m == nil {
		return
	}

	m.Launches.WithLabelValues(ifname, result(err)).Inc()
}

func (m *Metrics) ObserveConfigPush(ifname string, err error) {
	if m == nil {
		return
	}

	m.ConfigPushes.WithLabelValues(ifname, result(err)).Inc()
}

func (m *Metrics) ObserveMonitorExit(ifname, reason string) {
	if m == nil {
		return
	}

	m.MonitorExits.WithLabelValues(ifname, reason).Inc()
}

// ObserveHandshake records a liveness sample, zero lastHandshake means
// no handshake yet
func (m *Metrics) ObserveHandshake(ifname string, lastHandshake time.Time, age time.Duration) {
	if m == nil {
		return
	}

	if lastHandshake.IsZero() {
		m.LastHandshake.WithLabelValues(ifname).Set(0)
		m.HandshakeAge.WithLabelValues(ifname).Set(0)
		return
	}

	m.LastHandshake.WithLabelValues(ifname).Set(float64(lastHandshake.Unix()))
	m.HandshakeAge.WithLabelValues(ifname).Set(age.Seconds())
}

// Handler serves metrics in prometheus format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
