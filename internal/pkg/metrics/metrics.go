package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics holds the service collectors and the registry they live in
type Metrics struct {
	Registry *prometheus.Registry

	Registrations   *prometheus.CounterVec
	Logins          *prometheus.CounterVec
	Activations     *prometheus.CounterVec
	BonusCredited   *prometheus.CounterVec
	PendingAccounts prometheus.Gauge
}

// New creates the collectors on a fresh registry
func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mfs",
			Name:      "registrations_total",
			Help:      "Registration attempts by result.",
		}, []string{"result"}),
		Logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mfs",
			Name:      "logins_total",
			Help:      "Login attempts by result.",
		}, []string{"result"}),
		Activations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mfs",
			Name:      "activations_total",
			Help:      "Account activations by outcome.",
		}, []string{"outcome"}),
		BonusCredited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mfs",
			Name:      "signup_bonus_credited_total",
			Help:      "Sum of signup bonus amounts credited, by role.",
		}, []string{"role"}),
		PendingAccounts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mfs",
			Name:      "pending_accounts",
			Help:      "Accounts awaiting activation at the last digest run.",
		}),
	}

	m.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Registrations,
		m.Logins,
		m.Activations,
		m.BonusCredited,
		m.PendingAccounts,
	)

	return m
}
