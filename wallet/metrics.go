package wallet

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels.
const (
	OutcomeSuccess    = "success"
	OutcomeError      = "error"
	OutcomeCancelled  = "cancelled"
	OutcomeSuperseded = "superseded"
)

// Metrics counts wallet activity per chain.
type Metrics struct {
	updates *prometheus.CounterVec
	sends   *prometheus.CounterVec
	pending *prometheus.GaugeVec
}

// NewMetrics creates the wallet collectors and registers them with reg.
// Collectors already registered by another Metrics are reused.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		updates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "walletcore",
				Subsystem: "wallet",
				Name:      "updates_total",
				Help:      "Total number of wallet state updates",
			},
			[]string{"chain", "outcome"},
		),
		sends: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "walletcore",
				Subsystem: "wallet",
				Name:      "sends_total",
				Help:      "Total number of send attempts",
			},
			[]string{"chain", "outcome"},
		),
		pending: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "walletcore",
				Subsystem: "wallet",
				Name:      "pending_transactions",
				Help:      "Number of unconfirmed outgoing transactions",
			},
			[]string{"chain"},
		),
	}

	var err error
	if m.updates, err = register(reg, m.updates); err != nil {
		return nil, err
	}
	if m.sends, err = register(reg, m.sends); err != nil {
		return nil, err
	}
	if m.pending, err = register(reg, m.pending); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

func (m *Metrics) recordUpdate(chain, outcome string) {
	if m == nil {
		return
	}
	m.updates.WithLabelValues(chain, outcome).Inc()
}

func (m *Metrics) recordSend(chain, outcome string) {
	if m == nil {
		return
	}
	m.sends.WithLabelValues(chain, outcome).Inc()
}

func (m *Metrics) setPending(chain string, n int) {
	if m == nil {
		return
	}
	m.pending.WithLabelValues(chain).Set(float64(n))
}
