package pool

import (
	"github.com/beatoz/beatoz-curve/libs/fxnum"
	"github.com/beatoz/beatoz-curve/types/xerrors"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricsNamespace = "curve"
	metricsSubsystem = "pool"

	SideBuy  = "buy"
	SideSell = "sell"
)

type Metrics struct {
	Trades    *prometheus.CounterVec
	Rejected  *prometheus.CounterVec
	SpotPrice *prometheus.GaugeVec
}

// NewMetrics creates the pool metrics and registers them to reg unless it is nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "trades_total",
			Help:      "Number of executed trades.",
		}, []string{"side"}),
		Rejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "rejected_trades_total",
			Help:      "Number of rejected trades by reason.",
		}, []string{"side", "reason"}),
		SpotPrice: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: metricsSubsystem,
			Name:      "spot_price",
			Help:      "Spot price after the last trade.",
		}, []string{"symbol"}),
	}
	if reg != nil {
		reg.MustRegister(m.Trades, m.Rejected, m.SpotPrice)
	}
	return m
}

func (m *Metrics) traded(side, symbol string, price fxnum.FxNum) {
	if m == nil {
		return
	}
	m.Trades.WithLabelValues(side).Inc()
	f, _ := price.ToDecimal().Float64()
	m.SpotPrice.WithLabelValues(symbol).Set(f)
}

func (m *Metrics) rejected(side string, xerr xerrors.XError) {
	if m == nil {
		return
	}
	m.Rejected.WithLabelValues(side, rejectReason(xerr)).Inc()
}

func rejectReason(xerr xerrors.XError) string {
	switch xerr.Code() {
	case xerrors.ErrCodeInvalidAmount:
		return "invalid_amount"
	case xerrors.ErrCodeCurveExhausted:
		return "curve_exhausted"
	case xerrors.ErrCodeCurveOverflow:
		return "curve_overflow"
	case xerrors.ErrCodeSlippage:
		return "slippage"
	case xerrors.ErrCodeCapExceeded:
		return "cap_exceeded"
	case xerrors.ErrCodeNotLive:
		return "not_live"
	case xerrors.ErrCodeInsufficientVault:
		return "insufficient_vault"
	case xerrors.ErrCodeNoValue:
		return "no_value"
	case xerrors.ErrCodeNoFees:
		return "no_fees"
	case xerrors.ErrCodeNotFoundResult:
		return "not_found"
	default:
		return "other"
	}
}
