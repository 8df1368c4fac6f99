package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kevin07696/payment-orchestrator/internal/domain/ports"
)

var centsPerUnit = decimal.NewFromInt(100)

var (
	// Payment attempt metrics
	paymentAttemptsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_attempts_total",
		Help: "Total number of payment attempts started",
	}, []string{
		"flow", // charge_card, charge_apple_pay, charge_google_pay, charge_profile, refund
	})

	gatewayExchangesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gateway_exchanges_total",
		Help: "Total gateway round trips by outcome",
	}, []string{
		"flow",
		"outcome", // approved, declined, error
		"code",    // gateway response code (2=declined, E00027=error, etc.)
	})

	gatewayExchangeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "gateway_exchange_duration_seconds",
		Help: "Duration of gateway round trips in seconds",
		// Buckets: 100ms to 30s (typical card network latencies)
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	}, []string{
		"flow",
	})

	reconciliationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "payment_reconciliations_total",
		Help: "Total approved payments committed to local records",
	})

	paymentAmountCents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_amount_cents_total",
		Help: "Total committed payment amount in cents (for revenue tracking)",
	}, []string{
		"flow",
	})
)

// MetricsObserver records payment flow events as Prometheus metrics and
// structured log entries. Amounts are logged at the cent level; card data
// never reaches this layer.
type MetricsObserver struct {
	logger *zap.Logger
}

// NewMetricsObserver creates an observer writing to the default Prometheus
// registry.
func NewMetricsObserver(logger *zap.Logger) *MetricsObserver {
	return &MetricsObserver{logger: logger}
}

func (o *MetricsObserver) AttemptStarted(attempt ports.ChargeAttempt) {
	paymentAttemptsTotal.WithLabelValues(attempt.Flow).Inc()

	o.logger.Info("payment attempt started",
		zap.String("flow", attempt.Flow),
		zap.Int64("invoice_id", attempt.InvoiceID),
		zap.String("ref_id", attempt.RefID),
		zap.String("amount", attempt.Amount.StringFixed(2)))
}

func (o *MetricsObserver) GatewayResponded(exchange ports.GatewayExchange) {
	gatewayExchangesTotal.WithLabelValues(exchange.Flow, string(exchange.Outcome), exchange.Code).Inc()
	gatewayExchangeDuration.WithLabelValues(exchange.Flow).Observe(exchange.Duration.Seconds())

	o.logger.Info("gateway responded",
		zap.String("flow", exchange.Flow),
		zap.String("ref_id", exchange.RefID),
		zap.String("outcome", string(exchange.Outcome)),
		zap.String("code", exchange.Code),
		zap.Duration("duration", exchange.Duration))
}

func (o *MetricsObserver) ReconciliationCommitted(rec ports.Reconciliation) {
	reconciliationsTotal.Inc()
	paymentAmountCents.WithLabelValues("charge").Add(float64(rec.Amount.Mul(centsPerUnit).IntPart()))

	o.logger.Info("payment reconciled",
		zap.Int64("invoice_id", rec.InvoiceID),
		zap.String("transaction_id", rec.TransactionID),
		zap.String("gateway_txn_id", rec.GatewayTxnID),
		zap.String("amount", rec.Amount.StringFixed(2)))
}
