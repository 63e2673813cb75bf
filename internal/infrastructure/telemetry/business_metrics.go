// Package telemetry provides OpenTelemetry integration for metrics collection.
package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the dealership backend.
// It tracks contract activity, invoicing, inbound leads, document rendering
// and the current state of the vehicle stock.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	contractActivatedTotal *Counter
	invoiceIssuedTotal     *Counter
	invoiceAmountTotal     *Counter
	leadCreatedTotal       *Counter
	documentRenderedTotal  *Counter
	feedExportTotal        *Counter

	// Gauge metrics (point-in-time values)
	vehiclesInStock *Gauge
	openLeads       *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	stockProvider StockMetricsProvider
}

// StockMetricsProvider provides inventory data for periodic metrics collection.
// This interface allows the telemetry layer to query stock state without
// depending on the inventory domain directly.
type StockMetricsProvider interface {
	// GetVehicleCountByStatus returns the number of vehicles per lifecycle status
	GetVehicleCountByStatus(ctx context.Context) (map[string]int64, error)

	// GetOpenLeadCount returns the number of leads still awaiting processing
	GetOpenLeadCount(ctx context.Context) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter           metric.Meter
	Logger          *zap.Logger
	CollectInterval time.Duration // Default: 5 minutes
	StockProvider   StockMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:         cfg.Meter,
		logger:        logger,
		stopChan:      make(chan struct{}),
		stockProvider: cfg.StockProvider,
	}

	// Initialize counter metrics
	var err error

	// Contract metrics
	bm.contractActivatedTotal, err = NewCounter(
		cfg.Meter,
		"dms_contract_activated_total",
		"Total number of contracts activated",
		"{contracts}",
	)
	if err != nil {
		return nil, err
	}

	// Invoice metrics
	bm.invoiceIssuedTotal, err = NewCounter(
		cfg.Meter,
		"dms_invoice_issued_total",
		"Total number of invoices issued",
		"{invoices}",
	)
	if err != nil {
		return nil, err
	}

	bm.invoiceAmountTotal, err = NewCounter(
		cfg.Meter,
		"dms_invoice_amount_total",
		"Total gross invoice amount in cents",
		"{cents}",
	)
	if err != nil {
		return nil, err
	}

	// Lead metrics
	bm.leadCreatedTotal, err = NewCounter(
		cfg.Meter,
		"dms_lead_created_total",
		"Total number of inbound leads created",
		"{leads}",
	)
	if err != nil {
		return nil, err
	}

	// Document metrics
	bm.documentRenderedTotal, err = NewCounter(
		cfg.Meter,
		"dms_document_rendered_total",
		"Total number of PDF documents rendered",
		"{documents}",
	)
	if err != nil {
		return nil, err
	}

	// Feed export metrics
	bm.feedExportTotal, err = NewCounter(
		cfg.Meter,
		"dms_feed_export_total",
		"Total number of marketplace feed exports generated",
		"{exports}",
	)
	if err != nil {
		return nil, err
	}

	// Stock gauge metrics
	bm.vehiclesInStock, err = NewGauge(
		cfg.Meter,
		"dms_vehicles_in_stock",
		"Current number of vehicles per lifecycle status",
		"{vehicles}",
	)
	if err != nil {
		return nil, err
	}

	bm.openLeads, err = NewGauge(
		cfg.Meter,
		"dms_open_leads",
		"Current number of unprocessed leads",
		"{leads}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Contract Metrics
// =============================================================================

// RecordContractActivated records a contract activation event.
// This should be called from the application layer when a contract becomes active.
func (bm *BusinessMetrics) RecordContractActivated(ctx context.Context, contractType string) {
	bm.contractActivatedTotal.Inc(ctx,
		AttrContractType.String(contractType),
	)
}

// =============================================================================
// Invoice Metrics
// =============================================================================

// RecordInvoiceIssued records an invoice being issued.
// Amount should be the gross amount; it is converted to cents internally.
func (bm *BusinessMetrics) RecordInvoiceIssued(ctx context.Context, grossAmount decimal.Decimal) {
	bm.invoiceIssuedTotal.Inc(ctx)

	amountCents := grossAmount.Mul(decimal.NewFromInt(100)).IntPart()
	bm.invoiceAmountTotal.Add(ctx, amountCents)
}

// =============================================================================
// Lead Metrics
// =============================================================================

// RecordLeadCreated records a newly captured inbound lead.
func (bm *BusinessMetrics) RecordLeadCreated(ctx context.Context, source string) {
	bm.leadCreatedTotal.Inc(ctx,
		AttrLeadSource.String(source),
	)
}

// =============================================================================
// Document Metrics
// =============================================================================

// RecordDocumentRendered records a successful PDF rendering.
func (bm *BusinessMetrics) RecordDocumentRendered(ctx context.Context, docType string) {
	bm.documentRenderedTotal.Inc(ctx,
		AttrDocType.String(docType),
	)
}

// RecordFeedExport records a marketplace feed export.
func (bm *BusinessMetrics) RecordFeedExport(ctx context.Context, schema string) {
	bm.feedExportTotal.Inc(ctx,
		AttrFeedSchema.String(schema),
	)
}

// =============================================================================
// Stock Metrics
// =============================================================================

// RecordVehiclesInStock records the current vehicle count for a lifecycle status.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordVehiclesInStock(ctx context.Context, status string, count int64) {
	bm.vehiclesInStock.Record(ctx, count,
		AttrVehicleStatus.String(status),
	)
}

// RecordOpenLeads records the number of leads still awaiting processing.
// This is a gauge metric that should be updated periodically.
func (bm *BusinessMetrics) RecordOpenLeads(ctx context.Context, count int64) {
	bm.openLeads.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// It collects stock metrics every interval (default: 5 minutes).
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectStockMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectStockMetrics(ctx)
		}
	}
}

// collectStockMetrics collects vehicle and lead gauge metrics.
func (bm *BusinessMetrics) collectStockMetrics(ctx context.Context) {
	if bm.stockProvider == nil {
		bm.logger.Debug("No stock provider configured, skipping stock metrics collection")
		return
	}

	countByStatus, err := bm.stockProvider.GetVehicleCountByStatus(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get vehicle counts for metrics collection", zap.Error(err))
	} else {
		for status, count := range countByStatus {
			bm.RecordVehiclesInStock(ctx, status, count)
		}
	}

	openLeads, err := bm.stockProvider.GetOpenLeadCount(ctx)
	if err != nil {
		bm.logger.Warn("Failed to get open lead count for metrics collection", zap.Error(err))
	} else {
		bm.RecordOpenLeads(ctx, openLeads)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
