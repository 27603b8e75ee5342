package application

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/wms-platform/dropzone-service/internal/domain"
	"github.com/wms-platform/dropzone-service/pkg/logging"
	"github.com/wms-platform/dropzone-service/pkg/tracing"
)

// DefaultBatchSize bounds how many zones are scanned at once. Each deep zone
// scan issues one more search per pallet, so real concurrency is higher.
const DefaultBatchSize = 2

// ZoneScan scans a single zone and never fails
type ZoneScan interface {
	ScanZone(ctx context.Context, zoneID string, session domain.SessionContext) domain.ZoneScanResult
}

// Callbacks receive scan progress after every batch. Either may be nil.
type Callbacks struct {
	// OnPartialResults gets a copy of every result gathered so far
	OnPartialResults func(results []domain.ZoneScanResult)
	OnProgress       func(completed, total int)
}

// OrchestratorConfig holds scan orchestrator configuration
type OrchestratorConfig struct {
	BatchSize  int
	BatchDelay time.Duration
}

// ScanOrchestrator drives a sweep over a zone list in sequential batches
type ScanOrchestrator struct {
	scanner ZoneScan
	config  OrchestratorConfig
	logger  *logging.Logger
	tracer  trace.Tracer
}

// NewScanOrchestrator creates a new ScanOrchestrator
func NewScanOrchestrator(scanner ZoneScan, config OrchestratorConfig, logger *logging.Logger) *ScanOrchestrator {
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &ScanOrchestrator{
		scanner: scanner,
		config:  config,
		logger:  logger.WithComponent("scan-orchestrator"),
		tracer:  otel.Tracer("scan-orchestrator"),
	}
}

// RunScan scans zoneIDs batch by batch and returns every result. Zones in a
// batch run concurrently; the next batch starts only after all of them have
// settled.
//
// It fails with domain.ErrSessionInvalid or domain.ErrNoDestinationsConfigured
// before any search is made. On cancellation it returns the results of the
// batches completed so far together with ctx.Err(); the interrupted batch is
// discarded.
func (o *ScanOrchestrator) RunScan(ctx context.Context, zoneIDs []string, session domain.SessionContext, callbacks Callbacks) (results []domain.ZoneScanResult, err error) {
	if err := session.Validate(); err != nil {
		return nil, err
	}
	if len(zoneIDs) == 0 {
		return nil, domain.ErrNoDestinationsConfigured
	}

	ctx, span := o.tracer.Start(ctx, "dropzone.RunScan", trace.WithAttributes(
		attribute.Int("dropzone.zone_count", len(zoneIDs)),
		attribute.Int("dropzone.batch_size", o.config.BatchSize),
	))
	defer func() { tracing.EndSpan(span, err) }()

	total := len(zoneIDs)
	results = make([]domain.ZoneScanResult, 0, total)

	for start := 0; start < total; start += o.config.BatchSize {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		if start > 0 && o.config.BatchDelay > 0 {
			timer := time.NewTimer(o.config.BatchDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return results, ctx.Err()
			case <-timer.C:
			}
		}

		end := min(start+o.config.BatchSize, total)
		batch := o.runBatch(ctx, zoneIDs[start:end], session)

		if err := ctx.Err(); err != nil {
			return results, err
		}

		results = append(results, batch...)
		o.logger.Debug("Batch completed", "completed", len(results), "total", total)

		if callbacks.OnPartialResults != nil {
			callbacks.OnPartialResults(append([]domain.ZoneScanResult(nil), results...))
		}
		if callbacks.OnProgress != nil {
			callbacks.OnProgress(len(results), total)
		}
	}

	return results, nil
}

// runBatch scans every zone of the batch concurrently and waits for all
func (o *ScanOrchestrator) runBatch(ctx context.Context, zoneIDs []string, session domain.SessionContext) []domain.ZoneScanResult {
	batch := make([]domain.ZoneScanResult, len(zoneIDs))

	var g errgroup.Group
	for i, zoneID := range zoneIDs {
		g.Go(func() error {
			batch[i] = o.scanner.ScanZone(ctx, zoneID, session)
			return nil
		})
	}
	_ = g.Wait()

	return batch
}
