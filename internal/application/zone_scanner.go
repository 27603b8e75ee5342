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
	"github.com/wms-platform/dropzone-service/pkg/metrics"
)

// DefaultPalletConcurrency keeps pallet sub-searches of one zone sequential
const DefaultPalletConcurrency = 1

// ZoneScannerConfig holds zone scanner configuration
type ZoneScannerConfig struct {
	Mode              domain.ScanMode
	PalletConcurrency int
	Silent            bool
}

// ZoneScanner reduces one drop zone to a ZoneScanResult
type ZoneScanner struct {
	searcher domain.ContainerSearcher
	config   ZoneScannerConfig
	logger   *logging.Logger
	metrics  *metrics.Metrics
	tracer   trace.Tracer
	now      func() time.Time
}

// NewZoneScanner creates a new ZoneScanner
func NewZoneScanner(searcher domain.ContainerSearcher, config ZoneScannerConfig, logger *logging.Logger, m *metrics.Metrics) *ZoneScanner {
	if !config.Mode.IsValid() {
		config.Mode = domain.ScanModeDeep
	}
	if config.PalletConcurrency <= 0 {
		config.PalletConcurrency = DefaultPalletConcurrency
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &ZoneScanner{
		searcher: searcher,
		config:   config,
		logger:   logger.WithComponent("zone-scanner"),
		metrics:  m,
		tracer:   otel.Tracer("zone-scanner"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// WithMode returns a copy of the scanner using mode
func (s *ZoneScanner) WithMode(mode domain.ScanMode) *ZoneScanner {
	clone := *s
	if mode.IsValid() {
		clone.config.Mode = mode
	}
	return &clone
}

// Mode returns the scan mode
func (s *ZoneScanner) Mode() domain.ScanMode {
	return s.config.Mode
}

// ScanZone searches zoneID and, in deep mode, each of its pallets. It never
// fails: search failures are reported through the result status.
func (s *ZoneScanner) ScanZone(ctx context.Context, zoneID string, session domain.SessionContext) domain.ZoneScanResult {
	ctx, span := s.tracer.Start(ctx, "dropzone.ScanZone", trace.WithAttributes(
		attribute.String("dropzone.zone_id", zoneID),
		attribute.String("dropzone.scan_mode", string(s.config.Mode)),
	))
	defer span.End()

	result := s.scanZone(ctx, zoneID, session)

	span.SetAttributes(
		attribute.String("dropzone.zone_status", string(result.Status)),
		attribute.Int("dropzone.pallet_count", result.PalletCount),
		attribute.Int("dropzone.unit_count", result.UnitCount),
	)
	if s.metrics != nil {
		s.metrics.RecordZoneScanned(string(result.Status), result.PalletCount, result.UnitCount)
	}

	return result
}

func (s *ZoneScanner) scanZone(ctx context.Context, zoneID string, session domain.SessionContext) domain.ZoneScanResult {
	opts := domain.SearchOptions{Silent: s.config.Silent}

	zone, err := s.searcher.Search(ctx, zoneID, session, opts)
	if err != nil {
		if domain.IsEmptyContainerError(err) {
			return domain.NewEmptyZoneResult(zoneID, domain.CategoryNotAvailable, s.now())
		}
		if !opts.Silent {
			s.logger.WithError(err).Warn("Zone search failed", "zoneId", zoneID)
		}
		return domain.NewErrorZoneResult(zoneID, s.now())
	}

	if !zone.HasChildren() {
		return domain.NewEmptyZoneResult(zoneID, domain.CategoryEmpty, s.now())
	}

	pallets := zone.ChildContainers
	categories := domain.PalletCategoryUnion(pallets)

	units := 0
	if s.config.Mode == domain.ScanModeDeep {
		units = s.countUnits(ctx, pallets, session, opts)
	}

	return domain.NewActiveZoneResult(zoneID, len(pallets), units, categories, s.now())
}

// countUnits totals tote units per pallet. A pallet whose sub-search fails
// contributes its own reported count instead. Once ctx is cancelled no more
// sub-searches start and every pallet falls back.
func (s *ZoneScanner) countUnits(ctx context.Context, pallets []domain.ContainerRecord, session domain.SessionContext, opts domain.SearchOptions) int {
	if ctx.Err() != nil {
		return palletReportedUnits(pallets)
	}

	counts := make([]int, len(pallets))
	var g errgroup.Group
	g.SetLimit(s.config.PalletConcurrency)

	for i := range pallets {
		pallet := &pallets[i]
		g.Go(func() error {
			counts[i] = s.palletUnits(ctx, pallet, session, opts)
			return nil
		})
	}
	_ = g.Wait()

	total := 0
	for _, count := range counts {
		total += count
	}
	return total
}

func (s *ZoneScanner) palletUnits(ctx context.Context, pallet *domain.ContainerRecord, session domain.SessionContext, opts domain.SearchOptions) int {
	if pallet.ContainerID == "" || ctx.Err() != nil {
		return max(pallet.NumOfChildContainers, 0)
	}

	record, err := s.searcher.Search(ctx, pallet.ContainerID, session, opts)
	if err != nil {
		if !opts.Silent {
			s.logger.WithError(err).Debug("Pallet search failed, using pallet count", "palletId", pallet.ContainerID)
		}
		return max(pallet.NumOfChildContainers, 0)
	}
	return record.ToteUnitCount()
}

func palletReportedUnits(pallets []domain.ContainerRecord) int {
	total := 0
	for _, pallet := range pallets {
		total += max(pallet.NumOfChildContainers, 0)
	}
	return total
}

// ListPallets returns one flat row per pallet of zoneID. An empty zone yields
// no rows.
func (s *ZoneScanner) ListPallets(ctx context.Context, zoneID string, session domain.SessionContext) ([]domain.PalletRow, error) {
	zone, err := s.searcher.Search(ctx, zoneID, session, domain.SearchOptions{Silent: s.config.Silent})
	if err != nil {
		if domain.IsEmptyContainerError(err) {
			return []domain.PalletRow{}, nil
		}
		return nil, err
	}

	rows := make([]domain.PalletRow, 0, len(zone.ChildContainers))
	for i := range zone.ChildContainers {
		rows = append(rows, domain.NewPalletRow(zoneID, &zone.ChildContainers[i]))
	}
	return rows, nil
}
