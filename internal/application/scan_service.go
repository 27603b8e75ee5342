package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/wms-platform/dropzone-service/internal/domain"
	apperrors "github.com/wms-platform/dropzone-service/pkg/errors"
	"github.com/wms-platform/dropzone-service/pkg/logging"
	"github.com/wms-platform/dropzone-service/pkg/metrics"
)

const eventPublishTimeout = 5 * time.Second

// ScanServiceConfig holds scan service configuration
type ScanServiceConfig struct {
	DefaultMode       domain.ScanMode
	BatchSize         int
	BatchDelay        time.Duration
	PalletConcurrency int
	DefaultZoneList   domain.ZoneListSpec
	Silent            bool
}

// ScanService runs at most one scan at a time in the background and keeps
// its results until the next scan starts.
type ScanService struct {
	searcher  domain.ContainerSearcher
	sessions  domain.SessionProvider
	profiles  domain.ZoneProfileRepository
	publisher domain.EventPublisher
	config    ScanServiceConfig
	logger    *logging.Logger
	metrics   *metrics.Metrics
	now       func() time.Time

	mu      sync.Mutex
	current *domain.Scan
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScanService creates a new ScanService. profiles, publisher and m may
// be nil.
func NewScanService(
	searcher domain.ContainerSearcher,
	sessions domain.SessionProvider,
	profiles domain.ZoneProfileRepository,
	publisher domain.EventPublisher,
	config ScanServiceConfig,
	logger *logging.Logger,
	m *metrics.Metrics,
) *ScanService {
	if !config.DefaultMode.IsValid() {
		config.DefaultMode = domain.ScanModeDeep
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultBatchSize
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &ScanService{
		searcher:  searcher,
		sessions:  sessions,
		profiles:  profiles,
		publisher: publisher,
		config:    config,
		logger:    logger.WithComponent("scan-service"),
		metrics:   m,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type scanPlan struct {
	zoneIDs     []string
	mode        domain.ScanMode
	batchSize   int
	profileName string
}

// StartScan starts a scan in the background and returns its initial state.
// The previous scan's results are discarded.
func (s *ScanService) StartScan(ctx context.Context, cmd StartScanCommand) (*ScanDTO, error) {
	session := s.sessions.Snapshot()
	if err := session.Validate(); err != nil {
		return nil, apperrors.ErrSessionInvalid().Wrap(err)
	}

	plan, err := s.resolvePlan(ctx, cmd)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.current != nil && s.current.Status == domain.ScanStatusRunning {
		scanID := s.current.ScanID
		s.mu.Unlock()
		return nil, apperrors.ErrScanInProgress(scanID)
	}

	scan := domain.NewScan(plan.mode, session, plan.zoneIDs, s.now())
	scan.ProfileName = plan.profileName

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	runCtx = logging.ContextWithScanID(runCtx, scan.ScanID)
	done := make(chan struct{})

	s.current = scan
	s.cancel = cancel
	s.done = done
	dto := ToScanDTO(scan.Clone(), s.now())
	s.mu.Unlock()

	s.logger.WithScanID(scan.ScanID).Info("Scan started",
		"mode", plan.mode,
		"zones", len(plan.zoneIDs),
		"batchSize", plan.batchSize,
		"profile", plan.profileName,
	)
	s.publish(runCtx, domain.NewScanStartedEvent(scan.Clone()))

	scanner := NewZoneScanner(s.searcher, ZoneScannerConfig{
		Mode:              plan.mode,
		PalletConcurrency: s.config.PalletConcurrency,
		Silent:            s.config.Silent,
	}, s.logger, s.metrics)
	orchestrator := NewScanOrchestrator(scanner, OrchestratorConfig{
		BatchSize:  plan.batchSize,
		BatchDelay: s.config.BatchDelay,
	}, s.logger)

	go s.run(runCtx, cancel, done, scan, orchestrator)

	return dto, nil
}

func (s *ScanService) resolvePlan(ctx context.Context, cmd StartScanCommand) (*scanPlan, error) {
	plan := &scanPlan{mode: s.config.DefaultMode, batchSize: s.config.BatchSize}

	var err error
	switch {
	case len(cmd.ZoneIDs) > 0:
		plan.zoneIDs = domain.NormalizeZoneIDs(cmd.ZoneIDs)
	case cmd.ZoneList != nil:
		plan.zoneIDs, err = cmd.ZoneList.Expand()
	case cmd.ProfileName != "":
		err = s.applyProfile(ctx, cmd.ProfileName, plan)
	default:
		plan.zoneIDs, err = s.config.DefaultZoneList.Expand()
	}
	if err != nil {
		return nil, mapScanError(err)
	}
	if len(plan.zoneIDs) == 0 {
		return nil, apperrors.ErrNoDestinationsConfigured()
	}

	if cmd.Mode != "" {
		mode, err := domain.ParseScanMode(cmd.Mode)
		if err != nil {
			return nil, apperrors.ErrValidation(err.Error())
		}
		plan.mode = mode
	}
	if cmd.BatchSize > 0 {
		plan.batchSize = cmd.BatchSize
	}

	return plan, nil
}

func (s *ScanService) applyProfile(ctx context.Context, name string, plan *scanPlan) error {
	if s.profiles == nil {
		return apperrors.ErrServiceUnavailable("zone profile storage")
	}

	profile, err := s.profiles.FindByName(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to load zone profile: %w", err)
	}
	if profile == nil {
		return apperrors.ErrNotFoundWithID("zone profile", name)
	}

	ids, err := profile.ZoneIDs()
	if err != nil {
		return err
	}

	plan.zoneIDs = ids
	plan.profileName = profile.Name
	if profile.Mode.IsValid() {
		plan.mode = profile.Mode
	}
	if profile.BatchSize > 0 {
		plan.batchSize = profile.BatchSize
	}
	return nil
}

func (s *ScanService) run(ctx context.Context, cancel context.CancelFunc, done chan struct{}, scan *domain.Scan, orchestrator *ScanOrchestrator) {
	defer close(done)
	defer cancel()

	logger := s.logger.WithScanID(scan.ScanID)

	defer func() {
		if r := recover(); r != nil {
			logger.Panic(ctx, r)
			s.finish(ctx, scan, domain.ScanStatusFailed, fmt.Sprintf("panic: %v", r))
		}
	}()

	results, err := orchestrator.RunScan(ctx, scan.ZoneIDs, scan.Session, Callbacks{
		OnPartialResults: func(partial []domain.ZoneScanResult) {
			s.mu.Lock()
			scan.RecordProgress(partial, len(partial))
			s.mu.Unlock()
		},
		OnProgress: func(completed, total int) {
			if s.metrics != nil {
				s.metrics.SetScanProgress(completed, total)
			}
			logger.ScanProgress(ctx, scan.ScanID, completed, total)
		},
	})

	switch {
	case err == nil:
		s.mu.Lock()
		scan.RecordProgress(results, len(results))
		s.mu.Unlock()
		s.finish(ctx, scan, domain.ScanStatusCompleted, "")
	case errors.Is(err, context.Canceled):
		s.finish(ctx, scan, domain.ScanStatusCancelled, "cancelled by operator")
	default:
		logger.WithError(err).Error("Scan failed")
		s.finish(ctx, scan, domain.ScanStatusFailed, err.Error())
	}
}

func (s *ScanService) finish(ctx context.Context, scan *domain.Scan, status domain.ScanStatus, reason string) {
	s.mu.Lock()
	if err := scan.Finish(status, reason, s.now()); err != nil {
		s.mu.Unlock()
		return
	}
	snapshot := scan.Clone()
	s.mu.Unlock()

	duration := snapshot.Duration(s.now())
	if s.metrics != nil {
		s.metrics.RecordScanFinished(string(snapshot.Mode), string(status), duration)
	}

	logger := s.logger.WithScanID(snapshot.ScanID)
	switch status {
	case domain.ScanStatusCompleted:
		agg := domain.Aggregate(snapshot.Results)
		logger.Info("Scan completed",
			"zones", agg.Summary.TotalZones,
			"active", agg.Summary.ActiveZones,
			"pallets", agg.Summary.TotalPallets,
			"units", agg.Summary.TotalUnits,
			"duration", duration,
		)
		s.publish(ctx, domain.NewScanCompletedEvent(snapshot, agg))
	case domain.ScanStatusCancelled:
		logger.Info("Scan cancelled", "completed", snapshot.Completed, "total", snapshot.Total)
		s.publish(ctx, domain.NewScanCancelledEvent(snapshot, reason))
	}
}

// publish sends event without failing the scan. The scan's own context may
// already be cancelled, so a detached one is used.
func (s *ScanService) publish(ctx context.Context, event domain.DomainEvent) {
	if s.publisher == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), eventPublishTimeout)
	defer cancel()

	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WithError(err).Warn("Failed to publish scan event", "eventType", event.EventType())
	}
}

// GetCurrentScan returns the current or last scan
func (s *ScanService) GetCurrentScan(ctx context.Context) (*ScanDTO, error) {
	scan, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return ToScanDTO(scan, s.now()), nil
}

// CancelScan stops the running scan after its current batch is abandoned
// and waits until it has settled.
func (s *ScanService) CancelScan(ctx context.Context) (*ScanDTO, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return nil, apperrors.ErrNotFound("scan")
	}
	if s.current.Status != domain.ScanStatusRunning {
		status := s.current.Status
		s.mu.Unlock()
		return nil, apperrors.ErrConflict(fmt.Sprintf("scan is already %s", status))
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()

	select {
	case <-done:
	case <-ctx.Done():
		return nil, apperrors.ErrTimeout("scan cancellation").Wrap(ctx.Err())
	}

	return s.GetCurrentScan(ctx)
}

// Wait blocks until the current scan has finished
func (s *ScanService) Wait(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Aggregate computes the aggregation over the current scan's results so far
func (s *ScanService) Aggregate(ctx context.Context) (*AggregationDTO, error) {
	scan, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	return ToAggregationDTO(scan, domain.Aggregate(scan.Results)), nil
}

// ExportCSV writes the current scan's results as CSV
func (s *ScanService) ExportCSV(ctx context.Context, w io.Writer) error {
	scan, err := s.snapshot()
	if err != nil {
		return err
	}
	if err := domain.WriteCSV(w, scan.Results); err != nil {
		return fmt.Errorf("failed to export scan %s: %w", scan.ScanID, err)
	}
	return nil
}

// ScanSingleZone scans one zone immediately, outside of any scan run
func (s *ScanService) ScanSingleZone(ctx context.Context, cmd ScanZoneCommand) (*domain.ZoneScanResult, error) {
	zoneID, mode, session, err := s.prepareZoneQuery(cmd)
	if err != nil {
		return nil, err
	}

	scanner := NewZoneScanner(s.searcher, ZoneScannerConfig{
		Mode:              mode,
		PalletConcurrency: s.config.PalletConcurrency,
		Silent:            s.config.Silent,
	}, s.logger, s.metrics)

	result := scanner.ScanZone(ctx, zoneID, session)
	return &result, nil
}

// ListPallets returns the flat pallet rows of one zone
func (s *ScanService) ListPallets(ctx context.Context, zoneID string) ([]domain.PalletRow, error) {
	zoneID, _, session, err := s.prepareZoneQuery(ScanZoneCommand{ZoneID: zoneID})
	if err != nil {
		return nil, err
	}

	scanner := NewZoneScanner(s.searcher, ZoneScannerConfig{Silent: s.config.Silent}, s.logger, s.metrics)
	rows, err := scanner.ListPallets(ctx, zoneID, session)
	if err != nil {
		return nil, mapScanError(err)
	}
	return rows, nil
}

func (s *ScanService) prepareZoneQuery(cmd ScanZoneCommand) (string, domain.ScanMode, domain.SessionContext, error) {
	session := s.sessions.Snapshot()
	if err := session.Validate(); err != nil {
		return "", "", session, apperrors.ErrSessionInvalid().Wrap(err)
	}

	ids := domain.NormalizeZoneIDs([]string{cmd.ZoneID})
	if len(ids) == 0 {
		return "", "", session, apperrors.ErrValidation("zone id is required")
	}

	mode := domain.ScanModeDeep
	if cmd.Mode != "" {
		parsed, err := domain.ParseScanMode(cmd.Mode)
		if err != nil {
			return "", "", session, apperrors.ErrValidation(err.Error())
		}
		mode = parsed
	}

	return ids[0], mode, session, nil
}

// Shutdown cancels a running scan and waits for it to settle
func (s *ScanService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	return s.Wait(ctx)
}

func (s *ScanService) snapshot() (*domain.Scan, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil {
		return nil, apperrors.ErrNotFound("scan")
	}
	return s.current.Clone(), nil
}

// mapScanError maps domain and search errors to application errors
func mapScanError(err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}

	var searchErr *domain.SearchError
	switch {
	case errors.Is(err, domain.ErrSessionInvalid):
		return apperrors.ErrSessionInvalid().Wrap(err)
	case errors.Is(err, domain.ErrNoDestinationsConfigured):
		return apperrors.ErrNoDestinationsConfigured().Wrap(err)
	case errors.Is(err, domain.ErrInvalidZoneList),
		errors.Is(err, domain.ErrInvalidScanMode),
		errors.Is(err, domain.ErrInvalidProfile):
		return apperrors.ErrValidation(err.Error()).Wrap(err)
	case errors.Is(err, domain.ErrProfileNotFound):
		return apperrors.ErrNotFound("zone profile").Wrap(err)
	case errors.As(err, &searchErr):
		if searchErr.Kind == domain.SearchErrorNetwork {
			return apperrors.ErrServiceUnavailable("container search").Wrap(err)
		}
		return apperrors.ErrUpstream(searchErr.Error()).Wrap(err)
	default:
		return apperrors.MapDomainError(err)
	}
}
