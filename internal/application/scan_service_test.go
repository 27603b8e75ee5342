package application

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/dropzone-service/internal/domain"
	apperrors "github.com/wms-platform/dropzone-service/pkg/errors"
	wmstesting "github.com/wms-platform/dropzone-service/pkg/testing"
)

func newTestScanService(searcher *fakeSearcher, session domain.SessionContext, opts ...func(*ScanServiceConfig)) (*ScanService, *fakePublisher) {
	config := ScanServiceConfig{Silent: true}
	for _, opt := range opts {
		opt(&config)
	}

	publisher := &fakePublisher{}
	service := NewScanService(searcher, &fakeSessions{session: session}, newFakeProfileRepo(), publisher, config, nil, nil)
	service.now = func() time.Time { return scanTime }
	return service, publisher
}

func seedZones(searcher *fakeSearcher) {
	searcher.records["DZ-A01"] = &domain.ContainerRecord{
		ContainerID:     "DZ-A01",
		ChildContainers: []domain.ContainerRecord{pallet("P1", 2, "BWS")},
	}
	searcher.records["P1"] = &domain.ContainerRecord{ContainerID: "P1", ChildContainers: totes(3, 4)}
	searcher.records["DZ-A02"] = &domain.ContainerRecord{ContainerID: "DZ-A02"}
	searcher.errs["DZ-A03"] = domain.NewHTTPError("DZ-A03", 500, "Internal Server Error")
}

func requireAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %v", err)
	assert.Equal(t, code, appErr.Code)
}

func TestScanService_StartScan(t *testing.T) {
	searcher := newFakeSearcher()
	seedZones(searcher)
	service, publisher := newTestScanService(searcher, validSession)
	ctx := context.Background()

	dto, err := service.StartScan(ctx, StartScanCommand{ZoneIDs: []string{"DZ-A01", " DZ-A02 ", "DZ-A03", "DZ-A01"}})
	require.NoError(t, err)
	assert.Equal(t, "running", dto.Status)
	assert.Equal(t, 3, dto.Total)
	assert.Equal(t, "deep", dto.Mode)

	require.NoError(t, service.Wait(ctx))

	current, err := service.GetCurrentScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, dto.ScanID, current.ScanID)
	assert.Equal(t, "completed", current.Status)
	assert.Equal(t, 3, current.Completed)
	assert.Equal(t, 1.0, current.Progress)
	require.Len(t, current.Results, 3)
	assert.Equal(t, domain.ZoneStatusActive, current.Results[0].Status)
	assert.Equal(t, 7, current.Results[0].UnitCount)
	assert.Equal(t, domain.ZoneStatusEmpty, current.Results[1].Status)
	assert.Equal(t, domain.ZoneStatusError, current.Results[2].Status)

	assert.Equal(t, []string{domain.EventTypeScanStarted, domain.EventTypeScanCompleted}, publisher.EventTypes())
}

func TestScanService_StartScanRejections(t *testing.T) {
	ctx := context.Background()

	t.Run("Invalid session", func(t *testing.T) {
		searcher := newFakeSearcher()
		service, publisher := newTestScanService(searcher, domain.SessionContext{ZoneID: domain.SentinelZoneID, OperatorID: domain.SentinelOperatorID})

		_, err := service.StartScan(ctx, StartScanCommand{ZoneIDs: []string{"DZ-A01"}})
		requireAppErrorCode(t, err, apperrors.CodeSessionInvalid)
		assert.Empty(t, searcher.Calls())
		assert.Empty(t, publisher.EventTypes())
	})

	t.Run("Blank zone ids", func(t *testing.T) {
		service, _ := newTestScanService(newFakeSearcher(), validSession)

		_, err := service.StartScan(ctx, StartScanCommand{ZoneIDs: []string{" ", ""}})
		requireAppErrorCode(t, err, apperrors.CodeNoDestinationsConfigured)
	})

	t.Run("No default zone list", func(t *testing.T) {
		service, _ := newTestScanService(newFakeSearcher(), validSession)

		_, err := service.StartScan(ctx, StartScanCommand{})
		requireAppErrorCode(t, err, apperrors.CodeNoDestinationsConfigured)
	})

	t.Run("Invalid mode", func(t *testing.T) {
		service, _ := newTestScanService(newFakeSearcher(), validSession)

		_, err := service.StartScan(ctx, StartScanCommand{ZoneIDs: []string{"DZ-A01"}, Mode: "sideways"})
		requireAppErrorCode(t, err, apperrors.CodeValidationError)
	})

	t.Run("Unknown profile", func(t *testing.T) {
		service, _ := newTestScanService(newFakeSearcher(), validSession)

		_, err := service.StartScan(ctx, StartScanCommand{ProfileName: "night"})
		requireAppErrorCode(t, err, apperrors.CodeNotFound)
	})

	t.Run("Invalid zone list", func(t *testing.T) {
		service, _ := newTestScanService(newFakeSearcher(), validSession)

		_, err := service.StartScan(ctx, StartScanCommand{ZoneList: &domain.ZoneListSpec{Prefix: "DZ-A", Start: 9, End: 1}})
		requireAppErrorCode(t, err, apperrors.CodeValidationError)
	})
}

func TestScanService_ZoneSources(t *testing.T) {
	ctx := context.Background()

	t.Run("Default zone list and surface mode", func(t *testing.T) {
		searcher := newFakeSearcher()
		seedZones(searcher)
		service, _ := newTestScanService(searcher, validSession, func(c *ScanServiceConfig) {
			c.DefaultZoneList = domain.ZoneListSpec{Prefix: "DZ-A", Start: 1, End: 2, Width: 2}
			c.DefaultMode = domain.ScanModeSurface
		})

		dto, err := service.StartScan(ctx, StartScanCommand{})
		require.NoError(t, err)
		require.NoError(t, service.Wait(ctx))

		assert.Equal(t, "surface", dto.Mode)
		assert.Equal(t, 2, dto.Total)
		assert.ElementsMatch(t, []string{"DZ-A01", "DZ-A02"}, searcher.Calls())
	})

	t.Run("Profile", func(t *testing.T) {
		searcher := newFakeSearcher()
		seedZones(searcher)
		service, _ := newTestScanService(searcher, validSession)
		service.profiles = newFakeProfileRepo(&domain.ZoneProfile{
			Name:     "morning",
			ZoneList: domain.ZoneListSpec{Custom: []string{"DZ-A02", "DZ-A01"}},
			Mode:     domain.ScanModeSurface,
		})

		dto, err := service.StartScan(ctx, StartScanCommand{ProfileName: "morning"})
		require.NoError(t, err)
		require.NoError(t, service.Wait(ctx))

		assert.Equal(t, "morning", dto.ProfileName)
		assert.Equal(t, "surface", dto.Mode)
		assert.Equal(t, 2, dto.Total)
	})

	t.Run("Mode overrides profile", func(t *testing.T) {
		searcher := newFakeSearcher()
		seedZones(searcher)
		service, _ := newTestScanService(searcher, validSession)
		service.profiles = newFakeProfileRepo(&domain.ZoneProfile{
			Name:     "morning",
			ZoneList: domain.ZoneListSpec{Custom: []string{"DZ-A01"}},
			Mode:     domain.ScanModeSurface,
		})

		dto, err := service.StartScan(ctx, StartScanCommand{ProfileName: "morning", Mode: "deep"})
		require.NoError(t, err)
		require.NoError(t, service.Wait(ctx))
		assert.Equal(t, "deep", dto.Mode)
	})
}

func TestScanService_InProgressAndCancel(t *testing.T) {
	ctx := context.Background()
	started := make(chan struct{}, 16)

	searcher := newFakeSearcher()
	searcher.searchFn = func(ctx context.Context, containerID string) (*domain.ContainerRecord, error) {
		started <- struct{}{}
		<-ctx.Done()
		return nil, domain.NewNetworkError(containerID, ctx.Err())
	}
	service, publisher := newTestScanService(searcher, validSession)

	first, err := service.StartScan(ctx, StartScanCommand{ZoneIDs: zoneIDs(6)})
	require.NoError(t, err)
	<-started

	_, err = service.StartScan(ctx, StartScanCommand{ZoneIDs: zoneIDs(2)})
	requireAppErrorCode(t, err, apperrors.CodeScanInProgress)

	cancelCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	cancelled, err := service.CancelScan(cancelCtx)
	require.NoError(t, err)

	assert.Equal(t, first.ScanID, cancelled.ScanID)
	assert.Equal(t, "cancelled", cancelled.Status)
	assert.Equal(t, 0, cancelled.Completed)
	assert.Empty(t, cancelled.Results)
	assert.NotNil(t, cancelled.FinishedAt)

	wmstesting.AssertEventually(t, func() bool {
		types := publisher.EventTypes()
		return len(types) == 2 && types[1] == domain.EventTypeScanCancelled
	}, time.Second, "cancelled event published")

	_, err = service.CancelScan(ctx)
	requireAppErrorCode(t, err, apperrors.CodeConflict)

	// a new scan replaces the cancelled one
	searcher.mu.Lock()
	searcher.searchFn = nil
	searcher.mu.Unlock()

	second, err := service.StartScan(ctx, StartScanCommand{ZoneIDs: []string{"DZ-B01"}})
	require.NoError(t, err)
	require.NoError(t, service.Wait(ctx))
	assert.NotEqual(t, first.ScanID, second.ScanID)

	current, err := service.GetCurrentScan(ctx)
	require.NoError(t, err)
	assert.Equal(t, "completed", current.Status)
	require.Len(t, current.Results, 1)
	assert.Equal(t, "DZ-B01", current.Results[0].ZoneID)
}

func TestScanService_NoScan(t *testing.T) {
	service, _ := newTestScanService(newFakeSearcher(), validSession)
	ctx := context.Background()

	_, err := service.GetCurrentScan(ctx)
	requireAppErrorCode(t, err, apperrors.CodeNotFound)

	_, err = service.Aggregate(ctx)
	requireAppErrorCode(t, err, apperrors.CodeNotFound)

	_, err = service.CancelScan(ctx)
	requireAppErrorCode(t, err, apperrors.CodeNotFound)

	err = service.ExportCSV(ctx, &bytes.Buffer{})
	requireAppErrorCode(t, err, apperrors.CodeNotFound)

	assert.NoError(t, service.Wait(ctx))
	assert.NoError(t, service.Shutdown(ctx))
}

func TestScanService_AggregateAndExport(t *testing.T) {
	searcher := newFakeSearcher()
	seedZones(searcher)
	service, _ := newTestScanService(searcher, validSession)
	ctx := context.Background()

	_, err := service.StartScan(ctx, StartScanCommand{ZoneIDs: []string{"DZ-A01", "DZ-A02", "DZ-A03"}})
	require.NoError(t, err)
	require.NoError(t, service.Wait(ctx))

	agg, err := service.Aggregate(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.ScanSummary{TotalZones: 3, ActiveZones: 1, EmptyZones: 1, ErrorZones: 1, TotalPallets: 1, TotalUnits: 7}, agg.Summary)
	require.Len(t, agg.Destinations, 1)
	assert.Equal(t, domain.DestinationKTW1, agg.Destinations[0].Name)
	assert.Equal(t, 7, agg.Destinations[0].UnitShare)
	require.Len(t, agg.Destinations[0].Categories, 1)
	assert.Equal(t, "BWS", agg.Destinations[0].Categories[0].Category)

	var buf bytes.Buffer
	require.NoError(t, service.ExportCSV(ctx, &buf))

	parsed, err := domain.ParseCSV(&buf)
	require.NoError(t, err)
	require.Len(t, parsed, 3)
	assert.Equal(t, "DZ-A01", parsed[0].ZoneID)
	assert.Equal(t, 7, parsed[0].UnitCount)
	assert.Equal(t, domain.CategoryError, parsed[2].SortationCategory)
}

func TestScanService_SingleZone(t *testing.T) {
	searcher := newFakeSearcher()
	seedZones(searcher)
	service, _ := newTestScanService(searcher, validSession)
	ctx := context.Background()

	t.Run("Deep by default", func(t *testing.T) {
		result, err := service.ScanSingleZone(ctx, ScanZoneCommand{ZoneID: " DZ-A01 "})
		require.NoError(t, err)
		assert.Equal(t, "DZ-A01", result.ZoneID)
		assert.Equal(t, 7, result.UnitCount)
	})

	t.Run("Surface", func(t *testing.T) {
		result, err := service.ScanSingleZone(ctx, ScanZoneCommand{ZoneID: "DZ-A01", Mode: "surface"})
		require.NoError(t, err)
		assert.Equal(t, 0, result.UnitCount)
		assert.Equal(t, 1, result.PalletCount)
	})

	t.Run("Blank zone id", func(t *testing.T) {
		_, err := service.ScanSingleZone(ctx, ScanZoneCommand{ZoneID: "  "})
		requireAppErrorCode(t, err, apperrors.CodeValidationError)
	})

	t.Run("Pallets", func(t *testing.T) {
		rows, err := service.ListPallets(ctx, "DZ-A01")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "P1", rows[0].PalletID)
		assert.Equal(t, domain.DestinationKTW1, rows[0].Destination)
	})

	t.Run("Pallets upstream failure", func(t *testing.T) {
		_, err := service.ListPallets(ctx, "DZ-A03")
		requireAppErrorCode(t, err, apperrors.CodeUpstreamError)
	})

	t.Run("Invalid session", func(t *testing.T) {
		service.sessions = &fakeSessions{}
		_, err := service.ScanSingleZone(ctx, ScanZoneCommand{ZoneID: "DZ-A01"})
		requireAppErrorCode(t, err, apperrors.CodeSessionInvalid)
	})
}
