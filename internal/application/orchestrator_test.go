package application

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/wms-platform/dropzone-service/internal/domain"
)

func zoneIDs(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("DZ-A%02d", i+1)
	}
	return ids
}

type progressRecorder struct {
	mu       sync.Mutex
	progress [][2]int
	partials [][]domain.ZoneScanResult
}

func (r *progressRecorder) callbacks() Callbacks {
	return Callbacks{
		OnProgress: func(completed, total int) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.progress = append(r.progress, [2]int{completed, total})
		},
		OnPartialResults: func(results []domain.ZoneScanResult) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.partials = append(r.partials, results)
		},
	}
}

func TestScanOrchestrator_RunScan(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("Two zones report progress once", func(t *testing.T) {
		scanner := &fakeZoneScan{}
		recorder := &progressRecorder{}

		results, err := NewScanOrchestrator(scanner, OrchestratorConfig{}, nil).
			RunScan(context.Background(), zoneIDs(2), validSession, recorder.callbacks())
		require.NoError(t, err)

		assert.Len(t, results, 2)
		assert.Equal(t, [][2]int{{2, 2}}, recorder.progress)
		require.Len(t, recorder.partials, 1)
		assert.Len(t, recorder.partials[0], 2)
	})

	t.Run("Batches preserve zone order", func(t *testing.T) {
		scanner := &fakeZoneScan{}
		recorder := &progressRecorder{}
		ids := zoneIDs(5)

		results, err := NewScanOrchestrator(scanner, OrchestratorConfig{BatchSize: 2}, nil).
			RunScan(context.Background(), ids, validSession, recorder.callbacks())
		require.NoError(t, err)

		require.Len(t, results, 5)
		for i, result := range results {
			assert.Equal(t, ids[i], result.ZoneID)
		}
		assert.Equal(t, [][2]int{{2, 5}, {4, 5}, {5, 5}}, recorder.progress)
		assert.LessOrEqual(t, scanner.maxInFlight.Load(), int32(2))
	})

	t.Run("Partial results are copies", func(t *testing.T) {
		recorder := &progressRecorder{}

		_, err := NewScanOrchestrator(&fakeZoneScan{}, OrchestratorConfig{BatchSize: 1}, nil).
			RunScan(context.Background(), zoneIDs(3), validSession, recorder.callbacks())
		require.NoError(t, err)

		require.Len(t, recorder.partials, 3)
		assert.Len(t, recorder.partials[0], 1)
		assert.Len(t, recorder.partials[1], 2)
		assert.Len(t, recorder.partials[2], 3)
	})

	t.Run("Nil callbacks", func(t *testing.T) {
		results, err := NewScanOrchestrator(&fakeZoneScan{}, OrchestratorConfig{}, nil).
			RunScan(context.Background(), zoneIDs(3), validSession, Callbacks{})
		require.NoError(t, err)
		assert.Len(t, results, 3)
	})

	t.Run("Batch delay", func(t *testing.T) {
		start := time.Now()
		_, err := NewScanOrchestrator(&fakeZoneScan{}, OrchestratorConfig{BatchSize: 1, BatchDelay: 20 * time.Millisecond}, nil).
			RunScan(context.Background(), zoneIDs(3), validSession, Callbacks{})
		require.NoError(t, err)
		assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	})
}

func TestScanOrchestrator_RejectsBeforeSearching(t *testing.T) {
	defer goleak.VerifyNone(t)

	tests := []struct {
		name    string
		session domain.SessionContext
		zones   []string
		wantErr error
	}{
		{"Sentinel zone", domain.SessionContext{ZoneID: domain.SentinelZoneID, OperatorID: "jkowalski"}, zoneIDs(2), domain.ErrSessionInvalid},
		{"Sentinel operator", domain.SessionContext{ZoneID: "KTW1", OperatorID: domain.SentinelOperatorID}, zoneIDs(2), domain.ErrSessionInvalid},
		{"Unset operator", domain.SessionContext{ZoneID: "KTW1", OperatorID: "UNSET"}, zoneIDs(2), domain.ErrSessionInvalid},
		{"Blank session", domain.SessionContext{}, zoneIDs(2), domain.ErrSessionInvalid},
		{"Invalid session wins over empty list", domain.SessionContext{}, nil, domain.ErrSessionInvalid},
		{"Empty zone list", validSession, nil, domain.ErrNoDestinationsConfigured},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := &fakeZoneScan{}
			recorder := &progressRecorder{}

			results, err := NewScanOrchestrator(scanner, OrchestratorConfig{}, nil).
				RunScan(context.Background(), tt.zones, tt.session, recorder.callbacks())

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, results)
			assert.Zero(t, scanner.scanned.Load())
			assert.Empty(t, recorder.progress)
			assert.Empty(t, recorder.partials)
		})
	}
}

func TestScanOrchestrator_Cancellation(t *testing.T) {
	defer goleak.VerifyNone(t)

	t.Run("Interrupted batch is discarded", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		scanner := &fakeZoneScan{onScan: func(ctx context.Context, zoneID string) {
			if zoneID == "DZ-A03" {
				cancel()
			}
		}}
		recorder := &progressRecorder{}

		results, err := NewScanOrchestrator(scanner, OrchestratorConfig{BatchSize: 2}, nil).
			RunScan(ctx, zoneIDs(6), validSession, recorder.callbacks())

		assert.ErrorIs(t, err, context.Canceled)
		require.Len(t, results, 2)
		assert.Equal(t, "DZ-A01", results[0].ZoneID)
		assert.Equal(t, "DZ-A02", results[1].ZoneID)
		assert.Equal(t, [][2]int{{2, 6}}, recorder.progress)
		assert.Equal(t, int32(4), scanner.scanned.Load())
	})

	t.Run("Already cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		scanner := &fakeZoneScan{}
		results, err := NewScanOrchestrator(scanner, OrchestratorConfig{}, nil).
			RunScan(ctx, zoneIDs(4), validSession, Callbacks{})

		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, results)
		assert.Zero(t, scanner.scanned.Load())
	})

	t.Run("Cancelled during batch delay", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		recorder := &progressRecorder{}
		callbacks := recorder.callbacks()
		onProgress := callbacks.OnProgress
		callbacks.OnProgress = func(completed, total int) {
			onProgress(completed, total)
			cancel()
		}

		results, err := NewScanOrchestrator(&fakeZoneScan{}, OrchestratorConfig{BatchSize: 1, BatchDelay: time.Minute}, nil).
			RunScan(ctx, zoneIDs(3), validSession, callbacks)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Len(t, results, 1)
	})
}
