package application

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wms-platform/dropzone-service/internal/domain"
)

var scanTime = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

var validSession = domain.SessionContext{ZoneID: "KTW1", OperatorID: "jkowalski"}

type fakeSearcher struct {
	mu       sync.Mutex
	records  map[string]*domain.ContainerRecord
	errs     map[string]error
	searchFn func(ctx context.Context, containerID string) (*domain.ContainerRecord, error)
	calls    []string
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{
		records: make(map[string]*domain.ContainerRecord),
		errs:    make(map[string]error),
	}
}

func (f *fakeSearcher) Search(ctx context.Context, containerID string, session domain.SessionContext, opts domain.SearchOptions) (*domain.ContainerRecord, error) {
	f.mu.Lock()
	f.calls = append(f.calls, containerID)
	record, err := f.records[containerID], f.errs[containerID]
	searchFn := f.searchFn
	f.mu.Unlock()

	if searchFn != nil {
		return searchFn(ctx, containerID)
	}
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, domain.NewHTTPError(containerID, 400, "container not found")
	}
	return record, nil
}

func (f *fakeSearcher) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

type fakeSessions struct {
	session domain.SessionContext
}

func (f *fakeSessions) Snapshot() domain.SessionContext { return f.session }

type fakePublisher struct {
	mu     sync.Mutex
	events []domain.DomainEvent
	err    error
}

func (f *fakePublisher) Publish(ctx context.Context, event domain.DomainEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return f.err
}

func (f *fakePublisher) EventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, len(f.events))
	for i, event := range f.events {
		types[i] = event.EventType()
	}
	return types
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*domain.ZoneProfile
	saveErr  error
}

func newFakeProfileRepo(profiles ...*domain.ZoneProfile) *fakeProfileRepo {
	repo := &fakeProfileRepo{profiles: make(map[string]*domain.ZoneProfile)}
	for _, p := range profiles {
		repo.profiles[p.Name] = p
	}
	return repo
}

func (f *fakeProfileRepo) Save(ctx context.Context, profile *domain.ZoneProfile) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := *profile
	f.profiles[profile.Name] = &copied
	return nil
}

func (f *fakeProfileRepo) FindByName(ctx context.Context, name string) (*domain.ZoneProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profiles[name], nil
}

func (f *fakeProfileRepo) FindAll(ctx context.Context) ([]*domain.ZoneProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	all := make([]*domain.ZoneProfile, 0, len(f.profiles))
	for _, p := range f.profiles {
		all = append(all, p)
	}
	return all, nil
}

func (f *fakeProfileRepo) Delete(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.profiles[name]; !ok {
		return domain.ErrProfileNotFound
	}
	delete(f.profiles, name)
	return nil
}

// fakeZoneScan returns an Active result per zone and tracks concurrency
type fakeZoneScan struct {
	inFlight    atomic.Int32
	maxInFlight atomic.Int32
	scanned     atomic.Int32
	onScan      func(ctx context.Context, zoneID string)
}

func (f *fakeZoneScan) ScanZone(ctx context.Context, zoneID string, session domain.SessionContext) domain.ZoneScanResult {
	current := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		seen := f.maxInFlight.Load()
		if current <= seen || f.maxInFlight.CompareAndSwap(seen, current) {
			break
		}
	}

	if f.onScan != nil {
		f.onScan(ctx, zoneID)
	}
	f.scanned.Add(1)
	return domain.NewActiveZoneResult(zoneID, 1, 2, []string{"BWS"}, scanTime)
}

func pallet(id string, units int, categories ...string) domain.ContainerRecord {
	return domain.ContainerRecord{
		ContainerID:          id,
		ContainerType:        "PALLET",
		SortationCategories:  categories,
		NumOfChildContainers: units,
	}
}

func totes(counts ...int) []domain.ContainerRecord {
	out := make([]domain.ContainerRecord, len(counts))
	for i, count := range counts {
		out[i] = domain.ContainerRecord{ContainerType: "TOTE", NumOfChildContainers: count}
	}
	return out
}
