package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wms-platform/dropzone-service/internal/domain"
)

func TestStore_SnapshotIsolation(t *testing.T) {
	store := NewStore(domain.SessionContext{ZoneID: domain.SentinelZoneID, OperatorID: domain.SentinelOperatorID}, "")
	assert.False(t, store.State().Valid)

	store.Update(domain.SessionContext{ZoneID: "KTW1", OperatorID: "jkowal"}, "sid=1")
	snapshot := store.Snapshot()

	store.Update(domain.SessionContext{ZoneID: "WRO1", OperatorID: "anowak"}, "")

	assert.Equal(t, domain.SessionContext{ZoneID: "KTW1", OperatorID: "jkowal"}, snapshot)
	assert.Equal(t, "WRO1", store.Snapshot().ZoneID)
	assert.Equal(t, "sid=1", store.Cookie(), "empty cookie keeps the previous one")

	state := store.State()
	assert.True(t, state.Valid)
	assert.True(t, state.HasCookie)
	assert.False(t, state.UpdatedAt.IsZero())
}

func TestStore_ConcurrentAccess(t *testing.T) {
	store := NewStore(domain.SessionContext{}, "")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			store.Update(domain.SessionContext{ZoneID: "KTW1", OperatorID: "jkowal"}, "sid=2")
		}()
		go func() {
			defer wg.Done()
			_ = store.Snapshot()
			_ = store.Cookie()
		}()
	}
	wg.Wait()

	assert.Equal(t, "KTW1", store.Snapshot().ZoneID)
}
