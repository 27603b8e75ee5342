package application

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/dropzone-service/internal/domain"
	"github.com/wms-platform/dropzone-service/internal/infrastructure/containersearch"
	"github.com/wms-platform/dropzone-service/pkg/logging"
)

type noCookie struct{}

func (noCookie) Cookie() string { return "" }

// newSearchBackedScanner wires a real container-search client to an
// httptest server answering from responses.
func newSearchBackedScanner(t *testing.T, responses map[string]string, mode domain.ScanMode) *ZoneScanner {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ContainerID string `json:"containerId"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		response, ok := responses[body.ContainerID]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(server.Close)

	client, err := containersearch.NewClient(containersearch.DefaultConfig(server.URL), noCookie{}, logging.NewNop())
	require.NoError(t, err)

	return NewZoneScanner(client, ZoneScannerConfig{Mode: mode, Silent: true}, logging.NewNop(), nil)
}

func TestZoneScanner_DeepScanThroughSearchClient(t *testing.T) {
	scanner := newSearchBackedScanner(t, map[string]string{
		"DZ-A01": `{"childContainers": [{"containerId": "P1", "sortationCategories": ["BWS"], "numOfChildContainers": 0}]}`,
		"P1":     `{"childContainers": [{"numOfChildContainers": 7}]}`,
	}, domain.ScanModeDeep)

	result := scanner.ScanZone(t.Context(), "DZ-A01", validSession)

	assert.Equal(t, domain.ZoneStatusActive, result.Status)
	assert.Equal(t, 1, result.PalletCount)
	assert.Equal(t, 7, result.UnitCount)
	assert.Equal(t, "BWS", result.SortationCategory)

	agg := domain.Aggregate([]domain.ZoneScanResult{result})
	require.Contains(t, agg.PerDestination, domain.DestinationKTW1)
	assert.Equal(t, 1, agg.PerDestination[domain.DestinationKTW1].PalletShare)
	assert.Equal(t, 7, agg.PerDestination[domain.DestinationKTW1].UnitShare)
}

func TestZoneScanner_EmptyZoneThroughSearchClient(t *testing.T) {
	scanner := newSearchBackedScanner(t, map[string]string{
		"DZ-A02": `{"childContainers": []}`,
	}, domain.ScanModeDeep)

	empty := scanner.ScanZone(t.Context(), "DZ-A02", validSession)
	assert.Equal(t, domain.ZoneStatusEmpty, empty.Status)
	assert.Equal(t, domain.CategoryEmpty, empty.SortationCategory)

	missing := scanner.ScanZone(t.Context(), "DZ-A99", validSession)
	assert.Equal(t, domain.ZoneStatusEmpty, missing.Status)
	assert.Equal(t, domain.CategoryNotAvailable, missing.SortationCategory)
}
