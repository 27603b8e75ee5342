package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/dropzone-service/internal/domain"
)

// searchResponses maps container ids to canned container-search bodies.
// Unknown ids get the upstream's empty-container 400.
var searchResponses = map[string]string{
	"DZ-A01": `{"containerId": "DZ-A01", "childContainers": [
		{"containerId": "P1", "sortationCategories": ["BWS"], "numOfChildContainers": 2},
		{"containerId": "P2", "sortationCategory": "4 - LOW VALUE TTA", "numOfChildContainers": 1}
	]}`,
	"P1": `{"containerId": "P1", "childContainers": [
		{"containerId": "T1", "numOfChildContainers": 3},
		{"containerId": "T2", "numOfChildContainers": 4}
	]}`,
	"P2": `{"containerId": "P2", "childContainers": [
		{"containerId": "T3", "numOfChildContainers": 5}
	]}`,
	"DZ-A02": `{"containerId": "DZ-A02", "childContainers": []}`,
}

type searchServer struct {
	*httptest.Server
	mu      sync.Mutex
	seen    []string
	cookies []string
}

func newSearchServer(t *testing.T) *searchServer {
	t.Helper()
	s := &searchServer{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			ContainerID string `json:"containerId"`
			WarehouseID string `json:"warehouseId"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			http.Error(w, "bad body", http.StatusInternalServerError)
			return
		}

		s.mu.Lock()
		s.seen = append(s.seen, body.ContainerID)
		s.cookies = append(s.cookies, r.Header.Get("Cookie"))
		s.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		response, ok := searchResponses[body.ContainerID]
		if !ok {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message": "Container not found"}`))
			return
		}
		_, _ = w.Write([]byte(response))
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *searchServer) Seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.seen...)
}

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func sessionFlags(baseURL string) []string {
	return []string{"--base-url", baseURL, "--zone-id", "KTW1", "--operator-id", "jkowalski", "--log-level", "error"}
}

func TestScanCommand_DeepScanWithCSV(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	server := newSearchServer(t)
	output := filepath.Join(dir, "dropzones.csv")

	args := append([]string{"scan", "--prefix", "DZ-A", "--start", "1", "--end", "3", "--width", "2", "--output", output, "--cookie", "sid=42"}, sessionFlags(server.URL)...)
	stdout, stderr, err := executeCLI(t, args...)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Zones: 3 total, 1 active, 2 empty, 0 error")
	assert.Contains(t, stdout, "Pallets: 2  Units: 12")
	assert.Contains(t, stdout, "KTW1")
	assert.Contains(t, stdout, "LCJ4")
	assert.Contains(t, stderr, "scanned 3/3 zones")
	assert.ElementsMatch(t, []string{"DZ-A01", "P1", "P2", "DZ-A02", "DZ-A03"}, server.Seen())
	assert.Equal(t, "sid=42", server.cookies[0])

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()
	results, err := domain.ParseCSV(f)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "DZ-A01", results[0].ZoneID)
	assert.Equal(t, 12, results[0].UnitCount)
	assert.Equal(t, "4 - LOW VALUE TTA, BWS", results[0].SortationCategory)
	assert.Equal(t, "Empty", results[1].SortationCategory)
	assert.Equal(t, "N/A", results[2].SortationCategory)
}

func TestScanCommand_SurfaceProfileFileAsJSON(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	server := newSearchServer(t)

	profilePath := filepath.Join(dir, "morning.yaml")
	require.NoError(t, os.WriteFile(profilePath, []byte(`
description: first aisle
mode: surface
zoneList:
  custom: [DZ-A01]
`), 0o600))

	args := append([]string{"scan", "--profile-file", profilePath, "--json", "--progress=false"}, sessionFlags(server.URL)...)
	stdout, stderr, err := executeCLI(t, args...)
	require.NoError(t, err)
	assert.Empty(t, stderr)

	var agg domain.Aggregation
	require.NoError(t, json.Unmarshal([]byte(stdout), &agg))
	assert.Equal(t, 1, agg.Summary.ActiveZones)
	assert.Equal(t, 2, agg.Summary.TotalPallets)
	assert.Equal(t, 0, agg.Summary.TotalUnits)
	assert.Equal(t, []string{"DZ-A01"}, server.Seen())
}

func TestScanCommand_Rejections(t *testing.T) {
	server := newSearchServer(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{
			name:    "No zones",
			args:    append([]string{"scan"}, sessionFlags(server.URL)...),
			wantErr: "no destinations",
		},
		{
			name:    "Placeholder session",
			args:    []string{"scan", "--zones", "DZ-A01", "--base-url", server.URL, "--zone-id", "CDPL1", "--operator-id", "System"},
			wantErr: "--zone-id",
		},
		{
			name:    "Unknown mode",
			args:    append([]string{"scan", "--zones", "DZ-A01", "--mode", "sideways"}, sessionFlags(server.URL)...),
			wantErr: "sideways",
		},
		{
			name:    "Missing profile file",
			args:    append([]string{"scan", "--profile-file", "missing.yaml"}, sessionFlags(server.URL)...),
			wantErr: "open profile file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())

			_, _, err := executeCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, strings.ToLower(err.Error()), strings.ToLower(tt.wantErr))
		})
	}
	assert.Empty(t, server.Seen())
}

func TestZonesCommand(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	stdout, _, err := executeCLI(t, "zones", "--prefix", "DZ-B", "--start", "8", "--end", "10", "--width", "2", "--zones", "DZ-X1,DZ-B09")
	require.NoError(t, err)
	assert.Equal(t, "DZ-B08\nDZ-B09\nDZ-B10\nDZ-X1\n", stdout)

	profilePath := filepath.Join(dir, "aisle-b.yaml")
	_, _, err = executeCLI(t, "zones", "--prefix", "DZ-B", "--start", "1", "--end", "2", "--save-profile", profilePath, "--mode", "surface")
	require.NoError(t, err)

	profile, err := loadProfileFile(profilePath)
	require.NoError(t, err)
	assert.Equal(t, "aisle-b", profile.Name)
	assert.Equal(t, domain.ScanModeSurface, profile.Mode)
	assert.Equal(t, []string{"DZ-B1", "DZ-B2"}, profile.ZoneList.Custom)

	_, _, err = executeCLI(t, "zones", "--zones", "DZ-B1", "--save-profile", profilePath)
	assert.ErrorContains(t, err, "already exists")
}

func TestClassifyCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	stdout, _, err := executeCLI(t, "classify", "BWS", "MYSTERY")
	require.NoError(t, err)
	assert.Contains(t, stdout, "KTW1")
	assert.Contains(t, stdout, "Unknown")

	stdout, _, err = executeCLI(t, "classify")
	require.NoError(t, err)
	for _, destination := range []string{"BTS2", "KTW1", "LCJ4", "WRO1"} {
		assert.Contains(t, stdout, destination)
	}
}

func TestDecodeProfile(t *testing.T) {
	profile, err := decodeProfile(strings.NewReader("name: night\nmode: DEEP\nbatchSize: 4\nzoneList:\n  prefix: DZ-C\n  start: 1\n  end: 5\n"))
	require.NoError(t, err)
	assert.Equal(t, domain.ScanModeDeep, profile.Mode)
	ids, err := profile.ZoneIDs()
	require.NoError(t, err)
	assert.Len(t, ids, 5)

	_, err = decodeProfile(strings.NewReader("name: night\nzones: [DZ-1]\n"))
	assert.Error(t, err, "unknown fields are rejected")

	_, err = decodeProfile(strings.NewReader(""))
	assert.ErrorContains(t, err, "empty")
}
