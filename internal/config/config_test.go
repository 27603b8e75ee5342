package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wms-platform/dropzone-service/internal/domain"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dropzone.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)

	assert.Equal(t, domain.ScanModeDeep, cfg.Scan.Mode)
	assert.Equal(t, 2, cfg.Scan.BatchSize)
	assert.Equal(t, 1, cfg.Scan.PalletConcurrency)
	assert.Equal(t, time.Duration(0), cfg.Scan.BatchDelay)
	assert.Equal(t, 20*time.Second, cfg.Search.Timeout)
	assert.Equal(t, "pl-PL", cfg.Search.Locale)
	assert.True(t, cfg.Scan.Zones.IsEmpty())
	assert.Equal(t, "wms.dropzone.events", cfg.Kafka.Topic)
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := writeConfigFile(t, `
server:
  addr: ":9000"
search:
  base_url: "https://search.example.test/"
  timeout: 5s
session:
  zone_id: KTW1
  operator_id: jkowalski
scan:
  mode: surface
  batch_size: 4
  zones:
    prefix: DZ-A
    start: 1
    end: 3
    width: 2
    custom: [DZ-X1]
kafka:
  brokers: [kafka-1:9092]
`)

	t.Setenv("DROPZONE_SCAN_BATCH_SIZE", "6")
	t.Setenv("KAFKA_BROKERS", "kafka-a:9092, kafka-b:9092")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.ServerAddr)
	assert.Equal(t, "https://search.example.test", cfg.Search.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.Search.Timeout)
	assert.True(t, cfg.Session.IsValid())
	assert.Equal(t, domain.ScanModeSurface, cfg.Scan.Mode)
	assert.Equal(t, 6, cfg.Scan.BatchSize)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, []string{"kafka-a:9092", "kafka-b:9092"}, cfg.Kafka.Brokers)

	ids, err := cfg.Scan.Zones.Expand()
	require.NoError(t, err)
	assert.Equal(t, []string{"DZ-A01", "DZ-A02", "DZ-A03", "DZ-X1"}, ids)
}

func TestLoad_PrefixedVariableWins(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SERVER_ADDR", ":7000")
	t.Setenv("DROPZONE_SERVER_ADDR", ":7001")

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, ":7001", cfg.ServerAddr)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"Unknown mode", map[string]string{"DROPZONE_SCAN_MODE": "sideways"}},
		{"Zero batch size", map[string]string{"DROPZONE_SCAN_BATCH_SIZE": "0"}},
		{"Zero pallet concurrency", map[string]string{"DROPZONE_SCAN_PALLET_CONCURRENCY": "0"}},
		{"Inverted zone range", map[string]string{
			"DROPZONE_SCAN_ZONES_PREFIX": "DZ-",
			"DROPZONE_SCAN_ZONES_START":  "9",
			"DROPZONE_SCAN_ZONES_END":    "1",
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			_, err := Load(viper.New(), "")
			assert.Error(t, err)
		})
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitList([]string{"a, b", " ", "c,"}))
	assert.Empty(t, splitList(nil))
}
