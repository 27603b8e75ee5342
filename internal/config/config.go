// Package config loads service and CLI configuration from defaults, an
// optional YAML file and environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/wms-platform/dropzone-service/internal/domain"
	"github.com/wms-platform/dropzone-service/internal/infrastructure/containersearch"
)

const (
	// EnvPrefix prefixes every service specific environment variable
	EnvPrefix = "DROPZONE"

	configName = "dropzone"
	configType = "yaml"
)

// Keys
const (
	KeyServerAddr     = "server.addr"
	KeyEnvironment    = "environment"
	KeyLogLevel       = "log.level"
	KeyAllowedOrigins = "server.allowed_origins"

	KeySearchBaseURL  = "search.base_url"
	KeySearchEndpoint = "search.endpoint_path"
	KeySearchLocale   = "search.locale"
	KeySearchTimeout  = "search.timeout"
	KeySearchCookie   = "search.cookie"

	KeySessionZoneID     = "session.zone_id"
	KeySessionOperatorID = "session.operator_id"

	KeyScanMode              = "scan.mode"
	KeyScanBatchSize         = "scan.batch_size"
	KeyScanBatchDelay        = "scan.batch_delay"
	KeyScanPalletConcurrency = "scan.pallet_concurrency"
	KeyScanSilent            = "scan.silent"
	KeyZonesPrefix           = "scan.zones.prefix"
	KeyZonesStart            = "scan.zones.start"
	KeyZonesEnd              = "scan.zones.end"
	KeyZonesWidth            = "scan.zones.width"
	KeyZonesCustom           = "scan.zones.custom"

	KeyMongoEnabled  = "mongodb.enabled"
	KeyMongoURI      = "mongodb.uri"
	KeyMongoDatabase = "mongodb.database"

	KeyKafkaEnabled = "kafka.enabled"
	KeyKafkaBrokers = "kafka.brokers"
	KeyKafkaTopic   = "kafka.topic"

	KeyTracingEnabled  = "tracing.enabled"
	KeyTracingEndpoint = "tracing.endpoint"
)

var allKeys = []string{
	KeyServerAddr, KeyEnvironment, KeyLogLevel, KeyAllowedOrigins,
	KeySearchBaseURL, KeySearchEndpoint, KeySearchLocale, KeySearchTimeout, KeySearchCookie,
	KeySessionZoneID, KeySessionOperatorID,
	KeyScanMode, KeyScanBatchSize, KeyScanBatchDelay, KeyScanPalletConcurrency, KeyScanSilent,
	KeyZonesPrefix, KeyZonesStart, KeyZonesEnd, KeyZonesWidth, KeyZonesCustom,
	KeyMongoEnabled, KeyMongoURI, KeyMongoDatabase,
	KeyKafkaEnabled, KeyKafkaBrokers, KeyKafkaTopic,
	KeyTracingEnabled, KeyTracingEndpoint,
}

// plainEnv lists the platform wide variable names accepted next to the
// DROPZONE_ prefixed ones
var plainEnv = map[string]string{
	KeyServerAddr:      "SERVER_ADDR",
	KeyEnvironment:     "ENVIRONMENT",
	KeyLogLevel:        "LOG_LEVEL",
	KeyMongoURI:        "MONGODB_URI",
	KeyMongoDatabase:   "MONGODB_DATABASE",
	KeyKafkaBrokers:    "KAFKA_BROKERS",
	KeyTracingEnabled:  "TRACING_ENABLED",
	KeyTracingEndpoint: "OTEL_EXPORTER_OTLP_ENDPOINT",
}

// Config is the complete runtime configuration
type Config struct {
	ServerAddr     string
	Environment    string
	LogLevel       string
	AllowedOrigins []string

	Search  SearchConfig
	Session domain.SessionContext
	Scan    ScanConfig
	MongoDB MongoDBConfig
	Kafka   KafkaConfig
	Tracing TracingConfig
}

// SearchConfig configures the container-search client
type SearchConfig struct {
	BaseURL      string
	EndpointPath string
	Locale       string
	Timeout      time.Duration
	Cookie       string
}

// ScanConfig holds scan defaults
type ScanConfig struct {
	Mode              domain.ScanMode
	BatchSize         int
	BatchDelay        time.Duration
	PalletConcurrency int
	Silent            bool
	Zones             domain.ZoneListSpec
}

// MongoDBConfig configures zone profile storage
type MongoDBConfig struct {
	Enabled  bool
	URI      string
	Database string
}

// KafkaConfig configures scan lifecycle events
type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

// TracingConfig configures OpenTelemetry export
type TracingConfig struct {
	Enabled  bool
	Endpoint string
}

// SetDefaults registers every default on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyServerAddr, ":8030")
	v.SetDefault(KeyEnvironment, "development")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyAllowedOrigins, []string{"*"})

	v.SetDefault(KeySearchBaseURL, "http://localhost:8080")
	v.SetDefault(KeySearchEndpoint, containersearch.DefaultEndpointPath)
	v.SetDefault(KeySearchLocale, containersearch.DefaultLocale)
	v.SetDefault(KeySearchTimeout, containersearch.DefaultTimeout)

	v.SetDefault(KeyScanMode, string(domain.ScanModeDeep))
	v.SetDefault(KeyScanBatchSize, 2)
	v.SetDefault(KeyScanBatchDelay, time.Duration(0))
	v.SetDefault(KeyScanPalletConcurrency, 1)
	v.SetDefault(KeyScanSilent, false)

	v.SetDefault(KeyMongoEnabled, true)
	v.SetDefault(KeyMongoURI, "mongodb://localhost:27017")
	v.SetDefault(KeyMongoDatabase, "dropzone_db")

	v.SetDefault(KeyKafkaEnabled, true)
	v.SetDefault(KeyKafkaBrokers, []string{"localhost:9092"})
	v.SetDefault(KeyKafkaTopic, "wms.dropzone.events")

	v.SetDefault(KeyTracingEnabled, true)
	v.SetDefault(KeyTracingEndpoint, "localhost:4317")
}

// BindEnv binds every key to DROPZONE_<KEY> and, where the platform has
// one, to its plain variable name. The prefixed name wins.
func BindEnv(v *viper.Viper) error {
	for _, key := range allKeys {
		names := []string{EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))}
		if plain, ok := plainEnv[key]; ok {
			names = append(names, plain)
		}
		if err := v.BindEnv(append([]string{key}, names...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}
	return nil
}

// Load builds a Config from v. configFile names an explicit YAML file; when
// empty, dropzone.yaml is looked up in the working directory and
// /etc/dropzone and skipped if absent.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	SetDefaults(v)

	v.SetConfigType(configType)
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName(configName)
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/dropzone")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	if err := BindEnv(v); err != nil {
		return nil, err
	}

	return FromViper(v)
}

// FromViper reads a Config out of an already populated v
func FromViper(v *viper.Viper) (*Config, error) {
	mode, err := domain.ParseScanMode(v.GetString(KeyScanMode))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ServerAddr:     v.GetString(KeyServerAddr),
		Environment:    v.GetString(KeyEnvironment),
		LogLevel:       strings.ToLower(v.GetString(KeyLogLevel)),
		AllowedOrigins: splitList(v.GetStringSlice(KeyAllowedOrigins)),
		Search: SearchConfig{
			BaseURL:      strings.TrimRight(v.GetString(KeySearchBaseURL), "/"),
			EndpointPath: v.GetString(KeySearchEndpoint),
			Locale:       v.GetString(KeySearchLocale),
			Timeout:      v.GetDuration(KeySearchTimeout),
			Cookie:       v.GetString(KeySearchCookie),
		},
		Session: domain.SessionContext{
			ZoneID:     strings.TrimSpace(v.GetString(KeySessionZoneID)),
			OperatorID: strings.TrimSpace(v.GetString(KeySessionOperatorID)),
		},
		Scan: ScanConfig{
			Mode:              mode,
			BatchSize:         v.GetInt(KeyScanBatchSize),
			BatchDelay:        v.GetDuration(KeyScanBatchDelay),
			PalletConcurrency: v.GetInt(KeyScanPalletConcurrency),
			Silent:            v.GetBool(KeyScanSilent),
			Zones: domain.ZoneListSpec{
				Prefix: strings.TrimSpace(v.GetString(KeyZonesPrefix)),
				Start:  v.GetInt(KeyZonesStart),
				End:    v.GetInt(KeyZonesEnd),
				Width:  v.GetInt(KeyZonesWidth),
				Custom: splitList(v.GetStringSlice(KeyZonesCustom)),
			},
		},
		MongoDB: MongoDBConfig{
			Enabled:  v.GetBool(KeyMongoEnabled),
			URI:      v.GetString(KeyMongoURI),
			Database: v.GetString(KeyMongoDatabase),
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool(KeyKafkaEnabled),
			Brokers: splitList(v.GetStringSlice(KeyKafkaBrokers)),
			Topic:   v.GetString(KeyKafkaTopic),
		},
		Tracing: TracingConfig{
			Enabled:  v.GetBool(KeyTracingEnabled),
			Endpoint: v.GetString(KeyTracingEndpoint),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late at runtime
func (c *Config) Validate() error {
	if c.Scan.BatchSize < 1 {
		return fmt.Errorf("scan.batch_size must be positive, got %d", c.Scan.BatchSize)
	}
	if c.Scan.PalletConcurrency < 1 {
		return fmt.Errorf("scan.pallet_concurrency must be positive, got %d", c.Scan.PalletConcurrency)
	}
	if c.Scan.BatchDelay < 0 {
		return fmt.Errorf("scan.batch_delay must not be negative")
	}
	if c.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be positive")
	}
	if c.Search.BaseURL == "" {
		return fmt.Errorf("search.base_url is required")
	}
	if err := c.Scan.Zones.Validate(); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}

// splitList flattens comma separated entries, which is how lists arrive
// from environment variables
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
