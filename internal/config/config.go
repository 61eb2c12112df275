// Package config reads the server configuration from the environment.
//
// Only the orchestration layer (server, HTTP transport, batch driver,
// export) sees a Config. Raster operations take explicit arguments.
package config

import (
	"strings"
	"time"

	"github.com/ironsheep/asset-studio-mcp/internal/detection"
	"github.com/ironsheep/asset-studio-mcp/internal/imaging"
	"github.com/pkg/errors"
)

// Environment variable names.
const (
	EnvLogLevel       = "ASSET_STUDIO_LOG_LEVEL"
	EnvHTTPAddr       = "ASSET_STUDIO_HTTP_ADDR"
	EnvBatchWorkers   = "ASSET_STUDIO_BATCH_WORKERS"
	EnvToleranceScale = "ASSET_STUDIO_TOLERANCE_SCALE"
	EnvMinIslandArea  = "ASSET_STUDIO_MIN_ISLAND_AREA"
	EnvFetchTimeout   = "ASSET_STUDIO_FETCH_TIMEOUT"
	EnvMaxFetchBytes  = "ASSET_STUDIO_MAX_FETCH_BYTES"
	EnvExportDir      = "ASSET_STUDIO_EXPORT_DIR"
	EnvS3Bucket       = "ASSET_STUDIO_S3_BUCKET"
	EnvS3Region       = "ASSET_STUDIO_S3_REGION"
	EnvS3Prefix       = "ASSET_STUDIO_S3_PREFIX"
	EnvNodeID         = "ASSET_STUDIO_NODE_ID"
)

// Defaults.
const (
	DefaultLogLevel     = "info"
	DefaultBatchWorkers = 1
	DefaultExportDir    = "exports"
	DefaultS3Region     = "us-east-1"
	DefaultNodeID       = 1
)

var logLevels = []string{"debug", "info", "warn", "error"}

// Config holds every tunable of the server.
type Config struct {
	LogLevel string

	// HTTPAddr enables the HTTP transport when non-empty.
	HTTPAddr string

	BatchWorkers   int
	ToleranceScale float64
	MinIslandArea  int
	FetchTimeout   time.Duration
	MaxFetchBytes  int64

	ExportDir string
	S3Bucket  string
	S3Region  string
	S3Prefix  string

	// NodeID seeds asset ID generation (0-1023).
	NodeID int64
}

// Load reads the environment. Unparseable numbers fall back to their
// default; values that parse but are out of range are an error.
func Load() (Config, error) {
	cfg := Config{
		LogLevel:       strings.ToLower(GetEnvString(EnvLogLevel, DefaultLogLevel)),
		HTTPAddr:       GetEnvString(EnvHTTPAddr, ""),
		BatchWorkers:   GetEnvInt(EnvBatchWorkers, DefaultBatchWorkers),
		ToleranceScale: GetEnvFloat64(EnvToleranceScale, imaging.DefaultToleranceScale),
		MinIslandArea:  GetEnvInt(EnvMinIslandArea, detection.DefaultMinIslandArea),
		FetchTimeout:   GetEnvDuration(EnvFetchTimeout, imaging.DefaultFetchTimeout),
		MaxFetchBytes:  GetEnvInt64(EnvMaxFetchBytes, imaging.DefaultMaxFetchBytes),
		ExportDir:      GetEnvString(EnvExportDir, DefaultExportDir),
		S3Bucket:       GetEnvString(EnvS3Bucket, ""),
		S3Region:       GetEnvString(EnvS3Region, DefaultS3Region),
		S3Prefix:       GetEnvString(EnvS3Prefix, ""),
		NodeID:         GetEnvInt64(EnvNodeID, DefaultNodeID),
	}
	return cfg, cfg.Validate()
}

// Validate checks ranges.
func (c Config) Validate() error {
	if !validLevel(c.LogLevel) {
		return errors.Errorf("%s: unknown level %q (want one of %s)",
			EnvLogLevel, c.LogLevel, strings.Join(logLevels, ", "))
	}
	if c.BatchWorkers < 1 {
		return errors.Errorf("%s: must be at least 1, got %d", EnvBatchWorkers, c.BatchWorkers)
	}
	if c.ToleranceScale <= 0 {
		return errors.Errorf("%s: must be positive, got %g", EnvToleranceScale, c.ToleranceScale)
	}
	if c.MinIslandArea < 0 {
		return errors.Errorf("%s: must not be negative, got %d", EnvMinIslandArea, c.MinIslandArea)
	}
	if c.FetchTimeout <= 0 {
		return errors.Errorf("%s: must be positive, got %s", EnvFetchTimeout, c.FetchTimeout)
	}
	if c.MaxFetchBytes <= 0 {
		return errors.Errorf("%s: must be positive, got %d", EnvMaxFetchBytes, c.MaxFetchBytes)
	}
	if c.NodeID < 0 || c.NodeID > 1023 {
		return errors.Errorf("%s: must be in 0..1023, got %d", EnvNodeID, c.NodeID)
	}
	return nil
}

func validLevel(level string) bool {
	for _, l := range logLevels {
		if l == level {
			return true
		}
	}
	return false
}
