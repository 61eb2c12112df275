// Package logger builds the process logger and the fields shared by every
// component.
//
// Logs go to stderr as JSON. Stdout belongs to the MCP transport.
package logger

import (
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a production JSON logger writing to stderr at level
// (debug, info, warn or error).
func New(level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "parse log level %q", level)
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	l, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "build logger failed")
	}
	return l, nil
}

// Tool tags a log entry with the MCP tool or HTTP operation name.
func Tool(name string) zap.Field {
	return zap.String("tool", name)
}

// AssetID tags a log entry with the asset it concerns.
func AssetID(id string) zap.Field {
	return zap.String("asset_id", id)
}

// Duration records how long a call took.
func Duration(d time.Duration) zap.Field {
	return zap.Duration("duration", d)
}
