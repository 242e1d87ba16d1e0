// Package logger builds the zap logger shared by the CLI and the TUI.
package logger

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Config struct {
	Level    string
	Encoding string
	// Path is the log file. The TUI owns the terminal, so logs never go to
	// stdout. An empty path disables logging.
	Path string
}

// New returns a logger writing to cfg.Path and a func that flushes and closes it.
func New(cfg Config) (*zap.Logger, func(), error) {
	if cfg.Path == "" {
		return zap.NewNop(), func() {}, nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(cfg.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, err
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.InfoLevel
	if err := level.Set(cfg.Level); err != nil {
		// fall back to info level if parsing fails
		level = zapcore.InfoLevel
	}

	var encoder zapcore.Encoder
	switch cfg.Encoding {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	default:
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(zapcore.Lock(f)), level)
	log := zap.New(core, zap.AddCaller())
	closeFn := func() {
		_ = log.Sync()
		_ = f.Close()
	}
	return log, closeFn, nil
}
