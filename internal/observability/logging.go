// Package observability provides logging for CLI and server components.
//
// CLI output discipline: structured logs go to stderr so stdout stays
// reserved for data (JSONL records, tables). The server reuses the same
// logger configuration.
package observability

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// CLILogger is the process-wide logger. It defaults to a no-op logger
// until InitCLILogger runs so early failures can still log safely.
var CLILogger = zap.NewNop()

// InitCLILogger configures the global logger.
//
// Level is one of debug, info, warn, error. When jsonOutput is true the
// logger emits one JSON object per line; otherwise it uses a console
// encoding meant for humans. Both write to stderr.
func InitCLILogger(level string, jsonOutput bool) error {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "ts"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if jsonOutput {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.Lock(os.Stderr), lvl)
	CLILogger = zap.New(core)
	return nil
}

// Sync flushes buffered log entries. Stderr sync errors are expected on
// some platforms and ignored.
func Sync() {
	_ = CLILogger.Sync()
}
