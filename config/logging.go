package config

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

var Debug = false

// DebugLog is a no-op logger until InitDebugLog enables file logging.
var DebugLog = zap.NewNop().Sugar()

func CheckDebug() bool {
	debug := os.Getenv("EDUSOLVER_DEBUG")
	return debug == "true" || debug == "1"
}

// InitDebugLog writes debug output to <dataDir>/debug.log when EDUSOLVER_DEBUG
// is set. The log may contain prompts, so it is created user-only.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}
	f.Close()

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	cfg.OutputPaths = []string{logPath}
	cfg.ErrorOutputPaths = []string{logPath}

	logger, err := cfg.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not start debug log: %v\n", err)
		return
	}

	DebugLog = logger.Sugar()
	DebugLog.Infow("debug logging started", "EDUSOLVER_DEBUG", os.Getenv("EDUSOLVER_DEBUG"), "path", logPath)
}

// SyncDebugLog flushes buffered log entries.
func SyncDebugLog() {
	_ = DebugLog.Sync()
}
