// Package logging provides structured logging for planpilot sync runs.
//
// This package wraps Go's log/slog to provide JSON-formatted logs with
// context propagation support, so that every log line from a sync run can be
// attributed to the run, the plan, and the phase that produced it.
//
// # Features
//
//   - JSON-formatted structured logging via slog
//   - Configurable log levels (DEBUG, INFO, WARN, ERROR)
//   - Context propagation (run ID, plan ID, phase)
//
// # Thread Safety
//
// All types in this package are safe for concurrent use. The [Logger] type
// uses Go's slog internally, which is designed for concurrent access. Child
// loggers created via With* methods share the underlying writer safely,
// which matters because the engine's bounded worker pools log from many
// goroutines within a single phase.
//
// # Basic Usage
//
// Create a logger for a sync run:
//
//	logger, err := logging.NewLogger("", "INFO")
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	logger.Info("sync started", "plan_id", planID)
//	logger.Warn("capability not advertised", "capability", "supports_issue_types")
//	logger.Error("upsert failed", "error", err.Error())
//
// # Context Propagation
//
// Create child loggers with persistent context attributes:
//
//	runLogger := logger.WithRun(runID)
//	planLogger := runLogger.WithPlanID(planID)
//	phaseLogger := planLogger.WithPhase("upsert")
//
//	// All logs from phaseLogger include run_id, plan_id, and phase.
//	phaseLogger.Info("item created", "item_id", "T1")
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"item created","run_id":"...","plan_id":"a1b2c3d4e5f6","phase":"upsert","item_id":"T1"}
//
// # Testing
//
// For testing, use [NopLogger] to discard all log output:
//
//	func TestSomething(t *testing.T) {
//	    logger := logging.NopLogger()
//	    // Use logger in tests without creating files
//	}
//
// # Log Levels
//
// The package defines four log levels:
//
//   - [LevelDebug]: Detailed information for debugging
//   - [LevelInfo]: General operational information (default)
//   - [LevelWarn]: Warning conditions that may need attention
//   - [LevelError]: Error conditions that affect functionality
//
// Use [ValidLevels] to get the list of valid level strings, and [ParseLevel]
// to normalize user-provided level strings.
package logging
