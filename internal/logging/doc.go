// Package logging provides structured logging for godotserve.
//
// The package wraps a global zap logger with convenience functions. Server
// components never construct their own loggers; they call the package-level
// helpers so that the level chosen on the command line applies everywhere.
//
// # Log Levels
//
//   - Debug: per-connection and per-request detail (handshakes, served paths)
//   - Info: startup, certificate provisioning, reload broadcasts
//   - Warn: recoverable problems (file watcher errors, mDNS failures)
//   - Error: dropped connections, startup failures
//
// # Configuration
//
//	if err := logging.Initialize("debug"); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// When the level is empty the GODOTSERVE_LOG_LEVEL environment variable is
// consulted, falling back to "info". Output goes to stderr in console format so
// that the startup banner on stdout stays readable.
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once Initialize has run.
package logging
