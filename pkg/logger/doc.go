// Package logger provides structured logging for fredcat on top of zerolog.
//
// Console output is human-readable with colored level tags. When a log file
// is configured the same entries are also appended to it.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("component", "traversal")
//	log.InfoWithFields("Level complete", logger.Fields{"depth": 2, "rows": 118})
//
// Tests use NewTestLogger to capture entries, or NewNopLogger to discard them.
package logger
