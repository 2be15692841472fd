// Package logger builds configured log/slog loggers.
//
// Defaults favor production: JSON handler, info level, stdout. Options
// switch to text output for development, raise or lower the level and
// attach static attributes such as the service name.
//
//	log := logger.New(
//		logger.WithService("remindersd"),
//		logger.WithFormat(logger.FormatText),
//		logger.WithLevel(slog.LevelDebug),
//	)
package logger
