package bootstrap

import (
	"hrms-lite/internal/config"

	"go.uber.org/zap"
)

// NewLogger builds the process logger: JSON in production, console output
// everywhere else. The result is also installed as zap's global logger.
func NewLogger(cfg config.AppConfig) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsProduction() {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}

	logger = logger.With(zap.String("env", cfg.Env), zap.String("version", cfg.Version))
	zap.ReplaceGlobals(logger)
	return logger, nil
}
