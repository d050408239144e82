package observability

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a zap logger. development selects the console encoder and
// development defaults; otherwise the production JSON config is used. level
// is one of debug, info, warn, error; empty means info.
func NewLogger(level string, development bool) (*zap.Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewProductionConfig()
	if development {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	logger, err := cfg.Build()
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "build logger")
	}
	return logger, nil
}

// ParseLevel maps a level name to a zapcore.Level.
func ParseLevel(level string) (zapcore.Level, error) {
	if strings.TrimSpace(level) == "" {
		return zapcore.InfoLevel, nil
	}
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(strings.TrimSpace(level)))); err != nil {
		return lvl, goerrors.New("unknown log level "+level, goerrors.CategoryBadInput).
			WithTextCode("LOG_LEVEL_INVALID")
	}
	return lvl, nil
}
