package config

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LoggingConfig controls console verbosity. A conversion never fails
// because of a logging setup problem — Prepare always returns a usable
// logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // "none", "normal", "debug"
}

// Prepare returns a configured *zap.Logger for the conversion run, the way
// fbc's LoggingConfig.Prepare builds its console/file tee.
func (conf *LoggingConfig) Prepare() *zap.Logger {
	ec := zap.NewDevelopmentEncoderConfig()
	ec.EncodeCaller = nil
	if EnableColorOutput(os.Stdout) {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	encoder := zapcore.NewConsoleEncoder(ec)

	var enabler zap.LevelEnablerFunc
	switch conf.Level {
	case "debug":
		enabler = func(lvl zapcore.Level) bool { return lvl >= zapcore.DebugLevel }
	case "none":
		return zap.NewNop()
	default:
		enabler = func(lvl zapcore.Level) bool { return lvl >= zapcore.InfoLevel }
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), enabler)
	return zap.New(core).Named("docxpdf")
}
