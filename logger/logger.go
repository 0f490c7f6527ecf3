package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Log is the process logger, set by Init.
	Log *zap.Logger
)

// Init builds a console logger for development and a JSON logger otherwise.
// Both write to stderr so command output on stdout stays clean.
func Init(production bool) *zap.Logger {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "time",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.CapitalLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	encoder := zapcore.NewConsoleEncoder(encoderConfig)
	level := zapcore.DebugLevel
	if production {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
		level = zapcore.InfoLevel
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), level)
	Log = zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return Log
}

// Named returns a sugared child logger, initialising a development logger
// on first use.
func Named(name string) *zap.SugaredLogger {
	if Log == nil {
		Init(false)
	}
	return Log.Named(name).Sugar()
}

// Sync flushes buffered entries.
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}
