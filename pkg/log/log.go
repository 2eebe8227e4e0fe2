package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Verbosity string

const (
	DebugVerbosity Verbosity = "debug"
	InfoVerbosity  Verbosity = "info"
	ErrorVerbosity Verbosity = "error"
)

type Config struct {
	LogVerbosity Verbosity
}

// Logger is a leveled key/value logger writing to stderr.
// Stdout belongs to the command output (paths, previews).
type Logger struct {
	sugar *zap.SugaredLogger
}

func NewLogger(c *Config) (*Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.ErrorLevel)
	if c.LogVerbosity != "" {
		if err := level.UnmarshalText([]byte(c.LogVerbosity)); err != nil {
			return nil, err
		}
	}

	encoderConfig := zap.NewDevelopmentEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.Lock(os.Stderr),
		level,
	)

	return &Logger{sugar: zap.New(core).Sugar()}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{sugar: zap.NewNop().Sugar()}
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.sugar.Debugw(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.sugar.Infow(msg, keysAndValues...)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.sugar.Errorw(msg, keysAndValues...)
}

func (l *Logger) Fatal(msg string, keysAndValues ...interface{}) {
	l.sugar.Fatalw(msg, keysAndValues...)
}

func (l *Logger) With(keysAndValues ...interface{}) *Logger {
	return &Logger{sugar: l.sugar.With(keysAndValues...)}
}

func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
