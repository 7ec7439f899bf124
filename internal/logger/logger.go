package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Logger interface {
	Debug(msg string, fields ...zap.Field)
	Info(msg string, fields ...zap.Field)
	Warn(msg string, fields ...zap.Field)
	Error(msg string, fields ...zap.Field)
	Fatal(msg string, fields ...zap.Field)

	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	Fatalf(template string, args ...interface{})

	Sync() error
}

// Mode selects how console and file output are filtered.
type Mode int

const (
	ModeDefault Mode = iota
	// ModeWithBoard enables DEBUG everywhere so rendered boards are logged.
	ModeWithBoard
	// ModeNoFileLog creates the log file with a single "no-file-log" line.
	ModeNoFileLog
	// ModeConsoleNoInfo drops INFO records from the console.
	ModeConsoleNoInfo
	// ModeFileNoInfo keeps only WARN and above in the log file.
	ModeFileNoInfo
)

func (m Mode) String() string {
	switch m {
	case ModeWithBoard:
		return "log-with-board"
	case ModeNoFileLog:
		return "no-file-log"
	case ModeConsoleNoInfo:
		return "log-no-info"
	case ModeFileNoInfo:
		return "log-file-no-info"
	default:
		return "default"
	}
}

// Options configures NewWithOptions.
type Options struct {
	Level  string // "debug" | "info" | "warn" | "error"
	Pretty bool   // true => colored console, false => JSON console
	Dir    string // directory for the per-run log file, empty = no file
	Mode   Mode
	Now    func() time.Time // log file naming, defaults to time.Now
}

// LogFileLayout names the per-run log file.
const LogFileLayout = "2006-01-02_15-04-05.log"

type loggerImpl struct {
	base    *zap.Logger
	sugared *zap.SugaredLogger
}

// New builds a console-only logger.
func New(level string, pretty bool) Logger {
	l, _, err := NewWithOptions(Options{Level: level, Pretty: pretty})
	if err != nil {
		panic(err)
	}
	return l
}

// NewWithOptions builds a logger writing to the console and, when
// opts.Dir is set, to a timestamped file in that directory. It returns the
// log file path (empty when no file is used).
func NewWithOptions(opts Options) (Logger, string, error) {
	base := zapcore.InfoLevel
	if lvl := parseLevel(opts.Level); lvl != nil {
		base = *lvl
	}
	if opts.Mode == ModeWithBoard {
		base = zapcore.DebugLevel
	}

	cores := []zapcore.Core{consoleCore(opts, base)}

	var path string
	if opts.Dir != "" {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return nil, "", fmt.Errorf("failed to create log directory: %w", err)
		}
		path = filepath.Join(opts.Dir, now().Format(LogFileLayout))

		core, err := fileCore(path, opts.Mode, base)
		if err != nil {
			return nil, "", err
		}
		if core != nil {
			cores = append(cores, core)
		}
	}

	zl := zap.New(zapcore.NewTee(cores...),
		zap.AddStacktrace(zapcore.FatalLevel), // Only add stack traces for Fatal
	)

	return &loggerImpl{
		base:    zl,
		sugared: zl.Sugar(),
	}, path, nil
}

func consoleCore(opts Options, base zapcore.Level) zapcore.Core {
	var enc zapcore.Encoder
	if opts.Pretty {
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(cfg)
	} else {
		enc = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	dropInfo := opts.Mode == ModeConsoleNoInfo
	enabler := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		if dropInfo && l == zapcore.InfoLevel {
			return false
		}
		return l >= base
	})

	return zapcore.NewCore(enc, zapcore.Lock(os.Stderr), enabler)
}

func fileCore(path string, mode Mode, base zapcore.Level) (zapcore.Core, error) {
	if mode == ModeNoFileLog {
		if err := os.WriteFile(path, []byte("no-file-log\n"), 0o644); err != nil {
			return nil, fmt.Errorf("failed to create log file: %w", err)
		}
		return nil, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	level := base
	if mode == ModeFileNoInfo && level < zapcore.WarnLevel {
		level = zapcore.WarnLevel
	}

	enc := zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
		TimeKey:          "ts",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout("15:04:05"),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	})

	return zapcore.NewCore(enc, zapcore.AddSync(f), level), nil
}

func parseLevel(lvl string) *zapcore.Level {
	switch lvl {
	case "debug":
		l := zapcore.DebugLevel
		return &l
	case "info":
		l := zapcore.InfoLevel
		return &l
	case "warn":
		l := zapcore.WarnLevel
		return &l
	case "error":
		l := zapcore.ErrorLevel
		return &l
	default:
		return nil
	}
}

func (l *loggerImpl) Debug(msg string, fields ...zap.Field) { l.base.Debug(msg, fields...) }
func (l *loggerImpl) Info(msg string, fields ...zap.Field)  { l.base.Info(msg, fields...) }
func (l *loggerImpl) Warn(msg string, fields ...zap.Field)  { l.base.Warn(msg, fields...) }
func (l *loggerImpl) Error(msg string, fields ...zap.Field) { l.base.Error(msg, fields...) }
func (l *loggerImpl) Fatal(msg string, fields ...zap.Field) { l.base.Fatal(msg, fields...) }

func (l *loggerImpl) Debugf(t string, args ...interface{}) { l.sugared.Debugf(t, args...) }
func (l *loggerImpl) Infof(t string, args ...interface{})  { l.sugared.Infof(t, args...) }
func (l *loggerImpl) Warnf(t string, args ...interface{})  { l.sugared.Warnf(t, args...) }
func (l *loggerImpl) Errorf(t string, args ...interface{}) { l.sugared.Errorf(t, args...) }
func (l *loggerImpl) Fatalf(t string, args ...interface{}) { l.sugared.Fatalf(t, args...) }

func (l *loggerImpl) Sync() error { return l.base.Sync() }

// Field constructors (re-exported from zap for convenience)
// This allows other packages to use structured logging without importing zap directly.
func String(key, val string) zap.Field                 { return zap.String(key, val) }
func Strings(key string, val []string) zap.Field       { return zap.Strings(key, val) }
func Int(key string, val int) zap.Field                { return zap.Int(key, val) }
func Bool(key string, val bool) zap.Field              { return zap.Bool(key, val) }
func Float64(key string, val float64) zap.Field        { return zap.Float64(key, val) }
func Duration(key string, val time.Duration) zap.Field { return zap.Duration(key, val) }
func Time(key string, val time.Time) zap.Field         { return zap.Time(key, val) }
func Error(err error) zap.Field                        { return zap.Error(err) }
