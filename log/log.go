// Package log - Structured logging for the detection pipeline.
package log

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"
	"sync"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	defaultLogger *logrus.Logger
	once          sync.Once
)

// SessionIDKey is the field and context key carrying the session identifier.
const SessionIDKey = "session_id"

type contextKey string

// Fields is an alias for logrus.Fields.
type Fields = logrus.Fields

// Options configures a logger.
type Options struct {
	// Level is a logrus level name. Defaults to info.
	Level string `json:"level" yaml:"level"`
	// File enables rotating file output in addition to stderr.
	File string `json:"file" yaml:"file"`
	// NoColors disables ANSI colors in the console output.
	NoColors bool `json:"no_colors" yaml:"no_colors"`
	// ReportCaller adds the calling file, line and function to each entry.
	ReportCaller bool `json:"report_caller" yaml:"report_caller"`
}

// NewLogger creates a logger writing to stderr and, when File is set, to a rotating log file.
//
// Arguments:
//   - opts: The logger options.
//
// Returns:
//   - *logrus.Logger: The configured logger.
//   - error: An error if the level cannot be parsed.
func NewLogger(opts Options) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = parsed
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&formatter.Formatter{
		NoColors:        opts.NoColors,
		TimestampFormat: "02 Jan 06 - 15:04:05.000",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(f.File), f.Line, funcName)
		},
	})

	writers := []io.Writer{os.Stderr}
	if opts.File != "" && os.Getenv("APP_ENV") != "test" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}

	logger.SetOutput(io.MultiWriter(writers...))
	logger.SetReportCaller(opts.ReportCaller)

	return logger, nil
}

// Default returns the process-wide logger, creating it with default options on first use.
func Default() *logrus.Logger {
	once.Do(func() {
		logger, err := NewLogger(Options{})
		if err != nil {
			logger = logrus.New()
		}
		defaultLogger = logger
	})

	return defaultLogger
}

// NewSessionID returns a fresh random identifier for a detection session.
func NewSessionID() string {
	id, err := uuid.NewRandom()
	if err != nil {
		return "unknown"
	}
	return id.String()
}

// WithSessionID stores a session identifier in ctx.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey(SessionIDKey), id)
}

// FromContext returns an entry of logger tagged with the session identifier stored in ctx.
func FromContext(ctx context.Context, logger *logrus.Logger) *logrus.Entry {
	sessionID := "unknown"
	if ctx != nil {
		if id, ok := ctx.Value(contextKey(SessionIDKey)).(string); ok && id != "" {
			sessionID = id
		}
	}

	return logger.WithField(SessionIDKey, sessionID)
}
