// Package logger provides the logging abstraction used by the Substack client.
//
// Any type with slog-style methods satisfies [Logger]. The zerolog backend is
// built with [New]:
//
//	l, err := logger.New().FromPath("substack.log").WithDebug(true).Make()
//
// and the [log/slog] backend lives in the slog subpackage.
package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

const (
	permission = 0664
)

// Logger receives a message and alternating key/value pairs.
type Logger interface {
	Error(msg string, args ...any)
	Warn(msg string, args ...any)
	Info(msg string, args ...any)
	Debug(msg string, args ...any)
}

type LogBuild struct {
	writer io.Writer
	path   string
	debug  bool
}

// LogData is a zerolog-backed Logger.
type LogData struct {
	LogFile *os.File
	Logger  zerolog.Logger
}

var _ Logger = (*LogData)(nil)

func New() *LogBuild {
	return &LogBuild{}
}

// FromPath appends log lines to the file at path, creating it if needed.
func (build *LogBuild) FromPath(path string) *LogBuild {
	build.path = path
	return build
}

func (build *LogBuild) FromBuffer(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

// WithDebug enables debug level output. The default level is info.
func (build *LogBuild) WithDebug(debug bool) *LogBuild {
	build.debug = debug
	return build
}

func (build *LogBuild) Make() (logData *LogData, err error) {
	logData = new(LogData)
	writer := build.writer
	if writer == nil {
		writer = os.Stderr
	}
	if build.path != "" {
		logData.LogFile, err = os.OpenFile(build.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, permission)
		if err != nil {
			return nil, err
		}
		writer = zerolog.SyncWriter(logData.LogFile)
	}
	level := zerolog.InfoLevel
	if build.debug {
		level = zerolog.DebugLevel
	}
	logData.Logger = zerolog.New(writer).Level(level).With().Timestamp().Logger()
	return
}

// Close releases the log file, if any.
func (l *LogData) Close() error {
	if l.LogFile == nil {
		return nil
	}
	return l.LogFile.Close()
}

func (l *LogData) Error(msg string, args ...any) {
	l.Logger.Error().Fields(args).Msg(msg)
}

func (l *LogData) Warn(msg string, args ...any) {
	l.Logger.Warn().Fields(args).Msg(msg)
}

func (l *LogData) Info(msg string, args ...any) {
	l.Logger.Info().Fields(args).Msg(msg)
}

func (l *LogData) Debug(msg string, args ...any) {
	l.Logger.Debug().Fields(args).Msg(msg)
}

type nop struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger {
	return nop{}
}

func (nop) Error(string, ...any) {}
func (nop) Warn(string, ...any)  {}
func (nop) Info(string, ...any)  {}
func (nop) Debug(string, ...any) {}
