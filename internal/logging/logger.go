// Package logging configures the process-wide logrus logger.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
	"gopkg.in/natefinch/lumberjack.v2"
)

type SetupParams struct {
	// LogFile is the rotated log file. Empty means console only.
	LogFile string
	// Console also writes to ConsoleWriter (stdout when nil).
	Console       bool
	ConsoleWriter io.Writer
	LogLevel      string
	LogFormatJSON bool
}

// Setup applies params to the standard logrus logger. It returns the file
// writer, if any, so callers can close it on exit.
func Setup(params SetupParams) io.Closer {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	console := params.ConsoleWriter
	if console == nil {
		console = os.Stdout
	}

	if params.LogFile == "" {
		logrus.SetOutput(console)
		return nopCloser{}
	}

	if !strings.HasSuffix(params.LogFile, ".log") {
		params.LogFile += ".log"
	}
	if err := os.MkdirAll(filepath.Dir(params.LogFile), 0700); err != nil {
		logrus.SetOutput(console)
		logrus.Errorf("create log dir: %s", err)
		return nopCloser{}
	}

	fileLogger := &lumberjack.Logger{
		Filename:   params.LogFile,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		Compress:   true,
	}

	if params.Console {
		logrus.SetOutput(NewCombinedWriter(console, fileLogger))
	} else {
		logrus.SetOutput(fileLogger)
	}
	return fileLogger
}

// GetLevel maps a level name to a logrus level. Unknown names give info.
func GetLevel(level string) logrus.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "trace":
		return logrus.TraceLevel
	case "warn", "warning":
		return logrus.WarnLevel
	default:
		return logrus.InfoLevel
	}
}

// CombinedWriter fans every write out to all of its writers.
type CombinedWriter struct {
	Writers []io.Writer
}

func NewCombinedWriter(writers ...io.Writer) *CombinedWriter {
	return &CombinedWriter{Writers: writers}
}

func (cw *CombinedWriter) Write(p []byte) (int, error) {
	var err error
	for _, w := range cw.Writers {
		if _, werr := w.Write(p); werr != nil {
			err = multierr.Append(err, werr)
		}
	}
	if err != nil {
		return 0, err
	}
	return len(p), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
