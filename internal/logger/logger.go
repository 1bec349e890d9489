package logger

import (
	"io"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type LogLevel string

const (
	InfoLevel  LogLevel = "INFO"
	ErrorLevel LogLevel = "ERROR"
	DebugLevel LogLevel = "DEBUG"
)

var (
	emailRegex  = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	tokenRegex  = regexp.MustCompile(`eyJ[^\s]+`)
	bearerRegex = regexp.MustCompile(`(?i)bearer\s+[^\s]+`)
)

// base is shared by every Logger; SetLevel and SetOutput apply process-wide.
var (
	base   = newBase(os.Stdout)
	baseMu sync.Mutex
)

func newBase(out io.Writer) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(logrus.InfoLevel)
	l.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyMsg: "message",
		},
	})
	return l
}

// Logger is a centralized structured logger
type Logger struct {
	out *logrus.Logger
}

// New creates a new Logger
func New() *Logger {
	return &Logger{out: base}
}

// SetLevel changes the level of every Logger. Unknown levels fall back to info.
func SetLevel(level string) {
	baseMu.Lock()
	defer baseMu.Unlock()

	lvl, err := logrus.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	base.SetLevel(lvl)
}

// SetOutput redirects every Logger, mainly for tests.
func SetOutput(w io.Writer) {
	baseMu.Lock()
	defer baseMu.Unlock()
	base.SetOutput(w)
}

// Anonymize replaces sensitive information in logs (emails, tokens)
func Anonymize(s string) string {
	s = emailRegex.ReplaceAllString(s, "[REDACTED_EMAIL]")
	s = bearerRegex.ReplaceAllString(s, "Bearer [REDACTED_TOKEN]")
	s = tokenRegex.ReplaceAllString(s, "[REDACTED_TOKEN]")
	return s
}

func (l *Logger) log(module string, level LogLevel, msg string, err error) {
	entry := l.out.WithField("module", module)
	if err != nil {
		entry = entry.WithField("error", Anonymize(err.Error()))
	}
	msg = Anonymize(msg)

	switch level {
	case ErrorLevel:
		entry.Error(msg)
	case DebugLevel:
		entry.Debug(msg)
	default:
		entry.Info(msg)
	}
}

// --- Convenient methods ---
func (l *Logger) Info(module, msg string) {
	l.log(module, InfoLevel, msg, nil)
}

func (l *Logger) Debug(module, msg string) {
	l.log(module, DebugLevel, msg, nil)
}

func (l *Logger) Error(module, msg string, err error) {
	l.log(module, ErrorLevel, msg, err)
}
