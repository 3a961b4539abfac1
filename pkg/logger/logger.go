package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"
)

// Leveled logger shared by the intake server and its adapters.
// Lines look like: 2026-01-02T15:04:05Z [INFO] message cmp=persistence key=value

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

var (
	mu     sync.RWMutex
	logger *log.Logger = log.New(os.Stdout, "", 0)
	level  Level       = LevelInfo
)

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Unknown values fall back to info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = parseLevel(l)
}

// SetOutput redirects all log lines to w.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	logger = log.New(w, "", 0)
}

func parseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

func header(lvl string) string {
	return fmt.Sprintf("%s [%s] ", time.Now().Format(time.RFC3339), strings.ToUpper(lvl))
}

func shouldLog(l Level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return l >= level
}

func output(lvl Level, name, msg, fields string) {
	if lvl != LevelFatal && !shouldLog(lvl) {
		return
	}
	mu.RLock()
	out := logger
	mu.RUnlock()
	out.Print(header(name) + msg + fields)
}

func Debugf(format string, v ...interface{}) { output(LevelDebug, "debug", fmt.Sprintf(format, v...), "") }
func Infof(format string, v ...interface{})  { output(LevelInfo, "info", fmt.Sprintf(format, v...), "") }
func Warnf(format string, v ...interface{})  { output(LevelWarn, "warn", fmt.Sprintf(format, v...), "") }
func Errorf(format string, v ...interface{}) { output(LevelError, "error", fmt.Sprintf(format, v...), "") }

func Fatalf(format string, v ...interface{}) {
	output(LevelFatal, "fatal", fmt.Sprintf(format, v...), "")
	os.Exit(1)
}

func Debug(v string) { Debugf("%s", v) }
func Info(v string)  { Infof("%s", v) }
func Warn(v string)  { Warnf("%s", v) }
func Error(v string) { Errorf("%s", v) }

// Entry is a logger bound to a fixed set of key/value fields.
type Entry struct {
	fields string
}

// With returns an Entry that appends the given key/value pairs to every line.
// An odd trailing key is logged with an empty value.
func With(kv ...interface{}) *Entry {
	return (&Entry{}).With(kv...)
}

// With returns a copy of e extended with more fields.
func (e *Entry) With(kv ...interface{}) *Entry {
	var b strings.Builder
	b.WriteString(e.fields)
	for i := 0; i < len(kv); i += 2 {
		var val interface{} = ""
		if i+1 < len(kv) {
			val = kv[i+1]
		}
		fmt.Fprintf(&b, " %v=%v", kv[i], quote(val))
	}
	return &Entry{fields: b.String()}
}

func quote(v interface{}) string {
	s := fmt.Sprint(v)
	if strings.ContainsAny(s, " \t\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}

func (e *Entry) Debugf(format string, v ...interface{}) {
	output(LevelDebug, "debug", fmt.Sprintf(format, v...), e.fields)
}
func (e *Entry) Infof(format string, v ...interface{}) {
	output(LevelInfo, "info", fmt.Sprintf(format, v...), e.fields)
}
func (e *Entry) Warnf(format string, v ...interface{}) {
	output(LevelWarn, "warn", fmt.Sprintf(format, v...), e.fields)
}
func (e *Entry) Errorf(format string, v ...interface{}) {
	output(LevelError, "error", fmt.Sprintf(format, v...), e.fields)
}

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}
