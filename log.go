package interactors

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// Logger is what your logrus-enabled library should take, that way
// it'll accept a logrus logger or entry. There's no standard
// interface, this is the closest we get, unfortunately.
type Logger interface {
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})

	Fatalf(string, ...interface{})
	Panicf(string, ...interface{})

	WithField(string, interface{}) *logrus.Entry
}

// NopLogger drops all messages on the floor, fatal messages still exit the process
var NopLogger Logger = newNopLogger()

func newNopLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = io.Discard
	return l
}

// GoLog creates a logger that renders lines the way the go log package would,
// with the level in brackets after the prefix.
func GoLog(w io.Writer, prefix string, flags int) Logger {
	if w == nil {
		w = os.Stderr
	}
	l := logrus.New()
	l.Out = w
	l.Level = logrus.DebugLevel
	l.Formatter = &lineFormatter{prefix: prefix, flags: flags}
	return l
}

type lineFormatter struct {
	prefix string
	flags  int
}

func (f *lineFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b bytes.Buffer
	b.WriteString(f.prefix)
	if f.flags&(log.Ldate|log.Ltime) != 0 {
		layout := "2006/01/02 15:04:05"
		switch {
		case f.flags&log.Ldate == 0:
			layout = "15:04:05"
		case f.flags&log.Ltime == 0:
			layout = "2006/01/02"
		}
		ts := entry.Time
		if f.flags&log.LUTC != 0 {
			ts = ts.UTC()
		}
		b.WriteString(ts.Format(layout))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-8s%s", "["+levelName(entry.Level)+"]", entry.Message)
	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelName(lvl logrus.Level) string {
	if lvl == logrus.WarnLevel {
		return "WARN"
	}
	return strings.ToUpper(lvl.String())
}

type loggerKey uint8

const ctxLoggerKey loggerKey = 0

// SetLogger on the context
func SetLogger(ctx context.Context, logger Logger) context.Context {
	return context.WithValue(ctx, ctxLoggerKey, logger)
}

// ContextLogger gets the logger from the context, or the NopLogger when there is none
func ContextLogger(ctx context.Context) Logger {
	if ctx == nil {
		return NopLogger
	}
	if l, ok := ctx.Value(ctxLoggerKey).(Logger); ok {
		return l
	}
	return NopLogger
}
