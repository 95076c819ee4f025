package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"
)

// ANSI color codes.
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[90m"
)

// Field names shared across packages.
const (
	FieldRole   = "role"
	FieldAction = "action"
	FieldDryRun = "dry_run"
	FieldMember = "member"
)

// PrettyFormatter renders entries for a terminal. The role field, when
// present, is pulled out as a bracketed tag before the message.
type PrettyFormatter struct{}

// Format renders a logrus entry as a single colored line.
func (f *PrettyFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var b strings.Builder

	b.WriteString(colorGray + entry.Time.Format("15:04:05") + colorReset + " ")
	b.WriteString(levelMarker(entry.Level) + " ")

	if role, ok := entry.Data[FieldRole]; ok {
		fmt.Fprintf(&b, "%s[%v]%s ", colorBlue, role, colorReset)
	}
	b.WriteString(entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		if k == FieldRole {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s%s%s=%v", colorCyan, k, colorReset, entry.Data[k])
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func levelMarker(level logrus.Level) string {
	switch level {
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return colorRed + "✗" + colorReset
	case logrus.WarnLevel:
		return colorYellow + "⚠" + colorReset
	case logrus.InfoLevel:
		return colorGreen + "•" + colorReset
	default:
		return colorGray + "·" + colorReset
	}
}

// NewLogger creates a configured logrus logger writing to stdout.
func NewLogger(level string, format string) *logrus.Logger {
	logger := logrus.New()
	Configure(logger, os.Stdout, level, format)
	return logger
}

// Configure sets output, format, and level on an existing logger.
func Configure(logger *logrus.Logger, out io.Writer, level string, format string) {
	if out != nil {
		logger.SetOutput(out)
	}
	switch format {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "pretty":
		logger.SetFormatter(&PrettyFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "15:04:05",
		})
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)
}

// ForRun returns an entry tagged with the action and role of a run.
func ForRun(logger logrus.FieldLogger, action, role string, dryRun bool) *logrus.Entry {
	return logger.WithFields(logrus.Fields{
		FieldAction: action,
		FieldRole:   role,
		FieldDryRun: dryRun,
	})
}
