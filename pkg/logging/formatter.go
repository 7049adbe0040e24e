/*
Author: KleaSCM
Email: KleaSCM@gmail.com
File: formatter.go
Description: Compact log formatter for marker inference runs. Prints a stage tag derived
from the message, then the message and its fields in key order so that repeated runs
produce diff-friendly logs.
*/

package logging

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// CustomFormatter renders one line per entry
type CustomFormatter struct {
	Timestamp bool
	Caller    bool
	Colors    bool
}

// Format formats a log entry
func (f *CustomFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var out strings.Builder

	if f.Timestamp {
		f.paint(&out, 36, entry.Time.Format("2006-01-02 15:04:05.000"))
		out.WriteByte(' ')
	}

	f.paint(&out, levelColor(entry.Level), fmt.Sprintf("%-5s", strings.ToUpper(entry.Level.String())))
	out.WriteByte(' ')

	if tag := stageTag(entry.Message); tag != "" {
		f.paint(&out, 35, "["+tag+"]")
		out.WriteByte(' ')
	}

	if f.Caller && entry.HasCaller() {
		f.paint(&out, 33, fmt.Sprintf("[%s:%d]", filepath.Base(entry.Caller.File), entry.Caller.Line))
		out.WriteByte(' ')
	}

	out.WriteString(entry.Message)

	if len(entry.Data) > 0 {
		keys := make([]string, 0, len(entry.Data))
		for k := range entry.Data {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out.WriteByte(' ')
			f.paint(&out, 34, k)
			out.WriteByte('=')
			out.WriteString(formatValue(entry.Data[k]))
		}
	}

	out.WriteByte('\n')
	return []byte(out.String()), nil
}

func (f *CustomFormatter) paint(out *strings.Builder, color int, s string) {
	if !f.Colors {
		out.WriteString(s)
		return
	}
	fmt.Fprintf(out, "\033[%dm%s\033[0m", color, s)
}

// levelColor returns the ANSI color code for a log level
func levelColor(level logrus.Level) int {
	switch level {
	case logrus.DebugLevel, logrus.TraceLevel:
		return 37
	case logrus.InfoLevel:
		return 32
	case logrus.WarnLevel:
		return 33
	case logrus.ErrorLevel:
		return 31
	default:
		return 35
	}
}

// stageTag maps well-known messages to a short pipeline stage
func stageTag(message string) string {
	switch {
	case strings.HasPrefix(message, "Growth round"), strings.HasPrefix(message, "Mining"):
		return "MINE"
	case strings.HasPrefix(message, "Candidate space"), strings.HasPrefix(message, "Assembly"),
		strings.HasPrefix(message, "Pattern"):
		return "ASSEMBLE"
	case strings.HasPrefix(message, "Holdout"):
		return "HOLDOUT"
	case strings.HasPrefix(message, "Corpus"), strings.HasPrefix(message, "Loaded corpus"):
		return "LOAD"
	default:
		return ""
	}
}

// formatValue formats a field value appropriately
func formatValue(value interface{}) string {
	switch v := value.(type) {
	case error:
		return fmt.Sprintf("%q", v.Error())
	case time.Duration:
		return v.Round(time.Millisecond).String()
	case time.Time:
		return v.Format("15:04:05.000")
	case string:
		if len(v) > 60 {
			v = v[:60] + "..."
		}
		if strings.ContainsAny(v, " \t\"=") {
			return fmt.Sprintf("%q", v)
		}
		return v
	case []byte:
		if len(v) > 20 {
			return fmt.Sprintf("[%d bytes]", len(v))
		}
		return fmt.Sprintf("%x", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
