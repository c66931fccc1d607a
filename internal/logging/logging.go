package logging

import (
	"io"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
)

// ServiceFormatter adds the service name and the unix time in milliseconds to every entry
type ServiceFormatter struct {
	svcName string
	log.Formatter
}

func (f *ServiceFormatter) Format(e *log.Entry) ([]byte, error) {
	e.Data["epochTimeMillis"] = e.Time.UnixNano() / int64(time.Millisecond)
	e.Data["service"] = f.svcName
	return f.Formatter.Format(e)
}

// SetupLog configures the standard logrus logger for the service.
// format is "json" or "text"; an unknown level falls back to info.
func SetupLog(name, level, format string) {
	setup(log.StandardLogger(), os.Stdout, name, level, format)
}

func setup(l *log.Logger, out io.Writer, name, level, format string) {
	l.SetOutput(out)
	var inner log.Formatter = &log.JSONFormatter{DisableTimestamp: true}
	if format == "text" {
		inner = &log.TextFormatter{FullTimestamp: true}
	}
	l.SetFormatter(&ServiceFormatter{svcName: name, Formatter: inner})

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	l.SetLevel(lvl)
}
