package obs

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

var (
	loggerOnce sync.Once
	logger     *logrus.Logger
)

// Logger returns the shared structured logger used across the service.
func Logger() *logrus.Logger {
	loggerOnce.Do(func() {
		logger = NewLogger(os.Stdout, "info")
	})
	return logger
}

// NewLogger builds a JSON logger writing to out. Unknown levels fall back to info.
func NewLogger(out io.Writer, level string) *logrus.Logger {
	l := logrus.New()
	l.SetOutput(out)
	l.SetFormatter(&logrus.JSONFormatter{
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "ts",
			logrus.FieldKeyMsg:  "msg",
		},
	})
	lvl, err := logrus.ParseLevel(strings.TrimSpace(level))
	if err != nil {
		lvl = logrus.InfoLevel
	}
	l.SetLevel(lvl)
	return l
}

// Configure replaces output and level of the shared logger.
func Configure(out io.Writer, level string) *logrus.Logger {
	l := Logger()
	configured := NewLogger(out, level)
	l.SetOutput(configured.Out)
	l.SetLevel(configured.GetLevel())
	return l
}
