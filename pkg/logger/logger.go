package logger

import (
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the shared instance. Nil until Init runs; the package-level
// helpers tolerate that so early startup code can log safely.
var (
	Logger *logrus.Logger
	mu     sync.Mutex
)

// Config controls level, format, and optional file output with rotation.
type Config struct {
	Level      string // debug, info, warn, error
	OutputFile string // empty means console only
	MaxSize    int    // megabytes per file before rotation
	MaxBackups int
	MaxAge     int // days
	Compress   bool
}

// Init sets up the shared logger. Output goes to stdout, plus a rotated file
// when OutputFile is set. The global logrus instance is pointed at the same
// writer so entries built with logrus.WithField land in the file too.
func Init(config Config) error {
	mu.Lock()
	defer mu.Unlock()

	level, err := logrus.ParseLevel(config.Level)
	if err != nil {
		level = logrus.InfoLevel
	}

	formatter := &logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "06-01-02 15:04:05",
		ForceColors:     true,
	}

	writers := []io.Writer{os.Stdout}
	if config.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(config.OutputFile), 0755); err != nil {
			return err
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   config.OutputFile,
			MaxSize:    config.MaxSize,
			MaxBackups: config.MaxBackups,
			MaxAge:     config.MaxAge,
			Compress:   config.Compress,
		})
	}
	out := io.MultiWriter(writers...)

	l := logrus.New()
	l.SetLevel(level)
	l.SetFormatter(formatter)
	l.SetOutput(out)

	logrus.SetLevel(level)
	logrus.SetFormatter(formatter)
	logrus.SetOutput(out)

	Logger = l
	return nil
}

// InitDefault configures info-level console plus logs/mm.log.
func InitDefault() error {
	return Init(Config{
		Level:      "info",
		OutputFile: "logs/mm.log",
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     7,
		Compress:   true,
	})
}

func Debug(args ...interface{}) {
	if Logger != nil {
		Logger.Debug(args...)
	}
}

func Debugf(format string, args ...interface{}) {
	if Logger != nil {
		Logger.Debugf(format, args...)
	}
}

func Info(args ...interface{}) {
	if Logger != nil {
		Logger.Info(args...)
	}
}

func Infof(format string, args ...interface{}) {
	if Logger != nil {
		Logger.Infof(format, args...)
	}
}

func Warn(args ...interface{}) {
	if Logger != nil {
		Logger.Warn(args...)
	}
}

func Warnf(format string, args ...interface{}) {
	if Logger != nil {
		Logger.Warnf(format, args...)
	}
}

func Error(args ...interface{}) {
	if Logger != nil {
		Logger.Error(args...)
	}
}

func Errorf(format string, args ...interface{}) {
	if Logger != nil {
		Logger.Errorf(format, args...)
	}
}

func WithField(key string, value interface{}) *logrus.Entry {
	if Logger != nil {
		return Logger.WithField(key, value)
	}
	return logrus.NewEntry(logrus.New())
}

func WithFields(fields logrus.Fields) *logrus.Entry {
	if Logger != nil {
		return Logger.WithFields(fields)
	}
	return logrus.NewEntry(logrus.New())
}
