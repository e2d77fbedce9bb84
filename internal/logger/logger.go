package logger

import (
	"io"
	"os"
	"time"

	"github.com/natefinch/lumberjack"
	logrus "github.com/sirupsen/logrus"
)

// Setup points logrus at a rotating log file (and stdout) and returns the
// combined writer so request logs can share it. The returned closer flushes
// and closes the rotated file.
func Setup(level, filename string) (io.Writer, io.Closer) {
	// 1) Lumberjack for file rotation
	rotator := &lumberjack.Logger{
		Filename:   filename,
		MaxSize:    10, // megabytes
		MaxBackups: 7,
		MaxAge:     7, // days
		Compress:   true,
	}
	out := io.MultiWriter(os.Stdout, rotator)

	// 2) Configure Logrus to write to both
	logrus.SetOutput(out)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
		logrus.WithField("level", level).Warn("unknown log level, using info")
	}
	logrus.SetLevel(lvl)

	return out, rotator
}
