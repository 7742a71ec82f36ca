package utils

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

var Logger = logrus.New()

type appNameHook struct {
	appName string
}

// Levels implements logrus.Hook interface.
func (h *appNameHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

// Fire implements logrus.Hook interface.
func (h *appNameHook) Fire(entry *logrus.Entry) error {
	entry.Message = "[" + h.appName + "] " + entry.Message
	return nil
}

func InitLogger(appName string) {
	initLogger(os.Stdout, appName, os.Getenv("LOG_LEVEL"))
}

func initLogger(out io.Writer, appName, levelStr string) {
	Logger.SetOutput(out)

	logLevelStr := strings.ToLower(levelStr)
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := logrus.ParseLevel(logLevelStr)
	if err != nil {
		Logger.Warnf("Invalid LOG_LEVEL '%s', defaulting to INFO", logLevelStr)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)

	Logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	Logger.ReplaceHooks(make(logrus.LevelHooks))
	Logger.AddHook(&appNameHook{appName})
}
