package config

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// for Log

func initLogrus() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableColors:   true,
		TimestampFormat: time.DateTime,
	})
	if Debug {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

func initLog4(path string) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	tmpLog, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		panic(err)
	}
	// defer tmpLog.Close()
	logger.SetOutput(tmpLog)
	return logger
}

const (
	PathRawRequest = "/tmp/gqlspan_raw_request.log.json"
)

var (
	Log4RawRequest = initLog4(PathRawRequest)
)

func init() {
	initLogrus()

	Log4RawRequest.SetLevel(logrus.DebugLevel)
}
