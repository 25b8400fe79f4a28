package logger

import (
	"context"
	"github.com/maxaizer/cv-matcher/internal/config"
	"github.com/maxaizer/cv-matcher/pkg/loki"
	log "github.com/sirupsen/logrus"
	"io"
	"os"
	"path/filepath"
)

const ErrorTypeField = "error_type"

const (
	ErrorTypeDb            = "db"
	ErrorTypeAiApi         = "ai_api"
	ErrorTypeBrightDataApi = "brightdata_api"
	ErrorTypeHttp          = "http"
	ErrorTypePdf           = "pdf"
)

var logFile *os.File

func Setup(ctx context.Context, cfg config.LoggerConfig) {

	if err := os.MkdirAll(filepath.Dir(cfg.OutputFile), 0755); err != nil {
		log.Fatalf("Failed to create log directory: %v", err)
	}

	var err error
	logFile, err = os.OpenFile(cfg.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}

	log.SetOutput(io.MultiWriter(os.Stdout, logFile))
	log.SetReportCaller(true)
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000 -0700",
	})
	log.SetLevel(toLogrusLevel(cfg.LogLevel))

	addPrometheusHook()

	if cfg.LokiURL != "" {
		lokiCfg := loki.Config{
			Url:      cfg.LokiURL,
			Username: cfg.LokiUser,
			Password: cfg.LokiPassword,
			Labels:   map[string]string{"app": cfg.AppName},
		}
		if err = addLokiHook(ctx, lokiCfg, log.GetLevel()); err != nil {
			log.Errorf("failed to enable loki logging: %v", err)
		}
	}
}

func Cleanup() {
	stopLokiHook()
	if logFile != nil {
		_ = logFile.Close()
	}
}

func toLogrusLevel(level config.LogLevel) log.Level {
	switch level {
	case config.LevelDebug:
		return log.DebugLevel
	case config.LevelWarning:
		return log.WarnLevel
	case config.LevelError:
		return log.ErrorLevel
	case config.LevelFatal:
		return log.FatalLevel
	default:
		return log.InfoLevel
	}
}
