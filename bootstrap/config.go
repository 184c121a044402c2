package bootstrap

import (
	"fmt"
	"os"

	"ctidash/config"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// InitLogger initializes the zap logger. The console format uses colored
// levels and ISO8601 timestamps; json is meant for log shippers.
func InitLogger(level, format string) (*zap.Logger, *zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	var encoder zapcore.Encoder
	switch format {
	case "json":
		encoderConfig := zap.NewProductionEncoderConfig()
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	case "", "console":
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	default:
		return nil, nil, fmt.Errorf("invalid log format %q", format)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(os.Stdout), lvl)
	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel))
	return logger, logger.Sugar(), nil
}

// InitConfig loads the application configuration.
func InitConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load config: %v\n", err)
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// LogConfig reports the effective configuration, never including secrets.
func LogConfig(cfg *config.Config, sugar *zap.SugaredLogger) {
	if file := viper.ConfigFileUsed(); file != "" {
		sugar.Infow("Config file loaded", "file", file)
	} else {
		sugar.Info("No config file found, using defaults and env vars")
	}

	description := "will fail fast on any initialization error"
	if cfg.IsGracefulMode() {
		description = "will start without a feed client if initialization fails"
	}
	sugar.Infow("Startup mode",
		"mode", string(cfg.StartupMode),
		"description", description)

	sugar.Infow("Config loaded",
		"listen_addr", cfg.ListenAddr(),
		"frontend_origin", cfg.API.FrontendOrigin,
		"feed_base_url", cfg.Feed.BaseURL,
		"feed_timeout", cfg.Feed.RequestTimeout,
		"secrets_provider", cfg.Secrets.Provider)
}
