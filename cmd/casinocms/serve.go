package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eringen/casinocms"
	"github.com/eringen/casinocms/views"
)

// configKeys are bound to CASINOCMS_<KEY> environment variables.
var configKeys = []string{
	"name", "addr", "database_path", "output_dir",
	"admin_password", "session_secret", "cookie_secure",
	"template_cache_ttl", "max_upload_size",
	"props_type", "types_import", "bindings_file",
	"log_level", "log_format",
}

func loadConfig() (casinocms.SiteConfig, error) {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	v := viper.New()
	v.SetConfigName("casinocms")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	v.SetEnvPrefix("casinocms")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for _, key := range configKeys {
		if err := v.BindEnv(key); err != nil {
			return casinocms.SiteConfig{}, err
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return casinocms.SiteConfig{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg casinocms.SiteConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return casinocms.SiteConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func runServe(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("serve takes no arguments, got %q", args)
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := casinocms.NewLogger(cfg.LogLevel, cfg.LogFormat)
	app := casinocms.New(cfg, views.Default(), casinocms.WithLogger(logger))
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- app.Start() }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Echo.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown", zap.Error(err))
		return err
	}
	return <-errc
}
