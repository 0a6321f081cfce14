package cmd

import (
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskdeck/taskdeck/internal/apierr"
	"github.com/taskdeck/taskdeck/internal/config"
	"github.com/taskdeck/taskdeck/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the active configuration",
	RunE:  runConfigShow,
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Update a configuration value",
	Long: `Updates a single configuration key and writes the config file back.

Supported keys:
  api_url          base URL of the task service
  page_size        tasks per page in list views
  request_timeout  Go duration, e.g. 10s, 1m
  max_retries      retry attempts for reads
  log.level        debug, info, warn, error`,
	Args: cobra.ExactArgs(2), //nolint:mnd // KEY VALUE
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if outputFormat() == output.FormatJSON {
		return output.JSON(os.Stdout, map[string]interface{}{
			"path":            cfg.Path(),
			"api_url":         cfg.APIURL,
			"page_size":       cfg.PageSize,
			"request_timeout": cfg.RequestTimeout,
			"max_retries":     cfg.MaxRetries,
			"log_level":       cfg.Log.Level,
			"log_file":        cfg.LogPath(),
		})
	}

	output.Messagef(os.Stdout, "Config:          %s", cfg.Path())
	output.Messagef(os.Stdout, "API URL:         %s", cfg.APIURL)
	output.Messagef(os.Stdout, "Page size:       %d", cfg.PageSize)
	output.Messagef(os.Stdout, "Request timeout: %s", cfg.RequestTimeout)
	output.Messagef(os.Stdout, "Max retries:     %d", cfg.MaxRetries)
	output.Messagef(os.Stdout, "Log level:       %s", cfg.Log.Level)
	output.Messagef(os.Stdout, "Log file:        %s", cfg.LogPath())
	return nil
}

func runConfigSet(_ *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	dir, err := config.DefaultDir()
	if err != nil {
		return err
	}
	cfg, err := config.LoadOrInit(dir)
	if err != nil {
		return err
	}

	if err := applyConfigValue(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return apierr.Wrap(apierr.ConfigError, err, "invalid value")
	}
	if err := cfg.Save(); err != nil {
		return apierr.Wrap(apierr.ConfigError, err, "saving config")
	}

	output.Messagef(os.Stdout, "Set %s = %s", key, value)
	return nil
}

func applyConfigValue(cfg *config.Config, key, value string) error {
	switch key {
	case "api_url":
		cfg.APIURL = value
	case "page_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return apierr.Newf(apierr.InvalidInput, "page_size must be a number, got %q", value)
		}
		cfg.PageSize = n
	case "request_timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return apierr.Newf(apierr.InvalidInput, "request_timeout must be a duration like 10s, got %q", value)
		}
		cfg.RequestTimeout = value
	case "max_retries":
		n, err := strconv.Atoi(value)
		if err != nil {
			return apierr.Newf(apierr.InvalidInput, "max_retries must be a number, got %q", value)
		}
		cfg.MaxRetries = n
	case "log.level":
		cfg.Log.Level = value
	default:
		return apierr.Newf(apierr.InvalidInput,
			"unknown config key %q (valid: api_url, page_size, request_timeout, max_retries, log.level)", key)
	}
	return nil
}
