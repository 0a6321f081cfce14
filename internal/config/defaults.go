package config

const (
	// ConfigFileName is the name of the config file within the taskdeck directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 1

	// DefaultAPIURL is the base URL of the task service API.
	DefaultAPIURL = "http://localhost:8081/api"

	// DefaultPageSize is the number of tasks per list page.
	DefaultPageSize = 10

	// DefaultRequestTimeout bounds a single API call, retries included.
	DefaultRequestTimeout = "10s"

	// DefaultMaxRetries is the number of retry attempts for idempotent reads.
	DefaultMaxRetries = 3

	// DefaultLogLevel is the log level when none is configured.
	DefaultLogLevel = "info"
)
