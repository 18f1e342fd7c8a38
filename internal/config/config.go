package config

import (
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// DefaultUserAgent is the default User-Agent string sent when fetching remote sources.
const DefaultUserAgent = "CatalogLens/1.0 (+https://github.com/Belphemur/CatalogLens)"

type Config struct {
	// Sources are the default one or two tabular inputs (paths or http(s) URLs).
	Sources               []string `mapstructure:"sources"`
	ProxyConnectionString string   `mapstructure:"proxy_connection_string"`
	ClientTimeout         string   `mapstructure:"client_timeout"` // Go duration string like "30s", "1h", etc.
	UserAgent             string   `mapstructure:"user_agent"`
	Fetch                 struct {
		Retries int    `mapstructure:"retries"`
		Backoff string `mapstructure:"backoff"` // initial delay between retries
	} `mapstructure:"fetch"`
	Ingest struct {
		Encoding   string `mapstructure:"encoding"`   // empty means detect
		Delimiter  string `mapstructure:"delimiter"`  // empty means sniff
		Duplicates string `mapstructure:"duplicates"` // collapse | first
		MaxBytes   int64  `mapstructure:"max_bytes"`
		// Request-supplied sources outside Sources must live under one of
		// these directories or URL prefixes.
		AllowedRoots       []string `mapstructure:"allowed_roots"`
		AllowedURLPrefixes []string `mapstructure:"allowed_url_prefixes"`
	} `mapstructure:"ingest"`
	Filter struct {
		CastMatch string `mapstructure:"cast_match"` // exact | substring
	} `mapstructure:"filter"`
	Server struct {
		Port    int    `mapstructure:"port"`
		Address string `mapstructure:"address"`
	} `mapstructure:"server"`
	HTTP struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"http"`
	Metrics struct {
		Enabled bool `mapstructure:"enabled"`
		Port    int  `mapstructure:"port"`
	} `mapstructure:"metrics"`
	Sentry struct {
		DSN         string `mapstructure:"dsn"`
		Environment string `mapstructure:"environment"`
	} `mapstructure:"sentry"`
	LogLevel string `mapstructure:"log_level"`
	Cache    struct {
		Provider string `mapstructure:"provider"` // memory | redis
		Size     int    `mapstructure:"size"`     // Maximum number of unified tables kept
		TTL      string `mapstructure:"ttl"`      // Go duration string like "1h", "24h", etc.
		Redis    struct {
			Address  string `mapstructure:"address"`
			Password string `mapstructure:"password"`
			DB       int    `mapstructure:"db"`
		} `mapstructure:"redis"`
	} `mapstructure:"cache"`
}

var (
	globalConfig *Config
	logger       zerolog.Logger
)

func init() {
	// Initialize zerolog with console writer for human-readable output
	logger = zerolog.New(zerolog.ConsoleWriter{
		Out:     os.Stdout,
		NoColor: false,
	}).With().Timestamp().Logger()

	config, err := LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load config")
	}

	// Parse and set log level from config
	level := zerolog.InfoLevel // default
	if config.LogLevel != "" {
		if parsedLevel, err := zerolog.ParseLevel(config.LogLevel); err == nil {
			level = parsedLevel
		} else {
			logger.Warn().Str("invalid_level", config.LogLevel).Msg("Invalid log level, using default 'info'")
		}
	}

	zerolog.SetGlobalLevel(level)
	logger = logger.Level(level)

	logger.Info().Str("level", level.String()).Msg("Logging configured")
	globalConfig = config
	logger.Info().Int("sources", len(config.Sources)).Msg("Configuration loaded successfully")
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Environment variable support
	v.AutomaticEnv()
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("log_level", "LOG_LEVEL")
	_ = v.BindEnv("sources", "APP_SOURCES")

	setDefaults(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	normalize(&config)

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("sources", []string{})
	v.SetDefault("client_timeout", "30s")
	v.SetDefault("fetch.retries", 3)
	v.SetDefault("fetch.backoff", "500ms")
	v.SetDefault("ingest.duplicates", "collapse")
	v.SetDefault("ingest.max_bytes", 256<<20)
	v.SetDefault("ingest.allowed_roots", []string{})
	v.SetDefault("ingest.allowed_url_prefixes", []string{})
	v.SetDefault("filter.cast_match", "exact")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.address", "localhost")
	v.SetDefault("http.enabled", true)
	v.SetDefault("http.port", 8081)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("cache.provider", "memory")
	v.SetDefault("cache.size", 16)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.redis.address", "localhost:6379")
}

// normalize fixes values that env variables deliver in a raw form.
func normalize(config *Config) {
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}

	config.Sources = splitList(config.Sources)
	config.Ingest.AllowedRoots = splitList(config.Ingest.AllowedRoots)
	config.Ingest.AllowedURLPrefixes = splitList(config.Ingest.AllowedURLPrefixes)
}

// splitList flattens comma separated entries: APP_SOURCES="a.csv,b.csv"
// arrives as a single element.
func splitList(values []string) []string {
	var out []string
	for _, s := range values {
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func GetConfig() *Config {
	return globalConfig
}

func GetUserAgent() string {
	if globalConfig != nil && globalConfig.UserAgent != "" {
		return globalConfig.UserAgent
	}

	return DefaultUserAgent
}

func GetLogger() zerolog.Logger {
	return logger
}
