package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/GustavoCaso/spendtrace/internal/logger"
)

type DBConfig struct {
	Source          string        `yaml:"source"            toml:"source"`
	MaxOpenConns    int           `yaml:"max_open_conns"    toml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"    toml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" toml:"conn_max_lifetime"`
	JournalMode     string        `yaml:"journal_mode"      toml:"journal_mode"`
	Synchronous     string        `yaml:"synchronous"       toml:"synchronous"`
	BusyTimeout     int           `yaml:"busy_timeout"      toml:"busy_timeout"`
}

type ServerConfig struct {
	Port              string   `yaml:"port"                toml:"port"`
	ReadHeaderTimeout int      `yaml:"read_header_timeout" toml:"read_header_timeout"`
	ShutdownTimeout   int      `yaml:"shutdown_timeout"    toml:"shutdown_timeout"`
	TrustedOrigins    []string `yaml:"trusted_origins"     toml:"trusted_origins"`
}

type AMQPConfig struct {
	URL      string `yaml:"url"      toml:"url"`
	Exchange string `yaml:"exchange" toml:"exchange"`
	Queue    string `yaml:"queue"    toml:"queue"`
}

type Config struct {
	DB     DBConfig      `yaml:"db"     toml:"db"`
	Server ServerConfig  `yaml:"server" toml:"server"`
	AMQP   AMQPConfig    `yaml:"amqp"   toml:"amqp"`
	Logger logger.Config `yaml:"logger" toml:"logger"`
}

const (
	defaultDBSource          = "spendtrace.db"
	defaultJournalMode       = "WAL"
	defaultSynchronous       = "NORMAL"
	defaultBusyTimeout       = 5000
	defaultMaxOpenConns      = 10
	defaultMaxIdleConns      = 5
	defaultPort              = "8080"
	defaultReadHeaderTimeout = 3
	defaultShutdownTimeout   = 10
	defaultAMQPExchange      = "spendtrace"
	defaultAMQPQueue         = "uploads_processed"
	defaultLogLevel          = logger.LevelInfo
	defaultLogFormat         = logger.FormatText
	defaultLogOutput         = "stdout"
	maxPort                  = 65535
)

// Parse loads the configuration. Precedence from lowest to highest is
// defaults, the config file, the .env file and the process environment.
// A missing config file or .env file is not an error.
func Parse(path string) (*Config, error) {
	conf := &Config{}
	conf.setDefaults()

	if err := conf.parseFile(path); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	conf.parseEnv()

	return conf, nil
}

func (c *Config) setDefaults() {
	c.DB = DBConfig{
		Source:       defaultDBSource,
		MaxOpenConns: defaultMaxOpenConns,
		MaxIdleConns: defaultMaxIdleConns,
		JournalMode:  defaultJournalMode,
		Synchronous:  defaultSynchronous,
		BusyTimeout:  defaultBusyTimeout,
	}
	c.Server = ServerConfig{
		Port:              defaultPort,
		ReadHeaderTimeout: defaultReadHeaderTimeout,
		ShutdownTimeout:   defaultShutdownTimeout,
	}
	c.AMQP = AMQPConfig{
		Exchange: defaultAMQPExchange,
		Queue:    defaultAMQPQueue,
	}
	c.Logger = logger.Config{
		Level:  defaultLogLevel,
		Format: defaultLogFormat,
		Output: defaultLogOutput,
	}
}

func (c *Config) parseFile(path string) error {
	if path == "" {
		return nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		err = yaml.Unmarshal(content, c)
	case ".toml":
		err = toml.Unmarshal(content, c)
	default:
		return fmt.Errorf("unsupported config format: %s", filepath.Ext(path))
	}

	if err != nil {
		return fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	return nil
}

func (c *Config) parseEnv() {
	if db := os.Getenv("SPENDTRACE_DB"); db != "" {
		c.DB.Source = db
	}

	if port := os.Getenv("SPENDTRACE_PORT"); port != "" {
		c.Server.Port = port
	}

	if level := os.Getenv("SPENDTRACE_LOG_LEVEL"); level != "" {
		c.Logger.Level = logger.Level(level)
	}

	if format := os.Getenv("SPENDTRACE_LOG_FORMAT"); format != "" {
		c.Logger.Format = logger.Format(format)
	}

	if output := os.Getenv("SPENDTRACE_LOG_OUTPUT"); output != "" {
		c.Logger.Output = output
	}

	if origins := os.Getenv("SPENDTRACE_TRUSTED_ORIGINS"); origins != "" {
		c.Server.TrustedOrigins = nil
		for _, origin := range strings.Split(origins, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.Server.TrustedOrigins = append(c.Server.TrustedOrigins, origin)
			}
		}
	}

	if amqpURL := os.Getenv("SPENDTRACE_AMQP_URL"); amqpURL != "" {
		c.AMQP.URL = amqpURL
	}

	if exchange := os.Getenv("SPENDTRACE_AMQP_EXCHANGE"); exchange != "" {
		c.AMQP.Exchange = exchange
	}

	if queue := os.Getenv("SPENDTRACE_AMQP_QUEUE"); queue != "" {
		c.AMQP.Queue = queue
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string

	if c.DB.Source == "" {
		problems = append(problems, "database source cannot be empty")
	}

	if port, err := strconv.Atoi(c.Server.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Server.Port))
	} else if port < 1 || port > maxPort {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and %d", port, maxPort))
	}

	switch c.Logger.Format {
	case logger.FormatText, logger.FormatJSON:
	default:
		problems = append(problems, fmt.Sprintf("invalid log format '%s': must be text or json", c.Logger.Format))
	}

	switch c.Logger.Level {
	case logger.LevelDebug, logger.LevelInfo, logger.LevelWarn, logger.LevelError:
	default:
		problems = append(problems, fmt.Sprintf("invalid log level '%s'", c.Logger.Level))
	}

	if c.AMQP.URL != "" {
		parsedURL, err := url.Parse(c.AMQP.URL)
		if err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL: %v", err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			problems = append(problems,
				fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}

		if c.AMQP.Exchange == "" || c.AMQP.Queue == "" {
			problems = append(problems, "AMQP exchange and queue are required when an AMQP URL is set")
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}

	return nil
}
