package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"

	SinkNone  = "none"
	SinkRedis = "redis"
	SinkKafka = "kafka"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
	Events   EventsConfig   `mapstructure:"events"`
	Log      LogConfig      `mapstructure:"log"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

// Development reports whether internal error details may be shown to clients.
func (a AppConfig) Development() bool {
	return a.Env == EnvDevelopment
}

type ServerConfig struct {
	Address         string        `mapstructure:"address"`
	Mode            string        `mapstructure:"mode"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Username        string        `mapstructure:"username"`
	Password        string        `mapstructure:"password"`
	DatabaseName    string        `mapstructure:"database_name"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnectTimeout  time.Duration `mapstructure:"connect_timeout"`
	SlowThreshold   time.Duration `mapstructure:"slow_threshold"`
}

// DSN renders the driver specific connection string.
func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverPostgres {
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
			d.Host,
			d.Port,
			d.Username,
			d.Password,
			d.DatabaseName,
		)
	}
	return fmt.Sprintf(
		"%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username,
		d.Password,
		d.Host,
		d.Port,
		d.DatabaseName,
	)
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	// Group is the consumer group joined by the watch command.
	Group string `mapstructure:"group"`
}

type EventsConfig struct {
	Sink    string `mapstructure:"sink"`
	Channel string `mapstructure:"channel"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", EnvDevelopment)

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", 10*time.Second)
	v.SetDefault("server.write_timeout", 10*time.Second)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)

	v.SetDefault("database.driver", DriverMySQL)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "library")
	v.SetDefault("database.password", "library")
	v.SetDefault("database.database_name", "library_db")
	v.SetDefault("database.max_open_conns", 50)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", time.Hour)
	v.SetDefault("database.connect_timeout", 30*time.Second)
	v.SetDefault("database.slow_threshold", 200*time.Millisecond)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "library.loans")
	v.SetDefault("kafka.group", "library-watch")

	v.SetDefault("events.sink", SinkNone)
	v.SetDefault("events.channel", "LoanChannel")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load reads defaults, the optional config file and LIBRARY_* environment variables.
func Load(file string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LIBRARY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	// AutomaticEnv yields a single string for list keys.
	if len(cfg.Kafka.Brokers) == 1 && strings.Contains(cfg.Kafka.Brokers[0], ",") {
		cfg.Kafka.Brokers = strings.Split(cfg.Kafka.Brokers[0], ",")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var result *multierror.Error

	switch c.App.Env {
	case EnvDevelopment, EnvProduction:
	default:
		result = multierror.Append(result, fmt.Errorf("app.env must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.App.Env))
	}
	if c.Server.Address == "" {
		result = multierror.Append(result, fmt.Errorf("server.address is required"))
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		result = multierror.Append(result, fmt.Errorf("server.mode must be debug, release or test, got %q", c.Server.Mode))
	}
	switch c.Database.Driver {
	case DriverMySQL, DriverPostgres:
	default:
		result = multierror.Append(result, fmt.Errorf("database.driver must be %q or %q, got %q", DriverMySQL, DriverPostgres, c.Database.Driver))
	}
	if c.Database.Host == "" {
		result = multierror.Append(result, fmt.Errorf("database.host is required"))
	}
	if c.Database.Port <= 0 {
		result = multierror.Append(result, fmt.Errorf("database.port must be positive"))
	}
	if c.Database.DatabaseName == "" {
		result = multierror.Append(result, fmt.Errorf("database.database_name is required"))
	}
	switch c.Events.Sink {
	case SinkNone:
	case SinkRedis:
		if c.Redis.Addr == "" {
			result = multierror.Append(result, fmt.Errorf("redis.addr is required for the redis event sink"))
		}
		if c.Events.Channel == "" {
			result = multierror.Append(result, fmt.Errorf("events.channel is required for the redis event sink"))
		}
	case SinkKafka:
		if len(c.Kafka.Brokers) == 0 {
			result = multierror.Append(result, fmt.Errorf("kafka.brokers is required for the kafka event sink"))
		}
		if c.Kafka.Topic == "" {
			result = multierror.Append(result, fmt.Errorf("kafka.topic is required for the kafka event sink"))
		}
	default:
		result = multierror.Append(result, fmt.Errorf("events.sink must be one of none, redis, kafka, got %q", c.Events.Sink))
	}

	return result.ErrorOrNil()
}
