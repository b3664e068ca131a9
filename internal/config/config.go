package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	configFile = "data/config.yaml"
	envFile    = ".env"

	configPathEnv    = "CONFIG_PATH"
	telegramTokenEnv = "TELEGRAM_TOKEN"
	apiBaseURLEnv    = "API_BASE_URL"
	postgresPassEnv  = "POSTGRES_PASSWORD"
)

type config struct {
	Telegram  TelegramConfig  `yaml:"telegram"`
	API       APIConfig       `yaml:"api"`
	App       AppConfig       `yaml:"app"`
	Memcached MemcachedConfig `yaml:"memcached"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Jaeger    JaegerConfig    `yaml:"jaeger"`
}

type Service struct {
	config config
}

// New reads the config file (CONFIG_PATH or data/config.yaml) and applies
// overrides from the environment and an optional .env file.
func New() (*Service, error) {
	// .env is optional, real environment variables still win
	if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "loading .env")
	}

	path := os.Getenv(configPathEnv)
	if path == "" {
		path = configFile
	}
	return NewFromFile(path)
}

func NewFromFile(path string) (*Service, error) {
	rawYAML, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config file")
	}
	return parse(rawYAML)
}

func parse(rawYAML []byte) (*Service, error) {
	s := &Service{config: defaults()}

	err := yaml.Unmarshal(rawYAML, &s.config)
	if err != nil {
		return nil, errors.Wrap(err, "parsing yaml")
	}
	s.applyEnv()

	if err = s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func defaults() config {
	return config{
		App: AppConfig{
			Store:    StoreMemory,
			Metrics:  ":9090",
			TimeZone: "UTC",
		},
		Postgres: PostgresConfig{
			Port: 5432,
			SSL:  "disable",
		},
		Jaeger: JaegerConfig{
			Service:  "expense-tracker-bot",
			Disabled: true,
		},
	}
}

func (s *Service) applyEnv() {
	if v := os.Getenv(telegramTokenEnv); v != "" {
		s.config.Telegram.ApiToken = v
	}
	if v := os.Getenv(apiBaseURLEnv); v != "" {
		s.config.API.URL = v
	}
	if v := os.Getenv(postgresPassEnv); v != "" {
		s.config.Postgres.Pswd = v
	}
}

func (s *Service) Validate() error {
	var problems []string

	if strings.TrimSpace(s.config.API.URL) == "" {
		problems = append(problems, "api base-url is required")
	}
	if s.config.API.TimeoutSeconds < 0 {
		problems = append(problems, "api timeout-seconds cannot be negative")
	}

	switch s.config.App.Store {
	case StoreMemory:
	case StoreMemcached:
		if len(s.config.Memcached.NodeHosts) == 0 {
			problems = append(problems, "memcached hosts are required for the memcached credential store")
		}
	case StorePostgres:
		if s.config.Postgres.Hostname == "" || s.config.Postgres.Db == "" {
			problems = append(problems, "postgres host and db are required for the postgres credential store")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown credential store %q", s.config.App.Store))
	}

	if len(s.config.Kafka.BrokerList) > 0 && s.config.Kafka.Topic == "" {
		problems = append(problems, "kafka events-topic is required when brokers are set")
	}

	if len(problems) > 0 {
		return errors.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

func (s *Service) Telegram() *TelegramConfig {
	return &s.config.Telegram
}

func (s *Service) API() *APIConfig {
	return &s.config.API
}

func (s *Service) App() *AppConfig {
	return &s.config.App
}

func (s *Service) Memcached() *MemcachedConfig {
	return &s.config.Memcached
}

func (s *Service) Postgres() *PostgresConfig {
	return &s.config.Postgres
}

func (s *Service) Kafka() *KafkaConfig {
	return &s.config.Kafka
}

func (s *Service) Jaeger() *JaegerConfig {
	return &s.config.Jaeger
}
