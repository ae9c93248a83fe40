package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/ovapi/bison-gtfsrt/pkg/util"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Transport   string        `yaml:"transport" validate:"oneof=zmq stomp"`
	Endpoint    string        `yaml:"endpoint" validate:"required_if=Transport zmq"`
	Topics      []string      `yaml:"topics"`
	Stomp       StompConfig   `yaml:"stomp"`
	IdleTimeout time.Duration `yaml:"idle_timeout" validate:"gt=0"`

	QueueCapacity int `yaml:"queue_capacity" validate:"gt=0"`
	Workers       int `yaml:"workers" validate:"gt=0"`

	GCInterval     time.Duration `yaml:"gc_interval" validate:"gt=0"`
	PositionMaxAge time.Duration `yaml:"position_max_age" validate:"gt=0"`
	TripExpiration time.Duration `yaml:"trip_expiration" validate:"gt=0"`
	// FromDate overrides the first operating day of the schedule, formatted 2006-01-02.
	FromDate string `yaml:"from_date" validate:"omitempty,datetime=2006-01-02"`

	CommercialExemptOperator string `yaml:"commercial_exempt_operator"`
	DayRolloverOperator      string `yaml:"day_rollover_operator"`
	DayRolloverCutoffHour    int    `yaml:"day_rollover_cutoff_hour" validate:"gte=0,lte=24"`

	Timezone          string        `yaml:"timezone" validate:"required"`
	ListenAddress     string        `yaml:"listen_address" validate:"required"`
	IdentifierCaching time.Duration `yaml:"identifier_caching" validate:"gte=0"`
}

type StompConfig struct {
	Address     string `yaml:"address"`
	Username    string `yaml:"username"`
	Password    string `yaml:"password"`
	Destination string `yaml:"destination"`
}

func Default() Config {
	return Config{
		Transport:                "zmq",
		Endpoint:                 "tcp://pubsub.besteffort.ndovloket.nl:7658",
		IdleTimeout:              5 * time.Minute,
		QueueCapacity:            10000,
		Workers:                  16,
		GCInterval:               time.Minute,
		PositionMaxAge:           2 * time.Minute,
		TripExpiration:           time.Hour,
		CommercialExemptOperator: "QBUZZ",
		DayRolloverOperator:      "CXX",
		DayRolloverCutoffHour:    7,
		Timezone:                 "Europe/Amsterdam",
		ListenAddress:            ":8080",
		IdentifierCaching:        90 * time.Minute,
	}
}

// Load reads the optional YAML file, then applies BISON_* environment overrides from the
// process environment and a .env file, and validates the result.
func Load(path string) (Config, error) {
	config := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return config, err
		}
		if err := yaml.Unmarshal(data, &config); err != nil {
			return config, fmt.Errorf("parsing %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config, err
	}

	if err := config.applyEnvironment(util.GetEnvironmentVariables()); err != nil {
		return config, err
	}

	if err := validator.New().Struct(config); err != nil {
		return config, err
	}
	if config.Transport == "stomp" && (config.Stomp.Address == "" || config.Stomp.Destination == "") {
		return config, errors.New("stomp transport needs an address and destination")
	}

	return config, nil
}

func (c *Config) applyEnvironment(env map[string]string) error {
	stringValues := map[string]*string{
		"BISON_TRANSPORT":                  &c.Transport,
		"BISON_ENDPOINT":                   &c.Endpoint,
		"BISON_STOMP_ADDRESS":              &c.Stomp.Address,
		"BISON_STOMP_USERNAME":             &c.Stomp.Username,
		"BISON_STOMP_PASSWORD":             &c.Stomp.Password,
		"BISON_STOMP_DESTINATION":          &c.Stomp.Destination,
		"BISON_FROM_DATE":                  &c.FromDate,
		"BISON_COMMERCIAL_EXEMPT_OPERATOR": &c.CommercialExemptOperator,
		"BISON_DAY_ROLLOVER_OPERATOR":      &c.DayRolloverOperator,
		"BISON_TIMEZONE":                   &c.Timezone,
		"BISON_LISTEN_ADDRESS":             &c.ListenAddress,
	}
	for name, target := range stringValues {
		if value := env[name]; value != "" {
			*target = value
		}
	}

	ints := map[string]*int{
		"BISON_QUEUE_CAPACITY":           &c.QueueCapacity,
		"BISON_WORKERS":                  &c.Workers,
		"BISON_DAY_ROLLOVER_CUTOFF_HOUR": &c.DayRolloverCutoffHour,
	}
	for name, target := range ints {
		if value := env[name]; value != "" {
			n, err := strconv.Atoi(value)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*target = n
		}
	}

	durations := map[string]*time.Duration{
		"BISON_IDLE_TIMEOUT":       &c.IdleTimeout,
		"BISON_GC_INTERVAL":        &c.GCInterval,
		"BISON_POSITION_MAX_AGE":   &c.PositionMaxAge,
		"BISON_TRIP_EXPIRATION":    &c.TripExpiration,
		"BISON_IDENTIFIER_CACHING": &c.IdentifierCaching,
	}
	for name, target := range durations {
		if value := env[name]; value != "" {
			d, err := time.ParseDuration(value)
			if err != nil {
				return fmt.Errorf("invalid %s: %w", name, err)
			}
			*target = d
		}
	}

	if value := env["BISON_TOPICS"]; value != "" {
		c.Topics = splitList(value)
	}

	return nil
}

func splitList(value string) []string {
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}

func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// FromDateIn returns the configured schedule lower bound, or nil when not set.
func (c *Config) FromDateIn(location *time.Location) (*time.Time, error) {
	if c.FromDate == "" {
		return nil, nil
	}

	fromDate, err := time.ParseInLocation("2006-01-02", c.FromDate, location)
	if err != nil {
		return nil, err
	}
	return &fromDate, nil
}
