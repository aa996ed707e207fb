package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"bikeflow/communication"
	"bikeflow/loader"
	"bikeflow/trafficview"
	"bikeflow/utils"
)

const (
	configFilepathEnv     = "CONFIG_FILE"
	defaultConfigFilepath = "./server/config/config.yaml"
	defaultPort           = "8080"
	defaultLoadTimeout    = 2 * time.Minute
)

// SourcesConfig where to read stations and trips from. Each one can be a file path or an http(s) URL
type SourcesConfig struct {
	Stations           string `yaml:"stations" validate:"required"`
	Trips              string `yaml:"trips" validate:"required"`
	LoadTimeoutSeconds int    `yaml:"load_timeout_seconds" validate:"gte=0"`
}

type ServerConfig struct {
	IP             string                        `yaml:"ip"`
	Port           string                        `yaml:"port" validate:"omitempty,numeric"`
	LogLevel       string                        `yaml:"log_level"`
	Sources        SourcesConfig                 `yaml:"sources"`
	TripLoader     loader.TripLoaderConfig       `yaml:"trip_loader"`
	View           trafficview.Config            `yaml:"view"`
	RabbitMQConfig communication.PublisherConfig `yaml:"rabbit_mq" validate:"-"`
}

// Address returns ip:port
func (sc *ServerConfig) Address() string {
	return sc.IP + ":" + sc.Port
}

// LoadTimeout returns how long the service waits for each data load
func (sc *ServerConfig) LoadTimeout() time.Duration {
	if sc.Sources.LoadTimeoutSeconds <= 0 {
		return defaultLoadTimeout
	}
	return time.Duration(sc.Sources.LoadTimeoutSeconds) * time.Second
}

// LoadConfig reads the config file set in CONFIG_FILE, or the default one, and applies the environment overrides
func LoadConfig() (*ServerConfig, error) {
	configFilepath := os.Getenv(configFilepathEnv)
	if configFilepath == "" {
		configFilepath = defaultConfigFilepath
	}

	configFile, err := utils.GetConfigFile(configFilepath)
	if err != nil {
		return nil, err
	}

	return ParseConfig(configFile)
}

// ParseConfig parses a YAML config, applies the environment overrides and validates the result
func ParseConfig(configFile []byte) (*ServerConfig, error) {
	serverConfig := ServerConfig{
		Port: defaultPort,
		TripLoader: loader.TripLoaderConfig{
			Columns:   loader.DefaultTripColumns(),
			HasHeader: true,
		},
	}

	err := yaml.Unmarshal(configFile, &serverConfig)
	if err != nil {
		return nil, fmt.Errorf("error parsing server config file: %w", err)
	}

	applyEnvOverrides(&serverConfig)

	validate := validator.New()
	if err = validate.Struct(serverConfig.Sources); err != nil {
		return nil, fmt.Errorf("invalid sources config: %w", err)
	}
	if err = validate.Struct(serverConfig.TripLoader); err != nil {
		return nil, fmt.Errorf("invalid trip loader config: %w", err)
	}
	if err = validate.Struct(serverConfig.View.Aggregator); err != nil {
		return nil, fmt.Errorf("invalid aggregator config: %w", err)
	}
	if serverConfig.RabbitMQConfig.Enabled() {
		if err = validate.Struct(serverConfig.RabbitMQConfig); err != nil {
			return nil, fmt.Errorf("invalid rabbit_mq config: %w", err)
		}
	}
	if err = validate.Struct(serverConfig); err != nil {
		return nil, fmt.Errorf("invalid server config: %w", err)
	}

	return &serverConfig, nil
}

func applyEnvOverrides(serverConfig *ServerConfig) {
	overrides := map[string]*string{
		"PORT":            &serverConfig.Port,
		"LOG_LEVEL":       &serverConfig.LogLevel,
		"CITY":            &serverConfig.View.City,
		"STATIONS_SOURCE": &serverConfig.Sources.Stations,
		"TRIPS_SOURCE":    &serverConfig.Sources.Trips,
		"RABBIT_URL":      &serverConfig.RabbitMQConfig.URL,
	}

	for envName, target := range overrides {
		if value := os.Getenv(envName); value != "" {
			*target = value
		}
	}
}
