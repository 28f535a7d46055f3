// internal/appconfig/appconfig.go
// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is the path to the configuration file used in previous versions.
	legacyConfigPath = "config.json"

	defaultResultsDir   = "results"
	defaultOutputPath   = "lib/results.json"
	defaultDatasetsPath = "lib/datasets.json"
	defaultMethodsPath  = "lib/methods.json"
	defaultMarker       = "result.json"
	defaultListenAddr   = ":8080"
	defaultLogFile      = "nvsbench.log"
)

// Config represents the top-level application configuration.
type Config struct {
	ResultsDir   string `json:"resultsDir,omitempty"`
	OutputPath   string `json:"outputPath,omitempty"`
	DatasetsPath string `json:"datasetsPath,omitempty"`
	MethodsPath  string `json:"methodsPath,omitempty"`
	Marker       string `json:"marker,omitempty" validate:"omitempty,excludes=/"`
	ImageBaseURL string `json:"imageBaseURL,omitempty" validate:"omitempty,url"`
	PublicDir    string `json:"publicDir,omitempty"`
	ListenAddr   string `json:"listenAddr,omitempty" validate:"omitempty,hostname_port"`
	LogFile      string `json:"logFile,omitempty"`
	Debug        bool   `json:"debug"`
	ConfigPath   string `json:"-"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the fields that have a fixed shape.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			var parts []string
			for _, fe := range fieldErrs {
				parts = append(parts, fmt.Sprintf("%s fails %q", fe.Field(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(parts, ", "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// ResultsRoot returns the directory that holds per-run result files.
func (c Config) ResultsRoot() string { return orDefault(c.ResultsDir, defaultResultsDir) }

// CanonicalPath returns where the aggregated dataset is written.
func (c Config) CanonicalPath() string { return orDefault(c.OutputPath, defaultOutputPath) }

// DatasetRegistryPath returns the dataset registry file.
func (c Config) DatasetRegistryPath() string { return orDefault(c.DatasetsPath, defaultDatasetsPath) }

// MethodRegistryPath returns the method registry file.
func (c Config) MethodRegistryPath() string { return orDefault(c.MethodsPath, defaultMethodsPath) }

// ResultMarker returns the file name result files are stored under.
func (c Config) ResultMarker() string { return orDefault(c.Marker, defaultMarker) }

// Listen returns the API server address.
func (c Config) Listen() string { return orDefault(c.ListenAddr, defaultListenAddr) }

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string { return orDefault(c.LogFile, defaultLogFile) }

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		if err := config.Validate(); err != nil {
			return Config{}, err
		}
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				if err := config.Validate(); err != nil {
					return Config{}, err
				}
				config.ConfigPath = legacyConfigPath
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("no configuration file found (searched %q and %q)", DefaultConfigPath, legacyConfigPath)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("no configuration file found at %q", path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath is a helper function that loads the configuration from a specific file path.
func loadFromPath(path string) (Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer file.Close()

	var config Config
	if err := json.NewDecoder(file).Decode(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}
