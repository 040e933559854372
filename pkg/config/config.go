package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/coverline/customer-analytics/pkg/validation"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	App     AppConfig     `yaml:"app"`
	Inputs  InputsConfig  `yaml:"inputs"`
	Output  OutputConfig  `yaml:"output"`
	Report  ReportConfig  `yaml:"report"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// AppConfig holds run-level configuration
type AppConfig struct {
	Environment string `yaml:"environment"`
	ServiceName string `yaml:"-"`
	// AsOf pins the reference date used for tenure calculations.
	// Empty means the current time at the start of the run.
	AsOf string `yaml:"as_of" validate:"omitempty,datetime=2006-01-02"`
}

// InputsConfig holds the paths of the four source tables
type InputsConfig struct {
	Customers       string `yaml:"customers" validate:"required"`
	Policies        string `yaml:"policies" validate:"required"`
	Claims          string `yaml:"claims" validate:"required"`
	FraudDetections string `yaml:"fraud_detections" validate:"required"`
}

// OutputConfig holds the paths of the generated artifacts
type OutputConfig struct {
	Segments string `yaml:"segments" validate:"required"`
	// Rollup and PolicyMix are optional side outputs; empty disables them.
	Rollup    string `yaml:"rollup"`
	PolicyMix string `yaml:"policy_mix"`
}

// ReportConfig holds defaults for the summary report
type ReportConfig struct {
	TopN int    `yaml:"top_n" validate:"gte=1"`
	Mode string `yaml:"mode" validate:"oneof=score exposure both"`
}

// MetricsConfig holds Prometheus textfile-collector configuration
type MetricsConfig struct {
	Enabled      bool   `yaml:"enabled"`
	TextfilePath string `yaml:"textfile_path"`
}

// Load loads configuration with precedence: environment variables over the
// YAML file at configPath (may be empty) over built-in defaults.
func Load(serviceName, configPath string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		App: AppConfig{
			Environment: "development",
			ServiceName: serviceName,
		},
		Inputs: InputsConfig{
			Customers:       "data/customers.csv",
			Policies:        "data/policies.csv",
			Claims:          "data/claims.csv",
			FraudDetections: "data/fraud_detections.csv",
		},
		Output: OutputConfig{
			Segments: "outputs/customer_segments.csv",
		},
		Report: ReportConfig{
			TopN: 3,
			Mode: "score",
		},
	}

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", configPath, err)
		}
		cfg.App.ServiceName = serviceName
	}

	cfg.App.Environment = getEnv("ENVIRONMENT", cfg.App.Environment)
	cfg.App.AsOf = getEnv("AS_OF_DATE", cfg.App.AsOf)

	cfg.Inputs.Customers = getEnv("INPUT_CUSTOMERS_PATH", cfg.Inputs.Customers)
	cfg.Inputs.Policies = getEnv("INPUT_POLICIES_PATH", cfg.Inputs.Policies)
	cfg.Inputs.Claims = getEnv("INPUT_CLAIMS_PATH", cfg.Inputs.Claims)
	cfg.Inputs.FraudDetections = getEnv("INPUT_FRAUD_PATH", cfg.Inputs.FraudDetections)

	cfg.Output.Segments = getEnv("OUTPUT_SEGMENTS_PATH", cfg.Output.Segments)
	cfg.Output.Rollup = getEnv("OUTPUT_ROLLUP_PATH", cfg.Output.Rollup)
	cfg.Output.PolicyMix = getEnv("OUTPUT_POLICY_MIX_PATH", cfg.Output.PolicyMix)

	cfg.Report.TopN = getEnvAsInt("REPORT_TOP_N", cfg.Report.TopN)
	cfg.Report.Mode = getEnv("REPORT_MODE", cfg.Report.Mode)

	cfg.Metrics.Enabled = getEnvAsBool("METRICS_ENABLED", cfg.Metrics.Enabled)
	cfg.Metrics.TextfilePath = getEnv("METRICS_TEXTFILE_PATH", cfg.Metrics.TextfilePath)

	if err := validator.New().Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return nil, fmt.Errorf("invalid configuration: %w", validation.NewValidationError(fieldErrs))
		}
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// TextfileEnabled reports whether the run should export a metrics textfile
func (c *MetricsConfig) TextfileEnabled() bool {
	return c.Enabled && c.TextfilePath != ""
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
