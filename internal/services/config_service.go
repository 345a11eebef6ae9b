package services

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"hwstats-agent/internal/logging"
	"hwstats-agent/internal/monitoring"
)

// ServerConfig represents server configuration
type ServerConfig struct {
	Host                   string `json:"host" yaml:"host"`
	Port                   int    `json:"port" yaml:"port"`
	ReadTimeoutSeconds     int    `json:"read_timeout_seconds" yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds    int    `json:"write_timeout_seconds" yaml:"write_timeout_seconds"`
	ShutdownTimeoutSeconds int    `json:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// MonitoringConfig represents monitoring configuration
type MonitoringConfig struct {
	DiskPath   string `json:"disk_path" yaml:"disk_path"`
	EnableGPU  bool   `json:"enable_gpu" yaml:"enable_gpu"`
	GPUCommand string `json:"gpu_command" yaml:"gpu_command"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `json:"level" yaml:"level"`
	File  string `json:"file" yaml:"file"`
}

type MetricsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

type WebSocketConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Config structure for application configuration
type Config struct {
	Server      ServerConfig                `json:"server" yaml:"server"`
	Monitoring  MonitoringConfig            `json:"monitoring" yaml:"monitoring"`
	Temperature monitoring.TemperatureRules `json:"temperature" yaml:"temperature"`
	Logging     LoggingConfig               `json:"logging" yaml:"logging"`
	Metrics     MetricsConfig               `json:"metrics" yaml:"metrics"`
	WebSocket   WebSocketConfig             `json:"websocket" yaml:"websocket"`
}

// LoadConfig loads configuration from file, creating the file with defaults
// when it does not exist. Keys missing from the file keep their defaults. On
// a parse error the defaults are returned together with the error.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		defaultConfig := getDefaultConfig()
		if saveErr := saveConfig(configPath, &defaultConfig); saveErr != nil {
			return &defaultConfig, fmt.Errorf("failed to save default config: %w", saveErr)
		}
		logging.LogInfo("Created default config file", "path", configPath)
		return &defaultConfig, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := getDefaultConfig()
	if err := decodeConfig(configPath, data, &config); err != nil {
		defaultConfig := getDefaultConfig()
		return &defaultConfig, fmt.Errorf("failed to parse config (using defaults): %w", err)
	}

	config = validateAndFillDefaults(config)
	logging.LogInfo("Loaded configuration", "path", configPath)
	return &config, nil
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func decodeConfig(path string, data []byte, config *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, config)
	}
	return json.Unmarshal(data, config)
}

// saveConfig saves configuration to the specified path
func saveConfig(configPath string, config *Config) error {
	var (
		data []byte
		err  error
	)
	if isYAML(configPath) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// getDefaultConfig returns default configuration values
func getDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Host:                   "0.0.0.0",
			Port:                   5000,
			ReadTimeoutSeconds:     10,
			WriteTimeoutSeconds:    15,
			ShutdownTimeoutSeconds: 10,
		},
		Monitoring: MonitoringConfig{
			DiskPath:   monitoring.DefaultDiskPath(),
			EnableGPU:  true,
			GPUCommand: monitoring.DefaultNvidiaSMI,
		},
		Temperature: monitoring.DefaultTemperatureRules(),
		Logging: LoggingConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
		WebSocket: WebSocketConfig{
			Enabled: true,
		},
	}
}

// validateAndFillDefaults ensures all config values are valid and fills in defaults for missing values
func validateAndFillDefaults(config Config) Config {
	defaults := getDefaultConfig()

	// Server config validation
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		config.Server.Port = defaults.Server.Port
	}
	if config.Server.Host == "" {
		config.Server.Host = defaults.Server.Host
	}
	if config.Server.ReadTimeoutSeconds <= 0 {
		config.Server.ReadTimeoutSeconds = defaults.Server.ReadTimeoutSeconds
	}
	// every request blocks for the CPU sample window
	if config.Server.WriteTimeoutSeconds <= int(monitoring.CPUSampleInterval.Seconds()) {
		config.Server.WriteTimeoutSeconds = defaults.Server.WriteTimeoutSeconds
	}
	if config.Server.ShutdownTimeoutSeconds <= 0 {
		config.Server.ShutdownTimeoutSeconds = defaults.Server.ShutdownTimeoutSeconds
	}

	// Monitoring config validation
	if config.Monitoring.DiskPath == "" {
		config.Monitoring.DiskPath = defaults.Monitoring.DiskPath
	}
	if config.Monitoring.GPUCommand == "" {
		config.Monitoring.GPUCommand = defaults.Monitoring.GPUCommand
	}

	// Temperature rules validation
	if len(config.Temperature.LinuxDrivers) == 0 {
		config.Temperature.LinuxDrivers = defaults.Temperature.LinuxDrivers
	}
	if len(config.Temperature.Hardware) == 0 {
		config.Temperature.Hardware = defaults.Temperature.Hardware
	}
	if err := config.Temperature.Validate(); err != nil {
		logging.LogWarn("Invalid temperature rules, using defaults", "error", err)
		config.Temperature = defaults.Temperature
	}

	// Logging config validation
	if _, err := logging.ParseLogLevel(config.Logging.Level); err != nil {
		config.Logging.Level = defaults.Logging.Level
	}

	return config
}

// FlagOverrides holds command-line values that take precedence over the
// config file. Only flags set explicitly are applied.
type FlagOverrides struct {
	fs         *pflag.FlagSet
	host       string
	port       int
	logLevel   string
	logFile    string
	diskPath   string
	disableGPU bool
}

// RegisterFlags defines the override flags on fs.
func RegisterFlags(fs *pflag.FlagSet) *FlagOverrides {
	o := &FlagOverrides{fs: fs}
	fs.StringVar(&o.host, "host", "", "address to bind (overrides server.host)")
	fs.IntVarP(&o.port, "port", "p", 0, "port to listen on (overrides server.port)")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&o.logFile, "log-file", "", "also write logs to this file")
	fs.StringVar(&o.diskPath, "disk-path", "", "filesystem reported as disk usage")
	fs.BoolVar(&o.disableGPU, "no-gpu", false, "disable the GPU source")
	return o
}

// Apply copies explicitly set flags into config and re-validates it.
func (o *FlagOverrides) Apply(config *Config) {
	if o.fs.Changed("host") {
		config.Server.Host = o.host
	}
	if o.fs.Changed("port") {
		config.Server.Port = o.port
	}
	if o.fs.Changed("log-level") {
		config.Logging.Level = o.logLevel
	}
	if o.fs.Changed("log-file") {
		config.Logging.File = o.logFile
	}
	if o.fs.Changed("disk-path") {
		config.Monitoring.DiskPath = o.diskPath
	}
	if o.fs.Changed("no-gpu") && o.disableGPU {
		config.Monitoring.EnableGPU = false
	}
	*config = validateAndFillDefaults(*config)
}
