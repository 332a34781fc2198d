package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/icodeforyou/mipi-go/logging"
	"github.com/spf13/viper"
)

const DefaultEndpoint = "http://marketinformation.natgrid.co.uk/MIPIws-public/public/publicwebservice.asmx"

type AppConfigMipi struct {
	// SOAP endpoint of the MIPI public web service
	Endpoint *string
	// Where to read the service description from, default: "<endpoint>?WSDL"
	WsdlUrl *string `mapstructure:"wsdl_url"`
	// Request timeout in seconds, if not assigned the transport default applies
	Timeout *int
}

func (m AppConfigMipi) GetEndpoint() string {
	if m.Endpoint == nil || *m.Endpoint == "" {
		return DefaultEndpoint
	}
	return *m.Endpoint
}

func (m AppConfigMipi) GetWsdlUrl() string {
	if m.WsdlUrl == nil || *m.WsdlUrl == "" {
		return m.GetEndpoint() + "?WSDL"
	}
	return *m.WsdlUrl
}

func (m AppConfigMipi) GetTimeout() time.Duration {
	if m.Timeout == nil {
		return 0
	}
	return time.Duration(*m.Timeout) * time.Second
}

type AppConfigApi struct {
	Address string
	Port    int16
}

type AppConfigDatabase struct {
	Path string
	// How many days of report values should be kept before they get purged, 0 keeps everything
	DataRetentionDays *int `mapstructure:"data_retention_days"`
}

func (d AppConfigDatabase) GetDataRetentionDays() int {
	if d.DataRetentionDays == nil {
		return 0
	}
	return *d.DataRetentionDays
}

type AppConfigSync struct {
	// Report names or preset codes ("DP6", "DP1", "PS", "SAP")
	Reports []string
	// How many gas days back to fetch when a report has nothing stored yet
	LookbackDays *int  `mapstructure:"lookback_days"`
	Latest       *bool `mapstructure:"latest"`
	RunAt        string `mapstructure:"run_at"`
}

func (s AppConfigSync) GetLookbackDays() int {
	if s.LookbackDays == nil {
		return 30
	}
	return *s.LookbackDays
}

func (s AppConfigSync) GetLatest() bool {
	if s.Latest == nil {
		return true
	}
	return *s.Latest
}

type AppConfigMqtt struct {
	Host     string
	Port     int16
	Username string
	Password string
	// Topic prefix, default: "mipi"
	TopicPrefix *string `mapstructure:"topic_prefix"`
	ClientId    *string `mapstructure:"client_id"`
}

func (m AppConfigMqtt) Enabled() bool {
	return m.Host != ""
}

func (m AppConfigMqtt) GetTopicPrefix() string {
	if m.TopicPrefix == nil {
		return "mipi"
	}
	return *m.TopicPrefix
}

func (m AppConfigMqtt) GetClientId() string {
	if m.ClientId == nil {
		return "mipi-go"
	}
	return *m.ClientId
}

type AppConfigLogging struct {
	// Min log level for database : "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	ConsoleLevel *string `mapstructure:"console_level"`
}

func (l AppConfigLogging) GetDbLevel() slog.Level {
	return logging.LevelFromString(l.DbLevel)
}

func (l AppConfigLogging) GetDbAttrsFormat() logging.LogAttrFormat {
	if l.DbAttrsFormat != nil && strings.EqualFold(*l.DbAttrsFormat, "text") {
		return logging.LogAttrFormatText
	}
	return logging.LogAttrFormatJSON
}

func (l AppConfigLogging) GetDbMaxEntries() int {
	if l.DbMaxEntries == nil {
		return 10000
	}
	return *l.DbMaxEntries
}

func (l AppConfigLogging) GetConsoleLevel() slog.Level {
	return logging.LevelFromString(l.ConsoleLevel)
}

type AppConfig struct {
	Mipi     AppConfigMipi
	Api      AppConfigApi
	Database AppConfigDatabase
	Sync     AppConfigSync    `mapstructure:"sync"`
	Mqtt     AppConfigMqtt    `mapstructure:"mqtt"`
	Logging  AppConfigLogging `mapstructure:"logging"`
}

func Load(path string) (*AppConfig, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath("config")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("api.port", 8080)
	v.SetDefault("database.path", "mipi.db")
	v.SetDefault("sync.run_at", "30 11 * * *")

	var c AppConfig

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("unable to read config file: %w", err)
	}

	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unable to unmarshal config file: %w", err)
	}

	return &c, nil
}

// LoadOptional behaves like Load but falls back to an empty config, where
// every getter returns its default, when no path is given and no config
// file is found.
func LoadOptional(path string) (*AppConfig, error) {
	c, err := Load(path)
	var notFound viper.ConfigFileNotFoundError
	if path == "" && errors.As(err, &notFound) {
		return &AppConfig{}, nil
	}
	return c, err
}
