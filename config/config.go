package config

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/angas/powerprice-go/logging"
	"github.com/angas/powerprice-go/zones"
	"github.com/spf13/viper"
)

// ConfigurationError is fatal: it is raised once at startup and must keep
// the service from serving at all.
type ConfigurationError struct {
	Detail string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Detail)
}

type AppConfigApi struct {
	Address string
	Port    int16
	// Optional bearer token protecting the price endpoints.
	AuthToken *string `mapstructure:"auth_token"`
}

type AppConfigEntsoe struct {
	BaseUrl *string `mapstructure:"base_url"`
	Token   string  // Get one from https://transparency.entsoe.eu/
	// Per-call timeout in seconds, default: 30
	TimeoutSeconds *int `mapstructure:"timeout_seconds"`
}

func (e AppConfigEntsoe) GetBaseUrl() string {
	if e.BaseUrl == nil || *e.BaseUrl == "" {
		return "https://web-api.tp.entsoe.eu/api"
	}
	return *e.BaseUrl
}

func (e AppConfigEntsoe) GetTimeout() time.Duration {
	if e.TimeoutSeconds == nil {
		return 30 * time.Second
	}
	return time.Duration(*e.TimeoutSeconds) * time.Second
}

type AppConfigZone struct {
	Name        string
	Code        string // ENTSO-E area code (EIC)
	Timezone    string
	Description string
}

type AppConfigService struct {
	DefaultZones []string `mapstructure:"default_zones"`
	// Lookback window when no explicit range is requested, default: 7
	DefaultDaysBack *int `mapstructure:"default_days_back"`
	// Largest allowed range in days, default: 365
	MaxDaysBack *int `mapstructure:"max_days_back"`
}

func (s AppConfigService) GetDefaultDaysBack() int {
	if s.DefaultDaysBack == nil {
		return 7
	}
	return *s.DefaultDaysBack
}

func (s AppConfigService) GetMaxDaysBack() int {
	if s.MaxDaysBack == nil {
		return 365
	}
	return *s.MaxDaysBack
}

type AppConfigCache struct {
	Enabled *bool
	// Time-to-live for cached series in minutes, default: 15
	TtlMinutes *int `mapstructure:"ttl_minutes"`
}

func (c AppConfigCache) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

func (c AppConfigCache) GetTtl() time.Duration {
	if c.TtlMinutes == nil {
		return 15 * time.Minute
	}
	return time.Duration(*c.TtlMinutes) * time.Minute
}

type AppConfigOutput struct {
	IncludeStatistics  *bool `mapstructure:"include_statistics"`
	IncludeTimeColumns *bool `mapstructure:"include_time_columns"`
	// Directory for exported files, default: "output"
	Dir *string
}

func (o AppConfigOutput) GetIncludeStatistics() bool {
	if o.IncludeStatistics == nil {
		return true
	}
	return *o.IncludeStatistics
}

func (o AppConfigOutput) GetIncludeTimeColumns() bool {
	if o.IncludeTimeColumns == nil {
		return true
	}
	return *o.IncludeTimeColumns
}

func (o AppConfigOutput) GetDir() string {
	if o.Dir == nil || *o.Dir == "" {
		return "output"
	}
	return *o.Dir
}

// AppConfigMqtt configures the optional price publisher. Publishing is off
// when no host is assigned.
type AppConfigMqtt struct {
	Host     string
	Port     int16
	Username string
	Password string
	Topic    *string
}

func (m AppConfigMqtt) IsEnabled() bool {
	return m.Host != ""
}

func (m AppConfigMqtt) GetTopic() string {
	if m.Topic == nil || *m.Topic == "" {
		return "powerprice/prices"
	}
	return *m.Topic
}

type AppConfigRefresh struct {
	// Cron expression for the scheduled refresh of the default zones, default: "@hourly"
	RunAt *string `mapstructure:"run_at"`
}

func (r AppConfigRefresh) GetRunAt() string {
	if r.RunAt == nil || *r.RunAt == "" {
		return "@hourly"
	}
	return *r.RunAt
}

type AppConfigDatabase struct {
	Path *string
}

func (d AppConfigDatabase) GetPath() string {
	if d.Path == nil || *d.Path == "" {
		return "powerprice.db"
	}
	return *d.Path
}

type AppConfigLogging struct {
	// Min log level for database: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
	DbLevel *string `mapstructure:"db_level"`
	// Log attributes format: "TEXT", "JSON", default: "JSON"
	DbAttrsFormat *string `mapstructure:"db_attrs_format"`
	// Maximum number of log entries in the database, default: 10000
	DbMaxEntries *int `mapstructure:"db_max_entries"`
	// Min log level for the console: "DEBUG", "INFO", "WARN", "ERROR", default: "INFO"
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
	Api      AppConfigApi
	Entsoe   AppConfigEntsoe
	Zones    map[string]AppConfigZone
	Service  AppConfigService
	Cache    AppConfigCache
	Output   AppConfigOutput
	Mqtt     AppConfigMqtt
	Refresh  AppConfigRefresh
	Database AppConfigDatabase
	Logging  AppConfigLogging
}

// ZoneList returns the configured catalog sorted by identifier. Viper
// lowercases map keys, so identifiers are normalized back to uppercase.
func (c *AppConfig) ZoneList() []zones.Zone {
	ids := make([]string, 0, len(c.Zones))
	for id := range c.Zones {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	zs := make([]zones.Zone, 0, len(ids))
	for _, id := range ids {
		z := c.Zones[id]
		zs = append(zs, zones.Zone{
			Identifier:  strings.ToUpper(id),
			Name:        z.Name,
			Code:        z.Code,
			Timezone:    z.Timezone,
			Description: z.Description,
		})
	}
	return zs
}

func (c *AppConfig) Validate() error {
	if c.Entsoe.Token == "" || c.Entsoe.Token == "your-api-token-here" {
		return &ConfigurationError{Detail: "no valid entsoe API token assigned"}
	}
	if len(c.Zones) == 0 {
		return &ConfigurationError{Detail: "no zones configured"}
	}
	for id, z := range c.Zones {
		if z.Code == "" {
			return &ConfigurationError{Detail: fmt.Sprintf("zone %s has no area code", id)}
		}
		if _, err := time.LoadLocation(z.Timezone); err != nil {
			return &ConfigurationError{Detail: fmt.Sprintf("zone %s has invalid timezone %q", id, z.Timezone)}
		}
	}
	catalog := make(map[string]bool, len(c.Zones))
	for id := range c.Zones {
		catalog[strings.ToUpper(id)] = true
	}
	for _, id := range c.Service.DefaultZones {
		if !catalog[strings.ToUpper(id)] {
			return &ConfigurationError{Detail: fmt.Sprintf("default zone %s is not in the catalog", id)}
		}
	}
	return nil
}

func Load(path string) (*AppConfig, error) {
	if path != "" {
		viper.SetConfigFile(path)
	} else {
		viper.AddConfigPath("config")
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	var c AppConfig

	if err := viper.ReadInConfig(); err != nil {
		return nil, &ConfigurationError{Detail: fmt.Sprintf("unable to read config file: %v", err)}
	}

	if err := viper.Unmarshal(&c); err != nil {
		return nil, &ConfigurationError{Detail: fmt.Sprintf("unable to unmarshal config file: %v", err)}
	}

	for i, id := range c.Service.DefaultZones {
		c.Service.DefaultZones[i] = strings.ToUpper(id)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return &c, nil
}
