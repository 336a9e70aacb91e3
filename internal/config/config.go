package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Cron   CronConfig   `mapstructure:"cron"`

	Map         MapConfig         `mapstructure:"map"`
	Threads     ThreadsConfig     `mapstructure:"threads"`
	Suggestions SuggestionsConfig `mapstructure:"suggestions"`
	Geocode     GeocodeConfig     `mapstructure:"geocode"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Cleanup string `mapstructure:"cleanup"`
}

type MapConfig struct {
	StartingLat float64 `mapstructure:"starting_lat"`
	StartingLng float64 `mapstructure:"starting_lng"`
	PerPage     int     `mapstructure:"per_page"`
	EventLimit  int     `mapstructure:"event_limit"`
}

type ThreadsConfig struct {
	// Enabled is the global thread-creation toggle; ForumID is the
	// destination forum for marker threads.
	Enabled        bool   `mapstructure:"enabled"`
	ForumID        uint64 `mapstructure:"forum_id"`
	SystemUserID   uint64 `mapstructure:"system_user_id"`
	FallbackUserID uint64 `mapstructure:"fallback_user_id"`
	MapURL         string `mapstructure:"map_url"`
}

type SuggestionsConfig struct {
	RetentionDays int `mapstructure:"retention_days"`
}

type GeocodeConfig struct {
	Endpoint    string        `mapstructure:"endpoint"`
	UserAgent   string        `mapstructure:"user_agent"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MinInterval time.Duration `mapstructure:"min_interval"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SYLMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()

	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.cleanup", "@daily")

	v.SetDefault("map.starting_lat", 51.505)
	v.SetDefault("map.starting_lng", -0.09)
	v.SetDefault("map.per_page", 20)
	v.SetDefault("map.event_limit", 10)

	v.SetDefault("threads.enabled", false)
	v.SetDefault("threads.forum_id", 0)
	v.SetDefault("threads.system_user_id", 0)
	v.SetDefault("threads.fallback_user_id", 1)
	v.SetDefault("threads.map_url", "/map")

	v.SetDefault("suggestions.retention_days", 30)

	v.SetDefault("geocode.endpoint", "https://nominatim.openstreetmap.org/search")
	v.SetDefault("geocode.user_agent", "sylmap-geocoder/1.0")
	v.SetDefault("geocode.timeout", "10s")
	v.SetDefault("geocode.min_interval", "2s")

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
