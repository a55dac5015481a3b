package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"creatorlink-shell/pkg/validator"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config struct
type Config struct {
	App      `mapstructure:"app"`
	Backend  `mapstructure:"backend"`
	Session  `mapstructure:"session"`
	Journal  `mapstructure:"journal"`
	Postgres `mapstructure:"postgres"`
}

// App struct
type App struct {
	Debug bool   `mapstructure:"debug"`
	Env   string `mapstructure:"env"`
	Port  string `mapstructure:"port" validate:"required"`
}

// Backend struct - the collaboration API the shell authenticates against
type Backend struct {
	BaseURL    string        `mapstructure:"base_url" validate:"required,url"`
	UserPath   string        `mapstructure:"user_path" validate:"required,startswith=/"`
	LogoutPath string        `mapstructure:"logout_path" validate:"required,startswith=/"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

// Session struct - query cache windows and resolution timers
type Session struct {
	StaleAfter          time.Duration `mapstructure:"stale_after" validate:"gte=0,ltefield=EvictAfter"`
	EvictAfter          time.Duration `mapstructure:"evict_after" validate:"gt=0"`
	PendingTimeout      time.Duration `mapstructure:"pending_timeout" validate:"gt=0"`
	PresentationTimeout time.Duration `mapstructure:"presentation_timeout" validate:"gt=0"`
}

// Journal struct - diagnostics journal
type Journal struct {
	Driver   string `mapstructure:"driver" validate:"oneof=memory postgres"`
	Capacity int    `mapstructure:"capacity" validate:"gte=0"`
}

// Postgres struct
type Postgres struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DbName   string `mapstructure:"database"`
	SSLMode  bool   `mapstructure:"sslmode"`
}

var config Config

// GetViper func
func GetViper() *Config {
	return &config
}

// Load reads config.yaml from path, overlays config.<env>.yaml when present,
// applies environment overrides and validates the result.
func Load(path, env string) (*Config, error) {
	cfg, _, err := load(path, env)
	return cfg, err
}

// BindFlags registers the command line flags the shell understands
func BindFlags(fs *pflag.FlagSet) {
	fs.String("env", "", "the environment to use")
	fs.String("config", "./configs", "directory holding config.yaml")
	fs.String("app.port", "", "listen port")
	fs.String("backend.base_url", "", "collaboration API base URL")
}

// LoadFlags loads the config using values from a parsed flag set.
// Flags that were set explicitly override file and environment values.
func LoadFlags(fs *pflag.FlagSet) (*Config, error) {
	path, _ := fs.GetString("config")
	env, _ := fs.GetString("env")
	cfg, v, err := load(path, env, fs)
	if err != nil {
		return nil, err
	}
	config = *cfg
	watch(v)
	return cfg, nil
}

func watch(v *viper.Viper) {
	if v.ConfigFileUsed() == "" {
		return
	}
	v.OnConfigChange(func(e fsnotify.Event) {
		logrus.Infof("Config file has changed: %s (restart to apply)", e.Name)
	})
	v.WatchConfig()
}

func load(path, env string, flags ...*pflag.FlagSet) (*Config, *viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, nil, fmt.Errorf("read config: %w", err)
		}
		logrus.Warnf("No config file in %s, using defaults", path)
	}
	if env != "" {
		v.SetConfigName("config." + env)
		if err := v.MergeInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, nil, fmt.Errorf("merge %s config: %w", env, err)
			}
		}
		v.Set("app.env", env)
	}

	for _, fs := range flags {
		for _, key := range []string{"app.port", "backend.base_url"} {
			if f := fs.Lookup(key); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, nil, err
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, v, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.debug", false)
	v.SetDefault("app.env", "local")
	v.SetDefault("app.port", "9089")
	v.SetDefault("backend.base_url", "http://localhost:5000")
	v.SetDefault("backend.user_path", "/api/auth/user")
	v.SetDefault("backend.logout_path", "/api/auth/logout")
	v.SetDefault("backend.timeout", 10*time.Second)
	v.SetDefault("session.stale_after", 30*time.Minute)
	v.SetDefault("session.evict_after", 24*time.Hour)
	v.SetDefault("session.pending_timeout", 5*time.Second)
	v.SetDefault("session.presentation_timeout", 8*time.Second)
	v.SetDefault("journal.driver", "memory")
	v.SetDefault("journal.capacity", 1000)
	v.SetDefault("postgres.host", "")
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("postgres.username", "")
	v.SetDefault("postgres.password", "")
	v.SetDefault("postgres.database", "")
	v.SetDefault("postgres.sslmode", false)
}

// Validate checks field constraints, including stale_after <= evict_after
func (c *Config) Validate() error {
	if err := validator.New().ValidateStruct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Journal.Driver == "postgres" && c.Postgres.Host == "" {
		return errors.New("invalid config: journal driver postgres requires postgres.host")
	}
	return nil
}
