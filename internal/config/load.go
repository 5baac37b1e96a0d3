package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const EnvPrefix = "REPOPUSH"

// Settings is everything a run can be configured with before prompting.
type Settings struct {
	Owner         string        `mapstructure:"owner"`
	Repo          string        `mapstructure:"repo"`
	Branch        string        `mapstructure:"branch"`
	Token         string        `mapstructure:"token"`
	APIURL        string        `mapstructure:"api_url"`
	HTTPTimeout   time.Duration `mapstructure:"http_timeout"`
	Manifest      string        `mapstructure:"manifest"`
	Root          string        `mapstructure:"root"`
	DryRun        bool          `mapstructure:"dry_run"`
	SkipUnchanged bool          `mapstructure:"skip_unchanged"`
	LogLevel      string        `mapstructure:"log_level"`
	LogFormat     string        `mapstructure:"log_format"`
}

var defaults = map[string]any{
	"owner":          "",
	"repo":           "",
	"branch":         "",
	"api_url":        DefaultAPIURL,
	"http_timeout":   30 * time.Second,
	"manifest":       "",
	"root":           "",
	"dry_run":        false,
	"skip_unchanged": false,
	"log_level":      "info",
	"log_format":     "console",
}

// flag name -> config key
var flagKeys = map[string]string{
	"owner":          "owner",
	"repo":           "repo",
	"branch":         "branch",
	"api-url":        "api_url",
	"http-timeout":   "http_timeout",
	"manifest":       "manifest",
	"root":           "root",
	"dry-run":        "dry_run",
	"skip-unchanged": "skip_unchanged",
	"log-level":      "log_level",
	"log-format":     "log_format",
}

// Loader resolves Settings from, in increasing priority: defaults, a config
// file, a .env file, the environment and command-line flags.
type Loader struct {
	EnvFile string
	// SearchPaths are used to find repopush.yaml when no file is given.
	SearchPaths []string
}

func NewLoader() *Loader {
	return &Loader{EnvFile: ".env", SearchPaths: []string{"."}}
}

func (l *Loader) Load(configFile string, flags *pflag.FlagSet) (Settings, string, error) {
	if l.EnvFile != "" {
		if err := godotenv.Load(l.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Settings{}, "", fmt.Errorf("load %s: %w", l.EnvFile, err)
		}
	}

	v := viper.New()
	v.SetConfigName("repopush")
	v.SetConfigType("yaml")
	for _, p := range l.SearchPaths {
		v.AddConfigPath(p)
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	}
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("token", EnvPrefix+"_TOKEN", "GITHUB_TOKEN", "GH_TOKEN"); err != nil {
		return Settings{}, "", err
	}

	if flags != nil {
		for name, key := range flagKeys {
			f := flags.Lookup(name)
			if f == nil {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return Settings{}, "", fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Settings{}, "", fmt.Errorf("read config: %w", err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, "", fmt.Errorf("parse config: %w", err)
	}
	return s, v.ConfigFileUsed(), nil
}
