// Package config loads mealprep settings from defaults, an optional YAML
// file and MEALPREP_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix of environment overrides, e.g. MEALPREP_BANK_PATH.
const EnvPrefix = "MEALPREP"

// Config holds the configuration for the application.
type Config struct {
	Cookbook CookbookConfig `mapstructure:"cookbook"`
	Bank     BankConfig     `mapstructure:"bank"`
	Log      LogConfig      `mapstructure:"log"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Planner  PlannerConfig  `mapstructure:"planner"`
	Clipper  ClipperConfig  `mapstructure:"clipper"`
}

// CookbookConfig locates the recipe directory.
type CookbookConfig struct {
	Title     string `mapstructure:"title" validate:"required"`
	Dir       string `mapstructure:"dir" validate:"required"`
	Extension string `mapstructure:"extension" validate:"required,startswith=."`
	Workers   int    `mapstructure:"workers" validate:"min=1,max=64"`
}

type BankConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

type LogConfig struct {
	Level       string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format      string `mapstructure:"format" validate:"oneof=console json"`
	Development bool   `mapstructure:"development"`
}

// MetricsConfig controls the Prometheus textfile written after each command.
// An empty Textfile disables it.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// PlannerConfig holds the daily targets used by the meal-plan helpers.
// The three rates are fractions of daily calories.
type PlannerConfig struct {
	DailyCalories int     `mapstructure:"daily_calories" validate:"gt=0"`
	ProteinRate   float64 `mapstructure:"protein_rate" validate:"gte=0,lte=1"`
	CarbRate      float64 `mapstructure:"carb_rate" validate:"gte=0,lte=1"`
	FatRate       float64 `mapstructure:"fat_rate" validate:"gte=0,lte=1"`
}

type ClipperConfig struct {
	Timeout time.Duration `mapstructure:"timeout" validate:"gt=0"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("cookbook.title", "Cookbook")
	v.SetDefault("cookbook.dir", "Cookbook")
	v.SetDefault("cookbook.extension", ".txt")
	v.SetDefault("cookbook.workers", 1)

	v.SetDefault("bank.path", "Ingredients.csv")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("log.development", false)

	v.SetDefault("metrics.textfile", "")

	v.SetDefault("planner.daily_calories", 1900)
	v.SetDefault("planner.protein_rate", 0.35)
	v.SetDefault("planner.carb_rate", 0.45)
	v.SetDefault("planner.fat_rate", 0.20)

	v.SetDefault("clipper.timeout", "15s")
}

// NewFromEnv creates a new Config object from defaults and environment
// variables only.
func NewFromEnv() (*Config, error) {
	return load(newViper())
}

// Load reads configuration from path, falling back to ./mealprep.yaml when
// path is empty. A missing default file is not an error; a missing explicit
// file is. Environment variables override file values.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("mealprep")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}
	return load(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks field constraints and that the macro rates do not exceed
// the whole of the daily calories.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if sum := c.Planner.ProteinRate + c.Planner.CarbRate + c.Planner.FatRate; sum > 1+1e-9 {
		return fmt.Errorf("planner rates sum to %.2f, must not exceed 1", sum)
	}
	return nil
}
