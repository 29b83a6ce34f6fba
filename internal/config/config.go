// Package config loads studyctl settings from flags, a YAML file, the environment
// and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/lifehub/studycore/internal/apperr"
	"github.com/lifehub/studycore/internal/domain"
	"github.com/lifehub/studycore/internal/retention"
)

// EnvPrefix prefixes environment overrides; "__" separates nested keys, so
// STUDYCORE_DATABASE__DSN sets database.dsn.
const EnvPrefix = "STUDYCORE_"

type Config struct {
	User      string          `koanf:"user" validate:"required"`
	Database  DatabaseConfig  `koanf:"database"`
	Log       LogConfig       `koanf:"log"`
	Study     StudyConfig     `koanf:"study"`
	Retention RetentionConfig `koanf:"retention"`
	Sync      SyncConfig      `koanf:"sync"`
}

type DatabaseConfig struct {
	Driver string `koanf:"driver" validate:"oneof=sqlite postgres"`
	DSN    string `koanf:"dsn" validate:"required"`
}

type LogConfig struct {
	Mode string `koanf:"mode" validate:"oneof=dev development prod production"`
}

type StudyConfig struct {
	Algorithm            string  `koanf:"algorithm" validate:"oneof=LEITNER FSRS_VECTO"`
	NewCardsPerDay       int     `koanf:"new_cards_per_day" validate:"gte=0"`
	MaxReviewsPerSession int     `koanf:"max_reviews_per_session" validate:"gte=0"`
	DesiredRetention     float64 `koanf:"desired_retention" validate:"gt=0,lt=1"`
}

type RetentionConfig struct {
	retention.Policy `koanf:",squash"`
	SummaryInterval  time.Duration `koanf:"summary_interval" validate:"gte=0"`
}

type SyncConfig struct {
	ReposDir string        `koanf:"repos_dir" validate:"required"`
	Interval time.Duration `koanf:"interval" validate:"gte=0"`
}

// Settings are the study defaults for users without stored settings.
func (c StudyConfig) Settings() domain.StudySettings {
	return domain.StudySettings{
		Algorithm:            domain.AlgorithmType(c.Algorithm),
		NewCardsPerDay:       c.NewCardsPerDay,
		MaxReviewsPerSession: c.MaxReviewsPerSession,
		DesiredRetention:     c.DesiredRetention,
	}
}

// NewFlagSet returns a flag set carrying every config key with its default, plus
// --config and --env-file. Callers may add their own flags before parsing.
func NewFlagSet(name string) *pflag.FlagSet {
	f := pflag.NewFlagSet(name, pflag.ContinueOnError)
	f.String("config", "", "path to a YAML config file")
	f.String("env-file", ".env", "dotenv file loaded when present")

	policy := retention.DefaultPolicy()
	f.String("user", "", "user id the commands act for")
	f.String("database.driver", "sqlite", "database driver: sqlite or postgres")
	f.String("database.dsn", "studycore.db", "database DSN or sqlite file path")
	f.String("log.mode", "dev", "log mode: dev or prod")
	f.String("study.algorithm", string(domain.AlgorithmLeitner), "scheduling algorithm: LEITNER or FSRS_VECTO")
	f.Int("study.new_cards_per_day", 20, "new cards introduced per day")
	f.Int("study.max_reviews_per_session", 0, "cap on cards per session (0 = no cap)")
	f.Float64("study.desired_retention", 0.9, "target recall probability for FSRS")
	f.Int("retention.window", policy.Window, "ratings averaged for topic status")
	f.Float64("retention.review_at_or_below", policy.ReviewAtOrBelow, "average that marks a topic NEEDS_REVIEW")
	f.Float64("retention.master_at_or_above", policy.MasterAtOrAbove, "average that marks a topic MASTERED")
	f.Duration("retention.summary_interval", 24*time.Hour, "how often the daemon logs retention summaries")
	f.String("sync.repos_dir", "repos", "directory for git deck checkouts")
	f.Duration("sync.interval", time.Hour, "how often the daemon re-imports deck sources")
	return f
}

// Load resolves the configuration after f has been parsed. Precedence, lowest first:
// flag defaults, YAML file, .env file and environment, changed flags.
func Load(f *pflag.FlagSet) (*Config, error) {
	envFile, _ := f.GetString("env-file")
	if err := loadDotenv(envFile); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if path, _ := f.GetString("config"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}
	// Changed flags override; defaults only fill keys nothing else set.
	if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
		return nil, fmt.Errorf("failed to load flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := apperr.Check(validator.New(), cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

func loadDotenv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}
